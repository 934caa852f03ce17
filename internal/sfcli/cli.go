package sfcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoCredential is returned when the CLI answers but the session lacks a
// token or instance URL.
var ErrNoCredential = errors.New("no usable credential")

// Runner executes an external command and returns its stdout. Stderr is
// folded into the error when the command fails.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// CLI implements Directory by shelling out to the Salesforce CLI.
type CLI struct {
	path string
	run  Runner
}

// NewCLI creates a Directory backed by the executable at path (usually "sf").
func NewCLI(path string) *CLI {
	return &CLI{path: path, run: ExecRunner}
}

// NewCLIWithRunner creates a CLI that invokes commands through run instead of
// spawning processes.
func NewCLIWithRunner(path string, run Runner) *CLI {
	return &CLI{path: path, run: run}
}

// envelope is the JSON wrapper every `sf ... --json` command prints.
type envelope struct {
	Status  int             `json:"status"`
	Name    string          `json:"name"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type orgListResult struct {
	NonScratchOrgs []Org `json:"nonScratchOrgs"`
}

// ListConnectedOrgs returns the non-scratch orgs whose status is Connected,
// in the order the CLI listed them.
func (c *CLI) ListConnectedOrgs(ctx context.Context) ([]Org, error) {
	var res orgListResult
	if err := c.invoke(ctx, &res, "org", "list", "--json"); err != nil {
		return nil, fmt.Errorf("listing orgs: %w", err)
	}

	var orgs []Org
	for _, o := range res.NonScratchOrgs {
		if o.ConnectedStatus != StatusConnected {
			log.Debug().Str("org", o.Name()).Str("status", o.ConnectedStatus).Msg("skipping org that is not connected")
			continue
		}
		orgs = append(orgs, o)
	}
	return orgs, nil
}

// ResolveCredential asks the CLI for the current access token and instance
// URL of the given org.
func (c *CLI) ResolveCredential(ctx context.Context, org string) (Credential, error) {
	var cred Credential
	if err := c.invoke(ctx, &cred, "org", "display", "--target-org", org, "--json"); err != nil {
		return Credential{}, fmt.Errorf("resolving credentials for %s: %w", org, err)
	}
	if cred.AccessToken == "" || cred.InstanceURL == "" {
		return Credential{}, fmt.Errorf("resolving credentials for %s: %w", org, ErrNoCredential)
	}
	return cred, nil
}

// invoke runs the CLI and decodes the result field of its JSON envelope into out.
func (c *CLI) invoke(ctx context.Context, out any, args ...string) error {
	log.Debug().Str("cmd", c.path).Strs("args", args).Msg("running salesforce cli")

	stdout, runErr := c.run(ctx, c.path, args...)

	var env envelope
	if err := json.Unmarshal(stdout, &env); err != nil {
		if runErr != nil {
			return runErr
		}
		return fmt.Errorf("parsing %s output: %w", c.path, err)
	}

	// The CLI reports failures both through the exit code and the status field.
	if runErr != nil || env.Status != 0 {
		if env.Message != "" {
			return fmt.Errorf("%s: %s", c.path, env.Message)
		}
		if runErr != nil {
			return runErr
		}
		return fmt.Errorf("%s exited with status %d", c.path, env.Status)
	}

	if len(env.Result) == 0 {
		return fmt.Errorf("%s output has no result", c.path)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("parsing %s result: %w", c.path, err)
	}
	return nil
}

// ExecRunner runs the command as a child process.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}
