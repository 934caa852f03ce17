// Package session drives one interactive activation run: it gathers flow
// names and target orgs from the operator, confirms, then activates every
// flow in every selected org and reports each outcome.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ziadkadry99/flowactivate/internal/flow"
	"github.com/ziadkadry99/flowactivate/internal/progress"
	"github.com/ziadkadry99/flowactivate/internal/sfcli"
	"github.com/ziadkadry99/flowactivate/internal/ui"
)

// ErrCanceled is returned when the operator aborts a prompt or declines the
// confirmation. Nothing has been changed in any org when it is returned.
var ErrCanceled = errors.New("canceled by operator")

// Prompter collects operator input.
type Prompter interface {
	// FlowNames returns the raw semicolon-separated flow name input.
	FlowNames(ctx context.Context) (string, error)
	// SelectOrgs offers the given org names and returns the chosen ones in
	// listing order.
	SelectOrgs(ctx context.Context, orgs []string) ([]string, error)
	Confirm(ctx context.Context, question string) (bool, error)
}

// Activator activates one flow in one org.
type Activator interface {
	Activate(ctx context.Context, flowName string, cred sfcli.Credential) flow.Outcome
}

// Options tunes a session.
type Options struct {
	Version string
	// Concurrency is the number of orgs activated at once; values below 2
	// keep the strictly sequential behavior.
	Concurrency int
	// SkipUnresolvableOrgs logs and skips an org whose credential cannot be
	// resolved instead of aborting the run.
	SkipUnresolvableOrgs bool
}

// Result is the outcome of one flow in one org.
type Result struct {
	Org     string
	Outcome flow.Outcome
}

// Summary collects everything a run did.
type Summary struct {
	Results []Result
	// Skipped lists orgs left out because their credential could not be resolved.
	Skipped []string
}

// Activated counts flows that ended on their latest version.
func (s *Summary) Activated() int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome.OK() {
			n++
		}
	}
	return n
}

// Failed counts flows that did not.
func (s *Summary) Failed() int {
	return len(s.Results) - s.Activated()
}

// Controller runs sessions.
type Controller struct {
	prompter Prompter
	dir      sfcli.Directory
	act      Activator
	out      io.Writer
	reporter progress.Reporter
	opts     Options
}

// New creates a Controller. Status lines are written to out; a nil reporter
// disables progress output.
func New(p Prompter, dir sfcli.Directory, act Activator, out io.Writer, reporter progress.Reporter, opts Options) *Controller {
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	return &Controller{
		prompter: p,
		dir:      dir,
		act:      act,
		out:      out,
		reporter: reporter,
		opts:     opts,
	}
}

// Run performs one session. It returns ErrCanceled when the operator backs
// out, and any other error when the org directory or a credential cannot be
// read; the summary then holds whatever completed before the failure.
func (c *Controller) Run(ctx context.Context) (*Summary, error) {
	fmt.Fprintln(c.out, ui.Banner(c.opts.Version))

	flows, err := c.promptFlowNames(ctx)
	if err != nil {
		return nil, err
	}

	orgs, err := c.dir.ListConnectedOrgs(ctx)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		fmt.Fprintln(c.out, ui.Info("No connected orgs found. Authenticate one with `sf org login web` and try again."))
		return &Summary{}, nil
	}

	names := make([]string, 0, len(orgs))
	for _, o := range orgs {
		names = append(names, o.Name())
	}

	selected, err := c.promptOrgs(ctx, names)
	if err != nil {
		return nil, err
	}

	ok, err := c.prompter.Confirm(ctx, fmt.Sprintf("Proceed with %d org(s)?", len(selected)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCanceled
	}

	log.Info().Strs("flows", flows).Strs("orgs", selected).Msg("starting activation")

	var summary *Summary
	if c.opts.Concurrency > 1 {
		summary, err = c.executeParallel(ctx, selected, flows)
	} else {
		summary, err = c.execute(ctx, selected, flows)
	}
	if err != nil {
		return summary, err
	}

	fmt.Fprintln(c.out, ui.SummaryLine(summary.Activated(), summary.Failed(), len(selected)-len(summary.Skipped)))
	return summary, nil
}

func (c *Controller) promptFlowNames(ctx context.Context) ([]string, error) {
	for {
		raw, err := c.prompter.FlowNames(ctx)
		if err != nil {
			return nil, err
		}
		if names := ParseFlowNames(raw); len(names) > 0 {
			return names, nil
		}
		fmt.Fprintln(c.out, ui.Info("Enter at least one flow API name."))
	}
}

func (c *Controller) promptOrgs(ctx context.Context, names []string) ([]string, error) {
	for {
		selected, err := c.prompter.SelectOrgs(ctx, names)
		if err != nil {
			return nil, err
		}
		if len(selected) > 0 {
			return selected, nil
		}
		fmt.Fprintln(c.out, ui.Info("Select at least one org."))
	}
}

// resolve fetches an org's credential. skip reports that the failure was
// tolerated and the org should be left out.
func (c *Controller) resolve(ctx context.Context, org string, summary *Summary) (cred sfcli.Credential, skip bool, err error) {
	cred, err = c.dir.ResolveCredential(ctx, org)
	if err == nil {
		return cred, false, nil
	}
	if !c.opts.SkipUnresolvableOrgs {
		return sfcli.Credential{}, false, err
	}
	log.Warn().Err(err).Str("org", org).Msg("skipping org")
	c.reporter.Clear()
	fmt.Fprintln(c.out, ui.Info(fmt.Sprintf("Skipping %s: %v", org, err)))
	summary.Skipped = append(summary.Skipped, org)
	return sfcli.Credential{}, true, nil
}

// execute processes orgs one at a time, printing each status line as soon as
// its activation returns.
func (c *Controller) execute(ctx context.Context, orgs, flows []string) (*Summary, error) {
	summary := &Summary{}

	c.reporter.Start(len(orgs) * len(flows))
	defer c.reporter.Finish()

	done := 0
	for _, org := range orgs {
		cred, skip, err := c.resolve(ctx, org, summary)
		if err != nil {
			return summary, err
		}
		if skip {
			done += len(flows)
			continue
		}

		for _, name := range flows {
			out := c.act.Activate(ctx, name, cred)
			summary.Results = append(summary.Results, Result{Org: org, Outcome: out})

			done++
			c.reporter.Clear()
			fmt.Fprintln(c.out, ui.StatusLine(org, out))
			c.reporter.Update(done, org+"/"+name)
		}
	}
	return summary, nil
}

// ParseFlowNames splits semicolon-separated input into trimmed, non-empty
// flow names, preserving input order.
func ParseFlowNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ";") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
