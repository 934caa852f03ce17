package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/ziadkadry99/flowactivate/internal/config"
	"github.com/ziadkadry99/flowactivate/internal/flow"
	"github.com/ziadkadry99/flowactivate/internal/logging"
	"github.com/ziadkadry99/flowactivate/internal/prompt"
	"github.com/ziadkadry99/flowactivate/internal/session"
	"github.com/ziadkadry99/flowactivate/internal/sfcli"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `flowactivate init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// setupLogging sends logs to stderr so they never mix with status lines or
// MCP protocol messages on stdout. It returns the run id.
func setupLogging(cfg *config.Config) string {
	return logging.Setup(os.Stderr, cfg.LogLevel, verbose)
}

// Constructors for the session's collaborators; tests replace them.
var (
	newPrompter = func() session.Prompter {
		return prompt.NewTerminal()
	}
	newDirectory = func(cfg *config.Config) sfcli.Directory {
		return sfcli.NewCLI(cfg.CLIPath)
	}
)

func newActivator(cfg *config.Config) *flow.Activator {
	return flow.NewActivator(cfg.APIVersion, &http.Client{Timeout: cfg.HTTPTimeout()})
}
