package config

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to flowactivate! Let's configure the Salesforce CLI integration.")
	fmt.Println()

	defaults := DefaultConfig()

	// 1. CLI executable.
	cliPrompt := promptui.Prompt{
		Label:   "Salesforce CLI executable",
		Default: defaults.CLIPath,
		Validate: func(s string) error {
			if s == "" {
				return fmt.Errorf("executable is required")
			}
			return nil
		},
	}
	cliPath, err := cliPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("cli path: %w", err)
	}
	if _, err := exec.LookPath(cliPath); err != nil {
		fmt.Printf("Note: %q was not found on PATH.\n\n", cliPath)
	}

	// 2. API version.
	versionPrompt := promptui.Prompt{
		Label:   "Salesforce API version",
		Default: defaults.APIVersion,
		Validate: func(s string) error {
			if !apiVersionPattern.MatchString(s) {
				return fmt.Errorf("expected a value like 60.0")
			}
			return nil
		},
	}
	apiVersion, err := versionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("api version: %w", err)
	}

	// 3. Concurrency.
	concurrencyPrompt := promptui.Prompt{
		Label:    "Orgs to activate at once (1 = sequential)",
		Default:  strconv.Itoa(defaults.Concurrency),
		Validate: validatePositiveInt,
	}
	concurrencyStr, err := concurrencyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("concurrency: %w", err)
	}
	concurrency, _ := strconv.Atoi(concurrencyStr)

	// 4. Credential failure policy.
	policyPrompt := promptui.Select{
		Label: "When an org's credentials cannot be resolved",
		Items: []string{
			"abort: stop the whole run (default)",
			"skip: log it and continue with the next org",
		},
	}
	policyIdx, _, err := policyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("credential policy: %w", err)
	}

	cfg := &Config{
		CLIPath:              cliPath,
		APIVersion:           apiVersion,
		Concurrency:          concurrency,
		HTTPTimeoutSeconds:   defaults.HTTPTimeoutSeconds,
		SkipUnresolvableOrgs: policyIdx == 1,
		LogLevel:             defaults.LogLevel,
		Notify:               defaults.Notify,
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}
