package config

// DefaultPath is where the config file is looked up when --config is not given.
const DefaultPath = ".flowactivate.yml"

// EnvPrefix prefixes environment overrides, e.g. FLOWACTIVATE_CLI_PATH.
const EnvPrefix = "FLOWACTIVATE_"

// DefaultConfig returns a Config with sensible defaults. The defaults
// reproduce the tool's reference behavior: strictly sequential, and any
// org whose credential cannot be resolved aborts the run.
func DefaultConfig() *Config {
	return &Config{
		CLIPath:              "sf",
		APIVersion:           "60.0",
		Concurrency:          1,
		HTTPTimeoutSeconds:   0,
		SkipUnresolvableOrgs: false,
		LogLevel:             "warn",
		Notify: NotifyConfig{
			MinSeverity: "info",
		},
	}
}
