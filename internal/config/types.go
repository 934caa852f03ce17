package config

// Config is the top-level flowactivate configuration, corresponding to .flowactivate.yml.
type Config struct {
	CLIPath              string       `yaml:"cli_path" koanf:"cli_path"`
	APIVersion           string       `yaml:"api_version" koanf:"api_version"`
	Concurrency          int          `yaml:"concurrency" koanf:"concurrency"`
	HTTPTimeoutSeconds   int          `yaml:"http_timeout_seconds" koanf:"http_timeout_seconds"`
	SkipUnresolvableOrgs bool         `yaml:"skip_unresolvable_orgs" koanf:"skip_unresolvable_orgs"`
	LogLevel             string       `yaml:"log_level" koanf:"log_level"`
	Notify               NotifyConfig `yaml:"notify" koanf:"notify"`
}

// NotifyConfig holds the optional run-summary webhook.
type NotifyConfig struct {
	WebhookURL  string `yaml:"webhook_url" koanf:"webhook_url"`
	MinSeverity string `yaml:"min_severity" koanf:"min_severity"`
}
