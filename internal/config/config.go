package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/flowactivate/internal/notifications"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FLOWACTIVATE_*). A missing file is not an
// error; defaults are used instead.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps an environment variable to its config key:
// FLOWACTIVATE_CLI_PATH -> cli_path, FLOWACTIVATE_NOTIFY_WEBHOOK_URL -> notify.webhook_url.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "notify_"); ok {
		return "notify." + rest
	}
	return key
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var apiVersionPattern = regexp.MustCompile(`^\d{2,3}\.0$`)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CLIPath) == "" {
		return fmt.Errorf("cli_path is required")
	}

	if !apiVersionPattern.MatchString(c.APIVersion) {
		return fmt.Errorf("invalid api_version %q: expected a value like 60.0", c.APIVersion)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be non-negative")
	}

	if c.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("http_timeout_seconds must be non-negative")
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
		}
	}

	if c.Notify.WebhookURL != "" {
		u, err := url.Parse(c.Notify.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid notify.webhook_url %q", c.Notify.WebhookURL)
		}
	}

	if c.Notify.MinSeverity != "" && !notifications.ValidSeverity(notifications.Severity(c.Notify.MinSeverity)) {
		return fmt.Errorf("invalid notify.min_severity %q: must be one of info, warning, critical", c.Notify.MinSeverity)
	}

	return nil
}

// HTTPTimeout returns the per-request timeout; zero means none.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Workers returns how many orgs may be activated at once. Zero is treated as one.
func (c *Config) Workers() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}
