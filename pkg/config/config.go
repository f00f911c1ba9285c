package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the emoji harvester
type Config struct {
	// Browser session used to drive the chat web UIs
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Slack emoji customization page
	Slack SlackConfig `yaml:"slack" json:"slack"`

	// Discord emoji picker
	Discord DiscordConfig `yaml:"discord" json:"discord"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BrowserConfig controls how the Chrome instance is started or attached to.
// RemoteURL takes precedence over ExecPath when both are set.
type BrowserConfig struct {
	ExecPath            string        `yaml:"exec_path" json:"exec_path"`
	UserDataDir         string        `yaml:"user_data_dir" json:"user_data_dir"`
	RemoteURL           string        `yaml:"remote_url" json:"remote_url"`
	Headless            bool          `yaml:"headless" json:"headless"`
	Timeout             time.Duration `yaml:"timeout" json:"timeout"`
	ContainerRetries    int           `yaml:"container_retries" json:"container_retries"`
	ContainerRetryDelay time.Duration `yaml:"container_retry_delay" json:"container_retry_delay"`
}

// PassConfig describes one scroll pass over a virtualized list
type PassConfig struct {
	MaxAttempts        int           `yaml:"max_attempts" json:"max_attempts"`
	StabilityThreshold int           `yaml:"stability_threshold" json:"stability_threshold"`
	StepPixels         float64       `yaml:"step_pixels" json:"step_pixels"`
	StepRatio          float64       `yaml:"step_ratio" json:"step_ratio"`
	StepToEnd          bool          `yaml:"step_to_end" json:"step_to_end"`
	SettleDelay        time.Duration `yaml:"settle_delay" json:"settle_delay"`
	StallDelay         time.Duration `yaml:"stall_delay" json:"stall_delay"`
	StartDelay         time.Duration `yaml:"start_delay,omitempty" json:"start_delay,omitempty"`
}

// SlackConfig holds the Slack page location and the two scroll passes
type SlackConfig struct {
	Workspace  string     `yaml:"workspace" json:"workspace"`
	URLPattern string     `yaml:"url_pattern" json:"url_pattern"`
	Selectors  []string   `yaml:"selectors" json:"selectors"`
	FastPass   PassConfig `yaml:"fast_pass" json:"fast_pass"`
	SlowPass   PassConfig `yaml:"slow_pass" json:"slow_pass"`
}

// DiscordConfig holds the Discord page location and the section scan settings
type DiscordConfig struct {
	URL             string        `yaml:"url" json:"url"`
	Discovery       PassConfig    `yaml:"discovery" json:"discovery"`
	Section         PassConfig    `yaml:"section" json:"section"`
	EnterDelay      time.Duration `yaml:"enter_delay" json:"enter_delay"`
	BetweenSections time.Duration `yaml:"between_sections" json:"between_sections"`
	PickerDelay     time.Duration `yaml:"picker_delay" json:"picker_delay"`
}

// OutputConfig holds export configuration
type OutputConfig struct {
	Directory         string `yaml:"directory" json:"directory"`
	OverwriteExisting bool   `yaml:"overwrite_existing" json:"overwrite_existing"`
	PreviewCount      int    `yaml:"preview_count" json:"preview_count"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnError          bool   `yaml:"on_error" json:"on_error"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
	// Console disables the pretty writer and emits JSON lines when false
	Console bool `yaml:"console" json:"console"`
}

// DefaultSlackSelectors are tried in order when locating the emoji list
var DefaultSlackSelectors = []string{
	".c-scrollbar__hider",
	".c-virtual_list--scrollbar",
	".c-table_view_all_rows_container",
	`[role="presentation"][style*="height: 1000px"]`,
	".c-virtual_list.c-virtual_list--scrollbar",
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:            false,
			Timeout:             30 * time.Minute,
			ContainerRetries:    10,
			ContainerRetryDelay: time.Second,
		},
		Slack: SlackConfig{
			URLPattern: "https://%s.slack.com/customize/emoji",
			Selectors:  append([]string(nil), DefaultSlackSelectors...),
			FastPass: PassConfig{
				MaxAttempts:        300,
				StabilityThreshold: 5,
				StepToEnd:          true,
				SettleDelay:        100 * time.Millisecond,
				StallDelay:         time.Second,
			},
			SlowPass: PassConfig{
				MaxAttempts: 300,
				StepPixels:  900,
				SettleDelay: 400 * time.Millisecond,
			},
		},
		Discord: DiscordConfig{
			URL: "https://discord.com/channels/@me",
			Discovery: PassConfig{
				MaxAttempts: 200,
				StepPixels:  50,
				StepRatio:   0.1,
				SettleDelay: 100 * time.Millisecond,
				StartDelay:  time.Second,
			},
			Section: PassConfig{
				MaxAttempts:        500,
				StabilityThreshold: 8,
				StepPixels:         30,
				SettleDelay:        150 * time.Millisecond,
			},
			EnterDelay:      time.Second,
			BetweenSections: 500 * time.Millisecond,
			PickerDelay:     time.Second,
		},
		Output: OutputConfig{
			Directory:         ".",
			OverwriteExisting: false,
			PreviewCount:      20,
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			OnComplete:       true,
			OnError:          true,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level:   "info",
			File:    "",
			Console: true,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv("EMOJIHARVEST_CHROME_PATH"); v != "" {
		c.Browser.ExecPath = v
	}
	if v := os.Getenv("EMOJIHARVEST_USER_DATA_DIR"); v != "" {
		c.Browser.UserDataDir = v
	}
	if v := os.Getenv("EMOJIHARVEST_REMOTE_URL"); v != "" {
		c.Browser.RemoteURL = v
	}
	if v := os.Getenv("EMOJIHARVEST_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("EMOJIHARVEST_HEADLESS: %w", err))
		} else {
			c.Browser.Headless = b
		}
	}
	if v := os.Getenv("EMOJIHARVEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("EMOJIHARVEST_TIMEOUT: %w", err))
		} else {
			c.Browser.Timeout = d
		}
	}

	if v := os.Getenv("EMOJIHARVEST_SLACK_WORKSPACE"); v != "" {
		c.Slack.Workspace = v
	}
	if v := os.Getenv("EMOJIHARVEST_DISCORD_URL"); v != "" {
		c.Discord.URL = v
	}

	if v := os.Getenv("EMOJIHARVEST_OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}

	if v := os.Getenv("EMOJIHARVEST_NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.ToLower(v) == "true"
	}

	if v := os.Getenv("EMOJIHARVEST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("EMOJIHARVEST_LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".emojiharvest.yaml",
		".emojiharvest.yml",
		filepath.Join(home, ".config", "emojiharvest", "config.yaml"),
		filepath.Join(home, ".config", "emojiharvest", "config.yml"),
		filepath.Join(home, ".emojiharvest.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Browser.Timeout <= 0 {
		errs = append(errs, errors.New("browser timeout must be positive"))
	}
	if c.Browser.ContainerRetries < 1 {
		errs = append(errs, errors.New("container retries must be at least 1"))
	}
	if c.Browser.ContainerRetryDelay < 0 {
		errs = append(errs, errors.New("container retry delay cannot be negative"))
	}

	if !strings.Contains(c.Slack.URLPattern, "%s") {
		errs = append(errs, errors.New("slack url pattern must contain %s for the workspace"))
	}
	if len(c.Slack.Selectors) == 0 {
		errs = append(errs, errors.New("at least one slack container selector is required"))
	}
	errs = append(errs, c.Slack.FastPass.validate("slack fast pass")...)
	errs = append(errs, c.Slack.SlowPass.validate("slack slow pass")...)

	if c.Discord.URL == "" {
		errs = append(errs, errors.New("discord url is required"))
	}
	errs = append(errs, c.Discord.Discovery.validate("discord discovery")...)
	errs = append(errs, c.Discord.Section.validate("discord section")...)
	if c.Discord.EnterDelay < 0 || c.Discord.BetweenSections < 0 || c.Discord.PickerDelay < 0 {
		errs = append(errs, errors.New("discord delays cannot be negative"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.PreviewCount < 0 {
		errs = append(errs, errors.New("preview count cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (p PassConfig) validate(name string) []error {
	var errs []error
	if p.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("%s: max attempts must be positive", name))
	}
	if p.StabilityThreshold < 0 {
		errs = append(errs, fmt.Errorf("%s: stability threshold cannot be negative", name))
	}
	if !p.StepToEnd && p.StepPixels <= 0 && p.StepRatio <= 0 {
		errs = append(errs, fmt.Errorf("%s: a positive step is required", name))
	}
	if p.StepRatio < 0 || p.StepRatio > 1 {
		errs = append(errs, fmt.Errorf("%s: step ratio must be between 0 and 1", name))
	}
	if p.SettleDelay < 0 || p.StallDelay < 0 || p.StartDelay < 0 {
		errs = append(errs, fmt.Errorf("%s: delays cannot be negative", name))
	}
	return errs
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only flags the user actually set should be present in the map.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["workspace"].(string); ok && v != "" {
		c.Slack.Workspace = v
	}
	if v, ok := flags["discord-url"].(string); ok && v != "" {
		c.Discord.URL = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.Directory = v
	}
	if v, ok := flags["overwrite"].(bool); ok {
		c.Output.OverwriteExisting = v
	}
	if v, ok := flags["chrome-path"].(string); ok && v != "" {
		c.Browser.ExecPath = v
	}
	if v, ok := flags["user-data-dir"].(string); ok && v != "" {
		c.Browser.UserDataDir = v
	}
	if v, ok := flags["remote-url"].(string); ok && v != "" {
		c.Browser.RemoteURL = v
	}
	if v, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.Browser.Timeout = v
	}
	if v, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["log-file"].(string); ok && v != "" {
		c.Logging.File = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".emojiharvest.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
