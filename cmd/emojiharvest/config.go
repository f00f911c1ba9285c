package main

import (
	"fmt"
	"os"
	"path/filepath"

	"emojiharvest/pkg/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage emojiharvest configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (EMOJIHARVEST_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.emojiharvest.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Path accessibility`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# emojiharvest configuration file
#
# Every option can also be set with an environment variable prefixed with
# EMOJIHARVEST_, for example EMOJIHARVEST_SLACK_WORKSPACE or
# EMOJIHARVEST_USER_DATA_DIR.

browser:
  # Chrome or Chromium executable. Leave empty to search the usual places.
  exec_path: ""

  # Profile directory holding your Slack and Discord logins
  user_data_dir: ""

  # Attach to a running Chrome instead of starting one, e.g.
  # ws://127.0.0.1:9222/devtools/browser/<id>
  remote_url: ""

  headless: false

  # Upper bound for a whole run
  timeout: 30m

  # How often to look for the emoji list before giving up
  container_retries: 10
  container_retry_delay: 1s

slack:
  # The part before .slack.com
  workspace: ""
  url_pattern: "https://%s.slack.com/customize/emoji"

  # Jump to the bottom of the list until it stops growing
  fast_pass:
    max_attempts: 300
    stability_threshold: 5
    step_to_end: true
    settle_delay: 100ms
    stall_delay: 1s

  # Walk back up to pick up rows the fast pass skipped
  slow_pass:
    max_attempts: 300
    step_pixels: 900
    settle_delay: 400ms

discord:
  url: "https://discord.com/channels/@me"

  # Finding the server sections in the picker
  discovery:
    max_attempts: 200
    step_pixels: 50
    step_ratio: 0.1
    settle_delay: 100ms
    # Pause after jumping back to the top before reading headers
    start_delay: 1s

  # Scrolling through one server section
  section:
    max_attempts: 500
    stability_threshold: 8
    step_pixels: 30
    settle_delay: 150ms

  enter_delay: 1s
  between_sections: 500ms
  picker_delay: 1s

output:
  directory: "."

  # When false, existing exports get a numbered name instead
  overwrite_existing: false

  # Number of emojis shown after an export
  preview_count: 20

notifications:
  enabled: true
  on_complete: true
  on_error: true

  # terminal, desktop or none
  notification_type: "terminal"

logging:
  # debug, info, warn, error
  level: "info"

  # Log file path (optional)
  file: ""
  console: true
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	out := printer()

	configPath := configFile
	if configPath == "" {
		configPath = ".emojiharvest.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists, remove %s first to create a new one", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("write configuration file: %w", err)
	}

	out.Success("Configuration file created: " + configPath)
	fmt.Fprintln(out.Writer(), "\nNext steps:")
	fmt.Fprintln(out.Writer(), "1. Set browser.user_data_dir to a Chrome profile where you are logged in")
	fmt.Fprintln(out.Writer(), "2. Run 'emojiharvest config validate' to check the configuration")
	fmt.Fprintln(out.Writer(), "3. Export with 'emojiharvest slack <workspace>' or 'emojiharvest discord'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := printer()

	cfg, err := config.Load(configFile, commandFlags(cmd, nil))
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("format configuration: %w", err)
	}

	out.Highlight("Current Configuration")
	fmt.Fprintln(out.Writer())
	fmt.Fprint(out.Writer(), string(data))

	fmt.Fprintln(out.Writer(), "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out.Writer(), "1. Command line flags")
	fmt.Fprintln(out.Writer(), "2. Environment variables (EMOJIHARVEST_*)")
	if configFile != "" {
		fmt.Fprintf(out.Writer(), "3. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(out.Writer(), "3. Configuration file: (searched in the default locations)")
	}
	fmt.Fprintln(out.Writer(), "4. Default values")
	return nil
}

// configWarnings lists settings that load fine but will likely not work
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if cfg.Browser.UserDataDir == "" && cfg.Browser.RemoteURL == "" {
		warnings = append(warnings, "no browser.user_data_dir or browser.remote_url, a fresh profile will not be logged in")
	}
	if cfg.Browser.ExecPath != "" {
		if _, err := os.Stat(cfg.Browser.ExecPath); err != nil {
			warnings = append(warnings, fmt.Sprintf("browser.exec_path not found: %s", cfg.Browser.ExecPath))
		}
	}
	if cfg.Slack.Workspace == "" {
		warnings = append(warnings, "slack.workspace not set, pass it to 'emojiharvest slack'")
	}
	return warnings
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := printer()

	if configFile != "" {
		out.Info("Validating configuration", configFile)
	} else {
		out.Info("Validating configuration", "(default locations)")
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	var problems []string
	if cfg.Output.Directory != "" {
		if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create output directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}
	if len(problems) > 0 {
		out.Error("Configuration has errors:")
		for _, p := range problems {
			fmt.Fprintf(out.Writer(), "  - %s\n", p)
		}
		return fmt.Errorf("configuration has %d errors", len(problems))
	}

	if warnings := configWarnings(cfg); len(warnings) > 0 {
		out.Warning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Fprintf(out.Writer(), "  - %s\n", w)
		}
		fmt.Fprintln(out.Writer())
	}

	out.Success("Configuration is valid")

	fmt.Fprintln(out.Writer(), "\nConfiguration summary:")
	fmt.Fprintf(out.Writer(), "  Output directory: %s\n", cfg.Output.Directory)
	fmt.Fprintf(out.Writer(), "  Slack workspace: %s\n", cfg.Slack.Workspace)
	fmt.Fprintf(out.Writer(), "  Discord URL: %s\n", cfg.Discord.URL)
	fmt.Fprintf(out.Writer(), "  Run timeout: %s\n", cfg.Browser.Timeout)
	fmt.Fprintf(out.Writer(), "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
