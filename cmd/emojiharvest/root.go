package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"emojiharvest/pkg/config"
	"emojiharvest/pkg/logger"
	"emojiharvest/pkg/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	logFile       string
	notifications bool
	quiet         bool
	noTUI         bool

	// Browser flags
	chromePath  string
	userDataDir string
	remoteURL   string
	headless    bool
	timeout     time.Duration
	outputDir   string
	overwrite   bool
	noNavigate  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "emojiharvest",
	Short: "Export the custom emojis of Slack workspaces and Discord servers",
	Long: `emojiharvest drives a Chrome window through the emoji lists of Slack and
Discord and writes every custom emoji it sees to a JSON file mapping the
emoji name to its image URL.

Both clients only render the part of the list that is on screen, so the
list is scrolled step by step and sampled until nothing new shows up.

Log in through the browser profile given with --user-data-dir, or attach
to a Chrome you already use with --remote-url.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Version = version
		if quiet || cmd.Name() == "version" || cmd.Name() == "help" || cmd.Parent() == configCmd {
			return
		}
		if !interactive() {
			printer().Logo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.NewPrinter(os.Stderr).Error("Error", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (default is ./.emojiharvest.yaml or ~/.config/emojiharvest/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "also write logs to this file")
	pf.BoolVar(&notifications, "notifications", true, "enable desktop notifications")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	pf.BoolVar(&noTUI, "no-tui", false, "print plain progress lines instead of the full-screen interface")

	pf.StringVar(&chromePath, "chrome-path", "", "Chrome or Chromium executable")
	pf.StringVar(&userDataDir, "user-data-dir", "", "Chrome profile directory holding your logged-in sessions")
	pf.StringVar(&remoteURL, "remote-url", "", "attach to a running Chrome (ws://127.0.0.1:9222/devtools/browser/...)")
	pf.BoolVar(&headless, "headless", false, "run Chrome without a window")
	pf.DurationVar(&timeout, "timeout", 0, "upper bound for the whole run (default 30m)")
	pf.StringVarP(&outputDir, "output", "o", "", "output directory for exports (default: current directory)")
	pf.BoolVar(&overwrite, "overwrite", false, "overwrite existing export files instead of numbering them")
	pf.BoolVar(&noNavigate, "no-navigate", false, "harvest the page already open in the attached browser")

	rootCmd.SetVersionTemplate(`emojiharvest {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// interactive reports whether the full-screen interface should be used
func interactive() bool {
	return !noTUI && !quiet && term.IsTerminal(int(os.Stdout.Fd()))
}

// printer writes user-facing output unless --quiet was given
func printer() *ui.Printer {
	if quiet {
		return ui.NewPrinter(io.Discard)
	}
	return ui.NewPrinter(os.Stdout)
}

// commandFlags collects the flags the user set, keyed the way
// config.MergeCommandLineFlags expects
func commandFlags(cmd *cobra.Command, extra map[string]interface{}) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("log-level") {
		flags["log-level"] = logLevel
	} else if quiet {
		flags["log-level"] = "error"
	}
	if changed("log-file") {
		flags["log-file"] = logFile
	}
	if changed("notifications") {
		flags["notifications"] = notifications
	}
	if changed("chrome-path") {
		flags["chrome-path"] = chromePath
	}
	if changed("user-data-dir") {
		flags["user-data-dir"] = userDataDir
	}
	if changed("remote-url") {
		flags["remote-url"] = remoteURL
	}
	if changed("headless") {
		flags["headless"] = headless
	}
	if changed("timeout") {
		flags["timeout"] = timeout
	}
	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("overwrite") {
		flags["overwrite"] = overwrite
	}
	for k, v := range extra {
		flags[k] = v
	}
	return flags
}

// loadConfig loads the configuration and sets up logging. While the
// full-screen interface runs, logs only go to the log file.
func loadConfig(cmd *cobra.Command, extra map[string]interface{}) (*config.Config, error) {
	cfg, err := config.Load(configFile, commandFlags(cmd, extra))
	if err != nil {
		return nil, err
	}

	var console io.Writer = os.Stderr
	if interactive() {
		console = nil
	}
	if err := logger.InitializeWithOutput(&cfg.Logging, console); err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, nil
}
