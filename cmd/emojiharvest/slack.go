package main

import (
	"context"
	"errors"
	"fmt"

	"emojiharvest/pkg/sources/slack"
	"emojiharvest/pkg/ui"
	"emojiharvest/pkg/ui/tui"

	"github.com/spf13/cobra"
)

// slackCmd represents the slack command
var slackCmd = &cobra.Command{
	Use:   "slack [workspace]",
	Short: "Export the custom emojis of a Slack workspace",
	Long: `Open https://<workspace>.slack.com/customize/emoji and collect every custom
emoji in the list.

The list is first scrolled quickly to the bottom, then walked back up more
slowly to pick up rows that were skipped on the way down. The result is
written to slack_emojis.json in the output directory.`,
	Example: `  # Use a dedicated Chrome profile where you are logged into Slack
  emojiharvest slack acme --user-data-dir ~/.config/emojiharvest-chrome

  # Attach to a Chrome started with --remote-debugging-port=9222
  emojiharvest slack --remote-url ws://127.0.0.1:9222/devtools/browser/<id> --no-navigate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSlack,
}

func init() {
	rootCmd.AddCommand(slackCmd)
}

func runSlack(cmd *cobra.Command, args []string) error {
	extra := map[string]interface{}{}
	if len(args) == 1 {
		extra["workspace"] = args[0]
	}
	cfg, err := loadConfig(cmd, extra)
	if err != nil {
		return err
	}
	if cfg.Slack.Workspace == "" && !noNavigate {
		return fmt.Errorf("a workspace is required, pass it as an argument or set slack.workspace")
	}

	s, err := newSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	src := slack.New(slack.NewBrowserHost(s.page, cfg), cfg.Slack, s.harvester, s.log)

	run := func(ctx context.Context, rep ui.Reporter) (tui.Result, error) {
		if !noNavigate {
			rep.Status("Collecting emojis from " + src.URL())
		}
		out, err := src.Harvest(ctx, !noNavigate, rep.Progress)
		if err != nil {
			if out.Emojis == nil || out.Emojis.Len() == 0 {
				return tui.Result{}, err
			}
			s.log.WithError(err).Warn("Harvest failed, saving what was collected")
			rep.Warn(fmt.Sprintf("Harvest stopped early: %v", err))
		}
		return s.save("Slack", slack.Label, out.Emojis, out.Result.Reason)
	}

	display := ui.NewProgressDisplay(s.out.Writer(), "slack", cfg.Logging.Level == "debug")

	if !interactive() {
		stop := s.cancelOnInterrupt()
		defer stop()

		if cfg.Slack.Workspace != "" {
			s.out.Info("Workspace", cfg.Slack.Workspace)
		}
		s.out.Info("Output", s.store.GetOutputDir())
		res, err := run(s.ctx, display)
		if err != nil {
			s.notifier.SendError("Slack harvest failed", err.Error())
			return err
		}
		s.report(display, res)
		return nil
	}

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	t := tui.NewTUI("Slack", cfg.Output.PreviewCount, src.Cancel)
	var (
		res    tui.Result
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, runErr = run(ctx, t)
		if runErr != nil {
			t.LogError("Slack harvest failed: %v", runErr)
		}
		t.Done()
	}()
	stopOnTimeout := context.AfterFunc(s.ctx, t.Stop)
	defer stopOnTimeout()

	startErr := t.Start()
	cancel()
	src.Cancel()
	<-done

	if startErr != nil {
		return fmt.Errorf("terminal interface: %w", startErr)
	}
	if errors.Is(runErr, context.Canceled) {
		s.out.Warning("Cancelled before anything was collected")
		return nil
	}
	if runErr != nil {
		s.notifier.SendError("Slack harvest failed", runErr.Error())
		return runErr
	}
	s.report(display, res)
	return nil
}
