package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	errs "emojiharvest/pkg/errors"
	"emojiharvest/pkg/harvest"
	"emojiharvest/pkg/sources/discord"
	"emojiharvest/pkg/ui"
	"emojiharvest/pkg/ui/tui"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	discordAll     bool
	discordSection string
	discordList    bool
	discordURL     string
)

// discordCmd represents the discord command
var discordCmd = &cobra.Command{
	Use:   "discord",
	Short: "Export custom emojis from the Discord emoji picker",
	Long: `Open Discord, open the emoji picker and find every server section in it.

Without flags an interactive picker lets you download all servers, a single
server, rescan the sections or cancel. Use --all, --section or --list to run
without the interface.`,
	Example: `  # Pick a server interactively
  emojiharvest discord --user-data-dir ~/.config/emojiharvest-chrome

  # List the sections the picker shows
  emojiharvest discord --list

  # Export one server
  emojiharvest discord --section "Cool Server"

  # Export every server into all_servers_emojis.json
  emojiharvest discord --all`,
	Args: cobra.NoArgs,
	RunE: runDiscord,
}

func init() {
	rootCmd.AddCommand(discordCmd)

	discordCmd.Flags().BoolVar(&discordAll, "all", false, "export every server section")
	discordCmd.Flags().StringVar(&discordSection, "section", "", "export the section with this name")
	discordCmd.Flags().BoolVar(&discordList, "list", false, "list the sections and exit")
	discordCmd.Flags().StringVar(&discordURL, "url", "", "Discord page to open (default https://discord.com/channels/@me)")

	discordCmd.MarkFlagsMutuallyExclusive("all", "section", "list")
}

func runDiscord(cmd *cobra.Command, args []string) error {
	extra := map[string]interface{}{}
	if cmd.Flags().Changed("url") {
		extra["discord-url"] = discordURL
	}
	cfg, err := loadConfig(cmd, extra)
	if err != nil {
		return err
	}

	s, err := newSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	src := discord.New(discord.NewBrowserHost(s.page), cfg, s.harvester, s.log)
	if !noNavigate {
		if err := src.Open(s.ctx); err != nil {
			return fmt.Errorf("open discord: %w", err)
		}
	}

	batch := discordAll || discordSection != "" || discordList
	if batch || !interactive() {
		return runDiscordPlain(s, src)
	}
	return runDiscordTUI(s, src)
}

func runDiscordPlain(s *session, src *discord.Source) error {
	stop := s.cancelOnInterrupt()
	defer stop()

	display := ui.NewProgressDisplay(s.out.Writer(), "discord", s.cfg.Logging.Level == "debug")
	s.out.Info("Output", s.store.GetOutputDir())
	sections, err := src.Discover(s.ctx, display.Progress)
	if errors.Is(err, errs.ErrCancelled) {
		display.Warn(fmt.Sprintf("Section scan cancelled after %d sections, nothing exported", len(sections)))
		return nil
	}
	if err != nil {
		s.notifier.SendError("Discord scan failed", err.Error())
		return err
	}
	if len(sections) == 0 {
		return fmt.Errorf("no emoji sections found in the picker")
	}

	var out discord.Outcome
	var title string
	switch {
	case discordAll:
		display.Status(fmt.Sprintf("Downloading all %d servers", len(sections)))
		out, err = src.All(s.ctx, sections, display.Progress)
		title = "all servers"
	case discordSection != "":
		out, err = src.Section(s.ctx, sections, discordSection, display.Progress)
		if errors.Is(err, discord.ErrSectionNotFound) {
			return fmt.Errorf("%w (available: %s)", err, sectionNames(sections))
		}
		title = discordSection
	default:
		renderSections(s.out.Writer(), sections)
		if !discordList {
			s.out.Highlight("Run again with --all or --section NAME to export")
		}
		return nil
	}

	res, err := finish(s, title, out, err)
	if err != nil {
		s.notifier.SendError("Discord harvest failed", err.Error())
		return err
	}
	s.report(display, res)
	return nil
}

// finish saves an outcome, keeping a partial one when the scan failed midway
func finish(s *session, title string, out discord.Outcome, err error) (tui.Result, error) {
	if err != nil {
		if errors.Is(err, discord.ErrSectionNotFound) || out.Emojis == nil || out.Emojis.Len() == 0 {
			return tui.Result{}, err
		}
		s.log.WithError(err).Warn("Harvest failed, saving what was collected")
	}
	return s.save(title, out.Label, out.Emojis, out.Result.Reason)
}

func runDiscordTUI(s *session, src *discord.Source) error {
	t := tui.NewTUI("Discord", s.cfg.Output.PreviewCount, src.Cancel)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	var results []tui.Result
	errCh := make(chan error, 1)
	go func() {
		err := pickLoop(ctx, s, src, t, &results)
		if err != nil {
			t.LogError("Discord harvest failed: %v", err)
		}
		errCh <- err
		t.Done()
	}()

	stopOnTimeout := context.AfterFunc(s.ctx, t.Stop)
	defer stopOnTimeout()

	startErr := t.Start()
	cancel()
	src.Cancel()
	runErr := <-errCh

	if startErr != nil {
		return fmt.Errorf("terminal interface: %w", startErr)
	}
	if runErr != nil {
		s.notifier.SendError("Discord harvest failed", runErr.Error())
		return runErr
	}

	display := ui.NewProgressDisplay(s.out.Writer(), "discord", false)
	for _, r := range results {
		s.report(display, r)
	}
	if len(results) == 0 {
		s.out.Warning("Nothing exported")
	}
	return nil
}

// pickLoop discovers the sections and runs what the user picks. Rescan starts
// discovery over from the top of the picker.
func pickLoop(ctx context.Context, s *session, src *discord.Source, t *tui.TUI, results *[]tui.Result) error {
rescan:
	for {
		t.Status("Scanning emoji picker for servers")
		sections, err := src.Discover(ctx, t.Progress)
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case errors.Is(err, errs.ErrCancelled):
			// a partial list would look complete, so only Rescan and Cancel are offered
			t.ShowSections(nil)
			t.Warn(fmt.Sprintf("Section scan cancelled after %d sections", len(sections)))
			t.Status("Scan cancelled. Rescan or cancel.")
		case err != nil:
			return err
		case len(sections) == 0:
			return fmt.Errorf("no emoji sections found in the picker")
		default:
			t.ShowSections(sections)
		}

		var choice tui.Choice
		select {
		case choice = <-t.Choices():
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		}

		var out discord.Outcome
		var title string
		switch choice.Kind {
		case tui.ChoiceCancel:
			return nil
		case tui.ChoiceRescan:
			continue rescan
		case tui.ChoiceAll:
			t.Status(fmt.Sprintf("Downloading all %d servers", len(sections)))
			out, err = src.All(ctx, sections, t.Progress)
			title = "all servers"
		case tui.ChoiceSection:
			t.Status(fmt.Sprintf("Loading emojis from %q", choice.Section))
			out, err = src.Section(ctx, sections, choice.Section, t.Progress)
			title = choice.Section
		}

		res, err := finish(s, title, out, err)
		if err != nil {
			return err
		}
		*results = append(*results, res)
		t.ShowResult(res)
		return nil
	}
}

// renderSections prints the discovered sections as a table
func renderSections(w io.Writer, sections []harvest.Section) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "Server", "Offset"})
	for i, sec := range sections {
		tw.AppendRow(table.Row{i + 1, sec.Name, fmt.Sprintf("%.0f", sec.Offset)})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d servers", len(sections)), ""})
	tw.SetStyle(table.StyleRounded)
	tw.Render()
}

// sectionNames lists section names for error messages
func sectionNames(sections []harvest.Section) string {
	names := make([]string, len(sections))
	for i, sec := range sections {
		names[i] = sec.Name
	}
	return strings.Join(names, ", ")
}
