package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emojiharvest/pkg/browser"
	"emojiharvest/pkg/config"
	errs "emojiharvest/pkg/errors"
	"emojiharvest/pkg/export"
	"emojiharvest/pkg/harvest"
	"emojiharvest/pkg/logger"
	"emojiharvest/pkg/storage"
	"emojiharvest/pkg/ui"
	"emojiharvest/pkg/ui/tui"
)

// errNoEmojis is returned instead of writing an empty export
var errNoEmojis = errs.New(errs.ErrorTypeExport, "no emojis found, nothing exported")

// session is one browser tab plus the harvester driving it
type session struct {
	cfg       *config.Config
	log       logger.Logger
	page      *browser.Page
	harvester *harvest.Harvester
	store     *storage.Manager
	notifier  *ui.Notifier
	out       *ui.Printer

	ctx     context.Context
	cancel  context.CancelFunc
	started time.Time
}

func newSession(parent context.Context, cfg *config.Config) (*session, error) {
	log := logger.GetLogger()

	store, err := storage.NewManager(cfg.Output.Directory, cfg.Output.OverwriteExisting)
	if err != nil {
		return nil, fmt.Errorf("prepare output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(parent, cfg.Browser.Timeout)
	page, err := browser.Open(ctx, cfg.Browser, log)
	if err != nil {
		cancel()
		return nil, err
	}

	logger.LogComponentStart("browser", map[string]interface{}{
		"headless": cfg.Browser.Headless,
		"remote":   cfg.Browser.RemoteURL != "",
	})

	out := printer()
	return &session{
		cfg:       cfg,
		log:       log,
		page:      page,
		harvester: harvest.New(log),
		store:     store,
		notifier:  ui.NewNotifier(cfg.Notifications, out.Writer()),
		out:       out,
		ctx:       ctx,
		cancel:    cancel,
		started:   time.Now(),
	}, nil
}

func (s *session) Close() {
	s.page.Close()
	s.cancel()
	logger.LogComponentStop("browser", fmt.Sprintf("closed, %d exports written", s.store.GetWrittenCount()))
}

// cancelOnInterrupt turns the first Ctrl+C into a graceful cancel that keeps
// what was collected; a second one exits immediately.
func (s *session) cancelOnInterrupt() func() {
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sig:
		case <-done:
			return
		}
		s.log.Warn("Interrupted, finishing with what was collected")
		s.harvester.Cancel()
		select {
		case <-sig:
			os.Exit(130)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
	}
}

// save writes an export and returns what the result panel shows
func (s *session) save(title, label string, e *export.Emojis, reason harvest.Reason) (tui.Result, error) {
	if e == nil || e.Len() == 0 {
		s.log.WithField("section", title).Warn("No emojis found")
		return tui.Result{}, errNoEmojis
	}
	if name := export.Filename(label); !s.cfg.Output.OverwriteExisting && s.store.Exists(name) {
		s.log.WithField("file", name).Info("Export exists, writing a numbered copy")
	}
	path, err := export.Write(s.store, label, e)
	if err != nil {
		return tui.Result{}, err
	}
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	s.log.InfoWithFields("Export written", map[string]interface{}{
		"path":    path,
		"emojis":  e.Len(),
		"reason":  string(reason),
		"section": title,
	})
	logger.LogMetrics(label, s.started, map[string]interface{}{
		"emojis": e.Len(),
		"reason": string(reason),
	})
	return tui.Result{Title: title, Emojis: e, Path: path, Size: size, Reason: reason}, nil
}

// report prints the preview and summary of a finished export
func (s *session) report(display *ui.ProgressDisplay, r tui.Result) {
	ui.PrintPreview(s.out.Writer(), r.Title, r.Emojis, s.cfg.Output.PreviewCount)
	display.Complete(r.Title, r.Emojis.Len(), r.Path, r.Size, r.Reason)
	s.notifier.SendSuccess("Export complete", fmt.Sprintf("%d emojis from %s saved to %s", r.Emojis.Len(), r.Title, r.Path))
}
