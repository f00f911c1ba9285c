// Package browser drives a Chrome tab through chromedp and exposes the
// scroll containers of chat web UIs to the harvester.
package browser

import (
	"context"
	"fmt"
	"time"

	"emojiharvest/pkg/config"
	errs "emojiharvest/pkg/errors"
	"emojiharvest/pkg/logger"
	"emojiharvest/pkg/retry"

	"github.com/chromedp/chromedp"
)

// Page is a single browser tab
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.BrowserConfig
	log    logger.Logger
}

// allocatorOptions builds the exec allocator flags for a local Chrome.
// A user data directory keeps the chat sessions the user is logged into.
func allocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 900),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	return opts
}

// Open starts or attaches to Chrome and opens a tab. Close must be called
// to release it.
func Open(ctx context.Context, cfg config.BrowserConfig, log logger.Logger) (*Page, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if cfg.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, allocatorOptions(cfg)...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	// The first Run starts the browser
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, errs.Wrap(errs.ErrorTypeBrowser, "failed to start browser", err)
	}

	log.InfoWithFields("Browser ready", map[string]interface{}{
		"remote":   cfg.RemoteURL != "",
		"headless": cfg.Headless,
	})

	return &Page{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		cfg: cfg,
		log: log,
	}, nil
}

// Close closes the tab and, for a local Chrome, the browser
func (p *Page) Close() {
	p.cancel()
}

// run executes actions on the tab. Contexts derived from the tab's context
// are used directly; any other context only bounds how long we wait.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if chromedp.FromContext(ctx) != nil {
		return chromedp.Run(ctx, actions...)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate loads url and waits for the body to be ready
func (p *Page) Navigate(ctx context.Context, url string) error {
	p.log.InfoWithFields("Navigating", map[string]interface{}{"url": url})
	err := p.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeBrowser, "navigation failed", err)
	}
	return nil
}

// Evaluate runs a script in the page and decodes its result into res.
// res may be nil when the result is not needed.
func (p *Page) Evaluate(ctx context.Context, script string, res interface{}) error {
	return p.run(ctx, chromedp.Evaluate(script, res))
}

// Snapshot returns the outer HTML of the whole document
func (p *Page) Snapshot(ctx context.Context) (string, error) {
	var markup string
	if err := p.run(ctx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return "", errs.Wrap(errs.ErrorTypeBrowser, "document snapshot failed", err)
	}
	return markup, nil
}

// Wait pauses for d unless ctx ends first
func (p *Page) Wait(ctx context.Context, d time.Duration) error {
	return retry.Wait(ctx, d)
}
