// Package slack harvests the custom emoji list of a Slack workspace from its
// emoji customization page.
package slack

import (
	"context"
	"fmt"

	"emojiharvest/pkg/browser"
	"emojiharvest/pkg/config"
	errs "emojiharvest/pkg/errors"
	"emojiharvest/pkg/export"
	"emojiharvest/pkg/extract"
	"emojiharvest/pkg/harvest"
	"emojiharvest/pkg/logger"
	"emojiharvest/pkg/sources"
)

// Label names the Slack export file
const Label = "slack"

const previewInLog = 5

// Host is the browser surface a Slack harvest needs
type Host interface {
	Navigate(ctx context.Context, url string) error
	// Container returns the emoji list's scroll container
	Container(ctx context.Context) (harvest.Container, error)
	// Snapshot returns the HTML of the whole page
	Snapshot(ctx context.Context) (string, error)
}

// Outcome is the result of a Slack harvest
type Outcome struct {
	Emojis *export.Emojis
	Result harvest.Result
}

// Source harvests one workspace
type Source struct {
	host      Host
	cfg       config.SlackConfig
	harvester *harvest.Harvester
	log       logger.Logger
}

// New creates a Slack source
func New(host Host, cfg config.SlackConfig, h *harvest.Harvester, log logger.Logger) *Source {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Source{
		host:      host,
		cfg:       cfg,
		harvester: h,
		log:       log.WithField("source", Label),
	}
}

// URL returns the customization page of the configured workspace
func (s *Source) URL() string {
	return fmt.Sprintf(s.cfg.URLPattern, s.cfg.Workspace)
}

// Passes returns the fast forward pass and the slow backward pass
func (s *Source) Passes(progress func(harvest.Progress)) (harvest.Config, harvest.Config) {
	fast := sources.Pass("fast", s.cfg.FastPass, harvest.Forward)
	fast.Progress = progress

	slow := sources.Pass("slow", s.cfg.SlowPass, harvest.Backward)
	slow.RangeEnd = harvest.Bound(0)
	slow.Progress = progress
	return fast, slow
}

// Harvest opens the workspace's emoji page unless navigate is false, then
// runs the two-pass harvest and builds the export.
func (s *Source) Harvest(ctx context.Context, navigate bool, progress func(harvest.Progress)) (Outcome, error) {
	if navigate {
		if s.cfg.Workspace == "" {
			return Outcome{}, errs.New(errs.ErrorTypeConfig, "slack workspace is required")
		}
		if err := s.host.Navigate(ctx, s.URL()); err != nil {
			return Outcome{}, err
		}
	}

	c, err := s.host.Container(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("locate emoji list: %w", err)
	}

	s.log.Info("Resetting scroll position")
	if err := c.SetScrollTop(ctx, 0); err != nil {
		return Outcome{}, fmt.Errorf("reset scroll position: %w", err)
	}

	fast, slow := s.Passes(progress)
	extractor := sources.Extractor(s.host.Snapshot, extract.SlackItems)

	res, err := s.harvester.TwoPass(ctx, c, extractor, fast, slow)
	if err != nil {
		return Outcome{Result: res, Emojis: export.FromItems(res.Items)}, err
	}

	emojis := export.FromItems(res.Items)
	sources.LogPreview(s.log, Label, emojis, previewInLog)
	return Outcome{Emojis: emojis, Result: res}, nil
}

// Cancel stops the running harvest at its next iteration
func (s *Source) Cancel() {
	s.harvester.Cancel()
}

// BrowserHost adapts a browser page to Host
type BrowserHost struct {
	Page   *browser.Page
	Query  browser.Query
	Lookup browser.LookupConfig
}

// NewBrowserHost looks for the emoji list with the configured selectors
func NewBrowserHost(page *browser.Page, cfg *config.Config) *BrowserHost {
	return &BrowserHost{
		Page:  page,
		Query: browser.Query{Selectors: cfg.Slack.Selectors},
		Lookup: browser.LookupConfig{
			Attempts: cfg.Browser.ContainerRetries,
			Delay:    cfg.Browser.ContainerRetryDelay,
		},
	}
}

func (b *BrowserHost) Navigate(ctx context.Context, url string) error {
	return b.Page.Navigate(ctx, url)
}

func (b *BrowserHost) Container(ctx context.Context) (harvest.Container, error) {
	c, err := b.Page.FindContainer(ctx, b.Query, b.Lookup)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (b *BrowserHost) Snapshot(ctx context.Context) (string, error) {
	return b.Page.Snapshot(ctx)
}
