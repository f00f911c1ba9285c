// Package discord harvests custom emojis from Discord's emoji picker, one
// server section at a time or all at once.
package discord

import (
	"context"
	"errors"
	"fmt"

	"emojiharvest/pkg/browser"
	"emojiharvest/pkg/config"
	errs "emojiharvest/pkg/errors"
	"emojiharvest/pkg/export"
	"emojiharvest/pkg/extract"
	"emojiharvest/pkg/harvest"
	"emojiharvest/pkg/logger"
	"emojiharvest/pkg/retry"
	"emojiharvest/pkg/sources"

	"github.com/PuerkitoBio/goquery"
)

// AllLabel names the export holding every section
const AllLabel = "all_servers"

const (
	pickerScope    = `div[role="dialog"], div[class*="emojiPicker"]`
	pickerScroller = `div[class*="scroller"]`
	pickerButton   = `button[aria-label]`
	stampSelector  = `[class^="headerLabel"], img[src*="emoji"], img[data-type="emoji"]`
)

// ErrSectionNotFound is returned when a requested section was not discovered
var ErrSectionNotFound = errs.New(errs.ErrorTypeConfig, "section not found")

// Host is the browser surface a Discord harvest needs
type Host interface {
	Navigate(ctx context.Context, url string) error
	// Locate makes one attempt at finding the picker's scroller and returns
	// errs.ErrContainerNotFound when it is not open
	Locate(ctx context.Context) (harvest.Container, error)
	// OpenPicker clicks the emoji button and reports whether it found one
	OpenPicker(ctx context.Context) (bool, error)
	// Snapshot returns the scroller's HTML with content offsets stamped
	Snapshot(ctx context.Context) (string, error)
}

// Outcome is the result of harvesting one or more sections
type Outcome struct {
	Label  string
	Emojis *export.Emojis
	Result harvest.Result
}

// Source harvests the Discord emoji picker
type Source struct {
	host      Host
	cfg       config.DiscordConfig
	lookup    browser.LookupConfig
	harvester *harvest.Harvester
	log       logger.Logger
	sleep     harvest.Sleeper
}

// New creates a Discord source
func New(host Host, cfg *config.Config, h *harvest.Harvester, log logger.Logger) *Source {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Source{
		host: host,
		cfg:  cfg.Discord,
		lookup: browser.LookupConfig{
			Attempts: cfg.Browser.ContainerRetries,
			Delay:    cfg.Browser.ContainerRetryDelay,
		},
		harvester: h,
		log:       log.WithField("source", "discord"),
		sleep:     retry.Wait,
	}
}

// Open navigates to the configured Discord URL
func (s *Source) Open(ctx context.Context) error {
	return s.host.Navigate(ctx, s.cfg.URL)
}

// Container finds the picker's scroller, opening the picker when it is closed
func (s *Source) Container(ctx context.Context) (harvest.Container, error) {
	c, err := s.host.Locate(ctx)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, errs.ErrContainerNotFound) {
		return nil, err
	}

	opened, err := s.host.OpenPicker(ctx)
	if err != nil {
		return nil, err
	}
	if !opened {
		return nil, errs.New(errs.ErrorTypeContainerNotFound, "emoji picker is closed and no emoji button was found")
	}
	s.log.Info("Opened emoji picker")
	if err := s.sleep(ctx, s.cfg.PickerDelay); err != nil {
		return nil, err
	}

	c, err = retry.DoWithResult[harvest.Container](ctx, s.host.Locate, &retry.Config{
		MaxAttempts: s.lookup.Attempts,
		Backoff:     &retry.ConstantBackoff{Delay: s.lookup.Delay},
		Logger:      s.log,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeContainerNotFound, "emoji picker did not render", err)
	}
	return c, nil
}

// Discover scrolls the picker from the top and returns its sections in
// display order. Every call starts from scratch. A cancelled scan returns the
// sections found so far with an error matching errs.ErrCancelled.
func (s *Source) Discover(ctx context.Context, progress func(harvest.Progress)) ([]harvest.Section, error) {
	c, err := s.Container(ctx)
	if err != nil {
		return nil, err
	}

	cfg := sources.Pass("discover", s.cfg.Discovery, harvest.Forward)
	cfg.Progress = progress
	locate := func(ctx context.Context) ([]harvest.Section, error) {
		markup, err := s.host.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		doc, err := extract.Parse(markup)
		if err != nil {
			return nil, err
		}
		return extract.SectionHeaders(doc), nil
	}

	sections, reason, err := s.harvester.DiscoverSections(ctx, c, locate, cfg)
	if err != nil {
		return sections, err
	}
	if reason == harvest.ReasonCancelled {
		s.log.Warn(fmt.Sprintf("Section scan cancelled after %d sections", len(sections)))
		return sections, fmt.Errorf("section discovery: %w", errs.ErrCancelled)
	}
	s.log.InfoWithFields(fmt.Sprintf("Found %d sections", len(sections)), map[string]interface{}{
		"reason": string(reason),
	})
	return sections, nil
}

func (s *Source) sectionConfig(progress func(harvest.Progress)) harvest.SectionConfig {
	scan := sources.Pass("section", s.cfg.Section, harvest.Forward)
	scan.Progress = progress
	return harvest.SectionConfig{
		Scan:            scan,
		EnterDelay:      s.cfg.EnterDelay,
		BetweenSections: s.cfg.BetweenSections,
	}
}

func (s *Source) extractor(sections []harvest.Section) harvest.Extractor {
	sorted := harvest.SortSections(sections)
	return sources.Extractor(s.host.Snapshot, func(doc *goquery.Document) []harvest.Item {
		return extract.DiscordItems(doc, sorted)
	})
}

// Section harvests the named section
func (s *Source) Section(ctx context.Context, sections []harvest.Section, name string, progress func(harvest.Progress)) (Outcome, error) {
	sorted := harvest.SortSections(sections)
	idx := -1
	for i, sec := range sorted {
		if sec.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Outcome{}, fmt.Errorf("%q: %w", name, ErrSectionNotFound)
	}

	c, err := s.Container(ctx)
	if err != nil {
		return Outcome{}, err
	}

	s.log.Info(fmt.Sprintf("Loading emojis from %q...", name))
	res, err := s.harvester.ScanSection(ctx, c, s.extractor(sorted), sorted, idx, s.sectionConfig(progress))
	out := Outcome{Label: name, Emojis: export.FromItems(res.Items), Result: res}
	if err != nil {
		return out, err
	}
	s.log.Info(fmt.Sprintf("Loaded %d emojis from %q", out.Emojis.Len(), name))
	return out, nil
}

// All harvests every section in order into a single export
func (s *Source) All(ctx context.Context, sections []harvest.Section, progress func(harvest.Progress)) (Outcome, error) {
	c, err := s.Container(ctx)
	if err != nil {
		return Outcome{}, err
	}

	res, err := s.harvester.ScanSections(ctx, c, s.extractor(sections), sections, s.sectionConfig(progress))
	out := Outcome{Label: AllLabel, Emojis: export.FromItems(res.Items), Result: res}
	if err != nil {
		return out, err
	}
	sources.LogPreview(s.log, AllLabel, out.Emojis, 5)
	return out, nil
}

// Cancel stops the running scan at its next iteration
func (s *Source) Cancel() {
	s.harvester.Cancel()
}

// BrowserHost adapts a browser page to Host
type BrowserHost struct {
	Page *browser.Page

	container *browser.Container
}

// NewBrowserHost wraps page
func NewBrowserHost(page *browser.Page) *BrowserHost {
	return &BrowserHost{Page: page}
}

func (b *BrowserHost) Navigate(ctx context.Context, url string) error {
	return b.Page.Navigate(ctx, url)
}

func (b *BrowserHost) Locate(ctx context.Context) (harvest.Container, error) {
	c, err := b.Page.Locate(ctx, browser.Query{
		Scope:      pickerScope,
		Selectors:  []string{pickerScroller},
		Scrollable: true,
	})
	if err != nil {
		return nil, err
	}
	b.container = c
	return c, nil
}

func (b *BrowserHost) OpenPicker(ctx context.Context) (bool, error) {
	return b.Page.Click(ctx, pickerButton, "aria-label", "emoji")
}

func (b *BrowserHost) Snapshot(ctx context.Context) (string, error) {
	if b.container == nil {
		return "", errs.ErrContainerNotFound
	}
	if err := b.container.StampOffsets(ctx, stampSelector); err != nil {
		return "", err
	}
	return b.container.Snapshot(ctx)
}
