package harvest

import (
	"context"
	"fmt"
	"sort"
	"time"

	errs "emojiharvest/pkg/errors"
	"emojiharvest/pkg/logger"
)

// Section is a named region of a list starting at Offset
type Section struct {
	Name   string
	Offset float64
}

// SectionLocator returns the section headers currently rendered in the container
type SectionLocator func(ctx context.Context) ([]Section, error)

// SectionConfig controls section-bounded scans
type SectionConfig struct {
	Scan Config
	// EnterDelay is the pause after jumping to a section's offset
	EnterDelay time.Duration
	// BetweenSections is the pause between consecutive sections in ScanSections
	BetweenSections time.Duration
}

// SortSections returns a copy of sections ordered by offset
func SortSections(sections []Section) []Section {
	sorted := append([]Section(nil), sections...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return sorted
}

// SectionOf returns the name of the nearest section starting at or before
// offset, or "" when offset precedes every section. sections must be sorted.
func SectionOf(sections []Section, offset float64) string {
	i := sort.Search(len(sections), func(i int) bool {
		return sections[i].Offset > offset
	})
	if i == 0 {
		return ""
	}
	return sections[i-1].Name
}

// ScanSection harvests the i-th section (in offset order). The scan is bounded
// by the next section's offset, or by the content extent for the last
// section, and only items labeled with the section's name are kept.
func (h *Harvester) ScanSection(ctx context.Context, c Container, extract Extractor, sections []Section, i int, cfg SectionConfig) (Result, error) {
	if c == nil {
		return Result{Reason: ReasonExhausted}, errs.ErrContainerNotFound
	}
	sorted := SortSections(sections)
	if i < 0 || i >= len(sorted) {
		return Result{}, errs.New(errs.ErrorTypeConfig, fmt.Sprintf("section index %d out of range (%d sections)", i, len(sorted)))
	}

	ctx, log, done := h.begin(ctx)
	defer done()

	st := newState()
	res, err := h.scanSection(ctx, log, st, c, extract, sorted, i, cfg)
	res.Items = st.collected
	return res, err
}

// ScanSections harvests every section in offset order, pausing between
// sections. Items are concatenated in section order; a key found in an
// earlier section is not repeated. The Reason is that of the last section
// scanned, or ReasonCancelled.
func (h *Harvester) ScanSections(ctx context.Context, c Container, extract Extractor, sections []Section, cfg SectionConfig) (Result, error) {
	if c == nil {
		return Result{Reason: ReasonExhausted}, errs.ErrContainerNotFound
	}
	sorted := SortSections(sections)

	ctx, log, done := h.begin(ctx)
	defer done()

	st := newState()
	total := Result{Reason: ReasonExhausted}
	for i := range sorted {
		if h.Cancelled() {
			total.Reason = ReasonCancelled
			break
		}
		if i > 0 {
			if err := h.sleep(ctx, cfg.BetweenSections); err != nil {
				total.Reason = ReasonCancelled
				break
			}
		}

		res, err := h.scanSection(ctx, log, st, c, extract, sorted, i, cfg)
		total.Attempts += res.Attempts
		total.Reason = res.Reason
		total.Offset = res.Offset
		if err != nil {
			total.Items = st.collected
			return total, fmt.Errorf("section %q: %w", sorted[i].Name, err)
		}
		if res.Reason == ReasonCancelled {
			break
		}
	}

	total.Items = st.collected
	return total, nil
}

func (h *Harvester) scanSection(ctx context.Context, log logger.Logger, st *state, c Container, extract Extractor, sorted []Section, i int, cfg SectionConfig) (Result, error) {
	target := sorted[i]
	log = log.WithFields(map[string]interface{}{
		"section":        target.Name,
		"section_offset": target.Offset,
	})
	before := len(st.collected)

	if err := c.SetScrollTop(ctx, target.Offset); err != nil {
		if ctx.Err() != nil {
			return Result{Reason: ReasonCancelled}, nil
		}
		return Result{}, fmt.Errorf("jump to section: %w", err)
	}
	if err := h.sleep(ctx, cfg.EnterDelay); err != nil {
		return Result{Reason: ReasonCancelled, Offset: target.Offset}, nil
	}

	end, err := sectionEnd(ctx, c, sorted, i)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Reason: ReasonCancelled, Offset: target.Offset}, nil
		}
		return Result{Offset: target.Offset}, err
	}

	filtered := onlySection(extract, target.Name)
	// The rows at the section start are visible right after the jump.
	h.sample(ctx, log, st, filtered)

	scanCfg := cfg.Scan
	scanCfg.Direction = Forward
	scanCfg.RangeEnd = Bound(end)
	if scanCfg.Name == "" {
		scanCfg.Name = target.Name
	}

	res, err := h.scan(ctx, log, st, c, filtered, scanCfg)
	if err == nil {
		log.InfoWithFields("Section harvested", map[string]interface{}{
			"items":  len(st.collected) - before,
			"reason": string(res.Reason),
		})
	}
	return res, err
}

func sectionEnd(ctx context.Context, c Container, sorted []Section, i int) (float64, error) {
	if i+1 < len(sorted) {
		return sorted[i+1].Offset, nil
	}
	extent, err := c.ScrollHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("read content extent: %w", err)
	}
	return extent, nil
}

func onlySection(extract Extractor, name string) Extractor {
	if extract == nil {
		return nil
	}
	return func(ctx context.Context) ([]Item, error) {
		items, err := extract(ctx)
		if err != nil {
			return nil, err
		}
		kept := items[:0:0]
		for _, it := range items {
			if it.Section == name {
				kept = append(kept, it)
			}
		}
		return kept, nil
	}
}

// DiscoverSections scrolls the whole list from the top, recording each
// section header the first time it is rendered. It stops at the end of the
// content, after cfg.MaxAttempts steps, or on cancellation, and returns the
// sections ordered by offset.
func (h *Harvester) DiscoverSections(ctx context.Context, c Container, locate SectionLocator, cfg Config) ([]Section, Reason, error) {
	if c == nil {
		return nil, ReasonExhausted, errs.ErrContainerNotFound
	}
	ctx, log, done := h.begin(ctx)
	defer done()
	log = log.WithField("pass", "discover")

	if locate == nil {
		log.WithError(errs.ErrExtractionUnavailable).Warn("No section locator, nothing to discover")
		return nil, ReasonExhausted, nil
	}

	if err := c.SetScrollTop(ctx, 0); err != nil {
		if ctx.Err() != nil {
			return nil, ReasonCancelled, nil
		}
		return nil, ReasonExhausted, fmt.Errorf("reset scroll offset: %w", err)
	}
	start := cfg.StartDelay
	if start <= 0 {
		start = cfg.SettleDelay
	}
	if err := h.sleep(ctx, start); err != nil {
		return nil, ReasonCancelled, nil
	}

	found := make(map[string]struct{})
	var sections []Section
	record := func() {
		headers, err := locate(ctx)
		if err != nil {
			log.WithError(err).Warn("Section lookup failed, treating sample as empty")
			return
		}
		for _, s := range headers {
			if s.Name == "" {
				continue
			}
			if _, ok := found[s.Name]; ok {
				continue
			}
			found[s.Name] = struct{}{}
			sections = append(sections, s)
		}
	}

	scanCfg := cfg
	scanCfg.Direction = Forward
	reason := ReasonExhausted
	attempts := 0
	for {
		if h.Cancelled() {
			reason = ReasonCancelled
			break
		}
		record()
		if h.Cancelled() {
			reason = ReasonCancelled
			break
		}

		pos, err := c.ScrollTop(ctx)
		if err != nil {
			return SortSections(sections), reason, fmt.Errorf("read scroll offset: %w", err)
		}
		visible, _ := c.ClientHeight(ctx)
		extent, _ := c.ScrollHeight(ctx)
		if cfg.Progress != nil {
			cfg.Progress(Progress{
				Pass:        "discover",
				Collected:   len(sections),
				Attempt:     attempts,
				MaxAttempts: cfg.MaxAttempts,
				Offset:      pos,
			})
		}
		if pos+visible >= extent {
			reason = ReasonRangeEnd
			break
		}
		if attempts >= cfg.MaxAttempts {
			break
		}

		if _, _, err := advance(ctx, c, scanCfg); err != nil {
			if ctx.Err() != nil {
				reason = ReasonCancelled
				break
			}
			return SortSections(sections), reason, err
		}
		if err := h.sleep(ctx, cfg.SettleDelay); err != nil {
			reason = ReasonCancelled
			break
		}
		attempts++
	}

	log.InfoWithFields("Section discovery finished", map[string]interface{}{
		"sections": len(sections),
		"reason":   string(reason),
		"attempts": attempts,
	})
	return SortSections(sections), reason, nil
}
