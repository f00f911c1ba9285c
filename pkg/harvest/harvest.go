package harvest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	errs "emojiharvest/pkg/errors"
	"emojiharvest/pkg/logger"
	"emojiharvest/pkg/retry"

	"github.com/google/uuid"
)

// Item is one entry discovered in a virtualized list
type Item struct {
	Key     string
	Name    string
	Locator string
	Section string
}

// Container is a scrollable element whose children are rendered lazily.
// Implementations report zero extents once the element is gone.
type Container interface {
	ScrollTop(ctx context.Context) (float64, error)
	SetScrollTop(ctx context.Context, top float64) error
	ScrollHeight(ctx context.Context) (float64, error)
	ClientHeight(ctx context.Context) (float64, error)
}

// Extractor returns the items currently rendered inside the container
type Extractor func(ctx context.Context) ([]Item, error)

// Reason explains why a scan stopped
type Reason string

const (
	ReasonExhausted Reason = "exhausted"
	ReasonStable    Reason = "stable"
	ReasonRangeEnd  Reason = "range_end"
	ReasonCancelled Reason = "cancelled"
)

// Direction of travel for a scan
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Step is the scroll delta applied each iteration. The effective delta is
// max(Pixels, floor(Ratio*visible)); ToEnd jumps straight to the end of travel.
type Step struct {
	Pixels float64
	Ratio  float64
	ToEnd  bool
}

func (s Step) delta(visible float64) float64 {
	return math.Max(s.Pixels, math.Floor(s.Ratio*visible))
}

// Progress is reported after every sample
type Progress struct {
	Pass        string
	Collected   int
	Attempt     int
	MaxAttempts int
	Offset      float64
}

// Config controls a single scan pass
type Config struct {
	// Name labels the pass in logs and progress reports
	Name string

	MaxAttempts int
	// StabilityThreshold is the number of consecutive samples without new
	// items that ends the scan. Zero disables stability termination.
	StabilityThreshold int

	Step      Step
	Direction Direction

	SettleDelay time.Duration
	// StallDelay is an extra pause after a sample that found nothing new
	StallDelay time.Duration
	// StartDelay is the pause after DiscoverSections resets to the top.
	// Zero falls back to SettleDelay.
	StartDelay time.Duration

	// RangeEnd bounds the scan. Forward scans stop once the viewport reaches
	// it, backward scans once the offset drops to it.
	RangeEnd *float64

	Progress func(Progress)
}

// Bound returns a pointer suitable for Config.RangeEnd
func Bound(v float64) *float64 { return &v }

// Result is the outcome of a scan
type Result struct {
	Items    []Item
	Reason   Reason
	Attempts int
	Offset   float64
}

// Keys returns the item keys in discovery order
func (r Result) Keys() []string {
	keys := make([]string, len(r.Items))
	for i, it := range r.Items {
		keys[i] = it.Key
	}
	return keys
}

// Sleeper pauses for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Option configures a Harvester
type Option func(*Harvester)

// WithSleeper replaces the settle wait, mostly for tests
func WithSleeper(s Sleeper) Option {
	return func(h *Harvester) { h.sleep = s }
}

// Harvester drives scans over virtualized lists. One scan may run at a time;
// Cancel may be called from any goroutine.
type Harvester struct {
	log   logger.Logger
	sleep Sleeper

	cancelled atomic.Bool
	mu        sync.Mutex
	stop      context.CancelFunc
}

// New creates a Harvester
func New(log logger.Logger, opts ...Option) *Harvester {
	if log == nil {
		log = logger.NewNopLogger()
	}
	h := &Harvester{log: log, sleep: retry.Wait}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Cancel stops the active scan at its next iteration boundary or settle wait.
// Items collected so far are returned with ReasonCancelled.
func (h *Harvester) Cancel() {
	h.cancelled.Store(true)
	h.mu.Lock()
	if h.stop != nil {
		h.stop()
	}
	h.mu.Unlock()
}

// Cancelled reports whether the current run has been cancelled
func (h *Harvester) Cancelled() bool {
	return h.cancelled.Load()
}

// begin starts a run: it clears the cancellation flag and derives a context
// that Cancel can interrupt.
func (h *Harvester) begin(ctx context.Context) (context.Context, logger.Logger, func()) {
	h.cancelled.Store(false)
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.stop = cancel
	h.mu.Unlock()

	log := h.log.WithField("harvest_id", uuid.NewString())
	return ctx, log, func() {
		h.mu.Lock()
		h.stop = nil
		h.mu.Unlock()
		cancel()
	}
}

// state is the per-run harvest state. It never outlives the public call that created it.
type state struct {
	seen       map[string]struct{}
	collected  []Item
	noProgress int
	lastCount  int
}

func newState() *state {
	return &state{seen: make(map[string]struct{})}
}

// merge appends unseen items in discovery order and returns how many were new
func (s *state) merge(items []Item) int {
	added := 0
	for _, it := range items {
		if it.Key == "" {
			continue
		}
		if _, ok := s.seen[it.Key]; ok {
			continue
		}
		s.seen[it.Key] = struct{}{}
		s.collected = append(s.collected, it)
		added++
	}
	return added
}

// observe updates the no-progress counter from the collected count
func (s *state) observe() {
	if len(s.collected) == s.lastCount {
		s.noProgress++
		return
	}
	s.noProgress = 0
	s.lastCount = len(s.collected)
}

// Scan scrolls the container step by step, sampling after each settle, until
// the range bound, the stability threshold or the attempt cap is reached.
func (h *Harvester) Scan(ctx context.Context, c Container, extract Extractor, cfg Config) (Result, error) {
	if c == nil {
		return Result{Reason: ReasonExhausted}, errs.ErrContainerNotFound
	}
	ctx, log, done := h.begin(ctx)
	defer done()

	st := newState()
	res, err := h.scan(ctx, log, st, c, extract, cfg)
	res.Items = st.collected
	return res, err
}

func (h *Harvester) scan(ctx context.Context, log logger.Logger, st *state, c Container, extract Extractor, cfg Config) (Result, error) {
	log = log.WithFields(map[string]interface{}{
		"pass":      cfg.Name,
		"direction": cfg.Direction.String(),
	})
	if extract == nil {
		log.WithError(errs.ErrExtractionUnavailable).Warn("Scanning without extraction")
	}

	res := Result{}
	st.noProgress = 0
	st.lastCount = len(st.collected)

	for res.Attempts < cfg.MaxAttempts {
		if h.Cancelled() {
			res.Reason = ReasonCancelled
			break
		}

		pos, visible, err := advance(ctx, c, cfg)
		if err != nil {
			if ctx.Err() != nil {
				res.Reason = ReasonCancelled
				break
			}
			res.Offset = pos
			return res, err
		}

		if err := h.sleep(ctx, cfg.SettleDelay); err != nil {
			res.Reason = ReasonCancelled
			break
		}

		h.sample(ctx, log, st, extract)
		st.observe()
		res.Attempts++

		// Re-read the offset: hosts clamp and may snap to row boundaries.
		if p, err := c.ScrollTop(ctx); err == nil {
			pos = p
		}
		res.Offset = pos

		if cfg.Progress != nil {
			cfg.Progress(Progress{
				Pass:        cfg.Name,
				Collected:   len(st.collected),
				Attempt:     res.Attempts,
				MaxAttempts: cfg.MaxAttempts,
				Offset:      pos,
			})
		}
		logger.LogHarvestProgress(log, cfg.Name, len(st.collected), res.Attempts, cfg.MaxAttempts)

		if cfg.RangeEnd != nil && rangeReached(cfg, pos, visible) {
			res.Reason = ReasonRangeEnd
			break
		}
		if cfg.StabilityThreshold > 0 && st.noProgress >= cfg.StabilityThreshold {
			res.Reason = ReasonStable
			break
		}

		if st.noProgress > 0 && cfg.StallDelay > 0 && res.Attempts < cfg.MaxAttempts {
			if err := h.sleep(ctx, cfg.StallDelay); err != nil {
				res.Reason = ReasonCancelled
				break
			}
		}
	}
	if res.Reason == "" {
		res.Reason = ReasonExhausted
	}

	log.InfoWithFields("Scan pass finished", map[string]interface{}{
		"reason":    string(res.Reason),
		"attempts":  res.Attempts,
		"collected": len(st.collected),
	})
	return res, nil
}

// sample runs the extractor once and merges the result. Extraction is best
// effort: an error counts as an empty sample.
func (h *Harvester) sample(ctx context.Context, log logger.Logger, st *state, extract Extractor) int {
	if extract == nil {
		return 0
	}
	items, err := extract(ctx)
	if err != nil {
		log.WithError(err).Warn("Extraction failed, treating sample as empty")
		return 0
	}
	return st.merge(items)
}

// advance moves the container one step and returns the offset it was asked
// to move to together with the visible extent.
func advance(ctx context.Context, c Container, cfg Config) (float64, float64, error) {
	pos, err := c.ScrollTop(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read scroll offset: %w", err)
	}
	visible, err := c.ClientHeight(ctx)
	if err != nil {
		return pos, 0, fmt.Errorf("read visible extent: %w", err)
	}
	extent, err := c.ScrollHeight(ctx)
	if err != nil {
		return pos, visible, fmt.Errorf("read content extent: %w", err)
	}

	target := nextOffset(cfg, pos, visible, extent)
	if err := c.SetScrollTop(ctx, target); err != nil {
		return pos, visible, fmt.Errorf("set scroll offset: %w", err)
	}
	return target, visible, nil
}

func nextOffset(cfg Config, pos, visible, extent float64) float64 {
	if cfg.Direction == Backward {
		floor := 0.0
		if cfg.RangeEnd != nil {
			floor = math.Max(*cfg.RangeEnd, 0)
		}
		if cfg.Step.ToEnd {
			return floor
		}
		return math.Max(pos-cfg.Step.delta(visible), floor)
	}

	limit := extent
	if cfg.RangeEnd != nil {
		limit = math.Min(*cfg.RangeEnd, extent)
	}
	if cfg.Step.ToEnd {
		return limit
	}
	return math.Min(pos+cfg.Step.delta(visible), limit)
}

func rangeReached(cfg Config, pos, visible float64) bool {
	if cfg.Direction == Backward {
		return pos <= *cfg.RangeEnd
	}
	return pos+visible >= *cfg.RangeEnd
}
