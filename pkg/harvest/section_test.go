package harvest_test

import (
	"context"
	"testing"
	"time"

	"emojiharvest/internal/virtuallist"
	errs "emojiharvest/pkg/errors"
	"emojiharvest/pkg/harvest"
	"emojiharvest/pkg/logger"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeSections lays out headers at offsets 0, 500 and 1200 with 50px rows
func threeSections() ([]virtuallist.Row, *virtuallist.List) {
	rows := virtuallist.Build(
		[]virtuallist.Row{virtuallist.Header("Alpha")},
		virtuallist.Items("alpha", 9),
		[]virtuallist.Row{virtuallist.Header("Beta")},
		virtuallist.Items("beta", 13),
		[]virtuallist.Row{virtuallist.Header("Gamma")},
		virtuallist.Items("gamma", 10),
	)
	return rows, virtuallist.New(200, 50, rows...)
}

func sectionConfig() harvest.SectionConfig {
	return harvest.SectionConfig{
		Scan: harvest.Config{
			MaxAttempts:        500,
			StabilityThreshold: 8,
			Step:               harvest.Step{Pixels: 30},
			SettleDelay:        150 * time.Millisecond,
		},
		EnterDelay:      time.Second,
		BetweenSections: 500 * time.Millisecond,
	}
}

func TestSectionOf(t *testing.T) {
	sections := []harvest.Section{
		{Name: "Alpha", Offset: 0},
		{Name: "Beta", Offset: 500},
		{Name: "Gamma", Offset: 1200},
	}

	tests := []struct {
		offset float64
		want   string
	}{
		{-1, ""},
		{0, "Alpha"},
		{499, "Alpha"},
		{500, "Beta"},
		{1199.5, "Beta"},
		{1200, "Gamma"},
		{99999, "Gamma"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, harvest.SectionOf(sections, tt.offset), "offset %v", tt.offset)
	}
	assert.Equal(t, "", harvest.SectionOf(nil, 10))
}

func TestSortSections(t *testing.T) {
	in := []harvest.Section{{Name: "c", Offset: 9}, {Name: "a", Offset: 1}, {Name: "b", Offset: 5}}
	out := harvest.SortSections(in)

	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].Name, out[1].Name, out[2].Name})
	assert.Equal(t, "c", in[0].Name, "input is not modified")
}

func TestScanSectionReturnsOnlyThatSection(t *testing.T) {
	h, rec, _ := newHarvester(t)
	rows, list := threeSections()

	res, err := h.ScanSection(context.Background(), list, list.Extract, list.Sections(), 1, sectionConfig())
	require.NoError(t, err)

	assert.Equal(t, harvest.ReasonRangeEnd, res.Reason)
	for _, it := range res.Items {
		assert.Equal(t, "Beta", it.Section)
	}
	if diff := cmp.Diff(keysOf(rows[11:24]), res.Keys()); diff != "" {
		t.Errorf("beta keys mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 500.0, list.Scrolls()[0])
	assert.Equal(t, 1, rec.count(time.Second), "enter delay")
	assert.GreaterOrEqual(t, res.Offset+200, 1200.0)
}

func TestScanSectionLastBoundedByContentExtent(t *testing.T) {
	h, rows := newHarvesterAndRows(t)
	list := virtuallist.New(200, 50, rows...)

	res, err := h.ScanSection(context.Background(), list, list.Extract, list.Sections(), 2, sectionConfig())
	require.NoError(t, err)

	assert.Equal(t, harvest.ReasonRangeEnd, res.Reason)
	assert.Equal(t, keysOf(rows[25:]), res.Keys())
	assert.Equal(t, 1550.0, res.Offset)
}

func newHarvesterAndRows(t *testing.T) (*harvest.Harvester, []virtuallist.Row) {
	h, _, _ := newHarvester(t)
	rows, _ := threeSections()
	return h, rows
}

func TestScanSectionIndexOutOfRange(t *testing.T) {
	h, _, _ := newHarvester(t)
	_, list := threeSections()

	_, err := h.ScanSection(context.Background(), list, list.Extract, list.Sections(), 3, sectionConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.New(errs.ErrorTypeConfig, ""))
}

func TestScanSectionUnsortedInput(t *testing.T) {
	h, rows := newHarvesterAndRows(t)
	list := virtuallist.New(200, 50, rows...)

	shuffled := []harvest.Section{
		{Name: "Gamma", Offset: 1200},
		{Name: "Alpha", Offset: 0},
		{Name: "Beta", Offset: 500},
	}
	res, err := h.ScanSection(context.Background(), list, list.Extract, shuffled, 0, sectionConfig())
	require.NoError(t, err)
	assert.Equal(t, keysOf(rows[1:10]), res.Keys())
}

func TestScanSections(t *testing.T) {
	h, rec, _ := newHarvester(t)
	rows, list := threeSections()

	res, err := h.ScanSections(context.Background(), list, list.Extract, list.Sections(), sectionConfig())
	require.NoError(t, err)

	if diff := cmp.Diff(keysOf(rows), res.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, harvest.ReasonRangeEnd, res.Reason)
	assert.Equal(t, 2, rec.count(500*time.Millisecond), "pause between sections")
	assert.Equal(t, 3, rec.count(time.Second), "enter delay per section")
}

func TestScanSectionsStopsOnCancel(t *testing.T) {
	h, _, _ := newHarvester(t)
	rows, list := threeSections()
	list.OnSample = func(n int) {
		if n == 3 {
			h.Cancel()
		}
	}

	res, err := h.ScanSections(context.Background(), list, list.Extract, list.Sections(), sectionConfig())
	require.NoError(t, err)

	assert.Equal(t, harvest.ReasonCancelled, res.Reason)
	for _, it := range res.Items {
		assert.Equal(t, "Alpha", it.Section)
	}
	assert.Subset(t, keysOf(rows[1:10]), res.Keys())
	assert.Equal(t, 3, list.Samples())
}

func TestDiscoverSections(t *testing.T) {
	h, _, _ := newHarvester(t)
	_, list := threeSections()
	require.NoError(t, list.SetScrollTop(context.Background(), 700))

	var last harvest.Progress
	sections, reason, err := h.DiscoverSections(context.Background(), list, list.Headers, harvest.Config{
		MaxAttempts: 200,
		Step:        harvest.Step{Pixels: 50, Ratio: 0.1},
		SettleDelay: 100 * time.Millisecond,
		Progress:    func(p harvest.Progress) { last = p },
	})
	require.NoError(t, err)

	assert.Equal(t, harvest.ReasonRangeEnd, reason)
	assert.Equal(t, []harvest.Section{
		{Name: "Alpha", Offset: 0},
		{Name: "Beta", Offset: 500},
		{Name: "Gamma", Offset: 1200},
	}, sections)
	assert.Equal(t, 3, last.Collected)
	assert.Equal(t, 0.0, list.Scrolls()[1], "discovery restarts from the top")
}

func TestDiscoverSectionsAttemptCap(t *testing.T) {
	h, _, _ := newHarvester(t)
	_, list := threeSections()

	sections, reason, err := h.DiscoverSections(context.Background(), list, list.Headers, harvest.Config{
		MaxAttempts: 3,
		Step:        harvest.Step{Pixels: 50},
	})
	require.NoError(t, err)

	assert.Equal(t, harvest.ReasonExhausted, reason)
	assert.Equal(t, []harvest.Section{{Name: "Alpha", Offset: 0}}, sections)
}

func TestDiscoverSectionsWithoutLocator(t *testing.T) {
	h, _, log := newHarvester(t)
	_, list := threeSections()

	sections, reason, err := h.DiscoverSections(context.Background(), list, nil, harvest.Config{MaxAttempts: 3})
	require.NoError(t, err)
	assert.Empty(t, sections)
	assert.Equal(t, harvest.ReasonExhausted, reason)
	assert.True(t, log.HasMessage("No section locator, nothing to discover"))
}

func TestDiscoverSectionsCancelled(t *testing.T) {
	h, _, log := newHarvester(t)
	_, list := threeSections()

	calls := 0
	locate := func(ctx context.Context) ([]harvest.Section, error) {
		calls++
		if calls == 2 {
			h.Cancel()
		}
		return list.Headers(ctx)
	}

	sections, reason, err := h.DiscoverSections(context.Background(), list, locate, harvest.Config{
		MaxAttempts: 200,
		Step:        harvest.Step{Pixels: 50},
	})
	require.NoError(t, err)

	assert.Equal(t, harvest.ReasonCancelled, reason)
	assert.Equal(t, []harvest.Section{{Name: "Alpha", Offset: 0}}, sections)
	assert.Equal(t, []float64{0, 50}, list.Scrolls(), "no scrolling after cancel")
	assert.Equal(t, 2, calls)

	msg, ok := log.FindMessage("Section discovery finished")
	require.True(t, ok)
	assert.Equal(t, "cancelled", msg.Fields["reason"])
}

func TestDiscoverSectionsCancelledDuringStartDelay(t *testing.T) {
	_, list := threeSections()
	ctx, cancel := context.WithCancel(context.Background())
	h := harvest.New(logger.NewNopLogger(), harvest.WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	sections, reason, err := h.DiscoverSections(ctx, list, list.Headers, harvest.Config{
		MaxAttempts: 200,
		Step:        harvest.Step{Pixels: 50},
	})
	require.NoError(t, err)

	assert.Equal(t, harvest.ReasonCancelled, reason)
	assert.Empty(t, sections)
	assert.Equal(t, []float64{0}, list.Scrolls())
}

func TestDiscoverSectionsStartDelay(t *testing.T) {
	h, rec, _ := newHarvester(t)
	_, list := threeSections()

	_, _, err := h.DiscoverSections(context.Background(), list, list.Headers, harvest.Config{
		MaxAttempts: 200,
		Step:        harvest.Step{Pixels: 50},
		SettleDelay: 100 * time.Millisecond,
		StartDelay:  time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.count(time.Second))
	rec.mu.Lock()
	first := rec.delays[0]
	rec.mu.Unlock()
	assert.Equal(t, time.Second, first, "start delay comes before the first sample")
}
