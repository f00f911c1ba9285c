// Package virtuallist is an in-memory virtualized list used to exercise
// harvesters without a browser. Only rows intersecting the viewport are
// "rendered", the way chat clients keep their emoji lists small.
package virtuallist

import (
	"context"
	"fmt"
	"html"
	"math"
	"strings"
	"sync"

	"emojiharvest/pkg/harvest"
)

// Row is either a section header (Header set) or an item
type Row struct {
	Header  string
	Key     string
	Name    string
	Locator string
}

// Header returns a header row
func Header(name string) Row { return Row{Header: name} }

// Items returns n item rows named <prefix>_<i>
func Items(prefix string, n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		name := fmt.Sprintf("%s_%d", prefix, i)
		url := fmt.Sprintf("https://emoji.example.com/%s/%s.png", prefix, name)
		rows[i] = Row{Key: url, Name: name, Locator: url}
	}
	return rows
}

// List is a scrollable list of fixed-height rows. It is safe for concurrent use.
type List struct {
	mu        sync.Mutex
	rows      []Row
	sections  []string // nearest preceding header per row
	rowHeight float64
	visible   float64
	pos       float64
	backward  bool
	detached  bool

	backwardOnly map[string]bool
	scrolls      []float64
	samples      int

	// OnSample runs after every Extract with the 1-based sample number
	OnSample func(n int)
}

// New builds a list with the given viewport and row heights
func New(visible, rowHeight float64, rows ...Row) *List {
	l := &List{
		rows:         rows,
		rowHeight:    rowHeight,
		visible:      visible,
		backwardOnly: make(map[string]bool),
	}
	l.sections = make([]string, len(rows))
	current := ""
	for i, r := range rows {
		if r.Header != "" {
			current = r.Header
		}
		l.sections[i] = current
	}
	return l
}

// Build flattens groups of rows, handy for composing headers and items
func Build(groups ...[]Row) []Row {
	var rows []Row
	for _, g := range groups {
		rows = append(rows, g...)
	}
	return rows
}

// RevealOnlyBackward hides the given keys unless the last scroll moved up
func (l *List) RevealOnlyBackward(keys ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		l.backwardOnly[k] = true
	}
}

// Detach simulates the container being removed from the page
func (l *List) Detach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.detached = true
}

func (l *List) extent() float64 {
	if l.detached {
		return 0
	}
	return float64(len(l.rows)) * l.rowHeight
}

func (l *List) maxScroll() float64 {
	return math.Max(l.extent()-l.visible, 0)
}

// ScrollTop implements harvest.Container
func (l *List) ScrollTop(ctx context.Context) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.detached {
		return 0, nil
	}
	return l.pos, nil
}

// SetScrollTop implements harvest.Container, clamping like a browser does
func (l *List) SetScrollTop(ctx context.Context, top float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scrolls = append(l.scrolls, top)
	if l.detached {
		return nil
	}
	top = math.Min(math.Max(top, 0), l.maxScroll())
	if top != l.pos {
		l.backward = top < l.pos
	}
	l.pos = top
	return nil
}

// ScrollHeight implements harvest.Container
func (l *List) ScrollHeight(ctx context.Context) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.extent(), nil
}

// ClientHeight implements harvest.Container
func (l *List) ClientHeight(ctx context.Context) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.detached {
		return 0, nil
	}
	return l.visible, nil
}

// rendered returns the indexes of rows intersecting the viewport
func (l *List) rendered() []int {
	if l.detached || l.rowHeight <= 0 {
		return nil
	}
	var idx []int
	for i := range l.rows {
		top := float64(i) * l.rowHeight
		if top < l.pos+l.visible && top+l.rowHeight > l.pos {
			idx = append(idx, i)
		}
	}
	return idx
}

func (l *List) hidden(r Row) bool {
	return l.backwardOnly[r.Key] && !l.backward
}

// Extract implements harvest.Extractor over the rendered item rows
func (l *List) Extract(ctx context.Context) ([]harvest.Item, error) {
	l.mu.Lock()
	var items []harvest.Item
	for _, i := range l.rendered() {
		r := l.rows[i]
		if r.Header != "" || l.hidden(r) {
			continue
		}
		items = append(items, harvest.Item{
			Key:     r.Key,
			Name:    r.Name,
			Locator: r.Locator,
			Section: l.sections[i],
		})
	}
	l.samples++
	n := l.samples
	hook := l.OnSample
	l.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return items, nil
}

// Headers implements harvest.SectionLocator over the rendered header rows
func (l *List) Headers(ctx context.Context) ([]harvest.Section, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []harvest.Section
	for _, i := range l.rendered() {
		if h := l.rows[i].Header; h != "" {
			out = append(out, harvest.Section{Name: h, Offset: float64(i) * l.rowHeight})
		}
	}
	return out, nil
}

// Sections returns every header in the list with its offset
func (l *List) Sections() []harvest.Section {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []harvest.Section
	for i, r := range l.rows {
		if r.Header != "" {
			out = append(out, harvest.Section{Name: r.Header, Offset: float64(i) * l.rowHeight})
		}
	}
	return out
}

// Scrolls returns every offset passed to SetScrollTop
func (l *List) Scrolls() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]float64(nil), l.scrolls...)
}

// Samples returns how many times Extract ran
func (l *List) Samples() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.samples
}

// Offset returns the current scroll offset
func (l *List) Offset() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pos
}

// RenderDiscord renders the viewport the way Discord's emoji picker marks it up.
// Every image carries its content offset in data-emojiharvest-offset.
func (l *List) RenderDiscord() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var b strings.Builder
	b.WriteString(`<div class="scroller-abc" data-emojiharvest-container="true">`)
	for _, i := range l.rendered() {
		r := l.rows[i]
		off := float64(i) * l.rowHeight
		switch {
		case r.Header != "":
			fmt.Fprintf(&b, `<div class="wrapper-1"><div class="headerLabel-x1" data-emojiharvest-offset="%g">%s</div></div>`,
				off, html.EscapeString(r.Header))
		case !l.hidden(r):
			fmt.Fprintf(&b, `<ul class="emojiRow"><li><img class="emoji" data-type="emoji" src="%s" alt=":%s:" data-emojiharvest-offset="%g"></li></ul>`,
				html.EscapeString(r.Locator), html.EscapeString(r.Name), off)
		}
	}
	b.WriteString(`</div>`)
	return b.String()
}

// RenderSlack renders the viewport the way Slack's customize page marks it up
func (l *List) RenderSlack() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var b strings.Builder
	b.WriteString(`<div class="c-virtual_list c-virtual_list--scrollbar"><div class="c-scrollbar__hider" data-emojiharvest-container="true">`)
	for _, i := range l.rendered() {
		r := l.rows[i]
		if r.Header != "" || l.hidden(r) {
			continue
		}
		fmt.Fprintf(&b, `<div class="c-virtual_list__item" data-qa="custom_emoji_item"><img src="%s" alt=":%s:"><span data-qa="custom_emoji_name">:%s:</span></div>`,
			html.EscapeString(r.Locator), html.EscapeString(r.Name), html.EscapeString(r.Name))
	}
	b.WriteString(`</div></div>`)
	return b.String()
}
