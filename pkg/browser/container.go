package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	errs "emojiharvest/pkg/errors"
	"emojiharvest/pkg/retry"

	"github.com/google/uuid"
)

// ContainerAttr marks the element a Container refers to
const ContainerAttr = "data-emojiharvest-container"

// OffsetAttr is stamped on elements by StampOffsets. It must match the
// attribute the extract package reads.
const OffsetAttr = "data-emojiharvest-offset"

// Query describes how to find a scroll container
type Query struct {
	// Scope, when set, is located first and Selectors are matched inside it
	Scope string
	// Selectors are tried in order; the first match wins
	Selectors []string
	// Scrollable skips elements whose content fits without scrolling
	Scrollable bool
}

// LookupConfig controls how long FindContainer keeps trying
type LookupConfig struct {
	Attempts int
	Delay    time.Duration
}

// Container is a scrollable element in the page. All reads report zero once
// the element has been removed from the document.
type Container struct {
	page     *Page
	id       string
	Selector string
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func jsStrings(s []string) string {
	if s == nil {
		s = []string{}
	}
	b, _ := json.Marshal(s)
	return string(b)
}

func (q Query) script(id string) string {
	return fmt.Sprintf(`(() => {
	const scope = %s ? document.querySelector(%s) : document;
	if (!scope) return "";
	for (const sel of %s) {
		for (const el of scope.querySelectorAll(sel)) {
			if (%t && el.scrollHeight <= el.clientHeight) continue;
			el.setAttribute(%s, %s);
			return sel;
		}
	}
	return "";
})()`, jsString(q.Scope), jsString(q.Scope), jsStrings(q.Selectors), q.Scrollable, jsString(ContainerAttr), jsString(id))
}

// Locate looks for the container once
func (p *Page) Locate(ctx context.Context, q Query) (*Container, error) {
	id := uuid.NewString()
	var matched string
	if err := p.Evaluate(ctx, q.script(id), &matched); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeBrowser, "container lookup script failed", err)
	}
	if matched == "" {
		return nil, errs.ErrContainerNotFound
	}
	return &Container{page: p, id: id, Selector: matched}, nil
}

// FindContainer retries Locate while the page renders
func (p *Page) FindContainer(ctx context.Context, q Query, lookup LookupConfig) (*Container, error) {
	c, err := retry.DoWithResult[*Container](ctx, func(ctx context.Context) (*Container, error) {
		return p.Locate(ctx, q)
	}, &retry.Config{
		MaxAttempts: lookup.Attempts,
		Backoff:     &retry.ConstantBackoff{Delay: lookup.Delay},
		RetryIf:     retry.DefaultRetryIf,
		Logger:      p.log,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeContainerNotFound, "no scroll container matched", err)
	}
	p.log.DebugWithFields("Found scroll container", map[string]interface{}{
		"selector": c.Selector,
	})
	return c, nil
}

func (c *Container) element() string {
	return fmt.Sprintf(`document.querySelector('[%s=%s]')`, ContainerAttr, jsString(c.id))
}

func (c *Container) number(ctx context.Context, prop string) (float64, error) {
	var v float64
	script := fmt.Sprintf(`(() => { const el = %s; return el ? el.%s : 0; })()`, c.element(), prop)
	if err := c.page.Evaluate(ctx, script, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// ScrollTop returns the current scroll offset
func (c *Container) ScrollTop(ctx context.Context) (float64, error) {
	return c.number(ctx, "scrollTop")
}

// ScrollHeight returns the content extent
func (c *Container) ScrollHeight(ctx context.Context) (float64, error) {
	return c.number(ctx, "scrollHeight")
}

// ClientHeight returns the visible extent
func (c *Container) ClientHeight(ctx context.Context) (float64, error) {
	return c.number(ctx, "clientHeight")
}

// SetScrollTop scrolls the container. The browser clamps the value.
func (c *Container) SetScrollTop(ctx context.Context, top float64) error {
	script := fmt.Sprintf(`(() => { const el = %s; if (el) el.scrollTop = %g; return true; })()`, c.element(), top)
	var ok bool
	return c.page.Evaluate(ctx, script, &ok)
}

// Attached reports whether the element is still in the document
func (c *Container) Attached(ctx context.Context) (bool, error) {
	var ok bool
	script := fmt.Sprintf(`%s !== null`, c.element())
	if err := c.page.Evaluate(ctx, script, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// StampOffsets writes each matching descendant's offset inside the scroll
// content to OffsetAttr, so snapshots can be placed against section bounds.
func (c *Container) StampOffsets(ctx context.Context, selector string) error {
	script := fmt.Sprintf(`(() => {
	const el = %s;
	if (!el) return 0;
	const base = el.getBoundingClientRect().top - el.scrollTop;
	let n = 0;
	for (const child of el.querySelectorAll(%s)) {
		child.setAttribute(%s, String(child.getBoundingClientRect().top - base));
		n++;
	}
	return n;
})()`, c.element(), jsString(selector), jsString(OffsetAttr))
	var n int
	return c.page.Evaluate(ctx, script, &n)
}

// Snapshot returns the container's outer HTML, or "" once it is gone
func (c *Container) Snapshot(ctx context.Context) (string, error) {
	var markup string
	script := fmt.Sprintf(`(() => { const el = %s; return el ? el.outerHTML : ""; })()`, c.element())
	if err := c.page.Evaluate(ctx, script, &markup); err != nil {
		return "", errs.Wrap(errs.ErrorTypeBrowser, "container snapshot failed", err)
	}
	return markup, nil
}

// Click clicks the first element whose attribute contains needle,
// compared case-insensitively. It reports whether anything was clicked.
func (p *Page) Click(ctx context.Context, selector, attr, needle string) (bool, error) {
	script := fmt.Sprintf(`(() => {
	const needle = %s.toLowerCase();
	const el = Array.from(document.querySelectorAll(%s))
		.find(e => (e.getAttribute(%s) || "").toLowerCase().includes(needle));
	if (!el) return false;
	el.click();
	return true;
})()`, jsString(needle), jsString(selector), jsString(attr))
	var clicked bool
	if err := p.Evaluate(ctx, script, &clicked); err != nil {
		return false, errs.Wrap(errs.ErrorTypeBrowser, "click failed", err)
	}
	return clicked, nil
}
