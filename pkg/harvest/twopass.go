package harvest

import (
	"context"
	"fmt"

	errs "emojiharvest/pkg/errors"
)

// TwoPass runs a fast pass followed by a slow pass over the same container,
// sharing one set of seen keys. Items that were only rendered briefly while
// racing forward are picked up on the slower return trip. After both passes
// a final sample is taken and the container is scrolled back to the top.
func (h *Harvester) TwoPass(ctx context.Context, c Container, extract Extractor, fast, slow Config) (Result, error) {
	if c == nil {
		return Result{Reason: ReasonExhausted}, errs.ErrContainerNotFound
	}
	ctx, log, done := h.begin(ctx)
	defer done()

	st := newState()
	total := Result{}

	for _, pass := range []Config{fast, slow} {
		res, err := h.scan(ctx, log, st, c, extract, pass)
		total.Attempts += res.Attempts
		total.Reason = res.Reason
		total.Offset = res.Offset
		if err != nil {
			total.Items = st.collected
			return total, fmt.Errorf("%s pass: %w", pass.Name, err)
		}
		if res.Reason == ReasonCancelled {
			total.Items = st.collected
			return total, nil
		}
	}

	added := h.sample(ctx, log, st, extract)
	if err := c.SetScrollTop(ctx, 0); err != nil {
		log.WithError(err).Warn("Failed to reset scroll position")
	} else {
		total.Offset = 0
	}

	log.InfoWithFields("Two-pass harvest finished", map[string]interface{}{
		"collected":   len(st.collected),
		"final_added": added,
		"attempts":    total.Attempts,
	})
	total.Items = st.collected
	return total, nil
}
