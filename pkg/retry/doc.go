// Package retry provides backoff and retry helpers for browser operations that
// can fail transiently, such as locating a scroll container before the page
// has finished rendering.
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//		return page.FindContainer(ctx, selectors)
//	}, &retry.Config{
//		MaxAttempts: 10,
//		Backoff:     &retry.ConstantBackoff{Delay: time.Second},
//	})
//
// Wait is also the context-aware sleep used between scroll steps.
package retry
