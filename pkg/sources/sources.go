// Package sources holds what the Slack and Discord harvests share: turning
// configured passes into harvest settings and snapshots into extractors.
package sources

import (
	"context"
	"fmt"

	"emojiharvest/pkg/config"
	"emojiharvest/pkg/export"
	"emojiharvest/pkg/extract"
	"emojiharvest/pkg/harvest"
	"emojiharvest/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

// Snapshotter returns the HTML currently rendered by the page or container
type Snapshotter func(ctx context.Context) (string, error)

// Pass converts a configured pass into harvest settings
func Pass(name string, p config.PassConfig, dir harvest.Direction) harvest.Config {
	return harvest.Config{
		Name:               name,
		MaxAttempts:        p.MaxAttempts,
		StabilityThreshold: p.StabilityThreshold,
		Step: harvest.Step{
			Pixels: p.StepPixels,
			Ratio:  p.StepRatio,
			ToEnd:  p.StepToEnd,
		},
		Direction:   dir,
		SettleDelay: p.SettleDelay,
		StallDelay:  p.StallDelay,
		StartDelay:  p.StartDelay,
	}
}

// Extractor parses each snapshot and hands the document to items
func Extractor(snap Snapshotter, items func(*goquery.Document) []harvest.Item) harvest.Extractor {
	if snap == nil {
		return nil
	}
	return func(ctx context.Context) ([]harvest.Item, error) {
		markup, err := snap(ctx)
		if err != nil {
			return nil, err
		}
		doc, err := extract.Parse(markup)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot: %w", err)
		}
		return items(doc), nil
	}
}

// LogPreview logs the size of an export and its first n names
func LogPreview(log logger.Logger, label string, e *export.Emojis, n int) {
	shown, more := e.Preview(n)
	names := make([]string, len(shown))
	for i, entry := range shown {
		names[i] = entry.Name
	}
	log.InfoWithFields(fmt.Sprintf("Processed %d emojis", e.Len()), map[string]interface{}{
		"source":  label,
		"preview": names,
		"more":    more,
	})
}
