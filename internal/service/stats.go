package service

import (
	"context"

	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/model"
)

// tableStatistics builds the standard counts for a featured/categorized
// entity table: exact totals via count queries, then a single streamed pass
// over the active rows' category column for the histogram.
func tableStatistics(ctx context.Context, gw *gateway.Gateway, table string) (*model.Statistics, error) {
	total, err := gw.From(table).Count(ctx)
	if err != nil {
		return nil, classify(err, "Failed to load statistics")
	}

	active, err := gw.From(table).Eq("is_active", true).Count(ctx)
	if err != nil {
		return nil, classify(err, "Failed to load statistics")
	}

	// Featured counts only among active rows.
	featured, err := gw.From(table).Eq("featured", true).Eq("is_active", true).Count(ctx)
	if err != nil {
		return nil, classify(err, "Failed to load statistics")
	}

	var cats []struct {
		Category string `db:"category"`
	}
	if err := gw.From(table).Select("category").Eq("is_active", true).All(ctx, &cats); err != nil {
		return nil, classify(err, "Failed to load statistics")
	}
	byCategory := make(map[string]int64, len(cats))
	for _, c := range cats {
		byCategory[c.Category]++
	}

	return &model.Statistics{
		Total:      total,
		Active:     active,
		Inactive:   total - active,
		Featured:   featured,
		ByCategory: byCategory,
	}, nil
}

// encodeListColumns re-encodes JSON-decoded array values ([]interface{})
// into StringList so the gateway can bind them as JSON text.
func encodeListColumns(patch map[string]interface{}, cols []string) {
	for _, col := range cols {
		raw, ok := patch[col]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case []interface{}:
			list := make(model.StringList, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					list = append(list, s)
				}
			}
			patch[col] = list
		case []string:
			patch[col] = model.StringList(v)
		}
	}
}
