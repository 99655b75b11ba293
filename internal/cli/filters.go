package cli

import (
	"context"
	"strings"

	"github.com/rshade/stockdesk/internal/inventory"
	"github.com/rshade/stockdesk/internal/logging"
)

// FilterComparisons keeps rows whose SKU or name contains search, case-insensitively.
// An empty search returns rows unchanged. A warning is logged when nothing matches.
func FilterComparisons(ctx context.Context, rows []inventory.Comparison, search string) []inventory.Comparison {
	log := logging.FromContext(ctx)

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return rows
	}

	out := make([]inventory.Comparison, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.SKU), needle) || strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}

	log.Debug().Ctx(ctx).
		Str("component", "cli").
		Str("operation", "filter_comparisons").
		Str("search", search).
		Int("before", len(rows)).
		Int("after", len(out)).
		Msg("applied filter")

	if len(out) == 0 && len(rows) > 0 {
		log.Warn().Ctx(ctx).
			Str("component", "cli").
			Str("operation", "filter_comparisons").
			Int("original_count", len(rows)).
			Msg("no rows match search")
	}
	return out
}
