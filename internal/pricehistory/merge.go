// Package pricehistory maintains per-product price time series: one sample
// per calendar date, oldest first, capped to a retention window.
package pricehistory

import (
	"sort"
	"time"

	"github.com/stylefeed/catalog-service/internal/types"
)

// RetentionCap is the maximum number of price samples kept per product.
// Oldest entries are evicted first.
const RetentionCap = 90

// DateFormat is the calendar-date layout used for history entries
const DateFormat = "2006-01-02"

// Today returns the current calendar date in UTC
func Today(now time.Time) string {
	return now.UTC().Format(DateFormat)
}

// Merge integrates an observed price for a date into an existing history.
// If a sample already exists for the date its price is replaced; a second
// sample for the same date is never appended. The result is sorted oldest
// first and truncated to RetentionCap entries from the newest end.
// The input slice is not mutated.
func Merge(history []types.PricePoint, date string, price float64) []types.PricePoint {
	merged := make([]types.PricePoint, 0, len(history)+1)

	replaced := false
	for _, point := range history {
		if point.Date == date {
			merged = append(merged, types.PricePoint{Date: date, Price: price})
			replaced = true
			continue
		}
		merged = append(merged, point)
	}
	if !replaced {
		merged = append(merged, types.PricePoint{Date: date, Price: price})
	}

	// Entries should already be in order; sorting is defensive against
	// histories written by older code.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})

	if len(merged) > RetentionCap {
		merged = merged[len(merged)-RetentionCap:]
	}
	return merged
}

// Seed creates the initial history for a newly catalogued product
func Seed(date string, price float64) []types.PricePoint {
	return []types.PricePoint{{Date: date, Price: price}}
}
