package pricehistory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/catalog-service/internal/types"
)

func TestMergeAppendsNewDate(t *testing.T) {
	history := []types.PricePoint{{Date: "2026-08-01", Price: 100}}

	merged := Merge(history, "2026-08-02", 80)

	require.Len(t, merged, 2)
	assert.Equal(t, types.PricePoint{Date: "2026-08-01", Price: 100}, merged[0])
	assert.Equal(t, types.PricePoint{Date: "2026-08-02", Price: 80}, merged[1])
}

func TestMergeIsIdempotentForSameDateAndPrice(t *testing.T) {
	history := []types.PricePoint{{Date: "2026-08-01", Price: 100}}

	once := Merge(history, "2026-08-02", 80)
	twice := Merge(once, "2026-08-02", 80)

	assert.Equal(t, once, twice)
	require.Len(t, twice, 2)
}

func TestMergeReplacesSameDatePrice(t *testing.T) {
	history := []types.PricePoint{
		{Date: "2026-08-01", Price: 100},
		{Date: "2026-08-02", Price: 80},
	}

	merged := Merge(history, "2026-08-02", 75)

	require.Len(t, merged, 2)
	assert.Equal(t, 75.0, merged[1].Price)
}

func TestMergeSortsOutOfOrderHistory(t *testing.T) {
	history := []types.PricePoint{
		{Date: "2026-08-03", Price: 90},
		{Date: "2026-08-01", Price: 100},
	}

	merged := Merge(history, "2026-08-02", 95)

	require.Len(t, merged, 3)
	assert.Equal(t, "2026-08-01", merged[0].Date)
	assert.Equal(t, "2026-08-02", merged[1].Date)
	assert.Equal(t, "2026-08-03", merged[2].Date)
}

func TestMergeEvictsOldestBeyondRetentionCap(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var history []types.PricePoint
	for i := 0; i < RetentionCap+20; i++ {
		day := base.AddDate(0, 0, i).Format(DateFormat)
		history = Merge(history, day, float64(i))
	}

	require.Len(t, history, RetentionCap)
	// The oldest surviving entry is the one 90 days back from the newest.
	assert.Equal(t, base.AddDate(0, 0, 20).Format(DateFormat), history[0].Date)
	assert.Equal(t, base.AddDate(0, 0, RetentionCap+19).Format(DateFormat), history[len(history)-1].Date)
}

func TestMergeNeverExceedsCapUnderRepeatedMerges(t *testing.T) {
	var history []types.PricePoint
	for i := 0; i < 500; i++ {
		date := fmt.Sprintf("2026-%02d-%02d", i%12+1, i%28+1)
		history = Merge(history, date, float64(i))
		assert.LessOrEqual(t, len(history), RetentionCap)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	history := []types.PricePoint{{Date: "2026-08-01", Price: 100}}

	Merge(history, "2026-08-01", 50)

	assert.Equal(t, 100.0, history[0].Price)
}

func TestTodayUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+12", 12*3600)
	// 2026-08-31 08:00 +12 is 2026-08-30 20:00 UTC.
	now := time.Date(2026, 8, 31, 8, 0, 0, 0, loc)
	assert.Equal(t, "2026-08-30", Today(now))
}

func TestSeed(t *testing.T) {
	seeded := Seed("2026-08-31", 49.99)
	require.Len(t, seeded, 1)
	assert.Equal(t, types.PricePoint{Date: "2026-08-31", Price: 49.99}, seeded[0])
}
