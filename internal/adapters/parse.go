package adapters

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parsePrice converts an upstream price value to a non-negative float.
// Upstream APIs deliver prices as JSON numbers or as strings ("24.99");
// anything unparseable maps to 0.
func parsePrice(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		f, _ = d.Float64()
	default:
		return 0
	}
	if f < 0 {
		return 0
	}
	return f
}

// parsePriceString parses a price string, reporting whether it was valid
func parsePriceString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	if f < 0 {
		return 0, false
	}
	return f, true
}
