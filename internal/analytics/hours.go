package analytics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"floristDashboard/models"
)

// HourShare is the share of orders created during one hour of the day.
type HourShare struct {
	Hour    int     `json:"hour"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label"` // percent with the locale decimal separator
}

// HourHistogram groups orders by the hour of created_at and reports each
// hour's share of the total, rounded half up to one decimal. Hours without
// orders are omitted and an empty input yields an empty result. Equal counts
// always publish equal shares; the rounded shares may add up to 100 +/- 0.1
// per hour.
func HourHistogram(orders []models.Order, loc *time.Location, sep string) []HourShare {
	total := len(orders)
	if total == 0 {
		return []HourShare{}
	}
	var counts [24]int
	for _, o := range orders {
		t := o.CreatedAt
		if loc != nil {
			t = t.In(loc)
		}
		counts[t.Hour()]++
	}

	if sep == "" {
		sep = "."
	}
	hundred := decimal.NewFromInt(100)
	denom := decimal.NewFromInt(int64(total))
	out := make([]HourShare, 0, 24)
	for h, c := range counts {
		if c == 0 {
			continue
		}
		pct := decimal.NewFromInt(int64(c)).Mul(hundred).Div(denom).Round(1)
		out = append(out, HourShare{
			Hour:    h,
			Count:   c,
			Percent: pct.InexactFloat64(),
			Label:   strings.Replace(pct.StringFixed(1), ".", sep, 1),
		})
	}
	return out
}
