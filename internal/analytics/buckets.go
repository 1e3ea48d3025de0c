package analytics

import (
	"sort"
	"strconv"
	"time"

	"floristDashboard/models"
)

// Granularity is the width of one time-distribution bucket.
type Granularity int

const (
	GranularityHour Granularity = iota
	GranularityDay
	GranularityMonth
	GranularityYear
)

const (
	dailyAgeLimit   = 120 * 24 * time.Hour
	monthlyAgeLimit = 730 * 24 * time.Hour
)

func (g Granularity) String() string {
	switch g {
	case GranularityHour:
		return "hour"
	case GranularityDay:
		return "day"
	case GranularityMonth:
		return "month"
	default:
		return "year"
	}
}

func (g Granularity) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// SelectGranularity picks the finest rule that matches, in order: hourly for
// today; daily for short periods or data younger than 120 days; monthly for
// yearly periods or data younger than 730 days; yearly otherwise.
func SelectGranularity(p Period, earliest, now time.Time) Granularity {
	age := now.Sub(earliest)
	switch {
	case p == PeriodToday:
		return GranularityHour
	case p.forcesDaily() || age < dailyAgeLimit:
		return GranularityDay
	case p.forcesMonthly() || age < monthlyAgeLimit:
		return GranularityMonth
	default:
		return GranularityYear
	}
}

// EarliestCreated returns the oldest created_at, or now for an empty set.
func EarliestCreated(orders []models.Order, now time.Time) time.Time {
	if len(orders) == 0 {
		return now
	}
	earliest := orders[0].CreatedAt
	for _, o := range orders[1:] {
		if o.CreatedAt.Before(earliest) {
			earliest = o.CreatedAt
		}
	}
	return earliest
}

// Bucket is one labeled group of the time distribution.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func bucketStart(t time.Time, g Granularity) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case GranularityHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case GranularityDay:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case GranularityMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
}

// BucketLabel formats a bucket start. Monthly labels are zero padded
// ("2023.01") so that they sort chronologically as strings.
func BucketLabel(start time.Time, g Granularity) string {
	switch g {
	case GranularityHour:
		return strconv.Itoa(start.Hour())
	case GranularityDay:
		return start.Format("2006-01-02")
	case GranularityMonth:
		return start.Format("2006.01")
	default:
		return strconv.Itoa(start.Year())
	}
}

// Distribution counts orders per bucket in ascending time order. Empty
// buckets are not emitted.
func Distribution(orders []models.Order, g Granularity, loc *time.Location) []Bucket {
	counts := make(map[int64]int)
	starts := make(map[int64]time.Time)
	for _, o := range orders {
		t := o.CreatedAt
		if loc != nil {
			t = t.In(loc)
		}
		s := bucketStart(t, g)
		counts[s.Unix()]++
		starts[s.Unix()] = s
	}
	keys := make([]int64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{Label: BucketLabel(starts[k], g), Count: counts[k]})
	}
	return out
}
