package analytics

import (
	"time"

	"floristDashboard/models"
)

// Workday describes when the shop opens. Stages that cross midnight are
// credited only with the part of the next work day they consumed.
type Workday struct {
	Start    time.Duration // offset of opening time from midnight
	Location *time.Location
}

// DefaultWorkday opens at 08:00 in the local zone.
func DefaultWorkday() Workday {
	return Workday{Start: 8 * time.Hour, Location: time.Local}
}

func (w Workday) loc(fallback time.Time) *time.Location {
	if w.Location != nil {
		return w.Location
	}
	return fallback.Location()
}

// StageDuration returns the credited time between two lifecycle stamps.
// On the same calendar date it is plain subtraction. When later falls on a
// later date, it is later's time of day minus the opening time, never negative.
func (w Workday) StageDuration(earlier, later time.Time) time.Duration {
	loc := w.loc(earlier)
	earlier, later = earlier.In(loc), later.In(loc)

	ey, em, ed := earlier.Date()
	ly, lm, ld := later.Date()
	if ey == ly && em == lm && ed == ld {
		return later.Sub(earlier)
	}
	laterDay := time.Date(ly, lm, ld, 0, 0, 0, 0, loc)
	if laterDay.Before(earlier) {
		// later precedes earlier: credit nothing
		return 0
	}
	// wall clock, not elapsed time: DST days are 23 or 25 hours long
	d := wallClock(later) - w.Start
	if d < 0 {
		return 0
	}
	return d
}

// StageAverages holds the mean credited duration of each fulfillment stage.
type StageAverages struct {
	CreateToCompose  OptionalDuration `json:"create_to_compose"`
	ComposeToDeliver OptionalDuration `json:"compose_to_deliver"`
	CreateToDeliver  OptionalDuration `json:"create_to_deliver"`
}

type durationMean struct {
	sum time.Duration
	n   int64
}

func (m *durationMean) add(d time.Duration) {
	m.sum += d
	m.n++
}

func (m durationMean) value() OptionalDuration {
	if m.n == 0 {
		return NoDuration()
	}
	return SomeDuration(m.sum / time.Duration(m.n))
}

// AverageStages averages each stage over the orders that carry both of its
// stamps. Orders missing a stamp are left out of that stage only.
func AverageStages(orders []models.Order, w Workday) StageAverages {
	var toCompose, toDeliver, total durationMean
	for i := range orders {
		o := &orders[i]
		if o.ComposedAt != nil {
			toCompose.add(w.StageDuration(o.CreatedAt, *o.ComposedAt))
		}
		if o.DeliveredAt != nil {
			total.add(w.StageDuration(o.CreatedAt, *o.DeliveredAt))
			if o.ComposedAt != nil {
				toDeliver.add(w.StageDuration(*o.ComposedAt, *o.DeliveredAt))
			}
		}
	}
	return StageAverages{
		CreateToCompose:  toCompose.value(),
		ComposeToDeliver: toDeliver.value(),
		CreateToDeliver:  total.value(),
	}
}

func wallClock(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
}
