package analytics

import (
	"encoding/json"
	"fmt"
	"time"
)

// Absent is returned by OptionalDuration accessors when there is no value.
const Absent = -1

// OptionalDuration is a duration that may be missing, e.g. the average of a
// stage no order has reached yet.
type OptionalDuration struct {
	d     time.Duration
	valid bool
}

// SomeDuration wraps a present duration.
func SomeDuration(d time.Duration) OptionalDuration {
	return OptionalDuration{d: d, valid: true}
}

// NoDuration is the absent value.
func NoDuration() OptionalDuration {
	return OptionalDuration{}
}

func (o OptionalDuration) Valid() bool { return o.valid }

// Duration returns the value and whether it is present.
func (o OptionalDuration) Duration() (time.Duration, bool) {
	return o.d, o.valid
}

// Hours returns the whole hours, or Absent.
func (o OptionalDuration) Hours() int {
	if !o.valid {
		return Absent
	}
	return int(o.d / time.Hour)
}

// Minutes returns the minutes past the whole hours, or Absent.
func (o OptionalDuration) Minutes() int {
	if !o.valid {
		return Absent
	}
	return int((o.d % time.Hour) / time.Minute)
}

// String renders H:MM, or "-" when absent.
func (o OptionalDuration) String() string {
	if !o.valid {
		return "-"
	}
	return fmt.Sprintf("%d:%02d", o.Hours(), o.Minutes())
}

type durationJSON struct {
	Seconds int64 `json:"seconds"`
	Hours   int   `json:"hours"`
	Minutes int   `json:"minutes"`
}

// MarshalJSON encodes an absent duration as null.
func (o OptionalDuration) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(durationJSON{Seconds: int64(o.d / time.Second), Hours: o.Hours(), Minutes: o.Minutes()})
}

func (o *OptionalDuration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = NoDuration()
		return nil
	}
	var v durationJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = SomeDuration(time.Duration(v.Seconds) * time.Second)
	return nil
}
