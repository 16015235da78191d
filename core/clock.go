package core

import (
	"time"

	"github.com/pkg/errors"
)

// Clock abstracts "now" so classification and late-marking stay testable.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewClock() Clock { return realClock{} }

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

const dayLayout = "2006-01-02"

// DayKey formats t's calendar day in loc. Two timestamps belong to the same
// session day iff their keys match.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) == DayKey(b, loc)
}

// DayOf truncates t to midnight of its calendar day in loc.
func DayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// apiTimeLayouts lists the timestamp shapes the backend has been seen
// emitting. DRF serializes with and without sub-seconds and zone offsets.
var apiTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dayLayout,
}

// ParseAPITime parses an API timestamp into loc. Layouts without an explicit
// offset are assumed to be UTC, matching the backend's storage convention.
func ParseAPITime(s string, loc *time.Location) (time.Time, error) {
	s = CleanString(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range apiTimeLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339 || layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.UTC)
		}
		if err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, errors.Errorf("unparsable timestamp %q", s)
}
