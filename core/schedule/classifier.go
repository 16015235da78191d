package schedule

import (
	"sort"
	"time"
)

// Timetable partitions a set of sessions by lifecycle state relative to an
// instant. The partition is total and disjoint: every input session lands in
// exactly one bucket.
type Timetable struct {
	Past     []Course
	Ongoing  []Course
	Upcoming []Course
}

// Classify partitions courses against now. It is a pure snapshot computation,
// cheap enough to re-derive on every clock tick as sessions start and end.
func Classify(courses []Course, now time.Time) Timetable {
	var tt Timetable
	for _, c := range courses {
		switch {
		case c.StartTime.After(now):
			tt.Upcoming = append(tt.Upcoming, c)
		case c.EndTime().Before(now):
			tt.Past = append(tt.Past, c)
		default:
			tt.Ongoing = append(tt.Ongoing, c)
		}
	}
	return tt
}

// Current returns the ongoing session, if any. A professor teaches one class
// at a time so Ongoing normally holds 0 or 1 entries; with overlapping
// schedules the earliest-starting one wins.
func (tt Timetable) Current() (Course, bool) {
	if len(tt.Ongoing) == 0 {
		return Course{}, false
	}
	cur := tt.Ongoing[0]
	for _, c := range tt.Ongoing[1:] {
		if c.StartTime.Before(cur.StartTime) {
			cur = c
		}
	}
	return cur, true
}

// SessionDays returns the distinct calendar days (midnight, loc) on which at
// least one of the given sessions is scheduled, in ascending order. This is
// the aggregation denominator: a day counts even when a student has no record
// on it.
func SessionDays(courses []Course, loc *time.Location) []time.Time {
	seen := make(map[string]time.Time, len(courses))
	for _, c := range courses {
		if c.StartTime.IsZero() {
			continue
		}
		day := c.StartTime.In(loc)
		y, m, d := day.Date()
		midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
		seen[midnight.Format("2006-01-02")] = midnight
	}
	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
