package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/trezcool/mahudhurio/core"
)

type (
	// SeriesPoint is one session's attendance rate in the per-session series.
	SeriesPoint struct {
		Day      time.Time `json:"day"`
		CourseID int       `json:"course_id"`
		Label    string    `json:"label"` // e.g. "Mar 01 (Algebra)"

		PresentCount  int `json:"present_count"`  // distinct present-equivalent students
		RecordedCount int `json:"recorded_count"` // distinct students with any record
		TotalStudents int `json:"total_students"`
		Rate          int `json:"attendance_rate"`
	}

	// Stats are a group's aggregate attendance statistics.
	//
	// OverallRate is present-equivalent records over all records; it is blind
	// to students who never produced a record. ActualRate divides by the
	// potential attendance (students x sessions) and therefore accounts for
	// them, so ActualRate <= OverallRate whenever uncovered absences exist.
	Stats struct {
		TotalStudents       int `json:"total_students"`
		TotalSessions       int `json:"total_sessions"`
		TotalPresent        int `json:"total_present"`
		TotalRecords        int `json:"total_records"`
		PotentialAttendance int `json:"potential_attendance"`
		OverallRate         int `json:"overall_rate"`
		ActualRate          int `json:"actual_rate"`

		Series []SeriesPoint `json:"series"`
	}
)

// Aggregate computes a group's statistics from its records, roster and
// session calendar. It returns nil when the group has no students or no
// session days: there is nothing to chart, and nil is the explicit
// "no stats" signal callers render as such. It never panics on empty or
// partially loaded inputs.
func Aggregate(records []Record, roster []Student, sessionDays []time.Time, loc *time.Location) *Stats {
	totalStudents := len(roster)
	totalSessions := len(sessionDays)
	if totalStudents == 0 || totalSessions == 0 {
		return nil
	}

	stats := &Stats{
		TotalStudents:       totalStudents,
		TotalSessions:       totalSessions,
		PotentialAttendance: totalStudents * totalSessions,
	}
	for _, r := range records {
		stats.TotalRecords++
		if r.Status.CountsPresent() {
			stats.TotalPresent++
		}
	}
	stats.OverallRate = rate(stats.TotalPresent, stats.TotalRecords)
	stats.ActualRate = rate(stats.TotalPresent, stats.PotentialAttendance)
	stats.Series = buildSeries(records, totalStudents, loc)
	return stats
}

type sessionKey struct {
	day      string
	courseID int
}

// buildSeries groups records by (calendar day, session id) and computes each
// session's attendance rate over distinct student ids.
func buildSeries(records []Record, totalStudents int, loc *time.Location) []SeriesPoint {
	type sessionAcc struct {
		day      time.Time
		name     string
		recorded map[int]struct{}
		present  map[int]struct{}
	}
	sessions := make(map[sessionKey]*sessionAcc)

	for _, r := range records {
		if r.CourseStart.IsZero() || r.CourseID == 0 {
			continue // malformed reference, skipped rather than aborting the series
		}
		key := sessionKey{day: core.DayKey(r.CourseStart, loc), courseID: r.CourseID}
		acc, ok := sessions[key]
		if !ok {
			acc = &sessionAcc{
				day:      core.DayOf(r.CourseStart, loc),
				name:     r.CourseName,
				recorded: make(map[int]struct{}),
				present:  make(map[int]struct{}),
			}
			sessions[key] = acc
		}
		if r.StudentID == 0 {
			continue
		}
		acc.recorded[r.StudentID] = struct{}{}
		if r.Status.CountsPresent() {
			acc.present[r.StudentID] = struct{}{}
		}
	}

	series := make([]SeriesPoint, 0, len(sessions))
	for key, acc := range sessions {
		label := acc.day.Format("Jan 02")
		if acc.name != "" {
			label += " (" + acc.name + ")"
		}
		series = append(series, SeriesPoint{
			Day:           acc.day,
			CourseID:      key.courseID,
			Label:         label,
			PresentCount:  len(acc.present),
			RecordedCount: len(acc.recorded),
			TotalStudents: totalStudents,
			Rate:          rate(len(acc.present), totalStudents),
		})
	}

	// Stable ordering: ascending by day, session id breaking same-day ties.
	sort.Slice(series, func(i, j int) bool {
		if !series[i].Day.Equal(series[j].Day) {
			return series[i].Day.Before(series[j].Day)
		}
		return series[i].CourseID < series[j].CourseID
	})
	return series
}

// Trend directions.
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "no change"
)

type Trend struct {
	Direction string `json:"direction"`
	Delta     int    `json:"delta"` // absolute rate difference between the last two sessions
}

func (t Trend) String() string {
	switch t.Direction {
	case TrendUp:
		return fmt.Sprintf("Trending up by %d%% in the last session", t.Delta)
	case TrendDown:
		return fmt.Sprintf("Trending down by %d%% in the last session", t.Delta)
	default:
		return "No change in the last session"
	}
}

// Trend compares the last two series points. The second return is false when
// there are fewer than two points (insufficient data) or stats are nil.
func (s *Stats) Trend() (Trend, bool) {
	if s == nil || len(s.Series) < 2 {
		return Trend{}, false
	}
	latest := s.Series[len(s.Series)-1].Rate
	previous := s.Series[len(s.Series)-2].Rate
	delta := latest - previous
	switch {
	case delta > 0:
		return Trend{Direction: TrendUp, Delta: delta}, true
	case delta < 0:
		return Trend{Direction: TrendDown, Delta: -delta}, true
	default:
		return Trend{Direction: TrendFlat}, true
	}
}
