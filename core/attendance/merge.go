package attendance

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core"
)

// checkInSkew corrects stored check-in timestamps, which run two hours ahead
// of the institution wall clock, before a time-of-day is shown.
const checkInSkew = -2 * time.Hour

// MergeForDate joins a roster with the attendance records of one calendar day
// (in loc). Every roster student appears exactly once; students without a
// matching record resolve to absent. Duplicate records for a student should
// not occur but resolve last-write-wins. Inputs are not mutated.
func MergeForDate(roster []Student, records []Record, day time.Time, loc *time.Location) []ResolvedRow {
	dayKey := core.DayKey(day, loc)

	type match struct {
		recordID int
		status   Status
		checkIn  null.Time
	}
	byStudent := make(map[int]match, len(records))
	for _, r := range records {
		if r.CourseStart.IsZero() {
			continue // unparsable session timestamp, excluded upstream as well
		}
		if core.DayKey(r.CourseStart, loc) != dayKey {
			continue
		}
		byStudent[r.StudentID] = match{recordID: r.ID, status: r.Status, checkIn: r.CheckIn}
	}

	rows := make([]ResolvedRow, 0, len(roster))
	for _, s := range roster {
		row := ResolvedRow{
			StudentID: s.ID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			FullName:  s.FullName,
			Email:     s.Email,
			GroupID:   s.Group.ID,
			GroupName: s.Group.Name,
			Status:    string(StatusAbsent),
			CheckIn:   NoCheckIn,
		}
		if m, ok := byStudent[s.ID]; ok {
			row.Status = string(m.status)
			row.RecordID = null.IntFrom(m.recordID)
			if m.checkIn.Valid {
				row.CheckIn = m.checkIn.Time.In(loc).Add(checkInSkew).Format("15:04:05")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// NoSessions is the aggregate summary for a group without any session days.
const NoSessions = "No Sessions"

// MergeOverall joins a roster with all of a group's records, producing one
// summary row per student. The session denominator is the session calendar
// (sessionDays), not the record count: days a student has no record on still
// count against them.
func MergeOverall(roster []Student, records []Record, sessionDays []time.Time) []ResolvedRow {
	total := len(sessionDays)

	presentBy := make(map[int]int, len(roster))
	for _, r := range records {
		if r.Status.CountsPresent() {
			presentBy[r.StudentID]++
		}
	}

	rows := make([]ResolvedRow, 0, len(roster))
	for _, s := range roster {
		present := presentBy[s.ID]
		row := ResolvedRow{
			StudentID:       s.ID,
			FirstName:       s.FirstName,
			LastName:        s.LastName,
			FullName:        s.FullName,
			Email:           s.Email,
			GroupID:         s.Group.ID,
			GroupName:       s.Group.Name,
			PresentSessions: present,
			TotalSessions:   total,
		}
		if total == 0 {
			row.Status = NoSessions
		} else {
			row.Status = fmt.Sprintf("%d%% Present (%d/%d)", rate(present, total), present, total)
		}
		rows = append(rows, row)
	}
	return rows
}

// SessionDaysFromRecords derives the distinct session days a record set
// spans, in loc. Fallback for callers without a session calendar at hand.
func SessionDaysFromRecords(records []Record, loc *time.Location) []time.Time {
	seen := make(map[string]struct{}, len(records))
	var days []time.Time
	for _, r := range records {
		if r.CourseStart.IsZero() {
			continue
		}
		key := core.DayKey(r.CourseStart, loc)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			days = append(days, core.DayOf(r.CourseStart, loc))
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// rate is the rounded percentage p/total, 0 when total is 0.
func rate(p, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(p) * 100 / float64(total)))
}
