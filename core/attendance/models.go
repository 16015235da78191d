package attendance

import (
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/schedule"
)

// Status is the canonical attendance vocabulary. Providers normalize every
// external variant into one of these four values before the engine sees it.
type Status string

const (
	StatusPresent   Status = "present"
	StatusAbsent    Status = "absent"
	StatusLate      Status = "late"
	StatusJustified Status = "justified"
)

// statusAliases maps the vocabulary variants the backend and legacy clients
// emit onto the canonical values.
var statusAliases = map[string]Status{
	"present":           StatusPresent,
	"absent":            StatusAbsent,
	"late":              StatusLate,
	"justified":         StatusJustified,
	"justified absence": StatusJustified,
}

// NormalizeStatus maps an external status string to the canonical enum.
// Unknown values degrade to absent: a record whose status cannot be read
// must not inflate present counts.
func NormalizeStatus(s string) Status {
	if st, ok := statusAliases[core.CleanString(s, true)]; ok {
		return st
	}
	return StatusAbsent
}

// CountsPresent reports whether the status is present-equivalent for
// aggregate rate calculations.
func (s Status) CountsPresent() bool {
	return s == StatusPresent || s == StatusLate || s == StatusJustified
}

// Student is one roster entry, immutable per roster snapshot.
type Student struct {
	ID        int            `json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	FullName  string         `json:"full_name"`
	Email     string         `json:"email"`
	Group     schedule.Group `json:"student_group"`
}

// Record is one normalized attendance record. The session's start time and
// the student's group ride along so the engine never needs cross-lookups.
type Record struct {
	ID           int       `json:"id"`
	StudentID    int       `json:"student_id"`
	StudentGroup string    `json:"student_group"`
	CourseID     int       `json:"course_id"`
	CourseName   string    `json:"course_name"`
	CourseStart  time.Time `json:"course_start"` // institution-local; zero when the source timestamp was unparsable
	Status       Status    `json:"present_status"`
	CheckIn      null.Time `json:"time"`
}

// NoCheckIn is the placeholder check-in time for students without a record.
const NoCheckIn = "Not checked in"

// ResolvedRow is one student's attendance merged against a roster, for either
// a single day (Status holds a canonical enum value) or the aggregate view
// (Status holds a "N% Present (p/t)" summary). Not persisted.
type ResolvedRow struct {
	StudentID int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	GroupID   int    `json:"group_id"`
	GroupName string `json:"group"`

	Status   string   `json:"status"`
	CheckIn  string   `json:"time"`
	RecordID null.Int `json:"record_id"`

	PresentSessions int `json:"present_sessions"`
	TotalSessions   int `json:"total_sessions"`
}

// Justification is the explanatory note attached to a justified status,
// keyed by (student, calendar day).
type Justification struct {
	StudentID int       `json:"student_id"`
	Day       time.Time `json:"day"`
	Detail    string    `json:"detail"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupRecords filters records down to one group's, matching by the
// student's group name.
func GroupRecords(records []Record, groupName string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.StudentGroup == groupName {
			out = append(out, r)
		}
	}
	return out
}

// Groups lists the distinct groups referenced by records, sorted by name.
func Groups(records []Record) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range records {
		if r.StudentGroup == "" {
			continue
		}
		if _, ok := seen[r.StudentGroup]; !ok {
			seen[r.StudentGroup] = struct{}{}
			names = append(names, r.StudentGroup)
		}
	}
	sort.Strings(names)
	return names
}
