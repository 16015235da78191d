package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/schedule"
	"github.com/trezcool/mahudhurio/core/settings"
)

var (
	// errors
	ErrRecordNotFound        = errors.New("attendance record not found")
	ErrNoSessionForDay       = errors.New("no session scheduled on this day")
	ErrJustificationNotFound = errors.New("justification not found")
)

type (
	// Repository is the external attendance-record provider.
	Repository interface {
		// ListRecords returns records, optionally scoped to one session
		// (courseID 0 lists everything visible to the caller).
		ListRecords(ctx context.Context, courseID int) ([]Record, error)
		CreateRecord(ctx context.Context, studentID, courseID int, status Status, at time.Time) (Record, error)
		UpdateRecordStatus(ctx context.Context, recordID int, status Status) (Record, error)
		DeleteRecord(ctx context.Context, recordID int) error
	}

	// RosterRepository is the external enrolled-student provider.
	RosterRepository interface {
		ListStudentsByGroup(ctx context.Context, groupName string) ([]Student, error)
	}

	// JustificationRepository persists justification notes on the device.
	// Stop-gap for a backend without a justification field.
	JustificationRepository interface {
		GetJustification(studentID int, day time.Time) (Justification, error)
		SaveJustification(j Justification) error
	}

	Service struct {
		records Repository
		roster  RosterRepository
		courses schedule.Repository
		justs   JustificationRepository
		conf    *core.Config
		clock   core.Clock
		logger  core.Logger
	}
)

func NewService(
	records Repository,
	roster RosterRepository,
	courses schedule.Repository,
	justs JustificationRepository,
	conf *core.Config,
	clock core.Clock,
	logger core.Logger,
) *Service {
	return &Service{
		records: records,
		roster:  roster,
		courses: courses,
		justs:   justs,
		conf:    conf,
		clock:   clock,
		logger:  logger,
	}
}

// LiveRoster reconciles the ongoing session's attendance: it fetches the
// group roster and the session's records, runs the late policy over present
// check-ins, and merges everything into one row per enrolled student.
//
// A positive late verdict is an explicit state transition pushed to the
// record store; the local view reflects it only once the update succeeds, and
// the authoritative value wins again on the next refresh.
func (s *Service) LiveRoster(ctx context.Context, course schedule.Course, conf settings.Settings) ([]ResolvedRow, error) {
	students, err := s.roster.ListStudentsByGroup(ctx, course.Group.Name)
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListRecords(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	if conf.AutoLateMarking {
		start := null.TimeFrom(course.StartTime)
		for i, r := range records {
			if r.Status != StatusPresent {
				continue
			}
			if !ShouldMarkLate(r.CheckIn, start, conf) {
				continue
			}
			if _, err := s.records.UpdateRecordStatus(ctx, r.ID, StatusLate); err != nil {
				s.logger.Warn(fmt.Sprintf("late re-marking record %d: %v", r.ID, err), err)
				continue
			}
			records[i].Status = StatusLate
		}
	}

	return MergeForDate(students, records, course.StartTime, s.conf.Location()), nil
}

// DayRoster resolves a group's attendance for one calendar day.
func (s *Service) DayRoster(ctx context.Context, groupName string, day time.Time) ([]ResolvedRow, error) {
	students, records, err := s.fetchGroup(ctx, groupName)
	if err != nil {
		return nil, err
	}
	return MergeForDate(students, records, day, s.conf.Location()), nil
}

// OverallRoster resolves a group's per-student attendance summaries across
// all its sessions. The session denominator comes from the group's session
// calendar, falling back to the days spanned by its records when the
// calendar is unavailable.
func (s *Service) OverallRoster(ctx context.Context, groupName string) ([]ResolvedRow, error) {
	students, records, err := s.fetchGroup(ctx, groupName)
	if err != nil {
		return nil, err
	}
	return MergeOverall(students, records, s.sessionDays(ctx, groupName, records)), nil
}

// GroupStats aggregates a group's attendance statistics and per-session
// series. A nil Stats (with nil error) means there is nothing to report yet.
func (s *Service) GroupStats(ctx context.Context, groupName string) (*Stats, error) {
	students, records, err := s.fetchGroup(ctx, groupName)
	if err != nil {
		return nil, err
	}
	days := s.sessionDays(ctx, groupName, records)
	return Aggregate(records, students, days, s.conf.Location()), nil
}

// SessionDates lists the calendar days a group has sessions on, for
// date-picker style consumers.
func (s *Service) SessionDates(ctx context.Context, groupName string) ([]time.Time, error) {
	_, records, err := s.fetchGroup(ctx, groupName)
	if err != nil {
		return nil, err
	}
	return s.sessionDays(ctx, groupName, records), nil
}

// SetStatus applies a manual status change for a student on a day. Absence
// is represented by record-absence: marking absent deletes any existing
// record; any other status patches the existing record or creates one
// against the day's session.
func (s *Service) SetStatus(ctx context.Context, studentID int, day time.Time, status Status) error {
	rec, err := s.findRecord(ctx, studentID, day)
	switch {
	case err == nil:
		if status == StatusAbsent {
			return s.records.DeleteRecord(ctx, rec.ID)
		}
		_, err = s.records.UpdateRecordStatus(ctx, rec.ID, status)
		return err
	case errors.Is(err, ErrRecordNotFound):
		if status == StatusAbsent {
			return nil // no record is exactly what absent means
		}
		course, err := s.findCourseForDay(ctx, day)
		if err != nil {
			return err
		}
		_, err = s.records.CreateRecord(ctx, studentID, course.ID, status, day)
		return err
	default:
		return err
	}
}

// Justify marks a student justified for a day and stores the explanatory
// note locally.
func (s *Service) Justify(ctx context.Context, studentID int, day time.Time, detail, fileName string) error {
	if err := s.justs.SaveJustification(Justification{
		StudentID: studentID,
		Day:       core.DayOf(day, s.conf.Location()),
		Detail:    detail,
		FileName:  fileName,
		CreatedAt: s.clock.Now().UTC(),
	}); err != nil {
		return err
	}
	return s.SetStatus(ctx, studentID, day, StatusJustified)
}

// Justification fetches the stored note for (student, day).
func (s *Service) Justification(studentID int, day time.Time) (Justification, error) {
	return s.justs.GetJustification(studentID, core.DayOf(day, s.conf.Location()))
}

func (s *Service) fetchGroup(ctx context.Context, groupName string) ([]Student, []Record, error) {
	students, err := s.roster.ListStudentsByGroup(ctx, groupName)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.records.ListRecords(ctx, 0)
	if err != nil {
		return nil, nil, err
	}
	return students, GroupRecords(records, groupName), nil
}

func (s *Service) sessionDays(ctx context.Context, groupName string, records []Record) []time.Time {
	loc := s.conf.Location()
	courses, err := s.courses.ListCourses(ctx, schedule.Filter{GroupName: groupName})
	if err != nil {
		s.logger.Warn(fmt.Sprintf("session calendar for %q unavailable, deriving days from records: %v", groupName, err), err)
		return SessionDaysFromRecords(records, loc)
	}
	return schedule.SessionDays(courses, loc)
}

func (s *Service) findRecord(ctx context.Context, studentID int, day time.Time) (Record, error) {
	records, err := s.records.ListRecords(ctx, 0)
	if err != nil {
		return Record{}, err
	}
	loc := s.conf.Location()
	for _, r := range records {
		if r.StudentID != studentID || r.CourseStart.IsZero() {
			continue
		}
		if core.SameDay(r.CourseStart, day, loc) {
			return r, nil
		}
	}
	return Record{}, ErrRecordNotFound
}

func (s *Service) findCourseForDay(ctx context.Context, day time.Time) (schedule.Course, error) {
	courses, err := s.courses.ListCourses(ctx, schedule.Filter{})
	if err != nil {
		return schedule.Course{}, err
	}
	loc := s.conf.Location()
	for _, c := range courses {
		if !c.StartTime.IsZero() && core.SameDay(c.StartTime, day, loc) {
			return c, nil
		}
	}
	return schedule.Course{}, ErrNoSessionForDay
}
