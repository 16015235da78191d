package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/schedule"
)

var pkCount int

type recordRepository struct {
	db *DB
}

var _ attendance.Repository = (*recordRepository)(nil) // interface compliance check

func NewRecordRepository(db *DB) attendance.Repository {
	return &recordRepository{db: db}
}

func (repo *recordRepository) query() []attendance.Record {
	records := make([]attendance.Record, 0, len(repo.db.record.table))
	for _, r := range repo.db.record.table {
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

func (repo *recordRepository) ListRecords(_ context.Context, courseID int) ([]attendance.Record, error) {
	repo.db.record.RLock()
	defer repo.db.record.RUnlock()

	if courseID == 0 {
		return repo.query(), nil
	}
	var out []attendance.Record
	for _, r := range repo.query() {
		if r.CourseID == courseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (repo *recordRepository) CreateRecord(_ context.Context, studentID, courseID int, status attendance.Status, at time.Time) (attendance.Record, error) {
	repo.db.record.Lock()
	defer repo.db.record.Unlock()

	rec := attendance.Record{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    status,
		CheckIn:   null.TimeFrom(at),
	}

	// denormalize the session reference like the API does
	repo.db.course.RLock()
	if course, ok := repo.db.course.table[courseID]; ok {
		rec.CourseName = course.Name
		rec.CourseStart = course.StartTime
	}
	repo.db.course.RUnlock()
	repo.db.student.RLock()
	if student, ok := repo.db.student.table[studentID]; ok {
		rec.StudentGroup = student.Group.Name
	}
	repo.db.student.RUnlock()

	pkCount++
	rec.ID = pkCount
	repo.db.record.table[rec.ID] = &rec
	return rec, nil
}

func (repo *recordRepository) UpdateRecordStatus(_ context.Context, recordID int, status attendance.Status) (attendance.Record, error) {
	repo.db.record.Lock()
	defer repo.db.record.Unlock()

	rec, ok := repo.db.record.table[recordID]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	rec.Status = status
	return *rec, nil
}

func (repo *recordRepository) DeleteRecord(_ context.Context, recordID int) error {
	repo.db.record.Lock()
	defer repo.db.record.Unlock()

	if _, ok := repo.db.record.table[recordID]; !ok {
		return attendance.ErrRecordNotFound
	}
	delete(repo.db.record.table, recordID)
	return nil
}

type studentRepository struct {
	db *DB
}

var _ attendance.RosterRepository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) attendance.RosterRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) ListStudentsByGroup(_ context.Context, groupName string) ([]attendance.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	students := make([]attendance.Student, 0, len(repo.db.student.table))
	for _, s := range repo.db.student.table {
		if groupName != "" && s.Group.Name != groupName {
			continue
		}
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

type courseRepository struct {
	db *DB
}

var _ schedule.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) schedule.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) ListCourses(_ context.Context, filter schedule.Filter) ([]schedule.Course, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	courses := make([]schedule.Course, 0, len(repo.db.course.table))
	for _, c := range repo.db.course.table {
		if filter.Module != "" && c.Module != filter.Module {
			continue
		}
		if filter.GroupName != "" && c.Group.Name != filter.GroupName {
			continue
		}
		if filter.ProfessorEmail != "" && c.Professor.Email != filter.ProfessorEmail {
			continue
		}
		if filter.SectionName != "" && c.Group.Section != filter.SectionName {
			continue
		}
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}
