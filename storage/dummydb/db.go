package dummydb

import (
	"sync"
	"time"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/schedule"
	"github.com/trezcool/mahudhurio/core/settings"
)

type (
	DB struct {
		student       *studentTable
		course        *courseTable
		record        *recordTable
		settings      *settingsTable
		justification *justificationTable
		token         *tokenTable
	}

	studentTable struct {
		sync.RWMutex
		table map[int]*attendance.Student
	}

	courseTable struct {
		sync.RWMutex
		table map[int]*schedule.Course
	}

	recordTable struct {
		sync.RWMutex
		table map[int]*attendance.Record
	}

	settingsTable struct {
		sync.RWMutex
		stored *settings.Settings
	}

	justificationKey struct {
		studentID int
		day       string
	}

	justificationTable struct {
		sync.RWMutex
		table map[justificationKey]*attendance.Justification
	}

	tokenTable struct {
		sync.RWMutex
		table map[string]string
	}
)

func Open() (*DB, error) {
	db := &DB{
		student:       &studentTable{table: make(map[int]*attendance.Student)},
		course:        &courseTable{table: make(map[int]*schedule.Course)},
		record:        &recordTable{table: make(map[int]*attendance.Record)},
		settings:      &settingsTable{},
		justification: &justificationTable{table: make(map[justificationKey]*attendance.Justification)},
		token:         &tokenTable{table: make(map[string]string)},
	}
	return db, nil
}

// SeedStudent loads a roster entry, for tests and demos.
func (db *DB) SeedStudent(s attendance.Student) {
	db.student.Lock()
	defer db.student.Unlock()
	db.student.table[s.ID] = &s
}

// SeedCourse loads a scheduled session, for tests and demos.
func (db *DB) SeedCourse(c schedule.Course) {
	db.course.Lock()
	defer db.course.Unlock()
	db.course.table[c.ID] = &c
}

func justKey(studentID int, day time.Time) justificationKey {
	return justificationKey{studentID: studentID, day: day.Format("2006-01-02")}
}
