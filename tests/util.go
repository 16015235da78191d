package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/schedule"
	"github.com/trezcool/mahudhurio/storage/dummydb"
)

// NewConfig returns a Config suitable for tests: UTC time math and all
// filesystem output under a per-test temp dir.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	dir := t.TempDir()
	conf := &core.Config{
		TestMode:            true,
		Env:                 "TEST",
		AppName:             "Mahudhurio",
		WorkDir:             dir,
		InstitutionTimezone: "UTC",
		SessionLength:       schedule.SessionLength,
		FrontendBaseURL:     "http://localhost:5173",
		LocalDBPath:         dir + "/test.db",
	}
	conf.API.Timeout = 5 * time.Second
	return conf
}

// SeedGroup loads a small G1 fixture: three students, one scheduled session
// on 2021-03-01 08:00 UTC and a present record for the first student.
func SeedGroup(db *dummydb.DB) {
	grp := schedule.Group{ID: 3, Name: "G1", Section: "A"}
	students := []attendance.Student{
		{ID: 1, FirstName: "Amina", LastName: "Bensalem", FullName: "Amina Bensalem", Email: "amina@uni.dz", Group: grp},
		{ID: 2, FirstName: "Karim", LastName: "Haddad", FullName: "Karim Haddad", Email: "karim@uni.dz", Group: grp},
		{ID: 3, FirstName: "Lina", LastName: "Cherif", FullName: "Lina Cherif", Email: "lina@uni.dz", Group: grp},
	}
	for _, s := range students {
		db.SeedStudent(s)
	}

	start := time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC)
	db.SeedCourse(schedule.Course{
		ID:        7,
		Name:      "Algebra",
		Code:      "ALG1",
		Module:    "math",
		Professor: schedule.Professor{ID: 1, FullName: "Dr. Ali Ziani", Email: "prof@uni.dz", Module: "math"},
		Group:     grp,
		StartTime: start,
	})

	_, _ = dummydb.NewRecordRepository(db).CreateRecord(
		context.Background(), 1, 7, attendance.StatusPresent, start.Add(10*time.Minute))
}
