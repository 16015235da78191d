package localdb

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
)

const dayLayout = "2006-01-02"

type justificationRepository struct {
	db *sqlx.DB
}

var _ attendance.JustificationRepository = (*justificationRepository)(nil) // interface compliance check

func NewJustificationRepository(db *sqlx.DB) attendance.JustificationRepository {
	return &justificationRepository{db: db}
}

type justificationRow struct {
	StudentID int       `db:"student_id"`
	Day       string    `db:"day"`
	Detail    string    `db:"detail"`
	FileName  string    `db:"file_name"`
	CreatedAt time.Time `db:"created_at"`
}

func (repo *justificationRepository) GetJustification(studentID int, day time.Time) (attendance.Justification, error) {
	var row justificationRow
	err := repo.db.Get(&row,
		`SELECT student_id, day, detail, file_name, created_at FROM justifications
		 WHERE student_id = ? AND day = ?`,
		studentID, day.Format(dayLayout),
	)
	switch {
	case err == sql.ErrNoRows:
		return attendance.Justification{}, attendance.ErrJustificationNotFound
	case err != nil:
		return attendance.Justification{}, errors.Wrap(err, "localdb: reading justification")
	}

	parsedDay, err := time.ParseInLocation(dayLayout, row.Day, day.Location())
	if err != nil {
		return attendance.Justification{}, errors.Wrap(err, "localdb: corrupted justification day")
	}
	return attendance.Justification{
		StudentID: row.StudentID,
		Day:       parsedDay,
		Detail:    row.Detail,
		FileName:  row.FileName,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (repo *justificationRepository) SaveJustification(j attendance.Justification) error {
	_, err := repo.db.Exec(
		`INSERT INTO justifications (student_id, day, detail, file_name, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (student_id, day) DO UPDATE SET detail = excluded.detail,
			file_name = excluded.file_name, created_at = excluded.created_at`,
		j.StudentID, j.Day.Format(dayLayout), j.Detail, j.FileName, j.CreatedAt,
	)
	return errors.Wrap(err, "localdb: writing justification")
}
