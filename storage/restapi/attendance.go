package restapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
)

type attendanceRepository struct {
	client *Client
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(client *Client) attendance.Repository {
	return &attendanceRepository{client: client}
}

// recordDTO tolerates the student reference arriving as a nested object or a
// bare id, and the status under either historical field name.
type recordDTO struct {
	ID      int    `json:"id"`
	Status  string `json:"status"`
	Present string `json:"present_status"`
	Time    string `json:"time"`

	StudentID int `json:"student_id"`
	Student   *struct {
		ID    int      `json:"id"`
		User  *userDTO `json:"user"`
		Group groupDTO `json:"group"`
	} `json:"student"`

	Course *struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		DateTime string `json:"date_time"`
	} `json:"course"`
	CourseID int `json:"course_id"`
}

func (dto recordDTO) normalize(loc *time.Location, logger core.Logger) attendance.Record {
	rec := attendance.Record{
		ID:        dto.ID,
		StudentID: dto.StudentID,
		CourseID:  dto.CourseID,
	}

	status := dto.Status
	if status == "" {
		status = dto.Present
	}
	rec.Status = attendance.NormalizeStatus(status)

	if dto.Student != nil {
		rec.StudentID = dto.Student.ID
		rec.StudentGroup = dto.Student.Group.Name
	}
	if dto.Course != nil {
		rec.CourseID = dto.Course.ID
		rec.CourseName = dto.Course.Name
		if dto.Course.DateTime != "" {
			start, err := core.ParseAPITime(dto.Course.DateTime, loc)
			if err != nil {
				// left zero; day-scoped merges will skip this record
				logger.Warn(fmt.Sprintf("record %d: unparsable session time: %v", dto.ID, err), err)
			} else {
				rec.CourseStart = start
			}
		}
	}
	if dto.Time != "" {
		if checkIn, err := core.ParseAPITime(dto.Time, loc); err == nil {
			rec.CheckIn = null.TimeFrom(checkIn)
		} else {
			logger.Warn(fmt.Sprintf("record %d: unparsable check-in time: %v", dto.ID, err), err)
		}
	}
	return rec
}

func (repo *attendanceRepository) ListRecords(ctx context.Context, courseID int) ([]attendance.Record, error) {
	query := url.Values{}
	if courseID != 0 {
		query.Set("course_id", strconv.Itoa(courseID))
	}

	var dtos []recordDTO
	if err := repo.client.get(ctx, "/home/attendance/", query, &dtos); err != nil {
		return nil, err
	}

	records := make([]attendance.Record, 0, len(dtos))
	for _, dto := range dtos {
		records = append(records, dto.normalize(repo.client.loc, repo.client.logger))
	}
	return records, nil
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, studentID, courseID int, status attendance.Status, at time.Time) (attendance.Record, error) {
	body := map[string]interface{}{
		"student_id":     studentID,
		"course_id":      courseID,
		"present_status": string(status),
		"time":           at.UTC().Format(time.RFC3339),
	}
	var dto recordDTO
	if err := repo.client.do(ctx, "POST", "/home/attendance/", body, &dto); err != nil {
		return attendance.Record{}, err
	}
	return dto.normalize(repo.client.loc, repo.client.logger), nil
}

func (repo *attendanceRepository) UpdateRecordStatus(ctx context.Context, recordID int, status attendance.Status) (attendance.Record, error) {
	path := fmt.Sprintf("/home/attendance/%d/update-status/", recordID)
	var dto recordDTO
	if err := repo.client.do(ctx, "PATCH", path, map[string]string{"present_status": string(status)}, &dto); err != nil {
		return attendance.Record{}, err
	}
	return dto.normalize(repo.client.loc, repo.client.logger), nil
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, recordID int) error {
	return repo.client.do(ctx, "DELETE", fmt.Sprintf("/home/attendance/%d/", recordID), nil, nil)
}
