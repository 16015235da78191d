package restapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/schedule"
)

type courseRepository struct {
	client *Client
}

var _ schedule.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(client *Client) schedule.Repository {
	return &courseRepository{client: client}
}

type courseDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Module    string `json:"module"`
	DateTime  string `json:"date_time"`
	Professor struct {
		ID       int      `json:"id"`
		FullName string   `json:"full_name"`
		Module   string   `json:"module"`
		User     *userDTO `json:"user"`
		Email    string   `json:"email"`
	} `json:"professor"`
	Group groupDTO `json:"group"`
}

func (dto courseDTO) normalize(loc *time.Location) (schedule.Course, error) {
	start, err := core.ParseAPITime(dto.DateTime, loc)
	if err != nil {
		return schedule.Course{}, err
	}

	email := dto.Professor.Email
	if dto.Professor.User != nil && dto.Professor.User.Email != "" {
		email = dto.Professor.User.Email
	}
	return schedule.Course{
		ID:     dto.ID,
		Name:   dto.Name,
		Code:   dto.Code,
		Module: dto.Module,
		Professor: schedule.Professor{
			ID:       dto.Professor.ID,
			FullName: dto.Professor.FullName,
			Email:    email,
			Module:   dto.Professor.Module,
		},
		Group: schedule.Group{
			ID:      dto.Group.ID,
			Name:    dto.Group.Name,
			Section: dto.Group.Section,
		},
		StartTime: start,
	}, nil
}

func (repo *courseRepository) ListCourses(ctx context.Context, filter schedule.Filter) ([]schedule.Course, error) {
	query := url.Values{}
	if filter.Module != "" {
		query.Set("module", filter.Module)
	}
	if filter.GroupName != "" {
		query.Set("group_name", filter.GroupName)
	}
	if filter.ProfessorEmail != "" {
		query.Set("professor_email", filter.ProfessorEmail)
	}
	if filter.SectionName != "" {
		query.Set("section_name", filter.SectionName)
	}

	var dtos []courseDTO
	if err := repo.client.get(ctx, "/home/courses/", query, &dtos); err != nil {
		return nil, err
	}

	courses := make([]schedule.Course, 0, len(dtos))
	for _, dto := range dtos {
		course, err := dto.normalize(repo.client.loc)
		if err != nil {
			// one bad session must not hide the rest of the timetable
			repo.client.logger.Warn(fmt.Sprintf("skipping course %d: %v", dto.ID, err), err)
			continue
		}
		courses = append(courses, course)
	}
	return courses, nil
}
