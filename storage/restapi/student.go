package restapi

import (
	"context"
	"net/url"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/schedule"
)

type studentRepository struct {
	client *Client
}

var _ attendance.RosterRepository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(client *Client) attendance.RosterRepository {
	return &studentRepository{client: client}
}

type (
	groupDTO struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Section string `json:"section_name"`
	}

	// studentDTO tolerates both serializer shapes the backend has shipped:
	// profile fields nested under "user" or flattened onto the root.
	studentDTO struct {
		ID        int      `json:"id"`
		FirstName string   `json:"first_name"`
		LastName  string   `json:"last_name"`
		Email     string   `json:"email"`
		User      *userDTO `json:"user"`
		Group     groupDTO `json:"group"`
	}

	userDTO struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	}
)

func (dto studentDTO) normalize() attendance.Student {
	first, last, email := dto.FirstName, dto.LastName, dto.Email
	if dto.User != nil {
		if dto.User.FirstName != "" {
			first = dto.User.FirstName
		}
		if dto.User.LastName != "" {
			last = dto.User.LastName
		}
		if dto.User.Email != "" {
			email = dto.User.Email
		}
	}
	full := first
	if last != "" {
		if full != "" {
			full += " "
		}
		full += last
	}
	return attendance.Student{
		ID:        dto.ID,
		FirstName: first,
		LastName:  last,
		FullName:  full,
		Email:     email,
		Group: schedule.Group{
			ID:      dto.Group.ID,
			Name:    dto.Group.Name,
			Section: dto.Group.Section,
		},
	}
}

func (repo *studentRepository) ListStudentsByGroup(ctx context.Context, groupName string) ([]attendance.Student, error) {
	query := url.Values{}
	if groupName != "" {
		query.Set("group_name", groupName)
	}

	var dtos []studentDTO
	if err := repo.client.get(ctx, "/home/students/", query, &dtos); err != nil {
		return nil, err
	}

	students := make([]attendance.Student, 0, len(dtos))
	for _, dto := range dtos {
		students = append(students, dto.normalize())
	}
	return students, nil
}
