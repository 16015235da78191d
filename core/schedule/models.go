package schedule

import (
	"context"
	"time"
)

// SessionLength is the fixed duration of one scheduled course session.
// A session's end time is never stored; it is always derived from this.
const SessionLength = 90 * time.Minute

type Group struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section"`
}

type Professor struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Module   string `json:"module"`
}

// Course is one scheduled occurrence of a course for a group. Immutable once
// scheduled; its lifecycle state (past/ongoing/upcoming) is computed, never stored.
type Course struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"` // unique join key with QR payloads
	Module    string    `json:"module"`
	Professor Professor `json:"professor"`
	Group     Group     `json:"group"`
	StartTime time.Time `json:"date_time"` // institution-local
}

// EndTime derives the session end from the fixed session length.
func (c Course) EndTime() time.Time {
	return c.StartTime.Add(SessionLength)
}

// OngoingAt reports whether now falls within [start, end].
func (c Course) OngoingAt(now time.Time) bool {
	return !c.StartTime.After(now) && !c.EndTime().Before(now)
}

type Filter struct {
	Module         string
	GroupName      string
	ProfessorEmail string
	SectionName    string
}

// Repository is the external session provider.
type Repository interface {
	ListCourses(ctx context.Context, filter Filter) ([]Course, error)
}
