package domain

import (
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

// Course represents one golf course. Every other table is scoped to a course.
type Course struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	CodePrefix    string     `json:"code_prefix"`
	DefaultReward RewardType `json:"default_reward"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate ensures that the course has all required fields
func (c *Course) Validate() error {
	if c.ID == "" {
		return NewValidationError("course id is required")
	}
	if !govalidator.Matches(c.ID, "^[a-z0-9-]{1,20}$") {
		return NewValidationError("course id must be lowercase alphanumeric with dashes, max 20 chars")
	}
	if c.Name == "" {
		return NewValidationError("course name is required")
	}
	if len(c.CodePrefix) != 2 {
		return NewValidationError("course code prefix must be exactly 2 letters")
	}
	if c.DefaultReward == "" {
		c.DefaultReward = RewardFreeSoftDrink
	}
	if err := c.DefaultReward.Validate(); err != nil {
		return err
	}
	return nil
}

// CourseRepository defines data access for courses
type CourseRepository interface {
	// GetCourse retrieves a course by its ID
	GetCourse(ctx context.Context, id string) (*Course, error)

	// CreateCourse persists a new course
	CreateCourse(ctx context.Context, course *Course) error

	// ListCourses returns all courses ordered by creation time
	ListCourses(ctx context.Context) ([]*Course, error)
}
