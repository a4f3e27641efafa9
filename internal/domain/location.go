package domain

import (
	"context"
	"database/sql"
	"time"
)

// Location is one physical QR-code placement at a course (cart staging,
// pro shop counter, 19th hole bar, ...)
type Location struct {
	ID            string          `json:"id"`
	CourseID      string          `json:"course_id"`
	Name          string          `json:"name"`
	DefaultReward *NullableString `json:"default_reward,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Validate ensures that the location has all required fields
func (l *Location) Validate() error {
	if l.CourseID == "" {
		return NewValidationError("course id is required")
	}
	if l.Name == "" {
		return NewValidationError("location name is required")
	}
	if l.DefaultReward != nil && !l.DefaultReward.IsNull {
		if err := RewardType(l.DefaultReward.String).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ABVariant is one arm of an incentive A/B test
type ABVariant string

const (
	ABVariantA ABVariant = "A"
	ABVariantB ABVariant = "B"
)

// ABTest compares redemption rates of two reward configurations at one
// location. At most one test is active per location at a time.
type ABTest struct {
	ID             string     `json:"id"`
	CourseID       string     `json:"course_id"`
	LocationID     string     `json:"location_id"`
	Name           string     `json:"name"`
	VariantAReward RewardType `json:"variant_a_reward"`
	VariantBReward RewardType `json:"variant_b_reward"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Validate ensures that the A/B test has all required fields
func (t *ABTest) Validate() error {
	if t.CourseID == "" {
		return NewValidationError("course id is required")
	}
	if t.LocationID == "" {
		return NewValidationError("location id is required")
	}
	if t.Name == "" {
		return NewValidationError("test name is required")
	}
	if err := t.VariantAReward.Validate(); err != nil {
		return err
	}
	if err := t.VariantBReward.Validate(); err != nil {
		return err
	}
	return nil
}

// RewardFor returns the reward of the given variant
func (t *ABTest) RewardFor(variant ABVariant) RewardType {
	if variant == ABVariantB {
		return t.VariantBReward
	}
	return t.VariantAReward
}

// For database scanning
type dbLocation struct {
	ID            string
	CourseID      string
	Name          string
	DefaultReward sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ScanLocation scans a location from the database
func ScanLocation(scanner interface {
	Scan(dest ...interface{}) error
}) (*Location, error) {
	var dbl dbLocation
	if err := scanner.Scan(
		&dbl.ID,
		&dbl.CourseID,
		&dbl.Name,
		&dbl.DefaultReward,
		&dbl.CreatedAt,
		&dbl.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &Location{
		ID:            dbl.ID,
		CourseID:      dbl.CourseID,
		Name:          dbl.Name,
		DefaultReward: &NullableString{String: dbl.DefaultReward.String, IsNull: !dbl.DefaultReward.Valid},
		CreatedAt:     dbl.CreatedAt,
		UpdatedAt:     dbl.UpdatedAt,
	}, nil
}

// LocationRepository defines data access for locations and their A/B tests
type LocationRepository interface {
	// GetLocation retrieves a location by ID, scoped to a course
	GetLocation(ctx context.Context, courseID string, id string) (*Location, error)

	// CreateLocation persists a new location
	CreateLocation(ctx context.Context, location *Location) error

	// ListLocations returns all locations of a course
	ListLocations(ctx context.Context, courseID string) ([]*Location, error)

	// GetActiveABTest returns the active A/B test bound to a location,
	// or an ErrNotFound when no test is running there
	GetActiveABTest(ctx context.Context, courseID string, locationID string) (*ABTest, error)

	// CreateABTest persists a new A/B test
	CreateABTest(ctx context.Context, test *ABTest) error
}
