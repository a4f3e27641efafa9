package domain

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Capture is one immutable form-submission event. Only the redemption fields
// ever change after insert, and only once.
type Capture struct {
	ID         string          `json:"id"`
	CourseID   string          `json:"course_id"`
	CustomerID string          `json:"customer_id"`
	LocationID *NullableString `json:"location_id,omitempty"`
	ABTestID   *NullableString `json:"ab_test_id,omitempty"`
	ABVariant  *NullableString `json:"ab_variant,omitempty"`

	RewardCode        string     `json:"reward_code"`
	RewardType        RewardType `json:"reward_type"`
	RewardDescription string     `json:"reward_description"`

	// Raw submitted payload, kept verbatim for audit
	Payload []byte `json:"payload"`

	OriginIP  *NullableString `json:"origin_ip,omitempty"`
	UserAgent *NullableString `json:"user_agent,omitempty"`

	Redeemed   bool            `json:"redeemed"`
	RedeemedAt *NullableTime   `json:"redeemed_at,omitempty"`
	RedeemedBy *NullableString `json:"redeemed_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SubmitCaptureRequest is one public QR-form submission
type SubmitCaptureRequest struct {
	CourseID   string
	LocationID string

	// Contact fields, required on the public form
	Email string
	Phone string

	// Profile fields, all optional (tri-state booleans stay nil when the
	// form left them unanswered)
	FirstName        string
	LastName         string
	Zip              string
	BookingSource    string
	IsLocal          *NullableBool
	PlayFrequency    string
	MemberElsewhere  *NullableBool
	FirstTimeVisitor *NullableBool

	// Optional explicit reward choice
	ChosenReward string

	// Admin re-capture variant: overwrite resubmitted fields instead of
	// fill-blank-only
	Overwrite bool

	// Request metadata
	OriginIP  string
	UserAgent string

	// Raw body, stored verbatim on the capture row
	RawPayload []byte
}

// SubmitCaptureRequestFromJSON parses a submission body. Unknown fields are
// ignored; the raw bytes are preserved for the audit payload.
func SubmitCaptureRequestFromJSON(data []byte) (*SubmitCaptureRequest, error) {
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, NewValidationError("body must be a JSON object")
	}

	req := &SubmitCaptureRequest{
		CourseID:      result.Get("course_id").String(),
		LocationID:    result.Get("location_id").String(),
		Email:         result.Get("email").String(),
		Phone:         result.Get("phone").String(),
		FirstName:     result.Get("first_name").String(),
		LastName:      result.Get("last_name").String(),
		Zip:           result.Get("zip").String(),
		BookingSource: result.Get("booking_source").String(),
		PlayFrequency: result.Get("play_frequency").String(),
		ChosenReward:  result.Get("chosen_reward").String(),
		Overwrite:     result.Get("overwrite").Bool(),
		RawPayload:    data,
	}

	var err error
	if req.IsLocal, err = parseTriState(result, "is_local"); err != nil {
		return nil, err
	}
	if req.MemberElsewhere, err = parseTriState(result, "member_elsewhere"); err != nil {
		return nil, err
	}
	if req.FirstTimeVisitor, err = parseTriState(result, "first_time_visitor"); err != nil {
		return nil, err
	}

	return req, nil
}

// parseTriState reads an optional boolean: absent or null stays nil (unknown)
func parseTriState(result gjson.Result, field string) (*NullableBool, error) {
	value := result.Get(field)
	if !value.Exists() || value.Type == gjson.Null {
		return nil, nil
	}
	if !value.IsBool() {
		return nil, NewValidationError(fmt.Sprintf("invalid type for %s: expected boolean, got %s", field, value.Type))
	}
	return &NullableBool{Bool: value.Bool()}, nil
}

// Validate applies the public-form boundary rules: both contact fields are
// required, the email must look like one, and enum fields must be in range.
// The phone is normalized here; an out-of-range digit count is a validation
// error on this path because the form requires a usable phone.
func (r *SubmitCaptureRequest) Validate() error {
	if r.CourseID == "" {
		return NewValidationError("course_id is required")
	}
	if r.Email == "" {
		return NewValidationError("email is required")
	}
	r.Email = NormalizeEmail(r.Email)
	if !IsValidEmail(r.Email) {
		return NewValidationError("invalid email format")
	}
	if r.Phone == "" {
		return NewValidationError("phone is required")
	}
	normalized := NormalizePhone(r.Phone)
	if normalized == "" {
		return NewValidationError("phone must be a 10-digit US number")
	}
	r.Phone = normalized

	if r.BookingSource != "" {
		if err := BookingSource(r.BookingSource).Validate(); err != nil {
			return err
		}
	}
	if r.PlayFrequency != "" {
		if err := PlayFrequency(r.PlayFrequency).Validate(); err != nil {
			return err
		}
	}
	if r.ChosenReward != "" {
		if err := RewardType(r.ChosenReward).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToCustomer builds the candidate customer carried by this submission
func (r *SubmitCaptureRequest) ToCustomer() *Customer {
	c := &Customer{
		CourseID: r.CourseID,
		Email:    &NullableString{String: r.Email},
		Phone:    &NullableString{String: r.Phone},
		Source:   CustomerSourceCapture,
	}
	if r.FirstName != "" {
		c.FirstName = &NullableString{String: r.FirstName}
	}
	if r.LastName != "" {
		c.LastName = &NullableString{String: r.LastName}
	}
	if r.Zip != "" {
		c.Zip = &NullableString{String: r.Zip}
	}
	if r.BookingSource != "" {
		c.BookingSource = &NullableString{String: r.BookingSource}
	}
	if r.PlayFrequency != "" {
		c.PlayFrequency = &NullableString{String: r.PlayFrequency}
	}
	c.IsLocal = r.IsLocal
	c.MemberElsewhere = r.MemberElsewhere
	c.FirstTimeVisitor = r.FirstTimeVisitor
	return c
}

// SubmitCaptureResponse is returned to the public form
type SubmitCaptureResponse struct {
	CustomerID        string `json:"customer_id"`
	IsNewCustomer     bool   `json:"is_new_customer"`
	RewardCode        string `json:"reward_code"`
	RewardDescription string `json:"reward_description"`
}

// RedeemRewardRequest asks to mark a reward code as redeemed
type RedeemRewardRequest struct {
	Code       string `json:"code"`
	RedeemedBy string `json:"redeemed_by"`
}

// Validate ensures that the redemption request has all required fields
func (r *RedeemRewardRequest) Validate() error {
	if r.Code == "" {
		return NewValidationError("code is required")
	}
	if r.RedeemedBy == "" {
		return NewValidationError("redeemed_by is required")
	}
	return nil
}

// For database scanning
type dbCapture struct {
	ID                string
	CourseID          string
	CustomerID        string
	LocationID        sql.NullString
	ABTestID          sql.NullString
	ABVariant         sql.NullString
	RewardCode        string
	RewardType        string
	RewardDescription string
	Payload           []byte
	OriginIP          sql.NullString
	UserAgent         sql.NullString
	Redeemed          bool
	RedeemedAt        sql.NullTime
	RedeemedBy        sql.NullString
	CreatedAt         time.Time
}

// ScanCapture scans a capture from the database
func ScanCapture(scanner interface {
	Scan(dest ...interface{}) error
}) (*Capture, error) {
	var dbc dbCapture
	if err := scanner.Scan(
		&dbc.ID,
		&dbc.CourseID,
		&dbc.CustomerID,
		&dbc.LocationID,
		&dbc.ABTestID,
		&dbc.ABVariant,
		&dbc.RewardCode,
		&dbc.RewardType,
		&dbc.RewardDescription,
		&dbc.Payload,
		&dbc.OriginIP,
		&dbc.UserAgent,
		&dbc.Redeemed,
		&dbc.RedeemedAt,
		&dbc.RedeemedBy,
		&dbc.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &Capture{
		ID:                dbc.ID,
		CourseID:          dbc.CourseID,
		CustomerID:        dbc.CustomerID,
		LocationID:        &NullableString{String: dbc.LocationID.String, IsNull: !dbc.LocationID.Valid},
		ABTestID:          &NullableString{String: dbc.ABTestID.String, IsNull: !dbc.ABTestID.Valid},
		ABVariant:         &NullableString{String: dbc.ABVariant.String, IsNull: !dbc.ABVariant.Valid},
		RewardCode:        dbc.RewardCode,
		RewardType:        RewardType(dbc.RewardType),
		RewardDescription: dbc.RewardDescription,
		Payload:           dbc.Payload,
		OriginIP:          &NullableString{String: dbc.OriginIP.String, IsNull: !dbc.OriginIP.Valid},
		UserAgent:         &NullableString{String: dbc.UserAgent.String, IsNull: !dbc.UserAgent.Valid},
		Redeemed:          dbc.Redeemed,
		RedeemedAt:        &NullableTime{Time: dbc.RedeemedAt.Time, IsNull: !dbc.RedeemedAt.Valid},
		RedeemedBy:        &NullableString{String: dbc.RedeemedBy.String, IsNull: !dbc.RedeemedBy.Valid},
		CreatedAt:         dbc.CreatedAt,
	}, nil
}

// CaptureRepository defines data access for captures
type CaptureRepository interface {
	// InsertCaptureTx inserts a capture inside the capture-commit transaction.
	// A unique violation on reward_code surfaces as ErrRewardCodeTaken.
	InsertCaptureTx(ctx context.Context, tx *sql.Tx, capture *Capture) error

	// GetCaptureByCode retrieves a capture by reward code (course-global)
	GetCaptureByCode(ctx context.Context, code string) (*Capture, error)

	// RedeemByCode atomically transitions a code from unredeemed to redeemed.
	// Returns false without error when the code exists but was already
	// redeemed, and ErrNotFound when the code does not exist.
	RedeemByCode(ctx context.Context, code string, redeemedBy string) (bool, error)

	// ListCaptures returns the most recent captures of a course
	ListCaptures(ctx context.Context, courseID string, limit int) ([]*Capture, error)
}

// ErrRewardCodeTaken signals a reward-code uniqueness collision on insert;
// the issuer retries with a fresh code.
type ErrRewardCodeTaken struct {
	Code string
}

func (e *ErrRewardCodeTaken) Error() string {
	return fmt.Sprintf("reward code already exists: %s", e.Code)
}

// CaptureService orchestrates capture submission and redemption
type CaptureService interface {
	// SubmitCapture runs the full capture pipeline: identity match, merge,
	// rescore, reward issue, capture insert, pipeline enroll and follow-up
	// enqueue, all inside one transaction.
	SubmitCapture(ctx context.Context, req *SubmitCaptureRequest) (*SubmitCaptureResponse, error)

	// RedeemReward marks a reward code redeemed, exactly once
	RedeemReward(ctx context.Context, req *RedeemRewardRequest) (*Capture, error)

	// ListCaptures returns recent captures for staff dashboards
	ListCaptures(ctx context.Context, courseID string, limit int) ([]*Capture, error)
}
