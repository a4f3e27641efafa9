package domain

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

// BookingSource tells how the golfer booked their round
type BookingSource string

const (
	BookingSourceGolfNow BookingSource = "golfnow"
	BookingSourceWebsite BookingSource = "website"
	BookingSourcePhone   BookingSource = "phone"
	BookingSourceWalkIn  BookingSource = "walkin"
)

// Validate checks if the booking source is valid
func (b BookingSource) Validate() error {
	switch b {
	case BookingSourceGolfNow, BookingSourceWebsite, BookingSourcePhone, BookingSourceWalkIn:
		return nil
	}
	return NewValidationError(fmt.Sprintf("invalid booking source: %s", b))
}

// PlayFrequency tells how often the golfer plays
type PlayFrequency string

const (
	PlayFrequencyRarely  PlayFrequency = "rarely"
	PlayFrequencyMonthly PlayFrequency = "monthly"
	PlayFrequencyWeekly  PlayFrequency = "weekly"
)

// Validate checks if the play frequency is valid
func (p PlayFrequency) Validate() error {
	switch p {
	case PlayFrequencyRarely, PlayFrequencyMonthly, PlayFrequencyWeekly:
		return nil
	}
	return NewValidationError(fmt.Sprintf("invalid play frequency: %s", p))
}

// CustomerSource records where a customer record originally came from
type CustomerSource string

const (
	CustomerSourceCapture             CustomerSource = "capture"
	CustomerSourceGolfNowImport       CustomerSource = "golfnow_import"
	CustomerSourceClubessentialImport CustomerSource = "clubessential_import"
	CustomerSourceManual              CustomerSource = "manual"
)

// Customer represents one natural person at one course
type Customer struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`

	// Identity keys, normalized before storage
	Email *NullableString `json:"email,omitempty"`
	Phone *NullableString `json:"phone,omitempty"`

	// Profile attributes
	FirstName        *NullableString `json:"first_name,omitempty"`
	LastName         *NullableString `json:"last_name,omitempty"`
	Zip              *NullableString `json:"zip,omitempty"`
	BookingSource    *NullableString `json:"booking_source,omitempty"`
	IsLocal          *NullableBool   `json:"is_local,omitempty"`
	PlayFrequency    *NullableString `json:"play_frequency,omitempty"`
	MemberElsewhere  *NullableBool   `json:"member_elsewhere,omitempty"`
	FirstTimeVisitor *NullableBool   `json:"first_time_visitor,omitempty"`
	OptedOutOfEmail  bool            `json:"opted_out_of_email"`

	// Derived state, recomputed on every mutation
	VisitCount           int           `json:"visit_count"`
	LastVisitAt          *NullableTime `json:"last_visit_at,omitempty"`
	MembershipScore      int           `json:"membership_score"`
	IsMembershipProspect bool          `json:"is_membership_prospect"`

	// Provenance
	Source   CustomerSource  `json:"source"`
	SourceID *NullableString `json:"source_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address. It does not validate;
// form boundaries check validity separately.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail applies the boundary check: the address must parse as an email
// (which requires an @ and a domain with a dot for practical addresses)
func IsValidEmail(email string) bool {
	return govalidator.IsEmail(email) && strings.Contains(email, ".")
}

// NormalizePhone strips all non-digit characters and reduces the number to
// the 10-digit US format. 11 digits with a leading 1 lose the country code.
// Any other digit count is invalid and returns the empty string; callers
// store it as null rather than rejecting the submission.
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return d
	case len(d) == 11 && d[0] == '1':
		return d[1:]
	default:
		return ""
	}
}

// HasEmail reports whether the customer has a non-null email
func (c *Customer) HasEmail() bool {
	return c.Email != nil && !c.Email.IsNull && c.Email.String != ""
}

// HasPhone reports whether the customer has a non-null phone
func (c *Customer) HasPhone() bool {
	return c.Phone != nil && !c.Phone.IsNull && c.Phone.String != ""
}

// Normalize applies identity normalization in place. Invalid phone numbers
// become null instead of failing the record.
func (c *Customer) Normalize() {
	if c.Email != nil && !c.Email.IsNull {
		normalized := NormalizeEmail(c.Email.String)
		if normalized == "" {
			c.Email = &NullableString{IsNull: true}
		} else {
			c.Email = &NullableString{String: normalized}
		}
	}
	if c.Phone != nil && !c.Phone.IsNull {
		normalized := NormalizePhone(c.Phone.String)
		if normalized == "" {
			c.Phone = &NullableString{IsNull: true}
		} else {
			c.Phone = &NullableString{String: normalized}
		}
	}
}

// MergeFillBlank copies field values from other into c only where c has no
// value yet. Used by the public capture form and the import merger: a repeat
// visitor never overwrites previously known profile data.
func (c *Customer) MergeFillBlank(other *Customer) {
	if other == nil {
		return
	}
	if !c.HasEmail() && other.HasEmail() {
		c.Email = other.Email
	}
	if !c.HasPhone() && other.HasPhone() {
		c.Phone = other.Phone
	}
	if isBlankString(c.FirstName) && !isBlankString(other.FirstName) {
		c.FirstName = other.FirstName
	}
	if isBlankString(c.LastName) && !isBlankString(other.LastName) {
		c.LastName = other.LastName
	}
	if isBlankString(c.Zip) && !isBlankString(other.Zip) {
		c.Zip = other.Zip
	}
	if isBlankString(c.BookingSource) && !isBlankString(other.BookingSource) {
		c.BookingSource = other.BookingSource
	}
	if isUnknownBool(c.IsLocal) && !isUnknownBool(other.IsLocal) {
		c.IsLocal = other.IsLocal
	}
	if isBlankString(c.PlayFrequency) && !isBlankString(other.PlayFrequency) {
		c.PlayFrequency = other.PlayFrequency
	}
	if isUnknownBool(c.MemberElsewhere) && !isUnknownBool(other.MemberElsewhere) {
		c.MemberElsewhere = other.MemberElsewhere
	}
	if isUnknownBool(c.FirstTimeVisitor) && !isUnknownBool(other.FirstTimeVisitor) {
		c.FirstTimeVisitor = other.FirstTimeVisitor
	}
}

// MergeOverwrite copies every supplied (non-nil) field value from other into
// c. Used by the admin re-capture form which always carries the latest data.
func (c *Customer) MergeOverwrite(other *Customer) {
	if other == nil {
		return
	}
	if other.HasEmail() {
		c.Email = other.Email
	}
	if other.HasPhone() {
		c.Phone = other.Phone
	}
	if other.FirstName != nil {
		c.FirstName = other.FirstName
	}
	if other.LastName != nil {
		c.LastName = other.LastName
	}
	if other.Zip != nil {
		c.Zip = other.Zip
	}
	if other.BookingSource != nil {
		c.BookingSource = other.BookingSource
	}
	if other.IsLocal != nil {
		c.IsLocal = other.IsLocal
	}
	if other.PlayFrequency != nil {
		c.PlayFrequency = other.PlayFrequency
	}
	if other.MemberElsewhere != nil {
		c.MemberElsewhere = other.MemberElsewhere
	}
	if other.FirstTimeVisitor != nil {
		c.FirstTimeVisitor = other.FirstTimeVisitor
	}
}

func isBlankString(ns *NullableString) bool {
	return ns == nil || ns.IsNull || ns.String == ""
}

func isUnknownBool(nb *NullableBool) bool {
	return nb == nil || nb.IsNull
}

// customerColumns is the column list shared by every customer query, in the
// order ScanCustomer expects
const customerColumns = `id, course_id, email, phone, first_name, last_name, zip,
	booking_source, is_local, play_frequency, member_elsewhere, first_time_visitor,
	opted_out_of_email, visit_count, last_visit_at, membership_score,
	is_membership_prospect, source, source_id, created_at, updated_at`

// CustomerColumns exposes the canonical column list to the repository package
func CustomerColumns() string {
	return customerColumns
}

// For database scanning
type dbCustomer struct {
	ID               string
	CourseID         string
	Email            sql.NullString
	Phone            sql.NullString
	FirstName        sql.NullString
	LastName         sql.NullString
	Zip              sql.NullString
	BookingSource    sql.NullString
	IsLocal          sql.NullBool
	PlayFrequency    sql.NullString
	MemberElsewhere  sql.NullBool
	FirstTimeVisitor sql.NullBool
	OptedOutOfEmail  bool
	VisitCount       int
	LastVisitAt      sql.NullTime
	MembershipScore  int
	IsProspect       bool
	Source           string
	SourceID         sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ScanCustomer scans a customer from the database
func ScanCustomer(scanner interface {
	Scan(dest ...interface{}) error
}) (*Customer, error) {
	var dbc dbCustomer
	if err := scanner.Scan(
		&dbc.ID,
		&dbc.CourseID,
		&dbc.Email,
		&dbc.Phone,
		&dbc.FirstName,
		&dbc.LastName,
		&dbc.Zip,
		&dbc.BookingSource,
		&dbc.IsLocal,
		&dbc.PlayFrequency,
		&dbc.MemberElsewhere,
		&dbc.FirstTimeVisitor,
		&dbc.OptedOutOfEmail,
		&dbc.VisitCount,
		&dbc.LastVisitAt,
		&dbc.MembershipScore,
		&dbc.IsProspect,
		&dbc.Source,
		&dbc.SourceID,
		&dbc.CreatedAt,
		&dbc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &Customer{
		ID:                   dbc.ID,
		CourseID:             dbc.CourseID,
		Email:                &NullableString{String: dbc.Email.String, IsNull: !dbc.Email.Valid},
		Phone:                &NullableString{String: dbc.Phone.String, IsNull: !dbc.Phone.Valid},
		FirstName:            &NullableString{String: dbc.FirstName.String, IsNull: !dbc.FirstName.Valid},
		LastName:             &NullableString{String: dbc.LastName.String, IsNull: !dbc.LastName.Valid},
		Zip:                  &NullableString{String: dbc.Zip.String, IsNull: !dbc.Zip.Valid},
		BookingSource:        &NullableString{String: dbc.BookingSource.String, IsNull: !dbc.BookingSource.Valid},
		IsLocal:              &NullableBool{Bool: dbc.IsLocal.Bool, IsNull: !dbc.IsLocal.Valid},
		PlayFrequency:        &NullableString{String: dbc.PlayFrequency.String, IsNull: !dbc.PlayFrequency.Valid},
		MemberElsewhere:      &NullableBool{Bool: dbc.MemberElsewhere.Bool, IsNull: !dbc.MemberElsewhere.Valid},
		FirstTimeVisitor:     &NullableBool{Bool: dbc.FirstTimeVisitor.Bool, IsNull: !dbc.FirstTimeVisitor.Valid},
		OptedOutOfEmail:      dbc.OptedOutOfEmail,
		VisitCount:           dbc.VisitCount,
		LastVisitAt:          &NullableTime{Time: dbc.LastVisitAt.Time, IsNull: !dbc.LastVisitAt.Valid},
		MembershipScore:      dbc.MembershipScore,
		IsMembershipProspect: dbc.IsProspect,
		Source:               CustomerSource(dbc.Source),
		SourceID:             &NullableString{String: dbc.SourceID.String, IsNull: !dbc.SourceID.Valid},
		CreatedAt:            dbc.CreatedAt,
		UpdatedAt:            dbc.UpdatedAt,
	}, nil
}

// ListCustomersRequest represents a request to list customers with filters and pagination
type ListCustomersRequest struct {
	CourseID string `json:"course_id" valid:"required"`

	// Optional filters
	Email         string `json:"email,omitempty" valid:"optional"`
	Phone         string `json:"phone,omitempty" valid:"optional"`
	BookingSource string `json:"booking_source,omitempty" valid:"optional"`
	MinScore      int    `json:"min_score,omitempty" valid:"optional"`

	// Pagination
	Limit  int `json:"limit,omitempty" valid:"optional,range(1|100)"`
	Offset int `json:"offset,omitempty" valid:"optional"`
}

// FromQueryParams fills the request from URL query parameters
func (r *ListCustomersRequest) FromQueryParams(queryParams url.Values) error {
	r.CourseID = queryParams.Get("course_id")
	r.Email = queryParams.Get("email")
	r.Phone = queryParams.Get("phone")
	r.BookingSource = queryParams.Get("booking_source")

	if v := queryParams.Get("min_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(fmt.Sprintf("invalid min_score: %v", err))
		}
		r.MinScore = n
	}
	if v := queryParams.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(fmt.Sprintf("invalid limit: %v", err))
		}
		r.Limit = n
	}
	if v := queryParams.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(fmt.Sprintf("invalid offset: %v", err))
		}
		r.Offset = n
	}

	return r.Validate()
}

// Validate ensures that the request has all required fields and valid values
func (r *ListCustomersRequest) Validate() error {
	if r.CourseID == "" {
		return NewValidationError("course_id is required")
	}
	if r.Limit == 0 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
	return nil
}

// ListCustomersResponse represents the response from listing customers
type ListCustomersResponse struct {
	Customers []*Customer `json:"customers"`
	Total     int         `json:"total"`
}

// MatchKey records which identity key resolved a customer
type MatchKey string

const (
	MatchKeyEmail MatchKey = "email"
	MatchKeyPhone MatchKey = "phone"
	MatchKeyNone  MatchKey = "none"
)

// CustomerRepository defines data access for customers.
// The Tx variants participate in the capture-commit transaction; the
// SELECT ... FOR UPDATE in MatchByIdentityTx serializes concurrent captures
// for the same person.
type CustomerRepository interface {
	// GetCustomerByID retrieves a customer by ID, scoped to a course
	GetCustomerByID(ctx context.Context, courseID string, id string) (*Customer, error)

	// GetCustomerByEmail retrieves a customer by normalized email
	GetCustomerByEmail(ctx context.Context, courseID string, email string) (*Customer, error)

	// MatchByIdentityTx resolves a contact tuple to an existing customer,
	// trying email first, then phone (Policy A). Locks the matched row.
	// Returns the customer and which key matched, or ErrNotFound.
	MatchByIdentityTx(ctx context.Context, tx *sql.Tx, courseID string, email string, phone string) (*Customer, MatchKey, error)

	// CreateCustomerTx inserts a new customer inside the given transaction
	CreateCustomerTx(ctx context.Context, tx *sql.Tx, customer *Customer) error

	// UpdateCustomerTx persists all mutable fields of an existing customer
	UpdateCustomerTx(ctx context.Context, tx *sql.Tx, customer *Customer) error

	// ListCustomers retrieves customers with filters and pagination
	ListCustomers(ctx context.Context, req *ListCustomersRequest) (*ListCustomersResponse, error)

	// ListProspects returns customers at or above minScore, optionally
	// restricted to locals, ordered by score descending. This is the browse
	// read path; it filters on the raw score, not the persisted prospect flag.
	ListProspects(ctx context.Context, courseID string, minScore int, requireLocal bool) ([]*Customer, error)

	// ListAllCustomers streams every customer of a course for CSV export
	ListAllCustomers(ctx context.Context, courseID string) ([]*Customer, error)

	// SetOptedOut flips the email opt-out flag
	SetOptedOut(ctx context.Context, courseID string, customerID string, optedOut bool) error
}

// CustomerService exposes the staff-facing customer operations
type CustomerService interface {
	GetCustomer(ctx context.Context, courseID string, id string) (*Customer, error)
	ListCustomers(ctx context.Context, req *ListCustomersRequest) (*ListCustomersResponse, error)

	// SetOptedOut flips the opt-out flag; opting out also cancels any
	// pending queued email for the customer
	SetOptedOut(ctx context.Context, courseID string, customerID string, optedOut bool) error

	// ExportCustomersCSV renders every customer of a course as CSV
	ExportCustomersCSV(ctx context.Context, courseID string) ([]byte, error)
}
