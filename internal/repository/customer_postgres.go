package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/google/uuid"
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new PostgreSQL customer repository
func NewCustomerRepository(db *sql.DB) domain.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetCustomerByID(ctx context.Context, courseID string, id string) (*domain.Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE course_id = $1 AND id = $2
	`, domain.CustomerColumns())

	row := r.db.QueryRowContext(ctx, query, courseID, id)
	customer, err := domain.ScanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "customer", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

func (r *customerRepository) GetCustomerByEmail(ctx context.Context, courseID string, email string) (*domain.Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE course_id = $1 AND email = $2
	`, domain.CustomerColumns())

	row := r.db.QueryRowContext(ctx, query, courseID, domain.NormalizeEmail(email))
	customer, err := domain.ScanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "customer", ID: email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}

	return customer, nil
}

// MatchByIdentityTx tries email first, then phone. FOR UPDATE locks the
// matched row so two concurrent submissions for the same person serialize
// instead of double-counting a visit.
func (r *customerRepository) MatchByIdentityTx(ctx context.Context, tx *sql.Tx, courseID string, email string, phone string) (*domain.Customer, domain.MatchKey, error) {
	if email != "" {
		customer, err := r.lockByKey(ctx, tx, courseID, "email", email)
		if err != nil {
			return nil, domain.MatchKeyNone, err
		}
		if customer != nil {
			return customer, domain.MatchKeyEmail, nil
		}
	}

	if phone != "" {
		customer, err := r.lockByKey(ctx, tx, courseID, "phone", phone)
		if err != nil {
			return nil, domain.MatchKeyNone, err
		}
		if customer != nil {
			return customer, domain.MatchKeyPhone, nil
		}
	}

	return nil, domain.MatchKeyNone, &domain.ErrNotFound{Entity: "customer", ID: email}
}

func (r *customerRepository) lockByKey(ctx context.Context, tx *sql.Tx, courseID string, column string, value string) (*domain.Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE course_id = $1 AND %s = $2
		FOR UPDATE
	`, domain.CustomerColumns(), column)

	row := tx.QueryRowContext(ctx, query, courseID, value)
	customer, err := domain.ScanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to match customer by %s: %w", column, err)
	}
	return customer, nil
}

func (r *customerRepository) CreateCustomerTx(ctx context.Context, tx *sql.Tx, customer *domain.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	query := `
		INSERT INTO customers (
			id, course_id, email, phone, first_name, last_name, zip,
			booking_source, is_local, play_frequency, member_elsewhere, first_time_visitor,
			opted_out_of_email, visit_count, last_visit_at, membership_score,
			is_membership_prospect, source, source_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21
		)
	`

	_, err := tx.ExecContext(ctx, query,
		customer.ID, customer.CourseID, customer.Email, customer.Phone,
		customer.FirstName, customer.LastName, customer.Zip,
		customer.BookingSource, customer.IsLocal, customer.PlayFrequency,
		customer.MemberElsewhere, customer.FirstTimeVisitor,
		customer.OptedOutOfEmail, customer.VisitCount, customer.LastVisitAt,
		customer.MembershipScore, customer.IsMembershipProspect,
		customer.Source, customer.SourceID,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.NewConflictError("customer with this email or phone already exists")
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *customerRepository) UpdateCustomerTx(ctx context.Context, tx *sql.Tx, customer *domain.Customer) error {
	customer.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE customers SET
			email = $3, phone = $4, first_name = $5, last_name = $6, zip = $7,
			booking_source = $8, is_local = $9, play_frequency = $10,
			member_elsewhere = $11, first_time_visitor = $12,
			opted_out_of_email = $13, visit_count = $14, last_visit_at = $15,
			membership_score = $16, is_membership_prospect = $17, updated_at = $18
		WHERE course_id = $1 AND id = $2
	`

	result, err := tx.ExecContext(ctx, query,
		customer.CourseID, customer.ID,
		customer.Email, customer.Phone, customer.FirstName, customer.LastName, customer.Zip,
		customer.BookingSource, customer.IsLocal, customer.PlayFrequency,
		customer.MemberElsewhere, customer.FirstTimeVisitor,
		customer.OptedOutOfEmail, customer.VisitCount, customer.LastVisitAt,
		customer.MembershipScore, customer.IsMembershipProspect, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.NewConflictError("customer with this email or phone already exists")
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "customer", ID: customer.ID}
	}
	return nil
}

func (r *customerRepository) ListCustomers(ctx context.Context, req *domain.ListCustomersRequest) (*domain.ListCustomersResponse, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	where := sq.And{sq.Eq{"course_id": req.CourseID}}
	if req.Email != "" {
		where = append(where, sq.Eq{"email": domain.NormalizeEmail(req.Email)})
	}
	if req.Phone != "" {
		where = append(where, sq.Eq{"phone": domain.NormalizePhone(req.Phone)})
	}
	if req.BookingSource != "" {
		where = append(where, sq.Eq{"booking_source": req.BookingSource})
	}
	if req.MinScore > 0 {
		where = append(where, sq.GtOrEq{"membership_score": req.MinScore})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("customers").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	query, args, err := psql.Select(domain.CustomerColumns()).
		From("customers").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(req.Limit)).
		Offset(uint64(req.Offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*domain.Customer{}
	for rows.Next() {
		customer, err := domain.ScanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer rows: %w", err)
	}

	return &domain.ListCustomersResponse{
		Customers: customers,
		Total:     total,
	}, nil
}

func (r *customerRepository) ListProspects(ctx context.Context, courseID string, minScore int, requireLocal bool) ([]*domain.Customer, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	where := sq.And{
		sq.Eq{"course_id": courseID},
		sq.GtOrEq{"membership_score": minScore},
	}
	if requireLocal {
		where = append(where, sq.Eq{"is_local": true})
	}

	query, args, err := psql.Select(domain.CustomerColumns()).
		From("customers").
		Where(where).
		OrderBy("membership_score DESC", "visit_count DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build prospects query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prospects: %w", err)
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := domain.ScanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prospect rows: %w", err)
	}

	return customers, nil
}

func (r *customerRepository) ListAllCustomers(ctx context.Context, courseID string) ([]*domain.Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE course_id = $1
		ORDER BY created_at
	`, domain.CustomerColumns())

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list all customers: %w", err)
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := domain.ScanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer rows: %w", err)
	}

	return customers, nil
}

func (r *customerRepository) SetOptedOut(ctx context.Context, courseID string, customerID string, optedOut bool) error {
	query := `
		UPDATE customers
		SET opted_out_of_email = $3, updated_at = $4
		WHERE course_id = $1 AND id = $2
	`

	result, err := r.db.ExecContext(ctx, query, courseID, customerID, optedOut, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update opt-out flag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "customer", ID: customerID}
	}
	return nil
}
