// Package schema defines the database schema for development.
//
// DEVELOPMENT USE ONLY
// This file contains the current database schema and is used for development and testing.
// Before deploying to production, these table definitions should be converted to proper migrations.
package schema

// TableDefinitions contains all the SQL statements to create the database tables.
// Don't put REFERENCES and don't put CHECK constraints in the CREATE TABLE statements
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS courses (
		id VARCHAR(20) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		code_prefix CHAR(2) NOT NULL,
		default_reward VARCHAR(30) NOT NULL DEFAULT 'free_soft_drink',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id UUID PRIMARY KEY,
		course_id VARCHAR(20) NOT NULL,
		name VARCHAR(255) NOT NULL,
		default_reward VARCHAR(30),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ab_tests (
		id UUID PRIMARY KEY,
		course_id VARCHAR(20) NOT NULL,
		location_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		variant_a_reward VARCHAR(30) NOT NULL,
		variant_b_reward VARCHAR(30) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY,
		course_id VARCHAR(20) NOT NULL,
		email VARCHAR(255),
		phone VARCHAR(10),
		first_name VARCHAR(255),
		last_name VARCHAR(255),
		zip VARCHAR(10),
		booking_source VARCHAR(20),
		is_local BOOLEAN,
		play_frequency VARCHAR(20),
		member_elsewhere BOOLEAN,
		first_time_visitor BOOLEAN,
		opted_out_of_email BOOLEAN NOT NULL DEFAULT FALSE,
		visit_count INTEGER NOT NULL DEFAULT 1,
		last_visit_at TIMESTAMP,
		membership_score INTEGER NOT NULL DEFAULT 0,
		is_membership_prospect BOOLEAN NOT NULL DEFAULT FALSE,
		source VARCHAR(30) NOT NULL,
		source_id VARCHAR(255),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_course_email ON customers (course_id, email) WHERE email IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_course_phone ON customers (course_id, phone) WHERE phone IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_customers_course_score ON customers (course_id, membership_score)`,
	`CREATE TABLE IF NOT EXISTS captures (
		id UUID PRIMARY KEY,
		course_id VARCHAR(20) NOT NULL,
		customer_id UUID NOT NULL,
		location_id UUID,
		ab_test_id UUID,
		ab_variant CHAR(1),
		reward_code VARCHAR(8) NOT NULL,
		reward_type VARCHAR(30) NOT NULL,
		reward_description VARCHAR(255) NOT NULL,
		payload JSONB NOT NULL,
		origin_ip VARCHAR(45),
		user_agent VARCHAR(512),
		redeemed BOOLEAN NOT NULL DEFAULT FALSE,
		redeemed_at TIMESTAMP,
		redeemed_by VARCHAR(255),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_captures_reward_code ON captures (reward_code)`,
	`CREATE INDEX IF NOT EXISTS idx_captures_course_id ON captures (course_id)`,
	`CREATE INDEX IF NOT EXISTS idx_captures_customer_id ON captures (customer_id)`,
	`CREATE TABLE IF NOT EXISTS import_batches (
		id UUID PRIMARY KEY,
		course_id VARCHAR(20) NOT NULL,
		source VARCHAR(30) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		total_rows INTEGER NOT NULL DEFAULT 0,
		created_rows INTEGER NOT NULL DEFAULT 0,
		matched_rows INTEGER NOT NULL DEFAULT 0,
		skipped_rows INTEGER NOT NULL DEFAULT 0,
		error_rows INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS import_rows (
		id UUID PRIMARY KEY,
		batch_id UUID NOT NULL,
		course_id VARCHAR(20) NOT NULL,
		outcome VARCHAR(10) NOT NULL,
		matched_by VARCHAR(10),
		customer_id UUID,
		payload JSONB NOT NULL,
		error TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_import_rows_batch_id ON import_rows (batch_id)`,
	`CREATE TABLE IF NOT EXISTS pipeline_entries (
		id UUID PRIMARY KEY,
		course_id VARCHAR(20) NOT NULL,
		customer_id UUID NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'new',
		notes TEXT,
		assignee VARCHAR(255),
		last_activity_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_pipeline_open_entry ON pipeline_entries (course_id, customer_id) WHERE status NOT IN ('joined', 'passed')`,
	`CREATE TABLE IF NOT EXISTS segments (
		id UUID PRIMARY KEY,
		course_id VARCHAR(20) NOT NULL,
		name VARCHAR(255) NOT NULL,
		filters JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS email_queue (
		id UUID PRIMARY KEY,
		course_id VARCHAR(20) NOT NULL,
		customer_id UUID NOT NULL,
		recipient VARCHAR(255) NOT NULL,
		template VARCHAR(30) NOT NULL,
		subject VARCHAR(512) NOT NULL,
		html_body TEXT NOT NULL,
		text_body TEXT,
		status VARCHAR(10) NOT NULL DEFAULT 'pending',
		scheduled_at TIMESTAMP NOT NULL,
		sent_at TIMESTAMP,
		error TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_email_queue_due ON email_queue (status, scheduled_at)`,
}

// TableNames returns a list of all table names in creation order
var TableNames = []string{
	"courses",
	"locations",
	"ab_tests",
	"customers",
	"captures",
	"import_batches",
	"import_rows",
	"pipeline_entries",
	"segments",
	"email_queue",
}
