package repository

import (
	"database/sql"
	"fmt"
)

// InitSchema creates the tables and indexes if they do not exist yet
func InitSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		pin_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		last_login TIMESTAMPTZ,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_users_active ON users(is_active);

	CREATE TABLE IF NOT EXISTS clients (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,

		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		document_type TEXT NOT NULL,
		document_number TEXT NOT NULL UNIQUE,

		birth_date TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',

		phone_primary TEXT NOT NULL,
		phone_secondary TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',

		address_line TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		province TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',

		occupation TEXT NOT NULL DEFAULT '',
		workplace TEXT NOT NULL DEFAULT '',
		monthly_income DOUBLE PRECISION NOT NULL DEFAULT 0,

		reference_name TEXT NOT NULL DEFAULT '',
		reference_phone TEXT NOT NULL DEFAULT '',

		credit_limit DOUBLE PRECISION NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',

		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_clients_user ON clients(user_id);
	CREATE INDEX IF NOT EXISTS idx_clients_document ON clients(document_number);

	CREATE TABLE IF NOT EXISTS loans (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE RESTRICT,

		contract_number TEXT UNIQUE,
		loan_type TEXT NOT NULL DEFAULT 'personal',

		principal_amount DOUBLE PRECISION NOT NULL,
		disbursed_amount DOUBLE PRECISION NOT NULL,

		interest_rate DOUBLE PRECISION NOT NULL,
		interest_calculation_base TEXT NOT NULL,

		late_fee_type TEXT NOT NULL,
		late_fee_value DOUBLE PRECISION NOT NULL,

		start_date TIMESTAMPTZ NOT NULL,
		due_date TIMESTAMPTZ,

		payment_frequency TEXT NOT NULL,
		grace_days INT NOT NULL DEFAULT 0,

		status TEXT NOT NULL,
		total_paid DOUBLE PRECISION NOT NULL DEFAULT 0,

		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ,
		closed_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_loans_client ON loans(client_id);
	CREATE INDEX IF NOT EXISTS idx_loans_status ON loans(status);

	CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		loan_id BIGINT NOT NULL REFERENCES loans(id) ON DELETE RESTRICT,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,

		amount DOUBLE PRECISION NOT NULL,
		capital_portion DOUBLE PRECISION NOT NULL DEFAULT 0,
		interest_portion DOUBLE PRECISION NOT NULL DEFAULT 0,
		late_fee_portion DOUBLE PRECISION NOT NULL DEFAULT 0,

		payment_method TEXT NOT NULL DEFAULT '',
		reference_number TEXT NOT NULL DEFAULT '',

		payment_date TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_loan ON payments(loan_id);
	CREATE INDEX IF NOT EXISTS idx_payments_date ON payments(payment_date);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
