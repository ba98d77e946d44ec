package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/andresmejia/loantrack/internal/models"
)

// Repository provides database operations backed by Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// loanColumns selects loan rows with total_paid derived from the payments
// table. The denormalized loans.total_paid column is maintained for raw
// readers but never trusted here.
const loanColumns = `
	l.id, l.user_id, l.client_id, l.contract_number, l.loan_type,
	l.principal_amount, l.disbursed_amount,
	l.interest_rate, l.interest_calculation_base,
	l.late_fee_type, l.late_fee_value,
	l.start_date, l.due_date, l.payment_frequency, l.grace_days,
	l.status,
	COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.loan_id = l.id), 0) AS total_paid,
	l.created_at, l.updated_at, l.closed_at`

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (full_name, email, phone, password_hash, pin_hash, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, TRUE)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.FullName, user.Email, user.Phone, user.PasswordHash, user.PinHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.IsActive = true
	return nil
}

// FindUserByEmail retrieves an active user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime
	query := `
		SELECT id, full_name, email, phone, password_hash, pin_hash, created_at, last_login, is_active
		FROM users
		WHERE email = $1 AND is_active = TRUE`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.FullName, &user.Email, &user.Phone, &user.PasswordHash, &user.PinHash,
			&user.CreatedAt, &lastLogin, &user.IsActive)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return user, nil
}

// TouchLastLogin records the time of a successful login
func (r *Repository) TouchLastLogin(userID int64, at time.Time) error {
	if _, err := r.db.Exec(`UPDATE users SET last_login = $1 WHERE id = $2`, at, userID); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// CreateClient creates a new client in the database
func (r *Repository) CreateClient(client *models.Client) error {
	query := `
		INSERT INTO clients (
			user_id, first_name, last_name, document_type, document_number,
			birth_date, gender, phone_primary, phone_secondary, email,
			address_line, city, province, country,
			occupation, workplace, monthly_income,
			reference_name, reference_phone, credit_limit, notes,
			created_at, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, CURRENT_TIMESTAMP, TRUE)
		RETURNING id, created_at`
	err := r.db.QueryRow(query,
		client.UserID, client.FirstName, client.LastName, client.DocumentType, client.DocumentNumber,
		client.BirthDate, client.Gender, client.PhonePrimary, client.PhoneSecondary, client.Email,
		client.AddressLine, client.City, client.Province, client.Country,
		client.Occupation, client.Workplace, client.MonthlyIncome,
		client.ReferenceName, client.ReferencePhone, client.CreditLimit, client.Notes,
	).Scan(&client.ID, &client.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	client.IsActive = true
	return nil
}

// GetClientsByUser retrieves all active clients belonging to a user
func (r *Repository) GetClientsByUser(userID int64) ([]models.Client, error) {
	query := clientColumns + ` WHERE user_id = $1 AND is_active = TRUE ORDER BY last_name, first_name`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	return clients, rows.Err()
}

// GetClientByID retrieves a client by its ID
func (r *Repository) GetClientByID(id int64) (*models.Client, error) {
	row := r.db.QueryRow(clientColumns+` WHERE id = $1`, id)
	client, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client not found")
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// UpdateClientContact updates a client's mutable contact fields
func (r *Repository) UpdateClientContact(id int64, phonePrimary, addressLine string) error {
	query := `
		UPDATE clients
		SET phone_primary = $1, address_line = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`
	if _, err := r.db.Exec(query, phonePrimary, addressLine, id); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// DeactivateClient soft-deletes a client
func (r *Repository) DeactivateClient(id int64) error {
	if _, err := r.db.Exec(`UPDATE clients SET is_active = FALSE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to deactivate client: %w", err)
	}
	return nil
}

// CreateLoan creates a new loan in the database
func (r *Repository) CreateLoan(loan *models.Loan) error {
	query := `
		INSERT INTO loans (
			user_id, client_id, contract_number, loan_type,
			principal_amount, disbursed_amount,
			interest_rate, interest_calculation_base,
			late_fee_type, late_fee_value,
			start_date, due_date, payment_frequency, grace_days,
			status, total_paid, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 0, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query,
		loan.UserID, loan.ClientID, loan.ContractNumber, loan.LoanType,
		loan.PrincipalAmount, loan.DisbursedAmount,
		loan.InterestRate, loan.InterestBase,
		loan.LateFeeType, loan.LateFeeValue,
		loan.StartDate, loan.DueDate, loan.PaymentFrequency, loan.GraceDays,
		loan.Status,
	).Scan(&loan.ID, &loan.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// GetLoanByID retrieves a loan by its ID
func (r *Repository) GetLoanByID(id int64) (*models.Loan, error) {
	row := r.db.QueryRow(`SELECT `+loanColumns+` FROM loans l WHERE l.id = $1`, id)
	loan, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("loan not found")
	}
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// GetLoansByClient retrieves all loans for a client
func (r *Repository) GetLoansByClient(clientID int64) ([]models.Loan, error) {
	return r.queryLoans(`SELECT `+loanColumns+` FROM loans l WHERE l.client_id = $1 ORDER BY l.created_at DESC`, clientID)
}

// GetLoansByUser retrieves all loans across a user's portfolio
func (r *Repository) GetLoansByUser(userID int64) ([]models.Loan, error) {
	return r.queryLoans(`SELECT `+loanColumns+` FROM loans l WHERE l.user_id = $1 ORDER BY l.created_at DESC`, userID)
}

// GetActiveLoans retrieves every active loan regardless of owner. Used by
// the delinquency sweep.
func (r *Repository) GetActiveLoans() ([]models.Loan, error) {
	return r.queryLoans(`SELECT `+loanColumns+` FROM loans l WHERE l.status = $1`, models.LoanStatusActive)
}

// UpdateLoanStatus transitions a loan's lifecycle status
func (r *Repository) UpdateLoanStatus(id int64, status string, closedAt *time.Time) error {
	query := `
		UPDATE loans
		SET status = $1, closed_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`
	if _, err := r.db.Exec(query, status, closedAt, id); err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}
	return nil
}

// CreatePayment inserts a payment and increments the loan's running total
// in one transaction, so the denormalized column can never drift from the
// payment rows.
func (r *Repository) CreatePayment(payment *models.Payment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO payments (
			loan_id, user_id, amount,
			capital_portion, interest_portion, late_fee_portion,
			payment_method, reference_number, payment_date, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err = tx.QueryRow(query,
		payment.LoanID, payment.UserID, payment.Amount,
		payment.CapitalPortion, payment.InterestPortion, payment.LateFeePortion,
		payment.PaymentMethod, payment.ReferenceNumber, payment.PaymentDate,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	if _, err := tx.Exec(`UPDATE loans SET total_paid = total_paid + $1 WHERE id = $2`, payment.Amount, payment.LoanID); err != nil {
		return fmt.Errorf("failed to update loan total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	return nil
}

// GetPaymentsByLoan retrieves all payments for a loan, newest first
func (r *Repository) GetPaymentsByLoan(loanID int64) ([]models.Payment, error) {
	return r.queryPayments(`WHERE loan_id = $1`, loanID)
}

// GetPaymentsByUser retrieves all payments recorded by a user
func (r *Repository) GetPaymentsByUser(userID int64) ([]models.Payment, error) {
	return r.queryPayments(`WHERE user_id = $1`, userID)
}

func (r *Repository) queryLoans(query string, arg interface{}) ([]models.Loan, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

func (r *Repository) queryPayments(where string, arg interface{}) ([]models.Payment, error) {
	query := `
		SELECT id, loan_id, user_id, amount,
			capital_portion, interest_portion, late_fee_portion,
			payment_method, reference_number, payment_date, created_at
		FROM payments ` + where + ` ORDER BY payment_date DESC`
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(
			&p.ID, &p.LoanID, &p.UserID, &p.Amount,
			&p.CapitalPortion, &p.InterestPortion, &p.LateFeePortion,
			&p.PaymentMethod, &p.ReferenceNumber, &p.PaymentDate, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

const clientColumns = `
	SELECT id, user_id, first_name, last_name, document_type, document_number,
		birth_date, gender, phone_primary, phone_secondary, email,
		address_line, city, province, country,
		occupation, workplace, monthly_income,
		reference_name, reference_phone, credit_limit, notes,
		created_at, updated_at, is_active
	FROM clients`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row scanner) (*models.Client, error) {
	client := &models.Client{}
	var updatedAt sql.NullTime
	err := row.Scan(
		&client.ID, &client.UserID, &client.FirstName, &client.LastName,
		&client.DocumentType, &client.DocumentNumber,
		&client.BirthDate, &client.Gender,
		&client.PhonePrimary, &client.PhoneSecondary, &client.Email,
		&client.AddressLine, &client.City, &client.Province, &client.Country,
		&client.Occupation, &client.Workplace, &client.MonthlyIncome,
		&client.ReferenceName, &client.ReferencePhone, &client.CreditLimit, &client.Notes,
		&client.CreatedAt, &updatedAt, &client.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	if updatedAt.Valid {
		client.UpdatedAt = &updatedAt.Time
	}
	return client, nil
}

func scanLoan(row scanner) (*models.Loan, error) {
	loan := &models.Loan{}
	var dueDate, updatedAt, closedAt sql.NullTime
	err := row.Scan(
		&loan.ID, &loan.UserID, &loan.ClientID, &loan.ContractNumber, &loan.LoanType,
		&loan.PrincipalAmount, &loan.DisbursedAmount,
		&loan.InterestRate, &loan.InterestBase,
		&loan.LateFeeType, &loan.LateFeeValue,
		&loan.StartDate, &dueDate, &loan.PaymentFrequency, &loan.GraceDays,
		&loan.Status, &loan.TotalPaid,
		&loan.CreatedAt, &updatedAt, &closedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}
	if dueDate.Valid {
		loan.DueDate = &dueDate.Time
	}
	if updatedAt.Valid {
		loan.UpdatedAt = &updatedAt.Time
	}
	if closedAt.Valid {
		loan.ClosedAt = &closedAt.Time
	}
	return loan, nil
}
