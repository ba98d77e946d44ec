package models

import "time"

// Loan lifecycle statuses. Delinquency (mora) is never stored here; it is
// derived from the due date and grace window at read time.
const (
	LoanStatusActive = "active"
	LoanStatusClosed = "closed"
)

// Late-fee policy types
const (
	LateFeeTypePercentage = "percentage"
	LateFeeTypeFixed      = "fixed"
)

// Loan represents a disbursed loan with immutable contract terms.
// TotalPaid is derived from the payments table at read time and is never
// written through this struct.
type Loan struct {
	ID       int64 `json:"id"`
	UserID   int64 `json:"user_id"`
	ClientID int64 `json:"client_id"`

	ContractNumber string `json:"contract_number"`
	LoanType       string `json:"loan_type"`

	PrincipalAmount float64 `json:"principal_amount"`
	DisbursedAmount float64 `json:"disbursed_amount"`

	InterestRate float64 `json:"interest_rate"` // percent per period
	InterestBase string  `json:"interest_calculation_base"`

	LateFeeType  string  `json:"late_fee_type"`
	LateFeeValue float64 `json:"late_fee_value"`

	StartDate time.Time  `json:"start_date"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	PaymentFrequency string `json:"payment_frequency"`
	GraceDays        int    `json:"grace_days"`

	Status    string  `json:"status"`
	TotalPaid float64 `json:"total_paid"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}
