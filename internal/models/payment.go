package models

import "time"

// Payment represents an abono made toward a loan. The breakdown portions are
// optional; when present they must not exceed the total amount.
type Payment struct {
	ID     int64 `json:"id"`
	LoanID int64 `json:"loan_id"`
	UserID int64 `json:"user_id"`

	Amount          float64 `json:"amount"`
	CapitalPortion  float64 `json:"capital_portion,omitempty"`
	InterestPortion float64 `json:"interest_portion,omitempty"`
	LateFeePortion  float64 `json:"late_fee_portion,omitempty"`

	PaymentMethod   string `json:"payment_method,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`

	PaymentDate time.Time `json:"payment_date"`
	CreatedAt   time.Time `json:"created_at"`
}
