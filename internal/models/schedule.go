package models

import "time"

// InstallmentStatusPending is the initial status of every schedule entry.
// The calculator never transitions entries; that is up to the caller.
const InstallmentStatusPending = "pending"

// InstallmentEntry represents one row of a French amortization schedule.
// Monetary figures are kept unrounded; rounding to currency precision is a
// display concern.
type InstallmentEntry struct {
	Number           int       `json:"installment_number"`
	DueDate          time.Time `json:"due_date"`
	ScheduledAmount  float64   `json:"scheduled_amount"`
	CapitalAmount    float64   `json:"capital_amount"`
	InterestAmount   float64   `json:"interest_amount"`
	RemainingBalance float64   `json:"remaining_balance"`
	Status           string    `json:"status"`
}
