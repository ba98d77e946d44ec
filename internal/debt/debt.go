// Package debt derives real-time loan and client debt standings from stored
// terms and cumulative payments. Results depend on the reference time and
// must be recomputed on every read, never cached.
package debt

import (
	"math"
	"time"

	"github.com/andresmejia/loantrack/internal/models"
)

// Derived delinquency statuses, worst first
const (
	StatusEnMora      = "en-mora"
	StatusProximoMora = "proximo-mora"
	StatusAlDia       = "al-dia"
	StatusUnknown     = "desconocido"
)

// proximityWindowDays is how many days before the due date a loan is
// reported as approaching delinquency.
const proximityWindowDays = 7

// LoanStanding is the evaluated financial state of a single loan
type LoanStanding struct {
	TotalDebt      float64 `json:"total_debt"`
	TotalPaid      float64 `json:"total_paid"`
	PendingDebt    float64 `json:"pending_debt"`
	Status         string  `json:"status"`
	LateFeeAccrued float64 `json:"late_fee_accrued"`
}

// ClientStanding is the rollup of all of a client's non-closed loans
type ClientStanding struct {
	TotalDebt   float64 `json:"total_debt"`
	TotalPaid   float64 `json:"total_paid"`
	PendingDebt float64 `json:"pending_debt"`
	Status      string  `json:"status"`
	ActiveLoans int     `json:"active_loans"`
}

// EvaluateLoan derives a loan's totals and delinquency status at the given
// time. PendingDebt is not clamped: an overpaid loan reports a negative
// value, which callers surface as a credit balance. Loans that are not
// active keep their lifecycle status and are never delinquency-evaluated.
func EvaluateLoan(loan models.Loan, now time.Time) LoanStanding {
	standing := LoanStanding{
		TotalDebt:   loan.PrincipalAmount,
		TotalPaid:   loan.TotalPaid,
		PendingDebt: loan.PrincipalAmount - loan.TotalPaid,
	}

	if loan.Status != models.LoanStatusActive {
		standing.Status = loan.Status
		return standing
	}
	if loan.DueDate == nil {
		standing.Status = StatusUnknown
		return standing
	}

	standing.Status = delinquencyStatus(*loan.DueDate, loan.GraceDays, now)
	if standing.Status == StatusEnMora {
		standing.LateFeeAccrued = lateFee(loan, standing.PendingDebt)
	}
	return standing
}

// EvaluateClient rolls up all non-closed loans into client-level totals and
// a single worst-case status. A client with no loans is current with zero
// totals. Loans with an unknown standing count toward the totals but never
// toward the delinquency precedence.
func EvaluateClient(loans []models.Loan, now time.Time) ClientStanding {
	standing := ClientStanding{Status: StatusAlDia}

	for _, loan := range loans {
		if loan.Status == models.LoanStatusClosed {
			continue
		}
		ls := EvaluateLoan(loan, now)
		standing.TotalDebt += ls.TotalDebt
		standing.TotalPaid += ls.TotalPaid
		standing.PendingDebt += ls.PendingDebt
		standing.ActiveLoans++

		switch ls.Status {
		case StatusEnMora:
			standing.Status = StatusEnMora
		case StatusProximoMora:
			if standing.Status != StatusEnMora {
				standing.Status = StatusProximoMora
			}
		}
	}

	return standing
}

// delinquencyStatus classifies a due date against the grace window. The
// loan is delinquent only once now is strictly past due date plus grace
// days; until then an overdue or due-today loan is still current, and a
// loan due within the next seven days is approaching delinquency.
func delinquencyStatus(dueDate time.Time, graceDays int, now time.Time) string {
	graceDate := dueDate.AddDate(0, 0, graceDays)
	if now.After(graceDate) {
		return StatusEnMora
	}

	daysUntilDue := int(math.Ceil(dueDate.Sub(now).Hours() / 24))
	if daysUntilDue > 0 && daysUntilDue <= proximityWindowDays {
		return StatusProximoMora
	}
	return StatusAlDia
}

// lateFee applies the loan's late-fee policy to the pending balance. Fees
// only accrue while the loan is delinquent.
func lateFee(loan models.Loan, pendingDebt float64) float64 {
	switch loan.LateFeeType {
	case models.LateFeeTypePercentage:
		if pendingDebt <= 0 {
			return 0
		}
		return pendingDebt * loan.LateFeeValue / 100
	case models.LateFeeTypeFixed:
		return loan.LateFeeValue
	default:
		return 0
	}
}
