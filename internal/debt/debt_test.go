package debt

import (
	"math"
	"testing"
	"time"

	"github.com/andresmejia/loantrack/internal/models"
)

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func activeLoan(principal, paid float64, dueDate *time.Time, graceDays int) models.Loan {
	return models.Loan{
		PrincipalAmount: principal,
		TotalPaid:       paid,
		DueDate:         dueDate,
		GraceDays:       graceDays,
		Status:          models.LoanStatusActive,
	}
}

func TestEvaluateLoanOverdue(t *testing.T) {
	now := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	loan := activeLoan(10000, 3000, datePtr(2025, time.January, 1), 3)

	standing := EvaluateLoan(loan, now)

	if standing.Status != StatusEnMora {
		t.Errorf("status = %q, want %q", standing.Status, StatusEnMora)
	}
	if standing.TotalDebt != 10000 {
		t.Errorf("total debt = %f, want 10000", standing.TotalDebt)
	}
	if standing.PendingDebt != 7000 {
		t.Errorf("pending debt = %f, want 7000", standing.PendingDebt)
	}
}

func TestEvaluateLoanGraceWindow(t *testing.T) {
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := activeLoan(5000, 0, &due, 3)

	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{"due today", due, StatusAlDia},
		{"within grace", due.AddDate(0, 0, 2), StatusAlDia},
		{"last grace day", due.AddDate(0, 0, 3), StatusAlDia},
		{"past grace", due.AddDate(0, 0, 3).Add(time.Second), StatusEnMora},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EvaluateLoan(loan, tc.now).Status; got != tc.want {
				t.Errorf("status = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEvaluateLoanProximityWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		due  time.Time
		want string
	}{
		{"due tomorrow", now.AddDate(0, 0, 1), StatusProximoMora},
		{"due in seven days", now.AddDate(0, 0, 7), StatusProximoMora},
		{"due in eight days", now.AddDate(0, 0, 8), StatusAlDia},
		{"due next month", now.AddDate(0, 1, 0), StatusAlDia},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loan := activeLoan(1000, 0, &tc.due, 0)
			if got := EvaluateLoan(loan, now).Status; got != tc.want {
				t.Errorf("status = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEvaluateLoanNoDueDate(t *testing.T) {
	now := time.Now()
	loan := activeLoan(1000, 200, nil, 0)

	standing := EvaluateLoan(loan, now)
	if standing.Status != StatusUnknown {
		t.Errorf("status = %q, want %q", standing.Status, StatusUnknown)
	}
	if standing.PendingDebt != 800 {
		t.Errorf("pending debt = %f, want 800", standing.PendingDebt)
	}
}

func TestEvaluateLoanClosedKeepsLifecycleStatus(t *testing.T) {
	now := time.Now()
	loan := activeLoan(1000, 1000, datePtr(2020, time.January, 1), 0)
	loan.Status = models.LoanStatusClosed

	standing := EvaluateLoan(loan, now)
	if standing.Status != models.LoanStatusClosed {
		t.Errorf("status = %q, want %q", standing.Status, models.LoanStatusClosed)
	}
	if standing.LateFeeAccrued != 0 {
		t.Errorf("late fee = %f, want 0", standing.LateFeeAccrued)
	}
}

func TestEvaluateLoanOverpayment(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	loan := activeLoan(1000, 1200, datePtr(2025, time.December, 1), 0)

	standing := EvaluateLoan(loan, now)
	if standing.PendingDebt != -200 {
		t.Errorf("pending debt = %f, want -200 (credit balance)", standing.PendingDebt)
	}
}

func TestEvaluateLoanLateFee(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	due := datePtr(2025, time.January, 1)

	percentage := activeLoan(10000, 2000, due, 0)
	percentage.LateFeeType = models.LateFeeTypePercentage
	percentage.LateFeeValue = 5

	standing := EvaluateLoan(percentage, now)
	if math.Abs(standing.LateFeeAccrued-400) > 1e-9 {
		t.Errorf("percentage late fee = %f, want 400", standing.LateFeeAccrued)
	}

	fixed := activeLoan(10000, 2000, due, 0)
	fixed.LateFeeType = models.LateFeeTypeFixed
	fixed.LateFeeValue = 150

	if got := EvaluateLoan(fixed, now).LateFeeAccrued; got != 150 {
		t.Errorf("fixed late fee = %f, want 150", got)
	}

	// Overpaid loans accrue no percentage fee
	overpaid := activeLoan(1000, 1500, due, 0)
	overpaid.LateFeeType = models.LateFeeTypePercentage
	overpaid.LateFeeValue = 5

	if got := EvaluateLoan(overpaid, now).LateFeeAccrued; got != 0 {
		t.Errorf("overpaid late fee = %f, want 0", got)
	}
}

func TestEvaluateClientPrecedence(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	current := activeLoan(1000, 500, datePtr(2025, time.December, 1), 0)
	upcoming := activeLoan(2000, 0, datePtr(2025, time.June, 18), 0)
	overdue := activeLoan(3000, 100, datePtr(2025, time.May, 1), 3)

	cases := []struct {
		name  string
		loans []models.Loan
		want  string
	}{
		{"all current", []models.Loan{current}, StatusAlDia},
		{"upcoming wins over current", []models.Loan{current, upcoming}, StatusProximoMora},
		{"overdue wins over all", []models.Loan{current, overdue, upcoming}, StatusEnMora},
		{"order independent", []models.Loan{upcoming, current, overdue}, StatusEnMora},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EvaluateClient(tc.loans, now).Status; got != tc.want {
				t.Errorf("status = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEvaluateClientExcludesClosedLoans(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	closed := activeLoan(9000, 9000, datePtr(2025, time.January, 1), 0)
	closed.Status = models.LoanStatusClosed
	open := activeLoan(1000, 400, datePtr(2025, time.December, 1), 0)

	standing := EvaluateClient([]models.Loan{closed, open}, now)
	if standing.TotalDebt != 1000 {
		t.Errorf("total debt = %f, want 1000", standing.TotalDebt)
	}
	if standing.TotalPaid != 400 {
		t.Errorf("total paid = %f, want 400", standing.TotalPaid)
	}
	if standing.ActiveLoans != 1 {
		t.Errorf("active loans = %d, want 1", standing.ActiveLoans)
	}
	if standing.Status != StatusAlDia {
		t.Errorf("status = %q, want %q", standing.Status, StatusAlDia)
	}
}

func TestEvaluateClientUnknownCountsTowardTotalsOnly(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	unknown := activeLoan(5000, 1000, nil, 0)
	upcoming := activeLoan(2000, 0, datePtr(2025, time.June, 18), 0)

	standing := EvaluateClient([]models.Loan{unknown, upcoming}, now)
	if standing.TotalDebt != 7000 {
		t.Errorf("total debt = %f, want 7000", standing.TotalDebt)
	}
	if standing.Status != StatusProximoMora {
		t.Errorf("status = %q, want %q", standing.Status, StatusProximoMora)
	}
}

func TestEvaluateClientNoLoans(t *testing.T) {
	standing := EvaluateClient(nil, time.Now())
	if standing.Status != StatusAlDia {
		t.Errorf("status = %q, want %q", standing.Status, StatusAlDia)
	}
	if standing.TotalDebt != 0 || standing.TotalPaid != 0 || standing.PendingDebt != 0 {
		t.Errorf("totals = %+v, want zeros", standing)
	}
}
