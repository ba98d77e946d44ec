package service

import (
	"time"

	"github.com/andresmejia/loantrack/internal/debt"
	"github.com/andresmejia/loantrack/internal/models"
)

// Summary computes the dashboard aggregates for a user's portfolio at now.
// Totals cover non-closed loans; the mora counters count clients, not
// loans, mirroring how the rollup status is presented.
func (s *Service) Summary(userID int64, now time.Time) (*models.PortfolioSummary, error) {
	loans, err := s.store.GetLoansByUser(userID)
	if err != nil {
		return nil, err
	}

	summary := &models.PortfolioSummary{}
	byClient := make(map[int64][]models.Loan)

	for _, loan := range loans {
		byClient[loan.ClientID] = append(byClient[loan.ClientID], loan)
		if loan.Status == models.LoanStatusClosed {
			continue
		}
		standing := debt.EvaluateLoan(loan, now)
		summary.TotalDebt += standing.TotalDebt
		summary.TotalCollected += standing.TotalPaid
		summary.TotalPending += standing.PendingDebt
		if loan.Status == models.LoanStatusActive {
			summary.ActiveLoans++
		}
	}

	for _, clientLoans := range byClient {
		switch debt.EvaluateClient(clientLoans, now).Status {
		case debt.StatusEnMora:
			summary.ClientsEnMora++
		case debt.StatusProximoMora:
			summary.ClientsProximoMora++
		}
	}

	payments, err := s.store.GetPaymentsByUser(userID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		summary.InterestEarnings += p.InterestPortion
		summary.LateFeeEarnings += p.LateFeePortion
	}

	return summary, nil
}
