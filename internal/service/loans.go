package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresmejia/loantrack/internal/amortization"
	"github.com/andresmejia/loantrack/internal/debt"
	"github.com/andresmejia/loantrack/internal/export"
	"github.com/andresmejia/loantrack/internal/models"
	"github.com/google/uuid"
)

// LoanDetail is the full view of a loan: evaluated standing plus its
// payment history
type LoanDetail struct {
	Loan     models.Loan       `json:"loan"`
	Standing debt.LoanStanding `json:"standing"`
	Payments []models.Payment  `json:"payments"`
}

// CreateLoan validates the contract terms, persists the loan and returns
// it together with a repayment schedule preview when a due date is set.
// Terms are immutable after this point.
func (s *Service) CreateLoan(loan *models.Loan) (*models.Loan, []models.InstallmentEntry, error) {
	client, err := s.store.GetClientByID(loan.ClientID)
	if err != nil {
		return nil, nil, err
	}
	if client.UserID != loan.UserID {
		return nil, nil, fmt.Errorf("client does not belong to user")
	}
	if !client.IsActive {
		return nil, nil, fmt.Errorf("client is not active")
	}

	if loan.PrincipalAmount <= 0 {
		return nil, nil, fmt.Errorf("principal must be positive")
	}
	if loan.InterestRate < 0 {
		return nil, nil, fmt.Errorf("interest rate must not be negative")
	}
	switch loan.LateFeeType {
	case models.LateFeeTypePercentage, models.LateFeeTypeFixed:
	default:
		return nil, nil, fmt.Errorf("late fee type must be percentage or fixed")
	}
	if loan.DueDate != nil && !loan.DueDate.After(loan.StartDate) {
		return nil, nil, fmt.Errorf("due date must be after start date")
	}

	if loan.DisbursedAmount == 0 {
		loan.DisbursedAmount = loan.PrincipalAmount
	}
	if loan.LoanType == "" {
		loan.LoanType = "personal"
	}
	if loan.InterestBase == "" {
		loan.InterestBase = "monthly"
	}
	if loan.PaymentFrequency == "" {
		loan.PaymentFrequency = string(amortization.FrequencyMonthly)
	}
	if loan.StartDate.IsZero() {
		loan.StartDate = time.Now()
	}
	loan.ContractNumber = newContractNumber()
	loan.Status = models.LoanStatusActive

	// Generate the schedule preview before persisting so invalid terms
	// (unknown frequency) reject the loan instead of surfacing later.
	var schedule []models.InstallmentEntry
	if loan.DueDate != nil {
		schedule, err = s.scheduleFor(loan)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := s.store.CreateLoan(loan); err != nil {
		return nil, nil, err
	}

	s.log.Infof("Loan %s created for client %d: %.2f at %.2f%%", loan.ContractNumber, loan.ClientID, loan.PrincipalAmount, loan.InterestRate)
	return loan, schedule, nil
}

// GetLoan returns a loan with its standing evaluated at now and its
// payment history
func (s *Service) GetLoan(id, userID int64, now time.Time) (*LoanDetail, error) {
	loan, err := s.store.GetLoanByID(id)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		return nil, fmt.Errorf("loan does not belong to user")
	}

	payments, err := s.store.GetPaymentsByLoan(id)
	if err != nil {
		return nil, err
	}

	return &LoanDetail{
		Loan:     *loan,
		Standing: debt.EvaluateLoan(*loan, now),
		Payments: payments,
	}, nil
}

// Schedule returns the amortization schedule for a loan's terms
func (s *Service) Schedule(id, userID int64) ([]models.InstallmentEntry, error) {
	loan, err := s.store.GetLoanByID(id)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		return nil, fmt.Errorf("loan does not belong to user")
	}
	if loan.DueDate == nil {
		return nil, fmt.Errorf("loan has no due date")
	}
	return s.scheduleFor(loan)
}

// Statement builds the XML statement for a loan: contract terms, standing
// evaluated at now and the repayment plan
func (s *Service) Statement(id, userID int64, now time.Time) ([]byte, error) {
	loan, err := s.store.GetLoanByID(id)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		return nil, fmt.Errorf("loan does not belong to user")
	}

	client, err := s.store.GetClientByID(loan.ClientID)
	if err != nil {
		return nil, err
	}

	var schedule []models.InstallmentEntry
	if loan.DueDate != nil {
		if schedule, err = s.scheduleFor(loan); err != nil {
			return nil, err
		}
	}

	return export.LoanStatement(*loan, *client, debt.EvaluateLoan(*loan, now), schedule, now)
}

// CloseLoan transitions an active loan to closed
func (s *Service) CloseLoan(id, userID int64) error {
	loan, err := s.store.GetLoanByID(id)
	if err != nil {
		return err
	}
	if loan.UserID != userID {
		return fmt.Errorf("loan does not belong to user")
	}
	if loan.Status != models.LoanStatusActive {
		return fmt.Errorf("loan is not active")
	}

	now := time.Now()
	if err := s.store.UpdateLoanStatus(id, models.LoanStatusClosed, &now); err != nil {
		return err
	}

	s.log.Infof("Loan %s closed", loan.ContractNumber)

	if s.mail != nil {
		if client, err := s.store.GetClientByID(loan.ClientID); err == nil && client.Email != "" {
			if err := s.mail.SendLoanClosedNotice(client.Email, client.FirstName+" "+client.LastName, loan.ContractNumber); err != nil {
				s.log.Warnf("Failed to send closed notice for loan %s: %v", loan.ContractNumber, err)
			}
		}
	}
	return nil
}

// RecordPayment validates and persists an abono. The payment insert and
// the loan's running-total update happen in one store transaction.
func (s *Service) RecordPayment(payment *models.Payment) (*models.Payment, error) {
	if payment.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	breakdown := payment.CapitalPortion + payment.InterestPortion + payment.LateFeePortion
	if breakdown > payment.Amount {
		return nil, fmt.Errorf("payment breakdown exceeds amount")
	}

	loan, err := s.store.GetLoanByID(payment.LoanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != payment.UserID {
		return nil, fmt.Errorf("loan does not belong to user")
	}
	if loan.Status != models.LoanStatusActive {
		return nil, fmt.Errorf("loan is not active")
	}

	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}
	if payment.ReferenceNumber == "" {
		payment.ReferenceNumber = newPaymentReference()
	}

	if err := s.store.CreatePayment(payment); err != nil {
		return nil, err
	}

	s.log.Infof("Payment of %.2f recorded for loan %s (reference %s)", payment.Amount, loan.ContractNumber, payment.ReferenceNumber)
	return payment, nil
}

func (s *Service) scheduleFor(loan *models.Loan) ([]models.InstallmentEntry, error) {
	frequency := amortization.Frequency(loan.PaymentFrequency)
	installments, err := amortization.Periods(loan.StartDate, *loan.DueDate, frequency)
	if err != nil {
		return nil, err
	}
	// Stored rates are percentages per period; the calculator works on
	// the fractional rate.
	return amortization.GenerateSchedule(loan.PrincipalAmount, loan.InterestRate/100, installments, loan.StartDate, frequency)
}

func newContractNumber() string {
	return "CT-" + strings.ToUpper(uuid.NewString()[:8])
}

func newPaymentReference() string {
	return "AB-" + strings.ToUpper(uuid.NewString()[:8])
}
