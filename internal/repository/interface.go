package repository

import (
	"time"

	"github.com/andresmejia/loantrack/internal/models"
)

// Store defines the narrow query surface the service layer depends on.
// Implementations must return loans with TotalPaid already derived from the
// payments table, and must persist a payment and the loan's running total
// in a single transaction.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	TouchLastLogin(userID int64, at time.Time) error

	CreateClient(client *models.Client) error
	GetClientsByUser(userID int64) ([]models.Client, error)
	GetClientByID(id int64) (*models.Client, error)
	UpdateClientContact(id int64, phonePrimary, addressLine string) error
	DeactivateClient(id int64) error

	CreateLoan(loan *models.Loan) error
	GetLoanByID(id int64) (*models.Loan, error)
	GetLoansByClient(clientID int64) ([]models.Loan, error)
	GetLoansByUser(userID int64) ([]models.Loan, error)
	GetActiveLoans() ([]models.Loan, error)
	UpdateLoanStatus(id int64, status string, closedAt *time.Time) error

	CreatePayment(payment *models.Payment) error
	GetPaymentsByLoan(loanID int64) ([]models.Payment, error)
	GetPaymentsByUser(userID int64) ([]models.Payment, error)
}
