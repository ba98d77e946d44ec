package service

import (
	"fmt"
	"time"

	"github.com/andresmejia/loantrack/internal/debt"
	"github.com/andresmejia/loantrack/internal/models"
)

// ClientOverview pairs a client with the evaluated standing of its loans
type ClientOverview struct {
	Client   models.Client       `json:"client"`
	Standing debt.ClientStanding `json:"standing"`
}

// LoanOverview pairs a loan with its evaluated standing
type LoanOverview struct {
	Loan     models.Loan       `json:"loan"`
	Standing debt.LoanStanding `json:"standing"`
}

// ClientDetail is the full view of a client: rollup standing plus every
// loan evaluated individually
type ClientDetail struct {
	Client   models.Client       `json:"client"`
	Standing debt.ClientStanding `json:"standing"`
	Loans    []LoanOverview      `json:"loans"`
}

// CreateClient registers a new client after validating required fields
func (s *Service) CreateClient(client *models.Client) (*models.Client, error) {
	if client.FirstName == "" || client.LastName == "" {
		return nil, fmt.Errorf("first and last name are required")
	}
	if client.DocumentType == "" || client.DocumentNumber == "" {
		return nil, fmt.Errorf("document type and number are required")
	}
	if client.PhonePrimary == "" {
		return nil, fmt.Errorf("primary phone is required")
	}
	if client.AddressLine == "" {
		return nil, fmt.Errorf("address is required")
	}

	if err := s.store.CreateClient(client); err != nil {
		return nil, err
	}

	s.log.Infof("Client registered: %s %s (document %s)", client.FirstName, client.LastName, client.DocumentNumber)
	return client, nil
}

// ListClients returns every active client of a user with their debt
// standing evaluated at now
func (s *Service) ListClients(userID int64, now time.Time) ([]ClientOverview, error) {
	clients, err := s.store.GetClientsByUser(userID)
	if err != nil {
		return nil, err
	}

	overviews := make([]ClientOverview, 0, len(clients))
	for _, client := range clients {
		loans, err := s.store.GetLoansByClient(client.ID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, ClientOverview{
			Client:   client,
			Standing: debt.EvaluateClient(loans, now),
		})
	}
	return overviews, nil
}

// GetClient returns a client with its rollup standing and every loan
// evaluated individually
func (s *Service) GetClient(id, userID int64, now time.Time) (*ClientDetail, error) {
	client, err := s.store.GetClientByID(id)
	if err != nil {
		return nil, err
	}
	if client.UserID != userID {
		return nil, fmt.Errorf("client does not belong to user")
	}

	loans, err := s.store.GetLoansByClient(client.ID)
	if err != nil {
		return nil, err
	}

	detail := &ClientDetail{
		Client:   *client,
		Standing: debt.EvaluateClient(loans, now),
		Loans:    make([]LoanOverview, 0, len(loans)),
	}
	for _, loan := range loans {
		detail.Loans = append(detail.Loans, LoanOverview{
			Loan:     loan,
			Standing: debt.EvaluateLoan(loan, now),
		})
	}
	return detail, nil
}

// UpdateClientContact updates a client's phone and address
func (s *Service) UpdateClientContact(id, userID int64, phonePrimary, addressLine string) error {
	client, err := s.store.GetClientByID(id)
	if err != nil {
		return err
	}
	if client.UserID != userID {
		return fmt.Errorf("client does not belong to user")
	}
	return s.store.UpdateClientContact(id, phonePrimary, addressLine)
}

// DeactivateClient soft-deletes a client. Clients with open loans cannot
// be deactivated.
func (s *Service) DeactivateClient(id, userID int64) error {
	client, err := s.store.GetClientByID(id)
	if err != nil {
		return err
	}
	if client.UserID != userID {
		return fmt.Errorf("client does not belong to user")
	}

	loans, err := s.store.GetLoansByClient(id)
	if err != nil {
		return err
	}
	for _, loan := range loans {
		if loan.Status == models.LoanStatusActive {
			return fmt.Errorf("client has an active loan")
		}
	}

	s.log.Infof("Client deactivated: %d", id)
	return s.store.DeactivateClient(id)
}
