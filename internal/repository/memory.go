package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andresmejia/loantrack/internal/models"
)

// MemStore is an in-memory Store used by tests. It mirrors the Postgres
// repository's behavior, including deriving TotalPaid from payment rows on
// every loan read.
type MemStore struct {
	mu       sync.Mutex
	users    map[int64]*models.User
	clients  map[int64]*models.Client
	loans    map[int64]*models.Loan
	payments map[int64]*models.Payment
	nextID   int64
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[int64]*models.User),
		clients:  make(map[int64]*models.Client),
		loans:    make(map[int64]*models.Loan),
		payments: make(map[int64]*models.Payment),
	}
}

func (m *MemStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemStore) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("email already registered")
		}
	}
	user.ID = m.id()
	user.CreatedAt = time.Now()
	user.IsActive = true
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemStore) FindUserByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email && u.IsActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (m *MemStore) TouchLastLogin(userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.LastLogin = &at
	return nil
}

func (m *MemStore) CreateClient(client *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	client.ID = m.id()
	client.CreatedAt = time.Now()
	client.IsActive = true
	cp := *client
	m.clients[client.ID] = &cp
	return nil
}

func (m *MemStore) GetClientsByUser(userID int64) ([]models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var clients []models.Client
	for _, c := range m.clients {
		if c.UserID == userID && c.IsActive {
			clients = append(clients, *c)
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
	return clients, nil
}

func (m *MemStore) GetClientByID(id int64) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("client not found")
	}
	cp := *c
	return &cp, nil
}

func (m *MemStore) UpdateClientContact(id int64, phonePrimary, addressLine string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return fmt.Errorf("client not found")
	}
	now := time.Now()
	c.PhonePrimary = phonePrimary
	c.AddressLine = addressLine
	c.UpdatedAt = &now
	return nil
}

func (m *MemStore) DeactivateClient(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return fmt.Errorf("client not found")
	}
	c.IsActive = false
	return nil
}

func (m *MemStore) CreateLoan(loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan.ID = m.id()
	loan.CreatedAt = time.Now()
	cp := *loan
	m.loans[loan.ID] = &cp
	return nil
}

func (m *MemStore) GetLoanByID(id int64) (*models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[id]
	if !ok {
		return nil, fmt.Errorf("loan not found")
	}
	cp := *l
	cp.TotalPaid = m.sumPayments(id)
	return &cp, nil
}

func (m *MemStore) GetLoansByClient(clientID int64) ([]models.Loan, error) {
	return m.selectLoans(func(l *models.Loan) bool { return l.ClientID == clientID })
}

func (m *MemStore) GetLoansByUser(userID int64) ([]models.Loan, error) {
	return m.selectLoans(func(l *models.Loan) bool { return l.UserID == userID })
}

func (m *MemStore) GetActiveLoans() ([]models.Loan, error) {
	return m.selectLoans(func(l *models.Loan) bool { return l.Status == models.LoanStatusActive })
}

func (m *MemStore) UpdateLoanStatus(id int64, status string, closedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[id]
	if !ok {
		return fmt.Errorf("loan not found")
	}
	now := time.Now()
	l.Status = status
	l.ClosedAt = closedAt
	l.UpdatedAt = &now
	return nil
}

func (m *MemStore) CreatePayment(payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[payment.LoanID]; !ok {
		return fmt.Errorf("loan not found")
	}
	payment.ID = m.id()
	payment.CreatedAt = time.Now()
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *MemStore) GetPaymentsByLoan(loanID int64) ([]models.Payment, error) {
	return m.selectPayments(func(p *models.Payment) bool { return p.LoanID == loanID })
}

func (m *MemStore) GetPaymentsByUser(userID int64) ([]models.Payment, error) {
	return m.selectPayments(func(p *models.Payment) bool { return p.UserID == userID })
}

func (m *MemStore) selectLoans(keep func(*models.Loan) bool) ([]models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var loans []models.Loan
	for _, l := range m.loans {
		if keep(l) {
			cp := *l
			cp.TotalPaid = m.sumPayments(l.ID)
			loans = append(loans, cp)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}

func (m *MemStore) selectPayments(keep func(*models.Payment) bool) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var payments []models.Payment
	for _, p := range m.payments {
		if keep(p) {
			payments = append(payments, *p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

// sumPayments derives a loan's running total; callers must hold mu
func (m *MemStore) sumPayments(loanID int64) float64 {
	var total float64
	for _, p := range m.payments {
		if p.LoanID == loanID {
			total += p.Amount
		}
	}
	return total
}
