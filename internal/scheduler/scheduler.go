// Package scheduler runs the periodic delinquency sweep over the loan book.
package scheduler

import (
	"time"

	"github.com/andresmejia/loantrack/internal/debt"
	"github.com/andresmejia/loantrack/internal/repository"
	"github.com/andresmejia/loantrack/internal/utils/email"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler evaluates every active loan once a day, logs delinquency
// transitions and notifies clients by email. It never persists the derived
// status: mora is always recomputed at read time.
type Scheduler struct {
	store repository.Store
	mail  *email.Sender
	log   *logrus.Logger
	cron  *cron.Cron
}

// NewScheduler creates a scheduler over the given store and mailer
func NewScheduler(store repository.Store, mail *email.Sender, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		store: store,
		mail:  mail,
		log:   log,
		cron:  cron.New(),
	}
}

// Start registers the daily sweep and starts the cron loop
func (s *Scheduler) Start() error {
	// Run every morning at 08:00 server time
	if _, err := s.cron.AddFunc("0 8 * * *", func() { s.Sweep(time.Now()) }); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Delinquency sweep scheduled")
	return nil
}

// Stop halts the cron loop
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Sweep evaluates all active loans at the given time and sends reminder or
// overdue notices. Notification failures are logged and do not stop the
// sweep.
func (s *Scheduler) Sweep(now time.Time) {
	loans, err := s.store.GetActiveLoans()
	if err != nil {
		s.log.Errorf("Delinquency sweep failed to load loans: %v", err)
		return
	}

	var overdue, approaching int
	for _, loan := range loans {
		standing := debt.EvaluateLoan(loan, now)

		switch standing.Status {
		case debt.StatusEnMora:
			overdue++
			s.log.Warnf("Loan %s is delinquent: pending %.2f, late fee %.2f", loan.ContractNumber, standing.PendingDebt, standing.LateFeeAccrued)
			s.notify(loan.ClientID, func(to, name string) error {
				return s.mail.SendOverdueNotice(to, name, loan.ContractNumber, *loan.DueDate, standing.PendingDebt, standing.LateFeeAccrued)
			})
		case debt.StatusProximoMora:
			approaching++
			s.notify(loan.ClientID, func(to, name string) error {
				return s.mail.SendPaymentReminder(to, name, loan.ContractNumber, *loan.DueDate, standing.PendingDebt)
			})
		}
	}

	s.log.Infof("Delinquency sweep finished: %d loans, %d overdue, %d approaching", len(loans), overdue, approaching)
}

// notify looks up the client and sends through the mailer when the client
// has an email address on file
func (s *Scheduler) notify(clientID int64, send func(to, name string) error) {
	client, err := s.store.GetClientByID(clientID)
	if err != nil {
		s.log.Errorf("Failed to load client %d for notification: %v", clientID, err)
		return
	}
	if client.Email == "" {
		return
	}
	if err := send(client.Email, client.FirstName+" "+client.LastName); err != nil {
		s.log.Errorf("Failed to notify client %d: %v", clientID, err)
	}
}
