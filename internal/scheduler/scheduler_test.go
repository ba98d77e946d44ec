package scheduler

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/andresmejia/loantrack/internal/config"
	"github.com/andresmejia/loantrack/internal/models"
	"github.com/andresmejia/loantrack/internal/repository"
	"github.com/andresmejia/loantrack/internal/utils/email"
	"github.com/sirupsen/logrus"
)

func TestSweepCountsStandings(t *testing.T) {
	store := repository.NewMemStore()
	var logBuf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&logBuf)

	cfg := &config.Config{}
	sched := NewScheduler(store, email.NewSender(cfg, log), log)

	// Clients have no email on file, so the sweep only logs
	client := &models.Client{UserID: 1, FirstName: "Maria", LastName: "Gomez"}
	if err := store.CreateClient(client); err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}

	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	pastDue := now.AddDate(0, -1, 0)
	soonDue := now.AddDate(0, 0, 3)
	farDue := now.AddDate(0, 6, 0)

	for _, due := range []time.Time{pastDue, soonDue, farDue} {
		d := due
		loan := &models.Loan{
			UserID:          1,
			ClientID:        client.ID,
			ContractNumber:  "CT-TEST",
			PrincipalAmount: 1000,
			DueDate:         &d,
			Status:          models.LoanStatusActive,
		}
		if err := store.CreateLoan(loan); err != nil {
			t.Fatalf("CreateLoan returned error: %v", err)
		}
	}

	closedDue := now.AddDate(0, -2, 0)
	closed := &models.Loan{
		UserID:          1,
		ClientID:        client.ID,
		PrincipalAmount: 500,
		DueDate:         &closedDue,
		Status:          models.LoanStatusClosed,
	}
	if err := store.CreateLoan(closed); err != nil {
		t.Fatalf("CreateLoan returned error: %v", err)
	}

	sched.Sweep(now)

	out := logBuf.String()
	if !strings.Contains(out, "3 loans, 1 overdue, 1 approaching") {
		t.Errorf("sweep summary missing expected counts, log output:\n%s", out)
	}
}
