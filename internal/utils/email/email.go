package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/andresmejia/loantrack/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentReminder notifies a client that a loan payment is coming due
func (s *Sender) SendPaymentReminder(to, clientName, contractNumber string, dueDate time.Time, pendingDebt float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Upcoming Loan Payment Reminder"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"This is a reminder that your loan %s has a payment due on %s.\n"+
			"Your pending balance is %.2f.\n"+
			"Please make your payment before the due date to stay current.\n",
		clientName, contractNumber, dueDate.Format("2006-01-02"), pendingDebt,
	)
	body += "\nBest regards,\nLoanTrack"
	e.Text = []byte(body)

	return s.send(e, to)
}

// SendOverdueNotice notifies a client that a loan is past its grace window
func (s *Sender) SendOverdueNotice(to, clientName, contractNumber string, dueDate time.Time, pendingDebt, lateFee float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Overdue Loan Payment Notification"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your loan %s was due on %s and is now overdue.\n"+
			"Your pending balance is %.2f.\n",
		clientName, contractNumber, dueDate.Format("2006-01-02"), pendingDebt,
	)
	if lateFee > 0 {
		body += fmt.Sprintf("A late fee of %.2f has accrued.\n", lateFee)
	}
	body += "Please make the payment as soon as possible to avoid further fees.\n"
	body += "\nBest regards,\nLoanTrack"
	e.Text = []byte(body)

	return s.send(e, to)
}

// SendLoanClosedNotice notifies a client that a loan has been fully settled
func (s *Sender) SendLoanClosedNotice(to, clientName, contractNumber string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Loan Settled"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your loan %s has been settled and closed.\n"+
			"Thank you for your payments.\n",
		clientName, contractNumber,
	)
	body += "\nBest regards,\nLoanTrack"
	e.Text = []byte(body)

	return s.send(e, to)
}

func (s *Sender) send(e *email.Email, to string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
