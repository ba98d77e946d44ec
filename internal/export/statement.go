// Package export renders loan statements for sharing outside the app.
package export

import (
	"fmt"
	"time"

	"github.com/andresmejia/loantrack/internal/debt"
	"github.com/andresmejia/loantrack/internal/models"
	"github.com/beevik/etree"
)

// LoanStatement builds an XML statement for a loan: the contract terms,
// the standing evaluated at the given time and the repayment plan.
// Monetary values are rounded to currency precision here, at the display
// boundary.
func LoanStatement(loan models.Loan, client models.Client, standing debt.LoanStanding, schedule []models.InstallmentEntry, generatedAt time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("loan_statement")
	root.CreateAttr("contract_number", loan.ContractNumber)
	root.CreateAttr("generated_at", generatedAt.Format("2006-01-02"))

	clientEl := root.CreateElement("client")
	clientEl.CreateElement("name").SetText(client.FirstName + " " + client.LastName)
	clientEl.CreateElement("document").SetText(client.DocumentType + " " + client.DocumentNumber)

	terms := root.CreateElement("terms")
	terms.CreateElement("principal").SetText(money(loan.PrincipalAmount))
	terms.CreateElement("interest_rate").SetText(fmt.Sprintf("%.2f", loan.InterestRate))
	terms.CreateElement("payment_frequency").SetText(loan.PaymentFrequency)
	terms.CreateElement("start_date").SetText(loan.StartDate.Format("2006-01-02"))
	if loan.DueDate != nil {
		terms.CreateElement("due_date").SetText(loan.DueDate.Format("2006-01-02"))
	}

	balance := root.CreateElement("balance")
	balance.CreateElement("total_debt").SetText(money(standing.TotalDebt))
	balance.CreateElement("total_paid").SetText(money(standing.TotalPaid))
	balance.CreateElement("pending_debt").SetText(money(standing.PendingDebt))
	balance.CreateElement("status").SetText(standing.Status)
	if standing.LateFeeAccrued > 0 {
		balance.CreateElement("late_fee_accrued").SetText(money(standing.LateFeeAccrued))
	}

	if len(schedule) > 0 {
		scheduleEl := root.CreateElement("schedule")
		for _, entry := range schedule {
			installment := scheduleEl.CreateElement("installment")
			installment.CreateAttr("number", fmt.Sprintf("%d", entry.Number))
			installment.CreateElement("due_date").SetText(entry.DueDate.Format("2006-01-02"))
			installment.CreateElement("scheduled_amount").SetText(money(entry.ScheduledAmount))
			installment.CreateElement("capital").SetText(money(entry.CapitalAmount))
			installment.CreateElement("interest").SetText(money(entry.InterestAmount))
			installment.CreateElement("remaining_balance").SetText(money(entry.RemainingBalance))
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render statement: %w", err)
	}
	return out, nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
