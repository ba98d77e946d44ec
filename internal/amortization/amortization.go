// Package amortization generates French (constant-payment) repayment
// schedules from plain loan terms. All functions are pure and deterministic.
package amortization

import (
	"errors"
	"math"
	"time"

	"github.com/andresmejia/loantrack/internal/models"
)

// Validation errors returned by GenerateSchedule
var (
	ErrInvalidPrincipal    = errors.New("principal must be positive")
	ErrInvalidInstallments = errors.New("installment count must be positive")
	ErrNegativeRate        = errors.New("periodic rate must not be negative")
	ErrUnknownFrequency    = errors.New("unknown payment frequency")
)

// Frequency determines how due dates advance between installments
type Frequency string

const (
	FrequencyMonthly  Frequency = "monthly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyWeekly   Frequency = "weekly"
)

// balanceEpsilon absorbs floating-point residue on the final installment
const balanceEpsilon = 1e-6

// GenerateSchedule computes a fixed-installment schedule for the given terms.
// periodicRate is the fractional interest rate per period (0.05 for 5%); a
// zero rate falls back to a straight-line split of the principal. Due dates
// advance one whole period per installment starting one period after
// startDate. Internal figures are intentionally left unrounded so rounding
// error does not compound across installments.
func GenerateSchedule(principal, periodicRate float64, installments int, startDate time.Time, frequency Frequency) ([]models.InstallmentEntry, error) {
	if principal <= 0 {
		return nil, ErrInvalidPrincipal
	}
	if installments <= 0 {
		return nil, ErrInvalidInstallments
	}
	if periodicRate < 0 {
		return nil, ErrNegativeRate
	}
	if _, err := advance(startDate, 1, frequency); err != nil {
		return nil, err
	}

	// Constant installment: P * r / (1 - (1+r)^-n). A 0% rate makes the
	// denominator zero, so split the principal evenly instead.
	var scheduled float64
	if periodicRate == 0 {
		scheduled = principal / float64(installments)
	} else {
		scheduled = principal * periodicRate / (1 - math.Pow(1+periodicRate, float64(-installments)))
	}

	schedule := make([]models.InstallmentEntry, 0, installments)
	balance := principal

	for i := 1; i <= installments; i++ {
		interest := balance * periodicRate
		capital := scheduled - interest
		balance -= capital

		if i == installments && math.Abs(balance) < balanceEpsilon {
			balance = 0
		}

		dueDate, err := advance(startDate, i, frequency)
		if err != nil {
			return nil, err
		}

		schedule = append(schedule, models.InstallmentEntry{
			Number:           i,
			DueDate:          dueDate,
			ScheduledAmount:  scheduled,
			CapitalAmount:    capital,
			InterestAmount:   interest,
			RemainingBalance: balance,
			Status:           models.InstallmentStatusPending,
		})
	}

	return schedule, nil
}

// Periods returns the number of whole periods between two dates for the
// given frequency, with a minimum of one. It is used to derive the
// installment count from a loan's start and due dates.
func Periods(start, due time.Time, frequency Frequency) (int, error) {
	var n int
	switch frequency {
	case FrequencyMonthly, "":
		n = (due.Year()-start.Year())*12 + int(due.Month()) - int(start.Month())
	case FrequencyBiweekly:
		n = int(due.Sub(start).Hours() / 24 / 14)
	case FrequencyWeekly:
		n = int(due.Sub(start).Hours() / 24 / 7)
	default:
		return 0, ErrUnknownFrequency
	}
	if n < 1 {
		n = 1
	}
	return n, nil
}

// advance moves startDate forward by n whole periods
func advance(startDate time.Time, n int, frequency Frequency) (time.Time, error) {
	switch frequency {
	case FrequencyMonthly, "":
		return startDate.AddDate(0, n, 0), nil
	case FrequencyBiweekly:
		return startDate.AddDate(0, 0, 14*n), nil
	case FrequencyWeekly:
		return startDate.AddDate(0, 0, 7*n), nil
	default:
		return time.Time{}, ErrUnknownFrequency
	}
}
