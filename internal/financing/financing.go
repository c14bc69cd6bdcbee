package financing

import (
	"github.com/Simplici0/mpsdeal/internal/amortization"
	"github.com/Simplici0/mpsdeal/internal/validation"
)

// Source is where the money for the equipment comes from.
type Source string

const (
	SelfFunded      Source = "self_funded"
	BankLoan        Source = "bank_loan"
	WholesaleCredit Source = "wholesale_credit"
)

// DefaultReferenceMonths is the horizon over which a self-funded investment is spread
// for pricing. It is deliberately independent of each equipment's useful life.
const DefaultReferenceMonths = 36

// Plan holds the financing terms of a project. Principal is the project investment.
type Plan struct {
	Source          Source              `json:"source"`
	Principal       float64             `json:"principal"`
	AnnualRate      float64             `json:"annual_rate"`
	TermMonths      int                 `json:"term_months"`
	GraceMonths     int                 `json:"grace_months"`
	Method          amortization.Method `json:"method"`
	ReferenceMonths int                 `json:"reference_months,omitempty"`
}

// Result is a resolved plan: the schedule (empty when self-funded) and the monthly
// financing cost used by pricing.
type Result struct {
	Plan        Plan                 `json:"plan"`
	Schedule    []amortization.Row   `json:"schedule"`
	Summary     amortization.Summary `json:"summary"`
	MonthlyCost float64              `json:"monthly_cost"`
}

// SelfFunded reports whether the plan bypasses the amortization engine.
func (p Plan) SelfFunded() bool {
	return p.Source == SelfFunded
}

// Loan maps a credit plan onto the amortization engine input.
func (p Plan) Loan() amortization.Loan {
	return amortization.Loan{
		Principal:   p.Principal,
		AnnualRate:  p.AnnualRate,
		TermMonths:  p.TermMonths,
		GraceMonths: p.GraceMonths,
		Method:      p.Method,
	}
}

// ParseSource validates a stored or submitted source name.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SelfFunded, BankLoan, WholesaleCredit:
		return Source(s), nil
	}
	return "", validation.Invalid("source", "must be self_funded, bank_loan or wholesale_credit")
}

// Validate checks the terms without a principal, which is only known once the
// project lines are costed.
func (p Plan) Validate() error {
	if _, err := ParseSource(string(p.Source)); err != nil {
		return err
	}
	if p.SelfFunded() {
		if p.ReferenceMonths < 0 {
			return validation.Invalid("reference_months", "must be at least 1")
		}
		return nil
	}
	l := p.Loan()
	l.Principal = 0
	return l.Validate()
}

// Resolve computes the schedule and the monthly financing cost.
// Credit plans cost the mean installment; self-funded plans carry no interest and
// spread the principal over the reference horizon.
func Resolve(p Plan) (Result, error) {
	if _, err := ParseSource(string(p.Source)); err != nil {
		return Result{}, err
	}
	if err := validation.NonNegative("principal", p.Principal); err != nil {
		return Result{}, err
	}

	if p.SelfFunded() {
		months := p.ReferenceMonths
		if months == 0 {
			months = DefaultReferenceMonths
		}
		if months < 1 {
			return Result{}, validation.Invalid("reference_months", "must be at least 1")
		}
		return Result{Plan: p, MonthlyCost: p.Principal / float64(months)}, nil
	}

	rows, err := amortization.Schedule(p.Loan())
	if err != nil {
		return Result{}, err
	}
	summary := amortization.Summarize(rows)
	return Result{
		Plan:        p,
		Schedule:    rows,
		Summary:     summary,
		MonthlyCost: summary.MeanInstallment,
	}, nil
}
