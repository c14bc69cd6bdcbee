package amortization

import (
	"fmt"
	"math"

	"github.com/Simplici0/mpsdeal/internal/validation"
)

// Method selects how principal is repaid.
type Method string

const (
	// French repays with a constant installment.
	French Method = "french"
	// German repays a constant principal portion each month.
	German Method = "german"
)

// MonthsPerYear converts annual rates to monthly ones.
const MonthsPerYear = 12

// MaxTermMonths bounds the schedule length (50 years).
const MaxTermMonths = 600

// Loan describes the financed amount and its terms.
type Loan struct {
	Principal   float64
	AnnualRate  float64 // nominal, percent
	TermMonths  int
	GraceMonths int
	Method      Method
}

// Row is one month of the schedule.
type Row struct {
	Month       int     `json:"month"`
	Installment float64 `json:"installment"`
	Interest    float64 `json:"interest"`
	Principal   float64 `json:"principal"`
	Balance     float64 `json:"balance"`
}

// Summary aggregates a schedule.
type Summary struct {
	TotalPaid        float64 `json:"total_paid"`
	TotalInterest    float64 `json:"total_interest"`
	MeanInstallment  float64 `json:"mean_installment"`
	FirstInstallment float64 `json:"first_installment"`
	LastInstallment  float64 `json:"last_installment"`
}

// Validate reports the first field that makes the schedule undefined.
func (l Loan) Validate() error {
	if l.TermMonths < 1 {
		return validation.Invalid("term_months", "must be at least 1")
	}
	if l.TermMonths > MaxTermMonths {
		return validation.Invalid("term_months", fmt.Sprintf("must be at most %d", MaxTermMonths))
	}
	if l.GraceMonths < 0 {
		return validation.Invalid("grace_months", "must be greater than or equal to 0")
	}
	if l.GraceMonths >= l.TermMonths {
		return validation.Invalid("grace_months", "must be lower than term_months")
	}
	if l.Method != French && l.Method != German {
		return validation.Invalid("method", "must be french or german")
	}
	return validation.First(
		validation.NonNegative("principal", l.Principal),
		validation.NonNegative("annual_rate", l.AnnualRate),
	)
}

// MonthlyRate is the periodic rate applied to the outstanding balance.
func (l Loan) MonthlyRate() float64 {
	return l.AnnualRate / 100 / MonthsPerYear
}

// Schedule builds the month-by-month repayment table. Grace months pay interest only.
func Schedule(l Loan) ([]Row, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	r := l.MonthlyRate()
	paying := l.TermMonths - l.GraceMonths

	var installment, principalPerMonth float64
	switch l.Method {
	case French:
		installment = annuity(l.Principal, r, paying)
	case German:
		principalPerMonth = l.Principal / float64(paying)
	}

	rows := make([]Row, 0, l.TermMonths)
	balance := l.Principal
	for m := 1; m <= l.TermMonths; m++ {
		interest := balance * r
		row := Row{Month: m, Interest: interest}

		switch {
		case m <= l.GraceMonths:
			row.Installment = interest
		case l.Method == French:
			row.Principal = installment - interest
			row.Installment = installment
		default:
			row.Principal = principalPerMonth
			row.Installment = principalPerMonth + interest
		}

		balance = math.Max(0, balance-row.Principal)
		row.Balance = balance
		rows = append(rows, row)
	}
	return rows, nil
}

// annuity uses (1+r)^n - 1 = expm1(n*log1p(r)) so rates too small to change 1+r
// still give a finite installment.
func annuity(principal, r float64, n int) float64 {
	growth := math.Expm1(float64(n) * math.Log1p(r))
	switch {
	case r == 0 || growth == 0:
		return principal / float64(n)
	case math.IsInf(growth, 1):
		return principal * r
	}
	return principal * r * (1 + 1/growth)
}

// Summarize totals a schedule. An empty schedule yields a zero Summary.
func Summarize(rows []Row) Summary {
	if len(rows) == 0 {
		return Summary{}
	}
	var s Summary
	for _, row := range rows {
		s.TotalPaid += row.Installment
		s.TotalInterest += row.Interest
	}
	s.MeanInstallment = s.TotalPaid / float64(len(rows))
	s.FirstInstallment = rows[0].Installment
	s.LastInstallment = rows[len(rows)-1].Installment
	return s
}

// ParseMethod accepts the method name case-sensitively as stored.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case French, German:
		return Method(s), nil
	}
	return "", validation.Invalid("method", "must be french or german")
}
