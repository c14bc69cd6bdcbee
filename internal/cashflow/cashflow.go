package cashflow

import (
	"fmt"
	"math"

	"github.com/Simplici0/mpsdeal/internal/amortization"
	"github.com/Simplici0/mpsdeal/internal/validation"
)

// MaxHorizonMonths bounds the projection length (50 years).
const MaxHorizonMonths = 600

// Input holds the monthly figures of a deal. Income is held constant over the horizon.
type Input struct {
	Income             float64
	Opex               float64
	Schedule           []amortization.Row // nil when self-funded
	SelfFunded         bool
	Investment         float64 // charged in month 1 only when SelfFunded
	HorizonMonths      int
	AnnualDiscountRate float64 // percent
}

// Row is one projected month.
type Row struct {
	Month      int     `json:"month"`
	Income     float64 `json:"income"`
	Opex       float64 `json:"opex"`
	Financing  float64 `json:"financing"`
	Net        float64 `json:"net"`
	Cumulative float64 `json:"cumulative"`
}

// Projection is the result of Project.
type Projection struct {
	Rows []Row   `json:"rows"`
	NPV  float64 `json:"npv"`
	// PaybackMonth is the first month whose cumulative balance is non-negative,
	// nil when the horizon ends negative.
	PaybackMonth *int    `json:"payback_month"`
	ROI          float64 `json:"roi"`
}

func (in Input) validate() error {
	if in.HorizonMonths < 1 {
		return validation.Invalid("horizon_months", "must be at least 1")
	}
	if in.HorizonMonths > MaxHorizonMonths {
		return validation.Invalid("horizon_months", fmt.Sprintf("must be at most %d", MaxHorizonMonths))
	}
	if math.IsNaN(in.AnnualDiscountRate) || in.AnnualDiscountRate < -100 {
		return validation.Invalid("discount_rate", "must be greater than or equal to -100")
	}
	return validation.First(
		validation.NonNegative("income", in.Income),
		validation.NonNegative("opex", in.Opex),
		validation.NonNegative("investment", in.Investment),
	)
}

// Project simulates the monthly cash flow. The cumulative balance starts at 0 and a
// self-funded investment is deducted inside month 1's net, so NPV discounts it as a
// month-1 outflow.
func Project(in Input) (Projection, error) {
	if err := in.validate(); err != nil {
		return Projection{}, err
	}

	rate := in.AnnualDiscountRate / 100 / amortization.MonthsPerYear
	rows := make([]Row, 0, in.HorizonMonths)

	var p Projection
	cumulative := 0.0
	for m := 1; m <= in.HorizonMonths; m++ {
		financing := 0.0
		if m <= len(in.Schedule) {
			financing = in.Schedule[m-1].Installment
		}

		net := in.Income - in.Opex - financing
		if m == 1 && in.SelfFunded {
			net -= in.Investment
		}
		cumulative += net

		rows = append(rows, Row{
			Month:      m,
			Income:     in.Income,
			Opex:       in.Opex,
			Financing:  financing,
			Net:        net,
			Cumulative: cumulative,
		})

		p.NPV += net / math.Pow(1+rate, float64(m))
		if p.PaybackMonth == nil && cumulative >= 0 {
			month := m
			p.PaybackMonth = &month
		}
	}

	p.Rows = rows
	if in.Investment > 0 {
		p.ROI = cumulative / in.Investment
	}
	return p, nil
}
