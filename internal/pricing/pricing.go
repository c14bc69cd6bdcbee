package pricing

import (
	"github.com/Simplici0/mpsdeal/internal/validation"
)

// DefaultOveragePenalty is the multiplier applied to the per-page price for pages
// printed beyond the flat-fee allowance.
const DefaultOveragePenalty = 1.15

// Input represents the aggregated monthly costs of a project.
type Input struct {
	Volume         float64 // pages per month across all lines
	FixedOpex      float64
	VariableOpex   float64
	FinancingCost  float64 // monthly
	Margin         float64 // margin on sales, 0 < m < 1
	OveragePenalty float64 // 0 means DefaultOveragePenalty
}

// Breakdown contains the intermediate values of the calculation.
type Breakdown struct {
	RealCost      float64 `json:"real_cost"`
	TargetRevenue float64 `json:"target_revenue"`
	MonthlyProfit float64 `json:"monthly_profit"`
}

// PerPage is plan A: every page is billed at the same price.
type PerPage struct {
	Price float64 `json:"price"`
}

// Hybrid is plan B: a fixed rent covers equipment and financing, a click covers consumables.
type Hybrid struct {
	Rent  float64 `json:"rent"`
	Click float64 `json:"click"`
}

// FlatFee is plan C: a monthly fee with an allowance of IncludedPages and a penalized overage.
type FlatFee struct {
	MonthlyFee    float64 `json:"monthly_fee"`
	IncludedPages float64 `json:"included_pages"`
	OveragePrice  float64 `json:"overage_price"`
}

// Result groups the three commercial offers. At the nominal volume they bill the same revenue.
type Result struct {
	Breakdown Breakdown `json:"breakdown"`
	PerPage   PerPage   `json:"per_page"`
	Hybrid    Hybrid    `json:"hybrid"`
	FlatFee   FlatFee   `json:"flat_fee"`
}

func (in Input) validate() error {
	return validation.First(
		validation.OpenUnit("margin", in.Margin),
		validation.NonNegative("volume", in.Volume),
		validation.NonNegative("fixed_opex", in.FixedOpex),
		validation.NonNegative("variable_opex", in.VariableOpex),
		validation.NonNegative("financing_cost", in.FinancingCost),
		validation.NonNegative("overage_penalty", in.OveragePenalty),
	)
}

// Calculate derives the offers from costs using price = cost / (1 - margin).
// Per-page figures are 0 when the volume is 0.
func Calculate(in Input) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	penalty := in.OveragePenalty
	if penalty == 0 {
		penalty = DefaultOveragePenalty
	}

	keep := 1 - in.Margin
	realCost := in.FixedOpex + in.VariableOpex + in.FinancingCost
	target := realCost / keep

	price := perPage(target, in.Volume)

	return Result{
		Breakdown: Breakdown{
			RealCost:      realCost,
			TargetRevenue: target,
			MonthlyProfit: target - realCost,
		},
		PerPage: PerPage{Price: price},
		Hybrid: Hybrid{
			Rent:  (in.FixedOpex + in.FinancingCost) / keep,
			Click: perPage(in.VariableOpex/keep, in.Volume),
		},
		FlatFee: FlatFee{
			MonthlyFee:    target,
			IncludedPages: in.Volume,
			OveragePrice:  price * penalty,
		},
	}, nil
}

func perPage(amount, volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	return amount / volume
}

// Revenue returns what each plan bills at the given monthly volume.
func (r Result) Revenue(volume float64) (perPage, hybrid, flatFee float64) {
	perPage = r.PerPage.Price * volume
	hybrid = r.Hybrid.Rent + r.Hybrid.Click*volume
	flatFee = r.FlatFee.MonthlyFee
	if over := volume - r.FlatFee.IncludedPages; over > 0 {
		flatFee += over * r.FlatFee.OveragePrice
	}
	return perPage, hybrid, flatFee
}
