package pricing

import (
	"math"
	"testing"

	"github.com/Simplici0/mpsdeal/internal/validation"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestCalculate_MarginOnSales(t *testing.T) {
	result, err := Calculate(Input{
		Volume:        10000,
		FixedOpex:     40,
		VariableOpex:  60,
		FinancingCost: 110,
		Margin:        0.30,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	nearlyEqual(t, "real cost", result.Breakdown.RealCost, 210)
	nearlyEqual(t, "target", result.Breakdown.TargetRevenue, 300)
	nearlyEqual(t, "profit", result.Breakdown.MonthlyProfit, 90)
	nearlyEqual(t, "price A", result.PerPage.Price, 0.03)
	nearlyEqual(t, "rent B", result.Hybrid.Rent, 150/0.7)
	nearlyEqual(t, "click B", result.Hybrid.Click, (60/0.7)/10000)
	nearlyEqual(t, "fee C", result.FlatFee.MonthlyFee, 300)
	nearlyEqual(t, "overage C", result.FlatFee.OveragePrice, 0.03*DefaultOveragePenalty)
	nearlyEqual(t, "included C", result.FlatFee.IncludedPages, 10000)
}

func TestCalculate_RevenueEquivalenceAtNominalVolume(t *testing.T) {
	inputs := []Input{
		{Volume: 2000, FixedOpex: 20, VariableOpex: 11.6384, FinancingCost: 24.58, Margin: 0.3},
		{Volume: 155000, FixedOpex: 1240, VariableOpex: 980.25, FinancingCost: 4100, Margin: 0.1},
		{Volume: 1, FixedOpex: 0, VariableOpex: 0.01, FinancingCost: 0, Margin: 0.6},
		{Volume: 75000, FixedOpex: 300, VariableOpex: 450, FinancingCost: 1000, Margin: 0.95},
	}

	for _, in := range inputs {
		result, err := Calculate(in)
		if err != nil {
			t.Fatalf("Calculate(%+v): %v", in, err)
		}
		want := (in.FixedOpex + in.VariableOpex + in.FinancingCost) / (1 - in.Margin)

		a, b, c := result.Revenue(in.Volume)
		nearlyEqual(t, "plan A revenue", a, want)
		nearlyEqual(t, "plan B revenue", b, want)
		nearlyEqual(t, "plan C revenue", c, want)
	}
}

func TestCalculate_ZeroVolumeDefinesPerPageAsZero(t *testing.T) {
	result, err := Calculate(Input{FixedOpex: 100, FinancingCost: 50, Margin: 0.25})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	nearlyEqual(t, "price A", result.PerPage.Price, 0)
	nearlyEqual(t, "click B", result.Hybrid.Click, 0)
	nearlyEqual(t, "overage C", result.FlatFee.OveragePrice, 0)
	nearlyEqual(t, "rent B", result.Hybrid.Rent, 200)
	nearlyEqual(t, "fee C", result.FlatFee.MonthlyFee, 200)
}

func TestCalculate_ConfigurableOveragePenalty(t *testing.T) {
	in := Input{Volume: 1000, FixedOpex: 70, Margin: 0.3, OveragePenalty: 1.10}
	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	nearlyEqual(t, "overage", result.FlatFee.OveragePrice, 0.1*1.10)

	_, _, c := result.Revenue(1200)
	nearlyEqual(t, "flat fee with overage", c, 100+200*0.11)
}

func TestCalculate_RejectsInvalidMargin(t *testing.T) {
	for _, m := range []float64{0, 1, -0.2, 1.3} {
		_, err := Calculate(Input{Volume: 100, FixedOpex: 1, Margin: m})
		if field, ok := validation.Field(err); !ok || field != "margin" {
			t.Fatalf("margin=%v: expected margin config error, got %v", m, err)
		}
	}
}

func TestCalculate_RejectsNegativeCosts(t *testing.T) {
	_, err := Calculate(Input{Volume: 100, FinancingCost: -1, Margin: 0.3})
	if field, ok := validation.Field(err); !ok || field != "financing_cost" {
		t.Fatalf("expected financing_cost config error, got %v", err)
	}
}

func TestCalculate_HighMarginIsAllowed(t *testing.T) {
	result, err := Calculate(Input{Volume: 100, FixedOpex: 10, Margin: 0.999})
	if err != nil {
		t.Fatalf("uneconomical margin must be accepted: %v", err)
	}
	nearlyEqual(t, "target", result.Breakdown.TargetRevenue, 10000)
}
