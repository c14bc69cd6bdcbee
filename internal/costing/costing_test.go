package costing

import (
	"math"
	"testing"

	"github.com/Simplici0/mpsdeal/internal/validation"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func brotherL5100() Equipment {
	return Equipment{
		ID:                 1,
		Brand:              "Brother",
		Model:              "HL-L5100DN",
		AcquisitionCost:    885,
		ResidualValue:      50,
		UsefulLifeMonths:   36,
		MonthlyMaintenance: 20,
	}
}

func TestCostPerPage_SingleToner(t *testing.T) {
	toner := []Consumable{{EquipmentID: 1, Type: "Toner", UnitCost: 145.48, Yield: 25000}}

	nearlyEqual(t, "cpp", CostPerPage(toner, Paper{}), 0.0058192)
}

func TestCostPerPage_ZeroYieldContributesNothing(t *testing.T) {
	base := []Consumable{{Type: "Toner", UnitCost: 100, Yield: 10000}}
	withBroken := append([]Consumable{{Type: "Drum", UnitCost: 9999, Yield: 0}}, base...)

	nearlyEqual(t, "cpp", CostPerPage(withBroken, Paper{}), CostPerPage(base, Paper{}))
}

func TestCostPerPage_EmptyListIsPaperOnly(t *testing.T) {
	nearlyEqual(t, "no paper", CostPerPage(nil, Paper{}), 0)
	nearlyEqual(t, "paper", CostPerPage(nil, Paper{Included: true, ReamCost: 2.80}), 0.0056)
}

func TestCostPerPage_PaperIgnoredWhenExcluded(t *testing.T) {
	cons := []Consumable{{Type: "Toner", UnitCost: 50, Yield: 5000}}

	nearlyEqual(t, "cpp", CostPerPage(cons, Paper{Included: false, ReamCost: 2.80}), 0.01)
}

func TestMonthlyFixedCost(t *testing.T) {
	fixed, err := MonthlyFixedCost(brotherL5100())
	if err != nil {
		t.Fatalf("MonthlyFixedCost: %v", err)
	}
	nearlyEqual(t, "fixed", fixed, 835.0/36.0+20)
	if math.Abs(fixed-43.19) > 0.01 {
		t.Fatalf("fixed = %v, want about 43.19", fixed)
	}
}

func TestMonthlyFixedCost_RejectsNonPositiveLife(t *testing.T) {
	eq := brotherL5100()
	for _, life := range []int{0, -12} {
		eq.UsefulLifeMonths = life
		_, err := MonthlyFixedCost(eq)
		if field, ok := validation.Field(err); !ok || field != "useful_life_months" {
			t.Fatalf("life=%d: expected useful_life_months config error, got %v", life, err)
		}
	}
}

func TestHardwareCostPerPage_ZeroVolume(t *testing.T) {
	got, err := HardwareCostPerPage(brotherL5100(), 0)
	if err != nil {
		t.Fatalf("HardwareCostPerPage: %v", err)
	}
	nearlyEqual(t, "hw cpp", got, 0)

	got, err = HardwareCostPerPage(brotherL5100(), 2000)
	if err != nil {
		t.Fatalf("HardwareCostPerPage: %v", err)
	}
	nearlyEqual(t, "hw cpp", got, (835.0/36.0+20)/2000)
}

func TestRecomputeLine(t *testing.T) {
	eq := brotherL5100()
	toner := []Consumable{{EquipmentID: 1, Type: "Toner", UnitCost: 145.48, Yield: 25000}}

	lc, err := RecomputeLine(Line{Site: "Contabilidad", EquipmentID: 1, Quantity: 3, UnitVolume: 2000}, eq, toner, Paper{})
	if err != nil {
		t.Fatalf("RecomputeLine: %v", err)
	}

	if lc.TotalVolume != 6000 {
		t.Fatalf("TotalVolume = %d, want 6000", lc.TotalVolume)
	}
	nearlyEqual(t, "fixed opex", lc.FixedOpex, 60)
	nearlyEqual(t, "variable opex", lc.VariableOpex, 0.0058192*2000*3)
	nearlyEqual(t, "investment", lc.Investment, 2655)
	nearlyEqual(t, "depreciation", lc.DepreciationCost, 835.0/36.0+20)
	if lc.Model != "HL-L5100DN" {
		t.Fatalf("Model = %q", lc.Model)
	}
}

func TestRecomputeLine_FollowsEquipmentChanges(t *testing.T) {
	eq := brotherL5100()
	line := Line{Site: "A", EquipmentID: 1, Quantity: 2, UnitVolume: 1000}

	before, err := RecomputeLine(line, eq, nil, Paper{})
	if err != nil {
		t.Fatalf("RecomputeLine: %v", err)
	}
	eq.MonthlyMaintenance = 35
	after, err := RecomputeLine(line, eq, nil, Paper{})
	if err != nil {
		t.Fatalf("RecomputeLine: %v", err)
	}

	nearlyEqual(t, "before", before.FixedOpex, 40)
	nearlyEqual(t, "after", after.FixedOpex, 70)
}

func TestRecomputeLine_RejectsInvalidInputs(t *testing.T) {
	eq := brotherL5100()
	cases := map[string]Line{
		"quantity":     {EquipmentID: 1, Quantity: 0, UnitVolume: 100},
		"unit_volume":  {EquipmentID: 1, Quantity: 1, UnitVolume: -1},
		"equipment_id": {EquipmentID: 2, Quantity: 1, UnitVolume: 100},
	}
	for want, line := range cases {
		_, err := RecomputeLine(line, eq, nil, Paper{})
		if field, ok := validation.Field(err); !ok || field != want {
			t.Fatalf("expected %s config error, got %v", want, err)
		}
	}
}

func TestSummarize(t *testing.T) {
	totals := Summarize([]LineCosts{
		{TotalVolume: 2000, FixedOpex: 20, VariableOpex: 11.5, Investment: 885},
		{TotalVolume: 6000, FixedOpex: 90, VariableOpex: 40, Investment: 3000},
	})

	if totals.Volume != 8000 {
		t.Fatalf("Volume = %d, want 8000", totals.Volume)
	}
	nearlyEqual(t, "fixed", totals.FixedOpex, 110)
	nearlyEqual(t, "variable", totals.VariableOpex, 51.5)
	nearlyEqual(t, "investment", totals.Investment, 3885)
}
