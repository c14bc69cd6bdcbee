package costing

import (
	"github.com/Simplici0/mpsdeal/internal/validation"
)

// Line is one contract line as entered by the user.
type Line struct {
	Site        string `db:"site" json:"site"`
	EquipmentID int64  `db:"equipment_id" json:"equipment_id"`
	Quantity    int    `db:"quantity" json:"quantity"`
	UnitVolume  int    `db:"unit_volume" json:"unit_volume"`
}

// LineCosts holds the fields derived from a Line and the current Equipment record.
// They are never stored as a source of truth; callers recompute them on every change.
type LineCosts struct {
	Line
	Model               string  `json:"model"`
	TotalVolume         int     `json:"total_volume"`
	CostPerPage         float64 `json:"cost_per_page"`
	FixedOpex           float64 `json:"fixed_opex"`
	VariableOpex        float64 `json:"variable_opex"`
	Investment          float64 `json:"investment"`
	DepreciationCost    float64 `json:"depreciation_cost"`
	HardwareCostPerPage float64 `json:"hardware_cost_per_page"`
}

// Totals aggregates LineCosts over a project.
type Totals struct {
	Volume       int     `json:"volume"`
	FixedOpex    float64 `json:"fixed_opex"`
	VariableOpex float64 `json:"variable_opex"`
	Investment   float64 `json:"investment"`
}

// RecomputeLine derives the line cost breakdown from its inputs. consumables must be the
// list owned by eq.
func RecomputeLine(line Line, eq Equipment, consumables []Consumable, paper Paper) (LineCosts, error) {
	if line.Quantity < 1 {
		return LineCosts{}, validation.Invalid("quantity", "must be at least 1")
	}
	if line.UnitVolume < 0 {
		return LineCosts{}, validation.Invalid("unit_volume", "must be greater than or equal to 0")
	}
	if line.EquipmentID != eq.ID {
		return LineCosts{}, validation.Invalid("equipment_id", "does not match the equipment record")
	}

	fixed, err := MonthlyFixedCost(eq)
	if err != nil {
		return LineCosts{}, err
	}
	hwPerPage, err := HardwareCostPerPage(eq, line.UnitVolume)
	if err != nil {
		return LineCosts{}, err
	}

	qty := float64(line.Quantity)
	cpp := CostPerPage(consumables, paper)

	return LineCosts{
		Line:                line,
		Model:               eq.Model,
		TotalVolume:         line.Quantity * line.UnitVolume,
		CostPerPage:         cpp,
		FixedOpex:           eq.MonthlyMaintenance * qty,
		VariableOpex:        cpp * float64(line.UnitVolume) * qty,
		Investment:          eq.AcquisitionCost * qty,
		DepreciationCost:    fixed,
		HardwareCostPerPage: hwPerPage,
	}, nil
}

// Summarize sums the derived fields of every line.
func Summarize(lines []LineCosts) Totals {
	var t Totals
	for _, l := range lines {
		t.Volume += l.TotalVolume
		t.FixedOpex += l.FixedOpex
		t.VariableOpex += l.VariableOpex
		t.Investment += l.Investment
	}
	return t
}
