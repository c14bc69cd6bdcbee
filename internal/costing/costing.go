package costing

import (
	"github.com/Simplici0/mpsdeal/internal/validation"
)

// SheetsPerReam is the paper unit used when pricing paper into the cost per page.
const SheetsPerReam = 500

// Equipment is a printer model from the inventory.
type Equipment struct {
	ID                 int64   `db:"id" json:"id"`
	Brand              string  `db:"brand" json:"brand"`
	Model              string  `db:"model" json:"model"`
	DeviceType         string  `db:"device_type" json:"device_type"`
	SpeedPPM           int     `db:"speed_ppm" json:"speed_ppm"`
	AcquisitionCost    float64 `db:"acquisition_cost" json:"acquisition_cost"`
	ResidualValue      float64 `db:"residual_value" json:"residual_value"`
	UsefulLifeMonths   int     `db:"useful_life_months" json:"useful_life_months"`
	MonthlyMaintenance float64 `db:"monthly_maintenance" json:"monthly_maintenance"`
}

// Consumable belongs to exactly one Equipment. Yield is pages per unit.
type Consumable struct {
	ID          int64   `db:"id" json:"id"`
	EquipmentID int64   `db:"equipment_id" json:"equipment_id"`
	Type        string  `db:"type" json:"type"`
	UnitCost    float64 `db:"unit_cost" json:"unit_cost"`
	Yield       int     `db:"yield" json:"yield"`
}

// Paper controls whether paper is priced into the cost per page.
type Paper struct {
	Included bool    `json:"included"`
	ReamCost float64 `json:"ream_cost"`
}

// CostPerPage sums unit cost over yield for every consumable with a positive yield,
// plus the per-sheet paper cost when paper is included. An empty list is valid.
func CostPerPage(consumables []Consumable, paper Paper) float64 {
	cpp := 0.0
	for _, c := range consumables {
		if c.Yield <= 0 {
			continue
		}
		cpp += c.UnitCost / float64(c.Yield)
	}
	if paper.Included {
		cpp += paper.ReamCost / SheetsPerReam
	}
	return cpp
}

// MonthlyFixedCost is straight-line depreciation over the useful life plus maintenance.
func MonthlyFixedCost(eq Equipment) (float64, error) {
	if eq.UsefulLifeMonths <= 0 {
		return 0, validation.Invalid("useful_life_months", "must be greater than 0")
	}
	depreciation := (eq.AcquisitionCost - eq.ResidualValue) / float64(eq.UsefulLifeMonths)
	return depreciation + eq.MonthlyMaintenance, nil
}

// HardwareCostPerPage spreads the monthly fixed cost over the unit volume.
// A zero volume yields 0.
func HardwareCostPerPage(eq Equipment, unitVolume int) (float64, error) {
	fixed, err := MonthlyFixedCost(eq)
	if err != nil {
		return 0, err
	}
	if unitVolume <= 0 {
		return 0, nil
	}
	return fixed / float64(unitVolume), nil
}
