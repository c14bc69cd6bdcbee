// Package deal holds the state of one pricing session and runs the full pipeline
// (line costs, financing, offers, cash flow) over an inventory snapshot.
package deal

import (
	"fmt"
	"strings"

	"github.com/Simplici0/mpsdeal/internal/cashflow"
	"github.com/Simplici0/mpsdeal/internal/costing"
	"github.com/Simplici0/mpsdeal/internal/financing"
	"github.com/Simplici0/mpsdeal/internal/pricing"
	"github.com/Simplici0/mpsdeal/internal/validation"
)

const (
	DefaultMargin        = 0.30
	DefaultPaperReamCost = 2.80
	DefaultHorizonMonths = 36
)

// Settings are the commercial parameters of a session.
type Settings struct {
	Margin         float64       `json:"margin"`
	Paper          costing.Paper `json:"paper"`
	OveragePenalty float64       `json:"overage_penalty"`
	HorizonMonths  int           `json:"horizon_months"`
	DiscountRate   float64       `json:"discount_rate"`
}

// DefaultSettings returns the settings a new project starts with.
func DefaultSettings() Settings {
	return Settings{
		Margin:         DefaultMargin,
		Paper:          costing.Paper{Included: true, ReamCost: DefaultPaperReamCost},
		OveragePenalty: pricing.DefaultOveragePenalty,
		HorizonMonths:  DefaultHorizonMonths,
	}
}

// Validate checks the settings independently of any project content.
func (s Settings) Validate() error {
	if s.HorizonMonths < 1 {
		return validation.Invalid("horizon_months", "must be at least 1")
	}
	if s.HorizonMonths > cashflow.MaxHorizonMonths {
		return validation.Invalid("horizon_months", fmt.Sprintf("must be at most %d", cashflow.MaxHorizonMonths))
	}
	if s.DiscountRate < -100 {
		return validation.Invalid("discount_rate", "must be greater than or equal to -100")
	}
	return validation.First(
		validation.OpenUnit("margin", s.Margin),
		validation.NonNegative("paper_ream_cost", s.Paper.ReamCost),
		validation.NonNegative("overage_penalty", s.OveragePenalty),
	)
}

// Inventory is an immutable snapshot of the equipment referenced by a session.
type Inventory struct {
	Equipment   map[int64]costing.Equipment
	Consumables map[int64][]costing.Consumable
}

// Session is one project being priced. It is owned by a single caller; nothing in
// this package keeps a reference to it between calls.
type Session struct {
	Name      string          `json:"name"`
	Settings  Settings        `json:"settings"`
	Financing *financing.Plan `json:"financing"`
	Lines     []costing.Line  `json:"lines"`
}

// Evaluation is everything a presentation layer needs for one session.
type Evaluation struct {
	Lines     []costing.LineCosts `json:"lines"`
	Totals    costing.Totals      `json:"totals"`
	Financing financing.Result    `json:"financing"`
	Offers    pricing.Result      `json:"offers"`
	CashFlow  cashflow.Projection `json:"cash_flow"`
}

// ValidateLine checks the user-entered fields of a line.
func ValidateLine(line costing.Line) error {
	if strings.TrimSpace(line.Site) == "" {
		return validation.Invalid("site", "is required")
	}
	if line.EquipmentID <= 0 {
		return validation.Invalid("equipment_id", "is required")
	}
	if line.Quantity < 1 {
		return validation.Invalid("quantity", "must be at least 1")
	}
	if line.UnitVolume < 0 {
		return validation.Invalid("unit_volume", "must be greater than or equal to 0")
	}
	return nil
}

// AddLine appends a validated line.
func (s *Session) AddLine(line costing.Line) error {
	if err := ValidateLine(line); err != nil {
		return err
	}
	line.Site = strings.TrimSpace(line.Site)
	s.Lines = append(s.Lines, line)
	return nil
}

// UndoLastLine removes the most recent line and reports whether one was removed.
func (s *Session) UndoLastLine() bool {
	if len(s.Lines) == 0 {
		return false
	}
	s.Lines = s.Lines[:len(s.Lines)-1]
	return true
}

// Clear drops every line. Settings and financing are kept.
func (s *Session) Clear() {
	s.Lines = nil
}

// Recompute derives the costs of every line from the current inventory records.
func (s *Session) Recompute(inv Inventory) ([]costing.LineCosts, error) {
	out := make([]costing.LineCosts, 0, len(s.Lines))
	for i, line := range s.Lines {
		eq, ok := inv.Equipment[line.EquipmentID]
		if !ok {
			return nil, validation.Invalid("equipment_id", fmt.Sprintf("line %d references unknown equipment %d", i+1, line.EquipmentID))
		}
		lc, err := costing.RecomputeLine(line, eq, inv.Consumables[eq.ID], s.Settings.Paper)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, lc)
	}
	return out, nil
}

// Evaluate runs the whole pipeline. It fails with validation.ErrPrerequisite when the
// session has no lines or no financing plan, and with a *validation.ConfigError when an
// input is invalid; it never returns a partial evaluation.
func (s *Session) Evaluate(inv Inventory) (Evaluation, error) {
	if len(s.Lines) == 0 {
		return Evaluation{}, validation.Missing("project has no lines")
	}
	if s.Financing == nil {
		return Evaluation{}, validation.Missing("project has no financing plan")
	}

	lines, err := s.Recompute(inv)
	if err != nil {
		return Evaluation{}, err
	}
	totals := costing.Summarize(lines)

	plan := *s.Financing
	plan.Principal = totals.Investment
	fin, err := financing.Resolve(plan)
	if err != nil {
		return Evaluation{}, err
	}

	offers, err := pricing.Calculate(pricing.Input{
		Volume:         float64(totals.Volume),
		FixedOpex:      totals.FixedOpex,
		VariableOpex:   totals.VariableOpex,
		FinancingCost:  fin.MonthlyCost,
		Margin:         s.Settings.Margin,
		OveragePenalty: s.Settings.OveragePenalty,
	})
	if err != nil {
		return Evaluation{}, err
	}

	projection, err := cashflow.Project(cashflow.Input{
		Income:             offers.Breakdown.TargetRevenue,
		Opex:               totals.FixedOpex + totals.VariableOpex,
		Schedule:           fin.Schedule,
		SelfFunded:         plan.SelfFunded(),
		Investment:         totals.Investment,
		HorizonMonths:      s.Settings.HorizonMonths,
		AnnualDiscountRate: s.Settings.DiscountRate,
	})
	if err != nil {
		return Evaluation{}, err
	}

	return Evaluation{
		Lines:     lines,
		Totals:    totals,
		Financing: fin,
		Offers:    offers,
		CashFlow:  projection,
	}, nil
}
