package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Simplici0/mpsdeal/internal/costing"
	"github.com/Simplici0/mpsdeal/internal/deal"
	"github.com/Simplici0/mpsdeal/internal/validation"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrInUse is returned when deleting equipment still referenced by project lines.
	ErrInUse = errors.New("equipment is referenced by project lines")
)

// DefaultUsefulLifeMonths applies to new equipment created without an explicit life.
const DefaultUsefulLifeMonths = 36

// ConsumableTypes lists the accepted consumable labels.
var ConsumableTypes = []string{"Toner", "Drum", "Fuser", "Kit"}

const equipmentColumns = `id, brand, model, device_type, speed_ppm, acquisition_cost, residual_value, useful_life_months, monthly_maintenance`

const consumableColumns = `id, equipment_id, type, unit_cost, yield`

// Store reads and writes the equipment catalog.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// ValidateEquipment checks the fields the cost resolvers depend on.
func ValidateEquipment(eq costing.Equipment) error {
	if strings.TrimSpace(eq.Model) == "" {
		return validation.Invalid("model", "is required")
	}
	if err := validation.Positive("useful_life_months", float64(eq.UsefulLifeMonths)); err != nil {
		return err
	}
	if eq.SpeedPPM < 0 {
		return validation.Invalid("speed_ppm", "must be greater than or equal to 0")
	}
	return validation.First(
		validation.NonNegative("acquisition_cost", eq.AcquisitionCost),
		validation.NonNegative("residual_value", eq.ResidualValue),
		validation.NonNegative("monthly_maintenance", eq.MonthlyMaintenance),
	)
}

// ValidateConsumable checks a consumable before it is stored.
func ValidateConsumable(c costing.Consumable) error {
	known := false
	for _, t := range ConsumableTypes {
		if c.Type == t {
			known = true
			break
		}
	}
	if !known {
		return validation.Invalid("type", "must be one of "+strings.Join(ConsumableTypes, ", "))
	}
	if c.Yield < 0 {
		return validation.Invalid("yield", "must be greater than or equal to 0")
	}
	return validation.NonNegative("unit_cost", c.UnitCost)
}

func (s *Store) ListEquipment(ctx context.Context) ([]costing.Equipment, error) {
	items := make([]costing.Equipment, 0)
	if err := s.db.SelectContext(ctx, &items, `SELECT `+equipmentColumns+` FROM equipment ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	return items, nil
}

func (s *Store) GetEquipment(ctx context.Context, id int64) (costing.Equipment, error) {
	var eq costing.Equipment
	err := s.db.GetContext(ctx, &eq, `SELECT `+equipmentColumns+` FROM equipment WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return costing.Equipment{}, ErrNotFound
	}
	if err != nil {
		return costing.Equipment{}, fmt.Errorf("query equipment %d: %w", id, err)
	}
	return eq, nil
}

func (s *Store) CreateEquipment(ctx context.Context, eq costing.Equipment) (int64, error) {
	if err := ValidateEquipment(eq); err != nil {
		return 0, err
	}
	result, err := s.db.NamedExecContext(ctx, `
		INSERT INTO equipment (brand, model, device_type, speed_ppm, acquisition_cost, residual_value, useful_life_months, monthly_maintenance)
		VALUES (:brand, :model, :device_type, :speed_ppm, :acquisition_cost, :residual_value, :useful_life_months, :monthly_maintenance)
	`, eq)
	if err != nil {
		return 0, fmt.Errorf("insert equipment: %w", err)
	}
	return result.LastInsertId()
}

func (s *Store) UpdateEquipment(ctx context.Context, eq costing.Equipment) error {
	if err := ValidateEquipment(eq); err != nil {
		return err
	}
	result, err := s.db.NamedExecContext(ctx, `
		UPDATE equipment
		SET
			brand = :brand,
			model = :model,
			device_type = :device_type,
			speed_ppm = :speed_ppm,
			acquisition_cost = :acquisition_cost,
			residual_value = :residual_value,
			useful_life_months = :useful_life_months,
			monthly_maintenance = :monthly_maintenance,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = :id
	`, eq)
	if err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	return expectAffected(result)
}

// DeleteEquipment removes the equipment and, through the foreign key, its consumables.
func (s *Store) DeleteEquipment(ctx context.Context, id int64) error {
	var refs int
	if err := s.db.GetContext(ctx, &refs, `SELECT COUNT(*) FROM project_lines WHERE equipment_id = ?`, id); err != nil {
		return fmt.Errorf("count equipment references: %w", err)
	}
	if refs > 0 {
		return ErrInUse
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	return expectAffected(result)
}

func (s *Store) ListConsumables(ctx context.Context, equipmentID int64) ([]costing.Consumable, error) {
	items := make([]costing.Consumable, 0)
	err := s.db.SelectContext(ctx, &items, `SELECT `+consumableColumns+` FROM consumables WHERE equipment_id = ? ORDER BY id`, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("query consumables: %w", err)
	}
	return items, nil
}

func (s *Store) GetConsumable(ctx context.Context, id int64) (costing.Consumable, error) {
	var c costing.Consumable
	err := s.db.GetContext(ctx, &c, `SELECT `+consumableColumns+` FROM consumables WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return costing.Consumable{}, ErrNotFound
	}
	if err != nil {
		return costing.Consumable{}, fmt.Errorf("query consumable %d: %w", id, err)
	}
	return c, nil
}

func (s *Store) CreateConsumable(ctx context.Context, c costing.Consumable) (int64, error) {
	if err := ValidateConsumable(c); err != nil {
		return 0, err
	}
	if _, err := s.GetEquipment(ctx, c.EquipmentID); err != nil {
		return 0, err
	}
	result, err := s.db.NamedExecContext(ctx, `
		INSERT INTO consumables (equipment_id, type, unit_cost, yield)
		VALUES (:equipment_id, :type, :unit_cost, :yield)
	`, c)
	if err != nil {
		return 0, fmt.Errorf("insert consumable: %w", err)
	}
	return result.LastInsertId()
}

// UpdateConsumable changes type, cost and yield. The owning equipment is immutable.
func (s *Store) UpdateConsumable(ctx context.Context, c costing.Consumable) error {
	if err := ValidateConsumable(c); err != nil {
		return err
	}
	result, err := s.db.NamedExecContext(ctx, `
		UPDATE consumables
		SET
			type = :type,
			unit_cost = :unit_cost,
			yield = :yield,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = :id
	`, c)
	if err != nil {
		return fmt.Errorf("update consumable: %w", err)
	}
	return expectAffected(result)
}

func (s *Store) DeleteConsumable(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM consumables WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete consumable: %w", err)
	}
	return expectAffected(result)
}

// Snapshot loads the equipment with the given ids and their consumables. Unknown ids
// are simply absent from the result.
func (s *Store) Snapshot(ctx context.Context, ids []int64) (deal.Inventory, error) {
	inv := deal.Inventory{
		Equipment:   make(map[int64]costing.Equipment, len(ids)),
		Consumables: make(map[int64][]costing.Consumable, len(ids)),
	}
	if len(ids) == 0 {
		return inv, nil
	}

	query, args, err := sqlx.In(`SELECT `+equipmentColumns+` FROM equipment WHERE id IN (?)`, ids)
	if err != nil {
		return deal.Inventory{}, fmt.Errorf("build equipment snapshot query: %w", err)
	}
	var equipment []costing.Equipment
	if err := s.db.SelectContext(ctx, &equipment, s.db.Rebind(query), args...); err != nil {
		return deal.Inventory{}, fmt.Errorf("query equipment snapshot: %w", err)
	}
	for _, eq := range equipment {
		inv.Equipment[eq.ID] = eq
	}

	query, args, err = sqlx.In(`SELECT `+consumableColumns+` FROM consumables WHERE equipment_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return deal.Inventory{}, fmt.Errorf("build consumable snapshot query: %w", err)
	}
	var consumables []costing.Consumable
	if err := s.db.SelectContext(ctx, &consumables, s.db.Rebind(query), args...); err != nil {
		return deal.Inventory{}, fmt.Errorf("query consumable snapshot: %w", err)
	}
	for _, c := range consumables {
		inv.Consumables[c.EquipmentID] = append(inv.Consumables[c.EquipmentID], c)
	}

	return inv, nil
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
