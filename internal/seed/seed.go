package seed

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	demoBrand       = "Brother"
	demoModel       = "HL-L5100DN"
	demoConsumable  = "Toner"
	demoTonerCost   = 145.48
	demoTonerYield  = 25000
	demoDeviceType  = "Mono laser"
	demoSpeedPPM    = 42
	demoAcquisition = 885.0
	demoResidual    = 50.0
	demoLifeMonths  = 36
	demoMaintenance = 20.0
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	// Demo adds a sample device with its toner to an empty inventory.
	Demo bool
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if cfg.Demo {
		if err := ensureDemoEquipment(tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureDemoEquipment(tx *sql.Tx, stats *Stats) error {
	var id int64
	err := tx.QueryRow(`SELECT id FROM equipment WHERE brand = ? AND model = ? LIMIT 1`, demoBrand, demoModel).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		result, err := tx.Exec(`
			INSERT INTO equipment (
				brand,
				model,
				device_type,
				speed_ppm,
				acquisition_cost,
				residual_value,
				useful_life_months,
				monthly_maintenance
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, demoBrand, demoModel, demoDeviceType, demoSpeedPPM, demoAcquisition, demoResidual, demoLifeMonths, demoMaintenance)
		if err != nil {
			return fmt.Errorf("insert demo equipment: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("demo equipment id: %w", err)
		}
		stats.Inserts++
	case err != nil:
		return fmt.Errorf("check demo equipment existence: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM consumables WHERE equipment_id = ? AND type = ? LIMIT 1)`, id, demoConsumable).Scan(&exists); err != nil {
		return fmt.Errorf("check demo consumable existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO consumables (equipment_id, type, unit_cost, yield)
		VALUES (?, ?, ?, ?)
	`, id, demoConsumable, demoTonerCost, demoTonerYield); err != nil {
		return fmt.Errorf("insert demo consumable: %w", err)
	}
	stats.Inserts++
	return nil
}
