package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Simplici0/mpsdeal/internal/amortization"
	"github.com/Simplici0/mpsdeal/internal/costing"
	"github.com/Simplici0/mpsdeal/internal/deal"
	"github.com/Simplici0/mpsdeal/internal/financing"
	"github.com/Simplici0/mpsdeal/internal/validation"
)

var ErrNotFound = errors.New("project not found")

// Project is a stored session.
type Project struct {
	ID        int64        `json:"id"`
	CreatedAt string       `json:"created_at"`
	Session   deal.Session `json:"session"`
}

type projectRow struct {
	ID                       int64          `db:"id"`
	Name                     string         `db:"name"`
	Margin                   float64        `db:"margin"`
	IncludePaper             bool           `db:"include_paper"`
	PaperReamCost            float64        `db:"paper_ream_cost"`
	OveragePenalty           float64        `db:"overage_penalty"`
	HorizonMonths            int            `db:"horizon_months"`
	DiscountRate             float64        `db:"discount_rate"`
	FinancingSource          sql.NullString `db:"financing_source"`
	FinancingRate            float64        `db:"financing_rate"`
	FinancingTermMonths      int            `db:"financing_term_months"`
	FinancingGraceMonths     int            `db:"financing_grace_months"`
	FinancingMethod          string         `db:"financing_method"`
	FinancingReferenceMonths int            `db:"financing_reference_months"`
	CreatedAt                string         `db:"created_at"`
}

func (r projectRow) session() deal.Session {
	s := deal.Session{
		Name: r.Name,
		Settings: deal.Settings{
			Margin:         r.Margin,
			Paper:          costing.Paper{Included: r.IncludePaper, ReamCost: r.PaperReamCost},
			OveragePenalty: r.OveragePenalty,
			HorizonMonths:  r.HorizonMonths,
			DiscountRate:   r.DiscountRate,
		},
	}
	if r.FinancingSource.Valid {
		s.Financing = &financing.Plan{
			Source:          financing.Source(r.FinancingSource.String),
			AnnualRate:      r.FinancingRate,
			TermMonths:      r.FinancingTermMonths,
			GraceMonths:     r.FinancingGraceMonths,
			Method:          amortization.Method(r.FinancingMethod),
			ReferenceMonths: r.FinancingReferenceMonths,
		}
	}
	return s
}

// Store persists projects and their lines.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Create stores a new project without lines or financing.
func (s *Store) Create(ctx context.Context, name string, settings deal.Settings) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, validation.Invalid("name", "is required")
	}
	if err := settings.Validate(); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (name, margin, include_paper, paper_ream_cost, overage_penalty, horizon_months, discount_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, name, settings.Margin, settings.Paper.Included, settings.Paper.ReamCost, settings.OveragePenalty, settings.HorizonMonths, settings.DiscountRate)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	return result.LastInsertId()
}

// Get loads a project with its lines in insertion order.
func (s *Store) Get(ctx context.Context, id int64) (Project, error) {
	var row projectRow
	err := s.db.GetContext(ctx, &row, `
		SELECT
			id, name, margin, include_paper, paper_ream_cost, overage_penalty, horizon_months, discount_rate,
			financing_source, financing_rate, financing_term_months, financing_grace_months,
			financing_method, financing_reference_months, CAST(created_at AS TEXT) AS created_at
		FROM projects
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, fmt.Errorf("query project %d: %w", id, err)
	}

	session := row.session()
	lines := make([]costing.Line, 0)
	err = s.db.SelectContext(ctx, &lines, `
		SELECT site, equipment_id, quantity, unit_volume
		FROM project_lines
		WHERE project_id = ?
		ORDER BY id
	`, id)
	if err != nil {
		return Project{}, fmt.Errorf("query project lines: %w", err)
	}
	session.Lines = lines

	return Project{ID: row.ID, CreatedAt: row.CreatedAt, Session: session}, nil
}

// Summary is a project as shown in listings.
type Summary struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Lines     int    `db:"lines" json:"lines"`
	Financed  bool   `db:"financed" json:"financed"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// List returns every project, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	out := make([]Summary, 0)
	err := s.db.SelectContext(ctx, &out, `
		SELECT
			p.id,
			p.name,
			(SELECT COUNT(*) FROM project_lines l WHERE l.project_id = p.id) AS lines,
			p.financing_source IS NOT NULL AS financed,
			CAST(p.created_at AS TEXT) AS created_at
		FROM projects p
		ORDER BY datetime(p.created_at) DESC, p.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return expectAffected(result)
}

func (s *Store) UpdateSettings(ctx context.Context, id int64, settings deal.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET
			margin = ?,
			include_paper = ?,
			paper_ream_cost = ?,
			overage_penalty = ?,
			horizon_months = ?,
			discount_rate = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, settings.Margin, settings.Paper.Included, settings.Paper.ReamCost, settings.OveragePenalty, settings.HorizonMonths, settings.DiscountRate, id)
	if err != nil {
		return fmt.Errorf("update project settings: %w", err)
	}
	return expectAffected(result)
}

// SetFinancing stores the financing terms. The principal is not stored: it is the
// project investment and is recomputed on every evaluation.
func (s *Store) SetFinancing(ctx context.Context, id int64, plan financing.Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET
			financing_source = ?,
			financing_rate = ?,
			financing_term_months = ?,
			financing_grace_months = ?,
			financing_method = ?,
			financing_reference_months = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(plan.Source), plan.AnnualRate, plan.TermMonths, plan.GraceMonths, string(plan.Method), plan.ReferenceMonths, id)
	if err != nil {
		return fmt.Errorf("update project financing: %w", err)
	}
	return expectAffected(result)
}

// AddLine appends a line to the project.
func (s *Store) AddLine(ctx context.Context, id int64, line costing.Line) error {
	if err := deal.ValidateLine(line); err != nil {
		return err
	}
	if err := s.exists(ctx, id); err != nil {
		return err
	}

	var known bool
	if err := s.db.GetContext(ctx, &known, `SELECT EXISTS(SELECT 1 FROM equipment WHERE id = ?)`, line.EquipmentID); err != nil {
		return fmt.Errorf("check equipment existence: %w", err)
	}
	if !known {
		return validation.Invalid("equipment_id", "unknown equipment")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_lines (project_id, site, equipment_id, quantity, unit_volume)
		VALUES (?, ?, ?, ?, ?)
	`, id, strings.TrimSpace(line.Site), line.EquipmentID, line.Quantity, line.UnitVolume)
	if err != nil {
		return fmt.Errorf("insert project line: %w", err)
	}
	return nil
}

// UndoLastLine removes the most recently added line and reports whether one existed.
func (s *Store) UndoLastLine(ctx context.Context, id int64) (bool, error) {
	if err := s.exists(ctx, id); err != nil {
		return false, err
	}
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM project_lines
		WHERE id = (SELECT MAX(id) FROM project_lines WHERE project_id = ?)
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete last project line: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearLines removes every line and returns how many were removed.
func (s *Store) ClearLines(ctx context.Context, id int64) (int64, error) {
	if err := s.exists(ctx, id); err != nil {
		return 0, err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM project_lines WHERE project_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("clear project lines: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) exists(ctx context.Context, id int64) error {
	var ok bool
	if err := s.db.GetContext(ctx, &ok, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = ?)`, id); err != nil {
		return fmt.Errorf("check project existence: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
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

// EquipmentIDs returns the distinct equipment referenced by the session lines.
func EquipmentIDs(s deal.Session) []int64 {
	seen := make(map[int64]bool, len(s.Lines))
	ids := make([]int64, 0, len(s.Lines))
	for _, l := range s.Lines {
		if !seen[l.EquipmentID] {
			seen[l.EquipmentID] = true
			ids = append(ids, l.EquipmentID)
		}
	}
	return ids
}
