package quotes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Simplici0/mpsdeal/internal/pricing"
	"github.com/Simplici0/mpsdeal/internal/validation"
)

var ErrNotFound = errors.New("quote not found")

// Plan names the offer a quote commits to.
type Plan string

const (
	PlanPerPage Plan = "per_page"
	PlanHybrid  Plan = "hybrid"
	PlanFlatFee Plan = "flat_fee"
)

// ParsePlan accepts the stored names and the letters A, B and C.
func ParsePlan(raw string) (Plan, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "a", string(PlanPerPage):
		return PlanPerPage, nil
	case "b", string(PlanHybrid):
		return PlanHybrid, nil
	case "c", string(PlanFlatFee):
		return PlanFlatFee, nil
	}
	return "", validation.Invalid("plan", "must be per_page, hybrid or flat_fee")
}

// Totals returns the figures stored with a quote for the chosen plan. "total" is
// always the monthly revenue at the reference volume.
func Totals(plan Plan, offers pricing.Result) map[string]float64 {
	values := map[string]float64{
		"total":          offers.Breakdown.TargetRevenue,
		"real_cost":      offers.Breakdown.RealCost,
		"monthly_profit": offers.Breakdown.MonthlyProfit,
	}
	switch plan {
	case PlanPerPage:
		values["price_per_page"] = offers.PerPage.Price
	case PlanHybrid:
		values["rent"] = offers.Hybrid.Rent
		values["click"] = offers.Hybrid.Click
	case PlanFlatFee:
		values["monthly_fee"] = offers.FlatFee.MonthlyFee
		values["included_pages"] = offers.FlatFee.IncludedPages
		values["overage_price"] = offers.FlatFee.OveragePrice
	}
	return values
}

type Input struct {
	ProjectID int64
	Title     string
	Notes     string
	Plan      Plan
	Offers    pricing.Result
}

type Quote struct {
	ID        int64              `json:"id"`
	Ref       string             `json:"ref"`
	ProjectID int64              `json:"project_id"`
	Title     string             `json:"title"`
	Notes     string             `json:"notes"`
	Plan      Plan               `json:"plan"`
	Totals    map[string]float64 `json:"totals"`
	CreatedAt string             `json:"created_at"`
}

type ListItem struct {
	Ref       string  `json:"ref"`
	ProjectID int64   `json:"project_id"`
	CreatedAt string  `json:"created_at"`
	Title     string  `json:"title"`
	Plan      Plan    `json:"plan"`
	Total     float64 `json:"total"`
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Save freezes the chosen offer of a project and returns the new quote reference.
func (s *Store) Save(ctx context.Context, in Input) (string, error) {
	plan, err := ParsePlan(string(in.Plan))
	if err != nil {
		return "", err
	}
	in.Plan = plan
	totalsJSON, err := json.Marshal(Totals(in.Plan, in.Offers))
	if err != nil {
		return "", fmt.Errorf("encode quote totals: %w", err)
	}

	ref := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (ref, project_id, title, notes, plan, totals_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ref, in.ProjectID, strings.TrimSpace(in.Title), strings.TrimSpace(in.Notes), string(in.Plan), string(totalsJSON))
	if err != nil {
		return "", fmt.Errorf("insert quote: %w", err)
	}
	return ref, nil
}

func (s *Store) Get(ctx context.Context, ref string) (Quote, error) {
	var row struct {
		ID         int64  `db:"id"`
		Ref        string `db:"ref"`
		ProjectID  int64  `db:"project_id"`
		Title      string `db:"title"`
		Notes      string `db:"notes"`
		Plan       string `db:"plan"`
		TotalsJSON string `db:"totals_json"`
		CreatedAt  string `db:"created_at"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT
			id,
			ref,
			project_id,
			COALESCE(title, '') AS title,
			COALESCE(notes, '') AS notes,
			plan,
			totals_json,
			CAST(created_at AS TEXT) AS created_at
		FROM quotes
		WHERE ref = ?
	`, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, ErrNotFound
	}
	if err != nil {
		return Quote{}, fmt.Errorf("query quote %s: %w", ref, err)
	}

	q := Quote{
		ID:        row.ID,
		Ref:       row.Ref,
		ProjectID: row.ProjectID,
		Title:     row.Title,
		Notes:     row.Notes,
		Plan:      Plan(row.Plan),
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.TotalsJSON), &q.Totals); err != nil {
		return Quote{}, fmt.Errorf("decode quote totals: %w", err)
	}
	return q, nil
}

// List returns quotes newest first, filtered by title or notes when query is set.
func (s *Store) List(ctx context.Context, query string) ([]ListItem, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.db.QueryxContext(ctx, `
		SELECT
			ref,
			project_id,
			CAST(created_at AS TEXT),
			COALESCE(title, ''),
			plan,
			totals_json
		FROM quotes
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	items := make([]ListItem, 0)
	for rows.Next() {
		var item ListItem
		var totalsJSON string
		if err := rows.Scan(&item.Ref, &item.ProjectID, &item.CreatedAt, &item.Title, &item.Plan, &totalsJSON); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		item.Total = extractTotalFromJSON(totalsJSON)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return items, nil
}

func extractTotalFromJSON(totalsJSON string) float64 {
	var values map[string]float64
	if err := json.Unmarshal([]byte(totalsJSON), &values); err != nil {
		return 0
	}

	for _, key := range []string{"total", "target_revenue", "monthly_fee"} {
		if total, ok := values[key]; ok {
			return total
		}
	}

	return 0
}
