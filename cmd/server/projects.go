package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/mpsdeal/internal/costing"
	"github.com/Simplici0/mpsdeal/internal/deal"
	"github.com/Simplici0/mpsdeal/internal/export"
	"github.com/Simplici0/mpsdeal/internal/financing"
	"github.com/Simplici0/mpsdeal/internal/projects"
)

type projectRequest struct {
	Name     string        `json:"name"`
	Settings deal.Settings `json:"settings"`
}

type evaluationResponse struct {
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	deal.Evaluation
}

func (s *server) handleProjectsList(w http.ResponseWriter, r *http.Request) {
	items, err := s.projects.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	req := projectRequest{Settings: s.pricing.Settings()}
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := s.projects.Create(r.Context(), req.Name, req.Settings)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeProject(w, r, http.StatusCreated, id)
}

func (s *server) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.writeProject(w, r, http.StatusOK, id)
}

func (s *server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.projects.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProjectSettings overlays the submitted fields on the stored settings.
func (s *server) handleProjectSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.projects.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	settings := p.Session.Settings
	if !decodeJSON(w, r, &settings) {
		return
	}
	if err := s.projects.UpdateSettings(r.Context(), id, settings); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeProject(w, r, http.StatusOK, id)
}

func (s *server) handleProjectFinancing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var plan financing.Plan
	if !decodeJSON(w, r, &plan) {
		return
	}
	if plan.SelfFunded() && plan.ReferenceMonths == 0 {
		plan.ReferenceMonths = s.pricing.SelfFundedMonths
	}
	plan.Principal = 0

	if err := s.projects.SetFinancing(r.Context(), id, plan); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeProject(w, r, http.StatusOK, id)
}

func (s *server) handleLineAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var line costing.Line
	if !decodeJSON(w, r, &line) {
		return
	}
	if err := s.projects.AddLine(r.Context(), id, line); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeProject(w, r, http.StatusCreated, id)
}

func (s *server) handleLineUndo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	removed, err := s.projects.UndoLastLine(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !removed {
		writeError(w, http.StatusConflict, "project has no lines", nil)
		return
	}
	s.writeProject(w, r, http.StatusOK, id)
}

func (s *server) handleLinesClear(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.projects.ClearLines(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeProject(w, r, http.StatusOK, id)
}

func (s *server) handleEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, ev, err := s.evaluate(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluationResponse{ProjectID: p.ID, Name: p.Session.Name, Evaluation: ev})
}

func (s *server) handleCashFlowCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	_, ev, err := s.evaluate(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="project-%d-cashflow.csv"`, id))
	if err := export.WriteCashFlowCSV(w, ev.CashFlow.Rows); err != nil {
		s.log.Error("write cash flow csv", zap.Int64("project_id", id), zap.Error(err))
	}
}

func (s *server) handleScheduleCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	_, ev, err := s.evaluate(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="project-%d-schedule.csv"`, id))
	if err := export.WriteScheduleCSV(w, ev.Financing.Schedule); err != nil {
		s.log.Error("write schedule csv", zap.Int64("project_id", id), zap.Error(err))
	}
}

// evaluate loads the project and prices it against the current inventory records.
func (s *server) evaluate(ctx context.Context, id int64) (projects.Project, deal.Evaluation, error) {
	p, err := s.projects.Get(ctx, id)
	if err != nil {
		return projects.Project{}, deal.Evaluation{}, err
	}
	inv, err := s.inventory.Snapshot(ctx, projects.EquipmentIDs(p.Session))
	if err != nil {
		return projects.Project{}, deal.Evaluation{}, err
	}
	ev, err := p.Session.Evaluate(inv)
	if err != nil {
		return projects.Project{}, deal.Evaluation{}, err
	}
	return p, ev, nil
}

func (s *server) writeProject(w http.ResponseWriter, r *http.Request, status int, id int64) {
	p, err := s.projects.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, p)
}
