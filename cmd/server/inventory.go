package main

import (
	"net/http"
	"strings"

	"github.com/Simplici0/mpsdeal/internal/costing"
	"github.com/Simplici0/mpsdeal/internal/inventory"
)

type equipmentRequest struct {
	Brand              string  `json:"brand"`
	Model              string  `json:"model"`
	DeviceType         string  `json:"device_type"`
	SpeedPPM           int     `json:"speed_ppm"`
	AcquisitionCost    float64 `json:"acquisition_cost"`
	ResidualValue      float64 `json:"residual_value"`
	UsefulLifeMonths   *int    `json:"useful_life_months"`
	MonthlyMaintenance float64 `json:"monthly_maintenance"`
}

func (req equipmentRequest) equipment() costing.Equipment {
	life := inventory.DefaultUsefulLifeMonths
	if req.UsefulLifeMonths != nil {
		life = *req.UsefulLifeMonths
	}
	return costing.Equipment{
		Brand:              strings.TrimSpace(req.Brand),
		Model:              strings.TrimSpace(req.Model),
		DeviceType:         strings.TrimSpace(req.DeviceType),
		SpeedPPM:           req.SpeedPPM,
		AcquisitionCost:    req.AcquisitionCost,
		ResidualValue:      req.ResidualValue,
		UsefulLifeMonths:   life,
		MonthlyMaintenance: req.MonthlyMaintenance,
	}
}

type consumableRequest struct {
	Type     string  `json:"type"`
	UnitCost float64 `json:"unit_cost"`
	Yield    int     `json:"yield"`
}

func (req consumableRequest) consumable() costing.Consumable {
	return costing.Consumable{
		Type:     strings.TrimSpace(req.Type),
		UnitCost: req.UnitCost,
		Yield:    req.Yield,
	}
}

func (s *server) handleEquipmentList(w http.ResponseWriter, r *http.Request) {
	items, err := s.inventory.ListEquipment(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleEquipmentGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	eq, err := s.inventory.GetEquipment(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (s *server) handleEquipmentCreate(w http.ResponseWriter, r *http.Request) {
	var req equipmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	eq := req.equipment()
	id, err := s.inventory.CreateEquipment(r.Context(), eq)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	eq.ID = id
	writeJSON(w, http.StatusCreated, eq)
}

// handleEquipmentUpdate replaces the record. Projects using it pick up the new
// values on their next evaluation.
func (s *server) handleEquipmentUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req equipmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	eq := req.equipment()
	eq.ID = id
	if err := s.inventory.UpdateEquipment(r.Context(), eq); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (s *server) handleEquipmentDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.inventory.DeleteEquipment(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleConsumablesList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.inventory.GetEquipment(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.inventory.ListConsumables(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleConsumableCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req consumableRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := req.consumable()
	c.EquipmentID = id
	cid, err := s.inventory.CreateConsumable(r.Context(), c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c.ID = cid
	writeJSON(w, http.StatusCreated, c)
}

func (s *server) handleConsumableUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req consumableRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	current, err := s.inventory.GetConsumable(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c := req.consumable()
	c.ID = id
	c.EquipmentID = current.EquipmentID
	if err := s.inventory.UpdateConsumable(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleConsumableDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.inventory.DeleteConsumable(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
