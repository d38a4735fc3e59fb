package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

type InspectionsHandler struct {
	store storage.AppDataStore
}

func NewInspectionsHandler(store storage.AppDataStore) *InspectionsHandler {
	return &InspectionsHandler{store: store}
}

// postInspectionRequest mirrors models.InspectionInput but keeps the
// checklist raw so an absent field can be told apart from an empty list:
// only the former is rejected.
type postInspectionRequest struct {
	EquipmentID         string          `json:"equipmentId"`
	Status              string          `json:"status"`
	ChecklistItems      json.RawMessage `json:"checklistItems"`
	EvidencePhoto       string          `json:"evidencePhoto,omitempty"`
	Observations        string          `json:"observations,omitempty"`
	GeneralObservations string          `json:"generalObservations,omitempty"`
	TechnicianID        string          `json:"technicianId"`
}

type postInspectionResponse struct {
	Message          string                  `json:"message"`
	SavedInspection  models.InspectionRecord `json:"savedInspection"`
	UpdatedEquipment models.Equipment        `json:"updatedEquipment"`
}

func (h *InspectionsHandler) SubmitInspection(w http.ResponseWriter, r *http.Request) {
	var req postInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, errorResponse{Message: "Invalid request body."}, http.StatusBadRequest)
		return
	}

	req.EquipmentID = strings.TrimSpace(req.EquipmentID)
	if req.EquipmentID == "" || req.Status == "" || req.ChecklistItems == nil {
		writeJSON(w, errorResponse{Message: "Incomplete inspection data."}, http.StatusBadRequest)
		return
	}

	var items []models.ChecklistItem
	if err := json.Unmarshal(req.ChecklistItems, &items); err != nil {
		writeJSON(w, errorResponse{Message: "Invalid checklistItems."}, http.StatusBadRequest)
		return
	}

	result, err := h.store.SubmitInspection(r.Context(), models.InspectionInput{
		EquipmentID:         req.EquipmentID,
		Status:              req.Status,
		ChecklistItems:      items,
		EvidencePhoto:       req.EvidencePhoto,
		Observations:        req.Observations,
		GeneralObservations: req.GeneralObservations,
		TechnicianID:        req.TechnicianID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, postInspectionResponse{
		Message:          "Inspection saved successfully.",
		SavedInspection:  result.Record,
		UpdatedEquipment: result.Equipment,
	}, http.StatusCreated)
}
