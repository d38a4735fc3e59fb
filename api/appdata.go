package api

import (
	"encoding/json"
	"net/http"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

type AppDataHandler struct {
	store storage.AppDataStore
}

func NewAppDataHandler(store storage.AppDataStore) *AppDataHandler {
	return &AppDataHandler{store: store}
}

func (h *AppDataHandler) GetAppData(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.GetAggregate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, data, http.StatusOK)
}

// patchClientRequest distinguishes "field absent" from "field set to null":
// json.RawMessage captures presence, presence means the column is written.
type patchClientRequest struct {
	FloorPlanURL  json.RawMessage `json:"floorPlanUrl"`
	CoverImageURL json.RawMessage `json:"coverImageUrl"`
}

func (h *AppDataHandler) PatchClient(w http.ResponseWriter, r *http.Request) {
	var req patchClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, errorResponse{Message: "Invalid request body."}, http.StatusBadRequest)
		return
	}

	var patch models.ClientPatch
	if req.FloorPlanURL != nil {
		var v *string
		if err := json.Unmarshal(req.FloorPlanURL, &v); err != nil {
			writeJSON(w, errorResponse{Message: "Invalid floorPlanUrl."}, http.StatusBadRequest)
			return
		}
		patch.FloorPlanURL = &v
	}
	if req.CoverImageURL != nil {
		var v *string
		if err := json.Unmarshal(req.CoverImageURL, &v); err != nil {
			writeJSON(w, errorResponse{Message: "Invalid coverImageUrl."}, http.StatusBadRequest)
			return
		}
		patch.CoverImageURL = &v
	}

	if patch.Empty() {
		writeJSON(w, errorResponse{Message: "No update data provided."}, http.StatusBadRequest)
		return
	}

	client, err := h.store.UpdateClientFields(r.Context(), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, client, http.StatusOK)
}

type patchInspectionRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func (h *AppDataHandler) PatchInspection(w http.ResponseWriter, r *http.Request) {
	var req patchInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, errorResponse{Message: "Invalid request body."}, http.StatusBadRequest)
		return
	}
	if req.Date == "" || req.Time == "" {
		writeJSON(w, errorResponse{Message: "Date and time are required."}, http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateInspectionSchedule(r.Context(), req.Date, req.Time); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, models.InspectionSchedule{Date: req.Date, Time: req.Time}, http.StatusOK)
}
