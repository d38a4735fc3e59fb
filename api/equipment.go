package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

type EquipmentHandler struct {
	store storage.AppDataStore
}

func NewEquipmentHandler(store storage.AppDataStore) *EquipmentHandler {
	return &EquipmentHandler{store: store}
}

func (h *EquipmentHandler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ref, err := h.store.FindEquipment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, ref, http.StatusOK)
}

type createEquipmentRequest struct {
	ID       string `json:"id"`
	Location string `json:"location"`
	Category string `json:"category"`
}

type createEquipmentResponse struct {
	Item     models.Equipment `json:"item"`
	Category string           `json:"category"`
}

func (h *EquipmentHandler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req createEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, errorResponse{Message: "Invalid request body."}, http.StatusBadRequest)
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	req.Location = strings.TrimSpace(req.Location)
	if req.ID == "" || req.Location == "" || req.Category == "" {
		writeJSON(w, errorResponse{Message: "Fields 'id', 'location', and 'category' are required."}, http.StatusBadRequest)
		return
	}

	item, err := h.store.CreateEquipment(r.Context(), req.ID, req.Location, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, createEquipmentResponse{Item: *item, Category: req.Category}, http.StatusCreated)
}

func (h *EquipmentHandler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.DeleteEquipment(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Equipment deleted successfully."}, http.StatusOK)
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

func (h *EquipmentHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, errorResponse{Message: "Invalid request body."}, http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, errorResponse{Message: "Category name is required."}, http.StatusBadRequest)
		return
	}

	cat, err := h.store.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, cat, http.StatusCreated)
}
