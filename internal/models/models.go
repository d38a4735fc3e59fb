package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Equipment operational status (coarse, read-optimized projection).
const (
	StatusOK          = "ok"
	StatusFail        = "fail"
	StatusMaintenance = "maintenance"
)

// Inspection verdicts as submitted with the technician's checklist.
const (
	VerdictOK      = "OK"
	VerdictFailure = "Falha"
	VerdictPending = "Pendente"
)

// DefaultCategoryIcon is assigned to categories created through the API.
const DefaultCategoryIcon = "new_label"

type Client struct {
	Name          string  `json:"name" db:"name"`
	Address       string  `json:"address" db:"address"`
	ContactPerson string  `json:"contactPerson" db:"contactPerson"`
	Phone         string  `json:"phone" db:"phone"`
	Email         string  `json:"email" db:"email"`
	ImageURL      string  `json:"imageUrl" db:"imageUrl"`
	FloorPlanURL  *string `json:"floorPlanUrl" db:"floorPlanUrl"`
	CoverImageURL *string `json:"coverImageUrl" db:"coverImageUrl"`
}

// ClientPatch carries a partial client update. A nil outer pointer means
// "leave the field as is"; a non-nil outer pointer wrapping nil clears it.
type ClientPatch struct {
	FloorPlanURL  **string
	CoverImageURL **string
}

func (p ClientPatch) Empty() bool {
	return p.FloorPlanURL == nil && p.CoverImageURL == nil
}

type Equipment struct {
	ID            string `json:"id" db:"id"`
	Location      string `json:"location" db:"location"`
	LastInspected string `json:"lastInspected" db:"lastInspected"`
	Status        string `json:"status" db:"status"`
}

type EquipmentCategory struct {
	Name  string      `json:"name" db:"name"`
	Icon  string      `json:"icon" db:"icon"`
	Items []Equipment `json:"items"`
}

type ChecklistItem struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

type InspectionRecord struct {
	ID                  string          `json:"id" db:"id"`
	InspectionDate      string          `json:"inspectionDate" db:"inspectionDate"`
	EquipmentID         string          `json:"equipmentId" db:"equipmentId"`
	Status              string          `json:"status" db:"status"`
	ChecklistItems      []ChecklistItem `json:"checklistItems"`
	EvidencePhoto       string          `json:"evidencePhoto,omitempty" db:"evidencePhoto"`
	Observations        string          `json:"observations,omitempty" db:"observations"`
	GeneralObservations string          `json:"generalObservations,omitempty" db:"generalObservations"`
	TechnicianID        string          `json:"technicianId" db:"technicianId"`
}

type InspectionSchedule struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type Stat struct {
	Icon    string          `json:"icon"`
	Label   string          `json:"label"`
	Value   json.RawMessage `json:"value"`
	Variant string          `json:"variant"`
}

// AppData is the aggregate: the entire application state for one client site,
// treated as a single consistency unit. Sections the API never mutates
// (stats values, checklist template header, report header, profile, settings)
// are carried as raw JSON so the seeded shape round-trips untouched.
type AppData struct {
	Client             Client              `json:"client"`
	Stats              []Stat              `json:"stats"`
	Inspection         InspectionSchedule  `json:"inspection"`
	EquipmentData      []EquipmentCategory `json:"equipmentData"`
	ChecklistEquipment json.RawMessage     `json:"checklistEquipment"`
	ChecklistData      []ChecklistItem     `json:"checklistData"`
	ReportClient       json.RawMessage     `json:"reportClient"`
	UserProfile        json.RawMessage     `json:"userProfile"`
	Settings           json.RawMessage     `json:"settings"`
	InspectionHistory  []InspectionRecord  `json:"inspectionHistory"`
}

// InspectionInput is a decoded POST /api/inspections payload.
type InspectionInput struct {
	EquipmentID         string          `json:"equipmentId"`
	Status              string          `json:"status"`
	ChecklistItems      []ChecklistItem `json:"checklistItems"`
	EvidencePhoto       string          `json:"evidencePhoto,omitempty"`
	Observations        string          `json:"observations,omitempty"`
	GeneralObservations string          `json:"generalObservations,omitempty"`
	TechnicianID        string          `json:"technicianId"`
}

// VerdictToStatus maps the technician's checklist verdict onto the coarse
// equipment status. The mapping is total: anything that is neither OK nor
// Falha counts as pending maintenance.
func VerdictToStatus(verdict string) string {
	switch verdict {
	case VerdictOK:
		return StatusOK
	case VerdictFailure:
		return StatusFail
	default:
		return StatusMaintenance
	}
}

// DateStamp renders t in the YYYY-MM-DD form stored in lastInspected.
func DateStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// NewEquipment builds a freshly registered item: status ok, inspected today.
func NewEquipment(id, location string, now time.Time) Equipment {
	return Equipment{
		ID:            id,
		Location:      location,
		LastInspected: DateStamp(now),
		Status:        StatusOK,
	}
}

// NewInspectionRecord freezes a submission into its immutable stored form.
// The checklist slice is copied so later edits to the caller's slice cannot
// reach the stored snapshot.
func NewInspectionRecord(in InspectionInput, now time.Time) InspectionRecord {
	items := make([]ChecklistItem, len(in.ChecklistItems))
	copy(items, in.ChecklistItems)

	return InspectionRecord{
		ID:                  fmt.Sprintf("insp_%d", now.UnixMilli()),
		InspectionDate:      now.UTC().Format(time.RFC3339),
		EquipmentID:         in.EquipmentID,
		Status:              in.Status,
		ChecklistItems:      items,
		EvidencePhoto:       in.EvidencePhoto,
		Observations:        in.Observations,
		GeneralObservations: in.GeneralObservations,
		TechnicianID:        in.TechnicianID,
	}
}
