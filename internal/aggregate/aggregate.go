// Package aggregate implements the mutation rules for the app data
// aggregate as pure functions over the in-memory document. The document
// backend applies them inside a compare-and-swap loop, the static backend
// reuses the read paths, and the client cache reuses the patch paths, so
// the registry invariants live in exactly one place.
package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

// FindEquipment does an exact-match id lookup across all categories.
func FindEquipment(a *models.AppData, id string) (*storage.EquipmentRef, bool) {
	for i := range a.EquipmentData {
		cat := &a.EquipmentData[i]
		for _, item := range cat.Items {
			if item.ID == id {
				return &storage.EquipmentRef{
					CategoryName: cat.Name,
					CategoryIcon: cat.Icon,
					Item:         item,
				}, true
			}
		}
	}
	return nil, false
}

// CreateEquipment appends a new item to the named category. The id must be
// unique across every category (exact match); the category must exist.
func CreateEquipment(a *models.AppData, id, location, category string, now time.Time) (models.Equipment, error) {
	if _, ok := FindEquipment(a, id); ok {
		return models.Equipment{}, fmt.Errorf("equipment id %q: %w", id, storage.ErrConflict)
	}

	for i := range a.EquipmentData {
		if a.EquipmentData[i].Name != category {
			continue
		}
		item := models.NewEquipment(id, location, now)
		a.EquipmentData[i].Items = append(a.EquipmentData[i].Items, item)
		return item, nil
	}

	return models.Equipment{}, fmt.Errorf("category %q: %w", category, storage.ErrNotFound)
}

// DeleteEquipment removes the item from whichever category holds it.
// Inspection history referencing the id is left untouched.
func DeleteEquipment(a *models.AppData, id string) error {
	for i := range a.EquipmentData {
		items := a.EquipmentData[i].Items
		for j, item := range items {
			if item.ID == id {
				a.EquipmentData[i].Items = append(items[:j:j], items[j+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("equipment id %q: %w", id, storage.ErrNotFound)
}

// CreateCategory adds an empty category with the default icon. Name
// uniqueness is case-insensitive.
func CreateCategory(a *models.AppData, name string) (models.EquipmentCategory, error) {
	for _, cat := range a.EquipmentData {
		if strings.EqualFold(cat.Name, name) {
			return models.EquipmentCategory{}, fmt.Errorf("category %q: %w", name, storage.ErrConflict)
		}
	}

	cat := models.EquipmentCategory{
		Name:  name,
		Icon:  models.DefaultCategoryIcon,
		Items: []models.Equipment{},
	}
	a.EquipmentData = append(a.EquipmentData, cat)
	return cat, nil
}

// SubmitInspection appends the record and moves the equipment projection
// (status, lastInspected) in the same step. The aggregate is only modified
// when the whole operation succeeds.
func SubmitInspection(a *models.AppData, in models.InspectionInput, now time.Time) (*storage.InspectionResult, error) {
	newStatus := models.VerdictToStatus(in.Status)
	stamp := models.DateStamp(now)

	for i := range a.EquipmentData {
		items := a.EquipmentData[i].Items
		for j := range items {
			if items[j].ID != in.EquipmentID {
				continue
			}
			items[j].Status = newStatus
			items[j].LastInspected = stamp

			record := models.NewInspectionRecord(in, now)
			a.InspectionHistory = append(a.InspectionHistory, record)

			return &storage.InspectionResult{Record: record, Equipment: items[j]}, nil
		}
	}

	return nil, fmt.Errorf("equipment id %q: %w", in.EquipmentID, storage.ErrNotFound)
}

// PatchClient applies the partial update and returns the resulting client.
func PatchClient(a *models.AppData, patch models.ClientPatch) models.Client {
	if patch.FloorPlanURL != nil {
		a.Client.FloorPlanURL = *patch.FloorPlanURL
	}
	if patch.CoverImageURL != nil {
		a.Client.CoverImageURL = *patch.CoverImageURL
	}
	return a.Client
}

// SetSchedule replaces the scheduled next inspection.
func SetSchedule(a *models.AppData, date, timeOfDay string) {
	a.Inspection = models.InspectionSchedule{Date: date, Time: timeOfDay}
}

// Clone deep-copies the aggregate so callers can hand out snapshots without
// sharing the backing slices.
func Clone(a *models.AppData) *models.AppData {
	if a == nil {
		return nil
	}

	out := *a

	out.EquipmentData = make([]models.EquipmentCategory, len(a.EquipmentData))
	for i, cat := range a.EquipmentData {
		items := make([]models.Equipment, len(cat.Items))
		copy(items, cat.Items)
		cat.Items = items
		out.EquipmentData[i] = cat
	}

	out.InspectionHistory = make([]models.InspectionRecord, len(a.InspectionHistory))
	for i, rec := range a.InspectionHistory {
		items := make([]models.ChecklistItem, len(rec.ChecklistItems))
		copy(items, rec.ChecklistItems)
		rec.ChecklistItems = items
		out.InspectionHistory[i] = rec
	}

	out.Stats = append([]models.Stat(nil), a.Stats...)
	out.ChecklistData = append([]models.ChecklistItem(nil), a.ChecklistData...)

	if a.Client.FloorPlanURL != nil {
		v := *a.Client.FloorPlanURL
		out.Client.FloorPlanURL = &v
	}
	if a.Client.CoverImageURL != nil {
		v := *a.Client.CoverImageURL
		out.Client.CoverImageURL = &v
	}

	return &out
}
