package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

// GetAggregate assembles the full app data document from the relational
// projection. Category and item order follow insertion order.
func (s *Store) GetAggregate(ctx context.Context) (*models.AppData, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.getEquipmentData(ctx)
	if err != nil {
		return nil, err
	}

	history, err := s.getInspectionHistory(ctx)
	if err != nil {
		return nil, err
	}

	var data models.AppData
	data.Client = *client
	data.EquipmentData = categories
	data.InspectionHistory = history

	if raw, err := s.appState(ctx, "inspection"); err != nil {
		return nil, err
	} else if err := json.Unmarshal(raw, &data.Inspection); err != nil {
		return nil, fmt.Errorf("decode inspection state: %w", err)
	}

	if raw, err := s.appState(ctx, "stats"); err != nil {
		return nil, err
	} else if err := json.Unmarshal(raw, &data.Stats); err != nil {
		return nil, fmt.Errorf("decode stats state: %w", err)
	}

	if raw, err := s.appState(ctx, "checklistData"); err != nil {
		return nil, err
	} else if err := json.Unmarshal(raw, &data.ChecklistData); err != nil {
		return nil, fmt.Errorf("decode checklist state: %w", err)
	}

	opaque := map[string]*json.RawMessage{
		"checklistEquipment": &data.ChecklistEquipment,
		"reportClient":       &data.ReportClient,
		"userProfile":        &data.UserProfile,
		"settings":           &data.Settings,
	}
	for key, dst := range opaque {
		raw, err := s.appState(ctx, key)
		if err != nil {
			return nil, err
		}
		*dst = raw
	}

	return &data, nil
}

func (s *Store) getClient(ctx context.Context) (*models.Client, error) {
	row := s.conn.QueryRow(ctx, `SELECT name, address, contactPerson, phone, email, imageUrl, floorPlanUrl, coverImageUrl FROM client LIMIT 1`)
	return scanClient(row)
}

type rowScanner interface {
	Scan(dst ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var c models.Client
	var floorPlan, coverImage sql.NullString
	if err := row.Scan(&c.Name, &c.Address, &c.ContactPerson, &c.Phone, &c.Email, &c.ImageURL, &floorPlan, &coverImage); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("client: %w", storage.ErrNotFound)
		}
		return nil, err
	}
	if floorPlan.Valid {
		c.FloorPlanURL = &floorPlan.String
	}
	if coverImage.Valid {
		c.CoverImageURL = &coverImage.String
	}
	return &c, nil
}

func (s *Store) getEquipmentData(ctx context.Context) ([]models.EquipmentCategory, error) {
	rows, err := s.conn.QueryRows(ctx, `SELECT id, name, icon FROM equipment_categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type catRow struct {
		id   int64
		name string
		icon string
	}
	var cats []catRow
	for rows.Next() {
		var c catRow
		if err := rows.Scan(&c.id, &c.name, &c.icon); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.EquipmentCategory, 0, len(cats))
	for _, c := range cats {
		items, err := s.getCategoryItems(ctx, c.id)
		if err != nil {
			return nil, err
		}
		out = append(out, models.EquipmentCategory{Name: c.name, Icon: c.icon, Items: items})
	}
	return out, nil
}

func (s *Store) getCategoryItems(ctx context.Context, categoryID int64) ([]models.Equipment, error) {
	rows, err := s.conn.QueryRows(ctx, `SELECT id, location, lastInspected, status FROM equipment WHERE category_id = ? ORDER BY rowid`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Equipment{}
	for rows.Next() {
		var e models.Equipment
		if err := rows.Scan(&e.ID, &e.Location, &e.LastInspected, &e.Status); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (s *Store) getInspectionHistory(ctx context.Context) ([]models.InspectionRecord, error) {
	rows, err := s.conn.QueryRows(ctx, `SELECT id, inspectionDate, equipmentId, status, checklistItems, evidencePhoto, observations, generalObservations, technicianId FROM inspection_history ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []models.InspectionRecord{}
	for rows.Next() {
		rec, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, *rec)
	}
	return history, rows.Err()
}

func scanInspection(row rowScanner) (*models.InspectionRecord, error) {
	var rec models.InspectionRecord
	var items string
	var photo, obs, genObs, tech sql.NullString
	if err := row.Scan(&rec.ID, &rec.InspectionDate, &rec.EquipmentID, &rec.Status, &items, &photo, &obs, &genObs, &tech); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &rec.ChecklistItems); err != nil {
		return nil, fmt.Errorf("decode checklist snapshot %s: %w", rec.ID, err)
	}
	rec.EvidencePhoto = photo.String
	rec.Observations = obs.String
	rec.GeneralObservations = genObs.String
	rec.TechnicianID = tech.String
	return &rec, nil
}
