package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

// SubmitInspection appends the record and updates the equipment projection
// in one transaction. If either write fails the transaction rolls back and
// neither is visible.
func (s *Store) SubmitInspection(ctx context.Context, in models.InspectionInput) (*storage.InspectionResult, error) {
	tx, err := s.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var equipmentID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM equipment WHERE id = ?`, in.EquipmentID).Scan(&equipmentID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("equipment id %q: %w", in.EquipmentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	now := timeNow()
	newStatus := models.VerdictToStatus(in.Status)
	lastInspected := models.DateStamp(now)

	if _, err := tx.ExecContext(ctx, `UPDATE equipment SET status = ?, lastInspected = ? WHERE id = ?`,
		newStatus, lastInspected, in.EquipmentID); err != nil {
		return nil, err
	}

	var updated models.Equipment
	if err := tx.QueryRowContext(ctx, `SELECT id, location, lastInspected, status FROM equipment WHERE id = ?`, in.EquipmentID).
		Scan(&updated.ID, &updated.Location, &updated.LastInspected, &updated.Status); err != nil {
		return nil, err
	}

	record := models.NewInspectionRecord(in, now)
	items, err := json.Marshal(record.ChecklistItems)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO inspection_history (id, inspectionDate, equipmentId, status, checklistItems, evidencePhoto, observations, generalObservations, technicianId)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.InspectionDate, record.EquipmentID, record.Status, string(items),
		record.EvidencePhoto, record.Observations, record.GeneralObservations, record.TechnicianID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &storage.InspectionResult{Record: record, Equipment: updated}, nil
}
