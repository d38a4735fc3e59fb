package sqlitestore

import (
	"context"
	"fmt"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

func (s *Store) UpdateClientFields(ctx context.Context, patch models.ClientPatch) (*models.Client, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("no update data provided: %w", storage.ErrValidation)
	}

	tx, err := s.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if patch.FloorPlanURL != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE client SET floorPlanUrl = ? WHERE id = 1`, *patch.FloorPlanURL); err != nil {
			return nil, err
		}
	}
	if patch.CoverImageURL != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE client SET coverImageUrl = ? WHERE id = 1`, *patch.CoverImageURL); err != nil {
			return nil, err
		}
	}

	row := tx.QueryRowContext(ctx, `SELECT name, address, contactPerson, phone, email, imageUrl, floorPlanUrl, coverImageUrl FROM client LIMIT 1`)
	client, err := scanClient(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Store) UpdateInspectionSchedule(ctx context.Context, date, timeOfDay string) error {
	return s.setAppState(ctx, "inspection", models.InspectionSchedule{Date: date, Time: timeOfDay})
}
