package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/db"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

func (s *Store) FindEquipment(ctx context.Context, id string) (*storage.EquipmentRef, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT e.id, e.location, e.lastInspected, e.status, c.name, c.icon
		FROM equipment e JOIN equipment_categories c ON e.category_id = c.id
		WHERE e.id = ?`, id)

	var ref storage.EquipmentRef
	if err := row.Scan(&ref.Item.ID, &ref.Item.Location, &ref.Item.LastInspected, &ref.Item.Status, &ref.CategoryName, &ref.CategoryIcon); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("equipment id %q: %w", id, storage.ErrNotFound)
		}
		return nil, err
	}
	return &ref, nil
}

// CreateEquipment checks id uniqueness and category existence inside the
// same transaction as the insert, so two concurrent calls with one id
// resolve to exactly one success.
func (s *Store) CreateEquipment(ctx context.Context, id, location, category string) (*models.Equipment, error) {
	tx, err := s.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM equipment WHERE id = ?`, id).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("equipment id %q: %w", id, storage.ErrConflict)
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	var catID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM equipment_categories WHERE name = ?`, category).Scan(&catID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %q: %w", category, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	item := models.NewEquipment(id, location, timeNow())
	if _, err := tx.ExecContext(ctx, `INSERT INTO equipment (id, location, lastInspected, status, category_id) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.Location, item.LastInspected, item.Status, catID); err != nil {
		// a writer that slipped in between the check and the insert trips
		// the primary key, which is still a duplicate id to the caller
		if db.IsConstraint(err) {
			return nil, fmt.Errorf("equipment id %q: %w", id, storage.ErrConflict)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) DeleteEquipment(ctx context.Context, id string) error {
	res, err := s.conn.Exec(ctx, `DELETE FROM equipment WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("equipment id %q: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateCategory(ctx context.Context, name string) (*models.EquipmentCategory, error) {
	tx, err := s.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM equipment_categories WHERE LOWER(name) = LOWER(?)`, name).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("category %q: %w", name, storage.ErrConflict)
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	cat := models.EquipmentCategory{Name: name, Icon: models.DefaultCategoryIcon, Items: []models.Equipment{}}
	if _, err := tx.ExecContext(ctx, `INSERT INTO equipment_categories (name, icon) VALUES (?, ?)`, cat.Name, cat.Icon); err != nil {
		if db.IsConstraint(err) {
			return nil, fmt.Errorf("category %q: %w", name, storage.ErrConflict)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &cat, nil
}
