// Package sqlitestore is the relational AppDataStore adapter: the aggregate
// is projected onto tables and every multi-write mutation runs inside an
// explicit transaction.
package sqlitestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"log/slog"

	embedded "github.com/marcuslopes-design/Projeto-Vistoria/db"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/db"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

// Store implements storage.AppDataStore on SQLite.
type Store struct {
	conn   *db.DB
	logger *slog.Logger
	ready  atomic.Bool
}

var _ storage.AppDataStore = (*Store)(nil)

func New(conn *db.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{conn: conn, logger: logger}
}

// Init applies migrations and seeds the database on first run. The store
// only reports ready once both have succeeded.
func (s *Store) Init(ctx context.Context) error {
	if err := db.Migrate(ctx, s.conn, embedded.Migrations); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := s.seed(ctx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	s.ready.Store(true)
	return nil
}

func (s *Store) Ready(ctx context.Context) bool {
	return s.ready.Load()
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) seed(ctx context.Context) error {
	var count int
	if err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM client`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("database already seeded")
		return nil
	}

	seed, err := embedded.SeedAppData()
	if err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	c := seed.Client
	if _, err := tx.ExecContext(ctx, `INSERT INTO client (name, address, contactPerson, phone, email, imageUrl, floorPlanUrl, coverImageUrl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Address, c.ContactPerson, c.Phone, c.Email, c.ImageURL, c.FloorPlanURL, c.CoverImageURL); err != nil {
		return err
	}

	for _, cat := range seed.EquipmentData {
		res, err := tx.ExecContext(ctx, `INSERT INTO equipment_categories (name, icon) VALUES (?, ?)`, cat.Name, cat.Icon)
		if err != nil {
			return err
		}
		catID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, item := range cat.Items {
			if _, err := tx.ExecContext(ctx, `INSERT INTO equipment (id, location, lastInspected, status, category_id) VALUES (?, ?, ?, ?, ?)`,
				item.ID, item.Location, item.LastInspected, item.Status, catID); err != nil {
				return err
			}
		}
	}

	for _, rec := range seed.InspectionHistory {
		items, err := json.Marshal(rec.ChecklistItems)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO inspection_history (id, inspectionDate, equipmentId, status, checklistItems, evidencePhoto, observations, generalObservations, technicianId)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.InspectionDate, rec.EquipmentID, rec.Status, string(items), rec.EvidencePhoto, rec.Observations, rec.GeneralObservations, rec.TechnicianID); err != nil {
			return err
		}
	}

	state := map[string]any{
		"inspection":         seed.Inspection,
		"userProfile":        seed.UserProfile,
		"settings":           seed.Settings,
		"stats":              seed.Stats,
		"checklistEquipment": seed.ChecklistEquipment,
		"checklistData":      seed.ChecklistData,
		"reportClient":       seed.ReportClient,
	}
	for key, value := range state {
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO app_state (key, value) VALUES (?, ?)`, key, string(b)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("database seeded",
		slog.Int("categories", len(seed.EquipmentData)))
	return nil
}

func (s *Store) appState(ctx context.Context, key string) (json.RawMessage, error) {
	var v string
	if err := s.conn.QueryRow(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&v); err != nil {
		return nil, fmt.Errorf("app_state %q: %w", key, err)
	}
	return json.RawMessage(v), nil
}

func (s *Store) setAppState(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(ctx, `UPDATE app_state SET value = ? WHERE key = ?`, string(b), key)
	return err
}
