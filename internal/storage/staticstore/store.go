// Package staticstore is the read-only AppDataStore adapter backed by a
// snapshot file. It serves the offline fallback: reads work, every mutation
// refuses with ErrReadOnly. The snapshot is validated against an embedded
// JSON schema at load so a malformed file fails fast instead of breaking
// reads later.
package staticstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/qri-io/jsonschema"

	embedded "github.com/marcuslopes-design/Projeto-Vistoria/db"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/aggregate"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

//go:embed schema.json
var snapshotSchema []byte

type Store struct {
	data *models.AppData
}

var _ storage.AppDataStore = (*Store)(nil)

// Open loads and validates a snapshot file. An empty path falls back to the
// embedded seed aggregate.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		seed, err := embedded.SeedAppData()
		if err != nil {
			return nil, err
		}
		return &Store{data: seed}, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return FromBytes(ctx, b)
}

// FromBytes builds a store from raw snapshot JSON.
func FromBytes(ctx context.Context, b []byte) (*Store, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(snapshotSchema, rs); err != nil {
		return nil, fmt.Errorf("compile snapshot schema: %w", err)
	}

	verrs, err := rs.ValidateBytes(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("validate snapshot: %w", err)
	}
	if len(verrs) > 0 {
		var sb strings.Builder
		for _, v := range verrs {
			sb.WriteString(v.Message)
			sb.WriteString("; ")
		}
		return nil, fmt.Errorf("snapshot does not match aggregate shape: %s: %w", sb.String(), storage.ErrValidation)
	}

	var data models.AppData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &Store{data: &data}, nil
}

func (s *Store) Ready(ctx context.Context) bool { return true }

func (s *Store) Close() error { return nil }

func (s *Store) GetAggregate(ctx context.Context) (*models.AppData, error) {
	return aggregate.Clone(s.data), nil
}

func (s *Store) FindEquipment(ctx context.Context, id string) (*storage.EquipmentRef, error) {
	ref, ok := aggregate.FindEquipment(s.data, id)
	if !ok {
		return nil, fmt.Errorf("equipment id %q: %w", id, storage.ErrNotFound)
	}
	return ref, nil
}

func (s *Store) CreateEquipment(ctx context.Context, id, location, category string) (*models.Equipment, error) {
	return nil, fmt.Errorf("create equipment: %w", storage.ErrReadOnly)
}

func (s *Store) DeleteEquipment(ctx context.Context, id string) error {
	return fmt.Errorf("delete equipment: %w", storage.ErrReadOnly)
}

func (s *Store) CreateCategory(ctx context.Context, name string) (*models.EquipmentCategory, error) {
	return nil, fmt.Errorf("create category: %w", storage.ErrReadOnly)
}

func (s *Store) SubmitInspection(ctx context.Context, in models.InspectionInput) (*storage.InspectionResult, error) {
	return nil, fmt.Errorf("submit inspection: %w", storage.ErrReadOnly)
}

func (s *Store) UpdateClientFields(ctx context.Context, patch models.ClientPatch) (*models.Client, error) {
	return nil, fmt.Errorf("update client: %w", storage.ErrReadOnly)
}

func (s *Store) UpdateInspectionSchedule(ctx context.Context, date, timeOfDay string) error {
	return fmt.Errorf("update schedule: %w", storage.ErrReadOnly)
}
