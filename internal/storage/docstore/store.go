// Package docstore is the single-document AppDataStore adapter: the whole
// aggregate lives under one Redis key and every mutation is a WATCH-guarded
// compare-and-swap read-modify-write, retried on contention. The mutation
// rules themselves come from the aggregate package.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"log/slog"

	"github.com/go-redis/redis/v8"

	embedded "github.com/marcuslopes-design/Projeto-Vistoria/db"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/aggregate"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

// DefaultKey is the Redis key holding the aggregate document.
const DefaultKey = "vistoria:appdata"

// casRetries bounds the optimistic retry loop under write contention.
const casRetries = 8

type Store struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

var _ storage.AppDataStore = (*Store)(nil)

func New(client *redis.Client, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{client: client, key: key, logger: logger}
}

// Init seeds the document if the key is absent. SetNX makes concurrent
// first runs converge on one seed.
func (s *Store) Init(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	seed, err := embedded.SeedAppData()
	if err != nil {
		return err
	}
	b, err := json.Marshal(seed)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, s.key, b, 0).Result()
	if err != nil {
		return fmt.Errorf("seed document: %w", err)
	}
	if created {
		s.logger.Info("document seeded", slog.String("key", s.key))
	}
	return nil
}

func (s *Store) Ready(ctx context.Context) bool {
	n, err := s.client.Exists(ctx, s.key).Result()
	return err == nil && n > 0
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) GetAggregate(ctx context.Context) (*models.AppData, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("aggregate document: %w", storage.ErrNotReady)
		}
		return nil, err
	}

	var data models.AppData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decode aggregate: %w", err)
	}
	return &data, nil
}

// mutate runs fn against the current document and swaps the result back in
// only if the document was untouched in between. Domain errors from fn
// abort without retrying; only CAS contention retries.
func (s *Store) mutate(ctx context.Context, fn func(*models.AppData) error) error {
	for i := 0; i < casRetries; i++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, s.key).Result()
			if err != nil {
				if err == redis.Nil {
					return fmt.Errorf("aggregate document: %w", storage.ErrNotReady)
				}
				return err
			}

			var data models.AppData
			if err := json.Unmarshal([]byte(raw), &data); err != nil {
				return fmt.Errorf("decode aggregate: %w", err)
			}

			if err := fn(&data); err != nil {
				return err
			}

			b, err := json.Marshal(&data)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, s.key, b, 0)
				return nil
			})
			return err
		}, s.key)

		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("cas conflict, retrying", slog.Int("attempt", i+1))
			continue
		}
		return err
	}
	return fmt.Errorf("document update: too much contention on %s", s.key)
}

func (s *Store) FindEquipment(ctx context.Context, id string) (*storage.EquipmentRef, error) {
	data, err := s.GetAggregate(ctx)
	if err != nil {
		return nil, err
	}
	ref, ok := aggregate.FindEquipment(data, id)
	if !ok {
		return nil, fmt.Errorf("equipment id %q: %w", id, storage.ErrNotFound)
	}
	return ref, nil
}

func (s *Store) CreateEquipment(ctx context.Context, id, location, category string) (*models.Equipment, error) {
	var item models.Equipment
	err := s.mutate(ctx, func(data *models.AppData) error {
		var err error
		item, err = aggregate.CreateEquipment(data, id, location, category, timeNow())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) DeleteEquipment(ctx context.Context, id string) error {
	return s.mutate(ctx, func(data *models.AppData) error {
		return aggregate.DeleteEquipment(data, id)
	})
}

func (s *Store) CreateCategory(ctx context.Context, name string) (*models.EquipmentCategory, error) {
	var cat models.EquipmentCategory
	err := s.mutate(ctx, func(data *models.AppData) error {
		var err error
		cat, err = aggregate.CreateCategory(data, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *Store) SubmitInspection(ctx context.Context, in models.InspectionInput) (*storage.InspectionResult, error) {
	var result *storage.InspectionResult
	err := s.mutate(ctx, func(data *models.AppData) error {
		var err error
		result, err = aggregate.SubmitInspection(data, in, timeNow())
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) UpdateClientFields(ctx context.Context, patch models.ClientPatch) (*models.Client, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("no update data provided: %w", storage.ErrValidation)
	}

	var client models.Client
	err := s.mutate(ctx, func(data *models.AppData) error {
		client = aggregate.PatchClient(data, patch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Store) UpdateInspectionSchedule(ctx context.Context, date, timeOfDay string) error {
	return s.mutate(ctx, func(data *models.AppData) error {
		aggregate.SetSchedule(data, date, timeOfDay)
		return nil
	})
}
