package storage

import (
	"context"
	"errors"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
)

// Domain errors shared by every backend. Adapters wrap these with context;
// the API layer translates them to HTTP status codes with errors.Is.
var (
	// ErrNotFound: unknown equipment id or category name.
	ErrNotFound = errors.New("not found")
	// ErrConflict: duplicate equipment id or category name.
	ErrConflict = errors.New("already exists")
	// ErrValidation: a required field is missing or malformed.
	ErrValidation = errors.New("invalid input")
	// ErrReadOnly: the backend cannot accept writes (static snapshot mode).
	ErrReadOnly = errors.New("store is read-only")
	// ErrNotReady: the backend has not finished initializing or seeding.
	ErrNotReady = errors.New("store not ready")
)

// EquipmentRef is the result of an id lookup: the item plus the category
// holding it.
type EquipmentRef struct {
	CategoryName string           `json:"categoryName"`
	CategoryIcon string           `json:"categoryIcon"`
	Item         models.Equipment `json:"item"`
}

// InspectionResult pairs the stored record with the equipment projection it
// updated, so callers can patch a local cache without refetching.
type InspectionResult struct {
	Record    models.InspectionRecord
	Equipment models.Equipment
}

// AppDataStore is the storage port for the aggregate. Implementations must
// make every mutating call atomic with respect to concurrent calls on the
// same aggregate: two simultaneous CreateEquipment calls with one id yield
// exactly one success and one ErrConflict. Consistency is enforced by the
// backend, never by in-process locks, so a horizontally scaled deployment
// stays correct.
type AppDataStore interface {
	// Ready reports whether the backend is initialized and seeded.
	Ready(ctx context.Context) bool

	// GetAggregate returns the latest committed aggregate.
	GetAggregate(ctx context.Context) (*models.AppData, error)

	// FindEquipment resolves an equipment id across all categories.
	FindEquipment(ctx context.Context, id string) (*EquipmentRef, error)

	// CreateEquipment registers a new item under an existing category.
	CreateEquipment(ctx context.Context, id, location, category string) (*models.Equipment, error)

	// DeleteEquipment removes an item by id. Inspection history referencing
	// the id is kept as a historical record.
	DeleteEquipment(ctx context.Context, id string) error

	// CreateCategory adds an empty category; name uniqueness is
	// case-insensitive.
	CreateCategory(ctx context.Context, name string) (*models.EquipmentCategory, error)

	// SubmitInspection appends the record and updates the equipment's
	// status/lastInspected projection in one transaction.
	SubmitInspection(ctx context.Context, in models.InspectionInput) (*InspectionResult, error)

	// UpdateClientFields applies a partial client patch and returns the
	// full updated client.
	UpdateClientFields(ctx context.Context, patch models.ClientPatch) (*models.Client, error)

	// UpdateInspectionSchedule replaces the scheduled next inspection.
	UpdateInspectionSchedule(ctx context.Context, date, time string) error

	Close() error
}
