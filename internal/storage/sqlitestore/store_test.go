package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/db"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	conn, err := db.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	s := New(conn, nil)
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}

func TestInitSeedsOnce(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	if !s.Ready(ctx) {
		t.Fatal("store should be ready after init")
	}

	data, err := s.GetAggregate(ctx)
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if data.Client.Name != "Nome do Cliente LLC" {
		t.Fatalf("unexpected client name %q", data.Client.Name)
	}
	if len(data.EquipmentData) != 3 {
		t.Fatalf("expected 3 seeded categories, got %d", len(data.EquipmentData))
	}
	if len(data.ChecklistData) != 8 {
		t.Fatalf("expected 8 checklist template items, got %d", len(data.ChecklistData))
	}

	// a second init must not duplicate the seed
	if err := s.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	data, err = s.GetAggregate(ctx)
	if err != nil {
		t.Fatalf("get aggregate after reinit: %v", err)
	}
	if len(data.EquipmentData) != 3 {
		t.Fatalf("seed ran twice: %d categories", len(data.EquipmentData))
	}
}

func TestCreateEquipmentThenGet(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	item, err := s.CreateEquipment(ctx, "FE-002", "Predio 2", "Extintores de Incêndio")
	if err != nil {
		t.Fatalf("create equipment: %v", err)
	}
	if item.Status != models.StatusOK {
		t.Fatalf("expected status ok, got %q", item.Status)
	}

	ref, err := s.FindEquipment(ctx, "FE-002")
	if err != nil {
		t.Fatalf("find equipment: %v", err)
	}
	if ref.CategoryName != "Extintores de Incêndio" {
		t.Fatalf("unexpected category %q", ref.CategoryName)
	}
	if ref.Item.Location != "Predio 2" {
		t.Fatalf("unexpected location %q", ref.Item.Location)
	}
	if ref.Item.Status != models.StatusOK {
		t.Fatalf("unexpected status %q", ref.Item.Status)
	}
}

func TestCreateEquipmentDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	if _, err := s.CreateEquipment(ctx, "FE-100", "Lobby", "Extintores de Incêndio"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := s.CreateEquipment(ctx, "FE-100", "Lobby", "Extintores de Incêndio")
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// id seeded under another category also conflicts
	_, err = s.CreateEquipment(ctx, "SA-BLD1-FL2-015", "Qualquer", "Extintores de Incêndio")
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected cross-category conflict, got %v", err)
	}
}

func TestConcurrentCreateSameID(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.CreateEquipment(ctx, "FE-RACE", "Predio 1", "Extintores de Incêndio")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("got non-conflict error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("exactly one concurrent create may win, got %d", successes)
	}

	ref, err := s.FindEquipment(ctx, "FE-RACE")
	if err != nil {
		t.Fatalf("find equipment: %v", err)
	}
	if ref.CategoryName != "Extintores de Incêndio" {
		t.Fatalf("unexpected category %q", ref.CategoryName)
	}
}

func TestCreateEquipmentUnknownCategory(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	_, err := s.CreateEquipment(ctx, "SN-001", "Predio 3", "Sensores")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// the failed transaction must not leave an orphan category or item
	data, err := s.GetAggregate(ctx)
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	for _, cat := range data.EquipmentData {
		if cat.Name == "Sensores" {
			t.Fatal("orphan category created by failed transaction")
		}
	}
	if _, err := s.FindEquipment(ctx, "SN-001"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("orphan equipment visible: %v", err)
	}
}

func TestDeleteEquipment(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	if err := s.DeleteEquipment(ctx, "FE-BLD1-FL2-004"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteEquipment(ctx, "FE-BLD1-FL2-004"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if err := s.DeleteEquipment(ctx, "NOPE-000"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteEquipmentKeepsHistory(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	in := models.InspectionInput{
		EquipmentID:    "FE-BLD1-FL2-004",
		Status:         models.VerdictOK,
		ChecklistItems: []models.ChecklistItem{{ID: "c1", Label: "x", Checked: true}},
		TechnicianID:   "FI-12345",
	}
	if _, err := s.SubmitInspection(ctx, in); err != nil {
		t.Fatalf("submit inspection: %v", err)
	}
	if err := s.DeleteEquipment(ctx, "FE-BLD1-FL2-004"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	data, err := s.GetAggregate(ctx)
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if len(data.InspectionHistory) != 1 {
		t.Fatalf("history should survive equipment deletion, got %d records", len(data.InspectionHistory))
	}
	if data.InspectionHistory[0].EquipmentID != "FE-BLD1-FL2-004" {
		t.Fatalf("unexpected history equipmentId %q", data.InspectionHistory[0].EquipmentID)
	}
}

func TestCreateCategoryCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	cat, err := s.CreateCategory(ctx, "Mangueiras")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if cat.Icon != models.DefaultCategoryIcon {
		t.Fatalf("expected default icon, got %q", cat.Icon)
	}

	if _, err := s.CreateCategory(ctx, "mangueiras"); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected conflict for lowercased duplicate, got %v", err)
	}
	if _, err := s.CreateCategory(ctx, "extintores de incêndio"); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected conflict for seeded category, got %v", err)
	}
}

func TestSubmitInspectionUpdatesProjection(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	in := models.InspectionInput{
		EquipmentID:    "FE-BLD1-FL2-004",
		Status:         models.VerdictFailure,
		ChecklistItems: []models.ChecklistItem{{ID: "c1", Label: "x", Checked: true}},
		TechnicianID:   "FI-12345",
	}
	result, err := s.SubmitInspection(ctx, in)
	if err != nil {
		t.Fatalf("submit inspection: %v", err)
	}
	if result.Equipment.Status != models.StatusFail {
		t.Fatalf("expected projected status fail, got %q", result.Equipment.Status)
	}
	if result.Record.Status != models.VerdictFailure {
		t.Fatalf("record keeps the verdict vocabulary, got %q", result.Record.Status)
	}

	data, err := s.GetAggregate(ctx)
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if len(data.InspectionHistory) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(data.InspectionHistory))
	}
	stored := data.InspectionHistory[0]
	if len(stored.ChecklistItems) != 1 || stored.ChecklistItems[0].ID != "c1" || !stored.ChecklistItems[0].Checked {
		t.Fatalf("checklist snapshot not preserved: %+v", stored.ChecklistItems)
	}

	ref, err := s.FindEquipment(ctx, "FE-BLD1-FL2-004")
	if err != nil {
		t.Fatalf("find equipment: %v", err)
	}
	if ref.Item.Status != models.StatusFail {
		t.Fatalf("projection not persisted, status %q", ref.Item.Status)
	}
	if ref.Item.LastInspected != result.Equipment.LastInspected {
		t.Fatalf("lastInspected mismatch: %q vs %q", ref.Item.LastInspected, result.Equipment.LastInspected)
	}
}

func TestSubmitInspectionUnknownEquipmentWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	in := models.InspectionInput{
		EquipmentID:    "GHOST-1",
		Status:         models.VerdictOK,
		ChecklistItems: []models.ChecklistItem{},
	}
	if _, err := s.SubmitInspection(ctx, in); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	data, err := s.GetAggregate(ctx)
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if len(data.InspectionHistory) != 0 {
		t.Fatalf("rolled-back submission left %d history records", len(data.InspectionHistory))
	}
}

func TestSubmitInspectionRecordInsertFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	fixed := time.Date(2024, 10, 26, 15, 30, 0, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = time.Now })

	// occupy the record id the pinned clock will produce, so the history
	// insert fails after the equipment update already succeeded
	if _, err := s.conn.Exec(ctx, `INSERT INTO inspection_history (id, inspectionDate, equipmentId, status, checklistItems) VALUES (?, ?, ?, ?, ?)`,
		"insp_1729956600000", "2024-10-26T15:00:00Z", "SA-BLD1-FL2-015", models.VerdictOK, "[]"); err != nil {
		t.Fatalf("pre-insert colliding record: %v", err)
	}

	before, err := s.FindEquipment(ctx, "FE-BLD1-FL2-004")
	if err != nil {
		t.Fatalf("find equipment: %v", err)
	}

	in := models.InspectionInput{
		EquipmentID:    "FE-BLD1-FL2-004",
		Status:         models.VerdictFailure,
		ChecklistItems: []models.ChecklistItem{},
	}
	if _, err := s.SubmitInspection(ctx, in); err == nil {
		t.Fatal("expected the colliding record insert to fail the submission")
	}

	after, err := s.FindEquipment(ctx, "FE-BLD1-FL2-004")
	if err != nil {
		t.Fatalf("find equipment after rollback: %v", err)
	}
	if after.Item.Status != before.Item.Status || after.Item.LastInspected != before.Item.LastInspected {
		t.Fatalf("equipment update survived the rollback: %+v vs %+v", after.Item, before.Item)
	}

	data, err := s.GetAggregate(ctx)
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if len(data.InspectionHistory) != 1 {
		t.Fatalf("expected only the pre-inserted record, got %d", len(data.InspectionHistory))
	}
}

func TestUpdateClientFields(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	plan := "https://example.com/plan.png"
	planPtr := &plan
	client, err := s.UpdateClientFields(ctx, models.ClientPatch{FloorPlanURL: &planPtr})
	if err != nil {
		t.Fatalf("update client: %v", err)
	}
	if client.FloorPlanURL == nil || *client.FloorPlanURL != plan {
		t.Fatalf("floorPlanUrl not updated: %v", client.FloorPlanURL)
	}
	if client.CoverImageURL != nil {
		t.Fatalf("coverImageUrl should stay null, got %v", *client.CoverImageURL)
	}

	if _, err := s.UpdateClientFields(ctx, models.ClientPatch{}); !errors.Is(err, storage.ErrValidation) {
		t.Fatalf("expected validation error for empty patch, got %v", err)
	}
}

func TestUpdateInspectionSchedule(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	if err := s.UpdateInspectionSchedule(ctx, "27 de Outubro de 2024", "14:00"); err != nil {
		t.Fatalf("update schedule: %v", err)
	}

	data, err := s.GetAggregate(ctx)
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if data.Inspection.Date != "27 de Outubro de 2024" || data.Inspection.Time != "14:00" {
		t.Fatalf("schedule not updated: %+v", data.Inspection)
	}
}
