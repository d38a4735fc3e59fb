package appclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcuslopes-design/Projeto-Vistoria/api"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/config"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/db"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/storage/sqlitestore"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

func setupBackend(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	conn, err := db.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}

	store := sqlitestore.New(conn, nil)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init store: %v", err)
	}

	cfg := &config.Config{StaticDir: t.TempDir(), MaxBodyBytes: 10 << 20}
	srv := httptest.NewServer(api.SetupRoutes(cfg, "test", "now", store))
	t.Cleanup(func() { srv.Close(); conn.Close() })
	return srv
}

func newLoadedClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c := New(Config{BaseURL: srv.URL})
	t.Cleanup(func() { c.Close() })
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c
}

func TestLoadAndSnapshot(t *testing.T) {
	srv := setupBackend(t)
	c := newLoadedClient(t, srv)

	if c.Offline() {
		t.Fatal("client should be online after a successful load")
	}

	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.EquipmentData) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(snap.EquipmentData))
	}

	// snapshots are isolated copies
	snap.EquipmentData[0].Items[0].Status = models.StatusFail
	again, _ := c.Snapshot()
	if again.EquipmentData[0].Items[0].Status == models.StatusFail {
		t.Fatal("snapshot leaked shared state")
	}
}

func TestCreateEquipmentPatchesCache(t *testing.T) {
	srv := setupBackend(t)
	c := newLoadedClient(t, srv)
	ctx := context.Background()

	item, err := c.CreateEquipment(ctx, "FE-002", "Predio 2", "Extintores de Incêndio")
	if err != nil {
		t.Fatalf("create equipment: %v", err)
	}
	if item.Status != models.StatusOK {
		t.Fatalf("expected status ok, got %q", item.Status)
	}

	ref, ok := c.FindEquipment("FE-002")
	if !ok {
		t.Fatal("created item missing from local cache")
	}
	if ref.CategoryName != "Extintores de Incêndio" {
		t.Fatalf("item cached under wrong category %q", ref.CategoryName)
	}

	// appended at the end, order preserved
	snap, _ := c.Snapshot()
	items := snap.EquipmentData[0].Items
	if items[len(items)-1].ID != "FE-002" {
		t.Fatalf("item not appended at end: %v", items)
	}

	// conflicting create leaves the cache untouched
	if _, err := c.CreateEquipment(ctx, "FE-002", "Outro", "Extintores de Incêndio"); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	snap, _ = c.Snapshot()
	if n := len(snap.EquipmentData[0].Items); n != 4 {
		t.Fatalf("failed create changed the cache: %d items", n)
	}
}

func TestDeleteEquipmentPatchesCache(t *testing.T) {
	srv := setupBackend(t)
	c := newLoadedClient(t, srv)
	ctx := context.Background()

	if err := c.DeleteEquipment(ctx, "FE-BLD1-FL2-004"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := c.FindEquipment("FE-BLD1-FL2-004"); ok {
		t.Fatal("deleted item still in local cache")
	}

	if err := c.DeleteEquipment(ctx, "FE-BLD1-FL2-004"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitInspectionPatchesCache(t *testing.T) {
	srv := setupBackend(t)
	c := newLoadedClient(t, srv)
	ctx := context.Background()

	rec, updated, err := c.SubmitInspection(ctx, models.InspectionInput{
		EquipmentID:    "FE-BLD1-FL2-004",
		Status:         models.VerdictFailure,
		ChecklistItems: []models.ChecklistItem{{ID: "c1", Label: "x", Checked: true}},
		TechnicianID:   "FI-12345",
	})
	if err != nil {
		t.Fatalf("submit inspection: %v", err)
	}
	if updated.Status != models.StatusFail {
		t.Fatalf("expected projected fail, got %q", updated.Status)
	}

	snap, _ := c.Snapshot()
	if len(snap.InspectionHistory) != 1 || snap.InspectionHistory[0].ID != rec.ID {
		t.Fatalf("history not patched: %+v", snap.InspectionHistory)
	}
	ref, _ := c.FindEquipment("FE-BLD1-FL2-004")
	if ref.Item.Status != models.StatusFail {
		t.Fatalf("equipment not replaced in cache: %q", ref.Item.Status)
	}
}

func TestUpdateClientAndSchedule(t *testing.T) {
	srv := setupBackend(t)
	c := newLoadedClient(t, srv)
	ctx := context.Background()

	plan := "https://example.com/plan.png"
	updated, err := c.UpdateClientFields(ctx, &plan, nil)
	if err != nil {
		t.Fatalf("update client: %v", err)
	}
	if updated.FloorPlanURL == nil || *updated.FloorPlanURL != plan {
		t.Fatalf("floorPlanUrl not applied: %v", updated.FloorPlanURL)
	}

	sched, err := c.UpdateInspectionSchedule(ctx, "27 de Outubro de 2024", "14:00")
	if err != nil {
		t.Fatalf("update schedule: %v", err)
	}
	snap, _ := c.Snapshot()
	if snap.Inspection != *sched {
		t.Fatalf("schedule not patched: %+v vs %+v", snap.Inspection, *sched)
	}
}

func TestNormalizeEquipmentID(t *testing.T) {
	if got := NormalizeEquipmentID("  fe-001 "); got != "FE-001" {
		t.Fatalf("normalize: got %q", got)
	}
}

func TestOfflineFallback(t *testing.T) {
	// snapshot file in the aggregate shape
	snapPath := filepath.Join(t.TempDir(), "data.json")
	snapshot := []byte(`{
		"client": {"name": "Offline Cliente", "address": "x"},
		"inspection": {"date": "d", "time": "t"},
		"equipmentData": [{"name": "Extintores", "icon": "fire_extinguisher", "items": [
			{"id": "FE-001", "location": "Lobby", "lastInspected": "2024-01-01", "status": "ok"}
		]}],
		"inspectionHistory": []
	}`)
	if err := os.WriteFile(snapPath, snapshot, 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	// dead server forces the fallback
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	c := New(Config{BaseURL: deadURL, SnapshotPath: snapPath})
	defer c.Close()

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load should fall back to snapshot: %v", err)
	}
	if !c.Offline() {
		t.Fatal("client should report offline mode")
	}

	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Client.Name != "Offline Cliente" {
		t.Fatalf("snapshot data not loaded: %q", snap.Client.Name)
	}
	if _, ok := c.FindEquipment("FE-001"); !ok {
		t.Fatal("lookup should work offline")
	}

	// every mutation surfaces the dedicated offline refusal
	ctx := context.Background()
	if _, err := c.CreateEquipment(ctx, "FE-002", "x", "Extintores"); !errors.Is(err, ErrOffline) {
		t.Fatalf("create: expected ErrOffline, got %v", err)
	}
	if err := c.DeleteEquipment(ctx, "FE-001"); !errors.Is(err, ErrOffline) {
		t.Fatalf("delete: expected ErrOffline, got %v", err)
	}
	if _, err := c.CreateCategory(ctx, "Sensores"); !errors.Is(err, ErrOffline) {
		t.Fatalf("category: expected ErrOffline, got %v", err)
	}
	if _, _, err := c.SubmitInspection(ctx, models.InspectionInput{EquipmentID: "FE-001"}); !errors.Is(err, ErrOffline) {
		t.Fatalf("inspection: expected ErrOffline, got %v", err)
	}
	if _, err := c.UpdateClientFields(ctx, nil, nil); !errors.Is(err, ErrOffline) {
		t.Fatalf("client patch: expected ErrOffline, got %v", err)
	}
}

func TestLoadWithoutSnapshotFailsHard(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	c := New(Config{BaseURL: deadURL})
	defer c.Close()

	if err := c.Load(context.Background()); err == nil {
		t.Fatal("expected load error without a snapshot fallback")
	}
	if _, err := c.Snapshot(); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}
