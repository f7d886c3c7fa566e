package inventory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the
// device_configs schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE device_configs (
			device_id  TEXT PRIMARY KEY,
			port       TEXT NOT NULL,
			config     TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

func samplePersisted() PersistedDevice {
	brightness := 30
	return PersistedDevice{
		Brightness: 60,
		Mode: PersistedMode{
			SelectedEffectID: "rainbow",
			ParamsByEffect: map[string]map[string]any{
				"rainbow": {"speed": 0.7},
			},
		},
		Outputs: []PersistedOutput{
			{
				ID:         "out-a",
				Brightness: &brightness,
				Mode:       PersistedMode{SelectedEffectID: "fire"},
			},
		},
	}
}

func TestSQLiteRepository_SaveAndLoad(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, "SN-001", "COM3", samplePersisted()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Load(ctx, "SN-001")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Brightness != 60 || got.Mode.SelectedEffectID != "rainbow" {
		t.Errorf("loaded device = %+v", got)
	}
	if len(got.Outputs) != 1 || got.Outputs[0].Mode.SelectedEffectID != "fire" {
		t.Errorf("loaded outputs = %+v", got.Outputs)
	}
	if got.Outputs[0].Brightness == nil || *got.Outputs[0].Brightness != 30 {
		t.Errorf("loaded output brightness = %v", got.Outputs[0].Brightness)
	}
	if got.Mode.ParamsByEffect["rainbow"]["speed"] != 0.7 {
		t.Errorf("loaded params = %v", got.Mode.ParamsByEffect)
	}
}

func TestSQLiteRepository_SaveUpserts(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, "SN-001", "COM3", samplePersisted()); err != nil {
		t.Fatal(err)
	}
	updated := samplePersisted()
	updated.Brightness = 10
	if err := repo.Save(ctx, "SN-001", "COM7", updated); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := repo.Load(ctx, "SN-001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Brightness != 10 {
		t.Errorf("brightness = %d, want updated 10", got.Brightness)
	}
}

func TestSQLiteRepository_LoadMissing(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	_, err := repo.Load(context.Background(), "SN-404")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, "SN-001", "COM3", samplePersisted()); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "SN-001"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Load(ctx, "SN-001"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("config still present after delete: %v", err)
	}

	// Deleting again is a no-op.
	if err := repo.Delete(ctx, "SN-001"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}
