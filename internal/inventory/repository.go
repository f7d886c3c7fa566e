package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ConfigRepository persists device configurations keyed by serial id.
// The abstraction keeps the registry testable without a database.
type ConfigRepository interface {
	// Save upserts a device's configuration. port records where the
	// device was last seen, for diagnostics only.
	Save(ctx context.Context, deviceID, port string, cfg PersistedDevice) error
	// Load returns a device's configuration, or ErrConfigNotFound.
	Load(ctx context.Context, deviceID string) (PersistedDevice, error)
	// Delete removes a device's configuration. Deleting a missing row
	// is not an error.
	Delete(ctx context.Context, deviceID string) error
}

// SQLiteRepository implements ConfigRepository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed config repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save upserts the configuration blob for a device.
func (r *SQLiteRepository) Save(ctx context.Context, deviceID, port string, cfg PersistedDevice) error {
	blob, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling device config: %w", err)
	}

	query := `
		INSERT INTO device_configs (device_id, port, config, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			port = excluded.port,
			config = excluded.config,
			updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query, deviceID, port, string(blob), time.Now().UTC()); err != nil {
		return fmt.Errorf("saving device config: %w", err)
	}
	return nil
}

// Load retrieves the configuration for a device.
func (r *SQLiteRepository) Load(ctx context.Context, deviceID string) (PersistedDevice, error) {
	query := `SELECT config FROM device_configs WHERE device_id = ?`

	var blob string
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PersistedDevice{}, fmt.Errorf("%w: %s", ErrConfigNotFound, deviceID)
		}
		return PersistedDevice{}, fmt.Errorf("querying device config: %w", err)
	}

	var cfg PersistedDevice
	if err := json.Unmarshal([]byte(blob), &cfg); err != nil {
		return PersistedDevice{}, fmt.Errorf("unmarshalling device config: %w", err)
	}
	return cfg, nil
}

// Delete removes a device's configuration.
func (r *SQLiteRepository) Delete(ctx context.Context, deviceID string) error {
	query := `DELETE FROM device_configs WHERE device_id = ?`
	if _, err := r.db.ExecContext(ctx, query, deviceID); err != nil {
		return fmt.Errorf("deleting device config: %w", err)
	}
	return nil
}
