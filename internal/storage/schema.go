package storage

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 2

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createCollectionsTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}
		db.logger.Debug("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations brings an existing database up to currentSchemaVersion.
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}
	if version == currentSchemaVersion {
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	db.logger.Info("Running database migrations", "from_version", version, "to_version", currentSchemaVersion)

	// Version 0 is a file created without tables (interrupted first open).
	if version == 0 {
		return db.initializeSchema()
	}

	// Render state only decides whether to skip a render; older layouts are
	// dropped and refilled by the next render.
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DROP TABLE IF EXISTS collections"); err != nil {
			return fmt.Errorf("failed to drop collections table: %w", err)
		}
		if err := createCollectionsTable(tx); err != nil {
			return err
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return version, err
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createCollectionsTable stores the last render of each named collection
// per output target.
func createCollectionsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT NOT NULL,
			target TEXT NOT NULL DEFAULT '',
			collection_id TEXT NOT NULL,
			sort_signature TEXT NOT NULL,
			group_signature TEXT NOT NULL,
			data_digest TEXT NOT NULL,
			output_digest TEXT NOT NULL,
			renders INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (name, target)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create collections table: %w", err)
	}
	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_collections_updated_at ON collections(updated_at)")
	return err
}
