// Package migrations applies the embedded schema migrations that back a
// database file, tracking applied versions in a schema_migrations table.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
)

//go:embed *.sql
var migrationFiles embed.FS

// Migration is a single versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// parseFilename splits a migration filename like "001_initial.sql" into its
// version and name. ok is false for files that do not follow the pattern.
func parseFilename(filename string) (version int, name string, ok bool) {
	if !strings.HasSuffix(filename, ".sql") {
		return 0, "", false
	}
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	return version, strings.TrimSuffix(parts[1], ".sql"), true
}

// All returns the embedded migrations sorted by version.
func All() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	var all []Migration
	for _, entry := range entries {
		version, name, ok := parseFilename(entry.Name())
		if !ok {
			log.Printf("Warning: skipping migration file with unexpected name: %s", entry.Name())
			continue
		}

		content, err := migrationFiles.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", entry.Name(), err)
		}

		all = append(all, Migration{
			Version: version,
			Name:    name,
			SQL:     string(content),
		})
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Version < all[j].Version
	})

	return all, nil
}

// Apply runs every pending migration against db. Each migration runs in its
// own transaction so a failure leaves the schema at a known version.
func Apply(db *sql.DB) error {
	if err := ensureTrackingTable(db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	all, err := All()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	for _, m := range all {
		if err := applyOne(db, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

func ensureTrackingTable(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err := db.Exec(schema)
	return err
}

func applyOne(db *sql.DB, m Migration) error {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&count)
	if err != nil {
		return fmt.Errorf("check migration status: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Printf("Applying migration %03d: %s", m.Version, m.Name)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Printf("failed to rollback migration transaction: %v", rollbackErr)
			}
		}
	}()

	if _, err = tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("execute migration SQL: %w", err)
	}

	if _, err = tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration transaction: %w", err)
	}

	return nil
}

// Applied returns the versions already recorded in db, in ascending order.
// A database without a tracking table has no applied migrations.
func Applied(db *sql.DB) ([]int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_migrations'").Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("check for migrations table: %w", err)
	}
	if count == 0 {
		return []int{}, nil
	}

	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close migration query rows: %v", err)
		}
	}()

	var versions []int
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migration rows: %w", err)
	}

	return versions, nil
}

// Verify confirms every embedded migration has been applied to db.
func Verify(db *sql.DB) error {
	all, err := All()
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	applied, err := Applied(db)
	if err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}

	appliedSet := make(map[int]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}

	var missing []Migration
	for _, m := range all {
		if !appliedSet[m.Version] {
			missing = append(missing, m)
		}
	}

	if len(missing) > 0 {
		for _, m := range missing {
			log.Printf("missing migration %03d: %s", m.Version, m.Name)
		}
		return fmt.Errorf("%d migrations are not applied", len(missing))
	}

	return nil
}
