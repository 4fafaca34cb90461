// Package db opens the player's SQLite database and brings its schema up to
// date.
package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite

	"github.com/bnema/lumiere/internal/migrations"
)

// InitDB opens (creating if needed) the database at dbPath and applies the
// embedded migrations.
func InitDB(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Ping(); err != nil {
		closeQuietly(database)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrations.Apply(database); err != nil {
		closeQuietly(database)
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	if err := migrations.Verify(database); err != nil {
		closeQuietly(database)
		return nil, fmt.Errorf("migration verification failed: %w", err)
	}

	return database, nil
}

func closeQuietly(database *sql.DB) {
	if err := database.Close(); err != nil {
		log.Printf("Warning: failed to close database: %v", err)
	}
}
