package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const DefaultMigrationsPath = "file://migrations"

// DSN builds the go-sqlite3 connection string used everywhere. Transactions
// begin IMMEDIATE so writers queue on the busy timeout instead of failing
// with SQLITE_BUSY on lock upgrade.
func DSN(path string) string {
	params := url.Values{}
	params.Set("_txlock", "immediate")
	params.Set("_busy_timeout", "5000")
	params.Set("_journal_mode", "WAL")
	params.Set("_foreign_keys", "on")
	return fmt.Sprintf("file:%s?%s", path, params.Encode())
}

func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", path, err)
	}
	return db, nil
}

func InitDB(path string) *sqlx.DB {
	db, err := Open(path)
	if err != nil {
		log.Fatalln("Failed to connect to DB:", err)
	}

	log.Println("Database connected.")
	return db
}

// RunMigrations applies every pending migration from sourceURL. The returned
// migrate instance is not closed because closing it would close db.
func RunMigrations(db *sql.DB, sourceURL string) error {
	if sourceURL == "" {
		sourceURL = DefaultMigrationsPath
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
