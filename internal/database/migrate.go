package database

import (
	"database/sql"
	"embed"
	"errors"
	"log"

	"finpulse/internal/model"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationFiles embed.FS

// Migrate applies all pending schema migrations. It is run on startup,
// after the database is reachable and before the server starts serving.
func Migrate(config model.DatabaseConfig) error {
	db, err := sql.Open("pgx", connString(config))
	if err != nil {
		return err
	}
	defer db.Close()

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "fp_schema_migrations",
	})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("Database schema up to date")
		return nil
	}
	if err != nil {
		return err
	}

	version, _, _ := m.Version()
	log.Printf("Database schema migrated to version %d", version)
	return nil
}
