// Package main applies or rolls back the schema migrations of the SQL
// storage backends.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"github.com/cory-johannsen/taberneiros/internal/config"
	"github.com/cory-johannsen/taberneiros/internal/storage/postgres"
	"github.com/cory-johannsen/taberneiros/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var m *migrate.Migrate
	switch cfg.Storage.Backend {
	case "postgres":
		m, err = postgres.NewMigrator(cfg.Database.DSN())
	case "sqlite":
		m, err = sqlite.NewMigrator(cfg.Storage.SQLitePath)
	default:
		log.Fatalf("storage backend %q has no schema to migrate", cfg.Storage.Backend)
	}
	if err != nil {
		log.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	default:
		log.Fatalf("invalid direction %q: must be 'up' or 'down'", *direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, _ := m.Version()
	elapsed := time.Since(start)

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintf(os.Stdout, "no changes (%s version=%d dirty=%v) [%s]\n", cfg.Storage.Backend, version, dirty, elapsed)
	} else {
		fmt.Fprintf(os.Stdout, "migrated %s %s to version=%d dirty=%v [%s]\n", cfg.Storage.Backend, *direction, version, dirty, elapsed)
	}
}
