// Command migrate applies or rolls back the embedded SQL migrations.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down [steps]
package main

import (
	"errors"
	"flag"
	"strconv"

	"makerspace-booking/cmd/bootstrap"
	"makerspace-booking/config"
	"makerspace-booking/internal/infrastructure/database"
	"makerspace-booking/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := bootstrap.NewLogger(cfg.App)

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatalf("Failed to open embedded migrations: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, database.MigrationURL(cfg.DB))
	if err != nil {
		log.Fatalf("Failed to initialize migrate: %v", err)
	}
	defer m.Close()

	switch cmd := flag.Arg(0); cmd {
	case "", "up":
		err = m.Up()
	case "down":
		if n := flag.Arg(1); n != "" {
			steps, convErr := strconv.Atoi(n)
			if convErr != nil || steps <= 0 {
				log.Fatalf("Invalid step count %q", n)
			}
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		log.Fatalf("Unknown command %q (want up or down)", cmd)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Migration failed: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("Failed to read schema version: %v", err)
	}
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Migrations applied")
}
