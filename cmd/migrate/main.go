package main

import (
	"flag"
	"os"
	"time"

	"github.com/pageza/recipewizard/backend/config"
	"github.com/pageza/recipewizard/backend/internal/database"
	"github.com/pageza/recipewizard/backend/internal/logger"
)

func main() {
	status := flag.Bool("status", false, "List applied migrations and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close(db)

	if *status {
		if !database.IsPostgres(db) {
			log.Info("SQLite databases are auto-migrated; no migration history is kept")
			return
		}
		var applied []struct {
			Name      string
			AppliedAt time.Time
		}
		if err := db.Table("migrations").Select("name, applied_at").Order("name").Scan(&applied).Error; err != nil {
			log.Fatal("Failed to read migration history", "error", err)
		}
		for _, m := range applied {
			log.Info("Applied migration", "name", m.Name, "applied_at", m.AppliedAt)
		}
		return
	}

	if err := database.RunMigrations(db, database.Migrations(), log); err != nil {
		log.Fatal("Migration failed", "error", err)
	}
	log.Info("All migrations applied successfully")
}
