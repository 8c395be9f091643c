// Command migrate applies the database schema. The schema is managed with
// gorm AutoMigrate; this command exists so deploys can migrate before the
// server boots.
package main

import (
	"go.uber.org/zap"

	"github.com/orderlink/backend/internal/infrastructure/config"
	"github.com/orderlink/backend/internal/infrastructure/logger"
	"github.com/orderlink/backend/internal/infrastructure/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Migration complete")
}
