package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Initialize(databaseURL string, log *zap.Logger, logLevel string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:  NewGormLogger(log, ParseLogLevel(logLevel)),
		NowFunc: nowUTC,
	}

	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connected")
	return db, nil
}
