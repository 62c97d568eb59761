// Package testutil builds throwaway databases and credentials for package tests.
package testutil

import (
	"testing"
	"time"

	"clinic-booking-backend/internal/config"
	"clinic-booking-backend/internal/database"
	"clinic-booking-backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Config returns a configuration pointing at a private in-memory sqlite database.
func Config() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   "file::memory:",
		},
		JWT: config.JWTConfig{
			AccessSecret:       "test-access-secret",
			RefreshSecret:      "test-refresh-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
			BcryptCost:         bcrypt.MinCost,
		},
		Server: config.ServerConfig{
			Port:            "0",
			GinMode:         "test",
			ShutdownTimeout: time.Second,
		},
		Redis: config.RedisConfig{LockTTL: 5 * time.Second},
	}
}

// NewDB opens and migrates a fresh database that lives as long as the test.
// It also initializes token signing and the cheapest bcrypt cost.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := Config()
	utils.InitJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	utils.SetBcryptCost(cfg.JWT.BcryptCost)

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
