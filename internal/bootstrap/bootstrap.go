// Package bootstrap opens the database and seeds the rows every deployment
// needs.
package bootstrap

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"evmeri/internal/auth"
	"evmeri/internal/models"
)

func OpenDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}
	return db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Session{}, &models.AuditLog{},
		&models.StationOwner{}, &models.ChargingStation{}, &models.ChargingConnector{},
		&models.StationReview{}, &models.ReviewReply{}, &models.FavoriteStation{},
		&models.QRPaymentSession{}, &models.SupportTicket{}, &models.FAQ{},
	)
}

func SeedRoles(db *gorm.DB) error {
	for _, name := range []string{models.RoleAdministrator, models.RoleUser, models.RoleStationOwner} {
		if err := db.Exec("INSERT INTO roles(name) VALUES (?) ON CONFLICT DO NOTHING", name).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	return nil
}

// SeedAdmin creates the administrator account once. An empty password skips
// seeding.
func SeedAdmin(db *gorm.DB, email, password string, lg *zap.SugaredLogger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if password == "" {
		lg.Warnw("ADMIN_PASSWORD empty, default admin not seeded")
		return nil
	}
	var count int64
	db.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&count)
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	var adminRole models.Role
	if err := db.First(&adminRole, "name = ?", models.RoleAdministrator).Error; err != nil {
		return fmt.Errorf("admin role: %w", err)
	}
	u := models.User{Email: email, PasswordHash: hash, IsActive: true, Roles: []models.Role{adminRole}}
	if err := db.Create(&u).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	lg.Infow("seeded default admin", "email", email)
	return nil
}
