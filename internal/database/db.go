package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"travelhub/internal/model"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Center{},
		&model.Department{},
		&model.Request{},
		&model.Trip{},
		&model.Approval{},
		&model.Notification{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
