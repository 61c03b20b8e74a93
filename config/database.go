package config

import (
	"crm-backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Open connects to MySQL and migrates the schema. The handle is returned to
// the caller instead of being stored in a package global so that handlers and
// tests receive it by injection.
func Open(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Company{},
		&model.Contact{},
		&model.Deal{},
		&model.Ticket{},
		&model.TicketMessage{},
		&model.TicketSequence{},
		&model.Activity{},
		&model.Punch{},
	)
}
