package models

import (
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase connects with driver "postgres" (dsn is a libpq string or URL)
// or "sqlite" (dsn is a file path).
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn + "?_foreign_keys=on")
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}
	if driver == "sqlite" {
		// a single writer avoids "database is locked" under concurrent requests
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "sqlite handle")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(&User{}, &Product{}), "auto-migrate")
}
