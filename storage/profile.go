package storage

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one row of a profile database.
type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "local_entries" }

// Profile is a Local persisted in a sqlite file, one file per storefront
// profile. Separate processes sharing a file get last-write-wins semantics.
type Profile struct {
	db *gorm.DB
}

// OpenProfile creates or opens the profile database at path.
func OpenProfile(path string) (*Profile, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open profile")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "open profile")
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "migrate profile")
	}
	return &Profile{db: db}, nil
}

func (p *Profile) Get(key string) (string, error) {
	var e Entry
	if err := p.db.First(&e, "entry_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", errors.Wrapf(err, "get %q", key)
	}
	return e.Value, nil
}

func (p *Profile) Set(key, value string) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	return errors.Wrapf(err, "set %q", key)
}

func (p *Profile) Remove(key string) error {
	err := p.db.Where("entry_key = ?", key).Delete(&Entry{}).Error
	return errors.Wrapf(err, "remove %q", key)
}

// Close releases the underlying database.
func (p *Profile) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
