package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Origin       string    `json:"origin"`
	Price        float64   `gorm:"not null" json:"price"`
	Unit         string    `gorm:"not null;default:unit" json:"unit"`
	ImageURL     string    `json:"imageUrl"`
	ProducerID   string    `gorm:"index;size:36" json:"producerId"`
	ProducerName string    `json:"producerName"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
