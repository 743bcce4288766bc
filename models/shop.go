package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Barbershop struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	Name    string    `gorm:"not null"`
	Address string
	Phone   string

	// Short code barbers share so colleagues can join the same shop
	UniqueCode         string `gorm:"uniqueIndex;not null"`
	CutDurationMinutes int    `gorm:"default:30"`
	WorkingHours       JSONB  `gorm:"type:jsonb;default:'{}'"`

	Barbers   []User     `gorm:"foreignKey:BarbershopID"`
	Queues    []Queue    `gorm:"foreignKey:BarbershopID"`
	Favorites []Favorite `gorm:"foreignKey:BarbershopID"`

	gorm.Model
}

func (b *Barbershop) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

type Favorite struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	ClientID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_client_shop,priority:1"`
	BarbershopID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_client_shop,priority:2"`

	gorm.Model
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) (err error) {
	f.ID = uuid.New()
	return
}
