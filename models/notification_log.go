// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationLog struct {
	ID      uuid.UUID  `gorm:"type:uuid;primary_key"`
	QueueID uuid.UUID  `gorm:"type:uuid;index;not null"`
	EntryID *uuid.UUID `gorm:"type:uuid;index"`

	Type         string `gorm:"type:varchar(20)"` // turn, closing
	Phone        string
	Message      string `gorm:"type:text"`
	Status       string `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage string `gorm:"type:text"`
	SentAt       time.Time

	gorm.Model
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	n.ID = uuid.New()
	return
}
