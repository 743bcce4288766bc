package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EntryStatusWaiting   = "waiting"
	EntryStatusCalled    = "called"
	EntryStatusCompleted = "completed"

	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// Queue is one barber's active service line at a shop. Queues are closed,
// never deleted, so completed entries stay around for history.
type Queue struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	BarbershopID uuid.UUID `gorm:"type:uuid;index;not null"`
	// The partial unique index enforces one open queue per barber even when
	// two opens race past the service-level check.
	BarberID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_one_open_queue,where:is_open"`

	IsOpen      bool   `gorm:"default:true;index"`
	ClosingTime string `gorm:"type:varchar(5)"` // "HH:MM", informational only
	MaxCapacity int    `gorm:"default:10"`

	Entries  []QueueEntry   `gorm:"foreignKey:QueueID"`
	Requests []QueueRequest `gorm:"foreignKey:QueueID"`

	gorm.Model
}

func (q *Queue) BeforeCreate(tx *gorm.DB) (err error) {
	q.ID = uuid.New()
	return
}

// QueueEntry is one customer's slot in a queue. Waiting entries hold dense
// 1-based positions; ClientID is nil for barber-added walk-ins.
type QueueEntry struct {
	ID       uuid.UUID  `gorm:"type:uuid;primary_key"`
	QueueID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	ClientID *uuid.UUID `gorm:"type:uuid;index"`

	GuestName  string
	GuestPhone string

	Client *User `gorm:"foreignKey:ClientID"`

	Position int    `gorm:"not null"`
	Status   string `gorm:"type:varchar(20);default:'waiting';index"`

	CalledAt    *time.Time
	CompletedAt *time.Time

	gorm.Model
}

func (e *QueueEntry) BeforeCreate(tx *gorm.DB) (err error) {
	e.ID = uuid.New()
	return
}

// QueueRequest is a pending ask to join a full queue. Immutable once the
// barber resolves it.
type QueueRequest struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	QueueID  uuid.UUID `gorm:"type:uuid;index;not null"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null"`

	Status      string `gorm:"type:varchar(20);default:'pending';index"`
	RespondedAt *time.Time

	Client *User `gorm:"foreignKey:ClientID"`

	gorm.Model
}

func (r *QueueRequest) BeforeCreate(tx *gorm.DB) (err error) {
	r.ID = uuid.New()
	return
}
