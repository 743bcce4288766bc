// services/queue_service.go
package services

import (
	"errors"
	"time"

	"filo-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine errors. Controllers map these onto HTTP statuses with errors.Is.
var (
	ErrQueueNotFound     = errors.New("queue not found")
	ErrQueueClosed       = errors.New("queue is closed")
	ErrNotQueueOwner     = errors.New("queue belongs to another barber")
	ErrAlreadyOpen       = errors.New("barber already has an open queue")
	ErrAlreadyClosed     = errors.New("queue is already closed")
	ErrAlreadyQueued     = errors.New("client is already waiting in this queue")
	ErrDuplicateRequest  = errors.New("client already has a pending request for this queue")
	ErrNotInQueue        = errors.New("client is not waiting in this queue")
	ErrQueueEmpty        = errors.New("no one is waiting")
	ErrAlreadyServing    = errors.New("a client is already being served")
	ErrNothingServing    = errors.New("no client is currently being served")
	ErrRequestNotFound   = errors.New("request not found")
	ErrRequestNotPending = errors.New("request has already been resolved")
)

// QueueService owns every mutation of queues, entries and requests. Each
// operation runs in a transaction that first locks the queue row FOR UPDATE,
// so concurrent calls against the same queue serialize and waiting positions
// stay dense (1..N, no gaps, no duplicates).
type QueueService struct {
	db *gorm.DB
}

func NewQueueService(db *gorm.DB) *QueueService {
	return &QueueService{db: db}
}

const (
	JoinStatusJoined         = "joined"
	JoinStatusRequestCreated = "request_created"
)

// JoinResult is either a waiting entry or, when the queue is at capacity, a
// pending request for the barber to approve.
type JoinResult struct {
	Status   string
	Position int
	Entry    *models.QueueEntry
	Request  *models.QueueRequest
}

// forUpdate adds the row lock on dialects that support it. SQLite has no
// SELECT ... FOR UPDATE; its writers serialize on the database lock instead.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func lockQueue(tx *gorm.DB, queueID uuid.UUID) (*models.Queue, error) {
	var queue models.Queue
	err := forUpdate(tx).First(&queue, "id = ?", queueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQueueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &queue, nil
}

func waitingCount(tx *gorm.DB, queueID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&models.QueueEntry{}).
		Where("queue_id = ? AND status = ?", queueID, models.EntryStatusWaiting).
		Count(&count).Error
	return count, err
}

// densifyAfter closes the gap left when the waiting entry that held
// removedPosition was deleted or promoted.
func densifyAfter(tx *gorm.DB, queueID uuid.UUID, removedPosition int) error {
	return tx.Model(&models.QueueEntry{}).
		Where("queue_id = ? AND status = ? AND position > ?",
			queueID, models.EntryStatusWaiting, removedPosition).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}

// Open creates a new open queue for the barber. A barber runs at most one
// open queue at a time; closingTime is informational and never auto-closes.
func (s *QueueService) Open(barberID, shopID uuid.UUID, closingTime string, maxCapacity int) (*models.Queue, error) {
	if maxCapacity <= 0 {
		maxCapacity = 10
	}

	queue := models.Queue{
		BarbershopID: shopID,
		BarberID:     barberID,
		IsOpen:       true,
		ClosingTime:  closingTime,
		MaxCapacity:  maxCapacity,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Queue
		err := forUpdate(tx).
			First(&existing, "barber_id = ? AND is_open = ?", barberID, true).Error
		if err == nil {
			return ErrAlreadyOpen
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// idx_one_open_queue backstops the check above when two opens race
		if err := tx.Create(&queue).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyOpen
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &queue, nil
}

// Close flips the queue to closed. Existing entries and requests are kept for
// history; the queue simply stops accepting joins and calls.
func (s *QueueService) Close(queueID, requesterID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		queue, err := lockQueue(tx, queueID)
		if err != nil {
			return err
		}
		if queue.BarberID != requesterID {
			return ErrNotQueueOwner
		}
		if !queue.IsOpen {
			return ErrAlreadyClosed
		}
		return tx.Model(queue).Update("is_open", false).Error
	})
}

// Join places the client at the back of the waiting line, or creates a
// pending request when the queue is at capacity.
func (s *QueueService) Join(queueID, clientID uuid.UUID) (*JoinResult, error) {
	var result JoinResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		queue, err := lockQueue(tx, queueID)
		if err != nil {
			return err
		}
		if !queue.IsOpen {
			return ErrQueueClosed
		}

		var existing models.QueueEntry
		err = tx.First(&existing,
			"queue_id = ? AND client_id = ? AND status = ?",
			queueID, clientID, models.EntryStatusWaiting).Error
		if err == nil {
			return ErrAlreadyQueued
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		count, err := waitingCount(tx, queueID)
		if err != nil {
			return err
		}

		if count >= int64(queue.MaxCapacity) {
			var pending models.QueueRequest
			err = tx.First(&pending,
				"queue_id = ? AND client_id = ? AND status = ?",
				queueID, clientID, models.RequestStatusPending).Error
			if err == nil {
				return ErrDuplicateRequest
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			request := models.QueueRequest{
				QueueID:  queueID,
				ClientID: clientID,
				Status:   models.RequestStatusPending,
			}
			if err := tx.Create(&request).Error; err != nil {
				return err
			}
			result = JoinResult{Status: JoinStatusRequestCreated, Request: &request}
			return nil
		}

		entry := models.QueueEntry{
			QueueID:  queueID,
			ClientID: &clientID,
			Position: int(count) + 1,
			Status:   models.EntryStatusWaiting,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		result = JoinResult{Status: JoinStatusJoined, Position: entry.Position, Entry: &entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AddAnonymous inserts a barber-added walk-in at the back of the line. No
// dedup and no capacity gate: the barber standing in the shop outranks both.
func (s *QueueService) AddAnonymous(queueID, barberID uuid.UUID, name, phone string) (*models.QueueEntry, error) {
	if name == "" {
		name = "Guest"
	}

	var entry models.QueueEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		queue, err := lockQueue(tx, queueID)
		if err != nil {
			return err
		}
		if queue.BarberID != barberID {
			return ErrNotQueueOwner
		}
		if !queue.IsOpen {
			return ErrQueueClosed
		}

		count, err := waitingCount(tx, queueID)
		if err != nil {
			return err
		}

		entry = models.QueueEntry{
			QueueID:    queueID,
			GuestName:  name,
			GuestPhone: phone,
			Position:   int(count) + 1,
			Status:     models.EntryStatusWaiting,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Leave removes the client's waiting entry and closes the position gap.
func (s *QueueService) Leave(queueID, clientID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockQueue(tx, queueID); err != nil {
			return err
		}

		var entry models.QueueEntry
		err := tx.First(&entry,
			"queue_id = ? AND client_id = ? AND status = ?",
			queueID, clientID, models.EntryStatusWaiting).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotInQueue
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}
		return densifyAfter(tx, queueID, entry.Position)
	})
}

// CallNext promotes the front waiting entry to called. Only one entry may be
// called at a time; the barber completes the current cut before calling again.
func (s *QueueService) CallNext(queueID, barberID uuid.UUID) (*models.QueueEntry, error) {
	var called models.QueueEntry

	err := s.db.Transaction(func(tx *gorm.DB) error {
		queue, err := lockQueue(tx, queueID)
		if err != nil {
			return err
		}
		if queue.BarberID != barberID {
			return ErrNotQueueOwner
		}

		var serving int64
		if err := tx.Model(&models.QueueEntry{}).
			Where("queue_id = ? AND status = ?", queueID, models.EntryStatusCalled).
			Count(&serving).Error; err != nil {
			return err
		}
		if serving > 0 {
			return ErrAlreadyServing
		}

		err = tx.Where("queue_id = ? AND status = ?", queueID, models.EntryStatusWaiting).
			Order("position").
			First(&called).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQueueEmpty
		}
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&called).Updates(map[string]interface{}{
			"status":    models.EntryStatusCalled,
			"called_at": &now,
		}).Error; err != nil {
			return err
		}
		called.Status = models.EntryStatusCalled
		called.CalledAt = &now

		return densifyAfter(tx, queueID, called.Position)
	})
	if err != nil {
		return nil, err
	}
	return &called, nil
}

// CompleteCurrent finishes the cut for the currently called entry, freeing
// the chair for the next CallNext.
func (s *QueueService) CompleteCurrent(queueID, barberID uuid.UUID) (*models.QueueEntry, error) {
	var current models.QueueEntry

	err := s.db.Transaction(func(tx *gorm.DB) error {
		queue, err := lockQueue(tx, queueID)
		if err != nil {
			return err
		}
		if queue.BarberID != barberID {
			return ErrNotQueueOwner
		}

		err = tx.First(&current,
			"queue_id = ? AND status = ?", queueID, models.EntryStatusCalled).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNothingServing
		}
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&current).Updates(map[string]interface{}{
			"status":       models.EntryStatusCompleted,
			"completed_at": &now,
		}).Error; err != nil {
			return err
		}
		current.Status = models.EntryStatusCompleted
		current.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &current, nil
}

// ApproveRequest admits an overflow request as a waiting entry at the tail.
// Approval is the barber's explicit override, so the capacity gate is skipped.
func (s *QueueService) ApproveRequest(requestID, barberID uuid.UUID) (*models.QueueEntry, error) {
	var entry models.QueueEntry

	err := s.db.Transaction(func(tx *gorm.DB) error {
		request, queue, err := lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if queue.BarberID != barberID {
			return ErrNotQueueOwner
		}
		if request.Status != models.RequestStatusPending {
			return ErrRequestNotPending
		}

		count, err := waitingCount(tx, queue.ID)
		if err != nil {
			return err
		}

		entry = models.QueueEntry{
			QueueID:  queue.ID,
			ClientID: &request.ClientID,
			Position: int(count) + 1,
			Status:   models.EntryStatusWaiting,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(request).Updates(map[string]interface{}{
			"status":       models.RequestStatusApproved,
			"responded_at": &now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RejectRequest resolves a pending request without creating an entry.
func (s *QueueService) RejectRequest(requestID, barberID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		request, queue, err := lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if queue.BarberID != barberID {
			return ErrNotQueueOwner
		}
		if request.Status != models.RequestStatusPending {
			return ErrRequestNotPending
		}

		now := time.Now()
		return tx.Model(request).Updates(map[string]interface{}{
			"status":       models.RequestStatusRejected,
			"responded_at": &now,
		}).Error
	})
}

// lockRequest resolves a request's queue, takes the FOR UPDATE lock on it and
// re-reads the request under that lock, so resolving a request serializes with
// joins and with competing resolutions of the same request.
func lockRequest(tx *gorm.DB, requestID uuid.UUID) (*models.QueueRequest, *models.Queue, error) {
	var request models.QueueRequest
	err := tx.First(&request, "id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	queue, err := lockQueue(tx, request.QueueID)
	if err != nil {
		return nil, nil, err
	}

	// The first read only resolved the queue id. The status check needs the
	// row as committed after the lock, not the pre-lock snapshot.
	err = forUpdate(tx).First(&request, "id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return &request, queue, nil
}
