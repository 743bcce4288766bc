// services/queue_views.go
package services

import (
	"errors"

	"filo-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrShopNotFound = errors.New("barbershop not found")

// QueueViewService answers read-only queries. Reads run without locks: the
// clients poll, so a stale-but-consistent snapshot is fine.
type QueueViewService struct {
	db *gorm.DB
}

func NewQueueViewService(db *gorm.DB) *QueueViewService {
	return &QueueViewService{db: db}
}

// BarberQueueView is the barber's exact ledger state for their open queue.
type BarberQueueView struct {
	Queue        *models.Queue         `json:"queue"`
	Entries      []models.QueueEntry   `json:"entries"`
	CurrentEntry *models.QueueEntry    `json:"currentEntry"`
	Requests     []models.QueueRequest `json:"requests"`
}

// ShopQueueView is the client-facing aggregate for a shop. When several
// barbers are open at once the earliest-opened queue is returned as the
// representative, QueueSize sums waiting entries across every open queue, and
// the caller's own position or request is searched across all of them.
type ShopQueueView struct {
	Barbershop      *models.Barbershop   `json:"barbershop"`
	IsFavorite      bool                 `json:"isFavorite"`
	Queue           *models.Queue        `json:"queue"`
	ActiveBarbers   int                  `json:"activeBarbers"`
	QueueSize       int64                `json:"queueSize"`
	MyPosition      *int                 `json:"myPosition"`
	MyEstimatedWait *int                 `json:"myEstimatedWait"` // minutes
	MyRequest       *models.QueueRequest `json:"myRequest"`
}

// EstimateWaitMinutes applies the waiting-time rule: with the chair idle a
// client at position P waits for the P-1 people ahead; with a cut in progress
// that cut counts too.
func EstimateWaitMinutes(position int, serving bool, cutDurationMinutes int) int {
	if serving {
		return position * cutDurationMinutes
	}
	return (position - 1) * cutDurationMinutes
}

// MyQueueView returns the barber's open queue with its waiting line, the
// entry being served and the pending overflow requests. A barber with no
// open queue gets a view with a nil queue.
func (s *QueueViewService) MyQueueView(barberID uuid.UUID) (*BarberQueueView, error) {
	view := &BarberQueueView{
		Entries:  []models.QueueEntry{},
		Requests: []models.QueueRequest{},
	}

	var queue models.Queue
	err := s.db.First(&queue, "barber_id = ? AND is_open = ?", barberID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}
	view.Queue = &queue

	if err := s.db.Preload("Client").
		Where("queue_id = ? AND status = ?", queue.ID, models.EntryStatusWaiting).
		Order("position").
		Find(&view.Entries).Error; err != nil {
		return nil, err
	}

	var current models.QueueEntry
	err = s.db.Preload("Client").
		First(&current, "queue_id = ? AND status = ?", queue.ID, models.EntryStatusCalled).Error
	if err == nil {
		view.CurrentEntry = &current
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	requests, err := pendingRequests(s.db, queue.ID)
	if err != nil {
		return nil, err
	}
	view.Requests = requests

	return view, nil
}

// pendingRequests mirrors waitingCount for the request side of the ledger.
func pendingRequests(db *gorm.DB, queueID uuid.UUID) ([]models.QueueRequest, error) {
	requests := []models.QueueRequest{}
	err := db.Preload("Client").
		Where("queue_id = ? AND status = ?", queueID, models.RequestStatusPending).
		Order("created_at").
		Find(&requests).Error
	return requests, err
}

// ShopQueueView returns the shop-level aggregate a polling client sees.
// clientID is nil for anonymous lookups.
func (s *QueueViewService) ShopQueueView(shopID uuid.UUID, clientID *uuid.UUID) (*ShopQueueView, error) {
	var shop models.Barbershop
	err := s.db.First(&shop, "id = ?", shopID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, err
	}

	view := &ShopQueueView{Barbershop: &shop}

	if clientID != nil {
		var favorites int64
		if err := s.db.Model(&models.Favorite{}).
			Where("client_id = ? AND barbershop_id = ?", *clientID, shopID).
			Count(&favorites).Error; err != nil {
			return nil, err
		}
		view.IsFavorite = favorites > 0
	}

	var openQueues []models.Queue
	if err := s.db.Where("barbershop_id = ? AND is_open = ?", shopID, true).
		Order("created_at").
		Find(&openQueues).Error; err != nil {
		return nil, err
	}
	if len(openQueues) == 0 {
		return view, nil
	}

	view.Queue = &openQueues[0]
	view.ActiveBarbers = len(openQueues)

	queueIDs := make([]uuid.UUID, 0, len(openQueues))
	for _, q := range openQueues {
		queueIDs = append(queueIDs, q.ID)
	}

	if err := s.db.Model(&models.QueueEntry{}).
		Where("queue_id IN ? AND status = ?", queueIDs, models.EntryStatusWaiting).
		Count(&view.QueueSize).Error; err != nil {
		return nil, err
	}

	if clientID == nil {
		return view, nil
	}

	var myEntry models.QueueEntry
	err = s.db.First(&myEntry,
		"queue_id IN ? AND client_id = ? AND status = ?",
		queueIDs, *clientID, models.EntryStatusWaiting).Error
	switch {
	case err == nil:
		position := myEntry.Position
		view.MyPosition = &position

		var serving int64
		if err := s.db.Model(&models.QueueEntry{}).
			Where("queue_id = ? AND status = ?", myEntry.QueueID, models.EntryStatusCalled).
			Count(&serving).Error; err != nil {
			return nil, err
		}
		wait := EstimateWaitMinutes(position, serving > 0, shop.CutDurationMinutes)
		view.MyEstimatedWait = &wait
	case errors.Is(err, gorm.ErrRecordNotFound):
		var myRequest models.QueueRequest
		err = s.db.First(&myRequest,
			"queue_id IN ? AND client_id = ? AND status = ?",
			queueIDs, *clientID, models.RequestStatusPending).Error
		if err == nil {
			view.MyRequest = &myRequest
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	default:
		return nil, err
	}

	return view, nil
}
