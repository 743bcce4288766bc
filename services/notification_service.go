// services/notification_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"filo-backend/models"
	"filo-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

const (
	notificationTypeTurn    = "turn"
	notificationTypeClosing = "closing"
)

type NotificationService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &NotificationService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

// StartScheduler runs the closing-time check every evening. It only nudges
// barbers; queues are never closed automatically.
func (s *NotificationService) StartScheduler() {
	c := cron.New()

	c.AddFunc("*/30 18-23 * * *", func() {
		s.NotifyQueuesPastClosing(time.Now())
	})

	c.Start()
	log.Println("Notification scheduler started")
}

// NotifyTurn texts the called client that the chair is free. Failures are
// logged and never bubble up into the call-next operation.
func (s *NotificationService) NotifyTurn(entry *models.QueueEntry) {
	phone := entry.GuestPhone
	name := entry.GuestName
	if entry.ClientID != nil {
		var client models.User
		if err := s.db.First(&client, "id = ?", *entry.ClientID).Error; err != nil {
			log.Printf("Entry %s: failed to load client: %v", entry.ID, err)
			return
		}
		phone = client.Phone
		name = client.Name
	}
	if phone == "" {
		return
	}

	message := fmt.Sprintf("Hi %s, it's your turn! Please head to the chair.", name)
	s.send(entry.QueueID, &entry.ID, notificationTypeTurn, phone, message)
}

// NotifyQueuesPastClosing texts every barber whose queue is still open past
// its stated closing time.
func (s *NotificationService) NotifyQueuesPastClosing(now time.Time) {
	var queues []models.Queue
	if err := s.db.Where("is_open = ? AND closing_time <> ''", true).Find(&queues).Error; err != nil {
		log.Printf("Failed to fetch open queues: %v", err)
		return
	}

	for _, queue := range queues {
		closing := utils.ClosingTimeToday(queue.ClosingTime, now)
		if closing.IsZero() || now.Before(closing) {
			continue
		}

		var barber models.User
		if err := s.db.First(&barber, "id = ?", queue.BarberID).Error; err != nil {
			log.Printf("Queue %s: failed to load barber: %v", queue.ID, err)
			continue
		}
		if barber.Phone == "" {
			continue
		}

		// One nudge per queue per day
		var sent int64
		s.db.Model(&models.NotificationLog{}).
			Where("queue_id = ? AND type = ? AND sent_at >= ?",
				queue.ID, notificationTypeClosing, utils.BeginningOfDay(now)).
			Count(&sent)
		if sent > 0 {
			continue
		}

		message := fmt.Sprintf("Hi %s, your queue is still open past its %s closing time. Close it when you are done for the day.",
			barber.Name, queue.ClosingTime)
		s.send(queue.ID, nil, notificationTypeClosing, barber.Phone, message)
	}
}

func (s *NotificationService) send(queueID uuid.UUID, entryID *uuid.UUID, kind, phone, message string) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	params.SetBody(message)

	resp, err := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("Failed to send message to %s: %v", phone, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("Message sent to %s, SID: %s", phone, *resp.Sid)
	} else {
		log.Printf("Message sent to %s, but no SID returned", phone)
	}

	entry := models.NotificationLog{
		QueueID:      queueID,
		EntryID:      entryID,
		Type:         kind,
		Phone:        phone,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		SentAt:       time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log notification for queue %s: %v", queueID, err)
	}
}
