package controllers

import (
	"net/http"
	"time"

	"filo-backend/config"
	"filo-backend/models"
	"filo-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview gives the barber a day-level picture of their queue
func GetDashboardOverview(c *gin.Context) {
	barber, ok := currentBarber(c)
	if !ok {
		return
	}

	now := time.Now()
	startOfDay := utils.BeginningOfDay(now)

	// Everything the barber completed today, across every queue they ran
	var completed []models.QueueEntry
	if err := config.DB.
		Select("queue_entries.*").
		Joins("JOIN queues ON queues.id = queue_entries.queue_id").
		Where("queues.barber_id = ? AND queue_entries.status = ? AND queue_entries.completed_at >= ?",
			barber.ID, models.EntryStatusCompleted, startOfDay).
		Find(&completed).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	servedToday := len(completed)

	// Average chair time, minutes from called to completed
	var avgServiceMinutes float64
	var chairTime time.Duration
	var counted int
	for _, entry := range completed {
		if entry.CalledAt == nil || entry.CompletedAt == nil {
			continue
		}
		chairTime += entry.CompletedAt.Sub(*entry.CalledAt)
		counted++
	}
	if counted > 0 {
		avgServiceMinutes = chairTime.Minutes() / float64(counted)
	}

	// Current open queue state
	var waitingNow, pendingRequests int64
	var queue models.Queue
	hasOpenQueue := config.DB.
		First(&queue, "barber_id = ? AND is_open = ?", barber.ID, true).Error == nil
	if hasOpenQueue {
		config.DB.Model(&models.QueueEntry{}).
			Where("queue_id = ? AND status = ?", queue.ID, models.EntryStatusWaiting).
			Count(&waitingNow)
		config.DB.Model(&models.QueueRequest{}).
			Where("queue_id = ? AND status = ?", queue.ID, models.RequestStatusPending).
			Count(&pendingRequests)
	}

	response := gin.H{
		"servedToday":       servedToday,
		"avgServiceMinutes": avgServiceMinutes,
		"waitingNow":        waitingNow,
		"pendingRequests":   pendingRequests,
		"queueOpen":         hasOpenQueue,
	}
	if hasOpenQueue {
		response["queueId"] = queue.ID
	}

	c.JSON(http.StatusOK, response)
}
