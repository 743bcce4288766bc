package controllers

import (
	"errors"
	"net/http"

	"filo-backend/config"
	"filo-backend/models"
	"filo-backend/services"
	"filo-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetShopQueue returns the shop-level queue view clients poll: the
// representative open queue, the aggregate waiting count and the caller's
// own position or pending request.
func GetShopQueue(c *gin.Context) {
	shopUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid barbershop ID format")
		return
	}

	var clientID *uuid.UUID
	if userID, exists := c.Get("userId"); exists {
		if parsed, err := uuid.Parse(userID.(string)); err == nil {
			clientID = &parsed
		}
	}

	view, err := services.NewQueueViewService(config.DB).ShopQueueView(shopUUID, clientID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// JoinQueue puts the client into the shop's open queue, or files an overflow
// request when the line is full. The representative queue is the
// earliest-opened one, matching what GetShopQueue shows.
func JoinQueue(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	clientUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	shopUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid barbershop ID format")
		return
	}

	var queue models.Queue
	err = config.DB.Where("barbershop_id = ? AND is_open = ?", shopUUID, true).
		Order("created_at").
		First(&queue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusConflict, "No open queue for this barbershop")
		return
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	result, err := services.NewQueueService(config.DB).Join(queue.ID, clientUUID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if result.Status == services.JoinStatusRequestCreated {
		c.JSON(http.StatusAccepted, gin.H{"status": result.Status})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   result.Status,
		"queueId":  queue.ID,
		"position": result.Position,
	})
}

// LeaveQueue removes the client from the waiting line
func LeaveQueue(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	clientUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	queueUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid queue ID format")
		return
	}

	if err := services.NewQueueService(config.DB).Leave(queueUUID, clientUUID); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left the queue"})
}
