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
)

type OpenQueueInput struct {
	ClosingTime string `json:"closingTime"`
	MaxCapacity int    `json:"maxCapacity"`
}

type AddAnonymousInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// respondEngineError translates queue engine errors into HTTP statuses:
// missing records 404, ownership 403, invalid state transitions 409.
func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQueueNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrShopNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotQueueOwner):
		utils.RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrAlreadyOpen),
		errors.Is(err, services.ErrAlreadyClosed),
		errors.Is(err, services.ErrQueueClosed),
		errors.Is(err, services.ErrAlreadyQueued),
		errors.Is(err, services.ErrDuplicateRequest),
		errors.Is(err, services.ErrNotInQueue),
		errors.Is(err, services.ErrQueueEmpty),
		errors.Is(err, services.ErrAlreadyServing),
		errors.Is(err, services.ErrNothingServing),
		errors.Is(err, services.ErrRequestNotPending):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}

func currentBarber(c *gin.Context) (*models.User, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return nil, false
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return nil, false
	}
	return &user, true
}

// OpenQueue opens the barber's queue for the day
func OpenQueue(c *gin.Context) {
	barber, ok := currentBarber(c)
	if !ok {
		return
	}
	if barber.BarbershopID == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Barber has no barbershop")
		return
	}

	var input OpenQueueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.ClosingTime != "" && !utils.ValidateClosingTime(input.ClosingTime) {
		utils.RespondWithError(c, http.StatusBadRequest, "closingTime must be HH:MM")
		return
	}

	queue, err := services.NewQueueService(config.DB).
		Open(barber.ID, *barber.BarbershopID, input.ClosingTime, input.MaxCapacity)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"queueId": queue.ID})
}

// CloseQueue closes the barber's queue; entries stay around for history
func CloseQueue(c *gin.Context) {
	barber, ok := currentBarber(c)
	if !ok {
		return
	}

	queueUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid queue ID format")
		return
	}

	if err := services.NewQueueService(config.DB).Close(queueUUID, barber.ID); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Queue closed"})
}

// MyQueue returns the barber's open queue with its waiting line, the client
// being served and pending overflow requests
func MyQueue(c *gin.Context) {
	barber, ok := currentBarber(c)
	if !ok {
		return
	}

	view, err := services.NewQueueViewService(config.DB).MyQueueView(barber.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load queue")
		return
	}

	c.JSON(http.StatusOK, view)
}

// AddAnonymous lets the barber add a walk-in without an account. The insert
// always succeeds regardless of capacity.
func AddAnonymous(c *gin.Context) {
	barber, ok := currentBarber(c)
	if !ok {
		return
	}

	queueUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid queue ID format")
		return
	}

	var input AddAnonymousInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	entry, err := services.NewQueueService(config.DB).
		AddAnonymous(queueUUID, barber.ID, input.Name, input.Phone)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entryId": entry.ID, "position": entry.Position})
}

// CallNext promotes the front of the line and texts the client
func CallNext(c *gin.Context) {
	barber, ok := currentBarber(c)
	if !ok {
		return
	}

	queueUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid queue ID format")
		return
	}

	entry, err := services.NewQueueService(config.DB).CallNext(queueUUID, barber.ID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	go services.NewNotificationService(config.DB).NotifyTurn(entry)

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// CompleteCurrent finishes the cut in progress
func CompleteCurrent(c *gin.Context) {
	barber, ok := currentBarber(c)
	if !ok {
		return
	}

	queueUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid queue ID format")
		return
	}

	entry, err := services.NewQueueService(config.DB).CompleteCurrent(queueUUID, barber.ID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// ApproveRequest admits an overflow request to the back of the line
func ApproveRequest(c *gin.Context) {
	barber, ok := currentBarber(c)
	if !ok {
		return
	}

	requestUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request ID format")
		return
	}

	entry, err := services.NewQueueService(config.DB).ApproveRequest(requestUUID, barber.ID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// RejectRequest resolves an overflow request without admitting the client
func RejectRequest(c *gin.Context) {
	barber, ok := currentBarber(c)
	if !ok {
		return
	}

	requestUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request ID format")
		return
	}

	if err := services.NewQueueService(config.DB).RejectRequest(requestUUID, barber.ID); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request rejected"})
}
