package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"filo-backend/config"
	"filo-backend/models"
	"filo-backend/routes"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestServer(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Barbershop{},
		&models.Favorite{},
		&models.Queue{},
		&models.QueueEntry{},
		&models.QueueRequest{},
		&models.NotificationLog{},
	))
	config.DB = db

	return routes.SetupRouter()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	response := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func registerUser(t *testing.T, r *gin.Engine, email, phone string) string {
	w, response := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email":    email,
		"phone":    phone,
		"name":     "Someone",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return response["token"].(string)
}

func TestQueueLifecycleOverHTTP(t *testing.T) {
	r := setupTestServer(t)

	// Barber signs up and opens their shop
	token := registerUser(t, r, "barber@test.dev", "+5511999000001")
	w, response := doJSON(t, r, http.MethodPost, "/api/profile/setup-barber", token, gin.H{
		"barberName":     "Zeca",
		"barbershopName": "Corner Cuts",
		"cutDuration":    30,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	barberToken := response["token"].(string)
	shopID := response["barbershop"].(map[string]interface{})["ID"].(string)

	w, _ = doJSON(t, r, http.MethodPost, "/api/queues/open", barberToken, gin.H{
		"closingTime": "19:00",
		"maxCapacity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Opening twice conflicts
	w, _ = doJSON(t, r, http.MethodPost, "/api/queues/open", barberToken, gin.H{
		"closingTime": "19:00",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Client signs up and joins
	token = registerUser(t, r, "client@test.dev", "+5511999000002")
	w, response = doJSON(t, r, http.MethodPost, "/api/profile/setup-client", token, gin.H{
		"name": "Rafa",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	clientToken := response["token"].(string)

	w, response = doJSON(t, r, http.MethodPost, "/api/shops/"+shopID+"/join-queue", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "joined", response["status"])
	assert.EqualValues(t, 1, response["position"])
	queueID := response["queueId"].(string)

	// Joining again conflicts
	w, _ = doJSON(t, r, http.MethodPost, "/api/shops/"+shopID+"/join-queue", clientToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The shop view shows the client at the front
	w, response = doJSON(t, r, http.MethodGet, "/api/shops/"+shopID+"/queue", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, response["queueSize"])
	assert.EqualValues(t, 1, response["myPosition"])

	// Barbers only: a client cannot call next
	w, _ = doJSON(t, r, http.MethodPost, "/api/queues/"+queueID+"/call-next", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The barber sees the waiting line
	w, response = doJSON(t, r, http.MethodGet, "/api/queues/my-queue", barberToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	entries := response["entries"].([]interface{})
	require.Len(t, entries, 1)

	// Client leaves, queue drains
	w, _ = doJSON(t, r, http.MethodPost, "/api/queues/"+queueID+"/leave", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, response = doJSON(t, r, http.MethodGet, "/api/shops/"+shopID+"/queue", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, response["queueSize"])
	assert.Nil(t, response["myPosition"])

	// Barber closes up
	w, _ = doJSON(t, r, http.MethodPost, "/api/queues/"+queueID+"/close", barberToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = doJSON(t, r, http.MethodPost, "/api/queues/"+queueID+"/close", barberToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDashboardOverHTTP(t *testing.T) {
	r := setupTestServer(t)

	token := registerUser(t, r, "barber3@test.dev", "+5511999000006")
	w, response := doJSON(t, r, http.MethodPost, "/api/profile/setup-barber", token, gin.H{
		"barbershopName": "Uptown Cuts",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	barberToken := response["token"].(string)

	w, response = doJSON(t, r, http.MethodPost, "/api/queues/open", barberToken, gin.H{})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	queueID := uuid.MustParse(response["queueId"].(string))

	// A cut the barber finished today: 30 minutes in the chair
	called := time.Now().Add(-time.Minute)
	done := called.Add(30 * time.Minute)
	require.NoError(t, config.DB.Create(&models.QueueEntry{
		QueueID:     queueID,
		GuestName:   "Walk-in",
		Position:    1,
		Status:      models.EntryStatusCompleted,
		CalledAt:    &called,
		CompletedAt: &done,
	}).Error)

	w, response = doJSON(t, r, http.MethodGet, "/api/dashboard", barberToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, response["servedToday"])
	assert.InDelta(t, 30, response["avgServiceMinutes"].(float64), 0.01)
	assert.Equal(t, true, response["queueOpen"])
	assert.Equal(t, queueID.String(), response["queueId"])
	assert.EqualValues(t, 0, response["waitingNow"])
	assert.EqualValues(t, 0, response["pendingRequests"])
}

func TestOverflowRequestOverHTTP(t *testing.T) {
	r := setupTestServer(t)

	token := registerUser(t, r, "barber2@test.dev", "+5511999000003")
	w, response := doJSON(t, r, http.MethodPost, "/api/profile/setup-barber", token, gin.H{
		"barbershopName": "Tiny Shop",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	barberToken := response["token"].(string)
	shopID := response["barbershop"].(map[string]interface{})["ID"].(string)

	w, _ = doJSON(t, r, http.MethodPost, "/api/queues/open", barberToken, gin.H{
		"maxCapacity": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// First client fills the queue
	token = registerUser(t, r, "c1@test.dev", "+5511999000004")
	w, response = doJSON(t, r, http.MethodPost, "/api/profile/setup-client", token, gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	firstToken := response["token"].(string)
	w, _ = doJSON(t, r, http.MethodPost, "/api/shops/"+shopID+"/join-queue", firstToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Second client overflows into a request
	token = registerUser(t, r, "c2@test.dev", "+5511999000005")
	w, response = doJSON(t, r, http.MethodPost, "/api/profile/setup-client", token, gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	secondToken := response["token"].(string)
	w, response = doJSON(t, r, http.MethodPost, "/api/shops/"+shopID+"/join-queue", secondToken, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "request_created", response["status"])

	// The barber approves from the my-queue view
	w, response = doJSON(t, r, http.MethodGet, "/api/queues/my-queue", barberToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	requests := response["requests"].([]interface{})
	require.Len(t, requests, 1)
	requestID := requests[0].(map[string]interface{})["ID"].(string)

	w, response = doJSON(t, r, http.MethodPost, "/api/queues/requests/"+requestID+"/approve", barberToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	entry := response["entry"].(map[string]interface{})
	assert.EqualValues(t, 2, entry["Position"])

	// Approving a resolved request conflicts
	w, _ = doJSON(t, r, http.MethodPost, "/api/queues/requests/"+requestID+"/approve", barberToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
