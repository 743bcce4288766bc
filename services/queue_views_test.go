package services

import (
	"testing"

	"filo-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateWaitMinutes(t *testing.T) {
	// Chair idle: only the people ahead count
	assert.Equal(t, 0, EstimateWaitMinutes(1, false, 30))
	assert.Equal(t, 60, EstimateWaitMinutes(3, false, 30))

	// Cut in progress: the current cut counts too
	assert.Equal(t, 30, EstimateWaitMinutes(1, true, 30))
	assert.Equal(t, 90, EstimateWaitMinutes(3, true, 30))
}

func TestMyQueueViewWithoutOpenQueue(t *testing.T) {
	db := setupTestDB(t)
	views := NewQueueViewService(db)
	barber := createUser(t, db, models.RoleBarber)

	view, err := views.MyQueueView(barber.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Queue)
	assert.Empty(t, view.Entries)
	assert.Nil(t, view.CurrentEntry)
	assert.Empty(t, view.Requests)
}

func TestMyQueueViewLedgerState(t *testing.T) {
	db := setupTestDB(t)
	svc := NewQueueService(db)
	views := NewQueueViewService(db)
	barber := createUser(t, db, models.RoleBarber)
	shop := createShop(t, db)
	queue := openQueue(t, svc, barber, shop, 2)

	c1 := createUser(t, db, models.RoleClient)
	c2 := createUser(t, db, models.RoleClient)
	for _, client := range []*models.User{c1, c2} {
		_, err := svc.Join(queue.ID, client.ID)
		require.NoError(t, err)
	}

	// Overflow request from a third client
	overflow := createUser(t, db, models.RoleClient)
	result, err := svc.Join(queue.ID, overflow.ID)
	require.NoError(t, err)
	require.Equal(t, JoinStatusRequestCreated, result.Status)

	// First client moves to the chair
	_, err = svc.CallNext(queue.ID, barber.ID)
	require.NoError(t, err)

	view, err := views.MyQueueView(barber.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Queue)
	assert.Equal(t, queue.ID, view.Queue.ID)

	require.Len(t, view.Entries, 1)
	assert.Equal(t, c2.ID, *view.Entries[0].ClientID)
	assert.Equal(t, 1, view.Entries[0].Position)
	require.NotNil(t, view.Entries[0].Client)
	assert.Equal(t, c2.Name, view.Entries[0].Client.Name)

	require.NotNil(t, view.CurrentEntry)
	assert.Equal(t, c1.ID, *view.CurrentEntry.ClientID)

	require.Len(t, view.Requests, 1)
	assert.Equal(t, overflow.ID, view.Requests[0].ClientID)
}

func TestShopQueueViewShopNotFound(t *testing.T) {
	db := setupTestDB(t)
	views := NewQueueViewService(db)
	missing := createUser(t, db, models.RoleClient)

	_, err := views.ShopQueueView(missing.ID, nil)
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestShopQueueViewNoOpenQueue(t *testing.T) {
	db := setupTestDB(t)
	views := NewQueueViewService(db)
	shop := createShop(t, db)

	view, err := views.ShopQueueView(shop.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, shop.ID, view.Barbershop.ID)
	assert.Nil(t, view.Queue)
	assert.Zero(t, view.QueueSize)
	assert.Zero(t, view.ActiveBarbers)
}

// Two barbers open at the same shop: the earliest-opened queue is returned
// as the representative, the waiting count spans both queues.
func TestShopQueueViewAggregatesAcrossBarbers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewQueueService(db)
	views := NewQueueViewService(db)
	shop := createShop(t, db)

	first := createUser(t, db, models.RoleBarber)
	second := createUser(t, db, models.RoleBarber)
	firstQueue := openQueue(t, svc, first, shop, 5)
	secondQueue := openQueue(t, svc, second, shop, 5)

	for i := 0; i < 2; i++ {
		_, err := svc.Join(firstQueue.ID, createUser(t, db, models.RoleClient).ID)
		require.NoError(t, err)
	}
	_, err := svc.Join(secondQueue.ID, createUser(t, db, models.RoleClient).ID)
	require.NoError(t, err)

	view, err := views.ShopQueueView(shop.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, view.Queue)
	assert.Equal(t, firstQueue.ID, view.Queue.ID)
	assert.Equal(t, 2, view.ActiveBarbers)
	assert.EqualValues(t, 3, view.QueueSize)
}

func TestShopQueueViewMyPositionAndEstimate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewQueueService(db)
	views := NewQueueViewService(db)
	shop := createShop(t, db) // 30 minute cuts
	barber := createUser(t, db, models.RoleBarber)
	queue := openQueue(t, svc, barber, shop, 5)

	ahead := createUser(t, db, models.RoleClient)
	me := createUser(t, db, models.RoleClient)
	_, err := svc.Join(queue.ID, ahead.ID)
	require.NoError(t, err)
	_, err = svc.Join(queue.ID, me.ID)
	require.NoError(t, err)

	// Chair idle: position 2 waits for one cut
	view, err := views.ShopQueueView(shop.ID, &me.ID)
	require.NoError(t, err)
	require.NotNil(t, view.MyPosition)
	assert.Equal(t, 2, *view.MyPosition)
	require.NotNil(t, view.MyEstimatedWait)
	assert.Equal(t, 30, *view.MyEstimatedWait)

	// Chair busy: position 1 still waits for the cut in progress
	_, err = svc.CallNext(queue.ID, barber.ID)
	require.NoError(t, err)

	view, err = views.ShopQueueView(shop.ID, &me.ID)
	require.NoError(t, err)
	require.NotNil(t, view.MyPosition)
	assert.Equal(t, 1, *view.MyPosition)
	require.NotNil(t, view.MyEstimatedWait)
	assert.Equal(t, 30, *view.MyEstimatedWait)
}

func TestShopQueueViewMyPendingRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := NewQueueService(db)
	views := NewQueueViewService(db)
	shop := createShop(t, db)
	barber := createUser(t, db, models.RoleBarber)
	queue := openQueue(t, svc, barber, shop, 1)

	_, err := svc.Join(queue.ID, createUser(t, db, models.RoleClient).ID)
	require.NoError(t, err)

	me := createUser(t, db, models.RoleClient)
	result, err := svc.Join(queue.ID, me.ID)
	require.NoError(t, err)
	require.Equal(t, JoinStatusRequestCreated, result.Status)

	view, err := views.ShopQueueView(shop.ID, &me.ID)
	require.NoError(t, err)
	assert.Nil(t, view.MyPosition)
	require.NotNil(t, view.MyRequest)
	assert.Equal(t, result.Request.ID, view.MyRequest.ID)
}

func TestShopQueueViewFavoriteFlag(t *testing.T) {
	db := setupTestDB(t)
	views := NewQueueViewService(db)
	shop := createShop(t, db)
	me := createUser(t, db, models.RoleClient)

	require.NoError(t, db.Create(&models.Favorite{
		ClientID:     me.ID,
		BarbershopID: shop.ID,
	}).Error)

	view, err := views.ShopQueueView(shop.ID, &me.ID)
	require.NoError(t, err)
	assert.True(t, view.IsFavorite)
}
