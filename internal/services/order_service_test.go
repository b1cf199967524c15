package services_test

import (
	"testing"

	"kasuwa/internal/models"
	"kasuwa/internal/repositories"
	"kasuwa/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, repo *repositories.MockOrderRepository, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID: "user-1",
		Total:  9700,
		Status: status,
	}
	require.NoError(t, repo.CreateWithPayment(order, nil, false))
	return order
}

func TestUpdateOrderStatus_AdvancesFulfillment(t *testing.T) {
	orderRepo := repositories.NewMockOrderRepository(nil, nil)
	service := services.NewOrderService(orderRepo, nil)
	order := seedOrder(t, orderRepo, models.OrderPending)

	require.NoError(t, service.UpdateOrderStatus(order.ID, models.OrderShipped))

	updated, err := orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)
}

func TestUpdateOrderStatus_RejectsUnknownStatus(t *testing.T) {
	orderRepo := repositories.NewMockOrderRepository(nil, nil)
	service := services.NewOrderService(orderRepo, nil)
	order := seedOrder(t, orderRepo, models.OrderPending)

	err := service.UpdateOrderStatus(order.ID, "teleported")
	assert.Error(t, err)

	unchanged, err := orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, unchanged.Status)
}

func TestUpdateOrderStatus_DeliveredIsImmutable(t *testing.T) {
	orderRepo := repositories.NewMockOrderRepository(nil, nil)
	service := services.NewOrderService(orderRepo, nil)
	order := seedOrder(t, orderRepo, models.OrderDelivered)

	err := service.UpdateOrderStatus(order.ID, models.OrderCancelled)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "delivered")

	unchanged, err := orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, unchanged.Status)
}
