package services

import (
	"fmt"

	"kasuwa/internal/events"
	"kasuwa/internal/models"
	"kasuwa/internal/repositories"
)

// OrderService handles order reads and back-office fulfillment updates.
// Order creation lives in CheckoutService, because an order only exists once
// its payment is recorded.
type OrderService struct {
	orderRepo repositories.OrderRepository
	changes   events.Publisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, changes events.Publisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		changes:   changes,
	}
}

// GetAllOrders retrieves all orders, for the back office.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrdersByUser retrieves a user's orders.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUser(userID)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// UpdateOrderStatus advances the fulfillment status of an order. A delivered
// order is immutable.
func (s *OrderService) UpdateOrderStatus(id string, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("invalid order status: %s", status)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}
	if order.Status == models.OrderDelivered {
		return fmt.Errorf("order %s has been delivered and can no longer change", id)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}

	if s.changes != nil {
		s.changes.Publish(events.Change{
			EntityType: events.EntityOrders,
			UserID:     order.UserID,
			EntityID:   id,
			Action:     "updated",
		})
	}
	return nil
}
