package services

import (
	"context"
	"errors"
	"sort"

	"shop-service/models"
	"shop-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderEventPublisher publishes order lifecycle events. Publishing is
// best-effort; a failed publish never fails the checkout.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
}

// OrderService converts open carts into immutable orders.
type OrderService struct {
	store     repository.CheckoutStore
	orderRepo repository.OrderRepository
	events    OrderEventPublisher
}

func NewOrderService(store repository.CheckoutStore, orderRepo repository.OrderRepository, events OrderEventPublisher) *OrderService {
	return &OrderService{store: store, orderRepo: orderRepo, events: events}
}

// CreateOrder checks out the user's open cart: validates stock for every line
// item, decrements inventory, snapshots prices into an order, and closes the
// cart — all in one transaction. On any validation failure nothing changes
// and the call can be retried.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint) (*models.Order, error) {
	var order *models.Order

	err := s.store.RunInTransaction(ctx, func(tx repository.CheckoutTx) error {
		cart, err := tx.OpenCartForUpdate(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		ids := make([]uint, 0, len(cart.Items))
		for _, item := range cart.Items {
			ids = append(ids, item.ProductID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		products, err := tx.ProductsForUpdate(ids)
		if err != nil {
			return err
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		// Validate every line before touching anything: either all stock
		// checks pass or no decrement happens.
		for _, item := range cart.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				return ErrProductNotFound
			}
			if product.Stock < item.Quantity {
				return &InsufficientStockError{ProductID: product.ID}
			}
		}

		var total float64
		orderItems := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			product := byID[item.ProductID]
			if err := tx.DecrementStock(product.ID, item.Quantity); err != nil {
				return err
			}
			orderItems = append(orderItems, models.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
			total += product.Price * float64(item.Quantity)
		}

		order = &models.Order{
			OrderNumber: uuid.NewString(),
			UserID:      userID,
			TotalAmount: total,
			Items:       orderItems,
		}
		if err := tx.CreateOrder(order); err != nil {
			return err
		}
		return tx.CloseCart(cart.ID)
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			zap.L().Warn("order event publish failed",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
		}
	}

	return order, nil
}

// GetUserOrders returns the caller's orders with their frozen line items,
// newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orderRepo.FindByUserID(ctx, userID)
}
