package repository

import (
	"context"

	"shop-service/models"

	"gorm.io/gorm"
)

// OrderRepository defines the interface for reading completed orders.
// Order creation does not go through here; it happens inside the checkout
// transaction (see CheckoutStore).
type OrderRepository interface {
	FindByUserID(ctx context.Context, userID uint) ([]models.Order, error)
	FindByIDAndUserID(ctx context.Context, orderID, userID uint) (*models.Order, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) FindByIDAndUserID(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
