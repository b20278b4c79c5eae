package repository

import (
	"context"
	"errors"

	"shop-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines the interface for cart data access
type CartRepository interface {
	// FindOpenByUser returns the user's open cart with its items, or
	// gorm.ErrRecordNotFound when the user has no open cart.
	FindOpenByUser(ctx context.Context, userID uint) (*models.Cart, error)
	// GetOrCreateOpen returns the user's open cart, creating it if absent.
	GetOrCreateOpen(ctx context.Context, userID uint) (*models.Cart, error)
	// UpsertItem inserts a line item or, when one already exists for
	// (cart, product), increments its quantity by the given amount. Returns
	// the resulting line item state.
	UpsertItem(ctx context.Context, cartID, productID uint, quantity int) (*models.CartItem, error)
}

type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) FindOpenByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND is_open = ?", userID, true).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormCartRepository) GetOrCreateOpen(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_open = ?", userID, true).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID, IsOpen: true}
	createErr := r.db.WithContext(ctx).Create(&cart).Error
	if createErr == nil {
		return &cart, nil
	}

	// A concurrent first-add won the insert race; the partial unique index on
	// (user_id) WHERE is_open rejected ours. Use the winner's cart.
	if errors.Is(createErr, gorm.ErrDuplicatedKey) {
		if err := r.db.WithContext(ctx).
			Where("user_id = ? AND is_open = ?", userID, true).
			First(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	return nil, createErr
}

func (r *GormCartRepository) UpsertItem(ctx context.Context, cartID, productID uint, quantity int) (*models.CartItem, error) {
	item := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			}),
		}).
		Create(&item).Error; err != nil {
		return nil, err
	}

	// Re-read the row: on the merge path the in-memory struct does not carry
	// the summed quantity.
	var merged models.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&merged).Error; err != nil {
		return nil, err
	}
	return &merged, nil
}
