package repository

import (
	"context"
	"fmt"

	"shop-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckoutTx is the unit-of-work handle the checkout engine drives. Every
// method runs inside the same database transaction; if the callback passed to
// RunInTransaction returns an error, nothing it did is visible to anyone.
type CheckoutTx interface {
	// OpenCartForUpdate returns the user's open cart with items, locking the
	// cart row. gorm.ErrRecordNotFound when the user has no open cart.
	OpenCartForUpdate(userID uint) (*models.Cart, error)
	// ProductsForUpdate reads the given products under row-level locks, in
	// ascending id order so concurrent checkouts acquire locks in the same
	// order.
	ProductsForUpdate(ids []uint) ([]models.Product, error)
	DecrementStock(productID uint, quantity int) error
	CreateOrder(order *models.Order) error
	CloseCart(cartID uint) error
}

// CheckoutStore runs checkout work in a single atomic transaction.
type CheckoutStore interface {
	RunInTransaction(ctx context.Context, fn func(tx CheckoutTx) error) error
}

type GormCheckoutStore struct {
	db *gorm.DB
}

func NewGormCheckoutStore(db *gorm.DB) CheckoutStore {
	return &GormCheckoutStore{db: db}
}

func (s *GormCheckoutStore) RunInTransaction(ctx context.Context, fn func(tx CheckoutTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCheckoutTx{tx: tx})
	})
}

type gormCheckoutTx struct {
	tx *gorm.DB
}

func (t *gormCheckoutTx) OpenCartForUpdate(userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND is_open = ?", userID, true).
		First(&cart).Error; err != nil {
		return nil, err
	}
	if err := t.tx.Where("cart_id = ?", cart.ID).Order("id").Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (t *gormCheckoutTx) ProductsForUpdate(ids []uint) ([]models.Product, error) {
	var products []models.Product
	if err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (t *gormCheckoutTx) DecrementStock(productID uint, quantity int) error {
	res := t.tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	// The row is locked and was validated before this call, so a zero update
	// means the stock guard itself is broken; abort the transaction.
	if res.RowsAffected == 0 {
		return fmt.Errorf("stock underflow for product %d", productID)
	}
	return nil
}

func (t *gormCheckoutTx) CreateOrder(order *models.Order) error {
	return t.tx.Create(order).Error
}

func (t *gormCheckoutTx) CloseCart(cartID uint) error {
	return t.tx.Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("is_open", false).Error
}
