package repository

import (
	"context"

	"shop-service/models"

	"gorm.io/gorm"
)

// ProductRepository defines the interface for catalog data access. Stock is
// never written through this interface; decrements happen only inside the
// checkout transaction.
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
	FindAll(ctx context.Context, skip, limit int) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, skip, limit int) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}
