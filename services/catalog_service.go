package services

import (
	"context"
	"errors"

	"shop-service/models"
	"shop-service/repository"

	"gorm.io/gorm"
)

// CatalogService covers category and product management. Stock set here is
// initial inventory; only checkout decrements it afterwards.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) *CatalogService {
	return &CatalogService{categoryRepo: categoryRepo, productRepo: productRepo}
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, skip, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	return s.productRepo.FindAll(ctx, skip, limit)
}
