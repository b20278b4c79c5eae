package services

import (
	"context"
	"errors"

	"shop-service/models"
	"shop-service/repository"

	"gorm.io/gorm"
)

// CartItemDetail is one line of the cart projection, priced from the current
// catalog. This is a live quote, not an order snapshot.
type CartItemDetail struct {
	ItemID       uint    `json:"item_id"`
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
	ItemTotal    float64 `json:"item_total"`
}

type CartResponse struct {
	ID         uint             `json:"id"`
	Items      []CartItemDetail `json:"items"`
	TotalPrice float64          `json:"total_price"`
}

// CartService owns the single open cart per user.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// AddItem puts quantity units of a product into the user's open cart,
// creating the cart on first add and merging with an existing line item for
// the same product.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreateOpen(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.cartRepo.UpsertItem(ctx, cart.ID, productID, quantity)
}

// ViewCart returns the cart priced from the current catalog. A user with no
// open cart gets an empty cart with id 0, not an error.
func (s *CartService) ViewCart(ctx context.Context, userID uint) (*CartResponse, error) {
	cart, err := s.cartRepo.FindOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartResponse{ID: 0, Items: []CartItemDetail{}, TotalPrice: 0}, nil
		}
		return nil, err
	}

	ids := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	resp := &CartResponse{ID: cart.ID, Items: make([]CartItemDetail, 0, len(cart.Items))}
	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		itemTotal := product.Price * float64(item.Quantity)
		resp.Items = append(resp.Items, CartItemDetail{
			ItemID:       item.ID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			Quantity:     item.Quantity,
			PricePerUnit: product.Price,
			ItemTotal:    itemTotal,
		})
		resp.TotalPrice += itemTotal
	}
	return resp, nil
}
