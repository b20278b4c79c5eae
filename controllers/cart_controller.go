package controllers

import (
	"context"
	"errors"
	"net/http"

	"shop-service/middleware"
	"shop-service/models"
	"shop-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartService interface {
	AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error)
	ViewCart(ctx context.Context, userID uint) (*services.CartResponse, error)
}

type CartController struct {
	service CartService
}

func NewCartController(service CartService) *CartController {
	return &CartController{service: service}
}

type addItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// AddToCart handles POST /cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := ctrl.service.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		default:
			zap.L().Error("add to cart failed", zap.Uint("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item to cart"})
		}
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ViewCart handles GET /cart
func (ctrl *CartController) ViewCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, err := ctrl.service.ViewCart(c.Request.Context(), userID)
	if err != nil {
		zap.L().Error("view cart failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cart"})
		return
	}

	c.JSON(http.StatusOK, cart)
}
