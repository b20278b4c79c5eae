package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"shop-service/middleware"
	"shop-service/models"
	"shop-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID uint) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID uint) ([]models.Order, error)
}

type OrderController struct {
	service OrderService
}

func NewOrderController(service OrderService) *OrderController {
	return &OrderController{service: service}
}

// CreateOrder handles POST /orders: it checks out the caller's open cart.
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := ctrl.service.CreateOrder(c.Request.Context(), userID)
	if err != nil {
		var stockErr *services.InsufficientStockError
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		case errors.As(err, &stockErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      fmt.Sprintf("Not enough stock for product %d", stockErr.ProductID),
				"product_id": stockErr.ProductID,
			})
		case errors.Is(err, services.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		default:
			zap.L().Error("checkout failed", zap.Uint("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrders handles GET /orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, err := ctrl.service.GetUserOrders(c.Request.Context(), userID)
	if err != nil {
		zap.L().Error("fetch orders failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
