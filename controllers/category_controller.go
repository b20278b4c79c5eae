package controllers

import (
	"net/http"

	"shop-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CategoryController struct {
	service *services.CatalogService
}

func NewCategoryController(service *services.CatalogService) *CategoryController {
	return &CategoryController{service: service}
}

type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := ctrl.service.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		zap.L().Error("create category failed", zap.String("name", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	categories, err := ctrl.service.ListCategories(c.Request.Context())
	if err != nil {
		zap.L().Error("list categories failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, categories)
}
