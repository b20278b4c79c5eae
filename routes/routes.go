package routes

import (
	"shop-service/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all application routes. Registration, login and the
// product catalog are public; everything touching a user's cart or orders
// sits behind the auth middleware.
func RegisterRoutes(
	r *gin.Engine,
	authMiddleware gin.HandlerFunc,
	auth *controllers.AuthController,
	categories *controllers.CategoryController,
	products *controllers.ProductController,
	carts *controllers.CartController,
	orders *controllers.OrderController,
) {
	r.POST("/register", auth.Register)
	r.POST("/login", auth.Login)
	r.GET("/products", products.ListProducts)
	r.GET("/products/:id", products.GetProduct)

	authed := r.Group("/")
	authed.Use(authMiddleware)
	{
		authed.POST("/logout", auth.Logout)

		authed.POST("/categories", categories.CreateCategory)
		authed.GET("/categories", categories.ListCategories)

		authed.POST("/products", products.CreateProduct)

		authed.POST("/cart/items", carts.AddToCart)
		authed.GET("/cart", carts.ViewCart)

		authed.POST("/orders", orders.CreateOrder)
		authed.GET("/orders", orders.GetOrders)
	}
}
