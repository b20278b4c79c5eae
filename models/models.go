package models

import (
	"time"

	"gorm.io/gorm"
)

// User model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"not null" json:"name"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"index;not null" json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null;check:price >= 0" json:"price"`
	Stock       int     `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CategoryID  uint    `gorm:"index" json:"category_id"`
}

// Cart is the single open cart for a user. The partial unique index lets a
// user keep any number of closed carts while only one can ever be open, and
// makes the lazy first-add race lose cleanly at the database instead of
// producing two open carts.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_carts_open_user,where:is_open" json:"user_id"`
	IsOpen    bool       `gorm:"not null;default:true" json:"is_open"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem is unique per (cart, product); repeated adds merge by summing
// quantity rather than inserting duplicate rows.
type CartItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CartID    uint `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity > 0" json:"quantity"`
}

// Order is immutable once created. TotalAmount and the item prices are a
// snapshot taken at checkout; later catalog price changes do not touch them.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	TotalAmount float64     `gorm:"not null" json:"total_amount"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
}

// Migrate runs auto migration for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Category{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
	)
}
