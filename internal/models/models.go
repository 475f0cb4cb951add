// Package models contains the domain entities shared across the bot,
// the storage layer and the statistics API.
package models

import "time"

// Order statuses.
const (
	OrderStatusNew       = "new"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether s is one of the declared order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusNew, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Bouquet is a catalog item offered by the shop.
type Bouquet struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Occasion    string `json:"occasion"`
	// Image is a file name relative to the media directory; empty means
	// the bouquet has no photo.
	Image string `json:"image,omitempty"`
}

// Customer is a shop customer keyed by their Telegram account.
// Name, phone and address are filled in incrementally during the order dialog.
type Customer struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	CreatedAt  time.Time `json:"created_at"`
}

// Order is a placed bouquet order.
type Order struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customer_id"`
	BouquetID    int64     `json:"bouquet_id"`
	Address      string    `json:"address"`
	DeliveryTime time.Time `json:"delivery_time"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// UsageRecord is a denormalized statistics row written alongside every order.
type UsageRecord struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	BouquetID  int64     `json:"bouquet_id"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

// Consultation is a callback request left by a user for the administrator.
type Consultation struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderInfo is an order joined with its customer and bouquet, as exposed
// by the sales statistics endpoint.
type OrderInfo struct {
	ID           int64     `json:"id"`
	Customer     string    `json:"customer"`
	Phone        string    `json:"phone"`
	Bouquet      string    `json:"bouquet"`
	Price        int       `json:"price"`
	Address      string    `json:"address"`
	DeliveryTime time.Time `json:"delivery_time"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
