package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusOnTheWay  OrderStatus = "on_the_way"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

const (
	EarningPending   = "pending"
	EarningCompleted = "completed"
)

type Restaurant struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	Description string     `json:"description,omitempty"`
	Menu        []MenuItem `gorm:"foreignKey:RestaurantID" json:"menu,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type MenuItem struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	RestaurantID string  `gorm:"index" json:"restaurantId"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
}

type Order struct {
	ID               string      `gorm:"primaryKey" json:"id"`
	UserID           int64       `gorm:"index" json:"userId"`
	RestaurantID     string      `gorm:"index" json:"restaurantId"`
	Restaurant       *Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	DeliveryPersonID *int64      `gorm:"index" json:"deliveryPersonId,omitempty"`
	Status           OrderStatus `json:"status"`
	DeliveryLocation string      `json:"deliveryLocation"`
	Total            float64     `json:"total"`
	Items            []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	OrderID    string    `gorm:"index" json:"orderId"`
	MenuItemID string    `json:"menuItemId"`
	MenuItem   *MenuItem `gorm:"foreignKey:MenuItemID" json:"menuItem,omitempty"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
}

type Earning struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	DeliveryPersonID int64     `gorm:"index" json:"deliveryPersonId"`
	OrderID          string    `gorm:"uniqueIndex" json:"orderId"`
	Order            *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Amount           float64   `json:"amount"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"date"`
}

func (r *Restaurant) BeforeCreate(*gorm.DB) error {
	r.ID = newID(r.ID)
	return nil
}

func (m *MenuItem) BeforeCreate(*gorm.DB) error {
	m.ID = newID(m.ID)
	return nil
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	o.ID = newID(o.ID)
	return nil
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	i.ID = newID(i.ID)
	return nil
}

func (e *Earning) BeforeCreate(*gorm.DB) error {
	e.ID = newID(e.ID)
	return nil
}

func newID(id string) string {
	if id != "" {
		return id
	}

	return uuid.NewString()
}
