package models

import (
	"time"
)

type Address struct {
	FullName     string `json:"fullName" binding:"required,notblank"`
	AddressLine1 string `json:"addressLine1" binding:"required,notblank"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city" binding:"required,notblank"`
	State        string `json:"state" binding:"required,notblank"`
	PostalCode   string `json:"postalCode" binding:"required,notblank"`
	Country      string `json:"country" binding:"required,notblank"`
	Phone        string `json:"phone" binding:"required,notblank,min=7"`
}

type Order struct {
	ID                    int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                int64          `gorm:"not null;index" json:"userId"`
	Status                OrderStatus    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Total                 float64        `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMethod         PaymentMethod  `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	PaymentID             *string        `gorm:"type:varchar(255)" json:"paymentId"`
	DeliveryMethod        DeliveryMethod `gorm:"type:varchar(20);not null" json:"deliveryMethod"`
	DeliveryFee           float64        `gorm:"type:decimal(12,2);not null;default:0" json:"deliveryFee"`
	EstimatedDeliveryDate *time.Time     `json:"estimatedDeliveryDate"`
	TrackingNumber        *string        `gorm:"type:varchar(100)" json:"trackingNumber"`
	ShippingAddress       Address        `gorm:"type:text;serializer:json" json:"shippingAddress"`
	BillingAddress        Address        `gorm:"type:text;serializer:json" json:"billingAddress"`
	OrderDate             time.Time      `gorm:"not null;index" json:"orderDate"`
	Items                 []OrderItem    `gorm:"-" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem.Price is the unit price at order time; it never follows later product edits.
type OrderItem struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64   `gorm:"not null;index" json:"orderId"`
	ProductID int64   `gorm:"not null" json:"productId"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"type:decimal(12,2);not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type OrderItemLine struct {
	OrderItem
	Product *Product `json:"product"`
}

// OrderDetails is an order whose items carry the current product, or nil when
// the product has since been deleted.
type OrderDetails struct {
	Order
	Items []OrderItemLine `json:"items"`
}
