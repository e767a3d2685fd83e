package models

import "time"

type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type CartLine struct {
	CartItem
	Product *Product `json:"product"`
}
