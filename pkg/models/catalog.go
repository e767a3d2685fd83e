package models

import "time"

type Category struct {
	ID   int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string  `gorm:"type:varchar(100);not null" json:"name"`
	Slug string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Icon *string `gorm:"type:varchar(100)" json:"icon"`
}

func (Category) TableName() string {
	return "categories"
}

// Product.Stock mirrors Inventory.Quantity and is only written together with it.
type Product struct {
	ID            int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string       `gorm:"type:varchar(255);not null" json:"name"`
	Description   string       `gorm:"type:text" json:"description"`
	Price         float64      `gorm:"type:decimal(12,2);not null" json:"price"`
	OriginalPrice *float64     `gorm:"type:decimal(12,2)" json:"originalPrice"`
	Condition     Condition    `gorm:"column:item_condition;type:varchar(20);not null;index" json:"condition"`
	CategoryID    int64        `gorm:"not null;index" json:"categoryId"`
	ImageURL      string       `gorm:"type:varchar(500)" json:"imageUrl"`
	Marketplace   *Marketplace `gorm:"type:varchar(20)" json:"marketplace"`
	MarketplaceID *string      `gorm:"type:varchar(100)" json:"marketplaceId"`
	Rating        float64      `gorm:"type:decimal(2,1);default:0" json:"rating"`
	ReviewCount   int          `gorm:"default:0" json:"reviewCount"`
	Brand         string       `gorm:"type:varchar(100);index" json:"brand"`
	Stock         int          `gorm:"not null;default:0" json:"stock"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

type Inventory struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64     `gorm:"uniqueIndex;not null" json:"productId"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (Inventory) TableName() string {
	return "inventory"
}

// ProductDetails is a product with its inventory row, as served by GET /api/products/:id.
type ProductDetails struct {
	Product
	InventoryDetails *Inventory `json:"inventoryDetails"`
}
