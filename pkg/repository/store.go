package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/pkg/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}

type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes every column except stock, which only moves through InventoryRepository.
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
}

// InventoryRepository owns stock. Every write also sets products.stock to the new quantity.
type InventoryRepository interface {
	Get(ctx context.Context, productID int64) (*models.Inventory, error)
	Set(ctx context.Context, productID int64, quantity int) (*models.Inventory, error)
	// Decrement subtracts n only if at least n units are on hand, else ErrInsufficientStock.
	Decrement(ctx context.Context, productID int64, n int) (*models.Inventory, error)
	Delete(ctx context.Context, productID int64) error
}

type CartRepository interface {
	List(ctx context.Context, userID int64) ([]models.CartItem, error)
	Get(ctx context.Context, userID, productID int64) (*models.CartItem, error)
	// Upsert stores item.Quantity as the line quantity for (UserID, ProductID).
	Upsert(ctx context.Context, item *models.CartItem) error
	Delete(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, update StatusUpdate) (*models.Order, error)
}

type StatusUpdate struct {
	Status                models.OrderStatus
	TrackingNumber        *string
	EstimatedDeliveryDate *time.Time
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Store groups the repositories over one backend.
type Store interface {
	Categories() CategoryRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	Carts() CartRepository
	Orders() OrderRepository
	Users() UserRepository

	// Transact runs fn against a store whose writes commit together or not at all.
	Transact(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
}
