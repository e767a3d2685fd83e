package service

import (
	"context"
	"errors"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"go.uber.org/zap"
)

type CartInput struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type QuantityInput struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

type Carts struct {
	store  repository.Store
	logger *zap.Logger
}

func NewCarts(store repository.Store, logger *zap.Logger) *Carts {
	return &Carts{store: store, logger: logger.Named("cart")}
}

// List returns the user's cart lines with their products. A line whose product
// has been deleted is returned with a nil product.
func (s *Carts) List(ctx context.Context, userID int64) ([]models.CartLine, error) {
	items, err := s.store.Carts().List(ctx, userID)
	if err != nil {
		return nil, internal("Failed to fetch cart items", err)
	}

	lines := make([]models.CartLine, 0, len(items))
	for _, item := range items {
		line := models.CartLine{CartItem: item}
		product, err := s.store.Products().FindByID(ctx, item.ProductID)
		switch {
		case err == nil:
			line.Product = product
		case !errors.Is(err, repository.ErrNotFound):
			return nil, internal("Failed to fetch cart items", err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Add puts quantity units of a product in the cart, on top of any already there.
// The resulting line quantity must be in stock.
func (s *Carts) Add(ctx context.Context, userID int64, in CartInput) (*models.CartItem, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var item *models.CartItem
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		quantity := in.Quantity
		existing, err := tx.Carts().Get(ctx, userID, in.ProductID)
		switch {
		case err == nil:
			quantity += existing.Quantity
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		if err := checkStock(ctx, tx, in.ProductID, quantity); err != nil {
			return err
		}

		item = &models.CartItem{UserID: userID, ProductID: in.ProductID, Quantity: quantity}
		return tx.Carts().Upsert(ctx, item)
	})
	if err != nil {
		return nil, internal("Failed to add item to cart", err)
	}
	return item, nil
}

// Update sets the quantity of an existing cart line.
func (s *Carts) Update(ctx context.Context, userID, productID int64, in QuantityInput) (*models.CartItem, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var item *models.CartItem
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		_, err := tx.Carts().Get(ctx, userID, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFoundError("Item not found in cart")
		}
		if err != nil {
			return err
		}

		if err := checkStock(ctx, tx, productID, in.Quantity); err != nil {
			return err
		}

		item = &models.CartItem{UserID: userID, ProductID: productID, Quantity: in.Quantity}
		return tx.Carts().Upsert(ctx, item)
	})
	if err != nil {
		return nil, internal("Failed to update cart item", err)
	}
	return item, nil
}

func (s *Carts) Remove(ctx context.Context, userID, productID int64) error {
	err := s.store.Carts().Delete(ctx, userID, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFoundError("Item not found in cart")
	}
	if err != nil {
		return internal("Failed to remove cart item", err)
	}
	return nil
}

// Clear empties the cart. Clearing an empty cart succeeds.
func (s *Carts) Clear(ctx context.Context, userID int64) error {
	if err := s.store.Carts().Clear(ctx, userID); err != nil {
		return internal("Failed to clear cart", err)
	}
	return nil
}

func checkStock(ctx context.Context, tx repository.Store, productID int64, quantity int) error {
	product, err := tx.Products().FindByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFoundError("Product not found")
	}
	if err != nil {
		return err
	}

	available := 0
	inv, err := tx.Inventory().Get(ctx, productID)
	switch {
	case err == nil:
		available = inv.Quantity
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	if available < quantity {
		return apperr.InsufficientStockError(product.Name, available, quantity)
	}
	return nil
}
