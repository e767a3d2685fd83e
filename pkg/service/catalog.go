package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/events"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"go.uber.org/zap"
)

const categoriesCacheKey = "categories:all"

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

type CategoryInput struct {
	Name string  `json:"name" binding:"required,max=100"`
	Slug string  `json:"slug" binding:"required,max=100"`
	Icon *string `json:"icon"`
}

type ProductInput struct {
	Name          string              `json:"name" binding:"required,max=255"`
	Description   string              `json:"description" binding:"required"`
	Price         *float64            `json:"price" binding:"required,gte=0"`
	OriginalPrice *float64            `json:"originalPrice" binding:"omitempty,gte=0"`
	ImageURL      string              `json:"imageUrl" binding:"required"`
	Condition     models.Condition    `json:"condition" binding:"required"`
	CategoryID    int64               `json:"categoryId" binding:"required,gt=0"`
	Marketplace   *models.Marketplace `json:"marketplace"`
	MarketplaceID *string             `json:"marketplaceId"`
	Rating        *float64            `json:"rating" binding:"omitempty,gte=0,lte=5"`
	ReviewCount   *int                `json:"reviewCount" binding:"omitempty,gte=0"`
	Brand         string              `json:"brand" binding:"required,max=100"`
	Stock         *int                `json:"stock" binding:"omitempty,gte=0"`
}

// ProductPatch carries the fields of a partial product update; nil means unchanged.
type ProductPatch struct {
	Name          *string             `json:"name" binding:"omitempty,min=1,max=255"`
	Description   *string             `json:"description"`
	Price         *float64            `json:"price" binding:"omitempty,gte=0"`
	OriginalPrice *float64            `json:"originalPrice" binding:"omitempty,gte=0"`
	ImageURL      *string             `json:"imageUrl"`
	Condition     *models.Condition   `json:"condition"`
	CategoryID    *int64              `json:"categoryId" binding:"omitempty,gt=0"`
	Marketplace   *models.Marketplace `json:"marketplace"`
	MarketplaceID *string             `json:"marketplaceId"`
	Rating        *float64            `json:"rating" binding:"omitempty,gte=0,lte=5"`
	ReviewCount   *int                `json:"reviewCount" binding:"omitempty,gte=0"`
	Brand         *string             `json:"brand" binding:"omitempty,max=100"`
	Stock         *int                `json:"stock" binding:"omitempty,gte=0"`
}

// Catalog serves categories, products and stock levels. Reads of categories and
// single products go through the cache; every write invalidates what it touched.
type Catalog struct {
	store    repository.Store
	cache    repository.Cache
	notifier Notifier
	logger   *zap.Logger
}

func NewCatalog(store repository.Store, cache repository.Cache, notifier Notifier, logger *zap.Logger) *Catalog {
	return &Catalog{store: store, cache: cache, notifier: notifier, logger: logger.Named("catalog")}
}

func (c *Catalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.cache.GetJSON(ctx, categoriesCacheKey, &categories); err == nil {
		return categories, nil
	}

	categories, err := c.store.Categories().List(ctx)
	if err != nil {
		return nil, internal("Failed to fetch categories", err)
	}
	c.cacheSet(ctx, categoriesCacheKey, categories)
	return categories, nil
}

// GetCategory looks a category up by numeric id, or by slug otherwise.
func (c *Catalog) GetCategory(ctx context.Context, idOrSlug string) (*models.Category, error) {
	var (
		category *models.Category
		err      error
	)
	if id, convErr := strconv.ParseInt(idOrSlug, 10, 64); convErr == nil && isDigits(idOrSlug) {
		category, err = c.store.Categories().FindByID(ctx, id)
	} else {
		category, err = c.store.Categories().FindBySlug(ctx, idOrSlug)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFoundError("Category not found")
	}
	if err != nil {
		return nil, internal("Failed to fetch category", err)
	}
	return category, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (c *Catalog) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	category := &models.Category{Name: in.Name, Slug: in.Slug, Icon: in.Icon}
	err := c.store.Categories().Create(ctx, category)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.ValidationError("Category slug %q already exists", in.Slug)
	}
	if err != nil {
		return nil, internal("Failed to create category", err)
	}

	c.invalidate(ctx, categoriesCacheKey)
	return category, nil
}

func (c *Catalog) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	products, err := c.store.Products().List(ctx, filter)
	if err != nil {
		return nil, internal("Failed to fetch products", err)
	}
	return products, nil
}

// GetProduct returns the product with its inventory row. InventoryDetails is nil
// when the product has none. Only the product row is cached; stock always comes
// from the inventory table so a cache refill racing a stock change cannot serve
// an old quantity.
func (c *Catalog) GetProduct(ctx context.Context, id int64) (*models.ProductDetails, error) {
	key := productCacheKey(id)

	var product models.Product
	if err := c.cache.GetJSON(ctx, key, &product); err != nil {
		found, err := c.store.Products().FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFoundError("Product not found")
		}
		if err != nil {
			return nil, internal("Failed to fetch product", err)
		}
		product = *found
		c.cacheSet(ctx, key, product)
	}

	details := &models.ProductDetails{Product: product}
	inv, err := c.store.Inventory().Get(ctx, id)
	switch {
	case err == nil:
		details.InventoryDetails = inv
		details.Stock = inv.Quantity
	case !errors.Is(err, repository.ErrNotFound):
		return nil, internal("Failed to fetch inventory", err)
	}
	return details, nil
}

func (c *Catalog) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkEnums(&in.Condition, in.Marketplace); err != nil {
		return nil, err
	}

	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}

	product := &models.Product{
		Name:          in.Name,
		Description:   in.Description,
		Price:         *in.Price,
		OriginalPrice: in.OriginalPrice,
		ImageURL:      in.ImageURL,
		Condition:     in.Condition,
		CategoryID:    in.CategoryID,
		Marketplace:   in.Marketplace,
		MarketplaceID: in.MarketplaceID,
		Brand:         in.Brand,
	}
	if in.Rating != nil {
		product.Rating = *in.Rating
	}
	if in.ReviewCount != nil {
		product.ReviewCount = *in.ReviewCount
	}

	err := c.store.Transact(ctx, func(tx repository.Store) error {
		if err := requireCategory(ctx, tx, product.CategoryID); err != nil {
			return err
		}
		if err := tx.Products().Create(ctx, product); err != nil {
			return err
		}
		if _, err := tx.Inventory().Set(ctx, product.ID, stock); err != nil {
			return err
		}
		created, err := tx.Products().FindByID(ctx, product.ID)
		if err != nil {
			return err
		}
		product = created
		return nil
	})
	if err != nil {
		return nil, internal("Failed to create product", err)
	}

	c.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.Int("stock", stock))
	c.notifyStock(product.ID, stock, "product.create")
	return product, nil
}

func (c *Catalog) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*models.Product, error) {
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	if err := checkEnums(patch.Condition, patch.Marketplace); err != nil {
		return nil, err
	}

	var product *models.Product
	err := c.store.Transact(ctx, func(tx repository.Store) error {
		existing, err := tx.Products().FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFoundError("Product not found")
		}
		if err != nil {
			return err
		}

		if patch.CategoryID != nil && *patch.CategoryID != existing.CategoryID {
			if err := requireCategory(ctx, tx, *patch.CategoryID); err != nil {
				return err
			}
		}
		patch.apply(existing)

		if err := tx.Products().Update(ctx, existing); err != nil {
			return err
		}
		if patch.Stock != nil {
			if _, err := tx.Inventory().Set(ctx, id, *patch.Stock); err != nil {
				return err
			}
		}

		product, err = tx.Products().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, internal("Failed to update product", err)
	}

	c.invalidate(ctx, productCacheKey(id))
	if patch.Stock != nil {
		c.notifyStock(id, *patch.Stock, "product.update")
	}
	return product, nil
}

func (p ProductPatch) apply(product *models.Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.OriginalPrice != nil {
		product.OriginalPrice = p.OriginalPrice
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
	if p.Condition != nil {
		product.Condition = *p.Condition
	}
	if p.CategoryID != nil {
		product.CategoryID = *p.CategoryID
	}
	if p.Marketplace != nil {
		product.Marketplace = p.Marketplace
	}
	if p.MarketplaceID != nil {
		product.MarketplaceID = p.MarketplaceID
	}
	if p.Rating != nil {
		product.Rating = *p.Rating
	}
	if p.ReviewCount != nil {
		product.ReviewCount = *p.ReviewCount
	}
	if p.Brand != nil {
		product.Brand = *p.Brand
	}
}

// DeleteProduct removes the product and its inventory row. Cart lines pointing at
// it are left alone; checkout reports them as missing products.
func (c *Catalog) DeleteProduct(ctx context.Context, id int64) error {
	err := c.store.Transact(ctx, func(tx repository.Store) error {
		err := tx.Products().Delete(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFoundError("Product not found")
		}
		if err != nil {
			return err
		}
		return tx.Inventory().Delete(ctx, id)
	})
	if err != nil {
		return internal("Failed to delete product", err)
	}

	c.invalidate(ctx, productCacheKey(id))
	return nil
}

func (c *Catalog) GetInventory(ctx context.Context, productID int64) (*models.Inventory, error) {
	inv, err := c.store.Inventory().Get(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFoundError("Inventory not found")
	}
	if err != nil {
		return nil, internal("Failed to fetch inventory", err)
	}
	return inv, nil
}

// SetStock overwrites the on-hand quantity of a product; Product.Stock follows.
func (c *Catalog) SetStock(ctx context.Context, productID int64, quantity int) (*models.Inventory, error) {
	if quantity < 0 {
		return nil, apperr.ValidationError("Validation error").WithDetails("quantity must be at least 0")
	}

	inv, err := c.store.Inventory().Set(ctx, productID, quantity)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFoundError("Product not found")
	}
	if err != nil {
		return nil, internal("Failed to update inventory", err)
	}

	c.invalidate(ctx, productCacheKey(productID))
	c.notifyStock(productID, quantity, "admin")
	return inv, nil
}

func (c *Catalog) notifyStock(productID int64, quantity int, source string) {
	c.notifier.Notify(events.New(events.StockChanged, productID, 0, map[string]interface{}{
		"quantity": quantity,
		"source":   source,
	}))
}

func (c *Catalog) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := c.cache.SetJSON(ctx, key, value); err != nil {
		c.logger.Warn("Failed to write cache", zap.String("key", key), zap.Error(err))
	}
}

func (c *Catalog) invalidate(ctx context.Context, keys ...string) {
	if err := c.cache.Del(ctx, keys...); err != nil {
		c.logger.Warn("Failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

func requireCategory(ctx context.Context, tx repository.Store, id int64) error {
	_, err := tx.Categories().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ValidationError("Validation error").WithDetails(fmt.Sprintf("category %d does not exist", id))
	}
	return err
}

func checkEnums(condition *models.Condition, marketplace *models.Marketplace) error {
	if condition != nil && !condition.Valid() {
		return ValidationFailed(&models.EnumError{Field: "condition", Value: string(*condition)})
	}
	if marketplace != nil && !marketplace.Valid() {
		return ValidationFailed(&models.EnumError{Field: "marketplace", Value: string(*marketplace)})
	}
	return nil
}
