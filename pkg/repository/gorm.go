package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// OpenGorm connects to the relational backend selected by cfg.Database.Driver and migrates it.
func OpenGorm(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.MySQL.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.SQLitePath)
	default:
		return nil, fmt.Errorf("driver %q is not a gorm backend", cfg.Database.Driver)
	}

	logLevel := logger.Silent
	if cfg.Database.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "mysql" {
		sqlDB.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	} else {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Inventory{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// GormStore is the relational Store. Transact maps onto a database transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Categories() CategoryRepository { return gormCategories{s.db} }
func (s *GormStore) Products() ProductRepository    { return gormProducts{s.db} }
func (s *GormStore) Inventory() InventoryRepository { return gormInventory{s.db} }
func (s *GormStore) Carts() CartRepository          { return gormCarts{s.db} }
func (s *GormStore) Orders() OrderRepository        { return gormOrders{s.db} }
func (s *GormStore) Users() UserRepository          { return gormUsers{s.db} }

func (s *GormStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

type gormCategories struct{ db *gorm.DB }

func (r gormCategories) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r gormCategories) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r gormCategories) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r gormCategories) Create(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

type gormProducts struct{ db *gorm.DB }

// likeEscaper escapes LIKE wildcards with '!' so search terms match literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// brandClause matches brands exactly. MySQL compares with the column's
// case-insensitive collation unless forced to binary.
func brandClause(dialect string) string {
	if dialect == "mysql" {
		return "CAST(brand AS BINARY) IN ?"
	}
	return "brand IN ?"
}

func (r gormProducts) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if len(filter.Conditions) > 0 {
		q = q.Where("item_condition IN ?", toStrings(filter.Conditions))
	}
	if len(filter.Marketplaces) > 0 {
		q = q.Where("marketplace IN ?", toStrings(filter.Marketplaces))
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if len(filter.Brands) > 0 {
		q = q.Where(brandClause(r.db.Dialector.Name()), filter.Brands)
	}
	if filter.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR LOWER(brand) LIKE ? ESCAPE '!')",
			like, like, like)
	}

	products := make([]models.Product, 0)
	if err := q.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r gormProducts) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r gormProducts) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

var productColumns = []string{
	"name", "description", "price", "original_price", "item_condition", "category_id",
	"image_url", "marketplace", "marketplace_id", "rating", "review_count", "brand", "updated_at",
}

func (r gormProducts) Update(ctx context.Context, product *models.Product) error {
	existing, err := r.FindByID(ctx, product.ID)
	if err != nil {
		return err
	}
	product.Stock = existing.Stock
	product.CreatedAt = existing.CreatedAt

	product.UpdatedAt = time.Now()
	err = r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select(productColumns).
		Updates(product).Error
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r gormProducts) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormInventory struct{ db *gorm.DB }

func (r gormInventory) Get(ctx context.Context, productID int64) (*models.Inventory, error) {
	var inv models.Inventory
	if err := r.db.WithContext(ctx).First(&inv, "product_id = ?", productID).Error; err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (r gormInventory) Set(ctx context.Context, productID int64, quantity int) (*models.Inventory, error) {
	var inv models.Inventory
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		inv = models.Inventory{ProductID: productID, Quantity: quantity, LastUpdated: time.Now()}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "last_updated"}),
		}).Create(&inv).Error; err != nil {
			return err
		}
		return mirrorStock(tx, productID, quantity)
	})
	if err != nil {
		return nil, translate(err)
	}
	return r.Get(ctx, productID)
}

func (r gormInventory) Decrement(ctx context.Context, productID int64, n int) (*models.Inventory, error) {
	var inv models.Inventory
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Inventory{}).
			Where("product_id = ? AND quantity >= ?", productID, n).
			Updates(map[string]interface{}{
				"quantity":     gorm.Expr("quantity - ?", n),
				"last_updated": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		if err := tx.First(&inv, "product_id = ?", productID).Error; err != nil {
			return err
		}
		return mirrorStock(tx, productID, inv.Quantity)
	})
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func mirrorStock(tx *gorm.DB, productID int64, quantity int) error {
	return tx.Model(&models.Product{}).Where("id = ?", productID).
		UpdateColumn("stock", quantity).Error
}

func (r gormInventory) Delete(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).Delete(&models.Inventory{}, "product_id = ?", productID).Error
}

type gormCarts struct{ db *gorm.DB }

func (r gormCarts) List(ctx context.Context, userID int64) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return items, nil
}

func (r gormCarts) Get(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, "user_id = ? AND product_id = ?", userID, productID).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r gormCarts) Upsert(ctx context.Context, item *models.CartItem) error {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	stored, err := r.Get(ctx, item.UserID, item.ProductID)
	if err != nil {
		return err
	}
	*item = *stored
	return nil
}

func (r gormCarts) Delete(ctx context.Context, userID, productID int64) error {
	result := r.db.WithContext(ctx).Delete(&models.CartItem{}, "user_id = ? AND product_id = ?", userID, productID)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormCarts) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "user_id = ?", userID).Error
}

type gormOrders struct{ db *gorm.DB }

func (r gormOrders) Create(ctx context.Context, order *models.Order) error {
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r gormOrders) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

func (r gormOrders) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Order("id").Find(&o.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	return &o, nil
}

func (r gormOrders) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("order_date DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	var items []models.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id IN ?", ids).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	byOrder := make(map[int64][]models.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return orders, nil
}

func (r gormOrders) UpdateStatus(ctx context.Context, id int64, update StatusUpdate) (*models.Order, error) {
	values := map[string]interface{}{"status": update.Status}
	if update.TrackingNumber != nil {
		values["tracking_number"] = *update.TrackingNumber
	}
	if update.EstimatedDeliveryDate != nil {
		values["estimated_delivery_date"] = *update.EstimatedDeliveryDate
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(values).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return r.FindByID(ctx, id)
}

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r gormUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r gormUsers) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}
