package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/events"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *recordingNotifier) Notify(e events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []events.Type {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]events.Type, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

// mapCache is a Cache backed by a map, to observe invalidation.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return repository.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *mapCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *mapCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *mapCache) Ping(ctx context.Context) error { return nil }
func (c *mapCache) Close() error                   { return nil }

type fixture struct {
	store    repository.Store
	cache    *mapCache
	notifier *recordingNotifier
	audit    *repository.MemoryAudit
	catalog  *Catalog
	carts    *Carts
	orders   *Orders
	users    *Users
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, repository.NewMemoryStore())
}

func openSQLiteStore(t *testing.T) repository.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repository.Migrate(db))
	return repository.NewGormStore(db)
}

// eachStore runs fn against a fixture on every store backend.
func eachStore(t *testing.T, fn func(t *testing.T, f *fixture)) {
	backends := map[string]func(t *testing.T) repository.Store{
		"memory": func(t *testing.T) repository.Store { return repository.NewMemoryStore() },
		"sqlite": openSQLiteStore,
	}
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, newFixtureWith(t, open(t)))
		})
	}
}

func newFixtureWith(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	require.NoError(t, repository.Seed(context.Background(), store))

	f := &fixture{
		store:    store,
		cache:    newMapCache(),
		notifier: &recordingNotifier{},
		audit:    repository.NewMemoryAudit(),
	}
	logger := zap.NewNop()
	f.catalog = NewCatalog(store, f.cache, f.notifier, logger)
	f.carts = NewCarts(store, logger)
	f.orders = NewOrders(store, f.cache, f.audit, f.notifier, logger)
	f.users = NewUsers(store, auth.NewPasswordHasher(bcrypt.MinCost), logger)
	return f
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) product(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), ProductInput{
		Name:        name,
		Description: name + " description",
		Price:       ptr(price),
		ImageURL:    "https://img.example/" + name,
		Condition:   models.ConditionNew,
		CategoryID:  1,
		Brand:       "Acme",
		Stock:       ptr(stock),
	})
	require.NoError(t, err)
	return p
}

var testAddress = models.Address{
	FullName:     "Ada Lovelace",
	AddressLine1: "12 Analytical St",
	City:         "London",
	State:        "LDN",
	PostalCode:   "N1 9GU",
	Country:      "UK",
	Phone:        "+44 20 7946 0000",
}

func orderInput(fee float64) PlaceOrderInput {
	return PlaceOrderInput{
		PaymentMethod:   models.PaymentCreditCard,
		DeliveryMethod:  models.DeliveryStandard,
		DeliveryFee:     ptr(fee),
		ShippingAddress: testAddress,
		BillingAddress:  testAddress,
	}
}

func (f *fixture) stock(t *testing.T, productID int64) (inventory int, mirror int) {
	t.Helper()
	ctx := context.Background()
	inv, err := f.store.Inventory().Get(ctx, productID)
	require.NoError(t, err)
	p, err := f.store.Products().FindByID(ctx, productID)
	require.NoError(t, err)
	return inv.Quantity, p.Stock
}

func TestPlaceOrder_Scenario(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		a := f.product(t, "Product A", 10.00, 5)
		b := f.product(t, "Product B", 20.00, 1)

		_, err := f.carts.Add(ctx, 1, CartInput{ProductID: a.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = f.carts.Add(ctx, 1, CartInput{ProductID: b.ID, Quantity: 1})
		require.NoError(t, err)

		order, err := f.orders.PlaceOrder(ctx, 1, orderInput(5.00))
		require.NoError(t, err)

		assert.Equal(t, 45.00, order.Total)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Nil(t, order.TrackingNumber)
		assert.Nil(t, order.EstimatedDeliveryDate)
		require.Len(t, order.Items, 2)

		sum := 0.0
		for _, item := range order.Items {
			sum += item.Price * float64(item.Quantity)
		}
		assert.Equal(t, order.Total, sum+order.DeliveryFee)

		inv, mirror := f.stock(t, a.ID)
		assert.Equal(t, 3, inv)
		assert.Equal(t, 3, mirror)
		inv, mirror = f.stock(t, b.ID)
		assert.Equal(t, 0, inv)
		assert.Equal(t, 0, mirror)

		lines, err := f.carts.List(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, lines)

		assert.Contains(t, f.notifier.types(), events.OrderPlaced)
	})
}

func TestPlaceOrder_InsufficientStockChangesNothing(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		c := f.product(t, "Product C", 15.00, 2)

		_, err := f.carts.Add(ctx, 1, CartInput{ProductID: c.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = f.catalog.SetStock(ctx, c.ID, 1)
		require.NoError(t, err)

		_, err = f.orders.PlaceOrder(ctx, 1, orderInput(0))
		require.Error(t, err)
		assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "Product C")

		inv, mirror := f.stock(t, c.ID)
		assert.Equal(t, 1, inv)
		assert.Equal(t, 1, mirror)

		lines, err := f.carts.List(ctx, 1)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Quantity)

		orders, err := f.orders.ListForUser(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {

		_, err := f.orders.PlaceOrder(context.Background(), 1, orderInput(5))
		assert.Equal(t, apperr.EmptyCart, apperr.KindOf(err))

		orders, err := f.orders.ListForUser(context.Background(), 1)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestPlaceOrder_DeletedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Ghost", 5, 5)
	_, err := f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.catalog.DeleteProduct(ctx, p.ID))

	_, err = f.orders.PlaceOrder(ctx, 1, orderInput(0))
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	badPhone := orderInput(5)
	badPhone.ShippingAddress.Phone = "123"

	noFee := orderInput(5)
	noFee.DeliveryFee = nil

	negativeFee := orderInput(-1)

	blankName := orderInput(5)
	blankName.ShippingAddress.FullName = "   "

	blankCity := orderInput(5)
	blankCity.BillingAddress.City = "\t "

	badMethod := orderInput(5)
	badMethod.PaymentMethod = "cash"

	for name, in := range map[string]PlaceOrderInput{
		"short phone":  badPhone,
		"missing fee":  noFee,
		"negative fee": negativeFee,
		"bad payment":  badMethod,
		"blank name":   blankName,
		"blank city":   blankCity,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.orders.PlaceOrder(ctx, 1, in)
			assert.Equal(t, apperr.Validation, apperr.KindOf(err))
		})
	}
}

func TestPlaceOrder_PriceSnapshot(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		p := f.product(t, "Snapshot", 10, 5)

		_, err := f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 1})
		require.NoError(t, err)
		order, err := f.orders.PlaceOrder(ctx, 1, orderInput(0))
		require.NoError(t, err)

		_, err = f.catalog.UpdateProduct(ctx, p.ID, ProductPatch{Price: ptr(99.0)})
		require.NoError(t, err)

		got, err := f.orders.Get(ctx, &models.User{ID: 1}, order.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 10.0, got.Items[0].Price)
		assert.Equal(t, 10.0, got.Total)
	})
}

func TestPlaceOrder_ConcurrentLastUnit(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		p := f.product(t, "Last", 10, 1)

		const buyers = 10
		for u := int64(1); u <= buyers; u++ {
			_, err := f.carts.Add(ctx, u, CartInput{ProductID: p.ID, Quantity: 1})
			require.NoError(t, err)
		}

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			rejected  int
		)
		for u := int64(1); u <= buyers; u++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				_, err := f.orders.PlaceOrder(ctx, userID, orderInput(0))
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					succeeded++
				} else if apperr.KindOf(err) == apperr.InsufficientStock {
					rejected++
				}
			}(u)
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, buyers-1, rejected)
		inv, mirror := f.stock(t, p.ID)
		assert.Equal(t, 0, inv)
		assert.Equal(t, 0, mirror)
	})
}

func TestOrders_GetOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Owned", 10, 5)
	_, err := f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, 1, orderInput(0))
	require.NoError(t, err)

	_, err = f.orders.Get(ctx, &models.User{ID: 2}, order.ID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	got, err := f.orders.Get(ctx, &models.User{ID: 2, IsAdmin: true}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.orders.Get(ctx, &models.User{ID: 1}, 999)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestOrders_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Ship me", 10, 5)
	_, err := f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, 1, orderInput(0))
	require.NoError(t, err)

	updated, err := f.orders.UpdateStatus(ctx, order.ID, StatusInput{Status: models.OrderStatusShipped, TrackingNumber: ptr("1Z42")})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	assert.Equal(t, "1Z42", *updated.TrackingNumber)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 2, updated.Items[0].Quantity)

	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusInput{Status: "lost"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = f.orders.UpdateStatus(ctx, 999, StatusInput{Status: models.OrderStatusCancelled})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	assert.Contains(t, f.notifier.types(), events.OrderStatusChanged)
}

func TestOrders_History(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.audit.CreateAuditLog(ctx, &repository.AuditLog{Action: "order.placed", EntityType: "order", EntityID: 1}))

	p := f.product(t, "Audited", 10, 5)
	_, err := f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, 1, orderInput(0))
	require.NoError(t, err)
	require.Equal(t, int64(1), order.ID)

	logs, err := f.orders.History(ctx, &models.User{ID: 1}, order.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = f.orders.History(ctx, &models.User{ID: 2}, order.ID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestCarts_Add(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cartable", 3, 5)

	item, err := f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	item, err = f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	_, err = f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 1})
	assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))

	_, err = f.carts.Add(ctx, 1, CartInput{ProductID: 999, Quantity: 1})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 0})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	lines, err := f.carts.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.NotNil(t, lines[0].Product)
	assert.Equal(t, "Cartable", lines[0].Product.Name)

	// carts never touch stock
	inv, mirror := f.stock(t, p.ID)
	assert.Equal(t, 5, inv)
	assert.Equal(t, 5, mirror)
}

func TestCarts_UpdateRemoveClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Editable", 3, 4)

	_, err := f.carts.Update(ctx, 1, p.ID, QuantityInput{Quantity: 2})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	item, err := f.carts.Update(ctx, 1, p.ID, QuantityInput{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)

	_, err = f.carts.Update(ctx, 1, p.ID, QuantityInput{Quantity: 5})
	assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))

	require.NoError(t, f.carts.Remove(ctx, 1, p.ID))
	assert.Equal(t, apperr.NotFound, apperr.KindOf(f.carts.Remove(ctx, 1, p.ID)))

	require.NoError(t, f.carts.Clear(ctx, 1))
	require.NoError(t, f.carts.Clear(ctx, 1))
}

func TestCatalog_StockMirror(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		p := f.product(t, "Mirror", 1, 3)
		assert.Equal(t, 3, p.Stock)

		inv, err := f.catalog.SetStock(ctx, p.ID, 8)
		require.NoError(t, err)
		assert.Equal(t, 8, inv.Quantity)
		i, m := f.stock(t, p.ID)
		assert.Equal(t, 8, i)
		assert.Equal(t, 8, m)

		updated, err := f.catalog.UpdateProduct(ctx, p.ID, ProductPatch{Stock: ptr(2), Name: ptr("Mirror 2")})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Stock)
		assert.Equal(t, "Mirror 2", updated.Name)
		i, m = f.stock(t, p.ID)
		assert.Equal(t, 2, i)
		assert.Equal(t, 2, m)

		_, err = f.catalog.SetStock(ctx, p.ID, -1)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
		_, err = f.catalog.SetStock(ctx, 999, 1)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})
}

func TestCatalog_CreateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	valid := ProductInput{
		Name: "X", Description: "d", Price: ptr(0.0), ImageURL: "u",
		Condition: models.ConditionUsed, CategoryID: 1, Brand: "b",
	}

	p, err := f.catalog.CreateProduct(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	details, err := f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, details.InventoryDetails)
	assert.Equal(t, 0, details.InventoryDetails.Quantity)

	tests := []struct {
		name   string
		mutate func(in *ProductInput)
	}{
		{"missing price", func(in *ProductInput) { in.Price = nil }},
		{"negative price", func(in *ProductInput) { in.Price = ptr(-1.0) }},
		{"bad condition", func(in *ProductInput) { in.Condition = "mint" }},
		{"bad marketplace", func(in *ProductInput) { in.Marketplace = ptr(models.Marketplace("etsy")) }},
		{"rating above five", func(in *ProductInput) { in.Rating = ptr(5.5) }},
		{"negative stock", func(in *ProductInput) { in.Stock = ptr(-2) }},
		{"unknown category", func(in *ProductInput) { in.CategoryID = 99 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.catalog.CreateProduct(ctx, in)
			assert.Equal(t, apperr.Validation, apperr.KindOf(err))
		})
	}
}

func TestCatalog_Categories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 6)
	assert.True(t, f.cache.has(categoriesCacheKey))

	bySlug, err := f.catalog.GetCategory(ctx, "gaming")
	require.NoError(t, err)
	byID, err := f.catalog.GetCategory(ctx, "6")
	require.NoError(t, err)
	assert.Equal(t, bySlug.ID, byID.ID)

	_, err = f.catalog.GetCategory(ctx, "nope")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	created, err := f.catalog.CreateCategory(ctx, CategoryInput{Name: "Cameras", Slug: "cameras"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, f.cache.has(categoriesCacheKey))

	_, err = f.catalog.CreateCategory(ctx, CategoryInput{Name: "Cameras", Slug: "cameras"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestCatalog_ProductCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cached", 10, 5)

	_, err := f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, f.cache.has(productCacheKey(p.ID)))

	_, err = f.catalog.SetStock(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.False(t, f.cache.has(productCacheKey(p.ID)))

	details, err := f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, details.Stock)

	_, err = f.carts.Add(ctx, 1, CartInput{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder(ctx, 1, orderInput(0))
	require.NoError(t, err)
	assert.False(t, f.cache.has(productCacheKey(p.ID)))
}

func TestCatalog_GetProductReadsLiveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Racy", 10, 5)

	// a reader that loaded the product before a stock change can repopulate
	// the cache after the write invalidated it
	stale := *p
	stale.Stock = 99
	require.NoError(t, f.cache.SetJSON(ctx, productCacheKey(p.ID), stale))

	details, err := f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, details.Stock)
	require.NotNil(t, details.InventoryDetails)
	assert.Equal(t, 5, details.InventoryDetails.Quantity)

	_, err = f.catalog.SetStock(ctx, p.ID, 2)
	require.NoError(t, err)
	require.NoError(t, f.cache.SetJSON(ctx, productCacheKey(p.ID), stale))

	details, err = f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, details.Stock)
	assert.Equal(t, 2, details.InventoryDetails.Quantity)
}

func TestCatalog_DeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Doomed", 1, 1)

	require.NoError(t, f.catalog.DeleteProduct(ctx, p.ID))
	_, err := f.catalog.GetProduct(ctx, p.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	_, err = f.catalog.GetInventory(ctx, p.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.NotFound, apperr.KindOf(f.catalog.DeleteProduct(ctx, p.ID)))
}

func TestUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, "secret1", u.Password)

	_, err = f.users.Register(ctx, Credentials{Username: "alice", Password: "secret2"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	_, err = f.users.Register(ctx, Credentials{Username: "al", Password: "secret1"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	_, err = f.users.Register(ctx, Credentials{Username: "bob", Password: "short"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	got, err := f.users.Authenticate(ctx, Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.users.Authenticate(ctx, Credentials{Username: "alice", Password: "wrong!!"})
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
	_, err = f.users.Authenticate(ctx, Credentials{Username: "nobody", Password: "secret1"})
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
}

func TestUsers_EnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.EnsureAdmin(ctx, "", ""))
	require.NoError(t, f.users.EnsureAdmin(ctx, "admin", "admin123"))
	require.NoError(t, f.users.EnsureAdmin(ctx, "admin", "admin123"))

	admin, err := f.users.Authenticate(ctx, Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
}

func TestOrders_Details(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep := f.product(t, "Keep", 4, 5)
	gone := f.product(t, "Gone", 6, 5)
	_, err := f.carts.Add(ctx, 1, CartInput{ProductID: keep.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, 1, CartInput{ProductID: gone.ID, Quantity: 2})
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, 1, orderInput(2))
	require.NoError(t, err)
	assert.Equal(t, 18.0, order.Total)

	require.NoError(t, f.catalog.DeleteProduct(ctx, gone.ID))

	details, err := f.orders.Details(ctx, &models.User{ID: 1}, order.ID)
	require.NoError(t, err)
	require.Len(t, details.Items, 2)
	for _, line := range details.Items {
		if line.ProductID == keep.ID {
			require.NotNil(t, line.Product)
			assert.Equal(t, "Keep", line.Product.Name)
		} else {
			assert.Nil(t, line.Product)
			assert.Equal(t, 6.0, line.Price)
		}
	}
}
