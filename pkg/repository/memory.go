package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/storefront/pkg/models"
)

type cartKey struct {
	userID    int64
	productID int64
}

type memoryData struct {
	categories map[int64]models.Category
	products   map[int64]models.Product
	inventory  map[int64]models.Inventory // keyed by product id
	carts      map[cartKey]models.CartItem
	orders     map[int64]models.Order
	orderItems map[int64][]models.OrderItem // keyed by order id
	users      map[int64]models.User

	nextCategoryID  int64
	nextProductID   int64
	nextInventoryID int64
	nextCartID      int64
	nextOrderID     int64
	nextOrderItemID int64
	nextUserID      int64
}

func newMemoryData() *memoryData {
	return &memoryData{
		categories: make(map[int64]models.Category),
		products:   make(map[int64]models.Product),
		inventory:  make(map[int64]models.Inventory),
		carts:      make(map[cartKey]models.CartItem),
		orders:     make(map[int64]models.Order),
		orderItems: make(map[int64][]models.OrderItem),
		users:      make(map[int64]models.User),
	}
}

// clone copies every table. Records are stored by value and replaced, never edited
// in place, so sharing their pointer fields is safe.
func (d *memoryData) clone() *memoryData {
	c := *d
	c.categories = cloneMap(d.categories)
	c.products = cloneMap(d.products)
	c.inventory = cloneMap(d.inventory)
	c.carts = cloneMap(d.carts)
	c.orders = cloneMap(d.orders)
	c.users = cloneMap(d.users)
	c.orderItems = make(map[int64][]models.OrderItem, len(d.orderItems))
	for k, v := range d.orderItems {
		c.orderItems[k] = append([]models.OrderItem(nil), v...)
	}
	return &c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memoryDB struct {
	mu   sync.Mutex
	data *memoryData
}

// MemoryStore keeps everything in process memory behind one mutex.
// Transact holds the mutex for the whole callback and restores a snapshot on error.
type MemoryStore struct {
	db   *memoryDB
	inTx bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{db: &memoryDB{data: newMemoryData()}}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.db.mu.Lock()
	return s.db.mu.Unlock
}

func (s *MemoryStore) Categories() CategoryRepository { return memoryCategories{s} }
func (s *MemoryStore) Products() ProductRepository    { return memoryProducts{s} }
func (s *MemoryStore) Inventory() InventoryRepository { return memoryInventory{s} }
func (s *MemoryStore) Carts() CartRepository          { return memoryCarts{s} }
func (s *MemoryStore) Orders() OrderRepository        { return memoryOrders{s} }
func (s *MemoryStore) Users() UserRepository          { return memoryUsers{s} }

func (s *MemoryStore) Transact(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	snapshot := s.db.data.clone()
	defer func() {
		if r := recover(); r != nil {
			s.db.data = snapshot
			panic(r)
		}
		if err != nil {
			s.db.data = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&MemoryStore{db: s.db, inTx: true})
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

type memoryCategories struct{ s *MemoryStore }

func (r memoryCategories) List(ctx context.Context) ([]models.Category, error) {
	defer r.s.lock()()
	out := make([]models.Category, 0, len(r.s.db.data.categories))
	for _, c := range r.s.db.data.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryCategories) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	defer r.s.lock()()
	c, ok := r.s.db.data.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r memoryCategories) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	defer r.s.lock()()
	for _, c := range r.s.db.data.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryCategories) Create(ctx context.Context, category *models.Category) error {
	defer r.s.lock()()
	d := r.s.db.data
	for _, c := range d.categories {
		if c.Slug == category.Slug {
			return ErrDuplicate
		}
	}
	d.nextCategoryID++
	category.ID = d.nextCategoryID
	d.categories[category.ID] = *category
	return nil
}

type memoryProducts struct{ s *MemoryStore }

func (r memoryProducts) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	defer r.s.lock()()
	out := make([]models.Product, 0)
	for _, p := range r.s.db.data.products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryProducts) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	defer r.s.lock()()
	p, ok := r.s.db.data.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memoryProducts) Create(ctx context.Context, product *models.Product) error {
	defer r.s.lock()()
	d := r.s.db.data
	d.nextProductID++
	now := time.Now()
	product.ID = d.nextProductID
	product.CreatedAt = now
	product.UpdatedAt = now
	d.products[product.ID] = *product
	return nil
}

func (r memoryProducts) Update(ctx context.Context, product *models.Product) error {
	defer r.s.lock()()
	d := r.s.db.data
	existing, ok := d.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	product.Stock = existing.Stock
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	d.products[product.ID] = *product
	return nil
}

func (r memoryProducts) Delete(ctx context.Context, id int64) error {
	defer r.s.lock()()
	if _, ok := r.s.db.data.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.db.data.products, id)
	return nil
}

type memoryInventory struct{ s *MemoryStore }

func (r memoryInventory) Get(ctx context.Context, productID int64) (*models.Inventory, error) {
	defer r.s.lock()()
	inv, ok := r.s.db.data.inventory[productID]
	if !ok {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (r memoryInventory) Set(ctx context.Context, productID int64, quantity int) (*models.Inventory, error) {
	defer r.s.lock()()
	d := r.s.db.data
	if _, ok := d.products[productID]; !ok {
		return nil, ErrNotFound
	}
	inv, ok := d.inventory[productID]
	if !ok {
		d.nextInventoryID++
		inv = models.Inventory{ID: d.nextInventoryID, ProductID: productID}
	}
	inv.Quantity = quantity
	inv.LastUpdated = time.Now()
	r.store(inv)
	return &inv, nil
}

func (r memoryInventory) Decrement(ctx context.Context, productID int64, n int) (*models.Inventory, error) {
	defer r.s.lock()()
	inv, ok := r.s.db.data.inventory[productID]
	if !ok || inv.Quantity < n {
		return nil, ErrInsufficientStock
	}
	inv.Quantity -= n
	inv.LastUpdated = time.Now()
	r.store(inv)
	return &inv, nil
}

// store writes inv and mirrors its quantity onto the product. Caller holds the lock.
func (r memoryInventory) store(inv models.Inventory) {
	d := r.s.db.data
	d.inventory[inv.ProductID] = inv
	if p, ok := d.products[inv.ProductID]; ok {
		p.Stock = inv.Quantity
		d.products[inv.ProductID] = p
	}
}

func (r memoryInventory) Delete(ctx context.Context, productID int64) error {
	defer r.s.lock()()
	delete(r.s.db.data.inventory, productID)
	return nil
}

type memoryCarts struct{ s *MemoryStore }

func (r memoryCarts) List(ctx context.Context, userID int64) ([]models.CartItem, error) {
	defer r.s.lock()()
	out := make([]models.CartItem, 0)
	for k, item := range r.s.db.data.carts {
		if k.userID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryCarts) Get(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	defer r.s.lock()()
	item, ok := r.s.db.data.carts[cartKey{userID, productID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r memoryCarts) Upsert(ctx context.Context, item *models.CartItem) error {
	defer r.s.lock()()
	d := r.s.db.data
	key := cartKey{item.UserID, item.ProductID}
	if existing, ok := d.carts[key]; ok {
		existing.Quantity = item.Quantity
		d.carts[key] = existing
		*item = existing
		return nil
	}
	d.nextCartID++
	item.ID = d.nextCartID
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	d.carts[key] = *item
	return nil
}

func (r memoryCarts) Delete(ctx context.Context, userID, productID int64) error {
	defer r.s.lock()()
	key := cartKey{userID, productID}
	if _, ok := r.s.db.data.carts[key]; !ok {
		return ErrNotFound
	}
	delete(r.s.db.data.carts, key)
	return nil
}

func (r memoryCarts) Clear(ctx context.Context, userID int64) error {
	defer r.s.lock()()
	for k := range r.s.db.data.carts {
		if k.userID == userID {
			delete(r.s.db.data.carts, k)
		}
	}
	return nil
}

type memoryOrders struct{ s *MemoryStore }

func (r memoryOrders) Create(ctx context.Context, order *models.Order) error {
	defer r.s.lock()()
	d := r.s.db.data
	d.nextOrderID++
	order.ID = d.nextOrderID
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	stored := *order
	stored.Items = nil
	d.orders[order.ID] = stored
	return nil
}

func (r memoryOrders) CreateItems(ctx context.Context, items []models.OrderItem) error {
	defer r.s.lock()()
	d := r.s.db.data
	for i := range items {
		if _, ok := d.orders[items[i].OrderID]; !ok {
			return ErrNotFound
		}
		d.nextOrderItemID++
		items[i].ID = d.nextOrderItemID
		d.orderItems[items[i].OrderID] = append(d.orderItems[items[i].OrderID], items[i])
	}
	return nil
}

func (r memoryOrders) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.db.data.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Items = append([]models.OrderItem{}, r.s.db.data.orderItems[id]...)
	return &o, nil
}

func (r memoryOrders) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	defer r.s.lock()()
	out := make([]models.Order, 0)
	for _, o := range r.s.db.data.orders {
		if o.UserID == userID {
			o.Items = append([]models.OrderItem{}, r.s.db.data.orderItems[o.ID]...)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out, nil
}

func (r memoryOrders) UpdateStatus(ctx context.Context, id int64, update StatusUpdate) (*models.Order, error) {
	defer r.s.lock()()
	d := r.s.db.data
	o, ok := d.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = update.Status
	if update.TrackingNumber != nil {
		o.TrackingNumber = update.TrackingNumber
	}
	if update.EstimatedDeliveryDate != nil {
		o.EstimatedDeliveryDate = update.EstimatedDeliveryDate
	}
	d.orders[id] = o
	o.Items = append([]models.OrderItem{}, d.orderItems[id]...)
	return &o, nil
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	defer r.s.lock()()
	u, ok := r.s.db.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memoryUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.db.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) Create(ctx context.Context, user *models.User) error {
	defer r.s.lock()()
	d := r.s.db.data
	for _, u := range d.users {
		if u.Username == user.Username {
			return ErrDuplicate
		}
	}
	d.nextUserID++
	user.ID = d.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	d.users[user.ID] = *user
	return nil
}
