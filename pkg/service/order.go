package service

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/events"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const orderHistoryLimit = 50

type PlaceOrderInput struct {
	PaymentMethod   models.PaymentMethod  `json:"paymentMethod" binding:"required"`
	PaymentID       *string               `json:"paymentId" binding:"omitempty,max=255"`
	DeliveryMethod  models.DeliveryMethod `json:"deliveryMethod" binding:"required"`
	DeliveryFee     *float64              `json:"deliveryFee" binding:"required,gte=0"`
	ShippingAddress models.Address        `json:"shippingAddress"`
	BillingAddress  models.Address        `json:"billingAddress"`
}

type StatusInput struct {
	Status                models.OrderStatus `json:"status" binding:"required"`
	TrackingNumber        *string            `json:"trackingNumber" binding:"omitempty,max=100"`
	EstimatedDeliveryDate *time.Time         `json:"estimatedDeliveryDate"`
}

type Orders struct {
	store    repository.Store
	cache    repository.Cache
	audit    repository.AuditLogger
	notifier Notifier
	logger   *zap.Logger
}

func NewOrders(store repository.Store, cache repository.Cache, audit repository.AuditLogger, notifier Notifier, logger *zap.Logger) *Orders {
	return &Orders{store: store, cache: cache, audit: audit, notifier: notifier, logger: logger.Named("orders")}
}

type orderLine struct {
	item    models.CartItem
	product *models.Product
}

// PlaceOrder turns the user's cart into an order. Validation, order creation,
// stock decrement and cart clearing commit together; any failure leaves the
// store untouched. Stock is taken with a conditional decrement, so of two
// checkouts racing for the last unit exactly one succeeds.
func (s *Orders) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (*models.Order, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !in.PaymentMethod.Valid() {
		return nil, ValidationFailed(&models.EnumError{Field: "paymentMethod", Value: string(in.PaymentMethod)})
	}
	if !in.DeliveryMethod.Valid() {
		return nil, ValidationFailed(&models.EnumError{Field: "deliveryMethod", Value: string(in.DeliveryMethod)})
	}

	var (
		order     *models.Order
		remaining = make(map[int64]int)
	)
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		items, err := tx.Carts().List(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperr.EmptyCartError()
		}

		lines := make([]orderLine, 0, len(items))
		subtotal := decimal.Zero
		for _, item := range items {
			product, err := tx.Products().FindByID(ctx, item.ProductID)
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFoundError("Product with ID %d not found", item.ProductID)
			}
			if err != nil {
				return err
			}

			available := 0
			inv, err := tx.Inventory().Get(ctx, item.ProductID)
			switch {
			case err == nil:
				available = inv.Quantity
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}
			if available < item.Quantity {
				return apperr.InsufficientStockError(product.Name, available, item.Quantity)
			}

			subtotal = subtotal.Add(decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
			lines = append(lines, orderLine{item: item, product: product})
		}

		total := subtotal.Add(decimal.NewFromFloat(*in.DeliveryFee)).Round(2)

		order = &models.Order{
			UserID:          userID,
			Status:          models.OrderStatusPending,
			Total:           total.InexactFloat64(),
			PaymentMethod:   in.PaymentMethod,
			PaymentID:       in.PaymentID,
			DeliveryMethod:  in.DeliveryMethod,
			DeliveryFee:     *in.DeliveryFee,
			ShippingAddress: in.ShippingAddress,
			BillingAddress:  in.BillingAddress,
			OrderDate:       time.Now(),
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		orderItems := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			orderItems = append(orderItems, models.OrderItem{
				OrderID:   order.ID,
				ProductID: l.product.ID,
				Quantity:  l.item.Quantity,
				Price:     l.product.Price,
			})
		}
		if err := tx.Orders().CreateItems(ctx, orderItems); err != nil {
			return err
		}

		for _, l := range lines {
			inv, err := tx.Inventory().Decrement(ctx, l.product.ID, l.item.Quantity)
			if errors.Is(err, repository.ErrInsufficientStock) {
				return apperr.InsufficientStockError(l.product.Name, 0, l.item.Quantity)
			}
			if err != nil {
				return err
			}
			remaining[l.product.ID] = inv.Quantity
		}

		if err := tx.Carts().Clear(ctx, userID); err != nil {
			return err
		}

		order.Items = orderItems
		return nil
	})
	if err != nil {
		if k := apperr.KindOf(err); k == apperr.InsufficientStock || k == apperr.EmptyCart {
			s.logger.Info("Order rejected", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, internal("Failed to place order", err)
	}

	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)))

	keys := make([]string, 0, len(remaining))
	for productID, quantity := range remaining {
		keys = append(keys, productCacheKey(productID))
		s.notifier.Notify(events.New(events.StockChanged, productID, userID, map[string]interface{}{
			"quantity": quantity,
			"source":   "order",
			"orderId":  order.ID,
		}))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
	s.notifier.Notify(events.New(events.OrderPlaced, order.ID, userID, map[string]interface{}{
		"total":  order.Total,
		"status": string(order.Status),
		"items":  len(order.Items),
	}))

	return order, nil
}

// ListForUser returns the user's orders, newest first.
func (s *Orders) ListForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	orders, err := s.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, internal("Failed to fetch orders", err)
	}
	return orders, nil
}

// Get returns an order to its owner or to an admin.
func (s *Orders) Get(ctx context.Context, requester *models.User, id int64) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFoundError("Order not found")
	}
	if err != nil {
		return nil, internal("Failed to fetch order", err)
	}
	if order.UserID != requester.ID && !requester.IsAdmin {
		return nil, apperr.AuthorizationError("You do not have permission to view this order")
	}
	return order, nil
}

// Details is Get with each line item joined to its product.
func (s *Orders) Details(ctx context.Context, requester *models.User, id int64) (*models.OrderDetails, error) {
	order, err := s.Get(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	details := &models.OrderDetails{Order: *order, Items: make([]models.OrderItemLine, 0, len(order.Items))}
	for _, item := range order.Items {
		line := models.OrderItemLine{OrderItem: item}
		product, err := s.store.Products().FindByID(ctx, item.ProductID)
		switch {
		case err == nil:
			line.Product = product
		case !errors.Is(err, repository.ErrNotFound):
			return nil, internal("Failed to fetch order details", err)
		}
		details.Items = append(details.Items, line)
	}
	return details, nil
}

// UpdateStatus moves an order to a new status. Line items are never touched.
func (s *Orders) UpdateStatus(ctx context.Context, id int64, in StatusInput) (*models.Order, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, ValidationFailed(&models.EnumError{Field: "status", Value: string(in.Status)})
	}

	order, err := s.store.Orders().UpdateStatus(ctx, id, repository.StatusUpdate{
		Status:                in.Status,
		TrackingNumber:        in.TrackingNumber,
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFoundError("Order not found")
	}
	if err != nil {
		return nil, internal("Failed to update order", err)
	}

	data := map[string]interface{}{"status": string(order.Status), "total": order.Total}
	if order.TrackingNumber != nil {
		data["trackingNumber"] = *order.TrackingNumber
	}
	s.notifier.Notify(events.New(events.OrderStatusChanged, order.ID, order.UserID, data))
	return order, nil
}

// History returns the audit trail of an order, newest first, with the same
// visibility rules as Get.
func (s *Orders) History(ctx context.Context, requester *models.User, id int64) ([]*repository.AuditLog, error) {
	if _, err := s.Get(ctx, requester, id); err != nil {
		return nil, err
	}
	logs, err := s.audit.GetAuditLogs(ctx, "order", id, orderHistoryLimit)
	if err != nil {
		return nil, internal("Failed to fetch order history", err)
	}
	return logs, nil
}
