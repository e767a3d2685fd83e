package gateway

import (
	"net/http"

	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (g *Gateway) listCart(c *gin.Context) {
	lines, err := g.carts.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (g *Gateway) addToCart(c *gin.Context) {
	var req service.CartInput
	if !g.bindJSON(c, &req) {
		return
	}

	item, err := g.carts.Add(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (g *Gateway) updateCartItem(c *gin.Context) {
	productID, ok := g.idParam(c, "productId")
	if !ok {
		return
	}
	var req service.QuantityInput
	if !g.bindJSON(c, &req) {
		return
	}

	item, err := g.carts.Update(c.Request.Context(), currentUser(c).ID, productID, req)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (g *Gateway) removeCartItem(c *gin.Context) {
	productID, ok := g.idParam(c, "productId")
	if !ok {
		return
	}

	if err := g.carts.Remove(c.Request.Context(), currentUser(c).ID, productID); err != nil {
		g.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *Gateway) clearCart(c *gin.Context) {
	if err := g.carts.Clear(c.Request.Context(), currentUser(c).ID); err != nil {
		g.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *Gateway) placeOrder(c *gin.Context) {
	var req service.PlaceOrderInput
	if !g.bindJSON(c, &req) {
		RecordOrderOperation("place", false)
		return
	}

	user := currentUser(c)
	order, err := g.orders.PlaceOrder(c.Request.Context(), user.ID, req)
	RecordOrderOperation("place", err == nil)
	if err != nil {
		g.respondError(c, err)
		return
	}

	g.logger.Info("Order created",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", user.ID))
	c.JSON(http.StatusCreated, order)
}

func (g *Gateway) listOrders(c *gin.Context) {
	orders, err := g.orders.ListForUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (g *Gateway) getOrder(c *gin.Context) {
	id, ok := g.idParam(c, "id")
	if !ok {
		return
	}

	order, err := g.orders.Details(c.Request.Context(), currentUser(c), id)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (g *Gateway) orderHistory(c *gin.Context) {
	id, ok := g.idParam(c, "id")
	if !ok {
		return
	}

	logs, err := g.orders.History(c.Request.Context(), currentUser(c), id)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (g *Gateway) updateOrderStatus(c *gin.Context) {
	id, ok := g.idParam(c, "id")
	if !ok {
		return
	}
	var req service.StatusInput
	if !g.bindJSON(c, &req) {
		RecordOrderOperation("update_status", false)
		return
	}

	order, err := g.orders.UpdateStatus(c.Request.Context(), id, req)
	RecordOrderOperation("update_status", err == nil)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
