package gateway

import (
	"net/http"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/chatbot"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type chatbotRequest struct {
	Message string `json:"message" binding:"required"`
}

func (g *Gateway) chatbotMessage(c *gin.Context) {
	var req chatbotRequest
	if !g.bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": chatbot.Reply(req.Message)})
}

type paymentIntentRequest struct {
	Amount *float64 `json:"amount" binding:"required,gt=0"`
}

func (g *Gateway) createPaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if !g.bindJSON(c, &req) {
		return
	}

	intent, err := g.payments.CreateIntent(c.Request.Context(), *req.Amount)
	if err != nil {
		g.respondError(c, apperr.InternalError("Failed to create payment intent", err))
		return
	}

	g.logger.Info("Payment intent created",
		zap.String("intent_id", intent.ID),
		zap.Int64("user_id", currentUser(c).ID))
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}

type marketplaceSync struct {
	Connected      bool      `json:"connected"`
	ProductsSynced int       `json:"productsSynced"`
	LastSync       time.Time `json:"lastSync"`
	SyncStatus     string    `json:"syncStatus"`
}

var marketplaceStatuses = map[string]marketplaceSync{
	"amazon": {Connected: true, ProductsSynced: 1243, SyncStatus: "up-to-date"},
	"ebay":   {Connected: true, ProductsSynced: 876, SyncStatus: "updates-available"},
}

// marketplaceStatus reports a fixed sync status; no marketplace API is called.
func (g *Gateway) marketplaceStatus(c *gin.Context) {
	status, ok := marketplaceStatuses[c.Param("marketplace")]
	if !ok {
		g.respondError(c, apperr.NotFoundError("Marketplace not found"))
		return
	}
	status.LastSync = time.Now()
	c.JSON(http.StatusOK, status)
}
