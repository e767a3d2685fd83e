package gateway

import (
	"errors"
	"net/http"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Message string `json:"message"`
	Errors  string `json:"errors,omitempty"`
}

// respondError writes err as {"message", "errors"} with the status of its kind.
// Internal causes are logged and never sent to the client.
func (g *Gateway) respondError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.InternalError("Internal server error", err)
	}

	status := apperr.HTTPStatus(ae.Kind)
	if status >= http.StatusInternalServerError {
		g.logger.Error("Request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(status, errorResponse{Message: ae.Message, Errors: ae.Details})
}

// bindJSON decodes the body into dest and reports decode or validation failures
// as a 400. It returns false when the response has already been written.
func (g *Gateway) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		g.respondError(c, service.ValidationFailed(err))
		return false
	}
	return true
}
