package gateway

import (
	"net/http"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	*models.User
	Token string `json:"token"`
}

func (g *Gateway) register(c *gin.Context) {
	var req service.Credentials
	if !g.bindJSON(c, &req) {
		return
	}

	user, err := g.users.Register(c.Request.Context(), req)
	if err != nil {
		g.respondError(c, err)
		return
	}
	g.startSession(c, http.StatusCreated, user)
}

func (g *Gateway) login(c *gin.Context) {
	var req loginRequest
	if !g.bindJSON(c, &req) {
		return
	}

	user, err := g.users.Authenticate(c.Request.Context(), service.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		g.respondError(c, err)
		return
	}
	g.startSession(c, http.StatusOK, user)
}

func (g *Gateway) startSession(c *gin.Context, status int, user *models.User) {
	token, err := g.sessions.Issue(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		g.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(g.cookieName, token, int(g.sessions.TTL().Seconds()), "/", "", false, true)
	g.logger.Info("Session started", zap.Int64("user_id", user.ID))
	c.JSON(status, sessionResponse{User: user, Token: token})
}

func (g *Gateway) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(g.cookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (g *Gateway) currentUser(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
