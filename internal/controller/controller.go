// Package controller holds the Gin handlers. Handlers stay thin: auth and
// validation here, everything stateful behind the sync coordinator.
package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"habitflow/internal/cache"
	"habitflow/internal/database"
	"habitflow/internal/gateway"
	"habitflow/internal/hub"
	"habitflow/internal/identity"
	"habitflow/internal/syncer"
)

type Controller struct {
	co   *syncer.Coordinator
	gw   gateway.Gateway
	auth *identity.Provider
	hub  *hub.Hub
}

func New(co *syncer.Coordinator, gw gateway.Gateway, auth *identity.Provider, h *hub.Hub) *Controller {
	return &Controller{co: co, gw: gw, auth: auth, hub: h}
}

// ownerID pulls the authenticated user id set by the auth middleware.
func ownerID(c *gin.Context) string {
	v, _ := c.Get("user")
	id, _ := v.(string)
	return id
}

// respondError maps the gateway error taxonomy onto HTTP statuses.
// ErrUnavailable never reaches here for mutations: the coordinator absorbs
// it into a queued optimistic result.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Habit not found"})
	case errors.Is(err, gateway.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, gateway.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Backend unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// Health returns 200 if the process is alive. Used by load balancers.
func (h *Controller) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if DB and Redis are reachable. Used by K8s readiness
// probes.
func (h *Controller) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if cache.Client(ctx) == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
		return
	}
	db := database.DB(ctx)
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
		return
	}
	if err := db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database ping failed"})
		return
	}
	c.String(http.StatusOK, "OK")
}
