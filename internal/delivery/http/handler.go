package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Runner executes the automation flows triggered over HTTP.
type Runner interface {
	Listify(ctx context.Context) error
	Schedule(ctx context.Context) error
	Shop(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	runner Runner
}

// NewHandler creates a new HTTP handler
func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "grocery-shopping",
		"version": "1.0.0",
	})
}

// RunListify triggers the meal plan to grocery list flow
func (h *Handler) RunListify(c *gin.Context) {
	h.run(c, "listify", h.runner.Listify)
}

// RunSchedule triggers the delivery reservation flow
func (h *Handler) RunSchedule(c *gin.Context) {
	h.run(c, "schedule", h.runner.Schedule)
}

// RunShop triggers the full shopping flow
func (h *Handler) RunShop(c *gin.Context) {
	h.run(c, "shop", h.runner.Shop)
}

// run executes one flow synchronously; the flows are triggered by a
// scheduler, not an interactive client, so blocking is fine.
func (h *Handler) run(c *gin.Context, name string, flow func(ctx context.Context) error) {
	if err := flow(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"run":   name,
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run":    name,
		"status": "completed",
	})
}
