// Package api_router provides the HTTP API route handlers.
package api_router

import (
	"github.com/haierkeys/markdown-workspace-service/internal/app"

	"go.uber.org/zap"
)

// Handler is the base handler every API handler embeds; it carries the
// app container for dependency access.
type Handler struct {
	App *app.App
}

// NewHandler creates a base Handler instance.
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

func (h *Handler) logError(where string, err error) {
	h.App.Logger().Error(where, zap.Error(err))
}
