package api_router

import (
	"github.com/haierkeys/markdown-workspace-service/internal/app"
	pkgapp "github.com/haierkeys/markdown-workspace-service/pkg/app"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"
	apperrors "github.com/haierkeys/markdown-workspace-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// WorkspaceHandler serves the tree view and workspace-level operations.
type WorkspaceHandler struct {
	*Handler
}

func NewWorkspaceHandler(a *app.App) *WorkspaceHandler {
	return &WorkspaceHandler{Handler: NewHandler(a)}
}

// Tree returns the sidebar hierarchy: folders first, then files,
// siblings ordered ascending.
func (h *WorkspaceHandler) Tree(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	tree := h.App.WorkspaceService.Tree(c.Request.Context())
	response.ToResponse(code.Success.WithData(tree))
}

// Reload rebuilds the in-memory mirror from durable storage.
func (h *WorkspaceHandler) Reload(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	if err := h.App.WorkspaceService.Load(c.Request.Context()); err != nil {
		h.logError("WorkspaceHandler.Reload", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success)
}
