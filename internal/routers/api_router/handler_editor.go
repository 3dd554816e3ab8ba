package api_router

import (
	"github.com/haierkeys/markdown-workspace-service/internal/app"
	"github.com/haierkeys/markdown-workspace-service/internal/dto"
	pkgapp "github.com/haierkeys/markdown-workspace-service/pkg/app"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"
	apperrors "github.com/haierkeys/markdown-workspace-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EditorHandler serves the draft coordinator: debounced edits, manual
// flushes, file switching and mode changes.
type EditorHandler struct {
	*Handler
}

func NewEditorHandler(a *app.App) *EditorHandler {
	return &EditorHandler{Handler: NewHandler(a)}
}

// Edit records a content change; the durable write lands after the
// autosave debounce window.
func (h *EditorHandler) Edit(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EditorEditRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("EditorHandler.Edit.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	state, err := h.App.DraftService.Edit(c.Request.Context(), params)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(state))
}

// Flush persists a pending draft now instead of waiting out the
// debounce window.
func (h *EditorHandler) Flush(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EditorFlushRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	if err := h.App.DraftService.Flush(c.Request.Context(), params.FileID); err != nil {
		h.logError("EditorHandler.Flush", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(h.App.DraftService.State(c.Request.Context())))
}

// Switch flushes the outgoing file's draft and activates another file.
func (h *EditorHandler) Switch(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EditorSwitchRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("EditorHandler.Switch.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	state, err := h.App.DraftService.SwitchFile(c.Request.Context(), params.FileID)
	if err != nil {
		h.logError("EditorHandler.Switch", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(state))
}

// Mode switches between wysiwyg and source editing; the pending draft
// is flushed first so both views read the same content.
func (h *EditorHandler) Mode(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.EditorModeRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	state, err := h.App.DraftService.SetMode(c.Request.Context(), params.Mode)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(state))
}

// State reports the editor's current view of the active document.
func (h *EditorHandler) State(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	response.ToResponse(code.Success.WithData(h.App.DraftService.State(c.Request.Context())))
}
