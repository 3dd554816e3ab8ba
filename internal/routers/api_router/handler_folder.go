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

// FolderHandler serves the folder CRUD endpoints.
type FolderHandler struct {
	*Handler
}

func NewFolderHandler(a *app.App) *FolderHandler {
	return &FolderHandler{Handler: NewHandler(a)}
}

// List returns every folder in the workspace.
func (h *FolderHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	folders := h.App.WorkspaceService.Folders(c.Request.Context())
	response.ToResponseList(code.Success, folders, len(folders))
}

// Create adds a folder.
func (h *FolderHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FolderCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("FolderHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	folder, err := h.App.WorkspaceService.CreateFolder(c.Request.Context(), params)
	if err != nil {
		h.logError("FolderHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(folder))
}

// Update applies a partial change; a parent move is rejected when it
// would make the folder its own ancestor.
func (h *FolderHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FolderUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("FolderHandler.Update.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	folder, err := h.App.WorkspaceService.UpdateFolder(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		h.logError("FolderHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(folder))
}

// ToggleExpanded flips the sidebar expansion flag.
func (h *FolderHandler) ToggleExpanded(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	folder, err := h.App.WorkspaceService.ToggleFolderExpanded(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(folder))
}

// Delete removes a folder and everything beneath it.
func (h *FolderHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	if err := h.App.WorkspaceService.DeleteFolder(c.Request.Context(), c.Param("id")); err != nil {
		h.logError("FolderHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success)
}
