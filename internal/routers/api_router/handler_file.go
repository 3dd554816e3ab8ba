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

// FileHandler serves the file CRUD endpoints.
type FileHandler struct {
	*Handler
}

func NewFileHandler(a *app.App) *FileHandler {
	return &FileHandler{Handler: NewHandler(a)}
}

// List returns every file in the workspace.
func (h *FileHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	files := h.App.WorkspaceService.Files(c.Request.Context())
	response.ToResponseList(code.Success, files, len(files))
}

// Get returns one file by id.
func (h *FileHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	id := c.Param("id")

	file, err := h.App.WorkspaceService.FileByID(c.Request.Context(), id)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(file))
}

// Create adds a file; it becomes the active one.
func (h *FileHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FileCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("FileHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	file, err := h.App.WorkspaceService.CreateFile(c.Request.Context(), params)
	if err != nil {
		h.logError("FileHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(file))
}

// Update applies a partial change: rename, content, move or reorder.
func (h *FileHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FileUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("FileHandler.Update.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	file, err := h.App.WorkspaceService.UpdateFile(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		h.logError("FileHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(file))
}

// Delete removes a file; any held draft for it is dropped too.
func (h *FileHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	id := c.Param("id")

	if err := h.App.WorkspaceService.DeleteFile(c.Request.Context(), id); err != nil {
		h.logError("FileHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	h.App.DraftService.Forget(id)
	response.ToResponse(code.Success)
}
