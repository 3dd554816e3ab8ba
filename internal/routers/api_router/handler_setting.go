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

// SettingHandler serves the key/value preference endpoints.
type SettingHandler struct {
	*Handler
}

func NewSettingHandler(a *app.App) *SettingHandler {
	return &SettingHandler{Handler: NewHandler(a)}
}

// List returns every stored preference.
func (h *SettingHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	settings, err := h.App.SettingService.List(c.Request.Context())
	if err != nil {
		h.logError("SettingHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponseList(code.Success, settings, len(settings))
}

// Get returns one preference by key.
func (h *SettingHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	setting, err := h.App.SettingService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(setting))
}

// Set creates or overwrites a preference.
func (h *SettingHandler) Set(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.SettingSetRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("SettingHandler.Set.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	setting, err := h.App.SettingService.Set(c.Request.Context(), params)
	if err != nil {
		h.logError("SettingHandler.Set", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(setting))
}

// Delete removes a preference; a missing key is not an error.
func (h *SettingHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	if err := h.App.SettingService.Delete(c.Request.Context(), c.Param("key")); err != nil {
		h.logError("SettingHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success)
}
