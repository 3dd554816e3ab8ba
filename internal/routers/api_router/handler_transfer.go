package api_router

import (
	"net/http"

	"github.com/haierkeys/markdown-workspace-service/internal/app"
	"github.com/haierkeys/markdown-workspace-service/internal/dto"
	pkgapp "github.com/haierkeys/markdown-workspace-service/pkg/app"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"
	apperrors "github.com/haierkeys/markdown-workspace-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// TransferHandler serves plain-zip export and import, the "take your
// notes elsewhere" path as opposed to full backups.
type TransferHandler struct {
	*Handler
}

func NewTransferHandler(a *app.App) *TransferHandler {
	return &TransferHandler{Handler: NewHandler(a)}
}

// Export streams a plain zip of the workspace, or of one folder's
// subtree when folderId is given.
func (h *TransferHandler) Export(c *gin.Context) {
	params := &dto.ExportRequest{}
	if valid, errs := pkgapp.BindAndValid(c, params); !valid {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	archive, name, err := h.App.ExportService.Export(c.Request.Context(), params.FolderID)
	if err != nil {
		h.logError("TransferHandler.Export", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/zip", archive)
}

// Import ingests an uploaded zip of markdown files, recreating its
// directory layout as folders.
func (h *TransferHandler) Import(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	archive, err := readUpload(c, "archive")
	if err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	result, err := h.App.ImportService.Import(c.Request.Context(), archive)
	if err != nil {
		h.logError("TransferHandler.Import", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(result))
}
