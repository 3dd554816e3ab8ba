// Package routers assembles the HTTP routes.
package routers

import (
	"github.com/haierkeys/markdown-workspace-service/internal/app"
	"github.com/haierkeys/markdown-workspace-service/internal/middleware"
	"github.com/haierkeys/markdown-workspace-service/internal/routers/api_router"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with all API routes mounted.
func NewRouter(appContainer *app.App) *gin.Engine {
	cfg := appContainer.Config()

	r := gin.New()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.Use(middleware.Cors())
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		fileHandler := api_router.NewFileHandler(appContainer)
		folderHandler := api_router.NewFolderHandler(appContainer)
		workspaceHandler := api_router.NewWorkspaceHandler(appContainer)
		editorHandler := api_router.NewEditorHandler(appContainer)
		settingHandler := api_router.NewSettingHandler(appContainer)
		backupHandler := api_router.NewBackupHandler(appContainer)
		transferHandler := api_router.NewTransferHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		api.GET("/health", healthHandler.Check)

		api.GET("/files", fileHandler.List)
		api.POST("/file", fileHandler.Create)
		api.GET("/file/:id", fileHandler.Get)
		api.PUT("/file/:id", fileHandler.Update)
		api.DELETE("/file/:id", fileHandler.Delete)

		api.GET("/folders", folderHandler.List)
		api.POST("/folder", folderHandler.Create)
		api.PUT("/folder/:id", folderHandler.Update)
		api.PUT("/folder/:id/toggle", folderHandler.ToggleExpanded)
		api.DELETE("/folder/:id", folderHandler.Delete)

		api.GET("/tree", workspaceHandler.Tree)
		api.POST("/workspace/reload", workspaceHandler.Reload)

		api.POST("/editor/edit", editorHandler.Edit)
		api.POST("/editor/flush", editorHandler.Flush)
		api.POST("/editor/switch", editorHandler.Switch)
		api.POST("/editor/mode", editorHandler.Mode)
		api.GET("/editor/state", editorHandler.State)

		api.GET("/settings", settingHandler.List)
		api.POST("/setting", settingHandler.Set)
		api.GET("/setting/:key", settingHandler.Get)
		api.DELETE("/setting/:key", settingHandler.Delete)

		api.GET("/backup", backupHandler.Download)
		api.POST("/backup/restore", backupHandler.Restore)
		api.GET("/backup/snapshots", backupHandler.Snapshots)
		api.POST("/backup/snapshot", backupHandler.CreateSnapshot)

		api.GET("/export", transferHandler.Export)
		api.POST("/import", transferHandler.Import)
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
