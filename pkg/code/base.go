package code

var (
	Success        = NewSuss(200, "success")
	SuccessCreate  = NewSuss(201, "created")
	SuccessRestore = NewSuss(202, "workspace restored")

	ServerError             = NewError(10000000, "server internal error")
	ErrorInvalidParams      = NewError(10000001, "invalid request parameters")
	ErrorNotFoundAPI        = NewError(10000002, "api route not found")
	ErrorDBQuery            = NewError(10000003, "database query error")
	ErrorDBWrite            = NewError(10000004, "database write error")
	ErrorFileNotFound       = NewError(10010001, "file not found")
	ErrorFolderNotFound     = NewError(10010002, "folder not found")
	ErrorFolderCycle        = NewError(10010003, "folder cannot be moved into its own subtree")
	ErrorSettingNotFound    = NewError(10010004, "setting not found")
	ErrorBackupInvalid      = NewError(10020001, "invalid backup archive")
	ErrorBackupVersion      = NewError(10020002, "unsupported backup version")
	ErrorBackupCreateFail   = NewError(10020003, "backup creation failed")
	ErrorImportInvalid      = NewError(10020004, "invalid import archive")
	ErrorExportFail         = NewError(10020005, "export failed")
	ErrorWorkspaceLoadFail  = NewError(10030001, "workspace load failed")
	ErrorDraftFlushFail     = NewError(10030002, "draft flush failed")
	ErrorServiceUnavailable = NewError(10030003, "service is shutting down")
)
