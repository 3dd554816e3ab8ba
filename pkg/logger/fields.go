package logger

// Shared log field names, so queries over the logs stay consistent.
const (
	// FieldFileID file identifier field
	FieldFileID = "fileId"

	// FieldFolderID folder identifier field
	FieldFolderID = "folderId"

	// FieldParentID parent folder identifier field
	FieldParentID = "parentId"

	// FieldAction operation type field
	FieldAction = "action"

	// FieldPath archive or filesystem path field
	FieldPath = "path"

	// FieldDuration elapsed time field
	FieldDuration = "duration"

	// FieldMethod method name field
	FieldMethod = "method"

	// FieldError error message field
	FieldError = "error"

	// FieldSize payload size field
	FieldSize = "size"

	// FieldCount record count field
	FieldCount = "count"
)
