package dto

// EditorEditRequest records a keystroke-level content change; the draft
// coordinator debounces the durable write.
type EditorEditRequest struct {
	FileID  string `json:"fileId" binding:"required"`
	Content string `json:"content"`
}

// EditorFlushRequest forces a pending draft to disk. An empty FileID flushes
// the active file.
type EditorFlushRequest struct {
	FileID string `json:"fileId"`
}

type EditorSwitchRequest struct {
	FileID string `json:"fileId" binding:"required"`
}

type EditorModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=wysiwyg source"`
}

// EditorStateDTO reports the coordinator's view of the active document.
type EditorStateDTO struct {
	ActiveFileID string `json:"activeFileId"`
	Mode         string `json:"mode"`
	Dirty        bool   `json:"dirty"`
	Content      string `json:"content"`
	WordCount    int    `json:"wordCount"`
	CharCount    int    `json:"charCount"`
}
