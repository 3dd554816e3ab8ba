package dto

import "github.com/haierkeys/markdown-workspace-service/pkg/timex"

// BackupMetadata is the `_backup_metadata.json` payload inside an archive.
type BackupMetadata struct {
	Version     int    `json:"version"`
	CreatedAt   string `json:"createdAt"`
	FileCount   int    `json:"fileCount"`
	FolderCount int    `json:"folderCount"`
}

// SnapshotDTO describes one scheduled backup archive on disk.
type SnapshotDTO struct {
	Name      string     `json:"name"`
	Size      int64      `json:"size"`
	CreatedAt timex.Time `json:"createdAt"`
}

// ImportResultDTO summarizes an archive import.
type ImportResultDTO struct {
	FilesAdded   int `json:"filesAdded"`
	FoldersAdded int `json:"foldersAdded"`
	Skipped      int `json:"skipped"`
}

type ExportRequest struct {
	// FolderID limits the export to one folder subtree; empty exports the
	// whole workspace.
	FolderID string `json:"folderId" form:"folderId"`
}
