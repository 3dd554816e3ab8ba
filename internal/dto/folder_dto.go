package dto

import "github.com/haierkeys/markdown-workspace-service/pkg/timex"

type FolderDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ParentID    string     `json:"parentId"`
	Order       int        `json:"order"`
	IsExpanded  bool       `json:"isExpanded"`
	CreatedAt   int64      `json:"createdAt"`
	UpdatedAt   int64      `json:"updatedAt"`
	CreatedTime timex.Time `json:"createdTime"`
	UpdatedTime timex.Time `json:"updatedTime"`
}

type FolderCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID string `json:"parentId"`
}

type FolderUpdateRequest struct {
	Name       *string `json:"name"`
	ParentID   *string `json:"parentId"`
	Order      *int    `json:"order"`
	IsExpanded *bool   `json:"isExpanded"`
}
