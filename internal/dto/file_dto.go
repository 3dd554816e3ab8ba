// Package dto defines API request and response shapes.
package dto

import "github.com/haierkeys/markdown-workspace-service/pkg/timex"

// FileDTO is the API view of a file. CreatedAt/UpdatedAt are Unix
// milliseconds; the *Time fields are the same instants, human readable.
type FileDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Content     string     `json:"content"`
	ParentID    string     `json:"parentId"`
	Order       int        `json:"order"`
	CreatedAt   int64      `json:"createdAt"`
	UpdatedAt   int64      `json:"updatedAt"`
	CreatedTime timex.Time `json:"createdTime"`
	UpdatedTime timex.Time `json:"updatedTime"`
}

type FileCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Content  string `json:"content"`
	ParentID string `json:"parentId"`
}

// FileUpdateRequest carries a partial update; nil fields stay untouched.
type FileUpdateRequest struct {
	Name     *string `json:"name"`
	Content  *string `json:"content"`
	ParentID *string `json:"parentId"`
	Order    *int    `json:"order"`
}
