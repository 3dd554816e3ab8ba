// Package domain defines the workspace entities and repository interfaces.
package domain

// File is a markdown document. ParentID "" means the workspace root.
// Timestamps are Unix milliseconds.
type File struct {
	ID        string
	Name      string
	Content   string
	ParentID  string
	Order     int
	CreatedAt int64
	UpdatedAt int64
}

// FileChanges is a partial update. Nil fields are left untouched; UpdatedAt
// is refreshed on every applied update regardless of which fields changed.
type FileChanges struct {
	Name     *string
	Content  *string
	ParentID *string
	Order    *int
}

// Empty reports whether no field is set.
func (c FileChanges) Empty() bool {
	return c.Name == nil && c.Content == nil && c.ParentID == nil && c.Order == nil
}
