package domain

// Folder is a tree container. ParentID "" means the workspace root.
// New folders start expanded.
type Folder struct {
	ID         string
	Name       string
	ParentID   string
	Order      int
	IsExpanded bool
	CreatedAt  int64
	UpdatedAt  int64
}

// FolderChanges is a partial update. Nil fields are left untouched.
type FolderChanges struct {
	Name       *string
	ParentID   *string
	Order      *int
	IsExpanded *bool
}

func (c FolderChanges) Empty() bool {
	return c.Name == nil && c.ParentID == nil && c.Order == nil && c.IsExpanded == nil
}
