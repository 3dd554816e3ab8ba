package domain

import "context"

// FileRepository is the durable store for files.
// Update and Delete are silent no-ops when the id does not exist.
type FileRepository interface {
	// GetByID gets a file by id; returns nil when absent.
	GetByID(ctx context.Context, id string) (*File, error)

	// ListAll gets every file.
	ListAll(ctx context.Context) ([]*File, error)

	// ListByParent gets the files under one parent folder ("" for root).
	ListByParent(ctx context.Context, parentID string) ([]*File, error)

	// Create persists a new file. An empty ID gets a generated one, zero
	// timestamps get the current time, and a negative Order is replaced with
	// the sibling count (files plus folders under the same parent).
	Create(ctx context.Context, file *File) (*File, error)

	// Update applies a partial change set and refreshes UpdatedAt.
	Update(ctx context.Context, id string, changes FileChanges, updatedAt int64) error

	// Delete removes a file by id.
	Delete(ctx context.Context, id string) error
}

// FolderRepository is the durable store for folders.
type FolderRepository interface {
	// GetByID gets a folder by id; returns nil when absent.
	GetByID(ctx context.Context, id string) (*Folder, error)

	// ListAll gets every folder.
	ListAll(ctx context.Context) ([]*Folder, error)

	// ListByParent gets the child folders of one parent ("" for root).
	ListByParent(ctx context.Context, parentID string) ([]*Folder, error)

	// Create persists a new folder, defaulting ID, timestamps and Order like
	// FileRepository.Create.
	Create(ctx context.Context, folder *Folder) (*Folder, error)

	// Update applies a partial change set and refreshes UpdatedAt.
	Update(ctx context.Context, id string, changes FolderChanges, updatedAt int64) error

	// DeleteRecursive removes a folder, all its descendant folders and every
	// file they contain, in one transaction.
	DeleteRecursive(ctx context.Context, id string) error
}

// SettingRepository is the durable store for preferences.
type SettingRepository interface {
	// Get gets a setting by key; returns nil when absent.
	Get(ctx context.Context, key string) (*Setting, error)

	// List gets every setting.
	List(ctx context.Context) ([]*Setting, error)

	// Set creates or replaces a setting.
	Set(ctx context.Context, setting *Setting) error

	// Delete removes a setting by key; no-op when absent.
	Delete(ctx context.Context, key string) error
}

// WorkspaceRepository covers multi-table operations used by backup restore
// and archive import.
type WorkspaceRepository interface {
	// ReplaceAll clears every table and inserts the given records in one
	// transaction. On error nothing is changed.
	ReplaceAll(ctx context.Context, files []*File, folders []*Folder, settings []*Setting) error

	// BulkAdd inserts files and folders in one transaction without touching
	// existing rows.
	BulkAdd(ctx context.Context, files []*File, folders []*Folder) error

	// Counts returns the number of files and folders.
	Counts(ctx context.Context) (files int64, folders int64, err error)
}
