package dao

import (
	"context"
	"testing"

	"github.com/haierkeys/markdown-workspace-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngine(Database{Path: ":memory:"})
	require.NoError(t, err)
	return New(db, nil, nil)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestFileCreateDefaults(t *testing.T) {
	d := newTestDao(t)
	repo := NewFileRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.File{Name: "note.md", Content: "# hi", Order: -1})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 0, created.Order)
	assert.NotZero(t, created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created, got)
}

func TestFileDefaultOrderCountsFilesAndFolders(t *testing.T) {
	d := newTestDao(t)
	files := NewFileRepository(d)
	folders := NewFolderRepository(d)
	ctx := context.Background()

	parent, err := folders.Create(ctx, &domain.Folder{Name: "docs", IsExpanded: true, Order: -1})
	require.NoError(t, err)

	_, err = folders.Create(ctx, &domain.Folder{Name: "sub", ParentID: parent.ID, Order: -1})
	require.NoError(t, err)
	_, err = files.Create(ctx, &domain.File{Name: "a.md", ParentID: parent.ID, Order: -1})
	require.NoError(t, err)

	// One folder and one file already under parent: next order is 2.
	f, err := files.Create(ctx, &domain.File{Name: "b.md", ParentID: parent.ID, Order: -1})
	require.NoError(t, err)
	assert.Equal(t, 2, f.Order)
}

func TestFilePartialUpdate(t *testing.T) {
	d := newTestDao(t)
	repo := NewFileRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.File{Name: "note.md", Content: "v1", Order: -1})
	require.NoError(t, err)

	newTime := created.UpdatedAt + 500
	err = repo.Update(ctx, created.ID, domain.FileChanges{Content: strPtr("v2")}, newTime)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
	assert.Equal(t, "note.md", got.Name)
	assert.Equal(t, newTime, got.UpdatedAt)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.GreaterOrEqual(t, got.UpdatedAt, got.CreatedAt)
}

func TestFileUpdateMissingIDIsNoOp(t *testing.T) {
	d := newTestDao(t)
	repo := NewFileRepository(d)
	ctx := context.Background()

	err := repo.Update(ctx, "no-such-id", domain.FileChanges{Name: strPtr("x")}, 1)
	assert.NoError(t, err)

	err = repo.Delete(ctx, "no-such-id")
	assert.NoError(t, err)
}

func TestFileMoveAndReorder(t *testing.T) {
	d := newTestDao(t)
	files := NewFileRepository(d)
	folders := NewFolderRepository(d)
	ctx := context.Background()

	dst, err := folders.Create(ctx, &domain.Folder{Name: "dst", Order: -1})
	require.NoError(t, err)
	f, err := files.Create(ctx, &domain.File{Name: "move.md", Order: -1})
	require.NoError(t, err)

	err = files.Update(ctx, f.ID, domain.FileChanges{ParentID: strPtr(dst.ID), Order: intPtr(7)}, f.UpdatedAt+1)
	require.NoError(t, err)

	under, err := files.ListByParent(ctx, dst.ID)
	require.NoError(t, err)
	require.Len(t, under, 1)
	assert.Equal(t, 7, under[0].Order)

	root, err := files.ListByParent(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, root)
}

func TestFolderToggleExpanded(t *testing.T) {
	d := newTestDao(t)
	repo := NewFolderRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Folder{Name: "docs", IsExpanded: true, Order: -1})
	require.NoError(t, err)

	err = repo.Update(ctx, created.ID, domain.FolderChanges{IsExpanded: boolPtr(false)}, created.UpdatedAt+1)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsExpanded)
}

func TestFolderDeleteRecursive(t *testing.T) {
	d := newTestDao(t)
	files := NewFileRepository(d)
	folders := NewFolderRepository(d)
	ctx := context.Background()

	// root folder A containing file f1 and folder B; B contains f2; plus an
	// unrelated root file f3 that must survive.
	a, err := folders.Create(ctx, &domain.Folder{Name: "A", Order: -1})
	require.NoError(t, err)
	b, err := folders.Create(ctx, &domain.Folder{Name: "B", ParentID: a.ID, Order: -1})
	require.NoError(t, err)
	_, err = files.Create(ctx, &domain.File{Name: "f1.md", ParentID: a.ID, Order: -1})
	require.NoError(t, err)
	_, err = files.Create(ctx, &domain.File{Name: "f2.md", ParentID: b.ID, Order: -1})
	require.NoError(t, err)
	survivor, err := files.Create(ctx, &domain.File{Name: "f3.md", Order: -1})
	require.NoError(t, err)

	require.NoError(t, folders.DeleteRecursive(ctx, a.ID))

	remainingFolders, err := folders.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, remainingFolders)

	remainingFiles, err := files.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, remainingFiles, 1)
	assert.Equal(t, survivor.ID, remainingFiles[0].ID)
}

func TestFolderDeleteRecursiveMissingIDIsNoOp(t *testing.T) {
	d := newTestDao(t)
	folders := NewFolderRepository(d)
	assert.NoError(t, folders.DeleteRecursive(context.Background(), "no-such-id"))
}

func TestSettingUpsert(t *testing.T) {
	d := newTestDao(t)
	repo := NewSettingRepository(d)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &domain.Setting{Key: "theme", Value: "dark"}))
	require.NoError(t, repo.Set(ctx, &domain.Setting{Key: "theme", Value: "light"}))

	got, err := repo.Get(ctx, "theme")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "light", got.Value)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "theme"))
	got, err = repo.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWorkspaceReplaceAll(t *testing.T) {
	d := newTestDao(t)
	files := NewFileRepository(d)
	folders := NewFolderRepository(d)
	settings := NewSettingRepository(d)
	workspace := NewWorkspaceRepository(d)
	ctx := context.Background()

	_, err := files.Create(ctx, &domain.File{Name: "old.md", Order: -1})
	require.NoError(t, err)
	require.NoError(t, settings.Set(ctx, &domain.Setting{Key: "old", Value: "x"}))

	newFolder := &domain.Folder{ID: "d1", Name: "restored", IsExpanded: true, CreatedAt: 100, UpdatedAt: 200}
	newFile := &domain.File{ID: "f1", Name: "restored.md", ParentID: "d1", CreatedAt: 100, UpdatedAt: 300}
	newSetting := &domain.Setting{Key: "theme", Value: "dark", UpdatedAt: 400}

	err = workspace.ReplaceAll(ctx, []*domain.File{newFile}, []*domain.Folder{newFolder}, []*domain.Setting{newSetting})
	require.NoError(t, err)

	gotFiles, err := files.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, gotFiles, 1)
	// Restore preserves archived timestamps verbatim.
	assert.Equal(t, newFile, gotFiles[0])

	gotFolders, err := folders.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, gotFolders, 1)
	assert.Equal(t, newFolder, gotFolders[0])

	gotSetting, err := settings.Get(ctx, "theme")
	require.NoError(t, err)
	require.NotNil(t, gotSetting)
	assert.Equal(t, "dark", gotSetting.Value)

	old, err := settings.Get(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, old)
}

func TestWorkspaceBulkAddAndCounts(t *testing.T) {
	d := newTestDao(t)
	files := NewFileRepository(d)
	workspace := NewWorkspaceRepository(d)
	ctx := context.Background()

	existing, err := files.Create(ctx, &domain.File{Name: "keep.md", Order: -1})
	require.NoError(t, err)

	err = workspace.BulkAdd(ctx,
		[]*domain.File{{ID: "f1", Name: "a.md", ParentID: "d1", CreatedAt: 1, UpdatedAt: 1}},
		[]*domain.Folder{{ID: "d1", Name: "imported", IsExpanded: true, CreatedAt: 1, UpdatedAt: 1}},
	)
	require.NoError(t, err)

	got, err := files.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	fileCount, folderCount, err := workspace.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fileCount)
	assert.Equal(t, int64(1), folderCount)
}
