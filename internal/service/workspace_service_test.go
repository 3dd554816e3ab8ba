package service

import (
	"context"
	"testing"

	"github.com/haierkeys/markdown-workspace-service/internal/dao"
	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/internal/dto"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dao       *dao.Dao
	files     domain.FileRepository
	folders   domain.FolderRepository
	settings  domain.SettingRepository
	workspace WorkspaceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := dao.NewDBEngine(dao.Database{Path: ":memory:"})
	require.NoError(t, err)
	d := dao.New(db, nil, nil)

	files := dao.NewFileRepository(d)
	folders := dao.NewFolderRepository(d)
	ws := NewWorkspaceService(files, folders, nil)
	require.NoError(t, ws.Load(context.Background()))

	return &testEnv{
		dao:       d,
		files:     files,
		folders:   folders,
		settings:  dao.NewSettingRepository(d),
		workspace: ws,
	}
}

func TestWorkspaceCreateFileActivates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "note.md", Content: "# hi"})
	require.NoError(t, err)

	assert.Equal(t, created.ID, env.workspace.ActiveFileID())

	got, err := env.workspace.FileByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "# hi", got.Content)

	// Mirror matches the durable store.
	persisted, err := env.files.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "# hi", persisted.Content)
}

func TestWorkspaceUpdateFileWritesThrough(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "note.md"})
	require.NoError(t, err)

	content := "updated"
	updated, err := env.workspace.UpdateFile(ctx, created.ID, &dto.FileUpdateRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Content)
	assert.GreaterOrEqual(t, updated.UpdatedAt, updated.CreatedAt)

	persisted, err := env.files.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", persisted.Content)
	assert.Equal(t, updated.UpdatedAt, persisted.UpdatedAt)
}

func TestWorkspaceUpdateMissingFile(t *testing.T) {
	env := newTestEnv(t)
	name := "x"
	_, err := env.workspace.UpdateFile(context.Background(), "nope", &dto.FileUpdateRequest{Name: &name})
	appCode, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorFileNotFound.Code(), appCode.Code())
}

func TestWorkspaceDeleteFileClearsActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "note.md"})
	require.NoError(t, err)
	require.Equal(t, created.ID, env.workspace.ActiveFileID())

	require.NoError(t, env.workspace.DeleteFile(ctx, created.ID))
	assert.Empty(t, env.workspace.ActiveFileID())

	_, err = env.workspace.FileByID(ctx, created.ID)
	assert.Error(t, err)
}

func TestWorkspaceDeleteFolderCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.workspace.CreateFolder(ctx, &dto.FolderCreateRequest{Name: "A"})
	require.NoError(t, err)
	b, err := env.workspace.CreateFolder(ctx, &dto.FolderCreateRequest{Name: "B", ParentID: a.ID})
	require.NoError(t, err)
	inner, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "inner.md", ParentID: b.ID})
	require.NoError(t, err)
	outer, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "outer.md"})
	require.NoError(t, err)

	require.NoError(t, env.workspace.SetActiveFile(ctx, inner.ID))

	require.NoError(t, env.workspace.DeleteFolder(ctx, a.ID))

	assert.Empty(t, env.workspace.ActiveFileID())
	assert.Len(t, env.workspace.Folders(ctx), 0)

	files := env.workspace.Files(ctx)
	require.Len(t, files, 1)
	assert.Equal(t, outer.ID, files[0].ID)

	// Durable store agrees.
	remaining, err := env.files.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, outer.ID, remaining[0].ID)
}

func TestWorkspaceFolderCycleGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.workspace.CreateFolder(ctx, &dto.FolderCreateRequest{Name: "A"})
	require.NoError(t, err)
	b, err := env.workspace.CreateFolder(ctx, &dto.FolderCreateRequest{Name: "B", ParentID: a.ID})
	require.NoError(t, err)
	c, err := env.workspace.CreateFolder(ctx, &dto.FolderCreateRequest{Name: "C", ParentID: b.ID})
	require.NoError(t, err)

	// Moving A under its own grandchild must be rejected.
	_, err = env.workspace.UpdateFolder(ctx, a.ID, &dto.FolderUpdateRequest{ParentID: &c.ID})
	appCode, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorFolderCycle.Code(), appCode.Code())

	// Self-parenting too.
	_, err = env.workspace.UpdateFolder(ctx, a.ID, &dto.FolderUpdateRequest{ParentID: &a.ID})
	assert.Error(t, err)

	// A legal move still works.
	root := ""
	_, err = env.workspace.UpdateFolder(ctx, c.ID, &dto.FolderUpdateRequest{ParentID: &root})
	assert.NoError(t, err)
}

func TestWorkspaceTreeOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folder, err := env.workspace.CreateFolder(ctx, &dto.FolderCreateRequest{Name: "docs"})
	require.NoError(t, err)
	_, err = env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "a.md"})
	require.NoError(t, err)
	_, err = env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "b.md", ParentID: folder.ID})
	require.NoError(t, err)

	tree := env.workspace.Tree(ctx)
	require.Len(t, tree, 2)
	assert.Equal(t, domain.NodeTypeFolder, tree[0].Type)
	assert.Equal(t, folder.ID, tree[0].ID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "b.md", tree[0].Children[0].Name)
	assert.Equal(t, "a.md", tree[1].Name)
}

func TestWorkspaceLoadIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "note.md"})
	require.NoError(t, err)

	require.NoError(t, env.workspace.Load(ctx))
	require.NoError(t, env.workspace.Load(ctx))

	files := env.workspace.Files(ctx)
	require.Len(t, files, 1)
	assert.Equal(t, created.ID, files[0].ID)
	// The active file survives a reload while it still exists.
	assert.Equal(t, created.ID, env.workspace.ActiveFileID())
}

func TestWorkspaceOnChangeFires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var fired int
	env.workspace.SetOnChange(func() { fired++ })

	_, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "note.md"})
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}
