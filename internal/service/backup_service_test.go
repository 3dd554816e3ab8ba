package service

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/haierkeys/markdown-workspace-service/internal/dao"
	"github.com/haierkeys/markdown-workspace-service/internal/dto"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackupService(t *testing.T, env *testEnv) BackupService {
	t.Helper()
	return NewBackupService(
		env.files, env.folders, env.settings,
		dao.NewWorkspaceRepository(env.dao),
		env.workspace,
		t.TempDir(), 3, nil,
	)
}

func TestBackupRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	backup := newBackupService(t, env)
	ctx := context.Background()

	folder, err := env.workspace.CreateFolder(ctx, &dto.FolderCreateRequest{Name: "docs"})
	require.NoError(t, err)
	file, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "note.md", Content: "# hello", ParentID: folder.ID})
	require.NoError(t, err)
	_, err = NewSettingService(env.settings, nil).Set(ctx, &dto.SettingSetRequest{Key: "theme", Value: "dark"})
	require.NoError(t, err)

	archive, meta, err := backup.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, BackupVersion, meta.Version)
	assert.Equal(t, 1, meta.FileCount)
	assert.Equal(t, 1, meta.FolderCount)

	// Archive layout: metadata, data sections and a readable mirror.
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["_backup_metadata.json"])
	assert.True(t, names["_data/files.json"])
	assert.True(t, names["_data/folders.json"])
	assert.True(t, names["_data/settings.json"])
	assert.True(t, names["docs/note.md"])

	// Mutate, then restore; everything returns to the snapshot, with the
	// archived timestamps preserved.
	_, err = env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "extra.md"})
	require.NoError(t, err)
	require.NoError(t, env.workspace.DeleteFile(ctx, file.ID))

	restoredMeta, err := backup.Restore(ctx, archive)
	require.NoError(t, err)
	assert.Equal(t, meta.CreatedAt, restoredMeta.CreatedAt)

	files := env.workspace.Files(ctx)
	require.Len(t, files, 1)
	assert.Equal(t, file.ID, files[0].ID)
	assert.Equal(t, "# hello", files[0].Content)
	assert.Equal(t, file.CreatedAt, files[0].CreatedAt)
	assert.Equal(t, file.UpdatedAt, files[0].UpdatedAt)

	setting, err := env.settings.Get(ctx, "theme")
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.Equal(t, "dark", setting.Value)
}

func TestRestoreRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	backup := newBackupService(t, env)
	ctx := context.Background()

	_, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "keep.md"})
	require.NoError(t, err)

	_, err = backup.Restore(ctx, []byte("not a zip"))
	require.Error(t, err)

	// Existing data survived the failed restore.
	assert.Len(t, env.workspace.Files(ctx), 1)
}

func TestRestoreRejectsMissingSections(t *testing.T) {
	env := newTestEnv(t)
	backup := newBackupService(t, env)
	ctx := context.Background()

	_, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "keep.md"})
	require.NoError(t, err)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("readme.md")
	require.NoError(t, err)
	_, err = fw.Write([]byte("just a plain zip"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = backup.Restore(ctx, buf.Bytes())
	appCode, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorBackupInvalid.Code(), appCode.Code())

	assert.Len(t, env.workspace.Files(ctx), 1)
}

func TestRestoreRejectsWrongVersion(t *testing.T) {
	env := newTestEnv(t)
	backup := newBackupService(t, env)
	ctx := context.Background()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	meta, err := w.Create("_backup_metadata.json")
	require.NoError(t, err)
	_, err = meta.Write([]byte(`{"version":99,"createdAt":"2026-01-01T00:00:00Z","fileCount":0,"folderCount":0}`))
	require.NoError(t, err)
	for _, name := range []string{"_data/files.json", "_data/folders.json"} {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("[]"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	_, err = backup.Restore(ctx, buf.Bytes())
	appCode, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorBackupVersion.Code(), appCode.Code())
}

func TestSnapshotLifecycle(t *testing.T) {
	env := newTestEnv(t)
	backup := newBackupService(t, env)
	ctx := context.Background()

	_, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "note.md"})
	require.NoError(t, err)

	assert.False(t, backup.SnapshotPending())

	path, err := backup.CreateSnapshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	snapshots, err := backup.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Greater(t, snapshots[0].Size, int64(0))
}
