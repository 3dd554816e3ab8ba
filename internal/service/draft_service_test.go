package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/dao"
	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFileRepo counts durable content writes passing through Update.
type countingFileRepo struct {
	domain.FileRepository
	updates atomic.Int64
}

func (r *countingFileRepo) Update(ctx context.Context, id string, changes domain.FileChanges, updatedAt int64) error {
	r.updates.Add(1)
	return r.FileRepository.Update(ctx, id, changes, updatedAt)
}

type draftEnv struct {
	repo      *countingFileRepo
	workspace WorkspaceService
	drafts    DraftService
	fileID    string
}

func newDraftEnv(t *testing.T, delay time.Duration) *draftEnv {
	t.Helper()
	db, err := dao.NewDBEngine(dao.Database{Path: ":memory:"})
	require.NoError(t, err)
	d := dao.New(db, nil, nil)

	repo := &countingFileRepo{FileRepository: dao.NewFileRepository(d)}
	ws := NewWorkspaceService(repo, dao.NewFolderRepository(d), nil)
	require.NoError(t, ws.Load(context.Background()))

	created, err := ws.CreateFile(context.Background(), &dto.FileCreateRequest{Name: "note.md", Content: "v0"})
	require.NoError(t, err)

	drafts := NewDraftService(ws, delay, nil)
	ws.SetOnActivate(drafts.FileActivated)

	return &draftEnv{
		repo:      repo,
		workspace: ws,
		drafts:    drafts,
		fileID:    created.ID,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond())
}

func TestDraftDebounceCollapsesBurst(t *testing.T) {
	env := newDraftEnv(t, 40*time.Millisecond)
	ctx := context.Background()

	// A burst of edits inside the debounce window.
	for _, content := range []string{"v1", "v2", "v3"} {
		_, err := env.drafts.Edit(ctx, &dto.EditorEditRequest{FileID: env.fileID, Content: content})
		require.NoError(t, err)
	}

	waitFor(t, time.Second, func() bool {
		c, _ := env.workspace.PersistedContent(env.fileID)
		return c == "v3"
	})
	// Exactly one durable write for the whole burst.
	assert.Equal(t, int64(1), env.repo.updates.Load())

	state := env.drafts.State(ctx)
	assert.False(t, state.Dirty)
	assert.Equal(t, "v3", state.Content)
}

func TestDraftEditMissingFile(t *testing.T) {
	env := newDraftEnv(t, 40*time.Millisecond)
	_, err := env.drafts.Edit(context.Background(), &dto.EditorEditRequest{FileID: "nope", Content: "x"})
	assert.Error(t, err)
}

func TestDraftSwitchFlushesAndSeeds(t *testing.T) {
	env := newDraftEnv(t, time.Hour) // timer never fires on its own
	ctx := context.Background()

	other, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "other.md", Content: "other-v0"})
	require.NoError(t, err)
	require.NoError(t, env.workspace.SetActiveFile(ctx, env.fileID))

	_, err = env.drafts.Edit(ctx, &dto.EditorEditRequest{FileID: env.fileID, Content: "draft-a"})
	require.NoError(t, err)

	state, err := env.drafts.SwitchFile(ctx, other.ID)
	require.NoError(t, err)

	// The pending draft was flushed before the switch.
	persisted, _ := env.workspace.PersistedContent(env.fileID)
	assert.Equal(t, "draft-a", persisted)

	// The new file's state is seeded from its persisted content, not from
	// the other file's draft.
	assert.Equal(t, other.ID, state.ActiveFileID)
	assert.Equal(t, "other-v0", state.Content)
	assert.False(t, state.Dirty)
}

func TestDraftCreateWhileDirtyFlushes(t *testing.T) {
	env := newDraftEnv(t, time.Hour) // timer never fires on its own
	ctx := context.Background()

	_, err := env.drafts.Edit(ctx, &dto.EditorEditRequest{FileID: env.fileID, Content: "pending"})
	require.NoError(t, err)

	created, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "fresh.md", Content: ""})
	require.NoError(t, err)

	// Creating a file activates it; the old file's draft is flushed on the
	// way out, so the coordinator starts clean on the new file.
	persisted, _ := env.workspace.PersistedContent(env.fileID)
	assert.Equal(t, "pending", persisted)

	state := env.drafts.State(ctx)
	assert.Equal(t, created.ID, state.ActiveFileID)
	assert.False(t, state.Dirty)
	assert.Equal(t, "", state.Content)
}

func TestDraftNoCrossContamination(t *testing.T) {
	env := newDraftEnv(t, 40*time.Millisecond)
	ctx := context.Background()

	other, err := env.workspace.CreateFile(ctx, &dto.FileCreateRequest{Name: "other.md", Content: "other-v0"})
	require.NoError(t, err)

	// Edit file A, then immediately switch to editing file B; the timer
	// fire for B must not write A's draft into B or vice versa.
	_, err = env.drafts.Edit(ctx, &dto.EditorEditRequest{FileID: env.fileID, Content: "a-draft"})
	require.NoError(t, err)
	_, err = env.drafts.Edit(ctx, &dto.EditorEditRequest{FileID: other.ID, Content: "b-draft"})
	require.NoError(t, err)

	waitFor(t, time.Second, func() bool {
		c, _ := env.workspace.PersistedContent(other.ID)
		return c == "b-draft"
	})

	a, _ := env.workspace.PersistedContent(env.fileID)
	b, _ := env.workspace.PersistedContent(other.ID)
	assert.Equal(t, "b-draft", b)
	// A's edit was superseded by B's before A's timer fired; A's draft is
	// still held, its persisted content unchanged.
	assert.Equal(t, "v0", a)

	// A manual flush still lands A's own draft.
	require.NoError(t, env.drafts.Flush(ctx, env.fileID))
	a, _ = env.workspace.PersistedContent(env.fileID)
	assert.Equal(t, "a-draft", a)
}

func TestDraftModeSwitchFlushes(t *testing.T) {
	env := newDraftEnv(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, env.workspace.SetActiveFile(ctx, env.fileID))
	_, err := env.drafts.Edit(ctx, &dto.EditorEditRequest{FileID: env.fileID, Content: "mode-draft"})
	require.NoError(t, err)

	state, err := env.drafts.SetMode(ctx, EditorModeSource)
	require.NoError(t, err)
	assert.Equal(t, EditorModeSource, state.Mode)

	persisted, _ := env.workspace.PersistedContent(env.fileID)
	assert.Equal(t, "mode-draft", persisted)

	_, err = env.drafts.SetMode(ctx, "bogus")
	assert.Error(t, err)
}

func TestDraftCloseFlushesPending(t *testing.T) {
	env := newDraftEnv(t, time.Hour)
	ctx := context.Background()

	_, err := env.drafts.Edit(ctx, &dto.EditorEditRequest{FileID: env.fileID, Content: "close-draft"})
	require.NoError(t, err)

	require.NoError(t, env.drafts.Close(ctx))

	persisted, _ := env.workspace.PersistedContent(env.fileID)
	assert.Equal(t, "close-draft", persisted)

	// After close the coordinator refuses new edits.
	_, err = env.drafts.Edit(ctx, &dto.EditorEditRequest{FileID: env.fileID, Content: "late"})
	assert.Error(t, err)
}

func TestDraftForgetDropsDraft(t *testing.T) {
	env := newDraftEnv(t, time.Hour)
	ctx := context.Background()

	_, err := env.drafts.Edit(ctx, &dto.EditorEditRequest{FileID: env.fileID, Content: "doomed"})
	require.NoError(t, err)

	env.drafts.Forget(env.fileID)
	require.NoError(t, env.drafts.Flush(ctx, env.fileID))

	persisted, _ := env.workspace.PersistedContent(env.fileID)
	assert.Equal(t, "v0", persisted)
}

func TestDraftWordAndCharCount(t *testing.T) {
	env := newDraftEnv(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, env.workspace.SetActiveFile(ctx, env.fileID))
	state, err := env.drafts.Edit(ctx, &dto.EditorEditRequest{FileID: env.fileID, Content: "one two three"})
	require.NoError(t, err)

	assert.Equal(t, 3, state.WordCount)
	assert.Equal(t, 13, state.CharCount)
	assert.True(t, state.Dirty)
}
