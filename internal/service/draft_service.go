package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/haierkeys/markdown-workspace-service/internal/dto"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"
	"github.com/haierkeys/markdown-workspace-service/pkg/logger"
	"github.com/haierkeys/markdown-workspace-service/pkg/metrics"

	"go.uber.org/zap"
)

const (
	EditorModeWysiwyg = "wysiwyg"
	EditorModeSource  = "source"

	// DefaultAutosaveDelay is the debounce window between the last edit and
	// the durable write.
	DefaultAutosaveDelay = 1000 * time.Millisecond

	flushTimeout = 10 * time.Second
)

// DraftService coordinates autosave. Edits land in a per-file draft map and
// a single debounce timer schedules the durable write; switching files,
// switching editor mode and shutdown all flush first, so at most one write
// per burst of edits reaches the store.
type DraftService interface {
	// Edit records new content for a file and re-arms the debounce timer.
	Edit(ctx context.Context, params *dto.EditorEditRequest) (*dto.EditorStateDTO, error)

	// Flush persists the draft of the given file now ("" means the active
	// file). A no-op when nothing is pending.
	Flush(ctx context.Context, fileID string) error

	// SwitchFile flushes the pending draft, then activates the target file
	// and returns its editor state, seeded from the draft when one is kept.
	SwitchFile(ctx context.Context, fileID string) (*dto.EditorStateDTO, error)

	// FileActivated reconciles the coordinator after the workspace
	// activated a freshly created file: the previously active file's
	// pending draft is flushed and the dirty flag is recomputed.
	FileActivated(prevFileID string)

	// SetMode flushes the pending draft, then switches wysiwyg/source.
	SetMode(ctx context.Context, mode string) (*dto.EditorStateDTO, error)

	// State reports the coordinator's view of the active file.
	State(ctx context.Context) *dto.EditorStateDTO

	// Forget drops a file's draft, for when the file is deleted.
	Forget(fileID string)

	// Close flushes whatever is pending and stops the timer.
	Close(ctx context.Context) error
}

type draftService struct {
	workspace WorkspaceService
	logger    *zap.Logger
	delay     time.Duration

	mu          sync.Mutex
	drafts      map[string]string
	dirty       bool
	mode        string
	timer       *time.Timer
	scheduledID string
	closed      bool
}

func NewDraftService(workspace WorkspaceService, delay time.Duration, lg *zap.Logger) DraftService {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &draftService{
		workspace: workspace,
		logger:    lg,
		delay:     delay,
		drafts:    map[string]string{},
		mode:      EditorModeWysiwyg,
	}
}

func (s *draftService) Edit(ctx context.Context, params *dto.EditorEditRequest) (*dto.EditorStateDTO, error) {
	if _, ok := s.workspace.PersistedContent(params.FileID); !ok {
		return nil, code.ErrorFileNotFound
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, code.ErrorServiceUnavailable
	}
	s.drafts[params.FileID] = params.Content
	if params.FileID == s.workspace.ActiveFileID() {
		s.dirty = true
	}

	// One timer for the whole coordinator: a new edit, even for another
	// file, replaces the scheduled write.
	if s.timer != nil {
		s.timer.Stop()
		metrics.AutosaveDebounces.Inc()
	}
	fileID := params.FileID
	s.scheduledID = fileID
	s.timer = time.AfterFunc(s.delay, func() {
		s.timerFire(fileID)
	})
	s.mu.Unlock()

	return s.State(ctx), nil
}

// timerFire persists the scheduled file's own draft. The draft is re-read
// under the lock, so a newer edit to the same file wins.
func (s *draftService) timerFire(fileID string) {
	s.mu.Lock()
	if s.closed || s.scheduledID != fileID {
		s.mu.Unlock()
		return
	}
	content, ok := s.drafts[fileID]
	s.scheduledID = ""
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := s.persist(ctx, fileID, content, "timer"); err != nil {
		s.logger.Error("autosave flush failed",
			zap.String(logger.FieldFileID, fileID),
			zap.Error(err))
		return
	}

	// Clear the dirty flag only when the flushed file is still the one
	// being edited; a switch in the meantime owns the flag now.
	s.mu.Lock()
	if s.workspace.ActiveFileID() == fileID && s.drafts[fileID] == content {
		s.dirty = false
	}
	s.mu.Unlock()
}

func (s *draftService) Flush(ctx context.Context, fileID string) error {
	if fileID == "" {
		fileID = s.workspace.ActiveFileID()
	}
	if fileID == "" {
		return nil
	}
	return s.flushFile(ctx, fileID, "manual")
}

// flushFile persists a file's draft if one is pending and cancels the timer
// when it was scheduled for that file.
func (s *draftService) flushFile(ctx context.Context, fileID, trigger string) error {
	s.mu.Lock()
	content, ok := s.drafts[fileID]
	if ok && s.scheduledID == fileID {
		if s.timer != nil {
			s.timer.Stop()
		}
		s.scheduledID = ""
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if persisted, exists := s.workspace.PersistedContent(fileID); exists && persisted == content {
		return nil
	}

	if err := s.persist(ctx, fileID, content, trigger); err != nil {
		return err
	}

	s.mu.Lock()
	if s.workspace.ActiveFileID() == fileID {
		s.dirty = false
	}
	s.mu.Unlock()
	return nil
}

func (s *draftService) persist(ctx context.Context, fileID, content, trigger string) error {
	if _, exists := s.workspace.PersistedContent(fileID); !exists {
		// Deleted while a draft was pending; nothing to write.
		return nil
	}
	if _, err := s.workspace.UpdateFile(ctx, fileID, &dto.FileUpdateRequest{Content: &content}); err != nil {
		return code.ErrorDraftFlushFail.WithDetails(err.Error())
	}
	metrics.AutosaveFlushes.WithLabelValues(trigger).Inc()
	s.logger.Debug("draft flushed",
		zap.String(logger.FieldFileID, fileID),
		zap.String(logger.FieldAction, trigger))
	return nil
}

func (s *draftService) SwitchFile(ctx context.Context, fileID string) (*dto.EditorStateDTO, error) {
	if _, ok := s.workspace.PersistedContent(fileID); !ok {
		return nil, code.ErrorFileNotFound
	}

	if active := s.workspace.ActiveFileID(); active != "" && active != fileID {
		if err := s.flushFile(ctx, active, "switch"); err != nil {
			return nil, err
		}
	}

	if err := s.workspace.SetActiveFile(ctx, fileID); err != nil {
		return nil, err
	}

	persisted, _ := s.workspace.PersistedContent(fileID)

	s.mu.Lock()
	// Drafts are kept across switches; re-entering a file with an unflushed
	// draft resumes from it.
	draft, hasDraft := s.drafts[fileID]
	s.dirty = hasDraft && draft != persisted
	s.mu.Unlock()

	return s.State(ctx), nil
}

// FileActivated runs via the workspace's activation hook when a newly
// created file takes over the editor. The file that was active gets the
// same flush a switch gives it, then dirty is recomputed for the new file.
func (s *draftService) FileActivated(prevFileID string) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if prevFileID != "" {
		if err := s.flushFile(ctx, prevFileID, "switch"); err != nil {
			s.logger.Error("autosave flush failed",
				zap.String(logger.FieldFileID, prevFileID),
				zap.Error(err))
		}
	}

	active := s.workspace.ActiveFileID()
	persisted, _ := s.workspace.PersistedContent(active)

	s.mu.Lock()
	draft, hasDraft := s.drafts[active]
	s.dirty = hasDraft && draft != persisted
	s.mu.Unlock()
}

func (s *draftService) SetMode(ctx context.Context, mode string) (*dto.EditorStateDTO, error) {
	if mode != EditorModeWysiwyg && mode != EditorModeSource {
		return nil, code.ErrorInvalidParams.WithDetails("mode must be wysiwyg or source")
	}

	if active := s.workspace.ActiveFileID(); active != "" {
		if err := s.flushFile(ctx, active, "mode"); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	return s.State(ctx), nil
}

func (s *draftService) State(ctx context.Context) *dto.EditorStateDTO {
	active := s.workspace.ActiveFileID()

	s.mu.Lock()
	mode := s.mode
	dirty := s.dirty
	content, hasDraft := s.drafts[active]
	s.mu.Unlock()

	if !hasDraft {
		content, _ = s.workspace.PersistedContent(active)
	}

	return &dto.EditorStateDTO{
		ActiveFileID: active,
		Mode:         mode,
		Dirty:        dirty,
		Content:      content,
		WordCount:    len(strings.Fields(content)),
		CharCount:    utf8.RuneCountInString(content),
	}
}

func (s *draftService) Forget(fileID string) {
	s.mu.Lock()
	delete(s.drafts, fileID)
	if s.scheduledID == fileID {
		if s.timer != nil {
			s.timer.Stop()
		}
		s.scheduledID = ""
	}
	if s.workspace.ActiveFileID() == fileID {
		s.dirty = false
	}
	s.mu.Unlock()
}

func (s *draftService) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.scheduledID = ""
	pending := make(map[string]string, len(s.drafts))
	for id, content := range s.drafts {
		pending[id] = content
	}
	s.drafts = map[string]string{}
	s.mu.Unlock()

	var firstErr error
	for id, content := range pending {
		if persisted, exists := s.workspace.PersistedContent(id); !exists || persisted == content {
			continue
		}
		if err := s.persist(ctx, id, content, "close"); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
