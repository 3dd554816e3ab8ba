// Package service implements the business layer over the repositories.
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/internal/dto"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"
	"github.com/haierkeys/markdown-workspace-service/pkg/logger"
	"github.com/haierkeys/markdown-workspace-service/pkg/metrics"
	"github.com/haierkeys/markdown-workspace-service/pkg/timex"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// WorkspaceService keeps an in-memory mirror of the durable store and is the
// single mutation entry point for files and folders. Every mutation writes
// through: the repository call completes first, and only then does the
// mirror change, so a persistence failure leaves the mirror untouched.
type WorkspaceService interface {
	// Load refreshes the whole mirror from the durable store. Safe to call
	// repeatedly; concurrent calls are coalesced.
	Load(ctx context.Context) error

	Files(ctx context.Context) []*dto.FileDTO
	Folders(ctx context.Context) []*dto.FolderDTO
	Tree(ctx context.Context) []*domain.TreeNode
	FileByID(ctx context.Context, id string) (*dto.FileDTO, error)

	CreateFile(ctx context.Context, params *dto.FileCreateRequest) (*dto.FileDTO, error)
	UpdateFile(ctx context.Context, id string, params *dto.FileUpdateRequest) (*dto.FileDTO, error)
	DeleteFile(ctx context.Context, id string) error

	CreateFolder(ctx context.Context, params *dto.FolderCreateRequest) (*dto.FolderDTO, error)
	UpdateFolder(ctx context.Context, id string, params *dto.FolderUpdateRequest) (*dto.FolderDTO, error)
	DeleteFolder(ctx context.Context, id string) error
	ToggleFolderExpanded(ctx context.Context, id string) (*dto.FolderDTO, error)

	// SetActiveFile marks the file the editor is showing; "" clears it.
	SetActiveFile(ctx context.Context, id string) error
	ActiveFileID() string

	// PersistedContent reads a file's stored content from the mirror.
	PersistedContent(id string) (string, bool)

	// SetOnChange registers a callback fired after every successful
	// mutation; the snapshot scheduler uses it to mark backups pending.
	SetOnChange(fn func())

	// SetOnActivate registers a callback fired after CreateFile moves the
	// editor to the new file; it receives the previously active file id so
	// the draft coordinator can settle that file's pending state.
	SetOnActivate(fn func(prevFileID string))
}

type workspaceService struct {
	fileRepo   domain.FileRepository
	folderRepo domain.FolderRepository
	logger     *zap.Logger
	sf         singleflight.Group

	mu           sync.RWMutex
	files        map[string]*domain.File
	folders      map[string]*domain.Folder
	activeFileID string
	loaded       bool
	onChange     func()
	onActivate   func(prevFileID string)
}

func (s *workspaceService) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *workspaceService) SetOnActivate(fn func(prevFileID string)) {
	s.mu.Lock()
	s.onActivate = fn
	s.mu.Unlock()
}

func (s *workspaceService) notifyChange() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func NewWorkspaceService(fileRepo domain.FileRepository, folderRepo domain.FolderRepository, lg *zap.Logger) WorkspaceService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &workspaceService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		logger:     lg,
		files:      map[string]*domain.File{},
		folders:    map[string]*domain.Folder{},
	}
}

func (s *workspaceService) Load(ctx context.Context) error {
	_, err, _ := s.sf.Do("load", func() (interface{}, error) {
		files, err := s.fileRepo.ListAll(ctx)
		if err != nil {
			return nil, code.ErrorWorkspaceLoadFail.WithDetails(err.Error())
		}
		folders, err := s.folderRepo.ListAll(ctx)
		if err != nil {
			return nil, code.ErrorWorkspaceLoadFail.WithDetails(err.Error())
		}

		fileMap := make(map[string]*domain.File, len(files))
		for _, f := range files {
			fileMap[f.ID] = f
		}
		folderMap := make(map[string]*domain.Folder, len(folders))
		for _, f := range folders {
			folderMap[f.ID] = f
		}

		s.mu.Lock()
		s.files = fileMap
		s.folders = folderMap
		if _, ok := s.files[s.activeFileID]; !ok {
			s.activeFileID = ""
		}
		s.loaded = true
		s.mu.Unlock()

		metrics.WorkspaceLoads.Inc()
		s.logger.Info("workspace loaded",
			zap.Int(logger.FieldCount, len(files)+len(folders)))
		return nil, nil
	})
	return err
}

func (s *workspaceService) Files(ctx context.Context) []*dto.FileDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*dto.FileDTO, 0, len(s.files))
	for _, f := range s.files {
		res = append(res, fileToDTO(f))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *workspaceService) Folders(ctx context.Context) []*dto.FolderDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*dto.FolderDTO, 0, len(s.folders))
	for _, f := range s.folders {
		res = append(res, folderToDTO(f))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *workspaceService) Tree(ctx context.Context) []*domain.TreeNode {
	s.mu.RLock()
	files := make([]*domain.File, 0, len(s.files))
	for _, f := range s.files {
		files = append(files, f)
	}
	folders := make([]*domain.Folder, 0, len(s.folders))
	for _, f := range s.folders {
		folders = append(folders, f)
	}
	s.mu.RUnlock()

	// Map iteration order varies, so pre-sort for a stable forest.
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	sort.Slice(folders, func(i, j int) bool { return folders[i].ID < folders[j].ID })

	return domain.BuildTree(files, folders)
}

func (s *workspaceService) FileByID(ctx context.Context, id string) (*dto.FileDTO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	if !ok {
		return nil, code.ErrorFileNotFound
	}
	return fileToDTO(f), nil
}

func (s *workspaceService) CreateFile(ctx context.Context, params *dto.FileCreateRequest) (*dto.FileDTO, error) {
	created, err := s.fileRepo.Create(ctx, &domain.File{
		Name:     params.Name,
		Content:  params.Content,
		ParentID: params.ParentID,
		Order:    -1,
	})
	if err != nil {
		return nil, code.ErrorDBWrite.WithDetails(err.Error())
	}

	s.mu.Lock()
	prev := s.activeFileID
	s.files[created.ID] = created
	// A freshly created file becomes the one being edited.
	s.activeFileID = created.ID
	fn := s.onActivate
	s.mu.Unlock()

	if fn != nil {
		fn(prev)
	}
	s.notifyChange()
	s.logger.Info("file created",
		zap.String(logger.FieldFileID, created.ID),
		zap.String(logger.FieldParentID, created.ParentID))
	return fileToDTO(created), nil
}

func (s *workspaceService) UpdateFile(ctx context.Context, id string, params *dto.FileUpdateRequest) (*dto.FileDTO, error) {
	s.mu.RLock()
	existing, ok := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return nil, code.ErrorFileNotFound
	}

	changes := domain.FileChanges{
		Name:     params.Name,
		Content:  params.Content,
		ParentID: params.ParentID,
		Order:    params.Order,
	}
	now := time.Now().UnixMilli()
	if err := s.fileRepo.Update(ctx, id, changes, now); err != nil {
		return nil, code.ErrorDBWrite.WithDetails(err.Error())
	}

	s.mu.Lock()
	updated := *existing
	if changes.Name != nil {
		updated.Name = *changes.Name
	}
	if changes.Content != nil {
		updated.Content = *changes.Content
	}
	if changes.ParentID != nil {
		updated.ParentID = *changes.ParentID
	}
	if changes.Order != nil {
		updated.Order = *changes.Order
	}
	updated.UpdatedAt = now
	s.files[id] = &updated
	s.mu.Unlock()

	s.notifyChange()
	return fileToDTO(&updated), nil
}

func (s *workspaceService) DeleteFile(ctx context.Context, id string) error {
	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return code.ErrorDBWrite.WithDetails(err.Error())
	}

	s.mu.Lock()
	delete(s.files, id)
	if s.activeFileID == id {
		s.activeFileID = ""
	}
	s.mu.Unlock()

	s.notifyChange()
	s.logger.Info("file deleted", zap.String(logger.FieldFileID, id))
	return nil
}

func (s *workspaceService) CreateFolder(ctx context.Context, params *dto.FolderCreateRequest) (*dto.FolderDTO, error) {
	created, err := s.folderRepo.Create(ctx, &domain.Folder{
		Name:       params.Name,
		ParentID:   params.ParentID,
		Order:      -1,
		IsExpanded: true,
	})
	if err != nil {
		return nil, code.ErrorDBWrite.WithDetails(err.Error())
	}

	s.mu.Lock()
	s.folders[created.ID] = created
	s.mu.Unlock()

	s.notifyChange()
	s.logger.Info("folder created",
		zap.String(logger.FieldFolderID, created.ID),
		zap.String(logger.FieldParentID, created.ParentID))
	return folderToDTO(created), nil
}

func (s *workspaceService) UpdateFolder(ctx context.Context, id string, params *dto.FolderUpdateRequest) (*dto.FolderDTO, error) {
	s.mu.RLock()
	existing, ok := s.folders[id]
	var cycle bool
	if ok && params.ParentID != nil {
		cycle = s.wouldCreateCycleLocked(id, *params.ParentID)
	}
	s.mu.RUnlock()
	if !ok {
		return nil, code.ErrorFolderNotFound
	}
	if cycle {
		return nil, code.ErrorFolderCycle
	}

	changes := domain.FolderChanges{
		Name:       params.Name,
		ParentID:   params.ParentID,
		Order:      params.Order,
		IsExpanded: params.IsExpanded,
	}
	now := time.Now().UnixMilli()
	if err := s.folderRepo.Update(ctx, id, changes, now); err != nil {
		return nil, code.ErrorDBWrite.WithDetails(err.Error())
	}

	s.mu.Lock()
	updated := *existing
	if changes.Name != nil {
		updated.Name = *changes.Name
	}
	if changes.ParentID != nil {
		updated.ParentID = *changes.ParentID
	}
	if changes.Order != nil {
		updated.Order = *changes.Order
	}
	if changes.IsExpanded != nil {
		updated.IsExpanded = *changes.IsExpanded
	}
	updated.UpdatedAt = now
	s.folders[id] = &updated
	s.mu.Unlock()

	s.notifyChange()
	return folderToDTO(&updated), nil
}

// wouldCreateCycleLocked walks up from newParentID through the mirror; the
// move is rejected when the walk reaches the folder being moved. Caller
// holds at least the read lock.
func (s *workspaceService) wouldCreateCycleLocked(id, newParentID string) bool {
	if newParentID == id {
		return true
	}
	seen := map[string]bool{}
	cur := newParentID
	for cur != "" && !seen[cur] {
		seen[cur] = true
		parent, ok := s.folders[cur]
		if !ok {
			return false
		}
		if parent.ParentID == id {
			return true
		}
		cur = parent.ParentID
	}
	return false
}

func (s *workspaceService) DeleteFolder(ctx context.Context, id string) error {
	// The descendant closure comes from the mirror before the durable
	// delete, so the mirror prune matches what the transaction removed.
	s.mu.RLock()
	_, ok := s.folders[id]
	folderIDs, fileIDs := s.descendantClosureLocked(id)
	s.mu.RUnlock()
	if !ok {
		return code.ErrorFolderNotFound
	}

	if err := s.folderRepo.DeleteRecursive(ctx, id); err != nil {
		return code.ErrorDBWrite.WithDetails(err.Error())
	}

	s.mu.Lock()
	for _, fid := range folderIDs {
		delete(s.folders, fid)
	}
	for _, fid := range fileIDs {
		delete(s.files, fid)
		if s.activeFileID == fid {
			s.activeFileID = ""
		}
	}
	s.mu.Unlock()

	s.notifyChange()
	s.logger.Info("folder deleted",
		zap.String(logger.FieldFolderID, id),
		zap.Int(logger.FieldCount, len(folderIDs)+len(fileIDs)))
	return nil
}

// descendantClosureLocked returns the folder ids (including id) and file ids
// removed by a recursive delete. Caller holds at least the read lock.
func (s *workspaceService) descendantClosureLocked(id string) ([]string, []string) {
	folderIDs := []string{id}
	for i := 0; i < len(folderIDs); i++ {
		for _, f := range s.folders {
			if f.ParentID == folderIDs[i] && f.ID != folderIDs[i] {
				folderIDs = append(folderIDs, f.ID)
			}
		}
	}
	inClosure := make(map[string]bool, len(folderIDs))
	for _, fid := range folderIDs {
		inClosure[fid] = true
	}
	var fileIDs []string
	for _, f := range s.files {
		if inClosure[f.ParentID] {
			fileIDs = append(fileIDs, f.ID)
		}
	}
	return folderIDs, fileIDs
}

func (s *workspaceService) ToggleFolderExpanded(ctx context.Context, id string) (*dto.FolderDTO, error) {
	s.mu.RLock()
	existing, ok := s.folders[id]
	var next bool
	if ok {
		next = !existing.IsExpanded
	}
	s.mu.RUnlock()
	if !ok {
		return nil, code.ErrorFolderNotFound
	}

	return s.UpdateFolder(ctx, id, &dto.FolderUpdateRequest{IsExpanded: &next})
}

func (s *workspaceService) SetActiveFile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if _, ok := s.files[id]; !ok {
			return code.ErrorFileNotFound
		}
	}
	s.activeFileID = id
	return nil
}

func (s *workspaceService) ActiveFileID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeFileID
}

func (s *workspaceService) PersistedContent(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	if !ok {
		return "", false
	}
	return f.Content, true
}

func fileToDTO(f *domain.File) *dto.FileDTO {
	if f == nil {
		return nil
	}
	return &dto.FileDTO{
		ID:          f.ID,
		Name:        f.Name,
		Content:     f.Content,
		ParentID:    f.ParentID,
		Order:       f.Order,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		CreatedTime: timex.FromUnixMilli(f.CreatedAt),
		UpdatedTime: timex.FromUnixMilli(f.UpdatedAt),
	}
}

func folderToDTO(f *domain.Folder) *dto.FolderDTO {
	if f == nil {
		return nil
	}
	return &dto.FolderDTO{
		ID:          f.ID,
		Name:        f.Name,
		ParentID:    f.ParentID,
		Order:       f.Order,
		IsExpanded:  f.IsExpanded,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		CreatedTime: timex.FromUnixMilli(f.CreatedAt),
		UpdatedTime: timex.FromUnixMilli(f.UpdatedAt),
	}
}
