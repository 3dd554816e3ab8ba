package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/internal/dto"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"
	"github.com/haierkeys/markdown-workspace-service/pkg/logger"
	"github.com/haierkeys/markdown-workspace-service/pkg/metrics"
	"github.com/haierkeys/markdown-workspace-service/pkg/timex"

	"go.uber.org/zap"
)

const (
	// BackupVersion is the only archive version Restore accepts.
	BackupVersion = 1

	backupMetadataName = "_backup_metadata.json"
	backupDataDir      = "_data/"

	// notifyDebounce batches change notifications before a snapshot is
	// marked pending.
	notifyDebounce = 30 * time.Second
)

// archiveFile/archiveFolder/archiveSetting are the _data/*.json records. The
// field names are part of the archive format.
type archiveFile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	ParentID  string `json:"parentId"`
	Order     int    `json:"order"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

type archiveFolder struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ParentID   string `json:"parentId"`
	Order      int    `json:"order"`
	IsExpanded bool   `json:"isExpanded"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

type archiveSetting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt int64  `json:"updatedAt"`
}

// BackupService creates and restores full workspace archives, and manages
// the scheduled snapshot directory.
type BackupService interface {
	// Create writes a backup archive and returns its metadata.
	Create(ctx context.Context) ([]byte, *dto.BackupMetadata, error)

	// Restore replaces the whole workspace with the archive content. The
	// archive is fully validated before anything is touched.
	Restore(ctx context.Context, archive []byte) (*dto.BackupMetadata, error)

	// NotifyUpdated marks the workspace changed; after a quiet period the
	// next scheduled snapshot run will write an archive.
	NotifyUpdated()

	// SnapshotPending reports whether changes accumulated since the last
	// snapshot.
	SnapshotPending() bool

	// CreateSnapshot writes a backup archive into the snapshot directory
	// and prunes old ones past the retention count.
	CreateSnapshot(ctx context.Context) (string, error)

	// ListSnapshots lists archives in the snapshot directory, newest first.
	ListSnapshots(ctx context.Context) ([]*dto.SnapshotDTO, error)
}

type backupService struct {
	fileRepo      domain.FileRepository
	folderRepo    domain.FolderRepository
	settingRepo   domain.SettingRepository
	workspaceRepo domain.WorkspaceRepository
	workspace     WorkspaceService
	logger        *zap.Logger

	snapshotDir string
	retention   int

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
}

func NewBackupService(
	fileRepo domain.FileRepository,
	folderRepo domain.FolderRepository,
	settingRepo domain.SettingRepository,
	workspaceRepo domain.WorkspaceRepository,
	workspace WorkspaceService,
	snapshotDir string,
	retention int,
	lg *zap.Logger,
) BackupService {
	if retention <= 0 {
		retention = 10
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &backupService{
		fileRepo:      fileRepo,
		folderRepo:    folderRepo,
		settingRepo:   settingRepo,
		workspaceRepo: workspaceRepo,
		workspace:     workspace,
		snapshotDir:   snapshotDir,
		retention:     retention,
		logger:        lg,
	}
}

func (s *backupService) Create(ctx context.Context) ([]byte, *dto.BackupMetadata, error) {
	files, err := s.fileRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
	}
	folders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
	}
	settings, err := s.settingRepo.List(ctx)
	if err != nil {
		return nil, nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
	}

	meta := &dto.BackupMetadata{
		Version:     BackupVersion,
		CreatedAt:   time.Now().Format(time.RFC3339),
		FileCount:   len(files),
		FolderCount: len(folders),
	}

	archiveFiles := make([]archiveFile, 0, len(files))
	for _, f := range files {
		archiveFiles = append(archiveFiles, archiveFile(*f))
	}
	archiveFolders := make([]archiveFolder, 0, len(folders))
	for _, f := range folders {
		archiveFolders = append(archiveFolders, archiveFolder(*f))
	}
	archiveSettings := make([]archiveSetting, 0, len(settings))
	for _, st := range settings {
		archiveSettings = append(archiveSettings, archiveSetting(*st))
	}

	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
	}
	filesJSON, err := json.MarshalIndent(archiveFiles, "", "  ")
	if err != nil {
		return nil, nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
	}
	foldersJSON, err := json.MarshalIndent(archiveFolders, "", "  ")
	if err != nil {
		return nil, nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
	}
	settingsJSON, err := json.MarshalIndent(archiveSettings, "", "  ")
	if err != nil {
		return nil, nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	entries := map[string][]byte{
		backupMetadataName:              metaJSON,
		backupDataDir + "files.json":    filesJSON,
		backupDataDir + "folders.json":  foldersJSON,
		backupDataDir + "settings.json": settingsJSON,
	}
	// Readable mirror: each document at its tree path, for inspection
	// without the service.
	for path, content := range readableMirror(files, folders) {
		entries[path] = content
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			return nil, nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
		}
		if _, err := fw.Write(entries[name]); err != nil {
			return nil, nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
		}
	}
	if err := w.Close(); err != nil {
		return nil, nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
	}

	metrics.BackupsCreated.WithLabelValues("manual").Inc()
	s.logger.Info("backup created",
		zap.Int(logger.FieldCount, len(files)+len(folders)))
	return buf.Bytes(), meta, nil
}

func (s *backupService) Restore(ctx context.Context, archive []byte) (*dto.BackupMetadata, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, code.ErrorBackupInvalid.WithDetails(err.Error())
	}

	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		byName[f.Name] = f
	}

	// Validate everything before touching the store: missing sections or a
	// bad version must leave current data intact.
	metaEntry, ok := byName[backupMetadataName]
	if !ok {
		return nil, code.ErrorBackupInvalid.WithDetails("missing " + backupMetadataName)
	}
	var meta dto.BackupMetadata
	if err := readJSONEntry(metaEntry, &meta); err != nil {
		return nil, code.ErrorBackupInvalid.WithDetails(err.Error())
	}
	if meta.Version != BackupVersion {
		return nil, code.ErrorBackupVersion.WithDetails(fmt.Sprintf("version %d", meta.Version))
	}

	filesEntry, ok := byName[backupDataDir+"files.json"]
	if !ok {
		return nil, code.ErrorBackupInvalid.WithDetails("missing " + backupDataDir + "files.json")
	}
	foldersEntry, ok := byName[backupDataDir+"folders.json"]
	if !ok {
		return nil, code.ErrorBackupInvalid.WithDetails("missing " + backupDataDir + "folders.json")
	}

	var archiveFiles []archiveFile
	if err := readJSONEntry(filesEntry, &archiveFiles); err != nil {
		return nil, code.ErrorBackupInvalid.WithDetails(err.Error())
	}
	var archiveFolders []archiveFolder
	if err := readJSONEntry(foldersEntry, &archiveFolders); err != nil {
		return nil, code.ErrorBackupInvalid.WithDetails(err.Error())
	}
	var archiveSettings []archiveSetting
	if settingsEntry, ok := byName[backupDataDir+"settings.json"]; ok {
		if err := readJSONEntry(settingsEntry, &archiveSettings); err != nil {
			return nil, code.ErrorBackupInvalid.WithDetails(err.Error())
		}
	}

	files := make([]*domain.File, 0, len(archiveFiles))
	for _, f := range archiveFiles {
		d := domain.File(f)
		files = append(files, &d)
	}
	folders := make([]*domain.Folder, 0, len(archiveFolders))
	for _, f := range archiveFolders {
		d := domain.Folder(f)
		folders = append(folders, &d)
	}
	settings := make([]*domain.Setting, 0, len(archiveSettings))
	for _, st := range archiveSettings {
		d := domain.Setting(st)
		settings = append(settings, &d)
	}

	if err := s.workspaceRepo.ReplaceAll(ctx, files, folders, settings); err != nil {
		return nil, code.ErrorDBWrite.WithDetails(err.Error())
	}

	if err := s.workspace.Load(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("backup restored",
		zap.Int(logger.FieldCount, len(files)+len(folders)))
	return &meta, nil
}

func (s *backupService) NotifyUpdated() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(notifyDebounce, func() {
		s.mu.Lock()
		s.pending = true
		s.mu.Unlock()
	})
}

func (s *backupService) SnapshotPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *backupService) CreateSnapshot(ctx context.Context) (string, error) {
	if s.snapshotDir == "" {
		return "", code.ErrorBackupCreateFail.WithDetails("snapshot directory not configured")
	}
	if err := os.MkdirAll(s.snapshotDir, 0o755); err != nil {
		return "", code.ErrorBackupCreateFail.WithDetails(err.Error())
	}

	archive, _, err := s.Create(ctx)
	if err != nil {
		return "", err
	}

	name := "backup-" + time.Now().Format("20060102-150405") + ".zip"
	path := filepath.Join(s.snapshotDir, name)
	if err := os.WriteFile(path, archive, 0o644); err != nil {
		return "", code.ErrorBackupCreateFail.WithDetails(err.Error())
	}

	s.mu.Lock()
	s.pending = false
	s.mu.Unlock()

	metrics.BackupsCreated.WithLabelValues("snapshot").Inc()
	s.logger.Info("snapshot written", zap.String(logger.FieldPath, path))

	if err := s.pruneSnapshots(); err != nil {
		s.logger.Warn("snapshot prune failed", zap.Error(err))
	}
	return path, nil
}

func (s *backupService) ListSnapshots(ctx context.Context) ([]*dto.SnapshotDTO, error) {
	entries, err := os.ReadDir(s.snapshotDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, code.ErrorBackupCreateFail.WithDetails(err.Error())
	}

	var res []*dto.SnapshotDTO
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		res = append(res, &dto.SnapshotDTO{
			Name:      e.Name(),
			Size:      info.Size(),
			CreatedAt: timex.Time(info.ModTime()),
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name > res[j].Name })
	return res, nil
}

// pruneSnapshots keeps the newest retention archives.
func (s *backupService) pruneSnapshots() error {
	snapshots, err := s.ListSnapshots(context.Background())
	if err != nil {
		return err
	}
	for i := s.retention; i < len(snapshots); i++ {
		if err := os.Remove(filepath.Join(s.snapshotDir, snapshots[i].Name)); err != nil {
			return err
		}
	}
	return nil
}

// readableMirror lays the documents out as a directory tree keyed by the
// parent chain; files under a missing folder land at the root.
func readableMirror(files []*domain.File, folders []*domain.Folder) map[string][]byte {
	paths := folderPaths(folders)
	out := make(map[string][]byte, len(files))
	used := map[string]bool{}

	for _, f := range files {
		dir := paths[f.ParentID]
		name := f.Name
		if name == "" {
			name = f.ID
		}
		path := name
		if dir != "" {
			path = dir + "/" + name
		}
		// Duplicate names in one folder get the id as a disambiguator.
		if used[path] {
			ext := filepath.Ext(path)
			path = strings.TrimSuffix(path, ext) + "_" + f.ID + ext
		}
		used[path] = true
		out[path] = []byte(f.Content)
	}
	return out
}

// folderPaths maps folder id to its slash path, walking parent chains.
// Cycles and missing parents terminate at the root.
func folderPaths(folders []*domain.Folder) map[string]string {
	byID := make(map[string]*domain.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	paths := map[string]string{"": ""}
	var resolve func(id string, seen map[string]bool) string
	resolve = func(id string, seen map[string]bool) string {
		if p, ok := paths[id]; ok {
			return p
		}
		f, ok := byID[id]
		if !ok || seen[id] {
			return ""
		}
		seen[id] = true
		parent := resolve(f.ParentID, seen)
		p := f.Name
		if parent != "" {
			p = parent + "/" + f.Name
		}
		paths[id] = p
		return p
	}
	for _, f := range folders {
		resolve(f.ID, map[string]bool{})
	}
	return paths
}

func readJSONEntry(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return json.NewDecoder(rc).Decode(v)
}
