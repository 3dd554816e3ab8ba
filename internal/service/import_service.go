package service

import (
	"archive/zip"
	"bytes"
	"context"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/internal/dto"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"
	"github.com/haierkeys/markdown-workspace-service/pkg/logger"
	"github.com/haierkeys/markdown-workspace-service/pkg/util"

	"go.uber.org/zap"
)

// ImportService ingests a plain zip of markdown files into the workspace,
// recreating the directory structure as folders. Existing data is untouched;
// everything lands in one transaction.
type ImportService interface {
	Import(ctx context.Context, archive []byte) (*dto.ImportResultDTO, error)
}

type importService struct {
	workspaceRepo domain.WorkspaceRepository
	workspace     WorkspaceService
	logger        *zap.Logger
}

func NewImportService(workspaceRepo domain.WorkspaceRepository, workspace WorkspaceService, lg *zap.Logger) ImportService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &importService{workspaceRepo: workspaceRepo, workspace: workspace, logger: lg}
}

var importableExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

type importEntry struct {
	segments []string
	isDir    bool
	file     *zip.File
}

func (s *importService) Import(ctx context.Context, archive []byte) (*dto.ImportResultDTO, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, code.ErrorImportInvalid.WithDetails(err.Error())
	}

	result := &dto.ImportResultDTO{}

	var entries []importEntry
	for _, f := range zr.File {
		isDir := strings.HasSuffix(f.Name, "/")
		segments := util.SplitArchivePath(f.Name)
		if segments == nil || util.SkipArchiveEntry(segments) {
			result.Skipped++
			continue
		}
		if !isDir && !importableExts[strings.ToLower(path.Ext(segments[len(segments)-1]))] {
			result.Skipped++
			continue
		}
		entries = append(entries, importEntry{segments: segments, isDir: isDir, file: f})
	}

	// Directories before files, shallow before deep, so every parent folder
	// exists by the time its children are placed.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].isDir != entries[j].isDir {
			return entries[i].isDir
		}
		return len(entries[i].segments) < len(entries[j].segments)
	})

	builder := newImportBuilder(s.workspace)
	for _, e := range entries {
		if e.isDir {
			builder.ensureFolder(e.segments)
			continue
		}
		content, err := util.ReadZipEntry(e.file)
		if err != nil {
			return nil, code.ErrorImportInvalid.WithDetails(err.Error())
		}
		builder.addFile(e.segments, string(content))
	}

	if len(builder.files) == 0 && len(builder.folders) == 0 {
		return result, nil
	}

	if err := s.workspaceRepo.BulkAdd(ctx, builder.files, builder.folders); err != nil {
		return nil, code.ErrorDBWrite.WithDetails(err.Error())
	}

	if err := s.workspace.Load(ctx); err != nil {
		return nil, err
	}

	result.FilesAdded = len(builder.files)
	result.FoldersAdded = len(builder.folders)
	s.logger.Info("archive imported",
		zap.Int(logger.FieldCount, result.FilesAdded+result.FoldersAdded),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// importBuilder accumulates new records, reusing one folder id per directory
// path and continuing sibling order from what the workspace already holds.
type importBuilder struct {
	workspace WorkspaceService
	now       int64

	folderByPath map[string]string
	orderNext    map[string]int

	files   []*domain.File
	folders []*domain.Folder
}

func newImportBuilder(workspace WorkspaceService) *importBuilder {
	return &importBuilder{
		workspace:    workspace,
		now:          time.Now().UnixMilli(),
		folderByPath: map[string]string{"": ""},
		orderNext:    map[string]int{},
	}
}

// nextOrder seeds each parent's counter from the live sibling count, so
// imported entries append after existing ones.
func (b *importBuilder) nextOrder(parentID string) int {
	if _, ok := b.orderNext[parentID]; !ok {
		count := 0
		ctx := context.Background()
		for _, f := range b.workspace.Files(ctx) {
			if f.ParentID == parentID {
				count++
			}
		}
		for _, f := range b.workspace.Folders(ctx) {
			if f.ParentID == parentID {
				count++
			}
		}
		b.orderNext[parentID] = count
	}
	order := b.orderNext[parentID]
	b.orderNext[parentID]++
	return order
}

func (b *importBuilder) ensureFolder(segments []string) string {
	parentID := ""
	for i := range segments {
		p := strings.Join(segments[:i+1], "/")
		if id, ok := b.folderByPath[p]; ok {
			parentID = id
			continue
		}
		id := util.GenerateID()
		b.folders = append(b.folders, &domain.Folder{
			ID:         id,
			Name:       segments[i],
			ParentID:   parentID,
			Order:      b.nextOrder(parentID),
			IsExpanded: true,
			CreatedAt:  b.now,
			UpdatedAt:  b.now,
		})
		b.folderByPath[p] = id
		parentID = id
	}
	return parentID
}

func (b *importBuilder) addFile(segments []string, content string) {
	parentID := b.ensureFolder(segments[:len(segments)-1])
	b.files = append(b.files, &domain.File{
		ID:        util.GenerateID(),
		Name:      segments[len(segments)-1],
		Content:   content,
		ParentID:  parentID,
		Order:     b.nextOrder(parentID),
		CreatedAt: b.now,
		UpdatedAt: b.now,
	})
}
