package service

import (
	"archive/zip"
	"bytes"
	"context"

	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"
	"github.com/haierkeys/markdown-workspace-service/pkg/logger"

	"go.uber.org/zap"
)

// ExportService writes plain zip archives of the document tree: just the
// directory layout and markdown contents, no metadata sections. Good for
// taking content elsewhere, not for restoring.
type ExportService interface {
	// Export archives the whole workspace, or one folder's subtree when
	// folderID is set. A subtree export is rooted at that folder's name.
	Export(ctx context.Context, folderID string) ([]byte, string, error)
}

type exportService struct {
	fileRepo   domain.FileRepository
	folderRepo domain.FolderRepository
	logger     *zap.Logger
}

func NewExportService(fileRepo domain.FileRepository, folderRepo domain.FolderRepository, lg *zap.Logger) ExportService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &exportService{fileRepo: fileRepo, folderRepo: folderRepo, logger: lg}
}

func (s *exportService) Export(ctx context.Context, folderID string) ([]byte, string, error) {
	files, err := s.fileRepo.ListAll(ctx)
	if err != nil {
		return nil, "", code.ErrorExportFail.WithDetails(err.Error())
	}
	folders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, "", code.ErrorExportFail.WithDetails(err.Error())
	}

	name := "workspace"
	if folderID != "" {
		files, folders, name, err = subtree(files, folders, folderID)
		if err != nil {
			return nil, "", err
		}
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	paths := folderPaths(folders)
	// Directory entries first, so empty folders survive the round trip.
	for _, f := range folders {
		if p := paths[f.ID]; p != "" {
			if _, err := w.Create(p + "/"); err != nil {
				return nil, "", code.ErrorExportFail.WithDetails(err.Error())
			}
		}
	}
	for path, content := range readableMirror(files, folders) {
		fw, err := w.Create(path)
		if err != nil {
			return nil, "", code.ErrorExportFail.WithDetails(err.Error())
		}
		if _, err := fw.Write(content); err != nil {
			return nil, "", code.ErrorExportFail.WithDetails(err.Error())
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", code.ErrorExportFail.WithDetails(err.Error())
	}

	s.logger.Info("export created",
		zap.String(logger.FieldFolderID, folderID),
		zap.Int(logger.FieldCount, len(files)))
	return buf.Bytes(), name + ".zip", nil
}

// subtree narrows files and folders to one folder's closure. The root
// folder's parent is cleared so paths start at its name.
func subtree(files []*domain.File, folders []*domain.Folder, folderID string) ([]*domain.File, []*domain.Folder, string, error) {
	byID := make(map[string]*domain.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	root, ok := byID[folderID]
	if !ok {
		return nil, nil, "", code.ErrorFolderNotFound
	}

	keep := map[string]bool{folderID: true}
	ids := []string{folderID}
	for i := 0; i < len(ids); i++ {
		for _, f := range folders {
			if f.ParentID == ids[i] && !keep[f.ID] {
				keep[f.ID] = true
				ids = append(ids, f.ID)
			}
		}
	}

	var keptFolders []*domain.Folder
	for _, f := range folders {
		if !keep[f.ID] {
			continue
		}
		kept := *f
		if kept.ID == folderID {
			kept.ParentID = ""
		}
		keptFolders = append(keptFolders, &kept)
	}
	var keptFiles []*domain.File
	for _, f := range files {
		if keep[f.ParentID] {
			keptFiles = append(keptFiles, f)
		}
	}
	return keptFiles, keptFolders, root.Name, nil
}
