package dao

import (
	"context"

	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/internal/model"
	"github.com/haierkeys/markdown-workspace-service/pkg/metrics"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type workspaceRepository struct {
	*Dao
}

func NewWorkspaceRepository(d *Dao) domain.WorkspaceRepository {
	return &workspaceRepository{Dao: d}
}

// ReplaceAll swaps the entire workspace content in one transaction. Used by
// backup restore: validation happens before this is called, and a failure
// rolls back to the pre-restore state.
func (r *workspaceRepository) ReplaceAll(ctx context.Context, files []*domain.File, folders []*domain.Folder, settings []*domain.Setting) error {
	err := r.Dao.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.File{}).Error; err != nil {
			return errors.Wrap(err, "dao: clear files")
		}
		if err := tx.Where("1 = 1").Delete(&model.Folder{}).Error; err != nil {
			return errors.Wrap(err, "dao: clear folders")
		}
		if err := tx.Where("1 = 1").Delete(&model.Setting{}).Error; err != nil {
			return errors.Wrap(err, "dao: clear settings")
		}
		if err := insertAll(tx, files, folders); err != nil {
			return err
		}
		for _, s := range settings {
			if err := tx.Create(settingDomainToModel(s)).Error; err != nil {
				return errors.Wrap(err, "dao: restore setting")
			}
		}
		return nil
	})
	if err == nil {
		metrics.DurableWrites.WithLabelValues("workspace", "replace_all").Inc()
	}
	return err
}

// BulkAdd inserts imported records without touching existing rows.
func (r *workspaceRepository) BulkAdd(ctx context.Context, files []*domain.File, folders []*domain.Folder) error {
	err := r.Dao.Transaction(ctx, func(tx *gorm.DB) error {
		return insertAll(tx, files, folders)
	})
	if err == nil {
		metrics.DurableWrites.WithLabelValues("workspace", "bulk_add").Inc()
	}
	return err
}

func (r *workspaceRepository) Counts(ctx context.Context) (int64, int64, error) {
	var files int64
	if err := r.db.WithContext(ctx).Model(&model.File{}).Count(&files).Error; err != nil {
		return 0, 0, errors.Wrap(err, "dao: count files")
	}
	var folders int64
	if err := r.db.WithContext(ctx).Model(&model.Folder{}).Count(&folders).Error; err != nil {
		return 0, 0, errors.Wrap(err, "dao: count folders")
	}
	return files, folders, nil
}

func insertAll(tx *gorm.DB, files []*domain.File, folders []*domain.Folder) error {
	// Folders first so files never reference a parent the transaction has
	// not written yet.
	for _, f := range folders {
		if err := tx.Create(folderDomainToModel(f)).Error; err != nil {
			return errors.Wrap(err, "dao: insert folder")
		}
	}
	for _, f := range files {
		if err := tx.Create(fileDomainToModel(f)).Error; err != nil {
			return errors.Wrap(err, "dao: insert file")
		}
	}
	return nil
}
