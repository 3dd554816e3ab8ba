package dao

import (
	"context"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/internal/model"
	"github.com/haierkeys/markdown-workspace-service/pkg/metrics"
	"github.com/haierkeys/markdown-workspace-service/pkg/util"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type folderRepository struct {
	*Dao
}

func NewFolderRepository(d *Dao) domain.FolderRepository {
	return &folderRepository{Dao: d}
}

func (r *folderRepository) GetByID(ctx context.Context, id string) (*domain.Folder, error) {
	var m model.Folder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "dao: get folder by id")
	}
	return folderModelToDomain(&m), nil
}

func (r *folderRepository) ListAll(ctx context.Context) ([]*domain.Folder, error) {
	var ms []*model.Folder
	if err := r.db.WithContext(ctx).Find(&ms).Error; err != nil {
		return nil, errors.Wrap(err, "dao: list folders")
	}
	res := make([]*domain.Folder, 0, len(ms))
	for _, m := range ms {
		res = append(res, folderModelToDomain(m))
	}
	return res, nil
}

func (r *folderRepository) ListByParent(ctx context.Context, parentID string) ([]*domain.Folder, error) {
	var ms []*model.Folder
	if err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Find(&ms).Error; err != nil {
		return nil, errors.Wrap(err, "dao: list folders by parent")
	}
	res := make([]*domain.Folder, 0, len(ms))
	for _, m := range ms {
		res = append(res, folderModelToDomain(m))
	}
	return res, nil
}

func (r *folderRepository) Create(ctx context.Context, folder *domain.Folder) (*domain.Folder, error) {
	var result *domain.Folder
	err := r.Dao.ExecuteWrite(ctx, func(db *gorm.DB) error {
		m := folderDomainToModel(folder)
		if m.ID == "" {
			m.ID = util.GenerateID()
		}
		now := time.Now().UnixMilli()
		if m.CreatedAt == 0 {
			m.CreatedAt = now
		}
		if m.UpdatedAt == 0 {
			m.UpdatedAt = now
		}
		if m.Order < 0 {
			count, err := siblingCount(db, m.ParentID)
			if err != nil {
				return err
			}
			m.Order = count
		}
		if err := db.Create(m).Error; err != nil {
			return errors.Wrap(err, "dao: create folder")
		}
		result = folderModelToDomain(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.DurableWrites.WithLabelValues("folder", "create").Inc()
	return result, nil
}

func (r *folderRepository) Update(ctx context.Context, id string, changes domain.FolderChanges, updatedAt int64) error {
	err := r.Dao.ExecuteWrite(ctx, func(db *gorm.DB) error {
		updates := map[string]interface{}{
			"updated_at": updatedAt,
		}
		if changes.Name != nil {
			updates["name"] = *changes.Name
		}
		if changes.ParentID != nil {
			updates["parent_id"] = *changes.ParentID
		}
		if changes.Order != nil {
			updates["sort_order"] = *changes.Order
		}
		if changes.IsExpanded != nil {
			updates["is_expanded"] = *changes.IsExpanded
		}
		err := db.Model(&model.Folder{}).Where("id = ?", id).Updates(updates).Error
		return errors.Wrap(err, "dao: update folder")
	})
	if err == nil {
		metrics.DurableWrites.WithLabelValues("folder", "update").Inc()
	}
	return err
}

// DeleteRecursive removes the folder, all descendant folders and their files
// in one transaction. Children go first so a failure cannot orphan rows.
func (r *folderRepository) DeleteRecursive(ctx context.Context, id string) error {
	err := r.Dao.Transaction(ctx, func(tx *gorm.DB) error {
		return deleteFolderTree(tx, id)
	})
	if err == nil {
		metrics.DurableWrites.WithLabelValues("folder", "delete_recursive").Inc()
	}
	return err
}

func deleteFolderTree(tx *gorm.DB, id string) error {
	var children []*model.Folder
	if err := tx.Where("parent_id = ?", id).Find(&children).Error; err != nil {
		return errors.Wrap(err, "dao: list child folders")
	}
	for _, child := range children {
		if err := deleteFolderTree(tx, child.ID); err != nil {
			return err
		}
	}
	if err := tx.Where("parent_id = ?", id).Delete(&model.File{}).Error; err != nil {
		return errors.Wrap(err, "dao: delete folder files")
	}
	if err := tx.Where("id = ?", id).Delete(&model.Folder{}).Error; err != nil {
		return errors.Wrap(err, "dao: delete folder")
	}
	return nil
}

func folderModelToDomain(m *model.Folder) *domain.Folder {
	if m == nil {
		return nil
	}
	return &domain.Folder{
		ID:         m.ID,
		Name:       m.Name,
		ParentID:   m.ParentID,
		Order:      m.Order,
		IsExpanded: m.IsExpanded,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func folderDomainToModel(d *domain.Folder) *model.Folder {
	if d == nil {
		return nil
	}
	return &model.Folder{
		ID:         d.ID,
		Name:       d.Name,
		ParentID:   d.ParentID,
		Order:      d.Order,
		IsExpanded: d.IsExpanded,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
