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

type fileRepository struct {
	*Dao
}

func NewFileRepository(d *Dao) domain.FileRepository {
	return &fileRepository{Dao: d}
}

func (r *fileRepository) GetByID(ctx context.Context, id string) (*domain.File, error) {
	var m model.File
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "dao: get file by id")
	}
	return fileModelToDomain(&m), nil
}

func (r *fileRepository) ListAll(ctx context.Context) ([]*domain.File, error) {
	var ms []*model.File
	if err := r.db.WithContext(ctx).Find(&ms).Error; err != nil {
		return nil, errors.Wrap(err, "dao: list files")
	}
	res := make([]*domain.File, 0, len(ms))
	for _, m := range ms {
		res = append(res, fileModelToDomain(m))
	}
	return res, nil
}

func (r *fileRepository) ListByParent(ctx context.Context, parentID string) ([]*domain.File, error) {
	var ms []*model.File
	if err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Find(&ms).Error; err != nil {
		return nil, errors.Wrap(err, "dao: list files by parent")
	}
	res := make([]*domain.File, 0, len(ms))
	for _, m := range ms {
		res = append(res, fileModelToDomain(m))
	}
	return res, nil
}

func (r *fileRepository) Create(ctx context.Context, file *domain.File) (*domain.File, error) {
	var result *domain.File
	err := r.Dao.ExecuteWrite(ctx, func(db *gorm.DB) error {
		m := fileDomainToModel(file)
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
			return errors.Wrap(err, "dao: create file")
		}
		result = fileModelToDomain(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.DurableWrites.WithLabelValues("file", "create").Inc()
	return result, nil
}

func (r *fileRepository) Update(ctx context.Context, id string, changes domain.FileChanges, updatedAt int64) error {
	err := r.Dao.ExecuteWrite(ctx, func(db *gorm.DB) error {
		updates := map[string]interface{}{
			"updated_at": updatedAt,
		}
		if changes.Name != nil {
			updates["name"] = *changes.Name
		}
		if changes.Content != nil {
			updates["content"] = *changes.Content
		}
		if changes.ParentID != nil {
			updates["parent_id"] = *changes.ParentID
		}
		if changes.Order != nil {
			updates["sort_order"] = *changes.Order
		}
		// Missing ids update zero rows, which is the contract.
		err := db.Model(&model.File{}).Where("id = ?", id).Updates(updates).Error
		return errors.Wrap(err, "dao: update file")
	})
	if err == nil {
		metrics.DurableWrites.WithLabelValues("file", "update").Inc()
	}
	return err
}

func (r *fileRepository) Delete(ctx context.Context, id string) error {
	err := r.Dao.ExecuteWrite(ctx, func(db *gorm.DB) error {
		err := db.Where("id = ?", id).Delete(&model.File{}).Error
		return errors.Wrap(err, "dao: delete file")
	})
	if err == nil {
		metrics.DurableWrites.WithLabelValues("file", "delete").Inc()
	}
	return err
}

// siblingCount counts files and folders under one parent; new records take
// this as their default order so they land at the end of their group.
func siblingCount(db *gorm.DB, parentID string) (int, error) {
	var files int64
	if err := db.Model(&model.File{}).Where("parent_id = ?", parentID).Count(&files).Error; err != nil {
		return 0, errors.Wrap(err, "dao: count file siblings")
	}
	var folders int64
	if err := db.Model(&model.Folder{}).Where("parent_id = ?", parentID).Count(&folders).Error; err != nil {
		return 0, errors.Wrap(err, "dao: count folder siblings")
	}
	return int(files + folders), nil
}

func fileModelToDomain(m *model.File) *domain.File {
	if m == nil {
		return nil
	}
	return &domain.File{
		ID:        m.ID,
		Name:      m.Name,
		Content:   m.Content,
		ParentID:  m.ParentID,
		Order:     m.Order,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fileDomainToModel(d *domain.File) *model.File {
	if d == nil {
		return nil
	}
	return &model.File{
		ID:        d.ID,
		Name:      d.Name,
		Content:   d.Content,
		ParentID:  d.ParentID,
		Order:     d.Order,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
