package dao

import (
	"context"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/internal/model"
	"github.com/haierkeys/markdown-workspace-service/pkg/metrics"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingRepository struct {
	*Dao
}

func NewSettingRepository(d *Dao) domain.SettingRepository {
	return &settingRepository{Dao: d}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var m model.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "dao: get setting")
	}
	return settingModelToDomain(&m), nil
}

func (r *settingRepository) List(ctx context.Context) ([]*domain.Setting, error) {
	var ms []*model.Setting
	if err := r.db.WithContext(ctx).Find(&ms).Error; err != nil {
		return nil, errors.Wrap(err, "dao: list settings")
	}
	res := make([]*domain.Setting, 0, len(ms))
	for _, m := range ms {
		res = append(res, settingModelToDomain(m))
	}
	return res, nil
}

// Set upserts by primary key.
func (r *settingRepository) Set(ctx context.Context, setting *domain.Setting) error {
	err := r.Dao.ExecuteWrite(ctx, func(db *gorm.DB) error {
		m := settingDomainToModel(setting)
		if m.UpdatedAt == 0 {
			m.UpdatedAt = time.Now().UnixMilli()
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(m).Error
		return errors.Wrap(err, "dao: set setting")
	})
	if err == nil {
		metrics.DurableWrites.WithLabelValues("setting", "set").Inc()
	}
	return err
}

func (r *settingRepository) Delete(ctx context.Context, key string) error {
	err := r.Dao.ExecuteWrite(ctx, func(db *gorm.DB) error {
		err := db.Where("key = ?", key).Delete(&model.Setting{}).Error
		return errors.Wrap(err, "dao: delete setting")
	})
	if err == nil {
		metrics.DurableWrites.WithLabelValues("setting", "delete").Inc()
	}
	return err
}

func settingModelToDomain(m *model.Setting) *domain.Setting {
	if m == nil {
		return nil
	}
	return &domain.Setting{
		Key:       m.Key,
		Value:     m.Value,
		UpdatedAt: m.UpdatedAt,
	}
}

func settingDomainToModel(d *domain.Setting) *model.Setting {
	if d == nil {
		return nil
	}
	return &model.Setting{
		Key:       d.Key,
		Value:     d.Value,
		UpdatedAt: d.UpdatedAt,
	}
}
