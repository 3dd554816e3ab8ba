// Package model defines the durable store tables.
package model

import (
	"gorm.io/gorm"
)

// File is a markdown document row. Timestamps are Unix milliseconds managed
// by the repositories; gorm auto-tracking is disabled so that restore keeps
// the archived values verbatim.
type File struct {
	ID        string `gorm:"column:id;primaryKey" json:"id"`
	Name      string `gorm:"column:name;index" json:"name"`
	Content   string `gorm:"column:content" json:"content"`
	ParentID  string `gorm:"column:parent_id;index" json:"parentId"`
	Order     int    `gorm:"column:sort_order" json:"order"`
	CreatedAt int64  `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt int64  `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
}

func (*File) TableName() string {
	return "file"
}

// Folder is a tree container row. ParentID "" means root.
type Folder struct {
	ID         string `gorm:"column:id;primaryKey" json:"id"`
	Name       string `gorm:"column:name;index" json:"name"`
	ParentID   string `gorm:"column:parent_id;index" json:"parentId"`
	Order      int    `gorm:"column:sort_order" json:"order"`
	IsExpanded bool   `gorm:"column:is_expanded" json:"isExpanded"`
	CreatedAt  int64  `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt  int64  `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
}

func (*Folder) TableName() string {
	return "folder"
}

// Setting is a key/value preference row.
type Setting struct {
	Key       string `gorm:"column:key;primaryKey" json:"key"`
	Value     string `gorm:"column:value" json:"value"`
	UpdatedAt int64  `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
}

func (*Setting) TableName() string {
	return "setting"
}

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "File":
		return db.AutoMigrate(File{})

	case "Folder":
		return db.AutoMigrate(Folder{})

	case "Setting":
		return db.AutoMigrate(Setting{})
	}
	return nil
}

// AutoMigrateAll migrates every table the service owns.
func AutoMigrateAll(db *gorm.DB) error {
	for _, key := range []string{"File", "Folder", "Setting"} {
		if err := AutoMigrate(db, key); err != nil {
			return err
		}
	}
	return nil
}
