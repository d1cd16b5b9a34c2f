package model

import (
	"time"
)

// BaseModel 公共字段
// 镜像表由同步任务 Upsert 维护，不使用软删除（软删除会破坏 shopify_id 唯一索引的冲突判定）
type BaseModel struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
