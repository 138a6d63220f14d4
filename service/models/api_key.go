/*
 * @module service/models/api_key
 * @description API密钥模型定义，用于策展写操作的访问控制
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 密钥签发 -> bcrypt哈希存储 -> 请求验证 -> 吊销/过期
 * @rules 完整密钥仅在签发时返回一次，数据库只存储其bcrypt哈希
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/curation/api_key_service.go, api/middleware/api_key_auth.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApiKey API密钥模型
type ApiKey struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string     `json:"name" gorm:"not null;size:255"`
	KeyPrefix    string     `json:"key_prefix" gorm:"not null;size:8;index"`
	KeyValueHash string     `json:"-" gorm:"not null;size:255"`
	Description  string     `json:"description" gorm:"size:1000"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	UsageCount   int64      `json:"usage_count" gorm:"not null;default:0"`
	Status       string     `json:"status" gorm:"not null;default:'active';size:20"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy    string     `json:"created_by" gorm:"not null;default:'system';size:100"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedBy    string     `json:"updated_by" gorm:"not null;default:'system';size:100"`
}

// BeforeCreate 创建前钩子
func (k *ApiKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	if k.CreatedBy == "" {
		k.CreatedBy = "system"
	}
	return nil
}
