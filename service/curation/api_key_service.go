/*
 * @module service/curation/api_key_service
 * @description API密钥服务，负责密钥的签发、验证和吊销
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 签发密钥 -> bcrypt哈希存储 -> 请求携带密钥 -> 前缀查找+哈希比对 -> 过期/吊销检查
 * @rules 完整密钥仅在签发时返回一次；验证按前缀检索候选后逐一bcrypt比对
 * @dependencies gorm.io/gorm, golang.org/x/crypto/bcrypt
 * @refs service/models/api_key.go, api/middleware/api_key_auth.go
 */

package curation

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"biocuration-service/service/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ApiKeyService API密钥服务
type ApiKeyService struct {
	db *gorm.DB
}

// NewApiKeyService 创建API密钥服务实例
func NewApiKeyService(db *gorm.DB) *ApiKeyService {
	return &ApiKeyService{db: db}
}

// generateRandomKey 生成指定字节数的随机密钥，hex编码
func generateRandomKey(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CreateApiKey 签发新的API密钥。
// 返回完整密钥值（仅此一次），数据库存储其bcrypt哈希
func (s *ApiKeyService) CreateApiKey(name, description string, expiresAt *time.Time) (*models.ApiKey, string, error) {
	fullKey, err := generateRandomKey(32)
	if err != nil {
		return nil, "", err
	}
	keyPrefix := fullKey[:8]

	hashedKey, err := bcrypt.GenerateFromPassword([]byte(fullKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	apiKey := &models.ApiKey{
		Name:         name,
		KeyPrefix:    keyPrefix,
		KeyValueHash: string(hashedKey),
		Description:  description,
		ExpiresAt:    expiresAt,
		Status:       "active",
	}
	if err := s.db.Create(apiKey).Error; err != nil {
		return nil, "", err
	}

	return apiKey, fullKey, nil
}

// GetApiKeys 获取所有密钥信息（不含密钥本身）
func (s *ApiKeyService) GetApiKeys() ([]models.ApiKey, error) {
	var keys []models.ApiKey
	if err := s.db.Order("created_at DESC").Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// VerifyApiKey 验证API密钥。
// 按前缀检索候选记录，逐一bcrypt比对完整密钥
func (s *ApiKeyService) VerifyApiKey(keyValue string) (*models.ApiKey, error) {
	if len(keyValue) < 8 {
		return nil, errors.New("无效的API Key格式")
	}

	keyPrefix := keyValue[:8]

	var keys []models.ApiKey
	if err := s.db.Where("key_prefix = ? AND status = 'active'", keyPrefix).Find(&keys).Error; err != nil {
		return nil, err
	}

	for _, key := range keys {
		if err := bcrypt.CompareHashAndPassword([]byte(key.KeyValueHash), []byte(keyValue)); err == nil {
			if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
				return nil, errors.New("API Key已过期")
			}

			// 更新最后使用时间和使用次数
			s.db.Model(&key).Updates(map[string]interface{}{
				"last_used_at": time.Now(),
				"usage_count":  key.UsageCount + 1,
			})

			return &key, nil
		}
	}

	return nil, errors.New("无效的API Key")
}

// RevokeApiKey 吊销指定密钥
func (s *ApiKeyService) RevokeApiKey(keyID string) error {
	return s.db.Model(&models.ApiKey{}).Where("id = ?", keyID).
		Update("status", "revoked").Error
}
