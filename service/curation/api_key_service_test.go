/*
 * @module service/curation/api_key_service_test
 * @description API密钥服务测试，覆盖签发、验证、过期和吊销
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 签发密钥 -> 验证通过/失败路径 -> 吊销后验证失败
 * @rules 使用sqlite内存库，测试间相互独立
 * @dependencies testing, github.com/stretchr/testify, biocuration-service/testutil
 * @refs api_key_service.go
 */

package curation

import (
	"testing"
	"time"

	"biocuration-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApiKeyService(t *testing.T) *ApiKeyService {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	return NewApiKeyService(tdb.DB)
}

func TestCreateApiKey(t *testing.T) {
	service := newTestApiKeyService(t)

	apiKey, fullKey, err := service.CreateApiKey("导入脚本", "批量导入专用", nil)
	require.NoError(t, err)
	require.NotNil(t, apiKey)

	assert.Len(t, fullKey, 64, "完整密钥应为32字节的hex编码")
	assert.Equal(t, fullKey[:8], apiKey.KeyPrefix)
	assert.NotEqual(t, fullKey, apiKey.KeyValueHash, "数据库不应存明文密钥")
	assert.Equal(t, "active", apiKey.Status)
	assert.NotEmpty(t, apiKey.ID)
}

func TestVerifyApiKey(t *testing.T) {
	service := newTestApiKeyService(t)

	apiKey, fullKey, err := service.CreateApiKey("验证测试", "", nil)
	require.NoError(t, err)

	verified, err := service.VerifyApiKey(fullKey)
	require.NoError(t, err)
	assert.Equal(t, apiKey.ID, verified.ID)

	// 错误密钥（前缀相同）
	wrongKey := fullKey[:8] + "0000000000000000000000000000000000000000000000000000000000"
	_, err = service.VerifyApiKey(wrongKey)
	require.Error(t, err)

	// 格式非法
	_, err = service.VerifyApiKey("short")
	require.Error(t, err)
}

func TestVerifyApiKey_UpdatesUsageStats(t *testing.T) {
	service := newTestApiKeyService(t)

	_, fullKey, err := service.CreateApiKey("统计测试", "", nil)
	require.NoError(t, err)

	_, err = service.VerifyApiKey(fullKey)
	require.NoError(t, err)
	verified, err := service.VerifyApiKey(fullKey)
	require.NoError(t, err)

	// 第二次验证时第一次的计数已落库
	assert.GreaterOrEqual(t, verified.UsageCount, int64(1))
	assert.NotNil(t, verified.LastUsedAt)
}

func TestVerifyApiKey_Expired(t *testing.T) {
	service := newTestApiKeyService(t)

	expiredAt := time.Now().Add(-time.Hour)
	_, fullKey, err := service.CreateApiKey("过期测试", "", &expiredAt)
	require.NoError(t, err)

	_, err = service.VerifyApiKey(fullKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "已过期")
}

func TestRevokeApiKey(t *testing.T) {
	service := newTestApiKeyService(t)

	apiKey, fullKey, err := service.CreateApiKey("吊销测试", "", nil)
	require.NoError(t, err)

	require.NoError(t, service.RevokeApiKey(apiKey.ID))

	_, err = service.VerifyApiKey(fullKey)
	require.Error(t, err, "吊销后的密钥不应通过验证")

	keys, err := service.GetApiKeys()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "revoked", keys[0].Status)
}

func TestGetApiKeys(t *testing.T) {
	service := newTestApiKeyService(t)

	_, _, err := service.CreateApiKey("key-a", "", nil)
	require.NoError(t, err)
	_, _, err = service.CreateApiKey("key-b", "", nil)
	require.NoError(t, err)

	keys, err := service.GetApiKeys()
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	for _, key := range keys {
		assert.NotEmpty(t, key.KeyPrefix)
		assert.NotEqual(t, "", key.KeyValueHash)
	}
}
