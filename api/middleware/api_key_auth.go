/*
 * @module api/middleware/api_key_auth
 * @description API Key鉴权中间件，基于bcrypt哈希验证Bearer密钥
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 密钥提取 -> 缓存查询/哈希比对 -> 上下文注入 -> 下一个处理器
 * @rules bcrypt比对成本高，验证通过的密钥短期缓存；白名单路径跳过鉴权
 * @dependencies net/http, strings, context, sync
 * @refs service/curation/api_key_service.go, api/routes.go
 */

package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"biocuration-service/service/curation"
	"biocuration-service/service/models"

	"github.com/go-chi/render"
)

// ContextKey 上下文键类型
type ContextKey string

const (
	// ApiKeyInfoKey API Key信息在上下文中的键
	ApiKeyInfoKey ContextKey = "api_key_info"
)

// ApiKeyAuthMiddleware API Key认证中间件
type ApiKeyAuthMiddleware struct {
	apiKeyService *curation.ApiKeyService
	// 验证结果缓存，避免每个请求都做bcrypt比对
	cache      map[string]*keyCacheEntry
	cacheMutex sync.RWMutex
	cacheTTL   time.Duration
	// 白名单路径（不需要鉴权）
	whitelistPaths []string
}

// keyCacheEntry 缓存条目
type keyCacheEntry struct {
	apiKey    *models.ApiKey
	expiresAt time.Time
}

// NewApiKeyAuthMiddleware 创建API Key认证中间件实例
func NewApiKeyAuthMiddleware(apiKeyService *curation.ApiKeyService) *ApiKeyAuthMiddleware {
	return &ApiKeyAuthMiddleware{
		apiKeyService: apiKeyService,
		cache:         make(map[string]*keyCacheEntry),
		cacheTTL:      5 * time.Minute,
		whitelistPaths: []string{
			"/health",  // 健康检查
			"/ready",   // 就绪检查
			"/swagger", // Swagger文档
			"/metrics", // Prometheus指标
		},
	}
}

// AddWhitelistPath 添加白名单路径
func (m *ApiKeyAuthMiddleware) AddWhitelistPath(path string) {
	m.whitelistPaths = append(m.whitelistPaths, path)
}

// IsWhitelistPath 检查路径是否在白名单中
func (m *ApiKeyAuthMiddleware) IsWhitelistPath(path string) bool {
	for _, whitelistPath := range m.whitelistPaths {
		// 支持前缀匹配
		if strings.HasPrefix(path, whitelistPath) {
			return true
		}
	}
	return false
}

// Middleware 认证中间件处理函数
func (m *ApiKeyAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.IsWhitelistPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondUnauthorized(w, r, "缺少Authorization头")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.respondUnauthorized(w, r, "无效的Authorization格式，需要Bearer API Key")
			return
		}

		keyValue := strings.TrimPrefix(authHeader, "Bearer ")
		if keyValue == "" {
			m.respondUnauthorized(w, r, "API Key为空")
			return
		}

		// 先检查缓存
		if apiKey := m.getFromCache(keyValue); apiKey != nil {
			ctx := context.WithValue(r.Context(), ApiKeyInfoKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// 验证API Key
		apiKey, err := m.apiKeyService.VerifyApiKey(keyValue)
		if err != nil {
			m.respondUnauthorized(w, r, "API Key验证失败: "+err.Error())
			return
		}

		m.saveToCache(keyValue, apiKey)

		ctx := context.WithValue(r.Context(), ApiKeyInfoKey, apiKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getFromCache 从缓存中获取已验证的API Key
func (m *ApiKeyAuthMiddleware) getFromCache(keyValue string) *models.ApiKey {
	m.cacheMutex.RLock()
	defer m.cacheMutex.RUnlock()

	entry, exists := m.cache[keyValue]
	if !exists {
		return nil
	}

	if time.Now().After(entry.expiresAt) {
		go m.removeFromCache(keyValue)
		return nil
	}

	return entry.apiKey
}

// saveToCache 保存验证结果到缓存
func (m *ApiKeyAuthMiddleware) saveToCache(keyValue string, apiKey *models.ApiKey) {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	cacheExpiry := time.Now().Add(m.cacheTTL)
	// 密钥自身的过期时间早于缓存TTL时取较小值
	if apiKey.ExpiresAt != nil && apiKey.ExpiresAt.Before(cacheExpiry) {
		cacheExpiry = *apiKey.ExpiresAt
	}

	m.cache[keyValue] = &keyCacheEntry{
		apiKey:    apiKey,
		expiresAt: cacheExpiry,
	}
}

// removeFromCache 从缓存中删除密钥
func (m *ApiKeyAuthMiddleware) removeFromCache(keyValue string) {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	delete(m.cache, keyValue)
}

// ClearExpiredCache 清理过期缓存
func (m *ApiKeyAuthMiddleware) ClearExpiredCache() int {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	now := time.Now()
	clearedCount := 0

	for keyValue, entry := range m.cache {
		if now.After(entry.expiresAt) {
			delete(m.cache, keyValue)
			clearedCount++
		}
	}

	return clearedCount
}

// respondUnauthorized 返回401未授权响应
func (m *ApiKeyAuthMiddleware) respondUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, map[string]interface{}{
		"status":  http.StatusUnauthorized,
		"message": message,
		"error":   "Unauthorized",
	})
}

// GetApiKeyFromContext 从上下文中获取API Key信息
func GetApiKeyFromContext(ctx context.Context) (*models.ApiKey, bool) {
	apiKey, ok := ctx.Value(ApiKeyInfoKey).(*models.ApiKey)
	return apiKey, ok
}
