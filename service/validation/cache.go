/*
 * @module service/validation/cache
 * @description 校验结果缓存，按实体类型与载荷内容哈希记忆校验结果，支持TTL过期与容量上限
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 载荷哈希 -> 缓存查找 -> 过期惰性清理 -> 容量满时淘汰最早插入项
 * @rules 淘汰策略为严格的按插入顺序FIFO而非LRU，读取不刷新位置；读写均在互斥锁内完成
 * @dependencies crypto/sha256, container/list
 * @refs engine.go, selective.go
 */

package validation

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// CacheKey 基于实体类型与载荷规范化JSON计算稳定的内容哈希。
// json.Marshal对map按键排序，相同内容的载荷得到相同的键
func CacheKey(entityType string, payload map[string]interface{}) string {
	canonical, err := json.Marshal(payload)
	if err != nil {
		// 载荷含不可序列化值时退化为指纹式键，仍保持确定性
		canonical = []byte(fmt.Sprintf("%v", payload))
	}
	sum := sha256.Sum256(append([]byte(entityType+"|"), canonical...))
	return hex.EncodeToString(sum[:])
}

// cacheEntry 单条缓存记录
type cacheEntry struct {
	key        string
	value      *ValidationResult
	insertedAt time.Time
	element    *list.Element
}

// CacheStats 缓存命中统计
type CacheStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Size      int     `json:"size"`
	HitRate   float64 `json:"hit_rate"`
}

// ResultCache 校验结果缓存。
// 多条流水线/分块任务会并发读写，所有查找-插入-淘汰的读改写段都在互斥锁内
type ResultCache struct {
	mu        sync.Mutex
	entries   map[string]*cacheEntry
	order     *list.List // 插入顺序，队首为最早插入
	ttl       time.Duration
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// NewResultCache 创建结果缓存，ttl为条目存活时间，maxSize为容量上限
func NewResultCache(ttl time.Duration, maxSize int) *ResultCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &ResultCache{
		entries: make(map[string]*cacheEntry, maxSize),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get 查找缓存。过期条目视为未命中并惰性移除
func (c *ResultCache) Get(key string) *ValidationResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil
	}
	if c.ttl > 0 && time.Since(entry.insertedAt) > c.ttl {
		c.removeLocked(entry)
		c.misses++
		return nil
	}

	c.hits++
	return entry.value
}

// Put 写入缓存。容量已满时淘汰全局最早插入的一条（FIFO）
func (c *ResultCache) Put(key string, value *ValidationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.value = value
		existing.insertedAt = time.Now()
		c.order.MoveToBack(existing.element)
		return
	}

	if len(c.entries) >= c.maxSize {
		if oldest := c.order.Front(); oldest != nil {
			c.removeLocked(oldest.Value.(*cacheEntry))
			c.evictions++
		}
	}

	entry := &cacheEntry{
		key:        key,
		value:      value,
		insertedAt: time.Now(),
	}
	entry.element = c.order.PushBack(entry)
	c.entries[key] = entry
}

// removeLocked 摘除一条缓存记录，调用方必须已持锁
func (c *ResultCache) removeLocked(entry *cacheEntry) {
	delete(c.entries, entry.key)
	c.order.Remove(entry.element)
}

// Clear 清空缓存
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry, c.maxSize)
	c.order.Init()
}

// Stats 返回命中统计快照
func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// CachedEngine 带结果缓存的校验引擎包装
type CachedEngine struct {
	engine *Engine
	cache  *ResultCache
}

// NewCachedEngine 创建带缓存的引擎包装
func NewCachedEngine(engine *Engine, cache *ResultCache) *CachedEngine {
	return &CachedEngine{engine: engine, cache: cache}
}

// ValidateEntity 先查缓存，未命中时执行校验并写入缓存。
// 按规则名子集的定向校验不经过缓存，避免与全量结果混淆
func (ce *CachedEngine) ValidateEntity(entityType string, payload map[string]interface{}) *ValidationResult {
	key := CacheKey(entityType, payload)
	if cached := ce.cache.Get(key); cached != nil {
		return cached
	}
	result := ce.engine.ValidateEntity(entityType, payload)
	ce.cache.Put(key, result)
	return result
}

// Stats 返回底层缓存统计
func (ce *CachedEngine) Stats() CacheStats {
	return ce.cache.Stats()
}
