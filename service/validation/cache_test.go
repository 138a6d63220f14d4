/*
 * @module service/validation/cache_test
 * @description 校验结果缓存测试，覆盖内容哈希键、TTL过期、FIFO淘汰和命中统计
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 写入缓存 -> 读取/等待过期 -> 断言命中与淘汰行为
 * @rules 淘汰必须是严格FIFO：读取不改变淘汰顺序
 * @dependencies testing, github.com/stretchr/testify
 * @refs cache.go
 */

package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_StableAndDistinct(t *testing.T) {
	payload := map[string]interface{}{"symbol": "TP53", "source": "test"}
	same := map[string]interface{}{"source": "test", "symbol": "TP53"}

	assert.Equal(t, CacheKey("gene", payload), CacheKey("gene", same),
		"键顺序不同的相同载荷应得到相同哈希")
	assert.NotEqual(t, CacheKey("gene", payload), CacheKey("variant", payload),
		"相同载荷不同实体类型应得到不同哈希")
	assert.NotEqual(t, CacheKey("gene", payload),
		CacheKey("gene", map[string]interface{}{"symbol": "BRCA1", "source": "test"}))
}

func TestResultCache_PutGet(t *testing.T) {
	cache := NewResultCache(time.Minute, 10)
	result := &ValidationResult{IsValid: true, Score: 1.0}

	key := CacheKey("gene", map[string]interface{}{"symbol": "TP53"})
	assert.Nil(t, cache.Get(key))
	cache.Put(key, result)
	assert.Same(t, result, cache.Get(key))
}

func TestResultCache_TTLExpiry(t *testing.T) {
	cache := NewResultCache(30*time.Millisecond, 10)
	key := CacheKey("gene", map[string]interface{}{"symbol": "TP53"})
	cache.Put(key, &ValidationResult{IsValid: true, Score: 1.0})

	require.NotNil(t, cache.Get(key))
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, cache.Get(key), "过期条目应视为未命中")
	assert.Equal(t, 0, cache.Stats().Size, "过期条目应被惰性移除")
}

func TestResultCache_FIFOEviction(t *testing.T) {
	cache := NewResultCache(time.Minute, 2)
	result := &ValidationResult{IsValid: true, Score: 1.0}

	cache.Put("k1", result)
	cache.Put("k2", result)

	// 读取k1不应让它逃过FIFO淘汰
	require.NotNil(t, cache.Get("k1"))

	cache.Put("k3", result)

	assert.Nil(t, cache.Get("k1"), "最早插入的条目应被淘汰，即使刚被读取过")
	assert.NotNil(t, cache.Get("k2"))
	assert.NotNil(t, cache.Get("k3"))
	assert.Equal(t, int64(1), cache.Stats().Evictions)
}

func TestResultCache_HitRate(t *testing.T) {
	cache := NewResultCache(time.Minute, 10)
	cache.Put("k1", &ValidationResult{IsValid: true, Score: 1.0})

	cache.Get("k1")
	cache.Get("k1")
	cache.Get("missing")

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)
}

func TestCachedEngine_MemoizesResults(t *testing.T) {
	engine := newStandardEngine()
	cached := NewCachedEngine(engine, NewResultCache(time.Minute, 10))
	payload := map[string]interface{}{"symbol": "TP53", "source": "test"}

	first := cached.ValidateEntity(EntityGene, payload)
	second := cached.ValidateEntity(EntityGene, payload)

	assert.Same(t, first, second, "相同载荷的第二次校验应命中缓存")
	stats := cached.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestResultCache_ConcurrentAccess(t *testing.T) {
	cache := NewResultCache(time.Minute, 50)
	result := &ValidationResult{IsValid: true, Score: 1.0}

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(worker int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				key := CacheKey("gene", map[string]interface{}{"symbol": "G", "n": j % 60})
				cache.Put(key, result)
				cache.Get(key)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	stats := cache.Stats()
	assert.LessOrEqual(t, stats.Size, 50, "缓存大小不得超过容量上限")
}
