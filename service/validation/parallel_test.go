/*
 * @module service/validation/parallel_test
 * @description 并行批量校验器测试，核心是并行与顺序执行的逐元素顺序等价契约
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 构造批量载荷 -> 并行校验 -> 与顺序结果逐元素比对
 * @rules 任意chunk_size下并行结果必须与顺序结果完全一致
 * @dependencies testing, github.com/stretchr/testify
 * @refs parallel.go
 */

package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geneBatch 构造混合了有效与无效记录的基因批量载荷
func geneBatch(n int) []map[string]interface{} {
	payloads := make([]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		symbol := fmt.Sprintf("GENE%d", i)
		if i%3 == 0 {
			symbol = "" // 每三条插入一条无效记录
		}
		payloads[i] = map[string]interface{}{
			"symbol": symbol,
			"source": "test",
		}
	}
	return payloads
}

func assertResultsEqual(t *testing.T, expected, actual []*ValidationResult) {
	t.Helper()
	require.Equal(t, len(expected), len(actual))
	for i := range expected {
		assert.Equal(t, expected[i].IsValid, actual[i].IsValid, "第%d个结果有效性不一致", i)
		assert.Equal(t, expected[i].Score, actual[i].Score, "第%d个结果分数不一致", i)
		assert.Equal(t, len(expected[i].Issues), len(actual[i].Issues), "第%d个结果问题数不一致", i)
	}
}

func TestValidateBatchParallel_TwoChunksOfFive(t *testing.T) {
	engine := newStandardEngine()
	parallel := NewParallelValidator(engine, 5, 4)
	payloads := geneBatch(10)

	sequential := engine.ValidateBatch(EntityGene, payloads)
	concurrent := parallel.ValidateBatchParallel(EntityGene, payloads)

	assertResultsEqual(t, sequential, concurrent)
}

func TestValidateBatchParallel_OrderEquivalenceAcrossChunkSizes(t *testing.T) {
	engine := newStandardEngine()
	payloads := geneBatch(23)
	sequential := engine.ValidateBatch(EntityGene, payloads)

	for _, chunkSize := range []int{1, 2, 3, 7, 23, 100} {
		parallel := NewParallelValidator(engine, chunkSize, 3)
		concurrent := parallel.ValidateBatchParallel(EntityGene, payloads)
		assertResultsEqual(t, sequential, concurrent)
	}
}

func TestValidateBatchParallel_SingleChunkDelegatesSequential(t *testing.T) {
	engine := newStandardEngine()
	parallel := NewParallelValidator(engine, 100, 4)
	payloads := geneBatch(10)

	results := parallel.ValidateBatchParallel(EntityGene, payloads)
	assertResultsEqual(t, engine.ValidateBatch(EntityGene, payloads), results)
}

func TestValidateBatchParallel_EmptyBatch(t *testing.T) {
	parallel := NewParallelValidator(newStandardEngine(), 5, 4)

	results := parallel.ValidateBatchParallel(EntityGene, nil)
	assert.Empty(t, results)
}

func TestValidateWithAdaptiveParallelism(t *testing.T) {
	engine := newStandardEngine()
	parallel := NewParallelValidator(engine, 5, 4)

	small := geneBatch(5)   // 不超过chunk_size，走顺序
	large := geneBatch(12)  // 超过chunk_size，走并行

	assertResultsEqual(t, engine.ValidateBatch(EntityGene, small),
		parallel.ValidateWithAdaptiveParallelism(EntityGene, small))
	assertResultsEqual(t, engine.ValidateBatch(EntityGene, large),
		parallel.ValidateWithAdaptiveParallelism(EntityGene, large))
}

func TestValidateBatchParallel_WorkerBoundRespected(t *testing.T) {
	engine := newStandardEngine()
	// maxWorkers=1时退化为按块串行，结果仍必须保持顺序
	parallel := NewParallelValidator(engine, 3, 1)
	payloads := geneBatch(10)

	assertResultsEqual(t, engine.ValidateBatch(EntityGene, payloads),
		parallel.ValidateBatchParallel(EntityGene, payloads))
}
