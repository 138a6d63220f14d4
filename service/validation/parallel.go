/*
 * @module service/validation/parallel
 * @description 并行批量校验器，将批量载荷按固定大小分块并发校验，按块序重组保持结果顺序
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 批量分块 -> 并发派发（受最大工作数约束） -> 按块序重组 -> 展平返回
 * @rules 并行结果必须与顺序执行逐元素一致；单块批量直接走顺序引擎；任务一旦派发全部执行完毕，无部分取消
 * @dependencies sync
 * @refs engine.go
 */

package validation

import (
	"runtime"
	"sync"
)

// ParallelValidator 并行批量校验器
type ParallelValidator struct {
	engine     *Engine
	chunkSize  int
	maxWorkers int
}

// NewParallelValidator 创建并行批量校验器。
// chunkSize<=0时取100，maxWorkers<=0时取CPU核数
func NewParallelValidator(engine *Engine, chunkSize, maxWorkers int) *ParallelValidator {
	if chunkSize <= 0 {
		chunkSize = 100
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	return &ParallelValidator{
		engine:     engine,
		chunkSize:  chunkSize,
		maxWorkers: maxWorkers,
	}
}

// ChunkSize 返回分块大小
func (pv *ParallelValidator) ChunkSize() int {
	return pv.chunkSize
}

// splitChunks 按固定大小切分为连续块，保持原始顺序
func (pv *ParallelValidator) splitChunks(payloads []map[string]interface{}) [][]map[string]interface{} {
	var chunks [][]map[string]interface{}
	for start := 0; start < len(payloads); start += pv.chunkSize {
		end := start + pv.chunkSize
		if end > len(payloads) {
			end = len(payloads)
		}
		chunks = append(chunks, payloads[start:end])
	}
	return chunks
}

// ValidateBatchParallel 并行校验批量载荷。
// 只有一个分块时直接委托顺序引擎，避免小批量的并行开销；
// 多个分块时每块一个任务并发执行，按块下标写回结果切片，
// 第i块的结果位置与顺序执行完全一致
func (pv *ParallelValidator) ValidateBatchParallel(entityType string, payloads []map[string]interface{}) []*ValidationResult {
	if len(payloads) == 0 {
		return []*ValidationResult{}
	}

	chunks := pv.splitChunks(payloads)
	if len(chunks) == 1 {
		return pv.engine.ValidateBatch(entityType, payloads)
	}

	chunkResults := make([][]*ValidationResult, len(chunks))
	semaphore := make(chan struct{}, pv.maxWorkers)
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(index int, chunk []map[string]interface{}) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			chunkResults[index] = pv.engine.ValidateBatch(entityType, chunk)
		}(i, chunk)
	}
	wg.Wait()

	results := make([]*ValidationResult, 0, len(payloads))
	for _, chunk := range chunkResults {
		results = append(results, chunk...)
	}
	return results
}

// ValidateWithAdaptiveParallelism 按批量规模自适应选择并行或顺序执行
func (pv *ParallelValidator) ValidateWithAdaptiveParallelism(entityType string, payloads []map[string]interface{}) []*ValidationResult {
	if len(payloads) > pv.chunkSize {
		return pv.ValidateBatchParallel(entityType, payloads)
	}
	return pv.engine.ValidateBatch(entityType, payloads)
}
