/*
 * @module service/validation/orchestrator
 * @description 质量门禁编排器，注册命名流水线并驱动全部检查点执行，失败阶段触发告警回调并上报执行指标
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 流水线注册 -> 逐检查点执行 -> 告警触发 -> 指标上报 -> 结果聚合
 * @rules 每次执行驱动流水线的全部检查点，使用同一份载荷；指标上报失败不影响校验结果；多流水线并发执行之间无顺序保证
 * @dependencies log/slog
 * @refs pipeline.go, metrics.go
 */

package validation

import (
	"log/slog"
	"sync"
	"time"
)

// QualityAlert 阶段失败时传递给告警回调的内容
type QualityAlert struct {
	Stage  string       `json:"stage"`
	Result *StageResult `json:"result"`
}

// AlertFunc 质量告警回调，触发后不重试（fire-and-forget）
type AlertFunc func(pipelineName string, alert QualityAlert)

// PipelineExecutionResult 一次流水线完整执行的结果
type PipelineExecutionResult struct {
	PipelineName      string                  `json:"pipeline_name"`
	Success           bool                    `json:"success"`
	ProcessedEntities int                     `json:"processed_entities"`
	ExecutionTime     time.Duration           `json:"execution_time"`
	QualityScore      float64                 `json:"quality_score"`
	IssueCounts       IssueCounts             `json:"issue_counts"`
	StageResults      map[string]*StageResult `json:"stage_results"`
}

// AllPipelinesResult 批量执行全部流水线的聚合结果
type AllPipelinesResult struct {
	Results                map[string]*PipelineExecutionResult `json:"results"`
	TotalEntitiesProcessed int                                 `json:"total_entities_processed"`
	Success                bool                                `json:"success"`
}

// Orchestrator 质量门禁编排器。
// 流水线注册在启动阶段完成，执行阶段只读；指标接收端自行负责并发安全
type Orchestrator struct {
	mu        sync.RWMutex
	pipelines map[string]*Pipeline
	alertFunc AlertFunc
	sink      MetricsSink
}

// NewOrchestrator 创建编排器
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		pipelines: make(map[string]*Pipeline),
		sink:      NoopMetricsSink{},
	}
}

// RegisterPipeline 按名称注册流水线，同名覆盖
func (o *Orchestrator) RegisterPipeline(pipeline *Pipeline) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pipelines[pipeline.Name()] = pipeline
}

// SetAlertFunc 设置失败阶段的告警回调
func (o *Orchestrator) SetAlertFunc(fn AlertFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.alertFunc = fn
}

// SetMetricsSink 设置指标接收端
func (o *Orchestrator) SetMetricsSink(sink MetricsSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if sink == nil {
		sink = NoopMetricsSink{}
	}
	o.sink = sink
}

// PipelineNames 返回已注册的流水线名称
func (o *Orchestrator) PipelineNames() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, 0, len(o.pipelines))
	for name := range o.pipelines {
		names = append(names, name)
	}
	return names
}

// ExecutePipeline 对同一份载荷执行指定流水线的全部检查点。
// 未注册的流水线名返回nil（静默空操作，仅记录日志）。
// 失败阶段触发告警回调；执行指标在全部检查点完成后一次性上报
func (o *Orchestrator) ExecutePipeline(name string, payload Payload) *PipelineExecutionResult {
	o.mu.RLock()
	pipeline, ok := o.pipelines[name]
	alertFunc := o.alertFunc
	sink := o.sink
	o.mu.RUnlock()

	if !ok {
		slog.Warn("忽略未注册的流水线执行请求", "pipeline", name)
		return nil
	}

	startTime := time.Now()
	result := &PipelineExecutionResult{
		PipelineName:      name,
		Success:           true,
		ProcessedEntities: payload.EntityCount(),
		StageResults:      make(map[string]*StageResult),
	}

	scoreSum := 0.0
	stageCount := 0
	var allResults []*ValidationResult
	for _, checkpoint := range pipeline.Checkpoints() {
		stageResult := pipeline.ValidateStage(checkpoint.Name, payload)
		result.StageResults[checkpoint.Name] = stageResult
		scoreSum += stageResult.QualityScore
		stageCount++
		allResults = append(allResults, stageResult.collectResults()...)

		if !stageResult.Passed {
			result.Success = false
			if alertFunc != nil {
				alertFunc(name, QualityAlert{Stage: checkpoint.Name, Result: stageResult})
			}
		}
	}

	if stageCount > 0 {
		result.QualityScore = scoreSum / float64(stageCount)
	} else {
		result.QualityScore = 1.0
	}
	for _, vr := range allResults {
		for _, issue := range vr.Issues {
			switch issue.Severity {
			case SeverityError:
				result.IssueCounts.Error++
			case SeverityWarning:
				result.IssueCounts.Warning++
			case SeverityInfo:
				result.IssueCounts.Info++
			}
		}
	}
	result.ExecutionTime = time.Since(startTime)

	o.emitMetrics(sink, result, allResults)
	return result
}

// emitMetrics 尽力而为地上报执行指标，任何panic都不会影响校验结果
func (o *Orchestrator) emitMetrics(sink MetricsSink, result *PipelineExecutionResult, results []*ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("指标上报失败", "pipeline", result.PipelineName, "error", r)
		}
	}()

	sink.RecordPipelineExecution(PipelineMetric{
		PipelineName:      result.PipelineName,
		ExecutionTime:     result.ExecutionTime,
		EntitiesProcessed: result.ProcessedEntities,
		QualityScore:      result.QualityScore,
		ErrorCount:        result.IssueCounts.Error,
		WarningCount:      result.IssueCounts.Warning,
	})
	for _, vr := range results {
		for _, issue := range vr.Issues {
			sink.RecordIssue(issue)
		}
	}
}

// ExecuteAllPipelines 并发执行载荷映射中所有已注册的流水线。
// 各流水线执行之间无顺序保证；聚合实体总数与整体成功标记（无流水线执行时视为成功）
func (o *Orchestrator) ExecuteAllPipelines(payloads map[string]Payload) *AllPipelinesResult {
	aggregate := &AllPipelinesResult{
		Results: make(map[string]*PipelineExecutionResult),
		Success: true,
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, payload := range payloads {
		o.mu.RLock()
		_, registered := o.pipelines[name]
		o.mu.RUnlock()
		if !registered {
			continue
		}

		wg.Add(1)
		go func(name string, payload Payload) {
			defer wg.Done()
			result := o.ExecutePipeline(name, payload)
			if result == nil {
				return
			}
			mu.Lock()
			aggregate.Results[name] = result
			aggregate.TotalEntitiesProcessed += result.ProcessedEntities
			if !result.Success {
				aggregate.Success = false
			}
			mu.Unlock()
		}(name, payload)
	}
	wg.Wait()

	return aggregate
}
