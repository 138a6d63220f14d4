/*
 * @module service/validation/orchestrator_test
 * @description 质量门禁编排器测试，覆盖全检查点驱动、告警触发、指标上报隔离和并发批量执行聚合
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 注册流水线 -> 执行 -> 断言聚合结果与副作用
 * @rules 不依赖数据库，纯内存执行
 * @dependencies testing, github.com/stretchr/testify
 * @refs orchestrator.go
 */

package validation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink 收集指标事件的测试实现
type recordingSink struct {
	mu      sync.Mutex
	metrics []PipelineMetric
	issues  []ValidationIssue
}

func (s *recordingSink) RecordPipelineExecution(metric PipelineMetric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, metric)
}

func (s *recordingSink) RecordIssue(issue ValidationIssue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = append(s.issues, issue)
}

// panickingSink 总是panic的指标实现，用于验证上报隔离
type panickingSink struct{}

func (panickingSink) RecordPipelineExecution(PipelineMetric) { panic("sink不可用") }
func (panickingSink) RecordIssue(ValidationIssue)            { panic("sink不可用") }

func newCurationPipeline(name string) *Pipeline {
	pipeline := NewPipeline(name, newStandardEngine())
	pipeline.AddCheckpoint("intake", []*QualityGate{
		NewQualityGate("intake_gate", []string{"log_results"}),
	}, true)
	pipeline.AddCheckpoint("review", []*QualityGate{
		NewQualityGate("review_gate", []string{"notify_curator"}),
	}, true)
	return pipeline
}

func TestExecutePipeline_AllCheckpointsRun(t *testing.T) {
	orchestrator := NewOrchestrator()
	orchestrator.RegisterPipeline(newCurationPipeline("gene_curation"))

	result := orchestrator.ExecutePipeline("gene_curation", Payload{
		"genes": {
			{"symbol": "TP53", "source": "test"},
			{"symbol": "BRCA1", "source": "test"},
		},
	})

	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ProcessedEntities)
	assert.Len(t, result.StageResults, 2)
	assert.Contains(t, result.StageResults, "intake")
	assert.Contains(t, result.StageResults, "review")
	assert.Equal(t, 1.0, result.QualityScore)
}

func TestExecutePipeline_UnregisteredIsNil(t *testing.T) {
	orchestrator := NewOrchestrator()

	result := orchestrator.ExecutePipeline("ghost", Payload{"genes": {{"symbol": "TP53"}}})
	assert.Nil(t, result)
}

func TestExecutePipeline_AlertOnFailingStage(t *testing.T) {
	orchestrator := NewOrchestrator()
	orchestrator.RegisterPipeline(newCurationPipeline("gene_curation"))

	var mu sync.Mutex
	var alerts []QualityAlert
	orchestrator.SetAlertFunc(func(pipelineName string, alert QualityAlert) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "gene_curation", pipelineName)
		alerts = append(alerts, alert)
	})

	result := orchestrator.ExecutePipeline("gene_curation", Payload{
		"genes": {{"symbol": "", "source": "test"}},
	})

	require.NotNil(t, result)
	assert.False(t, result.Success)
	// 两个检查点对同一失败载荷各触发一次告警
	assert.Len(t, alerts, 2)
	assert.Positive(t, result.IssueCounts.Error)
}

func TestExecutePipeline_MetricsEmitted(t *testing.T) {
	orchestrator := NewOrchestrator()
	orchestrator.RegisterPipeline(newCurationPipeline("gene_curation"))
	sink := &recordingSink{}
	orchestrator.SetMetricsSink(sink)

	orchestrator.ExecutePipeline("gene_curation", Payload{
		"genes": {{"symbol": "", "source": "test"}},
	})

	require.Len(t, sink.metrics, 1)
	assert.Equal(t, "gene_curation", sink.metrics[0].PipelineName)
	assert.Equal(t, 1, sink.metrics[0].EntitiesProcessed)
	assert.Positive(t, sink.metrics[0].ErrorCount)
	assert.NotEmpty(t, sink.issues)
}

func TestExecutePipeline_SinkFailureDoesNotFailValidation(t *testing.T) {
	orchestrator := NewOrchestrator()
	orchestrator.RegisterPipeline(newCurationPipeline("gene_curation"))
	orchestrator.SetMetricsSink(panickingSink{})

	result := orchestrator.ExecutePipeline("gene_curation", Payload{
		"genes": {{"symbol": "TP53", "source": "test"}},
	})

	require.NotNil(t, result)
	assert.True(t, result.Success)
}

func TestExecuteAllPipelines_Aggregation(t *testing.T) {
	orchestrator := NewOrchestrator()
	orchestrator.RegisterPipeline(newCurationPipeline("gene_curation"))
	orchestrator.RegisterPipeline(newCurationPipeline("variant_curation"))

	aggregate := orchestrator.ExecuteAllPipelines(map[string]Payload{
		"gene_curation": {
			"genes": {
				{"symbol": "TP53", "source": "test"},
				{"symbol": "BRCA1", "source": "test"},
			},
		},
		"variant_curation": {
			"variants": {
				{"chromosome": "17", "position": 7676154},
			},
		},
		"unregistered": {
			"genes": {{"symbol": "X", "source": "test"}},
		},
	})

	require.Len(t, aggregate.Results, 2)
	expected := 0
	for _, result := range aggregate.Results {
		expected += result.ProcessedEntities
	}
	assert.Equal(t, expected, aggregate.TotalEntitiesProcessed)
	assert.Equal(t, 3, aggregate.TotalEntitiesProcessed)
	assert.True(t, aggregate.Success)
}

func TestExecuteAllPipelines_EmptyIsVacuouslySuccessful(t *testing.T) {
	orchestrator := NewOrchestrator()

	aggregate := orchestrator.ExecuteAllPipelines(map[string]Payload{
		"nobody_home": {"genes": {{"symbol": "TP53"}}},
	})

	assert.True(t, aggregate.Success)
	assert.Empty(t, aggregate.Results)
	assert.Zero(t, aggregate.TotalEntitiesProcessed)
}
