/*
 * @module service/validation/pipeline_test
 * @description 校验流水线测试，覆盖检查点注册顺序、复数键推导、多门禁聚合和空操作阶段
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 注册检查点 -> 阶段评估 -> 断言聚合结果
 * @rules 不依赖数据库，纯内存执行
 * @dependencies testing, github.com/stretchr/testify
 * @refs pipeline.go
 */

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStage_UnregisteredStageIsNoop(t *testing.T) {
	pipeline := NewPipeline("curation", newStandardEngine())

	result := pipeline.ValidateStage("nonexistent", Payload{
		"genes": {{"symbol": ""}},
	})

	assert.True(t, result.Passed)
	assert.Empty(t, result.Actions)
	assert.Nil(t, result.EntityResults)
}

func TestValidateStage_PluralKeyDerivation(t *testing.T) {
	pipeline := NewPipeline("curation", newStandardEngine())
	pipeline.AddCheckpoint("intake", []*QualityGate{
		NewQualityGate("intake_gate", []string{"log_results"}),
	}, true)

	result := pipeline.ValidateStage("intake", Payload{
		"genes": {
			{"symbol": "TP53", "source": "test"},
			{"symbol": "", "source": "test"},
		},
		"phenotypes": {
			{"hpo_id": "HP:0001250", "name": "Seizure", "definition": "A sudden episode"},
		},
	})

	assert.False(t, result.Passed)
	require.Contains(t, result.EntityResults, "genes")
	require.Contains(t, result.EntityResults, "phenotypes")
	assert.Len(t, result.EntityResults["genes"], 2)
	assert.Len(t, result.EntityResults["phenotypes"], 1)
	assert.True(t, result.EntityResults["phenotypes"][0].IsValid)
}

func TestValidateStage_AllGatesMustPass(t *testing.T) {
	engine := newStandardEngine()
	pipeline := NewPipeline("curation", engine)
	pipeline.AddCheckpoint("review", []*QualityGate{
		NewQualityGate("gate_a", []string{"log_results"}),
		NewQualityGate("gate_b", []string{"notify_curator"}),
	}, true)

	clean := pipeline.ValidateStage("review", Payload{
		"genes": {{"symbol": "TP53", "source": "test"}},
	})
	assert.True(t, clean.Passed)
	assert.Equal(t, 1.0, clean.QualityScore)
	assert.Equal(t, []string{"log_results", "notify_curator"}, clean.Actions)

	dirty := pipeline.ValidateStage("review", Payload{
		"genes": {{"symbol": "", "source": "test"}},
	})
	assert.False(t, dirty.Passed)
	assert.Less(t, dirty.QualityScore, 1.0)
}

func TestAddCheckpoint_OverwriteKeepsPosition(t *testing.T) {
	pipeline := NewPipeline("curation", newStandardEngine())
	pipeline.AddCheckpoint("first", []*QualityGate{NewQualityGate("g1", nil)}, true)
	pipeline.AddCheckpoint("second", []*QualityGate{NewQualityGate("g2", nil)}, true)
	pipeline.AddCheckpoint("first", []*QualityGate{
		NewQualityGate("g1", nil),
		NewQualityGate("g3", nil),
	}, false)

	checkpoints := pipeline.Checkpoints()
	require.Len(t, checkpoints, 2)
	assert.Equal(t, "first", checkpoints[0].Name)
	assert.Equal(t, "second", checkpoints[1].Name)
	assert.Len(t, checkpoints[0].Gates, 2)
	assert.False(t, checkpoints[0].Required)
}

func TestValidateStage_CheckpointWithoutGates(t *testing.T) {
	pipeline := NewPipeline("curation", newStandardEngine())
	pipeline.AddCheckpoint("empty", nil, true)

	result := pipeline.ValidateStage("empty", Payload{
		"genes": {{"symbol": ""}},
	})

	assert.True(t, result.Passed)
	assert.Equal(t, 1.0, result.QualityScore)
}
