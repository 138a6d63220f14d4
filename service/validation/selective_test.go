/*
 * @module service/validation/selective_test
 * @description 选择性校验器测试，覆盖策略跳过、置信度阈值跳过和选择率统计
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 注册策略/写入置信度 -> 选择性校验 -> 断言跳过行为与统计
 * @rules 跳过时返回score=1.0的合成有效结果
 * @dependencies testing, github.com/stretchr/testify
 * @refs selective.go
 */

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trustedSourceProfile() *SelectiveProfile {
	return &SelectiveProfile{
		Name:        "trusted_sources",
		EntityTypes: []string{EntityGene, EntityVariant},
		SkipConditions: []SkipCondition{
			{Field: "source", Operator: "equals", Value: "hgnc_import"},
		},
	}
}

func TestValidateSelectively_AdaptiveSkip(t *testing.T) {
	sv := NewSelectiveValidator(newStandardEngine(), StrategyAdaptive)
	sv.RegisterProfile(trustedSourceProfile())
	require.NoError(t, sv.ActivateProfile("trusted_sources"))

	// 命中跳过条件：即使载荷明显无效也返回合成有效结果
	skipped := sv.ValidateSelectively(EntityGene, map[string]interface{}{
		"symbol": "",
		"source": "hgnc_import",
	})
	assert.True(t, skipped.IsValid)
	assert.Equal(t, 1.0, skipped.Score)
	assert.Empty(t, skipped.Issues)

	// 未命中条件：走完整校验
	validated := sv.ValidateSelectively(EntityGene, map[string]interface{}{
		"symbol": "",
		"source": "manual",
	})
	assert.False(t, validated.IsValid)

	stats := sv.Stats()
	assert.Equal(t, int64(2), stats.Attempted)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.InDelta(t, 0.5, stats.AvgSelectivity, 1e-9)
}

func TestValidateSelectively_ProfileEntityTypeScope(t *testing.T) {
	sv := NewSelectiveValidator(newStandardEngine(), StrategyAdaptive)
	sv.RegisterProfile(trustedSourceProfile())
	require.NoError(t, sv.ActivateProfile("trusted_sources"))

	// 策略不覆盖publication，跳过条件不生效
	result := sv.ValidateSelectively(EntityPublication, map[string]interface{}{
		"source": "hgnc_import",
	})
	assert.False(t, result.IsValid, "pmid缺失应报错，策略不覆盖该实体类型")
}

func TestValidateSelectively_InactiveProfileDoesNotSkip(t *testing.T) {
	sv := NewSelectiveValidator(newStandardEngine(), StrategyAdaptive)
	sv.RegisterProfile(trustedSourceProfile())

	result := sv.ValidateSelectively(EntityGene, map[string]interface{}{
		"symbol": "",
		"source": "hgnc_import",
	})
	assert.False(t, result.IsValid, "未激活的策略不应引起跳过")
}

func TestActivateProfile_UnknownName(t *testing.T) {
	sv := NewSelectiveValidator(newStandardEngine(), StrategyAdaptive)
	assert.Error(t, sv.ActivateProfile("ghost"))
}

func TestValidateSelectively_ConfidenceBased(t *testing.T) {
	sv := NewSelectiveValidator(newStandardEngine(), StrategyConfidenceBased)

	trusted := map[string]interface{}{"symbol": "", "source": "test"}
	sv.SetConfidence(EntityGene, trusted, 0.95)

	skipped := sv.ValidateSelectively(EntityGene, trusted)
	assert.True(t, skipped.IsValid)
	assert.Equal(t, 1.0, skipped.Score)

	// 置信度低于阈值0.9时走完整校验
	doubtful := map[string]interface{}{"symbol": "", "source": "other"}
	sv.SetConfidence(EntityGene, doubtful, 0.5)
	validated := sv.ValidateSelectively(EntityGene, doubtful)
	assert.False(t, validated.IsValid)

	// 无置信度记录时走完整校验
	unknown := sv.ValidateSelectively(EntityGene, map[string]interface{}{"symbol": ""})
	assert.False(t, unknown.IsValid)

	stats := sv.Stats()
	assert.Equal(t, int64(3), stats.Attempted)
	assert.Equal(t, int64(1), stats.Skipped)
}
