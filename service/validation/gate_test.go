/*
 * @module service/validation/gate_test
 * @description 质量门禁测试，覆盖空输入默认值、状态裁决优先级和分数聚合
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 构造校验结果 -> 门禁评估 -> 断言裁决
 * @rules 不依赖数据库，纯内存执行
 * @dependencies testing, github.com/stretchr/testify
 * @refs gate.go
 */

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateEvaluate_EmptyInput(t *testing.T) {
	gate := NewQualityGate("import_gate", []string{"log_results"})

	result := gate.Evaluate(nil)

	assert.Equal(t, GatePassed, result.Status)
	assert.Equal(t, 1.0, result.QualityScore)
	assert.Equal(t, IssueCounts{}, result.IssueCounts)
	assert.Equal(t, []string{"log_results"}, result.Actions)
}

func TestGateEvaluate_FailedOnError(t *testing.T) {
	gate := NewQualityGate("import_gate", []string{"log_results", "notify_curator"})

	results := []*ValidationResult{
		{
			IsValid: false,
			Issues: []ValidationIssue{
				{Field: "symbol", RuleName: "symbol_required", Severity: SeverityError},
			},
			Score: 0.5,
		},
	}

	verdict := gate.Evaluate(results)
	assert.Equal(t, GateFailed, verdict.Status)
	assert.Equal(t, 1, verdict.IssueCounts.Error)
	assert.Equal(t, 0.5, verdict.QualityScore)
	assert.Equal(t, []string{"log_results", "notify_curator"}, verdict.Actions)
}

func TestGateEvaluate_WarningWithoutError(t *testing.T) {
	gate := NewQualityGate("review_gate", nil)

	results := []*ValidationResult{
		{IsValid: true, Score: 0.75, Issues: []ValidationIssue{
			{Field: "doi", RuleName: "doi_format", Severity: SeverityWarning},
		}},
		{IsValid: true, Score: 1.0},
	}

	verdict := gate.Evaluate(results)
	assert.Equal(t, GateWarning, verdict.Status)
	assert.Equal(t, IssueCounts{Warning: 1}, verdict.IssueCounts)
	assert.InDelta(t, 0.875, verdict.QualityScore, 1e-9)
	assert.Empty(t, verdict.Actions)
}

func TestGateEvaluate_SeverityTallyAcrossResults(t *testing.T) {
	gate := NewQualityGate("audit_gate", []string{"log_results"})

	results := []*ValidationResult{
		{Score: 0.25, Issues: []ValidationIssue{
			{Severity: SeverityError},
			{Severity: SeverityWarning},
		}},
		{Score: 0.9, Issues: []ValidationIssue{
			{Severity: SeverityInfo},
		}},
		{Score: 1.0},
	}

	verdict := gate.Evaluate(results)
	assert.Equal(t, GateFailed, verdict.Status)
	assert.Equal(t, IssueCounts{Error: 1, Warning: 1, Info: 1}, verdict.IssueCounts)
	assert.Equal(t, 3, verdict.IssueCounts.Total())
}
