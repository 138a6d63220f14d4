/*
 * @module service/validation/gate
 * @description 质量门禁，将一批校验结果聚合为通过/告警/失败裁决并给出标量质量分
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 结果收集 -> 按严重级别计数 -> 状态裁决 -> 回显动作列表
 * @rules 空输入裁决为通过且质量分为1.0；动作列表在构建时静态配置，门禁不动态计算动作
 * @dependencies 无外部依赖
 * @refs engine.go, pipeline.go
 */

package validation

// GateStatus 门禁裁决状态
type GateStatus string

const (
	GatePassed  GateStatus = "PASSED"
	GateWarning GateStatus = "WARNING"
	GateFailed  GateStatus = "FAILED"
)

// IssueCounts 按严重级别统计的问题数量
type IssueCounts struct {
	Error   int `json:"error"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
}

// Total 返回问题总数
func (c IssueCounts) Total() int {
	return c.Error + c.Warning + c.Info
}

// GateResult 一次门禁评估的裁决
type GateResult struct {
	Status       GateStatus  `json:"status"`
	QualityScore float64     `json:"quality_score"`
	IssueCounts  IssueCounts `json:"issue_counts"`
	Actions      []string    `json:"actions"`
}

// QualityGate 质量门禁，纯计算无状态，可并发使用
type QualityGate struct {
	name    string
	actions []string
}

// NewQualityGate 创建质量门禁，actions为裁决中原样回显的静态动作列表
func NewQualityGate(name string, actions []string) *QualityGate {
	if actions == nil {
		actions = []string{}
	}
	return &QualityGate{
		name:    name,
		actions: actions,
	}
}

// Name 返回门禁名称
func (g *QualityGate) Name() string {
	return g.name
}

// Evaluate 聚合一批校验结果为门禁裁决。
// 状态优先级: 存在ERROR为FAILED，否则存在WARNING为WARNING，否则PASSED；
// 质量分为各结果分数的算术平均
func (g *QualityGate) Evaluate(results []*ValidationResult) *GateResult {
	if len(results) == 0 {
		return &GateResult{
			Status:       GatePassed,
			QualityScore: 1.0,
			IssueCounts:  IssueCounts{},
			Actions:      g.actions,
		}
	}

	counts := IssueCounts{}
	scoreSum := 0.0
	for _, result := range results {
		scoreSum += result.Score
		for _, issue := range result.Issues {
			switch issue.Severity {
			case SeverityError:
				counts.Error++
			case SeverityWarning:
				counts.Warning++
			case SeverityInfo:
				counts.Info++
			}
		}
	}

	status := GatePassed
	if counts.Error > 0 {
		status = GateFailed
	} else if counts.Warning > 0 {
		status = GateWarning
	}

	return &GateResult{
		Status:       status,
		QualityScore: scoreSum / float64(len(results)),
		IssueCounts:  counts,
		Actions:      g.actions,
	}
}
