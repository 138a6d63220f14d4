/*
 * @module service/validation/types
 * @description 数据质量校验核心类型定义，包含严重级别、严格级别、校验规则、校验问题和校验结果
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 规则定义 -> 规则执行 -> 问题收集 -> 结果评分
 * @rules 评分始终落在[0,1]区间，IsValid当且仅当不存在ERROR级别问题
 * @dependencies 无外部依赖，纯数据定义
 * @refs catalog.go, engine.go
 */

package validation

// Severity 校验问题严重级别
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// 各严重级别对质量分数的扣减权重，累加后封顶为1
const (
	weightError   = 0.5
	weightWarning = 0.25
	weightInfo    = 0.1
)

// Weight 返回该严重级别的扣分权重
func (s Severity) Weight() float64 {
	switch s {
	case SeverityError:
		return weightError
	case SeverityWarning:
		return weightWarning
	case SeverityInfo:
		return weightInfo
	default:
		return 0
	}
}

// StrictnessLevel 校验严格级别
type StrictnessLevel string

const (
	LevelLax      StrictnessLevel = "LAX"
	LevelStandard StrictnessLevel = "STANDARD"
	LevelStrict   StrictnessLevel = "STRICT"
)

// Rank 返回严格级别的整数序，LAX < STANDARD < STRICT
func (l StrictnessLevel) Rank() int {
	switch l {
	case LevelLax:
		return 0
	case LevelStandard:
		return 1
	case LevelStrict:
		return 2
	default:
		return 0
	}
}

// CheckFunc 校验函数，输入字段值（关系型规则输入整个实体载荷），
// 返回是否通过、失败消息和修复建议。校验函数必须是无副作用的纯函数，
// 对类型不符的输入返回校验失败而不是panic
type CheckFunc func(value interface{}) (ok bool, message string, suggestion string)

// ValidationRule 单条校验规则，进程启动时构建一次，之后只读
type ValidationRule struct {
	Field    string          // 目标字段名，关系型规则使用合成字段名"relationship"
	RuleName string          // 规则名称，用于按名称筛选
	Check    CheckFunc       // 校验函数
	Severity Severity        // 失败时生成问题的严重级别
	MinLevel StrictnessLevel // 规则生效的最低严格级别
}

// relationshipField 关系型规则的合成字段名，命中时校验函数接收整个实体载荷
const relationshipField = "relationship"

// ValidationIssue 一次规则失败产生的校验问题
type ValidationIssue struct {
	Field      string      `json:"field"`
	Value      interface{} `json:"value,omitempty"`
	RuleName   string      `json:"rule_name"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Severity   Severity    `json:"severity"`
}

// ValidationResult 单个实体的校验结果，创建后不再修改
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Issues  []ValidationIssue `json:"issues"`
	Score   float64           `json:"score"`
}

// ErrorCount 统计ERROR级别问题数量
func (r *ValidationResult) ErrorCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			count++
		}
	}
	return count
}

// scoreFromIssues 按严重级别权重累加扣分并计算质量分数，
// 扣分封顶为1，分数不会为负
func scoreFromIssues(issues []ValidationIssue) float64 {
	penalty := 0.0
	for _, issue := range issues {
		penalty += issue.Severity.Weight()
	}
	if penalty > 1 {
		penalty = 1
	}
	return 1 - penalty
}
