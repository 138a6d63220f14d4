/*
 * @module service/validation/engine
 * @description 校验引擎，按实体类型与严格级别选取规则并对单个实体或批量实体执行校验
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 规则选取 -> 按名称筛选 -> 按严格级别过滤 -> 逐条执行 -> 评分
 * @rules 未知实体类型作为校验失败上报而非错误；规则之间相互独立，不短路；批量校验保持输入顺序
 * @dependencies biocuration-service/service/validation目录
 * @refs catalog.go, gate.go
 */

package validation

// Engine 校验引擎。目录与严格级别在构建后只读，
// 引擎本身无状态，可被任意数量的并发调用方直接使用
type Engine struct {
	catalog *RuleCatalog
	level   StrictnessLevel
}

// NewEngine 创建校验引擎
func NewEngine(catalog *RuleCatalog, level StrictnessLevel) *Engine {
	return &Engine{
		catalog: catalog,
		level:   level,
	}
}

// Level 返回引擎配置的严格级别
func (e *Engine) Level() StrictnessLevel {
	return e.level
}

// Catalog 返回引擎使用的规则目录
func (e *Engine) Catalog() *RuleCatalog {
	return e.catalog
}

// ValidateEntity 校验单个实体。
// ruleNames非空时按名称取交集，交集为空则回退到完整规则集（刻意的宽松语义）。
// 未知实体类型返回包含单条ERROR问题、分数为0的结果
func (e *Engine) ValidateEntity(entityType string, payload map[string]interface{}, ruleNames ...string) *ValidationResult {
	if !e.catalog.HasEntityType(entityType) {
		return &ValidationResult{
			IsValid: false,
			Issues: []ValidationIssue{
				{
					Field:    "entity_type",
					Value:    entityType,
					RuleName: "unknown_entity_type",
					Message:  "未知的实体类型: " + entityType,
					Severity: SeverityError,
				},
			},
			Score: 0.0,
		}
	}

	rules := e.selectRules(entityType, ruleNames)

	var issues []ValidationIssue
	for _, rule := range rules {
		if rule.MinLevel.Rank() > e.level.Rank() {
			continue
		}

		// 关系型规则接收完整载荷，普通规则接收字段值
		var value interface{}
		if rule.Field == relationshipField {
			value = payload
		} else {
			value = payload[rule.Field]
		}

		ok, message, suggestion := rule.Check(value)
		if !ok {
			issues = append(issues, ValidationIssue{
				Field:      rule.Field,
				Value:      value,
				RuleName:   rule.RuleName,
				Message:    message,
				Suggestion: suggestion,
				Severity:   rule.Severity,
			})
		}
	}

	result := &ValidationResult{
		Issues: issues,
		Score:  scoreFromIssues(issues),
	}
	result.IsValid = result.ErrorCount() == 0
	return result
}

// ValidateBatch 按输入顺序校验一批实体，结果与逐个调用ValidateEntity等价
func (e *Engine) ValidateBatch(entityType string, payloads []map[string]interface{}, ruleNames ...string) []*ValidationResult {
	results := make([]*ValidationResult, len(payloads))
	for i, payload := range payloads {
		results[i] = e.ValidateEntity(entityType, payload, ruleNames...)
	}
	return results
}

// selectRules 选取目录规则并按名称取交集，交集为空时回退到完整规则集
func (e *Engine) selectRules(entityType string, ruleNames []string) []ValidationRule {
	all := e.catalog.RulesFor(entityType)
	if len(ruleNames) == 0 {
		return all
	}

	wanted := make(map[string]struct{}, len(ruleNames))
	for _, name := range ruleNames {
		wanted[name] = struct{}{}
	}

	var selected []ValidationRule
	for _, rule := range all {
		if _, ok := wanted[rule.RuleName]; ok {
			selected = append(selected, rule)
		}
	}
	if len(selected) == 0 {
		return all
	}
	return selected
}
