/*
 * @module service/validation/phenotype_rules
 * @description 表型实体校验规则，覆盖HPO标识符、表型名称、定义和同义词一致性
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 进程启动时构建规则列表 -> 引擎按严格级别筛选执行
 * @rules HPO标识符为核心业务约束，定义与起病信息为卫生检查
 * @dependencies github.com/spf13/cast
 * @refs catalog.go, rules_common.go
 */

package validation

import (
	"regexp"
)

var hpoIDPattern = regexp.MustCompile(`^HP:\d{7}$`)

// phenotypeRules 构建表型实体的有序校验规则列表
func phenotypeRules() []ValidationRule {
	return []ValidationRule{
		{
			Field:    "hpo_id",
			RuleName: "hpo_id_required",
			Check:    requiredString("HPO标识符", "请提供人类表型本体标识符，如 HP:0001250"),
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "hpo_id",
			RuleName: "hpo_id_format",
			Check:    formatPattern(hpoIDPattern, "HPO标识符", "HPO标识符格式应为 HP: 后跟7位数字"),
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "name",
			RuleName: "name_required",
			Check:    requiredString("表型名称", "请提供HPO术语对应的表型名称"),
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "definition",
			RuleName: "definition_present",
			Check:    requiredString("表型定义", "建议补充该表型的文字定义以便审编"),
			Severity: SeverityInfo,
			MinLevel: LevelStandard,
		},
		{
			Field:    "synonyms",
			RuleName: "synonym_duplicates",
			Check:    listDuplicates("表型同义词", "请移除同义词列表中的重复项"),
			Severity: SeverityWarning,
			MinLevel: LevelStrict,
		},
		{
			Field:    "onset",
			RuleName: "onset_values",
			Check: allowedValues("起病时期", []string{
				"antenatal", "congenital", "neonatal", "infantile",
				"childhood", "juvenile", "adult",
			}, "起病时期应使用HPO起病术语"),
			Severity: SeverityInfo,
			MinLevel: LevelStrict,
		},
	}
}
