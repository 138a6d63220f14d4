/*
 * @module service/validation/variant_rules
 * @description 变异位点实体校验规则，覆盖rsID、HGVS表达式、基因组坐标、等位基因和人群频率
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 进程启动时构建规则列表 -> 引擎按严格级别筛选执行
 * @rules 坐标必须非负且start<=end，人群频率必须落在[0,1]区间
 * @dependencies github.com/spf13/cast
 * @refs catalog.go, rules_common.go
 */

package validation

import (
	"fmt"
	"regexp"

	"github.com/spf13/cast"
)

var (
	rsIDPattern    = regexp.MustCompile(`^rs\d+$`)
	hgvsPattern    = regexp.MustCompile(`^(NM_|NC_|NP_|NG_)\d+(\.\d+)?:[cgpmn]\..+$`)
	allelePattern  = regexp.MustCompile(`^[ACGT]+$`)
	assemblyValues = []string{"GRCh37", "GRCh38"}
)

// variantRules 构建变异位点实体的有序校验规则列表
func variantRules() []ValidationRule {
	return []ValidationRule{
		{
			Field:    "chromosome",
			RuleName: "chromosome_whitelist",
			Check:    allowedValues("染色体", chromosomes, "染色体应为 1-22、X、Y 或 MT"),
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "position",
			RuleName: "position_non_negative",
			Check:    nonNegativeInt("基因组位置", "基因组位置应为非负整数"),
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    relationshipField,
			RuleName: "coordinates_ordered",
			Check:    checkCoordinatesOrdered,
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "population_frequencies",
			RuleName: "population_frequency_range",
			Check:    mapValuesInRange("人群频率", 0, 1, "等位基因频率必须落在[0,1]区间"),
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "rsid",
			RuleName: "rsid_format",
			Check:    formatPattern(rsIDPattern, "dbSNP标识符", "dbSNP标识符格式应为 rs 后跟数字，如 rs28934578"),
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
		{
			Field:    "hgvs",
			RuleName: "hgvs_format",
			Check:    formatPattern(hgvsPattern, "HGVS表达式", "HGVS表达式格式示例: NM_000546.6:c.524G>A"),
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
		{
			Field:    "reference_allele",
			RuleName: "reference_allele_format",
			Check:    formatPattern(allelePattern, "参考等位基因", "等位基因序列只应包含 A/C/G/T"),
			Severity: SeverityError,
			MinLevel: LevelStandard,
		},
		{
			Field:    "alternate_allele",
			RuleName: "alternate_allele_format",
			Check:    formatPattern(allelePattern, "替代等位基因", "等位基因序列只应包含 A/C/G/T"),
			Severity: SeverityError,
			MinLevel: LevelStandard,
		},
		{
			Field:    "gene_symbols",
			RuleName: "gene_symbol_conflict",
			Check:    listConflict("关联基因符号", "同一变异位点只应注释到一个规范基因符号"),
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
		{
			Field:    "clinical_significance",
			RuleName: "clinical_significance_values",
			Check: allowedValues("临床意义", []string{
				"pathogenic", "likely_pathogenic", "uncertain_significance",
				"likely_benign", "benign",
			}, "临床意义应使用ACMG五级分类术语"),
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
		{
			Field:    "assembly",
			RuleName: "assembly_values",
			Check:    allowedValues("参考基因组版本", assemblyValues, "参考基因组版本应为 GRCh37 或 GRCh38"),
			Severity: SeverityInfo,
			MinLevel: LevelStrict,
		},
	}
}

// checkCoordinatesOrdered 跨字段坐标检查：start与end同时存在时必须有start<=end。
// 使用合成字段接收整个载荷
func checkCoordinatesOrdered(value interface{}) (bool, string, string) {
	payload, ok := payloadOf(value)
	if !ok {
		return false, "坐标检查需要完整的实体载荷", ""
	}
	startRaw, hasStart := payload["start"]
	endRaw, hasEnd := payload["end"]
	if !hasStart || !hasEnd {
		return true, "", ""
	}
	start, err := cast.ToInt64E(startRaw)
	if err != nil {
		return false, fmt.Sprintf("起始位置不是有效整数: %v", startRaw), "start字段应为非负整数"
	}
	end, err := cast.ToInt64E(endRaw)
	if err != nil {
		return false, fmt.Sprintf("终止位置不是有效整数: %v", endRaw), "end字段应为非负整数"
	}
	if start < 0 || end < 0 {
		return false, fmt.Sprintf("基因组坐标不能为负数: start=%d, end=%d", start, end), "坐标应为非负整数"
	}
	if start > end {
		return false, fmt.Sprintf("起始位置 %d 大于终止位置 %d", start, end), "请交换start与end或核对坐标来源"
	}
	return true, "", ""
}
