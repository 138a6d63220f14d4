/*
 * @module service/validation/gene_rules
 * @description 基因实体校验规则，覆盖基因符号、跨库标识符、染色体位置和交叉引用一致性
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 进程启动时构建规则列表 -> 引擎按严格级别筛选执行
 * @rules LAX级别规则为核心业务约束，STANDARD为常规卫生检查，STRICT为命名规范偏好
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
	geneSymbolPattern  = regexp.MustCompile(`^[A-Z][A-Z0-9-]*$`)
	hgncIDPattern      = regexp.MustCompile(`^HGNC:\d+$`)
	ensemblGenePattern = regexp.MustCompile(`^ENSG\d{11}$`)
	entrezIDPattern    = regexp.MustCompile(`^\d+$`)
)

// geneRules 构建基因实体的有序校验规则列表
func geneRules() []ValidationRule {
	return []ValidationRule{
		{
			Field:    "symbol",
			RuleName: "symbol_required",
			Check:    requiredString("基因符号", "请提供HGNC批准的基因符号，如 TP53"),
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "source",
			RuleName: "source_required",
			Check:    requiredString("数据来源", "请标注该基因记录的数据来源"),
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "hgnc_id",
			RuleName: "hgnc_id_format",
			Check:    formatPattern(hgncIDPattern, "HGNC标识符", "HGNC标识符格式应为 HGNC:<数字>，如 HGNC:11998"),
			Severity: SeverityError,
			MinLevel: LevelStandard,
		},
		{
			Field:    "ensembl_id",
			RuleName: "ensembl_id_format",
			Check:    formatPattern(ensemblGenePattern, "Ensembl基因标识符", "Ensembl基因标识符格式应为 ENSG 后跟11位数字"),
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
		{
			Field:    "entrez_id",
			RuleName: "entrez_id_format",
			Check:    formatPattern(entrezIDPattern, "NCBI Entrez标识符", "Entrez基因标识符应为纯数字"),
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
		{
			Field:    "chromosome",
			RuleName: "chromosome_whitelist",
			Check:    allowedValues("染色体", chromosomes, "染色体应为 1-22、X、Y 或 MT"),
			Severity: SeverityError,
			MinLevel: LevelStandard,
		},
		{
			Field:    "aliases",
			RuleName: "alias_symbol_conflict",
			Check:    checkAliasConflict,
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
		{
			Field:    "symbol",
			RuleName: "symbol_nomenclature",
			Check:    checkSymbolNomenclature,
			Severity: SeverityWarning,
			MinLevel: LevelStrict,
		},
	}
}

// checkAliasConflict 检测别名列表中是否同时断言了多个规范基因符号。
// 别名与主符号重复不算冲突，列表中出现多个互不相同的大写规范符号才告警
func checkAliasConflict(value interface{}) (bool, string, string) {
	if isAbsent(value) {
		return true, "", ""
	}
	aliases, err := cast.ToStringSliceE(value)
	if err != nil {
		return false, fmt.Sprintf("基因别名不是字符串列表: %v", value), "aliases字段应为字符串数组"
	}
	canonical := make(map[string]struct{})
	for _, alias := range aliases {
		if geneSymbolPattern.MatchString(alias) {
			canonical[alias] = struct{}{}
		}
	}
	if len(canonical) > 1 {
		return false, fmt.Sprintf("别名列表中存在%d个互相冲突的规范基因符号", len(canonical)),
			"同一基因记录只应断言一个规范符号，其余应标记为历史别名"
	}
	return true, "", ""
}

// checkSymbolNomenclature 基因符号命名规范检查，要求大写字母开头的HGNC风格符号
func checkSymbolNomenclature(value interface{}) (bool, string, string) {
	if isAbsent(value) {
		return true, "", ""
	}
	symbol := cast.ToString(value)
	if symbol == "" {
		return true, "", ""
	}
	if !geneSymbolPattern.MatchString(symbol) {
		return false, fmt.Sprintf("基因符号 %s 不符合命名规范", symbol),
			"基因符号应为大写字母、数字和连字符组成，且以大写字母开头"
	}
	return true, "", ""
}
