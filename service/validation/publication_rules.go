/*
 * @module service/validation/publication_rules
 * @description 文献实体校验规则，覆盖PubMed标识符、DOI、标题、年份和作者列表
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 进程启动时构建规则列表 -> 引擎按严格级别筛选执行
 * @rules PMID与标题为核心业务约束，DOI与年份为卫生检查，期刊信息为风格偏好
 * @dependencies github.com/spf13/cast, golang.org/x/text/cases
 * @refs catalog.go, rules_common.go
 */

package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	pmidPattern = regexp.MustCompile(`^\d{1,9}$`)
	doiPattern  = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
)

// publicationRules 构建文献实体的有序校验规则列表
func publicationRules() []ValidationRule {
	return []ValidationRule{
		{
			Field:    "pmid",
			RuleName: "pmid_format",
			Check:    checkPMID,
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "title",
			RuleName: "title_required",
			Check:    requiredString("文献标题", "请提供文献标题"),
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "doi",
			RuleName: "doi_format",
			Check:    formatPattern(doiPattern, "DOI", "DOI格式应为 10.<注册机构代码>/<后缀>，如 10.1038/nature12373"),
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
		{
			Field:    "year",
			RuleName: "year_range",
			Check:    checkPublicationYear,
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
		{
			Field:    "authors",
			RuleName: "authors_non_empty",
			Check:    checkAuthors,
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
		{
			Field:    "journal",
			RuleName: "journal_title_case",
			Check:    checkJournalTitleCase,
			Severity: SeverityInfo,
			MinLevel: LevelStrict,
		},
	}
}

// checkPMID PubMed标识符检查：必填且为1-9位纯数字
func checkPMID(value interface{}) (bool, string, string) {
	if isAbsent(value) {
		return false, "PubMed标识符缺失", "请提供PMID，如 25741868"
	}
	pmid := cast.ToString(value)
	if pmid == "" {
		return false, "PubMed标识符为空", "请提供PMID，如 25741868"
	}
	if !pmidPattern.MatchString(pmid) {
		return false, fmt.Sprintf("PubMed标识符格式不正确: %s", pmid), "PMID应为不超过9位的纯数字"
	}
	return true, "", ""
}

// checkPublicationYear 发表年份范围检查，上限放宽到明年以容纳预发表记录
func checkPublicationYear(value interface{}) (bool, string, string) {
	if isAbsent(value) {
		return true, "", ""
	}
	year, err := cast.ToIntE(value)
	if err != nil {
		return false, fmt.Sprintf("发表年份不是有效整数: %v", value), "year字段应为四位年份"
	}
	maxYear := time.Now().Year() + 1
	if year < 1800 || year > maxYear {
		return false, fmt.Sprintf("发表年份 %d 超出合理范围 [1800, %d]", year, maxYear), "请核对文献发表年份"
	}
	return true, "", ""
}

// checkAuthors 作者列表检查：字段存在时不允许为空列表
func checkAuthors(value interface{}) (bool, string, string) {
	if isAbsent(value) {
		return true, "", ""
	}
	authors, err := cast.ToStringSliceE(value)
	if err != nil {
		return false, fmt.Sprintf("作者列表不是字符串列表: %v", value), "authors字段应为作者姓名数组"
	}
	if len(authors) == 0 {
		return false, "作者列表为空", "请至少提供一位作者"
	}
	for _, author := range authors {
		if author == "" {
			return false, "作者列表包含空白条目", "请移除作者列表中的空白条目"
		}
	}
	return true, "", ""
}

// checkJournalTitleCase 期刊名称风格检查，建议使用标题大小写
func checkJournalTitleCase(value interface{}) (bool, string, string) {
	if isAbsent(value) {
		return true, "", ""
	}
	journal := cast.ToString(value)
	if journal == "" {
		return true, "", ""
	}
	// cases.Caser带内部状态，不能跨goroutine共享，每次检查单独构建
	caser := cases.Title(language.English)
	if expected := caser.String(journal); journal != expected {
		return false, fmt.Sprintf("期刊名称 %s 不符合标题大小写风格", journal),
			fmt.Sprintf("建议写作 %s", expected)
	}
	return true, "", ""
}
