/*
 * @module service/validation/relationship_rules
 * @description 基因-变异-表型关联实体校验规则，基于整个实体载荷进行跨字段检查
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 进程启动时构建规则列表 -> 引擎传入完整载荷执行
 * @rules 关系型规则统一使用合成字段名"relationship"，校验函数接收完整实体载荷
 * @dependencies github.com/spf13/cast
 * @refs catalog.go, rules_common.go
 */

package validation

import (
	"fmt"

	"github.com/spf13/cast"
)

// relationshipRules 构建关联实体的有序校验规则列表
func relationshipRules() []ValidationRule {
	return []ValidationRule{
		{
			Field:    relationshipField,
			RuleName: "triple_complete",
			Check:    checkTripleComplete,
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    relationshipField,
			RuleName: "confidence_interval_ordered",
			Check:    checkConfidenceInterval,
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    "score",
			RuleName: "score_range",
			Check:    numberInRange("关联评分", 0, 1, "关联评分必须落在[0,1]区间"),
			Severity: SeverityError,
			MinLevel: LevelLax,
		},
		{
			Field:    relationshipField,
			RuleName: "evidence_sources_present",
			Check:    checkEvidenceSources,
			Severity: SeverityWarning,
			MinLevel: LevelStandard,
		},
	}
}

// checkTripleComplete 检查基因/变异/表型三元组是否齐备。
// gene与phenotype必填，variant允许缺省（基因级关联）但不允许为空对象
func checkTripleComplete(value interface{}) (bool, string, string) {
	payload, ok := payloadOf(value)
	if !ok {
		return false, "关联检查需要完整的实体载荷", ""
	}
	for _, member := range []string{"gene", "phenotype"} {
		raw, exists := payload[member]
		if !exists || raw == nil {
			return false, fmt.Sprintf("关联缺少%s成员", member), "基因-表型关联必须同时包含gene与phenotype子对象"
		}
		sub, err := cast.ToStringMapE(raw)
		if err != nil || len(sub) == 0 {
			return false, fmt.Sprintf("关联的%s成员不是有效子对象: %v", member, raw), "成员应为包含标识符的对象"
		}
	}
	if raw, exists := payload["variant"]; exists {
		sub, err := cast.ToStringMapE(raw)
		if err != nil || len(sub) == 0 {
			return false, fmt.Sprintf("关联的variant成员不是有效子对象: %v", raw), "variant成员应为包含标识符的对象或整体省略"
		}
	}
	return true, "", ""
}

// checkConfidenceInterval 置信区间检查：low与high均在[0,1]且low<=high
func checkConfidenceInterval(value interface{}) (bool, string, string) {
	payload, ok := payloadOf(value)
	if !ok {
		return false, "关联检查需要完整的实体载荷", ""
	}
	raw, exists := payload["confidence_interval"]
	if !exists || raw == nil {
		return true, "", ""
	}
	interval, err := cast.ToStringMapE(raw)
	if err != nil {
		return false, fmt.Sprintf("置信区间不是有效对象: %v", raw), "confidence_interval应包含low与high两个数值"
	}
	low, err := cast.ToFloat64E(interval["low"])
	if err != nil {
		return false, fmt.Sprintf("置信区间下界不是有效数值: %v", interval["low"]), "low应为[0,1]内的数值"
	}
	high, err := cast.ToFloat64E(interval["high"])
	if err != nil {
		return false, fmt.Sprintf("置信区间上界不是有效数值: %v", interval["high"]), "high应为[0,1]内的数值"
	}
	if low < 0 || high > 1 {
		return false, fmt.Sprintf("置信区间 [%v, %v] 超出[0,1]范围", low, high), "置信区间端点必须落在[0,1]区间"
	}
	if low > high {
		return false, fmt.Sprintf("置信区间下界 %v 大于上界 %v", low, high), "请交换low与high或核对计算来源"
	}
	return true, "", ""
}

// checkEvidenceSources 证据来源检查：evidence列表存在时每项必须带source字段
func checkEvidenceSources(value interface{}) (bool, string, string) {
	payload, ok := payloadOf(value)
	if !ok {
		return false, "关联检查需要完整的实体载荷", ""
	}
	raw, exists := payload["evidence"]
	if !exists || raw == nil {
		return true, "", ""
	}
	items, err := cast.ToSliceE(raw)
	if err != nil {
		return false, fmt.Sprintf("证据列表不是有效数组: %v", raw), "evidence字段应为证据对象数组"
	}
	if len(items) == 0 {
		return false, "证据列表为空", "关联至少应附带一条证据来源"
	}
	for i, item := range items {
		entry, err := cast.ToStringMapE(item)
		if err != nil {
			return false, fmt.Sprintf("第%d条证据不是有效对象: %v", i+1, item), "证据项应为包含source字段的对象"
		}
		if cast.ToString(entry["source"]) == "" {
			return false, fmt.Sprintf("第%d条证据缺少source字段", i+1), "每条证据必须标注来源数据库或文献"
		}
	}
	return true, "", ""
}
