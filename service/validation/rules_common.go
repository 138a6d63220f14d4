/*
 * @module service/validation/rules_common
 * @description 通用校验函数构造器，供各实体类型规则文件复用
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 规则构建时生成闭包 -> 校验时执行
 * @rules 可选字段缺失视为通过，必填字段缺失视为失败；类型不符通过cast宽松转换处理
 * @dependencies github.com/spf13/cast
 * @refs gene_rules.go, variant_rules.go, phenotype_rules.go, publication_rules.go, relationship_rules.go
 */

package validation

import (
	"fmt"
	"regexp"

	"github.com/spf13/cast"
)

// isAbsent 判断字段值是否缺失（nil视为缺失，空字符串不算缺失）
func isAbsent(value interface{}) bool {
	return value == nil
}

// requiredString 必填字符串校验：缺失、空串或仅空白均失败
func requiredString(fieldLabel, suggestion string) CheckFunc {
	return func(value interface{}) (bool, string, string) {
		if isAbsent(value) {
			return false, fmt.Sprintf("%s缺失", fieldLabel), suggestion
		}
		str := cast.ToString(value)
		if len(str) == 0 {
			return false, fmt.Sprintf("%s为空", fieldLabel), suggestion
		}
		return true, "", ""
	}
}

// formatPattern 可选字段格式校验：字段缺失时通过，存在时按正则检查
func formatPattern(pattern *regexp.Regexp, fieldLabel, suggestion string) CheckFunc {
	return func(value interface{}) (bool, string, string) {
		if isAbsent(value) {
			return true, "", ""
		}
		str := cast.ToString(value)
		if str == "" {
			return true, "", ""
		}
		if !pattern.MatchString(str) {
			return false, fmt.Sprintf("%s格式不正确: %s", fieldLabel, str), suggestion
		}
		return true, "", ""
	}
}

// allowedValues 可选字段取值白名单校验
func allowedValues(fieldLabel string, allowed []string, suggestion string) CheckFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	return func(value interface{}) (bool, string, string) {
		if isAbsent(value) {
			return true, "", ""
		}
		str := cast.ToString(value)
		if str == "" {
			return true, "", ""
		}
		if _, ok := set[str]; !ok {
			return false, fmt.Sprintf("%s取值 %s 不在允许范围内", fieldLabel, str), suggestion
		}
		return true, "", ""
	}
}

// numberInRange 可选数值范围校验，无法解析为数值视为失败
func numberInRange(fieldLabel string, min, max float64, suggestion string) CheckFunc {
	return func(value interface{}) (bool, string, string) {
		if isAbsent(value) {
			return true, "", ""
		}
		num, err := cast.ToFloat64E(value)
		if err != nil {
			return false, fmt.Sprintf("%s不是有效数值: %v", fieldLabel, value), suggestion
		}
		if num < min || num > max {
			return false, fmt.Sprintf("%s取值 %v 超出范围 [%v, %v]", fieldLabel, num, min, max), suggestion
		}
		return true, "", ""
	}
}

// nonNegativeInt 可选非负整数校验
func nonNegativeInt(fieldLabel, suggestion string) CheckFunc {
	return func(value interface{}) (bool, string, string) {
		if isAbsent(value) {
			return true, "", ""
		}
		num, err := cast.ToInt64E(value)
		if err != nil {
			return false, fmt.Sprintf("%s不是有效整数: %v", fieldLabel, value), suggestion
		}
		if num < 0 {
			return false, fmt.Sprintf("%s不能为负数: %d", fieldLabel, num), suggestion
		}
		return true, "", ""
	}
}

// listConflict 列表字段冲突检测：列表中出现多个不同的规范值视为冲突
func listConflict(fieldLabel, suggestion string) CheckFunc {
	return func(value interface{}) (bool, string, string) {
		if isAbsent(value) {
			return true, "", ""
		}
		items, err := cast.ToStringSliceE(value)
		if err != nil {
			return false, fmt.Sprintf("%s不是字符串列表: %v", fieldLabel, value), suggestion
		}
		distinct := make(map[string]struct{})
		for _, item := range items {
			if item == "" {
				continue
			}
			distinct[item] = struct{}{}
		}
		if len(distinct) > 1 {
			return false, fmt.Sprintf("%s存在冲突取值，发现%d个不同值", fieldLabel, len(distinct)), suggestion
		}
		return true, "", ""
	}
}

// listDuplicates 列表字段重复项检测
func listDuplicates(fieldLabel, suggestion string) CheckFunc {
	return func(value interface{}) (bool, string, string) {
		if isAbsent(value) {
			return true, "", ""
		}
		items, err := cast.ToStringSliceE(value)
		if err != nil {
			return false, fmt.Sprintf("%s不是字符串列表: %v", fieldLabel, value), suggestion
		}
		seen := make(map[string]struct{}, len(items))
		for _, item := range items {
			if _, dup := seen[item]; dup {
				return false, fmt.Sprintf("%s存在重复项: %s", fieldLabel, item), suggestion
			}
			seen[item] = struct{}{}
		}
		return true, "", ""
	}
}

// mapValuesInRange 可选映射字段校验：每个value必须落在[min,max]区间
func mapValuesInRange(fieldLabel string, min, max float64, suggestion string) CheckFunc {
	return func(value interface{}) (bool, string, string) {
		if isAbsent(value) {
			return true, "", ""
		}
		entries, err := cast.ToStringMapE(value)
		if err != nil {
			return false, fmt.Sprintf("%s不是键值映射: %v", fieldLabel, value), suggestion
		}
		for key, raw := range entries {
			num, err := cast.ToFloat64E(raw)
			if err != nil {
				return false, fmt.Sprintf("%s中 %s 的取值不是有效数值: %v", fieldLabel, key, raw), suggestion
			}
			if num < min || num > max {
				return false, fmt.Sprintf("%s中 %s 的取值 %v 超出范围 [%v, %v]", fieldLabel, key, num, min, max), suggestion
			}
		}
		return true, "", ""
	}
}

// payloadOf 将关系型规则的入参还原为实体载荷
func payloadOf(value interface{}) (map[string]interface{}, bool) {
	payload, ok := value.(map[string]interface{})
	return payload, ok
}

// chromosomes 人类染色体白名单
var chromosomes = []string{
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
	"11", "12", "13", "14", "15", "16", "17", "18", "19", "20",
	"21", "22", "X", "Y", "MT",
}
