/*
 * @module service/validation/selective
 * @description 选择性校验器，通过命名跳过策略或置信度阈值跳过冗余校验
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 策略匹配/置信度查询 -> 命中则返回合成有效结果 -> 未命中走完整校验
 * @rules 同一时刻至多一个激活的跳过策略；置信度阈值固定为0.9；跳过返回score=1.0的合成结果
 * @dependencies sync, github.com/spf13/cast
 * @refs engine.go, cache.go
 */

package validation

import (
	"fmt"
	"sync"

	"github.com/spf13/cast"
)

// SelectiveStrategy 选择性校验策略
type SelectiveStrategy string

const (
	StrategyAdaptive        SelectiveStrategy = "ADAPTIVE"
	StrategyConfidenceBased SelectiveStrategy = "CONFIDENCE_BASED"
)

// confidenceThreshold 置信度跳过阈值，达到即跳过完整校验
const confidenceThreshold = 0.9

// SkipCondition 跳过条件，目前仅支持equals操作符
type SkipCondition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// matches 判断载荷是否命中该条件
func (sc SkipCondition) matches(payload map[string]interface{}) bool {
	if sc.Operator != "equals" {
		return false
	}
	raw, exists := payload[sc.Field]
	if !exists {
		return false
	}
	return cast.ToString(raw) == cast.ToString(sc.Value)
}

// SelectiveProfile 命名跳过策略
type SelectiveProfile struct {
	Name           string          `json:"name"`
	EntityTypes    []string        `json:"entity_types"`
	RequiredRules  []string        `json:"required_rules"`
	SkipConditions []SkipCondition `json:"skip_conditions"`
}

// appliesTo 判断策略是否覆盖指定实体类型
func (p *SelectiveProfile) appliesTo(entityType string) bool {
	for _, t := range p.EntityTypes {
		if t == entityType {
			return true
		}
	}
	return false
}

// SelectiveStats 选择性校验统计
type SelectiveStats struct {
	Attempted      int64   `json:"attempted"`
	Skipped        int64   `json:"skipped"`
	AvgSelectivity float64 `json:"avg_selectivity"`
}

// SelectiveValidator 选择性校验器
type SelectiveValidator struct {
	mu            sync.Mutex
	engine        *Engine
	strategy      SelectiveStrategy
	profiles      map[string]*SelectiveProfile
	activeProfile string
	confidence    map[string]float64 // 外部填充，键为实体类型+规范化载荷哈希
	attempted     int64
	skipped       int64
}

// NewSelectiveValidator 创建选择性校验器
func NewSelectiveValidator(engine *Engine, strategy SelectiveStrategy) *SelectiveValidator {
	return &SelectiveValidator{
		engine:     engine,
		strategy:   strategy,
		profiles:   make(map[string]*SelectiveProfile),
		confidence: make(map[string]float64),
	}
}

// RegisterProfile 注册命名跳过策略
func (sv *SelectiveValidator) RegisterProfile(profile *SelectiveProfile) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.profiles[profile.Name] = profile
}

// ActivateProfile 激活指定策略，同一时刻至多一个激活策略
func (sv *SelectiveValidator) ActivateProfile(name string) error {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if _, ok := sv.profiles[name]; !ok {
		return fmt.Errorf("跳过策略 %s 未注册", name)
	}
	sv.activeProfile = name
	return nil
}

// DeactivateProfile 取消激活策略
func (sv *SelectiveValidator) DeactivateProfile() {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.activeProfile = ""
}

// SetConfidence 写入外部计算的置信度，键为实体类型与规范化载荷
func (sv *SelectiveValidator) SetConfidence(entityType string, payload map[string]interface{}, confidence float64) {
	key := CacheKey(entityType, payload)
	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.confidence[key] = confidence
}

// syntheticValidResult 跳过校验时返回的合成有效结果
func syntheticValidResult() *ValidationResult {
	return &ValidationResult{
		IsValid: true,
		Issues:  []ValidationIssue{},
		Score:   1.0,
	}
}

// ValidateSelectively 按策略决定跳过或执行完整校验
func (sv *SelectiveValidator) ValidateSelectively(entityType string, payload map[string]interface{}) *ValidationResult {
	sv.mu.Lock()
	sv.attempted++
	skip := false
	switch sv.strategy {
	case StrategyAdaptive:
		if sv.activeProfile != "" {
			profile := sv.profiles[sv.activeProfile]
			if profile != nil && profile.appliesTo(entityType) {
				for _, condition := range profile.SkipConditions {
					if condition.matches(payload) {
						skip = true
						break
					}
				}
			}
		}
	case StrategyConfidenceBased:
		if confidence, ok := sv.confidence[CacheKey(entityType, payload)]; ok && confidence >= confidenceThreshold {
			skip = true
		}
	}
	if skip {
		sv.skipped++
	}
	sv.mu.Unlock()

	if skip {
		return syntheticValidResult()
	}
	return sv.engine.ValidateEntity(entityType, payload)
}

// Stats 返回尝试/跳过统计快照
func (sv *SelectiveValidator) Stats() SelectiveStats {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	stats := SelectiveStats{
		Attempted: sv.attempted,
		Skipped:   sv.skipped,
	}
	if sv.attempted > 0 {
		stats.AvgSelectivity = float64(sv.skipped) / float64(sv.attempted)
	}
	return stats
}
