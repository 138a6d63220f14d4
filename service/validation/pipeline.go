/*
 * @module service/validation/pipeline
 * @description 校验流水线，按注册顺序维护命名检查点并对多实体类型载荷逐阶段评估
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 检查点注册 -> 载荷分组校验 -> 门禁评估 -> 阶段结果汇总
 * @rules 检查点评估顺序等于注册顺序；载荷键为复数实体类型，去掉尾部s得到单数类型
 * @dependencies biocuration-service/service/validation
 * @refs gate.go, orchestrator.go
 */

package validation

import (
	"strings"
)

// Checkpoint 命名流水线阶段，绑定一个或多个质量门禁
type Checkpoint struct {
	Name     string
	Gates    []*QualityGate
	Required bool
}

// Payload 多实体类型载荷，键为复数实体类型（如"genes"），值为原始实体列表
type Payload map[string][]map[string]interface{}

// EntityCount 返回载荷中所有分组的实体总数
func (p Payload) EntityCount() int {
	total := 0
	for _, entities := range p {
		total += len(entities)
	}
	return total
}

// StageResult 单个阶段的评估结果
type StageResult struct {
	Stage         string                         `json:"stage"`
	Passed        bool                           `json:"passed"`
	QualityScore  float64                        `json:"quality_score"`
	Actions       []string                       `json:"actions"`
	GateResults   []*GateResult                  `json:"gate_results,omitempty"`
	EntityResults map[string][]*ValidationResult `json:"entity_results,omitempty"`
}

// collectResults 展平阶段内所有分组的校验结果
func (s *StageResult) collectResults() []*ValidationResult {
	var flat []*ValidationResult
	for _, results := range s.EntityResults {
		flat = append(flat, results...)
	}
	return flat
}

// Pipeline 校验流水线，检查点按注册顺序评估
type Pipeline struct {
	name        string
	engine      *Engine
	checkpoints []*Checkpoint
	index       map[string]*Checkpoint
}

// NewPipeline 创建校验流水线
func NewPipeline(name string, engine *Engine) *Pipeline {
	return &Pipeline{
		name:   name,
		engine: engine,
		index:  make(map[string]*Checkpoint),
	}
}

// Name 返回流水线名称
func (p *Pipeline) Name() string {
	return p.name
}

// AddCheckpoint 按插入顺序注册检查点。
// 重复注册同名检查点时就地覆盖门禁配置并保留原有位置
func (p *Pipeline) AddCheckpoint(name string, gates []*QualityGate, required bool) {
	if existing, ok := p.index[name]; ok {
		existing.Gates = gates
		existing.Required = required
		return
	}
	cp := &Checkpoint{Name: name, Gates: gates, Required: required}
	p.checkpoints = append(p.checkpoints, cp)
	p.index[name] = cp
}

// Checkpoints 按注册顺序返回所有检查点
func (p *Pipeline) Checkpoints() []*Checkpoint {
	return p.checkpoints
}

// singularEntityType 从复数载荷键推导单数实体类型，仅去掉尾部的s
func singularEntityType(plural string) string {
	return strings.TrimSuffix(plural, "s")
}

// ValidateStage 评估指定名称的阶段。
// 未注册的阶段名返回通过的空操作结果而非错误；
// 阶段通过当且仅当所有门禁通过，质量分为各门禁分数平均，动作为各门禁动作串接
func (p *Pipeline) ValidateStage(stageName string, payload Payload) *StageResult {
	checkpoint, ok := p.index[stageName]
	if !ok {
		return &StageResult{
			Stage:   stageName,
			Passed:  true,
			Actions: []string{},
		}
	}

	entityResults := make(map[string][]*ValidationResult, len(payload))
	var flat []*ValidationResult
	for plural, entities := range payload {
		entityType := singularEntityType(plural)
		results := p.engine.ValidateBatch(entityType, entities)
		entityResults[plural] = results
		flat = append(flat, results...)
	}

	passed := true
	scoreSum := 0.0
	actions := []string{}
	gateResults := make([]*GateResult, 0, len(checkpoint.Gates))
	for _, gate := range checkpoint.Gates {
		gateResult := gate.Evaluate(flat)
		gateResults = append(gateResults, gateResult)
		if gateResult.Status == GateFailed {
			passed = false
		}
		scoreSum += gateResult.QualityScore
		actions = append(actions, gateResult.Actions...)
	}

	score := 1.0
	if len(checkpoint.Gates) > 0 {
		score = scoreSum / float64(len(checkpoint.Gates))
	}

	return &StageResult{
		Stage:         stageName,
		Passed:        passed,
		QualityScore:  score,
		Actions:       actions,
		GateResults:   gateResults,
		EntityResults: entityResults,
	}
}
