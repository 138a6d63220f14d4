/*
 * @module service/validation/catalog
 * @description 校验规则目录，按实体类型维护有序的校验规则列表，进程启动时显式构建
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 启动时构建目录 -> 运行期可注册自定义规则 -> 引擎并发查询
 * @rules 读写锁保护规则映射；追加规则写时复制，已返回的规则列表不会被修改
 * @dependencies 无外部依赖
 * @refs gene_rules.go, variant_rules.go, phenotype_rules.go, publication_rules.go, relationship_rules.go, engine.go
 */

package validation

import "sync"

// 支持的实体类型
const (
	EntityGene         = "gene"
	EntityVariant      = "variant"
	EntityPhenotype    = "phenotype"
	EntityPublication  = "publication"
	EntityRelationship = "relationship"
)

// RuleCatalog 实体类型到有序规则列表的映射。
// 规则列表写时复制，读取方拿到的列表不会再被修改
type RuleCatalog struct {
	mu    sync.RWMutex
	rules map[string][]ValidationRule
}

// NewRuleCatalog 构建内置规则目录。
// 各实体类型的规则列表在此显式装配，规则文件之间不互相引用，
// 也不反向依赖引擎
func NewRuleCatalog() *RuleCatalog {
	return &RuleCatalog{
		rules: map[string][]ValidationRule{
			EntityGene:         geneRules(),
			EntityVariant:      variantRules(),
			EntityPhenotype:    phenotypeRules(),
			EntityPublication:  publicationRules(),
			EntityRelationship: relationshipRules(),
		},
	}
}

// RulesFor 返回指定实体类型的规则列表，未知类型返回nil
func (c *RuleCatalog) RulesFor(entityType string) []ValidationRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rules[entityType]
}

// HasEntityType 判断实体类型是否已注册
func (c *RuleCatalog) HasEntityType(entityType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rules[entityType]
	return ok
}

// EntityTypes 返回所有已注册的实体类型
func (c *RuleCatalog) EntityTypes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make([]string, 0, len(c.rules))
	for entityType := range c.rules {
		types = append(types, entityType)
	}
	return types
}

// AddRule 向指定实体类型追加一条规则，保持追加顺序。
// 写时复制整个列表，避免覆写已交给读取方的底层数组
func (c *RuleCatalog) AddRule(entityType string, rule ValidationRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	existing := c.rules[entityType]
	updated := make([]ValidationRule, len(existing), len(existing)+1)
	copy(updated, existing)
	c.rules[entityType] = append(updated, rule)
}

// RuleCount 返回指定实体类型的规则数量
func (c *RuleCatalog) RuleCount(entityType string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rules[entityType])
}
