/*
 * @module service/validation/catalog_test
 * @description 规则目录测试，覆盖内置规则族、严格级别单调性和运行期扩展
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 构造目录 -> 断言各实体类型规则族 -> 校验级别包含关系
 * @rules LAX规则集是STANDARD的子集，STANDARD是STRICT的子集
 * @dependencies testing, github.com/stretchr/testify
 * @refs catalog.go
 */

package validation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleCatalog_EntityTypes(t *testing.T) {
	catalog := NewRuleCatalog()

	expected := []string{EntityGene, EntityVariant, EntityPhenotype, EntityPublication, EntityRelationship}
	for _, entityType := range expected {
		assert.True(t, catalog.HasEntityType(entityType), "缺少实体类型 %s", entityType)
		assert.NotEmpty(t, catalog.RulesFor(entityType), "实体类型 %s 规则族为空", entityType)
	}
	assert.False(t, catalog.HasEntityType("pathway"))
	assert.Nil(t, catalog.RulesFor("pathway"))
	assert.ElementsMatch(t, expected, catalog.EntityTypes())
}

// rulesAtLevel 返回指定严格级别下生效的规则名集合
func rulesAtLevel(catalog *RuleCatalog, entityType string, level StrictnessLevel) map[string]bool {
	names := make(map[string]bool)
	for _, rule := range catalog.RulesFor(entityType) {
		if rule.MinLevel.Rank() <= level.Rank() {
			names[rule.RuleName] = true
		}
	}
	return names
}

func TestRuleCatalog_StrictnessMonotonicity(t *testing.T) {
	catalog := NewRuleCatalog()

	for _, entityType := range catalog.EntityTypes() {
		lax := rulesAtLevel(catalog, entityType, LevelLax)
		standard := rulesAtLevel(catalog, entityType, LevelStandard)
		strict := rulesAtLevel(catalog, entityType, LevelStrict)

		for name := range lax {
			assert.True(t, standard[name], "%s: LAX规则 %s 在STANDARD下丢失", entityType, name)
		}
		for name := range standard {
			assert.True(t, strict[name], "%s: STANDARD规则 %s 在STRICT下丢失", entityType, name)
		}
		assert.Len(t, strict, len(catalog.RulesFor(entityType)),
			"%s: STRICT级别应启用全部规则", entityType)
	}
}

func TestRuleCatalog_GeneRuleFamily(t *testing.T) {
	catalog := NewRuleCatalog()

	names := rulesAtLevel(catalog, EntityGene, LevelStrict)
	for _, expected := range []string{
		"symbol_required", "source_required", "hgnc_id_format",
		"chromosome_whitelist", "symbol_nomenclature",
	} {
		assert.True(t, names[expected], "基因规则族缺少 %s", expected)
	}
}

func TestRuleCatalog_AddRule(t *testing.T) {
	catalog := NewRuleCatalog()
	before := catalog.RuleCount(EntityGene)

	catalog.AddRule(EntityGene, ValidationRule{
		Field:    "locus_group",
		RuleName: "locus_group_required",
		Check:    requiredString("locus_group不能为空", "补充locus_group"),
		Severity: SeverityWarning,
		MinLevel: LevelStrict,
	})
	assert.Equal(t, before+1, catalog.RuleCount(EntityGene))

	// 新增规则在引擎中立即生效
	engine := NewEngine(catalog, LevelStrict)
	result := engine.ValidateEntity(EntityGene, map[string]interface{}{
		"symbol": "TP53",
		"source": "test",
	}, "locus_group_required")
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "locus_group_required", result.Issues[0].RuleName)
	assert.Equal(t, SeverityWarning, result.Issues[0].Severity)
}

func TestRuleCatalog_ConcurrentAddRuleAndValidate(t *testing.T) {
	catalog := NewRuleCatalog()
	engine := NewEngine(catalog, LevelStandard)

	payload := map[string]interface{}{
		"symbol": "TP53",
		"source": "test",
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			catalog.AddRule(EntityGene, ValidationRule{
				Field:    "map_location",
				RuleName: fmt.Sprintf("map_location_rule_%d", i),
				Check:    func(value interface{}) (bool, string, string) { return true, "", "" },
				Severity: SeverityInfo,
				MinLevel: LevelStandard,
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			require.True(t, catalog.HasEntityType(EntityGene))
			result := engine.ValidateEntity(EntityGene, payload)
			assert.True(t, result.IsValid)
		}
	}()
	wg.Wait()

	assert.Equal(t, len(geneRules())+100, catalog.RuleCount(EntityGene))
}

func TestRuleCatalog_AddRuleCopyOnWrite(t *testing.T) {
	catalog := NewRuleCatalog()

	before := catalog.RulesFor(EntityGene)
	beforeLen := len(before)

	catalog.AddRule(EntityGene, ValidationRule{
		Field:    "status",
		RuleName: "status_whitelist",
		Check:    func(value interface{}) (bool, string, string) { return true, "", "" },
		Severity: SeverityInfo,
		MinLevel: LevelStrict,
	})

	// 追加不得改写已返回的列表
	assert.Len(t, before, beforeLen)
	assert.Len(t, catalog.RulesFor(EntityGene), beforeLen+1)
}

func TestRuleCatalog_AddRuleNewEntityType(t *testing.T) {
	catalog := NewRuleCatalog()

	catalog.AddRule("pathway", ValidationRule{
		Field:    "name",
		RuleName: "name_required",
		Check:    requiredString("通路名称不能为空", "补充通路名称"),
		Severity: SeverityError,
		MinLevel: LevelLax,
	})
	assert.True(t, catalog.HasEntityType("pathway"))
	assert.Equal(t, 1, catalog.RuleCount("pathway"))
}
