/*
 * @module service/validation/engine_test
 * @description 校验引擎测试，覆盖评分边界、有效性一致性、严格级别过滤和规则名筛选回退
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 构建目录与引擎 -> 输入载荷 -> 断言结果
 * @rules 不依赖数据库，纯内存执行
 * @dependencies testing, github.com/stretchr/testify
 * @refs engine.go, catalog.go
 */

package validation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStandardEngine() *Engine {
	return NewEngine(NewRuleCatalog(), LevelStandard)
}

func TestValidateEntity_EmptyGeneSymbol(t *testing.T) {
	engine := newStandardEngine()

	result := engine.ValidateEntity(EntityGene, map[string]interface{}{
		"symbol": "",
		"source": "test",
	})

	assert.False(t, result.IsValid)
	assert.Less(t, result.Score, 1.0)

	found := false
	for _, issue := range result.Issues {
		if issue.Field == "symbol" && issue.Severity == SeverityError {
			found = true
		}
	}
	assert.True(t, found, "应存在symbol字段的ERROR问题")
}

func TestValidateEntity_CleanGene(t *testing.T) {
	engine := newStandardEngine()

	result := engine.ValidateEntity(EntityGene, map[string]interface{}{
		"symbol":  "TP53",
		"hgnc_id": "HGNC:11998",
		"source":  "test",
	})

	assert.True(t, result.IsValid)
	assert.Equal(t, 1.0, result.Score)
	assert.Empty(t, result.Issues)
}

func TestValidateEntity_PopulationFrequencyOutOfRange(t *testing.T) {
	engine := newStandardEngine()

	result := engine.ValidateEntity(EntityVariant, map[string]interface{}{
		"population_frequencies": map[string]interface{}{"AFR": 1.5},
	})

	assert.False(t, result.IsValid)
	found := false
	for _, issue := range result.Issues {
		if issue.RuleName == "population_frequency_range" {
			found = true
			assert.Equal(t, SeverityError, issue.Severity)
		}
	}
	assert.True(t, found, "应存在人群频率越界的ERROR问题")
}

func TestValidateEntity_UnknownEntityType(t *testing.T) {
	engine := newStandardEngine()

	result := engine.ValidateEntity("protein", map[string]interface{}{"id": "P04637"})

	assert.False(t, result.IsValid)
	assert.Equal(t, 0.0, result.Score)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "unknown_entity_type", result.Issues[0].RuleName)
	assert.Equal(t, SeverityError, result.Issues[0].Severity)
}

func TestValidateEntity_ScoreBounds(t *testing.T) {
	engine := NewEngine(NewRuleCatalog(), LevelStrict)

	payloads := []map[string]interface{}{
		{},
		{"symbol": ""},
		{"symbol": "tp53", "source": "", "hgnc_id": "bad", "chromosome": "99", "ensembl_id": "nope", "entrez_id": "x"},
		{"symbol": "TP53", "source": "test"},
	}

	for _, payload := range payloads {
		result := engine.ValidateEntity(EntityGene, payload)
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 1.0)
	}
}

func TestValidateEntity_ValidityConsistency(t *testing.T) {
	engine := NewEngine(NewRuleCatalog(), LevelStrict)

	payloads := []map[string]interface{}{
		{"symbol": "TP53", "source": "test"},
		{"symbol": "", "source": "test"},
		{"symbol": "BRCA1", "source": "test", "journal": "x"},
		{"chromosome": "7", "position": -5},
	}

	for _, payload := range payloads {
		for _, entityType := range []string{EntityGene, EntityVariant} {
			result := engine.ValidateEntity(entityType, payload)
			assert.Equal(t, result.ErrorCount() == 0, result.IsValid,
				"IsValid必须与不存在ERROR问题等价")
		}
	}
}

func TestValidateEntity_MonotonicDegradation(t *testing.T) {
	engine := newStandardEngine()

	clean := engine.ValidateEntity(EntityGene, map[string]interface{}{
		"symbol": "TP53", "source": "test",
	})
	oneIssue := engine.ValidateEntity(EntityGene, map[string]interface{}{
		"symbol": "TP53", "source": "test", "ensembl_id": "bad",
	})
	twoIssues := engine.ValidateEntity(EntityGene, map[string]interface{}{
		"symbol": "TP53", "source": "test", "ensembl_id": "bad", "hgnc_id": "bad",
	})

	assert.Greater(t, clean.Score, oneIssue.Score)
	assert.Greater(t, oneIssue.Score, twoIssues.Score)
}

func TestValidateEntity_StrictnessFiltering(t *testing.T) {
	payload := map[string]interface{}{
		"symbol": "tp53", // 小写符号只在STRICT级别告警
		"source": "test",
	}

	standard := NewEngine(NewRuleCatalog(), LevelStandard).ValidateEntity(EntityGene, payload)
	strict := NewEngine(NewRuleCatalog(), LevelStrict).ValidateEntity(EntityGene, payload)

	assert.True(t, standard.IsValid)
	assert.Empty(t, standard.Issues)

	assert.True(t, strict.IsValid, "命名规范问题是WARNING，不影响有效性")
	require.Len(t, strict.Issues, 1)
	assert.Equal(t, "symbol_nomenclature", strict.Issues[0].RuleName)
}

func TestValidateEntity_RuleNameSelection(t *testing.T) {
	engine := newStandardEngine()
	payload := map[string]interface{}{
		"symbol": "", // symbol_required会失败
	}

	// 只选source_required时不应报symbol问题
	result := engine.ValidateEntity(EntityGene, payload, "source_required")
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "source_required", result.Issues[0].RuleName)

	// 交集为空时回退到完整规则集
	fallback := engine.ValidateEntity(EntityGene, payload, "no_such_rule")
	full := engine.ValidateEntity(EntityGene, payload)
	assert.Equal(t, len(full.Issues), len(fallback.Issues))
}

func TestValidateEntity_MultipleRulesSameField(t *testing.T) {
	engine := newStandardEngine()

	// hpo_id同时命中必填与格式两条规则，规则之间不短路
	result := engine.ValidateEntity(EntityPhenotype, map[string]interface{}{
		"hpo_id": "HP:123", // 非空但格式错误
		"name":   "Seizure",
	})

	assert.False(t, result.IsValid)
	found := false
	for _, issue := range result.Issues {
		if issue.RuleName == "hpo_id_format" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateBatch_OrderPreserved(t *testing.T) {
	engine := newStandardEngine()

	payloads := []map[string]interface{}{
		{"symbol": "TP53", "source": "test"},
		{"symbol": "", "source": "test"},
		{"symbol": "BRCA1", "source": "test"},
	}

	results := engine.ValidateBatch(EntityGene, payloads)
	require.Len(t, results, 3)
	assert.True(t, results[0].IsValid)
	assert.False(t, results[1].IsValid)
	assert.True(t, results[2].IsValid)
}

func TestValidateEntity_RelationshipRules(t *testing.T) {
	engine := newStandardEngine()

	valid := engine.ValidateEntity(EntityRelationship, map[string]interface{}{
		"gene":      map[string]interface{}{"symbol": "TP53"},
		"phenotype": map[string]interface{}{"hpo_id": "HP:0002664"},
		"score":     0.8,
		"evidence": []interface{}{
			map[string]interface{}{"source": "ClinVar"},
		},
	})
	assert.True(t, valid.IsValid)
	assert.Equal(t, 1.0, valid.Score)

	missing := engine.ValidateEntity(EntityRelationship, map[string]interface{}{
		"gene":  map[string]interface{}{"symbol": "TP53"},
		"score": 0.8,
	})
	assert.False(t, missing.IsValid)

	badInterval := engine.ValidateEntity(EntityRelationship, map[string]interface{}{
		"gene":                map[string]interface{}{"symbol": "TP53"},
		"phenotype":           map[string]interface{}{"hpo_id": "HP:0002664"},
		"confidence_interval": map[string]interface{}{"low": 0.9, "high": 0.2},
	})
	assert.False(t, badInterval.IsValid)
}

func TestValidateEntity_ConcurrentPublicationValidation(t *testing.T) {
	engine := NewEngine(NewRuleCatalog(), LevelStrict)

	payload := map[string]interface{}{
		"pmid":    "25741868",
		"title":   "Standards and guidelines for the interpretation of sequence variants",
		"journal": "genetics in medicine",
		"year":    2015,
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				result := engine.ValidateEntity(EntityPublication, payload)
				assert.True(t, result.IsValid)
				require.Len(t, result.Issues, 1)
				issue := result.Issues[0]
				assert.Equal(t, "journal_title_case", issue.RuleName)
				assert.Contains(t, issue.Suggestion, "Genetics In Medicine")
			}
		}()
	}
	wg.Wait()
}
