/*
 * @module service/curation/curation_service_test
 * @description 策展服务测试，覆盖写入前校验、拒绝语义、关系引用检查和批量导入
 * @architecture 测试层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 初始化内存数据库 -> 执行服务操作 -> 断言持久化与校验结果
 * @rules 使用sqlite内存库，测试间相互独立
 * @dependencies testing, github.com/stretchr/testify, biocuration-service/testutil
 * @refs curation_service.go
 */

package curation

import (
	"errors"
	"testing"

	"biocuration-service/service/models"
	"biocuration-service/service/validation"
	"biocuration-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCurationService(t *testing.T) (*CurationService, *testutil.TestDB) {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	engine := validation.NewEngine(validation.NewRuleCatalog(), validation.LevelStandard)
	return NewCurationService(tdb.DB, engine), tdb
}

func validGene() *models.Gene {
	return &models.Gene{
		Symbol:     "TP53",
		Name:       "tumor protein p53",
		HgncID:     "HGNC:11998",
		Chromosome: "17",
		Source:     "hgnc_import",
	}
}

func TestCreateGene_ValidPersists(t *testing.T) {
	service, _ := newTestCurationService(t)

	gene := validGene()
	result, err := service.CreateGene(gene)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsValid)
	assert.Equal(t, 1.0, result.Score)
	require.NotEmpty(t, gene.ID)

	stored, err := service.GetGene(gene.ID)
	require.NoError(t, err)
	assert.Equal(t, "TP53", stored.Symbol)
	assert.Equal(t, "system", stored.CreatedBy)
}

func TestCreateGene_ErrorLevelIssueRejected(t *testing.T) {
	service, tdb := newTestCurationService(t)

	gene := &models.Gene{
		Symbol: "TP53",
		HgncID: "HGNC:11998",
		// source缺失，ERROR级规则
	}
	result, err := service.CreateGene(gene)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
	require.NotNil(t, result)
	assert.False(t, result.IsValid)
	assert.Greater(t, result.ErrorCount(), 0)

	var count int64
	tdb.DB.Model(&models.Gene{}).Count(&count)
	assert.Equal(t, int64(0), count, "校验未通过的实体不应落库")
}

func TestCreateGene_WarningDoesNotBlockWrite(t *testing.T) {
	service, _ := newTestCurationService(t)

	gene := validGene()
	gene.EnsemblID = "ENSG-not-a-real-id" // WARNING级格式问题

	result, err := service.CreateGene(gene)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Less(t, result.Score, 1.0)
	assert.NotEmpty(t, result.Issues)
	assert.NotEmpty(t, gene.ID)
}

func TestUpdateGene_Revalidates(t *testing.T) {
	service, _ := newTestCurationService(t)

	gene := validGene()
	_, err := service.CreateGene(gene)
	require.NoError(t, err)

	// 更新为非法HGNC标识符，STANDARD级别下为ERROR
	updated := validGene()
	updated.HgncID = "11998"
	result, err := service.UpdateGene(gene.ID, updated)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
	require.NotNil(t, result)

	stored, err := service.GetGene(gene.ID)
	require.NoError(t, err)
	assert.Equal(t, "HGNC:11998", stored.HgncID, "被拒绝的更新不应改变记录")

	// 合法更新
	updated = validGene()
	updated.Name = "cellular tumor antigen p53"
	result, err = service.UpdateGene(gene.ID, updated)
	require.NoError(t, err)
	assert.True(t, result.IsValid)

	stored, err = service.GetGene(gene.ID)
	require.NoError(t, err)
	assert.Equal(t, "cellular tumor antigen p53", stored.Name)
}

func TestUpdateGene_NotFound(t *testing.T) {
	service, _ := newTestCurationService(t)

	result, err := service.UpdateGene("no-such-id", validGene())
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestGetGenes_FilterAndPaginate(t *testing.T) {
	service, tdb := newTestCurationService(t)
	factory := testutil.NewTestDataFactory(tdb.DB)

	factory.CreateGene(func(g *models.Gene) { g.Symbol = "TP53"; g.Source = "hgnc_import" })
	factory.CreateGene(func(g *models.Gene) { g.Symbol = "BRCA2"; g.Source = "hgnc_import" })
	factory.CreateGene(func(g *models.Gene) { g.Symbol = "TP53"; g.Source = "manual" })

	genes, total, err := service.GetGenes(1, 10, "TP53", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, genes, 2)

	genes, total, err = service.GetGenes(1, 10, "TP53", "manual")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, genes, 1)
	assert.Equal(t, "manual", genes[0].Source)

	genes, total, err = service.GetGenes(2, 2, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, genes, 1)
}

func TestCreateVariant_CoordinateValidation(t *testing.T) {
	service, _ := newTestCurationService(t)

	start := int64(500)
	end := int64(100)
	variant := &models.Variant{
		Chromosome: "17",
		Position:   7577121,
		Start:      &start,
		End:        &end, // end < start，ERROR级
		Source:     "clinvar_import",
	}
	result, err := service.CreateVariant(variant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, result.IsValid)

	variant.Start = &end
	variant.End = &start
	result, err = service.CreateVariant(variant)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestCreateRelationship_ReferencesChecked(t *testing.T) {
	service, tdb := newTestCurationService(t)
	factory := testutil.NewTestDataFactory(tdb.DB)

	gene := factory.CreateGene()
	phenotype := factory.CreatePhenotype()

	// 引用不存在的基因
	rel := &models.CurationRelationship{
		GeneID:      "missing-gene",
		PhenotypeID: phenotype.ID,
		Score:       0.8,
	}
	result, err := service.CreateRelationship(rel)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.NotErrorIs(t, err, ErrValidationFailed)

	// 合法三元组（基因级关联，variant缺省）
	rel = &models.CurationRelationship{
		GeneID:      gene.ID,
		PhenotypeID: phenotype.ID,
		Score:       0.8,
	}
	result, err = service.CreateRelationship(rel)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	require.NotEmpty(t, rel.ID)

	stored, err := service.GetRelationship(rel.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Gene)
	require.NotNil(t, stored.Phenotype)
	assert.Equal(t, gene.Symbol, stored.Gene.Symbol)
	assert.Nil(t, stored.Variant)
}

func TestCreateRelationship_ScoreOutOfRange(t *testing.T) {
	service, tdb := newTestCurationService(t)
	factory := testutil.NewTestDataFactory(tdb.DB)

	gene := factory.CreateGene()
	phenotype := factory.CreatePhenotype()

	rel := &models.CurationRelationship{
		GeneID:      gene.ID,
		PhenotypeID: phenotype.ID,
		Score:       1.5,
	}
	result, err := service.CreateRelationship(rel)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
	require.NotNil(t, result)
	assert.False(t, result.IsValid)
}

func TestCreateRelationship_ConfidenceIntervalOrdered(t *testing.T) {
	service, tdb := newTestCurationService(t)
	factory := testutil.NewTestDataFactory(tdb.DB)

	gene := factory.CreateGene()
	phenotype := factory.CreatePhenotype()

	low := 0.9
	high := 0.4
	rel := &models.CurationRelationship{
		GeneID:         gene.ID,
		PhenotypeID:    phenotype.ID,
		Score:          0.8,
		ConfidenceLow:  &low,
		ConfidenceHigh: &high,
	}
	result, err := service.CreateRelationship(rel)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, result.IsValid)
}

func TestAddEvidenceItem(t *testing.T) {
	service, tdb := newTestCurationService(t)
	factory := testutil.NewTestDataFactory(tdb.DB)

	gene := factory.CreateGene()
	phenotype := factory.CreatePhenotype()
	rel := factory.CreateRelationship(gene.ID, phenotype.ID)

	// 缺少来源
	err := service.AddEvidenceItem(rel.ID, &models.EvidenceItem{Description: "无来源"})
	require.Error(t, err)

	// 关系不存在
	err = service.AddEvidenceItem("missing-rel", &models.EvidenceItem{Source: "clinvar"})
	require.Error(t, err)

	// 正常追加
	item := &models.EvidenceItem{Source: "clinvar", Strength: "strong"}
	err = service.AddEvidenceItem(rel.ID, item)
	require.NoError(t, err)
	assert.Equal(t, rel.ID, item.RelationshipID)

	stored, err := service.GetRelationship(rel.ID)
	require.NoError(t, err)
	require.Len(t, stored.EvidenceItems, 1)
	assert.Equal(t, "clinvar", stored.EvidenceItems[0].Source)
}

func TestDeleteRelationship_CascadesEvidence(t *testing.T) {
	service, tdb := newTestCurationService(t)
	factory := testutil.NewTestDataFactory(tdb.DB)

	gene := factory.CreateGene()
	phenotype := factory.CreatePhenotype()
	rel := factory.CreateRelationship(gene.ID, phenotype.ID)
	factory.CreateEvidenceItem(rel.ID)
	factory.CreateEvidenceItem(rel.ID)

	require.NoError(t, service.DeleteRelationship(rel.ID))

	var relCount, evidenceCount int64
	tdb.DB.Model(&models.CurationRelationship{}).Count(&relCount)
	tdb.DB.Model(&models.EvidenceItem{}).Count(&evidenceCount)
	assert.Equal(t, int64(0), relCount)
	assert.Equal(t, int64(0), evidenceCount)
}

func TestImportGenes_PartialAcceptance(t *testing.T) {
	service, tdb := newTestCurationService(t)

	genes := []*models.Gene{
		validGene(),
		{Symbol: "", Source: "hgnc_import"}, // symbol缺失，拒绝
		{Symbol: "BRCA2", HgncID: "HGNC:1101", Source: "hgnc_import"},
	}

	result, err := service.ImportGenes(genes)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Rejected)

	// 结果与输入顺序一一对应
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].IsValid)
	assert.False(t, result.Results[1].IsValid)
	assert.True(t, result.Results[2].IsValid)

	var count int64
	tdb.DB.Model(&models.Gene{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestImportGenes_EmptyBatch(t *testing.T) {
	service, _ := newTestCurationService(t)

	result, err := service.ImportGenes(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Rejected)
}
