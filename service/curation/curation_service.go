/*
 * @module service/curation/curation_service
 * @description 策展服务，提供生物医学实体的CRUD操作，写入前强制执行质量校验
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 接收实体 -> 校验引擎检查 -> ERROR级问题拒绝写入 -> 持久化 -> 返回校验结果
 * @rules 含ERROR级问题的实体一律拒绝写入；WARNING/INFO级问题随结果返回但不阻止写入
 * @dependencies biocuration-service/service/models, biocuration-service/service/validation, gorm.io/gorm
 * @refs service/validation/engine.go, service/models/entities.go
 */

package curation

import (
	"errors"
	"fmt"
	"log/slog"

	"biocuration-service/service/models"
	"biocuration-service/service/validation"

	"gorm.io/gorm"
)

// ErrValidationFailed 实体含ERROR级校验问题，写入被拒绝
var ErrValidationFailed = errors.New("实体校验未通过")

// CurationService 策展服务
type CurationService struct {
	db       *gorm.DB
	engine   *validation.Engine
	parallel *validation.ParallelValidator
}

// NewCurationService 创建策展服务实例
func NewCurationService(db *gorm.DB, engine *validation.Engine) *CurationService {
	return &CurationService{
		db:       db,
		engine:   engine,
		parallel: validation.NewParallelValidator(engine, 0, 0),
	}
}

// validateForWrite 写入前校验，ERROR级问题返回ErrValidationFailed
func (s *CurationService) validateForWrite(entityType string, payload map[string]interface{}) (*validation.ValidationResult, error) {
	result := s.engine.ValidateEntity(entityType, payload)
	if !result.IsValid {
		slog.Warn("实体校验未通过，拒绝写入",
			"entity_type", entityType,
			"error_count", result.ErrorCount(),
			"score", result.Score)
		return result, fmt.Errorf("%w: %d 个ERROR级问题", ErrValidationFailed, result.ErrorCount())
	}
	return result, nil
}

// === 基因管理 ===

// CreateGene 创建基因，写入前校验
func (s *CurationService) CreateGene(gene *models.Gene) (*validation.ValidationResult, error) {
	result, err := s.validateForWrite(validation.EntityGene, gene.ToPayload())
	if err != nil {
		return result, err
	}
	if err := s.db.Create(gene).Error; err != nil {
		return result, fmt.Errorf("创建基因失败: %w", err)
	}
	return result, nil
}

// GetGene 根据ID获取基因
func (s *CurationService) GetGene(id string) (*models.Gene, error) {
	var gene models.Gene
	if err := s.db.First(&gene, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &gene, nil
}

// GetGenes 分页获取基因列表，支持按符号和来源过滤
func (s *CurationService) GetGenes(page, size int, symbol, source string) ([]models.Gene, int64, error) {
	var genes []models.Gene
	var total int64

	query := s.db.Model(&models.Gene{})
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}
	if source != "" {
		query = query.Where("source = ?", source)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size
	err := query.Order("created_at DESC").Offset(offset).Limit(size).Find(&genes).Error
	return genes, total, err
}

// UpdateGene 更新基因，更新后的完整记录需重新通过校验
func (s *CurationService) UpdateGene(id string, gene *models.Gene) (*validation.ValidationResult, error) {
	var existing models.Gene
	if err := s.db.First(&existing, "id = ?", id).Error; err != nil {
		return nil, err
	}

	gene.ID = id
	result, err := s.validateForWrite(validation.EntityGene, gene.ToPayload())
	if err != nil {
		return result, err
	}

	if err := s.db.Model(&existing).Updates(gene).Error; err != nil {
		return result, fmt.Errorf("更新基因失败: %w", err)
	}
	return result, nil
}

// DeleteGene 删除基因
func (s *CurationService) DeleteGene(id string) error {
	return s.db.Delete(&models.Gene{}, "id = ?", id).Error
}

// === 变异位点管理 ===

// CreateVariant 创建变异位点，写入前校验
func (s *CurationService) CreateVariant(variant *models.Variant) (*validation.ValidationResult, error) {
	result, err := s.validateForWrite(validation.EntityVariant, variant.ToPayload())
	if err != nil {
		return result, err
	}
	if err := s.db.Create(variant).Error; err != nil {
		return result, fmt.Errorf("创建变异位点失败: %w", err)
	}
	return result, nil
}

// GetVariant 根据ID获取变异位点
func (s *CurationService) GetVariant(id string) (*models.Variant, error) {
	var variant models.Variant
	if err := s.db.First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// GetVariants 分页获取变异位点列表，支持按染色体和rsID过滤
func (s *CurationService) GetVariants(page, size int, chromosome, rsid string) ([]models.Variant, int64, error) {
	var variants []models.Variant
	var total int64

	query := s.db.Model(&models.Variant{})
	if chromosome != "" {
		query = query.Where("chromosome = ?", chromosome)
	}
	if rsid != "" {
		query = query.Where("rs_id = ?", rsid)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size
	err := query.Order("created_at DESC").Offset(offset).Limit(size).Find(&variants).Error
	return variants, total, err
}

// UpdateVariant 更新变异位点，更新后的完整记录需重新通过校验
func (s *CurationService) UpdateVariant(id string, variant *models.Variant) (*validation.ValidationResult, error) {
	var existing models.Variant
	if err := s.db.First(&existing, "id = ?", id).Error; err != nil {
		return nil, err
	}

	variant.ID = id
	result, err := s.validateForWrite(validation.EntityVariant, variant.ToPayload())
	if err != nil {
		return result, err
	}

	if err := s.db.Model(&existing).Updates(variant).Error; err != nil {
		return result, fmt.Errorf("更新变异位点失败: %w", err)
	}
	return result, nil
}

// DeleteVariant 删除变异位点
func (s *CurationService) DeleteVariant(id string) error {
	return s.db.Delete(&models.Variant{}, "id = ?", id).Error
}

// === 表型管理 ===

// CreatePhenotype 创建表型，写入前校验
func (s *CurationService) CreatePhenotype(phenotype *models.Phenotype) (*validation.ValidationResult, error) {
	result, err := s.validateForWrite(validation.EntityPhenotype, phenotype.ToPayload())
	if err != nil {
		return result, err
	}
	if err := s.db.Create(phenotype).Error; err != nil {
		return result, fmt.Errorf("创建表型失败: %w", err)
	}
	return result, nil
}

// GetPhenotype 根据ID获取表型
func (s *CurationService) GetPhenotype(id string) (*models.Phenotype, error) {
	var phenotype models.Phenotype
	if err := s.db.First(&phenotype, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &phenotype, nil
}

// GetPhenotypes 分页获取表型列表，支持按HPO编号过滤
func (s *CurationService) GetPhenotypes(page, size int, hpoID string) ([]models.Phenotype, int64, error) {
	var phenotypes []models.Phenotype
	var total int64

	query := s.db.Model(&models.Phenotype{})
	if hpoID != "" {
		query = query.Where("hpo_id = ?", hpoID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size
	err := query.Order("created_at DESC").Offset(offset).Limit(size).Find(&phenotypes).Error
	return phenotypes, total, err
}

// UpdatePhenotype 更新表型，更新后的完整记录需重新通过校验
func (s *CurationService) UpdatePhenotype(id string, phenotype *models.Phenotype) (*validation.ValidationResult, error) {
	var existing models.Phenotype
	if err := s.db.First(&existing, "id = ?", id).Error; err != nil {
		return nil, err
	}

	phenotype.ID = id
	result, err := s.validateForWrite(validation.EntityPhenotype, phenotype.ToPayload())
	if err != nil {
		return result, err
	}

	if err := s.db.Model(&existing).Updates(phenotype).Error; err != nil {
		return result, fmt.Errorf("更新表型失败: %w", err)
	}
	return result, nil
}

// DeletePhenotype 删除表型
func (s *CurationService) DeletePhenotype(id string) error {
	return s.db.Delete(&models.Phenotype{}, "id = ?", id).Error
}

// === 文献管理 ===

// CreatePublication 创建文献，写入前校验
func (s *CurationService) CreatePublication(publication *models.Publication) (*validation.ValidationResult, error) {
	result, err := s.validateForWrite(validation.EntityPublication, publication.ToPayload())
	if err != nil {
		return result, err
	}
	if err := s.db.Create(publication).Error; err != nil {
		return result, fmt.Errorf("创建文献失败: %w", err)
	}
	return result, nil
}

// GetPublication 根据ID获取文献
func (s *CurationService) GetPublication(id string) (*models.Publication, error) {
	var publication models.Publication
	if err := s.db.First(&publication, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &publication, nil
}

// GetPublications 分页获取文献列表，支持按PMID过滤
func (s *CurationService) GetPublications(page, size int, pmid string) ([]models.Publication, int64, error) {
	var publications []models.Publication
	var total int64

	query := s.db.Model(&models.Publication{})
	if pmid != "" {
		query = query.Where("pmid = ?", pmid)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size
	err := query.Order("created_at DESC").Offset(offset).Limit(size).Find(&publications).Error
	return publications, total, err
}

// DeletePublication 删除文献
func (s *CurationService) DeletePublication(id string) error {
	return s.db.Delete(&models.Publication{}, "id = ?", id).Error
}

// === 策展关系管理 ===

// CreateRelationship 创建策展关系。
// 先加载所引用的基因、表型和可选的变异位点，缺失即拒绝，
// 然后对组装后的三元组载荷执行关系规则校验
func (s *CurationService) CreateRelationship(rel *models.CurationRelationship) (*validation.ValidationResult, error) {
	var gene models.Gene
	if err := s.db.First(&gene, "id = ?", rel.GeneID).Error; err != nil {
		return nil, fmt.Errorf("引用的基因 %s 不存在: %w", rel.GeneID, err)
	}
	rel.Gene = &gene

	var phenotype models.Phenotype
	if err := s.db.First(&phenotype, "id = ?", rel.PhenotypeID).Error; err != nil {
		return nil, fmt.Errorf("引用的表型 %s 不存在: %w", rel.PhenotypeID, err)
	}
	rel.Phenotype = &phenotype

	if rel.VariantID != nil {
		var variant models.Variant
		if err := s.db.First(&variant, "id = ?", *rel.VariantID).Error; err != nil {
			return nil, fmt.Errorf("引用的变异位点 %s 不存在: %w", *rel.VariantID, err)
		}
		rel.Variant = &variant
	}

	result, err := s.validateForWrite(validation.EntityRelationship, rel.ToPayload())
	if err != nil {
		return result, err
	}

	// 只持久化外键，关联实体已存在
	record := &models.CurationRelationship{
		ID:             rel.ID,
		GeneID:         rel.GeneID,
		VariantID:      rel.VariantID,
		PhenotypeID:    rel.PhenotypeID,
		Score:          rel.Score,
		ConfidenceLow:  rel.ConfidenceLow,
		ConfidenceHigh: rel.ConfidenceHigh,
		CurationStatus: rel.CurationStatus,
		CreatedBy:      rel.CreatedBy,
	}
	if err := s.db.Create(record).Error; err != nil {
		return result, fmt.Errorf("创建策展关系失败: %w", err)
	}
	rel.ID = record.ID
	return result, nil
}

// GetRelationship 根据ID获取策展关系，预加载关联实体和证据条目
func (s *CurationService) GetRelationship(id string) (*models.CurationRelationship, error) {
	var rel models.CurationRelationship
	err := s.db.Preload("Gene").Preload("Variant").Preload("Phenotype").
		Preload("EvidenceItems").Preload("EvidenceItems.Publication").
		First(&rel, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// GetRelationships 分页获取策展关系列表，支持按基因和策展状态过滤
func (s *CurationService) GetRelationships(page, size int, geneID, curationStatus string) ([]models.CurationRelationship, int64, error) {
	var rels []models.CurationRelationship
	var total int64

	query := s.db.Model(&models.CurationRelationship{})
	if geneID != "" {
		query = query.Where("gene_id = ?", geneID)
	}
	if curationStatus != "" {
		query = query.Where("curation_status = ?", curationStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size
	err := query.Preload("Gene").Preload("Phenotype").
		Order("created_at DESC").Offset(offset).Limit(size).Find(&rels).Error
	return rels, total, err
}

// AddEvidenceItem 为策展关系追加证据条目
func (s *CurationService) AddEvidenceItem(relationshipID string, item *models.EvidenceItem) error {
	var rel models.CurationRelationship
	if err := s.db.First(&rel, "id = ?", relationshipID).Error; err != nil {
		return fmt.Errorf("策展关系 %s 不存在: %w", relationshipID, err)
	}
	if item.Source == "" {
		return errors.New("证据条目必须注明来源")
	}
	item.RelationshipID = relationshipID
	return s.db.Create(item).Error
}

// DeleteRelationship 删除策展关系及其证据条目
func (s *CurationService) DeleteRelationship(id string) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Where("relationship_id = ?", id).Delete(&models.EvidenceItem{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.CurationRelationship{}, "id = ?", id).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// === 批量导入 ===

// ImportResult 批量导入结果
type ImportResult struct {
	Total    int                            `json:"total"`
	Created  int                            `json:"created"`
	Rejected int                            `json:"rejected"`
	Results  []*validation.ValidationResult `json:"results"`
}

// ImportGenes 批量导入基因。
// 使用并行校验器批量校验，通过校验的记录逐条持久化，
// 返回结果与输入顺序一一对应
func (s *CurationService) ImportGenes(genes []*models.Gene) (*ImportResult, error) {
	payloads := make([]map[string]interface{}, len(genes))
	for i, gene := range genes {
		payloads[i] = gene.ToPayload()
	}

	results := s.parallel.ValidateWithAdaptiveParallelism(validation.EntityGene, payloads)

	importResult := &ImportResult{
		Total:   len(genes),
		Results: results,
	}
	for i, result := range results {
		if !result.IsValid {
			importResult.Rejected++
			continue
		}
		if err := s.db.Create(genes[i]).Error; err != nil {
			return importResult, fmt.Errorf("持久化第 %d 条基因失败: %w", i, err)
		}
		importResult.Created++
	}

	slog.Info("基因批量导入完成",
		"total", importResult.Total,
		"created", importResult.Created,
		"rejected", importResult.Rejected)
	return importResult, nil
}
