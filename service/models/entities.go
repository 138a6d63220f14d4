/*
 * @module service/models/entities
 * @description 生物医学实体模型定义，包括基因、变异位点、表型、文献和证据条目
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 实体录入 -> 校验 -> 持久化 -> 质量流水线复检
 * @rules 遵循数据库设计规范，ToPayload输出的键名与校验规则字段名保持一致
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/validation/catalog.go, relationship.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gene 基因实体模型
type Gene struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	Symbol      string           `json:"symbol" gorm:"not null;size:100;index" example:"TP53"`
	Name        string           `json:"name" gorm:"size:500" example:"tumor protein p53"`
	HgncID      string           `json:"hgnc_id" gorm:"size:50;index" example:"HGNC:11998"`
	EnsemblID   string           `json:"ensembl_id" gorm:"size:50" example:"ENSG00000141510"`
	EntrezID    string           `json:"entrez_id" gorm:"size:20" example:"7157"`
	Chromosome  string           `json:"chromosome" gorm:"size:10" example:"17"`
	Aliases     JSONBStringArray `json:"aliases" gorm:"type:jsonb"`
	Source      string           `json:"source" gorm:"not null;size:100" example:"hgnc_import"`
	Annotations JSONB            `json:"annotations" gorm:"type:jsonb"`
	Status      string           `json:"status" gorm:"not null;default:'active';size:20"`
	CreatedAt   time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy   string           `json:"created_by" gorm:"not null;default:'system';size:100"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedBy   string           `json:"updated_by" gorm:"not null;default:'system';size:100"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (g *Gene) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedBy == "" {
		g.CreatedBy = "system"
	}
	return nil
}

// ToPayload 转换为校验引擎载荷，键名与规则字段名一致
func (g *Gene) ToPayload() map[string]interface{} {
	payload := map[string]interface{}{
		"symbol": g.Symbol,
		"source": g.Source,
	}
	if g.Name != "" {
		payload["name"] = g.Name
	}
	if g.HgncID != "" {
		payload["hgnc_id"] = g.HgncID
	}
	if g.EnsemblID != "" {
		payload["ensembl_id"] = g.EnsemblID
	}
	if g.EntrezID != "" {
		payload["entrez_id"] = g.EntrezID
	}
	if g.Chromosome != "" {
		payload["chromosome"] = g.Chromosome
	}
	if len(g.Aliases) > 0 {
		aliases := make([]interface{}, len(g.Aliases))
		for i, alias := range g.Aliases {
			aliases[i] = alias
		}
		payload["aliases"] = aliases
	}
	return payload
}

// Variant 变异位点实体模型
type Variant struct {
	ID                    string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Chromosome            string           `json:"chromosome" gorm:"not null;size:10;index" example:"17"`
	Position              int64            `json:"position" gorm:"not null" example:"7577121"`
	Start                 *int64           `json:"start,omitempty"`
	End                   *int64           `json:"end,omitempty"`
	RsID                  string           `json:"rsid" gorm:"size:30;index" example:"rs28934578"`
	Hgvs                  string           `json:"hgvs" gorm:"size:255" example:"NM_000546.6:c.524G>A"`
	ReferenceAllele       string           `json:"reference_allele" gorm:"size:255"`
	AlternateAllele       string           `json:"alternate_allele" gorm:"size:255"`
	GeneSymbols           JSONBStringArray `json:"gene_symbols" gorm:"type:jsonb"`
	PopulationFrequencies JSONB            `json:"population_frequencies" gorm:"type:jsonb"`
	ClinicalSignificance  string           `json:"clinical_significance" gorm:"size:50"`
	Assembly              string           `json:"assembly" gorm:"size:20" example:"GRCh38"`
	Source                string           `json:"source" gorm:"not null;size:100"`
	Status                string           `json:"status" gorm:"not null;default:'active';size:20"`
	CreatedAt             time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy             string           `json:"created_by" gorm:"not null;default:'system';size:100"`
	UpdatedAt             time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedBy             string           `json:"updated_by" gorm:"not null;default:'system';size:100"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (v *Variant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedBy == "" {
		v.CreatedBy = "system"
	}
	return nil
}

// ToPayload 转换为校验引擎载荷
func (v *Variant) ToPayload() map[string]interface{} {
	payload := map[string]interface{}{
		"chromosome": v.Chromosome,
		"position":   v.Position,
	}
	if v.Start != nil {
		payload["start"] = *v.Start
	}
	if v.End != nil {
		payload["end"] = *v.End
	}
	if v.RsID != "" {
		payload["rsid"] = v.RsID
	}
	if v.Hgvs != "" {
		payload["hgvs"] = v.Hgvs
	}
	if v.ReferenceAllele != "" {
		payload["reference_allele"] = v.ReferenceAllele
	}
	if v.AlternateAllele != "" {
		payload["alternate_allele"] = v.AlternateAllele
	}
	if len(v.GeneSymbols) > 0 {
		symbols := make([]interface{}, len(v.GeneSymbols))
		for i, symbol := range v.GeneSymbols {
			symbols[i] = symbol
		}
		payload["gene_symbols"] = symbols
	}
	if len(v.PopulationFrequencies) > 0 {
		payload["population_frequencies"] = map[string]interface{}(v.PopulationFrequencies)
	}
	if v.ClinicalSignificance != "" {
		payload["clinical_significance"] = v.ClinicalSignificance
	}
	if v.Assembly != "" {
		payload["assembly"] = v.Assembly
	}
	return payload
}

// Phenotype 表型实体模型
type Phenotype struct {
	ID         string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	HpoID      string           `json:"hpo_id" gorm:"not null;size:20;uniqueIndex" example:"HP:0001250"`
	Name       string           `json:"name" gorm:"not null;size:500" example:"Seizure"`
	Definition string           `json:"definition" gorm:"size:2000"`
	Synonyms   JSONBStringArray `json:"synonyms" gorm:"type:jsonb"`
	Onset      string           `json:"onset" gorm:"size:50"`
	Source     string           `json:"source" gorm:"not null;size:100"`
	Status     string           `json:"status" gorm:"not null;default:'active';size:20"`
	CreatedAt  time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy  string           `json:"created_by" gorm:"not null;default:'system';size:100"`
	UpdatedAt  time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedBy  string           `json:"updated_by" gorm:"not null;default:'system';size:100"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (p *Phenotype) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedBy == "" {
		p.CreatedBy = "system"
	}
	return nil
}

// ToPayload 转换为校验引擎载荷
func (p *Phenotype) ToPayload() map[string]interface{} {
	payload := map[string]interface{}{
		"hpo_id": p.HpoID,
		"name":   p.Name,
	}
	if p.Definition != "" {
		payload["definition"] = p.Definition
	}
	if len(p.Synonyms) > 0 {
		synonyms := make([]interface{}, len(p.Synonyms))
		for i, synonym := range p.Synonyms {
			synonyms[i] = synonym
		}
		payload["synonyms"] = synonyms
	}
	if p.Onset != "" {
		payload["onset"] = p.Onset
	}
	return payload
}

// Publication 文献实体模型
type Publication struct {
	ID        string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Pmid      string           `json:"pmid" gorm:"not null;size:20;uniqueIndex" example:"25741868"`
	Title     string           `json:"title" gorm:"not null;size:1000"`
	Doi       string           `json:"doi" gorm:"size:255" example:"10.1038/gim.2015.30"`
	Year      int              `json:"year" example:"2015"`
	Authors   JSONBStringArray `json:"authors" gorm:"type:jsonb"`
	Journal   string           `json:"journal" gorm:"size:500"`
	Source    string           `json:"source" gorm:"not null;size:100"`
	Status    string           `json:"status" gorm:"not null;default:'active';size:20"`
	CreatedAt time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy string           `json:"created_by" gorm:"not null;default:'system';size:100"`
	UpdatedAt time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedBy string           `json:"updated_by" gorm:"not null;default:'system';size:100"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (p *Publication) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedBy == "" {
		p.CreatedBy = "system"
	}
	return nil
}

// ToPayload 转换为校验引擎载荷
func (p *Publication) ToPayload() map[string]interface{} {
	payload := map[string]interface{}{
		"pmid":  p.Pmid,
		"title": p.Title,
	}
	if p.Doi != "" {
		payload["doi"] = p.Doi
	}
	if p.Year != 0 {
		payload["year"] = p.Year
	}
	if len(p.Authors) > 0 {
		authors := make([]interface{}, len(p.Authors))
		for i, author := range p.Authors {
			authors[i] = author
		}
		payload["authors"] = authors
	}
	if p.Journal != "" {
		payload["journal"] = p.Journal
	}
	return payload
}
