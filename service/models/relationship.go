/*
 * @module service/models/relationship
 * @description 策展关系模型定义，描述基因-变异-表型三元组及其证据条目
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 关系录入 -> 三元组完整性校验 -> 持久化 -> 证据累积
 * @rules 关系必须引用已存在的基因和表型，变异可选；置信区间低值不得大于高值
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs entities.go, service/validation/relationship_rules.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CurationRelationship 基因-变异-表型策展关系模型
type CurationRelationship struct {
	ID                 string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	GeneID             string         `json:"gene_id" gorm:"not null;type:varchar(36);index"`
	VariantID          *string        `json:"variant_id,omitempty" gorm:"type:varchar(36);index"`
	PhenotypeID        string         `json:"phenotype_id" gorm:"not null;type:varchar(36);index"`
	Score              float64        `json:"score" gorm:"not null;default:0"`
	ConfidenceLow      *float64       `json:"confidence_low,omitempty"`
	ConfidenceHigh     *float64       `json:"confidence_high,omitempty"`
	CurationStatus     string         `json:"curation_status" gorm:"not null;default:'draft';size:20"` // draft, reviewed, published
	Status             string         `json:"status" gorm:"not null;default:'active';size:20"`
	CreatedAt          time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy          string         `json:"created_by" gorm:"not null;default:'system';size:100"`
	UpdatedAt          time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedBy          string         `json:"updated_by" gorm:"not null;default:'system';size:100"`
	Gene               *Gene          `json:"gene,omitempty" gorm:"foreignKey:GeneID"`
	Variant            *Variant       `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
	Phenotype          *Phenotype     `json:"phenotype,omitempty" gorm:"foreignKey:PhenotypeID"`
	EvidenceItems      []EvidenceItem `json:"evidence_items,omitempty" gorm:"foreignKey:RelationshipID"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (r *CurationRelationship) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedBy == "" {
		r.CreatedBy = "system"
	}
	return nil
}

// ToPayload 转换为校验引擎载荷。
// 关联实体已加载时内嵌其载荷，供三元组完整性规则检查
func (r *CurationRelationship) ToPayload() map[string]interface{} {
	payload := map[string]interface{}{
		"score": r.Score,
	}
	if r.Gene != nil {
		payload["gene"] = r.Gene.ToPayload()
	}
	if r.Variant != nil {
		payload["variant"] = r.Variant.ToPayload()
	}
	if r.Phenotype != nil {
		payload["phenotype"] = r.Phenotype.ToPayload()
	}
	if r.ConfidenceLow != nil && r.ConfidenceHigh != nil {
		payload["confidence_interval"] = map[string]interface{}{
			"low":  *r.ConfidenceLow,
			"high": *r.ConfidenceHigh,
		}
	}
	if len(r.EvidenceItems) > 0 {
		evidence := make([]interface{}, len(r.EvidenceItems))
		for i, item := range r.EvidenceItems {
			evidence[i] = item.ToPayload()
		}
		payload["evidence"] = evidence
	}
	return payload
}

// EvidenceItem 证据条目模型，将策展关系关联到文献来源
type EvidenceItem struct {
	ID             string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RelationshipID string       `json:"relationship_id" gorm:"not null;type:varchar(36);index"`
	PublicationID  *string      `json:"publication_id,omitempty" gorm:"type:varchar(36);index"`
	Source         string       `json:"source" gorm:"not null;size:100"` // clinvar, literature, functional_assay等
	Description    string       `json:"description" gorm:"size:2000"`
	Strength       string       `json:"strength" gorm:"size:20"` // strong, moderate, supporting
	Metadata       JSONB        `json:"metadata" gorm:"type:jsonb"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy      string       `json:"created_by" gorm:"not null;default:'system';size:100"`
	Publication    *Publication `json:"publication,omitempty" gorm:"foreignKey:PublicationID"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (e *EvidenceItem) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedBy == "" {
		e.CreatedBy = "system"
	}
	return nil
}

// ToPayload 转换为校验引擎载荷
func (e *EvidenceItem) ToPayload() map[string]interface{} {
	payload := map[string]interface{}{
		"source": e.Source,
	}
	if e.Description != "" {
		payload["description"] = e.Description
	}
	if e.Strength != "" {
		payload["strength"] = e.Strength
	}
	return payload
}
