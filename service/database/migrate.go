/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新数据库表结构
 * @architecture 数据访问层 - 迁移管理
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致
 * @dependencies biocuration-service/service/models, gorm.io/gorm
 * @refs service/init.go
 */

package database

import (
	"biocuration-service/service/models"
	"log"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 生物医学实体相关表
	err := db.AutoMigrate(
		&models.Gene{},
		&models.Variant{},
		&models.Phenotype{},
		&models.Publication{},
	)
	if err != nil {
		return err
	}

	// 策展关系相关表
	err = db.AutoMigrate(
		&models.CurationRelationship{},
		&models.EvidenceItem{},
	)
	if err != nil {
		return err
	}

	// 访问控制相关表
	err = db.AutoMigrate(
		&models.ApiKey{},
	)
	if err != nil {
		return err
	}

	// 事件管理相关表
	err = db.AutoMigrate(
		&models.SSEEvent{},
		&models.SSEConnection{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}
