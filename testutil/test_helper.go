/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models
 */

package testutil

import (
	"biocuration-service/service/models"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.Gene{},
		&models.Variant{},
		&models.Phenotype{},
		&models.Publication{},
		&models.CurationRelationship{},
		&models.EvidenceItem{},
		&models.ApiKey{},
		&models.SSEEvent{},
		&models.SSEConnection{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	// 清空所有表的数据，先清外键引用方
	tables := []string{
		"evidence_items",
		"curation_relationships",
		"genes",
		"variants",
		"phenotypes",
		"publications",
		"api_keys",
		"sse_events",
		"sse_connections",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// GeneOption 基因选项函数类型
type GeneOption func(*models.Gene)

// CreateGene 创建测试基因
func (f *TestDataFactory) CreateGene(opts ...GeneOption) *models.Gene {
	gene := &models.Gene{
		ID:         generateID("gene"),
		Symbol:     "BRCA1",
		Name:       "BRCA1 DNA repair associated",
		HgncID:     "HGNC:1100",
		EnsemblID:  "ENSG00000012048",
		EntrezID:   "672",
		Chromosome: "17",
		Aliases:    models.JSONBStringArray{"RNF53"},
		Source:     "hgnc_import",
		Status:     "active",
		CreatedBy:  "test",
		UpdatedBy:  "test",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(gene)
	}

	err := f.DB.Create(gene).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test gene: %v", err))
	}

	return gene
}

// VariantOption 变异选项函数类型
type VariantOption func(*models.Variant)

// CreateVariant 创建测试变异
func (f *TestDataFactory) CreateVariant(opts ...VariantOption) *models.Variant {
	variant := &models.Variant{
		ID:                   generateID("var"),
		Chromosome:           "17",
		Position:             43094464,
		RsID:                 "rs80357906",
		ReferenceAllele:      "G",
		AlternateAllele:      "A",
		GeneSymbols:          models.JSONBStringArray{"BRCA1"},
		ClinicalSignificance: "pathogenic",
		Assembly:             "GRCh38",
		Source:               "clinvar_import",
		Status:               "active",
		CreatedBy:            "test",
		UpdatedBy:            "test",
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(variant)
	}

	err := f.DB.Create(variant).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test variant: %v", err))
	}

	return variant
}

// PhenotypeOption 表型选项函数类型
type PhenotypeOption func(*models.Phenotype)

// CreatePhenotype 创建测试表型
func (f *TestDataFactory) CreatePhenotype(opts ...PhenotypeOption) *models.Phenotype {
	phenotype := &models.Phenotype{
		ID:         generateID("pheno"),
		HpoID:      "HP:" + generateSuffix() + "01",
		Name:       "乳腺癌易感性",
		Definition: "对乳腺恶性肿瘤的遗传易感性增加",
		Synonyms:   models.JSONBStringArray{"breast cancer predisposition"},
		Source:     "hpo_import",
		Status:     "active",
		CreatedBy:  "test",
		UpdatedBy:  "test",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(phenotype)
	}

	err := f.DB.Create(phenotype).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test phenotype: %v", err))
	}

	return phenotype
}

// PublicationOption 文献选项函数类型
type PublicationOption func(*models.Publication)

// CreatePublication 创建测试文献
func (f *TestDataFactory) CreatePublication(opts ...PublicationOption) *models.Publication {
	publication := &models.Publication{
		ID:        generateID("pub"),
		Pmid:      generateSuffix() + "123",
		Title:     "BRCA1变异与乳腺癌风险关联研究",
		Doi:       "10.1000/test." + generateSuffix(),
		Year:      2015,
		Authors:   models.JSONBStringArray{"Zhang L", "Wang H"},
		Journal:   "Journal of Medical Genetics",
		Source:    "pubmed_import",
		Status:    "active",
		CreatedBy: "test",
		UpdatedBy: "test",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(publication)
	}

	err := f.DB.Create(publication).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test publication: %v", err))
	}

	return publication
}

// RelationshipOption 关联选项函数类型
type RelationshipOption func(*models.CurationRelationship)

// CreateRelationship 创建测试基因-变异-表型关联
func (f *TestDataFactory) CreateRelationship(geneID, phenotypeID string, opts ...RelationshipOption) *models.CurationRelationship {
	rel := &models.CurationRelationship{
		ID:             generateID("rel"),
		GeneID:         geneID,
		PhenotypeID:    phenotypeID,
		Score:          0.85,
		CurationStatus: "draft",
		CreatedBy:      "test",
		UpdatedBy:      "test",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(rel)
	}

	err := f.DB.Create(rel).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test relationship: %v", err))
	}

	return rel
}

// EvidenceItemOption 证据项选项函数类型
type EvidenceItemOption func(*models.EvidenceItem)

// CreateEvidenceItem 创建测试证据项
func (f *TestDataFactory) CreateEvidenceItem(relationshipID string, opts ...EvidenceItemOption) *models.EvidenceItem {
	item := &models.EvidenceItem{
		ID:             generateID("ev"),
		RelationshipID: relationshipID,
		Source:         "clinvar",
		Description:    "临床观察到的致病性证据",
		Strength:       "strong",
		CreatedBy:      "test",
		CreatedAt:      time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(item)
	}

	err := f.DB.Create(item).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test evidence item: %v", err))
	}

	return item
}

// ApiKeyOption API密钥选项函数类型
type ApiKeyOption func(*models.ApiKey)

// CreateApiKey 创建测试API密钥
func (f *TestDataFactory) CreateApiKey(opts ...ApiKeyOption) *models.ApiKey {
	apiKey := &models.ApiKey{
		ID:           generateID("ak"),
		Name:         "测试API密钥",
		KeyPrefix:    "test0000",
		KeyValueHash: "test_key_hash_" + generateSuffix(),
		Description:  "这是一个测试API密钥",
		Status:       "active",
		CreatedBy:    "test",
		UpdatedBy:    "test",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(apiKey)
	}

	err := f.DB.Create(apiKey).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test api key: %v", err))
	}

	return apiKey
}

// 辅助函数
func generateID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixNano(), generateSuffix())
}

func generateSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano()%100000)
}

// MockEventListener Mock事件监听器
type MockEventListener struct {
	mock.Mock
}

func (m *MockEventListener) RegisterDBEventProcessor(processor models.DBEventProcessor) error {
	args := m.Called(processor)
	return args.Error(0)
}

// TestTransaction 测试事务辅助工具
type TestTransaction struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewTestTransaction 创建测试事务
func NewTestTransaction(db *gorm.DB) *TestTransaction {
	tx := db.Begin()
	return &TestTransaction{
		db: db,
		tx: tx,
	}
}

// DB 获取事务数据库
func (tt *TestTransaction) DB() *gorm.DB {
	return tt.tx
}

// Commit 提交事务
func (tt *TestTransaction) Commit() {
	tt.tx.Commit()
}

// Rollback 回滚事务
func (tt *TestTransaction) Rollback() {
	tt.tx.Rollback()
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
