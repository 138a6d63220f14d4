/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、规则目录构建、校验引擎与流水线装配
 * @architecture 分层架构 - 服务层
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保所有依赖服务正常启动后才提供API服务
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs ai_docs/curation_quality_req.md
 */

package service

import (
	"biocuration-service/logger"
	"biocuration-service/service/curation"
	"biocuration-service/service/database"
	"biocuration-service/service/distributed_lock"
	"biocuration-service/service/event"
	"biocuration-service/service/validation"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                       *gorm.DB
	GlobalEventService       *event.EventService
	GlobalKafkaPublisher     *event.KafkaPublisher
	GlobalCatalog            *validation.RuleCatalog
	GlobalEngine             *validation.Engine
	GlobalResultCache        *validation.ResultCache
	GlobalCachedEngine       *validation.CachedEngine
	GlobalSelectiveValidator *validation.SelectiveValidator
	GlobalOrchestrator       *validation.Orchestrator
	GlobalQualityService     *QualityService
	GlobalCurationService    *curation.CurationService
	GlobalApiKeyService      *curation.ApiKeyService
	GlobalQualityScheduler   *curation.QualityScheduler
)

func init() {
	logger.InitLogger()
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "things2024")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntWithDefault 获取整型环境变量，解析失败时返回默认值
func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("环境变量 %s 值无效，使用默认值 %d", key, defaultValue)
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")

	log.Println("所有数据库迁移任务完成")
}

// parseValidationLevel 解析VALIDATION_LEVEL环境变量，无法识别时回退到STANDARD
func parseValidationLevel(raw string) validation.StrictnessLevel {
	switch validation.StrictnessLevel(raw) {
	case validation.LevelLax:
		return validation.LevelLax
	case validation.LevelStandard:
		return validation.LevelStandard
	case validation.LevelStrict:
		return validation.LevelStrict
	default:
		if raw != "" {
			log.Printf("无法识别的校验级别 %s，回退到STANDARD", raw)
		}
		return validation.LevelStandard
	}
}

// initServices 初始化服务
func initServices() {
	// 初始化事件服务与Kafka发布器
	GlobalEventService = event.NewEventService(DB)
	GlobalKafkaPublisher = event.NewKafkaPublisher()

	// 构建规则目录与校验引擎
	GlobalCatalog = validation.NewRuleCatalog()
	level := parseValidationLevel(os.Getenv("VALIDATION_LEVEL"))
	GlobalEngine = validation.NewEngine(GlobalCatalog, level)
	log.Printf("校验引擎初始化完成，严格级别: %s", level)

	// 结果缓存与缓存引擎
	cacheTTL := time.Duration(getEnvIntWithDefault("CACHE_TTL_SECONDS", 300)) * time.Second
	cacheMaxSize := getEnvIntWithDefault("CACHE_MAX_SIZE", 1000)
	GlobalResultCache = validation.NewResultCache(cacheTTL, cacheMaxSize)
	GlobalCachedEngine = validation.NewCachedEngine(GlobalEngine, GlobalResultCache)

	// 选择性校验器
	strategy := validation.StrategyAdaptive
	if os.Getenv("SELECTIVE_STRATEGY") == string(validation.StrategyConfidenceBased) {
		strategy = validation.StrategyConfidenceBased
	}
	GlobalSelectiveValidator = validation.NewSelectiveValidator(GlobalEngine, strategy)

	// 质量门禁编排器与默认流水线
	GlobalOrchestrator = validation.NewOrchestrator()
	GlobalOrchestrator.SetMetricsSink(validation.NewPrometheusMetricsSink(prometheus.DefaultRegisterer))
	GlobalOrchestrator.SetAlertFunc(func(pipelineName string, alert validation.QualityAlert) {
		data := map[string]interface{}{
			"stage":  alert.Stage,
			"result": alert.Result,
		}
		GlobalEventService.BroadcastQualityAlert(pipelineName, alert.Stage, alert.Result.QualityScore, data)
	})

	GlobalQualityService = NewQualityService(GlobalOrchestrator, GlobalKafkaPublisher)
	registerDefaultPipelines(GlobalQualityService)

	// 业务服务
	GlobalCurationService = curation.NewCurationService(DB, GlobalEngine)
	GlobalApiKeyService = curation.NewApiKeyService(DB)

	// 质量复检调度器
	GlobalQualityScheduler = curation.NewQualityScheduler(DB, GlobalOrchestrator)
	if lock, err := distributed_lock.NewRedisLock(); err != nil {
		log.Printf("Redis分布式锁初始化失败，复检任务将在单实例模式下运行: %v", err)
	} else {
		GlobalQualityScheduler.SetDistributedLock(lock)
	}

	recheckCron := getEnvWithDefault("QUALITY_RECHECK_CRON", "0 0 2 * * *")
	for _, name := range GlobalOrchestrator.PipelineNames() {
		if err := GlobalQualityScheduler.SchedulePipeline(name, recheckCron); err != nil {
			log.Printf("注册流水线 %s 的复检任务失败: %v", name, err)
		}
	}
	if err := GlobalQualityScheduler.StartScheduler(); err != nil {
		log.Printf("启动质量复检调度器失败: %v", err)
	}

	log.Println("服务初始化完成")
}

// registerDefaultPipelines 注册默认策展质量流水线。
// intake_screen标记为强制检查点，release_review为非强制检查点；
// 执行时所有检查点都会评估，整体成功为各检查点结果的逻辑与
func registerDefaultPipelines(qs *QualityService) {
	intakeGate := validation.NewQualityGate("intake_gate", []string{"reject_batch", "notify_curator"})
	releaseGate := validation.NewQualityGate("release_gate", []string{"flag_for_review"})

	pipeline := validation.NewPipeline("curation_default", GlobalEngine)
	pipeline.AddCheckpoint("intake_screen", []*validation.QualityGate{intakeGate}, true)
	pipeline.AddCheckpoint("release_review", []*validation.QualityGate{releaseGate}, false)
	qs.RegisterPipeline(pipeline)

	log.Printf("默认质量流水线注册完成: %v", GlobalOrchestrator.PipelineNames())
}
