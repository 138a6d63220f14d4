/*
 * @module service/curation/quality_scheduler
 * @description 质量复检任务调度器，定时对库内实体重跑质量流水线
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 启动调度器 -> 注册定时任务 -> 到期加载实体快照 -> 分布式锁保护下执行流水线
 * @rules 支持cron表达式调度；配置分布式锁后多实例环境只有一个实例执行
 * @dependencies github.com/robfig/cron/v3, service/distributed_lock
 * @refs service/validation/orchestrator.go, service/distributed_lock/redis_lock.go
 */

package curation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"biocuration-service/service/distributed_lock"
	"biocuration-service/service/models"
	"biocuration-service/service/validation"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// recheckBatchLimit 每次复检加载的单类实体数量上限
const recheckBatchLimit = 500

// QualityScheduler 质量复检任务调度器
type QualityScheduler struct {
	db               *gorm.DB
	orchestrator     *validation.Orchestrator
	cron             *cron.Cron
	ctx              context.Context
	cancel           context.CancelFunc
	schedulerStarted bool
	distributedLock  distributed_lock.DistributedLock
	entries          map[string]cron.EntryID // pipelineName -> cron条目
}

// NewQualityScheduler 创建质量复检任务调度器
func NewQualityScheduler(db *gorm.DB, orchestrator *validation.Orchestrator) *QualityScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithSeconds())

	return &QualityScheduler{
		db:           db,
		orchestrator: orchestrator,
		cron:         c,
		ctx:          ctx,
		cancel:       cancel,
		entries:      make(map[string]cron.EntryID),
	}
}

// SetDistributedLock 设置分布式锁
func (qs *QualityScheduler) SetDistributedLock(lock distributed_lock.DistributedLock) {
	qs.distributedLock = lock
	if lock != nil {
		slog.Info("质量复检调度器已启用分布式锁")
	}
}

// SchedulePipeline 按cron表达式注册流水线复检任务，重复注册替换原有调度
func (qs *QualityScheduler) SchedulePipeline(pipelineName, cronExpression string) error {
	if cronExpression == "" {
		return fmt.Errorf("流水线 %s 缺少cron表达式", pipelineName)
	}

	if entryID, ok := qs.entries[pipelineName]; ok {
		qs.cron.Remove(entryID)
	}

	name := pipelineName
	entryID, err := qs.cron.AddFunc(cronExpression, func() {
		qs.executeScheduledRecheck(name)
	})
	if err != nil {
		return fmt.Errorf("注册流水线 %s 的复检调度失败: %w", pipelineName, err)
	}

	qs.entries[pipelineName] = entryID
	slog.Info("流水线复检任务已注册",
		"pipeline", pipelineName,
		"cron_expression", cronExpression)
	return nil
}

// StartScheduler 启动调度器
func (qs *QualityScheduler) StartScheduler() error {
	if qs.schedulerStarted {
		return fmt.Errorf("调度器已经启动")
	}

	slog.Info("启动质量复检任务调度器")
	qs.cron.Start()
	qs.schedulerStarted = true
	return nil
}

// StopScheduler 停止调度器
func (qs *QualityScheduler) StopScheduler() {
	if !qs.schedulerStarted {
		return
	}

	slog.Info("停止质量复检任务调度器")
	qs.cancel()
	qs.cron.Stop()
	qs.schedulerStarted = false
}

// executeScheduledRecheck 执行定时复检。
// 配置了分布式锁时在锁保护下执行，锁被其他实例持有则跳过本轮
func (qs *QualityScheduler) executeScheduledRecheck(pipelineName string) {
	run := func() error {
		start := time.Now()
		payload, err := qs.loadEntitySnapshot()
		if err != nil {
			return fmt.Errorf("加载实体快照失败: %w", err)
		}
		if payload.EntityCount() == 0 {
			slog.Debug("实体快照为空，跳过本轮复检", "pipeline", pipelineName)
			return nil
		}

		result := qs.orchestrator.ExecutePipeline(pipelineName, payload)
		if result == nil {
			return fmt.Errorf("流水线 %s 未注册", pipelineName)
		}

		slog.Info("定时质量复检完成",
			"pipeline", pipelineName,
			"success", result.Success,
			"processed_entities", result.ProcessedEntities,
			"quality_score", result.QualityScore,
			"duration", time.Since(start))
		return nil
	}

	var err error
	if qs.distributedLock != nil {
		executor := distributed_lock.NewLockExecutor(qs.distributedLock)
		err = executor.ExecuteWithLock(qs.ctx, "recheck:"+pipelineName, 10*time.Minute, run)
	} else {
		err = run()
	}
	if err != nil {
		slog.Error("定时质量复检失败", "pipeline", pipelineName, "error", err)
	}
}

// loadEntitySnapshot 加载库内活跃实体快照，组装为流水线载荷
func (qs *QualityScheduler) loadEntitySnapshot() (validation.Payload, error) {
	payload := validation.Payload{}

	var genes []models.Gene
	if err := qs.db.Where("status = ?", "active").Limit(recheckBatchLimit).Find(&genes).Error; err != nil {
		return nil, err
	}
	if len(genes) > 0 {
		group := make([]map[string]interface{}, len(genes))
		for i := range genes {
			group[i] = genes[i].ToPayload()
		}
		payload["genes"] = group
	}

	var variants []models.Variant
	if err := qs.db.Where("status = ?", "active").Limit(recheckBatchLimit).Find(&variants).Error; err != nil {
		return nil, err
	}
	if len(variants) > 0 {
		group := make([]map[string]interface{}, len(variants))
		for i := range variants {
			group[i] = variants[i].ToPayload()
		}
		payload["variants"] = group
	}

	var phenotypes []models.Phenotype
	if err := qs.db.Where("status = ?", "active").Limit(recheckBatchLimit).Find(&phenotypes).Error; err != nil {
		return nil, err
	}
	if len(phenotypes) > 0 {
		group := make([]map[string]interface{}, len(phenotypes))
		for i := range phenotypes {
			group[i] = phenotypes[i].ToPayload()
		}
		payload["phenotypes"] = group
	}

	var publications []models.Publication
	if err := qs.db.Where("status = ?", "active").Limit(recheckBatchLimit).Find(&publications).Error; err != nil {
		return nil, err
	}
	if len(publications) > 0 {
		group := make([]map[string]interface{}, len(publications))
		for i := range publications {
			group[i] = publications[i].ToPayload()
		}
		payload["publications"] = group
	}

	return payload, nil
}
