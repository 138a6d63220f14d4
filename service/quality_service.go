/*
 * @module service/quality_service
 * @description 质量服务门面，封装流水线编排器，负责执行结果的Kafka发布与阶段级校验入口
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 流水线注册 -> 执行 -> 结果发布
 * @rules Kafka发布失败只记录日志不影响执行结果返回
 * @dependencies service/validation, service/event
 * @refs init.go
 */

package service

import (
	"biocuration-service/service/event"
	"biocuration-service/service/validation"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// QualityService 质量服务门面，持有流水线引用以支持阶段级校验
type QualityService struct {
	mu           sync.RWMutex
	orchestrator *validation.Orchestrator
	publisher    *event.KafkaPublisher
	pipelines    map[string]*validation.Pipeline
}

// NewQualityService 创建质量服务
func NewQualityService(orchestrator *validation.Orchestrator, publisher *event.KafkaPublisher) *QualityService {
	return &QualityService{
		orchestrator: orchestrator,
		publisher:    publisher,
		pipelines:    make(map[string]*validation.Pipeline),
	}
}

// RegisterPipeline 注册流水线到编排器并保留引用
func (s *QualityService) RegisterPipeline(pipeline *validation.Pipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orchestrator.RegisterPipeline(pipeline)
	s.pipelines[pipeline.Name()] = pipeline
}

// PipelineNames 返回已注册流水线名称
func (s *QualityService) PipelineNames() []string {
	return s.orchestrator.PipelineNames()
}

// ExecutePipeline 执行指定流水线并发布执行结果事件
func (s *QualityService) ExecutePipeline(name string, payload validation.Payload) (*validation.PipelineExecutionResult, error) {
	result := s.orchestrator.ExecutePipeline(name, payload)
	if result == nil {
		return nil, fmt.Errorf("流水线 %s 未注册", name)
	}
	s.publishResult(result)
	return result, nil
}

// ExecuteAllPipelines 批量执行全部流水线并逐条发布执行结果事件
func (s *QualityService) ExecuteAllPipelines(payloads map[string]validation.Payload) *validation.AllPipelinesResult {
	all := s.orchestrator.ExecuteAllPipelines(payloads)
	for _, result := range all.Results {
		s.publishResult(result)
	}
	return all
}

// ValidateStage 在指定流水线上执行单个检查点的校验
func (s *QualityService) ValidateStage(pipelineName, stageName string, payload validation.Payload) (*validation.StageResult, error) {
	s.mu.RLock()
	pipeline, exists := s.pipelines[pipelineName]
	s.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("流水线 %s 未注册", pipelineName)
	}
	return pipeline.ValidateStage(stageName, payload), nil
}

// publishResult 发布流水线执行结果到Kafka，未配置或失败时只记录日志
func (s *QualityService) publishResult(result *validation.PipelineExecutionResult) {
	if s.publisher == nil || !s.publisher.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.publisher.PublishPipelineExecution(ctx, result); err != nil {
		slog.Error("流水线执行结果发布失败", "pipeline", result.PipelineName, "error", err)
	}
}
