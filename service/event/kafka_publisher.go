/*
 * @module service/event/kafka_publisher
 * @description Kafka事件发布器，将质量流水线执行结果发布到消息主题供下游消费
 * @architecture 适配器模式 - 封装第三方Kafka客户端
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 流水线执行完成 -> 序列化结果 -> 发布到Kafka主题
 * @rules 未配置KAFKA_BROKERS时发布器处于禁用状态，发布调用直接返回
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/validation/orchestrator.go, service/init.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"biocuration-service/service/validation"

	"github.com/segmentio/kafka-go"
)

// defaultPipelineTopic 流水线执行事件默认主题
const defaultPipelineTopic = "biocuration.pipeline.executions"

// KafkaPublisher 质量事件Kafka发布器
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher 创建Kafka发布器。
// 未设置KAFKA_BROKERS时返回禁用状态的发布器
func NewKafkaPublisher() *KafkaPublisher {
	brokers := getEnvWithDefault("KAFKA_BROKERS", "")
	topic := getEnvWithDefault("KAFKA_PIPELINE_TOPIC", defaultPipelineTopic)

	publisher := &KafkaPublisher{topic: topic}
	if brokers == "" {
		slog.Info("未配置KAFKA_BROKERS，Kafka发布器已禁用")
		return publisher
	}

	publisher.writer = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	slog.Info("Kafka发布器初始化成功", "brokers", brokers, "topic", topic)
	return publisher
}

// Enabled 发布器是否可用
func (p *KafkaPublisher) Enabled() bool {
	return p.writer != nil
}

// pipelineExecutionMessage 流水线执行事件消息体
type pipelineExecutionMessage struct {
	PipelineName      string    `json:"pipeline_name"`
	Success           bool      `json:"success"`
	ProcessedEntities int       `json:"processed_entities"`
	QualityScore      float64   `json:"quality_score"`
	ErrorCount        int       `json:"error_count"`
	WarningCount      int       `json:"warning_count"`
	InfoCount         int       `json:"info_count"`
	ExecutedAt        time.Time `json:"executed_at"`
}

// PublishPipelineExecution 发布流水线执行结果
func (p *KafkaPublisher) PublishPipelineExecution(ctx context.Context, result *validation.PipelineExecutionResult) error {
	if p.writer == nil {
		return nil
	}

	message := pipelineExecutionMessage{
		PipelineName:      result.PipelineName,
		Success:           result.Success,
		ProcessedEntities: result.ProcessedEntities,
		QualityScore:      result.QualityScore,
		ErrorCount:        result.IssueCounts.Error,
		WarningCount:      result.IssueCounts.Warning,
		InfoCount:         result.IssueCounts.Info,
		ExecutedAt:        time.Now(),
	}

	value, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化流水线执行事件失败: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(result.PipelineName),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("发布流水线执行事件失败: %w", err)
	}

	slog.Debug("流水线执行事件已发布",
		"topic", p.topic,
		"pipeline", result.PipelineName,
		"success", result.Success)
	return nil
}

// Close 关闭Kafka发布器
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
