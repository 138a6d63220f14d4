/*
 * @module service/validation/metrics
 * @description 质量指标上报接口及Prometheus实现，接收流水线执行指标流和单条校验问题
 * @architecture 分层架构 - 数据质量校验层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 流水线执行完成 -> 指标事件上报 -> Prometheus采集
 * @rules 指标上报为尽力而为，上报失败不得影响校验调用本身
 * @dependencies github.com/prometheus/client_golang
 * @refs orchestrator.go, main.go
 */

package validation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetric 一次流水线执行的指标元组
type PipelineMetric struct {
	PipelineName      string
	ExecutionTime     time.Duration
	EntitiesProcessed int
	QualityScore      float64
	ErrorCount        int
	WarningCount      int
}

// MetricsSink 指标接收端。实现方接收流水线执行指标流和单条校验问题，
// 用于外部报表/看板子系统按类别与优先级索引
type MetricsSink interface {
	RecordPipelineExecution(metric PipelineMetric)
	RecordIssue(issue ValidationIssue)
}

// NoopMetricsSink 空实现，未配置指标后端时使用
type NoopMetricsSink struct{}

func (NoopMetricsSink) RecordPipelineExecution(PipelineMetric) {}
func (NoopMetricsSink) RecordIssue(ValidationIssue)            {}

// PrometheusMetricsSink 基于Prometheus的指标实现
type PrometheusMetricsSink struct {
	executions     *prometheus.CounterVec
	executionTime  *prometheus.HistogramVec
	entitiesTotal  *prometheus.CounterVec
	qualityScore   *prometheus.GaugeVec
	issuesBySev    *prometheus.CounterVec
	issuesByRule   *prometheus.CounterVec
}

// NewPrometheusMetricsSink 创建Prometheus指标实现并注册到给定registerer
func NewPrometheusMetricsSink(reg prometheus.Registerer) *PrometheusMetricsSink {
	sink := &PrometheusMetricsSink{
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biocuration_pipeline_executions_total",
			Help: "质量流水线执行总次数",
		}, []string{"pipeline"}),
		executionTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "biocuration_pipeline_execution_seconds",
			Help:    "质量流水线执行耗时",
			Buckets: prometheus.DefBuckets,
		}, []string{"pipeline"}),
		entitiesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biocuration_pipeline_entities_processed_total",
			Help: "质量流水线处理的实体总数",
		}, []string{"pipeline"}),
		qualityScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "biocuration_pipeline_quality_score",
			Help: "最近一次流水线执行的综合质量分",
		}, []string{"pipeline"}),
		issuesBySev: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biocuration_validation_issues_total",
			Help: "按严重级别统计的校验问题总数",
		}, []string{"severity"}),
		issuesByRule: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biocuration_validation_rule_failures_total",
			Help: "按规则名统计的校验失败总数",
		}, []string{"rule", "field"}),
	}

	reg.MustRegister(
		sink.executions,
		sink.executionTime,
		sink.entitiesTotal,
		sink.qualityScore,
		sink.issuesBySev,
		sink.issuesByRule,
	)
	return sink
}

// RecordPipelineExecution 上报一次流水线执行指标
func (s *PrometheusMetricsSink) RecordPipelineExecution(metric PipelineMetric) {
	s.executions.WithLabelValues(metric.PipelineName).Inc()
	s.executionTime.WithLabelValues(metric.PipelineName).Observe(metric.ExecutionTime.Seconds())
	s.entitiesTotal.WithLabelValues(metric.PipelineName).Add(float64(metric.EntitiesProcessed))
	s.qualityScore.WithLabelValues(metric.PipelineName).Set(metric.QualityScore)
}

// RecordIssue 上报单条校验问题
func (s *PrometheusMetricsSink) RecordIssue(issue ValidationIssue) {
	s.issuesBySev.WithLabelValues(string(issue.Severity)).Inc()
	s.issuesByRule.WithLabelValues(issue.RuleName, issue.Field).Inc()
}
