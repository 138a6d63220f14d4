/*
 * @module api/controllers/pipeline_controller
 * @description 质量流水线控制器，提供流水线执行、阶段校验和复检调度管理接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式
 * @dependencies biocuration-service/service, github.com/go-chi/render
 * @refs service/validation/, service/curation/
 */

package controllers

import (
	"biocuration-service/service"
	"biocuration-service/service/curation"
	"biocuration-service/service/validation"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// PipelineController 质量流水线控制器
type PipelineController struct {
	qualityService *service.QualityService
	scheduler      *curation.QualityScheduler
}

// NewPipelineController 创建质量流水线控制器实例
func NewPipelineController() *PipelineController {
	return &PipelineController{
		qualityService: service.GlobalQualityService,
		scheduler:      service.GlobalQualityScheduler,
	}
}

// ExecutePipelineRequest 流水线执行请求，载荷按复数实体类型分组
type ExecutePipelineRequest struct {
	Payload validation.Payload `json:"payload"`
}

// ValidateStageRequest 阶段校验请求
type ValidateStageRequest struct {
	Stage   string             `json:"stage"`
	Payload validation.Payload `json:"payload"`
}

// ExecuteAllRequest 全量流水线执行请求，外层键为流水线名称
type ExecuteAllRequest struct {
	Payloads map[string]validation.Payload `json:"payloads"`
}

// SchedulePipelineRequest 复检调度注册请求
type SchedulePipelineRequest struct {
	CronExpression string `json:"cron_expression"`
}

// GateSpec 门禁定义
type GateSpec struct {
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
}

// CheckpointSpec 检查点定义
type CheckpointSpec struct {
	Name     string     `json:"name"`
	Required bool       `json:"required"`
	Gates    []GateSpec `json:"gates"`
}

// RegisterPipelineRequest 流水线注册请求
type RegisterPipelineRequest struct {
	Name        string           `json:"name"`
	Checkpoints []CheckpointSpec `json:"checkpoints"`
}

// GetPipelines 获取已注册流水线列表
// @Summary 获取已注册流水线列表
// @Description 返回编排器中全部已注册流水线名称
// @Tags 质量流水线
// @Produce json
// @Success 200 {object} APIResponse{data=[]string} "获取成功"
// @Router /pipelines [get]
func (c *PipelineController) GetPipelines(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取流水线列表成功",
		Data:   c.qualityService.PipelineNames(),
	})
}

// RegisterPipeline 注册质量流水线
// @Summary 注册质量流水线
// @Description 按检查点和门禁定义构建流水线并注册到编排器，同名流水线会被覆盖
// @Tags 质量流水线
// @Accept json
// @Produce json
// @Param request body RegisterPipelineRequest true "流水线定义"
// @Success 201 {object} APIResponse "注册成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /pipelines [post]
func (c *PipelineController) RegisterPipeline(w http.ResponseWriter, r *http.Request) {
	var req RegisterPipelineRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if req.Name == "" || len(req.Checkpoints) == 0 {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "流水线名称和检查点不能为空",
		})
		return
	}

	pipeline := validation.NewPipeline(req.Name, service.GlobalEngine)
	for _, cp := range req.Checkpoints {
		gates := make([]*validation.QualityGate, 0, len(cp.Gates))
		for _, g := range cp.Gates {
			gates = append(gates, validation.NewQualityGate(g.Name, g.Actions))
		}
		pipeline.AddCheckpoint(cp.Name, gates, cp.Required)
	}
	c.qualityService.RegisterPipeline(pipeline)

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "流水线注册成功",
		Data:   req.Name,
	})
}

// ExecutePipeline 执行指定流水线
// @Summary 执行指定流水线
// @Description 对同一载荷执行流水线的全部检查点，检查点失败触发告警，整体成功为各检查点结果的逻辑与
// @Tags 质量流水线
// @Accept json
// @Produce json
// @Param name path string true "流水线名称"
// @Param request body ExecutePipelineRequest true "执行请求"
// @Success 200 {object} APIResponse{data=validation.PipelineExecutionResult} "执行完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 404 {object} APIResponse "流水线不存在"
// @Router /pipelines/{name}/execute [post]
func (c *PipelineController) ExecutePipeline(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req ExecutePipelineRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.qualityService.ExecutePipeline(name, req.Payload)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "流水线执行完成",
		Data:   result,
	})
}

// ValidateStage 执行单个检查点校验
// @Summary 执行单个检查点校验
// @Description 在指定流水线上只评估一个检查点，不触发告警
// @Tags 质量流水线
// @Accept json
// @Produce json
// @Param name path string true "流水线名称"
// @Param request body ValidateStageRequest true "阶段校验请求"
// @Success 200 {object} APIResponse{data=validation.StageResult} "校验完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 404 {object} APIResponse "流水线不存在"
// @Router /pipelines/{name}/validate-stage [post]
func (c *PipelineController) ValidateStage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req ValidateStageRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.qualityService.ValidateStage(name, req.Stage, req.Payload)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "阶段校验完成",
		Data:   result,
	})
}

// ExecuteAllPipelines 批量执行全部流水线
// @Summary 批量执行全部流水线
// @Description 按流水线名称分发载荷并行执行，未提供载荷的流水线使用空载荷
// @Tags 质量流水线
// @Accept json
// @Produce json
// @Param request body ExecuteAllRequest true "批量执行请求"
// @Success 200 {object} APIResponse{data=validation.AllPipelinesResult} "执行完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /pipelines/execute-all [post]
func (c *PipelineController) ExecuteAllPipelines(w http.ResponseWriter, r *http.Request) {
	var req ExecuteAllRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result := c.qualityService.ExecuteAllPipelines(req.Payloads)
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "全部流水线执行完成",
		Data:   result,
	})
}

// SchedulePipeline 注册流水线复检调度
// @Summary 注册流水线复检调度
// @Description 为流水线注册周期性复检任务，cron表达式带秒字段
// @Tags 质量流水线
// @Accept json
// @Produce json
// @Param name path string true "流水线名称"
// @Param request body SchedulePipelineRequest true "调度请求"
// @Success 200 {object} APIResponse "注册成功"
// @Failure 400 {object} APIResponse "cron表达式无效"
// @Router /pipelines/{name}/schedule [post]
func (c *PipelineController) SchedulePipeline(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req SchedulePipelineRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if err := c.scheduler.SchedulePipeline(name, req.CronExpression); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "复检调度注册失败: " + err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "复检调度注册成功",
	})
}
