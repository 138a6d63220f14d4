/*
 * @module api/controllers/validation_controller
 * @description 校验控制器，提供实体校验、批量校验、规则目录查询和脚本规则注册接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式
 * @dependencies biocuration-service/service, github.com/go-chi/render
 * @refs service/validation/
 */

package controllers

import (
	"biocuration-service/service"
	"biocuration-service/service/validation"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ValidationController 校验控制器
type ValidationController struct {
	engine         *validation.Engine
	cachedEngine   *validation.CachedEngine
	parallel       *validation.ParallelValidator
	selective      *validation.SelectiveValidator
	scriptCompiler *validation.ScriptCompiler
}

// NewValidationController 创建校验控制器实例
func NewValidationController() *ValidationController {
	return &ValidationController{
		engine:         service.GlobalEngine,
		cachedEngine:   service.GlobalCachedEngine,
		parallel:       validation.NewParallelValidator(service.GlobalEngine, 0, 0),
		selective:      service.GlobalSelectiveValidator,
		scriptCompiler: validation.NewScriptCompiler(),
	}
}

// ValidateEntityRequest 单实体校验请求
type ValidateEntityRequest struct {
	EntityType string                 `json:"entity_type"`
	Payload    map[string]interface{} `json:"payload"`
	RuleNames  []string               `json:"rule_names,omitempty"`
	UseCache   bool                   `json:"use_cache,omitempty"`
}

// ValidateBatchRequest 批量校验请求
type ValidateBatchRequest struct {
	EntityType string                   `json:"entity_type"`
	Payloads   []map[string]interface{} `json:"payloads"`
	Parallel   bool                     `json:"parallel,omitempty"`
}

// ValidateEntity 校验单个实体
// @Summary 校验单个实体
// @Description 按当前严格级别校验单个实体载荷，可选指定规则名称子集或启用结果缓存
// @Tags 数据校验
// @Accept json
// @Produce json
// @Param request body ValidateEntityRequest true "校验请求"
// @Success 200 {object} APIResponse{data=validation.ValidationResult} "校验完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /validation/validate [post]
func (c *ValidationController) ValidateEntity(w http.ResponseWriter, r *http.Request) {
	var req ValidateEntityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if !c.engine.Catalog().HasEntityType(req.EntityType) {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "不支持的实体类型: " + req.EntityType,
		})
		return
	}

	var result *validation.ValidationResult
	if req.UseCache && len(req.RuleNames) == 0 {
		result = c.cachedEngine.ValidateEntity(req.EntityType, req.Payload)
	} else {
		result = c.engine.ValidateEntity(req.EntityType, req.Payload, req.RuleNames...)
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "校验完成",
		Data:   result,
	})
}

// ValidateBatch 批量校验实体
// @Summary 批量校验实体
// @Description 校验同一实体类型的一批载荷，parallel为true时启用自适应并行
// @Tags 数据校验
// @Accept json
// @Produce json
// @Param request body ValidateBatchRequest true "批量校验请求"
// @Success 200 {object} APIResponse{data=[]validation.ValidationResult} "校验完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /validation/validate-batch [post]
func (c *ValidationController) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req ValidateBatchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if !c.engine.Catalog().HasEntityType(req.EntityType) {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "不支持的实体类型: " + req.EntityType,
		})
		return
	}

	var results []*validation.ValidationResult
	if req.Parallel {
		results = c.parallel.ValidateWithAdaptiveParallelism(req.EntityType, req.Payloads)
	} else {
		results = c.engine.ValidateBatch(req.EntityType, req.Payloads)
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "批量校验完成",
		Data:   results,
	})
}

// ValidateSelectively 选择性校验实体
// @Summary 选择性校验实体
// @Description 按当前激活的跳过策略或置信度阈值决定是否执行完整校验
// @Tags 数据校验
// @Accept json
// @Produce json
// @Param request body ValidateEntityRequest true "校验请求"
// @Success 200 {object} APIResponse{data=validation.ValidationResult} "校验完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /validation/validate-selective [post]
func (c *ValidationController) ValidateSelectively(w http.ResponseWriter, r *http.Request) {
	var req ValidateEntityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result := c.selective.ValidateSelectively(req.EntityType, req.Payload)
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "校验完成",
		Data:   result,
	})
}

// ruleSummary 规则目录中单条规则的只读视图
type ruleSummary struct {
	Field    string `json:"field"`
	RuleName string `json:"rule_name"`
	Severity string `json:"severity"`
	MinLevel string `json:"min_level"`
}

// GetEntityTypes 获取支持的实体类型列表
// @Summary 获取支持的实体类型列表
// @Description 返回规则目录中登记的全部实体类型
// @Tags 数据校验
// @Produce json
// @Success 200 {object} APIResponse{data=[]string} "获取成功"
// @Router /validation/entity-types [get]
func (c *ValidationController) GetEntityTypes(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取实体类型列表成功",
		Data:   c.engine.Catalog().EntityTypes(),
	})
}

// GetRules 获取指定实体类型的规则列表
// @Summary 获取指定实体类型的规则列表
// @Description 返回规则目录中指定实体类型的全部规则摘要
// @Tags 数据校验
// @Produce json
// @Param entity_type path string true "实体类型"
// @Success 200 {object} APIResponse{data=[]ruleSummary} "获取成功"
// @Failure 404 {object} APIResponse "实体类型不存在"
// @Router /validation/rules/{entity_type} [get]
func (c *ValidationController) GetRules(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entity_type")
	if !c.engine.Catalog().HasEntityType(entityType) {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "实体类型不存在: " + entityType,
		})
		return
	}

	rules := c.engine.Catalog().RulesFor(entityType)
	summaries := make([]ruleSummary, 0, len(rules))
	for _, rule := range rules {
		summaries = append(summaries, ruleSummary{
			Field:    rule.Field,
			RuleName: rule.RuleName,
			Severity: string(rule.Severity),
			MinLevel: string(rule.MinLevel),
		})
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取规则列表成功",
		Data:   summaries,
	})
}

// RegisterScriptRuleRequest 脚本规则注册请求
type RegisterScriptRuleRequest struct {
	EntityType string `json:"entity_type"`
	Field      string `json:"field"`
	RuleName   string `json:"rule_name"`
	Script     string `json:"script"`
	Severity   string `json:"severity"`
	MinLevel   string `json:"min_level"`
}

// RegisterScriptRule 注册脚本规则
// @Summary 注册脚本规则
// @Description 编译Go源码形式的校验脚本并注册为目录规则，编译结果按脚本内容哈希缓存
// @Tags 数据校验
// @Accept json
// @Produce json
// @Param request body RegisterScriptRuleRequest true "脚本规则"
// @Success 201 {object} APIResponse "注册成功"
// @Failure 400 {object} APIResponse "脚本编译失败或参数错误"
// @Router /validation/script-rules [post]
func (c *ValidationController) RegisterScriptRule(w http.ResponseWriter, r *http.Request) {
	var req RegisterScriptRuleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	severity := validation.Severity(req.Severity)
	if severity != validation.SeverityError && severity != validation.SeverityWarning && severity != validation.SeverityInfo {
		severity = validation.SeverityWarning
	}
	minLevel := validation.StrictnessLevel(req.MinLevel)
	if minLevel != validation.LevelLax && minLevel != validation.LevelStandard && minLevel != validation.LevelStrict {
		minLevel = validation.LevelStandard
	}

	err := c.scriptCompiler.RegisterScriptRule(c.engine.Catalog(), req.EntityType, req.Field, req.RuleName, req.Script, severity, minLevel)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "脚本规则注册失败: " + err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "脚本规则注册成功",
	})
}

// GetCacheStats 获取结果缓存统计
// @Summary 获取结果缓存统计
// @Description 返回校验结果缓存的命中、未命中与淘汰统计
// @Tags 数据校验
// @Produce json
// @Success 200 {object} APIResponse{data=validation.CacheStats} "获取成功"
// @Router /validation/cache/stats [get]
func (c *ValidationController) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取缓存统计成功",
		Data:   service.GlobalResultCache.Stats(),
	})
}

// ClearCache 清空结果缓存
// @Summary 清空结果缓存
// @Description 清空全部已缓存的校验结果
// @Tags 数据校验
// @Produce json
// @Success 200 {object} APIResponse "清空成功"
// @Router /validation/cache [delete]
func (c *ValidationController) ClearCache(w http.ResponseWriter, r *http.Request) {
	service.GlobalResultCache.Clear()
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "缓存已清空",
	})
}

// GetSelectiveStats 获取选择性校验统计
// @Summary 获取选择性校验统计
// @Description 返回选择性校验的尝试、跳过次数与平均选择率
// @Tags 数据校验
// @Produce json
// @Success 200 {object} APIResponse{data=validation.SelectiveStats} "获取成功"
// @Router /validation/selective/stats [get]
func (c *ValidationController) GetSelectiveStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取选择性校验统计成功",
		Data:   c.selective.Stats(),
	})
}

// RegisterSelectiveProfile 注册跳过策略
// @Summary 注册选择性校验跳过策略
// @Description 注册命名跳过策略，注册后需显式激活才生效
// @Tags 数据校验
// @Accept json
// @Produce json
// @Param profile body validation.SelectiveProfile true "跳过策略"
// @Success 201 {object} APIResponse "注册成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /validation/selective/profiles [post]
func (c *ValidationController) RegisterSelectiveProfile(w http.ResponseWriter, r *http.Request) {
	var profile validation.SelectiveProfile
	if err := render.DecodeJSON(r.Body, &profile); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}
	if profile.Name == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "策略名称不能为空",
		})
		return
	}

	c.selective.RegisterProfile(&profile)
	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "跳过策略注册成功",
	})
}

// ActivateSelectiveProfile 激活跳过策略
// @Summary 激活选择性校验跳过策略
// @Description 激活指定名称的跳过策略，同一时刻至多一个激活策略
// @Tags 数据校验
// @Produce json
// @Param name path string true "策略名称"
// @Success 200 {object} APIResponse "激活成功"
// @Failure 404 {object} APIResponse "策略不存在"
// @Router /validation/selective/profiles/{name}/activate [post]
func (c *ValidationController) ActivateSelectiveProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := c.selective.ActivateProfile(name); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    err.Error(),
		})
		return
	}
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "跳过策略已激活",
	})
}

// DeactivateSelectiveProfile 停用跳过策略
// @Summary 停用当前激活的跳过策略
// @Description 停用后所有实体恢复完整校验
// @Tags 数据校验
// @Produce json
// @Success 200 {object} APIResponse "停用成功"
// @Router /validation/selective/profiles/deactivate [post]
func (c *ValidationController) DeactivateSelectiveProfile(w http.ResponseWriter, r *http.Request) {
	c.selective.DeactivateProfile()
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "跳过策略已停用",
	})
}
