/*
 * @module api/controllers/apikey_controller
 * @description API Key管理控制器，提供密钥签发、列表查询和吊销接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 完整密钥仅在创建响应中返回一次，存储层只保留bcrypt哈希
 * @dependencies biocuration-service/service, github.com/go-chi/render
 * @refs service/curation/api_key_service.go
 */

package controllers

import (
	"biocuration-service/service"
	"biocuration-service/service/curation"
	"biocuration-service/service/models"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ApiKeyController API Key管理控制器
type ApiKeyController struct {
	apiKeyService *curation.ApiKeyService
}

// NewApiKeyController 创建API Key控制器实例
func NewApiKeyController() *ApiKeyController {
	return &ApiKeyController{
		apiKeyService: service.GlobalApiKeyService,
	}
}

// CreateApiKeyRequest 创建API Key请求
type CreateApiKeyRequest struct {
	Name        string     `json:"name" example:"pipeline-bot"`
	Description string     `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// CreateApiKeyResponse 创建API Key响应，key_value仅此一次返回
type CreateApiKeyResponse struct {
	ApiKey   *models.ApiKey `json:"api_key"`
	KeyValue string         `json:"key_value"`
}

// CreateApiKey 创建API Key
// @Summary 创建API Key
// @Description 签发新的API Key，完整密钥仅在本响应中返回一次
// @Tags API Key管理
// @Accept json
// @Produce json
// @Param request body CreateApiKeyRequest true "创建请求"
// @Success 201 {object} APIResponse{data=CreateApiKeyResponse} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /api-keys [post]
func (c *ApiKeyController) CreateApiKey(w http.ResponseWriter, r *http.Request) {
	var req CreateApiKeyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if req.Name == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "密钥名称不能为空",
		})
		return
	}

	apiKey, fullKey, err := c.apiKeyService.CreateApiKey(req.Name, req.Description, req.ExpiresAt)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "创建API Key失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "创建API Key成功，请妥善保存密钥",
		Data: CreateApiKeyResponse{
			ApiKey:   apiKey,
			KeyValue: fullKey,
		},
	})
}

// GetApiKeys 获取API Key列表
// @Summary 获取API Key列表
// @Description 返回全部API Key元信息，不包含密钥哈希
// @Tags API Key管理
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.ApiKey} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /api-keys [get]
func (c *ApiKeyController) GetApiKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := c.apiKeyService.GetApiKeys()
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取API Key列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取API Key列表成功",
		Data:   keys,
	})
}

// RevokeApiKey 吊销API Key
// @Summary 吊销API Key
// @Description 将指定API Key置为吊销状态，吊销后立即失效
// @Tags API Key管理
// @Produce json
// @Param id path string true "密钥ID"
// @Success 200 {object} APIResponse "吊销成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /api-keys/{id} [delete]
func (c *ApiKeyController) RevokeApiKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.apiKeyService.RevokeApiKey(id); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "吊销API Key失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "API Key已吊销",
	})
}
