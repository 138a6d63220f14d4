/*
 * @module api/controllers/event_controller
 * @description 事件管理控制器，提供SSE连接、事件发送广播和历史查询API
 * @architecture RESTful API架构 - 控制器层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow HTTP请求 -> 业务逻辑处理 -> 响应返回
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies biocuration-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/event/
 */

package controllers

import (
	"biocuration-service/service"
	"biocuration-service/service/event"
	"biocuration-service/service/models"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// EventController 事件管理控制器
type EventController struct {
	eventService *event.EventService
}

// NewEventController 创建事件控制器实例
func NewEventController() *EventController {
	return &EventController{
		eventService: service.GlobalEventService,
	}
}

// === SSE连接处理 ===

// HandleSSE 处理SSE连接
// @Summary 建立SSE连接
// @Description 前端页面通过此接口建立SSE连接，接收质量告警和实体变更推送
// @Tags 事件管理
// @Param user_name path string true "用户名"
// @Success 200 {string} string "SSE事件流"
// @Router /sse/{user_name} [get]
func (c *EventController) HandleSSE(w http.ResponseWriter, r *http.Request) {
	userName := chi.URLParam(r, "user_name")
	if userName == "" {
		http.Error(w, "用户名不能为空", http.StatusBadRequest)
		return
	}

	// 设置SSE响应头
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

	// 生成连接ID
	connectionID := uuid.New().String()
	clientIP := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		clientIP = forwarded
	}

	// 添加SSE连接
	client := c.eventService.AddSSEConnection(userName, connectionID, clientIP)
	defer c.eventService.RemoveSSEConnection(userName, connectionID)

	// 发送连接成功事件
	fmt.Fprintf(w, "data: {\"type\":\"connected\",\"connection_id\":\"%s\",\"timestamp\":\"%s\"}\n\n",
		connectionID, time.Now().Format(time.RFC3339))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	// 处理事件推送
	for {
		select {
		case evt := <-client.Channel:
			fmt.Fprintf(w, "data: %s\n\n", toJSON(evt))

			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-client.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}

// SendEvent 发送事件给指定用户
// @Summary 发送事件
// @Description 向指定用户发送SSE事件
// @Tags 事件管理
// @Accept json
// @Produce json
// @Param request body SendEventRequest true "发送事件请求"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /events/send [post]
func (c *EventController) SendEvent(w http.ResponseWriter, r *http.Request) {
	var req SendEventRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数解析失败",
		})
		return
	}

	if req.UserName == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "用户名不能为空",
		})
		return
	}
	if req.EventType == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "事件类型不能为空",
		})
		return
	}

	evt := &models.SSEEvent{
		EventType: req.EventType,
		UserName:  req.UserName,
		Data:      req.Data,
		CreatedAt: time.Now(),
	}

	if err := c.eventService.SendEventToUser(req.UserName, evt); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "发送事件失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "事件发送成功",
		Data:   map[string]interface{}{"event_id": evt.ID},
	})
}

// BroadcastEvent 广播事件
// @Summary 广播事件
// @Description 向所有连接的用户广播SSE事件
// @Tags 事件管理
// @Accept json
// @Produce json
// @Param request body BroadcastEventRequest true "广播事件请求"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /events/broadcast [post]
func (c *EventController) BroadcastEvent(w http.ResponseWriter, r *http.Request) {
	var req BroadcastEventRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数解析失败",
		})
		return
	}

	if req.EventType == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "事件类型不能为空",
		})
		return
	}

	evt := &models.SSEEvent{
		EventType: req.EventType,
		Data:      req.Data,
		CreatedAt: time.Now(),
	}

	if err := c.eventService.BroadcastEvent(evt); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "广播事件失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "事件广播成功",
		Data:   map[string]interface{}{"event_id": evt.ID},
	})
}

// === 请求和响应结构体 ===

// SendEventRequest 发送事件请求
type SendEventRequest struct {
	UserName  string                 `json:"user_name" example:"admin"`
	EventType string                 `json:"event_type" example:"quality_alert"`
	Data      map[string]interface{} `json:"data"`
}

// BroadcastEventRequest 广播事件请求
type BroadcastEventRequest struct {
	EventType string                 `json:"event_type" example:"system_notification"`
	Data      map[string]interface{} `json:"data"`
}

// GetSSEConnectionList 获取SSE连接列表
// @Summary 获取SSE连接列表
// @Description 分页获取SSE连接列表，支持按用户名和连接状态过滤
// @Tags 事件管理
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(10)
// @Param user_name query string false "用户名过滤"
// @Param is_active query bool false "连接状态过滤"
// @Success 200 {object} PaginatedResponse{data=[]models.SSEConnection} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /events/connections [get]
func (c *EventController) GetSSEConnectionList(w http.ResponseWriter, r *http.Request) {
	page := 1
	size := 10
	userName := r.URL.Query().Get("user_name")
	isActiveStr := r.URL.Query().Get("is_active")

	var isActive *bool
	if isActiveStr != "" {
		val := isActiveStr == "true"
		isActive = &val
	}

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && s > 0 && s <= 100 {
		size = s
	}

	connections, total, err := c.eventService.GetSSEConnectionList(page, size, userName, isActive)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取SSE连接列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取SSE连接列表成功",
		Data:   connections,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetEventHistoryList 获取事件历史列表
// @Summary 获取事件历史列表
// @Description 分页获取事件历史列表，支持按用户名和事件类型过滤
// @Tags 事件管理
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(10)
// @Param user_name query string false "用户名过滤"
// @Param event_type query string false "事件类型过滤"
// @Success 200 {object} PaginatedResponse{data=[]models.SSEEvent} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /events/history [get]
func (c *EventController) GetEventHistoryList(w http.ResponseWriter, r *http.Request) {
	page := 1
	size := 10
	userName := r.URL.Query().Get("user_name")
	eventType := r.URL.Query().Get("event_type")

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && s > 0 && s <= 100 {
		size = s
	}

	events, total, err := c.eventService.GetEventHistoryList(page, size, userName, eventType)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取事件历史列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取事件历史列表成功",
		Data:   events,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// toJSON 将对象转换为JSON字符串
func toJSON(v interface{}) string {
	data, _ := json.Marshal(v)
	return string(data)
}
