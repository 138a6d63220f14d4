/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers/, api/middleware/
 */

package api

import (
	"biocuration-service/api/controllers"
	apimiddleware "biocuration-service/api/middleware"
	"biocuration-service/service"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API Key鉴权，API_KEY_AUTH_ENABLED=true时启用
	if os.Getenv("API_KEY_AUTH_ENABLED") == "true" {
		authMiddleware := apimiddleware.NewApiKeyAuthMiddleware(service.GlobalApiKeyService)
		r.Use(authMiddleware.Middleware)
	}

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// SSE事件订阅
	eventController := controllers.NewEventController()
	r.Get("/sse/{user_name}", eventController.HandleSSE)

	// 事件管理
	r.Route("/events", func(r chi.Router) {
		r.Post("/send", eventController.SendEvent)
		r.Post("/broadcast", eventController.BroadcastEvent)
		r.Get("/connections", eventController.GetSSEConnectionList)
		r.Get("/history", eventController.GetEventHistoryList)
	})

	// 数据校验
	r.Route("/validation", func(r chi.Router) {
		validationController := controllers.NewValidationController()

		r.Post("/validate", validationController.ValidateEntity)
		r.Post("/validate-batch", validationController.ValidateBatch)
		r.Post("/validate-selective", validationController.ValidateSelectively)

		// 规则目录
		r.Get("/entity-types", validationController.GetEntityTypes)
		r.Get("/rules/{entity_type}", validationController.GetRules)
		r.Post("/script-rules", validationController.RegisterScriptRule)

		// 结果缓存
		r.Get("/cache/stats", validationController.GetCacheStats)
		r.Delete("/cache", validationController.ClearCache)

		// 选择性校验
		r.Get("/selective/stats", validationController.GetSelectiveStats)
		r.Post("/selective/profiles", validationController.RegisterSelectiveProfile)
		r.Post("/selective/profiles/{name}/activate", validationController.ActivateSelectiveProfile)
		r.Post("/selective/profiles/deactivate", validationController.DeactivateSelectiveProfile)
	})

	// 质量流水线
	r.Route("/pipelines", func(r chi.Router) {
		pipelineController := controllers.NewPipelineController()

		r.Get("/", pipelineController.GetPipelines)
		r.Post("/", pipelineController.RegisterPipeline)
		r.Post("/execute-all", pipelineController.ExecuteAllPipelines)
		r.Post("/{name}/execute", pipelineController.ExecutePipeline)
		r.Post("/{name}/validate-stage", pipelineController.ValidateStage)
		r.Post("/{name}/schedule", pipelineController.SchedulePipeline)
	})

	// 策展实体管理
	r.Route("/curation", func(r chi.Router) {
		curationController := controllers.NewCurationController()

		// 基因
		r.Route("/genes", func(r chi.Router) {
			r.Post("/", curationController.CreateGene)
			r.Get("/", curationController.GetGenes)
			r.Post("/import", curationController.ImportGenes)
			r.Get("/{id}", curationController.GetGene)
			r.Put("/{id}", curationController.UpdateGene)
			r.Delete("/{id}", curationController.DeleteGene)
		})

		// 变异
		r.Route("/variants", func(r chi.Router) {
			r.Post("/", curationController.CreateVariant)
			r.Get("/", curationController.GetVariants)
			r.Get("/{id}", curationController.GetVariant)
			r.Put("/{id}", curationController.UpdateVariant)
			r.Delete("/{id}", curationController.DeleteVariant)
		})

		// 表型
		r.Route("/phenotypes", func(r chi.Router) {
			r.Post("/", curationController.CreatePhenotype)
			r.Get("/", curationController.GetPhenotypes)
			r.Get("/{id}", curationController.GetPhenotype)
			r.Put("/{id}", curationController.UpdatePhenotype)
			r.Delete("/{id}", curationController.DeletePhenotype)
		})

		// 文献
		r.Route("/publications", func(r chi.Router) {
			r.Post("/", curationController.CreatePublication)
			r.Get("/", curationController.GetPublications)
			r.Get("/{id}", curationController.GetPublication)
			r.Delete("/{id}", curationController.DeletePublication)
		})

		// 基因-变异-表型关联
		r.Route("/relationships", func(r chi.Router) {
			r.Post("/", curationController.CreateRelationship)
			r.Get("/", curationController.GetRelationships)
			r.Get("/{id}", curationController.GetRelationship)
			r.Delete("/{id}", curationController.DeleteRelationship)
			r.Post("/{id}/evidence", curationController.AddEvidenceItem)
		})
	})

	// API Key管理
	r.Route("/api-keys", func(r chi.Router) {
		apiKeyController := controllers.NewApiKeyController()

		r.Post("/", apiKeyController.CreateApiKey)
		r.Get("/", apiKeyController.GetApiKeys)
		r.Delete("/{id}", apiKeyController.RevokeApiKey)
	})
}
