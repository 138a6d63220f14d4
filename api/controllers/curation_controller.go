/*
 * @module api/controllers/curation_controller
 * @description 策展实体控制器，提供基因、变异、表型、文献及关联关系的增删改查与批量导入接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/curation_quality_req.md
 * @stateFlow HTTP请求处理流程，写操作先经校验引擎再落库
 * @rules 写入校验失败返回422并附带校验结果，统一的错误处理和响应格式
 * @dependencies biocuration-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/curation/, service/models/
 */

package controllers

import (
	"biocuration-service/service"
	"biocuration-service/service/curation"
	"biocuration-service/service/models"
	"biocuration-service/service/validation"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// CurationController 策展实体控制器
type CurationController struct {
	curationService *curation.CurationService
}

// NewCurationController 创建策展实体控制器实例
func NewCurationController() *CurationController {
	return &CurationController{
		curationService: service.GlobalCurationService,
	}
}

// writeResult 写操作响应体，实体与校验结果一起返回
type writeResult struct {
	Entity           interface{}                  `json:"entity,omitempty"`
	ValidationResult *validation.ValidationResult `json:"validation_result,omitempty"`
}

// renderWriteError 统一处理写操作错误：校验失败返回422并附带校验结果
func renderWriteError(w http.ResponseWriter, r *http.Request, err error, result *validation.ValidationResult, failMsg string) {
	if errors.Is(err, curation.ErrValidationFailed) {
		render.JSON(w, r, APIResponse{
			Status: http.StatusUnprocessableEntity,
			Msg:    err.Error(),
			Data:   writeResult{ValidationResult: result},
		})
		return
	}
	render.JSON(w, r, APIResponse{
		Status: http.StatusInternalServerError,
		Msg:    failMsg,
	})
}

// parsePagination 解析分页参数，默认第1页每页10条
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}
	return page, size
}

// === 基因管理 ===

// CreateGene 创建基因
// @Summary 创建基因
// @Description 创建基因记录，写入前执行完整校验，存在ERROR级问题时拒绝
// @Tags 策展实体
// @Accept json
// @Produce json
// @Param gene body models.Gene true "基因信息"
// @Success 201 {object} APIResponse{data=writeResult} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 422 {object} APIResponse{data=writeResult} "校验未通过"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/genes [post]
func (c *CurationController) CreateGene(w http.ResponseWriter, r *http.Request) {
	var gene models.Gene
	if err := render.DecodeJSON(r.Body, &gene); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.curationService.CreateGene(&gene)
	if err != nil {
		renderWriteError(w, r, err, result, "创建基因失败")
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "创建基因成功",
		Data:   writeResult{Entity: gene, ValidationResult: result},
	})
}

// GetGenes 获取基因列表
// @Summary 获取基因列表
// @Description 分页获取基因列表，支持按符号和来源筛选
// @Tags 策展实体
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Param symbol query string false "基因符号"
// @Param source query string false "数据来源"
// @Success 200 {object} PaginatedResponse{data=[]models.Gene} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/genes [get]
func (c *CurationController) GetGenes(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	symbol := r.URL.Query().Get("symbol")
	source := r.URL.Query().Get("source")

	genes, total, err := c.curationService.GetGenes(page, size, symbol, source)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取基因列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取基因列表成功",
		Data:   genes,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetGene 获取基因详情
// @Summary 获取基因详情
// @Tags 策展实体
// @Produce json
// @Param id path string true "基因ID"
// @Success 200 {object} APIResponse{data=models.Gene} "获取成功"
// @Failure 404 {object} APIResponse "基因不存在"
// @Router /curation/genes/{id} [get]
func (c *CurationController) GetGene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	gene, err := c.curationService.GetGene(id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "基因不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取基因成功",
		Data:   gene,
	})
}

// UpdateGene 更新基因
// @Summary 更新基因
// @Description 更新基因记录，合并后的完整记录重新校验
// @Tags 策展实体
// @Accept json
// @Produce json
// @Param id path string true "基因ID"
// @Param gene body models.Gene true "基因更新信息"
// @Success 200 {object} APIResponse{data=writeResult} "更新成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 422 {object} APIResponse{data=writeResult} "校验未通过"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/genes/{id} [put]
func (c *CurationController) UpdateGene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var gene models.Gene
	if err := render.DecodeJSON(r.Body, &gene); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.curationService.UpdateGene(id, &gene)
	if err != nil {
		renderWriteError(w, r, err, result, "更新基因失败")
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "更新基因成功",
		Data:   writeResult{ValidationResult: result},
	})
}

// DeleteGene 删除基因
// @Summary 删除基因
// @Tags 策展实体
// @Produce json
// @Param id path string true "基因ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/genes/{id} [delete]
func (c *CurationController) DeleteGene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.curationService.DeleteGene(id); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "删除基因失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除基因成功",
	})
}

// ImportGenes 批量导入基因
// @Summary 批量导入基因
// @Description 并行校验整批基因，仅持久化通过校验的记录，返回逐条校验结果
// @Tags 策展实体
// @Accept json
// @Produce json
// @Param genes body []models.Gene true "基因列表"
// @Success 200 {object} APIResponse{data=curation.ImportResult} "导入完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/genes/import [post]
func (c *CurationController) ImportGenes(w http.ResponseWriter, r *http.Request) {
	var genes []*models.Gene
	if err := render.DecodeJSON(r.Body, &genes); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.curationService.ImportGenes(genes)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "批量导入基因失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "批量导入完成",
		Data:   result,
	})
}

// === 变异管理 ===

// CreateVariant 创建变异
// @Summary 创建变异
// @Description 创建变异记录，写入前执行完整校验
// @Tags 策展实体
// @Accept json
// @Produce json
// @Param variant body models.Variant true "变异信息"
// @Success 201 {object} APIResponse{data=writeResult} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 422 {object} APIResponse{data=writeResult} "校验未通过"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/variants [post]
func (c *CurationController) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var variant models.Variant
	if err := render.DecodeJSON(r.Body, &variant); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.curationService.CreateVariant(&variant)
	if err != nil {
		renderWriteError(w, r, err, result, "创建变异失败")
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "创建变异成功",
		Data:   writeResult{Entity: variant, ValidationResult: result},
	})
}

// GetVariants 获取变异列表
// @Summary 获取变异列表
// @Description 分页获取变异列表，支持按染色体和rsID筛选
// @Tags 策展实体
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Param chromosome query string false "染色体"
// @Param rsid query string false "dbSNP rsID"
// @Success 200 {object} PaginatedResponse{data=[]models.Variant} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/variants [get]
func (c *CurationController) GetVariants(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	chromosome := r.URL.Query().Get("chromosome")
	rsid := r.URL.Query().Get("rsid")

	variants, total, err := c.curationService.GetVariants(page, size, chromosome, rsid)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取变异列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取变异列表成功",
		Data:   variants,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetVariant 获取变异详情
// @Summary 获取变异详情
// @Tags 策展实体
// @Produce json
// @Param id path string true "变异ID"
// @Success 200 {object} APIResponse{data=models.Variant} "获取成功"
// @Failure 404 {object} APIResponse "变异不存在"
// @Router /curation/variants/{id} [get]
func (c *CurationController) GetVariant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	variant, err := c.curationService.GetVariant(id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "变异不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取变异成功",
		Data:   variant,
	})
}

// UpdateVariant 更新变异
// @Summary 更新变异
// @Tags 策展实体
// @Accept json
// @Produce json
// @Param id path string true "变异ID"
// @Param variant body models.Variant true "变异更新信息"
// @Success 200 {object} APIResponse{data=writeResult} "更新成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 422 {object} APIResponse{data=writeResult} "校验未通过"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/variants/{id} [put]
func (c *CurationController) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var variant models.Variant
	if err := render.DecodeJSON(r.Body, &variant); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.curationService.UpdateVariant(id, &variant)
	if err != nil {
		renderWriteError(w, r, err, result, "更新变异失败")
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "更新变异成功",
		Data:   writeResult{ValidationResult: result},
	})
}

// DeleteVariant 删除变异
// @Summary 删除变异
// @Tags 策展实体
// @Produce json
// @Param id path string true "变异ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/variants/{id} [delete]
func (c *CurationController) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.curationService.DeleteVariant(id); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "删除变异失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除变异成功",
	})
}

// === 表型管理 ===

// CreatePhenotype 创建表型
// @Summary 创建表型
// @Tags 策展实体
// @Accept json
// @Produce json
// @Param phenotype body models.Phenotype true "表型信息"
// @Success 201 {object} APIResponse{data=writeResult} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 422 {object} APIResponse{data=writeResult} "校验未通过"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/phenotypes [post]
func (c *CurationController) CreatePhenotype(w http.ResponseWriter, r *http.Request) {
	var phenotype models.Phenotype
	if err := render.DecodeJSON(r.Body, &phenotype); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.curationService.CreatePhenotype(&phenotype)
	if err != nil {
		renderWriteError(w, r, err, result, "创建表型失败")
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "创建表型成功",
		Data:   writeResult{Entity: phenotype, ValidationResult: result},
	})
}

// GetPhenotypes 获取表型列表
// @Summary 获取表型列表
// @Description 分页获取表型列表，支持按HPO编号筛选
// @Tags 策展实体
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Param hpo_id query string false "HPO编号"
// @Success 200 {object} PaginatedResponse{data=[]models.Phenotype} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/phenotypes [get]
func (c *CurationController) GetPhenotypes(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	hpoID := r.URL.Query().Get("hpo_id")

	phenotypes, total, err := c.curationService.GetPhenotypes(page, size, hpoID)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取表型列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取表型列表成功",
		Data:   phenotypes,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetPhenotype 获取表型详情
// @Summary 获取表型详情
// @Tags 策展实体
// @Produce json
// @Param id path string true "表型ID"
// @Success 200 {object} APIResponse{data=models.Phenotype} "获取成功"
// @Failure 404 {object} APIResponse "表型不存在"
// @Router /curation/phenotypes/{id} [get]
func (c *CurationController) GetPhenotype(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	phenotype, err := c.curationService.GetPhenotype(id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "表型不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取表型成功",
		Data:   phenotype,
	})
}

// UpdatePhenotype 更新表型
// @Summary 更新表型
// @Tags 策展实体
// @Accept json
// @Produce json
// @Param id path string true "表型ID"
// @Param phenotype body models.Phenotype true "表型更新信息"
// @Success 200 {object} APIResponse{data=writeResult} "更新成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 422 {object} APIResponse{data=writeResult} "校验未通过"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/phenotypes/{id} [put]
func (c *CurationController) UpdatePhenotype(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var phenotype models.Phenotype
	if err := render.DecodeJSON(r.Body, &phenotype); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.curationService.UpdatePhenotype(id, &phenotype)
	if err != nil {
		renderWriteError(w, r, err, result, "更新表型失败")
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "更新表型成功",
		Data:   writeResult{ValidationResult: result},
	})
}

// DeletePhenotype 删除表型
// @Summary 删除表型
// @Tags 策展实体
// @Produce json
// @Param id path string true "表型ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/phenotypes/{id} [delete]
func (c *CurationController) DeletePhenotype(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.curationService.DeletePhenotype(id); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "删除表型失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除表型成功",
	})
}

// === 文献管理 ===

// CreatePublication 创建文献
// @Summary 创建文献
// @Tags 策展实体
// @Accept json
// @Produce json
// @Param publication body models.Publication true "文献信息"
// @Success 201 {object} APIResponse{data=writeResult} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 422 {object} APIResponse{data=writeResult} "校验未通过"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/publications [post]
func (c *CurationController) CreatePublication(w http.ResponseWriter, r *http.Request) {
	var publication models.Publication
	if err := render.DecodeJSON(r.Body, &publication); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.curationService.CreatePublication(&publication)
	if err != nil {
		renderWriteError(w, r, err, result, "创建文献失败")
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "创建文献成功",
		Data:   writeResult{Entity: publication, ValidationResult: result},
	})
}

// GetPublications 获取文献列表
// @Summary 获取文献列表
// @Description 分页获取文献列表，支持按PMID筛选
// @Tags 策展实体
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Param pmid query string false "PubMed编号"
// @Success 200 {object} PaginatedResponse{data=[]models.Publication} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/publications [get]
func (c *CurationController) GetPublications(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	pmid := r.URL.Query().Get("pmid")

	publications, total, err := c.curationService.GetPublications(page, size, pmid)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取文献列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取文献列表成功",
		Data:   publications,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetPublication 获取文献详情
// @Summary 获取文献详情
// @Tags 策展实体
// @Produce json
// @Param id path string true "文献ID"
// @Success 200 {object} APIResponse{data=models.Publication} "获取成功"
// @Failure 404 {object} APIResponse "文献不存在"
// @Router /curation/publications/{id} [get]
func (c *CurationController) GetPublication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	publication, err := c.curationService.GetPublication(id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "文献不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取文献成功",
		Data:   publication,
	})
}

// DeletePublication 删除文献
// @Summary 删除文献
// @Tags 策展实体
// @Produce json
// @Param id path string true "文献ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/publications/{id} [delete]
func (c *CurationController) DeletePublication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.curationService.DeletePublication(id); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "删除文献失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除文献成功",
	})
}

// === 关联关系管理 ===

// CreateRelationship 创建基因-变异-表型关联
// @Summary 创建基因-变异-表型关联
// @Description 创建关联前先校验引用实体存在性，再对组装的三元组载荷执行关系级校验
// @Tags 策展实体
// @Accept json
// @Produce json
// @Param relationship body models.CurationRelationship true "关联信息"
// @Success 201 {object} APIResponse{data=writeResult} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误或引用实体不存在"
// @Failure 422 {object} APIResponse{data=writeResult} "校验未通过"
// @Router /curation/relationships [post]
func (c *CurationController) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var rel models.CurationRelationship
	if err := render.DecodeJSON(r.Body, &rel); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.curationService.CreateRelationship(&rel)
	if err != nil {
		if errors.Is(err, curation.ErrValidationFailed) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusUnprocessableEntity,
				Msg:    err.Error(),
				Data:   writeResult{ValidationResult: result},
			})
			return
		}
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "创建关联成功",
		Data:   writeResult{Entity: rel, ValidationResult: result},
	})
}

// GetRelationships 获取关联列表
// @Summary 获取关联列表
// @Description 分页获取关联列表，支持按基因ID和策展状态筛选
// @Tags 策展实体
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Param gene_id query string false "基因ID"
// @Param curation_status query string false "策展状态" Enums(draft,reviewed,published)
// @Success 200 {object} PaginatedResponse{data=[]models.CurationRelationship} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/relationships [get]
func (c *CurationController) GetRelationships(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	geneID := r.URL.Query().Get("gene_id")
	curationStatus := r.URL.Query().Get("curation_status")

	relationships, total, err := c.curationService.GetRelationships(page, size, geneID, curationStatus)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取关联列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取关联列表成功",
		Data:   relationships,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetRelationship 获取关联详情
// @Summary 获取关联详情
// @Description 返回关联及其加载的基因、变异、表型和证据项
// @Tags 策展实体
// @Produce json
// @Param id path string true "关联ID"
// @Success 200 {object} APIResponse{data=models.CurationRelationship} "获取成功"
// @Failure 404 {object} APIResponse "关联不存在"
// @Router /curation/relationships/{id} [get]
func (c *CurationController) GetRelationship(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rel, err := c.curationService.GetRelationship(id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "关联不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取关联成功",
		Data:   rel,
	})
}

// AddEvidenceItem 添加证据项
// @Summary 为关联添加证据项
// @Description 证据项必须携带来源，可选引用文献记录
// @Tags 策展实体
// @Accept json
// @Produce json
// @Param id path string true "关联ID"
// @Param item body models.EvidenceItem true "证据项"
// @Success 201 {object} APIResponse{data=models.EvidenceItem} "添加成功"
// @Failure 400 {object} APIResponse "请求参数错误或关联不存在"
// @Router /curation/relationships/{id}/evidence [post]
func (c *CurationController) AddEvidenceItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var item models.EvidenceItem
	if err := render.DecodeJSON(r.Body, &item); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if err := c.curationService.AddEvidenceItem(id, &item); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "添加证据项成功",
		Data:   item,
	})
}

// DeleteRelationship 删除关联
// @Summary 删除关联
// @Description 事务内级联删除关联及其证据项
// @Tags 策展实体
// @Produce json
// @Param id path string true "关联ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /curation/relationships/{id} [delete]
func (c *CurationController) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.curationService.DeleteRelationship(id); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "删除关联失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除关联成功",
	})
}
