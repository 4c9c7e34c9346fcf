package controller

import (
	"errors"
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/service"
	"essayeval_backend/internal/util"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// 上传文件大小上限
const maxUploadBytes = 10 << 20 // 10MB

var allowedUploadExts = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

type EvaluationController struct {
	EvaluationService *service.EvaluationService
}

func NewEvaluationController(evaluationService *service.EvaluationService) *EvaluationController {
	return &EvaluationController{EvaluationService: evaluationService}
}

// Upload godoc
// @Summary 上传作业文件并评测
// @Description 支持pdf/txt/md，提取文本后执行规则分析与AI评测并结算积分
// @Tags 评测
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "作业文件"
// @Success 200 {object} util.Response{data=service.EvaluationResult} "评测结果"
// @Failure 400 {object} util.Response "文件缺失或类型不支持"
// @Failure 422 {object} util.Response "文本过短无法评测"
// @Router /api/evaluation/upload [post]
func (c *EvaluationController) Upload(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, util.ErrEmptyUpload.Error())
		return
	}
	if fileHeader.Size > maxUploadBytes {
		util.BadRequest(ctx, "文件超过10MB限制")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedUploadExts[ext] {
		util.BadRequest(ctx, "仅支持pdf/txt/md文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	result, err := c.EvaluationService.EvaluateUpload(ctx.Request.Context(), claims.UserID, fileHeader.Filename, content)
	if err != nil {
		c.respondEvaluationError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type TextEvaluationRequest struct {
	Title string `json:"title"`
	Text  string `json:"text" binding:"required"`
}

// EvaluateText godoc
// @Summary 评测纯文本
// @Tags 评测
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body TextEvaluationRequest true "待评测文本"
// @Success 200 {object} util.Response{data=service.EvaluationResult} "评测结果"
// @Failure 422 {object} util.Response "文本过短无法评测"
// @Router /api/evaluation/text [post]
func (c *EvaluationController) EvaluateText(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req TextEvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.EvaluationService.EvaluateText(claims.UserID, req.Title, req.Text)
	if err != nil {
		c.respondEvaluationError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// Analyze godoc
// @Summary 只跑规则分析
// @Description 不调AI、不落库、不计分，用于前端实时提示
// @Tags 评测
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body AnalyzeRequest true "待分析文本"
// @Success 200 {object} util.Response{data=analysis.ContentAnalysisResult} "分析结果"
// @Router /api/evaluation/analyze [post]
func (c *EvaluationController) Analyze(ctx *gin.Context) {
	var req AnalyzeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, c.EvaluationService.AnalyzeOnly(req.Text))
}

// GetAssignment godoc
// @Summary 查看单次评测详情
// @Tags 评测
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "评测ID"
// @Success 200 {object} util.Response{data=model.Assignment} "评测详情"
// @Failure 404 {object} util.Response "评测不存在"
// @Router /api/evaluation/{id} [get]
func (c *EvaluationController) GetAssignment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的评测ID")
		return
	}

	assignment, err := c.EvaluationService.GetAssignment(claims.UserID, uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, assignment)
}

// ListAssignments godoc
// @Summary 评测历史列表
// @Tags 评测
// @Produce  json
// @Security BearerAuth
// @Param   status query string false "按状态过滤 pending/processing/completed/failed"
// @Param   page query int false "页码，默认1"
// @Param   limit query int false "每页条数，默认10"
// @Success 200 {object} util.Response{data=util.PageResponse} "评测列表"
// @Router /api/evaluation/history [get]
func (c *EvaluationController) ListAssignments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	status := model.AssignmentStatus(ctx.Query("status"))

	assignments, total, err := c.EvaluationService.ListAssignments(claims.UserID, status, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: assignments, Total: total, Page: page, Limit: limit})
}

// DeleteAssignment godoc
// @Summary 删除评测记录
// @Tags 评测
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "评测ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 404 {object} util.Response "评测不存在"
// @Router /api/evaluation/{id} [delete]
func (c *EvaluationController) DeleteAssignment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的评测ID")
		return
	}

	if err := c.EvaluationService.DeleteAssignment(ctx.Request.Context(), claims.UserID, uint(id)); err != nil {
		if errors.Is(err, util.ErrAssignmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

func (c *EvaluationController) respondEvaluationError(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrTextTooShort) {
		util.Error(ctx, 422, "文本过短，至少需要50个字符")
		return
	}
	util.LogInternalError(ctx, err)
}

// pagination 解析分页参数，越界回退默认值
func pagination(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
