package controller

import (
	"errors"
	"essayeval_backend/internal/service"
	"essayeval_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CommentController struct {
	CommentService *service.CommentService
}

func NewCommentController(commentService *service.CommentService) *CommentController {
	return &CommentController{CommentService: commentService}
}

type AddCommentRequest struct {
	Content         string `json:"content" binding:"required,max=2000"`
	ParentCommentID *uint  `json:"parentCommentId"`
}

// Add godoc
// @Summary 发表评论或回复
// @Description 发表前过毒性检测，疑似内容标记flagged但不拦截发表
// @Tags 评论
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "博客ID"
// @Param   body body AddCommentRequest true "评论内容"
// @Success 201 {object} util.Response{data=model.Comment} "发表成功"
// @Failure 404 {object} util.Response "博客或父评论不存在"
// @Router /api/blogs/{id}/comments [post]
func (c *CommentController) Add(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	blogID, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的博客ID")
		return
	}

	var req AddCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, err := c.CommentService.Add(claims.UserID, blogID, req.Content, req.ParentCommentID)
	if err != nil {
		if errors.Is(err, util.ErrBlogNotFound) || errors.Is(err, util.ErrCommentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, comment)
}

// List godoc
// @Summary 博客评论列表
// @Description 返回顶层评论，每条内嵌最多3条回复
// @Tags 评论
// @Produce  json
// @Param   id path int true "博客ID"
// @Param   sort query string false "排序 latest/oldest/popular，默认latest"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "评论列表"
// @Router /api/blogs/{id}/comments [get]
func (c *CommentController) List(ctx *gin.Context) {
	blogID, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的博客ID")
		return
	}

	page, limit := pagination(ctx)
	sort := ctx.DefaultQuery("sort", "latest")

	comments, total, err := c.CommentService.List(blogID, sort, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: comments, Total: total, Page: page, Limit: limit})
}

// ListReplies godoc
// @Summary 评论的完整回复列表
// @Tags 评论
// @Produce  json
// @Param   id path int true "评论ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "回复列表"
// @Router /api/comments/{id}/replies [get]
func (c *CommentController) ListReplies(ctx *gin.Context) {
	commentID, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的评论ID")
		return
	}

	page, limit := pagination(ctx)
	replies, total, err := c.CommentService.ListReplies(commentID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: replies, Total: total, Page: page, Limit: limit})
}

// ToggleLike godoc
// @Summary 点赞/取消点赞评论
// @Tags 评论
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "评论ID"
// @Success 200 {object} util.Response{data=object} "当前点赞状态与总数"
// @Failure 404 {object} util.Response "评论不存在"
// @Router /api/comments/{id}/like [post]
func (c *CommentController) ToggleLike(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	commentID, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的评论ID")
		return
	}

	liked, count, err := c.CommentService.ToggleLike(commentID, claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, gin.H{"liked": liked, "likesCount": count})
}

type ReportCommentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Report godoc
// @Summary 举报评论
// @Description 重新执行毒性检测，确认有问题的直接移除，否则标记待人工复核
// @Tags 评论
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "评论ID"
// @Param   body body ReportCommentRequest true "举报原因"
// @Success 200 {object} util.Response{data=object} "处理结果"
// @Failure 404 {object} util.Response "评论不存在"
// @Router /api/comments/{id}/report [post]
func (c *CommentController) Report(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	commentID, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的评论ID")
		return
	}

	var req ReportCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	status, err := c.CommentService.Report(commentID, claims.UserID, req.Reason)
	if err != nil {
		if errors.Is(err, util.ErrCommentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"status": status})
}

// Delete godoc
// @Summary 删除自己的评论
// @Tags 评论
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "评论ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 404 {object} util.Response "评论不存在"
// @Router /api/comments/{id} [delete]
func (c *CommentController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	commentID, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的评论ID")
		return
	}

	if err := c.CommentService.Delete(commentID, claims.UserID); err != nil {
		if errors.Is(err, util.ErrCommentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
