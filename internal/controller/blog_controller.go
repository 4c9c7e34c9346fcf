package controller

import (
	"errors"
	"essayeval_backend/internal/model"
	"essayeval_backend/internal/repository"
	"essayeval_backend/internal/service"
	"essayeval_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type BlogController struct {
	BlogService *service.BlogService
}

func NewBlogController(blogService *service.BlogService) *BlogController {
	return &BlogController{BlogService: blogService}
}

// Generate godoc
// @Summary AI生成博客草稿
// @Tags 博客
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.BlogGenerationRequest true "生成参数"
// @Success 201 {object} util.Response{data=model.Blog} "生成的草稿"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/blogs/generate [post]
func (c *BlogController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.BlogGenerationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	blog, err := c.BlogService.GenerateDraft(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, blog)
}

// Save godoc
// @Summary 保存新博客
// @Description status为published时同时返回本次获得的积分
// @Tags 博客
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SaveRequest true "博客内容"
// @Success 201 {object} util.Response{data=object} "保存成功"
// @Router /api/blogs [post]
func (c *BlogController) Save(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SaveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	blog, award, err := c.BlogService.Save(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"blog": blog, "gamification": award})
}

// Update godoc
// @Summary 更新博客
// @Description 草稿转发布时结算积分，重复保存已发布的博客不重复加分
// @Tags 博客
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "博客ID"
// @Param   body body service.UpdateRequest true "更新内容"
// @Success 200 {object} util.Response{data=object} "更新成功"
// @Failure 404 {object} util.Response "博客不存在"
// @Router /api/blogs/{id} [put]
func (c *BlogController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的博客ID")
		return
	}

	var req service.UpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	blog, award, err := c.BlogService.Update(claims.UserID, id, req)
	if err != nil {
		if errors.Is(err, util.ErrBlogNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"blog": blog, "gamification": award})
}

// Review godoc
// @Summary 发布前AI审阅
// @Description AI反馈与规则分析一并返回，审阅结果同时存档到博客
// @Tags 博客
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "博客ID"
// @Success 200 {object} util.Response{data=service.ReviewResult} "审阅结果"
// @Failure 404 {object} util.Response "博客不存在"
// @Router /api/blogs/{id}/review [post]
func (c *BlogController) Review(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的博客ID")
		return
	}

	result, err := c.BlogService.Review(claims.UserID, id)
	if err != nil {
		if errors.Is(err, util.ErrBlogNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// Feed godoc
// @Summary 公共博客流
// @Tags 博客
// @Produce  json
// @Param   tag query string false "按标签过滤"
// @Param   category query string false "按分类过滤"
// @Param   author query int false "按作者ID过滤"
// @Param   sort query string false "排序 latest/popular/trending，默认latest"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "博客列表"
// @Router /api/blogs [get]
func (c *BlogController) Feed(ctx *gin.Context) {
	page, limit := pagination(ctx)
	authorID, _ := strconv.ParseUint(ctx.Query("author"), 10, 64)

	q := repository.FeedQuery{
		Tag:      ctx.Query("tag"),
		Category: ctx.Query("category"),
		AuthorID: uint(authorID),
		Sort:     ctx.DefaultQuery("sort", "latest"),
		Page:     page,
		Limit:    limit,
	}

	blogs, total, err := c.BlogService.Feed(ctx.Request.Context(), q)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: blogs, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary 查看单篇博客
// @Description 非作者访问时只能看到已发布的博客并计一次浏览
// @Tags 博客
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "博客ID"
// @Success 200 {object} util.Response{data=model.Blog} "博客详情"
// @Failure 404 {object} util.Response "博客不存在"
// @Router /api/blogs/{id} [get]
func (c *BlogController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的博客ID")
		return
	}

	blog, err := c.BlogService.Get(id, claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, blog)
}

// ListMine godoc
// @Summary 我的博客列表
// @Tags 博客
// @Produce  json
// @Security BearerAuth
// @Param   status query string false "按状态过滤 draft/published/archived"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "博客列表"
// @Router /api/blogs/mine [get]
func (c *BlogController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	status := model.BlogStatus(ctx.Query("status"))

	blogs, total, err := c.BlogService.ListMine(claims.UserID, status, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: blogs, Total: total, Page: page, Limit: limit})
}

// ListBookmarked godoc
// @Summary 我收藏的博客列表
// @Tags 博客
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "收藏列表"
// @Router /api/blogs/bookmarks [get]
func (c *BlogController) ListBookmarked(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)

	blogs, total, err := c.BlogService.ListBookmarked(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: blogs, Total: total, Page: page, Limit: limit})
}

// Delete godoc
// @Summary 删除自己的博客
// @Tags 博客
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "博客ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 404 {object} util.Response "博客不存在"
// @Router /api/blogs/{id} [delete]
func (c *BlogController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的博客ID")
		return
	}

	if err := c.BlogService.Delete(claims.UserID, id); err != nil {
		if errors.Is(err, util.ErrBlogNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// ToggleLike godoc
// @Summary 点赞/取消点赞博客
// @Tags 博客
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "博客ID"
// @Success 200 {object} util.Response{data=object} "当前点赞状态与总数"
// @Failure 404 {object} util.Response "博客不存在或未发布"
// @Router /api/blogs/{id}/like [post]
func (c *BlogController) ToggleLike(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的博客ID")
		return
	}

	liked, count, err := c.BlogService.ToggleLike(id, claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, gin.H{"liked": liked, "likesCount": count})
}

// ToggleBookmark godoc
// @Summary 收藏/取消收藏博客
// @Tags 博客
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "博客ID"
// @Success 200 {object} util.Response{data=object} "当前收藏状态与总数"
// @Failure 404 {object} util.Response "博客不存在或未发布"
// @Router /api/blogs/{id}/bookmark [post]
func (c *BlogController) ToggleBookmark(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := parseID(ctx)
	if err != nil {
		util.BadRequest(ctx, "无效的博客ID")
		return
	}

	bookmarked, count, err := c.BlogService.ToggleBookmark(id, claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, gin.H{"bookmarked": bookmarked, "bookmarksCount": count})
}

func parseID(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	return uint(id), err
}
