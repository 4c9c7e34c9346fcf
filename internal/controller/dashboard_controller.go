package controller

import (
	"errors"
	"essayeval_backend/internal/service"
	"essayeval_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// GetDashboard godoc
// @Summary 个人主页概览
// @Tags 面板
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Dashboard} "概览数据"
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.GetDashboard(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// ScoreDistribution godoc
// @Summary 分数分布
// @Tags 面板
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]repository.ScoreBucket} "分数分布"
// @Router /api/dashboard/score-distribution [get]
func (c *DashboardController) ScoreDistribution(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	buckets, err := c.DashboardService.ScoreDistribution(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, buckets)
}

// Progress godoc
// @Summary 成绩走势
// @Tags 面板
// @Produce  json
// @Security BearerAuth
// @Param   days query int false "统计天数，默认30"
// @Success 200 {object} util.Response{data=[]repository.DailyProgress} "每日平均分"
// @Router /api/dashboard/progress [get]
func (c *DashboardController) Progress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "30"))
	progress, err := c.DashboardService.Progress(claims.UserID, days)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// Recommendations godoc
// @Summary AI学习建议
// @Description 基于最近10次已完成评测生成个性化学习建议
// @Tags 面板
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.LearningRecommendations} "学习建议"
// @Failure 404 {object} util.Response "暂无评测记录"
// @Router /api/dashboard/recommendations [get]
func (c *DashboardController) Recommendations(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	recs, err := c.DashboardService.Recommendations(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrAssignmentNotFound) {
			util.Error(ctx, 404, "暂无评测记录，先完成一次评测")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, recs)
}
