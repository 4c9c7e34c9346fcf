package app

import (
	"essayeval_backend/internal/config"
	"essayeval_backend/internal/middleware"
	"essayeval_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		a.registerEvaluationRoutes(authGroup, c)
		a.registerBlogRoutes(authGroup, c)
		a.registerFeedbackRoutes(authGroup, c)
		a.registerUserRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		// 公共内容：已发布博客及其评论对游客可见
		public.GET("/blogs", c.blog.Feed)
		public.GET("/blogs/:id/comments", c.comment.List)
		public.GET("/comments/:id/replies", c.comment.ListReplies)
		public.GET("/user/leaderboard", c.user.Leaderboard)
	}
}

func (a *App) registerEvaluationRoutes(rg *gin.RouterGroup, c *controllers) {
	evaluation := rg.Group("/evaluation")
	{
		evaluation.POST("/upload", c.evaluation.Upload)
		evaluation.POST("/text", c.evaluation.EvaluateText)
		evaluation.POST("/analyze", c.evaluation.Analyze)
		evaluation.GET("/history", c.evaluation.ListAssignments)
		evaluation.GET("/:id", c.evaluation.GetAssignment)
		evaluation.DELETE("/:id", c.evaluation.DeleteAssignment)
	}

	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("", c.dashboard.GetDashboard)
		dashboard.GET("/score-distribution", c.dashboard.ScoreDistribution)
		dashboard.GET("/progress", c.dashboard.Progress)
		dashboard.GET("/recommendations", c.dashboard.Recommendations)
	}
}

func (a *App) registerBlogRoutes(rg *gin.RouterGroup, c *controllers) {
	blogs := rg.Group("/blogs")
	{
		blogs.POST("", c.blog.Save)
		blogs.POST("/generate", c.blog.Generate)
		blogs.GET("/mine", c.blog.ListMine)
		blogs.GET("/bookmarks", c.blog.ListBookmarked)
		blogs.GET("/:id", c.blog.Get)
		blogs.PUT("/:id", c.blog.Update)
		blogs.DELETE("/:id", c.blog.Delete)
		blogs.POST("/:id/review", c.blog.Review)
		blogs.POST("/:id/like", c.blog.ToggleLike)
		blogs.POST("/:id/bookmark", c.blog.ToggleBookmark)
		blogs.POST("/:id/comments", c.comment.Add)
	}

	comments := rg.Group("/comments")
	{
		comments.POST("/:id/like", c.comment.ToggleLike)
		comments.POST("/:id/report", c.comment.Report)
		comments.DELETE("/:id", c.comment.Delete)
	}
}

func (a *App) registerFeedbackRoutes(rg *gin.RouterGroup, c *controllers) {
	feedback := rg.Group("/feedback")
	{
		feedback.POST("/chat", c.feedback.Chat)
		feedback.POST("/chat/stream", c.feedback.ChatStream)
		feedback.POST("/quick", c.feedback.QuickFeedback)
		feedback.GET("/sessions", c.feedback.ListSessions)
		feedback.GET("/sessions/:sessionId", c.feedback.History)
		feedback.GET("/sessions/:sessionId/export", c.feedback.Export)
		feedback.DELETE("/sessions/:sessionId", c.feedback.DeleteSession)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	user := rg.Group("/user")
	{
		user.GET("/profile", c.user.GetProfile)
		user.PUT("/profile", c.user.UpdateProfile)
		user.GET("/stats", c.user.GetStats)
	}
}
