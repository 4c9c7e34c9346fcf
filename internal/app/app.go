package app

import (
	"context"
	"essayeval_backend/internal/analysis"
	"essayeval_backend/internal/config"
	"essayeval_backend/internal/controller"
	"essayeval_backend/internal/repository"
	"essayeval_backend/internal/service"
	"essayeval_backend/pkg/configwatcher"
	"essayeval_backend/pkg/database"
	"essayeval_backend/pkg/logger"
	"essayeval_backend/pkg/monitoring"
	"essayeval_backend/pkg/security"
	"essayeval_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	assignment *repository.AssignmentRepository
	blog       *repository.BlogRepository
	comment    *repository.CommentRepository
	chat       *repository.ChatRepository
}

type services struct {
	ai           *service.AIService
	storage      *service.StorageService
	gamification *service.GamificationService
	evaluation   *service.EvaluationService
	blog         *service.BlogService
	comment      *service.CommentService
	chat         *service.ChatService
	auth         *service.AuthService
	user         *service.UserService
	dashboard    *service.DashboardService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	evaluation *controller.EvaluationController
	blog       *controller.BlogController
	comment    *controller.CommentController
	feedback   *controller.FeedbackController
	dashboard  *controller.DashboardController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		assignment: repository.NewAssignmentRepository(db),
		blog:       repository.NewBlogRepository(db),
		comment:    repository.NewCommentRepository(db),
		chat:       repository.NewChatRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	analyzer := analysis.New()

	s.ai = service.NewAIService(cfg.AI)
	s.storage = service.NewStorageService(cfg)
	s.gamification = service.NewGamificationService(repos.user, db)
	s.evaluation = service.NewEvaluationService(repos.assignment, analyzer, s.ai, s.storage, s.gamification)
	s.blog = service.NewBlogService(repos.blog, repos.user, s.ai, analyzer, s.gamification, rdb)
	s.comment = service.NewCommentService(repos.comment, repos.blog, repos.user, s.ai)
	s.chat = service.NewChatService(repos.chat, s.ai, rdb)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.assignment, repos.blog)
	s.dashboard = service.NewDashboardService(repos.user, repos.assignment, repos.blog, s.ai)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.user),
		evaluation: controller.NewEvaluationController(s.evaluation),
		blog:       controller.NewBlogController(s.blog),
		comment:    controller.NewCommentController(s.comment),
		feedback:   controller.NewFeedbackController(s.chat),
		dashboard:  controller.NewDashboardController(s.dashboard),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("essay-eval", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 配置热更新：回调里拿到的是重新加载后的完整配置
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		reloaded, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		logger.Log.Info("Config reloaded")
		for _, callback := range app.configCallbacks {
			callback(reloaded)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
