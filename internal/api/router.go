package api

import (
	"net/http"
	"sync"
	"time"

	"connectsphere/internal/api/handlers"
	"connectsphere/internal/api/middleware"
	"connectsphere/internal/api/pipeline"
	"connectsphere/internal/config"
	"connectsphere/internal/db/queries"
	"connectsphere/internal/media"
	"connectsphere/internal/models"
	"connectsphere/internal/token"
	"connectsphere/internal/utils"
	"connectsphere/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

// Dependencies - все, что нужно роутеру
type Dependencies struct {
	Config *config.Config
	Log    *zap.Logger
	Store  *queries.Store
	Maker  token.Maker
	Hasher utils.PasswordHasherInterface
	Media  media.Storage
}

var (
	promOnce sync.Once
	prom     *ginprometheus.Prometheus
)

// httpMetrics создает middleware метрик один раз: коллекторы живут
// в глобальном реестре и повторно не регистрируются
func httpMetrics() *ginprometheus.Prometheus {
	promOnce.Do(func() {
		prom = ginprometheus.NewPrometheus("gin")
		prom.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			if path := c.FullPath(); path != "" {
				return path
			}
			return "unmatched"
		}
	})
	return prom
}

// SetupRouter собирает маршруты API
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	router := gin.New()
	router.RedirectTrailingSlash = true
	// Файлы до MEDIA_MAX_BYTES разбираются в памяти
	router.MaxMultipartMemory = cfg.Media.MaxBytes + 1<<20
	router.Use(middleware.RequestID(), middleware.RequestLogger(deps.Log), gin.Recovery())

	httpMetrics().Use(router)

	corsConfig := cors.DefaultConfig()
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	if local, ok := deps.Media.(*media.LocalStorage); ok {
		router.Static("/uploads", local.Dir())
	}

	uploader := handlers.NewUploader(deps.Media, cfg.Media.Folder, deps.Log)
	authHandler := handlers.NewAuthHandler(deps.Store.Users, deps.Maker, deps.Hasher, cfg.JWT.ExpireTime)
	postHandler := handlers.NewPostHandler(deps.Store, uploader)
	commentHandler := handlers.NewCommentHandler(deps.Store)
	userHandler := handlers.NewUserHandler(deps.Store.Users, uploader)
	adminHandler := handlers.NewAdminHandler(deps.Store, postHandler, commentHandler)

	run := pipeline.NewRunner(deps.Log)
	public := func(rules validation.Rules, h pipeline.Handler) gin.HandlerFunc {
		return run.Chain(pipeline.Validate(rules)).Then(h)
	}
	// Заголовок проверяется первым: запрос без токена получает 400, а не ошибку валидации
	protected := func(rules validation.Rules, roles []models.Role, h pipeline.Handler) gin.HandlerFunc {
		return run.Chain(
			middleware.RequireBearer(),
			pipeline.Validate(rules),
			middleware.Authenticate(deps.Maker, deps.Store.Users),
			middleware.Authorize(roles...),
		).Then(h)
	}

	anyone := []models.Role{models.RoleUser, models.RoleAdmin}
	usersOnly := []models.Role{models.RoleUser}
	adminsOnly := []models.Role{models.RoleAdmin}
	maxBytes := cfg.Media.MaxBytes

	auth := router.Group("/auth", middleware.RateLimit(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst))
	{
		auth.POST("/register", public(validation.Register(), authHandler.Register))
		auth.POST("/login", public(validation.Login(), authHandler.Login))
		auth.GET("/profile", protected(nil, anyone, authHandler.Profile))
		auth.GET("/me", protected(nil, anyone, authHandler.Profile))
	}

	posts := router.Group("/posts")
	{
		create := protected(validation.CreatePost(maxBytes), anyone, postHandler.CreatePost)
		posts.POST("", create)
		posts.POST("/createPost", create)
		posts.GET("", public(validation.Pagination(), postHandler.ListPosts))
		posts.GET("/myPosts", protected(validation.Pagination(), anyone, postHandler.MyPosts))
		posts.GET("/:id", public(validation.PostID(), postHandler.GetPost))
		posts.PUT("/:id", protected(validation.UpdatePost(maxBytes), usersOnly, postHandler.UpdatePost))
		posts.DELETE("/:id", protected(validation.PostID(), anyone, postHandler.DeletePost))
		posts.PUT("/:id/like", protected(validation.PostID(), usersOnly, postHandler.ToggleLike))
	}

	router.PUT("/likes/:id", protected(validation.PostID(), anyone, postHandler.ToggleLike))

	comments := router.Group("/comments")
	{
		comments.POST("/:id/comment", protected(validation.AddComment(), usersOnly, commentHandler.AddComment))
		comments.GET("/:id/comments", public(validation.Merge(validation.PostID(), validation.Pagination()), commentHandler.ListComments))
		comments.DELETE("/:id", protected(validation.CommentID(), anyone, commentHandler.DeleteComment))
	}

	users := router.Group("/users")
	{
		users.GET("", protected(validation.Pagination(), adminsOnly, userHandler.ListUsers))
		users.PUT("/update", protected(validation.UpdateProfile(maxBytes), anyone, userHandler.UpdateProfile))
		users.GET("/:id", public(validation.UserID(), userHandler.GetUser))
	}

	admin := router.Group("/admin")
	{
		admin.PUT("/users/block/:id", protected(validation.UserID(), adminsOnly, adminHandler.BlockUser))
		admin.PUT("/users/unblock/:id", protected(validation.UserID(), adminsOnly, adminHandler.UnblockUser))
		admin.DELETE("/posts/:id", protected(validation.PostID(), adminsOnly, adminHandler.DeletePost))
		admin.DELETE("/comments/:id", protected(validation.CommentID(), adminsOnly, adminHandler.DeleteComment))
		admin.GET("/posts", protected(validation.Pagination(), adminsOnly, adminHandler.ListPosts))
		admin.GET("/analytics", protected(nil, adminsOnly, adminHandler.Analytics))
	}

	router.NoRoute(middleware.NoRoute())

	return router
}
