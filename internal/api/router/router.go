package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"relief-hub/backend/config"
	"relief-hub/backend/internal/api/handler"
	"relief-hub/backend/internal/api/middleware"
	"relief-hub/backend/internal/model"
	"relief-hub/backend/pkg/session"
)

// Deps 路由所需的会话与限流组件
// Limiter 为 nil 时不限流（Redis 不可用）
type Deps struct {
	Codec   *session.Codec
	Auth    middleware.Authenticator
	Limiter middleware.RateLimiter
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	publicLimit := middleware.RateLimit(deps.Limiter, cfg.Intake.RateLimit, cfg.Intake.RateLimitWindow, logger)
	uploadLimit := middleware.BodyLimit(int64(cfg.Storage.MaxUploadMB) << 20)

	// ── API v1 ──
	// 所有路由先解析会话；是否必须登录由各分组决定
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Session(deps.Codec, deps.Auth))

	// 上传类接口单独放宽请求体上限
	v1.POST("/uploads/proof", uploadLimit, publicLimit, h.Upload.UploadProof)
	v1.POST("/users/import", uploadLimit, middleware.RequireLogin(), middleware.RoleAuth(model.RoleAdmin), h.User.ImportUsers)

	api := v1.Group("")
	api.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	{
		// 认证模块
		api.POST("/login", publicLimit, h.Auth.Login)
		api.POST("/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)

		// 站点模块
		centers := api.Group("/centers")
		{
			centers.GET("", h.Center.ListCenters)
			centers.GET("/:id", h.Center.GetCenter)

			manage := centers.Group("/manage", middleware.RequireLogin(), middleware.RoleAuth(model.RoleAdmin))
			manage.POST("", h.Center.CreateCenter)
			manage.PUT("/:id", h.Center.UpdateCenter)
			manage.DELETE("/:id", h.Center.DeleteCenter)
		}

		// 物资目录模块
		items := api.Group("/items")
		{
			items.GET("", h.Item.ListItems)
			items.GET("/:id", h.Item.GetItem)
			items.POST("/create", middleware.RequireLogin(), h.Item.CreateItem)
			items.PUT("/:id", middleware.RequireLogin(), h.Item.UpdateItem)
			items.DELETE("/:id", middleware.RequireLogin(), h.Item.DeleteItem)
		}

		// 流水模块：匿名可提交待审批申报，其余需登录
		txs := api.Group("/transactions")
		{
			txs.POST("", publicLimit, h.Transaction.CreateTransaction)
			txs.POST("/bulk", publicLimit, h.Transaction.BulkCreate)
			txs.GET("", middleware.RequireLogin(), h.Transaction.ListTransactions)
			txs.GET("/:id", middleware.RequireLogin(), h.Transaction.GetTransaction)
			txs.PUT("/:id", middleware.RequireLogin(), h.Transaction.ReviewTransaction)
		}

		// 用户模块（管理员）
		users := api.Group("/users", middleware.RequireLogin(), middleware.RoleAuth(model.RoleAdmin))
		{
			users.GET("", h.User.ListUsers)
			users.POST("", h.User.CreateUser)
			users.PUT("/:id", h.User.UpdateUser)
			users.DELETE("/:id", h.User.DeleteUser)
			users.POST("/:id/reset-password", h.User.ResetPassword)
		}
	}

	return r
}
