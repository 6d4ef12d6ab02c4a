package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mall-console/internal/app"
	"github.com/suPer8Hu/mall-console/internal/common"
	"github.com/suPer8Hu/mall-console/internal/httpapi/handlers"
	"github.com/suPer8Hu/mall-console/internal/httpapi/middleware"
	"github.com/suPer8Hu/mall-console/internal/session"
)

func NewRouter(a *app.App) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.Cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := handlers.NewHandler(a)

	r.GET("/ping", h.Ping)

	// auth
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/navigate", h.Navigate)

	authGroup := r.Group("/")
	authGroup.Use(middleware.SessionRequired(a.Session))
	authGroup.GET("/me", h.Me)
	authGroup.PUT("/me", h.UpdateProfile)
	authGroup.GET("/routes", h.Routes)

	// chat
	authGroup.GET("/chat/sessions", h.ListChatSessions)
	authGroup.GET("/chat/sessions/:id/messages", h.ListChatMessages)
	authGroup.POST("/chat/sessions/:id/select", h.SelectChatSession)
	authGroup.POST("/chat/messages", h.SendChatMessage)
	authGroup.POST("/chat/open", h.OpenChat)
	authGroup.POST("/chat/close", h.CloseChat)
	authGroup.PUT("/chat/view", h.SetChatView)

	// reference data
	authGroup.GET("/categories", h.Categories)
	authGroup.GET("/categories/:id/path", h.CategoryPath)
	authGroup.GET("/units", h.Units)

	authGroup.GET("/dashboard", h.Dashboard)
	authGroup.GET("/dashboard/trend", h.RevenueTrend)
	authGroup.GET("/orders", h.ListOrders)
	authGroup.GET("/orders/:no", h.OrderDetail)
	authGroup.PUT("/orders/:no/ship", h.ShipOrder)
	authGroup.PUT("/orders/:no/cancel", h.CancelOrder)

	// goods
	authGroup.GET("/goods", h.ListGoods)
	authGroup.GET("/goods/draft", h.GetDraft)
	authGroup.PUT("/goods/draft", h.UpdateDraft)
	authGroup.DELETE("/goods/draft", h.DeleteDraft)
	authGroup.POST("/goods/draft/init", h.InitDraft)
	authGroup.POST("/goods/draft/load/:id", h.LoadDraft)
	authGroup.POST("/goods/draft/submit", h.SubmitDraft)

	merchantOnly := middleware.RoleRequired(a.Session, session.RoleMerchant)
	authGroup.POST("/goods/draft/republish/:auditId", merchantOnly, h.RepublishDraft)
	authGroup.GET("/goods/:id/specs", merchantOnly, h.GoodsSpecs)
	authGroup.PUT("/goods/:id/status", merchantOnly, h.GoodsStatus)
	authGroup.DELETE("/goods/:id", merchantOnly, h.DeleteGoods)

	// audit
	authGroup.GET("/audit", h.ListAudits)
	authGroup.POST("/audit/:id/withdraw", merchantOnly, h.WithdrawAudit)

	// store and reviews
	authGroup.GET("/store", merchantOnly, h.MyStore)
	authGroup.GET("/store/info", merchantOnly, h.MerchantInfo)
	authGroup.PATCH("/store", merchantOnly, h.UpdateStore)
	authGroup.GET("/comments", merchantOnly, h.ListComments)
	authGroup.GET("/comments/:no", merchantOnly, h.CommentDetail)
	authGroup.POST("/comments/reply", merchantOnly, h.ReplyComment)

	authGroup.POST("/upload/image", h.UploadImage)

	admin := authGroup.Group("/admin")
	admin.Use(middleware.RoleRequired(a.Session, session.RoleAdmin))
	admin.POST("/audit/:id/decision", h.DecideAudit)

	admin.GET("/banners", h.ListBanners)
	admin.POST("/banners", h.AddBanner)
	admin.PUT("/banners/:id", h.UpdateBanner)
	admin.PUT("/banners/:id/recommend", h.RecommendBanner)
	admin.POST("/banners/batch-delete", h.DeleteBanners)

	admin.GET("/categories", h.AdminCategories)
	admin.POST("/categories", h.AddCategory)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)

	admin.GET("/units", h.AdminUnits)
	admin.POST("/units", h.AddUnit)
	admin.POST("/units/batch-delete", h.DeleteUnits)
	admin.GET("/units/:id", h.AdminUnit)
	admin.PUT("/units/:id", h.UpdateUnit)
	admin.PATCH("/units/:id/status", h.UpdateUnitStatus)
	admin.DELETE("/units/:id", h.DeleteUnit)

	admin.GET("/goods", h.AdminListGoods)
	admin.GET("/goods/:id", h.AdminGetGoods)
	admin.PUT("/goods/:id", h.AdminUpdateGoods)
	admin.PUT("/goods/:id/status", h.AdminGoodsStatus)
	admin.PUT("/goods/:id/audit", h.AdminAuditGoods)
	admin.DELETE("/goods/:id", h.AdminDeleteGoods)
	return r
}
