package router

import (
	"log/slog"

	"Local_Market/internal/handler"
	"Local_Market/internal/middleware"
	"Local_Market/internal/pkg"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Logger      *slog.Logger
	Sessions    middleware.SessionChecker
	Communities middleware.CommunityLoader
	UploadDir   string
	MaxUpload   int64

	Community *handler.CommunityHandler
	Product   *handler.ProductHandler
	Vendor    *handler.VendorHandler
	Order     *handler.OrderHandler
	Payment   *handler.PaymentHandler
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))
	r.MaxMultipartMemory = 8 << 20

	organizer := middleware.Gate(d.Sessions, pkg.RoleOrganizer)
	vendor := middleware.Gate(d.Sessions, pkg.RoleVendor)
	admin := middleware.Gate(d.Sessions, pkg.RoleAdmin)
	loadCommunity := middleware.LoadCommunity(d.Communities)

	images := middleware.Upload(middleware.UploadOptions{Dir: d.UploadDir, Field: "images", MaxFiles: 2, MaxBytes: d.MaxUpload})
	nutrition := middleware.Upload(middleware.UploadOptions{Dir: d.UploadDir, Field: "nutrition", MaxFiles: 1, MaxBytes: d.MaxUpload})

	r.Static("/uploads", d.UploadDir)

	// 社区相关接口
	communityGroup := r.Group("/communities")
	{
		communityGroup.GET("", d.Community.Lookup)
		communityGroup.GET("/event", organizer, loadCommunity, d.Community.ListEvents)
		communityGroup.GET("/event/:id", organizer, loadCommunity, d.Community.GetEvent)
		communityGroup.GET("/:id", d.Community.Get)

		communityGroup.POST("/login", d.Community.Login)
		communityGroup.POST("/logout", organizer, d.Community.Logout)
		communityGroup.POST("/register", d.Community.Register)
		communityGroup.POST("", admin, d.Community.Create)

		communityGroup.PUT("/profile", organizer, images, d.Community.UpdateProfile)
		communityGroup.PUT("/event", organizer, loadCommunity, d.Community.AppendEvent)
		communityGroup.PUT("/event/:id", organizer, loadCommunity, d.Community.MergeEvent)
		communityGroup.PUT("/announcement", organizer, d.Community.SetAnnouncement)
		communityGroup.PUT("/:id", admin, d.Community.AdminUpdate)

		communityGroup.DELETE("/:id", admin, d.Community.Delete)
	}

	// 商品相关接口
	productGroup := r.Group("/products")
	{
		productGroup.GET("/public", d.Product.Public)
		productGroup.GET("/vendor", vendor, d.Product.VendorList)
		productGroup.GET("/vendor/:id", vendor, d.Product.VendorProduct)
		productGroup.GET("/customer/:id", d.Product.CustomerDetail)
		productGroup.GET("/:id/:category", vendor, d.Product.GetCategory)

		productGroup.POST("", vendor, nutrition, d.Product.Create)
		productGroup.POST("/:id/:category", vendor, d.Product.PostCategory)

		productGroup.PUT("/:id", vendor, nutrition, d.Product.Update)
		productGroup.PUT("/:id/:category", vendor, d.Product.PutCategory)

		productGroup.DELETE("/:id", vendor, d.Product.Delete)
	}

	// 商家相关接口
	vendorGroup := r.Group("/vendors")
	{
		vendorGroup.POST("/register", d.Vendor.Register)
		vendorGroup.POST("/login", d.Vendor.Login)
		vendorGroup.POST("/logout", vendor, d.Vendor.Logout)
		vendorGroup.GET("/me", vendor, d.Vendor.Me)
		vendorGroup.POST("/connect", vendor, d.Vendor.Connect)
	}

	orderGroup := r.Group("/orders", vendor)
	{
		orderGroup.GET("/vendor", d.Order.ListByVendor)
		orderGroup.PUT("/:id/status", d.Order.UpdateStatus)
	}

	// 支付 webhook，不走鉴权，靠签名校验
	r.POST("/payments/connect", d.Payment.Webhook)

	return r
}
