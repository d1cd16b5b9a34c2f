package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"shopify_drive_v1_202508/internal/controller"
	"shopify_drive_v1_202508/internal/middleware"
)

// Controllers 控制器集合
type Controllers struct {
	Google  *controller.GoogleController
	Shopify *controller.ShopifyController
	Sync    *controller.SyncController
}

// SetupRouter 创建引擎并注册所有路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.Session())

	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	// doc.json 需要先执行 `swag init -g cmd/main.go` 生成 docs 包，生成产物不入库
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. OAuth 回调 (第三方重定向地址，不在 /api 下)
	r.GET("/auth/google/callback", ctls.Google.Callback)
	r.GET("/auth/shopify/callback", ctls.Shopify.Callback)

	// 3. API 路由组
	api := r.Group("/api")
	{
		// google 组
		google := api.Group("/google")
		{
			// GET /api/google/auth-url
			google.GET("/auth-url", ctls.Google.GetAuthURL)
			// 兼容旧的回调地址
			google.GET("/callback", ctls.Google.Callback)
			google.GET("/files", ctls.Google.ListFiles)
			google.GET("/folders", ctls.Google.ListFolders)
			google.GET("/files/:fileId/download", ctls.Google.DownloadFile)
			google.GET("/thumbnail/:fileId", ctls.Google.Thumbnail)
			google.GET("/access-token", ctls.Google.GetAccessToken)
		}
		// shopify 组
		shopify := api.Group("/shopify")
		{
			shopify.GET("/auth-url", ctls.Shopify.GetAuthURL)
			shopify.GET("/products", ctls.Shopify.GetProducts)
			shopify.POST("/upload-image", ctls.Shopify.UploadImage)
			shopify.POST("/upload-from-google-drive", ctls.Shopify.UploadFromDrive)
			shopify.POST("/delete-product-images", ctls.Shopify.DeleteProductImages)
		}
		// sync 组 (本地目录镜像)
		sync := api.Group("/sync")
		{
			// POST 触发同步，GET 查镜像列表
			sync.POST("/products", ctls.Sync.SyncProducts)
			sync.GET("/products", ctls.Sync.GetProducts)
			sync.GET("/status", ctls.Sync.SyncStatus)
		}
	}

	return r
}
