package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopify_drive_v1_202508/internal/controller"
	"shopify_drive_v1_202508/internal/credential"
	"shopify_drive_v1_202508/internal/model"
	"shopify_drive_v1_202508/internal/repository"
	"shopify_drive_v1_202508/internal/router"
	"shopify_drive_v1_202508/internal/service"
	"shopify_drive_v1_202508/internal/task"
	"shopify_drive_v1_202508/pkg/database"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Credentials *credential.Store
	ProductRepo repository.ProductRepository
	Services    *Services
	SyncTask    *task.ProductSyncTask
	Controllers *router.Controllers
}

// Services 服务集合
type Services struct {
	Google  *service.GoogleService
	Shopify *service.ShopifyService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=shopify_drive port=5432 sslmode=disable TimeZone=UTC")
	return database.InitDB(dsn,
		&model.Product{}, &model.Variant{}, &model.Image{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	productRepo := repository.NewProductRepository(db)

	// -------- 凭证仓库 --------
	creds := credential.NewStore()

	// -------- 业务服务 --------
	appURL := getEnv("APP_URL", "http://localhost:8080")
	googleSvc := service.NewGoogleService(&service.GoogleConfig{
		ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", appURL+"/auth/google/callback"),
		AppURL:       appURL,
	}, creds)
	shopifySvc := service.NewShopifyService(&service.ShopifyConfig{
		Shop:         getEnv("SHOPIFY_SHOP", ""),
		ClientID:     getEnv("SHOPIFY_CLIENT_ID", ""),
		ClientSecret: getEnv("SHOPIFY_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("SHOPIFY_REDIRECT_URL", appURL+"/auth/shopify/callback"),
		AppURL:       appURL,
		AccessToken:  getEnv("SHOPIFY_ACCESS_TOKEN", ""),
	}, creds)

	// -------- 定时任务 --------
	syncTask := task.NewProductSyncTask(productRepo, shopifySvc)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Google:  controller.NewGoogleController(googleSvc),
		Shopify: controller.NewShopifyController(shopifySvc, googleSvc),
		Sync:    controller.NewSyncController(productRepo, syncTask),
	}

	return &Dependencies{
		DB:          db,
		Credentials: creds,
		ProductRepo: productRepo,
		Services:    &Services{Google: googleSvc, Shopify: shopifySvc},
		SyncTask:    syncTask,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	if err := deps.SyncTask.Start(); err != nil {
		log.Fatalf("同步任务启动失败: %v", err)
	}
	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
