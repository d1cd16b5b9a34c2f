package task

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopify_drive_v1_202508/internal/credential"
	"shopify_drive_v1_202508/internal/model"
	"shopify_drive_v1_202508/internal/repository"
	"shopify_drive_v1_202508/internal/service"
)

func setupSyncTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Product{}, &model.Variant{}, &model.Image{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// 没有店铺凭证时，同步应降级写入 8 个种子商品
func TestProductSyncTask_SeedFallback(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := repository.NewProductRepository(db)
	shopSvc := service.NewShopifyService(&service.ShopifyConfig{}, credential.NewStore())
	syncTask := NewProductSyncTask(repo, shopSvc)

	if err := syncTask.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	var count int64
	db.Model(&model.Product{}).Count(&count)
	if count != 8 {
		t.Fatalf("种子商品数量 = %d, want 8", count)
	}

	first, err := repo.GetByShopifyID(context.Background(), "test-product-1")
	if err != nil {
		t.Fatalf("GetByShopifyID() error = %v", err)
	}
	if first.Title != "Premium Cotton T-Shirt" {
		t.Errorf("Title = %s, want Premium Cotton T-Shirt", first.Title)
	}
	if len(first.Variants) != 1 || first.Variants[0].SKU != "SKU-001" {
		t.Errorf("变体异常: %+v", first.Variants)
	}
	if len(first.Images) != 1 || first.Images[0].Width == nil || *first.Images[0].Width != 400 {
		t.Errorf("图片异常: %+v", first.Images)
	}

	// 重复执行应保持幂等
	if err := syncTask.RunOnce(context.Background()); err != nil {
		t.Fatalf("第二次 RunOnce() error = %v", err)
	}
	db.Model(&model.Product{}).Count(&count)
	if count != 8 {
		t.Errorf("重复同步后商品数量 = %d, want 8", count)
	}
	db.Model(&model.Variant{}).Count(&count)
	if count != 8 {
		t.Errorf("重复同步后变体数量 = %d, want 8", count)
	}
}

// 已有同步在跑时再次触发应被拒绝
func TestProductSyncTask_OverlapSuppressed(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := repository.NewProductRepository(db)
	shopSvc := service.NewShopifyService(&service.ShopifyConfig{}, credential.NewStore())
	syncTask := NewProductSyncTask(repo, shopSvc)

	atomic.StoreInt32(&syncTask.running, 1)
	defer atomic.StoreInt32(&syncTask.running, 0)

	if err := syncTask.RunOnce(context.Background()); err != ErrSyncInProgress {
		t.Errorf("RunOnce() error = %v, want ErrSyncInProgress", err)
	}
	if err := syncTask.SyncNow(); err != ErrSyncInProgress {
		t.Errorf("SyncNow() error = %v, want ErrSyncInProgress", err)
	}
}

// 店铺可达时，目录应被全量镜像到本地
func TestProductSyncTask_MirrorsCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2023-10/graphql.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"products": {
					"edges": [
						{
							"node": {
								"id": "gid://shopify/Product/900",
								"title": "Real Product",
								"handle": "real-product",
								"description": "from shop",
								"vendor": "Shop Vendor",
								"productType": "Gadget",
								"status": "ACTIVE",
								"tags": ["a", "b"],
								"published": true,
								"publishedAt": "2025-08-01T10:00:00Z",
								"metafields": {"edges": [
									{"node": {"key": "title_tag", "value": "SEO Title"}}
								]},
								"variants": {"edges": [
									{"node": {
										"id": "gid://shopify/ProductVariant/901",
										"title": "Default Title",
										"sku": "REAL-001",
										"price": "49.99",
										"position": 1,
										"inventoryQuantity": 3,
										"taxable": true,
										"requiresShipping": true
									}}
								]},
								"images": {"edges": [
									{"node": {
										"id": "gid://shopify/ProductImage/902",
										"src": "https://cdn.example.com/real.jpg",
										"position": 1,
										"width": 800,
										"height": 600,
										"altText": "Real Product"
									}}
								]}
							}
						}
					]
				}
			}
		}`))
	}))
	defer server.Close()

	db := setupSyncTestDB(t)
	repo := repository.NewProductRepository(db)
	creds := credential.NewStore()
	creds.SetShopify("s1", &credential.ShopifyToken{Shop: "demo.myshopify.com", AccessToken: "token"})
	shopSvc := service.NewShopifyService(&service.ShopifyConfig{BaseURL: server.URL}, creds)
	syncTask := NewProductSyncTask(repo, shopSvc)

	if err := syncTask.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	product, err := repo.GetByShopifyID(context.Background(), "gid://shopify/Product/900")
	if err != nil {
		t.Fatalf("GetByShopifyID() error = %v", err)
	}
	if product.Title != "Real Product" {
		t.Errorf("Title = %s, want Real Product", product.Title)
	}
	if product.Tags != "a, b" {
		t.Errorf("Tags = %q, want \"a, b\"", product.Tags)
	}
	if product.MetafieldsGlobalTitleTag != "SEO Title" {
		t.Errorf("MetafieldsGlobalTitleTag = %q, want SEO Title", product.MetafieldsGlobalTitleTag)
	}
	if product.PublishedAt == nil {
		t.Error("PublishedAt 不应为空")
	}
	if len(product.Variants) != 1 || product.Variants[0].Price != 49.99 {
		t.Errorf("变体异常: %+v", product.Variants)
	}
	if len(product.Images) != 1 || product.Images[0].Src != "https://cdn.example.com/real.jpg" {
		t.Errorf("图片异常: %+v", product.Images)
	}

	// 种子数据不应混进来
	var count int64
	db.Model(&model.Product{}).Count(&count)
	if count != 1 {
		t.Errorf("商品数量 = %d, want 1", count)
	}
}
