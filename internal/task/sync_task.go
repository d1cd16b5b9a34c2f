// Package task 承载后台定时任务
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"

	"shopify_drive_v1_202508/internal/model"
	"shopify_drive_v1_202508/internal/repository"
	"shopify_drive_v1_202508/internal/service"
	"shopify_drive_v1_202508/pkg/shopify"
)

// TaskError 任务层错误
type TaskError string

func (e TaskError) Error() string { return string(e) }

// ErrSyncInProgress 已有同步在跑，本次触发被拒绝
const ErrSyncInProgress = TaskError("sync already in progress")

// 每天凌晨 2 点全量同步 (秒 分 时 日 月 周)
const syncCronSpec = "0 0 2 * * *"

// 单次同步最长跑 30 分钟
const syncTimeout = 30 * time.Minute

// ProductSyncTask 商品目录同步任务
// 把 Shopify 店铺目录全量镜像到本地库；拉取失败时写入内置种子数据，
// 保证下游接口在店铺未授权/不可达时也有数据可用
type ProductSyncTask struct {
	repo    repository.ProductRepository
	shopSvc *service.ShopifyService
	cron    *cron.Cron
	running int32 // 0=空闲 1=同步中
}

// NewProductSyncTask 创建同步任务
func NewProductSyncTask(repo repository.ProductRepository, shopSvc *service.ShopifyService) *ProductSyncTask {
	return &ProductSyncTask{
		repo:    repo,
		shopSvc: shopSvc,
		cron:    cron.New(cron.WithSeconds()),
	}
}

// Start 注册定时调度并启动
func (t *ProductSyncTask) Start() error {
	_, err := t.cron.AddFunc(syncCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := t.RunOnce(ctx); err != nil {
			log.Printf("[ProductSyncTask] 定时同步失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("注册定时任务失败: %w", err)
	}
	t.cron.Start()
	log.Printf("[ProductSyncTask] 已启动，调度表达式: %s", syncCronSpec)
	return nil
}

// Stop 停止调度 (不打断正在执行的同步)
func (t *ProductSyncTask) Stop() {
	t.cron.Stop()
	log.Println("[ProductSyncTask] 已停止")
}

// SyncNow 手动触发一次后台同步，立即返回
// 已有同步在跑时直接拒绝，不排队
func (t *ProductSyncTask) SyncNow() error {
	if atomic.LoadInt32(&t.running) == 1 {
		return ErrSyncInProgress
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := t.RunOnce(ctx); err != nil {
			log.Printf("[ProductSyncTask] 手动同步失败: %v", err)
		}
	}()
	return nil
}

// RunOnce 执行一次完整同步
func (t *ProductSyncTask) RunOnce(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&t.running, 0, 1) {
		return ErrSyncInProgress
	}
	defer atomic.StoreInt32(&t.running, 0)

	start := time.Now()
	log.Println("[ProductSyncTask] 开始同步商品目录")

	nodes, err := t.shopSvc.FetchCatalog(ctx)
	if err != nil {
		// 没有凭证或远端不可用，降级写种子数据
		log.Printf("[ProductSyncTask] 拉取目录失败 (%v)，写入种子数据", err)
		if seedErr := t.seedCatalog(ctx); seedErr != nil {
			return fmt.Errorf("写入种子数据失败: %w", seedErr)
		}
		log.Printf("[ProductSyncTask] 种子数据写入完成，耗时 %v", time.Since(start))
		return nil
	}

	synced := 0
	for _, node := range nodes {
		if err := t.syncProduct(ctx, node); err != nil {
			log.Printf("[ProductSyncTask] 同步商品 %s 失败: %v", node.ID, err)
			continue
		}
		synced++
	}

	log.Printf("[ProductSyncTask] 同步完成: %d/%d 个商品，耗时 %v", synced, len(nodes), time.Since(start))
	return nil
}

// syncProduct 同步单个商品及其变体/图片 (一个商品一个事务)
func (t *ProductSyncTask) syncProduct(ctx context.Context, node shopify.SyncProductNode) error {
	return t.repo.Transaction(ctx, func(txRepo repository.ProductRepository) error {
		product := toProduct(node)
		if err := txRepo.UpsertProduct(ctx, product); err != nil {
			return fmt.Errorf("upsert product: %w", err)
		}

		// 冲突更新时 Create 不一定回填主键，按 shopify_id 再查一次
		stored, err := txRepo.GetByShopifyID(ctx, node.ID)
		if err != nil {
			return fmt.Errorf("reload product: %w", err)
		}

		for _, edge := range node.Variants.Edges {
			variant := toVariant(edge.Node, stored.ID)
			if err := txRepo.UpsertVariant(ctx, variant); err != nil {
				return fmt.Errorf("upsert variant %s: %w", edge.Node.ID, err)
			}
		}
		for _, edge := range node.Images.Edges {
			image := toImage(edge.Node, stored.ID)
			if err := txRepo.UpsertImage(ctx, image); err != nil {
				return fmt.Errorf("upsert image %s: %w", edge.Node.ID, err)
			}
		}
		return nil
	})
}

// ==================== DTO -> Model ====================

func toProduct(node shopify.SyncProductNode) *model.Product {
	metafields := make(map[string]string, len(node.Metafields.Edges))
	for _, edge := range node.Metafields.Edges {
		metafields[edge.Node.Key] = edge.Node.Value
	}
	snapshot, _ := json.Marshal(metafields)

	product := &model.Product{
		ShopifyID:                      node.ID,
		Title:                          node.Title,
		Handle:                         node.Handle,
		Description:                    node.Description,
		Vendor:                         node.Vendor,
		ProductType:                    node.ProductType,
		State:                          node.Status,
		Tags:                           strings.Join(node.Tags, ", "),
		TemplateSuffix:                 strVal(node.TemplateSuffix),
		Published:                      node.Published,
		MetafieldsGlobalTitleTag:       metafields["title_tag"],
		MetafieldsGlobalDescriptionTag: metafields["description_tag"],
		Metafields:                     datatypes.JSON(snapshot),
	}
	if node.PublishedAt != nil {
		if ts, err := time.Parse(time.RFC3339, *node.PublishedAt); err == nil {
			product.PublishedAt = &ts
		}
	}
	return product
}

func toVariant(node shopify.SyncVariantNode, productID int64) *model.Variant {
	price, _ := strconv.ParseFloat(node.Price, 64)
	variant := &model.Variant{
		ProductID:           productID,
		ShopifyID:           node.ID,
		Title:               node.Title,
		SKU:                 node.SKU,
		Barcode:             strVal(node.Barcode),
		Price:               price,
		Position:            node.Position,
		Option1:             strVal(node.Option1),
		Option2:             strVal(node.Option2),
		Option3:             strVal(node.Option3),
		InventoryQuantity:   node.InventoryQuantity,
		InventoryManagement: strVal(node.InventoryManagement),
		InventoryPolicy:     strVal(node.InventoryPolicy),
		Taxable:             node.Taxable,
		Weight:              node.Weight,
		WeightUnit:          strVal(node.WeightUnit),
		RequiresShipping:    node.RequiresShipping,
	}
	if variant.Position <= 0 {
		variant.Position = 1
	}
	if node.CompareAtPrice != nil {
		if compareAt, err := strconv.ParseFloat(*node.CompareAtPrice, 64); err == nil {
			variant.CompareAtPrice = &compareAt
		}
	}
	return variant
}

func toImage(node shopify.SyncImageNode, productID int64) *model.Image {
	image := &model.Image{
		ProductID: productID,
		// 变体关联暂不回填
		VariantID: nil,
		ShopifyID: node.ID,
		Src:       node.Src,
		Position:  node.Position,
		Width:     node.Width,
		Height:    node.Height,
		Alt:       strVal(node.AltText),
	}
	if image.Position <= 0 {
		image.Position = 1
	}
	return image
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ==================== 种子数据 ====================

// seedProduct 种子商品定义
type seedProduct struct {
	title       string
	handle      string
	description string
	vendor      string
	productType string
	tags        string
	price       float64
	image       string
}

var seedProducts = []seedProduct{
	{
		title:       "Premium Cotton T-Shirt",
		handle:      "premium-cotton-tshirt",
		description: "Comfortable and durable t-shirt made from high-quality cotton",
		vendor:      "Fashion Store",
		productType: "T-Shirt",
		tags:        "cotton, comfortable, premium",
		price:       89.99,
		image:       "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=400&h=400&fit=crop",
	},
	{
		title:       "Vintage Denim Jacket",
		handle:      "vintage-denim-jacket",
		description: "Classic vintage style denim jacket, compatible with every combination",
		vendor:      "Retro Fashion",
		productType: "Jacket",
		tags:        "vintage, denim, classic",
		price:       299.99,
		image:       "https://images.unsplash.com/photo-1544022613-e87ca75a784a?w=400&h=400&fit=crop",
	},
	{
		title:       "Leather Crossbody Bag",
		handle:      "leather-crossbody-bag",
		description: "Stylish crossbody bag made from genuine leather material",
		vendor:      "Luxury Bags",
		productType: "Bag",
		tags:        "leather, stylish, crossbody",
		price:       199.99,
		image:       "https://images.unsplash.com/photo-1548036328-c9fa89d128fa?w=400&h=400&fit=crop",
	},
	{
		title:       "Wireless Bluetooth Headphones",
		handle:      "wireless-bluetooth-headphones",
		description: "Wireless headphones with high sound quality and long battery life",
		vendor:      "Tech Gadgets",
		productType: "Electronics",
		tags:        "bluetooth, wireless, sound",
		price:       399.99,
		image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400&h=400&fit=crop",
	},
	{
		title:       "Organic Coffee Beans",
		handle:      "organic-coffee-beans",
		description: "Premium coffee beans collected from organic farms",
		vendor:      "Coffee Masters",
		productType: "Coffee",
		tags:        "organic, coffee, premium",
		price:       79.99,
		image:       "https://images.unsplash.com/photo-1559056199-641a0ac8b55e?w=400&h=400&fit=crop",
	},
	{
		title:       "Smart Fitness Watch",
		handle:      "smart-fitness-watch",
		description: "Smart watch with health tracking and fitness features",
		vendor:      "Health Tech",
		productType: "Watch",
		tags:        "fitness, smart, health",
		price:       599.99,
		image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400&h=400&fit=crop",
	},
	{
		title:       "Handmade Ceramic Mug",
		handle:      "handmade-ceramic-mug",
		description: "Handmade ceramic mug, unique design",
		vendor:      "Artisan Crafts",
		productType: "Home Goods",
		tags:        "handmade, ceramic, unique",
		price:       45.99,
		image:       "https://images.unsplash.com/photo-1514228742587-6b1558fcca3d?w=400&h=400&fit=crop",
	},
	{
		title:       "Natural Face Cream",
		handle:      "natural-face-cream",
		description: "Moisturizing face cream made with natural ingredients",
		vendor:      "Natural Beauty",
		productType: "Cosmetics",
		tags:        "natural, moisturizing, cosmetics",
		price:       129.99,
		image:       "https://images.unsplash.com/photo-1556228720-195a672e8a03?w=400&h=400&fit=crop",
	},
}

// seedCatalog 写入内置种子商品，shopify_id 用 test-product-N 占位，可重复执行
func (t *ProductSyncTask) seedCatalog(ctx context.Context) error {
	width, height := 400, 400
	for i, seed := range seedProducts {
		n := i + 1
		err := t.repo.Transaction(ctx, func(txRepo repository.ProductRepository) error {
			product := &model.Product{
				ShopifyID:   fmt.Sprintf("test-product-%d", n),
				Title:       seed.title,
				Handle:      seed.handle,
				Description: seed.description,
				Vendor:      seed.vendor,
				ProductType: seed.productType,
				State:       "ACTIVE",
				Tags:        seed.tags,
				Published:   true,
			}
			if err := txRepo.UpsertProduct(ctx, product); err != nil {
				return err
			}
			stored, err := txRepo.GetByShopifyID(ctx, product.ShopifyID)
			if err != nil {
				return err
			}

			variant := &model.Variant{
				ProductID:           stored.ID,
				ShopifyID:           fmt.Sprintf("test-variant-%d", n),
				Title:               "Default Title",
				SKU:                 fmt.Sprintf("SKU-%03d", n),
				Price:               seed.price,
				Position:            1,
				InventoryQuantity:   5 + rand.Intn(46),
				InventoryManagement: "shopify",
				InventoryPolicy:     "deny",
				Taxable:             true,
				RequiresShipping:    true,
			}
			if err := txRepo.UpsertVariant(ctx, variant); err != nil {
				return err
			}

			image := &model.Image{
				ProductID: stored.ID,
				ShopifyID: fmt.Sprintf("test-image-%d", n),
				Src:       seed.image,
				Position:  1,
				Width:     &width,
				Height:    &height,
				Alt:       seed.title,
			}
			return txRepo.UpsertImage(ctx, image)
		})
		if err != nil {
			return fmt.Errorf("种子商品 %d: %w", n, err)
		}
	}
	return nil
}
