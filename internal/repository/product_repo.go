package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopify_drive_v1_202508/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 本地商品镜像仓储接口
// 写路径只有同步任务：一律按 shopify_id Upsert，除级联外不做删除
type ProductRepository interface {
	// Upsert (按 shopify_id 冲突判定，其余字段整体覆盖)
	UpsertProduct(ctx context.Context, product *model.Product) error
	UpsertVariant(ctx context.Context, variant *model.Variant) error
	UpsertImage(ctx context.Context, image *model.Image) error

	// 查询
	GetByShopifyID(ctx context.Context, shopifyID string) (*model.Product, error)
	ListWithChildren(ctx context.Context) ([]model.Product, error)

	// 统计
	Stats(ctx context.Context) (*CatalogStats, error)

	// 事务
	WithTx(tx *gorm.DB) ProductRepository
	Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error
}

// CatalogStats 镜像表统计信息
type CatalogStats struct {
	LastSync      *time.Time `json:"last_sync"`
	TotalProducts int64      `json:"total_products"`
	TotalVariants int64      `json:"total_variants"`
	TotalImages   int64      `json:"total_images"`
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品镜像仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) UpsertProduct(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shopify_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "handle", "description", "vendor", "product_type",
			"status", "tags", "template_suffix", "published", "published_at",
			"metafields_global_title_tag", "metafields_global_description_tag",
			"metafields", "updated_at",
		}),
	}).Create(product).Error
}

func (r *productRepo) UpsertVariant(ctx context.Context, variant *model.Variant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shopify_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_id", "title", "sku", "barcode", "price", "compare_at_price",
			"position", "option1", "option2", "option3",
			"inventory_quantity", "inventory_management", "inventory_policy",
			"taxable", "weight", "weight_unit", "requires_shipping", "updated_at",
		}),
	}).Create(variant).Error
}

func (r *productRepo) UpsertImage(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shopify_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_id", "variant_id", "src", "position",
			"width", "height", "alt", "updated_at",
		}),
	}).Create(image).Error
}

func (r *productRepo) GetByShopifyID(ctx context.Context, shopifyID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Preload("Images").
		Where("shopify_id = ?", shopifyID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) ListWithChildren(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("variants.position ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("images.position ASC")
		}).
		Order("updated_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Stats(ctx context.Context) (*CatalogStats, error) {
	stats := &CatalogStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Variant{}).Count(&stats.TotalVariants).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Image{}).Count(&stats.TotalImages).Error; err != nil {
		return nil, err
	}

	// 最后同步时间 = 商品表里最新的 updated_at
	var last model.Product
	err := db.Model(&model.Product{}).Order("updated_at DESC").First(&last).Error
	if err == nil {
		t := last.UpdatedAt
		stats.LastSync = &t
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return stats, nil
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}

func (r *productRepo) Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
