package repository

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopify_drive_v1_202508/internal/model"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(&model.Product{}, &model.Variant{}, &model.Image{})
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

func TestProductRepo_UpsertProduct_Idempotent(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p1 := &model.Product{
		ShopifyID: "gid://shopify/Product/100",
		Title:     "First Title",
		Handle:    "first-title",
		State:     "ACTIVE",
	}
	if err := repo.UpsertProduct(ctx, p1); err != nil {
		t.Fatalf("UpsertProduct() error = %v", err)
	}

	// 同 shopify_id 再写一次，应该更新而不是新增
	p2 := &model.Product{
		ShopifyID: "gid://shopify/Product/100",
		Title:     "Updated Title",
		Handle:    "first-title",
		State:     "DRAFT",
	}
	if err := repo.UpsertProduct(ctx, p2); err != nil {
		t.Fatalf("第二次 UpsertProduct() error = %v", err)
	}

	var count int64
	db.Model(&model.Product{}).Count(&count)
	if count != 1 {
		t.Fatalf("商品数量 = %d, want 1", count)
	}

	stored, err := repo.GetByShopifyID(ctx, "gid://shopify/Product/100")
	if err != nil {
		t.Fatalf("GetByShopifyID() error = %v", err)
	}
	if stored.Title != "Updated Title" {
		t.Errorf("Title = %s, want Updated Title", stored.Title)
	}
	if stored.State != "DRAFT" {
		t.Errorf("State = %s, want DRAFT", stored.State)
	}
}

func TestProductRepo_UpsertVariantAndImage(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	product := &model.Product{
		ShopifyID: "gid://shopify/Product/200",
		Title:     "With Children",
		Handle:    "with-children",
		State:     "ACTIVE",
	}
	if err := repo.UpsertProduct(ctx, product); err != nil {
		t.Fatalf("UpsertProduct() error = %v", err)
	}
	stored, err := repo.GetByShopifyID(ctx, product.ShopifyID)
	if err != nil {
		t.Fatalf("GetByShopifyID() error = %v", err)
	}

	variant := &model.Variant{
		ProductID: stored.ID,
		ShopifyID: "gid://shopify/ProductVariant/201",
		Title:     "Default Title",
		SKU:       "SKU-201",
		Price:     19.99,
		Position:  1,
	}
	if err := repo.UpsertVariant(ctx, variant); err != nil {
		t.Fatalf("UpsertVariant() error = %v", err)
	}

	// 价格变化后重复写入
	variant2 := &model.Variant{
		ProductID: stored.ID,
		ShopifyID: "gid://shopify/ProductVariant/201",
		Title:     "Default Title",
		SKU:       "SKU-201",
		Price:     29.99,
		Position:  1,
	}
	if err := repo.UpsertVariant(ctx, variant2); err != nil {
		t.Fatalf("第二次 UpsertVariant() error = %v", err)
	}

	image := &model.Image{
		ProductID: stored.ID,
		ShopifyID: "gid://shopify/ProductImage/202",
		Src:       "https://example.com/a.jpg",
		Position:  1,
	}
	if err := repo.UpsertImage(ctx, image); err != nil {
		t.Fatalf("UpsertImage() error = %v", err)
	}

	full, err := repo.GetByShopifyID(ctx, product.ShopifyID)
	if err != nil {
		t.Fatalf("GetByShopifyID() error = %v", err)
	}
	if len(full.Variants) != 1 {
		t.Fatalf("变体数量 = %d, want 1", len(full.Variants))
	}
	if full.Variants[0].Price != 29.99 {
		t.Errorf("Price = %v, want 29.99", full.Variants[0].Price)
	}
	if len(full.Images) != 1 {
		t.Fatalf("图片数量 = %d, want 1", len(full.Images))
	}
	// 图片的变体关联同步阶段不回填
	if full.Images[0].VariantID != nil {
		t.Errorf("VariantID = %v, want nil", *full.Images[0].VariantID)
	}
}

func TestProductRepo_ListWithChildren(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	for i, shopifyID := range []string{"gid://shopify/Product/301", "gid://shopify/Product/302"} {
		p := &model.Product{
			ShopifyID: shopifyID,
			Title:     "Product",
			Handle:    "product-" + shopifyID[len(shopifyID)-3:],
			State:     "ACTIVE",
		}
		if err := repo.UpsertProduct(ctx, p); err != nil {
			t.Fatalf("UpsertProduct(%d) error = %v", i, err)
		}
	}

	stored, _ := repo.GetByShopifyID(ctx, "gid://shopify/Product/301")
	// 乱序写入，读取时应按 position 排序
	for _, pos := range []int{2, 1} {
		img := &model.Image{
			ProductID: stored.ID,
			ShopifyID: "gid://shopify/ProductImage/30" + string(rune('0'+pos)),
			Src:       "https://example.com/img.jpg",
			Position:  pos,
		}
		if err := repo.UpsertImage(ctx, img); err != nil {
			t.Fatalf("UpsertImage(pos=%d) error = %v", pos, err)
		}
	}

	products, err := repo.ListWithChildren(ctx)
	if err != nil {
		t.Fatalf("ListWithChildren() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("商品数量 = %d, want 2", len(products))
	}
	for _, p := range products {
		if p.ShopifyID != "gid://shopify/Product/301" {
			continue
		}
		if len(p.Images) != 2 {
			t.Fatalf("图片数量 = %d, want 2", len(p.Images))
		}
		if p.Images[0].Position != 1 || p.Images[1].Position != 2 {
			t.Errorf("图片未按 position 排序: %d, %d", p.Images[0].Position, p.Images[1].Position)
		}
	}
}

func TestProductRepo_Stats(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	// 空库
	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalProducts != 0 || stats.LastSync != nil {
		t.Errorf("空库统计异常: products=%d lastSync=%v", stats.TotalProducts, stats.LastSync)
	}

	p := &model.Product{
		ShopifyID: "gid://shopify/Product/400",
		Title:     "Stats Product",
		Handle:    "stats-product",
		State:     "ACTIVE",
	}
	if err := repo.UpsertProduct(ctx, p); err != nil {
		t.Fatalf("UpsertProduct() error = %v", err)
	}
	stored, _ := repo.GetByShopifyID(ctx, p.ShopifyID)
	repo.UpsertVariant(ctx, &model.Variant{
		ProductID: stored.ID, ShopifyID: "v-400", SKU: "SKU-400",
	})
	repo.UpsertImage(ctx, &model.Image{
		ProductID: stored.ID, ShopifyID: "i-400", Src: "https://example.com/i.jpg",
	})

	stats, err = repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalProducts != 1 || stats.TotalVariants != 1 || stats.TotalImages != 1 {
		t.Errorf("统计数量异常: %d/%d/%d", stats.TotalProducts, stats.TotalVariants, stats.TotalImages)
	}
	if stats.LastSync == nil {
		t.Error("LastSync 不应为空")
	}
}

func TestProductRepo_Transaction_Rollback(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	err := repo.Transaction(ctx, func(txRepo ProductRepository) error {
		if err := txRepo.UpsertProduct(ctx, &model.Product{
			ShopifyID: "gid://shopify/Product/500",
			Title:     "Rollback",
			Handle:    "rollback",
			State:     "ACTIVE",
		}); err != nil {
			return err
		}
		return context.Canceled // 人为失败，整个事务应回滚
	})
	if err == nil {
		t.Fatal("事务应返回错误")
	}

	var count int64
	db.Model(&model.Product{}).Count(&count)
	if count != 0 {
		t.Errorf("回滚后商品数量 = %d, want 0", count)
	}
}
