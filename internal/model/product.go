package model

import (
	"time"

	"gorm.io/datatypes"
)

type Product struct {
	BaseModel

	// --- Shopify 核心身份字段 ---
	ShopifyID string `gorm:"uniqueIndex;size:255;not null" json:"shopify_id"` // Shopify 侧唯一 ID (gid 形式或 seed 占位)

	// --- 商品基本信息 ---
	Title       string `gorm:"size:255;not null" json:"title"`
	Handle      string `gorm:"uniqueIndex;size:255;not null" json:"handle"`
	Description string `gorm:"type:text" json:"description"`
	Vendor      string `gorm:"size:255;index" json:"vendor"`
	ProductType string `gorm:"size:255" json:"product_type"`
	State       string `gorm:"column:status;size:20;index;default:ACTIVE" json:"status"` // ACTIVE, DRAFT, ARCHIVED
	Tags        string `gorm:"size:500" json:"tags"`

	// --- 发布状态 ---
	TemplateSuffix string     `gorm:"size:255" json:"template_suffix"`
	Published      bool       `gorm:"default:true" json:"published"`
	PublishedAt    *time.Time `json:"published_at"`

	// --- SEO 元字段 ---
	MetafieldsGlobalTitleTag       string `gorm:"size:255" json:"metafields_global_title_tag"`
	MetafieldsGlobalDescriptionTag string `gorm:"type:text" json:"metafields_global_description_tag"`
	// 原始 metafield 全量快照，便于排查同步问题
	Metafields datatypes.JSON `gorm:"type:jsonb" json:"-"`

	// --- 关联关系 ---
	Variants []Variant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	Images   []Image   `gorm:"foreignKey:ProductID" json:"images,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

type Variant struct {
	BaseModel

	// --- 关联 ---
	ProductID int64    `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// --- Shopify 身份标识 ---
	ShopifyID string `gorm:"uniqueIndex;size:255;not null" json:"shopify_id"`

	// --- 商务属性 ---
	Title          string   `gorm:"size:255" json:"title"`
	SKU            string   `gorm:"column:sku;size:100;index" json:"sku"`
	Barcode        string   `gorm:"size:100" json:"barcode"`
	Price          float64  `gorm:"type:decimal(10,2);default:0" json:"price"`
	CompareAtPrice *float64 `gorm:"type:decimal(10,2)" json:"compare_at_price"`
	Position       int      `gorm:"default:1;index" json:"position"`

	// --- 规格选项 (最多 3 个) ---
	Option1 string `gorm:"size:255" json:"option1"`
	Option2 string `gorm:"size:255" json:"option2"`
	Option3 string `gorm:"size:255" json:"option3"`

	// --- 库存 ---
	InventoryQuantity   int    `gorm:"default:0" json:"inventory_quantity"`
	InventoryManagement string `gorm:"size:50" json:"inventory_management"` // shopify, manual
	InventoryPolicy     string `gorm:"size:50" json:"inventory_policy"`     // deny, continue

	// --- 税费与物流 ---
	Taxable          bool     `gorm:"default:true" json:"taxable"`
	Weight           *float64 `gorm:"type:decimal(8,2)" json:"weight"`
	WeightUnit       string   `gorm:"size:10" json:"weight_unit"` // kg, lb, oz, g
	RequiresShipping bool     `gorm:"default:true" json:"requires_shipping"`
}

func (Variant) TableName() string {
	return "variants"
}

type Image struct {
	BaseModel

	// --- 关联关系 ---
	ProductID int64    `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	// 变体关联可空：同步路径目前不回填，见 DESIGN.md
	VariantID *int64   `gorm:"index" json:"variant_id"`
	Variant   *Variant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// --- Shopify 身份标识 ---
	ShopifyID string `gorm:"uniqueIndex;size:255;not null" json:"shopify_id"`

	// --- 图片属性 ---
	Src      string `gorm:"size:1024;not null" json:"src"`
	Position int    `gorm:"default:1;index" json:"position"`
	Width    *int   `json:"width"`
	Height   *int   `json:"height"`
	Alt      string `gorm:"size:255" json:"alt"`
}

func (Image) TableName() string {
	return "images"
}
