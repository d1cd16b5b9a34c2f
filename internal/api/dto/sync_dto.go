package dto

// LocalProduct 本地目录镜像的商品视图 (/api/sync/products)
type LocalProduct struct {
	ID          string         `json:"id"` // shopify 全局 ID
	Title       string         `json:"title"`
	Handle      string         `json:"handle"`
	Status      string         `json:"status"`
	Vendor      string         `json:"vendor"`
	ProductType string         `json:"productType"`
	Description string         `json:"description"`
	Tags        string         `json:"tags"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	Images      []LocalImage   `json:"images"`
	Variants    []LocalVariant `json:"variants"`
}

// LocalImage 镜像图片视图
type LocalImage struct {
	ID  string  `json:"id"`
	Src string  `json:"src"`
	Alt *string `json:"alt"`
}

// LocalVariant 镜像变体视图
type LocalVariant struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	SKU               string  `json:"sku"`
	Price             float64 `json:"price"`
	InventoryQuantity int     `json:"inventory_quantity"`
}
