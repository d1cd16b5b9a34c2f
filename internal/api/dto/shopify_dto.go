package dto

// ShopifyProduct 商品浏览视图 (前端选品用的简化结构)
type ShopifyProduct struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Handle      string   `json:"handle"`
	Description string   `json:"description"`
	Vendor      string   `json:"vendor"`
	ProductType string   `json:"productType"`
	Status      string   `json:"status"`
	SKU         *string  `json:"sku"`  // 首个非空 SKU，没有则为 null
	SKUs        []string `json:"skus"` // 全部非空 SKU
	Image       *string  `json:"image"`
}

// UploadImageReq 外链 URL 挂图请求
type UploadImageReq struct {
	ProductID string `json:"product_id" binding:"required"`
	ImageURL  string `json:"image_url" binding:"required"`
	ImageName string `json:"image_name"`
}

// UploadFromDriveReq Google Drive 文件直传请求
type UploadFromDriveReq struct {
	ProductID         string `json:"product_id" binding:"required"`
	GoogleDriveFileID string `json:"google_drive_file_id" binding:"required"`
	FileName          string `json:"file_name"`
	ImagePosition     int    `json:"image_position"`
}

// DeleteProductImagesReq 清空商品图片请求
type DeleteProductImagesReq struct {
	ProductID string `json:"product_id"`
}
