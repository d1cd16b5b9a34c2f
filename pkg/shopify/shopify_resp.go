package shopify

// GraphQLError GraphQL 顶层错误
type GraphQLError struct {
	Message string `json:"message"`
}

// UserError 业务校验错误 (mutation 专用)
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// ==================== 商品浏览 ====================

// ProductsBrowseResp ProductsBrowseQuery 的响应
type ProductsBrowseResp struct {
	Data struct {
		Products struct {
			Edges []struct {
				Node BrowseProductNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// BrowseProductNode 浏览视图的商品节点
type BrowseProductNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	Vendor      string `json:"vendor"`
	ProductType string `json:"productType"`
	Status      string `json:"status"`
	Variants    struct {
		Edges []struct {
			Node struct {
				ID    string `json:"id"`
				SKU   string `json:"sku"`
				Title string `json:"title"`
				Price string `json:"price"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Images struct {
		Edges []struct {
			Node struct {
				URL string `json:"url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
}

// ==================== 目录同步 ====================

// ProductsSyncResp ProductsSyncQuery 的响应
type ProductsSyncResp struct {
	Data struct {
		Products struct {
			Edges []struct {
				Node SyncProductNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// SyncProductNode 同步视图的商品节点
type SyncProductNode struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Handle         string   `json:"handle"`
	Description    string   `json:"description"`
	Vendor         string   `json:"vendor"`
	ProductType    string   `json:"productType"`
	Status         string   `json:"status"`
	Tags           []string `json:"tags"`
	TemplateSuffix *string  `json:"templateSuffix"`
	Published      bool     `json:"published"`
	PublishedAt    *string  `json:"publishedAt"`
	Metafields     struct {
		Edges []struct {
			Node struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"metafields"`
	Variants struct {
		Edges []struct {
			Node SyncVariantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Images struct {
		Edges []struct {
			Node SyncImageNode `json:"node"`
		} `json:"edges"`
	} `json:"images"`
}

// SyncVariantNode 变体节点
type SyncVariantNode struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	SKU                 string   `json:"sku"`
	Barcode             *string  `json:"barcode"`
	Price               string   `json:"price"`
	CompareAtPrice      *string  `json:"compareAtPrice"`
	Position            int      `json:"position"`
	Option1             *string  `json:"option1"`
	Option2             *string  `json:"option2"`
	Option3             *string  `json:"option3"`
	InventoryQuantity   int      `json:"inventoryQuantity"`
	InventoryManagement *string  `json:"inventoryManagement"`
	InventoryPolicy     *string  `json:"inventoryPolicy"`
	Taxable             bool     `json:"taxable"`
	Weight              *float64 `json:"weight"`
	WeightUnit          *string  `json:"weightUnit"`
	RequiresShipping    bool     `json:"requiresShipping"`
}

// SyncImageNode 图片节点
type SyncImageNode struct {
	ID       string  `json:"id"`
	Src      string  `json:"src"`
	Position int     `json:"position"`
	Width    *int    `json:"width"`
	Height   *int    `json:"height"`
	AltText  *string `json:"altText"`
}

// ==================== 图片挂载 mutation ====================

// ImageCreateResp ProductImageCreateMutation 的响应
type ImageCreateResp struct {
	Data struct {
		ProductImageCreate struct {
			Image      *CreatedImage `json:"image"`
			UserErrors []UserError   `json:"userErrors"`
		} `json:"productImageCreate"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// CreatedImage mutation 创建出的图片
type CreatedImage struct {
	ID      string  `json:"id"`
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
}

// ==================== REST 图片接口 ====================

// RESTImage REST products/{id}/images.json 返回的图片记录
type RESTImage struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Position  int     `json:"position"`
	Src       string  `json:"src"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Alt       *string `json:"alt"`
}

// RESTImageList 图片列表响应
type RESTImageList struct {
	Images []RESTImage `json:"images"`
}

// RESTImageEnvelope 单图响应
type RESTImageEnvelope struct {
	Image RESTImage `json:"image"`
}

// RESTImageUpload base64 上传请求体
type RESTImageUpload struct {
	Image RESTImageAttachment `json:"image"`
}

// RESTImageAttachment 上传的图片数据
type RESTImageAttachment struct {
	Attachment string `json:"attachment"` // base64 编码的文件内容
	Filename   string `json:"filename"`
	Position   int    `json:"position"`
}
