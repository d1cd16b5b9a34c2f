package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewAPIClient 创建配置好超时的 Resty 客户端
// 它是全系统统一的外部 API 请求入口 (Google / Shopify)
func NewAPIClient() *resty.Client {
	return resty.New().
		SetTimeout(20 * time.Second). // 拉取商品目录可能比较慢，给 20s
		SetHeader("User-Agent", "ShopifyDrive-Go-App/1.0")
}
