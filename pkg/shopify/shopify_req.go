// Package shopify 定义 Shopify Admin API 的请求/响应 DTO 与查询语句。
package shopify

import "strings"

// APIVersion Admin API 版本
const (
	GraphQLAPIVersion = "2023-10"
	RESTAPIVersion    = "2024-10"
)

// GraphQLRequest GraphQL 请求体
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// ProductsBrowseQuery 商品浏览查询 (前 50 条，变体取前 10、图片取首张)
const ProductsBrowseQuery = `query {
	products(first: 50) {
		edges {
			node {
				id
				title
				handle
				description
				vendor
				productType
				status
				variants(first: 10) {
					edges {
						node {
							id
							sku
							title
							price
						}
					}
				}
				images(first: 1) {
					edges {
						node {
							url
						}
					}
				}
			}
		}
	}
}`

// ProductsSyncQuery 目录镜像同步查询 (前 250 条，全量变体/图片/元字段)
const ProductsSyncQuery = `query {
	products(first: 250) {
		edges {
			node {
				id
				title
				handle
				description
				vendor
				productType
				status
				tags
				templateSuffix
				published
				publishedAt
				metafields(first: 10) {
					edges {
						node {
							key
							value
						}
					}
				}
				variants(first: 250) {
					edges {
						node {
							id
							title
							sku
							barcode
							price
							compareAtPrice
							position
							option1
							option2
							option3
							inventoryQuantity
							inventoryManagement
							inventoryPolicy
							taxable
							weight
							weightUnit
							requiresShipping
						}
					}
				}
				images(first: 250) {
					edges {
						node {
							id
							src
							position
							width
							height
							altText
						}
					}
				}
			}
		}
	}
}`

// ProductImageCreateMutation 通过外链 URL 挂载商品图片
const ProductImageCreateMutation = `mutation productImageCreate($input: ProductImageInput!) {
	productImageCreate(input: $input) {
		image {
			id
			url
			altText
		}
		userErrors {
			field
			message
		}
	}
}`

// NumericProductID 从全局 ID 中提取数字部分
// gid://shopify/Product/9299271385319 -> 9299271385319
func NumericProductID(gid string) string {
	return strings.TrimPrefix(gid, "gid://shopify/Product/")
}
