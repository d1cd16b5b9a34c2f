package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"

	"shopify_drive_v1_202508/internal/api/dto"
	"shopify_drive_v1_202508/internal/credential"
	"shopify_drive_v1_202508/pkg/shopify"
	"shopify_drive_v1_202508/pkg/utils"
)

// ShopifyConfig Shopify 服务配置
type ShopifyConfig struct {
	Shop         string // 店铺域名，如 erenimo-test.myshopify.com
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AppURL       string

	// 环境变量兜底 token：本地调试 / 后台任务没有走过 OAuth 时用
	AccessToken string

	// 仅测试用，留空拼 https://{shop}
	BaseURL string
}

// ShopifyService 封装 Shopify OAuth 授权与 Admin API 访问
type ShopifyService struct {
	cfg    *ShopifyConfig
	creds  *credential.Store
	client *resty.Client
}

// NewShopifyService 创建 Shopify 服务
func NewShopifyService(cfg *ShopifyConfig, creds *credential.Store) *ShopifyService {
	return &ShopifyService{
		cfg:    cfg,
		creds:  creds,
		client: utils.NewAPIClient(),
	}
}

// adminBase 店铺 Admin API 根地址
func (s *ShopifyService) adminBase(shop string) string {
	if s.cfg.BaseURL != "" {
		return s.cfg.BaseURL
	}
	return "https://" + shop
}

// session 取会话的店铺凭证，没有则尝试环境变量兜底
func (s *ShopifyService) session(sessionID string) (*credential.ShopifyToken, error) {
	if token, ok := s.creds.Shopify(sessionID); ok {
		return token, nil
	}
	if s.cfg.Shop != "" && s.cfg.AccessToken != "" {
		token := &credential.ShopifyToken{Shop: s.cfg.Shop, AccessToken: s.cfg.AccessToken}
		s.creds.SetShopify(sessionID, token)
		log.Printf("[ShopifyService] 会话 %s 使用环境变量凭证", sessionID)
		return token, nil
	}
	return nil, ErrUnauthenticated
}

// ==================== OAuth 授权 ====================

// AuthURL 生成店铺授权跳转地址
func (s *ShopifyService) AuthURL(sessionID string) (string, error) {
	if s.cfg.Shop == "" {
		return "", fmt.Errorf("%w: shop domain not configured", ErrInvalidInput)
	}
	state, err := utils.GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("生成 state 失败: %w", err)
	}
	utils.SetCache(state, sessionID)

	params := url.Values{}
	params.Set("client_id", s.cfg.ClientID)
	params.Set("scope", "read_products,write_products")
	params.Set("redirect_uri", s.cfg.RedirectURL)
	params.Set("state", state)

	return fmt.Sprintf("%s/admin/oauth/authorize?%s", s.adminBase(s.cfg.Shop), params.Encode()), nil
}

// shopifyTokenResp access_token 端点响应
type shopifyTokenResp struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// HandleCallback 处理授权回调：校验 state、换取离线 token 并写入凭证
// 返回授权完成后的前端跳转地址
func (s *ShopifyService) HandleCallback(ctx context.Context, sessionID, code, state, shop string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: missing authorization code", ErrInvalidInput)
	}
	cached, ok := utils.TakeCache(state)
	if !ok {
		return "", fmt.Errorf("%w: invalid or expired state", ErrInvalidInput)
	}
	sessionID = cached

	if shop == "" {
		shop = s.cfg.Shop
	}

	var result shopifyTokenResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"client_id":     s.cfg.ClientID,
			"client_secret": s.cfg.ClientSecret,
			"code":          code,
		}).
		SetResult(&result).
		Post(s.adminBase(shop) + "/admin/oauth/access_token")
	if err != nil {
		return "", fmt.Errorf("code 换 token 失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || result.AccessToken == "" {
		log.Printf("[ShopifyService] 换 token 返回 %d: %s", resp.StatusCode(), resp.String())
		return "", fmt.Errorf("%w: token exchange status %d", ErrUpstream, resp.StatusCode())
	}

	s.creds.SetShopify(sessionID, &credential.ShopifyToken{
		Shop:        shop,
		AccessToken: result.AccessToken,
	})
	log.Printf("[ShopifyService] 店铺 %s 授权成功 (会话 %s)", shop, sessionID)

	return s.cfg.AppURL + "/google-drive", nil
}

// ==================== Admin API ====================

// graphQL 执行 GraphQL 请求，result 必须是对应的响应结构指针
func (s *ShopifyService) graphQL(ctx context.Context, token *credential.ShopifyToken, query string, variables map[string]interface{}, result interface{}) error {
	endpoint := fmt.Sprintf("%s/admin/api/%s/graphql.json", s.adminBase(token.Shop), shopify.GraphQLAPIVersion)
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token.AccessToken).
		SetBody(shopify.GraphQLRequest{Query: query, Variables: variables}).
		SetResult(result).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("GraphQL 请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("[ShopifyService] GraphQL 返回 %d: %s", resp.StatusCode(), resp.String())
		return fmt.Errorf("%w: graphql status %d", ErrUpstream, resp.StatusCode())
	}
	return nil
}

// QueryProducts 拉取店铺商品的浏览视图
// 任何失败 (无凭证 / 网络 / 远端错误) 都回退内置示例商品，接口永远给前端一份可渲染的数据
func (s *ShopifyService) QueryProducts(ctx context.Context, sessionID string) []dto.ShopifyProduct {
	token, err := s.session(sessionID)
	if err != nil {
		log.Printf("[ShopifyService] 会话 %s 无店铺凭证，返回示例商品", sessionID)
		return FixtureProducts()
	}

	var result shopify.ProductsBrowseResp
	if err := s.graphQL(ctx, token, shopify.ProductsBrowseQuery, nil, &result); err != nil {
		log.Printf("[ShopifyService] 拉取商品失败，返回示例商品: %v", err)
		return FixtureProducts()
	}
	if len(result.Errors) > 0 {
		log.Printf("[ShopifyService] 商品查询返回 GraphQL 错误，返回示例商品: %s", result.Errors[0].Message)
		return FixtureProducts()
	}

	products := make([]dto.ShopifyProduct, 0, len(result.Data.Products.Edges))
	for _, edge := range result.Data.Products.Edges {
		node := edge.Node
		p := dto.ShopifyProduct{
			ID:          node.ID,
			Title:       node.Title,
			Handle:      node.Handle,
			Description: node.Description,
			Vendor:      node.Vendor,
			ProductType: node.ProductType,
			Status:      node.Status,
		}
		for _, v := range node.Variants.Edges {
			if v.Node.SKU == "" {
				continue
			}
			if p.SKU == nil {
				sku := v.Node.SKU
				p.SKU = &sku
			}
			p.SKUs = append(p.SKUs, v.Node.SKU)
		}
		if len(node.Images.Edges) > 0 {
			img := node.Images.Edges[0].Node.URL
			p.Image = &img
		}
		products = append(products, p)
	}
	return products
}

// FixtureProducts 内置示例商品，远端不可用时兜底
func FixtureProducts() []dto.ShopifyProduct {
	sku := "TEST-001"
	return []dto.ShopifyProduct{
		{
			ID:          "gid://shopify/Product/1",
			Title:       "Test Product 1",
			Handle:      "test-product-1",
			Description: "Test product description 1",
			Vendor:      "Test Vendor",
			ProductType: "T-Shirt",
			Status:      "ACTIVE",
			SKU:         &sku,
			SKUs:        []string{"TEST-001"},
		},
		{
			ID:          "gid://shopify/Product/2",
			Title:       "Test Product 2",
			Handle:      "test-product-2",
			Description: "Test product description 2",
			Vendor:      "Test Vendor",
			ProductType: "Hoodie",
			Status:      "ACTIVE",
		},
	}
}

// UploadImage 通过外链 URL 给商品挂图 (GraphQL mutation)
func (s *ShopifyService) UploadImage(ctx context.Context, sessionID, productID, imageURL, altText string) (*shopify.CreatedImage, error) {
	if productID == "" || imageURL == "" {
		return nil, fmt.Errorf("%w: product_id and image_url are required", ErrInvalidInput)
	}
	token, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	variables := map[string]interface{}{
		"input": map[string]interface{}{
			"productId": productID,
			"src":       imageURL,
			"altText":   altText,
		},
	}
	var result shopify.ImageCreateResp
	if err := s.graphQL(ctx, token, shopify.ProductImageCreateMutation, variables, &result); err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, result.Errors[0].Message)
	}
	if userErrors := result.Data.ProductImageCreate.UserErrors; len(userErrors) > 0 {
		// 业务校验失败 (商品不存在、URL 拉不下来等)，只透出第一条
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, userErrors[0].Message)
	}
	if result.Data.ProductImageCreate.Image == nil {
		return nil, fmt.Errorf("%w: image create returned no image", ErrUpstream)
	}
	return result.Data.ProductImageCreate.Image, nil
}

// UploadImageFromBytes 以 base64 附件方式上传图片 (REST)
// Drive 文件直传走这条路，内容不经过公网 URL
func (s *ShopifyService) UploadImageFromBytes(ctx context.Context, sessionID, productID string, data []byte, filename string, position int) (*shopify.RESTImage, error) {
	if productID == "" || len(data) == 0 {
		return nil, fmt.Errorf("%w: product_id and image data are required", ErrInvalidInput)
	}
	token, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if position <= 0 {
		position = 1
	}

	numericID := shopify.NumericProductID(productID)
	endpoint := fmt.Sprintf("%s/admin/api/%s/products/%s/images.json",
		s.adminBase(token.Shop), shopify.RESTAPIVersion, numericID)

	var result shopify.RESTImageEnvelope
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token.AccessToken).
		SetBody(shopify.RESTImageUpload{
			Image: shopify.RESTImageAttachment{
				Attachment: base64.StdEncoding.EncodeToString(data),
				Filename:   filename,
				Position:   position,
			},
		}).
		SetResult(&result).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("REST 上传图片失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		log.Printf("[ShopifyService] REST 上传图片返回 %d: %s", resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("%w: image upload status %d", ErrUpstream, resp.StatusCode())
	}
	return &result.Image, nil
}

// ListProductImages 列出商品的全部图片 (REST)
func (s *ShopifyService) ListProductImages(ctx context.Context, sessionID, productID string) ([]shopify.RESTImage, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
	}
	token, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	numericID := shopify.NumericProductID(productID)
	endpoint := fmt.Sprintf("%s/admin/api/%s/products/%s/images.json",
		s.adminBase(token.Shop), shopify.RESTAPIVersion, numericID)

	var result shopify.RESTImageList
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token.AccessToken).
		SetResult(&result).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("REST 列图片失败: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("[ShopifyService] REST 列图片返回 %d: %s", resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("%w: image list status %d", ErrUpstream, resp.StatusCode())
	}
	return result.Images, nil
}

// DeleteAllProductImages 逐张删除商品图片
// 单张失败只记日志继续删，返回 (成功数, 总数)
func (s *ShopifyService) DeleteAllProductImages(ctx context.Context, sessionID, productID string) (int, int, error) {
	images, err := s.ListProductImages(ctx, sessionID, productID)
	if err != nil {
		return 0, 0, err
	}
	token, err := s.session(sessionID)
	if err != nil {
		return 0, 0, err
	}

	numericID := shopify.NumericProductID(productID)
	deleted := 0
	for _, img := range images {
		endpoint := fmt.Sprintf("%s/admin/api/%s/products/%s/images/%d.json",
			s.adminBase(token.Shop), shopify.RESTAPIVersion, numericID, img.ID)
		resp, err := s.client.R().
			SetContext(ctx).
			SetHeader("X-Shopify-Access-Token", token.AccessToken).
			Delete(endpoint)
		if err != nil || resp.StatusCode() != http.StatusOK {
			log.Printf("[ShopifyService] 删除图片 %d 失败: err=%v status=%d", img.ID, err, resp.StatusCode())
			continue
		}
		deleted++
	}
	return deleted, len(images), nil
}

// FetchCatalog 拉取目录镜像同步视图 (后台任务用，凭证取最近一次授权)
func (s *ShopifyService) FetchCatalog(ctx context.Context) ([]shopify.SyncProductNode, error) {
	token, ok := s.creds.LatestShopify()
	if !ok {
		if s.cfg.Shop != "" && s.cfg.AccessToken != "" {
			token = &credential.ShopifyToken{Shop: s.cfg.Shop, AccessToken: s.cfg.AccessToken}
		} else {
			return nil, ErrUnauthenticated
		}
	}

	var result shopify.ProductsSyncResp
	if err := s.graphQL(ctx, token, shopify.ProductsSyncQuery, nil, &result); err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, result.Errors[0].Message)
	}

	nodes := make([]shopify.SyncProductNode, 0, len(result.Data.Products.Edges))
	for _, edge := range result.Data.Products.Edges {
		nodes = append(nodes, edge.Node)
	}
	return nodes, nil
}
