package controller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_drive_v1_202508/internal/api/dto"
	"shopify_drive_v1_202508/internal/middleware"
	"shopify_drive_v1_202508/internal/service"
)

// ShopifyController Shopify 商品与图片接口
type ShopifyController struct {
	shopifyService *service.ShopifyService
	googleService  *service.GoogleService
}

func NewShopifyController(shopifySvc *service.ShopifyService, googleSvc *service.GoogleService) *ShopifyController {
	return &ShopifyController{
		shopifyService: shopifySvc,
		googleService:  googleSvc,
	}
}

// GetAuthURL
// @Summary 获取 Shopify 授权链接
// @Tags Shopify (Shopify 模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "auth_url"
// @Failure 500 {object} map[string]interface{} "错误信息"
// @Router /api/shopify/auth-url [get]
func (ctrl *ShopifyController) GetAuthURL(c *gin.Context) {
	url, err := ctrl.shopifyService.AuthURL(middleware.SessionID(c))
	if err != nil {
		log.Printf("[ShopifyController] 生成授权链接失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Authorization URL could not be generated",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"auth_url": url,
	})
}

// Callback
// @Summary Shopify 授权回调
// @Description 校验 state、换取离线 token，成功后重定向到前端
// @Tags Shopify (Shopify 模块)
// @Param code query string true "授权码"
// @Param state query string true "安全校验码"
// @Param shop query string false "店铺域名"
// @Success 302 {string} string "重定向"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Router /auth/shopify/callback [get]
func (ctrl *ShopifyController) Callback(c *gin.Context) {
	redirect, err := ctrl.shopifyService.HandleCallback(
		c.Request.Context(),
		middleware.SessionID(c),
		c.Query("code"),
		c.Query("state"),
		c.Query("shop"),
	)
	if err != nil {
		log.Printf("[ShopifyController] 授权回调处理失败: %v", err)
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid authorization callback",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Shopify connection failed",
		})
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

// GetProducts
// @Summary 商品浏览列表
// @Description 拉取店铺商品的简化视图；店铺不可用时返回内置示例商品，始终 200
// @Tags Shopify (Shopify 模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "商品列表"
// @Router /api/shopify/products [get]
func (ctrl *ShopifyController) GetProducts(c *gin.Context) {
	products := ctrl.shopifyService.QueryProducts(c.Request.Context(), middleware.SessionID(c))
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
	})
}

// UploadImage
// @Summary 外链 URL 挂图
// @Description 把一张公网可访问的图片挂到指定商品
// @Tags Shopify (Shopify 模块)
// @Accept json
// @Produce json
// @Param body body dto.UploadImageReq true "上传请求"
// @Success 200 {object} map[string]interface{} "创建的图片"
// @Failure 400 {object} map[string]interface{} "参数或业务校验错误"
// @Router /api/shopify/upload-image [post]
func (ctrl *ShopifyController) UploadImage(c *gin.Context) {
	var req dto.UploadImageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "product_id and image_url are required",
		})
		return
	}

	image, err := ctrl.shopifyService.UploadImage(
		c.Request.Context(), middleware.SessionID(c),
		req.ProductID, req.ImageURL, req.ImageName,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Shopify connection required. Please connect first.",
			})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
		default:
			log.Printf("[ShopifyController] 挂图失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Image could not be uploaded",
			})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Image uploaded successfully",
		"image":   image,
	})
}

// UploadFromDrive
// @Summary Drive 文件直传商品
// @Description 服务端从 Google Drive 拉文件内容，以 base64 附件上传到商品，内容不经过公网 URL
// @Tags Shopify (Shopify 模块)
// @Accept json
// @Produce json
// @Param body body dto.UploadFromDriveReq true "上传请求"
// @Success 200 {object} map[string]interface{} "创建的图片"
// @Failure 400 {object} map[string]interface{} "参数错误 / Drive 文件不存在"
// @Failure 401 {object} map[string]interface{} "未授权"
// @Router /api/shopify/upload-from-google-drive [post]
func (ctrl *ShopifyController) UploadFromDrive(c *gin.Context) {
	var req dto.UploadFromDriveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "product_id and google_drive_file_id are required",
		})
		return
	}

	sessionID := middleware.SessionID(c)
	data, name, _, err := ctrl.googleService.FileBytes(c.Request.Context(), sessionID, req.GoogleDriveFileID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Google Drive connection required. Please connect first.",
			})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Google Drive file not found",
			})
		default:
			log.Printf("[ShopifyController] 拉取 Drive 文件失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Google Drive file could not be downloaded",
			})
		}
		return
	}

	filename := req.FileName
	if filename == "" {
		filename = name
	}

	image, err := ctrl.shopifyService.UploadImageFromBytes(
		c.Request.Context(), sessionID,
		req.ProductID, data, filename, req.ImagePosition,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Shopify connection required. Please connect first.",
			})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
		default:
			log.Printf("[ShopifyController] Drive 直传失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Image could not be uploaded",
			})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Image uploaded from Google Drive successfully",
		"image":   image,
	})
}

// DeleteProductImages
// @Summary 清空商品图片
// @Description 逐张删除商品的全部图片，单张失败不中断，返回成功数/总数
// @Tags Shopify (Shopify 模块)
// @Accept json
// @Produce json
// @Param body body dto.DeleteProductImagesReq true "删除请求"
// @Success 200 {object} map[string]interface{} "删除结果"
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Router /api/shopify/delete-product-images [post]
func (ctrl *ShopifyController) DeleteProductImages(c *gin.Context) {
	var req dto.DeleteProductImagesReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Product ID required",
		})
		return
	}

	deleted, total, err := ctrl.shopifyService.DeleteAllProductImages(
		c.Request.Context(), middleware.SessionID(c), req.ProductID,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Shopify connection required. Please connect first.",
			})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Product not found",
			})
		default:
			log.Printf("[ShopifyController] 清空图片失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Images could not be deleted",
			})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Product images deleted",
		"deleted_count": deleted,
		"total_images":  total,
	})
}
