package controller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_drive_v1_202508/internal/api/dto"
	"shopify_drive_v1_202508/internal/repository"
	"shopify_drive_v1_202508/internal/task"
)

// SyncController 本地目录镜像接口
type SyncController struct {
	productRepo repository.ProductRepository
	syncTask    *task.ProductSyncTask
}

func NewSyncController(repo repository.ProductRepository, syncTask *task.ProductSyncTask) *SyncController {
	return &SyncController{
		productRepo: repo,
		syncTask:    syncTask,
	}
}

// SyncProducts
// @Summary 手动触发目录同步
// @Description 后台异步执行，立即返回；已有同步在跑时直接提示
// @Tags Sync (目录镜像模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "触发结果"
// @Router /api/sync/products [post]
func (ctrl *SyncController) SyncProducts(c *gin.Context) {
	if err := ctrl.syncTask.SyncNow(); err != nil {
		if errors.Is(err, task.ErrSyncInProgress) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Synchronization is already running",
			})
			return
		}
		log.Printf("[SyncController] 触发同步失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Synchronization could not be started",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Synchronization started. Products are being synced in the background.",
	})
}

// SyncStatus
// @Summary 查询镜像统计
// @Description 返回本地镜像的商品/变体/图片数量与最后同步时间
// @Tags Sync (目录镜像模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "统计信息"
// @Router /api/sync/status [get]
func (ctrl *SyncController) SyncStatus(c *gin.Context) {
	stats, err := ctrl.productRepo.Stats(c.Request.Context())
	if err != nil {
		log.Printf("[SyncController] 查询统计失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Sync status could not be loaded",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// GetProducts
// @Summary 本地镜像商品列表
// @Description 返回镜像库中的商品及其变体/图片，按更新时间倒序
// @Tags Sync (目录镜像模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "商品列表"
// @Router /api/sync/products [get]
func (ctrl *SyncController) GetProducts(c *gin.Context) {
	products, err := ctrl.productRepo.ListWithChildren(c.Request.Context())
	if err != nil {
		log.Printf("[SyncController] 查询镜像商品失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Products could not be loaded",
		})
		return
	}

	result := make([]dto.LocalProduct, 0, len(products))
	for _, p := range products {
		item := dto.LocalProduct{
			ID:          p.ShopifyID,
			Title:       p.Title,
			Handle:      p.Handle,
			Status:      p.State,
			Vendor:      p.Vendor,
			ProductType: p.ProductType,
			Description: p.Description,
			Tags:        p.Tags,
			CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
			UpdatedAt:   p.UpdatedAt.Format("2006-01-02 15:04:05"),
			Images:      make([]dto.LocalImage, 0, len(p.Images)),
			Variants:    make([]dto.LocalVariant, 0, len(p.Variants)),
		}
		for _, img := range p.Images {
			alt := img.Alt
			item.Images = append(item.Images, dto.LocalImage{
				ID:  img.ShopifyID,
				Src: img.Src,
				Alt: &alt,
			})
		}
		for _, v := range p.Variants {
			item.Variants = append(item.Variants, dto.LocalVariant{
				ID:                v.ShopifyID,
				Title:             v.Title,
				SKU:               v.SKU,
				Price:             v.Price,
				InventoryQuantity: v.InventoryQuantity,
			})
		}
		result = append(result, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": result,
		"count":    len(result),
	})
}
