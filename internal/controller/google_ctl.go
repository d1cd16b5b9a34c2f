package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopify_drive_v1_202508/internal/middleware"
	"shopify_drive_v1_202508/internal/service"
)

// GoogleController Google Drive 相关接口
type GoogleController struct {
	googleService *service.GoogleService
}

func NewGoogleController(s *service.GoogleService) *GoogleController {
	return &GoogleController{googleService: s}
}

// 授权弹窗回调页：通过 postMessage 把结果交回主窗口后自行关闭
const googleCallbackPage = `<!DOCTYPE html>
<html>
<head><title>Google Drive Authorization</title></head>
<body>
<script>
	var payload = %s;
	if (window.opener) {
		window.opener.postMessage(payload, '*');
	}
	window.close();
</script>
<p>You can close this window.</p>
</body>
</html>`

func renderCallbackPage(c *gin.Context, payload gin.H) {
	payload["type"] = "google-auth-callback"
	data, _ := json.Marshal(payload)
	html := fmt.Sprintf(googleCallbackPage, string(data))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetAuthURL
// @Summary 获取 Google 授权链接
// @Description 生成 Google OAuth 授权跳转链接，前端以弹窗方式打开
// @Tags Google (Google Drive 模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "auth_url"
// @Failure 500 {object} map[string]interface{} "错误信息"
// @Router /api/google/auth-url [get]
func (ctrl *GoogleController) GetAuthURL(c *gin.Context) {
	url, err := ctrl.googleService.AuthURL(middleware.SessionID(c))
	if err != nil {
		log.Printf("[GoogleController] 生成授权链接失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Authorization URL could not be generated",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"auth_url": url,
		"popup":    true,
	})
}

// Callback
// @Summary Google 授权回调
// @Description 接收 Google 返回的 code，换取 token 后渲染弹窗回调页
// @Tags Google (Google Drive 模块)
// @Produce html
// @Param code query string true "授权码"
// @Param state query string false "安全校验码"
// @Success 200 {string} string "回调页面"
// @Router /auth/google/callback [get]
func (ctrl *GoogleController) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" {
		// 用户在授权页点了拒绝
		renderCallbackPage(c, gin.H{
			"status":  "error",
			"message": "Google Drive connection denied",
		})
		return
	}

	result, err := ctrl.googleService.HandleCallback(c.Request.Context(), middleware.SessionID(c), code, state)
	if err != nil {
		log.Printf("[GoogleController] 授权回调处理失败: %v", err)
		renderCallbackPage(c, gin.H{
			"status":  "error",
			"message": "Google Drive connection failed",
		})
		return
	}

	renderCallbackPage(c, gin.H{
		"status":       "success",
		"message":      "Google Drive connected successfully",
		"session_id":   result.SessionID,
		"redirect_url": result.RedirectURL,
	})
}

// ListFiles
// @Summary 列出 Drive 图片文件
// @Description 列出已授权 Drive 中的图片文件，支持目录筛选与分页
// @Tags Google (Google Drive 模块)
// @Produce json
// @Param folder_id query string false "目录 ID，空或 root 表示不限定"
// @Param page_size query int false "分页大小 (默认 100，上限 200)"
// @Param page_token query string false "分页游标"
// @Success 200 {object} map[string]interface{} "文件列表"
// @Failure 401 {object} map[string]interface{} "未授权"
// @Router /api/google/files [get]
func (ctrl *GoogleController) ListFiles(c *gin.Context) {
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	result, err := ctrl.googleService.ListFiles(
		c.Request.Context(),
		middleware.SessionID(c),
		c.Query("folder_id"),
		pageSize,
		c.Query("page_token"),
	)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Google Drive connection required. Please connect first.",
			})
			return
		}
		log.Printf("[GoogleController] 列文件失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Files could not be listed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"files":           result.Files,
		"folder_id":       result.FolderID,
		"next_page_token": result.NextPageToken,
		"page_size":       result.PageSize,
	})
}

// ListFolders
// @Summary 列出 Drive 文件夹
// @Tags Google (Google Drive 模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "文件夹列表"
// @Failure 401 {object} map[string]interface{} "未授权"
// @Router /api/google/folders [get]
func (ctrl *GoogleController) ListFolders(c *gin.Context) {
	folders, err := ctrl.googleService.ListFolders(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Google Drive connection required. Please connect first.",
			})
			return
		}
		log.Printf("[GoogleController] 列文件夹失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Folders could not be listed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"folders": folders,
	})
}

// DownloadFile
// @Summary 下载 Drive 文件
// @Description 下载文件内容，JSON 返回 base64 编码
// @Tags Google (Google Drive 模块)
// @Produce json
// @Param fileId path string true "文件 ID"
// @Success 200 {object} map[string]interface{} "文件内容"
// @Failure 401 {object} map[string]interface{} "未授权"
// @Failure 404 {object} map[string]interface{} "文件不存在"
// @Router /api/google/files/{fileId}/download [get]
func (ctrl *GoogleController) DownloadFile(c *gin.Context) {
	content, err := ctrl.googleService.DownloadFile(c.Request.Context(), middleware.SessionID(c), c.Param("fileId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Google Drive connection required. Please connect first.",
			})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "File not found",
			})
		default:
			log.Printf("[GoogleController] 下载文件失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "File could not be downloaded",
			})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file":    content,
	})
}

// Thumbnail
// @Summary 缩略图代理
// @Description 服务端代取 Google 缩略图并回传图片字节，带 24 小时缓存头
// @Tags Google (Google Drive 模块)
// @Produce png
// @Param fileId path string true "文件 ID"
// @Success 200 {file} binary "图片内容"
// @Failure 404 {object} map[string]interface{} "无缩略图"
// @Router /api/google/thumbnail/{fileId} [get]
func (ctrl *GoogleController) Thumbnail(c *gin.Context) {
	data, contentType, err := ctrl.googleService.Thumbnail(c.Request.Context(), middleware.SessionID(c), c.Param("fileId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Google Drive connection required. Please connect first.",
			})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Thumbnail not found",
			})
		default:
			log.Printf("[GoogleController] 缩略图获取失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Thumbnail could not be loaded",
			})
		}
		return
	}
	// 缩略图内容稳定，交给浏览器缓存一天
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, data)
}

// GetAccessToken
// @Summary 获取当前会话的 access token
// @Description 前端需要直连 Google API 时使用 (如 Picker)
// @Tags Google (Google Drive 模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "token"
// @Failure 401 {object} map[string]interface{} "未授权"
// @Router /api/google/access-token [get]
func (ctrl *GoogleController) GetAccessToken(c *gin.Context) {
	token, err := ctrl.googleService.AccessToken(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Google Drive connection required. Please connect first.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": token,
	})
}
