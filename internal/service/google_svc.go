package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	"shopify_drive_v1_202508/internal/api/dto"
	"shopify_drive_v1_202508/internal/credential"
	"shopify_drive_v1_202508/pkg/utils"
)

// Google OAuth / Drive API 默认地址，测试时通过 Config 覆盖
const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleDriveAPIURL = "https://www.googleapis.com/drive/v3"
)

// 文件列表分页：非法值回退 100，上限 200
const (
	defaultDrivePageSize = 100
	maxDrivePageSize     = 200
)

// GoogleConfig Google 服务配置
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AppURL       string // 前端地址，授权成功后跳回

	// 以下仅测试用，留空走线上地址
	TokenURL string
	DriveURL string
}

// GoogleService 封装 Google OAuth 授权与 Drive 文件访问
type GoogleService struct {
	cfg    *GoogleConfig
	oauth  *oauth2.Config
	creds  *credential.Store
	client *resty.Client
}

// NewGoogleService 创建 Google 服务
func NewGoogleService(cfg *GoogleConfig, creds *credential.Store) *GoogleService {
	endpoint := oauth2.Endpoint{
		AuthURL:  googleAuthURL,
		TokenURL: googleTokenURL,
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	return &GoogleService{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/drive",
				"https://www.googleapis.com/auth/drive.readonly",
				"https://www.googleapis.com/auth/drive.file",
				"https://www.googleapis.com/auth/drive.metadata.readonly",
			},
			Endpoint: endpoint,
		},
		creds:  creds,
		client: utils.NewAPIClient(),
	}
}

func (s *GoogleService) tokenURL() string {
	if s.cfg.TokenURL != "" {
		return s.cfg.TokenURL
	}
	return googleTokenURL
}

func (s *GoogleService) driveURL() string {
	if s.cfg.DriveURL != "" {
		return s.cfg.DriveURL
	}
	return googleDriveAPIURL
}

// ==================== OAuth 授权 ====================

// AuthURL 生成授权跳转地址
// access_type=offline + prompt=consent 保证每次都发 refresh_token
func (s *GoogleService) AuthURL(sessionID string) (string, error) {
	state, err := utils.GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("生成 state 失败: %w", err)
	}
	// state -> session，回调时弹窗可能带不回 cookie，靠它找回会话
	utils.SetCache(state, sessionID)

	url := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return url, nil
}

// GoogleCallbackResult 授权回调处理结果
type GoogleCallbackResult struct {
	SessionID   string
	RedirectURL string
}

// HandleCallback 处理授权回调：换取 token 并写入会话凭证
func (s *GoogleService) HandleCallback(ctx context.Context, sessionID, code, state string) (*GoogleCallbackResult, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", ErrInvalidInput)
	}
	if state != "" {
		if cached, ok := utils.TakeCache(state); ok {
			sessionID = cached
		}
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code 换 token 失败: %w", err)
	}

	s.creds.SetGoogle(sessionID, &credential.GoogleToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	})
	log.Printf("[GoogleService] 会话 %s 授权成功", sessionID)

	return &GoogleCallbackResult{
		SessionID:   sessionID,
		RedirectURL: s.cfg.AppURL + "/google-drive?session_id=" + sessionID,
	}, nil
}

// googleTokenResp token 端点响应
type googleTokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ensureToken 取会话的可用 access token
// 过期时最多刷新一次，刷新失败按未授权处理 (不重试，避免对 Google 打请求风暴)
func (s *GoogleService) ensureToken(ctx context.Context, sessionID string) (string, error) {
	token, ok := s.creds.Google(sessionID)
	if !ok {
		return "", ErrUnauthenticated
	}
	if !token.Expired() {
		return token.AccessToken, nil
	}
	if token.RefreshToken == "" {
		return "", ErrUnauthenticated
	}

	var result googleTokenResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     s.cfg.ClientID,
			"client_secret": s.cfg.ClientSecret,
			"refresh_token": token.RefreshToken,
			"grant_type":    "refresh_token",
		}).
		SetResult(&result).
		Post(s.tokenURL())
	if err != nil || resp.StatusCode() != http.StatusOK || result.AccessToken == "" {
		log.Printf("[GoogleService] 会话 %s 刷新 token 失败: err=%v status=%d", sessionID, err, resp.StatusCode())
		return "", ErrUnauthenticated
	}

	refreshed := &credential.GoogleToken{
		AccessToken:  result.AccessToken,
		RefreshToken: token.RefreshToken, // Google 刷新响应通常不回传 refresh_token，沿用旧值
		ExpiresAt:    time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}
	if result.RefreshToken != "" {
		refreshed.RefreshToken = result.RefreshToken
	}
	s.creds.SetGoogle(sessionID, refreshed)
	return refreshed.AccessToken, nil
}

// AccessToken 暴露会话当前的 access token (前端直传场景用)
func (s *GoogleService) AccessToken(ctx context.Context, sessionID string) (string, error) {
	return s.ensureToken(ctx, sessionID)
}

// ==================== Drive 文件访问 ====================

// driveFile Drive API 返回的文件记录
type driveFile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Size           string `json:"size"`
	MimeType       string `json:"mimeType"`
	ThumbnailLink  string `json:"thumbnailLink"`
	WebContentLink string `json:"webContentLink"`
	WebViewLink    string `json:"webViewLink"`
	CreatedTime    string `json:"createdTime"`
	ModifiedTime   string `json:"modifiedTime"`
}

// driveFileListResp Drive files 列表响应
type driveFileListResp struct {
	NextPageToken string      `json:"nextPageToken"`
	Files         []driveFile `json:"files"`
}

// ListFiles 列出 Drive 中的图片文件
// folderID 为空或 "root" 时不限定目录
func (s *GoogleService) ListFiles(ctx context.Context, sessionID, folderID string, pageSize int, pageToken string) (*dto.DriveFileList, error) {
	accessToken, err := s.ensureToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if pageSize <= 0 || pageSize > maxDrivePageSize {
		pageSize = defaultDrivePageSize
	}

	query := "mimeType contains 'image/'"
	if folderID != "" && folderID != "root" {
		query = fmt.Sprintf("%s and '%s' in parents", query, folderID)
	}

	params := map[string]string{
		"q":        query,
		"fields":   "nextPageToken, files(id, name, size, mimeType, thumbnailLink, webContentLink, webViewLink)",
		"pageSize": fmt.Sprintf("%d", pageSize),
	}
	if pageToken != "" {
		params["pageToken"] = pageToken
	}

	var result driveFileListResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(params).
		SetResult(&result).
		Get(s.driveURL() + "/files")
	if err != nil {
		return nil, fmt.Errorf("请求 Drive 文件列表失败: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("[GoogleService] Drive 文件列表返回 %d: %s", resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("%w: drive files list status %d", ErrUpstream, resp.StatusCode())
	}

	files := make([]dto.DriveFile, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, dto.DriveFile{
			ID:       f.ID,
			Name:     f.Name,
			Size:     f.Size,
			MimeType: f.MimeType,
			// 缩略图走本地代理，前端不需要带 Google 凭证
			Thumbnail:   s.cfg.AppURL + "/api/google/thumbnail/" + f.ID,
			DownloadURL: f.WebContentLink,
			ViewURL:     f.WebViewLink,
		})
	}

	return &dto.DriveFileList{
		Files:         files,
		NextPageToken: result.NextPageToken,
		PageSize:      pageSize,
		FolderID:      folderID,
	}, nil
}

// ListFolders 列出 Drive 中的文件夹 (前端目录筛选用)
func (s *GoogleService) ListFolders(ctx context.Context, sessionID string) ([]dto.DriveFolder, error) {
	accessToken, err := s.ensureToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var result driveFileListResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"q":        "mimeType = 'application/vnd.google-apps.folder'",
			"fields":   "files(id, name, createdTime, modifiedTime)",
			"pageSize": "50",
		}).
		SetResult(&result).
		Get(s.driveURL() + "/files")
	if err != nil {
		return nil, fmt.Errorf("请求 Drive 文件夹列表失败: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("[GoogleService] Drive 文件夹列表返回 %d: %s", resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("%w: drive folders list status %d", ErrUpstream, resp.StatusCode())
	}

	folders := make([]dto.DriveFolder, 0, len(result.Files))
	for _, f := range result.Files {
		folders = append(folders, dto.DriveFolder{
			ID:           f.ID,
			Name:         f.Name,
			CreatedTime:  f.CreatedTime,
			ModifiedTime: f.ModifiedTime,
		})
	}
	return folders, nil
}

// FileBytes 下载文件原始字节，返回 (内容, 文件名, MIME 类型)
// 下载接口和 Drive 直传 Shopify 共用这条路径
func (s *GoogleService) FileBytes(ctx context.Context, sessionID, fileID string) ([]byte, string, string, error) {
	accessToken, err := s.ensureToken(ctx, sessionID)
	if err != nil {
		return nil, "", "", err
	}

	// 先取元数据确认文件存在
	var meta driveFile
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("fields", "id, name, mimeType").
		SetResult(&meta).
		Get(s.driveURL() + "/files/" + fileID)
	if err != nil {
		return nil, "", "", fmt.Errorf("请求 Drive 文件元数据失败: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, "", "", ErrUnauthenticated
	case http.StatusNotFound:
		return nil, "", "", ErrNotFound
	default:
		log.Printf("[GoogleService] Drive 文件元数据返回 %d: %s", resp.StatusCode(), resp.String())
		return nil, "", "", fmt.Errorf("%w: drive file meta status %d", ErrUpstream, resp.StatusCode())
	}

	// alt=media 拉取内容
	resp, err = s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("alt", "media").
		Get(s.driveURL() + "/files/" + fileID)
	if err != nil {
		return nil, "", "", fmt.Errorf("下载 Drive 文件失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("[GoogleService] Drive 文件下载返回 %d", resp.StatusCode())
		return nil, "", "", fmt.Errorf("%w: drive file download status %d", ErrUpstream, resp.StatusCode())
	}

	return resp.Body(), meta.Name, meta.MimeType, nil
}

// DownloadFile 下载文件并编码为 base64 (JSON 响应用)
func (s *GoogleService) DownloadFile(ctx context.Context, sessionID, fileID string) (*dto.DriveFileContent, error) {
	data, name, mimeType, err := s.FileBytes(ctx, sessionID, fileID)
	if err != nil {
		return nil, err
	}
	return &dto.DriveFileContent{
		ID:       fileID,
		Name:     name,
		MimeType: mimeType,
		Content:  base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Thumbnail 代理拉取文件缩略图，返回 (图片字节, Content-Type)
// Google 的 thumbnailLink 带签名且要求凭证，前端无法直接用，由服务端代取
func (s *GoogleService) Thumbnail(ctx context.Context, sessionID, fileID string) ([]byte, string, error) {
	accessToken, err := s.ensureToken(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	var meta driveFile
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("fields", "id, thumbnailLink").
		SetResult(&meta).
		Get(s.driveURL() + "/files/" + fileID)
	if err != nil {
		return nil, "", fmt.Errorf("请求 Drive 缩略图链接失败: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, "", ErrUnauthenticated
	case http.StatusNotFound:
		return nil, "", ErrNotFound
	default:
		log.Printf("[GoogleService] Drive 缩略图元数据返回 %d: %s", resp.StatusCode(), resp.String())
		return nil, "", fmt.Errorf("%w: drive thumbnail meta status %d", ErrUpstream, resp.StatusCode())
	}
	if meta.ThumbnailLink == "" {
		return nil, "", ErrNotFound
	}

	// 默认 =s220 太小，换成 =s300
	link := strings.Replace(meta.ThumbnailLink, "=s220", "=s300", 1)

	resp, err = s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get(link)
	if err != nil {
		return nil, "", fmt.Errorf("拉取 Drive 缩略图失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		log.Printf("[GoogleService] Drive 缩略图返回 %d", resp.StatusCode())
		return nil, "", fmt.Errorf("%w: drive thumbnail status %d", ErrUpstream, resp.StatusCode())
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return resp.Body(), contentType, nil
}
