package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"shopify_drive_v1_202508/internal/credential"
	"shopify_drive_v1_202508/internal/middleware"
	"shopify_drive_v1_202508/internal/service"
)

func setupGoogleCtlRouter() *gin.Engine {
	creds := credential.NewStore()
	googleSvc := service.NewGoogleService(&service.GoogleConfig{
		AppURL: "http://localhost:8080",
	}, creds)
	ctl := NewGoogleController(googleSvc)

	r := gin.New()
	r.Use(middleware.Session())
	r.GET("/auth/google/callback", ctl.Callback)
	google := r.Group("/api/google")
	{
		google.GET("/auth-url", ctl.GetAuthURL)
		google.GET("/files", ctl.ListFiles)
		google.GET("/access-token", ctl.GetAccessToken)
	}
	return r
}

func TestGoogleController_GetAuthURL(t *testing.T) {
	r := setupGoogleCtlRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/google/auth-url", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		AuthURL string `json:"auth_url"`
		Popup   bool   `json:"popup"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if !resp.Success || !resp.Popup {
		t.Errorf("响应异常: %+v", resp)
	}
	if !strings.Contains(resp.AuthURL, "access_type=offline") {
		t.Errorf("auth_url 缺少 access_type=offline: %s", resp.AuthURL)
	}
}

// 用户拒绝授权时回调页应渲染 postMessage 错误载荷
func TestGoogleController_Callback_Denied(t *testing.T) {
	r := setupGoogleCtlRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "google-auth-callback") {
		t.Error("回调页应包含 postMessage 类型标识")
	}
	if !strings.Contains(body, `"status":"error"`) {
		t.Errorf("回调页应携带 error 状态: %s", body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %s, want text/html", ct)
	}
}

// 文件列表响应的字段名是对外契约，必须是 snake_case
func TestGoogleController_ListFiles_SnakeCaseKeys(t *testing.T) {
	drive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"nextPageToken": "next-1",
			"files": [
				{"id": "f1", "name": "a.png", "size": "1024", "mimeType": "image/png",
				 "webContentLink": "https://drive.example.com/dl/f1",
				 "webViewLink": "https://drive.example.com/view/f1"}
			]
		}`))
	}))
	defer drive.Close()

	creds := credential.NewStore()
	creds.SetGoogle("s1", &credential.GoogleToken{
		AccessToken: "valid-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	googleSvc := service.NewGoogleService(&service.GoogleConfig{
		AppURL:   "http://localhost:8080",
		DriveURL: drive.URL,
	}, creds)
	ctl := NewGoogleController(googleSvc)

	r := gin.New()
	r.Use(middleware.Session())
	r.GET("/api/google/files", ctl.ListFiles)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/google/files?folder_id=folder-9", nil)
	req.Header.Set(middleware.SessionHeader, "s1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	for _, key := range []string{"success", "files", "folder_id", "next_page_token", "page_size"} {
		if _, ok := envelope[key]; !ok {
			t.Errorf("响应缺少字段 %q: %s", key, w.Body.String())
		}
	}
	for _, key := range []string{"nextPageToken", "pageSize", "folderId"} {
		if _, ok := envelope[key]; ok {
			t.Errorf("响应不应出现驼峰字段 %q", key)
		}
	}

	var files []map[string]json.RawMessage
	if err := json.Unmarshal(envelope["files"], &files); err != nil || len(files) != 1 {
		t.Fatalf("files 解析失败: %v %s", err, envelope["files"])
	}
	for _, key := range []string{"id", "name", "size", "mime_type", "thumbnail", "download_url", "view_url"} {
		if _, ok := files[0][key]; !ok {
			t.Errorf("文件条目缺少字段 %q: %s", key, envelope["files"])
		}
	}
}

// 下载响应中的文件元数据同样走 snake_case
func TestGoogleController_DownloadFile_SnakeCaseKeys(t *testing.T) {
	drive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") == "media" {
			w.Write([]byte("bytes"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "f1", "name": "photo.jpg", "mimeType": "image/jpeg"}`))
	}))
	defer drive.Close()

	creds := credential.NewStore()
	creds.SetGoogle("s1", &credential.GoogleToken{
		AccessToken: "valid-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	googleSvc := service.NewGoogleService(&service.GoogleConfig{DriveURL: drive.URL}, creds)
	ctl := NewGoogleController(googleSvc)

	r := gin.New()
	r.Use(middleware.Session())
	r.GET("/api/google/files/:fileId/download", ctl.DownloadFile)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/google/files/f1/download", nil)
	req.Header.Set(middleware.SessionHeader, "s1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool                       `json:"success"`
		File    map[string]json.RawMessage `json:"file"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if _, ok := resp.File["mime_type"]; !ok {
		t.Errorf("file 缺少 mime_type: %s", w.Body.String())
	}
	if _, ok := resp.File["mimeType"]; ok {
		t.Error("file 不应出现驼峰字段 mimeType")
	}
}

func TestGoogleController_ListFiles_Unauthenticated(t *testing.T) {
	r := setupGoogleCtlRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/google/files", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Success || !strings.Contains(resp.Error, "Google Drive connection required") {
		t.Errorf("错误响应异常: %+v", resp)
	}
}

func TestGoogleController_AccessToken_Unauthenticated(t *testing.T) {
	r := setupGoogleCtlRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/google/access-token", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
