// Package dto 定义对外 API 的请求/响应结构
package dto

// DriveFile Google Drive 图片文件 (列表视图)
type DriveFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        string `json:"size"`
	MimeType    string `json:"mime_type"`
	Thumbnail   string `json:"thumbnail"` // 指向本地缩略图代理，避免前端直连 Google 域
	DownloadURL string `json:"download_url"`
	ViewURL     string `json:"view_url"`
}

// DriveFileList 文件列表响应
type DriveFileList struct {
	Files         []DriveFile `json:"files"`
	NextPageToken string      `json:"next_page_token"`
	PageSize      int         `json:"page_size"`
	FolderID      string      `json:"folder_id"`
}

// DriveFolder Google Drive 文件夹
type DriveFolder struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatedTime  string `json:"createdTime"`
	ModifiedTime string `json:"modifiedTime"`
}

// DriveFileContent 文件下载响应，内容为 base64 编码
type DriveFileContent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Content  string `json:"content"`
}
