package service

import "errors"

// 统一错误分类，controller 层据此映射 HTTP 状态码
var (
	// ErrUnauthenticated 无 token / token 过期且刷新失败 -> 401
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotFound 远端资源不存在 -> 404
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput 请求缺少必填字段或远端业务校验失败 -> 400
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream 远端 API 非成功响应 -> 500 (响应体只进日志，不透给调用方)
	ErrUpstream = errors.New("upstream api error")
)
