package utils

import (
	"sync"
	"time"
)

// OAuth state 的存活时长，足够完成一次授权跳转
const stateTTL = 10 * time.Minute

// 进程内 state -> session_id 映射，回调时弹窗可能带不回 cookie，靠它找回会话
var memoryCache sync.Map

type cacheItem struct {
	value     string
	expiresAt time.Time
}

// SetCache 绑定 OAuth state 与会话 ID
func SetCache(key string, value string) {
	memoryCache.Store(key, cacheItem{
		value:     value,
		expiresAt: time.Now().Add(stateTTL),
	})
}

// GetCache 读取绑定并校验是否过期
func GetCache(key string) (string, bool) {
	val, ok := memoryCache.Load(key)
	if !ok {
		return "", false
	}

	item := val.(cacheItem)
	if time.Now().After(item.expiresAt) {
		memoryCache.Delete(key) // 懒删除
		return "", false
	}

	return item.value, true
}

// TakeCache 读取并删除绑定，state 用完即焚
func TakeCache(key string) (string, bool) {
	value, ok := GetCache(key)
	if ok {
		memoryCache.Delete(key)
	}
	return value, ok
}

// DeleteCache 删除绑定
func DeleteCache(key string) {
	memoryCache.Delete(key)
}
