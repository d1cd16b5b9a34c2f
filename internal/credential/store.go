// Package credential 维护按会话隔离的第三方授权凭证。
// 仅存内存：会话结束或进程重启即失效，持久化存储见 DESIGN.md 的已知缺陷记录。
package credential

import (
	"sync"
	"time"
)

const (
	// 会话凭证保留时长，超时后懒删除
	sessionTTL = 24 * time.Hour
)

// GoogleToken Google OAuth 凭证
type GoogleToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired 判断 access token 是否已过期 (提前 30 秒视为过期，避免边界请求被拒)
func (t *GoogleToken) Expired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(t.ExpiresAt.Add(-30 * time.Second))
}

// ShopifyToken Shopify 店铺凭证 (离线 token，无过期时间)
type ShopifyToken struct {
	Shop        string
	AccessToken string
}

type entry struct {
	google    *GoogleToken
	shopify   *ShopifyToken
	expiresAt int64
}

// Store 会话级凭证仓库
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	// 最近一次授权成功的 Shopify 凭证
	// 后台同步任务没有请求上下文，取不到会话，退化使用它
	lastShopify *ShopifyToken
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
	}
}

func (s *Store) get(sessionID string) *entry {
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	if time.Now().Unix() > e.expiresAt {
		delete(s.sessions, sessionID)
		return nil
	}
	return e
}

func (s *Store) getOrCreate(sessionID string) *entry {
	if e := s.get(sessionID); e != nil {
		e.expiresAt = time.Now().Add(sessionTTL).Unix()
		return e
	}
	e := &entry{expiresAt: time.Now().Add(sessionTTL).Unix()}
	s.sessions[sessionID] = e
	return e
}

// SetGoogle 写入 Google 凭证 (OAuth 回调 / 刷新成功时调用)
func (s *Store) SetGoogle(sessionID string, token *GoogleToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(sessionID).google = token
}

// Google 读取 Google 凭证
func (s *Store) Google(sessionID string) (*GoogleToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok || time.Now().Unix() > e.expiresAt || e.google == nil {
		return nil, false
	}
	return e.google, true
}

// SetShopify 写入 Shopify 凭证
func (s *Store) SetShopify(sessionID string, token *ShopifyToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(sessionID).shopify = token
	s.lastShopify = token
}

// Shopify 读取 Shopify 凭证
func (s *Store) Shopify(sessionID string) (*ShopifyToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok || time.Now().Unix() > e.expiresAt || e.shopify == nil {
		return nil, false
	}
	return e.shopify, true
}

// LatestShopify 取最近一次授权的 Shopify 凭证，供后台任务使用
func (s *Store) LatestShopify() (*ShopifyToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastShopify == nil {
		return nil, false
	}
	return s.lastShopify, true
}

// Delete 清除整个会话的凭证
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
