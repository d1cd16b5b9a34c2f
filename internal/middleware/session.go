// Package middleware 提供 gin 中间件
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionHeader 前端显式携带的会话头，优先级高于 cookie
	SessionHeader = "X-Session-ID"
	// SessionCookie 浏览器兜底的会话 cookie
	SessionCookie = "drive_session"
	// 上下文键
	sessionKey = "session_id"

	// cookie 有效期与凭证仓库的会话 TTL 保持一致 (24h)
	cookieMaxAge = 24 * 60 * 60
)

// Session 会话识别中间件
// 取值顺序: X-Session-ID 头 > cookie > 新发会话 ID
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			sessionID, _ = c.Cookie(SessionCookie)
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			c.SetCookie(SessionCookie, sessionID, cookieMaxAge, "/", "", false, true)
		}
		c.Set(sessionKey, sessionID)
		c.Next()
	}
}

// SessionID 从请求上下文取会话 ID
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
