package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupSessionRouter() (*gin.Engine, *string) {
	var captured string
	r := gin.New()
	r.Use(Session())
	r.GET("/ping", func(c *gin.Context) {
		captured = SessionID(c)
		c.JSON(http.StatusOK, gin.H{"session": captured})
	})
	return r, &captured
}

func TestSession_HeaderTakesPriority(t *testing.T) {
	r, captured := setupSessionRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(SessionHeader, "header-session")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-session"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if *captured != "header-session" {
		t.Errorf("session = %s, want header-session", *captured)
	}
}

func TestSession_CookieFallback(t *testing.T) {
	r, captured := setupSessionRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-session"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if *captured != "cookie-session" {
		t.Errorf("session = %s, want cookie-session", *captured)
	}
}

func TestSession_MintsNewID(t *testing.T) {
	r, captured := setupSessionRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if *captured == "" {
		t.Fatal("应新发会话 ID")
	}

	// 新发的 ID 要通过 cookie 回传给浏览器
	setCookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(setCookie, SessionCookie+"="+*captured) {
		t.Errorf("Set-Cookie = %s, 应包含新会话 ID", setCookie)
	}
}
