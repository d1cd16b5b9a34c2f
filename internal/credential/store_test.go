package credential

import (
	"testing"
	"time"
)

func TestStore_GoogleRoundTrip(t *testing.T) {
	store := NewStore()

	if _, ok := store.Google("s1"); ok {
		t.Error("空仓库不应返回凭证")
	}

	token := &GoogleToken{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	store.SetGoogle("s1", token)

	got, ok := store.Google("s1")
	if !ok || got.AccessToken != "at" {
		t.Errorf("Google() = %+v/%v", got, ok)
	}

	// 会话之间互不可见
	if _, ok := store.Google("s2"); ok {
		t.Error("其他会话不应读到凭证")
	}

	store.Delete("s1")
	if _, ok := store.Google("s1"); ok {
		t.Error("删除后不应返回凭证")
	}
}

func TestGoogleToken_Expired(t *testing.T) {
	cases := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"未过期", time.Now().Add(time.Hour), false},
		{"已过期", time.Now().Add(-time.Minute), true},
		// 30 秒内到期的按过期算，避免请求发出时刚好失效
		{"即将过期", time.Now().Add(10 * time.Second), true},
		{"无过期时间", time.Time{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := &GoogleToken{AccessToken: "at", ExpiresAt: tc.expiresAt}
			if got := token.Expired(); got != tc.want {
				t.Errorf("Expired() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStore_LatestShopify(t *testing.T) {
	store := NewStore()

	if _, ok := store.LatestShopify(); ok {
		t.Error("空仓库不应有最近凭证")
	}

	store.SetShopify("s1", &ShopifyToken{Shop: "a.myshopify.com", AccessToken: "t1"})
	store.SetShopify("s2", &ShopifyToken{Shop: "b.myshopify.com", AccessToken: "t2"})

	latest, ok := store.LatestShopify()
	if !ok || latest.Shop != "b.myshopify.com" {
		t.Errorf("LatestShopify() = %+v/%v, want 最近一次写入", latest, ok)
	}

	// 各会话依然读自己的
	token, ok := store.Shopify("s1")
	if !ok || token.AccessToken != "t1" {
		t.Errorf("Shopify(s1) = %+v/%v", token, ok)
	}
}
