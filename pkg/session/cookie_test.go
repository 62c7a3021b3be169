package session

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"relief-hub/backend/config"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(&config.CookieConfig{
		Name:     "auth_token",
		HashKey:  base64.StdEncoding.EncodeToString([]byte(strings.Repeat("h", 32))),
		BlockKey: base64.StdEncoding.EncodeToString([]byte(strings.Repeat("b", 32))),
		SameSite: "Lax",
	})
	if err != nil {
		t.Fatalf("NewCodec 失败: %v", err)
	}
	return c
}

func TestCodec_WriteRead(t *testing.T) {
	c := newTestCodec(t)

	w := httptest.NewRecorder()
	if err := c.Write(w, "session-token-value", time.Hour); err != nil {
		t.Fatalf("Write 失败: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("期望 1 个 Cookie，实际=%d", len(cookies))
	}
	if !cookies[0].HttpOnly {
		t.Error("会话 Cookie 应为 HttpOnly")
	}
	if strings.Contains(cookies[0].Value, "session-token-value") {
		t.Error("Cookie 值不应包含明文 Token")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	token, err := c.Read(req)
	if err != nil {
		t.Fatalf("Read 失败: %v", err)
	}
	if token != "session-token-value" {
		t.Errorf("期望 session-token-value，实际=%s", token)
	}
}

func TestCodec_ReadTampered(t *testing.T) {
	c := newTestCodec(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	// 明文 base64 JSON（旧版不安全格式）必须被拒绝
	req.AddCookie(&http.Cookie{
		Name:  "auth_token",
		Value: base64.StdEncoding.EncodeToString([]byte(`{"id":"x","role":"admin"}`)),
	})

	if _, err := c.Read(req); err == nil {
		t.Error("未签名的 Cookie 不应通过校验")
	}
}

func TestCodec_ReadMissing(t *testing.T) {
	c := newTestCodec(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := c.Read(req); err != http.ErrNoCookie {
		t.Errorf("期望 http.ErrNoCookie，实际: %v", err)
	}
}

func TestNewCodec_BadKeys(t *testing.T) {
	_, err := NewCodec(&config.CookieConfig{
		Name:     "auth_token",
		HashKey:  base64.StdEncoding.EncodeToString([]byte("short")),
		BlockKey: base64.StdEncoding.EncodeToString([]byte(strings.Repeat("b", 32))),
	})
	if err == nil {
		t.Error("hash key 长度不合法时应返回错误")
	}
}
