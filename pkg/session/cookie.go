package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"

	"relief-hub/backend/config"
)

// Codec 会话 Cookie 编解码器
// Cookie 值为 securecookie 加密并签名后的会话 JWT，客户端无法读取或篡改
type Codec struct {
	sc       *securecookie.SecureCookie
	name     string
	secure   bool
	sameSite http.SameSite
	domain   string
}

// NewCodec 根据配置创建 Codec
func NewCodec(cfg *config.CookieConfig) (*Codec, error) {
	keys, err := cfg.Keys()
	if err != nil {
		return nil, err
	}

	sc := securecookie.New(keys.Hash, keys.Block)
	sc.SetSerializer(securecookie.JSONEncoder{})
	// 有效期由内层 JWT 校验
	sc.MaxAge(0)

	return &Codec{
		sc:       sc,
		name:     cfg.Name,
		secure:   cfg.Secure,
		sameSite: parseSameSite(cfg.SameSite),
		domain:   cfg.Domain,
	}, nil
}

// Name Cookie 名称
func (c *Codec) Name() string {
	return c.name
}

// Write 将会话 Token 写入响应 Cookie
func (c *Codec) Write(w http.ResponseWriter, token string, ttl time.Duration) error {
	encoded, err := c.sc.Encode(c.name, token)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    encoded,
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
	return nil
}

// Read 从请求 Cookie 中解出会话 Token
// 无 Cookie 时返回 http.ErrNoCookie
func (c *Codec) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", err
	}

	var token string
	if err := c.sc.Decode(c.name, cookie.Value, &token); err != nil {
		return "", err
	}
	return token, nil
}

// Clear 删除会话 Cookie
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
