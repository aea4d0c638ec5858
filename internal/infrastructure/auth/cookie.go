package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/locaflow/backend/internal/infrastructure/config"
)

// Cookies writes the httpOnly session cookies
type Cookies struct {
	cfg config.CookieConfig
}

// NewCookies creates a cookie writer
func NewCookies(cfg config.CookieConfig) *Cookies {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return &Cookies{cfg: cfg}
}

// AccessName returns the access cookie name
func (k *Cookies) AccessName() string { return k.cfg.AccessName }

// RefreshName returns the refresh cookie name
func (k *Cookies) RefreshName() string { return k.cfg.RefreshName }

// Set writes both tokens of pair
func (k *Cookies) Set(c *gin.Context, pair *TokenPair) {
	now := time.Now()
	k.write(c, k.cfg.AccessName, pair.AccessToken, pair.AccessTokenExpiresAt.Sub(now))
	k.write(c, k.cfg.RefreshName, pair.RefreshToken, pair.RefreshTokenExpiresAt.Sub(now))
}

// Clear expires both session cookies
func (k *Cookies) Clear(c *gin.Context) {
	k.write(c, k.cfg.AccessName, "", -time.Second)
	k.write(c, k.cfg.RefreshName, "", -time.Second)
}

func (k *Cookies) write(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(sameSite(k.cfg.SameSite))
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	c.SetCookie(name, value, maxAge, k.cfg.Path, k.cfg.Domain, k.cfg.Secure, true)
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
