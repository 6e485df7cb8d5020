package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	RefreshCookieName = "refresh_token"
	StateCookieName   = "oauth_state"
	authCookiePath    = "/auth"
)

// CookieConfig - параметры cookie с refresh токеном
type CookieConfig struct {
	Secure     bool
	RefreshTTL time.Duration
}

func (cfg CookieConfig) setRefresh(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, token, int(cfg.RefreshTTL.Seconds()), authCookiePath, "", cfg.Secure, true)
}

func (cfg CookieConfig) clearRefresh(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, "", -1, authCookiePath, "", cfg.Secure, true)
}

// State cookie приходит с редиректом провайдера (межсайтовая навигация),
// поэтому ей нужен Lax, а не Strict
func (cfg CookieConfig) setState(c *gin.Context, state string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(StateCookieName, state, int(ttl.Seconds()), authCookiePath, "", cfg.Secure, true)
}

func (cfg CookieConfig) clearState(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(StateCookieName, "", -1, authCookiePath, "", cfg.Secure, true)
}
