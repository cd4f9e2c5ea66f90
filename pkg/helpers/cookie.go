package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie names for the session token pair.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CookieManager writes and clears the paired session cookies. Both cookies are
// HttpOnly; Secure follows deployment config.
type CookieManager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure}
}

func (m *CookieManager) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, access, maxAgeFrom(aexp), "/", m.Domain, m.Secure, true)
	c.SetCookie(RefreshCookie, refresh, maxAgeFrom(rexp), "/", m.Domain, m.Secure, true)
}

func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
