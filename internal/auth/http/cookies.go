package http

import (
	"net/http"
	"time"
)

// refreshCookieName holds the refresh token. The cookie is scoped to the
// auth API so it never rides along on product traffic.
const (
	refreshCookieName = "cartside_refresh"
	refreshCookiePath = "/v1/auth"
)

// CookieConfig controls the attributes of the refresh cookie.
type CookieConfig struct {
	Domain string
	Secure bool
}

// setRefreshCookie installs the refresh token as an HttpOnly cookie. The
// browser, not the client code, is the only holder of the refresh
// credential.
func (c CookieConfig) setRefreshCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Domain:   c.Domain,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie expires the refresh cookie. Always safe to call, even
// when no cookie was present.
func (c CookieConfig) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Domain:   c.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// refreshTokenFromRequest reads the refresh credential. Cookies are the
// only accepted source; a token in a body or header is ignored.
func refreshTokenFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
