package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"socialbook/internal/auth"
	"socialbook/internal/view"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "session"
	// SessionContextKey is where the session guard stores the *auth.Claims.
	SessionContextKey = "session"

	lastUsernameCookie = "last_username"
	lastUsernameMaxAge = 365 * 24 * 60 * 60
	flashCookie        = "flash"

	// CSRFField is the hidden form input holding the CSRF token.
	CSRFField = "csrf"
	// CSRFContextKey is where the CSRF middleware stores the token for templates.
	CSRFContextKey = "csrf"
)

// Flash categories.
const (
	flashSuccess = "success"
	flashWarning = "warning"
	flashDanger  = "danger"
)

const genericFailure = "Something went wrong. Please try again later."

// CookieConfig controls the attributes of cookies set by the HTML handlers.
type CookieConfig struct {
	Secure bool
}

// csrfToken returns the token the CSRF middleware issued for this request.
func csrfToken(c echo.Context) string {
	token, _ := c.Get(CSRFContextKey).(string)
	return token
}

// CurrentSession returns the claims the session guard attached to c, or nil.
func CurrentSession(c echo.Context) *auth.Claims {
	claims, _ := c.Get(SessionContextKey).(*auth.Claims)
	return claims
}

func currentUsername(c echo.Context) string {
	if claims := CurrentSession(c); claims != nil {
		return claims.Username
	}
	return ""
}

func (cc CookieConfig) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// setSession writes the session cookie. Remembered sessions survive a browser
// restart; the others end with the browser session.
func (cc CookieConfig) setSession(c echo.Context, session *auth.Session, remember bool) {
	cookie := cc.cookie(SessionCookie, session.Token)
	if remember {
		cookie.MaxAge = int(time.Until(session.ExpiresAt).Seconds())
		cookie.Expires = session.ExpiresAt
	}
	c.SetCookie(cookie)
}

func (cc CookieConfig) clearSession(c echo.Context) {
	cookie := cc.cookie(SessionCookie, "")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	c.SetCookie(cookie)
}

// setLastUsername only pre-fills the login form. It never authenticates anyone.
func (cc CookieConfig) setLastUsername(c echo.Context, username string) {
	cookie := cc.cookie(lastUsernameCookie, url.QueryEscape(username))
	cookie.MaxAge = lastUsernameMaxAge
	c.SetCookie(cookie)
}

func lastUsername(c echo.Context) string {
	cookie, err := c.Cookie(lastUsernameCookie)
	if err != nil {
		return ""
	}
	username, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return username
}

// setFlash stores a message for the next rendered page.
func (cc CookieConfig) setFlash(c echo.Context, category, message string) {
	c.SetCookie(cc.cookie(flashCookie, url.QueryEscape(category+":"+message)))
}

// popFlashes returns the pending flash message, if any, and clears it.
func (cc CookieConfig) popFlashes(c echo.Context) []view.Flash {
	cookie, err := c.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	expired := cc.cookie(flashCookie, "")
	expired.MaxAge = -1
	c.SetCookie(expired)

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	category, message, ok := strings.Cut(raw, ":")
	if !ok || message == "" {
		return nil
	}
	return []view.Flash{{Category: category, Message: message}}
}
