package handler

import (
	"net/http"

	"github.com/dtroode/farmgate-identity/internal/model"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Cookies writes session tokens as HttpOnly cookies. In production they are
// Secure and cross-site; otherwise they are same-site strict over plain HTTP.
type Cookies struct {
	secure   bool
	sameSite http.SameSite
}

func NewCookies(production bool) *Cookies {
	if production {
		return &Cookies{secure: true, sameSite: http.SameSiteNoneMode}
	}
	return &Cookies{secure: false, sameSite: http.SameSiteStrictMode}
}

// SetSession writes both token cookies.
func (c *Cookies) SetSession(w http.ResponseWriter, session model.Session) {
	c.set(w, AccessTokenCookie, session.Access)
	c.set(w, RefreshTokenCookie, session.Refresh)
}

// SetAccess writes the access token cookie only.
func (c *Cookies) SetAccess(w http.ResponseWriter, token model.IssuedToken) {
	c.set(w, AccessTokenCookie, token)
}

// Clear expires both token cookies.
func (c *Cookies) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: c.sameSite,
		})
	}
}

func (c *Cookies) set(w http.ResponseWriter, name string, token model.IssuedToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token.Value,
		Path:     "/",
		MaxAge:   int(token.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}
