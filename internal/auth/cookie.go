package auth

import (
	"net/http"
	"time"

	"schoolsite-backend/internal/config"
)

// CookiePolicy holds the attributes of the session cookie. Issue and Clear
// build their cookies from the same fields so browsers match them up.
type CookiePolicy struct {
	Name     string
	Path     string
	Domain   string
	SameSite http.SameSite
	Secure   bool
	MaxAge   time.Duration
}

// NewCookiePolicy builds the policy from configuration. maxAge should be the
// token lifetime.
func NewCookiePolicy(cfg config.CookieConfig, maxAge time.Duration) CookiePolicy {
	name := cfg.Name
	if name == "" {
		name = "token"
	}
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	return CookiePolicy{
		Name:     name,
		Path:     path,
		Domain:   cfg.Domain,
		SameSite: ParseSameSite(cfg.SameSite),
		Secure:   cfg.Secure,
		MaxAge:   maxAge,
	}
}

// ParseSameSite maps lax, strict and none to their http constants.
// Anything else is lax.
func ParseSameSite(value string) http.SameSite {
	switch config.NormalizeSameSite(value) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

func (p CookiePolicy) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     p.Name,
		Value:    value,
		Path:     p.Path,
		Domain:   p.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}

// Issue returns the cookie carrying token
func (p CookiePolicy) Issue(token string) *http.Cookie {
	return p.cookie(token, int(p.MaxAge/time.Second))
}

// Clear returns a cookie that deletes the session cookie
func (p CookiePolicy) Clear() *http.Cookie {
	return p.cookie("", -1)
}
