package auth

import (
	"net/http"
	"strings"
)

// BearerPrefix is the scheme prefix of the Authorization header. Matching is
// case-sensitive.
const BearerPrefix = "Bearer "

// Source looks for a token in one place of a request
type Source func(r *http.Request) (string, bool)

// FromBearerHeader reads "Authorization: Bearer <token>". Any other scheme,
// or an empty token, counts as absent.
func FromBearerHeader() Source {
	return func(r *http.Request) (string, bool) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, BearerPrefix) {
			return "", false
		}
		token := strings.TrimSpace(header[len(BearerPrefix):])
		return token, token != ""
	}
}

// FromCookie reads the named cookie
func FromCookie(name string) Source {
	return func(r *http.Request) (string, bool) {
		cookie, err := r.Cookie(name)
		if err != nil || cookie.Value == "" {
			return "", false
		}
		return cookie.Value, true
	}
}

// Extractor tries its sources in order and returns the first token found.
// It never verifies what it finds.
type Extractor struct {
	sources []Source
}

// NewExtractor creates an extractor over sources, highest priority first
func NewExtractor(sources ...Source) *Extractor {
	return &Extractor{sources: sources}
}

// DefaultExtractor prefers the bearer header over the session cookie
func DefaultExtractor(cookieName string) *Extractor {
	return NewExtractor(FromBearerHeader(), FromCookie(cookieName))
}

// Extract returns the first token any source yields
func (e *Extractor) Extract(r *http.Request) (string, bool) {
	for _, source := range e.sources {
		if token, ok := source(r); ok {
			return token, true
		}
	}
	return "", false
}
