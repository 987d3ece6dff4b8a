package middleware

import (
	"net/http"
	"strings"
)

// CORSConfig lists what cross-origin browsers may do. An origin entry of
// the form "https://*.example.org" matches every subdomain.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	AllowAll       bool
}

// DefaultCORSConfig allows the read and update methods from any origin.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key", RequestIDHeader},
	}
}

func (c CORSConfig) allowOrigin(origin string) (string, bool) {
	if c.AllowAll || len(c.AllowedOrigins) == 0 {
		return "*", true
	}
	if origin == "" {
		return "", false
	}
	for _, pattern := range c.AllowedOrigins {
		if pattern == "*" || pattern == origin {
			return origin, true
		}
		if scheme, host, ok := strings.Cut(pattern, "://*."); ok {
			rest, found := strings.CutPrefix(origin, scheme+"://")
			if found && strings.HasSuffix(rest, "."+host) {
				return origin, true
			}
		}
	}
	return "", false
}

// CORS sets the access control headers and answers preflight requests
// with 204 without calling next.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if allowed, ok := config.allowOrigin(r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", allowed)
				if allowed != "*" {
					h.Add("Vary", "Origin")
				}
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Expose-Headers", RequestIDHeader)
			h.Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
