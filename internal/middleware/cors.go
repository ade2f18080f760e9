package middleware

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/cors"

	"github.com/vostok-trade/backend/internal/respond"
)

// OriginPolicy decides which browser origins may call the API: requests
// without an Origin header, exact allow-list entries, and preview
// deployments matching a host pattern.
type OriginPolicy struct {
	allowed map[string]struct{}
	preview *regexp.Regexp
}

func NewOriginPolicy(allowed []string, previewPattern string) (*OriginPolicy, error) {
	p := &OriginPolicy{allowed: make(map[string]struct{}, len(allowed))}
	for _, o := range allowed {
		p.allowed[o] = struct{}{}
	}
	if previewPattern != "" {
		re, err := regexp.Compile(previewPattern)
		if err != nil {
			return nil, fmt.Errorf("cors preview pattern: %w", err)
		}
		p.preview = re
	}
	return p, nil
}

// Allowed reports whether origin may call the API.
func (p *OriginPolicy) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	if _, ok := p.allowed[origin]; ok {
		return true
	}
	return p.preview != nil && p.preview.MatchString(origin)
}

// CORS answers preflight requests and rejects disallowed origins with 403.
func CORS(p *OriginPolicy) func(http.Handler) http.Handler {
	c := cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return p.Allowed(origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return func(next http.Handler) http.Handler {
		withCORS := c(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !p.Allowed(r.Header.Get("Origin")) {
				respond.Message(w, http.StatusForbidden, "Not allowed by CORS")
				return
			}
			withCORS.ServeHTTP(w, r)
		})
	}
}
