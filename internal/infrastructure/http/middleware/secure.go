package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureOptions builds the header set for the API endpoints. connect-src
// admits the realtime websocket upgrade alongside plain API calls; nothing
// here serves markup, so everything else stays locked to the origin.
func SecureOptions(isDevelopment bool) secure.Options {
	return secure.Options{
		IsDevelopment:         isDevelopment,
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		ContentSecurityPolicy: "default-src 'self'; connect-src 'self' ws: wss:",
		ReferrerPolicy:        "no-referrer",
	}
}

// NewSecure returns a middleware that adds security headers.
func NewSecure(opts secure.Options) func(next http.Handler) http.Handler {
	s := secure.New(opts)
	return s.Handler
}
