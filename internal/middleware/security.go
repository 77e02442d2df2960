package middleware

import (
	"net/http"
	"strings"

	"github.com/unrolled/secure"
)

var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com",
	"script-src 'self' 'unsafe-inline' https://maps.google.com https://maps.googleapis.com",
	"script-src-attr 'unsafe-inline'",
	"font-src 'self' https://fonts.gstatic.com",
	"img-src 'self' data: https:",
	"frame-src 'self' https://maps.google.com https://www.google.com",
	"connect-src 'self' https://maps.google.com https://maps.googleapis.com",
}, "; ")

// SecurityHeaders sets CSP, framing, sniffing and referrer headers. HSTS is
// only sent in production over TLS.
func SecurityHeaders(production bool) func(http.Handler) http.Handler {
	s := secure.New(secure.Options{
		ContentSecurityPolicy:   contentSecurityPolicy,
		CustomFrameOptionsValue: "SAMEORIGIN",
		ContentTypeNosniff:      true,
		ReferrerPolicy:          "no-referrer",
		STSSeconds:              15552000,
		STSIncludeSubdomains:    true,
		IsDevelopment:           !production,
	})
	return s.Handler
}
