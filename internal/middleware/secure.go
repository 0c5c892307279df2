package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// ContentSecurityPolicy is sent on every response.  The API serves JSON and
// attachments only, so nothing may be loaded or framed.
const ContentSecurityPolicy = "default-src 'none'; frame-ancestors 'self'"

// SecureHeaders sets the browser hardening headers on every response.
func SecureHeaders() echo.MiddlewareFunc {
	return echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ContentSecurityPolicy: ContentSecurityPolicy,
		ReferrerPolicy:        "no-referrer",
	})
}
