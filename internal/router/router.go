package router // package router builds the Echo instance and registers the API routes

import (
	"fmt"
	"net"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/report-vault/internal/handler"
	"github.com/iliyamo/report-vault/internal/logging"
	"github.com/iliyamo/report-vault/internal/middleware"
)

// APIPrefix is the versioned mount point.  Every route is also served
// without it.
const APIPrefix = "/api/v1"

// Deps are the handlers and middleware the routes are built from.
type Deps struct {
	Auth          *handler.AuthHandler
	Reports       *handler.ReportHandler
	Authenticator middleware.Authenticator
	// RateLimit guards the /auth routes; nil disables it.
	RateLimit echo.MiddlewareFunc
}

// New returns an Echo instance with the global middleware stack: panic
// recovery, request ids, one log line per request, a body size cap and the
// security headers.  Errors are rendered inside the response envelope.
func New(log logging.Logger, maxBodyBytes int64) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log)
	// RealIP is the TCP peer unless TrustProxies says otherwise.
	e.IPExtractor = echo.ExtractIPDirect()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.SecureHeaders())
	if maxBodyBytes > 0 {
		// multipart framing on top of the file itself
		e.Use(echomw.BodyLimit(fmt.Sprintf("%dK", maxBodyBytes/1024+1024)))
	}
	return e
}

// TrustProxies makes RealIP read X-Forwarded-For, believing only hops
// inside cidrs.  Loopback, link-local and private ranges are not trusted
// unless listed.  An empty list keeps the direct peer address.
func TrustProxies(e *echo.Echo, cidrs []string) error {
	if len(cidrs) == 0 {
		return nil
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range cidrs {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	e.IPExtractor = echo.ExtractIPFromXFFHeader(opts...)
	return nil
}

func requestLogger(log logging.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				args = append(args, "error", v.Error.Error())
			}
			log.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// Register mounts the auth and report routes under APIPrefix and at the
// bare paths.
func Register(e *echo.Echo, d Deps) {
	guard := middleware.TokenAuth(d.Authenticator)
	for _, prefix := range []string{APIPrefix, ""} {
		RegisterAuth(e.Group(prefix+"/auth"), d.Auth, guard, d.RateLimit)
		RegisterReports(e.Group(prefix+"/report", guard), d.Reports)
	}
}

// RegisterAuth registers the account endpoints.  register and login are
// open; the rest need a token.  The rate limiter, when present, wraps the
// whole group.
func RegisterAuth(g *echo.Group, a *handler.AuthHandler, guard, limiter echo.MiddlewareFunc) {
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	g.GET("/index", a.Index, guard)
	g.PUT("/change_password", a.ChangePassword, guard)
	g.POST("/change_password", a.ChangePassword, guard)
	g.GET("/logout", a.Logout, guard)
	g.DELETE("/logout", a.Logout, guard)
	g.GET("/delete_user", a.DeleteUser, guard)
	g.DELETE("/delete_user", a.DeleteUser, guard)
}
