package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/report-vault/internal/logging"
	"github.com/iliyamo/report-vault/internal/middleware"
	"github.com/iliyamo/report-vault/internal/service"
)

// Client facing messages.  Tests compare against these byte for byte.
const (
	MsgInvalidInput       = "Invalid input."
	MsgAlreadyExists      = "Already exists."
	MsgInvalidEmail       = "Invalid Email."
	MsgVulnerablePassword = "A vulnerable password."
	MsgInvalidCredentials = "Invalid credentials."
	MsgReportNotFound     = "Report not found or invalid."
	MsgInvalidFile        = "Invalid file."
	MsgInternal           = "Internal server error."

	MsgRegistered      = "Register successful."
	MsgLoggedIn        = "Login successful. Use this auth_token when you call APIs"
	MsgIndex           = "Hello! You are authenticated."
	MsgPasswordChanged = "Change password successful. You need to re-login to get new auth_token"
	MsgLoggedOut       = "Logout successful."
	MsgUserDeleted     = "User deleted."
	MsgUploaded        = "Upload successful."
	MsgReportUpdated   = "Update successful."
	MsgFileUpdated     = "File update successful."
	MsgReportDeleted   = "Report deleted."
)

type meta struct {
	Code int `json:"code"`
}

// envelope wraps every JSON response; meta.code mirrors the HTTP status.
type envelope struct {
	Meta     meta `json:"meta"`
	Response any  `json:"response"`
}

func render(c echo.Context, code int, payload any) error {
	return c.JSON(code, envelope{Meta: meta{Code: code}, Response: payload})
}

func message(c echo.Context, code int, msg string) error {
	return render(c, code, echo.Map{"message": msg})
}

func fail(c echo.Context, code int, msg string) error {
	return render(c, code, echo.Map{"error": msg})
}

// errorStatus maps service errors to a status and client message.  ok is
// false for errors that must surface as a 500.
func errorStatus(err error) (code int, msg string, ok bool) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusUnprocessableEntity, MsgInvalidInput, true
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusUnprocessableEntity, MsgInvalidEmail, true
	case errors.Is(err, service.ErrInvalidFile):
		return http.StatusUnprocessableEntity, MsgInvalidFile, true
	case errors.Is(err, service.ErrEmailExists):
		return http.StatusConflict, MsgAlreadyExists, true
	case errors.Is(err, service.ErrVulnerablePassword):
		return http.StatusForbidden, MsgVulnerablePassword, true
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, MsgInvalidCredentials, true
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, middleware.MsgNotAuthenticated, true
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, MsgReportNotFound, true
	}
	return 0, "", false
}

// writeError renders known service errors.  Anything else is handed to
// the HTTP error handler, which logs it and answers 500.
func writeError(c echo.Context, err error) error {
	if code, msg, ok := errorStatus(err); ok {
		return fail(c, code, msg)
	}
	return err
}

// NewHTTPErrorHandler renders framework and unexpected errors inside the
// response envelope.  Internal details are logged, never returned.
func NewHTTPErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := http.StatusInternalServerError, MsgInternal
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			} else {
				msg = http.StatusText(code)
			}
		} else if c2, m2, ok := errorStatus(err); ok {
			code, msg = c2, m2
		}

		if code >= http.StatusInternalServerError {
			log.Error(c.Request().Context(), "request failed",
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err)
			msg = MsgInternal
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = fail(c, code, msg)
		}
		if err != nil {
			log.Error(c.Request().Context(), "write error response", "error", err)
		}
	}
}
