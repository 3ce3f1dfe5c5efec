package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog/internal/transport"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

const (
	MsgInternal         = "Internal server error"
	MsgMethodNotAllowed = "Method not allowed"
	MsgNotFound         = "Not found"
)

// ErrorHandler renders every error as {"error": "..."}. Server-side failures
// never leak their cause to the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := MsgInternal

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch code {
		case http.StatusMethodNotAllowed:
			msg = MsgMethodNotAllowed
		case http.StatusNotFound:
			msg = MsgNotFound
		default:
			if m, ok := he.Message.(string); ok && m != "" {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		}
	}
	if code >= http.StatusInternalServerError {
		msg = MsgInternal
		if he == nil {
			logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", code, "error", err)
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead || c.Request().Method == http.MethodOptions {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, transport.ErrorResponse{Error: msg})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}
