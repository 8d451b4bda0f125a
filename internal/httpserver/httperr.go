package httpserver

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/Engarr/Windmill-backend/internal/apperr"
	"github.com/Engarr/Windmill-backend/internal/logging"
)

// ErrorHandler maps taxonomy errors to HTTP statuses. Clients get a
// stable kind and a message; causes never leave the process.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, kind, message := 500, "internal", "internal server error"

	var he *echo.HTTPError
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		status = ae.Kind.HTTPStatus()
		kind = ae.Kind.String()
		message = ae.Message
	case errors.As(err, &he):
		status = he.Code
		kind = "http"
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	if status >= 500 {
		logging.FromContext(c.Request().Context()).Error("request error", "status", status, "error", err)
	}

	resp := echo.Map{"error": kind, "message": message}
	var writeErr error
	if c.Request().Method == "HEAD" {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, resp)
	}
	if writeErr != nil {
		logging.FromContext(c.Request().Context()).Error("could not write error response", "error", writeErr)
	}
}
