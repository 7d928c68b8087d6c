package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/RowanDark/cryptolab/internal/errdefs"
	"github.com/RowanDark/cryptolab/internal/service"
)

// handle binds the JSON body into Req, runs fn with the request context and
// writes its result. Errors are rendered by handleError.
func handle[Req, Resp any](fn func(context.Context, Req) (Resp, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req Req
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
		}
		resp, err := fn(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, msg := statusFor(err)
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, service.ErrorResponse{Error: msg})
}

// statusFor maps an error onto a status code and a client-safe message.
func statusFor(err error) (int, string) {
	var httpErr *echo.HTTPError
	switch {
	case errdefs.IsClientError(err):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &httpErr):
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "request canceled"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func errorKind(err error) string {
	var httpErr *echo.HTTPError
	if !errdefs.IsClientError(err) && errors.As(err, &httpErr) {
		return "request"
	}
	return errdefs.Kind(err)
}
