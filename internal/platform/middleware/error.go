package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
)

// ErrorBody is the wire shape pinned by the OData surface: {error:{code,message}}.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error converts any error returned from a handler into the pinned
// {error:{code,message}} envelope, the way stem/pkg/middleware.Error
// converts httperror values into its own envelope shape.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		slug := "ServerError"
		message := "internal server error"

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
			slug = slugForStatus(code)
		}

		if httperror.IsHTTPError(err) {
			httperr := httperror.ToHTTPError(err)
			code = httperror.GetStatusCode(err)
			message = httperr.Error()
			if s, ok := httperr.Meta["code"].(string); ok {
				slug = s
			} else {
				slug = slugForStatus(code)
			}
		}

		if code >= http.StatusInternalServerError {
			logger.WithContext(ctx).WithError(err).Error("request failed")
		} else {
			logger.WithContext(ctx).WithError(err).Warn("request rejected")
		}

		_ = c.JSON(code, ErrorBody{Error: ErrorDetail{Code: slug, Message: message}})
	}
}

func slugForStatus(code int) string {
	switch code {
	case http.StatusNotFound:
		return "NotFound"
	case http.StatusUnauthorized:
		return "Unauthorized"
	default:
		return "ServerError"
	}
}
