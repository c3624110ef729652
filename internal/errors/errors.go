package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Msg string `json:"msg"`
}

// HTTPErrorHandler renders all handler errors as {"msg": "..."} without
// leaking internals. Unknown errors collapse to a generic 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else if he.Code == http.StatusNotFound {
			msg = "Not found"
		}
	}

	if err := c.JSON(code, ErrorResponse{Msg: msg}); err != nil {
		c.Logger().Error(err)
	}
}
