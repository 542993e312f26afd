package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const invalidPayloadMessage = "Invalid request payload."

// strictBinder decodes JSON request bodies and rejects unknown fields,
// trailing data and non-JSON content types.
type strictBinder struct{}

// NewBinder returns the binder assigned to echo.Echo.Binder.
func NewBinder() echo.Binder {
	return strictBinder{}
}

func (strictBinder) Bind(i any, c echo.Context) error {
	req := c.Request()
	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return echo.NewHTTPError(http.StatusBadRequest, invalidPayloadMessage)
	}

	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, invalidPayloadMessage).SetInternal(err)
	}
	if dec.More() {
		return echo.NewHTTPError(http.StatusBadRequest, invalidPayloadMessage)
	}
	return nil
}
