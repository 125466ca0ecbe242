package browser

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/cmis"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Exception string `json:"exception"`
	Message   string `json:"message"`
}

// statusOf maps a protocol error kind to an HTTP status.
func statusOf(kind cmis.Kind) int {
	switch kind {
	case cmis.KindNotFound:
		return http.StatusNotFound
	case cmis.KindUnauthorized:
		return http.StatusForbidden
	case cmis.KindInvalidArgument:
		return http.StatusBadRequest
	case cmis.KindNotSupported:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

func (a *BrowserAdapter) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := errorBody{Exception: cmis.KindRuntime.String(), Message: "internal error"}

	var protocolErr *cmis.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &protocolErr):
		status = statusOf(protocolErr.Kind)
		body = errorBody{Exception: protocolErr.Kind.String(), Message: protocolErr.Message}

		// credentials were missing or wrong: ask for them
		if protocolErr.Kind == cmis.KindUnauthorized {
			if _, _, ok := c.Request().BasicAuth(); !ok {
				status = http.StatusUnauthorized
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, fmt.Sprintf("Basic realm=%q", a.config.Realm))
			}
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body = errorBody{Exception: exceptionFor(status), Message: fmt.Sprint(httpErr.Message)}
	default:
		logger.Error("Unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Debug("Writing error response failed: %v", err)
	}
}

// exceptionFor names the protocol exception closest to a plain HTTP status.
func exceptionFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return cmis.KindNotFound.String()
	case http.StatusBadRequest:
		return cmis.KindInvalidArgument.String()
	case http.StatusMethodNotAllowed:
		return cmis.KindNotSupported.String()
	case http.StatusUnauthorized, http.StatusForbidden:
		return cmis.KindUnauthorized.String()
	case http.StatusTooManyRequests:
		return "tooManyRequests"
	}
	return cmis.KindRuntime.String()
}
