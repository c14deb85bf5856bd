package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: both role and driver_id
// must be present (presence proves the middleware ran and the token carries a
// usable identity).
func ctxClaims(c echo.Context) (driverID, role string, err error) {
	driverID, _ = c.Get("driver_id").(string)
	role, _ = c.Get("role").(string)
	if driverID == "" || role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return driverID, role, nil
}
