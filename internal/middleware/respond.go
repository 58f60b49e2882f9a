package middleware

import "github.com/labstack/echo/v4"

// deny writes the API's error envelope and stops the chain.
func deny(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "data": nil, "error": msg})
}
