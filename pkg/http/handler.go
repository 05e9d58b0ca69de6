package http

import "github.com/labstack/echo/v4"

// Handler is implemented by every route group mounted on the Server.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
