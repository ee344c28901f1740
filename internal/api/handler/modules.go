package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apimw "github.com/regionalitapevi/admin-portal/internal/api/middleware"
)

// ModuleHandler serves the business module routes. The modules themselves
// (musician, organist, church and report management) live outside this
// subsystem; these endpoints exist so the access gates have real routes to
// guard and respond with the module resolved for the request.
type ModuleHandler struct{}

func NewModuleHandler() *ModuleHandler {
	return &ModuleHandler{}
}

func (h *ModuleHandler) Serve(c echo.Context) error {
	user := apimw.UserFrom(c)
	resp := map[string]any{
		"module": apimw.ModuleFromPath(c.Request().URL.Path),
		"path":   c.Request().URL.Path,
	}
	if user != nil {
		resp["user"] = user.Email
	}
	return c.JSON(http.StatusOK, resp)
}
