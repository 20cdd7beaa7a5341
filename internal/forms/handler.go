package forms

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves the built-in form definitions as rendered widget trees.
type Handler struct{}

// NewHandler creates a forms handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes registers the form definition routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/forms", h.ListForms)
	api.GET("/forms/:name", h.GetForm)
}

func (h *Handler) ListForms(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"forms": Names()})
}

func (h *Handler) GetForm(c echo.Context) error {
	def, err := Lookup(c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "form not found")
	}
	rendered, err := RenderForm(def, def.Defaults())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rendered)
}
