package user

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intake/intake/internal/forms"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/users", h.CreateUser)
	api.GET("/users/:id", h.GetUser)
}

// createResponse tells the client where the flow goes next.
type createResponse struct {
	User *Account `json:"user"`
	Next string   `json:"next"`
}

func registerRoute(userID string) string {
	return fmt.Sprintf("/patients/%s/register", userID)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	acct, created, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"errors": verr.Fields})
		}
		return echo.NewHTTPError(http.StatusBadGateway, "user directory unavailable")
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, createResponse{User: acct, Next: registerRoute(acct.ID)})
}

func (h *Handler) GetUser(c echo.Context) error {
	acct, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "user directory unavailable")
	}
	return c.JSON(http.StatusOK, acct)
}
