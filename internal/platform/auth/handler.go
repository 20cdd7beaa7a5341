package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/intake/intake/internal/platform/audit"
	"github.com/intake/intake/pkg/pagination"
)

// Handler serves the admin login and the submissions review endpoints.
type Handler struct {
	auth   *Authenticator
	audits audit.Repository
}

func NewHandler(auth *Authenticator, audits audit.Repository) *Handler {
	return &Handler{auth: auth, audits: audits}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/admin/login", h.Login)

	admin := api.Group("/admin", RequireAdmin(h.auth))
	admin.GET("/submissions", h.ListSubmissions)
}

type loginRequest struct {
	Passkey string `json:"passkey"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, expires, err := h.auth.Login(req.Passkey)
	if err != nil {
		if errors.Is(err, ErrInvalidPasskey) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid passkey")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}

func (h *Handler) ListSubmissions(c echo.Context) error {
	p := pagination.FromContext(c)
	events, total, err := h.audits.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "audit trail unavailable")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(events, total, p.Limit, p.Offset))
}
