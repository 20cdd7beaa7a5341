package patient

import (
	"errors"
	"fmt"
	"io"
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
	api.POST("/patients/:userId/register", h.Register)
	api.GET("/patients/by-user/:userId", h.GetByUser)
}

type registerResponse struct {
	Patient *Patient `json:"patient"`
	Next    string   `json:"next"`
}

func appointmentRoute(userID string) string {
	return fmt.Sprintf("/patients/%s/new-appointment", userID)
}

// Register accepts the registration form as multipart/form-data. The
// identification document rides along under the identificationDocument part.
func (h *Handler) Register(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed form body")
	}
	fields := make(map[string]string, len(params))
	for name, vs := range params {
		if len(vs) > 0 {
			fields[name] = vs[0]
		}
	}

	in := RegisterInput{Fields: fields}
	if doc, err := readUpload(c, "identificationDocument"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	} else if doc != nil {
		in.Document = doc
	}

	p, err := h.svc.Register(c.Request().Context(), c.Param("userId"), in)
	if err != nil {
		var verr *forms.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"errors": verr.Fields})
		case errors.Is(err, ErrUserUnknown):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case errors.Is(err, ErrAlreadyRegistered):
			return echo.NewHTTPError(http.StatusConflict, "patient already registered")
		default:
			return echo.NewHTTPError(http.StatusBadGateway, "registration could not be stored")
		}
	}
	return c.JSON(http.StatusCreated, registerResponse{Patient: p, Next: appointmentRoute(p.UserID)})
}

func (h *Handler) GetByUser(c echo.Context) error {
	p, err := h.svc.GetByUserID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "patient store unavailable")
	}
	return c.JSON(http.StatusOK, p)
}

// readUpload pulls one optional file part out of the request. A missing part
// is not an error.
func readUpload(c echo.Context, name string) (*forms.FileRef, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s upload: %w", name, err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s upload: %w", name, err)
	}
	defer f.Close()

	// One byte past the limit so validation can report oversize uploads.
	content, err := io.ReadAll(io.LimitReader(f, forms.MaxIdentificationFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %w", name, err)
	}
	return &forms.FileRef{
		Filename: fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Content:  content,
	}, nil
}
