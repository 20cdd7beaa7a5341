package patient

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestServer(t *testing.T) (*echo.Echo, *fixture) {
	t.Helper()
	fx := newFixture()
	e := echo.New()
	NewHandler(fx.svc).RegisterRoutes(e.Group("/api/v1"))
	return e, fx
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if filename != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="identificationDocument"; filename="`+filename+`"`)
		hdr.Set("Content-Type", "image/png")
		fw, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestRegisterHandler_MultipartWithFile(t *testing.T) {
	e, fx := newTestServer(t)

	body, contentType := multipartBody(t, validFields(), "passport.png", []byte("png bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/user-1/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Patient Patient `json:"patient"`
		Next    string  `json:"next"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Next != "/patients/user-1/new-appointment" {
		t.Errorf("next = %q", resp.Next)
	}
	if resp.Patient.IdentificationDocumentID == nil {
		t.Error("expected stored document reference")
	}
	if len(fx.files.uploads) != 1 || fx.files.uploads[0] != "passport.png" {
		t.Errorf("uploads = %v", fx.files.uploads)
	}
}

func TestRegisterHandler_FormEncodedWithoutFile(t *testing.T) {
	e, fx := newTestServer(t)

	form := url.Values{}
	for k, v := range validFields() {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/user-1/register", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(fx.files.uploads) != 0 {
		t.Errorf("expected no uploads, got %v", fx.files.uploads)
	}
}

func TestRegisterHandler_UnknownUser(t *testing.T) {
	e, _ := newTestServer(t)

	body, contentType := multipartBody(t, validFields(), "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/ghost/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRegisterHandler_ValidationErrors(t *testing.T) {
	e, _ := newTestServer(t)

	fields := validFields()
	fields["birthDate"] = "1990-01-15"
	delete(fields, "privacyConsent")
	body, contentType := multipartBody(t, fields, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/user-1/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	got := map[string]bool{}
	for _, fe := range resp.Errors {
		got[fe.Field] = true
	}
	if !got["birthDate"] || !got["privacyConsent"] {
		t.Errorf("expected errors on birthDate and privacyConsent, got %+v", resp.Errors)
	}
}

func TestRegisterHandler_DuplicateConflicts(t *testing.T) {
	e, _ := newTestServer(t)

	body, contentType := multipartBody(t, validFields(), "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/user-1/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", rec.Code)
	}

	body, contentType = multipartBody(t, validFields(), "", nil)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/patients/user-1/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second register: expected 409, got %d", rec.Code)
	}
}

func TestGetByUserHandler(t *testing.T) {
	e, fx := newTestServer(t)
	fx.repo.byUser["user-1"] = []*Patient{{ID: "p-1", UserID: "user-1"}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/by-user/user-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/patients/by-user/nobody", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
