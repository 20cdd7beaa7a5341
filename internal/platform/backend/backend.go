// Package backend is the client for the external persistence boundary: the
// managed service providing the user directory, the document database, and
// the file bucket. It translates application intents into the service's REST
// contract and maps its failure responses onto tagged sentinel errors so
// callers can tell "not found" apart from "call failed".
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	// ErrConflict indicates the resource already exists (e.g. duplicate email).
	ErrConflict = errors.New("resource already exists")

	// ErrNotFound indicates the requested resource does not exist upstream.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the API credential was rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

// DefaultTimeout bounds every call to the external service. The source this
// service replaces had no timeout at all, which could wedge a submission in
// flight forever.
const DefaultTimeout = 30 * time.Second

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

// User is a record in the external user directory.
type User struct {
	ID        string    `json:"$id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"$createdAt"`
}

// Document is a record in the external document database. Fields beyond the
// envelope are collection-specific and carried as raw JSON.
type Document struct {
	ID        string          `json:"$id"`
	Data      json.RawMessage `json:"-"`
	CreatedAt time.Time       `json:"$createdAt"`
}

// File is an object stored in the external file bucket.
type File struct {
	ID        string    `json:"$id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mimeType"`
	SizeBytes int64     `json:"sizeOriginal"`
	CreatedAt time.Time `json:"$createdAt"`
}

type userList struct {
	Total int     `json:"total"`
	Users []*User `json:"users"`
}

type documentList struct {
	Total     int               `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

// apiError is the error envelope the external service returns.
type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Client talks to the external service. Construct one at startup and pass it
// into the repositories; it is safe for concurrent use.
type Client struct {
	endpoint   string
	projectID  string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the external service. endpoint is the
// versioned API root, e.g. "https://cloud.example.com/v1".
func NewClient(endpoint, projectID, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		projectID: projectID,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FileViewURL builds the public view URL for a stored file. The construction
// must match the URLs embedded in existing records byte-for-byte.
func (c *Client) FileViewURL(bucketID, fileID string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/view?project=%s",
		c.endpoint, bucketID, fileID, c.projectID)
}

// queryEqual renders an equality filter in the service's query syntax.
func queryEqual(attribute, value string) string {
	return fmt.Sprintf(`equal("%s", ["%s"])`, attribute, value)
}

// ---------------------------------------------------------------------------
// User directory
// ---------------------------------------------------------------------------

// CreateUser creates a user in the external directory. The directory enforces
// email uniqueness; a duplicate surfaces as ErrConflict.
func (c *Client) CreateUser(ctx context.Context, id, name, email, phone string) (*User, error) {
	body := map[string]string{
		"userId": id,
		"name":   name,
		"email":  email,
		"phone":  phone,
	}
	var out User
	if err := c.doJSON(ctx, http.MethodPost, "/users", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser fetches a user by ID. Returns ErrNotFound when the directory has
// no such user.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsersByEmail returns the users whose email equals the given address.
func (c *Client) ListUsersByEmail(ctx context.Context, email string) ([]*User, error) {
	q := url.Values{}
	q.Add("queries[]", queryEqual("email", email))
	var out userList
	if err := c.doJSON(ctx, http.MethodGet, "/users?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ---------------------------------------------------------------------------
// Document database
// ---------------------------------------------------------------------------

// CreateDocument creates a document with the given fields in a collection.
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, fields interface{}) (json.RawMessage, error) {
	body := map[string]interface{}{
		"documentId": documentID,
		"data":       fields,
	}
	path := fmt.Sprintf("/databases/%s/collections/%s/documents",
		url.PathEscape(databaseID), url.PathEscape(collectionID))
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDocumentsByField returns the documents in a collection whose attribute
// equals the given value, newest first as ordered by the service.
func (c *Client) ListDocumentsByField(ctx context.Context, databaseID, collectionID, attribute, value string) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Add("queries[]", queryEqual(attribute, value))
	path := fmt.Sprintf("/databases/%s/collections/%s/documents?%s",
		url.PathEscape(databaseID), url.PathEscape(collectionID), q.Encode())
	var out documentList
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// ---------------------------------------------------------------------------
// File bucket
// ---------------------------------------------------------------------------

// CreateFile uploads binary content with its filename into a bucket. The
// upload is a separate call from document creation; the caller embeds the
// returned file ID into the record afterwards.
func (c *Client) CreateFile(ctx context.Context, bucketID, fileID, filename string, content io.Reader) (*File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("fileId", fileID); err != nil {
		return nil, fmt.Errorf("write fileId field: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, content); err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	path := fmt.Sprintf("/storage/buckets/%s/files", url.PathEscape(bucketID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.translateError(resp)
	}

	var out File
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode file response: %w", err)
	}
	return &out, nil
}

// ---------------------------------------------------------------------------
// Transport plumbing
// ---------------------------------------------------------------------------

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("X-Project-ID", c.projectID)
	req.Header.Set("X-API-Key", c.apiKey)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.translateError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// translateError maps an upstream failure response to a sentinel error. The
// upstream body is included for logging but never forwarded to end users.
func (c *Client) translateError(resp *http.Response) error {
	var ae apiError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	_ = json.Unmarshal(raw, &ae)
	msg := ae.Message
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	switch resp.StatusCode {
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	default:
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, msg)
	}
}
