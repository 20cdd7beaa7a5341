package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// FormInstanceHeader identifies one mounted form on the client. Each mount
// generates a fresh instance ID; retries of the same submission reuse it.
const FormInstanceHeader = "X-Form-Instance"

// DefaultSubmissionTTL is how long a completed submission's response is kept
// for replay to late duplicate clicks.
const DefaultSubmissionTTL = 15 * time.Minute

type submissionRecord struct {
	StatusCode int
	Body       []byte
	ExpiresAt  time.Time
}

// SubmissionStore tracks in-flight and completed submissions per form
// instance. It is safe for concurrent use.
type SubmissionStore struct {
	mu       sync.Mutex
	inflight map[string]bool
	done     map[string]*submissionRecord
	ttl      time.Duration
	nowFunc  func() time.Time
	stop     chan struct{}
}

// NewSubmissionStore creates a store with the given replay TTL. A background
// goroutine evicts expired records every minute; call Stop when done.
func NewSubmissionStore(ttl time.Duration) *SubmissionStore {
	if ttl <= 0 {
		ttl = DefaultSubmissionTTL
	}
	s := &SubmissionStore{
		inflight: make(map[string]bool),
		done:     make(map[string]*submissionRecord),
		ttl:      ttl,
		nowFunc:  time.Now,
		stop:     make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *SubmissionStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.stop:
			return
		}
	}
}

// Stop terminates the background cleanup goroutine.
func (s *SubmissionStore) Stop() {
	close(s.stop)
}

func (s *SubmissionStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFunc()
	for key, rec := range s.done {
		if now.After(rec.ExpiresAt) {
			delete(s.done, key)
		}
	}
}

// begin attempts to start a submission for the key. It returns a completed
// record if one exists, or busy=true when the key is already in flight.
func (s *SubmissionStore) begin(key string) (rec *submissionRecord, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.done[key]; ok && s.nowFunc().Before(r.ExpiresAt) {
		cp := *r
		cp.Body = append([]byte(nil), r.Body...)
		return &cp, false
	}
	if s.inflight[key] {
		return nil, true
	}
	s.inflight[key] = true
	return nil, false
}

// finish records the outcome and releases the in-flight slot. Failed
// submissions (5xx) are not cached so the user can retry.
func (s *SubmissionStore) finish(key string, status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
	if status >= 500 {
		return
	}
	s.done[key] = &submissionRecord{
		StatusCode: status,
		Body:       append([]byte(nil), body...),
		ExpiresAt:  s.nowFunc().Add(s.ttl),
	}
}

// abort releases the in-flight slot without recording an outcome.
func (s *SubmissionStore) abort(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

// SubmitGuard enforces at-most-one in-flight submission per form instance.
// A duplicate concurrent submit gets 409 while the first is running; a
// duplicate after completion replays the recorded response instead of
// reaching the persistence boundary a second time.
func SubmitGuard(store *SubmissionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodPost {
				return next(c)
			}
			key := c.Request().Header.Get(FormInstanceHeader)
			if key == "" {
				return next(c)
			}
			key = c.Request().URL.Path + "|" + key

			if rec, busy := store.begin(key); busy {
				return echo.NewHTTPError(http.StatusConflict, "submission already in progress")
			} else if rec != nil {
				resp := c.Response()
				resp.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
				resp.Header().Set("X-Submission-Replayed", "true")
				resp.WriteHeader(rec.StatusCode)
				_, err := resp.Write(rec.Body)
				return err
			}

			origWriter := c.Response().Writer
			rec := &captureWriter{ResponseWriter: origWriter, statusCode: http.StatusOK}
			c.Response().Writer = rec

			err := next(c)
			c.Response().Writer = origWriter

			if err != nil {
				store.abort(key)
				return err
			}

			store.finish(key, rec.statusCode, rec.body.Bytes())
			return nil
		}
	}
}

// captureWriter tees the response so the guard can record it while it still
// reaches the client.
type captureWriter struct {
	http.ResponseWriter
	body       bytes.Buffer
	statusCode int
	wroteHead  bool
}

func (w *captureWriter) WriteHeader(code int) {
	if !w.wroteHead {
		w.statusCode = code
		w.wroteHead = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.wroteHead {
		w.statusCode = http.StatusOK
		w.wroteHead = true
	}
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
