package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/otpdesk/internal/config"
	"github.com/TheMichaelB/otpdesk/internal/models"
)

// LogEntry represents a captured log entry for testing
type LogEntry struct {
	Level   string                 `json:"level"`
	Message string                 `json:"msg"`
	Fields  map[string]interface{} `json:"-"`
}

// TestServer provides a fake OTP API for integration tests.
type TestServer struct {
	*httptest.Server
	mu       sync.RWMutex
	otps     map[string]models.OTPRecord // by token
	users    []models.EligibleUser
	statuses map[string]int
	requests map[string][]map[string]interface{}
	latest   map[string]string
	sent     []string
	nextID   int
}

// NewTestServer creates a new test HTTP server.
func NewTestServer() *TestServer {
	ts := &TestServer{
		otps:     make(map[string]models.OTPRecord),
		users:    SampleUsers(),
		statuses: make(map[string]int),
		latest:   make(map[string]string),
		requests: make(map[string][]map[string]interface{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/otp/generate", ts.handleGenerate)
	mux.HandleFunc("/v1/otp/send-email", ts.handleSendEmail)
	mux.HandleFunc("/v1/otp/verify", ts.handleVerify)
	mux.HandleFunc("/api/admin/otp-list", ts.handleOTPList)
	mux.HandleFunc("/api/admin/eligible-users", ts.handleEligibleUsers)

	ts.Server = httptest.NewServer(mux)
	return ts
}

// FailWith makes every call to path answer with status.
func (ts *TestServer) FailWith(path string, status int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.statuses[path] = status
}

// SetUsers replaces the eligible users listing.
func (ts *TestServer) SetUsers(users []models.EligibleUser) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.users = users
}

// Requests returns the decoded bodies received on path.
func (ts *TestServer) Requests(path string) []map[string]interface{} {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return append([]map[string]interface{}(nil), ts.requests[path]...)
}

// Sent returns the tokens emailed so far.
func (ts *TestServer) Sent() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return append([]string(nil), ts.sent...)
}

// Token returns the code most recently generated for email.
func (ts *TestServer) Token(email string) string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.latest[email]
}

func (ts *TestServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, ok := ts.accept(w, r, http.MethodPost)
	if !ok {
		return
	}

	email, _ := body["email"].(string)
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	ts.mu.Lock()
	ts.nextID++
	now := time.Now().UTC()
	rec := models.OTPRecord{
		Email:     email,
		Token:     fmt.Sprintf("%06d", 100000+ts.nextID),
		ID:        "otp-" + strconv.Itoa(ts.nextID),
		CreatedAt: now.Format(time.RFC3339),
		ExpiresAt: now.Add(10 * time.Minute).Format(time.RFC3339),
	}
	ts.otps[rec.Token] = rec
	ts.latest[email] = rec.Token
	ts.mu.Unlock()

	writeJSON(w, rec)
}

func (ts *TestServer) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	body, ok := ts.accept(w, r, http.MethodPost)
	if !ok {
		return
	}

	token, _ := body["token"].(string)
	ts.mu.Lock()
	_, known := ts.otps[token]
	if known {
		ts.sent = append(ts.sent, token)
	}
	ts.mu.Unlock()

	if !known {
		writeError(w, http.StatusNotFound, "unknown token")
		return
	}
	writeJSON(w, map[string]interface{}{"success": true})
}

func (ts *TestServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	body, ok := ts.accept(w, r, http.MethodPost)
	if !ok {
		return
	}

	email, _ := body["email"].(string)
	token, _ := body["token"].(string)

	ts.mu.Lock()
	rec, known := ts.otps[token]
	valid := known && rec.Email == email
	if valid {
		delete(ts.otps, token)
	}
	ts.mu.Unlock()

	if !valid {
		writeError(w, http.StatusUnauthorized, "invalid otp")
		return
	}
	writeJSON(w, map[string]interface{}{"success": true})
}

func (ts *TestServer) handleOTPList(w http.ResponseWriter, r *http.Request) {
	if _, ok := ts.accept(w, r, http.MethodGet); !ok {
		return
	}

	ts.mu.RLock()
	entries := make([]models.OTPEntry, 0, len(ts.otps))
	for _, rec := range ts.otps {
		entries = append(entries, models.OTPEntry{
			Email:     rec.Email,
			Code:      rec.Token,
			Status:    models.OTPStatusActive,
			CreatedAt: rec.CreatedAt,
			ExpiresAt: rec.ExpiresAt,
		})
	}
	ts.mu.RUnlock()

	writeJSON(w, map[string]interface{}{"otps": entries})
}

func (ts *TestServer) handleEligibleUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := ts.accept(w, r, http.MethodGet); !ok {
		return
	}

	ts.mu.RLock()
	users := ts.users
	ts.mu.RUnlock()

	writeJSON(w, map[string]interface{}{"users": users})
}

// accept checks the method and configured failures and records the body.
func (ts *TestServer) accept(w http.ResponseWriter, r *http.Request, method string) (map[string]interface{}, bool) {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	body := map[string]interface{}{}
	if method == http.MethodPost {
		if err := decodeJSON(r.Body, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return nil, false
		}
	}

	ts.mu.Lock()
	ts.requests[r.URL.Path] = append(ts.requests[r.URL.Path], body)
	status := ts.statuses[r.URL.Path]
	ts.mu.Unlock()

	if status != 0 {
		writeError(w, status, http.StatusText(status))
		return nil, false
	}
	return body, true
}

// TestHelpers provides common test helper functions.
type TestHelpers struct {
	t       *testing.T
	tempDir string
}

// NewTestHelpers creates test helpers.
func NewTestHelpers(t *testing.T) *TestHelpers {
	return &TestHelpers{
		t:       t,
		tempDir: t.TempDir(),
	}
}

// TempDir returns the temporary directory for this test.
func (h *TestHelpers) TempDir() string {
	return h.tempDir
}

// CreateTempFile creates a temporary file with content.
func (h *TestHelpers) CreateTempFile(name, content string) string {
	path := filepath.Join(h.tempDir, name)

	err := os.MkdirAll(filepath.Dir(path), 0755)
	require.NoError(h.t, err)

	err = os.WriteFile(path, []byte(content), 0644)
	require.NoError(h.t, err)

	return path
}

// TestTimeout provides timeout context for tests.
func TestTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

// TestContext creates a test context with reasonable timeout.
func TestContext() (context.Context, context.CancelFunc) {
	return TestTimeout(30 * time.Second)
}

// TestConfig creates a test configuration pointing at baseURL.
func TestConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 5 * time.Second
	cfg.Log = config.LogConfig{
		Level:  "debug",
		Format: "json",
		Color:  false,
	}
	cfg.UI.Color = false
	return cfg
}

// WaitForCondition waits for a condition to be true with timeout.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			t.Fatalf("Timeout waiting for condition: %s", message)
		case <-ticker.C:
			if condition() {
				return
			}
		}
	}
}

// LogOutput captures JSON log output for testing.
type LogOutput struct {
	mu      sync.RWMutex
	entries []LogEntry
}

// NewLogOutput creates a new log output capturer.
func NewLogOutput() *LogOutput {
	return &LogOutput{}
}

// Write implements io.Writer to capture log output.
func (lo *LogOutput) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(strings.TrimSpace(string(p)), "\n") {
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		_ = json.Unmarshal([]byte(line), &entry.Fields)

		lo.mu.Lock()
		lo.entries = append(lo.entries, entry)
		lo.mu.Unlock()
	}
	return len(p), nil
}

// Entries returns captured log entries.
func (lo *LogOutput) Entries() []LogEntry {
	lo.mu.RLock()
	defer lo.mu.RUnlock()

	entries := make([]LogEntry, len(lo.entries))
	copy(entries, lo.entries)
	return entries
}

// HasMessage checks if any log entry contains the message.
func (lo *LogOutput) HasMessage(message string) bool {
	lo.mu.RLock()
	defer lo.mu.RUnlock()

	for _, entry := range lo.entries {
		if strings.Contains(entry.Message, message) {
			return true
		}
	}
	return false
}

// utility functions
func decodeJSON(r io.Reader, v interface{}) error {
	return json.NewDecoder(r).Decode(v)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"message": message})
}

// SkipIfShort skips test if testing.Short() is true.
func SkipIfShort(t *testing.T, reason string) {
	if testing.Short() {
		t.Skipf("Skipping test in short mode: %s", reason)
	}
}
