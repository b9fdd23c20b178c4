// Package testutil provides testing utilities for the placeholder batch client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock API response.
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
	Delay      time.Duration
}

// MockPlaceholder is a configurable placeholder image server for testing.
// Responses are scripted per value of the "text" query parameter.
type MockPlaceholder struct {
	server *httptest.Server
	mu     sync.Mutex

	// scripted responses per text value; the last one repeats
	scripts map[string][]MockResponse

	requests []url.Values
}

// NewMockPlaceholder starts a new mock placeholder server.
func NewMockPlaceholder() *MockPlaceholder {
	mock := &MockPlaceholder{
		scripts: make(map[string][]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))

	return mock
}

func (m *MockPlaceholder) handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	text := query.Get("text")

	m.mu.Lock()
	m.requests = append(m.requests, query)
	resp, scripted := m.next(text)
	m.mu.Unlock()

	if !scripted {
		resp = NewImageResponse(DefaultImage(text))
	}

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}
}

// next pops the next scripted response for text. Caller holds m.mu.
func (m *MockPlaceholder) next(text string) (MockResponse, bool) {
	script, ok := m.scripts[text]
	if !ok || len(script) == 0 {
		return MockResponse{}, false
	}
	resp := script[0]
	if len(script) > 1 {
		m.scripts[text] = script[1:]
	}
	return resp, true
}

// URL returns the mock endpoint URL.
func (m *MockPlaceholder) URL() string {
	return m.server.URL + "/placeholder"
}

// Close shuts down the mock server.
func (m *MockPlaceholder) Close() {
	m.server.Close()
}

// SetResponses scripts the responses returned for text, in order.
// Once exhausted the last response repeats.
func (m *MockPlaceholder) SetResponses(text string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[text] = append([]MockResponse(nil), responses...)
}

// Requests returns a copy of the query of every request received, in order.
func (m *MockPlaceholder) Requests() []url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]url.Values, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests made to the server.
func (m *MockPlaceholder) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Reset clears scripts and recorded requests.
func (m *MockPlaceholder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = make(map[string][]MockResponse)
	m.requests = nil
}

// DefaultImage returns the body served for text when nothing is scripted.
func DefaultImage(text string) []byte {
	return []byte(fmt.Sprintf("\x89PNG\r\n\x1a\n%s", text))
}

// NewImageResponse creates a 200 OK image response.
func NewImageResponse(body []byte) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "image/png",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       []byte(`{"error": "not found"}`),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       []byte(`{"error": "internal server error"}`),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewSlowResponse creates a 200 response delayed by d.
func NewSlowResponse(body []byte, d time.Duration) MockResponse {
	resp := NewImageResponse(body)
	resp.Delay = d
	return resp
}
