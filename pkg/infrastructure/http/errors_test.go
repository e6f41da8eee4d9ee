package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseErrorResponse_Success(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Body:       http.NoBody,
	}

	if err := ParseErrorResponse(resp); err != nil {
		t.Errorf("Expected nil error for 200 response, got: %v", err)
	}
}

func TestParseErrorResponse_Error(t *testing.T) {
	body := `{"message": "Date is not a property that exists"}`
	resp := &http.Response{
		StatusCode: 400,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    httptest.NewRequest("POST", "https://api.notion.com/v1/pages", nil),
	}

	err := ParseErrorResponse(resp)
	if err == nil {
		t.Fatal("Expected error for 400 response")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected *HTTPError, got %T", err)
	}

	if httpErr.StatusCode != 400 {
		t.Errorf("Expected status 400, got %d", httpErr.StatusCode)
	}
	if !strings.Contains(httpErr.Body, "not a property") {
		t.Errorf("Expected body to contain API message, got: %s", httpErr.Body)
	}
	if !strings.Contains(httpErr.Error(), "not a property") {
		t.Errorf("Expected Error() to contain body, got: %s", httpErr.Error())
	}
	if httpErr.URL != "https://api.notion.com/v1/pages" {
		t.Errorf("Expected request URL to be captured, got: %s", httpErr.URL)
	}
}

func TestParseErrorResponse_BodyRewrap(t *testing.T) {
	body := `{"message": "rate limited"}`
	resp := &http.Response{
		StatusCode: 429,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    httptest.NewRequest("GET", "https://api.notion.com/v1/databases/x", nil),
	}

	_ = ParseErrorResponse(resp)

	rewrapped, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to re-read body: %v", err)
	}
	if string(rewrapped) != body {
		t.Errorf("Expected body to be re-readable, got: %s", rewrapped)
	}
}

func TestParseErrorResponse_TruncatesLongBody(t *testing.T) {
	body := strings.Repeat("x", MaxErrorBodySize+100)
	resp := &http.Response{
		StatusCode: 500,
		Body:       io.NopCloser(strings.NewReader(body)),
	}

	err := ParseErrorResponse(resp)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected *HTTPError, got %T", err)
	}
	if len(httpErr.Body) != MaxErrorBodySize+3 {
		t.Errorf("Expected truncated body of %d chars, got %d", MaxErrorBodySize+3, len(httpErr.Body))
	}
	if !strings.HasSuffix(httpErr.Body, "...") {
		t.Error("Expected truncated body to end with ellipsis")
	}
}

func TestHTTPError_IsAuthError(t *testing.T) {
	tests := []struct {
		status   int
		expected bool
	}{
		{401, true},
		{403, true},
		{404, false},
		{500, false},
	}
	for _, tt := range tests {
		e := &HTTPError{StatusCode: tt.status}
		if e.IsAuthError() != tt.expected {
			t.Errorf("IsAuthError for %d = %v, want %v", tt.status, e.IsAuthError(), tt.expected)
		}
	}
}
