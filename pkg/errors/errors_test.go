package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   New(CodeNotFound, "resource not found", http.StatusNotFound),
			expected: "NOT_FOUND: resource not found",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("internal error", errors.New("database connection failed")),
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFoundWithID("Resource", "r1"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("exists"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", cause), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Mongo"), CodeUnavailable, http.StatusServiceUnavailable},
		{"resource unavailable", ResourceUnavailable("h1", "overlap"), CodeResourceUnavailable, http.StatusConflict},
		{"lock conflict", LockConflict("h1", cause), CodeLockConflict, http.StatusConflict},
		{"lock expired", LockExpired(cause), CodeLockExpired, http.StatusGone},
		{"invalid range", InvalidRange("bad dates"), CodeInvalidRange, http.StatusBadRequest},
		{"payment declined", PaymentDeclined(cause), CodePaymentDeclined, http.StatusPaymentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestResourceUnavailable_Details(t *testing.T) {
	err := ResourceUnavailable("h1", "overlap")
	if err.Details["resource_id"] != "h1" {
		t.Errorf("expected resource_id h1, got %v", err.Details["resource_id"])
	}
	if err.Details["reason"] != "overlap" {
		t.Errorf("expected reason overlap, got %v", err.Details["reason"])
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	appErr := LockConflict("h1", nil)
	wrapped := fmt.Errorf("request failed: %w", appErr)

	if !IsAppError(wrapped) {
		t.Fatal("expected wrapped AppError to be detected")
	}
	if AsAppError(wrapped) != appErr {
		t.Error("expected AsAppError to unwrap to the original AppError")
	}
	if !HasCode(wrapped, CodeLockConflict) {
		t.Error("expected HasCode to match through wrapping")
	}
	if HasCode(wrapped, CodeLockExpired) {
		t.Error("expected HasCode to reject a different code")
	}
}

func TestWithCause(t *testing.T) {
	sentinel := errors.New("resource unavailable")
	err := ResourceUnavailable("h1", "overlap").WithCause(sentinel)
	if !errors.Is(err, sentinel) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestAsAppError_Plain(t *testing.T) {
	plain := errors.New("regular error")

	if IsAppError(plain) {
		t.Error("IsAppError() should return false for regular error")
	}
	result := AsAppError(plain)
	if result.Code != CodeInternal {
		t.Errorf("expected internal error, got %s", result.Code)
	}
	if !errors.Is(result, plain) {
		t.Error("expected internal error to wrap the original")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteError(rec, LockExpired(errors.New("gone"))); err != nil {
		t.Fatal(err)
	}

	if rec.Code != http.StatusGone {
		t.Errorf("expected status %d, got %d", http.StatusGone, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != CodeLockExpired {
		t.Errorf("expected code %s, got %s", CodeLockExpired, body.Code)
	}
	if strings.Contains(body.Message, "gone") {
		t.Error("underlying cause must not leak into the response body")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	data := string(NotFoundWithID("Reservation", "r-1").ToJSON())
	if !strings.Contains(data, CodeNotFound) || !strings.Contains(data, "r-1") {
		t.Errorf("unexpected JSON: %s", data)
	}
}
