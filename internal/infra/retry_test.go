package infra_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"verba/internal/infra"
)

func fastRetry(n int) infra.RetryConfig {
	cfg := infra.RetryConfigWithAttempts(n)
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	return cfg
}

func TestWithRetry_DefaultIsSingleAttempt(t *testing.T) {
	calls := 0
	err := infra.WithRetry(context.Background(), infra.DefaultRetryConfig(), func() error {
		calls++
		return &infra.APIError{Provider: "test", StatusCode: http.StatusServiceUnavailable}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestWithRetry_RetriesServerErrors(t *testing.T) {
	calls := 0
	err := infra.WithRetry(context.Background(), fastRetry(3), func() error {
		calls++
		if calls < 3 {
			return &infra.APIError{Provider: "test", StatusCode: http.StatusBadGateway}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestWithRetry_StopsOnClientErrors(t *testing.T) {
	calls := 0
	err := infra.WithRetry(context.Background(), fastRetry(5), func() error {
		calls++
		return &infra.APIError{Provider: "test", StatusCode: http.StatusUnauthorized}
	})

	var apiErr *infra.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	calls := 0
	err := infra.WithRetry(context.Background(), fastRetry(5), func() error {
		calls++
		return context.Canceled
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestCheckResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusForbidden)
	rec.WriteString("  insufficient scope \n")

	err := infra.CheckResponse("gmail", rec.Result())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "gmail API error 403: insufficient scope" {
		t.Errorf("message: got %q", err.Error())
	}

	ok := httptest.NewRecorder()
	ok.WriteHeader(http.StatusOK)
	if err := infra.CheckResponse("gmail", ok.Result()); err != nil {
		t.Errorf("unexpected error for 200: %v", err)
	}
}
