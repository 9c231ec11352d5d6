package http

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rollmark/attendance/internal/config"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"Bearer  abc ": "abc",
		"abc":          "",
		"":             "",
		"Basic abc":    "",
	}
	for input, expect := range cases {
		if got := bearerToken(input); got != expect {
			t.Fatalf("bearerToken(%q) = %q, want %q", input, got, expect)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	from, to, err := parseDateRange("2026-03-02", "2026-03-04")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if from == nil || !from.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from: %v", from)
	}
	// End bound is inclusive of the whole end date.
	if to == nil || !to.Equal(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to: %v", to)
	}

	from, to, err = parseDateRange("", "")
	if err != nil || from != nil || to != nil {
		t.Fatalf("expected open range, got %v %v %v", from, to, err)
	}

	if _, _, err := parseDateRange("02/03/2026", ""); err == nil {
		t.Fatalf("expected malformed date to error")
	}
}

func TestWriteInternalDevelopmentDetail(t *testing.T) {
	dev := &Server{cfg: config.Config{Environment: "development"}}
	rec := httptest.NewRecorder()
	dev.writeInternal(rec, errors.New("mongo down"))
	if rec.Code != 500 {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mongo down") {
		t.Fatalf("expected detail in development mode, got %s", rec.Body.String())
	}

	prod := &Server{cfg: config.Config{Environment: "production"}}
	rec = httptest.NewRecorder()
	prod.writeInternal(rec, errors.New("mongo down"))
	if strings.Contains(rec.Body.String(), "mongo down") {
		t.Fatalf("expected detail suppressed in production, got %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "server_error") {
		t.Fatalf("expected server_error code, got %s", rec.Body.String())
	}
}
