package batch

import (
	"errors"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK(0, "url::https://example.org/grants")
	if r.Index() != 0 {
		t.Errorf("Index() = %d", r.Index())
	}
	if r.Key() != "url::https://example.org/grants" {
		t.Errorf("Key() = %q", r.Key())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("title is required")
	r := NewError(3, err)
	if r.Index() != 3 {
		t.Errorf("Index() = %d", r.Index())
	}
	if r.Key() != "" {
		t.Errorf("Key() = %q, want empty on error", r.Key())
	}
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestStatusConstants(t *testing.T) {
	if StatusOK != "ok" {
		t.Errorf("StatusOK = %q", StatusOK)
	}
	if StatusError != "error" {
		t.Errorf("StatusError = %q", StatusError)
	}
}
