package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"  Rice ":     "rice",
		`"Olive Oil"`: "olive oil",
		` " Tomato" `: "tomato",
		"":            "",
		"دجاج":        "دجاج",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAsCustomError(t *testing.T) {
	wrapped := fmt.Errorf("match: %w", ErrQueueFull)
	if got := AsCustomError(wrapped); got != ErrQueueFull {
		t.Errorf("expected ErrQueueFull, got %v", got)
	}

	plain := errors.New("disk on fire")
	got := AsCustomError(plain)
	if got.Status != http.StatusInternalServerError || !errors.Is(got, plain) {
		t.Errorf("plain error should map to internal error, got %+v", got)
	}
	if got.Response(false).Details != "" {
		t.Errorf("details must be hidden outside debug")
	}
	if got.Response(true).Details != "disk on fire" {
		t.Errorf("details should be shown in debug")
	}
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("bind: %w", NewValidationError("bad"))
	if !IsValidationError(err) {
		t.Fatal("expected validation error")
	}
	if IsValidationError(errors.New("other")) {
		t.Fatal("unexpected validation error")
	}
}

func TestStringSliceToString(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"rice"}, "rice"},
		{[]string{"rice", "olive oil"}, "rice, olive oil"},
	}
	for _, tt := range tests {
		if got := StringSliceToString(tt.in); got != tt.want {
			t.Errorf("StringSliceToString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
