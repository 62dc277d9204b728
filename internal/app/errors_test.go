package app

import (
	"errors"
	"testing"

	"github.com/dshills/macrokit/internal/settings"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{"nil error", nil, ""},
		{"op only", &OperationError{Op: "record"}, "record"},
		{"op and target", &OperationError{Op: "load", Target: "farm"}, "load farm"},
		{"with context", &OperationError{Op: "load", Target: "farm", Context: "playing"}, "load farm (playing)"},
		{
			"full error chain",
			&OperationError{Op: "save", Target: "farm", Context: "disk", Err: errors.New("io error")},
			"save farm (disk): io error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestOperationError_WithContext_Nil(t *testing.T) {
	var err *OperationError
	if err.WithContext("x") != nil {
		t.Error("WithContext on nil should return nil")
	}
}

func TestOperationError_Is(t *testing.T) {
	err := NewOperationError("switch-profile", "home", settings.ErrProfileNotFound)
	if !errors.Is(err, settings.ErrProfileNotFound) {
		t.Error("expected errors.Is to match the wrapped error")
	}
	if errors.Is(err, ErrBusy) {
		t.Error("unexpected match")
	}
	if !errors.Is(err, err) {
		t.Error("expected a wrapper to match itself")
	}
	if errors.Is(err, NewOperationError("switch-profile", "home", settings.ErrProfileNotFound)) {
		t.Error("distinct wrappers should not match")
	}

	var opErr *OperationError
	if !errors.As(error(err), &opErr) || opErr.Target != "home" {
		t.Errorf("errors.As = %v", opErr)
	}
}

func TestErrorList(t *testing.T) {
	var list ErrorList
	list.Add(nil)
	if list.AsError() != nil {
		t.Fatal("empty list should be nil")
	}

	list.Add(ErrNotRecording)
	if got := list.AsError().Error(); got != ErrNotRecording.Error() {
		t.Errorf("single error = %q", got)
	}

	list.Add(errors.New("sink closed"))
	err := list.AsError()
	if list.Len() != 2 || err.Error() != "2 errors: first: not recording" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrNotRecording) {
		t.Error("expected errors.Is to find a collected error")
	}
}

func TestInitError(t *testing.T) {
	err := &InitError{Component: "device", Err: errors.New("no xdotool")}
	if err.Error() != "init device: no xdotool" {
		t.Errorf("Error() = %q", err.Error())
	}
	if errors.Unwrap(err) == nil {
		t.Error("Unwrap returned nil")
	}
}
