package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeInvalidFormat, "invalid output format: %s", "gif"),
			want: "INVALID_FORMAT: invalid output format: gif",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeServerUnreachable, stderrors.New("connection refused"), "probe failed"),
			want: "SERVER_UNREACHABLE: probe failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeRenderFailed, cause, "render failed")

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeNonImageContent, "server returned text/html")

	if !Is(err, ErrCodeNonImageContent) {
		t.Error("Is() = false, want true for matching code")
	}
	if Is(err, ErrCodeTimeout) {
		t.Error("Is() = true, want false for different code")
	}
	if Is(stderrors.New("plain"), ErrCodeTimeout) {
		t.Error("Is() = true, want false for non-structured error")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	inner := New(ErrCodeServerUnreachable, "all endpoints down")
	outer := fmt.Errorf("render: %w", inner)

	if !Is(outer, ErrCodeServerUnreachable) {
		t.Error("Is() should unwrap fmt.Errorf chains")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeTimeout, "deadline exceeded")); got != ErrCodeTimeout {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeTimeout)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeRenderFailed, "server rejected diagram")); got != "server rejected diagram" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(stderrors.New("plain failure")); got != "plain failure" {
		t.Errorf("UserMessage() = %q", got)
	}
}
