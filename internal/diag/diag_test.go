package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestInputError(t *testing.T) {
	err := Inputf("enhance", "seed (%d,%d) outside image", 5, 7)

	if !IsInput(err) {
		t.Fatal("IsInput should recognize an InputError")
	}
	if IsOracle(err) {
		t.Error("IsOracle should not recognize an InputError")
	}

	want := "enhance: invalid input: seed (5,7) outside image"
	if err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}
}

func TestInputError_Wrapped(t *testing.T) {
	err := fmt.Errorf("predict failed: %w", Inputf("predict", "no prompts"))
	if !IsInput(err) {
		t.Error("IsInput should see through wrapping")
	}
}

func TestOracleError_Unwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := Oraclef("request failed: %w", base)

	if !IsOracle(err) {
		t.Fatal("IsOracle should recognize an OracleError")
	}
	if !errors.Is(err, base) {
		t.Error("OracleError should unwrap to the underlying error")
	}
}

func TestWarning_String(t *testing.T) {
	tests := []struct {
		name string
		w    Warning
		want string
	}{
		{"with subject", Warn(UnmatchedLabel, "Noela", "no region within %d px", 100), "unmatched_label [Noela]: no region within 100 px"},
		{"without subject", Warn(EmptyMask, "", "mask has no foreground"), "empty_mask: mask has no foreground"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
