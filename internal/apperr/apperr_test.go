package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(KindInsufficientFunds, "INSUFFICIENT_FUNDS", "Insufficient funds")
	wrapped := fmt.Errorf("settle: %w", sentinel.WithMessage("Bet exceeds balance"))

	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("errors.Is(%v, sentinel) = false, want true", wrapped)
	}
	if errors.Is(wrapped, New(KindInsufficientFunds, "OTHER", "x")) {
		t.Fatal("errors.Is matched a different code")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{New(KindNotFound, "NOT_FOUND", "missing"), KindNotFound},
		{fmt.Errorf("ctx: %w", Wrap(KindUpstream, "CARD_SOURCE", "down", errors.New("eof"))), KindUpstream},
		{errors.New("plain"), KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(KindUpstream, "CARD_SOURCE", "Card source unavailable", errors.New("timeout"))
	if got := err.Error(); got != "Card source unavailable: timeout" {
		t.Fatalf("Error() = %q", got)
	}
}
