package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotice(t *testing.T) {
	n := NewNotice(ErrEmptyCart, "Your cart is empty. Add items before creating an order.")

	if !errors.Is(n, ErrEmptyCart) {
		t.Error("Notice should unwrap to its kind")
	}
	if n.UserMessage() != "Your cart is empty. Add items before creating an order." {
		t.Errorf("UserMessage() = %q", n.UserMessage())
	}
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("place order: %w", NewNotice(ErrNotAuthenticated, "Please log in to create an order."))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("dial tcp: refused"), FallbackMessage},
		{"wrapped notice", wrapped, "Please log in to create an order."},
		{"empty notice text", NewNotice(ErrBusy, ""), FallbackMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"valid", RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "pw"}, false},
		{"blank username", RegisterRequest{Username: "  ", Email: "ada@example.com", Password: "pw"}, true},
		{"bad email", RegisterRequest{Username: "ada", Email: "ada", Password: "pw"}, true},
		{"no password", RegisterRequest{Username: "ada", Email: "ada@example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("Validate() error = %v, want ErrInvalidProfile", err)
			}
		})
	}
}
