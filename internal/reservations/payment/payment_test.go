package payment

import (
	"context"
	"errors"
	"testing"
)

func TestStaticVerifier(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{name: "positive amount", amount: 420.5},
		{name: "zero amount", amount: 0, wantErr: true},
		{name: "negative amount", amount: -10, wantErr: true},
	}

	v := NewStaticVerifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(context.Background(), Charge{ResourceID: "h1", GuestID: "g1", Amount: tt.amount})
			if tt.wantErr {
				if !errors.Is(err, ErrDeclined) {
					t.Fatalf("expected ErrDeclined, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestStaticVerifier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStaticVerifier().Verify(ctx, Charge{Amount: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestVerifierFunc(t *testing.T) {
	called := false
	v := VerifierFunc(func(_ context.Context, c Charge) error {
		called = true
		if c.Reference != "ref-1" {
			t.Errorf("unexpected reference %q", c.Reference)
		}
		return nil
	})
	if err := v.Verify(context.Background(), Charge{Reference: "ref-1"}); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("expected function to be called")
	}
}
