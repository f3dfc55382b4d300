// Package payment is the boundary to the payment provider. Settlement itself
// happens elsewhere; the workflow only needs a yes or no before it commits.
package payment

import (
	"context"
	"errors"
	"fmt"
)

var ErrDeclined = errors.New("payment declined")

type Charge struct {
	ResourceID string
	GuestID    string
	Amount     float64
	Reference  string
}

type Verifier interface {
	Verify(ctx context.Context, charge Charge) error
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, charge Charge) error

func (f VerifierFunc) Verify(ctx context.Context, charge Charge) error {
	return f(ctx, charge)
}

// StaticVerifier accepts any charge with a positive amount.
type StaticVerifier struct{}

func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{}
}

func (StaticVerifier) Verify(ctx context.Context, charge Charge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if charge.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %.2f", ErrDeclined, charge.Amount)
	}
	return nil
}
