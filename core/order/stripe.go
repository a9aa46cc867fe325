package order

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

// StripeGateway charges payment-card source tokens through the Stripe
// charges API.
type StripeGateway struct {
	API *stripecl.API
}

func (g StripeGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	params := &stripe.ChargeParams{
		Params: stripe.Params{
			Context:        ctx,
			IdempotencyKey: stripe.String(req.IdempotencyKey),
		},
		Amount:      stripe.Int64(req.AmountMinor),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String("shop order"),
	}

	if err := params.SetSource(req.SourceToken); err != nil {
		return ChargeResult{}, fmt.Errorf("setting charge source: %w", err)
	}

	params.AddMetadata("order_id", req.OrderID)

	ch, err := g.API.Charges.New(params)
	if err != nil {
		return ChargeResult{}, fmt.Errorf("creating stripe charge: %w", err)
	}

	return ChargeResult{ChargeID: ch.ID}, nil
}
