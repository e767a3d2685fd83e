package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/config"
	nanoid "github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
}

// IntentCreator starts a payment for amount, given in major currency units.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount float64) (*Intent, error)
}

// New returns a Stripe-backed creator when a secret key is configured and a
// simulated one otherwise.
func New(cfg config.StripeConfig) (IntentCreator, error) {
	if cfg.SecretKey == "" {
		return NewSimulated()
	}
	return NewStripe(cfg), nil
}

// ToMinorUnits converts a major-unit amount to cents, rounding half away from zero.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type Stripe struct {
	api      *client.API
	currency string
}

func NewStripe(cfg config.StripeConfig) *Stripe {
	currency := cfg.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &Stripe{api: client.New(cfg.SecretKey, nil), currency: currency}
}

func (s *Stripe) CreateIntent(ctx context.Context, amount float64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(ToMinorUnits(amount)),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// Simulated mints Stripe-shaped identifiers without calling out.
type Simulated struct {
	secret func() string
}

func NewSimulated() (*Simulated, error) {
	gen, err := nanoid.CustomASCII("abcdefghijklmnopqrstuvwxyz0123456789", 8)
	if err != nil {
		return nil, err
	}
	return &Simulated{secret: gen}, nil
}

func (s *Simulated) CreateIntent(ctx context.Context, amount float64) (*Intent, error) {
	id := fmt.Sprintf("pi_%d", time.Now().UnixMilli())
	return &Intent{ID: id, ClientSecret: id + "_secret_" + s.secret()}, nil
}
