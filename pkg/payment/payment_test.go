package payment

import (
	"context"
	"regexp"
	"testing"

	"github.com/example/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{45.00, 4500},
		{19.99, 1999},
		{0.1 + 0.2, 30},
		{1.005, 101},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToMinorUnits(tt.amount), "amount %v", tt.amount)
	}
}

func TestSimulated(t *testing.T) {
	creator, err := New(config.StripeConfig{})
	require.NoError(t, err)
	require.IsType(t, &Simulated{}, creator)

	intent, err := creator.CreateIntent(context.Background(), 45)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^pi_\d+_secret_[a-z0-9]{8}$`), intent.ClientSecret)
	assert.Contains(t, intent.ClientSecret, intent.ID)
}

func TestNew_Stripe(t *testing.T) {
	creator, err := New(config.StripeConfig{SecretKey: "sk_test_123"})
	require.NoError(t, err)
	s, ok := creator.(*Stripe)
	require.True(t, ok)
	assert.Equal(t, "usd", s.currency)
}
