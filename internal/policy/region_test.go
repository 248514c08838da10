package policy

import (
	"errors"
	"testing"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRegionExplicitFieldWins(t *testing.T) {
	p := NewRegionPolicy()

	region := p.DetectRegion(domain.PaymentRequest{Region: "US", Currency: "RUB"})
	assert.Equal(t, "US", region)
}

func TestDetectRegionFromCurrency(t *testing.T) {
	p := NewRegionPolicy()

	tests := []struct {
		currency string
		region   string
	}{
		{"RUB", "RU"},
		{"USD", "US"},
		{"EUR", "EU"},
		{"JPY", "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.region, p.DetectRegion(domain.PaymentRequest{Currency: tt.currency}), tt.currency)
	}
}

func TestValidateAllowsRussianSBP(t *testing.T) {
	p := NewRegionPolicy()

	err := p.Validate(domain.PaymentRequest{
		Currency:      "RUB",
		PaymentMethod: domain.PaymentMethodSBP,
		Provider:      domain.PaymentProviderSBP,
	})
	require.NoError(t, err)
}

func TestValidateRejectsUnknownRegion(t *testing.T) {
	p := NewRegionPolicy()

	err := p.Validate(domain.PaymentRequest{
		Currency:      "JPY",
		PaymentMethod: domain.PaymentMethodBankCard,
		Provider:      domain.PaymentProviderStripe,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedRegion))
}

func TestValidateRejectsMethodOutsideRegion(t *testing.T) {
	p := NewRegionPolicy()

	// СБП не работает в US
	err := p.Validate(domain.PaymentRequest{
		Currency:      "USD",
		PaymentMethod: domain.PaymentMethodSBP,
		Provider:      domain.PaymentProviderStripe,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMethodNotAvailable))
	assert.False(t, errors.Is(err, domain.ErrUnsupportedRegion))
}

func TestValidateRejectsProviderOutsideRegion(t *testing.T) {
	p := NewRegionPolicy()

	// Stripe не включен для RU
	err := p.Validate(domain.PaymentRequest{
		Currency:      "RUB",
		PaymentMethod: domain.PaymentMethodBankCard,
		Provider:      domain.PaymentProviderStripe,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProviderNotEnabled))
}

func TestGetRegion(t *testing.T) {
	p := NewRegionPolicy()

	cfg, ok := p.GetRegion("RU")
	require.True(t, ok)
	assert.Equal(t, "RUB", cfg.DefaultCurrency)
	assert.Contains(t, cfg.AvailableMethods, domain.PaymentMethodSBP)

	_, ok = p.GetRegion("MARS")
	assert.False(t, ok)
}
