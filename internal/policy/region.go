package policy

import (
	"fmt"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
)

// RegionConfig конфигурация платежей для региона
type RegionConfig struct {
	Region           string                   `json:"region"`
	AvailableMethods []domain.PaymentMethod   `json:"available_methods"`
	EnabledProviders []domain.PaymentProvider `json:"enabled_providers"`
	DefaultCurrency  string                   `json:"default_currency"`
}

// RegionPolicy статическая таблица платежных регионов
type RegionPolicy struct {
	regions    map[string]RegionConfig
	currencies map[string]string
}

// NewRegionPolicy создает политику регионов по умолчанию
func NewRegionPolicy() *RegionPolicy {
	regions := map[string]RegionConfig{
		"RU": {
			Region: "RU",
			AvailableMethods: []domain.PaymentMethod{
				domain.PaymentMethodSBP,
				domain.PaymentMethodBankCard,
				domain.PaymentMethodYooMoney,
			},
			EnabledProviders: []domain.PaymentProvider{
				domain.PaymentProviderSBP,
				domain.PaymentProviderYooKassa,
			},
			DefaultCurrency: "RUB",
		},
		"US": {
			Region: "US",
			AvailableMethods: []domain.PaymentMethod{
				domain.PaymentMethodBankCard,
				domain.PaymentMethodPayPal,
			},
			EnabledProviders: []domain.PaymentProvider{
				domain.PaymentProviderStripe,
				domain.PaymentProviderPayPal,
			},
			DefaultCurrency: "USD",
		},
		"EU": {
			Region: "EU",
			AvailableMethods: []domain.PaymentMethod{
				domain.PaymentMethodBankCard,
				domain.PaymentMethodPayPal,
			},
			EnabledProviders: []domain.PaymentProvider{
				domain.PaymentProviderStripe,
				domain.PaymentProviderPayPal,
			},
			DefaultCurrency: "EUR",
		},
	}

	// Регион выводится из валюты, если не указан явно
	currencies := map[string]string{
		"RUB": "RU",
		"USD": "US",
		"EUR": "EU",
	}

	return &RegionPolicy{
		regions:    regions,
		currencies: currencies,
	}
}

// GetRegion возвращает конфигурацию региона
func (p *RegionPolicy) GetRegion(region string) (RegionConfig, bool) {
	cfg, ok := p.regions[region]
	return cfg, ok
}

// DetectRegion определяет регион запроса: явное поле имеет приоритет над валютой
func (p *RegionPolicy) DetectRegion(req domain.PaymentRequest) string {
	if req.Region != "" {
		return req.Region
	}
	if region, ok := p.currencies[req.Currency]; ok {
		return region
	}
	return "UNKNOWN"
}

// Validate проверяет, что пара (метод, провайдер) разрешена для региона запроса.
// Все три отказа различимы для клиента (400 с отдельными кодами).
func (p *RegionPolicy) Validate(req domain.PaymentRequest) error {
	region := p.DetectRegion(req)

	cfg, ok := p.regions[region]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedRegion, region)
	}

	if !containsMethod(cfg.AvailableMethods, req.PaymentMethod) {
		return fmt.Errorf("%w: method %s in region %s", domain.ErrMethodNotAvailable, req.PaymentMethod, region)
	}

	if !containsProvider(cfg.EnabledProviders, req.Provider) {
		return fmt.Errorf("%w: provider %s in region %s", domain.ErrProviderNotEnabled, req.Provider, region)
	}

	return nil
}

func containsMethod(methods []domain.PaymentMethod, m domain.PaymentMethod) bool {
	for _, method := range methods {
		if method == m {
			return true
		}
	}
	return false
}

func containsProvider(providers []domain.PaymentProvider, p domain.PaymentProvider) bool {
	for _, provider := range providers {
		if provider == p {
			return true
		}
	}
	return false
}
