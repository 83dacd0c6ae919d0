// Package registry maps gateway names to driver constructors so the HTTP
// layer can build a fresh driver per request.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cassiomorais/multipay/internal/config"
	"github.com/cassiomorais/multipay/pkg/drivers/idpay"
	"github.com/cassiomorais/multipay/pkg/drivers/saman"
	"github.com/cassiomorais/multipay/pkg/drivers/sepordeh"
	"github.com/cassiomorais/multipay/pkg/drivers/zarinpal"
	"github.com/cassiomorais/multipay/pkg/gateway"
)

// ErrUnknownGateway is returned when no constructor is registered under the
// requested name.
var ErrUnknownGateway = errors.New("unknown gateway")

// Constructor builds a driver bound to the given invoice. A driver carries
// per-payment state, so one is built per request.
type Constructor func(invoice *gateway.Invoice) (gateway.Driver, error)

type Registry struct {
	constructors map[string]Constructor
}

func New() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

func (r *Registry) Register(name string, c Constructor) {
	r.constructors[name] = c
}

// Driver builds a driver for the named gateway bound to the invoice.
func (r *Registry) Driver(name string, invoice *gateway.Invoice) (gateway.Driver, error) {
	c, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGateway, name)
	}
	return c(invoice)
}

// Names lists the registered gateways in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromConfig registers a constructor for every gateway whose credential is
// configured.
func FromConfig(gw config.GatewaysConfig) *Registry {
	r := New()

	if gw.Idpay.APIKey != "" {
		cfg := idpay.Config{
			MerchantID:         gw.Idpay.APIKey,
			CallbackURL:        gw.CallbackURL(idpay.Name),
			APIPurchaseURL:     gw.Idpay.APIPurchaseURL,
			APIPaymentURL:      gw.Idpay.APIPaymentURL,
			SandboxPaymentURL:  gw.Idpay.SandboxPaymentURL,
			APIVerificationURL: gw.Idpay.APIVerificationURL,
			Sandbox:            gw.Idpay.Sandbox,
			Description:        gw.Idpay.Description,
		}
		r.Register(idpay.Name, func(inv *gateway.Invoice) (gateway.Driver, error) {
			return idpay.New(inv, cfg, nil)
		})
	}

	if gw.Saman.MerchantID != "" {
		cfg := saman.Config{
			MerchantID:         gw.Saman.MerchantID,
			CallbackURL:        gw.CallbackURL(saman.Name),
			APIPurchaseURL:     gw.Saman.APIPurchaseURL,
			APIPaymentURL:      gw.Saman.APIPaymentURL,
			APIVerificationURL: gw.Saman.APIVerificationURL,
		}
		r.Register(saman.Name, func(inv *gateway.Invoice) (gateway.Driver, error) {
			return saman.New(inv, cfg)
		})
	}

	if gw.SamanOnline.TerminalID != "" {
		cfg := saman.OnlineConfig{
			TerminalID:         gw.SamanOnline.TerminalID,
			CallbackURL:        gw.CallbackURL(saman.OnlineName),
			APIPurchaseURL:     gw.SamanOnline.APIPurchaseURL,
			APIPaymentURL:      gw.SamanOnline.APIPaymentURL,
			APIVerificationURL: gw.SamanOnline.APIVerificationURL,
		}
		r.Register(saman.OnlineName, func(inv *gateway.Invoice) (gateway.Driver, error) {
			return saman.NewOnlinePG(inv, cfg)
		})
	}

	if gw.Sepordeh.MerchantID != "" {
		cfg := sepordeh.Config{
			MerchantID:          gw.Sepordeh.MerchantID,
			CallbackURL:         gw.CallbackURL(sepordeh.Name),
			APIPurchaseURL:      gw.Sepordeh.APIPurchaseURL,
			APIPaymentURL:       gw.Sepordeh.APIPaymentURL,
			APIDirectPaymentURL: gw.Sepordeh.APIDirectPaymentURL,
			APIVerificationURL:  gw.Sepordeh.APIVerificationURL,
			Mode:                gw.Sepordeh.Mode,
			Description:         gw.Sepordeh.Description,
		}
		r.Register(sepordeh.Name, func(inv *gateway.Invoice) (gateway.Driver, error) {
			return sepordeh.New(inv, cfg, nil)
		})
	}

	if gw.Zarinpal.MerchantID != "" {
		cfg := zarinpal.Config{
			MerchantID:  gw.Zarinpal.MerchantID,
			CallbackURL: gw.CallbackURL(zarinpal.Name),
			Mode:        gw.Zarinpal.Mode,
			Description: gw.Zarinpal.Description,
		}
		r.Register(zarinpal.Name, func(inv *gateway.Invoice) (gateway.Driver, error) {
			return zarinpal.New(inv, cfg, nil)
		})
	}

	return r
}
