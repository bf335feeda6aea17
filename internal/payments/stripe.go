// Package payments implements the payment transport against Stripe. It
// satisfies the services.PaymentProvider contract: customer registration,
// hosted card-capture sessions, default-method resolution, and immediate
// off-session charges via confirmed PaymentIntents.
package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/garageleadly/go-leads-backend/internal/domain"
	"github.com/garageleadly/go-leads-backend/internal/services"
)

// StripeProvider talks to Stripe through an injected client handle so tests
// can point it at a stub backend.
type StripeProvider struct {
	api *client.API
	// baseURL is where setup sessions return the contractor after card
	// capture (dashboard success/cancel pages).
	baseURL string
}

// NewStripeProvider constructs a provider bound to the given secret key.
func NewStripeProvider(secretKey, baseURL string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api, baseURL: baseURL}
}

// CreateCustomer registers the contractor as a Stripe customer, carrying the
// contractor id and primary county in metadata for reconciliation.
func (p *StripeProvider) CreateCustomer(ctx context.Context, c *domain.Contractor) (string, error) {
	name := c.CompanyName
	if name == "" {
		name = c.Name
	}
	county := "unknown"
	if len(c.Counties) > 0 {
		county = c.Counties[0]
	}

	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(c.Email),
		Name:   stripe.String(name),
		Phone:  stripe.String(c.Phone),
	}
	params.AddMetadata("contractor_id", c.ID)
	params.AddMetadata("county", county)

	cust, err := p.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

// CreateSetupSession opens a Checkout session in setup mode so the contractor
// can store a card for later off-session charges.
func (p *StripeProvider) CreateSetupSession(ctx context.Context, customerID, contractorID string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSetup)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(p.baseURL + "/dashboard?payment_setup=success"),
		CancelURL:          stripe.String(p.baseURL + "/dashboard?payment_setup=cancel"),
	}
	params.AddMetadata("contractor_id", contractorID)

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// DefaultPaymentMethod returns the first stored card for the customer, or
// services.ErrNoPaymentMethod when none exists.
func (p *StripeProvider) DefaultPaymentMethod(ctx context.Context, customerID string) (string, error) {
	iter := p.api.PaymentMethods.List(&stripe.PaymentMethodListParams{
		ListParams: stripe.ListParams{Context: ctx},
		Customer:   stripe.String(customerID),
		Type:       stripe.String(string(stripe.PaymentMethodTypeCard)),
	})
	for iter.Next() {
		return iter.PaymentMethod().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", err
	}
	return "", services.ErrNoPaymentMethod
}

// Charge creates and synchronously confirms an off-session PaymentIntent for
// amountCents. The returned reference is the PaymentIntent id.
func (p *StripeProvider) Charge(ctx context.Context, customerID, paymentMethodID string, amountCents int64, leadID, contractorID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		Customer:      stripe.String(customerID),
		PaymentMethod: stripe.String(paymentMethodID),
		Description:   stripe.String(fmt.Sprintf("Garage door lead %s", leadID)),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	}
	params.AddMetadata("lead_id", leadID)
	params.AddMetadata("contractor_id", contractorID)

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}
