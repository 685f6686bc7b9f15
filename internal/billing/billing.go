package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/webhook"

	"noorai/internal/store"
)

const (
	PlanFree    = "free"
	PlanCreator = "creator"
	PlanPro     = "pro"
)

var (
	ErrInvalidPlan   = errors.New("invalid plan")
	ErrBadSignature  = errors.New("invalid webhook signature")
	ErrNotConfigured = errors.New("stripe is not configured")
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceCreator  string
	PricePro      string
	AppURL        string
}

// Service creates checkout sessions and reconciles subscription events
// into the profile store. The Stripe client key is set once here and
// never mutated afterwards.
type Service struct {
	cfg      Config
	profiles store.ProfileStore
}

func New(cfg Config, profiles store.ProfileStore) *Service {
	if cfg.SecretKey != "" {
		stripe.Key = cfg.SecretKey
	}
	return &Service{cfg: cfg, profiles: profiles}
}

// CheckoutURL creates a subscription checkout session for the given plan,
// creating and recording the Stripe customer on first use.
func (s *Service) CheckoutURL(ctx context.Context, userID, email, plan string) (string, error) {
	if s.cfg.SecretKey == "" {
		return "", ErrNotConfigured
	}

	priceID := s.priceForPlan(plan)
	if priceID == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}

	customerID, err := s.ensureCustomer(ctx, userID, email)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(s.cfg.AppURL + "/dashboard?billing=success"),
		CancelURL:  stripe.String(s.cfg.AppURL + "/dashboard?billing=cancel"),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return sess.URL, nil
}

func (s *Service) ensureCustomer(ctx context.Context, userID, email string) (string, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrProfileNotFound) {
		return "", err
	}
	if profile != nil && profile.StripeCustomerID != "" {
		return profile.StripeCustomerID, nil
	}
	if profile != nil && email == "" {
		email = profile.Email
	}

	params := &stripe.CustomerParams{}
	if email != "" {
		params.Email = stripe.String(email)
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}

	if err := s.profiles.SetStripeCustomer(ctx, userID, email, cust.ID); err != nil {
		return "", err
	}

	return cust.ID, nil
}

// HandleEvent verifies a webhook payload and applies subscription state
// changes to the owning profile, keyed by Stripe customer id.
func (s *Service) HandleEvent(ctx context.Context, payload []byte, sigHeader string) error {
	if s.cfg.WebhookSecret == "" {
		return ErrNotConfigured
	}

	// Tolerate API version drift between Stripe and the pinned SDK
	// version; only the fields read below matter here.
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	switch string(event.Type) {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
		return s.applySubscription(ctx, event.Data.Raw)
	default:
		slog.Debug("ignoring stripe event", "type", event.Type)
		return nil
	}
}

func (s *Service) applySubscription(ctx context.Context, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("parse subscription event: %w", err)
	}
	if sub.Customer == nil {
		return fmt.Errorf("subscription event without customer")
	}

	var priceID string
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}
	plan := s.planForPrice(priceID)

	err := s.profiles.UpdateSubscriptionByCustomer(ctx, sub.Customer.ID, plan, sub.ID, string(sub.Status))
	if errors.Is(err, store.ErrProfileNotFound) {
		// Customer created outside this deployment; nothing to reconcile.
		slog.Warn("stripe event for unknown customer", "customer", sub.Customer.ID)
		return nil
	}
	return err
}

func (s *Service) priceForPlan(plan string) string {
	switch plan {
	case PlanCreator:
		return s.cfg.PriceCreator
	case PlanPro:
		return s.cfg.PricePro
	default:
		return ""
	}
}

func (s *Service) planForPrice(priceID string) string {
	switch {
	case priceID != "" && priceID == s.cfg.PriceCreator:
		return PlanCreator
	case priceID != "" && priceID == s.cfg.PricePro:
		return PlanPro
	default:
		return PlanFree
	}
}
