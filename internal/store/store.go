package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Sentinel errors so callers can use errors.Is instead of string matching.
var (
	ErrNotFound        = errors.New("generation not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// Generation is one stored pipeline result. Rows are written once and
// never updated.
type Generation struct {
	ID            string          `json:"id"`
	UserID        string          `json:"-"`
	Mode          string          `json:"mode"`
	Topic         string          `json:"topic"`
	LengthSeconds int             `json:"length_seconds"`
	Goal          string          `json:"goal"`
	Language      string          `json:"language"`
	Tone          string          `json:"tone"`
	Result        json.RawMessage `json:"result"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Summary is the history-listing projection of a Generation, without the
// result payload.
type Summary struct {
	ID            string    `json:"id"`
	Mode          string    `json:"mode"`
	Topic         string    `json:"topic"`
	LengthSeconds int       `json:"length_seconds"`
	Goal          string    `json:"goal"`
	Language      string    `json:"language"`
	Tone          string    `json:"tone"`
	CreatedAt     time.Time `json:"created_at"`
}

// Profile carries the billing state reconciled from Stripe events.
type Profile struct {
	ID                   string `json:"id"`
	Email                string `json:"email"`
	Plan                 string `json:"plan"`
	StripeCustomerID     string `json:"-"`
	StripeSubscriptionID string `json:"-"`
	SubscriptionStatus   string `json:"subscription_status"`
}

// GenerationStore is what the pipeline and the read handlers depend on.
type GenerationStore interface {
	Insert(ctx context.Context, gen *Generation) (string, error)
	ListByOwner(ctx context.Context, userID string) ([]Summary, error)
	GetByID(ctx context.Context, userID, id string) (*Generation, error)
}

// ProfileStore is what billing reconciliation depends on.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SetStripeCustomer(ctx context.Context, userID, email, customerID string) error
	UpdateSubscriptionByCustomer(ctx context.Context, customerID, plan, subscriptionID, status string) error
}
