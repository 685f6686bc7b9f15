package app

import (
	"context"
	"fmt"

	"noorai/internal/billing"
	"noorai/internal/openrouter"
	"noorai/internal/store"
	"noorai/pkg/config"
	"noorai/pkg/prompts"
)

// BuildService wires the full serving stack: prompts, the OpenRouter
// client, the Postgres stores and Stripe billing. The returned cleanup
// closes the database pool.
func BuildService(ctx context.Context, cfg *config.Config) (*Service, func(), error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	pg := store.NewPostgres(db)

	billingSvc := billing.New(billing.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceCreator:  cfg.StripePriceCreator,
		PricePro:      cfg.StripePricePro,
		AppURL:        cfg.AppURL,
	}, pg)

	service := NewService(ServiceOptions{
		Config:      cfg,
		Prompts:     p,
		LLM:         newLLMClient(cfg),
		Generations: pg,
		Billing:     billingSvc,
	})

	return service, func() { _ = db.Close() }, nil
}

// BuildPreviewService wires only what a single in-process generation
// needs. No database, no billing; results are not persisted.
func BuildPreviewService(cfg *config.Config) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	return NewService(ServiceOptions{
		Config:  cfg,
		Prompts: p,
		LLM:     newLLMClient(cfg),
	}), nil
}

func newLLMClient(cfg *config.Config) *openrouter.Client {
	return openrouter.NewClient(cfg.OpenRouterAPIKey, openrouter.Options{
		Model:       cfg.OpenRouter.Model,
		SiteURL:     cfg.OpenRouter.SiteURL,
		AppName:     cfg.OpenRouter.AppName,
		Temperature: cfg.OpenRouter.Temperature,
		MaxTokens:   cfg.OpenRouter.MaxTokens,
		Timeout:     cfg.OpenRouterTimeout(),
	})
}
