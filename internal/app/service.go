package app

import (
	"context"

	"noorai/internal/billing"
	"noorai/internal/store"
	"noorai/pkg/config"
	"noorai/pkg/prompts"
)

// Completer produces one model completion for a system/user prompt pair.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Service struct {
	cfg         *config.Config
	prompts     *prompts.Prompts
	llm         Completer
	generations store.GenerationStore
	billing     *billing.Service
}

type ServiceOptions struct {
	Config      *config.Config
	Prompts     *prompts.Prompts
	LLM         Completer
	Generations store.GenerationStore
	Billing     *billing.Service
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:         opts.Config,
		prompts:     opts.Prompts,
		llm:         opts.LLM,
		generations: opts.Generations,
		billing:     opts.Billing,
	}
}

func (s *Service) Config() *config.Config {
	return s.cfg
}

func (s *Service) Billing() *billing.Service {
	return s.billing
}
