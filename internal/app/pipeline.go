package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"noorai/internal/openrouter"
	"noorai/internal/reel"
	"noorai/internal/store"
	"noorai/pkg/prompts"
)

// rawLogLimit caps how much model output lands in logs when validation
// fails.
const rawLogLimit = 500

// GenerateResult is a persisted script package together with its record
// id. The package travels under "data" on the wire.
type GenerateResult struct {
	ID      string        `json:"id"`
	Package *reel.Package `json:"data"`
}

// Generate runs the full pipeline for an authenticated user and persists
// the validated package. Identity is checked once here; everything below
// assumes a valid owner.
func (s *Service) Generate(ctx context.Context, userID string, req reel.Request) (*GenerateResult, error) {
	if userID == "" {
		return nil, errUnauthenticated()
	}

	pkg, err := s.run(ctx, &req)
	if err != nil {
		return nil, err
	}

	result, err := json.Marshal(pkg)
	if err != nil {
		return nil, errConfig(fmt.Errorf("encode package: %w", err))
	}

	id, err := s.generations.Insert(ctx, &store.Generation{
		UserID:        userID,
		Mode:          req.Mode,
		Topic:         req.Topic,
		LengthSeconds: req.LengthSeconds,
		Goal:          req.Goal,
		Language:      req.Language,
		Tone:          req.Tone,
		Result:        result,
	})
	if err != nil {
		slog.Error("failed to persist generation", "user", userID, "error", err)
		return nil, errPersistence(err)
	}

	slog.Info("generation complete", "id", id, "user", userID, "topic", req.Topic)
	return &GenerateResult{ID: id, Package: pkg}, nil
}

// Preview runs the pipeline without identity or persistence. Used by the
// one-shot CLI path.
func (s *Service) Preview(ctx context.Context, req reel.Request) (*reel.Package, error) {
	return s.run(ctx, &req)
}

// run executes the stages in order: normalize and validate the request,
// render the prompts, call the model once, recover JSON and validate the
// package. A schema failure surfaces to the caller instead of retrying.
func (s *Service) run(ctx context.Context, req *reel.Request) (*reel.Package, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, errInvalid(err)
	}

	userPrompt, err := s.prompts.RenderPackage(packageParams(*req))
	if err != nil {
		return nil, errConfig(fmt.Errorf("render prompt: %w", err))
	}

	slog.Debug("requesting completion", "model", s.cfg.OpenRouter.Model, "topic", req.Topic)
	raw, err := s.llm.Complete(ctx, s.prompts.RenderSystem(), userPrompt)
	if err != nil {
		return nil, classifyProviderError(err)
	}

	candidate, err := reel.ExtractJSON(raw)
	if err != nil {
		slog.Warn("no JSON object in model output", "raw", truncate(raw, rawLogLimit))
		return nil, errSchema(err)
	}

	pkg, err := reel.ParsePackage(candidate)
	if err != nil {
		slog.Warn("model output failed validation", "error", err, "raw", truncate(raw, rawLogLimit))
		return nil, errSchema(err)
	}

	return pkg, nil
}

// ListGenerations returns the caller's history, newest first.
func (s *Service) ListGenerations(ctx context.Context, userID string) ([]store.Summary, error) {
	if userID == "" {
		return nil, errUnauthenticated()
	}

	summaries, err := s.generations.ListByOwner(ctx, userID)
	if err != nil {
		return nil, errPersistence(err)
	}
	return summaries, nil
}

// GetGeneration returns one owned record with its full result payload.
// Records owned by someone else look identical to missing ones.
func (s *Service) GetGeneration(ctx context.Context, userID, id string) (*store.Generation, error) {
	if userID == "" {
		return nil, errUnauthenticated()
	}

	gen, err := s.generations.GetByID(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &PipelineError{
			Kind:    KindInvalidRequest,
			Status:  http.StatusNotFound,
			Message: "Generation not found",
			Err:     err,
		}
	}
	if err != nil {
		return nil, errPersistence(err)
	}
	return gen, nil
}

func classifyProviderError(err error) *PipelineError {
	if errors.Is(err, openrouter.ErrMissingAPIKey) {
		return errConfig(err)
	}

	var apiErr *openrouter.APIError
	if errors.As(err, &apiErr) {
		return errProvider(apiErr.StatusCode, apiErr.Message, err)
	}

	// Transport failures and timeouts carry no upstream status.
	return errProvider(0, "Generation service unavailable", err)
}

func packageParams(req reel.Request) prompts.PackageParams {
	return prompts.PackageParams{
		Mode:          req.Mode,
		Topic:         req.Topic,
		LengthSeconds: req.LengthSeconds,
		Goal:          req.Goal,
		Language:      req.Language,
		Tone:          req.Tone,
		ReferenceText: req.ReferenceText,
		SourceNotes:   req.SourceNotes,
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
