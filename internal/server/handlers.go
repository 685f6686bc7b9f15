package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"noorai/internal/app"
	"noorai/internal/auth"
	"noorai/internal/billing"
	"noorai/internal/reel"
	"noorai/internal/store"
)

// maxBodyBytes bounds request bodies at 1 MiB; reference text is the
// largest field and never legitimately approaches that.
const maxBodyBytes = 1 << 20

// Pipeline is the part of the application service the HTTP layer calls.
type Pipeline interface {
	Generate(ctx context.Context, userID string, req reel.Request) (*app.GenerateResult, error)
	ListGenerations(ctx context.Context, userID string) ([]store.Summary, error)
	GetGeneration(ctx context.Context, userID, id string) (*store.Generation, error)
}

// Biller is the billing surface the HTTP layer calls.
type Biller interface {
	CheckoutURL(ctx context.Context, userID, email, plan string) (string, error)
	HandleEvent(ctx context.Context, payload []byte, sigHeader string) error
}

type Handler struct {
	pipeline Pipeline
	billing  Biller
}

func NewHandler(pipeline Pipeline, billing Biller) *Handler {
	return &Handler{pipeline: pipeline, billing: billing}
}

// generateRequest is the wire shape of a generation request. The legacy
// snake_case spellings are accepted and folded into the canonical fields
// before the pipeline sees them.
type generateRequest struct {
	Mode          string `json:"mode"`
	Topic         string `json:"topic"`
	LengthSeconds int    `json:"lengthSeconds"`
	Goal          string `json:"goal"`
	Language      string `json:"language"`
	Tone          string `json:"tone"`
	ReferenceText string `json:"referenceText"`
	SourceNotes   string `json:"sourceNotes"`

	ReferenceTextAlt string `json:"reference_text"`
	SourceNotesAlt   string `json:"source_notes"`
}

func (g generateRequest) toRequest() reel.Request {
	req := reel.Request{
		Mode:          g.Mode,
		Topic:         g.Topic,
		LengthSeconds: g.LengthSeconds,
		Goal:          g.Goal,
		Language:      g.Language,
		Tone:          g.Tone,
		ReferenceText: g.ReferenceText,
		SourceNotes:   g.SourceNotes,
	}
	if req.ReferenceText == "" {
		req.ReferenceText = g.ReferenceTextAlt
	}
	if req.SourceNotes == "" {
		req.SourceNotes = g.SourceNotesAlt
	}
	return req
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var body generateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.pipeline.Generate(r.Context(), userID, body.toRequest())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ListGenerations(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	summaries, err := h.pipeline.ListGenerations(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"generations": summaries})
}

func (h *Handler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	gen, err := h.pipeline.GetGeneration(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gen)
}

type checkoutRequest struct {
	Plan  string `json:"plan"`
	Email string `json:"email"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body checkoutRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	url, err := h.billing.CheckoutURL(r.Context(), userID, body.Email, body.Plan)
	if errors.Is(err, billing.ErrInvalidPlan) {
		writeErrorMessage(w, http.StatusBadRequest, "Unknown plan")
		return
	}
	if err != nil {
		slog.Error("checkout failed", "user", userID, "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Could not start checkout")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Could not read payload")
		return
	}

	err = h.billing.HandleEvent(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, billing.ErrBadSignature) {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid signature")
		return
	}
	if err != nil {
		slog.Error("webhook processing failed", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps pipeline failures onto HTTP responses. Internal detail
// stays in the logs; the body carries only the caller-facing message.
func writeError(w http.ResponseWriter, err error) {
	if pErr, ok := app.AsPipelineError(err); ok {
		if pErr.HTTPStatus() >= http.StatusInternalServerError {
			slog.Error("request failed", "kind", pErr.Kind, "error", err)
		}
		writeErrorMessage(w, pErr.HTTPStatus(), pErr.Message)
		return
	}

	slog.Error("request failed", "error", err)
	writeErrorMessage(w, http.StatusInternalServerError, "Internal server error")
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
