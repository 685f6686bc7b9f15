package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"noorai/internal/app"
	"noorai/internal/auth"
	"noorai/internal/billing"
	"noorai/internal/reel"
	"noorai/internal/store"
)

const testSecret = "handler-test-secret"

type fakePipeline struct {
	lastUserID string
	lastReq    reel.Request
	result     *app.GenerateResult
	err        error
	summaries  []store.Summary
	generation *store.Generation
}

func (f *fakePipeline) Generate(_ context.Context, userID string, req reel.Request) (*app.GenerateResult, error) {
	f.lastUserID = userID
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakePipeline) ListGenerations(_ context.Context, userID string) ([]store.Summary, error) {
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries, nil
}

func (f *fakePipeline) GetGeneration(_ context.Context, userID, id string) (*store.Generation, error) {
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.generation, nil
}

type fakeBiller struct {
	url        string
	err        error
	lastPlan   string
	lastUserID string
	payload    []byte
}

func (f *fakeBiller) CheckoutURL(_ context.Context, userID, _, plan string) (string, error) {
	f.lastUserID = userID
	f.lastPlan = plan
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func (f *fakeBiller) HandleEvent(_ context.Context, payload []byte, _ string) error {
	f.payload = payload
	return f.err
}

func testRouter(pipeline *fakePipeline, biller *fakeBiller) http.Handler {
	return NewRouter(NewHandler(pipeline, biller), auth.NewVerifier(testSecret))
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + s
}

func generateBody() string {
	return `{
		"mode": "faith_advice",
		"topic": "patience in hard times",
		"lengthSeconds": 45,
		"goal": "saves",
		"language": "english",
		"tone": "calm"
	}`
}

func TestGenerateHandler(t *testing.T) {
	pipeline := &fakePipeline{
		result: &app.GenerateResult{
			ID:      "gen-1",
			Package: &reel.Package{Topic: "patience in hard times", CTA: "Save this."},
		},
	}
	router := testRouter(pipeline, &fakeBiller{})

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(generateBody()))
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if pipeline.lastUserID != "user-1" {
		t.Errorf("user = %q, want user-1", pipeline.lastUserID)
	}
	if pipeline.lastReq.Topic != "patience in hard times" {
		t.Errorf("topic = %q", pipeline.lastReq.Topic)
	}

	var got app.GenerateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "gen-1" {
		t.Errorf("id = %q, want gen-1", got.ID)
	}
}

func TestGenerateHandlerResponseShape(t *testing.T) {
	pipeline := &fakePipeline{
		result: &app.GenerateResult{
			ID:      "gen-1",
			Package: &reel.Package{Topic: "patience in hard times", CTA: "Save this."},
		},
	}
	router := testRouter(pipeline, &fakeBiller{})

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(generateBody()))
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := body["id"]; !ok {
		t.Errorf(`response lacks "id" key; got %s`, rec.Body.String())
	}
	if _, ok := body["data"]; !ok {
		t.Errorf(`response lacks "data" key; got %s`, rec.Body.String())
	}

	var pkg reel.Package
	if err := json.Unmarshal(body["data"], &pkg); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if pkg.CTA != "Save this." {
		t.Errorf("data.cta = %q", pkg.CTA)
	}
}

func TestGenerateHandlerSnakeCaseAlias(t *testing.T) {
	pipeline := &fakePipeline{result: &app.GenerateResult{ID: "gen-1", Package: &reel.Package{}}}
	router := testRouter(pipeline, &fakeBiller{})

	body := `{
		"mode": "history_facts",
		"topic": "Fall of Al-Andalus",
		"lengthSeconds": 45,
		"goal": "shares",
		"language": "bilingual",
		"tone": "calm",
		"reference_text": "chronicle excerpt",
		"source_notes": "page 12"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if pipeline.lastReq.ReferenceText != "chronicle excerpt" {
		t.Errorf("ReferenceText = %q, snake_case alias not folded", pipeline.lastReq.ReferenceText)
	}
	if pipeline.lastReq.SourceNotes != "page 12" {
		t.Errorf("SourceNotes = %q, snake_case alias not folded", pipeline.lastReq.SourceNotes)
	}
}

func TestGenerateHandlerAnonymous(t *testing.T) {
	pipeline := &fakePipeline{err: &app.PipelineError{Kind: app.KindUnauthenticated, Message: "Unauthorized"}}
	router := testRouter(pipeline, &fakeBiller{})

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(generateBody()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if pipeline.lastUserID != "" {
		t.Errorf("user = %q, want empty", pipeline.lastUserID)
	}
}

func TestGenerateHandlerBadBody(t *testing.T) {
	router := testRouter(&fakePipeline{}, &fakeBiller{})

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{not json"))
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateHandlerPipelineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *app.PipelineError
		wantStatus int
		wantBody   string
	}{
		{
			name:       "schema",
			err:        &app.PipelineError{Kind: app.KindSchema, Message: "Model did not return a valid script package. Try again."},
			wantStatus: http.StatusBadGateway,
			wantBody:   "Try again",
		},
		{
			name:       "providerStatus",
			err:        &app.PipelineError{Kind: app.KindProvider, Status: 429, Message: "rate limited"},
			wantStatus: http.StatusTooManyRequests,
			wantBody:   "rate limited",
		},
		{
			name:       "config",
			err:        &app.PipelineError{Kind: app.KindConfig, Message: "Server configuration error"},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouter(&fakePipeline{err: tt.err}, &fakeBiller{})

			req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(generateBody()))
			req.Header.Set("Authorization", bearer(t, "user-1"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want substring %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestListGenerationsHandler(t *testing.T) {
	pipeline := &fakePipeline{
		summaries: []store.Summary{{ID: "gen-2", Topic: "gratitude"}, {ID: "gen-1", Topic: "patience"}},
	}
	router := testRouter(pipeline, &fakeBiller{})

	req := httptest.NewRequest(http.MethodGet, "/api/generations", nil)
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Generations []store.Summary `json:"generations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Generations) != 2 || got.Generations[0].ID != "gen-2" {
		t.Errorf("generations = %+v", got.Generations)
	}
}

func TestGetGenerationHandler(t *testing.T) {
	pipeline := &fakePipeline{
		generation: &store.Generation{ID: "gen-1", Topic: "patience", Result: json.RawMessage(`{"cta":"x"}`)},
	}
	router := testRouter(pipeline, &fakeBiller{})

	req := httptest.NewRequest(http.MethodGet, "/api/generations/gen-1", nil)
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"result"`) {
		t.Error("response should include the result payload")
	}
}

func TestGetGenerationHandlerNotFound(t *testing.T) {
	pipeline := &fakePipeline{
		err: &app.PipelineError{Kind: app.KindInvalidRequest, Status: http.StatusNotFound, Message: "Generation not found"},
	}
	router := testRouter(pipeline, &fakeBiller{})

	req := httptest.NewRequest(http.MethodGet, "/api/generations/other", nil)
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCheckoutHandler(t *testing.T) {
	biller := &fakeBiller{url: "https://checkout.stripe.test/cs_1"}
	router := testRouter(&fakePipeline{}, biller)

	req := httptest.NewRequest(http.MethodPost, "/api/billing/checkout", strings.NewReader(`{"plan": "pro"}`))
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if biller.lastPlan != "pro" || biller.lastUserID != "user-1" {
		t.Errorf("plan = %q, user = %q", biller.lastPlan, biller.lastUserID)
	}
	if !strings.Contains(rec.Body.String(), "checkout.stripe.test") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCheckoutHandlerAnonymous(t *testing.T) {
	router := testRouter(&fakePipeline{}, &fakeBiller{})

	req := httptest.NewRequest(http.MethodPost, "/api/billing/checkout", strings.NewReader(`{"plan": "pro"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCheckoutHandlerInvalidPlan(t *testing.T) {
	router := testRouter(&fakePipeline{}, &fakeBiller{err: billing.ErrInvalidPlan})

	req := httptest.NewRequest(http.MethodPost, "/api/billing/checkout", strings.NewReader(`{"plan": "enterprise"}`))
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStripeWebhookHandler(t *testing.T) {
	biller := &fakeBiller{}
	router := testRouter(&fakePipeline{}, biller)

	payload := `{"type": "customer.subscription.updated"}`
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if string(biller.payload) != payload {
		t.Errorf("payload = %s", biller.payload)
	}
}

func TestStripeWebhookHandlerBadSignature(t *testing.T) {
	router := testRouter(&fakePipeline{}, &fakeBiller{err: billing.ErrBadSignature})

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := testRouter(&fakePipeline{}, &fakeBiller{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
