package llm

import (
	"context"
	"errors"
	"net/http"
)

// discoveredModelCap bounds how many catalog models are appended to the
// candidate list after the configured ones.
const discoveredModelCap = 20

// HuggingFace completes chats against the Hugging Face router.
//
// Auth policy: the router serves every model through one token, so a 401/403
// is fatal for the whole call; the next candidate would fail the same way.
type HuggingFace struct {
	token        string
	endpoint     string
	models       []string
	defaultModel string
	catalog      *Catalog
	client       *http.Client
}

// NewHuggingFace creates the Hugging Face adapter. The catalog supplies
// discovered models and may be shared across adapters.
func NewHuggingFace(token, endpoint, defaultModel string, models []string, catalog *Catalog) *HuggingFace {
	return &HuggingFace{
		token:        token,
		endpoint:     endpoint,
		models:       models,
		defaultModel: defaultModel,
		catalog:      catalog,
		client:       &http.Client{Timeout: requestTimeout},
	}
}

// Name returns the provider identifier.
func (p *HuggingFace) Name() string { return "huggingface" }

// Configured reports whether a token is available.
func (p *HuggingFace) Configured() bool { return p.token != "" }

// Complete tries the candidate models in order and returns the first
// non-empty sanitized reply.
func (p *HuggingFace) Complete(ctx context.Context, messages []Message, preferred []string, maxTokens int) (*Result, error) {
	if !p.Configured() {
		return nil, &Error{
			Kind:     KindConfig,
			Provider: p.Name(),
			Message:  "missing Hugging Face API token, set HF_API_TOKEN",
		}
	}

	var discovered []string
	if p.catalog != nil {
		discovered = p.catalog.Models(ctx)
		if len(discovered) > discoveredModelCap {
			discovered = discovered[:discoveredModelCap]
		}
	}

	candidates := candidateModels(preferred, p.models, []string{p.defaultModel}, discovered)
	if len(candidates) == 0 {
		return nil, &Error{
			Kind:     KindConfig,
			Provider: p.Name(),
			Message:  "no Hugging Face router models available for this token",
		}
	}

	var lastErr error
	for _, model := range candidates {
		text, err := callChatCompletions(ctx, p.client, p.endpoint, p.token, model, messages, maxTokens)
		if err == nil {
			return &Result{Text: text, Model: model}, nil
		}
		if errors.Is(err, errEmptyReply) {
			lastErr = err
			continue
		}

		var httpErr *httpStatusError
		if !errors.As(err, &httpErr) {
			return nil, err
		}

		switch httpErr.status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, &Error{Kind: KindAuth, Provider: p.Name(), Message: "Hugging Face authentication failed, check HF_API_TOKEN", Details: httpErr.details}
		case http.StatusTooManyRequests:
			return nil, &Error{Kind: KindRateLimit, Provider: p.Name(), Message: "Hugging Face rate limit reached, please retry shortly", Details: httpErr.details}
		case http.StatusPaymentRequired:
			return nil, &Error{Kind: KindBilling, Provider: p.Name(), Message: "Hugging Face billing/credits issue", Details: httpErr.details}
		case http.StatusServiceUnavailable:
			return nil, &Error{Kind: KindWarmup, Provider: p.Name(), Message: "Hugging Face model is loading, retry in a few seconds", Details: httpErr.details}
		case http.StatusNotFound, http.StatusBadRequest:
			// Covers model_not_supported responses; the next candidate may work.
			lastErr = &Error{Kind: KindModelUnsupported, Provider: p.Name(), Message: "model not supported: " + model, Details: httpErr.details}
			continue
		default:
			return nil, &Error{Kind: KindUnknown, Provider: p.Name(), Message: "chat completion failed", Details: httpErr.details}
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &Error{Kind: KindConfig, Provider: p.Name(), Message: "no compatible Hugging Face model was available"}
}
