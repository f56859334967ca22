package llm

import (
	"context"
	"errors"
	"net/http"
)

// GitHub completes chats against the GitHub Models chat-completions endpoint.
//
// Auth policy: unlike the Hugging Face router, model access varies per
// credential, so 401/403/404 are skippable and the next candidate is tried.
type GitHub struct {
	apiKey       string
	endpoint     string
	models       []string
	defaultModel string
	client       *http.Client
}

// NewGitHub creates the GitHub Models adapter.
func NewGitHub(apiKey, endpoint, defaultModel string, models []string) *GitHub {
	return &GitHub{
		apiKey:       apiKey,
		endpoint:     endpoint,
		models:       models,
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: requestTimeout},
	}
}

// Name returns the provider identifier.
func (p *GitHub) Name() string { return "github" }

// Configured reports whether an API key is available.
func (p *GitHub) Configured() bool { return p.apiKey != "" }

// Complete tries the candidate models in order and returns the first
// non-empty sanitized reply.
func (p *GitHub) Complete(ctx context.Context, messages []Message, preferred []string, maxTokens int) (*Result, error) {
	if !p.Configured() {
		return nil, &Error{
			Kind:     KindConfig,
			Provider: p.Name(),
			Message:  "missing GitHub Models API key, set GITHUB_MODELS_API_KEY",
		}
	}

	candidates := candidateModels(preferred, p.models, []string{p.defaultModel})
	if len(candidates) == 0 {
		return nil, &Error{
			Kind:     KindConfig,
			Provider: p.Name(),
			Message:  "no GitHub models configured, set GITHUB_MODEL or GITHUB_MODELS",
		}
	}

	var lastErr error
	for _, model := range candidates {
		text, err := callChatCompletions(ctx, p.client, p.endpoint, p.apiKey, model, messages, maxTokens)
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
			lastErr = &Error{Kind: KindAuth, Provider: p.Name(), Message: "GitHub Models rejected the credential for " + model, Details: httpErr.details}
			continue
		case http.StatusNotFound:
			lastErr = &Error{Kind: KindModelUnsupported, Provider: p.Name(), Message: "model not supported: " + model, Details: httpErr.details}
			continue
		case http.StatusTooManyRequests:
			return nil, &Error{Kind: KindRateLimit, Provider: p.Name(), Message: "GitHub Models rate limit reached, please retry shortly", Details: httpErr.details}
		case http.StatusPaymentRequired:
			return nil, &Error{Kind: KindBilling, Provider: p.Name(), Message: "GitHub Models billing/credits issue", Details: httpErr.details}
		default:
			return nil, &Error{Kind: KindUnknown, Provider: p.Name(), Message: "chat completion failed", Details: httpErr.details}
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &Error{Kind: KindConfig, Provider: p.Name(), Message: "no compatible GitHub model was available"}
}
