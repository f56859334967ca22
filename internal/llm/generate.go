package llm

import (
	"context"
	"log"
)

// Provider is one chat-completions backend with model-level fallback inside.
type Provider interface {
	Name() string
	Configured() bool
	Complete(ctx context.Context, messages []Message, preferred []string, maxTokens int) (*Result, error)
}

// Options carries per-call model preferences and the output token budget.
type Options struct {
	HFPreferred     []string
	GitHubPreferred []string
	MaxTokens       int
}

// Router applies the configured provider policy. With the "auto" policy it
// tries GitHub Models first when credentials are present and falls back to
// the Hugging Face router on any error; a forced policy uses one provider
// with no fallback.
type Router struct {
	policy string
	hf     Provider
	github Provider
}

// NewRouter creates a router over the two provider adapters.
func NewRouter(policy string, hf, github Provider) *Router {
	return &Router{policy: policy, hf: hf, github: github}
}

// Generate produces one completion under the provider policy.
func (r *Router) Generate(ctx context.Context, messages []Message, opts Options) (*Result, error) {
	switch r.policy {
	case "huggingface", "hf":
		return r.hf.Complete(ctx, messages, opts.HFPreferred, opts.MaxTokens)
	case "github":
		return r.github.Complete(ctx, messages, opts.GitHubPreferred, opts.MaxTokens)
	}

	if r.github.Configured() {
		result, err := r.github.Complete(ctx, messages, opts.GitHubPreferred, opts.MaxTokens)
		if err == nil {
			return result, nil
		}
		log.Printf("GitHub Models failed, falling back to Hugging Face: %v", err)
	}

	return r.hf.Complete(ctx, messages, opts.HFPreferred, opts.MaxTokens)
}
