package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is a successful completion: the sanitized text and the model that
// produced it.
type Result struct {
	Text  string
	Model string
}

const (
	requestTimeout   = 45 * time.Second
	chatTemperature  = 0.7
	DefaultMaxTokens = 700
)

// errEmptyReply marks a completion whose text was empty after sanitization.
// Adapters treat it as a per-model failure and move on to the next candidate.
var errEmptyReply = errors.New("model returned an empty response")

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// httpStatusError carries the provider's HTTP status and error payload so the
// adapter can decide between skipping to the next model and failing the call.
type httpStatusError struct {
	status  int
	details string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("chat completion failed with status %d: %s", e.status, e.details)
}

// callChatCompletions issues a single chat-completions request and returns the
// sanitized assistant text.
func callChatCompletions(ctx context.Context, client *http.Client, endpoint, token, model string, messages []Message, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &httpStatusError{status: resp.StatusCode, details: extractAPIError(body)}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errEmptyReply
	}

	text := SanitizeReply(flattenMessageContent(result.Choices[0].Message.Content))
	if text == "" {
		return "", errEmptyReply
	}
	return text, nil
}

// flattenMessageContent accepts both plain-string content and the part-array
// form some providers return.
func flattenMessageContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	var joined []string
	for _, part := range parts {
		var str string
		if err := json.Unmarshal(part, &str); err == nil && str != "" {
			joined = append(joined, str)
			continue
		}
		var obj struct {
			Text    string `json:"text"`
			Content string `json:"content"`
		}
		if err := json.Unmarshal(part, &obj); err != nil {
			continue
		}
		if obj.Text != "" {
			joined = append(joined, obj.Text)
		} else if obj.Content != "" {
			joined = append(joined, obj.Content)
		}
	}
	return strings.Join(joined, "\n")
}

// extractAPIError pulls a readable message out of a provider error body.
func extractAPIError(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "empty response body"
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}

	if len(trimmed) > 2000 {
		return trimmed[:2000] + "..."
	}
	return trimmed
}

// candidateModels merges the supplied model lists into one try-order,
// dropping blanks and keeping the first occurrence of each identifier.
func candidateModels(lists ...[]string) []string {
	seen := make(map[string]bool)
	var models []string
	for _, list := range lists {
		for _, model := range list {
			model = strings.TrimSpace(model)
			if model == "" || seen[model] {
				continue
			}
			seen[model] = true
			models = append(models, model)
		}
	}
	return models
}
