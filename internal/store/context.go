package store

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/dietpal/backend/internal/types"
)

// historyCap bounds the stored conversation; truncation drops oldest first.
const historyCap = 40

// ContextStore persists conversation history and merged user context per
// sanitized chat key. Loads are tolerant: missing or malformed data reads as
// empty rather than failing a chat turn.
type ContextStore struct {
	kv KV
}

// NewContextStore creates a context store over the given backend.
func NewContextStore(kv KV) *ContextStore {
	return &ContextStore{kv: kv}
}

// LoadHistory returns the stored messages for a conversation, oldest first.
func (s *ContextStore) LoadHistory(ctx context.Context, chatKey string) []types.ChatMessage {
	key := SanitizeKey(chatKey)
	if key == "" {
		return nil
	}

	data, err := s.kv.Get(ctx, NamespaceHistory, key)
	if err != nil {
		log.Printf("Failed to load chat history for %s: %v", key, err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var history []types.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		return nil
	}
	return history
}

// AppendHistory adds entries to the stored conversation, skipping blank
// content, deduplicating consecutive identical (role, content) pairs and
// keeping at most the newest 40 messages.
func (s *ContextStore) AppendHistory(ctx context.Context, chatKey string, entries []types.ChatMessage) {
	key := SanitizeKey(chatKey)
	if key == "" {
		return
	}

	merged := s.LoadHistory(ctx, chatKey)
	for _, entry := range entries {
		content := strings.TrimSpace(entry.Content)
		if content == "" {
			continue
		}
		role := "assistant"
		if entry.Role == "user" {
			role = "user"
		}
		if len(merged) > 0 {
			last := merged[len(merged)-1]
			if last.Role == role && last.Content == content {
				continue
			}
		}
		merged = append(merged, types.ChatMessage{
			Role:    role,
			Content: content,
			TS:      time.Now().UTC().Format(time.RFC3339),
		})
	}

	if len(merged) > historyCap {
		merged = merged[len(merged)-historyCap:]
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal chat history for %s: %v", key, err)
		return
	}
	if err := s.kv.Set(ctx, NamespaceHistory, key, data); err != nil {
		log.Printf("Failed to save chat history for %s: %v", key, err)
	}
}

// LoadUserContext returns the stored account/profile context, empty if none.
func (s *ContextStore) LoadUserContext(ctx context.Context, chatKey string) types.UserContext {
	key := SanitizeKey(chatKey)
	if key == "" {
		return types.UserContext{}
	}

	data, err := s.kv.Get(ctx, NamespaceContext, key)
	if err != nil {
		log.Printf("Failed to load user context for %s: %v", key, err)
		return types.UserContext{}
	}
	if len(data) == 0 {
		return types.UserContext{}
	}

	var uc types.UserContext
	if err := json.Unmarshal(data, &uc); err != nil {
		return types.UserContext{}
	}
	return uc
}

// SaveUserContext rewrites the stored context for a conversation.
func (s *ContextStore) SaveUserContext(ctx context.Context, chatKey string, uc types.UserContext) {
	key := SanitizeKey(chatKey)
	if key == "" {
		return
	}

	data, err := json.MarshalIndent(uc, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal user context for %s: %v", key, err)
		return
	}
	if err := s.kv.Set(ctx, NamespaceContext, key, data); err != nil {
		log.Printf("Failed to save user context for %s: %v", key, err)
	}
}

// Clear deletes both the history and the user context for a conversation.
func (s *ContextStore) Clear(ctx context.Context, chatKey string) error {
	key := SanitizeKey(chatKey)
	if key == "" {
		return nil
	}
	if err := s.kv.Delete(ctx, NamespaceHistory, key); err != nil {
		return err
	}
	return s.kv.Delete(ctx, NamespaceContext, key)
}

// MergeUserContext folds request-supplied account and profile data into the
// stored context. Incoming non-zero fields win; nested objects merge
// field-by-field. A display name is derived from the email local part when
// none is set.
func MergeUserContext(existing types.UserContext, info *types.UserInfo, profile *types.Profile) types.UserContext {
	merged := existing

	if info != nil {
		if info.Name != "" {
			merged.UserInfo.Name = info.Name
		}
		if info.Email != "" {
			merged.UserInfo.Email = info.Email
		}
	}

	if merged.UserInfo.Name == "" && merged.UserInfo.Email != "" {
		if local, _, _ := strings.Cut(merged.UserInfo.Email, "@"); local != "" {
			merged.UserInfo.Name = local
		}
	}

	if profile != nil {
		if profile.Age != "" {
			merged.Profile.Age = profile.Age
		}
		if profile.Weight != "" {
			merged.Profile.Weight = profile.Weight
		}
		if profile.Height != "" {
			merged.Profile.Height = profile.Height
		}
		if profile.Gender != "" {
			merged.Profile.Gender = profile.Gender
		}
		if len(profile.Conditions) > 0 {
			merged.Profile.Conditions = profile.Conditions
		}
		if len(profile.Allergies) > 0 {
			merged.Profile.Allergies = profile.Allergies
		}
		if profile.DietaryRestriction != "" {
			merged.Profile.DietaryRestriction = profile.DietaryRestriction
		}
		if len(profile.Medications) > 0 {
			merged.Profile.Medications = profile.Medications
		}
	}

	merged.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return merged
}
