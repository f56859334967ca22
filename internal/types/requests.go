package types

import "github.com/google/uuid"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message            string        `json:"message"`
	Conditions         []string      `json:"conditions,omitempty"`
	Allergies          []string      `json:"allergies,omitempty"`
	DietaryRestriction string        `json:"dietaryRestriction,omitempty"`
	History            []ChatMessage `json:"history,omitempty"`
	ChatKey            string        `json:"chatKey,omitempty"`
	UserInfo           *UserInfo     `json:"userInfo,omitempty"`
	Profile            *Profile      `json:"profile,omitempty"`
	Settings           *Settings     `json:"settings,omitempty"`
}

// ChatResponse is the body of a successful POST /api/chat.
type ChatResponse struct {
	Reply            string `json:"reply"`
	Model            string `json:"model"`
	UsedWebContext   bool   `json:"usedWebContext"`
	SourcesAvailable int    `json:"sourcesAvailable"`
}

// TokenClaims is the decoded JWT payload carried through the request context.
type TokenClaims struct {
	UserID   uuid.UUID
	Email    string
	Username string
}
