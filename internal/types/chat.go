package types

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ChatMessage is one turn in a conversation, oldest-first in storage.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	TS      string `json:"ts,omitempty"`
}

// FlexString accepts both string and numeric JSON values. Client payloads are
// inconsistent about whether age/weight/height arrive as numbers or strings.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num == float64(int64(num)) {
			*s = FlexString(fmt.Sprintf("%d", int64(num)))
		} else {
			*s = FlexString(fmt.Sprintf("%g", num))
		}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}

	return fmt.Errorf("invalid value %s", string(data))
}

func (s FlexString) String() string { return string(s) }

// Medication is one entry of a user's medication list.
type Medication struct {
	Name          string `json:"name,omitempty"`
	Concentration string `json:"concentration,omitempty"`
	Dosage        string `json:"dosage,omitempty"`
	Frequency     string `json:"frequency,omitempty"`
}

// Format renders the medication as "name concentration dosage (frequency)".
func (m Medication) Format() string {
	name := m.Name
	if name == "" {
		name = "Medication"
	}
	parts := []string{name}
	if m.Concentration != "" {
		parts = append(parts, m.Concentration)
	}
	if m.Dosage != "" {
		parts = append(parts, m.Dosage)
	}
	return strings.TrimSpace(strings.Join(parts, " ") + " (" + m.Frequency + ")")
}

// UserInfo identifies the account behind a conversation.
type UserInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

var displayNameSeparators = regexp.MustCompile(`[._-]+`)

// DisplayName returns the name to address the user by, deriving one from the
// email local part when no name is set.
func (u UserInfo) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return ""
	}
	local, _, _ := strings.Cut(email, "@")
	return strings.TrimSpace(displayNameSeparators.ReplaceAllString(local, " "))
}

// Profile is the health profile attached to a conversation.
type Profile struct {
	Age                FlexString   `json:"age,omitempty"`
	Weight             FlexString   `json:"weight,omitempty"`
	Height             FlexString   `json:"height,omitempty"`
	Gender             string       `json:"gender,omitempty"`
	Conditions         []string     `json:"conditions,omitempty"`
	Allergies          []string     `json:"allergies,omitempty"`
	DietaryRestriction string       `json:"dietaryRestriction,omitempty"`
	Medications        []Medication `json:"medications,omitempty"`
}

// UserContext is the persisted per-conversation account and profile state.
type UserContext struct {
	UserInfo  UserInfo `json:"userInfo"`
	Profile   Profile  `json:"profile"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

// AISettings tunes reply generation.
type AISettings struct {
	ResponseLength string `json:"responseLength,omitempty"`
	Tone           string `json:"tone,omitempty"`
	IncludeSources bool   `json:"includeSources,omitempty"`
	// MultiAgent defaults to true when absent.
	MultiAgent *bool `json:"multiAgent,omitempty"`
}

// MultiAgentEnabled resolves the tri-state flag.
func (s AISettings) MultiAgentEnabled() bool {
	return s.MultiAgent == nil || *s.MultiAgent
}

// UnitSettings are the user's preferred measurement units.
type UnitSettings struct {
	Weight  string `json:"weight,omitempty"`
	Height  string `json:"height,omitempty"`
	Glucose string `json:"glucose,omitempty"`
}

// Settings is the caller-supplied settings envelope.
type Settings struct {
	AI    AISettings   `json:"ai,omitempty"`
	Units UnitSettings `json:"units,omitempty"`
}
