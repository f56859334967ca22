package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dietpal/backend/internal/llm"
	"github.com/dietpal/backend/internal/mealplan"
	"github.com/dietpal/backend/internal/types"
)

const planMaxTokens = 900

// ErrPlanNotJSON is returned when the model reply holds no parseable JSON.
var ErrPlanNotJSON = errors.New("meal plan reply did not contain JSON")

const planSystemPrompt = `You are Diet-Pal's meal planning assistant for Trinidad & Tobago.
Generate a realistic one-day meal plan that is practical, culturally relevant, and health-aware.

Rules:
- Return ONLY valid JSON (no markdown, no explanation).
- Output exactly this shape:
{
  "meals": [
    {"slot":"breakfast","name":"...","ingredients":["..."],"notes":["..."]},
    {"slot":"lunch","name":"...","ingredients":["..."],"notes":["..."]},
    {"slot":"dinner","name":"...","ingredients":["..."],"notes":["..."]}
  ],
  "meta": {"source":"ai-mealplan-v1"}
}
- Keep each meal name short.
- Keep ingredients arrays between 3 and 8 items.
- Keep notes arrays between 1 and 4 items.
- Respect allergies and medical conditions strictly.
- Prefer foods common in Trinidad & Tobago when suitable.`

// PlanService generates one-day meal plans through the provider chain.
type PlanService struct {
	generator Generator
	models    AgentModels
	provider  string
}

// NewPlanService wires the AI meal planner. provider names the configured
// provider policy for the plan metadata.
func NewPlanService(generator Generator, models AgentModels, provider string) *PlanService {
	return &PlanService{generator: generator, models: models, provider: provider}
}

// Generate asks the nutrition models for a strict-JSON plan and normalizes
// the result. It fails when no provider answers or the reply is not JSON;
// callers fall back to the rules engine.
func (s *PlanService) Generate(ctx context.Context, profile types.Profile) (*mealplan.Plan, error) {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	dietaryRestriction := profile.DietaryRestriction
	if dietaryRestriction == "" {
		dietaryRestriction = "omnivore"
	}
	userPrompt := fmt.Sprintf(
		"Create today's meal plan using this profile data:\n%s\n\nImportant constraints:\n- Conditions: %s\n- Allergies: %s\n- Dietary preference: %s",
		profileJSON,
		joinOrNone(profile.Conditions),
		joinOrNone(profile.Allergies),
		dietaryRestriction,
	)

	result, err := s.generator.Generate(ctx, []llm.Message{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, llm.Options{
		HFPreferred:     nonEmpty(s.models.HFNutrition),
		GitHubPreferred: nonEmpty(s.models.GitHubNutrition),
		MaxTokens:       planMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	block := llm.ExtractJSONBlock(result.Text)
	if block == "" {
		return nil, ErrPlanNotJSON
	}

	var raw mealplan.Plan
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse meal plan JSON: %w", err)
	}

	plan := mealplan.Normalize(raw)
	plan.Meta.Model = result.Model
	plan.Meta.Provider = s.provider
	return &plan, nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
