// Package mealplan defines the one-day plan shape shared by the AI planner
// and the local rules engine.
package mealplan

import (
	"strings"

	"github.com/dietpal/backend/internal/types"
)

const (
	maxIngredients = 8
	maxNotes       = 4
)

var slots = []string{"breakfast", "lunch", "dinner"}

// Meal is one slot of a daily plan.
type Meal struct {
	Slot        string   `json:"slot"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Notes       []string `json:"notes"`
}

// Meta records where a plan came from.
type Meta struct {
	Source   string `json:"source"`
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Plan is a one-day meal plan.
type Plan struct {
	Meals []Meal `json:"meals"`
	Meta  Meta   `json:"meta"`
}

// Normalize coerces a model-produced plan into exactly three slotted meals
// with bounded ingredient and note lists. Unknown slots fall back to the
// positional slot name.
func Normalize(raw Plan) Plan {
	meals := make([]Meal, 0, len(slots))
	for i, slot := range slots {
		meal := Meal{}
		if i < len(raw.Meals) {
			meal = raw.Meals[i]
		}

		normalizedSlot := strings.ToLower(strings.TrimSpace(meal.Slot))
		if !validSlot(normalizedSlot) {
			normalizedSlot = slot
		}

		name := strings.TrimSpace(meal.Name)
		if name == "" {
			name = strings.ToUpper(normalizedSlot[:1]) + normalizedSlot[1:] + " suggestion"
		}

		meals = append(meals, Meal{
			Slot:        normalizedSlot,
			Name:        name,
			Ingredients: trimList(meal.Ingredients, maxIngredients),
			Notes:       trimList(meal.Notes, maxNotes),
		})
	}

	source := raw.Meta.Source
	if source == "" {
		source = "ai-mealplan-v1"
	}
	return Plan{Meals: meals, Meta: Meta{Source: source}}
}

func validSlot(slot string) bool {
	for _, known := range slots {
		if slot == known {
			return true
		}
	}
	return false
}

func trimList(items []string, limit int) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
		if len(cleaned) == limit {
			break
		}
	}
	return cleaned
}

// GeneratePlan builds a plan from a small local rules engine. It needs no
// network access, so it always succeeds.
func GeneratePlan(profile types.Profile) Plan {
	allMeals := []Meal{
		{Name: "Grilled Fish with Callaloo", Ingredients: []string{"fish", "callaloo", "brown rice"}},
		{Name: "Stewed Lentils and Dasheen", Ingredients: []string{"lentils", "dasheen", "onion", "garlic"}},
		{Name: "Chicken Pelau (light)", Ingredients: []string{"chicken", "pigeon peas", "brown rice"}},
		{Name: "Vegetable Roti", Ingredients: []string{"roti", "pumpkin", "eggplant", "channa"}},
		{Name: "Pumpkin Soup", Ingredients: []string{"pumpkin", "onion", "garlic", "herbs"}},
	}

	filtered := make([]Meal, 0, len(allMeals))
	for _, meal := range allMeals {
		if !containsAnyIngredient(meal.Ingredients, profile.Allergies) {
			filtered = append(filtered, meal)
		}
	}
	if len(filtered) == 0 {
		filtered = allMeals
	}

	diabetes := hasCondition(profile.Conditions, "diabetes")
	hypertension := hasCondition(profile.Conditions, "hypertension")

	meals := make([]Meal, 0, len(slots))
	for i, slot := range slots {
		picked := filtered[i%len(filtered)]

		var notes []string
		if diabetes {
			if hasIngredient(picked.Ingredients, "brown rice") ||
				hasIngredient(picked.Ingredients, "lentils") ||
				hasIngredient(picked.Ingredients, "callaloo") {
				notes = append(notes, "Good for blood sugar control: fiber-rich.")
			}
			if hasIngredient(picked.Ingredients, "white rice") {
				notes = append(notes, "Consider swapping white rice for brown rice.")
			}
		}
		if hypertension {
			notes = append(notes, "Low-salt preparation recommended.")
		}

		meals = append(meals, Meal{
			Slot:        slot,
			Name:        picked.Name,
			Ingredients: picked.Ingredients,
			Notes:       notes,
		})
	}

	return Plan{Meals: meals, Meta: Meta{Source: "simple-rules-v1"}}
}

func containsAnyIngredient(ingredients, allergies []string) bool {
	for _, allergy := range allergies {
		if hasIngredient(ingredients, allergy) {
			return true
		}
	}
	return false
}

func hasIngredient(ingredients []string, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	for _, ingredient := range ingredients {
		if strings.ToLower(ingredient) == want {
			return true
		}
	}
	return false
}

func hasCondition(conditions []string, want string) bool {
	for _, condition := range conditions {
		if strings.EqualFold(strings.TrimSpace(condition), want) {
			return true
		}
	}
	return false
}
