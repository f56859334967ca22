package mealplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dietpal/backend/internal/types"
)

func TestGeneratePlanCoversThreeSlots(t *testing.T) {
	plan := GeneratePlan(types.Profile{})

	require.Len(t, plan.Meals, 3)
	assert.Equal(t, "breakfast", plan.Meals[0].Slot)
	assert.Equal(t, "lunch", plan.Meals[1].Slot)
	assert.Equal(t, "dinner", plan.Meals[2].Slot)
	assert.Equal(t, "simple-rules-v1", plan.Meta.Source)
}

func TestGeneratePlanFiltersAllergies(t *testing.T) {
	plan := GeneratePlan(types.Profile{Allergies: []string{"fish"}})

	for _, meal := range plan.Meals {
		assert.NotContains(t, meal.Ingredients, "fish")
	}
}

func TestGeneratePlanAddsConditionNotes(t *testing.T) {
	plan := GeneratePlan(types.Profile{Conditions: []string{"diabetes", "hypertension"}})

	// The first meal carries fiber-rich ingredients, so both notes apply.
	require.NotEmpty(t, plan.Meals[0].Notes)
	assert.Contains(t, plan.Meals[0].Notes, "Good for blood sugar control: fiber-rich.")
	assert.Contains(t, plan.Meals[0].Notes, "Low-salt preparation recommended.")
}

func TestNormalizeFillsMissingSlotsAndNames(t *testing.T) {
	plan := Normalize(Plan{Meals: []Meal{
		{Slot: "BREAKFAST", Name: "Fruit bowl"},
		{Slot: "bogus", Name: ""},
	}})

	require.Len(t, plan.Meals, 3)
	assert.Equal(t, "breakfast", plan.Meals[0].Slot)
	assert.Equal(t, "Fruit bowl", plan.Meals[0].Name)
	assert.Equal(t, "lunch", plan.Meals[1].Slot)
	assert.Equal(t, "Lunch suggestion", plan.Meals[1].Name)
	assert.Equal(t, "dinner", plan.Meals[2].Slot)
	assert.Equal(t, "Dinner suggestion", plan.Meals[2].Name)
	assert.Equal(t, "ai-mealplan-v1", plan.Meta.Source)
}

func TestNormalizeBoundsLists(t *testing.T) {
	long := make([]string, 12)
	for i := range long {
		long[i] = "item"
	}

	plan := Normalize(Plan{Meals: []Meal{{Slot: "breakfast", Name: "x", Ingredients: long, Notes: long}}})
	assert.Len(t, plan.Meals[0].Ingredients, 8)
	assert.Len(t, plan.Meals[0].Notes, 4)
}
