package service

import "strings"

// Routing says which topical agents should answer a message.
type Routing struct {
	Nutrition bool
	Meds      bool
}

// TopicRouter decides the routing for a message. It sits behind an interface
// so the keyword matcher can be replaced by a classifier without touching the
// orchestrator.
type TopicRouter interface {
	Route(message string) Routing
}

// KeywordRouter routes by case-insensitive substring match against curated
// keyword sets. A message matching neither set defaults to nutrition.
type KeywordRouter struct {
	nutrition []string
	meds      []string
}

// NewKeywordRouter creates a router with the default keyword sets.
func NewKeywordRouter() *KeywordRouter {
	return &KeywordRouter{
		nutrition: []string{
			"nutrition", "diet", "food", "meal", "meals", "recipe", "recipes",
			"calorie", "calories", "protein", "carb", "carbs", "fat", "fats",
			"sugar", "fiber", "vegetable", "vegetables", "fruit", "fruits",
			"breakfast", "lunch", "dinner", "snack", "snacks", "cooking",
			"ingredient", "ingredients", "restaurant", "groceries",
		},
		meds: []string{
			"med", "meds", "medication", "medications", "medicine", "drug", "drugs",
			"dose", "dosage", "side effect", "side effects", "interaction", "interactions",
			"prescription", "refill", "insulin", "metformin", "statin", "bp", "blood pressure",
		},
	}
}

func (r *KeywordRouter) Route(message string) Routing {
	text := strings.ToLower(message)

	routing := Routing{
		Nutrition: containsAny(text, r.nutrition),
		Meds:      containsAny(text, r.meds),
	}
	if !routing.Nutrition && !routing.Meds {
		routing.Nutrition = true
	}
	return routing
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
