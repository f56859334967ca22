package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dietpal/backend/internal/mealplan"
	"github.com/dietpal/backend/internal/service"
	"github.com/dietpal/backend/internal/types"
)

// MealPlanHandler serves one-day meal plan generation.
type MealPlanHandler struct {
	plans *service.PlanService
}

// NewMealPlanHandler creates the meal plan handler.
func NewMealPlanHandler(plans *service.PlanService) *MealPlanHandler {
	return &MealPlanHandler{plans: plans}
}

// RegisterRoutes registers the meal plan route on the group.
func (h *MealPlanHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/mealplan", h.Generate)
}

// Generate returns an AI plan when a provider answers, otherwise the local
// rules plan tagged as the fallback source.
func (h *MealPlanHandler) Generate(c *gin.Context) {
	var profile types.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile"})
		return
	}

	plan, err := h.plans.Generate(c.Request.Context(), profile)
	if err != nil {
		log.Printf("AI meal plan generation failed, using rules fallback: %v", err)
		fallback := mealplan.GeneratePlan(profile)
		fallback.Meta.Source = "simple-rules-fallback"
		c.JSON(http.StatusOK, fallback)
		return
	}

	c.JSON(http.StatusOK, plan)
}
