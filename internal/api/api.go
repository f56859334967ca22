package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dietpal/backend/config"
	"github.com/dietpal/backend/internal/service"
	"github.com/dietpal/backend/internal/store"
	"github.com/dietpal/backend/internal/userstore"
	"github.com/dietpal/backend/internal/webctx"
)

// Dependencies carries the shared components the handlers are built from.
type Dependencies struct {
	Config    *config.Config
	Generator service.Generator
	Store     *store.ContextStore
	Web       webctx.Fetcher
	Users     *userstore.Store
}

// SetupAPI builds the services and registers every route under /api.
func SetupAPI(router *gin.Engine, deps Dependencies) {
	apiGroup := router.Group("/api")
	{
		models := service.AgentModels{
			HFNutrition:     deps.Config.HFNutritionModel,
			HFMeds:          deps.Config.HFMedsModel,
			GitHubNutrition: deps.Config.GitHubNutritionModel,
			GitHubMeds:      deps.Config.GitHubMedsModel,
			GitHubDefault:   deps.Config.GitHubModel,
		}

		chatService := service.NewChatService(deps.Generator, deps.Store, deps.Web, service.NewKeywordRouter(), models)
		planService := service.NewPlanService(deps.Generator, models, deps.Config.AIProvider)
		authService := service.NewAuthService(deps.Users, deps.Config.JWTSecret)

		NewChatHandler(chatService, deps.Store).RegisterRoutes(apiGroup)
		NewMealPlanHandler(planService).RegisterRoutes(apiGroup)
		NewNearbyHandler().RegisterRoutes(apiGroup)
		NewAuthHandler(authService, deps.Users).RegisterRoutes(apiGroup)
	}
}
