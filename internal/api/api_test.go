package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dietpal/backend/internal/llm"
	"github.com/dietpal/backend/internal/service"
	"github.com/dietpal/backend/internal/store"
	"github.com/dietpal/backend/internal/userstore"
	"github.com/dietpal/backend/internal/webctx"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGenerator struct {
	result *llm.Result
	err    error
}

func (g *stubGenerator) Generate(_ context.Context, _ []llm.Message, _ llm.Options) (*llm.Result, error) {
	return g.result, g.err
}

type noWebFetcher struct{}

func (noWebFetcher) Fetch(context.Context, string) webctx.Result { return webctx.Result{} }

func newTestRouter(t *testing.T, generator service.Generator) (*gin.Engine, *store.ContextStore) {
	t.Helper()

	contextStore := store.NewContextStore(store.NewFileKV(t.TempDir()))
	models := service.AgentModels{GitHubDefault: "gpt-4o-mini"}

	chatService := service.NewChatService(generator, contextStore, noWebFetcher{}, service.NewKeywordRouter(), models)
	planService := service.NewPlanService(generator, models, "auto")

	users := userstore.New(t.TempDir())
	authService := service.NewAuthService(users, "test-secret")

	router := gin.New()
	apiGroup := router.Group("/api")
	NewChatHandler(chatService, contextStore).RegisterRoutes(apiGroup)
	NewMealPlanHandler(planService).RegisterRoutes(apiGroup)
	NewNearbyHandler().RegisterRoutes(apiGroup)
	NewAuthHandler(authService, users).RegisterRoutes(apiGroup)

	return router, contextStore
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatRequiresMessage(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{result: &llm.Result{Text: "x", Model: "m"}})

	w := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": ""}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "message required")
}

func TestChatReturnsReply(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{result: &llm.Result{Text: "Try callaloo.", Model: "model-a"}})

	w := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": "What should I eat?"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Try callaloo.", resp["reply"])
	assert.Equal(t, "model-a", resp["model"])
	assert.Equal(t, false, resp["usedWebContext"])
}

func TestChatAlwaysAnswersWhenProvidersAreDown(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{
		err: &llm.Error{Kind: llm.KindRateLimit, Provider: "huggingface", Message: "rate limited"},
	})

	w := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": "What should I eat?"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "local-fallback", resp["model"])
}

func TestChatSingleAgentSurfacesProviderStatus(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{
		err: &llm.Error{Kind: llm.KindRateLimit, Provider: "github", Message: "rate limited", Details: "slow down"},
	})

	body := map[string]any{
		"message":  "What should I eat?",
		"settings": map[string]any{"ai": map[string]any{"multiAgent": false}},
	}
	w := doJSON(t, router, http.MethodPost, "/api/chat", body, "")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit")
	assert.Contains(t, w.Body.String(), "slow down")
}

func TestChatClear(t *testing.T) {
	router, contextStore := newTestRouter(t, &stubGenerator{result: &llm.Result{Text: "ok", Model: "m"}})
	ctx := context.Background()

	w := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{
		"message": "Suggest a meal",
		"chatKey": "alice",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, contextStore.LoadHistory(ctx, "alice"))

	w = doJSON(t, router, http.MethodPost, "/api/chat/clear", map[string]string{"chatKey": "alice"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "true")
	assert.Empty(t, contextStore.LoadHistory(ctx, "alice"))
}

func TestChatClearRequiresChatKey(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{result: &llm.Result{Text: "ok", Model: "m"}})

	w := doJSON(t, router, http.MethodPost, "/api/chat/clear", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "chatKey required")
}

func TestMealPlanUsesAIResult(t *testing.T) {
	planJSON := `{"meals":[{"slot":"breakfast","name":"Fruit bowl","ingredients":["fruit"],"notes":["light"]}],"meta":{"source":"ai-mealplan-v1"}}`
	router, _ := newTestRouter(t, &stubGenerator{result: &llm.Result{Text: planJSON, Model: "model-a"}})

	w := doJSON(t, router, http.MethodPost, "/api/mealplan", map[string]any{"conditions": []string{"diabetes"}}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Meals []struct {
			Slot string `json:"slot"`
			Name string `json:"name"`
		} `json:"meals"`
		Meta struct {
			Source string `json:"source"`
			Model  string `json:"model"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Meals, 3)
	assert.Equal(t, "Fruit bowl", resp.Meals[0].Name)
	assert.Equal(t, "ai-mealplan-v1", resp.Meta.Source)
	assert.Equal(t, "model-a", resp.Meta.Model)
}

func TestMealPlanFallsBackToRules(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{
		err: &llm.Error{Kind: llm.KindConfig, Provider: "huggingface", Message: "no token"},
	})

	w := doJSON(t, router, http.MethodPost, "/api/mealplan", map[string]any{"allergies": []string{"fish"}}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Meals []struct {
			Ingredients []string `json:"ingredients"`
		} `json:"meals"`
		Meta struct {
			Source string `json:"source"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "simple-rules-fallback", resp.Meta.Source)
	for _, meal := range resp.Meals {
		assert.NotContains(t, meal.Ingredients, "fish")
	}
}

func TestNearbyRequiresCoordinates(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{})

	w := doJSON(t, router, http.MethodGet, "/api/nearby?lat=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "lat and lng")
}

func TestNearbyReturnsResults(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{})

	w := doJSON(t, router, http.MethodGet, "/api/nearby?lat=10.6549&lng=-61.5019&radius=10&type=ingredients", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []struct {
			Name       string  `json:"name"`
			DistanceKM float64 `json:"distance_km"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Central Market", resp.Results[0].Name)
}

func TestAuthRegisterLoginAndProtectedRecords(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{})

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "Alice",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var registered struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	require.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)

	// Duplicate registration is rejected.
	w = doJSON(t, router, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Login works with the same credentials.
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Protected routes need a token.
	w = doJSON(t, router, http.MethodGet, "/api/auth/profiles", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Save and list profiles.
	w = doJSON(t, router, http.MethodPost, "/api/auth/profiles", map[string]any{"age": 34}, registered.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/auth/profiles", nil, registered.Token)
	require.Equal(t, http.StatusOK, w.Code)

	var profiles struct {
		Profiles []struct {
			ID string `json:"id"`
		} `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profiles))
	assert.Len(t, profiles.Profiles, 1)
}

func TestEmergencyContactValidation(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{})

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "bob@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	w = doJSON(t, router, http.MethodPost, "/api/auth/emergency-contact", map[string]string{
		"name": "Carla",
	}, registered.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	contact := map[string]string{"name": "Carla", "relationship": "sister", "phone": "868-555-0123"}
	w = doJSON(t, router, http.MethodPost, "/api/auth/emergency-contact", contact, registered.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/auth/emergency-contact", nil, registered.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Carla")
}
