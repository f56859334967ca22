// Package service holds the chat orchestration and plan generation logic
// between the HTTP handlers and the provider adapters.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/dietpal/backend/internal/llm"
	"github.com/dietpal/backend/internal/store"
	"github.com/dietpal/backend/internal/types"
	"github.com/dietpal/backend/internal/webctx"
)

// ErrMessageRequired is returned when a chat request carries no message.
var ErrMessageRequired = errors.New("message required")

const (
	maxTokensShort    = 380
	maxTokensNormal   = 600
	maxTokensDetailed = 780

	// promptHistoryCap bounds how much conversation is replayed into the
	// prompt, independent of the larger stored history cap.
	promptHistoryCap = 16
)

var (
	linkRequestPattern = regexp.MustCompile(`link|links|source|sources|citation|citations|url|urls|reference|references`)
	webContextPattern  = regexp.MustCompile(`latest|current|today|now|news|update|recent|price|cost|open|opening|hours|available|availability|where can i buy|study|research|guideline`)
)

// Generator produces a completion through the configured provider chain.
type Generator interface {
	Generate(ctx context.Context, messages []llm.Message, opts llm.Options) (*llm.Result, error)
}

// AgentModels carries the per-agent preferred models from configuration.
// Empty fields mean no preference for that agent.
type AgentModels struct {
	HFNutrition     string
	HFMeds          string
	GitHubNutrition string
	GitHubMeds      string
	GitHubDefault   string
}

// ChatService runs the full advisor flow: context merge, prompt assembly,
// topical agent fan-out and history persistence.
type ChatService struct {
	generator Generator
	store     *store.ContextStore
	web       webctx.Fetcher
	topics    TopicRouter
	models    AgentModels
}

// NewChatService wires the orchestrator.
func NewChatService(generator Generator, contextStore *store.ContextStore, web webctx.Fetcher, topics TopicRouter, models AgentModels) *ChatService {
	return &ChatService{
		generator: generator,
		store:     contextStore,
		web:       web,
		topics:    topics,
		models:    models,
	}
}

type agentReply struct {
	Label string
	Text  string
	Model string
}

// Respond answers one chat turn. Agent failures in multi-agent mode are
// logged and absorbed; the turn only errors when multi-agent mode is off and
// the single provider call fails, so callers can surface provider status.
func (s *ChatService) Respond(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrMessageRequired
	}

	stored := types.UserContext{}
	if req.ChatKey != "" {
		stored = s.store.LoadUserContext(ctx, req.ChatKey)
	}
	merged := store.MergeUserContext(stored, req.UserInfo, req.Profile)
	if req.ChatKey != "" && (req.UserInfo != nil || req.Profile != nil) {
		s.store.SaveUserContext(ctx, req.ChatKey, merged)
	}

	displayName := merged.UserInfo.DisplayName()
	contextParts := buildContextParts(req, merged, displayName)

	history := s.promptHistory(ctx, req)

	userContext := ""
	if len(contextParts) > 0 {
		userContext = "\n\nUser Profile:\n" + strings.Join(contextParts, "\n")
	}

	lower := strings.ToLower(message)
	linksRequested := linkRequestPattern.MatchString(lower)

	var webText string
	var webSources []webctx.Source
	if webContextPattern.MatchString(lower) {
		webResult := s.web.Fetch(ctx, message)
		webText = webResult.Text
		webSources = webResult.Sources
	}

	internetContext := ""
	if webText != "" {
		internetContext = "\n\nInternet Context (recent web snippets):\n" + webText +
			"\n\nUse this context when it helps, but keep your answer natural and practical."
	}

	includeSources := req.Settings != nil && req.Settings.AI.IncludeSources
	linksRule := `Do NOT include links or URLs unless the user explicitly asks for them.`
	if linksRequested || includeSources {
		linksRule = `Include a short "Sources" section with up to 3 relevant URLs.`
	}

	responseLength := "normal"
	tone := "friendly"
	if req.Settings != nil {
		if req.Settings.AI.ResponseLength != "" {
			responseLength = req.Settings.AI.ResponseLength
		}
		if req.Settings.AI.Tone != "" {
			tone = req.Settings.AI.Tone
		}
	}

	var lengthInstruction string
	maxTokens := maxTokensNormal
	switch responseLength {
	case "short":
		lengthInstruction = "Keep it very brief (3-5 sentences)."
		maxTokens = maxTokensShort
	case "detailed":
		lengthInstruction = "Provide a fuller answer (8-14 sentences) with bullets where helpful."
		maxTokens = maxTokensDetailed
	default:
		lengthInstruction = "Keep it concise but useful (usually 5-10 sentences unless asked for more)."
	}

	systemPrompt := buildSystemPrompt(tone, lengthInstruction, linksRule, userContext, internetContext)

	base := history
	if last := len(base) - 1; last < 0 || base[last].Role != "user" || base[last].Content != message {
		base = append(base, llm.Message{Role: "user", Content: message})
	}

	routing := s.topics.Route(message)
	multiAgent := req.Settings == nil || req.Settings.AI.MultiAgentEnabled()

	var replies []agentReply

	if multiAgent && routing.Nutrition {
		reply, err := s.callAgent(ctx, "Nutrition",
			systemPrompt+"\n\nAgent Focus: Nutrition and meal guidance.",
			base, llm.Options{
				HFPreferred:     nonEmpty(s.models.HFNutrition),
				GitHubPreferred: nonEmpty(s.models.GitHubNutrition),
				MaxTokens:       maxTokens,
			})
		if err != nil {
			log.Printf("Nutrition agent failed: %v", err)
		} else {
			replies = append(replies, reply)
		}
	}

	if multiAgent && routing.Meds {
		reply, err := s.callAgent(ctx, "Medical",
			systemPrompt+"\n\nAgent Focus: Medications and medical safety. Avoid dosing instructions; suggest discussing with a clinician when needed.",
			base, llm.Options{
				HFPreferred:     nonEmpty(s.models.HFMeds),
				GitHubPreferred: nonEmpty(s.models.GitHubMeds),
				MaxTokens:       maxTokens,
			})
		if err != nil {
			log.Printf("Medical agent failed: %v", err)
		} else {
			replies = append(replies, reply)
		}
	}

	if !multiAgent {
		reply, err := s.callAgent(ctx, "Advisor", systemPrompt, base, llm.Options{
			GitHubPreferred: nonEmpty(s.models.GitHubDefault),
			MaxTokens:       maxTokens,
		})
		if err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}

	if len(replies) == 0 {
		reply, err := s.callAgent(ctx, "Advisor", systemPrompt, base, llm.Options{
			GitHubPreferred: nonEmpty(s.models.GitHubDefault),
			MaxTokens:       maxTokens,
		})
		if err != nil {
			reply = agentReply{
				Label: "Advisor",
				Text:  buildLocalFallback(message, displayName, req.Conditions, req.Allergies, req.DietaryRestriction),
				Model: "local-fallback",
			}
		}
		replies = append(replies, reply)
	}

	aiMessage := replies[0].Text
	if len(replies) > 1 {
		sections := make([]string, 0, len(replies))
		for _, reply := range replies {
			sections = append(sections, "### "+reply.Label+"\n"+reply.Text)
		}
		aiMessage = strings.Join(sections, "\n\n")
	}

	if req.ChatKey != "" {
		s.store.AppendHistory(ctx, req.ChatKey, []types.ChatMessage{
			{Role: "user", Content: message},
			{Role: "assistant", Content: aiMessage},
		})
	}

	models := make([]string, 0, len(replies))
	for _, reply := range replies {
		models = append(models, reply.Model)
	}

	return &types.ChatResponse{
		Reply:            aiMessage,
		Model:            strings.Join(models, ", "),
		UsedWebContext:   webText != "",
		SourcesAvailable: len(webSources),
	}, nil
}

func (s *ChatService) callAgent(ctx context.Context, label, prompt string, base []llm.Message, opts llm.Options) (agentReply, error) {
	messages := make([]llm.Message, 0, len(base)+1)
	messages = append(messages, llm.Message{Role: "system", Content: prompt})
	messages = append(messages, base...)

	result, err := s.generator.Generate(ctx, messages, opts)
	if err != nil {
		return agentReply{}, err
	}
	return agentReply{Label: label, Text: llm.SanitizeReply(result.Text), Model: result.Model}, nil
}

// promptHistory merges stored history with the request-supplied transcript
// and keeps only the newest turns for the prompt.
func (s *ChatService) promptHistory(ctx context.Context, req *types.ChatRequest) []llm.Message {
	var merged []llm.Message

	if req.ChatKey != "" {
		for _, entry := range s.store.LoadHistory(ctx, req.ChatKey) {
			if content := strings.TrimSpace(entry.Content); content != "" {
				merged = append(merged, llm.Message{Role: normalizeRole(entry.Role), Content: content})
			}
		}
	}
	for _, entry := range req.History {
		if content := strings.TrimSpace(entry.Content); content != "" {
			merged = append(merged, llm.Message{Role: normalizeRole(entry.Role), Content: content})
		}
	}

	if len(merged) > promptHistoryCap {
		merged = merged[len(merged)-promptHistoryCap:]
	}
	return merged
}

func normalizeRole(role string) string {
	if role == "user" {
		return "user"
	}
	return "assistant"
}

func nonEmpty(model string) []string {
	if model == "" {
		return nil
	}
	return []string{model}
}

func buildContextParts(req *types.ChatRequest, merged types.UserContext, displayName string) []string {
	var parts []string

	if displayName != "" {
		parts = append(parts, "Name: "+displayName)
	}
	if merged.UserInfo.Email != "" {
		parts = append(parts, "Email: "+merged.UserInfo.Email)
	}
	if len(req.Conditions) > 0 {
		parts = append(parts, "Medical conditions: "+strings.Join(req.Conditions, ", "))
	}
	if len(req.Allergies) > 0 {
		parts = append(parts, "Allergies: "+strings.Join(req.Allergies, ", "))
	}
	if req.DietaryRestriction != "" && req.DietaryRestriction != "omnivore" {
		parts = append(parts, "Dietary preference: "+req.DietaryRestriction)
	}

	profile := merged.Profile
	if profile.Age != "" {
		parts = append(parts, "Age: "+string(profile.Age))
	}
	if profile.Weight != "" {
		parts = append(parts, "Weight: "+string(profile.Weight)+" kg")
	}
	if profile.Height != "" {
		parts = append(parts, "Height: "+string(profile.Height)+" cm")
	}
	if profile.Gender != "" {
		parts = append(parts, "Gender: "+profile.Gender)
	}
	if len(profile.Medications) > 0 {
		meds := make([]string, 0, len(profile.Medications))
		for _, med := range profile.Medications {
			meds = append(meds, med.Format())
		}
		parts = append(parts, "Current medications: "+strings.Join(meds, "; "))
	}

	if req.Settings != nil {
		if req.Settings.Units.Weight != "" {
			parts = append(parts, "Preferred weight unit: "+req.Settings.Units.Weight)
		}
		if req.Settings.Units.Height != "" {
			parts = append(parts, "Preferred height unit: "+req.Settings.Units.Height)
		}
		if req.Settings.Units.Glucose != "" {
			parts = append(parts, "Preferred glucose unit: "+req.Settings.Units.Glucose)
		}
	}

	return parts
}

func buildSystemPrompt(tone, lengthInstruction, linksRule, userContext, internetContext string) string {
	return fmt.Sprintf(`You are Diet-Pal's friendly AI Health Advisor for Trinidad & Tobago.
Speak in a warm, natural, conversational tone (not robotic), like a supportive coach.
Tone preference: %s.
Give practical, personalized advice using local foods and realistic options.

Important style rules:
- Do NOT explain your chain-of-thought or reasoning process.
- Do NOT say things like "the user is asking".
- Answer directly and clearly.
- Do NOT start with greetings like "Hi" or "Hello".
- If the user's name is known, address them by name occasionally (not every sentence).
- Use Markdown with short sections, bullets, and tables when helpful.
- Avoid a single long paragraph; keep paragraphs to 1-3 sentences.
- %s
- If the user asks a question, answer it; do not say there was no question.
- Always answer the latest user question and stay on that topic unless asked to switch.
- If the user asks for more options, provide 3-6 additional options on the same topic.
- End with a complete sentence (do not cut off mid-thought).
- Use chat history and the user profile for continuity; if the user mentions a condition (e.g., diabetes), keep it in mind.
- If helpful, end with 1 short follow-up question.
- When suggesting meals, include concrete examples (portion ideas, swaps, simple prep tips).
- %s
- If no internet context is provided and the question needs real-time facts, briefly say you don't have live web access in this chat.
- IMPORTANT: When users ask to save/add meals or restaurants to favorites, DO tell them that their request has been processed. The app CAN save meals and restaurants to a favorites list - you don't need to say you can't do this. Simply acknowledge their request positively.
%s%s

Guidelines:
- Focus on Trinidad & Tobago foods and cuisine (callaloo, dasheen, provisions, pelau, etc.)
- Consider the user's medical conditions and dietary restrictions
- Suggest local, accessible ingredients and meals
- Be encouraging and supportive
- Keep responses concise but informative
- Include practical tips when relevant`,
		tone, lengthInstruction, linksRule, userContext, internetContext)
}

var mealQuestionPattern = regexp.MustCompile(`meal|breakfast|lunch|dinner|snack|recipe|food|eat`)

// buildLocalFallback produces a canned reply with no external dependency so
// the chat endpoint can always answer.
func buildLocalFallback(message, displayName string, conditions, allergies []string, dietaryRestriction string) string {
	greeting := ""
	if displayName != "" {
		greeting = displayName + ", "
	}

	conditionText := ""
	if len(conditions) > 0 {
		conditionText = "I kept your conditions in mind: " + strings.Join(conditions, ", ") + "."
	}
	allergyText := ""
	if len(allergies) > 0 {
		allergyText = "I also avoided allergy triggers you listed: " + strings.Join(allergies, ", ") + "."
	}
	dietText := ""
	if dietaryRestriction != "" && dietaryRestriction != "omnivore" {
		dietText = "Diet preference noted: " + dietaryRestriction + "."
	}

	if mealQuestionPattern.MatchString(strings.ToLower(message)) {
		return strings.TrimSpace(greeting + "here are quick options while AI service reconnects:\n\n" +
			"- **Breakfast:** callaloo + boiled egg + a small piece of provision\n" +
			"- **Lunch:** grilled fish, stewed lentils, and salad\n" +
			"- **Dinner:** baked chicken with steamed vegetables and dasheen\n\n" +
			conditionText + " " + allergyText + " " + dietText)
	}

	return strings.TrimSpace(greeting + "I can still help with practical guidance right now, even though live AI generation is temporarily unavailable. " +
		conditionText + " " + allergyText + " " + dietText +
		"\n\nAsk me for a **meal plan**, **food swaps**, or **Trinidad-style healthy meal ideas** and I'll provide immediate suggestions.")
}
