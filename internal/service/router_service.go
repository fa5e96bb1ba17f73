package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/mathx-agent/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// Routing is a closed set of outcomes so the deterministic workflow stays
// decoupled from however the classification is made (rules or LLM).
type RouteKind string

const (
	RouteIngestion RouteKind = "ingestion"
	RouteInsight   RouteKind = "insight"
	RouteDirect    RouteKind = "direct"
)

type RouteResult struct {
	Kind RouteKind
	// Answer is set only for RouteDirect.
	Answer string
}

type RouteInput struct {
	Message       string
	HasAttachment bool
}

type RouterService interface {
	Classify(ctx context.Context, in RouteInput) (RouteResult, error)
}

// --- rule-based classifier (default) ---

type ruleRouterService struct{}

func NewRuleRouterService() RouterService {
	return &ruleRouterService{}
}

var uploadKeywords = []string{"upload", "process", "extract", "ingest", "pdf", "question paper"}

func (s *ruleRouterService) Classify(_ context.Context, in RouteInput) (RouteResult, error) {
	msg := strings.ToLower(strings.TrimSpace(in.Message))

	if in.HasAttachment {
		return RouteResult{Kind: RouteIngestion}, nil
	}
	for _, kw := range uploadKeywords {
		if strings.Contains(msg, kw) {
			return RouteResult{
				Kind:   RouteDirect,
				Answer: "Please attach the PDF you want processed and I will extract its questions for review.",
			}, nil
		}
	}
	if msg == "hi" || msg == "hello" || msg == "help" {
		return RouteResult{
			Kind:   RouteDirect,
			Answer: "Hi! Attach a PDF to ingest questions into a contest, or ask me anything about your contests and questions.",
		}, nil
	}
	return RouteResult{Kind: RouteInsight}, nil
}

// --- LLM-backed classifier ---

type geminiRouterService struct {
	client *genai.GenerativeModel
}

func NewGeminiRouterService(cfg *config.Config) (RouterService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Falling back to the rule-based router.")
		return NewRuleRouterService(), nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiRouterService{client: client.GenerativeModel("gemini-1.5-flash")}, nil
}

const routerPrompt = `You are a routing classifier for a contest-management assistant.
Given the user's message, answer with EXACTLY one of:
HANDOFF_TO_UPLOAD   - the user wants to process an attached PDF into contest questions
HANDOFF_TO_INSIGHT  - the user asks about contests, questions, results or anything else

User has attachment: %t
User message: %s`

func (s *geminiRouterService) Classify(ctx context.Context, in RouteInput) (RouteResult, error) {
	resp, err := s.client.GenerateContent(ctx, genai.Text(fmt.Sprintf(routerPrompt, in.HasAttachment, in.Message)))
	if err != nil {
		return RouteResult{}, fmt.Errorf("router classification failed: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return RouteResult{}, fmt.Errorf("router returned no content")
	}
	out := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out += string(txt)
		}
	}
	if strings.Contains(out, "HANDOFF_TO_UPLOAD") {
		return RouteResult{Kind: RouteIngestion}, nil
	}
	return RouteResult{Kind: RouteInsight}, nil
}
