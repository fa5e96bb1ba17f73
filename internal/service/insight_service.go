package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jinzhu/copier"
	"github.com/lshigami/mathx-agent/config"
	"github.com/lshigami/mathx-agent/internal/dto"
	"github.com/lshigami/mathx-agent/internal/repository"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// InsightService answers free-form questions about the catalog and exposes
// the contest read API.
type InsightService interface {
	Answer(ctx context.Context, question string) (string, error)
	GetContests() ([]dto.ContestResponseDTO, error)
	GetContest(id uint) (*dto.ContestResponseDTO, error)
	GetContestQuestions(contestID uint) ([]dto.CatalogQuestionResponseDTO, error)
}

type insightService struct {
	client      *genai.GenerativeModel
	contestRepo repository.ContestRepository
	catalogRepo repository.CatalogQuestionRepository
}

func NewInsightService(
	cfg *config.Config,
	contestRepo repository.ContestRepository,
	catalogRepo repository.CatalogQuestionRepository,
) (InsightService, error) {
	svc := &insightService{contestRepo: contestRepo, catalogRepo: catalogRepo}
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. InsightService answers will be unavailable.")
		return svc, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	svc.client = client.GenerativeModel("gemini-1.5-flash")
	return svc, nil
}

func (s *insightService) Answer(ctx context.Context, question string) (string, error) {
	if s.client == nil {
		return "The insight assistant is currently unavailable due to a configuration issue.", nil
	}

	contests, err := s.contestRepo.FindAll()
	if err != nil {
		return "", fmt.Errorf("failed to load contests for context: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are MathX Insight, an assistant for a contest platform.\n")
	b.WriteString("Answer the user's question using the contest data below. Respond in markdown.\n\nContests:\n")
	for _, c := range contests {
		fmt.Fprintf(&b, "- id=%d title=%q status=%s difficulty=%q\n", c.ID, c.Title, c.Status, c.Difficulty)
	}
	b.WriteString("\nQuestion:\n")
	b.WriteString(question)

	resp, err := s.client.GenerateContent(ctx, genai.Text(b.String()))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during insight answer")
		return "", fmt.Errorf("insight generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	answer := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			answer += string(txt)
		}
	}
	return strings.TrimSpace(answer), nil
}

func (s *insightService) GetContests() ([]dto.ContestResponseDTO, error) {
	contests, err := s.contestRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contests: %w", err)
	}
	dtos := make([]dto.ContestResponseDTO, len(contests))
	for i := range contests {
		if err := copier.Copy(&dtos[i], &contests[i]); err != nil {
			return nil, fmt.Errorf("error preparing contest response: %w", err)
		}
	}
	return dtos, nil
}

func (s *insightService) GetContest(id uint) (*dto.ContestResponseDTO, error) {
	contest, err := s.contestRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("contest not found with ID %d: %w", id, err)
	}
	var resp dto.ContestResponseDTO
	if err := copier.Copy(&resp, contest); err != nil {
		return nil, fmt.Errorf("error preparing contest response: %w", err)
	}
	return &resp, nil
}

func (s *insightService) GetContestQuestions(contestID uint) ([]dto.CatalogQuestionResponseDTO, error) {
	questions, err := s.catalogRepo.FindByContestID(contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions for contest %d: %w", contestID, err)
	}
	dtos := make([]dto.CatalogQuestionResponseDTO, len(questions))
	for i := range questions {
		if err := copier.Copy(&dtos[i], &questions[i]); err != nil {
			return nil, fmt.Errorf("error preparing question response: %w", err)
		}
	}
	return dtos, nil
}
