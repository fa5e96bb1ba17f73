package service

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/mathx-agent/internal/dto"
	"github.com/lshigami/mathx-agent/internal/model"
	"github.com/lshigami/mathx-agent/internal/notify"
	"github.com/lshigami/mathx-agent/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	responseModeMarkdown = "markdown"
	responseModeModal    = "modal"
)

// ChatService handles one chat turn: persist the user message, classify it,
// dispatch to the right specialist and persist the reply.
type ChatService interface {
	Handle(ctx context.Context, req dto.ChatRequestDTO) (*dto.ChatResponseDTO, error)
	History(ownerID string, limit int) (*dto.ChatHistoryResponseDTO, error)
}

type chatService struct {
	router    RouterService
	ingestion IngestionService
	insight   InsightService
	chatRepo  repository.ChatMessageRepository
	notifier  notify.Notifier
}

func NewChatService(
	router RouterService,
	ingestion IngestionService,
	insight InsightService,
	chatRepo repository.ChatMessageRepository,
	notifier notify.Notifier,
) ChatService {
	return &chatService{
		router:    router,
		ingestion: ingestion,
		insight:   insight,
		chatRepo:  chatRepo,
		notifier:  notifier,
	}
}

func (s *chatService) Handle(ctx context.Context, req dto.ChatRequestDTO) (*dto.ChatResponseDTO, error) {
	userMsg := model.ChatMessage{
		OwnerID:       req.OwnerID,
		Message:       req.Message,
		IsUserMessage: true,
	}
	if req.PdfURL != "" {
		userMsg.DocRefs = []string{req.PdfURL}
	}
	if err := s.chatRepo.Create(&userMsg); err != nil {
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}

	route, err := s.router.Classify(ctx, RouteInput{
		Message:       req.Message,
		HasAttachment: req.PdfURL != "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to classify message: %w", err)
	}

	resp := &dto.ChatResponseDTO{Mode: responseModeMarkdown}

	switch route.Kind {
	case RouteIngestion:
		resp.Mode = responseModeModal
		summary, err := s.ingestion.Ingest(ctx, dto.IngestRequestDTO{
			PdfURL:      req.PdfURL,
			ContestHint: req.ContestHint,
			OwnerID:     req.OwnerID,
		})
		if err != nil {
			// The failure is the reply; the user sees why nothing was saved.
			resp.Response = fmt.Sprintf("0 questions saved, reason: %s", err)
			break
		}
		resp.Ingest = summary
		resp.Response = fmt.Sprintf(
			"Extracted %d questions (%d saved, %d failed) into contest %d. They are waiting for your review.",
			summary.ExtractedCount, summary.SavedCount, summary.FailedCount, summary.ContestID,
		)

	case RouteInsight:
		answer, err := s.insight.Answer(ctx, req.Message)
		if err != nil {
			return nil, err
		}
		resp.Response = answer

	case RouteDirect:
		resp.Response = route.Answer

	default:
		return nil, fmt.Errorf("unknown route kind %q", route.Kind)
	}

	s.notifier.Emit(req.OwnerID, notify.EventResponseMode, notify.ResponseModePayload{
		Mode:    resp.Mode,
		Message: "",
	})

	agentMsg := model.ChatMessage{
		OwnerID:       req.OwnerID,
		Message:       req.Message,
		Response:      &resp.Response,
		IsUserMessage: false,
	}
	if err := s.chatRepo.Create(&agentMsg); err != nil {
		log.Error().Err(err).Str("ownerID", req.OwnerID).Msg("Failed to save agent response")
	} else {
		resp.MessageID = agentMsg.ID
	}

	return resp, nil
}

func (s *chatService) History(ownerID string, limit int) (*dto.ChatHistoryResponseDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	messages, err := s.chatRepo.FindByOwner(ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat history: %w", err)
	}

	resp := &dto.ChatHistoryResponseDTO{Messages: make([]dto.ChatMessageDTO, len(messages))}
	for i := range messages {
		if err := copier.Copy(&resp.Messages[i], &messages[i]); err != nil {
			return nil, fmt.Errorf("error preparing chat history response: %w", err)
		}
	}
	return resp, nil
}
