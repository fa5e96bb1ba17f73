package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lshigami/mathx-agent/internal/dto"
	"github.com/lshigami/mathx-agent/internal/model"
	"github.com/lshigami/mathx-agent/internal/notify"
	"github.com/lshigami/mathx-agent/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Title used when the caller supplies no contest hint.
const defaultContestTitle = "General"

// IngestionService drives the upload flow: resolve the target contest, run
// extraction, persist one pending row per question and tell the reviewer
// their items are ready.
type IngestionService interface {
	Ingest(ctx context.Context, req dto.IngestRequestDTO) (*dto.IngestSummaryDTO, error)
}

type ingestionService struct {
	extractor   ExtractionService
	pendingRepo repository.PendingQuestionRepository
	contestRepo repository.ContestRepository
	notifier    notify.Notifier
}

func NewIngestionService(
	extractor ExtractionService,
	pendingRepo repository.PendingQuestionRepository,
	contestRepo repository.ContestRepository,
	notifier notify.Notifier,
) IngestionService {
	return &ingestionService{
		extractor:   extractor,
		pendingRepo: pendingRepo,
		contestRepo: contestRepo,
		notifier:    notifier,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, req dto.IngestRequestDTO) (*dto.IngestSummaryDTO, error) {
	contestID, err := resolveOrCreateContest(s.contestRepo, req.ContestHint)
	if err != nil {
		log.Error().Err(err).Str("hint", req.ContestHint).Msg("Ingest: contest resolution failed")
		return nil, fmt.Errorf("%w: %w", ErrContestResolutionFailed, err)
	}

	// Extraction failure aborts the whole call with zero writes.
	extracted, err := s.extractor.Extract(ctx, req.PdfURL)
	if err != nil {
		log.Error().Err(err).Str("pdfURL", req.PdfURL).Msg("Ingest: extraction failed")
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	batchID := uuid.NewString()
	summary := &dto.IngestSummaryDTO{
		BatchID:        batchID,
		ContestID:      contestID,
		ExtractedCount: len(extracted),
	}

	// Rows are inserted one at a time; a failed insert costs that question
	// only, not the batch.
	for _, q := range extracted {
		pending := model.PendingQuestion{
			BatchID:       batchID,
			ContestID:     &contestID,
			OwnerID:       req.OwnerID,
			QuestionBody:  q.Body,
			Options:       q.Choices,
			CorrectAnswer: q.AnswerLabel,
			Status:        model.StatusPending,
		}
		if err := s.pendingRepo.Create(&pending); err != nil {
			log.Error().Err(err).Int("index", q.Index).Str("batchID", batchID).Msg("Ingest: failed to save pending question")
			summary.FailedCount++
			continue
		}
		summary.SavedCount++
	}

	if summary.SavedCount > 0 {
		s.notifier.Emit(req.OwnerID, notify.EventItemsReady, notify.ItemsReadyPayload{
			OwnerID: req.OwnerID,
			Count:   summary.SavedCount,
		})
	}

	log.Info().
		Str("batchID", batchID).
		Uint("contestID", contestID).
		Int("extracted", summary.ExtractedCount).
		Int("saved", summary.SavedCount).
		Int("failed", summary.FailedCount).
		Msg("Ingest completed")
	return summary, nil
}

// resolveOrCreateContest looks a contest up by hint and creates a draft one
// when nothing matches. Shared by ingestion and by approval commits on items
// whose contest was never resolved.
func resolveOrCreateContest(contestRepo repository.ContestRepository, hint string) (uint, error) {
	title := hint
	if title == "" {
		title = defaultContestTitle
	}

	contest, err := contestRepo.FindByTitle(title)
	if err == nil {
		return contest.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	created := model.Contest{
		Title:       title,
		Description: "Created from PDF ingestion",
		Status:      model.ContestStatusDraft,
	}
	if err := contestRepo.Create(&created); err != nil {
		return 0, err
	}
	log.Info().Str("title", title).Uint("contestID", created.ID).Msg("Created draft contest for ingestion")
	return created.ID, nil
}
