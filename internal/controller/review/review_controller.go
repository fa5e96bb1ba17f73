package review

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/mathx-agent/internal/dto"
	"github.com/lshigami/mathx-agent/internal/service"
	"github.com/rs/zerolog/log"
)

type ReviewController struct {
	ingestionService service.IngestionService
	reviewService    service.ReviewService
}

func NewReviewController(ingestionService service.IngestionService, reviewService service.ReviewService) *ReviewController {
	return &ReviewController{ingestionService: ingestionService, reviewService: reviewService}
}

// Ingest godoc
// @Summary Ingest a question PDF
// @Description Extracts questions from a PDF URL and queues them as pending items for review.
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param ingest_data body dto.IngestRequestDTO true "PDF URL, optional contest hint and the owner id"
// @Success 200 {object} dto.IngestSummaryDTO "Ingest summary"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 502 {object} dto.ErrorResponse "Extraction failed"
// @Failure 500 {object} dto.ErrorResponse "Contest resolution failed"
// @Router /ingest [post]
func (c *ReviewController) Ingest(ctx *gin.Context) {
	var req dto.IngestRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Ingest: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	summary, err := c.ingestionService.Ingest(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("pdfURL", req.PdfURL).Msg("Ingest: service error")
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrExtractionFailed) {
			status = http.StatusBadGateway
		}
		ctx.JSON(status, dto.ErrorResponse{Message: "0 questions saved", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// StartSession godoc
// @Summary Start a review session
// @Description Snapshots the reviewer's pending questions and returns the first item, with the correct answer withheld.
// @Tags Review
// @Accept json
// @Produce json
// @Param session_data body dto.SessionStartRequestDTO true "Reviewer id"
// @Success 200 {object} dto.SessionStartResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /review/sessions [post]
func (c *ReviewController) StartSession(ctx *gin.Context) {
	var req dto.SessionStartRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.reviewService.StartSession(req.OwnerID)
	if err != nil {
		log.Error().Err(err).Str("ownerID", req.OwnerID).Msg("StartSession: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to start review session", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitDecision godoc
// @Summary Submit an approve/reject decision
// @Description Processes one decision for the current item of the reviewer's session. Failed decisions keep the reviewer on the same item.
// @Tags Review
// @Accept json
// @Produce json
// @Param decision_data body dto.DecisionRequestDTO true "Decision payload"
// @Success 200 {object} dto.DecisionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.DecisionResponseDTO "Item not found"
// @Failure 409 {object} dto.DecisionResponseDTO "Already processed or decision in flight"
// @Failure 422 {object} dto.DecisionResponseDTO "Correct answer does not resolve to an option"
// @Failure 502 {object} dto.DecisionResponseDTO "Catalog commit failed, retryable"
// @Router /review/decisions [post]
func (c *ReviewController) SubmitDecision(ctx *gin.Context) {
	var req dto.DecisionRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.reviewService.SubmitDecision(req)
	if err != nil {
		ctx.JSON(decisionStatus(err), resp)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func decisionStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrItemNotFound), errors.Is(err, service.ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyProcessed), errors.Is(err, service.ErrDecisionInFlight):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidAnswerMapping):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrCatalogCommitFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ListPending godoc
// @Summary List pending questions for an owner
// @Description Lets a client re-derive review state when a notification was missed.
// @Tags Review
// @Produce json
// @Param owner_id query string true "Owner id"
// @Success 200 {array} dto.PendingQuestionViewDTO
// @Failure 400 {object} dto.ErrorResponse "Missing owner_id"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /questions/pending [get]
func (c *ReviewController) ListPending(ctx *gin.Context) {
	ownerID := ctx.Query("owner_id")
	if ownerID == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "owner_id is required"})
		return
	}

	views, err := c.reviewService.ListPending(ownerID)
	if err != nil {
		log.Error().Err(err).Str("ownerID", ownerID).Msg("ListPending: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch pending questions", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, views)
}
