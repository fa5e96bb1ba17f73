package chat

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/mathx-agent/internal/dto"
	"github.com/lshigami/mathx-agent/internal/service"
	"github.com/rs/zerolog/log"
)

type ChatController struct {
	chatService    service.ChatService
	insightService service.InsightService
}

func NewChatController(chatService service.ChatService, insightService service.InsightService) *ChatController {
	return &ChatController{chatService: chatService, insightService: insightService}
}

// Chat godoc
// @Summary Send a chat message
// @Description Routes the message to ingestion or insight and returns the assistant's reply.
// @Tags Chat
// @Accept json
// @Produce json
// @Param chat_data body dto.ChatRequestDTO true "Message, optional PDF URL and contest hint"
// @Success 200 {object} dto.ChatResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat [post]
func (c *ChatController) Chat(ctx *gin.Context) {
	var req dto.ChatRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Chat: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.chatService.Handle(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("ownerID", req.OwnerID).Msg("Chat: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to process request", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary Get chat history
// @Tags Chat
// @Produce json
// @Param owner_id query string true "Owner id"
// @Param limit query int false "Max messages, default 50"
// @Success 200 {object} dto.ChatHistoryResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Missing owner_id"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /chat/history [get]
func (c *ChatController) History(ctx *gin.Context) {
	ownerID := ctx.Query("owner_id")
	if ownerID == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "owner_id is required"})
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	resp, err := c.chatService.History(ownerID, limit)
	if err != nil {
		log.Error().Err(err).Str("ownerID", ownerID).Msg("History: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve chat history", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetContests godoc
// @Summary List contests
// @Tags Contests
// @Produce json
// @Success 200 {array} dto.ContestResponseDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /contests [get]
func (c *ChatController) GetContests(ctx *gin.Context) {
	contests, err := c.insightService.GetContests()
	if err != nil {
		log.Error().Err(err).Msg("GetContests: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch contests", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, contests)
}

// GetContest godoc
// @Summary Get a contest
// @Tags Contests
// @Produce json
// @Param id path int true "Contest ID"
// @Success 200 {object} dto.ContestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid contest id"
// @Failure 404 {object} dto.ErrorResponse "Contest not found"
// @Router /contests/{id} [get]
func (c *ChatController) GetContest(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid contest id"})
		return
	}

	contest, err := c.insightService.GetContest(uint(id))
	if err != nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Contest not found", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, contest)
}

// GetContestQuestions godoc
// @Summary List published questions of a contest
// @Tags Contests
// @Produce json
// @Param id path int true "Contest ID"
// @Success 200 {array} dto.CatalogQuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid contest id"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /contests/{id}/questions [get]
func (c *ChatController) GetContestQuestions(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid contest id"})
		return
	}

	questions, err := c.insightService.GetContestQuestions(uint(id))
	if err != nil {
		log.Error().Err(err).Uint64("contestID", id).Msg("GetContestQuestions: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch questions", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, questions)
}
