package dto

import "time"

type ChatRequestDTO struct {
	OwnerID     string `json:"owner_id" binding:"required"`
	Message     string `json:"message" binding:"required"`
	PdfURL      string `json:"pdf_url"`
	ContestHint string `json:"contest_hint"`
}

type ChatResponseDTO struct {
	Response  string            `json:"response"`
	Mode      string            `json:"mode"`
	MessageID uint              `json:"message_id"`
	Ingest    *IngestSummaryDTO `json:"ingest,omitempty"`
}

type ChatMessageDTO struct {
	ID            uint      `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Message       string    `json:"message"`
	Response      *string   `json:"response,omitempty"`
	IsUserMessage bool      `json:"is_user_message"`
	DocRefs       []string  `json:"doc_refs,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ChatHistoryResponseDTO struct {
	Messages []ChatMessageDTO `json:"messages"`
}
