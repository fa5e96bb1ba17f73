package dto

type SessionStartRequestDTO struct {
	OwnerID string `json:"owner_id" binding:"required"`
}

// PendingQuestionViewDTO is the reviewer-facing projection of a pending
// item. The correct answer is withheld until after the decision so the
// review stays blind.
type PendingQuestionViewDTO struct {
	ID           uint     `json:"id"`
	Index        int      `json:"index"`
	QuestionBody string   `json:"question_body"`
	Options      []string `json:"options"`
}

type SessionStartResponseDTO struct {
	Total    int                     `json:"total"`
	Finished bool                    `json:"finished"`
	NextItem *PendingQuestionViewDTO `json:"next_item,omitempty"`
}

type DecisionRequestDTO struct {
	OwnerID  string `json:"owner_id" binding:"required"`
	ItemID   uint   `json:"item_id" binding:"required"`
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
}

type SessionSummaryDTO struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type DecisionResponseDTO struct {
	Accepted        bool                    `json:"accepted"`
	NextItem        *PendingQuestionViewDTO `json:"next_item,omitempty"`
	SessionFinished bool                    `json:"session_finished"`
	Summary         *SessionSummaryDTO      `json:"summary,omitempty"`
	Error           string                  `json:"error,omitempty"`
}
