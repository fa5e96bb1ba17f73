package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lshigami/mathx-agent/internal/dto"
	"github.com/lshigami/mathx-agent/internal/model"
	"github.com/lshigami/mathx-agent/internal/notify"
	"github.com/lshigami/mathx-agent/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"

	defaultMarks = 10
)

// ReviewService walks a reviewer through their pending items one at a time.
// A session is an in-memory snapshot of the reviewer's pending rows taken at
// start; items resolved elsewhere mid-session are not spliced in, the cursor
// only moves forward. Abandoned sessions need no cleanup, the next start
// simply re-snapshots whatever is still pending.
type ReviewService interface {
	StartSession(ownerID string) (*dto.SessionStartResponseDTO, error)
	SubmitDecision(req dto.DecisionRequestDTO) (*dto.DecisionResponseDTO, error)
	ListPending(ownerID string) ([]dto.PendingQuestionViewDTO, error)
}

type reviewSession struct {
	ownerID  string
	items    []model.PendingQuestion
	cursor   int
	approved int
	rejected int
	busy     bool
}

type reviewService struct {
	pendingRepo repository.PendingQuestionRepository
	contestRepo repository.ContestRepository
	notifier    notify.Notifier

	mu       sync.Mutex
	sessions map[string]*reviewSession
}

func NewReviewService(
	pendingRepo repository.PendingQuestionRepository,
	contestRepo repository.ContestRepository,
	notifier notify.Notifier,
) ReviewService {
	return &reviewService{
		pendingRepo: pendingRepo,
		contestRepo: contestRepo,
		notifier:    notifier,
		sessions:    make(map[string]*reviewSession),
	}
}

func (s *reviewService) StartSession(ownerID string) (*dto.SessionStartResponseDTO, error) {
	items, err := s.pendingRepo.FindPendingByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot pending questions: %w", err)
	}

	resp := &dto.SessionStartResponseDTO{Total: len(items)}
	if len(items) == 0 {
		resp.Finished = true
		s.mu.Lock()
		delete(s.sessions, ownerID)
		s.mu.Unlock()
		return resp, nil
	}

	sess := &reviewSession{ownerID: ownerID, items: items}
	s.mu.Lock()
	s.sessions[ownerID] = sess
	s.mu.Unlock()

	resp.NextItem = viewOf(&items[0], 1)
	log.Info().Str("ownerID", ownerID).Int("total", len(items)).Msg("Review session started")
	return resp, nil
}

// SubmitDecision processes one decision. Decisions within a session are
// strictly serialized: while one commit is in flight the session rejects a
// second decision instead of queueing it, which keeps duplicate client
// messages from double-processing an item.
func (s *reviewService) SubmitDecision(req dto.DecisionRequestDTO) (*dto.DecisionResponseDTO, error) {
	s.mu.Lock()
	sess, ok := s.sessions[req.OwnerID]
	if !ok {
		s.mu.Unlock()
		return failure(nil, ErrNoActiveSession), ErrNoActiveSession
	}
	if sess.busy {
		s.mu.Unlock()
		return failure(nil, ErrDecisionInFlight), ErrDecisionInFlight
	}
	if sess.cursor >= len(sess.items) {
		s.mu.Unlock()
		return failure(nil, ErrNoActiveSession), ErrNoActiveSession
	}
	current := &sess.items[sess.cursor]
	currentIndex := sess.cursor + 1
	if current.ID != req.ItemID {
		view := viewOf(current, currentIndex)
		s.mu.Unlock()
		return failure(view, ErrItemNotFound), ErrItemNotFound
	}
	sess.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		sess.busy = false
		s.mu.Unlock()
	}()

	var err error
	switch req.Decision {
	case DecisionReject:
		err = s.reject(current)
	case DecisionApprove:
		err = s.approve(current)
	default:
		err = fmt.Errorf("unknown decision %q", req.Decision)
	}
	if err != nil {
		log.Warn().Err(err).Uint("itemID", current.ID).Str("decision", req.Decision).Msg("Decision failed")
		return failure(viewOf(current, currentIndex), err), err
	}

	s.notifier.Emit(req.OwnerID, notify.EventDecisionProcessed, notify.DecisionProcessedPayload{
		ItemID: current.ID,
		Result: statusFor(req.Decision),
	})

	// Advance the cursor only after the commit has fully succeeded.
	s.mu.Lock()
	if req.Decision == DecisionApprove {
		sess.approved++
	} else {
		sess.rejected++
	}
	sess.cursor++
	finished := sess.cursor >= len(sess.items)
	resp := &dto.DecisionResponseDTO{Accepted: true, SessionFinished: finished}
	if finished {
		resp.Summary = &dto.SessionSummaryDTO{
			Total:    len(sess.items),
			Approved: sess.approved,
			Rejected: sess.rejected,
		}
		delete(s.sessions, req.OwnerID)
	} else {
		resp.NextItem = viewOf(&sess.items[sess.cursor], sess.cursor+1)
	}
	s.mu.Unlock()

	if finished {
		s.notifier.Emit(req.OwnerID, notify.EventSessionComplete, notify.SessionCompletePayload{
			Total:    resp.Summary.Total,
			Approved: resp.Summary.Approved,
			Rejected: resp.Summary.Rejected,
		})
		log.Info().Str("ownerID", req.OwnerID).Interface("summary", resp.Summary).Msg("Review session finished")
	}
	return resp, nil
}

func (s *reviewService) ListPending(ownerID string) ([]dto.PendingQuestionViewDTO, error) {
	items, err := s.pendingRepo.FindPendingByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending questions: %w", err)
	}
	views := make([]dto.PendingQuestionViewDTO, len(items))
	for i := range items {
		views[i] = *viewOf(&items[i], i+1)
	}
	return views, nil
}

func (s *reviewService) reject(item *model.PendingQuestion) error {
	err := s.pendingRepo.UpdateStatus(item.ID, model.StatusRejected, model.StatusPending)
	return mapStoreErr(err)
}

func (s *reviewService) approve(item *model.PendingQuestion) error {
	correctOption, err := ResolveCorrectOption(item.CorrectAnswer, item.Options)
	if err != nil {
		// The item stays pending; the reviewer must fix or reject it.
		return fmt.Errorf("%w: %w", ErrInvalidAnswerMapping, err)
	}

	contestID := uint(0)
	if item.ContestID != nil {
		contestID = *item.ContestID
	} else {
		contestID, err = resolveOrCreateContest(s.contestRepo, "")
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCatalogCommitFailed, err)
		}
	}

	catalog := &model.CatalogQuestion{
		ContestID:     contestID,
		QuestionText:  item.QuestionBody,
		Options:       item.Options,
		CorrectOption: correctOption,
		Marks:         defaultMarks,
	}
	if err := s.pendingRepo.ApproveAndCommit(item.ID, catalog); err != nil {
		if mapped := mapStoreErr(err); errors.Is(mapped, ErrAlreadyProcessed) || errors.Is(mapped, ErrItemNotFound) {
			return mapped
		}
		return fmt.Errorf("%w: %w", ErrCatalogCommitFailed, err)
	}
	return nil
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStatusConflict):
		return ErrAlreadyProcessed
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrItemNotFound
	default:
		return err
	}
}

// ResolveCorrectOption maps a stored correct answer to exactly one entry of
// options, either by positional label ("A", "B", ...) or by literal option
// text. Ambiguous or missing mappings are an error, never a silent default.
func ResolveCorrectOption(correctAnswer string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("question has no options")
	}
	answer := strings.TrimSpace(correctAnswer)
	if answer == "" {
		return "", fmt.Errorf("correct answer is empty")
	}

	if len(answer) == 1 {
		pos := int(strings.ToUpper(answer)[0] - 'A')
		if pos >= 0 && pos < len(options) {
			return options[pos], nil
		}
	}

	matches := 0
	matched := ""
	for _, opt := range options {
		if opt == answer {
			matches++
			matched = opt
		}
	}
	switch matches {
	case 1:
		return matched, nil
	case 0:
		return "", fmt.Errorf("answer %q matches no option label or text", answer)
	default:
		return "", fmt.Errorf("answer %q matches %d options, must match exactly one", answer, matches)
	}
}

func statusFor(decision string) string {
	if decision == DecisionApprove {
		return model.StatusApproved
	}
	return model.StatusRejected
}

func viewOf(item *model.PendingQuestion, index int) *dto.PendingQuestionViewDTO {
	return &dto.PendingQuestionViewDTO{
		ID:           item.ID,
		Index:        index,
		QuestionBody: item.QuestionBody,
		Options:      item.Options,
	}
}

func failure(current *dto.PendingQuestionViewDTO, err error) *dto.DecisionResponseDTO {
	return &dto.DecisionResponseDTO{
		Accepted: false,
		NextItem: current,
		Error:    err.Error(),
	}
}
