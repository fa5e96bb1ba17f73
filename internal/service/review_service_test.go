package service_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lshigami/mathx-agent/internal/dto"
	"github.com/lshigami/mathx-agent/internal/model"
	"github.com/lshigami/mathx-agent/internal/notify"
	"github.com/lshigami/mathx-agent/internal/service"
)

func newReviewFixture() (*fakeStore, *fakeNotifier, service.ReviewService) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := service.NewReviewService(&fakePendingRepo{s: store}, &fakeContestRepo{s: store}, notifier)
	return store, notifier, svc
}

func seedPending(t *testing.T, store *fakeStore, ownerID string, bodies ...string) []uint {
	t.Helper()
	repo := &fakePendingRepo{s: store}
	contestID := uint(1)
	store.contests[contestID] = &model.Contest{ID: contestID, Title: "Weekly Quiz", Status: model.ContestStatusDraft}
	store.contestSeq = contestID

	ids := make([]uint, 0, len(bodies))
	for _, body := range bodies {
		q := model.PendingQuestion{
			ContestID:     &contestID,
			OwnerID:       ownerID,
			QuestionBody:  body,
			Options:       []string{"$1$", "$2$", "$3$", "$4$"},
			CorrectAnswer: "A",
			Status:        model.StatusPending,
		}
		require.NoError(t, repo.Create(&q))
		ids = append(ids, q.ID)
	}
	return ids
}

func TestStartSession_EmptySnapshotFinishesImmediately(t *testing.T) {
	_, _, svc := newReviewFixture()

	resp, err := svc.StartSession("alice")
	require.NoError(t, err)
	require.True(t, resp.Finished)
	require.Equal(t, 0, resp.Total)
	require.Nil(t, resp.NextItem)
}

func TestStartSession_WithholdsCorrectAnswer(t *testing.T) {
	store, _, svc := newReviewFixture()
	ids := seedPending(t, store, "alice", "q1")

	resp, err := svc.StartSession("alice")
	require.NoError(t, err)
	require.False(t, resp.Finished)
	require.Equal(t, ids[0], resp.NextItem.ID)
	require.Equal(t, 1, resp.NextItem.Index)
	require.Equal(t, "q1", resp.NextItem.QuestionBody)
	require.Len(t, resp.NextItem.Options, 4)
}

func TestSubmitDecision_SessionReachesFinishedAfterExactlyKDecisions(t *testing.T) {
	store, notifier, svc := newReviewFixture()
	ids := seedPending(t, store, "alice", "q1", "q2", "q3")

	start, err := svc.StartSession("alice")
	require.NoError(t, err)
	require.Equal(t, 3, start.Total)

	decisions := []string{service.DecisionApprove, service.DecisionReject, service.DecisionApprove}
	var last *dto.DecisionResponseDTO
	for i, d := range decisions {
		last, err = svc.SubmitDecision(dto.DecisionRequestDTO{OwnerID: "alice", ItemID: ids[i], Decision: d})
		require.NoError(t, err)
		require.True(t, last.Accepted)
		if i < len(decisions)-1 {
			require.False(t, last.SessionFinished)
			require.Equal(t, ids[i+1], last.NextItem.ID)
		}
	}

	require.True(t, last.SessionFinished)
	require.Equal(t, &dto.SessionSummaryDTO{Total: 3, Approved: 2, Rejected: 1}, last.Summary)

	// Two catalog rows, statuses [approved, rejected, approved].
	require.Len(t, store.catalog, 2)
	require.Equal(t, model.StatusApproved, store.pending[ids[0]].Status)
	require.Equal(t, model.StatusRejected, store.pending[ids[1]].Status)
	require.Equal(t, model.StatusApproved, store.pending[ids[2]].Status)

	// Status histories are monotone: pending then exactly one transition.
	for _, id := range ids {
		history := store.transitions[id]
		require.Len(t, history, 2)
		require.Equal(t, model.StatusPending, history[0])
		require.Contains(t, []string{model.StatusApproved, model.StatusRejected}, history[1])
	}

	require.Len(t, notifier.byName(notify.EventDecisionProcessed), 3)
	complete := notifier.byName(notify.EventSessionComplete)
	require.Len(t, complete, 1)
	require.Equal(t, notify.SessionCompletePayload{Total: 3, Approved: 2, Rejected: 1}, complete[0].data)
}

func TestSubmitDecision_InvalidAnswerMappingDoesNotAdvance(t *testing.T) {
	store, _, svc := newReviewFixture()
	ids := seedPending(t, store, "alice", "q1")
	store.pending[ids[0]].CorrectAnswer = "Z"

	_, err := svc.StartSession("alice")
	require.NoError(t, err)

	resp, err := svc.SubmitDecision(dto.DecisionRequestDTO{OwnerID: "alice", ItemID: ids[0], Decision: service.DecisionApprove})
	require.ErrorIs(t, err, service.ErrInvalidAnswerMapping)
	require.False(t, resp.Accepted)
	require.NotNil(t, resp.NextItem)
	require.Equal(t, ids[0], resp.NextItem.ID, "reviewer stays on the same item")
	require.Equal(t, model.StatusPending, store.pending[ids[0]].Status)
	require.Empty(t, store.catalog)

	// Converting the failed approval into a reject still finishes the session.
	resp, err = svc.SubmitDecision(dto.DecisionRequestDTO{OwnerID: "alice", ItemID: ids[0], Decision: service.DecisionReject})
	require.NoError(t, err)
	require.True(t, resp.Accepted)
	require.True(t, resp.SessionFinished)
	require.Equal(t, model.StatusRejected, store.pending[ids[0]].Status)
}

func TestSubmitDecision_CatalogCommitFailureKeepsItemPending(t *testing.T) {
	store, _, svc := newReviewFixture()
	ids := seedPending(t, store, "alice", "q1")

	_, err := svc.StartSession("alice")
	require.NoError(t, err)

	store.commitErr = fmt.Errorf("catalog store unavailable")
	resp, err := svc.SubmitDecision(dto.DecisionRequestDTO{OwnerID: "alice", ItemID: ids[0], Decision: service.DecisionApprove})
	require.ErrorIs(t, err, service.ErrCatalogCommitFailed)
	require.False(t, resp.Accepted)
	require.Equal(t, model.StatusPending, store.pending[ids[0]].Status)
	require.Empty(t, store.catalog)

	// The same request succeeds once the store is back.
	store.commitErr = nil
	resp, err = svc.SubmitDecision(dto.DecisionRequestDTO{OwnerID: "alice", ItemID: ids[0], Decision: service.DecisionApprove})
	require.NoError(t, err)
	require.True(t, resp.Accepted)
	require.True(t, resp.SessionFinished)
	require.Len(t, store.catalog, 1)
}

func TestSubmitDecision_LostRaceReportsAlreadyProcessed(t *testing.T) {
	store, _, svc := newReviewFixture()
	ids := seedPending(t, store, "alice", "q1")

	_, err := svc.StartSession("alice")
	require.NoError(t, err)

	// Another process resolves the item between snapshot and decision.
	other := &fakePendingRepo{s: store}
	require.NoError(t, other.ApproveAndCommit(ids[0], &model.CatalogQuestion{ContestID: 1, QuestionText: "q1", Options: []string{"$1$", "$2$"}, CorrectOption: "$1$", Marks: 10}))

	resp, err := svc.SubmitDecision(dto.DecisionRequestDTO{OwnerID: "alice", ItemID: ids[0], Decision: service.DecisionApprove})
	require.ErrorIs(t, err, service.ErrAlreadyProcessed)
	require.False(t, resp.Accepted)
	require.Len(t, store.catalog, 1, "the losing decision must not commit a second catalog row")
	require.Equal(t, []string{model.StatusPending, model.StatusApproved}, store.transitions[ids[0]])
}

func TestSubmitDecision_UnknownItemAndMissingSession(t *testing.T) {
	store, _, svc := newReviewFixture()
	ids := seedPending(t, store, "alice", "q1", "q2")

	_, err := svc.SubmitDecision(dto.DecisionRequestDTO{OwnerID: "alice", ItemID: ids[0], Decision: service.DecisionApprove})
	require.ErrorIs(t, err, service.ErrNoActiveSession)

	_, err = svc.StartSession("alice")
	require.NoError(t, err)

	resp, err := svc.SubmitDecision(dto.DecisionRequestDTO{OwnerID: "alice", ItemID: ids[1], Decision: service.DecisionApprove})
	require.ErrorIs(t, err, service.ErrItemNotFound)
	require.Equal(t, ids[0], resp.NextItem.ID, "current item is unchanged")
}

func TestResolveCorrectOption(t *testing.T) {
	options := []string{"$5$", "$\\sqrt{5}$", "$5\\sqrt{3}$", "$10$"}

	tests := map[string]struct {
		answer  string
		options []string
		want    string
		wantErr bool
	}{
		"positional label":          {answer: "C", options: options, want: "$5\\sqrt{3}$"},
		"lowercase label":           {answer: "b", options: options, want: "$\\sqrt{5}$"},
		"literal option text":       {answer: "$10$", options: options, want: "$10$"},
		"label out of range":        {answer: "E", options: options, wantErr: true},
		"unknown text":              {answer: "$42$", options: options, wantErr: true},
		"empty answer":              {answer: "", options: options, wantErr: true},
		"ambiguous duplicate text":  {answer: "$5$", options: []string{"$5$", "$5$"}, wantErr: true},
		"single char option by pos": {answer: "A", options: []string{"x", "y"}, want: "x"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := service.ResolveCorrectOption(tt.answer, tt.options)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestListPending_ReturnsViewsWithoutAnswers(t *testing.T) {
	store, _, svc := newReviewFixture()
	seedPending(t, store, "alice", "q1", "q2")
	seedPending(t, store, "bob", "other")

	views, err := svc.ListPending("alice")
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "q1", views[0].QuestionBody)
	require.Equal(t, 1, views[0].Index)
	require.Equal(t, 2, views[1].Index)
}
