package service_test

import (
	"context"
	"sync"

	"github.com/lshigami/mathx-agent/internal/model"
	"github.com/lshigami/mathx-agent/internal/repository"
	"github.com/lshigami/mathx-agent/internal/service"
	"gorm.io/gorm"
)

// fakeStore backs the repository fakes with one shared in-memory state so a
// test can run ingestion and review against the same data.
type fakeStore struct {
	mu sync.Mutex

	pendingSeq  uint
	pending     map[uint]*model.PendingQuestion
	order       []uint
	transitions map[uint][]string

	contestSeq uint
	contests   map[uint]*model.Contest

	catalog []model.CatalogQuestion

	pendingCreateCalls int
	failPendingCreates map[int]bool // 1-based call number -> fail
	updateErr          error
	commitErr          error
	contestCreateErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pending:            make(map[uint]*model.PendingQuestion),
		transitions:        make(map[uint][]string),
		contests:           make(map[uint]*model.Contest),
		failPendingCreates: make(map[int]bool),
	}
}

func (s *fakeStore) pendingByOwner(ownerID string) []model.PendingQuestion {
	var out []model.PendingQuestion
	for _, id := range s.order {
		q := s.pending[id]
		if q.OwnerID == ownerID && q.Status == model.StatusPending {
			out = append(out, *q)
		}
	}
	return out
}

func (s *fakeStore) setStatus(id uint, status string) {
	s.pending[id].Status = status
	s.transitions[id] = append(s.transitions[id], status)
}

type fakePendingRepo struct{ s *fakeStore }

func (r *fakePendingRepo) Create(q *model.PendingQuestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.pendingCreateCalls++
	if r.s.failPendingCreates[r.s.pendingCreateCalls] {
		return gorm.ErrInvalidData
	}
	r.s.pendingSeq++
	q.ID = r.s.pendingSeq
	cp := *q
	r.s.pending[q.ID] = &cp
	r.s.order = append(r.s.order, q.ID)
	r.s.transitions[q.ID] = []string{q.Status}
	return nil
}

func (r *fakePendingRepo) FindByID(id uint) (*model.PendingQuestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.pending[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fakePendingRepo) FindPendingByOwner(ownerID string) ([]model.PendingQuestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.pendingByOwner(ownerID), nil
}

func (r *fakePendingRepo) UpdateStatus(id uint, newStatus, expectedStatus string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.updateErr != nil {
		return r.s.updateErr
	}
	q, ok := r.s.pending[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if q.Status != expectedStatus {
		return repository.ErrStatusConflict
	}
	r.s.setStatus(id, newStatus)
	return nil
}

func (r *fakePendingRepo) ApproveAndCommit(id uint, question *model.CatalogQuestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.pending[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if q.Status != model.StatusPending {
		return repository.ErrStatusConflict
	}
	if r.s.commitErr != nil {
		// Transaction aborts: no status change, no catalog row.
		return r.s.commitErr
	}
	r.s.setStatus(id, model.StatusApproved)
	r.s.catalog = append(r.s.catalog, *question)
	return nil
}

type fakeContestRepo struct{ s *fakeStore }

func (r *fakeContestRepo) Create(c *model.Contest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.contestCreateErr != nil {
		return r.s.contestCreateErr
	}
	r.s.contestSeq++
	c.ID = r.s.contestSeq
	cp := *c
	r.s.contests[c.ID] = &cp
	return nil
}

func (r *fakeContestRepo) FindByID(id uint) (*model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeContestRepo) FindByTitle(title string) (*model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.contests {
		if c.Title == title {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeContestRepo) FindAll() ([]model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Contest
	for _, c := range r.s.contests {
		out = append(out, *c)
	}
	return out, nil
}

type emittedEvent struct {
	ownerID string
	event   string
	data    any
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []emittedEvent
}

func (n *fakeNotifier) Emit(ownerID string, event string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, emittedEvent{ownerID: ownerID, event: event, data: data})
}

func (n *fakeNotifier) byName(event string) []emittedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []emittedEvent
	for _, e := range n.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeExtractor struct {
	questions []service.ExtractedQuestion
	err       error
	calls     int
}

func (e *fakeExtractor) Extract(_ context.Context, _ string) ([]service.ExtractedQuestion, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.questions, nil
}
