package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/lesson"
	"github.com/google/uuid"
)

// Session is one operator's working context. It owns the chapter plans it
// opened and the scripts rendered for them; nothing is shared between
// sessions.
type Session struct {
	ID        string
	Operator  string
	Board     string
	StartedAt time.Time

	mu      sync.Mutex
	plans   map[domain.ChapterKey]*openPlan
	scripts map[string]lesson.Script
}

type openPlan struct {
	plan    *domain.ChapterPlan
	request contract.OpenChapterRequest
}

func NewSession(operator, board string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Operator:  operator,
		Board:     board,
		StartedAt: time.Now().UTC(),
		plans:     make(map[domain.ChapterKey]*openPlan),
		scripts:   make(map[string]lesson.Script),
	}
}

// OpenChapters lists the chapters this session holds plans for.
func (s *Session) OpenChapters() []domain.ChapterKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]domain.ChapterKey, 0, len(s.plans))
	for k := range s.plans {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Script returns the script stored under a payload ref.
func (s *Session) Script(ref string) (lesson.Script, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scripts[ref]
	return sc, ok
}

// find returns the plan for k and the key it is stored under. Subject and
// chapter match without regard to case. Callers hold mu.
func (s *Session) find(k domain.ChapterKey) (*openPlan, domain.ChapterKey, bool) {
	if op, ok := s.plans[k]; ok {
		return op, k, true
	}
	for stored, op := range s.plans {
		if stored.Grade == k.Grade &&
			strings.EqualFold(stored.Subject, strings.TrimSpace(k.Subject)) &&
			strings.EqualFold(stored.Chapter, strings.TrimSpace(k.Chapter)) {
			return op, stored, true
		}
	}
	return nil, k, false
}

// approvalKey is the ledger key for a chapter under the session's board.
func (s *Session) approvalKey(k domain.ChapterKey) domain.ApprovalKey {
	return domain.KeyFor(s.Board, k)
}
