package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/curriculum"
)

type assessmentService struct {
	curriculum *curriculum.Dataset
	observer   UseCaseObserver
	seed       func() uint64
}

// NewAssessmentService samples assessment questions from the dataset.
func NewAssessmentService(curriculum *curriculum.Dataset, observers ...UseCaseObserver) AssessmentService {
	return &assessmentService{
		curriculum: curriculum,
		observer:   useCaseObserverOrNoop(observers),
		seed:       func() uint64 { return uint64(time.Now().UnixNano()) },
	}
}

func (s *assessmentService) Questions(ctx context.Context, req contract.QuestionRequest) (set *contract.QuestionSet, err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"grade":   req.Grade.String(),
		"subject": req.Subject,
		"count":   req.Count,
	}
	defer func() { observe(ctx, s.observer, "questions", startedAt, fields, err) }()

	if strings.TrimSpace(req.Subject) == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if req.Count < 1 {
		return nil, fmt.Errorf("question count must be at least 1, got %d", req.Count)
	}

	src := s.curriculum.ForBoard(req.Board)
	subject := src.CanonicalSubject(req.Grade, req.Subject)
	seed := req.Seed
	if seed == 0 {
		seed = s.seed()
	}
	fields["seed"] = seed

	rows := src.Sample(req.Grade, subject, req.Chapters, req.Count, rand.New(rand.NewPCG(seed, seed)))
	set = &contract.QuestionSet{
		Board:     req.Board,
		Grade:     req.Grade,
		Subject:   subject,
		Seed:      seed,
		Requested: req.Count,
		Questions: make([]contract.Question, 0, len(rows)),
	}
	for _, r := range rows {
		set.Questions = append(set.Questions, contract.Question{Chapter: r.Chapter, Outcome: r.LearningOutcome})
	}
	fields["questions"] = len(set.Questions)
	return set, nil
}
