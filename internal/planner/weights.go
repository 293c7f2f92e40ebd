package planner

import (
	"fmt"

	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/domain"
)

// WeightSource is the slice of the curriculum dataset the planner reads.
type WeightSource interface {
	Chapters(grade domain.Grade, subject string) []string
	Weight(grade domain.Grade, subject, chapter string) int
}

// WeightMode selects how a chapter's weight is derived.
type WeightMode string

const (
	// WeightOutcomes uses the distinct learning-outcome count.
	WeightOutcomes WeightMode = "outcomes"
	// WeightBandConstant gives every chapter the band's soft cap.
	WeightBandConstant WeightMode = "band_constant"
)

// ParseWeightMode accepts "outcomes" (default) or "band_constant".
func ParseWeightMode(s string) (WeightMode, error) {
	switch WeightMode(s) {
	case "", WeightOutcomes:
		return WeightOutcomes, nil
	case WeightBandConstant:
		return WeightBandConstant, nil
	}
	return "", fmt.Errorf("unknown weight mode %q", s)
}

// ExtractWeights derives one weight per chapter, in dataset order.
func ExtractWeights(src WeightSource, policy *config.Policy, grade domain.Grade, subject string, mode WeightMode) ([]domain.ChapterWeight, error) {
	chapters := src.Chapters(grade, subject)
	if len(chapters) == 0 {
		return nil, fmt.Errorf("grade %s %s: %w", grade, subject, domain.ErrNoChapters)
	}
	_, bp := policy.BandPolicyFor(grade)

	weights := make([]domain.ChapterWeight, 0, len(chapters))
	for _, ch := range chapters {
		w := bp.SoftCap
		if mode != WeightBandConstant {
			w = src.Weight(grade, subject, ch)
		}
		weights = append(weights, domain.ChapterWeight{ChapterID: ch, Weight: max(w, 1)})
	}
	return weights, nil
}
