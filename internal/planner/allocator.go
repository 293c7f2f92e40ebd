package planner

import (
	"fmt"

	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/domain"
)

// Allocator turns chapter weights into per-chapter unit counts that sum
// exactly to a budget.
type Allocator struct {
	policy *config.Policy
}

func NewAllocator(policy *config.Policy) *Allocator {
	return &Allocator{policy: policy}
}

// Allocate is deterministic and side-effect free. Weights are processed in
// the order given; that order is also the reconciliation order.
//
// Each chapter needs base + min(max(weight,1), soft_cap) + integration
// units, clamped up to the band minimum. If the total exceeds the budget,
// every chapter is scaled down (floored, clamped to the minimum). The
// result is then reconciled round-robin from the first chapter until it
// sums to the budget. Small corrections therefore land on chapters early
// in the order.
func (a *Allocator) Allocate(weights []domain.ChapterWeight, grade domain.Grade, subject string, budget int) (*domain.AnnualPlan, error) {
	if len(weights) == 0 {
		return nil, domain.ErrNoChapters
	}
	if budget <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidBudget, budget)
	}
	seen := make(map[string]bool, len(weights))
	for _, w := range weights {
		if seen[w.ChapterID] {
			return nil, fmt.Errorf("duplicate chapter %q in weights", w.ChapterID)
		}
		seen[w.ChapterID] = true
	}

	band, bp := a.policy.BandPolicyFor(grade)
	if budget < len(weights)*bp.MinUnits {
		return nil, &domain.BudgetTooSmallError{Chapters: len(weights), MinUnits: bp.MinUnits, Budget: budget}
	}

	alloc := make([]int, len(weights))
	totalRequired := 0
	for i, w := range weights {
		alloc[i] = a.requiredUnits(w.Weight, bp)
		totalRequired += alloc[i]
	}

	if totalRequired > budget {
		for i := range alloc {
			// Integer floor of required * budget / totalRequired.
			alloc[i] = max(alloc[i]*budget/totalRequired, bp.MinUnits)
		}
	}

	reconcile(alloc, budget, bp.MinUnits)

	plan := &domain.AnnualPlan{
		Grade:       grade,
		Subject:     subject,
		Band:        band,
		TotalBudget: budget,
		Chapters:    make([]domain.PlannedChapter, len(weights)),
	}
	for i, w := range weights {
		plan.Chapters[i] = domain.PlannedChapter{ChapterID: w.ChapterID, RequiredUnits: alloc[i]}
	}
	return plan, nil
}

// RequiredUnits is the unscaled unit need of a chapter for a grade.
func (a *Allocator) RequiredUnits(weight int, grade domain.Grade) int {
	_, bp := a.policy.BandPolicyFor(grade)
	return a.requiredUnits(weight, bp)
}

func (a *Allocator) requiredUnits(weight int, bp config.BandPolicy) int {
	need := bp.BaseUnits + clamp(weight, 1, bp.SoftCap) + a.policy.IntegrationUnits
	return max(need, bp.MinUnits)
}

// reconcile brings alloc to sum to budget. A shortfall is handed out
// evenly, the remainder going to the first chapters. An excess is taken
// in passes over the chapters still above minUnits, a final partial pass
// taking from the front. Callers guarantee budget >= len(alloc)*minUnits.
func reconcile(alloc []int, budget, minUnits int) {
	diff := budget
	for _, v := range alloc {
		diff -= v
	}
	if diff >= 0 {
		q, r := diff/len(alloc), diff%len(alloc)
		for i := range alloc {
			alloc[i] += q
			if i < r {
				alloc[i]++
			}
		}
		return
	}

	excess := -diff
	for excess > 0 {
		var open []int
		room := excess
		for i, v := range alloc {
			if v > minUnits {
				open = append(open, i)
				room = min(room, v-minUnits)
			}
		}
		passes := min(excess/len(open), room)
		if passes == 0 {
			for _, i := range open[:excess] {
				alloc[i]--
			}
			return
		}
		for _, i := range open {
			alloc[i] -= passes
		}
		excess -= passes * len(open)
	}
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
