// Package consensus reduces the reports attached to one business into the
// single current-practice view the UI renders.
package consensus

import (
	"sort"

	"tipmap-service/internal/model"
)

// Consensus is the reduction of a business's report history. Nil pointer
// fields mean "unknown".
type Consensus struct {
	TipPractice             *model.TipPractice
	TipsGoToStaff           *bool
	SuggestedTips           []int
	ServiceChargePercentage *int
	ReportCount             int
}

// Aggregate reduces a business's reports into a Consensus. It never fails:
// an empty report set yields a fully unknown view. The result depends only
// on creation-time order (created_at, then id as a tie-break), so a
// partial, still-growing report set simply produces the consensus of what
// has been seen so far.
//
// Reduction rules:
//   - TipPractice: category with the highest occurrence count, ties broken
//     in favor of the most recently reported category.
//   - TipsGoToStaff: value of the most recent tip-relevant report that
//     carries a non-nil observation.
//   - SuggestedTips: list from the most recent tip-requested report that
//     supplied a non-empty list. Posted suggested percentages are treated
//     as a current-state fact, so latest wins; lists are never merged or
//     averaged across reports.
//   - ServiceChargePercentage: same latest-wins rule, scoped to mandatory
//     service-charge reports.
func Aggregate(reports []model.Report) Consensus {
	result := Consensus{ReportCount: len(reports)}
	if len(reports) == 0 {
		return result
	}

	ordered := make([]model.Report, len(reports))
	copy(ordered, reports)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	result.TipPractice = dominantPractice(ordered)

	// Latest-wins scans, newest first.
	for i := len(ordered) - 1; i >= 0; i-- {
		r := ordered[i]
		if result.TipsGoToStaff == nil && r.TipPractice.TipRelevant() && r.TipsGoToStaff != nil {
			v := *r.TipsGoToStaff
			result.TipsGoToStaff = &v
		}
		if result.SuggestedTips == nil && r.TipPractice == model.TipPracticeTipRequested && len(r.SuggestedTips) > 0 {
			result.SuggestedTips = append([]int(nil), r.SuggestedTips...)
		}
		if result.ServiceChargePercentage == nil && r.TipPractice == model.TipPracticeServiceCharge && r.ServiceChargePercentage != nil {
			v := *r.ServiceChargePercentage
			result.ServiceChargePercentage = &v
		}
	}
	if result.SuggestedTips == nil {
		result.SuggestedTips = []int{}
	}
	return result
}

// dominantPractice picks the most frequent category; a tie resolves to the
// category seen most recently among the tied ones.
func dominantPractice(ordered []model.Report) *model.TipPractice {
	counts := make(map[model.TipPractice]int)
	lastSeen := make(map[model.TipPractice]int)
	for i, r := range ordered {
		counts[r.TipPractice]++
		lastSeen[r.TipPractice] = i
	}

	var best model.TipPractice
	bestCount := -1
	bestLast := -1
	for practice, count := range counts {
		if count > bestCount || (count == bestCount && lastSeen[practice] > bestLast) {
			best = practice
			bestCount = count
			bestLast = lastSeen[practice]
		}
	}
	return &best
}
