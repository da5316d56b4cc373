// Package grading has the pure grade logic: plan weight validation, plan
// selection and the weighted course grade.
package grading

import (
	"math"

	"github.com/trackademic/trackademic/schema"
)

// PercentageSum adds up the activity weights. Non-numeric weights count as 0.
func PercentageSum(activities []schema.Activity) float64 {
	var sum float64
	for _, a := range activities {
		sum += a.Percentage.Float64()
	}
	return sum
}

// ValidatePercentages reports whether the weights sum to 100 within tolerance.
// An empty set is never valid.
func ValidatePercentages(activities []schema.Activity) bool {
	if len(activities) == 0 {
		return false
	}
	return math.Abs(PercentageSum(activities)-schema.PercentTotal) < schema.PercentTolerance
}

// PlanStateOf classifies a plan as absent, draft or complete.
func PlanStateOf(plan *schema.EvaluationPlan) schema.PlanState {
	switch {
	case plan == nil:
		return schema.PlanAbsent
	case ValidatePercentages(plan.Activities):
		return schema.PlanComplete
	default:
		return schema.PlanDraft
	}
}

// SelectLatest returns the plan with the greatest UpdatedAt, or nil when there are none.
// Ties keep the earliest plan in input order.
func SelectLatest(plans []schema.EvaluationPlan) *schema.EvaluationPlan {
	if len(plans) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(plans); i++ {
		if plans[i].UpdatedAt.After(plans[best].UpdatedAt.Time) {
			best = i
		}
	}
	latest := plans[best]
	return &latest
}
