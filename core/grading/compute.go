package grading

import (
	"math"

	"github.com/trackademic/trackademic/schema"
)

// Compute derives the current grade and completion of one course.
//
// Itemized grades contribute grade*weight/100 per matched activity and are
// not renormalized, so ungraded activities pull the grade down. A precomputed
// grade is taken as is and counts as fully complete unless it carries an
// itemized breakdown. Unknown or empty sets yield no data.
func Compute(plan *schema.EvaluationPlan, set schema.GradeSet) schema.AggregatedGradeResult {
	if plan == nil || set.IsEmpty() {
		return schema.AggregatedGradeResult{}
	}

	switch set.Shape {
	case schema.ItemizedShape:
		w := weigh(plan, set)
		return schema.AggregatedGradeResult{
			CurrentGrade:        w.weightedSum,
			CompletedPercentage: completion(w.covered, w.total),
			HasData:             w.matched > 0,
		}
	case schema.PrecomputedShape:
		res := schema.AggregatedGradeResult{
			CurrentGrade:        *set.Precomputed,
			CompletedPercentage: schema.PercentTotal,
			HasData:             true,
		}
		if len(set.Items) > 0 {
			w := weigh(plan, set)
			res.CompletedPercentage = completion(w.covered, w.total)
		}
		return res
	default:
		return schema.AggregatedGradeResult{}
	}
}

// UngradedActivities lists the plan activities with no grade in the set.
// A precomputed grade without a breakdown counts every activity as graded.
func UngradedActivities(plan *schema.EvaluationPlan, set schema.GradeSet) []schema.Activity {
	if plan == nil {
		return nil
	}
	if set.Shape == schema.PrecomputedShape && len(set.Items) == 0 {
		return nil
	}
	var out []schema.Activity
	for _, a := range plan.Activities {
		if _, ok := set.Lookup(a.ID); !ok {
			out = append(out, a)
		}
	}
	return out
}

type weighing struct {
	weightedSum float64
	covered     float64
	total       float64
	matched     int
}

// weigh walks the plan activities and accumulates matched grades.
func weigh(plan *schema.EvaluationPlan, set schema.GradeSet) weighing {
	var w weighing
	for _, a := range plan.Activities {
		pct := a.Percentage.Float64()
		w.total += pct
		g, ok := set.Lookup(a.ID)
		if !ok {
			continue
		}
		w.matched++
		w.weightedSum += g.Grade.Float64() * (pct / schema.PercentTotal)
		w.covered += pct
	}
	return w
}

// completion turns covered weight into a 0..100 percentage of the plan total.
func completion(covered, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Min(schema.PercentTotal, covered/total*schema.PercentTotal)
}
