package core

import (
	"context"
	"fmt"

	"github.com/trackademic/trackademic/core/grading"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/reqcache"
	"github.com/trackademic/trackademic/schema"
)

// AddPlanComment stores a comment on a plan. Blank comments never reach the store.
func AddPlanComment(ctx context.Context, cs contract.CommentStore, rc *reqcache.Cache, comment *schema.PlanComment) (*schema.PlanComment, error) {
	if err := grading.ValidateComment(comment); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	created, err := cs.CreatePlanComment(ctx, comment)
	if err != nil {
		return nil, err
	}
	invalidate(rc)
	return created, nil
}

// ListPlanComments returns the comments left on a plan, oldest first.
func ListPlanComments(ctx context.Context, cs contract.CommentStore, rc *reqcache.Cache, planID string) ([]schema.PlanComment, error) {
	if planID == "" {
		return nil, &grading.ValidationError{
			Err:    grading.ErrInvalidComment,
			Fields: []grading.FieldError{{Field: "evaluation_plan_id", Error: "evaluation_plan_id is a required field"}},
		}
	}
	comments, err := reqcache.Do(ctx, rc, reqcache.Key("plan-comments", planID),
		func(ctx context.Context) ([]schema.PlanComment, error) {
			return cs.GetPlanComments(ctx, planID)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments of plan %s: %w", planID, err)
	}
	return comments, nil
}

// DeletePlanComment removes one comment.
func DeletePlanComment(ctx context.Context, cs contract.CommentStore, rc *reqcache.Cache, commentID string) error {
	if err := cs.DeletePlanComment(ctx, commentID); err != nil {
		return err
	}
	invalidate(rc)
	return nil
}
