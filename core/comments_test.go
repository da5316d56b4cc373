package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trackademic/trackademic/core/grading"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/reqcache"
	"github.com/trackademic/trackademic/schema"
)

func TestAddPlanComment(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and invalidates", func(t *testing.T) {
		in := &schema.PlanComment{EvaluationPlanID: "plan1", StudentID: "A1", Comment: "Labs weigh too little"}
		cs := &contract.MockCommentStore{}
		cs.On("CreatePlanComment", ctx, in).Return(&schema.PlanComment{ID: "c1", Comment: in.Comment}, nil)
		rc := warmCache(t)

		created, err := AddPlanComment(ctx, cs, rc, in)
		require.NoError(t, err)
		assert.Equal(t, "c1", created.ID)
		assert.Equal(t, 0, rc.Len())
		cs.AssertExpectations(t)
	})

	t.Run("rejects a blank comment", func(t *testing.T) {
		cs := &contract.MockCommentStore{}
		_, err := AddPlanComment(ctx, cs, nil, &schema.PlanComment{EvaluationPlanID: "plan1", StudentID: "A1", Comment: "   "})

		var ve *grading.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.ErrorIs(t, err, grading.ErrInvalidComment)
		assert.Equal(t, "comment", ve.Fields[0].Field)
		cs.AssertNotCalled(t, "CreatePlanComment", mock.Anything, mock.Anything)
	})
}

func TestPlanCommentsLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := demoStore()
	rc := reqcache.New()

	none, err := ListPlanComments(ctx, repo, rc, "plan1")
	require.NoError(t, err)
	assert.Empty(t, none)

	created, err := AddPlanComment(ctx, repo, rc, &schema.PlanComment{
		EvaluationPlanID: "plan1", StudentID: contract.DefaultStudentID, Comment: "Can we drop the quiz?",
	})
	require.NoError(t, err)

	comments, err := ListPlanComments(ctx, repo, rc, "plan1")
	require.NoError(t, err)
	require.Len(t, comments, 1, "a new comment is visible after the cached empty list")
	assert.Equal(t, created.ID, comments[0].ID)

	require.NoError(t, DeletePlanComment(ctx, repo, rc, created.ID))
	comments, err = ListPlanComments(ctx, repo, rc, "plan1")
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, DeletePlanComment(ctx, repo, rc, created.ID), contract.ErrNotFound)

	_, err = ListPlanComments(ctx, repo, rc, "")
	assert.ErrorIs(t, err, grading.ErrInvalidComment)
}

func TestDeletedGradeIsUngradedAgain(t *testing.T) {
	ctx := quietCtx()
	repo := demoStore()
	rc := reqcache.New()
	cfg := demoConfig()

	before, err := BuildCourseGrade(ctx, repo, rc, cfg, "CS201")
	require.NoError(t, err)
	require.True(t, before.HasData)

	records, err := repo.GetGradesByPlan(ctx, "plan2", contract.DefaultStudentID)
	require.NoError(t, err)
	g, ok := schema.NewGradeSet("CS201", records).Lookup("act4")
	require.True(t, ok)

	require.NoError(t, DeleteGrade(ctx, repo, rc, g.ID))
	after, err := BuildCourseGrade(ctx, repo, rc, cfg, "CS201")
	require.NoError(t, err)
	assert.False(t, after.HasData)
}
