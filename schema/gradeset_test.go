package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGradePayload(t *testing.T) {
	t.Run("itemized array", func(t *testing.T) {
		records := DecodeGradePayload([]byte(`[
			{"_id":"g1","subject_code":"CS101","activity_id":"act1","grade":4.2},
			{"_id":"g2","subject_code":"CS101","activity_id":"act3","grade":"4.5"}
		]`))
		require.Len(t, records, 2)

		set := NewGradeSet("CS101", records)
		assert.Equal(t, ItemizedShape, set.Shape)
		assert.Nil(t, set.Precomputed)
		g, ok := set.Lookup("act3")
		assert.True(t, ok)
		assert.InDelta(t, 4.5, g.Grade.Float64(), 1e-9)
	})

	t.Run("grades wrapper", func(t *testing.T) {
		records := DecodeGradePayload([]byte(`{"grades":[{"activity_id":"act1","grade":3}]}`))
		set := NewGradeSet("CS101", records)
		assert.Equal(t, ItemizedShape, set.Shape)
		assert.Len(t, set.Items, 1)
	})

	t.Run("empty grades wrapper is itemized", func(t *testing.T) {
		records := DecodeGradePayload([]byte(`{"grades":[]}`))
		set := NewGradeSet("CS101", records)
		assert.Equal(t, ItemizedShape, set.Shape)
		assert.True(t, set.IsEmpty())
	})

	t.Run("precomputed with breakdown", func(t *testing.T) {
		records := DecodeGradePayload([]byte(`[
			{"subject_code":"CS101","calculated_grade":"3.9","grades":[{"activity_id":"act1","grade":4}]}
		]`))
		set := NewGradeSet("CS101", records)
		assert.Equal(t, PrecomputedShape, set.Shape)
		require.NotNil(t, set.Precomputed)
		assert.InDelta(t, 3.9, *set.Precomputed, 1e-9)
		assert.Len(t, set.Items, 1)
	})

	t.Run("unknown objects", func(t *testing.T) {
		records := DecodeGradePayload([]byte(`[{"foo":"bar"}]`))
		set := NewGradeSet("CS101", records)
		assert.Equal(t, UnknownShape, set.Shape)
		assert.Equal(t, 1, set.Skipped)
	})

	t.Run("scalar payload", func(t *testing.T) {
		set := NewGradeSet("CS101", DecodeGradePayload([]byte(`42`)))
		assert.Equal(t, UnknownShape, set.Shape)
		assert.Equal(t, 1, set.Skipped)
		assert.True(t, set.IsEmpty())
	})

	t.Run("array of scalars", func(t *testing.T) {
		set := NewGradeSet("CS101", DecodeGradePayload([]byte(`[1,2]`)))
		assert.Equal(t, UnknownShape, set.Shape)
		assert.Equal(t, 2, set.Skipped)
	})

	t.Run("grades wrapper holding an object", func(t *testing.T) {
		records := DecodeGradePayload([]byte(`{"grades": {"a1": 4}}`))
		require.Len(t, records, 1)
		assert.False(t, records[0].Recognized())
		assert.Equal(t, UnknownShape, NewGradeSet("CS101", records).Shape)
	})

	t.Run("mistyped element is skipped", func(t *testing.T) {
		records := DecodeGradePayload([]byte(`[
			{"subject_code":"CS101","activity_id":7,"grade":4},
			{"subject_code":"CS101","activity_id":"act3","grade":4.5}
		]`))
		require.Len(t, records, 2)
		assert.Equal(t, "CS101", records[0].SubjectCode)

		set := NewGradeSet("CS101", records)
		assert.Equal(t, ItemizedShape, set.Shape)
		assert.Equal(t, 1, set.Skipped)
		require.Len(t, set.Items, 1)
		assert.Equal(t, "act3", set.Items[0].ActivityID)
	})

	t.Run("malformed json", func(t *testing.T) {
		set := NewGradeSet("CS101", DecodeGradePayload([]byte(`[{"activity_id":`)))
		assert.Equal(t, UnknownShape, set.Shape)
	})

	t.Run("null payload", func(t *testing.T) {
		records := DecodeGradePayload([]byte(` null `))
		assert.Equal(t, EmptyShape, NewGradeSet("CS101", records).Shape)
	})
}

func TestGroupSemesterRecords(t *testing.T) {
	records := DecodeGradePayload([]byte(`[
		{"subject_code":"CS101","activity_id":"act1","grade":4.2},
		{"subject_code":"CS201","activity_id":"act4","grade":3.8},
		{"subject_code":"CS101","activity_id":"act3","grade":4.5},
		{"grades":[{"subject_code":"CS302","activity_id":"x","grade":2}]}
	]`))

	grouped := GroupSemesterRecords(records)
	assert.Len(t, grouped["CS101"], 2)
	assert.Len(t, grouped["CS201"], 1)
	assert.Len(t, grouped["CS302"], 1)
}

func TestNumberAndTimestamp(t *testing.T) {
	var plan EvaluationPlan
	err := json.Unmarshal([]byte(`{
		"subject_code":"CS101","semester":"2024-1",
		"updated_at":"2024-03-01T10:00:00.123456",
		"activities":[
			{"id":"a","name":"A","percentage":"30"},
			{"id":"b","name":"B","percentage":"abc"},
			{"id":"c","name":"C","percentage":70}
		]}`), &plan)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, plan.TotalPercentage(), 1e-9)
	assert.Equal(t, 2024, plan.UpdatedAt.Year())
	assert.True(t, plan.CreatedAt.IsZero())
}

func TestGradeSetLookup(t *testing.T) {
	older := NewTimestamp(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	newer := NewTimestamp(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	set := NewGradeSet("CS101", ItemizedRecords([]StudentGrade{
		{ID: "g1", ActivityID: "act1", Grade: 2, UpdatedAt: older},
		{ID: "g2", ActivityID: "act1", Grade: 4, UpdatedAt: newer},
		{ID: "g3", ActivityID: "act2", Grade: 3},
		{ID: "g4", ActivityID: "act2", Grade: 5},
	}))

	g, ok := set.Lookup("act1")
	require.True(t, ok)
	assert.Equal(t, "g2", g.ID)

	g, ok = set.Lookup("act2")
	require.True(t, ok)
	assert.Equal(t, "g3", g.ID, "ties keep the first")

	_, ok = set.Lookup("act9")
	assert.False(t, ok)
}

func TestForPlan(t *testing.T) {
	calc := Number(3.9)
	records := []GradeRecord{
		{StudentGrade: StudentGrade{ID: "old", EvaluationPlanID: "plan1", ActivityID: "act1", Grade: 4.2}},
		{StudentGrade: StudentGrade{ID: "new", EvaluationPlanID: "plan9", ActivityID: "act1", Grade: 1}},
		{StudentGrade: StudentGrade{ID: "legacy", ActivityID: "act2", Grade: 3}},
		{CalculatedGrade: &calc, Grades: []StudentGrade{
			{ID: "n1", EvaluationPlanID: "plan1", ActivityID: "act1"},
			{ID: "n2", EvaluationPlanID: "plan9", ActivityID: "act3"},
		}},
	}

	kept := ForPlan(records, "plan9")
	require.Len(t, kept, 3)
	assert.Equal(t, "new", kept[0].ID)
	assert.Equal(t, "legacy", kept[1].ID)
	require.Len(t, kept[2].Grades, 1)
	assert.Equal(t, "n2", kept[2].Grades[0].ID)
	assert.Len(t, records[3].Grades, 2, "input records are not modified")
}
