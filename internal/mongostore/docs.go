package mongostore

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trackademic/trackademic/schema"
)

// Documents written by the web application may carry ObjectID keys and
// integer or float numbers, so ids are decoded loosely and numbers as float64.

type courseDoc struct {
	ID      any    `bson:"_id,omitempty"`
	Code    string `bson:"code"`
	Title   string `bson:"title"`
	Credits int    `bson:"credits"`
}

type enrollmentDoc struct {
	ID            any    `bson:"_id,omitempty"`
	StudentID     string `bson:"student_id"`
	SubjectCode   string `bson:"subject_code"`
	SubjectName   string `bson:"subject_name,omitempty"`
	Semester      string `bson:"semester"`
	ProfessorID   string `bson:"professor_id,omitempty"`
	ProfessorName string `bson:"professor_name,omitempty"`
	GroupID       string `bson:"group_id,omitempty"`
	Status        string `bson:"status,omitempty"`
}

type activityDoc struct {
	ID          string  `bson:"id"`
	Name        string  `bson:"name"`
	Percentage  float64 `bson:"percentage"`
	Description string  `bson:"description,omitempty"`
}

type planDoc struct {
	ID          any           `bson:"_id,omitempty"`
	SubjectCode string        `bson:"subject_code"`
	SubjectName string        `bson:"subject_name,omitempty"`
	Semester    string        `bson:"semester"`
	Activities  []activityDoc `bson:"activities"`
	CreatedBy   string        `bson:"created_by,omitempty"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

type gradeDoc struct {
	ID                 any       `bson:"_id,omitempty"`
	EvaluationPlanID   string    `bson:"evaluation_plan_id"`
	SubjectCode        string    `bson:"subject_code"`
	StudentID          string    `bson:"student_id"`
	ActivityID         string    `bson:"activity_id"`
	ActivityName       string    `bson:"activity_name,omitempty"`
	ActivityPercentage float64   `bson:"activity_percentage"`
	Semester           string    `bson:"semester,omitempty"`
	Grade              float64   `bson:"grade"`
	CreatedAt          time.Time `bson:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

type commentDoc struct {
	ID               any       `bson:"_id,omitempty"`
	EvaluationPlanID string    `bson:"evaluation_plan_id"`
	StudentID        string    `bson:"student_id"`
	StudentName      string    `bson:"student_name,omitempty"`
	Comment          string    `bson:"comment"`
	CreatedAt        time.Time `bson:"created_at"`
}

// idString renders a document key as a string.
func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprint(id)
	}
}

// idFilter matches a key stored either as a string or as the equivalent ObjectID.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

func toTime(ts schema.Timestamp) time.Time {
	if ts.IsZero() {
		return time.Time{}
	}
	return ts.UTC()
}

func fromTime(t time.Time) schema.Timestamp {
	if t.IsZero() {
		return schema.Timestamp{}
	}
	return schema.NewTimestamp(t.UTC())
}

func (d courseDoc) toSchema() schema.Course {
	return schema.Course{ID: idString(d.ID), Code: d.Code, Title: d.Title, Credits: d.Credits}
}

func newCourseDoc(c schema.Course) courseDoc {
	return courseDoc{ID: emptyToNil(c.ID), Code: c.Code, Title: c.Title, Credits: c.Credits}
}

func (d enrollmentDoc) toSchema() schema.StudentCourse {
	return schema.StudentCourse{
		ID:            idString(d.ID),
		StudentID:     d.StudentID,
		SubjectCode:   d.SubjectCode,
		SubjectName:   d.SubjectName,
		Semester:      d.Semester,
		ProfessorID:   d.ProfessorID,
		ProfessorName: d.ProfessorName,
		GroupID:       d.GroupID,
		Status:        d.Status,
	}
}

func newEnrollmentDoc(sc schema.StudentCourse) enrollmentDoc {
	return enrollmentDoc{
		ID:            emptyToNil(sc.ID),
		StudentID:     sc.StudentID,
		SubjectCode:   sc.SubjectCode,
		SubjectName:   sc.SubjectName,
		Semester:      sc.Semester,
		ProfessorID:   sc.ProfessorID,
		ProfessorName: sc.ProfessorName,
		GroupID:       sc.GroupID,
		Status:        sc.Status,
	}
}

func (d planDoc) toSchema() schema.EvaluationPlan {
	p := schema.EvaluationPlan{
		ID:          idString(d.ID),
		SubjectCode: d.SubjectCode,
		SubjectName: d.SubjectName,
		Semester:    d.Semester,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   fromTime(d.CreatedAt),
		UpdatedAt:   fromTime(d.UpdatedAt),
	}
	for _, a := range d.Activities {
		p.Activities = append(p.Activities, schema.Activity{
			ID:          a.ID,
			Name:        a.Name,
			Percentage:  schema.Number(a.Percentage),
			Description: a.Description,
		})
	}
	return p
}

func newActivityDocs(activities []schema.Activity) []activityDoc {
	out := make([]activityDoc, 0, len(activities))
	for _, a := range activities {
		out = append(out, activityDoc{
			ID:          a.ID,
			Name:        a.Name,
			Percentage:  a.Percentage.Float64(),
			Description: a.Description,
		})
	}
	return out
}

func newPlanDoc(p schema.EvaluationPlan) planDoc {
	return planDoc{
		ID:          emptyToNil(p.ID),
		SubjectCode: p.SubjectCode,
		SubjectName: p.SubjectName,
		Semester:    p.Semester,
		Activities:  newActivityDocs(p.Activities),
		CreatedBy:   p.CreatedBy,
		CreatedAt:   toTime(p.CreatedAt),
		UpdatedAt:   toTime(p.UpdatedAt),
	}
}

func (d gradeDoc) toSchema() schema.StudentGrade {
	return schema.StudentGrade{
		ID:                 idString(d.ID),
		EvaluationPlanID:   d.EvaluationPlanID,
		SubjectCode:        d.SubjectCode,
		StudentID:          d.StudentID,
		ActivityID:         d.ActivityID,
		ActivityName:       d.ActivityName,
		ActivityPercentage: schema.Number(d.ActivityPercentage),
		Semester:           d.Semester,
		Grade:              schema.Number(d.Grade),
		CreatedAt:          fromTime(d.CreatedAt),
		UpdatedAt:          fromTime(d.UpdatedAt),
	}
}

func newGradeDoc(g schema.StudentGrade) gradeDoc {
	return gradeDoc{
		ID:                 emptyToNil(g.ID),
		EvaluationPlanID:   g.EvaluationPlanID,
		SubjectCode:        g.SubjectCode,
		StudentID:          g.StudentID,
		ActivityID:         g.ActivityID,
		ActivityName:       g.ActivityName,
		ActivityPercentage: g.ActivityPercentage.Float64(),
		Semester:           g.Semester,
		Grade:              g.Grade.Float64(),
		CreatedAt:          toTime(g.CreatedAt),
		UpdatedAt:          toTime(g.UpdatedAt),
	}
}

func (d commentDoc) toSchema() schema.PlanComment {
	return schema.PlanComment{
		ID:               idString(d.ID),
		EvaluationPlanID: d.EvaluationPlanID,
		StudentID:        d.StudentID,
		StudentName:      d.StudentName,
		Comment:          d.Comment,
		CreatedAt:        fromTime(d.CreatedAt),
	}
}

func newCommentDoc(c schema.PlanComment) commentDoc {
	return commentDoc{
		ID:               emptyToNil(c.ID),
		EvaluationPlanID: c.EvaluationPlanID,
		StudentID:        c.StudentID,
		StudentName:      c.StudentName,
		Comment:          c.Comment,
		CreatedAt:        toTime(c.CreatedAt),
	}
}

// emptyToNil lets the server assign a key when none is given.
func emptyToNil(id string) any {
	if id == "" {
		return nil
	}
	return id
}
