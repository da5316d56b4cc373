// Package mongostore is a Repository over the MongoDB collections of the web application.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/schema"
)

// Collection names.
const (
	coursesCollection     = "courses"
	enrollmentsCollection = "student_courses"
	plansCollection       = "evaluation_plans"
	gradesCollection      = "student_grades"
	commentsCollection    = "plan_comments"
)

// PasswordPlaceholder is replaced in connection strings by ExpandURI.
const PasswordPlaceholder = "<db_password>"

// Store reads and writes the application collections.
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	courses     *mongo.Collection
	enrollments *mongo.Collection
	plans       *mongo.Collection
	grades      *mongo.Collection
	comments    *mongo.Collection
	timeout     time.Duration
}

var _ contract.Repository = &Store{} // Compile-time check

// ExpandURI substitutes the password placeholder of an Atlas connection string.
func ExpandURI(uri, password string) string {
	if password == "" {
		return uri
	}
	return strings.ReplaceAll(uri, PasswordPlaceholder, password)
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, uri, dbName string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = contract.DefaultRequestTimeout
	}
	if dbName == "" {
		dbName = contract.DefaultMongoDBName
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	return &Store{
		client:      client,
		db:          db,
		courses:     db.Collection(coursesCollection),
		enrollments: db.Collection(enrollmentsCollection),
		plans:       db.Collection(plansCollection),
		grades:      db.Collection(gradesCollection),
		comments:    db.Collection(commentsCollection),
		timeout:     timeout,
	}, nil
}

// findAll decodes every document matching filter into T.
func findAll[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", col.Name(), err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", col.Name(), err)
	}
	return out, nil
}

// GetStudentCourses returns the enrollments of a student in a semester.
func (s *Store) GetStudentCourses(ctx context.Context, studentID, semester string) ([]schema.StudentCourse, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	docs, err := findAll[enrollmentDoc](queryCtx, s.enrollments,
		bson.M{"student_id": studentID, "semester": semester},
		options.Find().SetSort(bson.D{{Key: "subject_code", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]schema.StudentCourse, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toSchema())
	}
	return out, nil
}

// GetEvaluationPlans returns every plan for a subject in a semester.
func (s *Store) GetEvaluationPlans(ctx context.Context, subjectCode, semester string) ([]schema.EvaluationPlan, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	docs, err := findAll[planDoc](queryCtx, s.plans,
		bson.M{"subject_code": subjectCode, "semester": semester},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]schema.EvaluationPlan, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toSchema())
	}
	return out, nil
}

// GetGradesByPlan returns itemized grade records of a student under one plan.
func (s *Store) GetGradesByPlan(ctx context.Context, planID, studentID string) ([]schema.GradeRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.findGrades(queryCtx, bson.M{"evaluation_plan_id": planID, "student_id": studentID})
}

// GetGradesBySemester returns itemized grade records for every enrolled subject of the semester.
func (s *Store) GetGradesBySemester(ctx context.Context, studentID, semester string) ([]schema.GradeRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	codes, err := s.enrollments.Distinct(queryCtx, "subject_code", bson.M{"student_id": studentID, "semester": semester})
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled subjects: %w", err)
	}
	if len(codes) == 0 {
		return nil, nil
	}
	return s.findGrades(queryCtx, bson.M{"student_id": studentID, "subject_code": bson.M{"$in": codes}})
}

func (s *Store) findGrades(ctx context.Context, filter bson.M) ([]schema.GradeRecord, error) {
	docs, err := findAll[gradeDoc](ctx, s.grades, filter,
		options.Find().SetSort(bson.D{{Key: "subject_code", Value: 1}, {Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	grades := make([]schema.StudentGrade, 0, len(docs))
	for _, d := range docs {
		grades = append(grades, d.toSchema())
	}
	return schema.ItemizedRecords(grades), nil
}

// GetCourse returns catalog details of a subject.
func (s *Store) GetCourse(ctx context.Context, subjectCode string) (*schema.Course, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc courseDoc
	err := s.courses.FindOne(queryCtx, bson.M{"code": subjectCode}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, contract.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query course %s: %w", subjectCode, err)
	}
	c := doc.toSchema()
	return &c, nil
}

// CreatePlan inserts a plan, assigning an ID and timestamps.
func (s *Store) CreatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p := *plan
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := schema.NewTimestamp(time.Now().UTC())
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := s.plans.InsertOne(queryCtx, newPlanDoc(p)); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return &p, nil
}

// UpdatePlan replaces the activities and name of an existing plan.
func (s *Store) UpdatePlan(ctx context.Context, plan *schema.EvaluationPlan) (*schema.EvaluationPlan, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"subject_name": plan.SubjectName,
		"activities":   newActivityDocs(plan.Activities),
		"updated_at":   time.Now().UTC(),
	}}
	var doc planDoc
	err := s.plans.FindOneAndUpdate(queryCtx, idFilter(plan.ID), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, contract.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update plan %s: %w", plan.ID, err)
	}
	p := doc.toSchema()
	return &p, nil
}

// CreateGrade inserts a grade, assigning an ID and timestamps.
func (s *Store) CreateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g := *grade
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := schema.NewTimestamp(time.Now().UTC())
	g.CreatedAt, g.UpdatedAt = now, now
	if _, err := s.grades.InsertOne(queryCtx, newGradeDoc(g)); err != nil {
		return nil, fmt.Errorf("failed to create grade: %w", err)
	}
	return &g, nil
}

// UpdateGrade changes the value of an existing grade.
func (s *Store) UpdateGrade(ctx context.Context, grade *schema.StudentGrade) (*schema.StudentGrade, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"grade":      grade.Grade.Float64(),
		"updated_at": time.Now().UTC(),
	}}
	var doc gradeDoc
	err := s.grades.FindOneAndUpdate(queryCtx, idFilter(grade.ID), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, contract.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update grade %s: %w", grade.ID, err)
	}
	g := doc.toSchema()
	return &g, nil
}

// DeletePlan removes a plan and the comments left on it.
func (s *Store) DeletePlan(ctx context.Context, planID string) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := deleteOne(queryCtx, s.plans, planID); err != nil {
		return err
	}
	if _, err := s.comments.DeleteMany(queryCtx, bson.M{"evaluation_plan_id": planID}); err != nil {
		return fmt.Errorf("failed to delete comments of plan %s: %w", planID, err)
	}
	return nil
}

// DeleteGrade removes one grade.
func (s *Store) DeleteGrade(ctx context.Context, gradeID string) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return deleteOne(queryCtx, s.grades, gradeID)
}

// GetPlanComments returns the comments of a plan, oldest first.
func (s *Store) GetPlanComments(ctx context.Context, planID string) ([]schema.PlanComment, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	docs, err := findAll[commentDoc](queryCtx, s.comments,
		bson.M{"evaluation_plan_id": planID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]schema.PlanComment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toSchema())
	}
	return out, nil
}

// CreatePlanComment inserts a comment, assigning an ID and a creation time.
func (s *Store) CreatePlanComment(ctx context.Context, comment *schema.PlanComment) (*schema.PlanComment, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c := *comment
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = schema.NewTimestamp(time.Now().UTC())
	if _, err := s.comments.InsertOne(queryCtx, newCommentDoc(c)); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &c, nil
}

// DeletePlanComment removes one comment.
func (s *Store) DeletePlanComment(ctx context.Context, commentID string) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return deleteOne(queryCtx, s.comments, commentID)
}

func deleteOne(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("failed to delete %s from %s: %w", id, col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return contract.ErrNotFound
	}
	return nil
}

// ResetAndSeed empties the collections and inserts data.
func (s *Store) ResetAndSeed(ctx context.Context, data schema.Dataset) error {
	for _, col := range []*mongo.Collection{s.comments, s.grades, s.plans, s.enrollments, s.courses} {
		if _, err := col.DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clear %s: %w", col.Name(), err)
		}
	}

	inserts := []struct {
		col  *mongo.Collection
		docs []any
	}{
		{s.courses, toDocs(data.Courses, newCourseDoc)},
		{s.enrollments, toDocs(data.Enrollments, newEnrollmentDoc)},
		{s.plans, toDocs(data.Plans, newPlanDoc)},
		{s.grades, toDocs(data.Grades, newGradeDoc)},
		{s.comments, toDocs(data.Comments, newCommentDoc)},
	}
	for _, in := range inserts {
		if len(in.docs) == 0 {
			continue
		}
		if _, err := in.col.InsertMany(ctx, in.docs); err != nil {
			return fmt.Errorf("failed to seed %s: %w", in.col.Name(), err)
		}
	}
	return nil
}

func toDocs[T, D any](items []T, conv func(T) D) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, conv(item))
	}
	return out
}

// GetStatus returns document counts per collection.
func (s *Store) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{Backend: string(schema.MongoDBBackend)}
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Ping(queryCtx, readpref.Primary()); err != nil {
		return status, nil
	}
	status.Connected = true

	counts := []struct {
		col *mongo.Collection
		dst *int
	}{
		{s.courses, &status.Courses},
		{s.enrollments, &status.Enrollments},
		{s.plans, &status.Plans},
		{s.grades, &status.Grades},
	}
	for _, c := range counts {
		n, err := c.col.CountDocuments(queryCtx, bson.M{})
		if err != nil {
			return status, fmt.Errorf("failed to count %s: %w", c.col.Name(), err)
		}
		*c.dst = int(n)
	}
	return status, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
