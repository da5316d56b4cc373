package schema

// Course is catalog information about a subject.
type Course struct {
	ID          string `json:"_id,omitempty"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Credits     int    `json:"credits"`
	SubjectName string `json:"subject_name,omitempty"`
}

// StudentCourse is an enrollment of a student in a subject for a semester.
type StudentCourse struct {
	ID            string `json:"_id,omitempty"`
	StudentID     string `json:"student_id"`
	SubjectCode   string `json:"subject_code"`
	SubjectName   string `json:"subject_name,omitempty"`
	Semester      string `json:"semester"`
	ProfessorID   string `json:"professor_id,omitempty"`
	ProfessorName string `json:"professor_name,omitempty"`
	GroupID       string `json:"group_id,omitempty"`
	Status        string `json:"status,omitempty"`
}

// Activity is one weighted component of an evaluation plan.
type Activity struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Percentage  Number `json:"percentage" validate:"gte=0,lte=100"`
	Description string `json:"description,omitempty"`
}

// EvaluationPlan is a weighted grading scheme for one subject and semester.
type EvaluationPlan struct {
	ID          string     `json:"_id,omitempty"`
	SubjectCode string     `json:"subject_code" validate:"required"`
	SubjectName string     `json:"subject_name,omitempty"`
	Semester    string     `json:"semester" validate:"required"`
	Activities  []Activity `json:"activities" validate:"dive"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   Timestamp  `json:"updated_at"`
}

// TotalPercentage sums the weights of all activities.
func (p *EvaluationPlan) TotalPercentage() float64 {
	var total float64
	for _, a := range p.Activities {
		total += a.Percentage.Float64()
	}
	return total
}

// StudentGrade is a grade recorded by a student for one activity.
type StudentGrade struct {
	ID                 string    `json:"_id,omitempty"`
	EvaluationPlanID   string    `json:"evaluation_plan_id"`
	SubjectCode        string    `json:"subject_code"`
	StudentID          string    `json:"student_id" validate:"required"`
	ActivityID         string    `json:"activity_id" validate:"required"`
	ActivityName       string    `json:"activity_name,omitempty"`
	ActivityPercentage Number    `json:"activity_percentage,omitempty"`
	Semester           string    `json:"semester,omitempty"`
	Grade              Number    `json:"grade" validate:"gte=0,lte=5"`
	CreatedAt          Timestamp `json:"created_at"`
	UpdatedAt          Timestamp `json:"updated_at"`
}

// PlanComment is a note a student left on an evaluation plan.
type PlanComment struct {
	ID               string    `json:"_id,omitempty"`
	EvaluationPlanID string    `json:"evaluation_plan_id" validate:"required"`
	StudentID        string    `json:"student_id" validate:"required"`
	StudentName      string    `json:"student_name,omitempty"`
	Comment          string    `json:"comment" validate:"required"`
	CreatedAt        Timestamp `json:"created_at"`
}

// Dataset is a full set of records used to reset a store.
type Dataset struct {
	Courses     []Course
	Enrollments []StudentCourse
	Plans       []EvaluationPlan
	Grades      []StudentGrade
	Comments    []PlanComment
}
