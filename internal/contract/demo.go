package contract

import (
	"time"

	"github.com/trackademic/trackademic/schema"
)

// DemoDataset returns the demo records loaded by the seed command.
// Timestamps are set to now.
func DemoDataset(now time.Time) schema.Dataset {
	ts := schema.NewTimestamp(now)
	const student = DefaultStudentID
	const semester = DefaultSemester

	act := func(id, name, desc string, pct float64) schema.Activity {
		return schema.Activity{ID: id, Name: name, Description: desc, Percentage: schema.Number(pct)}
	}
	grade := func(id, subject, plan, activity, name string, pct, value float64) schema.StudentGrade {
		return schema.StudentGrade{
			ID:                 id,
			EvaluationPlanID:   plan,
			SubjectCode:        subject,
			StudentID:          student,
			ActivityID:         activity,
			ActivityName:       name,
			ActivityPercentage: schema.Number(pct),
			Semester:           semester,
			Grade:              schema.Number(value),
			CreatedAt:          ts,
			UpdatedAt:          ts,
		}
	}

	return schema.Dataset{
		Courses: []schema.Course{
			{ID: "course1", Code: "CS101", Title: "Introduction to Programming", Credits: 3},
			{ID: "course2", Code: "CS201", Title: "Data Structures", Credits: 4},
			{ID: "course3", Code: "CS302", Title: "Algorithms", Credits: 4},
			{ID: "course4", Code: "CS403", Title: "Database Systems", Credits: 3},
		},
		Enrollments: []schema.StudentCourse{
			{
				ID: "sc1", StudentID: student, SubjectCode: "CS101", SubjectName: "Introduction to Programming",
				Semester: semester, ProfessorID: "1001", ProfessorName: "John Doe", Status: "active", GroupID: "1-CS101-2024-1",
			},
			{
				ID: "sc2", StudentID: student, SubjectCode: "CS201", SubjectName: "Data Structures",
				Semester: semester, ProfessorID: "1002", ProfessorName: "Jane Smith", Status: "active", GroupID: "1-CS201-2024-1",
			},
		},
		Plans: []schema.EvaluationPlan{
			{
				ID: "plan1", SubjectCode: "CS101", Semester: semester, CreatedBy: student, CreatedAt: ts, UpdatedAt: ts,
				Activities: []schema.Activity{
					act("act1", "Midterm Exam", "Written exam", 30),
					act("act2", "Final Project", "Group project", 40),
					act("act3", "Assignments", "Weekly homework", 30),
				},
			},
			{
				ID: "plan2", SubjectCode: "CS201", Semester: semester, CreatedBy: student, CreatedAt: ts, UpdatedAt: ts,
				Activities: []schema.Activity{
					act("act4", "Quiz 1", "First quiz", 15),
					act("act5", "Quiz 2", "Second quiz", 15),
					act("act6", "Midterm Exam", "Written exam", 30),
					act("act7", "Final Exam", "Comprehensive exam", 40),
				},
			},
		},
		Grades: []schema.StudentGrade{
			grade("grade1", "CS101", "plan1", "act1", "Midterm Exam", 30, 4.2),
			grade("grade2", "CS101", "plan1", "act3", "Assignments", 30, 4.5),
			grade("grade3", "CS201", "plan2", "act4", "Quiz 1", 15, 3.8),
		},
	}
}
