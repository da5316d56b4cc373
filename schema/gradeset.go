package schema

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrUnrecognizedShape describes grade records that match no known payload shape.
var ErrUnrecognizedShape = errors.New("unrecognized grade payload shape")

// GradeRecord is one element of a grade payload as served by any backend.
// It is the union of an itemized grade, a {grades: [...]} wrapper and a
// pre-aggregated record carrying calculated_grade.
type GradeRecord struct {
	StudentGrade
	SubjectName     string         `json:"subject_name,omitempty"`
	CalculatedGrade *Number        `json:"calculated_grade,omitempty"`
	Grades          []StudentGrade `json:"grades,omitempty"`
}

// Recognized reports whether the record matches one of the known shapes.
func (r GradeRecord) Recognized() bool {
	return r.CalculatedGrade != nil || r.Grades != nil || r.ActivityID != ""
}

// GradeSet is the canonical form of the grades one student holds in one course.
type GradeSet struct {
	SubjectCode string
	Shape       GradeShape
	Items       []StudentGrade
	Precomputed *float64
	Skipped     int // records that matched no known shape
}

// DecodeGradePayload decodes a raw grade payload into records. Arrays, single
// objects and {grades: [...]} wrappers are accepted.
//
// Decoding never fails. An element that does not decode becomes an
// unrecognized record that keeps only its subject code, and a payload that is
// neither an array nor an object becomes a single unrecognized record.
func DecodeGradePayload(data []byte) []GradeRecord {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return []GradeRecord{{}}
		}
		records := make([]GradeRecord, 0, len(elems))
		for _, raw := range elems {
			records = append(records, decodeGradeRecord(raw))
		}
		return records
	case '{':
		return []GradeRecord{decodeGradeRecord(data)}
	default:
		return []GradeRecord{{}}
	}
}

func decodeGradeRecord(raw json.RawMessage) GradeRecord {
	var rec GradeRecord
	if err := json.Unmarshal(raw, &rec); err == nil {
		return rec
	}
	var key struct {
		SubjectCode string `json:"subject_code"`
	}
	_ = json.Unmarshal(raw, &key)
	return GradeRecord{StudentGrade: StudentGrade{SubjectCode: key.SubjectCode}}
}

// ItemizedRecords wraps plain grades as records.
func ItemizedRecords(grades []StudentGrade) []GradeRecord {
	records := make([]GradeRecord, 0, len(grades))
	for _, g := range grades {
		records = append(records, GradeRecord{StudentGrade: g})
	}
	return records
}

// NewGradeSet folds records into one GradeSet.
// A calculated grade makes the set precomputed; any nested or itemized grades
// are kept as its breakdown.
func NewGradeSet(subjectCode string, records []GradeRecord) GradeSet {
	set := GradeSet{SubjectCode: subjectCode, Shape: EmptyShape}
	if len(records) == 0 {
		return set
	}

	itemized := false
	for _, rec := range records {
		switch {
		case rec.CalculatedGrade != nil:
			if set.Precomputed == nil {
				v := rec.CalculatedGrade.Float64()
				set.Precomputed = &v
			}
			set.Items = append(set.Items, rec.Grades...)
		case rec.Grades != nil:
			itemized = true
			set.Items = append(set.Items, rec.Grades...)
		case rec.ActivityID != "":
			itemized = true
			set.Items = append(set.Items, rec.StudentGrade)
		default:
			set.Skipped++
		}
	}

	switch {
	case set.Precomputed != nil:
		set.Shape = PrecomputedShape
	case itemized:
		set.Shape = ItemizedShape
	default:
		set.Shape = UnknownShape
	}
	return set
}

// Lookup returns the grade recorded for the activity. When a backend returns
// several, the most recently updated wins and ties keep the first.
func (s GradeSet) Lookup(activityID string) (StudentGrade, bool) {
	var best StudentGrade
	found := false
	for _, g := range s.Items {
		if g.ActivityID != activityID {
			continue
		}
		if !found || g.UpdatedAt.After(best.UpdatedAt.Time) {
			best, found = g, true
		}
	}
	return best, found
}

// IsEmpty reports whether the set carries no grade data of any kind.
func (s GradeSet) IsEmpty() bool {
	return s.Precomputed == nil && len(s.Items) == 0
}

// GroupSemesterRecords groups a semester payload by subject code.
// Wrappers without a subject code are split by the codes of their nested grades.
func GroupSemesterRecords(records []GradeRecord) map[string][]GradeRecord {
	grouped := make(map[string][]GradeRecord)
	for _, rec := range records {
		if rec.SubjectCode != "" {
			grouped[rec.SubjectCode] = append(grouped[rec.SubjectCode], rec)
			continue
		}
		for _, g := range rec.Grades {
			if g.SubjectCode == "" {
				continue
			}
			grouped[g.SubjectCode] = append(grouped[g.SubjectCode], GradeRecord{StudentGrade: g})
		}
	}
	return grouped
}

// ForPlan keeps the records that belong to planID, including nested grades.
// Records that carry no plan id, such as pre-aggregated ones, are kept.
func ForPlan(records []GradeRecord, planID string) []GradeRecord {
	out := make([]GradeRecord, 0, len(records))
	for _, rec := range records {
		if rec.EvaluationPlanID != "" && rec.EvaluationPlanID != planID {
			continue
		}
		if rec.Grades != nil {
			nested := make([]StudentGrade, 0, len(rec.Grades))
			for _, g := range rec.Grades {
				if g.EvaluationPlanID == "" || g.EvaluationPlanID == planID {
					nested = append(nested, g)
				}
			}
			rec.Grades = nested
		}
		out = append(out, rec)
	}
	return out
}
