package grading

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/trackademic/trackademic/schema"
)

// Sentinel errors for validation failures.
var (
	ErrPercentageSum   = errors.New("activity percentages must sum to 100")
	ErrGradeOutOfRange = errors.New("grade must be between 0 and 5")
	ErrInvalidPlan     = errors.New("invalid evaluation plan")
	ErrInvalidGrade    = errors.New("invalid grade")
	ErrInvalidComment  = errors.New("invalid plan comment")
)

const uniqueActivityIDsTag = "unique_activity_ids"

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON names instead of Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterStructValidation(planStructValidation, schema.EvaluationPlan{})
	_ = validate.RegisterTranslation(uniqueActivityIDsTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fmt.Sprintf("activity id %q is used more than once", fe.Param())
		})
}

// planStructValidation rejects plans that reuse an activity id.
func planStructValidation(sl validator.StructLevel) {
	plan, ok := sl.Current().Interface().(schema.EvaluationPlan)
	if !ok {
		return
	}
	seen := make(map[string]struct{}, len(plan.Activities))
	for _, a := range plan.Activities {
		if a.ID == "" {
			continue
		}
		if _, dup := seen[a.ID]; dup {
			sl.ReportError(plan.Activities, "activities", "Activities", uniqueActivityIDsTag, a.ID)
			return
		}
		seen[a.ID] = struct{}{}
	}
}

// FieldError is a validation failure on one field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError blocks a plan or grade save and lists what is wrong.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return ""
	}
	if len(e.Fields) == 0 {
		return e.Err.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Error))
	}
	return fmt.Sprintf("%s (%s)", e.Err.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidatePlan checks field rules and the 100% weight rule before a plan is saved.
func ValidatePlan(plan *schema.EvaluationPlan) error {
	if plan == nil {
		return &ValidationError{Err: ErrInvalidPlan}
	}
	fields := fieldErrors(validate.Struct(plan))

	if !ValidatePercentages(plan.Activities) {
		fields = append(fields, FieldError{
			Field: "activities",
			Error: fmt.Sprintf("percentages sum to %.1f, expected 100", PercentageSum(plan.Activities)),
		})
		return &ValidationError{Err: ErrPercentageSum, Fields: fields}
	}
	if len(fields) > 0 {
		return &ValidationError{Err: ErrInvalidPlan, Fields: fields}
	}
	return nil
}

// ValidateGrade checks a grade before it is saved.
func ValidateGrade(grade *schema.StudentGrade) error {
	if grade == nil {
		return &ValidationError{Err: ErrInvalidGrade}
	}
	fields := fieldErrors(validate.Struct(grade))
	if err := ValidateGradeValue(grade.Grade.Float64()); err != nil {
		return &ValidationError{Err: ErrGradeOutOfRange, Fields: fields}
	}
	if len(fields) > 0 {
		return &ValidationError{Err: ErrInvalidGrade, Fields: fields}
	}
	return nil
}

// ValidateComment checks a plan comment before it is saved. Whitespace is not a comment.
func ValidateComment(comment *schema.PlanComment) error {
	if comment == nil {
		return &ValidationError{Err: ErrInvalidComment}
	}
	fields := fieldErrors(validate.Struct(comment))
	if comment.Comment != "" && strings.TrimSpace(comment.Comment) == "" {
		fields = append(fields, FieldError{Field: "comment", Error: "comment must not be blank"})
	}
	if len(fields) > 0 {
		return &ValidationError{Err: ErrInvalidComment, Fields: fields}
	}
	return nil
}

// ValidateGradeValue checks that v lies in [0, 5].
func ValidateGradeValue(v float64) error {
	if v < schema.MinGrade || v > schema.MaxGrade {
		return &ValidationError{
			Err:    ErrGradeOutOfRange,
			Fields: []FieldError{{Field: "grade", Error: fmt.Sprintf("%g is outside [0, 5]", v)}},
		}
	}
	return nil
}

// fieldErrors flattens validator output into FieldErrors keyed by JSON path.
func fieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Error: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		out = append(out, FieldError{Field: ns, Error: fe.Translate(translator)})
	}
	return out
}
