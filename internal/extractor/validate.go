package extractor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"voice-leads-go/internal/types"
)

// ValidationError lists every range or presence rule a record breaks.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "analysis validation failed: " + strings.Join(e.Violations, "; ")
}

// validate is safe for concurrent use; it only caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var scoreBounds = map[string][2]int{
	"totalScore": {0, 100},
}

// ValidateAnalysis checks score ranges and required fields, reporting all
// violations together.
func ValidateAnalysis(a *types.ParsedAnalysis) error {
	if a == nil {
		return &ValidationError{Violations: []string{"analysis record is empty"}}
	}
	err := validate.Struct(a)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Violations: []string{err.Error()}}
	}
	out := &ValidationError{}
	for _, fe := range fieldErrs {
		out.Violations = append(out.Violations, describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "max":
		bounds, ok := scoreBounds[fe.Field()]
		if !ok {
			bounds = [2]int{1, 3}
		}
		return fmt.Sprintf("%s must be between %d and %d, got %v", fe.Field(), bounds[0], bounds[1], deref(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s check", fe.Field(), fe.Tag())
	}
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}
