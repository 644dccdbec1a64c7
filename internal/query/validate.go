package query

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Value rules are validator tags checked with Var against the coerced value.
const (
	ruleRequired  = "required"
	ruleNotBlank  = "notblank"
	ruleDecimal   = "numeric"
	ruleDate      = "datetime=" + time.DateOnly + "|datetime=" + time.RFC3339
	ruleTimestamp = "datetime=" + time.RFC3339
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation(ruleNotBlank, notBlank); err != nil {
		panic(err)
	}
	return v
}

// notBlank rejects strings that are empty after trimming whitespace.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// enumRule is the oneof tag for the column, empty when unrestricted.
func (c Column) enumRule() string {
	if len(c.Enum) == 0 {
		return ""
	}
	return "oneof=" + strings.Join(c.Enum, " ")
}

// check runs rules against value and reports the first failure as a
// FieldError on the column.
func (c Column) check(value any, rules string) error {
	if rules == "" {
		return nil
	}
	err := validate.Var(value, rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return c.ruleError(verrs[0].Tag())
	}
	return c.kindError()
}

func (c Column) ruleError(tag string) *FieldError {
	switch tag {
	case ruleRequired:
		return fieldErr(c.Field, "is required")
	case ruleNotBlank:
		return fieldErr(c.Field, "must not be empty")
	case "oneof":
		return fieldErr(c.Field, "must be one of %s", strings.Join(c.Enum, ", "))
	}
	return c.kindError()
}

// kindError describes the shape a value of the column must have.
func (c Column) kindError() *FieldError {
	switch c.Kind {
	case Text:
		return fieldErr(c.Field, "must be a string")
	case Int:
		return fieldErr(c.Field, "must be an integer")
	case Numeric:
		return fieldErr(c.Field, "must be a number")
	case Bool:
		return fieldErr(c.Field, "must be a boolean")
	case Date:
		return fieldErr(c.Field, "must be a date (YYYY-MM-DD)")
	case Timestamp:
		return fieldErr(c.Field, "must be an RFC3339 timestamp")
	case TextArray:
		return fieldErr(c.Field, "must be an array of strings")
	}
	return fieldErr(c.Field, "has an unsupported type")
}
