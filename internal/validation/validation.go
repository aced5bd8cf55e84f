// Package validation checks request DTOs against their `validate` struct tags
// and reports failures per field in Laravel wording, e.g.
//
//	{"name": ["The name field is required."]}
//
// Struct rules come from go-playground/validator. Rules that need the database,
// such as uniqueness, are expressed as Unique values and run after the struct
// rules pass for that field.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phoneRE = regexp.MustCompile(`^(97|98)[0-9]{8}$`)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Nepali mobile numbers: 97 or 98 followed by eight digits.
	validate.RegisterValidation("npphone", func(fl validator.FieldLevel) bool {
		return phoneRE.MatchString(fl.Field().String())
	})
}

// Errors maps a field name to its failure messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) { e[field] = append(e[field], msg) }

func (e Errors) Has(field string) bool { return len(e[field]) > 0 }

// Merge copies the fields of other that have no messages in e yet.
func (e Errors) Merge(other Errors) {
	for field, msgs := range other {
		if !e.Has(field) {
			e[field] = msgs
		}
	}
}

// First returns the first message of the lexically first failing field.
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e[keys[0]][0]
}

func (e Errors) Error() string {
	n := len(e)
	if n == 0 {
		return "validation passed"
	}
	msg := e.First()
	if n > 1 {
		msg = fmt.Sprintf("%s (and %d more error%s)", msg, n-1, plural(n-1))
	}
	return msg
}

// Err returns e as an error, or nil when it is empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Struct validates v. It returns nil when v passes, or Errors otherwise.
// A non-struct argument is a programming error and panics via validator.
func Struct(v any) Errors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		panic(err)
	}
	errs := Errors{}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

// Unique is a uniqueness rule. Taken reports whether Value is already used by
// another row; updates exclude their own row inside Taken.
type Unique struct {
	Field string
	Value string
	Taken func(ctx context.Context, value string) (bool, error)
}

// CheckUnique runs rules for fields that have no errors yet and records
// "has already been taken" failures in errs. Empty values are skipped.
func CheckUnique(ctx context.Context, errs Errors, rules ...Unique) (Errors, error) {
	if errs == nil {
		errs = Errors{}
	}
	for _, rule := range rules {
		if rule.Value == "" || errs.Has(rule.Field) {
			continue
		}
		taken, err := rule.Taken(ctx, rule.Value)
		if err != nil {
			return errs, fmt.Errorf("unique %s: %w", rule.Field, err)
		}
		if taken {
			errs.Add(rule.Field, Taken(rule.Field))
		}
	}
	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

// Label renders a field name the way messages show it: "category_id" is "category id".
func Label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func Required(field string) string {
	return fmt.Sprintf("The %s field is required.", Label(field))
}

func Taken(field string) string {
	return fmt.Sprintf("The %s has already been taken.", Label(field))
}

func Mimes(field string, exts []string) string {
	return fmt.Sprintf("The %s must be a file of type: %s.", Label(field), strings.Join(exts, ", "))
}

func MaxKilobytes(field string, kb int64) string {
	return fmt.Sprintf("The %s may not be greater than %d kilobytes.", Label(field), kb)
}

func Image(field string) string {
	return fmt.Sprintf("The %s must be an image.", Label(field))
}

func message(fe validator.FieldError) string {
	label := Label(fe.Field())
	numeric := isNumeric(fe.Kind())

	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "npphone":
		return fmt.Sprintf("The %s format is invalid.", label)
	case "min", "gte":
		if numeric {
			return fmt.Sprintf("The %s must be at least %s.", label, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s characters.", label, fe.Param())
	case "max", "lte":
		if numeric {
			return fmt.Sprintf("The %s may not be greater than %s.", label, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s characters.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	case "numeric", "number":
		return fmt.Sprintf("The %s must be a number.", label)
	default:
		return fmt.Sprintf("The %s is invalid.", label)
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
