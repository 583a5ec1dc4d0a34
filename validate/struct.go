package validate

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/devmarvs/pmboard/apperr"
)

// FieldError describes a validation failure for a field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors holds multiple field errors.
type Errors struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *Errors) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Message)
	}
	return strings.Join(parts, "; ")
}

// Has reports whether the named field failed.
func (e *Errors) Has(field string) bool {
	for _, item := range e.Fields {
		if item.Field == field {
			return true
		}
	}
	return false
}

// As extracts validation errors if present.
func As(err error) (*Errors, bool) {
	if err == nil {
		return nil, false
	}
	var verr *Errors
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Struct validates struct fields using `validate` tags.
//
// Supported rules: required, email, min=N, max=N, oneof=a b c.
func Struct(value any) error {
	return Form(value, "validation failed")
}

// Form validates like Struct but reports the given summary message, which is
// what the dashboard shows inline next to the form.
func Form(value any, message string) error {
	fields := check(value)
	if len(fields) == 0 {
		return nil
	}
	return apperr.Validation(message, &Errors{Fields: fields})
}

func check(value any) []FieldError {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	var errs []FieldError

	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			continue
		}
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := fieldName(field)
		rules := strings.Split(tag, ",")
		fieldValue := rv.Field(i)

		if fieldValue.Kind() == reflect.Pointer {
			if fieldValue.IsNil() {
				if hasRule(rules, "required") {
					errs = append(errs, FieldError{Field: name, Message: name + " is required"})
				}
				continue
			}
			fieldValue = fieldValue.Elem()
		}

		for _, rule := range rules {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}
			nameRule, param := splitRule(rule)
			var failure *FieldError
			switch nameRule {
			case "required":
				if isBlank(fieldValue) {
					failure = &FieldError{Field: name, Message: name + " is required"}
				}
			case "email":
				if fieldValue.Kind() == reflect.String && Email(name, fieldValue.String()) != nil {
					failure = &FieldError{Field: name, Message: name + " must be a valid email"}
				}
			case "min":
				failure = validateMin(name, fieldValue, param)
			case "max":
				failure = validateMax(name, fieldValue, param)
			case "oneof":
				failure = validateOneOf(name, fieldValue, param)
			}
			if failure != nil {
				errs = append(errs, *failure)
				break
			}
		}
	}
	return errs
}

func fieldName(field reflect.StructField) string {
	if tag := field.Tag.Get("json"); tag != "" {
		name := strings.Split(tag, ",")[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

func splitRule(rule string) (string, string) {
	parts := strings.SplitN(rule, "=", 2)
	name := strings.TrimSpace(parts[0])
	param := ""
	if len(parts) > 1 {
		param = strings.TrimSpace(parts[1])
	}
	return name, param
}

func hasRule(rules []string, name string) bool {
	for _, rule := range rules {
		ruleName, _ := splitRule(rule)
		if ruleName == name {
			return true
		}
	}
	return false
}

// isBlank treats whitespace-only strings as missing.
func isBlank(value reflect.Value) bool {
	if !value.IsValid() {
		return true
	}
	if value.Kind() == reflect.String {
		return strings.TrimSpace(value.String()) == ""
	}
	return value.IsZero()
}

func validateOneOf(name string, value reflect.Value, param string) *FieldError {
	if value.Kind() != reflect.String || value.String() == "" {
		return nil
	}
	for _, option := range strings.Fields(param) {
		if value.String() == option {
			return nil
		}
	}
	return &FieldError{Field: name, Message: name + " must be one of " + strings.Join(strings.Fields(param), ", ")}
}

func validateMin(name string, value reflect.Value, param string) *FieldError {
	bound, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return &FieldError{Field: name, Message: name + " is invalid"}
	}
	switch value.Kind() {
	case reflect.String:
		if float64(utf8.RuneCountInString(value.String())) < bound {
			return &FieldError{Field: name, Message: name + " is too short"}
		}
	case reflect.Slice, reflect.Array, reflect.Map:
		if float64(value.Len()) < bound {
			return &FieldError{Field: name, Message: name + " is too short"}
		}
	default:
		if current, ok := numericValue(value); ok && current < bound {
			return &FieldError{Field: name, Message: name + " must be at least " + param}
		}
	}
	return nil
}

func validateMax(name string, value reflect.Value, param string) *FieldError {
	bound, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return &FieldError{Field: name, Message: name + " is invalid"}
	}
	switch value.Kind() {
	case reflect.String:
		if float64(utf8.RuneCountInString(value.String())) > bound {
			return &FieldError{Field: name, Message: name + " is too long"}
		}
	case reflect.Slice, reflect.Array, reflect.Map:
		if float64(value.Len()) > bound {
			return &FieldError{Field: name, Message: name + " is too long"}
		}
	default:
		if current, ok := numericValue(value); ok && current > bound {
			return &FieldError{Field: name, Message: name + " must be at most " + param}
		}
	}
	return nil
}

func numericValue(value reflect.Value) (float64, bool) {
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(value.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(value.Uint()), true
	case reflect.Float32, reflect.Float64:
		return value.Float(), true
	default:
		return 0, false
	}
}
