// Package validate checks form and request values against a set of rules and
// reports every problem it finds, keyed by field name.
package validate

import (
	"reflect"
	"sort"
	"strings"
)

// Validate that the values in the Request struct are valid according to the
// validation rules defined on the struct.
// If validation fails the error will be of type Error.
//
// Validate automatically traverses the fields on the struct. If any of the
// fields are of a type that implement Request, the validation rules of that
// field will be used as well.
func Validate(req Request) error {
	reqV := reflect.Indirect(reflect.ValueOf(req))
	err := validateStruct(reqV)
	if len(err) > 0 {
		return err
	}
	return nil
}

func validateStruct(v reflect.Value) Error {
	err := make(Error)

	req, ok := v.Interface().(Request)
	if ok && (v.Kind() != reflect.Pointer || !v.IsNil()) {
		for _, rule := range req.ValidationRules() {
			if failure := rule.Validate(); failure != nil {
				err[failure.Name] = append(err[failure.Name], failure.Problems...)
			}
		}
	}

	if v.Kind() != reflect.Struct {
		return err
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		if !field.IsExported() {
			continue
		}
		prefix := ""
		if !field.Anonymous {
			prefix = fieldName(field)
		}
		for k, problems := range validateStruct(v.Field(i)) {
			name := prefix
			switch {
			case name == "":
				name = k
			case k != "":
				name = name + "." + k
			}
			err[name] = append(err[name], problems...)
		}
	}
	return err
}

// ValidationRule performs validation on one or more struct fields.
//
// Validation rules should all default to optional. If the field has a zero value
// then the validation rule will do nothing. Use Required to make something a
// required field.
type ValidationRule interface {
	// Validate should return nil if the validation passes. If the validation
	// fails the Failure should contain the name of the field and the list of
	// problems.
	Validate() *Failure
}

// Failure describes a validation failure.
type Failure struct {
	// Name of the field as it appears in the form.
	Name string
	// Problems is a list of messages that describe the validation failure.
	// They are shown to the user.
	Problems []string
}

// Request is implemented by all form structs.
type Request interface {
	ValidationRules() []ValidationRule
}

// Error is a map of field names to errors associated with those fields. Errors
// that are associated with the struct or multiple fields will have a key of
// "".
type Error map[string][]string

func (e Error) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf strings.Builder
	buf.WriteString("validation failed: ")
	for i, k := range keys {
		if i != 0 {
			buf.WriteString(", ")
		}
		if k == "" {
			buf.WriteString(strings.Join(e[k], ", "))
			continue
		}
		buf.WriteString(k + ": " + strings.Join(e[k], ", "))
	}
	return buf.String()
}

// Problems returns every problem in e, ordered by field name.
func (e Error) Problems() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var result []string
	for _, k := range keys {
		result = append(result, e[k]...)
	}
	return result
}

func fail(name string, problems ...string) *Failure {
	return &Failure{Name: name, Problems: problems}
}

type requiredRule struct {
	name  string
	value any
}

// Required checks that the value does not have a zero value.
// Zero values are nil, "", 0, false, empty map, empty slice, or the zero value of
// a struct.
func Required(name string, value any) ValidationRule {
	return requiredRule{name: name, value: value}
}

func (r requiredRule) Validate() *Failure {
	v := reflect.ValueOf(r.value)
	if v.IsValid() && !v.IsZero() {
		if s, ok := r.value.(string); !ok || strings.TrimSpace(s) != "" {
			return nil
		}
	}
	return fail(r.name, "es obligatorio")
}

// ValidatorFunc wraps a function so that it implements ValidationRule. It can
// be used to create special validations without having to define a type.
type ValidatorFunc func() *Failure

func (f ValidatorFunc) Validate() *Failure {
	return f()
}

func fieldName(f reflect.StructField) string {
	if name, ok := f.Tag.Lookup("form"); ok {
		return strings.Split(name, ",")[0]
	}

	if name, ok := f.Tag.Lookup("uri"); ok {
		return name
	}

	if name, ok := f.Tag.Lookup("json"); ok {
		name = strings.Split(name, ",")[0]
		if name == "-" {
			return ""
		}
		return name
	}

	return strings.ToLower(f.Name[:1]) + f.Name[1:]
}
