package types

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared: a *validator.Validate caches struct metadata and is
// safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("email", not "Email") so messages
	// line up with what the user sees on the form.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// ValidateEmail reports whether s is a well-formed email address.
func ValidateEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// ValidateAge reports whether n is a non-negative integer.
func ValidateAge(n int) bool {
	return validate.Var(n, "gte=0") == nil
}

// NewPerson builds a validated Person. Surrounding whitespace is trimmed
// from every string field before validation.
func NewPerson(kind PersonKind, key, name string, age int, email string) (Person, error) {
	p := Person{
		Kind:  kind,
		Key:   strings.TrimSpace(key),
		Name:  strings.TrimSpace(name),
		Age:   age,
		Email: strings.TrimSpace(email),
	}
	if err := validateStruct(p); err != nil {
		return Person{}, err
	}
	return p, nil
}

// NewCourse builds a validated Course. instructorKey may be empty.
func NewCourse(key, name, instructorKey string) (Course, error) {
	c := Course{
		Key:           strings.TrimSpace(key),
		Name:          strings.TrimSpace(name),
		InstructorKey: strings.TrimSpace(instructorKey),
	}
	if err := validateStruct(c); err != nil {
		return Course{}, err
	}
	return c, nil
}

// ParsePersonForm checks that every field is filled in and that age is an
// integer, then constructs the Person.
func ParsePersonForm(kind PersonKind, f PersonForm) (Person, error) {
	var errs ValidationErrors
	for _, field := range []struct{ name, value string }{
		{"id", f.ID},
		{"name", f.Name},
		{"age", f.Age},
		{"email", f.Email},
	} {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, FieldError{Field: field.name, Message: field.name + " is required"})
		}
	}

	age := 0
	if s := strings.TrimSpace(f.Age); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, FieldError{Field: "age", Message: "age must be a non-negative integer"})
		}
		age = n
	}
	if len(errs) > 0 {
		return Person{}, errs
	}

	return NewPerson(kind, f.ID, f.Name, age, f.Email)
}

// ParseCourseForm is ParsePersonForm for courses.
func ParseCourseForm(f CourseForm) (Course, error) {
	return NewCourse(f.ID, f.Name, f.InstructorID)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{Field: fe.Field(), Message: msgForTag(fe)})
	}
	return out
}

func msgForTag(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "gte":
		if fe.Param() == "0" {
			return fmt.Sprintf("%s must be a non-negative integer", field)
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
