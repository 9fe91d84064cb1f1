package users

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// IntentField is the form field selecting the operation.
const IntentField = "_intent"

// Intent selects which operation a submission requests.
type Intent string

const (
	IntentCreate Intent = "create"
	IntentUpdate Intent = "update"
	IntentDelete Intent = "delete"
)

// Form is read-only access to submitted fields; url.Values satisfies it.
// Get returns "" for an absent field.
type Form interface {
	Get(key string) string
}

// Fields are the user-editable columns, validated as a unit.
type Fields struct {
	Name  string `form:"name" validate:"required"`
	Age   int    `form:"age"`
	Email string `form:"email" validate:"required"`
}

// CreateInput is a validated create submission.
type CreateInput struct {
	Fields
}

// UpdateInput is a validated update submission. ID may be 0.
type UpdateInput struct {
	ID int64
	Fields
}

// DeleteInput is a delete submission. ID may be 0.
type DeleteInput struct {
	ID int64
}

// ValidationError lists the form fields that are missing or malformed.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
}

// ParseCreate reads name, age and email. It returns a *ValidationError when
// name or email is empty or age is not an integer.
func ParseCreate(form Form) (CreateInput, error) {
	fields, err := parseFields(form, MsgAllFieldsRequired)
	if err != nil {
		return CreateInput{}, err
	}
	return CreateInput{Fields: fields}, nil
}

// ParseUpdate applies the create rules to the fields and reads id without
// validating it: an id that does not parse becomes 0, which matches no row.
func ParseUpdate(form Form) (UpdateInput, error) {
	fields, err := parseFields(form, MsgAllFieldsAreRequired)
	if err != nil {
		return UpdateInput{}, err
	}
	return UpdateInput{ID: ParseID(form.Get("id")), Fields: fields}, nil
}

// ParseDelete never fails; see ParseUpdate for the id rule.
func ParseDelete(form Form) DeleteInput {
	return DeleteInput{ID: ParseID(form.Get("id"))}
}

func parseFields(form Form, message string) (Fields, error) {
	f := Fields{
		Name:  form.Get("name"),
		Email: form.Get("email"),
	}

	failed := make(map[string]bool)
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Fields{}, err
		}
		for _, fe := range verrs {
			failed[fe.Field()] = true
		}
	}

	age, err := strconv.Atoi(strings.TrimSpace(form.Get("age")))
	if err != nil {
		failed["age"] = true
	}
	f.Age = age

	if len(failed) == 0 {
		return f, nil
	}
	verr := &ValidationError{Message: message}
	for _, name := range []string{"name", "age", "email"} {
		if failed[name] {
			verr.Fields = append(verr.Fields, name)
		}
	}
	return Fields{}, verr
}

// ParseID reads a record id; anything that is not an integer yields 0.
func ParseID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
