package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError describes client input that failed validation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Normalize trims surrounding whitespace from every field.
func (in *CommentInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Content = strings.TrimSpace(in.Content)
}

// Validate checks if the comment input meets all validation requirements
func (in *CommentInput) Validate() error {
	in.Normalize()
	if err := validate.Struct(in); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return &ValidationError{Message: strings.Join(msgs, "; ")}
}

// NewComment builds a comment with a fresh ID and creation time.
func NewComment(in *CommentInput, approved bool) *Comment {
	return &Comment{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Content:   in.Content,
		CreatedAt: time.Now().UTC(),
		Approved:  approved,
	}
}
