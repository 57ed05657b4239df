// Package validators holds the request validation pipeline. A Chain runs its
// stages in order and stops at the first failing one; field stages accumulate
// every message they find, limit and uniqueness stages report a single message.
package validators

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Failure is a failed stage. Message is either a string or a []string.
type Failure struct {
	Code    int
	Message any
}

// Fail reports a single message.
func Fail(msg string) *Failure {
	return &Failure{Code: http.StatusBadRequest, Message: msg}
}

// FailAll reports accumulated messages, or nil when there are none.
func FailAll(msgs []string) *Failure {
	if len(msgs) == 0 {
		return nil
	}
	return &Failure{Code: http.StatusBadRequest, Message: msgs}
}

// Stage checks one aspect of a request.
type Stage[T any] func(ctx context.Context, req *T) *Failure

// Chain is an ordered list of stages.
type Chain[T any] struct {
	stages []Stage[T]
}

func NewChain[T any](stages ...Stage[T]) Chain[T] {
	return Chain[T]{stages: stages}
}

// Run returns the first failure, or nil when every stage passes.
func (c Chain[T]) Run(ctx context.Context, req *T) *Failure {
	for _, stage := range c.stages {
		if f := stage(ctx, req); f != nil {
			return f
		}
	}
	return nil
}

// Validator wraps go-playground/validator and satisfies echo.Validator.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func (v *Validator) IsUUID(s string) bool {
	return v.validate.Var(s, "required,uuid") == nil
}

func (v *Validator) IsEmail(s string) bool {
	return v.validate.Var(s, "required,email") == nil
}

// StructStage validates struct tags and maps each failing "Field.tag" to a
// message. Unmapped failures fall back to the validator's own text.
func StructStage[T any](v *Validator, messages map[string]string) Stage[T] {
	return func(_ context.Context, req *T) *Failure {
		err := v.validate.Struct(req)
		if err == nil {
			return nil
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Fail(err.Error())
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			if msg, ok := messages[fe.StructField()+"."+fe.Tag()]; ok {
				msgs = append(msgs, msg)
				continue
			}
			msgs = append(msgs, fe.Error())
		}
		return FailAll(msgs)
	}
}
