package observability

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/arrayschema/pkg/schema"
)

// Result classifies the outcome of a validation.
type Result string

const (
	ResultValid   Result = "valid"
	ResultInvalid Result = "invalid"
	ResultError   Result = "error"
)

// ValidationEvent describes one validation of a container against a named schema.
type ValidationEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Schema    string        `json:"schema"`
	Kind      string        `json:"kind"`
	Duration  time.Duration `json:"duration"`
	Result    Result        `json:"result"`
	Facet     string        `json:"facet,omitempty"`
	Err       error         `json:"-"`
}

// Classify derives Result and Facet from err. A *schema.SchemaError is an
// invalid container; any other error (unknown schema, checks, I/O) is an error.
func (e *ValidationEvent) Classify(err error) {
	e.Err = err
	e.Facet = ""
	var se *schema.SchemaError
	switch {
	case err == nil:
		e.Result = ResultValid
	case errors.As(err, &se):
		e.Result = ResultInvalid
		e.Facet = se.Facet
	default:
		e.Result = ResultError
	}
}

// Hooks defines callbacks for validation observability.
// Nil callbacks are skipped.
type Hooks struct {
	OnValidateStart func(context.Context, *ValidationEvent)
	OnValidate      func(context.Context, *ValidationEvent)
}

// Start fires OnValidateStart.
func (h Hooks) Start(ctx context.Context, e *ValidationEvent) {
	if h.OnValidateStart != nil {
		h.OnValidateStart(ctx, e)
	}
}

// Done fires OnValidate.
func (h Hooks) Done(ctx context.Context, e *ValidationEvent) {
	if h.OnValidate != nil {
		h.OnValidate(ctx, e)
	}
}

// Combine returns hooks that call each of hooks in order.
func Combine(hooks ...Hooks) Hooks {
	return Hooks{
		OnValidateStart: func(ctx context.Context, e *ValidationEvent) {
			for _, h := range hooks {
				h.Start(ctx, e)
			}
		},
		OnValidate: func(ctx context.Context, e *ValidationEvent) {
			for _, h := range hooks {
				h.Done(ctx, e)
			}
		},
	}
}
