package models

import (
	"errors"
	"fmt"
)

// Sentinel targets for errors.Is checks. Callers match on these rather than
// on the concrete error types.
var (
	ErrSchema        = errors.New("schema error")
	ErrBuild         = errors.New("build error")
	ErrDuplicate     = errors.New("duplicate")
	ErrNotFound      = errors.New("not found")
	ErrLimitExceeded = errors.New("limit exceeded")
	ErrEngine        = errors.New("engine error")
)

// SchemaError reports a malformed template or an unresolvable symbolic
// reference at build or binding time.
type SchemaError struct {
	Ref    string // the offending reference or parameter name, if any
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("schema error: %s: %s", e.Ref, e.Detail)
	}
	return fmt.Sprintf("schema error: %s", e.Detail)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// BuildError reports a builder invoked with a missing or invalid field.
type BuildError struct {
	Field  string
	Detail string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build error: %s: %s", e.Field, e.Detail)
}

func (e *BuildError) Unwrap() error { return ErrBuild }

// DuplicateError reports re-creation of a uniquely keyed entity.
type DuplicateError struct {
	Kind string // "template", "account", "account set", ...
	Key  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Key)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// NotFoundError reports a reference to an entity the engine does not know.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// LimitExceededError reports a posting rejected by a velocity control. It is
// a business-rule rejection, not a system fault.
type LimitExceededError struct {
	ControlName string
	LimitName   string
	AccountID   string
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("velocity limit %q of control %q exceeded for account %s",
		e.LimitName, e.ControlName, e.AccountID)
}

func (e *LimitExceededError) Unwrap() error { return ErrLimitExceeded }

// EngineError wraps an opaque failure from the ledger engine. The underlying
// cause is preserved for errors.Is/As.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

func (e *EngineError) Is(target error) bool { return target == ErrEngine }
