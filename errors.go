package statestore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-statestore/pkg/cast"
	"github.com/goliatone/go-statestore/pkg/enum"
)

var (
	// ErrUndeclaredAttribute is returned when an accessor names an attribute
	// the store does not declare.
	ErrUndeclaredAttribute = errors.New("statestore: undeclared attribute")
	// ErrUnknownMethod is returned by Invoke for names that are neither
	// getters nor setters.
	ErrUnknownMethod = errors.New("statestore: unknown method")
	// ErrArgumentCount is returned by Invoke when a getter receives arguments
	// or a setter does not receive exactly one.
	ErrArgumentCount = errors.New("statestore: wrong number of arguments")
	// ErrInvalidEnumValue matches values outside a declared enum.
	ErrInvalidEnumValue = enum.ErrInvalidValue
	// ErrParse matches unparsable input for date based casts.
	ErrParse = cast.ErrParse
	// ErrConstruction matches every *ConstructionError.
	ErrConstruction = errors.New("statestore: invalid store definition")
	// ErrMissingName is reported when a definition has no Name.
	ErrMissingName = errors.New("statestore: definition name is required")
	// ErrMissingDefault is reported when a definition has no Default.
	ErrMissingDefault = errors.New("statestore: definition default is required")
	// ErrUnknownEnum is reported when an attribute maps to an unregistered enum.
	ErrUnknownEnum = errors.New("statestore: unknown enum type")
	// ErrTypeMismatch is returned by typed accessors when a value has an
	// unexpected Go type.
	ErrTypeMismatch = errors.New("statestore: type mismatch")
	// ErrGuardRejected is returned when a guard rule does not yield true.
	ErrGuardRejected = errors.New("statestore: guard rejected state")
	// ErrUnknownStore is returned by Factory for unregistered store names.
	ErrUnknownStore = errors.New("statestore: unknown store")
	// ErrNoEvaluator is returned when guards are configured but no evaluator
	// is available.
	ErrNoEvaluator = errors.New("statestore: evaluator not configured")
	// ErrUnknownFunction is returned when a rule calls a helper that was
	// never registered.
	ErrUnknownFunction = errors.New("statestore: unknown guard function")
)

// AttributeError reports a failed attribute read or write.
type AttributeError struct {
	Store     string
	Attribute string
	Op        string
	Err       error
}

func (e *AttributeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("statestore: %s %s.%s: %v", e.Op, e.Store, e.Attribute, unprefixed(e.Err))
}

func (e *AttributeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MethodError reports a failed dynamic accessor call.
type MethodError struct {
	Store  string
	Method string
	Err    error
}

func (e *MethodError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("statestore: call %s.%s: %v", e.Store, e.Method, unprefixed(e.Err))
}

func (e *MethodError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConstructionError reports an invalid Definition or option. Field names the
// offending part, e.g. "Default" or "Casts[created_at]".
type ConstructionError struct {
	Store string
	Field string
	Err   error
}

func (e *ConstructionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	store := e.Store
	if store == "" {
		store = "<unnamed>"
	}
	return fmt.Sprintf("statestore: define %s field=%s: %v", store, e.Field, unprefixed(e.Err))
}

func (e *ConstructionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is(err, ErrConstruction) match.
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

// SnapshotError reports a cache entry that could not be encoded or decoded.
type SnapshotError struct {
	Store string
	Key   string
	Err   error
}

func (e *SnapshotError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("statestore: snapshot %s key=%q: %v", e.Store, e.Key, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// GuardError reports a guard rule that failed or did not yield true.
type GuardError struct {
	Store string
	Rule  string
	Err   error
}

func (e *GuardError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("statestore: guard %s %s: %v", e.Store, describeExpression(e.Rule), unprefixed(e.Err))
}

func (e *GuardError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Store  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("statestore: %s evaluator %s store=%s: %v", e.Engine, describeExpression(e.Expr), e.Store, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "statestore:") {
		return err
	}
	return fmt.Errorf("statestore: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, store string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Store == "" {
			evalErr.Store = store
		}
		return evalErr
	}
	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Store:  store,
		Err:    err,
	}
}

// unprefixed renders err without a leading "statestore: " so nested errors
// don't repeat the package prefix.
func unprefixed(err error) string {
	if err == nil {
		return "<nil>"
	}
	return strings.TrimPrefix(err.Error(), "statestore: ")
}
