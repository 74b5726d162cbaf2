// Package compileerr defines the error taxonomy produced by every stage of
// the builder-to-SQL pipeline: parsing, lowering, shape validation, dialect
// generation, and the unsafe-statement guard. Callers distinguish kinds with
// errors.Is against the sentinels below; every wrapped error also carries
// the offending operation name and, where available, a source position.
package compileerr

import (
	"errors"
	"fmt"

	"github.com/linqsql/linqsql/internal/synast"
)

var (
	// ErrParse means the builder source text could not be parsed into the
	// reduced AST the DSL supports.
	ErrParse = errors.New("malformed builder source")
	// ErrLowering means an AST node or identifier could not be resolved to
	// the Expression IR: an unsupported node kind, a free identifier that
	// is not a row/query/grouping parameter, or an invalid helper call.
	ErrLowering = errors.New("builder expression not supported")
	// ErrShape means a Query Operation Tree invariant was violated, e.g.
	// thenBy without a preceding orderBy, or g.key used outside groupBy.
	ErrShape = errors.New("query shape invariant violated")
	// ErrDialect means the chosen dialect generator does not support the
	// requested operation.
	ErrDialect = errors.New("operation not supported by dialect")
	// ErrUnsafeStatement means an update or delete has neither a predicate
	// nor an explicit allow-full-table flag.
	ErrUnsafeStatement = errors.New("statement would affect the full table")
	// ErrConfig means a configuration call received an invalid value, e.g.
	// a non-positive parse cache capacity.
	ErrConfig = errors.New("invalid configuration")
)

// Error wraps one of the sentinels above with the op kind and, when known,
// the AST position that triggered it.
type Error struct {
	Sentinel error
	Op       string
	At       *synast.Pos
	Detail   string
}

func (e *Error) Error() string {
	if e.At != nil {
		return fmt.Sprintf("%s: %s (at line %d, col %d): %s", e.Sentinel, e.Op, e.At.Line, e.At.Col, e.Detail)
	}

	return fmt.Sprintf("%s: %s: %s", e.Sentinel, e.Op, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}

func newf(sentinel error, op string, at *synast.Pos, format string, args ...any) *Error {
	return &Error{
		Sentinel: sentinel,
		Op:       op,
		At:       at,
		Detail:   fmt.Sprintf(format, args...),
	}
}

// Parse builds an ErrParse-kind error for op at pos.
func Parse(op string, pos synast.Pos, format string, args ...any) *Error {
	return newf(ErrParse, op, &pos, format, args...)
}

// Lowering builds an ErrLowering-kind error for op at pos.
func Lowering(op string, pos synast.Pos, format string, args ...any) *Error {
	return newf(ErrLowering, op, &pos, format, args...)
}

// Shape builds an ErrShape-kind error for op; it carries no position.
func Shape(op string, format string, args ...any) *Error {
	return newf(ErrShape, op, nil, format, args...)
}

// Dialect builds an ErrDialect-kind error for op.
func Dialect(op, dialect string, format string, args ...any) *Error {
	return newf(ErrDialect, op, nil, "["+dialect+"] "+fmt.Sprintf(format, args...))
}

// Unsafe builds an ErrUnsafeStatement-kind error for op.
func Unsafe(op string) *Error {
	return newf(ErrUnsafeStatement, op, nil, "call allowFullTableUpdate()/allowFullTableDelete() or add a where(...) predicate")
}

// Config builds an ErrConfig-kind error.
func Config(op string, format string, args ...any) *Error {
	return newf(ErrConfig, op, nil, format, args...)
}
