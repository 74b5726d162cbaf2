// Package linqsql turns LINQ-style builder chains, captured as JavaScript
// arrow-function source text, into parameterised SQL. It wires together the
// pipeline's component packages (capture -> jsparser -> parsecache -> lower
// -> plan -> dialectgen) behind the Define*/ToSQL surface.
package linqsql

import (
	"github.com/linqsql/linqsql/compileerr"
	ilog "github.com/linqsql/linqsql/internal/log"
	"github.com/linqsql/linqsql/internal/qot"
	"github.com/linqsql/linqsql/plan"
)

var logger = ilog.Named("linqsql")

// Handle is a compiled, dialect-neutral plan produced by a Define* call,
// ready to be finalized against runtime parameters and rendered many times.
type Handle = plan.Handle

// Schema is an opaque, zero-runtime-state handle used only to carry the
// table/row type TSchema through Define* calls at compile time, mirroring
// the original `createSchema<TSchema>()` marker.
type Schema[TSchema any] struct{}

// CreateSchema mints a Schema for TSchema. It holds no state; its only job
// is letting callers write DefineSelect[User](...) instead of threading a
// row type through every call by hand.
func CreateSchema[TSchema any]() Schema[TSchema] {
	return Schema[TSchema]{}
}

// Options configures a Define*/ToSQL call.
type Options struct {
	// OnSQL, if set, is invoked once with the generated statement
	// immediately before ToSQL returns it.
	OnSQL func(SQLResult)
}

// SQLResult is the generated statement and the parameter values it binds.
type SQLResult struct {
	SQL    string
	Params map[string]any
}

func mergeOptions(opts []Options) Options {
	var merged Options

	for _, o := range opts {
		if o.OnSQL != nil {
			merged.OnSQL = o.OnSQL
		}
	}

	return merged
}

// DefineSelect parses, lowers, and caches builder as a select chain,
// returning a reusable plan handle. schema only disambiguates TSchema for
// the caller; it carries no runtime value.
func DefineSelect[TSchema any](_ Schema[TSchema], builder string, opts ...Options) (*Handle, error) {
	return define(builder)
}

// DefineInsert is DefineSelect's counterpart for insertInto(...).values(...)
// chains.
func DefineInsert[TSchema any](_ Schema[TSchema], builder string, opts ...Options) (*Handle, error) {
	h, err := define(builder)
	if err != nil {
		return nil, err
	}

	if _, ok := h.Operation.(*qot.Insert); !ok {
		return nil, compileerr.Config("defineInsert", "builder does not produce an insertInto(...) chain")
	}

	return h, nil
}

// DefineUpdate is DefineSelect's counterpart for update(...).set(...) chains.
func DefineUpdate[TSchema any](_ Schema[TSchema], builder string, opts ...Options) (*Handle, error) {
	h, err := define(builder)
	if err != nil {
		return nil, err
	}

	if _, ok := h.Operation.(*qot.Update); !ok {
		return nil, compileerr.Config("defineUpdate", "builder does not produce an update(...) chain")
	}

	return h, nil
}

// DefineDelete is DefineSelect's counterpart for delete(...) chains.
func DefineDelete[TSchema any](_ Schema[TSchema], builder string, opts ...Options) (*Handle, error) {
	h, err := define(builder)
	if err != nil {
		return nil, err
	}

	if _, ok := h.Operation.(*qot.Delete); !ok {
		return nil, compileerr.Config("defineDelete", "builder does not produce a delete(...) chain")
	}

	return h, nil
}

// SelectStatement, InsertStatement, UpdateStatement, and DeleteStatement are
// one-call convenience wrappers around DefineXxx + ToSQL for call sites that
// never reuse the compiled plan.

func SelectStatement[TSchema any](schema Schema[TSchema], dialect Dialect, builder string, userParams map[string]any, opts ...Options) (SQLResult, error) {
	h, err := DefineSelect(schema, builder, opts...)
	if err != nil {
		return SQLResult{}, err
	}

	return ToSQL(dialect, h, userParams, opts...)
}

func InsertStatement[TSchema any](schema Schema[TSchema], dialect Dialect, builder string, userParams map[string]any, opts ...Options) (SQLResult, error) {
	h, err := DefineInsert(schema, builder, opts...)
	if err != nil {
		return SQLResult{}, err
	}

	return ToSQL(dialect, h, userParams, opts...)
}

func UpdateStatement[TSchema any](schema Schema[TSchema], dialect Dialect, builder string, userParams map[string]any, opts ...Options) (SQLResult, error) {
	h, err := DefineUpdate(schema, builder, opts...)
	if err != nil {
		return SQLResult{}, err
	}

	return ToSQL(dialect, h, userParams, opts...)
}

func DeleteStatement[TSchema any](schema Schema[TSchema], dialect Dialect, builder string, userParams map[string]any, opts ...Options) (SQLResult, error) {
	h, err := DefineDelete(schema, builder, opts...)
	if err != nil {
		return SQLResult{}, err
	}

	return ToSQL(dialect, h, userParams, opts...)
}

// ToSQL finalizes h against userParams and renders SQL for dialect.
func ToSQL(dialect Dialect, h *Handle, userParams map[string]any, opts ...Options) (SQLResult, error) {
	op, params, err := h.Finalize(userParams)
	if err != nil {
		return SQLResult{}, err
	}

	warn := func(format string, args ...any) {
		logger.Warnf("[%s] "+format, append([]any{dialect.Name()}, args...)...)
	}

	sql, err := generate(dialect, op, warn)
	if err != nil {
		return SQLResult{}, err
	}

	result := SQLResult{SQL: sql, Params: params}

	logger.Debugf("generated %s statement for plan %s: %s", dialect.Name(), h.ID, sql)

	merged := mergeOptions(opts)
	if merged.OnSQL != nil {
		merged.OnSQL(result)
	}

	return result, nil
}
