// Package exprir defines the Expression IR: the tagged union every
// predicate, selector, and value expression is lowered into before a SQL
// generator walks it. Every variant implements Node and reports its own
// Kind, playing the role a sum-type match would in a language with one.
package exprir

import "github.com/shopspring/decimal"

type Kind int

const (
	KindConst Kind = iota + 1
	KindColumn
	KindBooleanColumn
	KindParam
	KindAutoParam
	KindBinary
	KindComparison
	KindLogical
	KindCoalesce
	KindConditional
	KindMethodCall
	KindObject
	KindAllColumns
	KindAggregate
)

// Node is implemented by every Expression IR variant.
type Node interface {
	Kind() Kind
}

// ValueType discriminates the Go-side representation a Const literal carries.
type ValueType int

const (
	ValueString ValueType = iota + 1
	ValueNumber
	ValueBoolean
	ValueNull
)

// Const is a literal value. Numeric values are held as decimal.Decimal; a
// number read from builder source has already passed through float64 in the
// parser, so digits beyond float64 precision are not kept.
type Const struct {
	ValueType ValueType
	String    string
	Number    decimal.Decimal
	Boolean   bool
}

func (*Const) Kind() Kind { return KindConst }

// Column references a row-parameter member, e.g. `x.age`. Source is empty
// for a single-table column; inside a join the lowerer sets it to the join
// side ("left" or "right"), which the generator maps to that side's tN alias.
type Column struct {
	Name   string
	Source string
}

func (*Column) Kind() Kind { return KindColumn }

// BooleanColumn is a Column lifted into a predicate position, e.g.
// `where(x => x.isActive)`.
type BooleanColumn struct {
	Name   string
	Source string
}

func (*BooleanColumn) Kind() Kind { return KindBooleanColumn }

// Param references an external query parameter member, e.g. `p.minAge`.
type Param struct {
	Param    string
	Property string
}

func (*Param) Kind() Kind { return KindParam }

// AutoParam is identical in shape to Param, but Name was coined during
// lowering (the auto-parameterisation counter, `__p1`, `__p2`, ...) rather
// than taken from the query-parameter object.
type AutoParam struct {
	Name  string
	Value any
}

func (*AutoParam) Kind() Kind { return KindAutoParam }

// BinaryOp enumerates the arithmetic operators.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpMod BinaryOp = "%"
)

type Binary struct {
	Operator BinaryOp
	Left     Node
	Right    Node
}

func (*Binary) Kind() Kind { return KindBinary }

// CompareOp enumerates the comparison operators, already normalised from
// their source-level spellings (`==`/`===` -> Eq, `!=`/`!==` -> NotEq).
type CompareOp string

const (
	OpEq    CompareOp = "="
	OpNotEq CompareOp = "<>"
	OpLt    CompareOp = "<"
	OpLtEq  CompareOp = "<="
	OpGt    CompareOp = ">"
	OpGtEq  CompareOp = ">="
	OpLike  CompareOp = "like"
	OpIn    CompareOp = "in"
)

type Comparison struct {
	Operator CompareOp
	Left     Node
	Right    Node
}

func (*Comparison) Kind() Kind { return KindComparison }

// LogicalOp enumerates the boolean connectives.
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
	OpNot LogicalOp = "not"
)

// Logical covers `&&`/`||` (Left and Right set) and unary `!` (only Left
// set, Right nil).
type Logical struct {
	Operator LogicalOp
	Left     Node
	Right    Node
}

func (*Logical) Kind() Kind { return KindLogical }

// Coalesce renders as COALESCE(Left, Right), lowered from `??`.
type Coalesce struct {
	Left  Node
	Right Node
}

func (*Coalesce) Kind() Kind { return KindCoalesce }

// Conditional renders as CASE WHEN Test THEN Consequent ELSE Alternate END.
type Conditional struct {
	Test       Node
	Consequent Node
	Alternate  Node
}

func (*Conditional) Kind() Kind { return KindConditional }

// Helper enumerates the whitelisted string-method helpers a MethodCall may
// invoke; this whitelist is fixed and never extended by user code.
type Helper string

const (
	HelperStartsWith   Helper = "startsWith"
	HelperEndsWith     Helper = "endsWith"
	HelperIncludes     Helper = "includes"
	HelperToLowerCase  Helper = "toLowerCase"
	HelperToUpperCase  Helper = "toUpperCase"
	HelperTrim         Helper = "trim"
)

// MethodCall is a member-style helper invocation, e.g.
// `x.name.startsWith('A')`. Args holds the lowered call arguments (empty
// for the zero-arg helpers).
type MethodCall struct {
	Receiver Node
	Helper   Helper
	Args     []Node
}

func (*MethodCall) Kind() Kind { return KindMethodCall }

// ObjectProperty preserves declaration order from the source object
// literal, required for deterministic column lists.
type ObjectProperty struct {
	Name  string
	Value Node
}

// Object is a projection: an ordered set of name -> expression pairs built
// from an object literal selector.
type Object struct {
	Properties []ObjectProperty
}

func (*Object) Kind() Kind { return KindObject }

// AllColumns is the marker produced by an identity selector (`u => u`).
type AllColumns struct{}

func (*AllColumns) Kind() Kind { return KindAllColumns }

// AggregateFunc enumerates the grouping-aggregate helpers available inside
// a projection after groupBy (`g.count()`, `g.sum(sel)`, ...).
type AggregateFunc string

const (
	AggCount AggregateFunc = "count"
	AggSum   AggregateFunc = "sum"
	AggAvg   AggregateFunc = "avg"
	AggMin   AggregateFunc = "min"
	AggMax   AggregateFunc = "max"
)

// Aggregate is an aggregate-in-projection node; Selector is nil for
// `g.count()`.
type Aggregate struct {
	Func     AggregateFunc
	Selector Node
}

func (*Aggregate) Kind() Kind { return KindAggregate }
