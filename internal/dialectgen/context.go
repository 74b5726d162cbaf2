// Package dialectgen holds the SQL Generator machinery shared by every
// dialect (§4.G): the SqlContext a walk threads through the QOT, the ORDER
// BY state machine, precedence-aware Expression IR rendering, and the
// top-down-then-bottom-up walk algorithm itself. Dialect packages
// (postgres, sqlite) plug in only what actually diverges: parameter
// placeholder syntax, identifier quoting, pagination emission, and function
// name mapping.
package dialectgen

import (
	"strings"

	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/exprir"
)

// OrderState is the ORDER BY stream's state machine: none -> single ->
// multi. thenBy from none is a lowering-time error (enforced in
// internal/lower), never reached here.
type OrderState int

const (
	OrderNone OrderState = iota
	OrderSingle
	OrderMulti
)

// Warner receives a formatted message for non-fatal generation-time
// conditions, e.g. an unresolved column path falling back to verbatim
// quoting. The root package wires this to its structured logger.
type Warner func(format string, args ...any)

// OrderColumn is one rendered ORDER BY key, already SQL-formatted.
type OrderColumn struct {
	Expr       string
	Descending bool
}

// Dialect captures everything a generator needs that varies by target
// database: identifier quoting, parameter placeholder syntax, pagination
// emission, and function name mapping.
type Dialect interface {
	Name() string
	QuoteIdent(name string) string
	// QuoteAlias quotes a generated table alias (tN). Whether this matches
	// QuoteIdent is a per-dialect constant, not a derived rule: Postgres
	// quotes alias tokens the same as any other identifier, SQLite leaves
	// them bare by convention.
	QuoteAlias(alias string) string
	FormatParam(name string) string
	Paginate(limit, offset string) string
	Concat(parts []string) string
	Substring(expr, from, length string) string
}

// SqlContext is the mutable state threaded through one top-level generation
// pass, mirroring §4.G step 1.
type SqlContext struct {
	Dialect Dialect

	aliasCounter int
	hasJoins     bool
	sideAlias    map[string]string // "left"/"right" -> tN, only set once joins appear

	Params map[string]any
}

// NewContext allocates a fresh SqlContext for one statement.
func NewContext(d Dialect) *SqlContext {
	return &SqlContext{
		Dialect:   d,
		sideAlias: make(map[string]string),
		Params:    make(map[string]any),
	}
}

// NextAlias allocates and returns the next tN table alias.
func (c *SqlContext) NextAlias() string {
	alias := aliasName(c.aliasCounter)
	c.aliasCounter++

	return alias
}

func aliasName(n int) string {
	var b strings.Builder

	b.WriteByte('t')
	b.WriteString(itoa(n))

	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	var digits [20]byte

	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}

	return string(digits[i:])
}

// HasJoins reports whether the query being generated involves a join; it
// gates whether table aliases and column qualification are emitted at all,
// matching every unqualified seed example in the single-table case.
func (c *SqlContext) HasJoins() bool { return c.hasJoins }

func (c *SqlContext) markJoins() { c.hasJoins = true }

func (c *SqlContext) setSideAlias(side, alias string) { c.sideAlias[side] = alias }

func (c *SqlContext) resolveSideAlias(side string) (string, bool) {
	alias, ok := c.sideAlias[side]

	return alias, ok
}

// formatParam renders the dialect placeholder for a parameter name; the
// value itself was already coined during lowering and merged by
// plan.Handle.Finalize, so generation only needs the name.
func (c *SqlContext) formatParam(name string) string {
	return c.Dialect.FormatParam(name)
}

// RenderExpr renders an Expression IR node to SQL text. A child expression
// is parenthesised only when its precedence is lower than its parent needs
// (or, for the right operand, not higher than the parent's own level), so
// `a >= b AND c` is emitted without inner or outer parentheses.
func RenderExpr(c *SqlContext, node exprir.Node) (string, error) {
	return renderPrec(c, node, 0)
}

// precedence levels, lowest to highest.
const (
	precOr = iota
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
	precAtom
)

func renderPrec(c *SqlContext, node exprir.Node, minPrec int) (string, error) {
	sql, prec, err := render(c, node)
	if err != nil {
		return "", err
	}

	if prec < minPrec {
		return "(" + sql + ")", nil
	}

	return sql, nil
}

func render(c *SqlContext, node exprir.Node) (string, int, error) {
	switch n := node.(type) {
	case *exprir.Const:
		return renderConst(n), precAtom, nil

	case *exprir.AutoParam:
		return c.formatParam(n.Name), precAtom, nil

	case *exprir.Param:
		return c.formatParam(n.Property), precAtom, nil

	case *exprir.Column:
		return renderColumn(c, n), precAtom, nil

	case *exprir.BooleanColumn:
		return renderColumn(c, &exprir.Column{Name: n.Name, Source: n.Source}), precAtom, nil

	case *exprir.Binary:
		return renderBinary(c, n)

	case *exprir.Comparison:
		return renderComparison(c, n)

	case *exprir.Logical:
		return renderLogical(c, n)

	case *exprir.Coalesce:
		left, err := renderPrec(c, n.Left, 0)
		if err != nil {
			return "", 0, err
		}

		right, err := renderPrec(c, n.Right, 0)
		if err != nil {
			return "", 0, err
		}

		return "COALESCE(" + left + ", " + right + ")", precAtom, nil

	case *exprir.Conditional:
		return renderConditional(c, n)

	case *exprir.MethodCall:
		return renderMethodCall(c, n)

	case *exprir.AllColumns:
		return "*", precAtom, nil

	default:
		return "", 0, compileerr.Dialect("render", c.Dialect.Name(), "unsupported expression node %T", node)
	}
}

func renderConst(n *exprir.Const) string {
	switch n.ValueType {
	case exprir.ValueNull:
		return "NULL"
	case exprir.ValueBoolean:
		if n.Boolean {
			return "TRUE"
		}

		return "FALSE"
	case exprir.ValueString:
		return "'" + strings.ReplaceAll(n.String, "'", "''") + "'"
	default:
		return n.Number.String()
	}
}

func renderColumn(c *SqlContext, n *exprir.Column) string {
	name := c.Dialect.QuoteIdent(n.Name)

	if n.Source == "" {
		return name
	}

	if alias, ok := c.resolveSideAlias(n.Source); ok {
		return c.Dialect.QuoteAlias(alias) + "." + name
	}

	return name
}

var arithSymbol = map[exprir.BinaryOp]string{
	exprir.OpAdd: "+",
	exprir.OpSub: "-",
	exprir.OpMul: "*",
	exprir.OpDiv: "/",
	exprir.OpMod: "%",
}

func renderBinary(c *SqlContext, n *exprir.Binary) (string, int, error) {
	prec := precAdd
	if n.Operator == exprir.OpMul || n.Operator == exprir.OpDiv || n.Operator == exprir.OpMod {
		prec = precMul
	}

	left, err := renderPrec(c, n.Left, prec)
	if err != nil {
		return "", 0, err
	}

	right, err := renderPrec(c, n.Right, prec+1)
	if err != nil {
		return "", 0, err
	}

	return left + " " + arithSymbol[n.Operator] + " " + right, prec, nil
}

func renderComparison(c *SqlContext, n *exprir.Comparison) (string, int, error) {
	if n.Operator == exprir.OpIn {
		left, err := renderPrec(c, n.Left, precAdd)
		if err != nil {
			return "", 0, err
		}

		right, err := renderPrec(c, n.Right, precAtom)
		if err != nil {
			return "", 0, err
		}

		return left + " IN (" + right + ")", precCompare, nil
	}

	left, err := renderPrec(c, n.Left, precAdd)
	if err != nil {
		return "", 0, err
	}

	if isNullConst(n.Right) {
		if n.Operator == exprir.OpEq {
			return left + " IS NULL", precCompare, nil
		}

		if n.Operator == exprir.OpNotEq {
			return left + " IS NOT NULL", precCompare, nil
		}
	}

	right, err := renderPrec(c, n.Right, precAdd)
	if err != nil {
		return "", 0, err
	}

	op := string(n.Operator)
	if n.Operator == exprir.OpLike {
		op = "LIKE"
	}

	return left + " " + op + " " + right, precCompare, nil
}

func isNullConst(n exprir.Node) bool {
	c, ok := n.(*exprir.Const)

	return ok && c.ValueType == exprir.ValueNull
}

func renderLogical(c *SqlContext, n *exprir.Logical) (string, int, error) {
	if n.Operator == exprir.OpNot {
		operand, err := renderPrec(c, n.Left, precNot)
		if err != nil {
			return "", 0, err
		}

		return "NOT " + operand, precNot, nil
	}

	prec := precOr
	keyword := "OR"

	if n.Operator == exprir.OpAnd {
		prec = precAnd
		keyword = "AND"
	}

	left, err := renderPrec(c, n.Left, prec)
	if err != nil {
		return "", 0, err
	}

	right, err := renderPrec(c, n.Right, prec+1)
	if err != nil {
		return "", 0, err
	}

	return left + " " + keyword + " " + right, prec, nil
}

func renderConditional(c *SqlContext, n *exprir.Conditional) (string, int, error) {
	test, err := renderPrec(c, n.Test, 0)
	if err != nil {
		return "", 0, err
	}

	cons, err := renderPrec(c, n.Consequent, 0)
	if err != nil {
		return "", 0, err
	}

	alt, err := renderPrec(c, n.Alternate, 0)
	if err != nil {
		return "", 0, err
	}

	return "CASE WHEN " + test + " THEN " + cons + " ELSE " + alt + " END", precAtom, nil
}

func renderMethodCall(c *SqlContext, n *exprir.MethodCall) (string, int, error) {
	receiver, err := renderPrec(c, n.Receiver, precAtom)
	if err != nil {
		return "", 0, err
	}

	args := make([]string, 0, len(n.Args))

	for _, a := range n.Args {
		rendered, err := renderPrec(c, a, 0)
		if err != nil {
			return "", 0, err
		}

		args = append(args, rendered)
	}

	switch n.Helper {
	case exprir.HelperToLowerCase:
		return "LOWER(" + receiver + ")", precAtom, nil

	case exprir.HelperToUpperCase:
		return "UPPER(" + receiver + ")", precAtom, nil

	case exprir.HelperTrim:
		return "TRIM(" + receiver + ")", precAtom, nil

	case exprir.HelperStartsWith:
		return receiver + " LIKE " + c.Dialect.Concat([]string{args[0], "'%'"}), precCompare, nil

	case exprir.HelperEndsWith:
		return receiver + " LIKE " + c.Dialect.Concat([]string{"'%'", args[0]}), precCompare, nil

	case exprir.HelperIncludes:
		return receiver + " LIKE " + c.Dialect.Concat([]string{"'%'", args[0], "'%'"}), precCompare, nil

	default:
		return "", 0, compileerr.Dialect("render", c.Dialect.Name(), "unsupported helper %q", n.Helper)
	}
}

// ResolveColumnPath falls back to quoting an unresolved path verbatim,
// matching §4.G's documented fallback for raw column usage, and logs via
// the caller-supplied warn callback.
func ResolveColumnPath(c *SqlContext, path string, warn func(string)) string {
	warn(path)

	return c.Dialect.QuoteIdent(path)
}
