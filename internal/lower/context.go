// Package lower implements the Expression Lowerer and Operation Lowerer: the
// two passes that turn a parsed builder chain into a Query Operation Tree
// plus its associated Expression IR, auto-parameterising embedded literals
// along the way.
package lower

import (
	"github.com/linqsql/linqsql/internal/exprir"
	"github.com/linqsql/linqsql/internal/qot"
	"github.com/linqsql/linqsql/set"
)

// Context threads the state a lowering pass needs between sibling and nested
// arrow functions in a single chain: the three disjoint parameter-name
// namespaces (row, query, grouping), the shape carried between operations,
// and the per-plan auto-param counter.
type Context struct {
	// QueryParams holds the names bound by the outermost builder arrow
	// (e.g. "p" in `(p) => from(...)`); these resolve to param{} nodes in
	// every arrow of the chain. The nested builder arrows passed to join and
	// the set operations are lowered by Chain with a Context of their own,
	// so they see only the parameter names they declare themselves.
	QueryParams *set.HashSet[string]

	// RowParam is the identifier currently bound to "the row", e.g. "x" in
	// `where(x => ...)`. Empty when no row parameter is in scope.
	RowParam string

	// LeftParam/RightParam are set only while lowering a join's
	// resultSelector, which uniquely binds two row parameters at once.
	LeftParam  string
	RightParam string
	LeftShape  *qot.SymbolTable
	RightShape *qot.SymbolTable

	// GroupParam is the identifier bound to the grouping object after
	// groupBy, e.g. "g" in `select(g => ({key: g.key, n: g.count()}))`.
	GroupParam string
	GroupKey   exprir.Node

	// Shape is the symbol table carried between operations, rebuilt by
	// select and join.
	Shape *qot.SymbolTable

	seq            *int
	AutoParams     map[string]any
	DeclaredParams *set.HashSet[string]
}

// NewContext creates a Context for lowering one plan, with fresh per-plan
// auto-param state.
func NewContext() *Context {
	seq := 0

	return &Context{
		QueryParams:    set.New[string](),
		Shape:          qot.Empty(),
		seq:            &seq,
		AutoParams:     make(map[string]any),
		DeclaredParams: set.New[string](),
	}
}

func (c *Context) withRow(name string) func() {
	prev := c.RowParam
	c.RowParam = name

	return func() { c.RowParam = prev }
}

func (c *Context) withGroup(name string, key exprir.Node) func() {
	prevName, prevKey := c.GroupParam, c.GroupKey
	c.GroupParam, c.GroupKey = name, key

	return func() { c.GroupParam, c.GroupKey = prevName, prevKey }
}

func (c *Context) withJoinParams(left, right string, leftShape, rightShape *qot.SymbolTable) func() {
	pl, pr, pls, prs := c.LeftParam, c.RightParam, c.LeftShape, c.RightShape
	c.LeftParam, c.RightParam, c.LeftShape, c.RightShape = left, right, leftShape, rightShape

	return func() {
		c.LeftParam, c.RightParam, c.LeftShape, c.RightShape = pl, pr, pls, prs
	}
}

// nextAutoParam coins the next __pN name and records value under it.
func (c *Context) nextAutoParam(value any) string {
	*c.seq++
	name := autoParamName(*c.seq)
	c.AutoParams[name] = value

	return name
}

func autoParamName(n int) string {
	const prefix = "__p"

	digits := [20]byte{}
	i := len(digits)

	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}

	return prefix + string(digits[i:])
}
