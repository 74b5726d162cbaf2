package lower

import (
	"github.com/shopspring/decimal"

	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/exprir"
	"github.com/linqsql/linqsql/internal/synast"
)

// helperWhitelist is the fixed set of member-style string helpers the DSL
// understands; nothing else is ever invoked as a method on a column.
var helperWhitelist = map[string]exprir.Helper{
	"startsWith":  exprir.HelperStartsWith,
	"endsWith":    exprir.HelperEndsWith,
	"includes":    exprir.HelperIncludes,
	"toLowerCase": exprir.HelperToLowerCase,
	"toUpperCase": exprir.HelperToUpperCase,
	"trim":        exprir.HelperTrim,
}

var groupAggregates = map[string]exprir.AggregateFunc{
	"count": exprir.AggCount,
	"sum":   exprir.AggSum,
	"avg":   exprir.AggAvg,
	"min":   exprir.AggMin,
	"max":   exprir.AggMax,
}

// Expr lowers a single builder expression tree into the Expression IR,
// auto-parameterising embedded literals.
func (c *Context) Expr(node synast.Node) (exprir.Node, error) {
	return c.exprValue(node)
}

// Predicate lowers an expression used in a boolean-valued position, applying
// the truthiness guard: a bare column reference is lifted to booleanColumn.
func (c *Context) Predicate(node synast.Node) (exprir.Node, error) {
	ir, err := c.exprValue(node)
	if err != nil {
		return nil, err
	}

	if col, ok := ir.(*exprir.Column); ok {
		return &exprir.BooleanColumn{Name: col.Name, Source: col.Source}, nil
	}

	return ir, nil
}

func (c *Context) exprValue(node synast.Node) (exprir.Node, error) {
	if node == nil {
		return nil, compileerr.Lowering("lower", synast.Pos{}, "expected an expression, got none")
	}

	switch n := node.(type) {
	case *synast.StringLiteral:
		return c.coinLiteral(exprir.ValueString, n.Value, decimal.Decimal{}, false), nil

	case *synast.NumericLiteral:
		return c.coinLiteral(exprir.ValueNumber, "", decimal.NewFromFloat(n.Value), false), nil

	case *synast.BooleanLiteral:
		return c.coinLiteral(exprir.ValueBoolean, "", decimal.Decimal{}, n.Value), nil

	case *synast.NullLiteral:
		return &exprir.Const{ValueType: exprir.ValueNull}, nil

	case *synast.Identifier:
		return c.resolveIdentifier(n)

	case *synast.MemberExpression:
		return c.resolveMember(n)

	case *synast.CallExpression:
		return c.resolveCall(n)

	case *synast.BinaryExpression:
		return c.resolveBinary(n)

	case *synast.LogicalExpression:
		return c.resolveLogical(n)

	case *synast.UnaryExpression:
		return c.resolveUnary(n)

	case *synast.ConditionalExpression:
		return c.resolveConditional(n)

	case *synast.ObjectExpression:
		return c.resolveObject(n)

	case *synast.TemplateLiteral:
		return c.resolveTemplate(n)

	default:
		return nil, compileerr.Lowering("lower", node.Pos(), "unsupported expression node %T", node)
	}
}

func (c *Context) coinLiteral(vt exprir.ValueType, s string, num decimal.Decimal, b bool) exprir.Node {
	var value any

	switch vt {
	case exprir.ValueString:
		value = s
	case exprir.ValueNumber:
		value = num
	case exprir.ValueBoolean:
		value = b
	}

	name := c.nextAutoParam(value)

	return &exprir.AutoParam{Name: name, Value: value}
}

// resolveIdentifier handles a bare identifier in expression position: it can
// only be the grouping param's `g.key` shorthand reached through g itself
// (handled in resolveMember), or an unsupported free variable.
func (c *Context) resolveIdentifier(n *synast.Identifier) (exprir.Node, error) {
	return nil, compileerr.Lowering("lower", n.At, "identifier %q does not resolve to a row, query, or grouping parameter", n.Name)
}

func (c *Context) resolveMember(n *synast.MemberExpression) (exprir.Node, error) {
	base, path, ok := flattenMember(n)
	if !ok {
		return nil, compileerr.Lowering("lower", n.At, "only plain member access is supported")
	}

	switch {
	case base == c.GroupParam && c.GroupParam != "":
		if len(path) == 1 && path[0] == "key" {
			return c.GroupKey, nil
		}

		return nil, compileerr.Lowering("lower", n.At, "grouping parameter %q only exposes .key outside an aggregate call", base)

	case c.QueryParams.Contains(base):
		if len(path) != 1 {
			return nil, compileerr.Lowering("lower", n.At, "query parameter %q member access must be a single property", base)
		}

		c.DeclaredParams.Add(path[0])

		return &exprir.Param{Param: base, Property: path[0]}, nil

	case base == c.LeftParam && c.LeftParam != "":
		return joinSideColumn(path, "left")

	case base == c.RightParam && c.RightParam != "":
		return joinSideColumn(path, "right")

	case base == c.RowParam && c.RowParam != "":
		return c.resolveRowMember(n, path)

	default:
		return nil, compileerr.Lowering("lower", n.At, "identifier %q does not resolve to a row, query, or grouping parameter", base)
	}
}

func (c *Context) resolveRowMember(n *synast.MemberExpression, path []string) (exprir.Node, error) {
	if len(path) == 1 {
		return &exprir.Column{Name: path[0]}, nil
	}

	if len(path) == 2 {
		if ref, ok := c.Shape.Lookup(path[0]); ok && ref.ColumnName == "*" {
			return &exprir.Column{Name: path[1], Source: ref.TableAlias}, nil
		}
	}

	return nil, compileerr.Lowering("lower", n.At, "unsupported nested member path %q", joinPath(path))
}

func joinSideColumn(path []string, side string) (exprir.Node, error) {
	if len(path) != 1 {
		return nil, compileerr.Lowering("lower", synast.Pos{}, "join key/result selectors only support single-level member access")
	}

	return &exprir.Column{Name: path[0], Source: side}, nil
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}

	return out
}

// flattenMember walks a chain of MemberExpressions down to its Identifier
// base, returning the base name and the dotted property path in source
// order (outermost last).
func flattenMember(n *synast.MemberExpression) (string, []string, bool) {
	var path []string

	cur := synast.Node(n)

	for {
		member, ok := cur.(*synast.MemberExpression)
		if !ok {
			break
		}

		path = append([]string{member.Property}, path...)
		cur = member.Object
	}

	ident, ok := cur.(*synast.Identifier)
	if !ok {
		return "", nil, false
	}

	return ident.Name, path, true
}

func (c *Context) resolveCall(n *synast.CallExpression) (exprir.Node, error) {
	member, ok := n.Callee.(*synast.MemberExpression)
	if !ok {
		return nil, compileerr.Lowering("lower", n.At, "only member-style calls are supported")
	}

	if base, ok := member.Object.(*synast.Identifier); ok && base.Name == c.GroupParam && c.GroupParam != "" {
		agg, known := groupAggregates[member.Property]
		if !known {
			return nil, compileerr.Lowering("lower", n.At, "unsupported grouping aggregate %q", member.Property)
		}

		var selector exprir.Node

		if len(n.Arguments) == 1 {
			lowered, err := c.exprValue(n.Arguments[0])
			if err != nil {
				return nil, err
			}

			selector = lowered
		}

		return &exprir.Aggregate{Func: agg, Selector: selector}, nil
	}

	helper, known := helperWhitelist[member.Property]
	if !known {
		return nil, compileerr.Lowering("lower", n.At, "unsupported method call %q", member.Property)
	}

	receiver, err := c.exprValue(member.Object)
	if err != nil {
		return nil, err
	}

	args := make([]exprir.Node, 0, len(n.Arguments))

	for _, a := range n.Arguments {
		lowered, err := c.exprValue(a)
		if err != nil {
			return nil, err
		}

		args = append(args, lowered)
	}

	return &exprir.MethodCall{Receiver: receiver, Helper: helper, Args: args}, nil
}

var compareOps = map[string]exprir.CompareOp{
	"==": exprir.OpEq,
	"!=": exprir.OpNotEq,
	"<":  exprir.OpLt,
	"<=": exprir.OpLtEq,
	">":  exprir.OpGt,
	">=": exprir.OpGtEq,
}

var arithOps = map[string]exprir.BinaryOp{
	"+": exprir.OpAdd,
	"-": exprir.OpSub,
	"*": exprir.OpMul,
	"/": exprir.OpDiv,
	"%": exprir.OpMod,
}

func (c *Context) resolveBinary(n *synast.BinaryExpression) (exprir.Node, error) {
	left, err := c.exprValue(n.Left)
	if err != nil {
		return nil, err
	}

	right, err := c.exprValue(n.Right)
	if err != nil {
		return nil, err
	}

	if op, ok := compareOps[n.Operator]; ok {
		return &exprir.Comparison{Operator: op, Left: left, Right: right}, nil
	}

	if op, ok := arithOps[n.Operator]; ok {
		return &exprir.Binary{Operator: op, Left: left, Right: right}, nil
	}

	return nil, compileerr.Lowering("lower", n.At, "unsupported binary operator %q", n.Operator)
}

func (c *Context) resolveLogical(n *synast.LogicalExpression) (exprir.Node, error) {
	left, err := c.Predicate(n.Left)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "&&":
		right, err := c.Predicate(n.Right)
		if err != nil {
			return nil, err
		}

		return &exprir.Logical{Operator: exprir.OpAnd, Left: left, Right: right}, nil

	case "||":
		right, err := c.Predicate(n.Right)
		if err != nil {
			return nil, err
		}

		return &exprir.Logical{Operator: exprir.OpOr, Left: left, Right: right}, nil

	case "??":
		leftValue, err := c.exprValue(n.Left)
		if err != nil {
			return nil, err
		}

		rightValue, err := c.exprValue(n.Right)
		if err != nil {
			return nil, err
		}

		return &exprir.Coalesce{Left: leftValue, Right: rightValue}, nil

	default:
		return nil, compileerr.Lowering("lower", n.At, "unsupported logical operator %q", n.Operator)
	}
}

func (c *Context) resolveUnary(n *synast.UnaryExpression) (exprir.Node, error) {
	switch n.Operator {
	case "not":
		operand, err := c.Predicate(n.Operand)
		if err != nil {
			return nil, err
		}

		return &exprir.Logical{Operator: exprir.OpNot, Left: operand}, nil

	case "-":
		operand, err := c.exprValue(n.Operand)
		if err != nil {
			return nil, err
		}

		return &exprir.Binary{Operator: exprir.OpSub, Left: &exprir.Const{ValueType: exprir.ValueNumber}, Right: operand}, nil

	default:
		return nil, compileerr.Lowering("lower", n.At, "unsupported unary operator %q", n.Operator)
	}
}

func (c *Context) resolveConditional(n *synast.ConditionalExpression) (exprir.Node, error) {
	test, err := c.Predicate(n.Test)
	if err != nil {
		return nil, err
	}

	cons, err := c.exprValue(n.Consequent)
	if err != nil {
		return nil, err
	}

	alt, err := c.exprValue(n.Alternate)
	if err != nil {
		return nil, err
	}

	return &exprir.Conditional{Test: test, Consequent: cons, Alternate: alt}, nil
}

func (c *Context) resolveObject(n *synast.ObjectExpression) (exprir.Node, error) {
	out := &exprir.Object{}

	for _, prop := range n.Properties {
		value, err := c.exprValue(prop.Value)
		if err != nil {
			return nil, err
		}

		out.Properties = append(out.Properties, exprir.ObjectProperty{Name: prop.Key, Value: value})
	}

	return out, nil
}

// resolveTemplate normalises a template literal to nested binary `+` over
// string operands, per §3.2.
func (c *Context) resolveTemplate(n *synast.TemplateLiteral) (exprir.Node, error) {
	var result exprir.Node = c.coinLiteral(exprir.ValueString, n.Quasis[0], decimal.Decimal{}, false)

	for i, expr := range n.Expressions {
		value, err := c.exprValue(expr)
		if err != nil {
			return nil, err
		}

		result = &exprir.Binary{Operator: exprir.OpAdd, Left: result, Right: value}

		if i+1 < len(n.Quasis) && n.Quasis[i+1] != "" {
			result = &exprir.Binary{
				Operator: exprir.OpAdd,
				Left:     result,
				Right:    c.coinLiteral(exprir.ValueString, n.Quasis[i+1], decimal.Decimal{}, false),
			}
		}
	}

	return result, nil
}
