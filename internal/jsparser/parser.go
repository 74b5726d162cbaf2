// Package jsparser turns builder source text into the reduced synast tree.
// It delegates actual tokenising/parsing to goja's ECMAScript parser and
// converts the resulting real ECMAScript AST into our narrow DSL shape,
// rejecting anything outside it.
package jsparser

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
	"github.com/dop251/goja/unistring"

	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/synast"
)

// Parse compiles source into an ECMAScript program via goja and converts its
// single top-level arrow function expression into a synast.ArrowFunction.
func Parse(source string) (*synast.ArrowFunction, error) {
	program, err := parser.ParseFile(nil, "builder.js", source, 0, parser.WithDisableSourceMaps)
	if err != nil {
		return nil, compileerr.Parse("parse", synast.Pos{}, "%v", err)
	}

	expr, err := soleExpression(program)
	if err != nil {
		return nil, err
	}

	arrow, ok := expr.(*ast.ArrowFunctionLiteral)
	if !ok {
		return nil, compileerr.Parse("parse", posOf(expr.Idx0()), "builder source must be a single arrow function")
	}

	c := &converter{fset: program.File}

	return c.convertArrow(arrow)
}

func soleExpression(program *ast.Program) (ast.Expression, error) {
	if len(program.Body) != 1 {
		return nil, compileerr.Parse("parse", synast.Pos{}, "expected exactly one top-level statement, got %d", len(program.Body))
	}

	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, compileerr.Parse("parse", synast.Pos{}, "top-level statement must be an expression")
	}

	return stmt.Expression, nil
}

// converter walks the goja AST, translating every supported node kind into
// its synast counterpart. fset resolves file.Idx offsets to line/column.
type converter struct {
	fset *file.File
}

func (c *converter) posOf(idx file.Idx) synast.Pos {
	if c.fset == nil {
		return synast.Pos{}
	}

	pos := c.fset.Position(int(idx))

	return synast.Pos{Line: pos.Line, Col: pos.Column}
}

func posOf(idx file.Idx) synast.Pos {
	return synast.Pos{Line: 0, Col: int(idx)}
}

func (c *converter) convertArrow(n *ast.ArrowFunctionLiteral) (*synast.ArrowFunction, error) {
	out := &synast.ArrowFunction{At: c.posOf(n.Start)}

	if n.ParameterList != nil {
		for _, binding := range n.ParameterList.List {
			ident, ok := binding.Target.(*ast.Identifier)
			if !ok {
				return nil, compileerr.Parse("parse", out.At, "arrow function parameters must be plain identifiers")
			}

			out.Params = append(out.Params, string(ident.Name))
		}
	}

	switch body := n.Body.(type) {
	case ast.Expression:
		expr, err := c.convertExpr(body)
		if err != nil {
			return nil, err
		}

		out.Expr = expr

	case *ast.BlockStatement:
		block, err := c.convertBlock(body)
		if err != nil {
			return nil, err
		}

		out.Body = block

	default:
		return nil, compileerr.Parse("parse", out.At, "unsupported arrow function body")
	}

	return out, nil
}

func (c *converter) convertBlock(n *ast.BlockStatement) (*synast.BlockStatement, error) {
	out := &synast.BlockStatement{At: c.posOf(n.LeftBrace)}

	for _, stmt := range n.List {
		ret, ok := stmt.(*ast.ReturnStatement)
		if !ok {
			continue
		}

		arg, err := c.convertExpr(ret.Argument)
		if err != nil {
			return nil, err
		}

		out.Statements = append(out.Statements, &synast.ReturnStatement{
			At:       c.posOf(ret.Return),
			Argument: arg,
		})
	}

	return out, nil
}

func (c *converter) convertExpr(n ast.Expression) (synast.Node, error) {
	if n == nil {
		return nil, nil
	}

	switch e := n.(type) {
	case *ast.Identifier:
		return &synast.Identifier{At: c.posOf(e.Idx), Name: string(e.Name)}, nil

	case *ast.StringLiteral:
		return &synast.StringLiteral{At: c.posOf(e.Idx), Value: string(e.Value)}, nil

	case *ast.NumberLiteral:
		return &synast.NumericLiteral{At: c.posOf(e.Idx), Value: toFloat(e.Value)}, nil

	case *ast.BooleanLiteral:
		return &synast.BooleanLiteral{At: c.posOf(e.Idx), Value: e.Value}, nil

	case *ast.NullLiteral:
		return &synast.NullLiteral{At: c.posOf(e.Idx)}, nil

	case *ast.DotExpression:
		obj, err := c.convertExpr(e.Left)
		if err != nil {
			return nil, err
		}

		return &synast.MemberExpression{
			At:       c.posOf(e.Identifier.Idx),
			Object:   obj,
			Property: string(e.Identifier.Name),
		}, nil

	case *ast.BracketExpression:
		obj, err := c.convertExpr(e.Left)
		if err != nil {
			return nil, err
		}

		if lit, ok := e.Member.(*ast.StringLiteral); ok {
			return &synast.MemberExpression{
				At:       c.posOf(lit.Idx),
				Object:   obj,
				Property: string(lit.Value),
			}, nil
		}

		return nil, compileerr.Lowering("parse", c.posOf(e.Left.Idx0()), "computed member access is not supported")

	case *ast.CallExpression:
		callee, err := c.convertExpr(e.Callee)
		if err != nil {
			return nil, err
		}

		args := make([]synast.Node, 0, len(e.ArgumentList))

		for _, a := range e.ArgumentList {
			arg, err := c.convertExpr(a)
			if err != nil {
				return nil, err
			}

			args = append(args, arg)
		}

		return &synast.CallExpression{At: c.posOf(e.LeftParenthesis), Callee: callee, Arguments: args}, nil

	case *ast.BinaryExpression:
		return c.convertBinary(e)

	case *ast.UnaryExpression:
		operand, err := c.convertExpr(e.Operand)
		if err != nil {
			return nil, err
		}

		op, ok := unaryOp(e.Operator)
		if !ok {
			return nil, compileerr.Lowering("parse", c.posOf(e.Idx), "unsupported unary operator %s", e.Operator.String())
		}

		return &synast.UnaryExpression{At: c.posOf(e.Idx), Operator: op, Operand: operand}, nil

	case *ast.ConditionalExpression:
		test, err := c.convertExpr(e.Test)
		if err != nil {
			return nil, err
		}

		cons, err := c.convertExpr(e.Consequent)
		if err != nil {
			return nil, err
		}

		alt, err := c.convertExpr(e.Alternate)
		if err != nil {
			return nil, err
		}

		return &synast.ConditionalExpression{At: c.posOf(e.Test.Idx0()), Test: test, Consequent: cons, Alternate: alt}, nil

	case *ast.ObjectLiteral:
		return c.convertObject(e)

	case *ast.ArrayLiteral:
		elems := make([]synast.Node, 0, len(e.Value))

		for _, v := range e.Value {
			el, err := c.convertExpr(v)
			if err != nil {
				return nil, err
			}

			elems = append(elems, el)
		}

		return &synast.ArrayExpression{At: c.posOf(e.LeftBracket), Elements: elems}, nil

	case *ast.TemplateLiteral:
		return c.convertTemplate(e)

	case *ast.ArrowFunctionLiteral:
		return c.convertArrow(e)

	// Optional chaining (`x?.name`) is lowered as plain member access.
	case *ast.OptionalChain:
		return c.convertExpr(e.Expression)

	case *ast.Optional:
		return c.convertExpr(e.Expression)

	default:
		return nil, compileerr.Lowering("parse", c.posOf(n.Idx0()), "unsupported expression node %T", n)
	}
}

func (c *converter) convertBinary(e *ast.BinaryExpression) (synast.Node, error) {
	left, err := c.convertExpr(e.Left)
	if err != nil {
		return nil, err
	}

	right, err := c.convertExpr(e.Right)
	if err != nil {
		return nil, err
	}

	at := c.posOf(e.Left.Idx0())

	if logicalOp, ok := logicalOp(e.Operator); ok {
		return &synast.LogicalExpression{At: at, Operator: logicalOp, Left: left, Right: right}, nil
	}

	op, ok := binaryOp(e.Operator)
	if !ok {
		return nil, compileerr.Lowering("parse", at, "unsupported binary operator %s", e.Operator.String())
	}

	if op == "+" {
		return &synast.BinaryExpression{At: at, Operator: op, Left: left, Right: right}, nil
	}

	return &synast.BinaryExpression{At: at, Operator: op, Left: left, Right: right}, nil
}

func (c *converter) convertObject(e *ast.ObjectLiteral) (synast.Node, error) {
	out := &synast.ObjectExpression{At: c.posOf(e.LeftBrace)}

	for _, prop := range e.Value {
		keyed, ok := prop.(*ast.PropertyKeyed)
		if !ok {
			return nil, compileerr.Lowering("parse", out.At, "only plain key/value object properties are supported")
		}

		name, err := propertyName(keyed.Key)
		if err != nil {
			return nil, err
		}

		value, err := c.convertExpr(keyed.Value)
		if err != nil {
			return nil, err
		}

		out.Properties = append(out.Properties, synast.ObjectProperty{Key: name, Value: value})
	}

	return out, nil
}

func propertyName(key ast.Expression) (string, error) {
	switch k := key.(type) {
	case *ast.Identifier:
		return string(k.Name), nil
	case *ast.StringLiteral:
		return string(k.Value), nil
	default:
		return "", compileerr.Lowering("parse", posOf(key.Idx0()), "unsupported object property key %T", key)
	}
}

func (c *converter) convertTemplate(e *ast.TemplateLiteral) (synast.Node, error) {
	out := &synast.TemplateLiteral{At: c.posOf(e.Openquote)}

	for _, el := range e.Elements {
		out.Quasis = append(out.Quasis, string(el.Parsed))
	}

	for _, expr := range e.Expressions {
		conv, err := c.convertExpr(expr)
		if err != nil {
			return nil, err
		}

		out.Expressions = append(out.Expressions, conv)
	}

	return out, nil
}

func toFloat(v unistring.String) float64 {
	var f float64

	_, _ = fmt.Sscanf(string(v), "%g", &f)

	return f
}

func unaryOp(t token.Token) (string, bool) {
	switch t {
	case token.NOT:
		return "not", true
	case token.MINUS:
		return "-", true
	case token.PLUS:
		return "+", true
	default:
		return "", false
	}
}

func logicalOp(t token.Token) (string, bool) {
	switch t {
	case token.LOGICAL_AND:
		return "&&", true
	case token.LOGICAL_OR:
		return "||", true
	case token.COALESCE:
		return "??", true
	default:
		return "", false
	}
}

func binaryOp(t token.Token) (string, bool) {
	switch t {
	case token.PLUS:
		return "+", true
	case token.MINUS:
		return "-", true
	case token.MULTIPLY:
		return "*", true
	case token.SLASH:
		return "/", true
	case token.REMAINDER:
		return "%", true
	case token.EQUAL, token.STRICT_EQUAL:
		return "==", true
	case token.NOT_EQUAL, token.STRICT_NOT_EQUAL:
		return "!=", true
	case token.LESS:
		return "<", true
	case token.LESS_OR_EQUAL:
		return "<=", true
	case token.GREATER:
		return ">", true
	case token.GREATER_OR_EQUAL:
		return ">=", true
	default:
		return "", false
	}
}
