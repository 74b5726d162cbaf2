package lower

import (
	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/exprir"
	"github.com/linqsql/linqsql/internal/qot"
	"github.com/linqsql/linqsql/internal/synast"
)

// step is one link of the unrolled call chain: a method name plus its call
// arguments, in left-to-right (outermost-first) source order.
type step struct {
	method string
	args   []synast.Node
	at     synast.Pos
}

// Chain lowers a builder arrow function's chained method calls into a Query
// Operation Tree, returning the root operation and the context the
// Expression Lowerer accumulated (auto-params, declared params).
func Chain(arrow *synast.ArrowFunction) (qot.Operation, *Context, error) {
	ctx := NewContext()
	ctx.QueryParams.Add(arrow.Params...)

	expr := arrow.ReturnExpr()
	if expr == nil {
		return nil, nil, compileerr.Lowering("lower", arrow.At, "builder function has no return expression")
	}

	steps, err := unroll(expr)
	if err != nil {
		return nil, nil, err
	}

	var src qot.Operation

	for _, st := range steps {
		handler, ok := dispatch[st.method]
		if !ok {
			return nil, nil, compileerr.Lowering(st.method, st.at, "unknown builder method %q", st.method)
		}

		src, err = handler(ctx, src, st)
		if err != nil {
			return nil, nil, err
		}
	}

	return src, ctx, nil
}

func unroll(expr synast.Node) ([]step, error) {
	var steps []step

	cur := expr

	for {
		call, ok := cur.(*synast.CallExpression)
		if !ok {
			return nil, compileerr.Lowering("lower", cur.Pos(), "expected a chained method call expression")
		}

		switch callee := call.Callee.(type) {
		case *synast.MemberExpression:
			steps = append(steps, step{method: callee.Property, args: call.Arguments, at: call.At})
			cur = callee.Object

		case *synast.Identifier:
			steps = append(steps, step{method: callee.Name, args: call.Arguments, at: call.At})

			for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
				steps[i], steps[j] = steps[j], steps[i]
			}

			return steps, nil

		default:
			return nil, compileerr.Lowering("lower", call.At, "unsupported call target")
		}
	}
}

type handlerFunc func(ctx *Context, src qot.Operation, st step) (qot.Operation, error)

var dispatch map[string]handlerFunc

func init() {
	dispatch = map[string]handlerFunc{
		"from":                 handleFrom,
		"where":                handleWhere,
		"select":               handleSelect,
		"distinct":             handleDistinct,
		"orderBy":              handleOrderBy(false),
		"orderByDescending":    handleOrderBy(true),
		"thenBy":               handleThenBy(false),
		"thenByDescending":     handleThenBy(true),
		"reverse":              handleReverse,
		"take":                 handleTake,
		"skip":                 handleSkip,
		"groupBy":              handleGroupBy,
		"join":                 handleJoin(qot.JoinInner),
		"leftJoin":             handleJoin(qot.JoinLeft),
		"union":                handleSetOp(qot.KindUnion),
		"intersect":            handleSetOp(qot.KindIntersect),
		"except":               handleSetOp(qot.KindExcept),
		"count":                handleCount,
		"sum":                  handleSelectorAggregate(qot.KindSum),
		"average":              handleSelectorAggregate(qot.KindAverage),
		"min":                  handleSelectorAggregate(qot.KindMin),
		"max":                  handleSelectorAggregate(qot.KindMax),
		"first":                handleElement(qot.KindFirst, false),
		"firstOrDefault":       handleElement(qot.KindFirst, true),
		"single":               handleElement(qot.KindSingle, false),
		"singleOrDefault":      handleElement(qot.KindSingle, true),
		"last":                 handleElement(qot.KindLast, false),
		"lastOrDefault":        handleElement(qot.KindLast, true),
		"any":                  handleAny,
		"all":                  handleAll,
		"contains":             handleContains,
		"toArray":              handleToArray,
		"insertInto":           handleInsertInto,
		"values":               handleValues,
		"returning":            handleReturning,
		"update":               handleUpdate,
		"set":                  handleSet,
		"delete":               handleDelete,
		"allowFullTableUpdate": handleAllowFullUpdate,
		"allowFullTableDelete": handleAllowFullDelete,
	}
}

func tableArgs(args []synast.Node) (table, schema string, err error) {
	if len(args) == 0 {
		return "", "", compileerr.Lowering("from", synast.Pos{}, "expected a table name argument")
	}

	// from(db, "t"[, "schema"]) vs from("t"[, "schema"]): the leading
	// schema-handle argument, when present, is never a string literal.
	if _, isString := args[0].(*synast.StringLiteral); !isString {
		args = args[1:]
	}

	if len(args) == 0 {
		return "", "", compileerr.Lowering("from", synast.Pos{}, "missing table name argument")
	}

	lit, ok := args[0].(*synast.StringLiteral)
	if !ok {
		return "", "", compileerr.Lowering("from", args[0].Pos(), "table name must be a string literal")
	}

	table = lit.Value

	if len(args) > 1 {
		schemaLit, ok := args[1].(*synast.StringLiteral)
		if !ok {
			return "", "", compileerr.Lowering("from", args[1].Pos(), "schema name must be a string literal")
		}

		schema = schemaLit.Value
	}

	return table, schema, nil
}

func soleArrow(args []synast.Node, method string, at synast.Pos) (*synast.ArrowFunction, error) {
	if len(args) != 1 {
		return nil, compileerr.Lowering(method, at, "%s expects exactly one arrow-function argument", method)
	}

	arrow, ok := args[0].(*synast.ArrowFunction)
	if !ok {
		return nil, compileerr.Lowering(method, at, "%s expects an arrow-function argument", method)
	}

	return arrow, nil
}

func handleFrom(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	if src != nil {
		return nil, compileerr.Shape("from", "from must be the first call in a chain")
	}

	table, schema, err := tableArgs(st.args)
	if err != nil {
		return nil, err
	}

	ctx.Shape = qot.NewWildcard("")

	return &qot.From{Table: table, Schema: schema}, nil
}

func handleWhere(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	arrow, err := soleArrow(st.args, "where", st.at)
	if err != nil {
		return nil, err
	}

	switch root := src.(type) {
	case *qot.Update:
		pred, err := lowerPredicateArrow(ctx, arrow)
		if err != nil {
			return nil, err
		}

		root.Predicate = pred

		return root, nil

	case *qot.Delete:
		pred, err := lowerPredicateArrow(ctx, arrow)
		if err != nil {
			return nil, err
		}

		root.Predicate = pred

		return root, nil

	default:
		pred, err := lowerPredicateArrow(ctx, arrow)
		if err != nil {
			return nil, err
		}

		return &qot.Where{Src: src, Predicate: pred}, nil
	}
}

func lowerPredicateArrow(ctx *Context, arrow *synast.ArrowFunction) (exprir.Node, error) {
	if len(arrow.Params) != 1 {
		return nil, compileerr.Lowering("lower", arrow.At, "predicate arrow must take exactly one row parameter")
	}

	restore := ctx.withRow(arrow.Params[0])
	defer restore()

	return ctx.Predicate(arrow.ReturnExpr())
}

func lowerSelectorArrow(ctx *Context, arrow *synast.ArrowFunction) (exprir.Node, error) {
	if len(arrow.Params) != 1 {
		return nil, compileerr.Lowering("lower", arrow.At, "selector arrow must take exactly one row parameter")
	}

	restore := ctx.withRow(arrow.Params[0])
	defer restore()

	return ctx.Expr(arrow.ReturnExpr())
}

func handleSelect(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	arrow, err := soleArrow(st.args, "select", st.at)
	if err != nil {
		return nil, err
	}

	if gb, ok := nearestGroupBy(src); ok {
		if len(arrow.Params) != 1 {
			return nil, compileerr.Lowering("select", arrow.At, "post-groupBy select arrow must take the grouping parameter")
		}

		restoreGroup := ctx.withGroup(arrow.Params[0], gb.KeySelector)
		defer restoreGroup()

		selector, err := ctx.Expr(arrow.ReturnExpr())
		if err != nil {
			return nil, err
		}

		return &qot.Select{Src: src, Selector: selector}, nil
	}

	if len(arrow.Params) == 1 {
		if ident, ok := arrow.ReturnExpr().(*synast.Identifier); ok && ident.Name == arrow.Params[0] {
			ctx.Shape = qot.NewWildcard("")

			return &qot.Select{Src: src, Selector: &exprir.AllColumns{}}, nil
		}
	}

	selector, err := lowerSelectorArrow(ctx, arrow)
	if err != nil {
		return nil, err
	}

	if obj, ok := selector.(*exprir.Object); ok {
		ctx.Shape = qot.Empty()

		for _, prop := range obj.Properties {
			ctx.Shape.Set(prop.Name, qot.SourceReference{ColumnName: prop.Name})
		}
	}

	return &qot.Select{Src: src, Selector: selector}, nil
}

// nearestGroupBy walks back through where (a HAVING-style filter) to find a
// directly preceding groupBy, per invariant 4: select after groupBy only
// projects from g.key and aggregate helpers.
func nearestGroupBy(op qot.Operation) (*qot.GroupBy, bool) {
	for op != nil {
		switch o := op.(type) {
		case *qot.GroupBy:
			return o, true
		case *qot.Where:
			op = o.Src
		default:
			return nil, false
		}
	}

	return nil, false
}

func handleDistinct(_ *Context, src qot.Operation, _ step) (qot.Operation, error) {
	return &qot.Distinct{Src: src}, nil
}

func handleOrderBy(descending bool) handlerFunc {
	return func(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
		arrow, err := soleArrow(st.args, "orderBy", st.at)
		if err != nil {
			return nil, err
		}

		key, err := lowerSelectorArrow(ctx, arrow)
		if err != nil {
			return nil, err
		}

		return &qot.OrderBy{Src: src, KeySelector: key, Descending: descending}, nil
	}
}

func handleThenBy(descending bool) handlerFunc {
	return func(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
		if !hasOrderBy(src) {
			return nil, compileerr.Shape("thenBy", "thenBy requires a preceding orderBy in the chain")
		}

		arrow, err := soleArrow(st.args, "thenBy", st.at)
		if err != nil {
			return nil, err
		}

		key, err := lowerSelectorArrow(ctx, arrow)
		if err != nil {
			return nil, err
		}

		return &qot.ThenBy{Src: src, KeySelector: key, Descending: descending}, nil
	}
}

// hasOrderBy walks back through pass-through ops (where/select/distinct) to
// find an orderBy/thenBy without crossing a groupBy/join/set-op boundary.
func hasOrderBy(op qot.Operation) bool {
	for op != nil {
		switch op.Kind() {
		case qot.KindOrderBy, qot.KindThenBy:
			return true
		case qot.KindWhere, qot.KindSelect, qot.KindDistinct:
			op = op.Source()
		default:
			return false
		}
	}

	return false
}

func handleReverse(_ *Context, src qot.Operation, _ step) (qot.Operation, error) {
	return &qot.Reverse{Src: src}, nil
}

func lowerCount(ctx *Context, args []synast.Node, method string, at synast.Pos) (exprir.Node, error) {
	if len(args) != 1 {
		return nil, compileerr.Lowering(method, at, "%s expects exactly one count argument", method)
	}

	return ctx.Expr(args[0])
}

func handleTake(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	count, err := lowerCount(ctx, st.args, "take", st.at)
	if err != nil {
		return nil, err
	}

	return &qot.Take{Src: src, Count: count}, nil
}

func handleSkip(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	count, err := lowerCount(ctx, st.args, "skip", st.at)
	if err != nil {
		return nil, err
	}

	return &qot.Skip{Src: src, Count: count}, nil
}

func handleGroupBy(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	arrow, err := soleArrow(st.args, "groupBy", st.at)
	if err != nil {
		return nil, err
	}

	key, err := lowerSelectorArrow(ctx, arrow)
	if err != nil {
		return nil, err
	}

	ctx.GroupKey = key

	return &qot.GroupBy{Src: src, KeySelector: key}, nil
}

func handleJoin(kind qot.JoinKind) handlerFunc {
	return func(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
		if len(st.args) != 4 {
			return nil, compileerr.Lowering("join", st.at, "join expects (inner, outerKey, innerKey, resultSelector)")
		}

		innerArrow, ok := st.args[0].(*synast.ArrowFunction)
		if !ok {
			return nil, compileerr.Lowering("join", st.at, "join's inner source must be a nested builder arrow")
		}

		inner, innerCtx, err := Chain(innerArrow)
		if err != nil {
			return nil, err
		}

		ctx.DeclaredParams.Add(innerCtx.DeclaredParams.Values()...)

		outerKeyArrow, ok := st.args[1].(*synast.ArrowFunction)
		if !ok {
			return nil, compileerr.Lowering("join", st.at, "outerKey must be an arrow function")
		}

		outerKey, err := lowerSelectorArrow(ctx, outerKeyArrow)
		if err != nil {
			return nil, err
		}

		innerKeyArrow, ok := st.args[2].(*synast.ArrowFunction)
		if !ok {
			return nil, compileerr.Lowering("join", st.at, "innerKey must be an arrow function")
		}

		restoreInnerRow := ctx.withRow(firstParam(innerKeyArrow))
		innerKey, err := ctx.Expr(innerKeyArrow.ReturnExpr())
		restoreInnerRow()

		if err != nil {
			return nil, err
		}

		resultArrow, ok := st.args[3].(*synast.ArrowFunction)
		if !ok || len(resultArrow.Params) != 2 {
			return nil, compileerr.Lowering("join", st.at, "resultSelector must be a two-parameter arrow function")
		}

		restoreJoin := ctx.withJoinParams(resultArrow.Params[0], resultArrow.Params[1], nil, nil)
		resultSelector, err := ctx.Expr(resultArrow.ReturnExpr())
		restoreJoin()

		if err != nil {
			return nil, err
		}

		ctx.Shape = qot.Empty()

		if obj, ok := resultSelector.(*exprir.Object); ok {
			for _, prop := range obj.Properties {
				if col, ok := prop.Value.(*exprir.Column); ok && col.Name == "*" {
					ctx.Shape.Set(prop.Name, qot.SourceReference{TableAlias: col.Source, ColumnName: "*"})

					continue
				}

				ctx.Shape.Set(prop.Name, qot.SourceReference{ColumnName: prop.Name})
			}
		}

		return &qot.Join{
			Src:            src,
			Inner:          inner,
			OuterKey:       outerKey,
			InnerKey:       innerKey,
			ResultSelector: resultSelector,
			JoinKind:       kind,
		}, nil
	}
}

func firstParam(arrow *synast.ArrowFunction) string {
	if len(arrow.Params) == 0 {
		return ""
	}

	return arrow.Params[0]
}

func handleSetOp(kind qot.Kind) handlerFunc {
	return func(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
		if len(st.args) != 1 {
			return nil, compileerr.Lowering("setop", st.at, "expects exactly one nested builder argument")
		}

		arrow, ok := st.args[0].(*synast.ArrowFunction)
		if !ok {
			return nil, compileerr.Lowering("setop", st.at, "expects a nested builder arrow")
		}

		second, secondCtx, err := Chain(arrow)
		if err != nil {
			return nil, err
		}

		ctx.DeclaredParams.Add(secondCtx.DeclaredParams.Values()...)

		switch kind {
		case qot.KindUnion:
			return &qot.Union{Src: src, Second: second}, nil
		case qot.KindIntersect:
			return &qot.Intersect{Src: src, Second: second}, nil
		default:
			return &qot.Except{Src: src, Second: second}, nil
		}
	}
}

func optionalPredicate(ctx *Context, args []synast.Node, method string, at synast.Pos) (exprir.Node, error) {
	if len(args) == 0 {
		return nil, nil
	}

	arrow, err := soleArrow(args, method, at)
	if err != nil {
		return nil, err
	}

	return lowerPredicateArrow(ctx, arrow)
}

func handleCount(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	pred, err := optionalPredicate(ctx, st.args, "count", st.at)
	if err != nil {
		return nil, err
	}

	return &qot.Count{Src: src, Predicate: pred}, nil
}

func handleSelectorAggregate(kind qot.Kind) handlerFunc {
	return func(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
		arrow, err := soleArrow(st.args, "aggregate", st.at)
		if err != nil {
			return nil, err
		}

		selector, err := lowerSelectorArrow(ctx, arrow)
		if err != nil {
			return nil, err
		}

		switch kind {
		case qot.KindSum:
			return &qot.Sum{Src: src, Selector: selector}, nil
		case qot.KindAverage:
			return &qot.Average{Src: src, Selector: selector}, nil
		case qot.KindMin:
			return &qot.Min{Src: src, Selector: selector}, nil
		default:
			return &qot.Max{Src: src, Selector: selector}, nil
		}
	}
}

func handleElement(kind qot.Kind, orDefault bool) handlerFunc {
	return func(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
		pred, err := optionalPredicate(ctx, st.args, "element", st.at)
		if err != nil {
			return nil, err
		}

		switch kind {
		case qot.KindFirst:
			return &qot.First{Src: src, Predicate: pred, OrDefault: orDefault}, nil
		case qot.KindSingle:
			return &qot.Single{Src: src, Predicate: pred, OrDefault: orDefault}, nil
		default:
			return &qot.Last{Src: src, Predicate: pred, OrDefault: orDefault}, nil
		}
	}
}

func handleAny(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	pred, err := optionalPredicate(ctx, st.args, "any", st.at)
	if err != nil {
		return nil, err
	}

	return &qot.Any{Src: src, Predicate: pred}, nil
}

func handleAll(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	arrow, err := soleArrow(st.args, "all", st.at)
	if err != nil {
		return nil, err
	}

	pred, err := lowerPredicateArrow(ctx, arrow)
	if err != nil {
		return nil, err
	}

	return &qot.All{Src: src, Predicate: pred}, nil
}

func handleContains(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	if len(st.args) != 1 {
		return nil, compileerr.Lowering("contains", st.at, "contains expects exactly one value argument")
	}

	value, err := ctx.Expr(st.args[0])
	if err != nil {
		return nil, err
	}

	return &qot.Contains{Src: src, Value: value}, nil
}

func handleToArray(_ *Context, src qot.Operation, _ step) (qot.Operation, error) {
	return &qot.ToArray{Src: src}, nil
}

func handleInsertInto(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	if src != nil {
		return nil, compileerr.Shape("insertInto", "insertInto must be the first call in a chain")
	}

	table, schema, err := tableArgs(st.args)
	if err != nil {
		return nil, err
	}

	return &qot.Insert{Table: table, Schema: schema}, nil
}

func handleValues(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	insert, ok := src.(*qot.Insert)
	if !ok {
		return nil, compileerr.Shape("values", "values() may only follow insertInto")
	}

	if len(st.args) != 1 {
		return nil, compileerr.Lowering("values", st.at, "values expects exactly one object-literal argument")
	}

	obj, ok := st.args[0].(*synast.ObjectExpression)
	if !ok {
		return nil, compileerr.Lowering("values", st.at, "values expects an object literal")
	}

	lowered, err := ctx.resolveObject(obj)
	if err != nil {
		return nil, err
	}

	values, ok := lowered.(*exprir.Object)
	if !ok || len(values.Properties) == 0 {
		return nil, compileerr.Shape("values", "insert requires at least one column")
	}

	insert.Values = values

	return insert, nil
}

func handleReturning(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	insert, ok := src.(*qot.Insert)
	if !ok {
		return nil, compileerr.Shape("returning", "returning() may only follow insertInto().values(...)")
	}

	arrow, err := soleArrow(st.args, "returning", st.at)
	if err != nil {
		return nil, err
	}

	if len(arrow.Params) == 1 {
		if ident, ok := arrow.ReturnExpr().(*synast.Identifier); ok && ident.Name == arrow.Params[0] {
			insert.Returning = &exprir.AllColumns{}

			return insert, nil
		}
	}

	selector, err := lowerSelectorArrow(ctx, arrow)
	if err != nil {
		return nil, err
	}

	insert.Returning = selector

	return insert, nil
}

func handleUpdate(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	if src != nil {
		return nil, compileerr.Shape("update", "update must be the first call in a chain")
	}

	table, schema, err := tableArgs(st.args)
	if err != nil {
		return nil, err
	}

	return &qot.Update{Table: table, Schema: schema}, nil
}

func handleSet(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	update, ok := src.(*qot.Update)
	if !ok {
		return nil, compileerr.Shape("set", "set() may only follow update")
	}

	arrow, err := soleArrow(st.args, "set", st.at)
	if err != nil {
		return nil, err
	}

	selector, err := lowerSelectorArrow(ctx, arrow)
	if err != nil {
		return nil, err
	}

	obj, ok := selector.(*exprir.Object)
	if !ok || len(obj.Properties) == 0 {
		return nil, compileerr.Shape("set", "update requires at least one assignment")
	}

	update.Assignments = obj

	return update, nil
}

func handleDelete(ctx *Context, src qot.Operation, st step) (qot.Operation, error) {
	if src != nil {
		return nil, compileerr.Shape("delete", "delete must be the first call in a chain")
	}

	table, schema, err := tableArgs(st.args)
	if err != nil {
		return nil, err
	}

	return &qot.Delete{Table: table, Schema: schema}, nil
}

func handleAllowFullUpdate(_ *Context, src qot.Operation, st step) (qot.Operation, error) {
	update, ok := src.(*qot.Update)
	if !ok {
		return nil, compileerr.Shape("allowFullTableUpdate", "allowFullTableUpdate() may only follow update")
	}

	update.AllowFullTableUpdate = true

	return update, nil
}

func handleAllowFullDelete(_ *Context, src qot.Operation, st step) (qot.Operation, error) {
	del, ok := src.(*qot.Delete)
	if !ok {
		return nil, compileerr.Shape("allowFullTableDelete", "allowFullTableDelete() may only follow delete")
	}

	del.AllowFullTableDelete = true

	return del, nil
}
