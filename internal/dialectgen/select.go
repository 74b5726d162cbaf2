package dialectgen

import (
	"strings"

	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/exprir"
	"github.com/linqsql/linqsql/internal/qot"
)

// selectState accumulates the clauses of one SELECT statement as buildState
// walks the QOT bottom-up, per §4.G's algorithm.
type selectState struct {
	from       string
	joins      []string
	whereParts []string
	groupBy    string
	hasGroupBy bool
	groupKey   exprir.Node

	columns  string
	distinct bool

	orderState OrderState
	orderCols  []OrderColumn

	limit  string
	offset string
}

// buildState walks op's full chain, translating every non-terminal Query
// Operation into its clause contribution.
func buildState(c *SqlContext, op qot.Operation, warn Warner) (*selectState, error) {
	if op == nil {
		return nil, compileerr.Shape("generate", "query has no from")
	}

	if op.Source() != nil {
		parentState, err := buildState(c, op.Source(), warn)
		if err != nil {
			return nil, err
		}

		return applyOp(c, parentState, op, warn)
	}

	from, ok := op.(*qot.From)
	if !ok {
		return nil, compileerr.Shape("generate", "expected from at the deepest source, found %T", op)
	}

	return baseState(c, from), nil
}

func baseState(c *SqlContext, from *qot.From) *selectState {
	table := qualifiedTable(c, from.Schema, from.Table)

	st := &selectState{columns: "*"}

	if c.HasJoins() {
		alias := c.NextAlias()
		c.setSideAlias("left", alias)
		st.from = table + " AS " + c.Dialect.QuoteAlias(alias)
	} else {
		st.from = table
	}

	return st
}

func qualifiedTable(c *SqlContext, schema, table string) string {
	if schema == "" {
		return c.Dialect.QuoteIdent(table)
	}

	return c.Dialect.QuoteIdent(schema) + "." + c.Dialect.QuoteIdent(table)
}

func applyOp(c *SqlContext, st *selectState, op qot.Operation, warn Warner) (*selectState, error) {
	switch o := op.(type) {
	case *qot.Where:
		pred, err := RenderExpr(c, o.Predicate)
		if err != nil {
			return nil, err
		}

		st.whereParts = append(st.whereParts, pred)

		return st, nil

	case *qot.Select:
		cols, err := renderSelector(c, st, o.Selector, warn)
		if err != nil {
			return nil, err
		}

		st.columns = cols

		return st, nil

	case *qot.Distinct:
		st.distinct = true

		return st, nil

	case *qot.OrderBy:
		expr, err := RenderExpr(c, o.KeySelector)
		if err != nil {
			return nil, err
		}

		st.orderCols = []OrderColumn{{Expr: expr, Descending: o.Descending}}
		st.orderState = OrderSingle

		return st, nil

	case *qot.ThenBy:
		if st.orderState == OrderNone {
			return nil, compileerr.Shape("thenBy", "thenBy requires a preceding orderBy")
		}

		expr, err := RenderExpr(c, o.KeySelector)
		if err != nil {
			return nil, err
		}

		st.orderCols = append(st.orderCols, OrderColumn{Expr: expr, Descending: o.Descending})
		st.orderState = OrderMulti

		return st, nil

	case *qot.Reverse:
		if st.orderState == OrderNone {
			return nil, compileerr.Shape("reverse", "reverse requires a preceding orderBy")
		}

		for i := range st.orderCols {
			st.orderCols[i].Descending = !st.orderCols[i].Descending
		}

		return st, nil

	case *qot.Take:
		limit, err := RenderExpr(c, o.Count)
		if err != nil {
			return nil, err
		}

		st.limit = limit

		return st, nil

	case *qot.Skip:
		offset, err := RenderExpr(c, o.Count)
		if err != nil {
			return nil, err
		}

		st.offset = offset

		return st, nil

	case *qot.GroupBy:
		expr, err := RenderExpr(c, o.KeySelector)
		if err != nil {
			return nil, err
		}

		st.groupBy = expr
		st.hasGroupBy = true
		st.groupKey = o.KeySelector

		return st, nil

	case *qot.Join:
		return applyJoin(c, st, o, warn)

	default:
		return nil, compileerr.Shape("generate", "unexpected non-terminal operation %T", op)
	}
}

func applyJoin(c *SqlContext, st *selectState, o *qot.Join, warn Warner) (*selectState, error) {
	c.markJoins()

	if _, ok := c.resolveSideAlias("left"); !ok {
		// The base state was built before hasJoins was known; retrofit the
		// alias qualifier now.
		alias := c.NextAlias()
		c.setSideAlias("left", alias)
		st.from = st.from + " AS " + c.Dialect.QuoteAlias(alias)
	}

	innerFrom, ok := o.Inner.(*qot.From)
	if !ok {
		return nil, compileerr.Dialect("join", c.Dialect.Name(), "joins against a pre-filtered subquery are not supported")
	}

	alias := c.NextAlias()
	c.setSideAlias("right", alias)

	outerKey, err := RenderExpr(c, o.OuterKey)
	if err != nil {
		return nil, err
	}

	innerKey, err := RenderExpr(c, o.InnerKey)
	if err != nil {
		return nil, err
	}

	keyword := "INNER JOIN"
	if o.JoinKind == qot.JoinLeft {
		keyword = "LEFT JOIN"
	}

	st.joins = append(st.joins,
		keyword+" "+qualifiedTable(c, innerFrom.Schema, innerFrom.Table)+" AS "+c.Dialect.QuoteAlias(alias)+" ON "+outerKey+" = "+innerKey)

	cols, err := renderSelector(c, st, o.ResultSelector, warn)
	if err != nil {
		return nil, err
	}

	st.columns = cols

	return st, nil
}

func renderSelector(c *SqlContext, st *selectState, selector exprir.Node, warn Warner) (string, error) {
	switch sel := selector.(type) {
	case *exprir.AllColumns:
		return "*", nil

	case *exprir.Object:
		return renderProjection(c, st, sel, warn)

	default:
		rendered, err := RenderExpr(c, sel)
		if err != nil {
			return "", err
		}

		return rendered, nil
	}
}

func renderProjection(c *SqlContext, st *selectState, obj *exprir.Object, warn Warner) (string, error) {
	parts := make([]string, 0, len(obj.Properties))

	for _, prop := range obj.Properties {
		if st.hasGroupBy {
			if isGroupKeyRef(prop.Value, st.groupKey) {
				rendered, err := RenderExpr(c, st.groupKey)
				if err != nil {
					return "", err
				}

				parts = append(parts, rendered+" AS "+c.Dialect.QuoteIdent(prop.Name))

				continue
			}

			if agg, ok := prop.Value.(*exprir.Aggregate); ok {
				rendered, err := renderAggregateExpr(c, agg)
				if err != nil {
					return "", err
				}

				parts = append(parts, rendered+" AS "+c.Dialect.QuoteIdent(prop.Name))

				continue
			}

			return "", compileerr.Shape("select", "select after groupBy may only project g.key or an aggregate helper")
		}

		rendered, err := RenderExpr(c, prop.Value)
		if err != nil {
			return "", err
		}

		parts = append(parts, rendered+" AS "+c.Dialect.QuoteIdent(prop.Name))
	}

	return strings.Join(parts, ", "), nil
}

// isGroupKeyRef reports whether value is exactly the lowered groupBy key
// expression, i.e. a bare `g.key` reference in the post-groupBy projection.
func isGroupKeyRef(value, groupKey exprir.Node) bool {
	vc, ok1 := value.(*exprir.Column)
	gc, ok2 := groupKey.(*exprir.Column)

	return ok1 && ok2 && vc.Name == gc.Name && vc.Source == gc.Source
}

func renderAggregateExpr(c *SqlContext, agg *exprir.Aggregate) (string, error) {
	if agg.Func == exprir.AggCount && agg.Selector == nil {
		return "COUNT(*)", nil
	}

	inner, err := RenderExpr(c, agg.Selector)
	if err != nil {
		return "", err
	}

	name := map[exprir.AggregateFunc]string{
		exprir.AggCount: "COUNT",
		exprir.AggSum:   "SUM",
		exprir.AggAvg:   "AVG",
		exprir.AggMin:   "MIN",
		exprir.AggMax:   "MAX",
	}[agg.Func]

	return name + "(" + inner + ")", nil
}

// render turns an accumulated selectState into a complete SELECT statement.
func (st *selectState) render(c *SqlContext) string {
	var b strings.Builder

	b.WriteString("SELECT ")

	if st.distinct {
		b.WriteString("DISTINCT ")
	}

	b.WriteString(st.columns)
	b.WriteString(" FROM ")
	b.WriteString(st.from)

	for _, j := range st.joins {
		b.WriteString(" ")
		b.WriteString(j)
	}

	if len(st.whereParts) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(st.whereParts, " AND "))
	}

	if st.hasGroupBy {
		b.WriteString(" GROUP BY ")
		b.WriteString(st.groupBy)
	}

	if st.orderState != OrderNone {
		b.WriteString(" ORDER BY ")

		cols := make([]string, 0, len(st.orderCols))

		for _, oc := range st.orderCols {
			dir := "ASC"
			if oc.Descending {
				dir = "DESC"
			}

			cols = append(cols, oc.Expr+" "+dir)
		}

		b.WriteString(strings.Join(cols, ", "))
	}

	if st.limit != "" || st.offset != "" {
		b.WriteString(" ")
		b.WriteString(c.Dialect.Paginate(st.limit, st.offset))
	}

	return b.String()
}
