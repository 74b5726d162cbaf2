package dialectgen

import (
	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/exprir"
	"github.com/linqsql/linqsql/internal/qot"
)

// Generate walks op's full Query Operation Tree and renders dialect-specific
// SQL, per §4.G. warn is invoked for non-fatal fallbacks; pass a no-op for
// silent generation.
func Generate(d Dialect, op qot.Operation, warn Warner) (string, error) {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	switch o := op.(type) {
	case *qot.Insert:
		return generateInsert(d, o)
	case *qot.Update:
		return generateUpdate(d, o, warn)
	case *qot.Delete:
		return generateDelete(d, o, warn)
	case *qot.Union:
		return generateSetOp(d, "UNION", o.Src, o.Second, warn)
	case *qot.Intersect:
		return generateSetOp(d, "INTERSECT", o.Src, o.Second, warn)
	case *qot.Except:
		return generateSetOp(d, "EXCEPT", o.Src, o.Second, warn)
	case *qot.Count:
		return generateCount(d, o, warn)
	case *qot.Sum:
		return generateScalarAggregate(d, o.Src, exprir.AggSum, o.Selector, warn)
	case *qot.Average:
		return generateScalarAggregate(d, o.Src, exprir.AggAvg, o.Selector, warn)
	case *qot.Min:
		return generateScalarAggregate(d, o.Src, exprir.AggMin, o.Selector, warn)
	case *qot.Max:
		return generateScalarAggregate(d, o.Src, exprir.AggMax, o.Selector, warn)
	case *qot.First:
		return generateElement(d, o.Src, o.Predicate, false, "1", warn)
	case *qot.Single:
		// LIMIT 2, not 1: the driver needs a second row to surface as a
		// "more than one match" error rather than silently picking one.
		return generateElement(d, o.Src, o.Predicate, false, "2", warn)
	case *qot.Last:
		return generateElement(d, o.Src, o.Predicate, true, "1", warn)
	case *qot.Any:
		return generateAny(d, o.Src, o.Predicate, warn)
	case *qot.All:
		return generateAll(d, o.Src, o.Predicate, warn)
	case *qot.Contains:
		return generateContains(d, o.Src, o.Value, warn)
	case *qot.ToArray:
		c := NewContext(d)
		markHasJoins(c, op)

		st, err := buildState(c, o.Src, warn)
		if err != nil {
			return "", err
		}

		return st.render(c), nil

	default:
		c := NewContext(d)
		markHasJoins(c, op)

		st, err := buildState(c, op, warn)
		if err != nil {
			return "", err
		}

		return st.render(c), nil
	}
}

// markHasJoins scans op's chain once up front so From and Join know whether
// to qualify aliases at all (§4.G: single-table queries stay unqualified).
func markHasJoins(c *SqlContext, op qot.Operation) {
	for cur := op; cur != nil; cur = cur.Source() {
		if _, ok := cur.(*qot.Join); ok {
			c.markJoins()

			return
		}
	}
}

func generateSetOp(d Dialect, keyword string, left, right qot.Operation, warn Warner) (string, error) {
	leftSQL, err := Generate(d, left, warn)
	if err != nil {
		return "", err
	}

	rightSQL, err := Generate(d, right, warn)
	if err != nil {
		return "", err
	}

	return "(" + leftSQL + ") " + keyword + " (" + rightSQL + ")", nil
}

func generateCount(d Dialect, o *qot.Count, warn Warner) (string, error) {
	c := NewContext(d)
	markHasJoins(c, o.Src)

	st, err := buildState(c, o.Src, warn)
	if err != nil {
		return "", err
	}

	if o.Predicate != nil {
		pred, err := RenderExpr(c, o.Predicate)
		if err != nil {
			return "", err
		}

		st.whereParts = append(st.whereParts, pred)
	}

	st.columns = "COUNT(*)"

	return st.render(c), nil
}

func generateScalarAggregate(d Dialect, src qot.Operation, fn exprir.AggregateFunc, selector exprir.Node, warn Warner) (string, error) {
	c := NewContext(d)
	markHasJoins(c, src)

	st, err := buildState(c, src, warn)
	if err != nil {
		return "", err
	}

	rendered, err := renderAggregateExpr(c, &exprir.Aggregate{Func: fn, Selector: selector})
	if err != nil {
		return "", err
	}

	st.columns = rendered

	return st.render(c), nil
}

func generateElement(d Dialect, src qot.Operation, predicate exprir.Node, reverseOrder bool, limit string, warn Warner) (string, error) {
	c := NewContext(d)
	markHasJoins(c, src)

	st, err := buildState(c, src, warn)
	if err != nil {
		return "", err
	}

	if predicate != nil {
		pred, err := RenderExpr(c, predicate)
		if err != nil {
			return "", err
		}

		st.whereParts = append(st.whereParts, pred)
	}

	if reverseOrder {
		if st.orderState == OrderNone {
			return "", compileerr.Shape("last", "last requires a preceding orderBy to define reverse order")
		}

		for i := range st.orderCols {
			st.orderCols[i].Descending = !st.orderCols[i].Descending
		}
	}

	st.limit = limit

	return st.render(c), nil
}

func generateAny(d Dialect, src qot.Operation, predicate exprir.Node, warn Warner) (string, error) {
	c := NewContext(d)
	markHasJoins(c, src)

	st, err := buildState(c, src, warn)
	if err != nil {
		return "", err
	}

	if predicate != nil {
		pred, err := RenderExpr(c, predicate)
		if err != nil {
			return "", err
		}

		st.whereParts = append(st.whereParts, pred)
	}

	st.columns = "1"

	return "EXISTS(" + st.render(c) + ")", nil
}

func generateAll(d Dialect, src qot.Operation, predicate exprir.Node, warn Warner) (string, error) {
	c := NewContext(d)
	markHasJoins(c, src)

	st, err := buildState(c, src, warn)
	if err != nil {
		return "", err
	}

	pred, err := RenderExpr(c, predicate)
	if err != nil {
		return "", err
	}

	st.whereParts = append(st.whereParts, "NOT ("+pred+")")
	st.columns = "1"

	return "NOT EXISTS(" + st.render(c) + ")", nil
}

func generateContains(d Dialect, src qot.Operation, value exprir.Node, warn Warner) (string, error) {
	c := NewContext(d)
	markHasJoins(c, src)

	st, err := buildState(c, src, warn)
	if err != nil {
		return "", err
	}

	valueSQL, err := RenderExpr(c, value)
	if err != nil {
		return "", err
	}

	st.whereParts = append(st.whereParts, st.columns+" = "+valueSQL)
	st.columns = "1"

	return "EXISTS(" + st.render(c) + ")", nil
}
