package dialectgen

import (
	"strings"

	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/exprir"
	"github.com/linqsql/linqsql/internal/qot"
)

func generateInsert(d Dialect, o *qot.Insert) (string, error) {
	if o.Values == nil || len(o.Values.Properties) == 0 {
		return "", compileerr.Shape("insert", "insert requires at least one column in values()")
	}

	c := NewContext(d)

	columns := make([]string, 0, len(o.Values.Properties))
	placeholders := make([]string, 0, len(o.Values.Properties))

	for _, prop := range o.Values.Properties {
		columns = append(columns, d.QuoteIdent(prop.Name))

		rendered, err := RenderExpr(c, prop.Value)
		if err != nil {
			return "", err
		}

		placeholders = append(placeholders, rendered)
	}

	var b strings.Builder

	b.WriteString("INSERT INTO ")
	b.WriteString(qualifiedTable(c, o.Schema, o.Table))
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.Join(placeholders, ", "))
	b.WriteString(")")

	if o.Returning != nil {
		returning, err := renderReturning(c, o.Returning)
		if err != nil {
			return "", err
		}

		b.WriteString(" RETURNING ")
		b.WriteString(returning)
	}

	return b.String(), nil
}

func generateUpdate(d Dialect, o *qot.Update, warn Warner) (string, error) {
	if o.Assignments == nil || len(o.Assignments.Properties) == 0 {
		return "", compileerr.Shape("update", "update requires at least one assignment in set()")
	}

	if o.Predicate == nil && !o.AllowFullTableUpdate {
		return "", compileerr.Unsafe("update")
	}

	c := NewContext(d)

	assignments := make([]string, 0, len(o.Assignments.Properties))

	for _, prop := range o.Assignments.Properties {
		rendered, err := RenderExpr(c, prop.Value)
		if err != nil {
			return "", err
		}

		assignments = append(assignments, d.QuoteIdent(prop.Name)+" = "+rendered)
	}

	var b strings.Builder

	b.WriteString("UPDATE ")
	b.WriteString(qualifiedTable(c, o.Schema, o.Table))
	b.WriteString(" SET ")
	b.WriteString(strings.Join(assignments, ", "))

	if o.Predicate != nil {
		pred, err := RenderExpr(c, o.Predicate)
		if err != nil {
			return "", err
		}

		b.WriteString(" WHERE ")
		b.WriteString(pred)
	}

	return b.String(), nil
}

func generateDelete(d Dialect, o *qot.Delete, warn Warner) (string, error) {
	if o.Predicate == nil && !o.AllowFullTableDelete {
		return "", compileerr.Unsafe("delete")
	}

	c := NewContext(d)

	var b strings.Builder

	b.WriteString("DELETE FROM ")
	b.WriteString(qualifiedTable(c, o.Schema, o.Table))

	if o.Predicate != nil {
		pred, err := RenderExpr(c, o.Predicate)
		if err != nil {
			return "", err
		}

		b.WriteString(" WHERE ")
		b.WriteString(pred)
	}

	return b.String(), nil
}

func renderReturning(c *SqlContext, node exprir.Node) (string, error) {
	if _, ok := node.(*exprir.AllColumns); ok {
		return "*", nil
	}

	return RenderExpr(c, node)
}
