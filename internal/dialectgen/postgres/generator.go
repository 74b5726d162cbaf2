// Package postgres implements the PostgreSQL-style SQL generator dialect:
// `$(name)` named parameters, double-quoted identifiers (borrowed from
// uptrace/bun's pgdialect so quoting stays consistent with the driver this
// SQL is ultimately handed to), and `LIMIT x OFFSET y` pagination.
package postgres

import (
	"strings"

	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/schema"

	"github.com/linqsql/linqsql/internal/dialectgen"
)

type dialectImpl struct {
	bun schema.Dialect
}

// New returns the PostgreSQL-style Dialect.
func New() dialectgen.Dialect {
	return &dialectImpl{bun: pgdialect.New()}
}

func (d *dialectImpl) Name() string { return "postgres" }

func (d *dialectImpl) QuoteIdent(name string) string {
	quote := string(rune(d.bun.IdentQuote()))

	return quote + strings.ReplaceAll(name, quote, quote+quote) + quote
}

func (d *dialectImpl) QuoteAlias(alias string) string {
	return d.QuoteIdent(alias)
}

func (d *dialectImpl) FormatParam(name string) string {
	return "$(" + name + ")"
}

func (d *dialectImpl) Paginate(limit, offset string) string {
	var b strings.Builder

	if limit != "" {
		b.WriteString("LIMIT ")
		b.WriteString(limit)
	}

	if offset != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}

		b.WriteString("OFFSET ")
		b.WriteString(offset)
	}

	return b.String()
}

func (d *dialectImpl) Concat(parts []string) string {
	return strings.Join(parts, " || ")
}

func (d *dialectImpl) Substring(expr, from, length string) string {
	return "SUBSTRING(" + expr + " FROM " + from + " FOR " + length + ")"
}
