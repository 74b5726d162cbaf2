// Package sqlite implements the SQLite-style SQL generator dialect:
// `:name` named parameters, identifier quoting delegated to uptrace/bun's
// sqlitedialect, and `LIMIT x OFFSET y` pagination (SQLite shares
// PostgreSQL's pagination syntax, unlike its parameter and function-name
// conventions).
package sqlite

import (
	"strings"

	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/linqsql/linqsql/internal/dialectgen"
)

type dialectImpl struct {
	bun schema.Dialect
}

// New returns the SQLite-style Dialect.
func New() dialectgen.Dialect {
	return &dialectImpl{bun: sqlitedialect.New()}
}

func (d *dialectImpl) Name() string { return "sqlite" }

func (d *dialectImpl) QuoteIdent(name string) string {
	quote := string(rune(d.bun.IdentQuote()))

	return quote + strings.ReplaceAll(name, quote, quote+quote) + quote
}

func (d *dialectImpl) QuoteAlias(alias string) string {
	return alias
}

func (d *dialectImpl) FormatParam(name string) string {
	return ":" + name
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
	return "SUBSTR(" + expr + ", " + from + ", " + length + ")"
}
