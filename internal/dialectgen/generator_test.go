package dialectgen_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/dialectgen"
	"github.com/linqsql/linqsql/internal/dialectgen/postgres"
	"github.com/linqsql/linqsql/internal/dialectgen/sqlite"
	"github.com/linqsql/linqsql/internal/exprir"
	"github.com/linqsql/linqsql/internal/qot"
)

func noWarn(string, ...any) {}

func numberConst(v float64) *exprir.Const {
	return &exprir.Const{ValueType: exprir.ValueNumber, Number: decimal.NewFromFloat(v)}
}

func col(name string) *exprir.Column {
	return &exprir.Column{Name: name}
}

func TestGenerateSelectPlainFrom(t *testing.T) {
	op := &qot.From{Table: "users"}

	pgSQL, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users"`, pgSQL)

	sqliteSQL, err := dialectgen.Generate(sqlite.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users"`, sqliteSQL)
}

func TestGenerateSelectWhereAndOrder(t *testing.T) {
	op := &qot.OrderBy{
		Src: &qot.Where{
			Src: &qot.From{Table: "users"},
			Predicate: &exprir.Comparison{
				Operator: exprir.OpGtEq,
				Left:     col("age"),
				Right:    &exprir.AutoParam{Name: "__p1", Value: 18},
			},
		},
		KeySelector: col("name"),
		Descending:  true,
	}

	sql, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE "age" >= $(__p1) ORDER BY "name" DESC`, sql)

	sql, err = dialectgen.Generate(sqlite.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE "age" >= :__p1 ORDER BY "name" DESC`, sql)
}

func TestGenerateTakeSkipPagination(t *testing.T) {
	op := &qot.Skip{
		Src: &qot.Take{
			Src:   &qot.From{Table: "users"},
			Count: numberConst(10),
		},
		Count: numberConst(5),
	}

	sql, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" LIMIT 10 OFFSET 5`, sql)
}

func TestGenerateSingleEmitsLimitTwo(t *testing.T) {
	op := &qot.Single{
		Src: &qot.From{Table: "users"},
		Predicate: &exprir.Comparison{
			Operator: exprir.OpEq,
			Left:     col("id"),
			Right:    &exprir.AutoParam{Name: "__p1", Value: 1},
		},
	}

	sql, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE "id" = $(__p1) LIMIT 2`, sql)
}

func TestGenerateSingleOrDefaultSameShapeAsSingle(t *testing.T) {
	op := &qot.Single{
		Src:       &qot.From{Table: "users"},
		OrDefault: true,
	}

	sql, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" LIMIT 2`, sql)
}

func TestGenerateFirstStillEmitsLimitOne(t *testing.T) {
	op := &qot.First{Src: &qot.From{Table: "users"}}

	sql, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" LIMIT 1`, sql)
}

func TestGenerateJoinQualifiesAliasesOnPostgres(t *testing.T) {
	op := &qot.Join{
		Src:      &qot.From{Table: "orders"},
		Inner:    &qot.From{Table: "users"},
		OuterKey: &exprir.Column{Name: "userId", Source: "left"},
		InnerKey: &exprir.Column{Name: "id", Source: "right"},
		ResultSelector: &exprir.Object{Properties: []exprir.ObjectProperty{
			{Name: "orderId", Value: &exprir.Column{Name: "id", Source: "left"}},
			{Name: "userName", Value: &exprir.Column{Name: "name", Source: "right"}},
		}},
		JoinKind: qot.JoinInner,
	}

	sql, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "t0"."id" AS "orderId", "t1"."name" AS "userName" FROM "orders" AS "t0" INNER JOIN "users" AS "t1" ON "t0"."userId" = "t1"."id"`,
		sql)
}

func TestGenerateJoinAliasesBareOnSQLite(t *testing.T) {
	op := &qot.Join{
		Src:      &qot.From{Table: "orders"},
		Inner:    &qot.From{Table: "users"},
		OuterKey: &exprir.Column{Name: "userId", Source: "left"},
		InnerKey: &exprir.Column{Name: "id", Source: "right"},
		ResultSelector: &exprir.Object{Properties: []exprir.ObjectProperty{
			{Name: "id", Value: &exprir.Column{Name: "id", Source: "left"}},
		}},
		JoinKind: qot.JoinInner,
	}

	sql, err := dialectgen.Generate(sqlite.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT t0."id" AS "id" FROM "orders" AS t0 INNER JOIN "users" AS t1 ON t0."userId" = t1."id"`,
		sql)
}

func TestGenerateCount(t *testing.T) {
	op := &qot.Count{Src: &qot.From{Table: "users"}}

	sql, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "users"`, sql)
}

func TestGenerateInsert(t *testing.T) {
	op := &qot.Insert{
		Table: "users",
		Values: &exprir.Object{Properties: []exprir.ObjectProperty{
			{Name: "name", Value: &exprir.AutoParam{Name: "__p1", Value: "Ada"}},
			{Name: "age", Value: &exprir.AutoParam{Name: "__p2", Value: 30}},
		}},
		Returning: &exprir.AllColumns{},
	}

	sql, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name", "age") VALUES ($(__p1), $(__p2)) RETURNING *`, sql)

	sql, err = dialectgen.Generate(sqlite.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name", "age") VALUES (:__p1, :__p2) RETURNING *`, sql)
}

func TestGenerateUpdateRequiresPredicateOrFlag(t *testing.T) {
	op := &qot.Update{
		Table: "users",
		Assignments: &exprir.Object{Properties: []exprir.ObjectProperty{
			{Name: "age", Value: &exprir.AutoParam{Name: "__p1", Value: 31}},
		}},
	}

	_, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.Error(t, err)
	assert.ErrorIs(t, err, compileerr.ErrUnsafeStatement)

	op.AllowFullTableUpdate = true

	sql, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "age" = $(__p1)`, sql)
}

func TestGenerateDeleteRequiresPredicateOrFlag(t *testing.T) {
	op := &qot.Delete{Table: "users"}

	_, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.Error(t, err)
	assert.ErrorIs(t, err, compileerr.ErrUnsafeStatement)

	op.Predicate = &exprir.Comparison{
		Operator: exprir.OpEq,
		Left:     col("id"),
		Right:    &exprir.AutoParam{Name: "__p1", Value: 1},
	}

	sql, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users" WHERE "id" = $(__p1)`, sql)
}

func TestGenerateUpdateWithoutAssignmentsIsShapeError(t *testing.T) {
	op := &qot.Update{Table: "users", AllowFullTableUpdate: true}

	_, err := dialectgen.Generate(postgres.New(), op, noWarn)
	require.Error(t, err)
	assert.ErrorIs(t, err, compileerr.ErrShape)
}
