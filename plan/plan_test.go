package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/qot"
	"github.com/linqsql/linqsql/plan"
	"github.com/linqsql/linqsql/set"
)

func TestNewMintsUniqueIDs(t *testing.T) {
	op := &qot.From{Table: "users"}

	h1, err := plan.New(op, nil, set.New[string]())
	require.NoError(t, err)

	h2, err := plan.New(op, nil, set.New[string]())
	require.NoError(t, err)

	assert.NotEmpty(t, h1.ID)
	assert.NotEqual(t, h1.ID, h2.ID)
}

func TestFinalizeMergesAutoAndUserParams(t *testing.T) {
	h, err := plan.New(
		&qot.From{Table: "users"},
		map[string]any{"__p1": 18},
		set.New("minAge"),
	)
	require.NoError(t, err)

	op, merged, err := h.Finalize(map[string]any{"minAge": 21})
	require.NoError(t, err)
	assert.Same(t, h.Operation, op)
	assert.Equal(t, 18, merged["__p1"])
	assert.Equal(t, 21, merged["minAge"])
}

func TestFinalizeRejectsMissingDeclaredParam(t *testing.T) {
	h, err := plan.New(&qot.From{Table: "users"}, nil, set.New("minAge"))
	require.NoError(t, err)

	_, _, err = h.Finalize(map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, compileerr.ErrConfig)
}

func TestFinalizeRejectsUndeclaredParam(t *testing.T) {
	h, err := plan.New(&qot.From{Table: "users"}, nil, set.New[string]())
	require.NoError(t, err)

	_, _, err = h.Finalize(map[string]any{"surprise": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, compileerr.ErrConfig)
}

func TestHandleStringIncludesCounts(t *testing.T) {
	h, err := plan.New(
		&qot.From{Table: "users"},
		map[string]any{"__p1": 1},
		set.New("a", "b"),
	)
	require.NoError(t, err)

	s := h.String()
	assert.Contains(t, s, h.ID)
	assert.Contains(t, s, "autoParams=1")
	assert.Contains(t, s, "declaredParams=2")
}
