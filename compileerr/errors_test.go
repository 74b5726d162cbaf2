package compileerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linqsql/linqsql/compileerr"
	"github.com/linqsql/linqsql/internal/synast"
)

func TestParseErrorWrapsSentinelAndPosition(t *testing.T) {
	err := compileerr.Parse("from", synast.Pos{Line: 3, Col: 7}, "unexpected token %q", "}")

	assert.ErrorIs(t, err, compileerr.ErrParse)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "col 7")
	assert.Contains(t, err.Error(), `unexpected token "}"`)
}

func TestShapeErrorHasNoPosition(t *testing.T) {
	err := compileerr.Shape("thenBy", "thenBy requires a preceding orderBy")

	assert.ErrorIs(t, err, compileerr.ErrShape)
	assert.NotContains(t, err.Error(), "line")
}

func TestDialectErrorIncludesDialectName(t *testing.T) {
	err := compileerr.Dialect("join", "sqlite", "subquery joins are not supported")

	assert.ErrorIs(t, err, compileerr.ErrDialect)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestUnsafeErrorIsDistinctSentinel(t *testing.T) {
	err := compileerr.Unsafe("update")

	assert.ErrorIs(t, err, compileerr.ErrUnsafeStatement)
	assert.False(t, errors.Is(err, compileerr.ErrShape))
}

func TestConfigError(t *testing.T) {
	err := compileerr.Config("setParseCacheConfig", "capacity must be positive, got %d", -1)

	assert.ErrorIs(t, err, compileerr.ErrConfig)
	assert.Contains(t, err.Error(), "-1")
}
