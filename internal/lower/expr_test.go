package lower_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqsql/linqsql/internal/exprir"
	"github.com/linqsql/linqsql/internal/lower"
	"github.com/linqsql/linqsql/internal/synast"
)

func TestNumericLiteralAutoParamCarriesExactDecimal(t *testing.T) {
	c := lower.NewContext()

	node, err := c.Expr(&synast.NumericLiteral{Value: 19.99})
	require.NoError(t, err)

	param, ok := node.(*exprir.AutoParam)
	require.True(t, ok)

	value, ok := param.Value.(decimal.Decimal)
	require.True(t, ok, "expected AutoParam.Value to carry a decimal.Decimal, got %T", param.Value)
	assert.True(t, decimal.NewFromFloat(19.99).Equal(value))
}

func TestTemplateLiteralStaticPartsAreAutoParameterised(t *testing.T) {
	c := lower.NewContext()

	node, err := c.Expr(&synast.TemplateLiteral{
		Quasis:      []string{"prefix-", "-suffix"},
		Expressions: []synast.Node{&synast.StringLiteral{Value: "mid"}},
	})
	require.NoError(t, err)

	binary, ok := node.(*exprir.Binary)
	require.True(t, ok)
	assert.Equal(t, exprir.OpAdd, binary.Operator)

	var leaves []exprir.Node
	collectAddLeaves(binary, &leaves)

	for _, leaf := range leaves {
		_, isConst := leaf.(*exprir.Const)
		assert.Falsef(t, isConst, "template literal quasi lowered to an inline Const instead of an AutoParam: %#v", leaf)
	}
}

func collectAddLeaves(node exprir.Node, out *[]exprir.Node) {
	binary, ok := node.(*exprir.Binary)
	if !ok || binary.Operator != exprir.OpAdd {
		*out = append(*out, node)

		return
	}

	collectAddLeaves(binary.Left, out)
	collectAddLeaves(binary.Right, out)
}
