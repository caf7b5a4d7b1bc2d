package jsrule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJsRuleEvaluatesAgainstContext(t *testing.T) {
	p := Producer("temp_over_50")
	pred, err := p.Build(Params{
		Script:   "function check(ctx) { return ctx.temperature > 50; }",
		FuncName: "check",
	})
	require.NoError(t, err)

	ok, err := pred.Call(map[string]any{"temperature": 80})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = pred.Call(map[string]any{"temperature": 10})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJsRuleRejectsMissingFunction(t *testing.T) {
	p := Producer("bad")
	_, err := p.Build(Params{Script: "var x = 1;", FuncName: "missing"})
	require.Error(t, err)
}

func TestJsRuleRejectsNonBooleanReturn(t *testing.T) {
	p := Producer("bad")
	pred, err := p.Build(Params{
		Script:   "function check(ctx) { return 42; }",
		FuncName: "check",
	})
	require.NoError(t, err)
	_, err = pred.Call(map[string]any{})
	require.Error(t, err)
}
