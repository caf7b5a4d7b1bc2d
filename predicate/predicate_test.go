package predicate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func leafBool(v bool) Predicate {
	return Leaf(func(any) (bool, error) { return v, nil })
}

func TestLeafCallReturnsItsOwnValue(t *testing.T) {
	p := leafBool(true)
	ok, err := p.Call(nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAndFlattensChains(t *testing.T) {
	a, b, c := leafBool(true), leafBool(true), leafBool(true)
	combined := And(And(a, b), c)
	an, ok := combined.(*andNode)
	require.True(t, ok)
	require.Len(t, an.children, 3)
}

func TestOrFlattensChains(t *testing.T) {
	a, b, c := leafBool(false), leafBool(false), leafBool(true)
	combined := Or(Or(a, b), c)
	on, ok := combined.(*orNode)
	require.True(t, ok)
	require.Len(t, on.children, 3)

	v, err := combined.Call(nil)
	require.NoError(t, err)
	require.True(t, v)
}

func TestNotNeverUnwraps(t *testing.T) {
	p := leafBool(true)
	doubled := Not(Not(p))
	_, isNot := doubled.(*notNode)
	require.True(t, isNot)
	inner, ok := doubled.(*notNode)
	require.True(t, ok)
	_, innerIsNot := inner.child.(*notNode)
	require.True(t, innerIsNot)

	v, err := doubled.Call(nil)
	require.NoError(t, err)
	require.True(t, v)
}

func TestAllOfSingletonPassesThrough(t *testing.T) {
	p := leafBool(true)
	combined, err := AllOf([]Predicate{p})
	require.NoError(t, err)
	require.Equal(t, p, combined)
}

func TestAllOfEmptyErrors(t *testing.T) {
	_, err := AllOf(nil)
	require.Error(t, err)
}

func TestAnyOfEmptyErrors(t *testing.T) {
	_, err := AnyOf(nil)
	require.Error(t, err)
}

func TestShortCircuitAndStopsOnFalse(t *testing.T) {
	called := false
	never := Leaf(func(any) (bool, error) {
		called = true
		return true, nil
	})
	combined := And(leafBool(false), never)
	v, err := combined.Call(nil, WithShortCircuit(true))
	require.NoError(t, err)
	require.False(t, v)
	require.False(t, called)
}

func TestNoShortCircuitEvaluatesAllChildren(t *testing.T) {
	called := false
	always := Leaf(func(any) (bool, error) {
		called = true
		return true, nil
	})
	combined := And(leafBool(false), always)
	_, err := combined.Call(nil, WithShortCircuit(false))
	require.NoError(t, err)
	require.True(t, called)
}

func TestFailSkipSubstitutesFallback(t *testing.T) {
	sentinel := errors.New("boom")
	flaky := Leaf(func(any) (bool, error) { return false, sentinel })
	tree := And(leafBool(true), flaky)

	v, err := tree.Call(nil, WithFailSkip(sentinel))
	require.NoError(t, err)
	require.True(t, v) // fallback for an And child is true
}

func TestFailSkipFlipsFallbackUnderNot(t *testing.T) {
	sentinel := errors.New("boom")
	flaky := Leaf(func(any) (bool, error) { return false, sentinel })
	tree := Not(flaky)

	// Root fallback is false; Not must flip it to true before compiling its
	// child, so the leaf's fail_skip substitution is true, and Not(true) is
	// false.
	v, err := tree.Call(nil, WithFailSkip(sentinel))
	require.NoError(t, err)
	require.False(t, v)
}

func TestFailSkipDoesNotMatchOtherErrors(t *testing.T) {
	sentinel := errors.New("boom")
	other := errors.New("other")
	flaky := Leaf(func(any) (bool, error) { return false, sentinel })
	tree := And(leafBool(true), flaky)

	_, err := tree.Call(nil, WithFailSkip(other))
	require.ErrorIs(t, err, sentinel)
}

func TestEqualComparesStructureNotMetadata(t *testing.T) {
	fn := func(any) (bool, error) { return true, nil }
	a := Leaf(fn, WithDesc("a"))
	b := Leaf(fn, WithDesc("b"))
	require.True(t, a.Equal(b))

	c := leafBool(true)
	require.False(t, a.Equal(c))
}

func TestCallTraceRecordsChildren(t *testing.T) {
	tree := And(leafBool(true), leafBool(false))
	tr, err := tree.CallTrace(nil)
	require.NoError(t, err)
	require.False(t, tr.Success)
	require.Len(t, tr.Children, 2)
}

func TestCompiledEvaluatorIsCachedPerMode(t *testing.T) {
	p := leafBool(true)
	_, err := p.Call(nil)
	require.NoError(t, err)
	_, loaded := p.cache().Load(keyFor(newCallConfig()))
	require.True(t, loaded)
}
