package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bittoy/predylogic/predicate"
	"github.com/bittoy/predylogic/register"
)

type amountOverParams struct {
	Threshold float64 `mapstructure:"threshold"`
	Currency  string  `mapstructure:"currency"`
}

func TestGenerateDescribesRegisteredProducers(t *testing.T) {
	mgr := register.NewManager()
	reg, err := mgr.NewRegistry("risk")
	require.NoError(t, err)

	require.NoError(t, reg.Register(&register.Producer{
		Name:       "amount_over",
		Desc:       "true when the context amount exceeds a threshold",
		ParamsType: reflect.TypeOf(amountOverParams{}),
		Build: func(params any) (predicate.Predicate, error) {
			p := params.(amountOverParams)
			return predicate.Leaf(func(ctx any) (bool, error) {
				amount := ctx.(map[string]any)["amount"].(float64)
				return amount > p.Threshold, nil
			}), nil
		},
	}))

	gen := NewGenerator(mgr)
	out, err := gen.Generate()
	require.NoError(t, err)
	require.Len(t, out.Registries, 1)
	require.Equal(t, "risk", out.Registries[0].Registry)
	require.Len(t, out.Registries[0].RuleDefs, 1)
	require.Equal(t, "amount_over", out.Registries[0].RuleDefs[0].Name)
	require.Len(t, out.Registries[0].RuleDefs[0].Fields, 2)
	require.Equal(t, "threshold", out.Registries[0].RuleDefs[0].Fields[0].Name)
	require.Equal(t, []string{"threshold", "currency"}, out.Registries[0].RuleDefs[0].XParamsOrder)
}

func TestGeneratePreservesRegistrationOrder(t *testing.T) {
	mgr := register.NewManager()
	misc, err := mgr.NewRegistry("misc")
	require.NoError(t, err)
	risk, err := mgr.NewRegistry("risk")
	require.NoError(t, err)
	require.NoError(t, misc.Register(&register.Producer{
		Name: "always_true",
		Build: func(any) (predicate.Predicate, error) {
			return predicate.Leaf(func(any) (bool, error) { return true, nil }), nil
		},
	}))
	require.NoError(t, risk.Register(&register.Producer{
		Name: "z_rule",
		Build: func(any) (predicate.Predicate, error) {
			return predicate.Leaf(func(any) (bool, error) { return true, nil }), nil
		},
	}))
	require.NoError(t, risk.Register(&register.Producer{
		Name: "a_rule",
		Build: func(any) (predicate.Predicate, error) {
			return predicate.Leaf(func(any) (bool, error) { return true, nil }), nil
		},
	}))

	gen := NewGenerator(mgr)
	out, err := gen.Generate()
	require.NoError(t, err)
	require.Equal(t, []string{"misc", "risk"}, []string{out.Registries[0].Registry, out.Registries[1].Registry})
	require.Equal(t, []string{"z_rule", "a_rule"}, []string{
		out.Registries[1].RuleDefs[0].Name,
		out.Registries[1].RuleDefs[1].Name,
	})
}

func TestGenerateHandlesParamlessProducers(t *testing.T) {
	mgr := register.NewManager()
	reg, err := mgr.NewRegistry("misc")
	require.NoError(t, err)
	require.NoError(t, reg.Register(&register.Producer{
		Name: "always_true",
		Build: func(any) (predicate.Predicate, error) {
			return predicate.Leaf(func(any) (bool, error) { return true, nil }), nil
		},
	}))

	gen := NewGenerator(mgr)
	out, err := gen.Generate()
	require.NoError(t, err)
	require.Empty(t, out.Registries[0].RuleDefs[0].Fields)
}
