// Package example demonstrates wiring a register.Manager, a manifest, and
// an engine.RuleEngine together, without being part of the core API.
package example

import (
	"fmt"
	"reflect"

	"github.com/bittoy/predylogic/engine"
	"github.com/bittoy/predylogic/manifest"
	"github.com/bittoy/predylogic/predicate"
	"github.com/bittoy/predylogic/register"
)

type amountOverParams struct {
	Threshold float64 `mapstructure:"threshold"`
}

func amountOverProducer() *register.Producer {
	return &register.Producer{
		Name:       "amount_over",
		Desc:       "true when the context's amount exceeds a threshold",
		ParamsType: reflect.TypeOf(amountOverParams{}),
		Build: func(params any) (predicate.Predicate, error) {
			p := params.(amountOverParams)
			return predicate.Leaf(func(ctx any) (bool, error) {
				data := ctx.(map[string]any)
				amount, _ := data["amount"].(float64)
				return amount > p.Threshold, nil
			}), nil
		},
	}
}

// Example wires a registry, publishes a manifest holding a single leaf
// rule, and invokes the published handle.
func Example() {
	mgr := register.NewManager()
	risk, err := mgr.NewRegistry("risk")
	if err != nil {
		panic(err)
	}
	if err := risk.Register(amountOverProducer()); err != nil {
		panic(err)
	}

	e := engine.New(mgr)
	m := &manifest.RuleSetManifest{
		Registry: "risk",
		Rules: map[string]manifest.LogicNode{
			"large_order": {
				Type: manifest.NodeLeaf,
				Rule: manifest.RuleRef{
					RuleDefName: "amount_over",
					Params:      map[string]any{"threshold": 1000.0},
				},
			},
		},
	}
	if err := e.UpdateManifests(m); err != nil {
		panic(err)
	}

	handle := e.GetPredicateHandle("risk", "large_order")
	ok, err := handle.Invoke(map[string]any{"amount": 1500.0})
	if err != nil {
		panic(err)
	}
	fmt.Println(ok)
	// Output: true
}
