package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnmarshalLeafNode(t *testing.T) {
	var n LogicNode
	err := json.Unmarshal([]byte(`{
		"node_type": "leaf",
		"rule": {"rule_def_name": "amount_over", "threshold": 100}
	}`), &n)
	require.NoError(t, err)
	require.Equal(t, NodeLeaf, n.Type)
	require.Equal(t, "amount_over", n.Rule.RuleDefName)
	require.Equal(t, float64(100), n.Rule.Params["threshold"])
}

func TestUnmarshalRejectsUnexpectedField(t *testing.T) {
	var n LogicNode
	err := json.Unmarshal([]byte(`{"node_type": "leaf", "bogus": 1}`), &n)
	require.Error(t, err)
}

func TestUnmarshalAndRequiresAtLeastTwoRules(t *testing.T) {
	var n LogicNode
	err := json.Unmarshal([]byte(`{
		"node_type": "and",
		"rules": [{"node_type": "leaf", "rule": {"rule_def_name": "a"}}]
	}`), &n)
	require.Error(t, err)
}

func TestUnmarshalNotNode(t *testing.T) {
	var n LogicNode
	err := json.Unmarshal([]byte(`{
		"node_type": "not",
		"rule": {"node_type": "leaf", "rule": {"rule_def_name": "a"}}
	}`), &n)
	require.NoError(t, err)
	require.Equal(t, NodeNot, n.Type)
	require.NotNil(t, n.Child)
	require.Equal(t, NodeLeaf, n.Child.Type)
}

func TestUnmarshalRefNode(t *testing.T) {
	var n LogicNode
	err := json.Unmarshal([]byte(`{"node_type": "ref", "ref_id": "a"}`), &n)
	require.NoError(t, err)
	require.Equal(t, NodeRef, n.Type)
	require.Equal(t, "a", n.RefID)
}

func TestValidateDetectsRefCycle(t *testing.T) {
	m := RuleSetManifest{Registry: "r", Rules: map[string]LogicNode{
		"a": {Type: NodeRef, RefID: "b"},
		"b": {Type: NodeRef, RefID: "a"},
	}}
	err := m.Validate()
	require.Error(t, err)
}

func TestValidateAllowsAcyclicRefs(t *testing.T) {
	m := RuleSetManifest{Registry: "r", Rules: map[string]LogicNode{
		"a": {Type: NodeLeaf, Rule: RuleRef{RuleDefName: "leaf_a"}},
		"b": {Type: NodeRef, RefID: "a"},
	}}
	require.NoError(t, m.Validate())
}

func TestValidateAllowsRefsOutsideManifest(t *testing.T) {
	m := RuleSetManifest{Registry: "r", Rules: map[string]LogicNode{
		"a": {Type: NodeRef, RefID: "elsewhere"},
	}}
	require.NoError(t, m.Validate())
}
