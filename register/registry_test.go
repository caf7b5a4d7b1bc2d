package register

import (
	"testing"

	"github.com/bittoy/predylogic/errs"
	"github.com/bittoy/predylogic/predicate"
	"github.com/stretchr/testify/require"
)

func alwaysTrueProducer(name string) *Producer {
	return &Producer{
		Name: name,
		Build: func(any) (predicate.Predicate, error) {
			return predicate.Leaf(func(any) (bool, error) { return true, nil }), nil
		},
	}
}

func TestNewRegistryRejectsDuplicateName(t *testing.T) {
	mgr := NewManager()
	_, err := mgr.NewRegistry("rules")
	require.NoError(t, err)

	_, err = mgr.NewRegistry("rules")
	require.Error(t, err)
	var conflict *errs.RegistryNameConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestRegisterRejectsDuplicateRuleName(t *testing.T) {
	mgr := NewManager()
	r, err := mgr.NewRegistry("rules")
	require.NoError(t, err)

	require.NoError(t, r.Register(alwaysTrueProducer("always_true")))
	err = r.Register(alwaysTrueProducer("always_true"))
	require.Error(t, err)
	var conflict *errs.RuleDefConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestGetUnknownRegistryErrors(t *testing.T) {
	mgr := NewManager()
	_, err := mgr.Get("missing")
	require.Error(t, err)
	var notFound *errs.RegistryNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGetUnknownProducerErrors(t *testing.T) {
	mgr := NewManager()
	r, err := mgr.NewRegistry("rules")
	require.NoError(t, err)

	_, err = r.Get("missing")
	require.Error(t, err)
	var notFound *errs.RuleDefNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := newRegistry("rules")
	require.NoError(t, r.Register(alwaysTrueProducer("p")))
	r.Unregister("p")
	r.Unregister("p")
	_, err := r.Get("p")
	require.Error(t, err)
}

func TestProducersSnapshotIsACopy(t *testing.T) {
	r := newRegistry("rules")
	require.NoError(t, r.Register(alwaysTrueProducer("p")))
	snap := r.Producers()
	delete(snap, "p")
	_, err := r.Get("p")
	require.NoError(t, err)
}

func TestNamesReflectsRegistrationOrder(t *testing.T) {
	r := newRegistry("rules")
	require.NoError(t, r.Register(alwaysTrueProducer("z")))
	require.NoError(t, r.Register(alwaysTrueProducer("a")))
	require.NoError(t, r.Register(alwaysTrueProducer("m")))
	require.Equal(t, []string{"z", "a", "m"}, r.Names())

	r.Unregister("a")
	require.Equal(t, []string{"z", "m"}, r.Names())
}

func TestManagerNamesReflectsRegistrationOrder(t *testing.T) {
	mgr := NewManager()
	_, err := mgr.NewRegistry("z")
	require.NoError(t, err)
	_, err = mgr.NewRegistry("a")
	require.NoError(t, err)
	require.Equal(t, []string{"z", "a"}, mgr.Names())
}
