package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFacets(t *testing.T) {
	require.Equal(t, Facets{Generation: 2, Loading: true}, State[string]{Phase: Loading, Generation: 2}.Facets())
	require.Equal(t, Facets{Generation: 1, Value: "calibrationnet"},
		State[string]{Phase: Ready, Generation: 1, Value: "calibrationnet", HasValue: true}.Facets())
	require.Equal(t, Facets{Generation: 3}, State[uint64]{Phase: Ready, Generation: 3}.Facets())
	require.Equal(t, Facets{Failed: true}, State[uint64]{Phase: Failed}.Facets())
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "idle", Idle.String())
	require.Equal(t, "loading", Loading.String())
	require.Equal(t, "ready", Ready.String())
	require.Equal(t, "failed", Failed.String())
	require.Equal(t, "unknown", Phase(9).String())
}
