package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIsDeterministic(t *testing.T) {
	values := map[string]interface{}{
		"externalEventId": "E1",
		"plate":           "ABC1234",
	}

	first := Compute(values)
	second := Compute(values)
	require.Equal(t, first, second)

	// Pinned digest: sha256 of "externalEventId=E1\nplate=ABC1234\n",
	// first eight bytes big endian.
	assert.Equal(t, uint64(0x457b439c4a1dc4c0), first)
}

func TestComputeMixedScalarTypes(t *testing.T) {
	values := map[string]interface{}{
		"c": 2.5,
		"a": 1,
		"b": true,
	}

	// sha256 of "a=1\nb=true\nc=2.5\n", first eight bytes big endian.
	assert.Equal(t, uint64(0x1334150e57002358), Compute(values))
}

func TestComputeIgnoresMapOrder(t *testing.T) {
	a := map[string]interface{}{"x": "1", "y": "2", "z": "3"}
	b := map[string]interface{}{"z": "3", "x": "1", "y": "2"}
	assert.Equal(t, Compute(a), Compute(b))
}

func TestComputeSkipsNonScalars(t *testing.T) {
	bare := map[string]interface{}{"plate": "ABC1234"}
	withExtras := map[string]interface{}{
		"plate":    "ABC1234",
		"trailers": []interface{}{map[string]interface{}{"plate": "XYZ"}},
		"nested":   map[string]interface{}{"k": "v"},
		"empty":    nil,
	}
	assert.Equal(t, Compute(bare), Compute(withExtras))
}

func TestComputeChangesWithValues(t *testing.T) {
	a := Compute(map[string]interface{}{"plate": "ABC1234"})
	b := Compute(map[string]interface{}{"plate": "ABC1235"})
	assert.NotEqual(t, a, b)
}
