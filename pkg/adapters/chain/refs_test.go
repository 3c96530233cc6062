package chain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefs_Unique(t *testing.T) {
	r := NewRefs()
	seen := map[string]bool{}
	for range 200 {
		ref, err := r.NewTransactionRef()
		require.NoError(t, err)
		assert.True(t, IsRef(ref), ref)
		assert.False(t, seen[ref], "duplicate ref %s", ref)
		seen[ref] = true
	}
	assert.Equal(t, uint64(200), r.Minted())
}

func TestRefs_CounterSeparatesIdenticalInputs(t *testing.T) {
	fixed := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	r := &Refs{
		clock:  func() time.Time { return at },
		random: func() (uuid.UUID, error) { return fixed, nil },
	}

	a, err := r.NewTransactionRef()
	require.NoError(t, err)
	b, err := r.NewTransactionRef()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	// Same inputs, fresh counter: same digest.
	again := &Refs{clock: r.clock, random: r.random}
	c, err := again.NewTransactionRef()
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestRefs_EntropyFailure(t *testing.T) {
	r := &Refs{
		clock:  time.Now,
		random: func() (uuid.UUID, error) { return uuid.Nil, errors.New("no entropy") },
	}
	_, err := r.NewTransactionRef()
	assert.ErrorContains(t, err, "no entropy")
	assert.Zero(t, r.Minted())
}

func TestIsRef(t *testing.T) {
	assert.False(t, IsRef(""))
	assert.False(t, IsRef("TX0001"))
	ref, err := NewRefs().NewTransactionRef()
	require.NoError(t, err)
	assert.False(t, IsRef(ref[:RefLength-2]+"zz"))
}
