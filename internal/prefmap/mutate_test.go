package prefmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateCommitsOnce(t *testing.T) {
	m := New(newTestRegistry(t))
	Set(m, audioSettings{Volume: 0.5})
	before := m.Version()

	Update(m, func(p *audioSettings) {
		p.Muted = true
	})

	got, _ := Get[audioSettings](m)
	assert.Equal(t, audioSettings{Volume: 0.5, Muted: true}, got)
	assert.Equal(t, before+1, m.Version(), "one update is one mutation")
}

func TestUpdateStartsFromDefaultWhenAbsent(t *testing.T) {
	m := New(newTestRegistry(t))

	Update(m, func(p *audioSettings) {
		p.Muted = true
	})

	got, ok := Get[audioSettings](m)
	require.True(t, ok)
	assert.Equal(t, audioSettings{Volume: 0.8, Muted: true}, got)
}

func TestUpdateCommitsOnPanicInsideFn(t *testing.T) {
	m := New(newTestRegistry(t))
	Set(m, audioSettings{Volume: 0.5})

	require.Panics(t, func() {
		Update(m, func(p *audioSettings) {
			p.Volume = 0.9
			panic("boom")
		})
	})

	got, _ := Get[audioSettings](m)
	assert.Equal(t, 0.9, got.Volume, "edits made before the panic are committed")
}

func TestMutateExplicitCommitThenDeferIsSingleWrite(t *testing.T) {
	m := New(newTestRegistry(t))
	Set(m, audioSettings{Volume: 0.5})
	before := m.Version()

	mu := Mutate[audioSettings](m)
	mu.Value().Volume = 0.7
	mu.Commit()
	mu.Commit()

	assert.Equal(t, before+1, m.Version())
	got, _ := Get[audioSettings](m)
	assert.Equal(t, 0.7, got.Volume)
}

func TestMutateWithoutCommitLeavesStoreUntouched(t *testing.T) {
	m := New(newTestRegistry(t))
	Set(m, audioSettings{Volume: 0.5})
	before := m.Version()

	mu := Mutate[audioSettings](m)
	mu.Value().Volume = 0.7

	assert.Equal(t, before, m.Version())
	got, _ := Get[audioSettings](m)
	assert.Equal(t, 0.5, got.Volume)
}
