package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feltengine/pkg/rng"
)

func TestCardIDRoundTrip(t *testing.T) {
	for id := 0; id < 52; id++ {
		c := FromID(id)
		assert.Equal(t, id, c.ToID())
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "Ah", NewCard(RankA, SuitHearts).String())
	assert.Equal(t, "10c", NewCard(Rank10, SuitClubs).String())
}

func newSeededDeck(t *testing.T, seed string) *Deck {
	t.Helper()
	source, err := rng.NewSystemWithSeed([]byte(seed))
	require.NoError(t, err)
	return NewDeck(source)
}

func TestDeckDealsAllDistinctCards(t *testing.T) {
	d := newSeededDeck(t, "deck-seed")

	seen := make(map[Card]bool)
	for i := 0; i < 52; i++ {
		c, err := d.Deal()
		require.NoError(t, err)
		assert.False(t, seen[c], "card %s dealt twice", c)
		seen[c] = true
	}
	assert.Len(t, seen, 52)
	assert.Equal(t, 0, d.Remaining())
}

func TestDeckExhaustionReturnsError(t *testing.T) {
	d := newSeededDeck(t, "exhaustion-seed")
	for i := 0; i < 52; i++ {
		_, err := d.Deal()
		require.NoError(t, err)
	}
	_, err := d.Deal()
	assert.Error(t, err)
}

func TestDeckResetReshufflesAndReplenishes(t *testing.T) {
	d := newSeededDeck(t, "reset-seed")
	for i := 0; i < 10; i++ {
		_, _ = d.Deal()
	}
	d.Reset()
	assert.Equal(t, 52, d.Remaining())
}

func TestDeckInjectOrderDealsExactSequence(t *testing.T) {
	d := newSeededDeck(t, "inject-seed")
	order := []Card{
		NewCard(RankA, SuitSpades),
		NewCard(RankK, SuitSpades),
		NewCard(Rank2, SuitClubs),
	}
	d.InjectOrder(order)

	for _, want := range order {
		got, err := d.Deal()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, d.Remaining())
}

func TestDeckShuffleIsDeterministicForSameSeed(t *testing.T) {
	a := newSeededDeck(t, "same-seed")
	b := newSeededDeck(t, "same-seed")

	for i := 0; i < 52; i++ {
		ca, _ := a.Deal()
		cb, _ := b.Deal()
		assert.Equal(t, ca, cb)
	}
}
