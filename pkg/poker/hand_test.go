package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func c(rank Rank, suit Suit) Card { return NewCard(rank, suit) }

func TestEvaluateFiveCategories(t *testing.T) {
	eval := NewHandEvaluator()

	cases := []struct {
		name     string
		cards    [5]Card
		category HandCategory
	}{
		{
			"royal flush",
			[5]Card{c(RankA, SuitSpades), c(RankK, SuitSpades), c(RankQ, SuitSpades), c(RankJ, SuitSpades), c(Rank10, SuitSpades)},
			RoyalFlush,
		},
		{
			"straight flush",
			[5]Card{c(Rank9, SuitHearts), c(Rank8, SuitHearts), c(Rank7, SuitHearts), c(Rank6, SuitHearts), c(Rank5, SuitHearts)},
			StraightFlush,
		},
		{
			"four of a kind",
			[5]Card{c(RankK, SuitSpades), c(RankK, SuitHearts), c(RankK, SuitDiamonds), c(RankK, SuitClubs), c(Rank2, SuitClubs)},
			FourOfAKind,
		},
		{
			"full house",
			[5]Card{c(Rank7, SuitSpades), c(Rank7, SuitHearts), c(Rank7, SuitDiamonds), c(Rank4, SuitClubs), c(Rank4, SuitSpades)},
			FullHouse,
		},
		{
			"flush",
			[5]Card{c(RankA, SuitClubs), c(RankJ, SuitClubs), c(Rank8, SuitClubs), c(Rank6, SuitClubs), c(Rank2, SuitClubs)},
			Flush,
		},
		{
			"wheel straight",
			[5]Card{c(RankA, SuitSpades), c(Rank2, SuitHearts), c(Rank3, SuitDiamonds), c(Rank4, SuitClubs), c(Rank5, SuitSpades)},
			Straight,
		},
		{
			"three of a kind",
			[5]Card{c(Rank9, SuitSpades), c(Rank9, SuitHearts), c(Rank9, SuitDiamonds), c(Rank4, SuitClubs), c(Rank2, SuitSpades)},
			ThreeOfAKind,
		},
		{
			"two pair",
			[5]Card{c(RankJ, SuitSpades), c(RankJ, SuitHearts), c(Rank5, SuitDiamonds), c(Rank5, SuitClubs), c(Rank2, SuitSpades)},
			TwoPair,
		},
		{
			"pair",
			[5]Card{c(Rank8, SuitSpades), c(Rank8, SuitHearts), c(RankK, SuitDiamonds), c(Rank5, SuitClubs), c(Rank2, SuitSpades)},
			Pair,
		},
		{
			"high card",
			[5]Card{c(RankA, SuitSpades), c(RankJ, SuitHearts), c(Rank8, SuitDiamonds), c(Rank5, SuitClubs), c(Rank2, SuitSpades)},
			HighCard,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := eval.EvaluateFive(tc.cards)
			assert.Equal(t, tc.category, got.Category)
		})
	}
}

func TestWheelStraightRanksLow(t *testing.T) {
	eval := NewHandEvaluator()
	wheel := eval.EvaluateFive([5]Card{
		c(RankA, SuitSpades), c(Rank2, SuitHearts), c(Rank3, SuitDiamonds), c(Rank4, SuitClubs), c(Rank5, SuitSpades),
	})
	sixHigh := eval.EvaluateFive([5]Card{
		c(Rank6, SuitSpades), c(Rank2, SuitHearts), c(Rank3, SuitDiamonds), c(Rank4, SuitClubs), c(Rank5, SuitSpades),
	})
	assert.Equal(t, Straight, wheel.Category)
	assert.Equal(t, Straight, sixHigh.Category)
	assert.Equal(t, -1, eval.Compare(wheel, sixHigh))
}

func TestCompareIsAntiSymmetric(t *testing.T) {
	eval := NewHandEvaluator()
	pair := eval.EvaluateFive([5]Card{c(Rank8, SuitSpades), c(Rank8, SuitHearts), c(RankK, SuitDiamonds), c(Rank5, SuitClubs), c(Rank2, SuitSpades)})
	trips := eval.EvaluateFive([5]Card{c(Rank9, SuitSpades), c(Rank9, SuitHearts), c(Rank9, SuitDiamonds), c(Rank4, SuitClubs), c(Rank2, SuitSpades)})

	assert.Equal(t, 1, eval.Compare(trips, pair))
	assert.Equal(t, -1, eval.Compare(pair, trips))
}

func TestExactTieIsEqual(t *testing.T) {
	eval := NewHandEvaluator()
	a := eval.EvaluateFive([5]Card{c(RankA, SuitSpades), c(RankK, SuitHearts), c(RankQ, SuitDiamonds), c(RankJ, SuitClubs), c(Rank9, SuitSpades)})
	b := eval.EvaluateFive([5]Card{c(RankA, SuitHearts), c(RankK, SuitSpades), c(RankQ, SuitClubs), c(RankJ, SuitDiamonds), c(Rank9, SuitHearts)})

	assert.True(t, Equal(a, b))
	assert.Equal(t, 0, eval.Compare(a, b))
}

func TestEvaluateBestPicksBestOfSeven(t *testing.T) {
	eval := NewHandEvaluator()

	hole := []Card{c(RankA, SuitSpades), c(RankA, SuitHearts)}
	community := []Card{c(RankA, SuitDiamonds), c(RankA, SuitClubs), c(RankK, SuitSpades), c(Rank7, SuitHearts), c(Rank2, SuitDiamonds)}

	best, err := eval.EvaluateBest(hole, community)
	require.NoError(t, err)
	assert.Equal(t, FourOfAKind, best.Category)
}

func TestEvaluateBestRejectsWrongCardCount(t *testing.T) {
	eval := NewHandEvaluator()
	_, err := eval.EvaluateBest([]Card{c(RankA, SuitSpades)}, nil)
	assert.Error(t, err)
}

func TestFiveOfSevenEnumeratesTwentyOneCombinations(t *testing.T) {
	cards := make([]Card, 7)
	for i := range cards {
		cards[i] = c(Rank(i), SuitSpades)
	}
	combos := fiveOfSeven(cards)
	assert.Len(t, combos, 21)

	seen := make(map[[5]Card]bool)
	for _, combo := range combos {
		seen[combo] = true
	}
	assert.Len(t, seen, 21, "all 21 combinations must be distinct")
}
