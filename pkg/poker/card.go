// Package poker implements the 52-card universe, a shuffled deal
// source, and the 7-card hand evaluator shared by every table.
package poker

import (
	"fmt"

	"feltengine/pkg/rng"
)

// Rank enumeration. Values are 0-indexed (Rank2 = 0) purely as an
// internal encoding; the external numbering in player-facing text
// still reads 2..14 via String().
type Rank int8

const (
	Rank2 Rank = iota
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
)

func (r Rank) String() string {
	names := []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	if r >= 0 && int(r) < len(names) {
		return names[r]
	}
	return "?"
}

// Suit enumeration.
type Suit int8

const (
	SuitClubs Suit = iota
	SuitDiamonds
	SuitHearts
	SuitSpades
)

func (s Suit) String() string {
	names := []string{"c", "d", "h", "s"}
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "?"
}

// Card is an immutable (rank, suit) pair. Cards compare by rank;
// suits are never ordered.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// ToID packs a card into a 0-51 index for compact transport.
func (c Card) ToID() int {
	return int(c.Rank)*4 + int(c.Suit)
}

// FromID unpacks a 0-51 index back into a Card.
func FromID(id int) Card {
	return Card{Rank: Rank(id / 4), Suit: Suit(id % 4)}
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Deck is an ordered sequence of unique cards with pop-front dealing.
// Invariant: no card appears twice; after N deals, Remaining() == 52-N.
type Deck struct {
	cards []Card
	drawn int
	rng   *rng.System
}

// NewDeck builds a deck backed by the given CSPRNG and immediately
// shuffles it. A nil rng source is never valid in production; tests
// pass a source built with rng.NewSystemWithSeed, or call InjectOrder,
// for deterministic control.
func NewDeck(source *rng.System) *Deck {
	d := &Deck{rng: source}
	d.Reset()
	return d
}

// Reset repopulates all 52 cards and shuffles them via Fisher-Yates
// driven by the deck's CSPRNG.
func (d *Deck) Reset() {
	cards := make([]Card, 52)
	for id := 0; id < 52; id++ {
		cards[id] = FromID(id)
	}
	d.cards = cards
	d.drawn = 0
	d.shuffle()
}

func (d *Deck) shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.RandomInt(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// InjectOrder overrides the deck with an exact, fixed card order for
// deterministic tests. Deals proceed front-to-back from this slice.
func (d *Deck) InjectOrder(order []Card) {
	d.cards = append([]Card(nil), order...)
	d.drawn = 0
}

// Deal pops the next card off the top of the deck.
func (d *Deck) Deal() (Card, error) {
	if d.drawn >= len(d.cards) {
		return Card{}, fmt.Errorf("poker: deck exhausted after %d deals", d.drawn)
	}
	c := d.cards[d.drawn]
	d.drawn++
	return c, nil
}

// Remaining reports how many cards are left to deal.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.drawn
}
