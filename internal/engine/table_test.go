package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feltengine/internal/rules"
	"feltengine/pkg/poker"
	"feltengine/pkg/rng"
)

func newTestTable(t *testing.T, cfg rules.TableConfig) *Table {
	t.Helper()
	source, err := rng.NewSystemWithSeed([]byte("table-test-seed"))
	require.NoError(t, err)
	table, err := NewTable(cfg, source, nil)
	require.NoError(t, err)
	return table
}

func defaultConfig() rules.TableConfig {
	return rules.TableConfig{
		TableID:       "t1",
		StartingChips: 1000,
		SmallBlind:    10,
		BigBlind:      20,
		MinPlayers:    2,
		MaxPlayers:    6,
	}
}

func submit(t *testing.T, table *Table, playerID string, action rules.ActionType, amount int64) error {
	t.Helper()
	result := make(chan error, 1)
	err := table.applyAction(ActionRequest{PlayerID: playerID, Action: action, Amount: amount, Result: result})
	return err
}

func TestHeadsUpHandConservesChips(t *testing.T) {
	table := newTestTable(t, defaultConfig())
	require.NoError(t, table.AddPlayer("a", "alice", 1000))
	require.NoError(t, table.AddPlayer("b", "bob", 1000))

	require.NoError(t, table.StartHand())

	guard := 0
	for table.State().Phase == rules.PhaseBetting && guard < 200 {
		guard++
		state := table.State()
		current := state.CurrentPlayer
		toCall := state.CurrentBet - state.Players[current].CurrentBet
		if toCall > 0 {
			require.NoError(t, submit(t, table, current, rules.ActionCall, 0))
		} else {
			require.NoError(t, submit(t, table, current, rules.ActionCheck, 0))
		}
	}

	final := table.State()
	assert.Equal(t, rules.PhaseHandComplete, final.Phase)

	var total int64
	for _, p := range final.Players {
		total += p.Chips
	}
	assert.Equal(t, int64(2000), total, "no chips created or destroyed across a hand")
}

func TestHeadsUpDealerIsSmallBlind(t *testing.T) {
	table := newTestTable(t, defaultConfig())
	require.NoError(t, table.AddPlayer("a", "alice", 1000))
	require.NoError(t, table.AddPlayer("b", "bob", 1000))
	require.NoError(t, table.StartHand())

	state := table.State()
	dealerID := state.PlayerOrder[state.DealerPosition]
	assert.True(t, state.Players[dealerID].IsSmallBind)
}

func TestShortAllInDoesNotBreakChipConservation(t *testing.T) {
	table := newTestTable(t, defaultConfig())
	require.NoError(t, table.AddPlayer("a", "alice", 1000))
	require.NoError(t, table.AddPlayer("b", "bob", 1000))
	require.NoError(t, table.AddPlayer("c", "carol", 25)) // short stack, can only raise a little

	require.NoError(t, table.StartHand())

	guard := 0
	for table.State().Phase == rules.PhaseBetting && guard < 200 {
		guard++
		s := table.State()
		current := s.CurrentPlayer
		p := s.Players[current]
		toCall := s.CurrentBet - p.CurrentBet
		switch {
		case p.Chips <= toCall || p.Chips < s.BigBlind:
			require.NoError(t, submit(t, table, current, rules.ActionAllIn, 0))
		case toCall > 0:
			require.NoError(t, submit(t, table, current, rules.ActionCall, 0))
		default:
			require.NoError(t, submit(t, table, current, rules.ActionCheck, 0))
		}
	}

	final := table.State()
	assert.Equal(t, rules.PhaseHandComplete, final.Phase)

	var total int64
	for _, p := range final.Players {
		total += p.Chips
	}
	assert.Equal(t, int64(2025), total)
}

func TestLayerSidePotsSplitsCorrectlyAmongDifferentStacks(t *testing.T) {
	table := newTestTable(t, defaultConfig())
	table.state.Players = map[string]*rules.Player{
		"short": {ID: "short", Status: rules.StatusAllIn, TotalBet: 50, Chips: 0},
		"mid":   {ID: "mid", Status: rules.StatusAllIn, TotalBet: 100, Chips: 0},
		"big":   {ID: "big", Status: rules.StatusActive, TotalBet: 200, Chips: 800},
	}

	table.layerSidePots()

	var total int64
	for _, pot := range table.state.Pots {
		total += pot.Amount
	}
	assert.Equal(t, int64(350), total)

	// main pot (up to 50 each, x3 = 150) is eligible to all three.
	assert.Equal(t, int64(150), table.state.Pots[0].Amount)
	assert.ElementsMatch(t, []string{"short", "mid", "big"}, table.state.Pots[0].Eligible)

	// second layer (50->100, x2 = 100) eligible only to mid and big.
	assert.Equal(t, int64(100), table.state.Pots[1].Amount)
	assert.ElementsMatch(t, []string{"mid", "big"}, table.state.Pots[1].Eligible)

	// third layer (100->200, big alone = 100) eligible only to big.
	assert.Equal(t, int64(100), table.state.Pots[2].Amount)
	assert.ElementsMatch(t, []string{"big"}, table.state.Pots[2].Eligible)
}

func TestDealHoleCardsGivesEveryoneTwoUniqueCards(t *testing.T) {
	table := newTestTable(t, defaultConfig())
	require.NoError(t, table.AddPlayer("a", "alice", 1000))
	require.NoError(t, table.AddPlayer("b", "bob", 1000))
	require.NoError(t, table.AddPlayer("c", "carol", 1000))
	require.NoError(t, table.StartHand())

	seen := make(map[poker.Card]bool)
	state := table.State()
	for _, p := range state.Players {
		assert.Len(t, p.HoleCards, 2)
		for _, card := range p.HoleCards {
			assert.False(t, seen[card])
			seen[card] = true
		}
	}
}

func TestSubmitActionRejectsAfterStop(t *testing.T) {
	table := newTestTable(t, defaultConfig())
	require.NoError(t, table.AddPlayer("a", "alice", 1000))
	require.NoError(t, table.AddPlayer("b", "bob", 1000))
	table.Start(context.Background())
	table.Stop()

	err := table.SubmitAction(context.Background(), ActionRequest{PlayerID: "a", Action: rules.ActionFold})
	assert.Error(t, err)
}

func TestNotEnoughPlayersCannotStartHand(t *testing.T) {
	table := newTestTable(t, defaultConfig())
	require.NoError(t, table.AddPlayer("a", "alice", 1000))
	err := table.StartHand()
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}
