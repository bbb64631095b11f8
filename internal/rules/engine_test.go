package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTwoPlayerBettingState(aChips, bChips, currentBet, minRaise int64, currentPlayer string) *GameState {
	a := &Player{ID: "a", Status: StatusActive, Chips: aChips, CurrentBet: currentBet}
	b := &Player{ID: "b", Status: StatusActive, Chips: bChips}
	return &GameState{
		Phase:         PhaseBetting,
		Players:       map[string]*Player{"a": a, "b": b},
		PlayerOrder:   []string{"a", "b"},
		CurrentPlayer: currentPlayer,
		CurrentBet:    currentBet,
		MinRaise:      minRaise,
		BigBlind:      minRaise,
		PlayersToAct:  map[string]bool{"a": true, "b": true},
	}
}

func TestValidateActionNotYourTurn(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 0, 20, "a")
	_, err := ValidateAction(state, "b", ActionCheck, 0)
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestValidateActionCheckRequiresNoOutstandingBet(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 20, 20, "a")
	state.Players["a"].CurrentBet = 0
	_, err := ValidateAction(state, "a", ActionCheck, 0)
	assert.ErrorIs(t, err, ErrCannotCheck)
}

func TestValidateActionCallCapsAtStack(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 0, 20, "a")
	state.CurrentBet = 50
	state.Players["a"].Chips = 30
	amount, err := ValidateAction(state, "a", ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(30), amount)
}

func TestValidateActionBetBelowBigBlindRejected(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 0, 20, "a")
	_, err := ValidateAction(state, "a", ActionBet, 10)
	assert.ErrorIs(t, err, ErrBetTooSmall)
}

func TestValidateActionRaiseBelowMinRejectedUnlessAllIn(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 20, 20, "a")
	state.Players["a"].Chips = 100

	// target 30 means a 10-chip raise increment, below the 20 min-raise,
	// and the player has plenty of chips left: rejected.
	_, err := ValidateAction(state, "a", ActionRaise, 30)
	assert.ErrorIs(t, err, ErrRaiseTooSmall)
}

func TestValidateActionShortAllInRaiseIsAccepted(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 20, 20, "a")
	state.Players["a"].Chips = 10 // can only reach current_bet+10, short of the 20 min-raise

	amount, err := ValidateAction(state, "a", ActionRaise, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(10), amount)
}

func TestValidateActionUnknownActionRejected(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 0, 20, "a")
	_, err := ValidateAction(state, "a", ActionType(99), 0)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestIsBettingRoundCompleteWithOneContenderLeft(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 0, 20, "a")
	state.Players["b"].Status = StatusFolded
	assert.True(t, IsBettingRoundComplete(state))
}

func TestIsBettingRoundCompleteWaitsForUnmatchedBet(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 20, 20, "a")
	state.Players["a"].HasActed = true
	state.Players["a"].CurrentBet = 20
	state.Players["b"].HasActed = true
	state.Players["b"].CurrentBet = 0 // hasn't matched
	assert.False(t, IsBettingRoundComplete(state))
}

func TestIsBettingRoundCompleteWhenEveryoneMatchedAndActed(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 20, 20, "a")
	state.Players["a"].HasActed = true
	state.Players["a"].CurrentBet = 20
	state.Players["b"].HasActed = true
	state.Players["b"].CurrentBet = 20
	assert.True(t, IsBettingRoundComplete(state))
}

func TestGetValidActionsExcludesCheckWhenBetOutstanding(t *testing.T) {
	state := newTwoPlayerBettingState(100, 100, 20, 20, "a")
	state.Players["a"].CurrentBet = 0
	actions := GetValidActions(state, "a")

	var types []ActionType
	for _, a := range actions {
		types = append(types, a.Action)
	}
	assert.Contains(t, types, ActionCall)
	assert.NotContains(t, types, ActionCheck)
}

func TestValidateConfigRejectsBigBlindBelowTwiceSmallBlind(t *testing.T) {
	cfg := TableConfig{StartingChips: 1000, SmallBlind: 10, BigBlind: 15, MinPlayers: 2, MaxPlayers: 6}
	err := ValidateConfig(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateConfigAccepts(t *testing.T) {
	cfg := TableConfig{StartingChips: 1000, SmallBlind: 10, BigBlind: 20, MinPlayers: 2, MaxPlayers: 6}
	assert.NoError(t, ValidateConfig(cfg))
}
