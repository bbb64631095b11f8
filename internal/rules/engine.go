package rules

import "fmt"

// ValidAction describes one legal action and its inclusive amount
// range, per spec §4.2 get_valid_actions.
type ValidAction struct {
	Action ActionType
	Min    int64
	Max    int64
}

// ValidateAction is the pure predicate: given the table's current
// snapshot, a player id and a proposed action, decide legality and
// return the normalized amount to apply. amount is only consulted
// for BET and RAISE; for RAISE it is the *target total* the player
// wants to reach, not the increment.
func ValidateAction(state *GameState, playerID string, action ActionType, amount int64) (int64, error) {
	if state.CurrentPlayer != playerID {
		return 0, ErrNotYourTurn
	}
	if state.Phase != PhaseBetting {
		return 0, ErrNotBettingPhase
	}
	player, ok := state.Players[playerID]
	if !ok {
		return 0, ErrPlayerNotFound
	}
	if player.Status != StatusActive {
		return 0, ErrPlayerNotActive
	}

	toCall := state.CurrentBet - player.CurrentBet

	switch action {
	case ActionFold:
		return 0, nil

	case ActionCheck:
		if toCall > 0 {
			return 0, ErrCannotCheck
		}
		return 0, nil

	case ActionCall:
		if toCall <= 0 {
			return 0, ErrNothingToCall
		}
		return min64(toCall, player.Chips), nil

	case ActionBet:
		if state.CurrentBet > 0 {
			return 0, ErrCannotBet
		}
		if amount < state.BigBlind {
			return 0, ErrBetTooSmall
		}
		if amount > player.Chips {
			return 0, ErrBetExceedsChips
		}
		return amount, nil

	case ActionRaise:
		return validateRaise(state, player, amount)

	case ActionAllIn:
		if player.Chips <= 0 {
			return 0, ErrBetExceedsChips
		}
		return player.Chips, nil

	default:
		return 0, ErrUnknownAction
	}
}

// validateRaise implements spec §4.2's RAISE row: the client passes
// the target total T; the increment T-current_bet must clear
// min_raise unless the player is going all-in short (required add
// equals their whole stack), in which case the short raise stands
// but does not reopen action for players who already acted.
func validateRaise(state *GameState, player *Player, target int64) (int64, error) {
	if state.CurrentBet == 0 {
		return 0, ErrCannotRaise
	}

	requiredAdd := target - player.CurrentBet
	if requiredAdd > player.Chips {
		return 0, ErrRaiseExceedsChips
	}

	raiseIncrement := target - state.CurrentBet
	if raiseIncrement < state.MinRaise {
		if requiredAdd == player.Chips {
			return requiredAdd, nil // all-in short raise
		}
		return 0, ErrRaiseTooSmall
	}

	return requiredAdd, nil
}

// GetValidActions returns the complete legal action set with
// inclusive [min,max] ranges for the given player, so clients can
// build UIs without reimplementing the rules.
func GetValidActions(state *GameState, playerID string) []ValidAction {
	player, ok := state.Players[playerID]
	if !ok || player.Status != StatusActive || state.CurrentPlayer != playerID {
		return nil
	}

	var valid []ValidAction
	valid = append(valid, ValidAction{Action: ActionFold})

	toCall := state.CurrentBet - player.CurrentBet

	if toCall == 0 {
		valid = append(valid, ValidAction{Action: ActionCheck})
		if state.CurrentBet == 0 && player.Chips >= state.BigBlind {
			valid = append(valid, ValidAction{Action: ActionBet, Min: state.BigBlind, Max: player.Chips})
		}
	} else {
		callAmount := min64(toCall, player.Chips)
		valid = append(valid, ValidAction{Action: ActionCall, Min: callAmount, Max: callAmount})
	}

	if state.CurrentBet > 0 && player.Chips > toCall {
		minRaiseTo := state.CurrentBet + state.MinRaise
		maxRaiseAmount := player.Chips
		minRaiseAmount := minRaiseTo - player.CurrentBet
		if maxRaiseAmount >= minRaiseAmount {
			valid = append(valid, ValidAction{
				Action: ActionRaise,
				Min:    min64(minRaiseTo, player.Chips+player.CurrentBet),
				Max:    player.Chips + player.CurrentBet,
			})
		}
	}

	if player.Chips > 0 {
		valid = append(valid, ValidAction{Action: ActionAllIn, Min: player.Chips, Max: player.Chips})
	}

	return valid
}

// IsBettingRoundComplete implements spec §4.2 exactly: the round
// ends when either only one contender remains, or every ACTIVE
// player has acted and matched the current bet.
func IsBettingRoundComplete(state *GameState) bool {
	contenders := activeOrAllIn(state)
	if len(contenders) <= 1 {
		return true
	}

	for _, p := range contenders {
		if p.Status != StatusActive {
			continue // all-in players cannot act further, not a blocker
		}
		if !p.HasActed {
			return false
		}
		if p.CurrentBet < state.CurrentBet {
			return false
		}
	}
	return true
}

// IsHandComplete reports whether the hand should move to showdown:
// one contender remains, or the river's betting round is complete.
func IsHandComplete(state *GameState) bool {
	contenders := activeOrAllIn(state)
	if len(contenders) <= 1 {
		return true
	}
	if state.Round == RoundShowdown {
		return true
	}
	if state.Round == RoundRiver && IsBettingRoundComplete(state) {
		return true
	}
	return false
}

func activeOrAllIn(state *GameState) []*Player {
	var out []*Player
	for _, id := range state.PlayerOrder {
		p := state.Players[id]
		if p != nil && (p.Status == StatusActive || p.Status == StatusAllIn) {
			out = append(out, p)
		}
	}
	return out
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// ValidateConfig enforces spec §6.5's option constraints.
func ValidateConfig(c TableConfig) error {
	if c.StartingChips <= 0 {
		return fmt.Errorf("%w: starting_chips must be positive", ErrInvalidConfig)
	}
	if c.SmallBlind <= 0 || c.BigBlind < 2*c.SmallBlind {
		return fmt.Errorf("%w: big_blind must be >= 2*small_blind > 0", ErrInvalidConfig)
	}
	if c.MinPlayers < 2 {
		return fmt.Errorf("%w: min_players must be >= 2", ErrInvalidConfig)
	}
	if c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("%w: max_players_per_table must be >= min_players", ErrInvalidConfig)
	}
	return nil
}
