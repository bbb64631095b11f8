// Package rules is the pure predicate layer: given a snapshot of a
// table's game state and a proposed action, decide whether the
// action is legal and what its normalized amount is. Nothing in this
// package mutates state or performs I/O.
package rules

import (
	"time"

	"feltengine/pkg/poker"
)

// GamePhase is the table-level phase, distinct from BettingRound.
type GamePhase int

const (
	PhaseWaiting GamePhase = iota
	PhaseDealing
	PhaseBetting
	PhaseShowdown
	PhaseHandComplete
)

func (p GamePhase) String() string {
	names := []string{"waiting", "dealing", "betting", "showdown", "hand_complete"}
	if int(p) >= 0 && int(p) < len(names) {
		return names[p]
	}
	return "unknown"
}

// BettingRound is the street within a hand.
type BettingRound int

const (
	RoundPreflop BettingRound = iota
	RoundFlop
	RoundTurn
	RoundRiver
	RoundShowdown
)

func (r BettingRound) String() string {
	names := []string{"preflop", "flop", "turn", "river", "showdown"}
	if int(r) >= 0 && int(r) < len(names) {
		return names[r]
	}
	return "unknown"
}

// PlayerStatus is a player's standing within the current hand/table.
type PlayerStatus int

const (
	StatusWaiting PlayerStatus = iota
	StatusActive
	StatusFolded
	StatusAllIn
	StatusEliminated
	StatusDisconnected
)

func (s PlayerStatus) String() string {
	names := []string{"waiting", "active", "folded", "all_in", "eliminated", "disconnected"}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// ActionType is a player's decision type.
type ActionType int

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
	ActionAllIn
)

func (a ActionType) String() string {
	names := []string{"fold", "check", "call", "bet", "raise", "all_in"}
	if int(a) >= 0 && int(a) < len(names) {
		return names[a]
	}
	return "unknown"
}

// ParseActionType maps the wire string used by the bot API (§6.1) to
// an ActionType.
func ParseActionType(s string) (ActionType, bool) {
	switch s {
	case "fold":
		return ActionFold, true
	case "check":
		return ActionCheck, true
	case "call":
		return ActionCall, true
	case "bet":
		return ActionBet, true
	case "raise":
		return ActionRaise, true
	case "all_in":
		return ActionAllIn, true
	default:
		return 0, false
	}
}

// Player is one seat's per-table state.
type Player struct {
	ID          string
	Username    string
	TeamName    string
	Chips       int64
	HoleCards   []poker.Card
	CurrentBet  int64 // this betting round
	TotalBet    int64 // this hand
	Status      PlayerStatus
	SeatIndex   int
	IsDealer    bool
	IsSmallBind bool
	IsBigBlind  bool
	HasActed    bool
	LastAction  string
}

// ResetForHand clears every per-hand field, called at the start of
// each new deal (spec §4.3.1 step 2).
func (p *Player) ResetForHand() {
	p.HoleCards = nil
	p.CurrentBet = 0
	p.TotalBet = 0
	p.IsDealer = false
	p.IsSmallBind = false
	p.IsBigBlind = false
	p.HasActed = false
	p.LastAction = ""
	if p.Status != StatusEliminated && p.Status != StatusDisconnected {
		p.Status = StatusActive
	}
}

// ResetForBettingRound clears the per-round fields at a street change.
func (p *Player) ResetForBettingRound() {
	p.CurrentBet = 0
	if p.Status == StatusActive {
		p.HasActed = false
	}
}

// CanAct reports whether the player is eligible to take an action on
// their turn right now (has chips and hasn't folded/busted/left).
func (p *Player) CanAct() bool {
	return p.Status == StatusActive
}

// Pot is one layer of the table's pot stack: an amount plus the ids
// eligible to win it.
type Pot struct {
	Amount   int64
	Eligible []string
}

// ActionHistoryEntry is one bounded entry in the hand's action log.
type ActionHistoryEntry struct {
	Timestamp time.Time
	PlayerID  string
	Username  string
	Action    ActionType
	Amount    int64
	Round     BettingRound
	Label     string
}

// HandWinner is one co-winner's share of one pot, recorded at
// showdown for the external state envelope.
type HandWinner struct {
	PlayerID string
	Amount   int64
	Category poker.HandCategory
	Cards    []poker.Card
}

// TableConfig holds the recognized options from spec §6.5.
type TableConfig struct {
	TableID                     string
	StartingChips               int64
	SmallBlind                  int64
	BigBlind                    int64
	MinPlayers                  int
	MaxPlayers                  int
	ActionTimeoutSeconds        int
	BlindIncreaseIntervalHands  int
	BlindIncreaseMultiplier     float64
}

// GameState is the full per-table snapshot that C3 validates against
// and C4 owns and mutates. Field names mirror spec §3 DATA MODEL.
type GameState struct {
	GameID         string
	TableID        string
	HandNumber     int
	Phase          GamePhase
	Round          BettingRound
	Players        map[string]*Player
	PlayerOrder    []string // seat order, stable across a hand
	CommunityCards []poker.Card
	Pots           []Pot
	CurrentPlayer  string
	DealerPosition int // index into PlayerOrder
	SmallBlind     int64
	BigBlind       int64
	CurrentBet     int64
	MinRaise       int64
	LastRaiserID   string
	ActionHistory  []ActionHistoryEntry
	HandWinners    []HandWinner
	PlayersToAct   map[string]bool // set of ids still owed an action this round
}

const maxActionHistory = 10

// AppendAction records an action, truncating to the last 10 entries
// per the bounded action history (spec §3, pinned at 10 by the
// original implementation's to_public_dict).
func (g *GameState) AppendAction(entry ActionHistoryEntry) {
	g.ActionHistory = append(g.ActionHistory, entry)
	if len(g.ActionHistory) > maxActionHistory {
		g.ActionHistory = g.ActionHistory[len(g.ActionHistory)-maxActionHistory:]
	}
}

// ActivePlayers returns players still able to act this hand (ACTIVE
// or ALL_IN), in seat order.
func (g *GameState) ActivePlayers() []*Player {
	var out []*Player
	for _, id := range g.PlayerOrder {
		p := g.Players[id]
		if p != nil && (p.Status == StatusActive || p.Status == StatusAllIn) {
			out = append(out, p)
		}
	}
	return out
}

// PlayersStillToAct returns, in seat order, the ACTIVE players who
// still owe this betting round an action.
func (g *GameState) PlayersStillToAct() []*Player {
	var out []*Player
	for _, id := range g.PlayerOrder {
		if !g.PlayersToAct[id] {
			continue
		}
		p := g.Players[id]
		if p != nil && p.Status == StatusActive {
			out = append(out, p)
		}
	}
	return out
}

// NonFoldedPlayers returns every player who hasn't folded (ACTIVE or
// ALL_IN), in seat order — the contenders for the pot.
func (g *GameState) NonFoldedPlayers() []*Player {
	var out []*Player
	for _, id := range g.PlayerOrder {
		p := g.Players[id]
		if p != nil && p.Status != StatusFolded && p.Status != StatusEliminated && p.Status != StatusDisconnected {
			out = append(out, p)
		}
	}
	return out
}

// TotalPot sums every pot layer.
func (g *GameState) TotalPot() int64 {
	var total int64
	for _, pot := range g.Pots {
		total += pot.Amount
	}
	return total
}
