// Package engine owns the per-table hand-lifecycle state machine
// (C4): hand start, betting rounds, round advance, showdown and pot
// distribution. A Table serializes its own state: player actions are
// funneled through its action queue and applied on one goroutine,
// mirroring the teacher's channel-driven game loop, and the other
// mutators (StartHand, AddPlayer, RemovePlayer, UpdateBlinds) take the
// same table lock.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"feltengine/internal/rules"
	"feltengine/pkg/poker"
	"feltengine/pkg/rng"
)

var (
	ErrTableFull        = fmt.Errorf("engine: table is full")
	ErrNoSeatsAvailable = fmt.Errorf("engine: no seats available")
	ErrPlayerNotFound   = fmt.Errorf("engine: player not found")
	ErrNotEnoughPlayers = fmt.Errorf("engine: fewer than two eligible players")
)

// ActionRequest is a player's submitted decision, entering the table
// through its action channel.
type ActionRequest struct {
	PlayerID string
	Action   rules.ActionType
	Amount   int64
	Result   chan error // optional: closed/sent-to once applied
}

// HandCompleteEvent is delivered on the table's completion channel
// whenever a hand reaches HAND_COMPLETE, so the coordinator can run
// its between-hands sequence (spec §4.4.4) without polling.
type HandCompleteEvent struct {
	TableID string
}

// Table is the engine for one physical table: one rules.GameState
// plus the machinery (channels, evaluator, deck) needed to advance
// it.
type Table struct {
	config    rules.TableConfig
	state     rules.GameState
	evaluator *poker.HandEvaluator
	deck      *poker.Deck

	actions  chan ActionRequest
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex

	onHandComplete func(HandCompleteEvent)
}

// NewTable builds a table with validated configuration and a fresh
// CSPRNG-backed deck.
func NewTable(config rules.TableConfig, rngSource *rng.System, onHandComplete func(HandCompleteEvent)) (*Table, error) {
	if err := rules.ValidateConfig(config); err != nil {
		return nil, err
	}

	t := &Table{
		config:         config,
		evaluator:      poker.NewHandEvaluator(),
		deck:           poker.NewDeck(rngSource),
		actions:        make(chan ActionRequest, 16),
		stopChan:       make(chan struct{}),
		onHandComplete: onHandComplete,
	}
	t.state = rules.GameState{
		TableID:       config.TableID,
		Phase:         rules.PhaseWaiting,
		Players:       make(map[string]*rules.Player),
		SmallBlind:    config.SmallBlind,
		BigBlind:      config.BigBlind,
		MinRaise:      config.BigBlind,
		PlayersToAct:  make(map[string]bool),
	}
	return t, nil
}

// Start runs the table's action loop in a goroutine until Stop or
// ctx cancellation.
func (t *Table) Start(ctx context.Context) {
	t.wg.Add(1)
	go t.loop(ctx)
}

// Stop gracefully shuts the table loop down. Stopping an already
// stopped table is a no-op.
func (t *Table) Stop() {
	select {
	case <-t.stopChan:
		return
	default:
	}
	close(t.stopChan)
	t.wg.Wait()
}

func (t *Table) loop(ctx context.Context) {
	defer t.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopChan:
			return
		case req := <-t.actions:
			err := t.applyAction(req)
			if req.Result != nil {
				req.Result <- err
			}
		}
	}
}

// SubmitAction enqueues a player action. It blocks only on the
// channel send, not on processing; pass a Result channel to await
// the outcome synchronously.
func (t *Table) SubmitAction(ctx context.Context, req ActionRequest) error {
	select {
	case <-t.stopChan:
		return fmt.Errorf("engine: table stopped")
	default:
	}
	select {
	case t.actions <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.stopChan:
		return fmt.Errorf("engine: table stopped")
	}
}

// State returns a deep-copied snapshot of the table's game state,
// safe for the caller to read or serialize without holding the
// table's lock.
func (t *Table) State() rules.GameState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.copyState()
}

func (t *Table) copyState() rules.GameState {
	s := t.state
	s.Players = make(map[string]*rules.Player, len(t.state.Players))
	for id, p := range t.state.Players {
		cp := *p
		cp.HoleCards = append([]poker.Card(nil), p.HoleCards...)
		s.Players[id] = &cp
	}
	s.PlayerOrder = append([]string(nil), t.state.PlayerOrder...)
	s.CommunityCards = append([]poker.Card(nil), t.state.CommunityCards...)
	s.Pots = append([]rules.Pot(nil), t.state.Pots...)
	s.ActionHistory = append([]rules.ActionHistoryEntry(nil), t.state.ActionHistory...)
	s.HandWinners = append([]rules.HandWinner(nil), t.state.HandWinners...)
	s.PlayersToAct = make(map[string]bool, len(t.state.PlayersToAct))
	for id, v := range t.state.PlayersToAct {
		s.PlayersToAct[id] = v
	}
	return s
}

// Config returns the table's current configuration.
func (t *Table) Config() rules.TableConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.config
}

// UpdateBlinds propagates a blind-schedule escalation (spec §4.4.4
// step 4) to this table.
func (t *Table) UpdateBlinds(small, big int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.config.SmallBlind = small
	t.config.BigBlind = big
	t.state.SmallBlind = small
	t.state.BigBlind = big
}

// PlayerCount returns the number of seats with a non-eliminated,
// non-disconnected player.
func (t *Table) PlayerCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	count := 0
	for _, p := range t.state.Players {
		if p.Status != rules.StatusEliminated && p.Status != rules.StatusDisconnected {
			count++
		}
	}
	return count
}

// AddPlayer seats a new or rejoining player, preserving their chip
// stack if already known to the table (used both at tournament start
// and during rebalancing, spec §4.4.5).
func (t *Table) AddPlayer(id, username string, chips int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.state.Players[id]; ok {
		existing.Status = rules.StatusActive
		return nil
	}

	if len(t.state.Players) >= t.config.MaxPlayers {
		return ErrTableFull
	}

	t.state.Players[id] = &rules.Player{
		ID:       id,
		Username: username,
		Chips:    chips,
		Status:   rules.StatusActive,
	}
	t.state.PlayerOrder = append(t.state.PlayerOrder, id)
	return nil
}

// RemovePlayer marks a player DISCONNECTED (they stay seated in case
// they reconnect before elimination logic drops them).
func (t *Table) RemovePlayer(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.state.Players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Status = rules.StatusDisconnected
	return nil
}

// EligiblePlayerCount counts seats with chips > 0 and not
// disconnected (spec §4.3.1 precondition for starting a hand).
func (t *Table) eligiblePlayerCount() int {
	count := 0
	for _, p := range t.state.Players {
		if p.Chips > 0 && p.Status != rules.StatusDisconnected && p.Status != rules.StatusEliminated {
			count++
		}
	}
	return count
}

// applyAction validates and processes one queued action under the
// table lock.
func (t *Table) applyAction(req ActionRequest) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	normalized, err := rules.ValidateAction(&t.state, req.PlayerID, req.Action, req.Amount)
	if err != nil {
		return err
	}
	t.processAction(req.PlayerID, req.Action, normalized)
	return nil
}

// processAction mutates chips/bets/status per spec §4.3.2, then runs
// the round-completion check.
func (t *Table) processAction(playerID string, action rules.ActionType, amount int64) {
	player := t.state.Players[playerID]
	oldCurrentBet := t.state.CurrentBet

	switch action {
	case rules.ActionFold:
		player.Status = rules.StatusFolded
		player.LastAction = "fold"

	case rules.ActionCheck:
		player.LastAction = "check"

	case rules.ActionCall:
		t.commit(player, amount)
		player.LastAction = fmt.Sprintf("call %d", amount)

	case rules.ActionBet:
		t.commit(player, amount)
		t.state.CurrentBet = player.CurrentBet
		player.LastAction = fmt.Sprintf("bet %d", amount)

	case rules.ActionRaise:
		t.commit(player, amount)
		t.state.CurrentBet = player.CurrentBet
		player.LastAction = fmt.Sprintf("raise to %d", player.CurrentBet)

	case rules.ActionAllIn:
		t.commit(player, amount)
		if player.CurrentBet > t.state.CurrentBet {
			t.state.CurrentBet = player.CurrentBet
		}
		player.LastAction = fmt.Sprintf("all_in %d", amount)
	}

	if player.Chips == 0 && player.Status == rules.StatusActive {
		player.Status = rules.StatusAllIn
	}

	isBetOrRaise := action == rules.ActionBet || action == rules.ActionRaise ||
		(action == rules.ActionAllIn && player.CurrentBet > oldCurrentBet)
	if isBetOrRaise {
		increment := player.CurrentBet - oldCurrentBet
		// A short all-in raise/bet (increment below the table's
		// min-raise requirement) does not reset anyone's has_acted flag
		// and leaves the min-raise increment as it was; players whose bet
		// no longer matches are only queued again to answer the extra
		// chips.
		if increment >= t.state.MinRaise {
			if increment > t.state.MinRaise {
				t.state.MinRaise = increment
			}
			t.state.LastRaiserID = playerID
			for _, other := range t.state.Players {
				if other.ID != playerID && other.Status == rules.StatusActive {
					other.HasActed = false
					t.state.PlayersToAct[other.ID] = true
				}
			}
		} else {
			for _, other := range t.state.Players {
				if other.ID != playerID && other.Status == rules.StatusActive && other.CurrentBet < t.state.CurrentBet {
					t.state.PlayersToAct[other.ID] = true
				}
			}
		}
	}

	player.HasActed = true
	delete(t.state.PlayersToAct, playerID)

	t.state.AppendAction(rules.ActionHistoryEntry{
		Timestamp: time.Now(),
		PlayerID:  playerID,
		Username:  player.Username,
		Action:    action,
		Amount:    amount,
		Round:     t.state.Round,
		Label:     player.LastAction,
	})

	t.advance()
}

// commit moves `amount` additional chips from the player's stack into
// their round and hand bets; no pot total is kept during the hand (the
// pots are built from TotalBet at hand end in layerSidePots).
func (t *Table) commit(player *rules.Player, amount int64) {
	player.Chips -= amount
	player.CurrentBet += amount
	player.TotalBet += amount
}

// advance runs the round-completion check and either sets the next
// player to act, ends the hand, or moves to the next street.
func (t *Table) advance() {
	if rules.IsBettingRoundComplete(&t.state) {
		contenders := t.state.NonFoldedPlayers()
		if len(contenders) <= 1 {
			t.endHand()
			return
		}
		t.advanceRound()
		return
	}
	t.setNextPlayer()
}

// setNextPlayer walks PlayerOrder clockwise from the current player,
// skipping anyone not owed an action, and arms CurrentPlayer on the
// first match.
func (t *Table) setNextPlayer() {
	order := t.state.PlayerOrder
	n := len(order)
	if n == 0 {
		return
	}
	start := indexOf(order, t.state.CurrentPlayer)
	for i := 1; i <= n; i++ {
		candidate := order[(start+i)%n]
		if t.state.PlayersToAct[candidate] {
			if p := t.state.Players[candidate]; p != nil && p.Status == rules.StatusActive {
				t.state.CurrentPlayer = candidate
				return
			}
		}
	}
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return 0
}

// advanceRound resets per-round fields, deals the next street
// (spec §4.3.3: no burn cards, per §9 open question decision), and
// either arms the next betting round or recurses straight to hand
// end if ≤1 player can still act.
func (t *Table) advanceRound() {
	for _, p := range t.state.Players {
		p.ResetForBettingRound()
	}
	t.state.CurrentBet = 0
	t.state.LastRaiserID = ""
	t.state.MinRaise = t.state.BigBlind

	switch t.state.Round {
	case rules.RoundPreflop:
		t.dealCommunity(3)
		t.state.Round = rules.RoundFlop
	case rules.RoundFlop:
		t.dealCommunity(1)
		t.state.Round = rules.RoundTurn
	case rules.RoundTurn:
		t.dealCommunity(1)
		t.state.Round = rules.RoundRiver
	case rules.RoundRiver:
		t.endHand()
		return
	}

	t.buildPlayersToAct()
	t.setFirstToActPostflop()

	if len(t.state.PlayersStillToAct()) <= 1 {
		t.advanceRound()
	}
}

func (t *Table) dealCommunity(n int) {
	for i := 0; i < n; i++ {
		c, err := t.deck.Deal()
		if err != nil {
			return
		}
		t.state.CommunityCards = append(t.state.CommunityCards, c)
	}
}

// setFirstToActPostflop sets current-player to the first ACTIVE seat
// clockwise from the dealer (spec §4.3.3).
func (t *Table) setFirstToActPostflop() {
	order := t.state.PlayerOrder
	n := len(order)
	if n == 0 {
		return
	}
	for i := 1; i <= n; i++ {
		candidate := order[(t.state.DealerPosition+i)%n]
		if p := t.state.Players[candidate]; p != nil && p.Status == rules.StatusActive {
			t.state.CurrentPlayer = candidate
			return
		}
	}
}

func (t *Table) buildPlayersToAct() {
	t.state.PlayersToAct = make(map[string]bool, len(t.state.Players))
	for id, p := range t.state.Players {
		if p.Status == rules.StatusActive {
			t.state.PlayersToAct[id] = true
		}
	}
}

// endHand implements spec §4.3.4: award the pot to the lone
// survivor, or run showdown and distribute layered side pots.
func (t *Table) endHand() {
	t.state.Phase = rules.PhaseShowdown

	contenders := t.state.NonFoldedPlayers()
	t.layerSidePots()

	if len(contenders) == 1 {
		winner := contenders[0]
		total := t.state.TotalPot()
		winner.Chips += total
		t.state.HandWinners = []rules.HandWinner{{PlayerID: winner.ID, Amount: total}}
	} else {
		t.distributeShowdown(contenders)
	}

	t.state.Pots = nil
	t.state.Phase = rules.PhaseHandComplete

	if t.onHandComplete != nil {
		go t.onHandComplete(HandCompleteEvent{TableID: t.config.TableID})
	}
}

// layerSidePots builds the table's side-pot stack from each
// contender's TotalBet, per the §9 open-question decision to
// implement proper layering rather than a single simplified pot.
// Every distinct TotalBet value among contributors (folded or not)
// forms a boundary: chips up to that boundary from every player who
// contributed are pooled, and only non-folded players whose TotalBet
// reaches the boundary are eligible to win that layer.
func (t *Table) layerSidePots() {
	contributors := make([]*rules.Player, 0, len(t.state.Players))
	for _, p := range t.state.Players {
		if p.TotalBet > 0 {
			contributors = append(contributors, p)
		}
	}

	levels := distinctSortedBets(contributors)

	var pots []rules.Pot
	prev := int64(0)
	for _, level := range levels {
		var amount int64
		var eligible []string
		for _, p := range contributors {
			share := level - prev
			if p.TotalBet < level {
				share = p.TotalBet - prev
			}
			if share < 0 {
				share = 0
			}
			amount += share
			if p.TotalBet >= level && p.Status != rules.StatusFolded {
				eligible = append(eligible, p.ID)
			}
		}
		if amount > 0 {
			pots = append(pots, rules.Pot{Amount: amount, Eligible: eligible})
		}
		prev = level
	}

	t.state.Pots = pots
}

func distinctSortedBets(players []*rules.Player) []int64 {
	seen := make(map[int64]bool)
	var levels []int64
	for _, p := range players {
		if !seen[p.TotalBet] {
			seen[p.TotalBet] = true
			levels = append(levels, p.TotalBet)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

// distributeShowdown evaluates every contender's best hand and splits
// each pot layer among its eligible co-winners.
func (t *Table) distributeShowdown(contenders []*rules.Player) {
	best := make(map[string]poker.EvaluatedHand, len(contenders))
	for _, p := range contenders {
		eval, err := t.evaluator.EvaluateBest(p.HoleCards, t.state.CommunityCards)
		if err != nil {
			continue
		}
		best[p.ID] = eval
	}

	var winners []rules.HandWinner
	for _, pot := range t.state.Pots {
		potWinners := winnersOf(pot.Eligible, best, t.evaluator)
		if len(potWinners) == 0 {
			continue
		}
		share := pot.Amount / int64(len(potWinners))
		remainder := pot.Amount % int64(len(potWinners))

		orderedWinners := orderBySeatFromDealer(t.state.PlayerOrder, t.state.DealerPosition, potWinners)
		for i, id := range orderedWinners {
			amount := share
			if int64(i) < remainder {
				amount++
			}
			t.state.Players[id].Chips += amount
			eval := best[id]
			winners = append(winners, rules.HandWinner{
				PlayerID: id,
				Amount:   amount,
				Category: eval.Category,
				Cards:    eval.Cards[:],
			})
		}
	}

	t.state.HandWinners = winners
}

func winnersOf(eligible []string, best map[string]poker.EvaluatedHand, evaluator *poker.HandEvaluator) []string {
	var top poker.EvaluatedHand
	var winners []string
	first := true
	for _, id := range eligible {
		hand, ok := best[id]
		if !ok {
			continue
		}
		if first {
			top = hand
			winners = []string{id}
			first = false
			continue
		}
		switch evaluator.Compare(hand, top) {
		case 1:
			top = hand
			winners = []string{id}
		case 0:
			winners = append(winners, id)
		}
	}
	return winners
}

// orderBySeatFromDealer returns the subset of ids present in
// winners, ordered starting from the seat left of the dealer — the
// deterministic tie-break for remainder-chip distribution (spec
// §4.3.4).
func orderBySeatFromDealer(order []string, dealerPos int, winners []string) []string {
	winnerSet := make(map[string]bool, len(winners))
	for _, id := range winners {
		winnerSet[id] = true
	}
	n := len(order)
	var out []string
	for i := 1; i <= n; i++ {
		id := order[(dealerPos+i)%n]
		if winnerSet[id] {
			out = append(out, id)
		}
	}
	return out
}

// StartHand implements spec §4.3.1. Callers (the coordinator) must
// hold no expectations about which goroutine this runs on; it
// acquires the table lock itself.
func (t *Table) StartHand() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startHandLocked()
}

func (t *Table) startHandLocked() error {
	if t.eligiblePlayerCount() < 2 {
		return ErrNotEnoughPlayers
	}

	t.state.HandNumber++
	t.state.GameID = uuid.NewString()
	t.state.Phase = rules.PhaseDealing
	t.state.CommunityCards = nil
	t.state.Pots = nil
	t.state.HandWinners = nil

	t.dropEliminatedFromOrder()

	for _, p := range t.state.Players {
		p.ResetForHand()
	}

	t.rotateDealer()
	t.deck.Reset()
	t.dealHoleCards()
	t.postBlinds()

	t.state.Phase = rules.PhaseBetting
	t.state.Round = rules.RoundPreflop
	t.buildPlayersToAct()
	t.setFirstToActPreflop()

	return nil
}

func (t *Table) dropEliminatedFromOrder() {
	var kept []string
	for _, id := range t.state.PlayerOrder {
		p := t.state.Players[id]
		if p != nil && p.Status != rules.StatusEliminated &&
			!(p.Status == rules.StatusDisconnected && p.Chips == 0) {
			kept = append(kept, id)
		}
	}
	t.state.PlayerOrder = kept
}

// rotateDealer advances the button among seats still able to play
// (chips > 0), per spec §4.3.1 step 3.
func (t *Table) rotateDealer() {
	eligible := t.eligibleSeats()
	k := len(eligible)
	if k == 0 {
		return
	}
	if t.state.HandNumber == 1 {
		t.state.DealerPosition = 0
	} else {
		t.state.DealerPosition = (t.state.DealerPosition + 1) % k
	}

	dealerID := eligible[t.state.DealerPosition]
	t.state.Players[dealerID].IsDealer = true

	if k == 2 {
		// heads-up: dealer is also the small blind.
		t.state.Players[dealerID].IsSmallBind = true
		bbID := eligible[(t.state.DealerPosition+1)%k]
		t.state.Players[bbID].IsBigBlind = true
	} else {
		sbID := eligible[(t.state.DealerPosition+1)%k]
		bbID := eligible[(t.state.DealerPosition+2)%k]
		t.state.Players[sbID].IsSmallBind = true
		t.state.Players[bbID].IsBigBlind = true
	}
}

// eligibleSeats returns PlayerOrder filtered to players with chips,
// preserving seat order — the "active seats" the dealer button
// rotates among.
func (t *Table) eligibleSeats() []string {
	var seats []string
	for _, id := range t.state.PlayerOrder {
		if p := t.state.Players[id]; p != nil && p.Chips > 0 {
			seats = append(seats, id)
		}
	}
	return seats
}

func (t *Table) dealHoleCards() {
	ids := t.eligibleSeats()
	for pass := 0; pass < 2; pass++ {
		for _, id := range ids {
			c, err := t.deck.Deal()
			if err != nil {
				return
			}
			t.state.Players[id].HoleCards = append(t.state.Players[id].HoleCards, c)
		}
	}
}

// postBlinds implements spec §4.3.1 step 5: each blind is capped at
// the poster's stack, and current_bet is set to whatever the big
// blind actually paid, even if that's less than the nominal big
// blind because they posted all-in-for-less.
func (t *Table) postBlinds() {
	for _, p := range t.state.Players {
		if p.IsSmallBind {
			t.postBlind(p, t.state.SmallBlind)
		}
	}
	for _, p := range t.state.Players {
		if p.IsBigBlind {
			posted := t.postBlind(p, t.state.BigBlind)
			t.state.CurrentBet = posted
		}
	}
	t.state.MinRaise = t.state.BigBlind
}

func (t *Table) postBlind(p *rules.Player, nominal int64) int64 {
	posted := nominal
	if posted > p.Chips {
		posted = p.Chips
	}
	p.Chips -= posted
	p.CurrentBet = posted
	p.TotalBet = posted
	if posted < nominal {
		p.Status = rules.StatusAllIn
	}
	return posted
}

// setFirstToActPreflop: the seat after the big blind acts first,
// except heads-up where the dealer/small-blind acts first (spec
// §4.3.1 step 6).
func (t *Table) setFirstToActPreflop() {
	eligible := t.eligibleSeats()
	k := len(eligible)
	if k == 0 {
		return
	}
	if k == 2 {
		t.state.CurrentPlayer = eligible[t.state.DealerPosition]
		return
	}
	bbIndex := (t.state.DealerPosition + 2) % k
	for i := 1; i <= k; i++ {
		candidate := eligible[(bbIndex+i)%k]
		if p := t.state.Players[candidate]; p.Status == rules.StatusActive {
			t.state.CurrentPlayer = candidate
			return
		}
	}
}
