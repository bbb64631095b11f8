// Package tournament is the coordinator (C6): registration, table
// creation and rebalancing, blind schedule, the per-table timeout
// scheduler, and elimination ordering. It serializes every operation
// that touches cross-table state; table engines themselves serialize
// their own mutations independently (spec §5).
package tournament

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"

	"feltengine/config"
	"feltengine/internal/engine"
	"feltengine/internal/rules"
	"feltengine/internal/sink"
	"feltengine/internal/telemetry"
	"feltengine/pkg/rng"
)

type Status int

const (
	StatusRegistration Status = iota
	StatusRunning
	StatusPaused
	StatusFinished
)

func (s Status) String() string {
	names := []string{"registration", "running", "paused", "finished"}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// RegisteredPlayer is one entry in the tournament's player roster
// (spec §4.4.1; team_name is a supplemented feature from the
// original implementation's registration request).
type RegisteredPlayer struct {
	ID           string
	Username     string
	TeamName     string
	Credential   string
	RegisteredAt time.Time
}

// Elimination is one entry in the bust-out order (spec §3).
type Elimination struct {
	PlayerID    string
	Username    string
	Position    int
	TableID     string
	Reason      string
	EliminatedAt time.Time
}

var (
	ErrNotRegistrationPhase = fmt.Errorf("tournament: not accepting registration")
	ErrDuplicateUsername    = fmt.Errorf("tournament: username already registered")
	ErrNotEnoughRegistered  = fmt.Errorf("tournament: not enough registered players")
	ErrNotRunning           = fmt.Errorf("tournament: not running")
	ErrNotPaused            = fmt.Errorf("tournament: not paused")
	ErrUnknownCredential    = fmt.Errorf("tournament: unknown credential")
	ErrPlayerNotAtTable     = fmt.Errorf("tournament: player is not seated at any table")
	ErrUnknownPlayer        = fmt.Errorf("tournament: unknown player")
)

// Coordinator owns every piece of cross-table tournament state. All
// mutating methods take the coordinator lock; table engines are
// never called into from outside this serial context.
type Coordinator struct {
	mu sync.Mutex

	cfg    config.Config
	status Status

	registered     map[string]*RegisteredPlayer
	credentialToID map[string]string
	usernameTaken  map[string]bool

	tables      map[string]*engine.Table
	playerTable map[string]string

	eliminations []Elimination
	handsPlayed  int
	startTime    time.Time

	blindLevel int
	smallBlind int64
	bigBlind   int64

	timeouts map[string]*quartz.Timer // table id -> armed timeout
	// generation guards the race between a firing timer and a
	// concurrently submitted action (spec §5 "Timeout races"): a
	// timer fire only takes effect if the table's generation hasn't
	// moved on since it was armed.
	generation map[string]uint64

	clock  quartz.Clock
	rng    *rng.System
	sink   sink.ConnectionSink
	logger *telemetry.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a coordinator in the REGISTRATION phase.
func New(cfg config.Config, clock quartz.Clock, rngSource *rng.System, connSink sink.ConnectionSink) *Coordinator {
	if connSink == nil {
		connSink = sink.NopSink{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		cfg:            cfg,
		status:         StatusRegistration,
		registered:     make(map[string]*RegisteredPlayer),
		credentialToID: make(map[string]string),
		usernameTaken:  make(map[string]bool),
		tables:         make(map[string]*engine.Table),
		playerTable:    make(map[string]string),
		timeouts:       make(map[string]*quartz.Timer),
		generation:     make(map[string]uint64),
		blindLevel:     1,
		smallBlind:     cfg.SmallBlind,
		bigBlind:       cfg.BigBlind,
		clock:          clock,
		rng:            rngSource,
		sink:           connSink,
		logger:         telemetry.NewLogger("[tournament]"),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Shutdown stops every table's loop and cancels outstanding timers.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
	for _, timer := range c.timeouts {
		timer.Stop()
	}
	for _, t := range c.tables {
		t.Stop()
	}
}

// Register implements spec §4.4.1.
func (c *Coordinator) Register(username, teamName string) (*RegisteredPlayer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusRegistration {
		return nil, ErrNotRegistrationPhase
	}

	lower := strings.ToLower(username)
	if c.usernameTaken[lower] {
		return nil, ErrDuplicateUsername
	}

	id := fmt.Sprintf("player_%d_%x", len(c.registered)+1, c.rng.RandomBytes(4))
	credential := fmt.Sprintf("%x", c.rng.RandomBytes(32)) // 256-bit credential

	player := &RegisteredPlayer{
		ID:           id,
		Username:     username,
		TeamName:     teamName,
		Credential:   credential,
		RegisteredAt: time.Now(),
	}
	c.registered[id] = player
	c.credentialToID[credential] = id
	c.usernameTaken[lower] = true

	telemetry.RegisteredPlayers.Set(float64(len(c.registered)))
	return player, nil
}

// Authenticate resolves a credential to a registered player id.
func (c *Coordinator) Authenticate(credential string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.credentialToID[credential]
	if !ok {
		return "", ErrUnknownCredential
	}
	return id, nil
}

// Start implements spec §4.4.2.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusRegistration {
		return ErrNotRegistrationPhase
	}
	if len(c.registered) < c.cfg.MinPlayers {
		return ErrNotEnoughRegistered
	}

	c.createTables()

	c.status = StatusRunning
	c.startTime = time.Now()

	for tableID, table := range c.tables {
		table.Start(c.ctx)
		if err := table.StartHand(); err != nil {
			continue
		}
		telemetry.HandsStarted.WithLabelValues(tableID).Inc()
		c.broadcastTableState(tableID)
		c.armTimeout(tableID)
	}

	telemetry.ActiveTables.Set(float64(len(c.tables)))
	return nil
}

// createTables shuffles the roster and partitions into ceil(N/max)
// tables, round-robin so sizes differ by at most 1 (spec §4.4.2).
func (c *Coordinator) createTables() {
	ids := make([]string, 0, len(c.registered))
	for id := range c.registered {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic base order before shuffling
	rand.New(rand.NewSource(int64(c.rng.RandomUint64()))).Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	maxPerTable := c.cfg.MaxPlayersPerTable
	numTables := (len(ids) + maxPerTable - 1) / maxPerTable
	if numTables == 0 {
		numTables = 1
	}

	assignments := make([][]string, numTables)
	for i, id := range ids {
		t := i % numTables
		assignments[t] = append(assignments[t], id)
	}

	for idx, members := range assignments {
		if len(members) < 2 {
			continue
		}
		tableID := fmt.Sprintf("table_%d", idx+1)
		tableCfg := rules.TableConfig{
			TableID:                    tableID,
			StartingChips:              c.cfg.StartingChips,
			SmallBlind:                 c.smallBlind,
			BigBlind:                   c.bigBlind,
			MinPlayers:                 2,
			MaxPlayers:                 maxPerTable,
			ActionTimeoutSeconds:       c.cfg.ActionTimeoutSeconds,
			BlindIncreaseIntervalHands: c.cfg.BlindIncreaseIntervalHands,
			BlindIncreaseMultiplier:    c.cfg.BlindIncreaseMultiplier,
		}
		table, err := engine.NewTable(tableCfg, c.rng, c.onHandComplete)
		if err != nil {
			c.logger.Warn("failed to create %s: %v", tableID, err)
			continue
		}
		for _, id := range members {
			rp := c.registered[id]
			if err := table.AddPlayer(id, rp.Username, c.cfg.StartingChips); err != nil {
				c.logger.Warn("failed to seat %s at %s: %v", rp.Username, tableID, err)
				continue
			}
			c.playerTable[id] = tableID
		}
		c.tables[tableID] = table
	}
}

// onHandComplete is invoked by a table's engine off its own
// goroutine when a hand reaches HAND_COMPLETE; it re-enters the
// coordinator's serial context to run the between-hands sequence.
func (c *Coordinator) onHandComplete(ev engine.HandCompleteEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handleHandComplete(ev.TableID)
}

// Dispatch implements spec §4.4.3.
func (c *Coordinator) Dispatch(playerID string, actionType rules.ActionType, amount int64) error {
	c.mu.Lock()
	if c.status != StatusRunning {
		c.mu.Unlock()
		return ErrNotRunning
	}
	tableID, ok := c.playerTable[playerID]
	if !ok {
		c.mu.Unlock()
		return ErrPlayerNotAtTable
	}
	table := c.tables[tableID]
	if table == nil {
		c.mu.Unlock()
		return ErrPlayerNotAtTable
	}
	c.disarmTimeout(tableID)
	c.mu.Unlock()

	start := time.Now()
	result := make(chan error, 1)
	if err := table.SubmitAction(c.ctx, engine.ActionRequest{
		PlayerID: playerID, Action: actionType, Amount: amount, Result: result,
	}); err != nil {
		return err
	}
	err := <-result
	telemetry.ActionLatency.WithLabelValues(actionType.String()).Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		telemetry.ActionsRejected.WithLabelValues(err.Error()).Inc()
		// invalid action: rearm timeout for the SAME player, no auto-advance.
		c.armTimeout(tableID)
		return err
	}

	c.broadcastTableState(tableID)

	state := table.State()
	if state.Phase == rules.PhaseHandComplete {
		c.handsPlayed++
		telemetry.HandsCompleted.WithLabelValues(tableID).Inc()
		c.handleHandComplete(tableID)
	} else {
		c.armTimeout(tableID)
	}
	return nil
}

// broadcastTableState pushes the table's public state to its seated
// players (each their own envelope, with hole cards visible only to
// themselves) and to viewers (hole cards elided unless at showdown).
// Called with the coordinator lock held.
func (c *Coordinator) broadcastTableState(tableID string) {
	table := c.tables[tableID]
	if table == nil {
		return
	}
	state := table.State()
	now := time.Now().UnixMilli()

	for playerID := range state.Players {
		c.sink.SendToPlayer(playerID, sink.Envelope{
			Type:      "game_state",
			Data:      publicState(state, playerID),
			Timestamp: now,
		})
	}
	c.sink.BroadcastToViewers(sink.Envelope{
		Type:      "game_state",
		Data:      publicState(state, ""),
		Timestamp: now,
	})
}

// publicState redacts hole cards belonging to anyone other than
// viewerID (empty string means "no one", i.e. the viewer feed),
// except once the hand has reached showdown where all remaining
// contenders' cards are revealed (spec §6.2).
func publicState(state rules.GameState, viewerID string) map[string]any {
	reveal := state.Phase == rules.PhaseShowdown || state.Phase == rules.PhaseHandComplete

	players := make(map[string]any, len(state.Players))
	for id, p := range state.Players {
		entry := map[string]any{
			"username":     p.Username,
			"chips":        p.Chips,
			"current_bet":  p.CurrentBet,
			"total_bet":    p.TotalBet,
			"status":       p.Status.String(),
			"is_dealer":    p.IsDealer,
			"is_small_blind": p.IsSmallBind,
			"is_big_blind": p.IsBigBlind,
		}
		if id == viewerID || (reveal && p.Status != rules.StatusFolded) {
			entry["hole_cards"] = p.HoleCards
		}
		players[id] = entry
	}

	return map[string]any{
		"game_id":         state.GameID,
		"table_id":        state.TableID,
		"hand_number":     state.HandNumber,
		"phase":           state.Phase.String(),
		"round":           state.Round.String(),
		"players":         players,
		"community_cards": state.CommunityCards,
		"pots":            state.Pots,
		"current_player":  state.CurrentPlayer,
		"current_bet":     state.CurrentBet,
		"min_raise":       state.MinRaise,
		"action_history":  state.ActionHistory,
		"hand_winners":    state.HandWinners,
	}
}

// armTimeout starts the per-decision clock for the table's current
// player (spec §4.4.6). No-op if timeouts are disabled or no player
// is currently owed an action. Called with the lock held.
func (c *Coordinator) armTimeout(tableID string) {
	if !c.cfg.TimeoutEnabled() {
		return
	}
	table := c.tables[tableID]
	if table == nil {
		return
	}
	state := table.State()
	if state.CurrentPlayer == "" || state.Phase != rules.PhaseBetting {
		return
	}

	c.generation[tableID]++
	gen := c.generation[tableID]
	playerID := state.CurrentPlayer

	c.timeouts[tableID] = c.clock.AfterFunc(
		time.Duration(c.cfg.ActionTimeoutSeconds)*time.Second,
		func() { c.onTimeout(tableID, playerID, gen) },
	)
}

// disarmTimeout cancels the table's outstanding timer, if any.
// Called with the lock held.
func (c *Coordinator) disarmTimeout(tableID string) {
	if timer, ok := c.timeouts[tableID]; ok {
		timer.Stop()
		delete(c.timeouts, tableID)
	}
	c.generation[tableID]++
}

// onTimeout fires on the clock's own goroutine. It re-enters the
// coordinator's serial context and auto-folds the timed-out player,
// unless the table has moved on (generation race, spec §5) since the
// timer was armed.
func (c *Coordinator) onTimeout(tableID, playerID string, gen uint64) {
	c.mu.Lock()
	if c.generation[tableID] != gen || c.status != StatusRunning {
		c.mu.Unlock()
		return
	}
	table := c.tables[tableID]
	if table == nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	telemetry.TimeoutsFired.WithLabelValues(tableID).Inc()

	result := make(chan error, 1)
	if err := table.SubmitAction(c.ctx, engine.ActionRequest{
		PlayerID: playerID, Action: rules.ActionFold, Result: result,
	}); err != nil {
		return
	}
	err := <-result

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation[tableID] != gen {
		return
	}
	if err != nil {
		c.armTimeout(tableID)
		return
	}
	c.broadcastTableState(tableID)

	state := table.State()
	if state.Phase == rules.PhaseHandComplete {
		c.handsPlayed++
		telemetry.HandsCompleted.WithLabelValues(tableID).Inc()
		c.handleHandComplete(tableID)
	} else {
		c.armTimeout(tableID)
	}
}

// handleHandComplete runs the between-hands sequence (spec §4.4.4):
// detect eliminations, broadcast them, check for tournament end,
// check for table closure, check for blind escalation, pause, and
// deal the next hand. Called with the lock held.
func (c *Coordinator) handleHandComplete(tableID string) {
	table := c.tables[tableID]
	if table == nil {
		return
	}
	state := table.State()

	for _, id := range state.PlayerOrder {
		p := state.Players[id]
		if p.Chips <= 0 && p.Status != rules.StatusEliminated && c.playerTable[id] == tableID {
			c.eliminate(tableID, id, p.Username, "busted")
		}
	}

	if c.remainingPlayers() <= 1 {
		c.endTournament()
		return
	}

	if table.PlayerCount() < 2 {
		c.handleTableClosure(tableID)
	}

	c.checkBlindIncrease()

	if c.status != StatusRunning {
		return
	}

	c.clock.AfterFunc(c.cfg.InterHandSettleDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.dealNextHand(tableID)
	})
}

// eliminate records a bust-out and broadcasts it. Position counts
// down from the field size as players go out, matching the original
// implementation's `len(registered) - len(eliminations)`.
func (c *Coordinator) eliminate(tableID, playerID, username, reason string) {
	position := len(c.registered) - len(c.eliminations)
	elim := Elimination{
		PlayerID:     playerID,
		Username:     username,
		Position:     position,
		TableID:      tableID,
		Reason:       reason,
		EliminatedAt: time.Now(),
	}
	c.eliminations = append(c.eliminations, elim)
	delete(c.playerTable, playerID)
	if t := c.tables[tableID]; t != nil {
		t.RemovePlayer(playerID)
	}
	telemetry.EliminationsTotal.Inc()

	c.sink.BroadcastToViewers(sink.Envelope{
		Type: "elimination",
		Data: map[string]any{
			"player_id": playerID,
			"username":  username,
			"position":  position,
			"reason":    reason,
		},
		Timestamp: time.Now().UnixMilli(),
	})
}

// remainingPlayers counts registered players who have not been
// eliminated.
func (c *Coordinator) remainingPlayers() int {
	return len(c.registered) - len(c.eliminations)
}

// dealNextHand starts the next hand at a table once the settle delay
// has passed. It does nothing if the tournament is not running, the
// table is gone, the table's hand is no longer complete (a hand was
// already dealt), or StartHand fails; table closure and tournament end
// are not re-checked here. Called with the lock held.
func (c *Coordinator) dealNextHand(tableID string) {
	if c.status != StatusRunning {
		return
	}
	table := c.tables[tableID]
	if table == nil {
		return
	}
	if table.State().Phase != rules.PhaseHandComplete {
		return
	}
	if err := table.StartHand(); err != nil {
		return
	}
	telemetry.HandsStarted.WithLabelValues(tableID).Inc()
	c.broadcastTableState(tableID)
	c.armTimeout(tableID)
}

// handleTableClosure implements spec §4.4.5: when a table drops below
// two active players, its survivor(s) are moved to the table (other
// than their own) with the fewest players, lowest table id breaking
// ties. Called with the lock held.
func (c *Coordinator) handleTableClosure(tableID string) {
	closing := c.tables[tableID]
	if closing == nil {
		return
	}

	var survivors []string
	state := closing.State()
	for _, id := range state.PlayerOrder {
		p := state.Players[id]
		if p.Status != rules.StatusEliminated && p.Status != rules.StatusDisconnected {
			survivors = append(survivors, id)
		}
	}

	if len(c.tables) <= 1 {
		// lone table left: nothing to rebalance into.
		return
	}

	for _, playerID := range survivors {
		dest := c.fewestPlayersTable(tableID)
		if dest == "" {
			continue
		}
		destTable := c.tables[dest]
		rp := c.registered[playerID]
		chips := state.Players[playerID].Chips
		if err := destTable.AddPlayer(playerID, rp.Username, chips); err != nil {
			c.logger.Warn("rebalance: failed to seat %s at %s: %v", playerID, dest, err)
			continue
		}
		c.playerTable[playerID] = dest
		closing.RemovePlayer(playerID)

		c.sink.SendToPlayer(playerID, sink.Envelope{
			Type: "table_change",
			Data: map[string]any{"new_table_id": dest},
			Timestamp: time.Now().UnixMilli(),
		})
	}

	closing.Stop()
	delete(c.tables, tableID)
	telemetry.ActiveTables.Set(float64(len(c.tables)))
}

// fewestPlayersTable returns the id of the table (other than
// excludeID) with the fewest seated players, lowest id breaking ties.
func (c *Coordinator) fewestPlayersTable(excludeID string) string {
	ids := make([]string, 0, len(c.tables))
	for id := range c.tables {
		if id != excludeID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	best := ""
	bestCount := -1
	for _, id := range ids {
		count := c.tables[id].PlayerCount()
		if bestCount == -1 || count < bestCount {
			best = id
			bestCount = count
		}
	}
	return best
}

// checkBlindIncrease implements spec §4.4.4's geometric blind
// schedule: level = 1 + floor(hands_played / interval), blinds scaled
// by multiplier^(level-1) off the base blinds. Called with the lock
// held.
func (c *Coordinator) checkBlindIncrease() {
	if !c.cfg.BlindEscalationEnabled() {
		return
	}
	newLevel := 1 + c.handsPlayed/c.cfg.BlindIncreaseIntervalHands
	if newLevel <= c.blindLevel {
		return
	}
	c.blindLevel = newLevel

	scale := 1.0
	for i := 1; i < newLevel; i++ {
		scale *= c.cfg.BlindIncreaseMultiplier
	}
	c.smallBlind = int64(float64(c.cfg.SmallBlind) * scale)
	c.bigBlind = int64(float64(c.cfg.BigBlind) * scale)

	for _, table := range c.tables {
		table.UpdateBlinds(c.smallBlind, c.bigBlind)
	}
	telemetry.BlindLevel.Set(float64(c.blindLevel))

	c.sink.BroadcastToViewers(sink.Envelope{
		Type: "blind_increase",
		Data: map[string]any{
			"level":       c.blindLevel,
			"small_blind": c.smallBlind,
			"big_blind":   c.bigBlind,
		},
		Timestamp: time.Now().UnixMilli(),
	})
}

// endTournament implements spec §4.4.4's end condition: the lone
// remaining player (if any) takes first, eliminations reversed fill
// the rest of the standings. Called with the lock held.
func (c *Coordinator) endTournament() {
	c.status = StatusFinished

	for tableID, timer := range c.timeouts {
		timer.Stop()
		delete(c.timeouts, tableID)
	}
	for _, table := range c.tables {
		table.Stop()
	}

	standings := make([]map[string]any, 0, len(c.registered))
	for _, id := range c.survivingPlayerIDs() {
		rp := c.registered[id]
		standings = append(standings, map[string]any{
			"position": 1,
			"player_id": id,
			"username":  rp.Username,
		})
	}
	for i := len(c.eliminations) - 1; i >= 0; i-- {
		e := c.eliminations[i]
		standings = append(standings, map[string]any{
			"position":  len(standings) + 1,
			"player_id": e.PlayerID,
			"username":  e.Username,
			"reason":    e.Reason,
		})
	}

	c.sink.BroadcastToViewers(sink.Envelope{
		Type:      "tournament_complete",
		Data:      map[string]any{"standings": standings},
		Timestamp: time.Now().UnixMilli(),
	})
	telemetry.ActiveTables.Set(0)
}

// survivingPlayerIDs returns the registered player ids who have not
// been eliminated (normally zero or one, at the moment the tournament
// ends).
func (c *Coordinator) survivingPlayerIDs() []string {
	eliminated := make(map[string]bool, len(c.eliminations))
	for _, e := range c.eliminations {
		eliminated[e.PlayerID] = true
	}
	var ids []string
	for id := range c.registered {
		if !eliminated[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Deregister removes a player from the roster before the tournament
// starts (spec §6.3's DELETE /admin/player/{id}, registration-phase
// only — once running, use Kick instead).
func (c *Coordinator) Deregister(playerID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusRegistration {
		return "", ErrNotRegistrationPhase
	}
	rp, ok := c.registered[playerID]
	if !ok {
		return "", ErrUnknownPlayer
	}
	delete(c.registered, playerID)
	delete(c.credentialToID, rp.Credential)
	delete(c.usernameTaken, strings.ToLower(rp.Username))
	telemetry.RegisteredPlayers.Set(float64(len(c.registered)))
	return rp.Username, nil
}

// Kick implements spec §6.3's forced-elimination admin action: the
// player is folded out of their current hand, zeroed, and recorded as
// eliminated with reason "kicked".
func (c *Coordinator) Kick(playerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rp, ok := c.registered[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	tableID, atTable := c.playerTable[playerID]
	if atTable {
		if table := c.tables[tableID]; table != nil {
			table.RemovePlayer(playerID)
		}
	}
	c.eliminate(tableID, playerID, rp.Username, "kicked")
	return nil
}

// Pause implements spec §6.3: outstanding timers are disarmed and no
// new hands are dealt until Resume. Hands in progress stay frozen:
// Dispatch and timeouts reject every action until Resume.
func (c *Coordinator) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusRunning {
		return ErrNotRunning
	}
	c.status = StatusPaused
	for tableID, timer := range c.timeouts {
		timer.Stop()
		delete(c.timeouts, tableID)
	}
	return nil
}

// Resume re-arms timeouts and resumes dealing new hands.
func (c *Coordinator) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPaused {
		return ErrNotPaused
	}
	c.status = StatusRunning
	for tableID, table := range c.tables {
		if table.State().Phase == rules.PhaseHandComplete {
			c.dealNextHand(tableID)
			continue
		}
		c.armTimeout(tableID)
	}
	return nil
}

// Status reports the coordinator's current lifecycle phase.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Snapshot returns the spec §6.4 admin status payload.
func (c *Coordinator) Snapshot() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	recent := c.eliminations
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	elimOut := make([]map[string]any, 0, len(recent))
	for _, e := range recent {
		elimOut = append(elimOut, map[string]any{
			"player_id": e.PlayerID,
			"username":  e.Username,
			"position":  e.Position,
			"reason":    e.Reason,
		})
	}

	return map[string]any{
		"status":             c.status.String(),
		"registered_players": len(c.registered),
		"remaining_players":  c.remainingPlayers(),
		"active_tables":      len(c.tables),
		"hands_played":       c.handsPlayed,
		"current_blinds": map[string]any{
			"small": c.smallBlind,
			"big":   c.bigBlind,
			"level": c.blindLevel,
		},
		"start_time":   c.startTime,
		"eliminations": elimOut,
	}
}

// PlayerList returns every registered player's id, username and team,
// for the spec §6.3 admin roster endpoint.
func (c *Coordinator) PlayerList() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.registered))
	ids := make([]string, 0, len(c.registered))
	for id := range c.registered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rp := c.registered[id]
		tableID := c.playerTable[id]
		var chips int64 = c.cfg.StartingChips
		if table := c.tables[tableID]; table != nil {
			if p, ok := table.State().Players[id]; ok {
				chips = p.Chips
			}
		}
		out = append(out, map[string]any{
			"player_id": rp.ID,
			"username":  rp.Username,
			"team_name": rp.TeamName,
			"table_id":  tableID,
			"chips":     chips,
		})
	}
	return out
}

// TableStates returns the public game_state snapshot for every table,
// keyed by table id (spec §6.4).
func (c *Coordinator) TableStates() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.tables))
	for id, table := range c.tables {
		out[id] = publicState(table.State(), "")
	}
	return out
}

// PlayerGameState returns the given player's own view of their table
// (hole cards visible), or ErrPlayerNotAtTable if they're not seated.
func (c *Coordinator) PlayerGameState(playerID string) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tableID, ok := c.playerTable[playerID]
	if !ok {
		return nil, ErrPlayerNotAtTable
	}
	table := c.tables[tableID]
	if table == nil {
		return nil, ErrPlayerNotAtTable
	}
	return publicState(table.State(), playerID), nil
}

// ValidActions returns the legal actions for a player's own turn, for
// clients that want to render affordances rather than guess-and-check.
func (c *Coordinator) ValidActions(playerID string) ([]rules.ValidAction, error) {
	c.mu.Lock()
	tableID, ok := c.playerTable[playerID]
	if !ok {
		c.mu.Unlock()
		return nil, ErrPlayerNotAtTable
	}
	table := c.tables[tableID]
	c.mu.Unlock()
	if table == nil {
		return nil, ErrPlayerNotAtTable
	}
	state := table.State()
	return rules.GetValidActions(&state, playerID), nil
}

// Reset implements spec §6.3: clears tables, eliminations and hand
// history, returning to REGISTRATION with the same registered roster
// (matching the original implementation's reset_tournament, which
// keeps registered_players but clears everything else).
func (c *Coordinator) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for tableID, timer := range c.timeouts {
		timer.Stop()
		delete(c.timeouts, tableID)
	}
	for _, table := range c.tables {
		table.Stop()
	}

	c.tables = make(map[string]*engine.Table)
	c.playerTable = make(map[string]string)
	c.eliminations = nil
	c.handsPlayed = 0
	c.blindLevel = 1
	c.smallBlind = c.cfg.SmallBlind
	c.bigBlind = c.cfg.BigBlind
	c.status = StatusRegistration
	telemetry.ActiveTables.Set(0)
	telemetry.BlindLevel.Set(1)
	return nil
}
