// Package config is the recognized-options shape from spec §6.5. The
// config *loading* layer (env vars, files, flags) is out of scope;
// this is a plain struct the caller populates and validates, mirroring
// rules.TableConfig and the original implementation's
// TournamentSettings.
package config

import (
	"fmt"
	"time"
)

type Config struct {
	StartingChips int64 `json:"starting_chips"`
	SmallBlind    int64 `json:"small_blind"`
	BigBlind      int64 `json:"big_blind"`

	MinPlayers         int `json:"min_players"`
	MaxPlayersPerTable int `json:"max_players_per_table"`

	// ActionTimeoutSeconds <= 0 disables timeouts entirely.
	ActionTimeoutSeconds int `json:"action_timeout_seconds"`

	// BlindIncreaseIntervalHands <= 0 disables escalation.
	BlindIncreaseIntervalHands int     `json:"blind_increase_interval_hands"`
	BlindIncreaseMultiplier    float64 `json:"blind_increase_multiplier"`

	// AdminPassword is the HTTP Basic secret for admin endpoints.
	AdminPassword string `json:"-"`

	// InterHandSettleDelay is the brief pause between a hand
	// completing and the next one starting (spec §4.4.4 step 5,
	// "≈3s, configurable").
	InterHandSettleDelay time.Duration `json:"-"`
}

// Default returns a reasonable configuration matching the original
// implementation's TournamentSettings defaults.
func Default() Config {
	return Config{
		StartingChips:              1000,
		SmallBlind:                 10,
		BigBlind:                   20,
		MinPlayers:                 2,
		MaxPlayersPerTable:         6,
		ActionTimeoutSeconds:       30,
		BlindIncreaseIntervalHands: 20,
		BlindIncreaseMultiplier:    1.5,
		InterHandSettleDelay:       3 * time.Second,
	}
}

// Validate enforces spec §6.5's constraints.
func (c Config) Validate() error {
	if c.StartingChips <= 0 {
		return fmt.Errorf("config: starting_chips must be positive")
	}
	if c.SmallBlind <= 0 {
		return fmt.Errorf("config: small_blind must be positive")
	}
	if c.BigBlind < 2*c.SmallBlind {
		return fmt.Errorf("config: big_blind must be >= 2*small_blind")
	}
	if c.MinPlayers < 2 {
		return fmt.Errorf("config: min_players must be >= 2")
	}
	if c.MaxPlayersPerTable < c.MinPlayers {
		return fmt.Errorf("config: max_players_per_table must be >= min_players")
	}
	if c.BlindIncreaseMultiplier < 1 && c.BlindIncreaseIntervalHands > 0 {
		return fmt.Errorf("config: blind_increase_multiplier must be >= 1")
	}
	return nil
}

// TimeoutEnabled reports whether the per-decision timer is armed.
func (c Config) TimeoutEnabled() bool {
	return c.ActionTimeoutSeconds > 0
}

// BlindEscalationEnabled reports whether blinds increase over time.
func (c Config) BlindEscalationEnabled() bool {
	return c.BlindIncreaseIntervalHands > 0
}
