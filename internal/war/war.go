// Package war implements the turn-based battle resolution engine: war
// declaration, per-turn combat resolution, termination, and the economic
// consequences of defeat.
package war

import (
	"errors"
	"time"

	"github.com/talgya/house-wars/internal/battle"
	"github.com/talgya/house-wars/internal/faction"
)

// Status is the lifecycle state of a war. A war is active from declaration
// until a termination condition fires, then ended forever.
type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// MaxTurns is the turn count at which an undecided war ends in a draw.
const MaxTurns = 50

// Caller-facing validation errors. These reject the operation without
// mutating any state.
var (
	ErrWarNotFound    = errors.New("war not found or finished")
	ErrInvalidAction  = errors.New("invalid action")
	ErrInvalidWeather = errors.New("invalid weather")
	ErrInvalidTerrain = errors.New("invalid terrain")
	ErrInvalidScale   = errors.New("invalid battle scale")
	ErrNotEligible    = errors.New("war declaration not eligible")
)

// War is a persistent record of a conflict between two houses. Committed
// soldier counts are snapshotted at declaration; remaining strength each turn
// derives from the snapshot minus cumulative losses, so losses can never
// exceed what was committed.
type War struct {
	ID                int64           `db:"id" json:"id"`
	AttackerID        faction.ID      `db:"attacker_id" json:"attacker_id"`
	DefenderID        faction.ID      `db:"defender_id" json:"defender_id"`
	Status            Status          `db:"status" json:"status"`
	Scale             battle.Scale    `db:"scale" json:"scale"`
	Weather           battle.Weather  `db:"weather" json:"weather"`
	Terrain           battle.Terrain  `db:"terrain" json:"terrain"`
	AttackerCommitted int64           `db:"attacker_committed" json:"attacker_committed"`
	DefenderCommitted int64           `db:"defender_committed" json:"defender_committed"`
	AttackerLosses    int64           `db:"attacker_losses" json:"attacker_losses"`
	DefenderLosses    int64           `db:"defender_losses" json:"defender_losses"`
	WinnerID          *faction.ID     `db:"winner_id" json:"winner_id,omitempty"` // nil after end = draw
	StartedAt         time.Time       `db:"started_at" json:"started_at"`
	EndedAt           *time.Time      `db:"ended_at" json:"ended_at,omitempty"`
}

// AttackerRemaining is the attacker's strength before the current turn.
func (w *War) AttackerRemaining() int64 {
	r := w.AttackerCommitted - w.AttackerLosses
	if r < 0 {
		return 0
	}
	return r
}

// DefenderRemaining is the defender's strength before the current turn.
func (w *War) DefenderRemaining() int64 {
	r := w.DefenderCommitted - w.DefenderLosses
	if r < 0 {
		return 0
	}
	return r
}

// TurnLog is an append-only record of one resolved turn. Turn numbers for a
// war form a contiguous sequence starting at 1.
type TurnLog struct {
	ID                 int64          `db:"id" json:"id"`
	WarID              int64          `db:"war_id" json:"war_id"`
	Turn               int            `db:"turn" json:"turn"`
	AttackerAction     battle.Action  `db:"attacker_action" json:"attacker_action"`
	DefenderAction     battle.Action  `db:"defender_action" json:"defender_action"`
	Outcome            battle.Outcome `db:"outcome" json:"outcome"`
	Result             string         `db:"result" json:"result"`
	AttackerCasualties int64          `db:"attacker_casualties" json:"attacker_casualties"`
	DefenderCasualties int64          `db:"defender_casualties" json:"defender_casualties"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}

// TurnReport is the structured result of one resolved turn, for the
// presentation layer to render.
type TurnReport struct {
	WarID              int64          `json:"war_id"`
	Turn               int            `json:"turn"`
	Attacker           string         `json:"attacker"`
	Defender           string         `json:"defender"`
	AttackerAction     battle.Action  `json:"attacker_action"`
	DefenderAction     battle.Action  `json:"defender_action"`
	AttackerCasualties int64          `json:"attacker_casualties"`
	DefenderCasualties int64          `json:"defender_casualties"`
	AttackerRemaining  int64          `json:"attacker_remaining"`
	DefenderRemaining  int64          `json:"defender_remaining"`
	Outcome            battle.Outcome `json:"outcome"`
	Result             string         `json:"result"`
	WarEnded           bool           `json:"war_ended"`
	WinnerID           *faction.ID    `json:"winner_id,omitempty"`
	Winner             string         `json:"winner,omitempty"`
	Weather            battle.Weather `json:"weather"`
	Terrain            battle.Terrain `json:"terrain"`
}

// StatusView is the current cumulative state of a war plus its recent turns.
type StatusView struct {
	War         *War       `json:"war"`
	Attacker    string     `json:"attacker"`
	Defender    string     `json:"defender"`
	RecentTurns []*TurnLog `json:"recent_turns"`
}

// ResourceDelta adjusts one house's treasury and army as part of a war's end.
type ResourceDelta struct {
	FactionID faction.ID
	Gold      int64
	Soldiers  int64
}

// Seizure marks one holding as taken by the winning house.
type Seizure struct {
	HoldingID int64
	ByID      faction.ID
}

// Ending carries everything that must happen when a war terminates: the
// winner (nil for a draw), the resource transfers, and holding seizures.
type Ending struct {
	WinnerID  *faction.ID
	Transfers []ResourceDelta
	Seizures  []Seizure
}

// TurnCommit is the all-or-nothing mutation for one resolved turn. The store
// must apply every field in a single transaction; a failure leaves no partial
// casualty or log writes behind.
type TurnCommit struct {
	WarID          int64
	AttackerLosses int64    // New cumulative value.
	DefenderLosses int64    // New cumulative value.
	Log            *TurnLog // nil when the war ends without combat.
	End            *Ending  // nil while the war stays active.
}

// Store is the persistence collaborator. Lookup methods return (nil, nil)
// when the record does not exist.
type Store interface {
	Faction(id faction.ID) (*faction.Faction, error)
	// ActiveWars lists active wars, filtered to one house when id != 0.
	ActiveWars(id faction.ID) ([]*War, error)
	War(id int64) (*War, error)
	CreateWar(w *War) (int64, error)
	TurnCount(warID int64) (int, error)
	RecentTurns(warID int64, limit int) ([]*TurnLog, error)
	Holdings(factionID faction.ID) ([]*faction.Holding, error)
	CommitTurn(c *TurnCommit) error
}
