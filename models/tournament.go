package models

import "time"

type TournamentStatus string

const (
	TournamentRegistering TournamentStatus = "registering"
	TournamentInProgress  TournamentStatus = "in_progress"
	TournamentFinalTable  TournamentStatus = "final_table"
	TournamentFinished    TournamentStatus = "finished"
)

type EntryStatus string

const (
	EntryRegistered EntryStatus = "registered"
	EntryPlaying    EntryStatus = "playing"
	EntryEliminated EntryStatus = "eliminated"
	EntryWinner     EntryStatus = "winner"
)

// EligibilityConfig declares join requirements. How a requirement is
// verified is the checker's business; the coordinator only sees pass/fail
// and a reason.
type EligibilityConfig struct {
	AllowList  []string `json:"allowList,omitempty"`
	MinBalance int      `json:"minBalance,omitempty"`
}

// TournamentConfig is fixed at tournament creation.
type TournamentConfig struct {
	MaxPlayers    int                `json:"maxPlayers"`
	TableSize     int                `json:"tableSize"` // seats per table, default 6
	StartingChips int                `json:"startingChips"`
	Levels        []BlindLevel       `json:"levels"`
	ActionTimeout int                `json:"actionTimeout"`
	Eligibility   *EligibilityConfig `json:"eligibility,omitempty"`
}

// TournamentState is the persisted record of one multi-table tournament.
type TournamentState struct {
	ID              string           `json:"tournamentId"`
	Name            string           `json:"name"`
	Status          TournamentStatus `json:"status"`
	CreatorID       string           `json:"creatorId"`
	Config          TournamentConfig `json:"config"`
	RegisteredCount int              `json:"registeredCount"`
	RemainingCount  int              `json:"remainingCount"`
	TableIDs        []string         `json:"tableIds"`
	FinishOrder     []string         `json:"finishOrder"` // first eliminated first
	WinnerID        string           `json:"winnerId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	StartedAt       time.Time        `json:"startedAt,omitempty"`
}

// TournamentPlayerEntry is the per-player-per-tournament record, mutated by
// the post-hand hook.
type TournamentPlayerEntry struct {
	PlayerID       string      `json:"playerId"`
	Name           string      `json:"playerName"`
	Status         EntryStatus `json:"status"`
	TableID        string      `json:"tableId,omitempty"`
	Chips          int         `json:"chips"`
	FinishPosition int         `json:"finishPosition,omitempty"`
}

// PlayerMoveNotification is written when a player is relocated between
// tables. It is consumed exactly once by the client and then deleted.
type PlayerMoveNotification struct {
	PlayerID  string    `json:"playerId"`
	FromTable string    `json:"fromTable"`
	ToTable   string    `json:"toTable"`
	Seat      int       `json:"seat"`
	MovedAt   time.Time `json:"movedAt"`
}
