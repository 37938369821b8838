package models

import "time"

// GamePhase is the table state machine position. The streets double as the
// betting-round marker; finished is terminal.
type GamePhase string

const (
	PhaseWaiting  GamePhase = "waiting"
	PhasePreflop  GamePhase = "preflop"
	PhaseFlop     GamePhase = "flop"
	PhaseTurn     GamePhase = "turn"
	PhaseRiver    GamePhase = "river"
	PhaseShowdown GamePhase = "showdown"
	PhaseFinished GamePhase = "finished"
)

// IsStreet reports whether the phase is a live betting round.
func (p GamePhase) IsStreet() bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

// BlindLevel is one rung of a tournament blind ladder. Duration is in
// seconds; the last level runs until the tournament ends.
type BlindLevel struct {
	Level      int `json:"level"`
	SmallBlind int `json:"smallBlind"`
	BigBlind   int `json:"bigBlind"`
	Ante       int `json:"ante"`
	Duration   int `json:"duration"`
}

// TableConfig is fixed at table creation.
type TableConfig struct {
	MaxPlayers    int                `json:"maxPlayers"`
	StartingChips int                `json:"startingChips"`
	Levels        []BlindLevel       `json:"levels"`
	ActionTimeout int                `json:"actionTimeout"` // seconds, 0 disables
	Eligibility   *EligibilityConfig `json:"eligibility,omitempty"`
}

// SidePot is reserved in the data model; settlement currently awards one
// undivided pot split evenly among winners.
type SidePot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
}

// Winner records one share of a settled pot.
type Winner struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"playerName"`
	Amount    int    `json:"amount"`
	HandRank  string `json:"handRank"`
	HandCards []Card `json:"handCards,omitempty"`
}

// GameState is the complete persisted state of one table. The engine takes
// the latest state, applies one action and returns; loading and saving
// between actions is the caller's job.
type GameState struct {
	TableID        string       `json:"tableId"`
	TournamentID   string       `json:"tournamentId,omitempty"`
	Phase          GamePhase    `json:"phase"`
	Pot            int          `json:"pot"`
	SidePots       []SidePot    `json:"sidePots,omitempty"`
	CommunityCards []Card       `json:"communityCards"`
	CurrentBet     int          `json:"currentBet"`
	MinRaise       int          `json:"minRaise"`
	DealerSeat     int          `json:"dealerSeat"`
	ActiveSeat     int          `json:"activeSeat"`
	Players        []*Player    `json:"players"` // indexed by seat, nil = empty
	Deck           *Deck        `json:"deck,omitempty"`
	BlindLevel     int          `json:"blindLevel"` // index into Config.Levels
	LevelStartedAt time.Time    `json:"levelStartedAt"`
	HandNumber     int          `json:"handNumber"`
	LastActionTime time.Time    `json:"lastActionTime"`
	Winners        []Winner     `json:"winners,omitempty"`
	Config         TableConfig  `json:"config"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// CurrentLevel returns the active blind level, clamped to the ladder.
func (gs *GameState) CurrentLevel() BlindLevel {
	if len(gs.Config.Levels) == 0 {
		return BlindLevel{}
	}
	idx := gs.BlindLevel
	if idx < 0 {
		idx = 0
	}
	if idx >= len(gs.Config.Levels) {
		idx = len(gs.Config.Levels) - 1
	}
	return gs.Config.Levels[idx]
}

// PlayerByID returns the seated player with the given identity, or nil.
func (gs *GameState) PlayerByID(id string) *Player {
	for _, p := range gs.Players {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// ActivePlayer returns the player whose turn it is, or nil outside a street.
func (gs *GameState) ActivePlayer() *Player {
	if !gs.Phase.IsStreet() {
		return nil
	}
	if gs.ActiveSeat < 0 || gs.ActiveSeat >= len(gs.Players) {
		return nil
	}
	return gs.Players[gs.ActiveSeat]
}

// SeatedCount counts occupied seats.
func (gs *GameState) SeatedCount() int {
	n := 0
	for _, p := range gs.Players {
		if p != nil {
			n++
		}
	}
	return n
}

// ConnectedCount counts occupied seats whose player is still connected.
func (gs *GameState) ConnectedCount() int {
	n := 0
	for _, p := range gs.Players {
		if p != nil && !p.Disconnected {
			n++
		}
	}
	return n
}
