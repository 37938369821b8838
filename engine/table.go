package engine

import (
	"fmt"
	"math/rand"
	"time"

	"pokerhub/models"
)

// NewGameState creates a waiting table. Configuration problems are fatal
// here rather than tolerated mid-game.
func NewGameState(tableID string, cfg models.TableConfig) (*models.GameState, error) {
	if cfg.MaxPlayers < 2 || cfg.MaxPlayers > 10 {
		return nil, fmt.Errorf("%w: max players must be between 2 and 10", ErrInvalidConfig)
	}
	if cfg.StartingChips <= 0 {
		return nil, fmt.Errorf("%w: starting chips must be positive", ErrInvalidConfig)
	}
	if cfg.ActionTimeout < 0 {
		cfg.ActionTimeout = 0
	}
	if err := ValidateLevels(cfg.Levels); err != nil {
		return nil, err
	}
	return &models.GameState{
		TableID:        tableID,
		Phase:          models.PhaseWaiting,
		Players:        make([]*models.Player, cfg.MaxPlayers),
		DealerSeat:     -1,
		ActiveSeat:     -1,
		LevelStartedAt: time.Now(),
		Config:         cfg,
		CreatedAt:      time.Now(),
	}, nil
}

// ValidateLevels checks a blind ladder. Amounts must be positive, the big
// blind above the small blind, and blinds must never shrink level to level.
func ValidateLevels(levels []models.BlindLevel) error {
	if len(levels) == 0 {
		return fmt.Errorf("%w: blind ladder cannot be empty", ErrInvalidConfig)
	}
	for i, lvl := range levels {
		if lvl.SmallBlind <= 0 || lvl.BigBlind <= 0 {
			return fmt.Errorf("%w: blind amounts must be positive at level %d", ErrInvalidConfig, i+1)
		}
		if lvl.SmallBlind >= lvl.BigBlind {
			return fmt.Errorf("%w: small blind must be less than big blind at level %d", ErrInvalidConfig, i+1)
		}
		if lvl.Ante < 0 {
			return fmt.Errorf("%w: ante cannot be negative at level %d", ErrInvalidConfig, i+1)
		}
		if i > 0 && lvl.BigBlind < levels[i-1].BigBlind {
			return fmt.Errorf("%w: blinds must not decrease at level %d", ErrInvalidConfig, i+1)
		}
	}
	return nil
}

// AddPlayer seats a player while the table is waiting. Seat -1 takes the
// lowest free seat.
func AddPlayer(gs *models.GameState, playerID, name string, seat int) error {
	if gs.Phase != models.PhaseWaiting {
		return ErrNotWaiting
	}
	if gs.PlayerByID(playerID) != nil {
		return ErrAlreadySeated
	}
	if seat == -1 {
		seat = lowestFreeSeat(gs.Players)
		if seat == -1 {
			return ErrTableFull
		}
	}
	if seat < 0 || seat >= len(gs.Players) {
		return ErrInvalidSeat
	}
	if gs.Players[seat] != nil {
		return ErrSeatTaken
	}
	gs.Players[seat] = models.NewPlayer(playerID, name, seat, gs.Config.StartingChips)
	return nil
}

// RemovePlayer frees the seat while waiting. Once a game is running the
// player is marked disconnected and folded instead, never deleted.
func RemovePlayer(gs *models.GameState, playerID string) error {
	p := gs.PlayerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if gs.Phase == models.PhaseWaiting {
		gs.Players[p.Seat] = nil
		return nil
	}
	p.Disconnected = true
	if p.Status == models.StatusActive {
		p.Status = models.StatusFolded
		p.LastAction = models.ActionFold
	}
	return nil
}

// StartGame begins play from waiting: a uniformly random initial dealer is
// chosen among dealable players, then the first hand is dealt.
func StartGame(gs *models.GameState) error {
	if gs.Phase != models.PhaseWaiting {
		return ErrNotWaiting
	}
	var seats []int
	for i, p := range gs.Players {
		if canBeDealt(p) {
			seats = append(seats, i)
		}
	}
	if len(seats) < 2 {
		return ErrNotEnoughPlayers
	}
	gs.DealerSeat = seats[rand.Intn(len(seats))]
	return StartHand(gs)
}

// NextHand deals the following hand after a showdown. The trigger comes
// from outside the engine.
func NextHand(gs *models.GameState) error {
	if gs.Phase != models.PhaseShowdown {
		if gs.Phase == models.PhaseFinished {
			return ErrTableFinished
		}
		return ErrHandInProgress
	}
	return StartHand(gs)
}

// StartHand advances the button, posts blinds and antes, deals hole cards
// and opens preflop betting. With only one funded player left the table
// goes straight to finished.
func StartHand(gs *models.GameState) error {
	if gs.Phase == models.PhaseFinished {
		return ErrTableFinished
	}
	if gs.Phase.IsStreet() {
		return ErrHandInProgress
	}

	gs.Winners = nil
	gs.SidePots = nil

	dealable := countPlayers(gs.Players, canBeDealt)
	if dealable < 2 {
		if last := soleChipHolder(gs); last != nil {
			declareTableWinner(gs, last)
			return nil
		}
		gs.Phase = models.PhaseWaiting
		return ErrNotEnoughPlayers
	}

	// First hand keeps the dealer StartGame chose; later hands rotate the
	// button to the next dealable seat.
	if gs.HandNumber == 0 {
		if gs.DealerSeat < 0 || gs.DealerSeat >= len(gs.Players) || !canBeDealt(gs.Players[gs.DealerSeat]) {
			gs.DealerSeat = nextSeat(gs.Players, len(gs.Players)-1, canBeDealt)
		}
	} else {
		gs.DealerSeat = nextSeat(gs.Players, gs.DealerSeat, canBeDealt)
	}

	for _, p := range gs.Players {
		if p == nil {
			continue
		}
		p.ResetForHand()
		if !canBeDealt(p) && p.Status != models.StatusSittingOut {
			p.Status = models.StatusFolded
		}
	}

	gs.Pot = 0
	gs.CommunityCards = make([]models.Card, 0, 5)
	level := gs.CurrentLevel()

	dealer := gs.Players[gs.DealerSeat]
	dealer.IsDealer = true

	sbSeat, bbSeat := blindSeats(gs.Players, gs.DealerSeat, dealable)

	if level.Ante > 0 {
		for _, p := range gs.Players {
			if inHand(p) {
				postAnte(gs, p, level.Ante)
			}
		}
	}

	if sbPlayer := gs.Players[sbSeat]; sbPlayer != nil {
		sbPlayer.IsSmallBlind = true
		sbPlayer.PlaceBet(level.SmallBlind)
		// Blinds count as having acted; the big blind keeps its option.
		sbPlayer.HasActedThisRound = true
	}
	if bbPlayer := gs.Players[bbSeat]; bbPlayer != nil {
		bbPlayer.IsBigBlind = true
		bbPlayer.PlaceBet(level.BigBlind)
		bbPlayer.HasActedThisRound = false
	}

	gs.Deck = models.NewShuffledDeck()
	for _, p := range gs.Players {
		if !inHand(p) {
			continue
		}
		cards, err := gs.Deck.Deal(2)
		if err != nil {
			gs.Phase = models.PhaseWaiting
			return fmt.Errorf("dealing hole cards: %w", err)
		}
		p.Cards = cards
	}

	gs.Phase = models.PhasePreflop
	gs.CurrentBet = level.BigBlind
	gs.MinRaise = level.BigBlind
	gs.ActiveSeat = nextSeat(gs.Players, bbSeat, canAct)
	gs.HandNumber++
	gs.LastActionTime = time.Now()

	// Blinds can put everyone all-in; run the hand out if nobody can act.
	if roundComplete(gs) {
		advanceRound(gs)
	}
	return nil
}

// soleChipHolder returns the only connected player with chips, or nil if
// there are zero or several.
func soleChipHolder(gs *models.GameState) *models.Player {
	var last *models.Player
	for _, p := range gs.Players {
		if p != nil && p.Chips > 0 && !p.Disconnected {
			if last != nil {
				return nil
			}
			last = p
		}
	}
	return last
}

func declareTableWinner(gs *models.GameState, p *models.Player) {
	gs.Phase = models.PhaseFinished
	gs.ActiveSeat = -1
	gs.Winners = []models.Winner{{PlayerID: p.ID, Name: p.Name, HandRank: "last player standing"}}
}

// postAnte commits chips straight to the pot without raising the bet to
// match; antes never count toward calling.
func postAnte(gs *models.GameState, p *models.Player, amount int) {
	if amount >= p.Chips {
		amount = p.Chips
		p.Status = models.StatusAllIn
	}
	p.Chips -= amount
	p.TotalBet += amount
	gs.Pot += amount
}
