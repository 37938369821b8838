package engine

import (
	"fmt"
	"time"

	"pokerhub/models"
)

// LegalActions computes the action set for a player. Empty unless it is
// that player's turn on a live street.
func LegalActions(gs *models.GameState, playerID string) []models.LegalAction {
	p := gs.ActivePlayer()
	if p == nil || p.ID != playerID || !p.CanAct() {
		return nil
	}

	var actions []models.LegalAction
	facing := gs.CurrentBet > p.Bet
	if facing {
		actions = append(actions, models.LegalAction{Kind: models.ActionFold})
		call := gs.CurrentBet - p.Bet
		if call > p.Chips {
			call = p.Chips
		}
		actions = append(actions, models.LegalAction{Kind: models.ActionCall, Min: call, Max: call})
	} else {
		actions = append(actions, models.LegalAction{Kind: models.ActionCheck})
	}

	minTotal := gs.CurrentBet + gs.MinRaise
	maxTotal := p.Chips + p.Bet
	if maxTotal >= minTotal {
		actions = append(actions, models.LegalAction{Kind: models.ActionRaise, Min: minTotal, Max: maxTotal})
	}
	if p.Chips > 0 {
		actions = append(actions, models.LegalAction{Kind: models.ActionAllIn, Min: maxTotal, Max: maxTotal})
	}
	return actions
}

// ProcessAction validates and applies one action, then advances the hand as
// far as it can without further input. Validation happens before any
// mutation, so a rejected action leaves the state exactly as loaded.
func ProcessAction(gs *models.GameState, playerID string, action models.Action) error {
	if !gs.Phase.IsStreet() {
		return ErrNoHandInProgress
	}
	p := gs.PlayerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	current := gs.ActivePlayer()
	if current == nil || current.ID != playerID {
		return fmt.Errorf("%w: waiting on %s", ErrNotYourTurn, activeID(current))
	}
	if !p.CanAct() {
		return fmt.Errorf("%w: status %s", ErrCannotAct, p.Status)
	}

	switch action.Kind {
	case models.ActionFold:
		if gs.CurrentBet <= p.Bet {
			return fmt.Errorf("nothing to fold to - check instead")
		}
		p.Status = models.StatusFolded
		p.LastAction = models.ActionFold
		p.LastActionAmount = 0

	case models.ActionCheck:
		if p.Bet < gs.CurrentBet {
			return fmt.Errorf("cannot check - must call, raise, or fold")
		}
		p.LastAction = models.ActionCheck
		p.LastActionAmount = 0

	case models.ActionCall:
		if gs.CurrentBet <= p.Bet {
			return fmt.Errorf("nothing to call - check instead")
		}
		call := gs.CurrentBet - p.Bet
		if call >= p.Chips {
			// Short call puts the player all-in for what they have.
			call = p.Chips
			p.PlaceBet(call)
			p.LastAction = models.ActionAllIn
		} else {
			p.PlaceBet(call)
			p.LastAction = models.ActionCall
		}
		p.LastActionAmount = call

	case models.ActionRaise:
		minTotal := gs.CurrentBet + gs.MinRaise
		maxTotal := p.Chips + p.Bet
		if maxTotal < minTotal {
			return fmt.Errorf("stack too small to raise: minimum total bet is %d", minTotal)
		}
		if action.Amount < minTotal || action.Amount > maxTotal {
			return fmt.Errorf("raise must be between %d and %d", minTotal, maxTotal)
		}
		applyRaise(gs, p, action.Amount)

	case models.ActionAllIn:
		if p.Chips <= 0 {
			return fmt.Errorf("no chips left to go all-in")
		}
		applyRaise(gs, p, p.Chips+p.Bet)

	default:
		return fmt.Errorf("unknown action %q", action.Kind)
	}

	p.HasActedThisRound = true
	gs.LastActionTime = time.Now()

	// A lone remaining player wins immediately, even mid-street.
	if countPlayers(gs.Players, inHand) == 1 {
		settle(gs)
		return nil
	}
	if roundComplete(gs) {
		advanceRound(gs)
		return nil
	}
	gs.ActiveSeat = nextActorSeat(gs)
	return nil
}

// applyRaise moves a player's total bet up to target, handling the all-in
// and min-raise bookkeeping. A full raise reopens action for everyone else;
// an all-in for less only moves the price without reopening.
func applyRaise(gs *models.GameState, p *models.Player, target int) {
	minTotal := gs.CurrentBet + gs.MinRaise
	p.PlaceBet(target - p.Bet)

	if p.Status == models.StatusAllIn {
		p.LastAction = models.ActionAllIn
	} else {
		p.LastAction = models.ActionRaise
	}
	p.LastActionAmount = p.Bet

	if p.Bet >= minTotal {
		gs.MinRaise = p.Bet - gs.CurrentBet
		gs.CurrentBet = p.Bet
		for _, other := range gs.Players {
			if other != nil && other != p && other.CanAct() {
				other.HasActedThisRound = false
			}
		}
	} else if p.Bet > gs.CurrentBet {
		gs.CurrentBet = p.Bet
	}
}

// roundComplete reports whether no player still owes a decision.
func roundComplete(gs *models.GameState) bool {
	if countPlayers(gs.Players, inHand) <= 1 {
		return true
	}
	for _, p := range gs.Players {
		if p == nil || !p.CanAct() {
			continue
		}
		if !p.HasActedThisRound || p.Bet < gs.CurrentBet {
			return false
		}
	}
	return true
}

// nextActorSeat finds the next seat that still owes a decision this round.
func nextActorSeat(gs *models.GameState) int {
	return nextSeat(gs.Players, gs.ActiveSeat, func(p *models.Player) bool {
		return p != nil && p.CanAct() && (!p.HasActedThisRound || p.Bet < gs.CurrentBet)
	})
}

// advanceRound sweeps bets into the pot and moves to the next street. When
// fewer than two players can still act the remaining streets are dealt
// through without betting.
func advanceRound(gs *models.GameState) {
	collectBets(gs)
	gs.CurrentBet = 0
	gs.MinRaise = gs.CurrentLevel().BigBlind

	if countPlayers(gs.Players, inHand) == 1 || gs.Phase == models.PhaseRiver {
		settle(gs)
		return
	}

	if countPlayers(gs.Players, canAct) <= 1 {
		for gs.Phase != models.PhaseRiver {
			if err := dealStreet(gs); err != nil {
				break
			}
		}
		settle(gs)
		return
	}

	if err := dealStreet(gs); err != nil {
		settle(gs)
		return
	}
	gs.ActiveSeat = nextSeat(gs.Players, gs.DealerSeat, canAct)
	gs.LastActionTime = time.Now()
}

// dealStreet deals the community cards for the next street and advances the
// phase: three for the flop, one each for turn and river.
func dealStreet(gs *models.GameState) error {
	var n int
	var next models.GamePhase
	switch gs.Phase {
	case models.PhasePreflop:
		n, next = 3, models.PhaseFlop
	case models.PhaseFlop:
		n, next = 1, models.PhaseTurn
	case models.PhaseTurn:
		n, next = 1, models.PhaseRiver
	default:
		return fmt.Errorf("no street after %s", gs.Phase)
	}
	cards, err := gs.Deck.Deal(n)
	if err != nil {
		return err
	}
	gs.CommunityCards = append(gs.CommunityCards, cards...)
	gs.Phase = next
	return nil
}

func collectBets(gs *models.GameState) {
	for _, p := range gs.Players {
		if p == nil {
			continue
		}
		gs.Pot += p.Bet
		p.Bet = 0
		if p.Status != models.StatusAllIn {
			p.HasActedThisRound = false
		}
	}
}

func activeID(p *models.Player) string {
	if p == nil {
		return "nobody"
	}
	return p.ID
}
