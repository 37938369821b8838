package engine

import (
	"time"

	"pokerhub/models"
)

// settle resolves the hand: uncontested pots go to the last player holding
// cards without a showdown, otherwise the best hand (or hands, split evenly)
// takes the pot. Odd chips go to the first winner in seat order.
func settle(gs *models.GameState) {
	collectBets(gs)
	gs.ActiveSeat = -1
	gs.CurrentBet = 0

	var contenders []*models.Player
	for _, p := range gs.Players {
		if inHand(p) {
			contenders = append(contenders, p)
		}
	}

	switch len(contenders) {
	case 0:
		// Every live hand disconnected mid-hand. Return everyone's
		// contribution so table chip totals are conserved.
		for _, p := range gs.Players {
			if p != nil {
				p.Chips += p.TotalBet
			}
		}
		gs.Pot = 0
	case 1:
		w := contenders[0]
		w.Chips += gs.Pot
		gs.Winners = []models.Winner{{
			PlayerID: w.ID,
			Name:     w.Name,
			Amount:   gs.Pot,
			HandRank: "uncontested",
		}}
	default:
		awardShowdown(gs, contenders)
	}

	if countPlayers(gs.Players, funded) <= 1 {
		gs.Phase = models.PhaseFinished
	} else {
		gs.Phase = models.PhaseShowdown
	}
	gs.LastActionTime = time.Now()
}

func awardShowdown(gs *models.GameState, contenders []*models.Player) {
	type result struct {
		player *models.Player
		eval   HandEval
	}

	best := -1
	var winners []result
	for _, p := range contenders {
		ev := EvaluateHole(p.Cards, gs.CommunityCards)
		switch {
		case ev.Score > best:
			best = ev.Score
			winners = winners[:0]
			winners = append(winners, result{p, ev})
		case ev.Score == best:
			winners = append(winners, result{p, ev})
		}
	}

	share := gs.Pot / len(winners)
	remainder := gs.Pot % len(winners)
	for i, w := range winners {
		amount := share
		if i == 0 {
			amount += remainder
		}
		w.player.Chips += amount
		gs.Winners = append(gs.Winners, models.Winner{
			PlayerID:  w.player.ID,
			Name:      w.player.Name,
			Amount:    amount,
			HandRank:  w.eval.Category.String(),
			HandCards: w.eval.Cards,
		})
	}
}

func funded(p *models.Player) bool {
	return p != nil && p.Chips > 0 && !p.Disconnected
}
