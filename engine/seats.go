package engine

import "pokerhub/models"

type playerFilter func(*models.Player) bool

func inHand(p *models.Player) bool {
	return p != nil && p.InHand()
}

func canAct(p *models.Player) bool {
	return p != nil && p.CanAct()
}

// canBeDealt reports whether a player takes part in the next deal.
func canBeDealt(p *models.Player) bool {
	return p != nil && p.Chips > 0 && !p.Disconnected && p.Status != models.StatusSittingOut
}

func countPlayers(players []*models.Player, filter playerFilter) int {
	n := 0
	for _, p := range players {
		if filter(p) {
			n++
		}
	}
	return n
}

// nextSeat walks clockwise from seat and returns the first seat whose player
// matches the filter, or seat itself when none does.
func nextSeat(players []*models.Player, seat int, filter playerFilter) int {
	max := len(players)
	if max == 0 {
		return 0
	}
	pos := (seat + 1) % max
	for checked := 0; checked < max; checked++ {
		if filter(players[pos]) {
			return pos
		}
		pos = (pos + 1) % max
	}
	return seat
}

// lowestFreeSeat returns the first empty seat index, or -1 when full.
func lowestFreeSeat(players []*models.Player) int {
	for i, p := range players {
		if p == nil {
			return i
		}
	}
	return -1
}

// blindSeats computes the small and big blind seats for the dealer position.
// Heads-up the dealer posts the small blind.
func blindSeats(players []*models.Player, dealerSeat, dealt int) (sb, bb int) {
	if dealt == 2 {
		sb = dealerSeat
		bb = nextSeat(players, dealerSeat, inHand)
		return sb, bb
	}
	sb = nextSeat(players, dealerSeat, inHand)
	bb = nextSeat(players, sb, inHand)
	return sb, bb
}
