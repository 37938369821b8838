package models

type PlayerStatus string

const (
	StatusActive     PlayerStatus = "active"
	StatusFolded     PlayerStatus = "folded"
	StatusAllIn      PlayerStatus = "allin"
	StatusSittingOut PlayerStatus = "sitting_out"
)

// Player is one seat at a table. The identity is an opaque string (wallet
// address, account id or guest token). Players are removed only while the
// table is waiting; mid-game departures are marked disconnected so seat and
// pot accounting stay intact.
type Player struct {
	ID                  string       `json:"playerId"`
	Name                string       `json:"playerName"`
	Seat                int          `json:"seat"`
	Chips               int          `json:"chips"`
	Bet                 int          `json:"bet"`      // committed this betting round
	TotalBet            int          `json:"totalBet"` // committed this hand, blinds and antes included
	Cards               []Card       `json:"cards,omitempty"`
	Status              PlayerStatus `json:"status"`
	Disconnected        bool         `json:"disconnected,omitempty"`
	IsDealer            bool         `json:"isDealer"`
	IsSmallBlind        bool         `json:"isSmallBlind"`
	IsBigBlind          bool         `json:"isBigBlind"`
	LastAction          ActionKind   `json:"lastAction,omitempty"`
	LastActionAmount    int          `json:"lastActionAmount,omitempty"`
	HasActedThisRound   bool         `json:"hasActedThisRound"`
	ConsecutiveTimeouts int          `json:"consecutiveTimeouts,omitempty"`
}

func NewPlayer(id, name string, seat, chips int) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Seat:   seat,
		Chips:  chips,
		Status: StatusActive,
	}
}

// ResetForHand clears all per-hand state. Status is recomputed by the deal.
func (p *Player) ResetForHand() {
	p.Bet = 0
	p.TotalBet = 0
	p.Cards = nil
	p.IsDealer = false
	p.IsSmallBlind = false
	p.IsBigBlind = false
	p.LastAction = ""
	p.LastActionAmount = 0
	p.HasActedThisRound = false
	if p.Status != StatusSittingOut {
		p.Status = StatusActive
	}
}

// PlaceBet commits chips to the current round, capping at the stack and
// flipping the player all-in when the whole stack goes.
func (p *Player) PlaceBet(amount int) {
	if amount >= p.Chips {
		amount = p.Chips
		p.Status = StatusAllIn
	}
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
}

// InHand reports whether the player still holds a live hand.
func (p *Player) InHand() bool {
	return p.Status == StatusActive || p.Status == StatusAllIn
}

// CanAct reports whether the player can still make betting decisions.
func (p *Player) CanAct() bool {
	return p.Status == StatusActive
}
