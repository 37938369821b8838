package engine

import (
	"time"

	"pokerhub/models"
)

// PlayerView is one seat as a particular viewer sees it. Cards is nil for
// hidden hands.
type PlayerView struct {
	ID               string              `json:"playerId"`
	Name             string              `json:"playerName"`
	Seat             int                 `json:"seat"`
	Chips            int                 `json:"chips"`
	Bet              int                 `json:"bet"`
	TotalBet         int                 `json:"totalBet"`
	Status           models.PlayerStatus `json:"status"`
	Disconnected     bool                `json:"disconnected,omitempty"`
	IsDealer         bool                `json:"isDealer"`
	IsSmallBlind     bool                `json:"isSmallBlind"`
	IsBigBlind       bool                `json:"isBigBlind"`
	LastAction       models.ActionKind   `json:"lastAction,omitempty"`
	LastActionAmount int                 `json:"lastActionAmount,omitempty"`
	Cards            []models.Card       `json:"cards,omitempty"`
}

// TableView is the full table as one viewer is allowed to see it. This is
// what goes over the wire; the raw state with the deck and everyone's hole
// cards never leaves the server.
type TableView struct {
	TableID        string               `json:"tableId"`
	TournamentID   string               `json:"tournamentId,omitempty"`
	Phase          models.GamePhase     `json:"phase"`
	Pot            int                  `json:"pot"`
	CommunityCards []models.Card        `json:"communityCards"`
	CurrentBet     int                  `json:"currentBet"`
	MinRaise       int                  `json:"minRaise"`
	DealerSeat     int                  `json:"dealerSeat"`
	ActiveSeat     int                  `json:"activeSeat"`
	HandNumber     int                  `json:"handNumber"`
	BlindLevel     models.BlindLevel    `json:"blindLevel"`
	Players        []*PlayerView        `json:"players"`
	Winners        []models.Winner      `json:"winners,omitempty"`
	YourSeat       *int                 `json:"yourSeat,omitempty"`
	LegalActions   []models.LegalAction `json:"legalActions,omitempty"`
	LastActionTime time.Time            `json:"lastActionTime"`
}

// Project renders the state for one viewer. Hole cards other than the
// viewer's own stay hidden until showdown, and folded hands are never shown.
// Spectators pass an ID that matches no seat and see only public data.
func Project(gs *models.GameState, viewerID string) TableView {
	view := TableView{
		TableID:        gs.TableID,
		TournamentID:   gs.TournamentID,
		Phase:          gs.Phase,
		Pot:            gs.Pot,
		CommunityCards: gs.CommunityCards,
		CurrentBet:     gs.CurrentBet,
		MinRaise:       gs.MinRaise,
		DealerSeat:     gs.DealerSeat,
		ActiveSeat:     gs.ActiveSeat,
		HandNumber:     gs.HandNumber,
		BlindLevel:     gs.CurrentLevel(),
		Players:        make([]*PlayerView, len(gs.Players)),
		Winners:        gs.Winners,
		LastActionTime: gs.LastActionTime,
	}

	revealAll := gs.Phase == models.PhaseShowdown || gs.Phase == models.PhaseFinished

	for i, p := range gs.Players {
		if p == nil {
			continue
		}
		pv := &PlayerView{
			ID:               p.ID,
			Name:             p.Name,
			Seat:             p.Seat,
			Chips:            p.Chips,
			Bet:              p.Bet,
			TotalBet:         p.TotalBet,
			Status:           p.Status,
			Disconnected:     p.Disconnected,
			IsDealer:         p.IsDealer,
			IsSmallBlind:     p.IsSmallBlind,
			IsBigBlind:       p.IsBigBlind,
			LastAction:       p.LastAction,
			LastActionAmount: p.LastActionAmount,
		}
		if p.ID == viewerID || (revealAll && p.Status != models.StatusFolded) {
			pv.Cards = p.Cards
		}
		view.Players[i] = pv

		if p.ID == viewerID {
			seat := p.Seat
			view.YourSeat = &seat
		}
	}

	view.LegalActions = LegalActions(gs, viewerID)
	return view
}
