package tournament

import (
	"context"
	"fmt"
	"time"

	"pokerhub/models"
)

// freeSeat returns the lowest empty seat index, or -1 when the table is full.
func freeSeat(gs *models.GameState) int {
	for i, p := range gs.Players {
		if p == nil {
			return i
		}
	}
	return -1
}

func seatedCount(gs *models.GameState) int {
	n := 0
	for _, p := range gs.Players {
		if p != nil {
			n++
		}
	}
	return n
}

// movable reports whether a table's players can be relocated right now.
// Tables are only broken up between hands; a table mid-street keeps its
// players until its own post-hand pass.
func movable(gs *models.GameState) bool {
	return !gs.Phase.IsStreet()
}

// pickRelocation chooses who leaves an overloaded table: the highest seat
// not currently posting a blind, so the button order is disturbed as little
// as possible.
func pickRelocation(gs *models.GameState) *models.Player {
	var fallback *models.Player
	for i := len(gs.Players) - 1; i >= 0; i-- {
		p := gs.Players[i]
		if p == nil {
			continue
		}
		if fallback == nil {
			fallback = p
		}
		if !p.IsSmallBlind && !p.IsBigBlind {
			return p
		}
	}
	return fallback
}

// movePlayer reseats a player on another table, carrying the stack across.
// Joining mid-hand the player sits folded and is dealt in from the next
// hand. A move notice is left for the player's client to consume.
func (s *Service) movePlayer(ctx context.Context, tournamentID string, from, to *models.GameState, p *models.Player) error {
	seat := freeSeat(to)
	if seat == -1 {
		return fmt.Errorf("table %s has no free seat for %s", to.TableID, p.ID)
	}

	moved := models.NewPlayer(p.ID, p.Name, seat, p.Chips)
	moved.Status = models.StatusFolded
	moved.Disconnected = p.Disconnected
	moved.ConsecutiveTimeouts = p.ConsecutiveTimeouts
	to.Players[seat] = moved
	from.Players[p.Seat] = nil

	entry, err := s.store.GetEntry(ctx, tournamentID, p.ID)
	if err != nil {
		return err
	}
	entry.TableID = to.TableID
	entry.Chips = p.Chips
	if err := s.store.SaveEntry(ctx, tournamentID, entry); err != nil {
		return err
	}

	notice := &models.PlayerMoveNotification{
		PlayerID:  p.ID,
		FromTable: from.TableID,
		ToTable:   to.TableID,
		Seat:      seat,
		MovedAt:   time.Now(),
	}
	if err := s.store.PutMoveNotice(ctx, tournamentID, notice); err != nil {
		return err
	}

	s.logger.Info("player moved",
		"tournament", tournamentID, "player", p.ID,
		"from", from.TableID, "to", to.TableID, "seat", seat)
	return nil
}
