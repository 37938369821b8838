package server

import (
	"context"
	"errors"
	"time"

	"pokerhub/engine"
	"pokerhub/internal/locks"
	"pokerhub/models"
)

const (
	schedulerInterval = time.Second
	interHandDelay    = 5 * time.Second
	sitOutThreshold   = 3
)

// RunScheduler drives the clock-based behavior the engine itself stays out
// of: forcing an action when a player's timer expires and dealing the next
// hand after the showdown pause. It scans every table each tick; tables
// locked by another instance are skipped and picked up next tick.
func (s *Server) RunScheduler(ctx context.Context) {
	ticker := time.NewTicker(schedulerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepTables(ctx)
		}
	}
}

func (s *Server) sweepTables(ctx context.Context) {
	ids, err := s.store.ListTableIDs(ctx)
	if err != nil {
		s.logger.Error("listing tables for sweep", "err", err)
		return
	}
	for _, id := range ids {
		s.sweepTable(ctx, id)
	}
}

func (s *Server) sweepTable(ctx context.Context, tableID string) {
	release, err := s.locker.TryAcquire(ctx, "table:"+tableID, tableLockTTL)
	if errors.Is(err, locks.ErrLockHeld) {
		return
	}
	if err != nil {
		s.logger.Error("acquiring table lock", "table", tableID, "err", err)
		return
	}
	defer release(ctx)

	gs, err := s.store.GetTable(ctx, tableID)
	if err != nil {
		return
	}

	changed := false
	switch {
	case gs.Phase.IsStreet():
		changed = s.forceExpiredAction(gs)
	case gs.Phase == models.PhaseShowdown:
		changed = s.dealNextHand(gs)
	case gs.Phase == models.PhaseWaiting && gs.TournamentID != "":
		// Tournament tables restart on their own once they can.
		if err := engine.StartGame(gs); err == nil {
			changed = true
		}
	}
	if !changed {
		return
	}
	if err := s.store.SaveTable(ctx, gs); err != nil {
		s.logger.Error("saving swept table", "table", tableID, "err", err)
		return
	}
	s.afterMutation(ctx, gs)
}

// forceExpiredAction checks or folds for a player who ran out the clock.
// Three straight timeouts sit the player out from the next deal.
func (s *Server) forceExpiredAction(gs *models.GameState) bool {
	timeout := time.Duration(gs.Config.ActionTimeout) * time.Second
	if timeout <= 0 || time.Since(gs.LastActionTime) < timeout {
		return false
	}
	p := gs.ActivePlayer()
	if p == nil {
		return false
	}

	kind := models.ActionCheck
	if gs.CurrentBet > p.Bet {
		kind = models.ActionFold
	}
	if err := engine.ProcessAction(gs, p.ID, models.Action{Kind: kind}); err != nil {
		s.logger.Error("forcing timed-out action", "table", gs.TableID, "player", p.ID, "err", err)
		return false
	}
	p.ConsecutiveTimeouts++
	if p.ConsecutiveTimeouts >= sitOutThreshold && p.Status == models.StatusFolded {
		p.Status = models.StatusSittingOut
	}
	s.logger.Info("action timed out",
		"table", gs.TableID, "player", p.ID, "forced", kind, "strikes", p.ConsecutiveTimeouts)
	return true
}

// dealNextHand moves a settled table into its next hand after a short
// pause. Players who timed out three times in a row sit out first.
func (s *Server) dealNextHand(gs *models.GameState) bool {
	if time.Since(gs.LastActionTime) < interHandDelay {
		return false
	}
	for _, p := range gs.Players {
		if p != nil && p.ConsecutiveTimeouts >= sitOutThreshold {
			p.Status = models.StatusSittingOut
		}
	}
	if err := engine.NextHand(gs); err != nil {
		if errors.Is(err, engine.ErrNotEnoughPlayers) {
			// Keep waiting; players may return or the coordinator may
			// reseat the table.
			return true
		}
		return false
	}
	return true
}
