package tournament

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pokerhub/internal/locks"
	"pokerhub/models"
)

// OnHandSettled is the post-hand pass for one table: bust-outs, table
// retirement, final-table consolidation, balancing and blind advancement.
// It runs under the per-tournament lock; when another instance holds it the
// whole pass is skipped and the next settled hand picks the work up again.
// The caller must hold the settled table's own lock; sibling tables are
// locked individually before they are touched. Every step checks state
// before mutating, so running the pass twice for the same hand is harmless.
func (s *Service) OnHandSettled(ctx context.Context, tournamentID, tableID string) error {
	release, err := s.locker.TryAcquire(ctx, "tournament:"+tournamentID, lockTTL)
	if errors.Is(err, locks.ErrLockHeld) {
		s.logger.Debug("post-hand pass skipped, lock held", "tournament", tournamentID, "table", tableID)
		return nil
	}
	if err != nil {
		return err
	}
	defer release(ctx)

	ts, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if ts.Status != models.TournamentInProgress && ts.Status != models.TournamentFinalTable {
		return nil
	}

	tables, unlock, err := s.lockTables(ctx, ts, tableID)
	if err != nil {
		return err
	}
	defer unlock()

	gs, ok := tables[tableID]
	if !ok {
		// Already retired by an earlier pass.
		return nil
	}
	if gs.Phase.IsStreet() {
		return nil
	}

	dirty := make(map[string]bool)
	s.applyEliminations(ctx, ts, gs, dirty)

	var dropped []string
	if ts.RemainingCount <= 1 {
		if err := s.crownWinner(ctx, ts, tables, dirty); err != nil {
			return err
		}
		return s.persist(ctx, ts, tables, dirty, dropped)
	}

	dropped = append(dropped, s.retireSingleton(ctx, ts, tables, gs, dirty)...)

	if ts.RemainingCount <= ts.Config.TableSize && len(ts.TableIDs) > 1 {
		dropped = append(dropped, s.consolidate(ctx, ts, tables, dirty)...)
	}
	if len(ts.TableIDs) == 1 && ts.Status != models.TournamentFinalTable {
		ts.Status = models.TournamentFinalTable
		s.logger.Info("final table reached", "tournament", ts.ID, "remaining", ts.RemainingCount)
	}

	s.rebalance(ctx, ts, tables, gs, dirty)
	s.advanceBlinds(ts, tables, dirty)

	return s.persist(ctx, ts, tables, dirty, dropped)
}

type tableSet map[string]*models.GameState

// lockTables loads the tournament's tables, taking each sibling's table
// lock first; the settled table is exempt because the caller already holds
// its lock. A sibling locked by another instance sits the whole pass out,
// unread and unwritten, and is picked up when its own hand settles.
func (s *Service) lockTables(ctx context.Context, ts *models.TournamentState, settledID string) (tableSet, func(), error) {
	tables := make(tableSet, len(ts.TableIDs))
	var releases []locks.ReleaseFunc
	unlock := func() {
		for _, release := range releases {
			_ = release(ctx)
		}
	}
	for _, id := range ts.TableIDs {
		if id != settledID {
			release, err := s.locker.TryAcquire(ctx, "table:"+id, lockTTL)
			if errors.Is(err, locks.ErrLockHeld) {
				continue
			}
			if err != nil {
				unlock()
				return nil, nil, err
			}
			releases = append(releases, release)
		}
		gs, err := s.store.GetTable(ctx, id)
		if err != nil {
			unlock()
			return nil, nil, fmt.Errorf("loading table %s: %w", id, err)
		}
		tables[id] = gs
	}
	return tables, unlock, nil
}

// applyEliminations converts busted stacks into finish positions. A player
// busting with N players left finishes Nth; several busts in one hand take
// consecutive positions in seat order. Busted seats are freed so table
// counts reflect live players only.
func (s *Service) applyEliminations(ctx context.Context, ts *models.TournamentState, gs *models.GameState, dirty map[string]bool) {
	for seat, p := range gs.Players {
		if p == nil {
			continue
		}
		entry, err := s.store.GetEntry(ctx, ts.ID, p.ID)
		if err != nil {
			s.logger.Error("entry missing for seated player", "tournament", ts.ID, "player", p.ID, "err", err)
			continue
		}
		if entry.Status != models.EntryPlaying {
			continue
		}
		if p.Chips > 0 {
			entry.Chips = p.Chips
			if err := s.store.SaveEntry(ctx, ts.ID, entry); err != nil {
				s.logger.Error("saving entry", "player", p.ID, "err", err)
			}
			continue
		}

		entry.Status = models.EntryEliminated
		entry.FinishPosition = ts.RemainingCount
		entry.Chips = 0
		entry.TableID = ""
		ts.RemainingCount--
		ts.FinishOrder = append(ts.FinishOrder, p.ID)
		gs.Players[seat] = nil
		dirty[gs.TableID] = true

		if err := s.store.SaveEntry(ctx, ts.ID, entry); err != nil {
			s.logger.Error("saving eliminated entry", "player", p.ID, "err", err)
		}
		s.recordResult(ctx, ts.ID, entry)
		s.logger.Info("player eliminated",
			"tournament", ts.ID, "player", p.ID, "position", entry.FinishPosition)
	}
}

func (s *Service) crownWinner(ctx context.Context, ts *models.TournamentState, tables tableSet, dirty map[string]bool) error {
	entries, err := s.store.ListEntries(ctx, ts.ID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Status != models.EntryPlaying {
			continue
		}
		entry.Status = models.EntryWinner
		entry.FinishPosition = 1
		if err := s.store.SaveEntry(ctx, ts.ID, entry); err != nil {
			return err
		}
		ts.WinnerID = entry.PlayerID
		ts.FinishOrder = append(ts.FinishOrder, entry.PlayerID)
		s.recordResult(ctx, ts.ID, entry)
	}
	ts.Status = models.TournamentFinished
	for id, gs := range tables {
		if gs.Phase != models.PhaseFinished {
			gs.Phase = models.PhaseFinished
			gs.ActiveSeat = -1
			dirty[id] = true
		}
	}
	s.logger.Info("tournament finished", "tournament", ts.ID, "winner", ts.WinnerID)
	return nil
}

// retireSingleton breaks up the settled table when at most one connected
// player remains on it. Every remaining stack is reseated elsewhere, the
// disconnected ones included so their chips keep blinding down in play.
func (s *Service) retireSingleton(ctx context.Context, ts *models.TournamentState, tables tableSet, gs *models.GameState, dirty map[string]bool) []string {
	if len(ts.TableIDs) <= 1 || gs.ConnectedCount() > 1 {
		return nil
	}
	for _, p := range gs.Players {
		if p == nil {
			continue
		}
		dest := shortestTable(ts, tables, gs.TableID)
		if dest == nil {
			return nil
		}
		if err := s.movePlayer(ctx, ts.ID, gs, dest, p); err != nil {
			s.logger.Error("relocating player off dying table", "player", p.ID, "err", err)
			return nil
		}
		dirty[dest.TableID] = true
	}
	s.dropTable(ts, tables, gs.TableID)
	return []string{gs.TableID}
}

// consolidate merges everyone onto a single final table once the field fits
// on one. Tables still mid-hand keep their players until their own hand
// settles and the next pass finishes the merge.
func (s *Service) consolidate(ctx context.Context, ts *models.TournamentState, tables tableSet, dirty map[string]bool) []string {
	destID := ""
	best := -1
	for _, id := range ts.TableIDs {
		gs := tables[id]
		if gs == nil {
			continue
		}
		if n := seatedCount(gs); n > best {
			destID, best = id, n
		}
	}
	dest := tables[destID]
	if dest == nil {
		return nil
	}

	var dropped []string
	for _, id := range append([]string(nil), ts.TableIDs...) {
		if id == destID {
			continue
		}
		src := tables[id]
		if src == nil || !movable(src) {
			continue
		}
		emptied := true
		for _, p := range src.Players {
			if p == nil {
				continue
			}
			if err := s.movePlayer(ctx, ts.ID, src, dest, p); err != nil {
				s.logger.Error("consolidating", "player", p.ID, "err", err)
				emptied = false
				break
			}
			dirty[destID] = true
			dirty[id] = true
		}
		if emptied {
			s.dropTable(ts, tables, id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}

// rebalance evens out table sizes after a hand: when the settled table runs
// two or more players deeper than the shortest table, one player moves.
// Other oversized tables rebalance when their own hands settle.
func (s *Service) rebalance(ctx context.Context, ts *models.TournamentState, tables tableSet, gs *models.GameState, dirty map[string]bool) {
	if len(ts.TableIDs) <= 1 {
		return
	}
	if _, ok := tables[gs.TableID]; !ok {
		return
	}
	dest := shortestTable(ts, tables, gs.TableID)
	if dest == nil {
		return
	}
	if seatedCount(gs)-seatedCount(dest) < 2 {
		return
	}
	if p := pickRelocation(gs); p != nil {
		if err := s.movePlayer(ctx, ts.ID, gs, dest, p); err != nil {
			s.logger.Error("rebalancing", "player", p.ID, "err", err)
			return
		}
		dirty[gs.TableID] = true
		dirty[dest.TableID] = true
	}
}

// advanceBlinds derives the level from elapsed tournament time so every
// table climbs the ladder together, whatever pace its hands run at.
func (s *Service) advanceBlinds(ts *models.TournamentState, tables tableSet, dirty map[string]bool) {
	idx := LevelIndex(ts.Config.Levels, time.Since(ts.StartedAt))
	for id, gs := range tables {
		if idx > gs.BlindLevel {
			gs.BlindLevel = idx
			gs.LevelStartedAt = time.Now()
			dirty[id] = true
			s.logger.Info("blind level up", "tournament", ts.ID, "table", gs.TableID, "level", idx+1)
		}
	}
}

// persist writes back only what the pass changed. Tables that were loaded
// for counting but never mutated are skipped, so a write racing in on them
// through their own table lock is never clobbered by a stale snapshot.
func (s *Service) persist(ctx context.Context, ts *models.TournamentState, tables tableSet, dirty map[string]bool, dropped []string) error {
	for _, id := range dropped {
		if err := s.store.DeleteTable(ctx, id); err != nil {
			return err
		}
	}
	for id, gs := range tables {
		if !dirty[id] {
			continue
		}
		if err := s.store.SaveTable(ctx, gs); err != nil {
			return err
		}
	}
	return s.store.SaveTournament(ctx, ts)
}

func (s *Service) dropTable(ts *models.TournamentState, tables tableSet, id string) {
	delete(tables, id)
	kept := ts.TableIDs[:0]
	for _, tid := range ts.TableIDs {
		if tid != id {
			kept = append(kept, tid)
		}
	}
	ts.TableIDs = kept
}

func (s *Service) recordResult(ctx context.Context, tournamentID string, entry *models.TournamentPlayerEntry) {
	if s.results == nil {
		return
	}
	if err := s.results.RecordResult(ctx, tournamentID, entry.PlayerID, entry.Name, entry.FinishPosition); err != nil {
		s.logger.Warn("recording result failed", "player", entry.PlayerID, "err", err)
	}
}

// shortestTable finds the table with the fewest seated players, excluding
// one table and any table without a free seat.
func shortestTable(ts *models.TournamentState, tables tableSet, exclude string) *models.GameState {
	var best *models.GameState
	for _, id := range ts.TableIDs {
		if id == exclude {
			continue
		}
		gs := tables[id]
		if gs == nil || freeSeat(gs) == -1 {
			continue
		}
		if best == nil || seatedCount(gs) < seatedCount(best) {
			best = gs
		}
	}
	return best
}
