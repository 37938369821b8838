package tournament

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerhub/internal/locks"
	"pokerhub/internal/store"
	"pokerhub/models"
)

// settleTable forces a table into showdown and busts the given players,
// handing their chips to the first survivor so chips stay conserved.
func settleTable(t *testing.T, st *store.MemoryStore, tableID string, busted ...string) {
	t.Helper()
	ctx := context.Background()
	gs, err := st.GetTable(ctx, tableID)
	require.NoError(t, err)

	bustSet := make(map[string]bool, len(busted))
	for _, id := range busted {
		bustSet[id] = true
	}
	taken := 0
	var survivor *models.Player
	for _, p := range gs.Players {
		if p == nil {
			continue
		}
		p.Bet = 0
		p.Status = models.StatusActive
		if bustSet[p.ID] {
			taken += p.Chips
			p.Chips = 0
			p.Status = models.StatusFolded
		} else if survivor == nil {
			survivor = p
		}
	}
	require.NotNil(t, survivor)
	survivor.Chips += taken
	gs.Phase = models.PhaseShowdown
	gs.Pot = 0
	gs.ActiveSeat = -1
	require.NoError(t, st.SaveTable(ctx, gs))
}

func tableOfSize(t *testing.T, st *store.MemoryStore, ts *models.TournamentState, n int) string {
	t.Helper()
	for _, id := range ts.TableIDs {
		gs, err := st.GetTable(context.Background(), id)
		require.NoError(t, err)
		if seatedCount(gs) == n {
			return id
		}
	}
	t.Fatalf("no table with %d players", n)
	return ""
}

func playersAt(t *testing.T, st *store.MemoryStore, tableID string) []string {
	t.Helper()
	gs, err := st.GetTable(context.Background(), tableID)
	require.NoError(t, err)
	var ids []string
	for _, p := range gs.Players {
		if p != nil {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func TestHookAssignsFinishPositions(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	ts := startField(t, svc, 13, 6)
	target := tableOfSize(t, st, ts, 5)
	victims := playersAt(t, st, target)[:2]

	settleTable(t, st, target, victims...)
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, target))

	ts, err := svc.Get(ctx, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, ts.RemainingCount)
	assert.Equal(t, victims, ts.FinishOrder)

	// Busting with 13 and then 12 players left finishes 13th and 12th.
	first, err := st.GetEntry(ctx, ts.ID, victims[0])
	require.NoError(t, err)
	assert.Equal(t, models.EntryEliminated, first.Status)
	assert.Equal(t, 13, first.FinishPosition)
	assert.Empty(t, first.TableID)

	second, err := st.GetEntry(ctx, ts.ID, victims[1])
	require.NoError(t, err)
	assert.Equal(t, 12, second.FinishPosition)

	// Busted seats are freed.
	assert.Len(t, playersAt(t, st, target), 3)
}

func TestHookIsIdempotent(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	ts := startField(t, svc, 13, 6)
	target := tableOfSize(t, st, ts, 5)
	victim := playersAt(t, st, target)[0]

	settleTable(t, st, target, victim)
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, target))
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, target))

	ts, err := svc.Get(ctx, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, ts.RemainingCount, "second pass must not double count")
	assert.Equal(t, []string{victim}, ts.FinishOrder)
}

func TestHookSkipsWhileLockHeld(t *testing.T) {
	svc, st, locker := newTestService()
	ctx := context.Background()

	ts := startField(t, svc, 13, 6)
	target := tableOfSize(t, st, ts, 5)
	victim := playersAt(t, st, target)[0]
	settleTable(t, st, target, victim)

	release, err := locker.TryAcquire(ctx, "tournament:"+ts.ID, time.Minute)
	require.NoError(t, err)

	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, target))
	ts2, err := svc.Get(ctx, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, ts2.RemainingCount, "pass must be skipped while locked")

	require.NoError(t, release(ctx))
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, target))
	ts2, err = svc.Get(ctx, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, ts2.RemainingCount)
}

func TestHookCrownsWinner(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	ts := startField(t, svc, 2, 6)
	tableID := ts.TableIDs[0]
	loser := playersAt(t, st, tableID)[1]
	winner := playersAt(t, st, tableID)[0]

	settleTable(t, st, tableID, loser)
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, tableID))

	ts, err := svc.Get(ctx, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentFinished, ts.Status)
	assert.Equal(t, winner, ts.WinnerID)
	assert.Equal(t, []string{loser, winner}, ts.FinishOrder)

	entry, err := st.GetEntry(ctx, ts.ID, winner)
	require.NoError(t, err)
	assert.Equal(t, models.EntryWinner, entry.Status)
	assert.Equal(t, 1, entry.FinishPosition)

	gs, err := st.GetTable(ctx, tableID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFinished, gs.Phase)
}

func TestHookConsolidatesFinalTable(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	// Seven players on two tables; one bust brings the field to six.
	ts := startField(t, svc, 7, 6)
	require.Len(t, ts.TableIDs, 2)

	big := tableOfSize(t, st, ts, 4)
	small := tableOfSize(t, st, ts, 3)
	victim := playersAt(t, st, big)[0]

	// Both hands are over when the pass runs, so the merge can finish.
	settleTable(t, st, big, victim)
	settleTable(t, st, small)

	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, big))

	ts, err := svc.Get(ctx, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentFinalTable, ts.Status)
	require.Len(t, ts.TableIDs, 1)
	assert.Len(t, playersAt(t, st, ts.TableIDs[0]), 6)

	// Everyone who changed tables has a pending move notice, consumable once.
	for _, id := range playersAt(t, st, ts.TableIDs[0]) {
		entry, err := st.GetEntry(ctx, ts.ID, id)
		require.NoError(t, err)
		assert.Equal(t, ts.TableIDs[0], entry.TableID)
	}
}

func TestHookLeavesMidHandTablesAlone(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	ts := startField(t, svc, 7, 6)
	big := tableOfSize(t, st, ts, 4)
	victim := playersAt(t, st, big)[0]

	// The other table is still mid-hand; the merge must wait for it.
	settleTable(t, st, big, victim)
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, big))

	ts, err := svc.Get(ctx, ts.ID)
	require.NoError(t, err)
	assert.Len(t, ts.TableIDs, 2, "mid-hand table is not broken up")
	assert.Equal(t, 6, ts.RemainingCount)
}

func TestHookRebalancesTables(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	ts := startField(t, svc, 13, 6)
	small := tableOfSize(t, st, ts, 4)
	big := tableOfSize(t, st, ts, 5)

	// Two busts leave one table two short of the settled one.
	victims := playersAt(t, st, small)[:2]
	settleTable(t, st, small, victims...)
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, small))
	assert.Len(t, playersAt(t, st, small), 2)

	settleTable(t, st, big)
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, big))

	assert.Len(t, playersAt(t, st, big), 4, "one player moves off the deep table")
	assert.Len(t, playersAt(t, st, small), 3)

	// The moved player gets exactly one notice.
	moved := ""
	for _, id := range playersAt(t, st, small) {
		if n, err := svc.PendingMove(ctx, ts.ID, id); err == nil {
			moved = n.PlayerID
			assert.Equal(t, big, n.FromTable)
			assert.Equal(t, small, n.ToTable)
		}
	}
	require.NotEmpty(t, moved)
	_, err := svc.PendingMove(ctx, ts.ID, moved)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHookAdvancesBlindLevels(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	ts := startField(t, svc, 2, 6)
	tableID := ts.TableIDs[0]

	// Backdate the start so the first level has expired.
	ts.StartedAt = time.Now().Add(-700 * time.Second)
	require.NoError(t, st.SaveTournament(ctx, ts))

	settleTable(t, st, tableID)
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, tableID))

	gs, err := st.GetTable(ctx, tableID)
	require.NoError(t, err)
	assert.Equal(t, 1, gs.BlindLevel)
	assert.Equal(t, 40, gs.CurrentLevel().BigBlind)
}

func TestHookRecordsResults(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	recorded := map[string]int{}
	svc.WithResultRecorder(recorderFunc(func(_ context.Context, _, playerID, _ string, position int) error {
		recorded[playerID] = position
		return nil
	}))

	ts := startField(t, svc, 2, 6)
	tableID := ts.TableIDs[0]
	ids := playersAt(t, st, tableID)

	settleTable(t, st, tableID, ids[1])
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, tableID))

	assert.Equal(t, map[string]int{ids[1]: 2, ids[0]: 1}, recorded)
}

func TestHookSkipsLockedSiblings(t *testing.T) {
	svc, st, locker := newTestService()
	ctx := context.Background()

	ts := startField(t, svc, 13, 6)
	settled := tableOfSize(t, st, ts, 5)
	var sibling string
	for _, id := range ts.TableIDs {
		if id != settled {
			sibling = id
			break
		}
	}

	// Another instance is working on the sibling table right now.
	release, err := locker.TryAcquire(ctx, "table:"+sibling, time.Minute)
	require.NoError(t, err)
	defer release(ctx)

	// Backdate the start so a blind bump is due on every table.
	ts.StartedAt = time.Now().Add(-700 * time.Second)
	require.NoError(t, st.SaveTournament(ctx, ts))

	victim := playersAt(t, st, settled)[0]
	settleTable(t, st, settled, victim)
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, settled))

	// The settled table levels up; the locked sibling is left untouched
	// for its own pass.
	gs, err := st.GetTable(ctx, settled)
	require.NoError(t, err)
	assert.Equal(t, 1, gs.BlindLevel)

	gs, err = st.GetTable(ctx, sibling)
	require.NoError(t, err)
	assert.Equal(t, 0, gs.BlindLevel, "locked sibling must not be written")
}

// triggerStore injects a write into the backing store right after one
// particular table has been read, interleaving with a running pass.
type triggerStore struct {
	store.Store
	tableID string
	once    sync.Once
	fire    func()
}

func (s *triggerStore) GetTable(ctx context.Context, id string) (*models.GameState, error) {
	gs, err := s.Store.GetTable(ctx, id)
	if err == nil && id == s.tableID {
		s.once.Do(s.fire)
	}
	return gs, err
}

func TestHookPreservesInterleavedActions(t *testing.T) {
	base := store.NewMemoryStore()
	wrapped := &triggerStore{Store: base}
	svc := NewService(wrapped, locks.NewMemoryLocker(), log.New(io.Discard))
	ctx := context.Background()

	ts := startField(t, svc, 13, 6)
	settled := tableOfSize(t, base, ts, 5)
	var sibling string
	for _, id := range ts.TableIDs {
		if id != settled {
			sibling = id
			break
		}
	}

	// A fold lands on the sibling table the moment the pass has read it.
	folded := playersAt(t, base, sibling)[0]
	wrapped.tableID = sibling
	wrapped.fire = func() {
		gs, err := base.GetTable(ctx, sibling)
		require.NoError(t, err)
		gs.PlayerByID(folded).Status = models.StatusFolded
		require.NoError(t, base.SaveTable(ctx, gs))
	}

	victim := playersAt(t, base, settled)[0]
	settleTable(t, base, settled, victim)
	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, settled))

	gs, err := base.GetTable(ctx, sibling)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFolded, gs.PlayerByID(folded).Status,
		"a write landing on an untouched table during the pass must survive it")
}

func TestHookRetiresTableWithLoneConnectedPlayer(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	ts := startField(t, svc, 13, 6)
	target := tableOfSize(t, st, ts, 5)
	ids := playersAt(t, st, target)
	victims := ids[:3]
	survivor, ghost := ids[3], ids[4]

	settleTable(t, st, target, victims...)
	gs, err := st.GetTable(ctx, target)
	require.NoError(t, err)
	gs.PlayerByID(ghost).Disconnected = true
	require.NoError(t, st.SaveTable(ctx, gs))

	require.NoError(t, svc.OnHandSettled(ctx, ts.ID, target))

	// One connected player left, so the table dies even though a
	// disconnected stack still sits on it.
	ts, err = svc.Get(ctx, ts.ID)
	require.NoError(t, err)
	assert.Len(t, ts.TableIDs, 2)
	assert.NotContains(t, ts.TableIDs, target)
	_, err = st.GetTable(ctx, target)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Both stacks are reseated, the disconnected one included.
	for _, id := range []string{survivor, ghost} {
		entry, err := st.GetEntry(ctx, ts.ID, id)
		require.NoError(t, err)
		require.NotEmpty(t, entry.TableID)
		assert.NotEqual(t, target, entry.TableID)

		moved, err := st.GetTable(ctx, entry.TableID)
		require.NoError(t, err)
		require.NotNil(t, moved.PlayerByID(id))
	}
	entry, err := st.GetEntry(ctx, ts.ID, ghost)
	require.NoError(t, err)
	reseated, err := st.GetTable(ctx, entry.TableID)
	require.NoError(t, err)
	assert.True(t, reseated.PlayerByID(ghost).Disconnected, "disconnected flag travels with the stack")
}

type recorderFunc func(ctx context.Context, tournamentID, playerID, playerName string, position int) error

func (f recorderFunc) RecordResult(ctx context.Context, tournamentID, playerID, playerName string, position int) error {
	return f(ctx, tournamentID, playerID, playerName, position)
}
