package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"pokerhub/models"
)

// MemoryStore is a process-local Store used in tests and for running
// without Redis. Values are stored as JSON so reads hand out copies with
// the same semantics as the Redis backend.
type MemoryStore struct {
	mu          sync.RWMutex
	tables      map[string][]byte
	tournaments map[string][]byte
	entries     map[string]map[string][]byte
	moves       map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:      make(map[string][]byte),
		tournaments: make(map[string][]byte),
		entries:     make(map[string]map[string][]byte),
		moves:       make(map[string]map[string][]byte),
	}
}

func (s *MemoryStore) SaveTable(_ context.Context, gs *models.GameState) error {
	data, err := json.Marshal(gs)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[gs.TableID] = data
	return nil
}

func (s *MemoryStore) GetTable(_ context.Context, tableID string) (*models.GameState, error) {
	s.mu.RLock()
	data, ok := s.tables[tableID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("table %s: %w", tableID, ErrNotFound)
	}
	var gs models.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

func (s *MemoryStore) DeleteTable(_ context.Context, tableID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, tableID)
	return nil
}

func (s *MemoryStore) ListTableIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) SaveTournament(_ context.Context, ts *models.TournamentState) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[ts.ID] = data
	return nil
}

func (s *MemoryStore) GetTournament(_ context.Context, tournamentID string) (*models.TournamentState, error) {
	s.mu.RLock()
	data, ok := s.tournaments[tournamentID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tournament %s: %w", tournamentID, ErrNotFound)
	}
	var ts models.TournamentState
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *MemoryStore) ListTournamentIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.tournaments))
	for id := range s.tournaments {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) SaveEntry(_ context.Context, tournamentID string, entry *models.TournamentPlayerEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[tournamentID] == nil {
		s.entries[tournamentID] = make(map[string][]byte)
	}
	s.entries[tournamentID][entry.PlayerID] = data
	return nil
}

func (s *MemoryStore) GetEntry(_ context.Context, tournamentID, playerID string) (*models.TournamentPlayerEntry, error) {
	s.mu.RLock()
	data, ok := s.entries[tournamentID][playerID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", playerID, ErrNotFound)
	}
	var entry models.TournamentPlayerEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *MemoryStore) ListEntries(_ context.Context, tournamentID string) ([]*models.TournamentPlayerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*models.TournamentPlayerEntry, 0, len(s.entries[tournamentID]))
	for _, data := range s.entries[tournamentID] {
		var entry models.TournamentPlayerEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (s *MemoryStore) PutMoveNotice(_ context.Context, tournamentID string, notice *models.PlayerMoveNotification) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moves[tournamentID] == nil {
		s.moves[tournamentID] = make(map[string][]byte)
	}
	s.moves[tournamentID][notice.PlayerID] = data
	return nil
}

func (s *MemoryStore) PopMoveNotice(_ context.Context, tournamentID, playerID string) (*models.PlayerMoveNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.moves[tournamentID][playerID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.moves[tournamentID], playerID)
	var notice models.PlayerMoveNotification
	if err := json.Unmarshal(data, &notice); err != nil {
		return nil, err
	}
	return &notice, nil
}
