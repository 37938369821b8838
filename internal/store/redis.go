package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pokerhub/models"
)

const (
	tableKeyFmt      = "table:%s"
	tableIndexKey    = "tables"
	tournamentKeyFmt = "tournament:%s"
	tournamentIndex  = "tournaments"
	playersKeyFmt    = "tournament:%s:players"
	movesKeyFmt      = "tournament:%s:moves"
)

// RedisStore keeps all state as JSON in Redis: one string per table and
// tournament, one hash per tournament for entries and pending moves, and a
// set per kind as the listing index.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects and pings; a broken address fails fast at startup.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Client exposes the underlying connection for the lock manager.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SaveTable(ctx context.Context, gs *models.GameState) error {
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("marshaling table %s: %w", gs.TableID, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(tableKeyFmt, gs.TableID), data, 0)
	pipe.SAdd(ctx, tableIndexKey, gs.TableID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GetTable(ctx context.Context, tableID string) (*models.GameState, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(tableKeyFmt, tableID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("table %s: %w", tableID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var gs models.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("unmarshaling table %s: %w", tableID, err)
	}
	return &gs, nil
}

func (s *RedisStore) DeleteTable(ctx context.Context, tableID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, fmt.Sprintf(tableKeyFmt, tableID))
	pipe.SRem(ctx, tableIndexKey, tableID)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) ListTableIDs(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, tableIndexKey).Result()
}

func (s *RedisStore) SaveTournament(ctx context.Context, ts *models.TournamentState) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("marshaling tournament %s: %w", ts.ID, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(tournamentKeyFmt, ts.ID), data, 0)
	pipe.SAdd(ctx, tournamentIndex, ts.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GetTournament(ctx context.Context, tournamentID string) (*models.TournamentState, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(tournamentKeyFmt, tournamentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("tournament %s: %w", tournamentID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var ts models.TournamentState
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("unmarshaling tournament %s: %w", tournamentID, err)
	}
	return &ts, nil
}

func (s *RedisStore) ListTournamentIDs(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, tournamentIndex).Result()
}

func (s *RedisStore) SaveEntry(ctx context.Context, tournamentID string, entry *models.TournamentPlayerEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry %s: %w", entry.PlayerID, err)
	}
	return s.client.HSet(ctx, fmt.Sprintf(playersKeyFmt, tournamentID), entry.PlayerID, data).Err()
}

func (s *RedisStore) GetEntry(ctx context.Context, tournamentID, playerID string) (*models.TournamentPlayerEntry, error) {
	data, err := s.client.HGet(ctx, fmt.Sprintf(playersKeyFmt, tournamentID), playerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("entry %s: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var entry models.TournamentPlayerEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RedisStore) ListEntries(ctx context.Context, tournamentID string) ([]*models.TournamentPlayerEntry, error) {
	raw, err := s.client.HGetAll(ctx, fmt.Sprintf(playersKeyFmt, tournamentID)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]*models.TournamentPlayerEntry, 0, len(raw))
	for id, data := range raw {
		var entry models.TournamentPlayerEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return nil, fmt.Errorf("unmarshaling entry %s: %w", id, err)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (s *RedisStore) PutMoveNotice(ctx context.Context, tournamentID string, notice *models.PlayerMoveNotification) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, fmt.Sprintf(movesKeyFmt, tournamentID), notice.PlayerID, data).Err()
}

// PopMoveNotice reads and deletes in one transaction so a notice is
// delivered to exactly one reader.
func (s *RedisStore) PopMoveNotice(ctx context.Context, tournamentID, playerID string) (*models.PlayerMoveNotification, error) {
	key := fmt.Sprintf(movesKeyFmt, tournamentID)
	pipe := s.client.TxPipeline()
	get := pipe.HGet(ctx, key, playerID)
	pipe.HDel(ctx, key, playerID)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	data, err := get.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var notice models.PlayerMoveNotification
	if err := json.Unmarshal(data, &notice); err != nil {
		return nil, err
	}
	return &notice, nil
}
