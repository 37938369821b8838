package tournament

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"pokerhub/engine"
	"pokerhub/internal/eligibility"
	"pokerhub/internal/locks"
	"pokerhub/internal/store"
	"pokerhub/models"
)

const (
	defaultTableSize     = 6
	defaultStartingChips = 10000
	lockTTL              = 30 * time.Second
)

// ResultRecorder archives final standings. Recording is best effort; a
// failed write never blocks the tournament itself.
type ResultRecorder interface {
	RecordResult(ctx context.Context, tournamentID, playerID, playerName string, position int) error
}

// Service coordinates multi-table tournaments on top of the store. All
// cross-table work runs under a per-tournament lock so concurrent instances
// never rebalance the same tournament twice.
type Service struct {
	store   store.Store
	locker  locks.Locker
	logger  *log.Logger
	balance eligibility.BalanceFunc
	results ResultRecorder
}

func NewService(st store.Store, locker locks.Locker, logger *log.Logger) *Service {
	return &Service{
		store:  st,
		locker: locker,
		logger: logger.With("component", "tournament"),
	}
}

// WithBalanceLookup wires the balance source for minimum-balance
// eligibility rules.
func (s *Service) WithBalanceLookup(fn eligibility.BalanceFunc) *Service {
	s.balance = fn
	return s
}

// WithResultRecorder wires the standings archive.
func (s *Service) WithResultRecorder(r ResultRecorder) *Service {
	s.results = r
	return s
}

// Create opens a tournament for registration.
func (s *Service) Create(ctx context.Context, creatorID, name string, cfg models.TournamentConfig) (*models.TournamentState, error) {
	if cfg.TableSize == 0 {
		cfg.TableSize = defaultTableSize
	}
	if cfg.TableSize < 2 || cfg.TableSize > 10 {
		return nil, fmt.Errorf("%w: table size must be between 2 and 10", ErrInvalidConfig)
	}
	if cfg.StartingChips == 0 {
		cfg.StartingChips = defaultStartingChips
	}
	if cfg.StartingChips < 0 {
		return nil, fmt.Errorf("%w: starting chips must be positive", ErrInvalidConfig)
	}
	if cfg.MaxPlayers < 2 {
		return nil, fmt.Errorf("%w: need room for at least 2 players", ErrInvalidConfig)
	}
	if len(cfg.Levels) == 0 {
		cfg.Levels = DefaultLadder(10, 10, 600)
	}
	if err := engine.ValidateLevels(cfg.Levels); err != nil {
		return nil, err
	}

	ts := &models.TournamentState{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    models.TournamentRegistering,
		CreatorID: creatorID,
		Config:    cfg,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveTournament(ctx, ts); err != nil {
		return nil, err
	}
	s.logger.Info("tournament created", "tournament", ts.ID, "name", name, "creator", creatorID)
	return ts, nil
}

// Register adds a player during the registration window, enforcing
// capacity and any eligibility rules from the config.
func (s *Service) Register(ctx context.Context, tournamentID, playerID, name string) (*models.TournamentPlayerEntry, error) {
	ts, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if ts.Status != models.TournamentRegistering {
		return nil, ErrNotRegistering
	}
	if ts.RegisteredCount >= ts.Config.MaxPlayers {
		return nil, ErrTournamentFull
	}
	if _, err := s.store.GetEntry(ctx, tournamentID, playerID); err == nil {
		return nil, ErrAlreadyRegistered
	}

	checker := eligibility.FromConfig(ts.Config.Eligibility, s.balance)
	if err := checker.Check(ctx, playerID); err != nil {
		return nil, err
	}

	entry := &models.TournamentPlayerEntry{
		PlayerID: playerID,
		Name:     name,
		Status:   models.EntryRegistered,
		Chips:    ts.Config.StartingChips,
	}
	if err := s.store.SaveEntry(ctx, tournamentID, entry); err != nil {
		return nil, err
	}
	ts.RegisteredCount++
	ts.RemainingCount++
	if err := s.store.SaveTournament(ctx, ts); err != nil {
		return nil, err
	}
	s.logger.Info("player registered", "tournament", tournamentID, "player", playerID, "registered", ts.RegisteredCount)
	return entry, nil
}

// Start deals the field onto tables. Only the creator can start; players
// are shuffled and dealt round-robin so table sizes never differ by more
// than one.
func (s *Service) Start(ctx context.Context, tournamentID, actorID string) (*models.TournamentState, error) {
	ts, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if ts.Status != models.TournamentRegistering {
		return nil, ErrAlreadyStarted
	}
	if ts.CreatorID != actorID {
		return nil, ErrNotCreator
	}

	entries, err := s.store.ListEntries(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(entries) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	rand.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})

	tableCount := (len(entries) + ts.Config.TableSize - 1) / ts.Config.TableSize
	tables := make([]*models.GameState, tableCount)
	for i := range tables {
		gs, err := engine.NewGameState(uuid.New().String(), models.TableConfig{
			MaxPlayers:    ts.Config.TableSize,
			StartingChips: ts.Config.StartingChips,
			Levels:        ts.Config.Levels,
			ActionTimeout: ts.Config.ActionTimeout,
		})
		if err != nil {
			return nil, err
		}
		gs.TournamentID = tournamentID
		tables[i] = gs
	}

	for i, entry := range entries {
		gs := tables[i%tableCount]
		if err := engine.AddPlayer(gs, entry.PlayerID, entry.Name, -1); err != nil {
			return nil, fmt.Errorf("seating %s: %w", entry.PlayerID, err)
		}
		entry.Status = models.EntryPlaying
		entry.TableID = gs.TableID
	}

	now := time.Now()
	for _, gs := range tables {
		if err := engine.StartGame(gs); err != nil {
			return nil, fmt.Errorf("starting table %s: %w", gs.TableID, err)
		}
		gs.LevelStartedAt = now
		if err := s.store.SaveTable(ctx, gs); err != nil {
			return nil, err
		}
		ts.TableIDs = append(ts.TableIDs, gs.TableID)
	}
	for _, entry := range entries {
		if err := s.store.SaveEntry(ctx, tournamentID, entry); err != nil {
			return nil, err
		}
	}

	ts.Status = models.TournamentInProgress
	if tableCount == 1 {
		ts.Status = models.TournamentFinalTable
	}
	ts.RemainingCount = len(entries)
	ts.StartedAt = now
	if err := s.store.SaveTournament(ctx, ts); err != nil {
		return nil, err
	}
	s.logger.Info("tournament started",
		"tournament", tournamentID, "players", len(entries), "tables", tableCount)
	return ts, nil
}

// Get returns the current tournament state.
func (s *Service) Get(ctx context.Context, tournamentID string) (*models.TournamentState, error) {
	return s.store.GetTournament(ctx, tournamentID)
}

// List returns all known tournaments.
func (s *Service) List(ctx context.Context) ([]*models.TournamentState, error) {
	ids, err := s.store.ListTournamentIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.TournamentState, 0, len(ids))
	for _, id := range ids {
		ts, err := s.store.GetTournament(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, ts)
	}
	return out, nil
}

// Standings returns all entries for a tournament.
func (s *Service) Standings(ctx context.Context, tournamentID string) ([]*models.TournamentPlayerEntry, error) {
	return s.store.ListEntries(ctx, tournamentID)
}

// PendingMove returns and consumes the player's pending table move, if any.
func (s *Service) PendingMove(ctx context.Context, tournamentID, playerID string) (*models.PlayerMoveNotification, error) {
	return s.store.PopMoveNotice(ctx, tournamentID, playerID)
}
