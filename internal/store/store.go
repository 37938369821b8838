package store

import (
	"context"
	"errors"

	"pokerhub/models"
)

// ErrNotFound is returned for any missing key, regardless of backend.
var ErrNotFound = errors.New("not found")

// Store persists table and tournament state between actions. The engine
// never touches storage itself; handlers load a state, apply one step and
// save it back through this interface.
type Store interface {
	SaveTable(ctx context.Context, gs *models.GameState) error
	GetTable(ctx context.Context, tableID string) (*models.GameState, error)
	DeleteTable(ctx context.Context, tableID string) error
	ListTableIDs(ctx context.Context) ([]string, error)

	SaveTournament(ctx context.Context, ts *models.TournamentState) error
	GetTournament(ctx context.Context, tournamentID string) (*models.TournamentState, error)
	ListTournamentIDs(ctx context.Context) ([]string, error)

	SaveEntry(ctx context.Context, tournamentID string, entry *models.TournamentPlayerEntry) error
	GetEntry(ctx context.Context, tournamentID, playerID string) (*models.TournamentPlayerEntry, error)
	ListEntries(ctx context.Context, tournamentID string) ([]*models.TournamentPlayerEntry, error)

	// PutMoveNotice records a pending table move for one player.
	// PopMoveNotice returns it at most once; a second pop finds nothing.
	PutMoveNotice(ctx context.Context, tournamentID string, notice *models.PlayerMoveNotification) error
	PopMoveNotice(ctx context.Context, tournamentID, playerID string) (*models.PlayerMoveNotification, error)
}
