package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// RecordResult archives one finish position. Duplicate writes for the same
// tournament and player are dropped so the idempotent post-hand pass can
// safely record twice.
func (d *DB) RecordResult(ctx context.Context, tournamentID, playerID, playerName string, position int) error {
	var existing TournamentResult
	err := d.WithContext(ctx).
		Where("tournament_id = ? AND player_id = ?", tournamentID, playerID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	return d.WithContext(ctx).Create(&TournamentResult{
		TournamentID: tournamentID,
		PlayerID:     playerID,
		PlayerName:   playerName,
		Position:     position,
	}).Error
}

// ResultsFor returns a tournament's archived standings, best finish first.
func (d *DB) ResultsFor(ctx context.Context, tournamentID string) ([]TournamentResult, error) {
	var results []TournamentResult
	err := d.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("position asc").
		Find(&results).Error
	return results, err
}

// PlayerHistory returns a player's past finishes, most recent first.
func (d *DB) PlayerHistory(ctx context.Context, playerID string, limit int) ([]TournamentResult, error) {
	if limit <= 0 {
		limit = 50
	}
	var results []TournamentResult
	err := d.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at desc").
		Limit(limit).
		Find(&results).Error
	return results, err
}

// Balance looks up a user's balance for eligibility checks. Unknown players
// (guests) report zero without an error.
func (d *DB) Balance(ctx context.Context, playerID string) (int, error) {
	var user User
	err := d.WithContext(ctx).Where("id = ?", playerID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}
