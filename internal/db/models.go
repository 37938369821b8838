package db

import "time"

// User is a registered account. Guests play without one.
type User struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Balance      int       `gorm:"not null;default:0" json:"balance"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TournamentResult is one archived finish. Written by the tournament
// coordinator as players bust; queried for player history.
type TournamentResult struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	TournamentID string    `gorm:"index;size:64;not null" json:"tournamentId"`
	PlayerID     string    `gorm:"index;size:64;not null" json:"playerId"`
	PlayerName   string    `gorm:"size:32" json:"playerName"`
	Position     int       `gorm:"not null" json:"position"`
	CreatedAt    time.Time `json:"finishedAt"`
}
