package engine

import "errors"

// Engine errors. Every rejection leaves the state untouched; callers
// re-fetch and retry with a corrected action.
var (
	ErrTableFull        = errors.New("table is full")
	ErrSeatTaken        = errors.New("seat already occupied")
	ErrInvalidSeat      = errors.New("invalid seat number")
	ErrAlreadySeated    = errors.New("player already seated at this table")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotWaiting       = errors.New("table is not waiting for players")
	ErrHandInProgress   = errors.New("hand is in progress")
	ErrNoHandInProgress = errors.New("no hand in progress")
	ErrNotEnoughPlayers = errors.New("need at least 2 players")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrCannotAct        = errors.New("player cannot act")
	ErrTableFinished    = errors.New("table is finished")

	ErrInvalidConfig = errors.New("invalid table configuration")
)
