package tournament

import "errors"

var (
	ErrNotRegistering    = errors.New("tournament is not open for registration")
	ErrAlreadyStarted    = errors.New("tournament already started")
	ErrAlreadyRegistered = errors.New("player already registered")
	ErrTournamentFull    = errors.New("tournament is full")
	ErrNotCreator        = errors.New("only the creator can start the tournament")
	ErrNotEnoughPlayers  = errors.New("need at least 2 registered players")
	ErrInvalidConfig     = errors.New("invalid tournament configuration")
)
