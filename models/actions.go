package models

// ActionKind is the closed set of player actions. New kinds are never added
// at runtime; every kind has exactly one handler in the engine.
type ActionKind string

const (
	ActionFold  ActionKind = "fold"
	ActionCheck ActionKind = "check"
	ActionCall  ActionKind = "call"
	ActionRaise ActionKind = "raise"
	ActionAllIn ActionKind = "allin"
)

// Action is one submitted player decision. Amount is the total bet the
// player is raising to and is only meaningful for raises.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Amount int        `json:"amount,omitempty"`
}

// LegalAction describes one currently-available action with its bounds.
// Min and Max are total-bet amounts for raise, chip amounts otherwise.
type LegalAction struct {
	Kind ActionKind `json:"kind"`
	Min  int        `json:"min,omitempty"`
	Max  int        `json:"max,omitempty"`
}
