package models

import (
	"fmt"
	"math/rand"
	"time"
)

// ErrInsufficientCards is returned when a deal asks for more cards than remain.
var ErrInsufficientCards = fmt.Errorf("not enough cards in deck")

// Deck holds the undealt remainder of a 52-card deck. The cards are part of
// the persisted game state so a hand can resume between actions.
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck builds an unshuffled deck in canonical suit-then-rank order.
func NewDeck() *Deck {
	d := &Deck{Cards: make([]Card, 0, 52)}
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.Cards = append(d.Cards, Card{Rank: rank, Suit: suit})
		}
	}
	return d
}

// NewShuffledDeck builds a fresh deck and shuffles it. A new deck is created
// for every hand; decks are never reused.
func NewShuffledDeck() *Deck {
	d := NewDeck()
	d.Shuffle(rand.New(rand.NewSource(time.Now().UnixNano())))
	return d
}

// Shuffle applies a Fisher-Yates shuffle using the supplied source.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.Cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Deal removes and returns the top n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.Cards) {
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientCards, n, len(d.Cards))
	}
	cards := make([]Card, n)
	copy(cards, d.Cards[:n])
	d.Cards = d.Cards[n:]
	return cards, nil
}

// Remaining reports how many cards are left.
func (d *Deck) Remaining() int {
	return len(d.Cards)
}
