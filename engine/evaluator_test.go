package engine

import (
	"testing"

	"pokerhub/models"
)

func card(s string) models.Card {
	return models.Card{Rank: models.Rank(s[:1]), Suit: models.Suit(s[1:])}
}

func cards(ss ...string) []models.Card {
	out := make([]models.Card, len(ss))
	for i, s := range ss {
		out[i] = card(s)
	}
	return out
}

func TestEvaluateCategories(t *testing.T) {
	tests := []struct {
		name  string
		cards []string
		want  HandCategory
	}{
		{"royal flush", []string{"As", "Ks", "Qs", "Js", "Ts"}, RoyalFlush},
		{"straight flush", []string{"9h", "8h", "7h", "6h", "5h"}, StraightFlush},
		{"steel wheel", []string{"Ad", "2d", "3d", "4d", "5d"}, StraightFlush},
		{"four of a kind", []string{"7s", "7h", "7d", "7c", "2s"}, FourOfAKind},
		{"full house", []string{"Ks", "Kh", "Kd", "3c", "3s"}, FullHouse},
		{"flush", []string{"Ac", "Jc", "8c", "5c", "2c"}, Flush},
		{"straight", []string{"Ts", "9h", "8d", "7c", "6s"}, Straight},
		{"wheel", []string{"As", "2h", "3d", "4c", "5s"}, Straight},
		{"broadway", []string{"As", "Kh", "Qd", "Jc", "Ts"}, Straight},
		{"three of a kind", []string{"Qs", "Qh", "Qd", "7c", "2s"}, ThreeOfAKind},
		{"two pair", []string{"Js", "Jh", "4d", "4c", "9s"}, TwoPair},
		{"one pair", []string{"8s", "8h", "Kd", "5c", "2s"}, OnePair},
		{"high card", []string{"As", "Jh", "9d", "6c", "3s"}, HighCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(cards(tt.cards...))
			if got.Category != tt.want {
				t.Errorf("got %s, want %s", got.Category, tt.want)
			}
		})
	}
}

func TestEvaluateOrdering(t *testing.T) {
	// Each hand must beat the one after it.
	hands := [][]string{
		{"As", "Ks", "Qs", "Js", "Ts"},
		{"9h", "8h", "7h", "6h", "5h"},
		{"Ad", "2d", "3d", "4d", "5d"}, // wheel straight flush loses to the nine high
		{"7s", "7h", "7d", "7c", "2s"},
		{"Ks", "Kh", "Kd", "3c", "3s"},
		{"Ac", "Jc", "8c", "5c", "2c"},
		{"Ts", "9h", "8d", "7c", "6s"},
		{"As", "2h", "3d", "4c", "5s"}, // wheel plays below the ten-high straight
		{"Qs", "Qh", "Qd", "7c", "2s"},
		{"Js", "Jh", "4d", "4c", "9s"},
		{"8s", "8h", "Kd", "5c", "2s"},
		{"8s", "8h", "Qd", "5c", "2s"}, // same pair, worse kicker
		{"As", "Jh", "9d", "6c", "3s"},
	}
	prev := Evaluate(cards(hands[0]...))
	for i, h := range hands[1:] {
		cur := Evaluate(cards(h...))
		if cur.Score >= prev.Score {
			t.Fatalf("hand %v (score %d) should rank below %v (score %d)", h, cur.Score, hands[i], prev.Score)
		}
		prev = cur
	}
}

func TestEvaluateBestFiveOfSeven(t *testing.T) {
	// Board pairs the hole card into a full house.
	ev := EvaluateHole(cards("Ah", "Ad"), cards("As", "Kc", "Kd", "7h", "2s"))
	if ev.Category != FullHouse {
		t.Fatalf("got %s, want %s", ev.Category, FullHouse)
	}
	if len(ev.Cards) != 5 {
		t.Fatalf("best hand should have 5 cards, got %d", len(ev.Cards))
	}
}

func TestEvaluateKickerDecides(t *testing.T) {
	board := cards("Ks", "Kc", "9d", "6h", "2s")
	a := EvaluateHole(cards("Ah", "3d"), board)
	b := EvaluateHole(cards("Qh", "3c"), board)
	if a.Score <= b.Score {
		t.Fatalf("ace kicker (%d) should beat queen kicker (%d)", a.Score, b.Score)
	}
}

func TestFindWinnersSplitKeepsSeatOrder(t *testing.T) {
	board := cards("As", "Kc", "Qd", "Jh", "Ts")
	players := []*models.Player{
		{ID: "p1", Status: models.StatusActive, Cards: cards("2h", "3d")},
		{ID: "p2", Status: models.StatusFolded, Cards: cards("Ah", "Ad")},
		{ID: "p3", Status: models.StatusAllIn, Cards: cards("4c", "5s")},
	}
	got := FindWinners(players, board)
	if len(got) != 2 || got[0] != "p1" || got[1] != "p3" {
		t.Fatalf("want [p1 p3] playing the board, got %v", got)
	}
}

func TestFindWinnersSkipsFolded(t *testing.T) {
	board := cards("2s", "5c", "9d", "Jh", "Kd")
	players := []*models.Player{
		{ID: "folded-aces", Status: models.StatusFolded, Cards: cards("Ah", "Ad")},
		{ID: "live", Status: models.StatusActive, Cards: cards("3h", "4d")},
	}
	got := FindWinners(players, board)
	if len(got) != 1 || got[0] != "live" {
		t.Fatalf("folded hand must not win, got %v", got)
	}
}
