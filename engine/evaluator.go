package engine

import (
	"sort"

	"pokerhub/models"
)

// HandCategory orders poker hand classes from weakest to strongest.
type HandCategory int

const (
	HighCard HandCategory = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (c HandCategory) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	}
	return "Unknown"
}

// HandEval is the strength of the best five-card hand. Score gives a total
// order: the category in the high bits, then the five tiebreak ranks packed
// four bits each, so any two evaluations compare with a single integer
// comparison.
type HandEval struct {
	Category HandCategory  `json:"category"`
	Score    int           `json:"score"`
	Cards    []models.Card `json:"cards"`
}

// Evaluate returns the best five-card hand from five to seven cards.
func Evaluate(cards []models.Card) HandEval {
	if len(cards) <= 5 {
		return scoreFive(cards)
	}
	best := HandEval{Score: -1}
	pick := make([]models.Card, 5)
	n := len(cards)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						pick[0], pick[1], pick[2], pick[3], pick[4] =
							cards[a], cards[b], cards[c], cards[d], cards[e]
						if ev := scoreFive(pick); ev.Score > best.Score {
							best = ev
						}
					}
				}
			}
		}
	}
	return best
}

// EvaluateHole evaluates two hole cards against the board.
func EvaluateHole(hole, community []models.Card) HandEval {
	all := make([]models.Card, 0, len(hole)+len(community))
	all = append(all, hole...)
	all = append(all, community...)
	return Evaluate(all)
}

// FindWinners returns the IDs of the players holding the strongest hand,
// preserving the seat order of the input. Folded and empty seats are skipped.
func FindWinners(players []*models.Player, community []models.Card) []string {
	best := -1
	var ids []string
	for _, p := range players {
		if !inHand(p) {
			continue
		}
		ev := EvaluateHole(p.Cards, community)
		switch {
		case ev.Score > best:
			best = ev.Score
			ids = ids[:0]
			ids = append(ids, p.ID)
		case ev.Score == best:
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func scoreFive(cards []models.Card) HandEval {
	sorted := make([]models.Card, len(cards))
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Value() > sorted[j].Value()
	})

	counts := map[int]int{}
	flush := len(sorted) == 5
	for i, c := range sorted {
		counts[c.Value()]++
		if i > 0 && c.Suit != sorted[0].Suit {
			flush = false
		}
	}

	straightHigh := straightHighCard(sorted)
	straight := straightHigh > 0

	var category HandCategory
	switch {
	case straight && flush && straightHigh == 14:
		category = RoyalFlush
	case straight && flush:
		category = StraightFlush
	case hasCount(counts, 4):
		category = FourOfAKind
	case hasCount(counts, 3) && hasCount(counts, 2):
		category = FullHouse
	case flush:
		category = Flush
	case straight:
		category = Straight
	case hasCount(counts, 3):
		category = ThreeOfAKind
	case pairCount(counts) >= 2:
		category = TwoPair
	case pairCount(counts) == 1:
		category = OnePair
	default:
		category = HighCard
	}

	var ranks []int
	if straight {
		// The wheel plays as five high; all other straights pack their
		// cards in descending order.
		if straightHigh == 5 {
			ranks = []int{5, 4, 3, 2, 1}
		} else {
			for _, c := range sorted {
				ranks = append(ranks, c.Value())
			}
		}
	} else {
		ranks = tiebreakRanks(counts)
	}

	score := int(category) << 20
	for i, r := range ranks {
		score |= r << uint(16-4*i)
	}
	return HandEval{Category: category, Score: score, Cards: sorted}
}

// straightHighCard returns the high card of a five-card straight, 5 for the
// wheel, or 0 when the cards are not a straight.
func straightHighCard(sorted []models.Card) int {
	if len(sorted) != 5 {
		return 0
	}
	run := true
	for i := 1; i < 5; i++ {
		if sorted[i].Value() != sorted[i-1].Value()-1 {
			run = false
			break
		}
	}
	if run {
		return sorted[0].Value()
	}
	// A-5-4-3-2 with the ace sorted on top.
	if sorted[0].Value() == 14 && sorted[1].Value() == 5 &&
		sorted[2].Value() == 4 && sorted[3].Value() == 3 && sorted[4].Value() == 2 {
		return 5
	}
	return 0
}

func hasCount(counts map[int]int, n int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}
	return false
}

func pairCount(counts map[int]int) int {
	n := 0
	for _, c := range counts {
		if c == 2 {
			n++
		}
	}
	return n
}

// tiebreakRanks orders card values by group size first, then by value, so a
// pair of threes with an ace kicker packs as 3,3,14,... and compares below
// any pair of fours.
func tiebreakRanks(counts map[int]int) []int {
	type group struct{ value, count int }
	groups := make([]group, 0, len(counts))
	for v, c := range counts {
		groups = append(groups, group{v, c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].value > groups[j].value
	})
	var ranks []int
	for _, g := range groups {
		for i := 0; i < g.count; i++ {
			ranks = append(ranks, g.value)
		}
	}
	return ranks
}
