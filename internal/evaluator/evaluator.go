// Package evaluator scores seven-card Texas Hold'em hands by counting rank
// multiplicities and suit groupings, and breaks ties with an explicit list
// of category-defining ranks followed by kickers. It deliberately trades the
// speed of table-based evaluators for a score that can be shown to players.
package evaluator

import (
	"sort"

	"github.com/coderodent-calfee/texas-holdem/internal/deck"
)

// Category ranks hand types from HighCard (weakest) to RoyalFlush
type Category int

const (
	HighCard Category = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the readable name of the category
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
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
	default:
		return "Unknown"
	}
}

// HandScore is the result of scoring a hand: the detected category plus up
// to five tiebreak ranks, category-defining ranks first and kickers after,
// both in descending strength.
type HandScore struct {
	Category Category    `json:"category"`
	Ranks    []deck.Rank `json:"ranks"`
}

// Compare returns 1 if s beats other, -1 if other beats s and 0 on a full
// tie across category and all tiebreak positions.
func (s HandScore) Compare(other HandScore) int {
	if s.Category != other.Category {
		if s.Category > other.Category {
			return 1
		}
		return -1
	}
	for i := 0; i < len(s.Ranks) && i < len(other.Ranks); i++ {
		if s.Ranks[i] != other.Ranks[i] {
			if s.Ranks[i] > other.Ranks[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Score evaluates two hole cards plus up to five community cards
func Score(hole []deck.Card, community []deck.Card) HandScore {
	cards := make([]deck.Card, 0, len(hole)+len(community))
	cards = append(cards, hole...)
	cards = append(cards, community...)

	counts := make(map[deck.Rank]int)
	suits := make(map[deck.Suit][]deck.Rank)
	for _, c := range cards {
		counts[c.Rank]++
		suits[c.Suit] = append(suits[c.Suit], c.Rank)
	}

	fours := ranksWithCount(counts, 4)
	threes := ranksWithCount(counts, 3)
	pairs := ranksWithCount(counts, 2)

	var flushRanks []deck.Rank
	for _, ranks := range suits {
		if len(ranks) >= 5 {
			flushRanks = sortedDesc(ranks)
			break
		}
	}

	allRanks := make([]deck.Rank, 0, len(cards))
	for _, c := range cards {
		allRanks = append(allRanks, c.Rank)
	}
	straight := straightRanks(allRanks)
	var straightFlush []deck.Rank
	if flushRanks != nil {
		straightFlush = straightRanks(flushRanks)
	}

	category := HighCard
	var main []deck.Rank

	switch {
	case straightFlush != nil:
		category = StraightFlush
		if straightFlush[0] == deck.Ace && straightFlush[1] == deck.King {
			category = RoyalFlush
		}
		main = straightFlush
	case len(fours) > 0:
		category = FourOfAKind
		main = fours[:1]
	case len(threes) > 0 && (len(pairs) > 0 || len(threes) > 1):
		category = FullHouse
		if len(pairs) > 0 && (len(threes) < 2 || pairs[0] > threes[1]) {
			main = []deck.Rank{threes[0], pairs[0]}
		} else {
			main = []deck.Rank{threes[0], threes[1]}
		}
	case flushRanks != nil:
		category = Flush
		main = flushRanks[:5]
	case straight != nil:
		category = Straight
		main = straight
	case len(threes) > 0:
		category = ThreeOfAKind
		main = threes[:1]
	case len(pairs) >= 2:
		category = TwoPair
		main = pairs[:2]
	case len(pairs) == 1:
		category = Pair
		main = pairs[:1]
	}

	// Kickers: remaining card ranks in descending order, excluding any rank
	// already named by the category, truncated to five total ranks.
	inMain := make(map[deck.Rank]bool, len(main))
	for _, r := range main {
		inMain[r] = true
	}
	ranks := append([]deck.Rank(nil), main...)
	for _, r := range sortedDesc(allRanks) {
		if len(ranks) >= 5 {
			break
		}
		if !inMain[r] {
			ranks = append(ranks, r)
		}
	}

	return HandScore{Category: category, Ranks: ranks}
}

// DetermineWinners selects the ids whose scores beat every other score:
// highest category first, then tiebreak ranks compared position by position,
// narrowing the candidate set at each position. Ids that survive all five
// positions split the pot. The result is sorted for determinism.
func DetermineWinners(scores map[string]HandScore) []string {
	if len(scores) == 0 {
		return nil
	}

	best := Category(0)
	var winners []string
	for id, s := range scores {
		switch {
		case s.Category > best:
			best = s.Category
			winners = []string{id}
		case s.Category == best:
			winners = append(winners, id)
		}
	}

	for pos := 0; pos < 5 && len(winners) > 1; pos++ {
		top := deck.Rank(-1)
		var filtered []string
		for _, id := range winners {
			ranks := scores[id].Ranks
			if pos >= len(ranks) {
				continue
			}
			switch {
			case ranks[pos] > top:
				top = ranks[pos]
				filtered = []string{id}
			case ranks[pos] == top:
				filtered = append(filtered, id)
			}
		}
		if len(filtered) == 0 {
			break // no candidate has a rank at this position
		}
		winners = filtered
	}

	sort.Strings(winners)
	return winners
}

func ranksWithCount(counts map[deck.Rank]int, n int) []deck.Rank {
	var out []deck.Rank
	for r, c := range counts {
		if c == n {
			out = append(out, r)
		}
	}
	return sortedDesc(out)
}

func sortedDesc(ranks []deck.Rank) []deck.Rank {
	out := append([]deck.Rank(nil), ranks...)
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// straightRanks returns the five ranks of the highest straight present in
// the given ranks (descending), the wheel A-2-3-4-5 as [5 4 3 2 A] when it
// is the only straight, or nil.
func straightRanks(ranks []deck.Rank) []deck.Rank {
	present := make(map[deck.Rank]bool, len(ranks))
	for _, r := range ranks {
		present[r] = true
	}

	for high := deck.Ace; high >= deck.Six; high-- {
		run := true
		for i := 0; i < 5; i++ {
			if !present[high-deck.Rank(i)] {
				run = false
				break
			}
		}
		if run {
			out := make([]deck.Rank, 5)
			for i := range out {
				out[i] = high - deck.Rank(i)
			}
			return out
		}
	}

	if present[deck.Ace] && present[deck.Two] && present[deck.Three] &&
		present[deck.Four] && present[deck.Five] {
		return []deck.Rank{deck.Five, deck.Four, deck.Three, deck.Two, deck.Ace}
	}

	return nil
}
