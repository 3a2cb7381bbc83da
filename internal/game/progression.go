package game

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/coderodent-calfee/texas-holdem/internal/deck"
	"github.com/coderodent-calfee/texas-holdem/internal/evaluator"
)

// Rules holds table-rule policies that change hand progression
type Rules struct {
	// ShortCircuitFoldedHands skips the remaining streets and jumps straight
	// to showdown once at most one player is unfolded. Off by default: the
	// table walks every street so spectators see the full runout.
	ShortCircuitFoldedHands bool
}

// HandEngine is the hand-progression state machine. Each Step advances one
// phase, consuming the deck at fixed offsets: two cards per player in seat
// order, then a burn before each community reveal. It shares the canonical
// player table with the betting engine.
type HandEngine struct {
	table     *Table
	deck      *deck.Deck
	community []deck.Card
	phase     Phase
	dealer    int
	dealerSet bool
	scores    map[string]evaluator.HandScore
	winners   []string
	rules     Rules
	logger    *log.Logger
}

// NewHandEngine creates a progression engine over the shared player table
func NewHandEngine(table *Table, rules Rules, logger *log.Logger) *HandEngine {
	return &HandEngine{
		table:  table,
		deck:   deck.New(),
		phase:  Reveal, // nothing runs until the first reset
		rules:  rules,
		logger: logger.WithPrefix("hand"),
	}
}

// ResetHand begins a new hand with a freshly shuffled deck
func (h *HandEngine) ResetHand(rng *rand.Rand) {
	d := deck.New()
	d.Shuffle(rng)
	h.resetWith(d)
}

// ResetHandWithDeck begins a new hand with the supplied deck installed
// verbatim, so the deal is a pure function of the deck and player count.
func (h *HandEngine) ResetHandWithDeck(cards []deck.Card) {
	h.resetWith(deck.FromCards(cards))
}

func (h *HandEngine) resetWith(d *deck.Deck) {
	h.deck = d
	h.community = nil
	h.scores = make(map[string]evaluator.HandScore)
	h.winners = nil

	for _, p := range h.table.Players() {
		p.resetForHand()
	}

	h.deriveDealer()
	h.assignRoles()
	h.phase = BlindsAndAnte
}

// deriveDealer keeps the current dealer across hands once set; the first
// setup picks the first seat holding chips.
func (h *HandEngine) deriveDealer() {
	n := h.table.Len()
	if h.dealerSet && h.dealer >= 0 && h.dealer < n {
		return
	}
	h.dealer = 0
	for i, p := range h.table.Players() {
		if p.Chips > 0 {
			h.dealer = i
			break
		}
	}
	h.dealerSet = n > 0
}

// assignRoles recomputes the role flags from the dealer position. The small
// blind is always one seat clockwise from the dealer, heads-up included.
func (h *HandEngine) assignRoles() {
	n := h.table.Len()
	if n < 2 {
		return
	}
	h.table.Get(h.dealer).Dealer = true
	h.table.Get((h.dealer + 1) % n).SmallBlind = true
	h.table.Get((h.dealer + 2) % n).BigBlind = true
}

// NextDealer rotates the dealer button forward to the next seat holding
// chips. The dealer is unchanged if no other seat qualifies.
func (h *HandEngine) NextDealer() {
	if next := h.table.NextWithChips(h.dealer); next != -1 {
		h.dealer = next
	}
}

// Step advances the state machine one phase and reports whether further
// stepping is possible. Stepping with no players, or from the terminal
// Reveal phase, is a no-op returning false.
func (h *HandEngine) Step() bool {
	if h.table.Len() == 0 {
		return false
	}

	switch h.phase {
	case BlindsAndAnte:
		for _, p := range h.table.Players() {
			p.HoleCards = h.deck.DealN(2)
		}
		h.phase = PreFlopBet
		h.logger.Debug("dealt hole cards", "players", h.table.Len())
		return true

	case PreFlopBet:
		if h.shortCircuit() {
			return true
		}
		h.deck.Burn()
		h.community = h.deck.DealN(3)
		h.phase = Flop
		h.logger.Debug("revealed flop", "community", h.community)
		return true

	case Flop:
		if h.shortCircuit() {
			return true
		}
		h.deck.Burn()
		h.community = append(h.community, h.deck.DealN(1)...)
		h.phase = Turn
		h.logger.Debug("revealed turn", "community", h.community)
		return true

	case Turn:
		if h.shortCircuit() {
			return true
		}
		h.deck.Burn()
		h.community = append(h.community, h.deck.DealN(1)...)
		h.phase = River
		h.logger.Debug("revealed river", "community", h.community)
		return true

	case River:
		h.phase = Showdown
		return true

	case Showdown:
		h.resolveShowdown()
		h.phase = Reveal
		return false

	default: // Reveal is terminal
		return false
	}
}

func (h *HandEngine) shortCircuit() bool {
	if !h.rules.ShortCircuitFoldedHands || h.table.UnfoldedCount() > 1 {
		return false
	}
	h.phase = Showdown
	return true
}

// resolveShowdown scores every unfolded player's best hand and records the
// winner set.
func (h *HandEngine) resolveShowdown() {
	h.scores = make(map[string]evaluator.HandScore)
	for _, p := range h.table.Players() {
		if p.Folded || p.HoleCards == nil {
			continue
		}
		h.scores[p.ID] = evaluator.Score(p.HoleCards, h.community)
	}
	h.winners = evaluator.DetermineWinners(h.scores)
	h.logger.Info("showdown resolved", "winners", h.winners)
}

// Phase returns the current phase
func (h *HandEngine) Phase() Phase {
	return h.phase
}

// Community returns a copy of the revealed community cards
func (h *HandEngine) Community() []deck.Card {
	out := make([]deck.Card, len(h.community))
	copy(out, h.community)
	return out
}

// DealerIndex returns the dealer's seat index, or -1 with no players
func (h *HandEngine) DealerIndex() int {
	if h.table.Len() == 0 {
		return -1
	}
	return h.dealer
}

// DealerID returns the dealer's player id, or "" with no players
func (h *HandEngine) DealerID() string {
	p := h.table.Get(h.DealerIndex())
	if p == nil {
		return ""
	}
	return p.ID
}

// Scores returns the showdown scores keyed by player id
func (h *HandEngine) Scores() map[string]evaluator.HandScore {
	out := make(map[string]evaluator.HandScore, len(h.scores))
	for id, s := range h.scores {
		out[id] = s
	}
	return out
}

// Winners returns the ids sharing the best showdown score
func (h *HandEngine) Winners() []string {
	return append([]string(nil), h.winners...)
}

// clampDealer pulls the dealer back into range after the table shrinks
func (h *HandEngine) clampDealer() {
	if h.dealer >= h.table.Len() {
		h.dealer = 0
	}
}
