package game

import (
	"github.com/coderodent-calfee/texas-holdem/internal/deck"
)

// Player is one seat's canonical record. Players persist across hands (chips
// carry over); hole cards, commitments, fold state and role flags are reset
// at the start of each hand. Exactly one Table owns each Player; the engines
// mutate these records through that shared table, never through copies.
type Player struct {
	ID   string
	Name string
	Seat int

	Chips     int // uncommitted stack
	Committed int // chips placed during the current street
	Folded    bool
	HoleCards []deck.Card // nil until dealt

	// Role flags, recomputed from the dealer position each hand
	Dealer     bool
	SmallBlind bool
	BigBlind   bool
}

// NewPlayer creates a player with a starting stack
func NewPlayer(id, name string, seat, chips int) *Player {
	return &Player{ID: id, Name: name, Seat: seat, Chips: chips}
}

// CanAct returns true if the player can still take betting actions
func (p *Player) CanAct() bool {
	return !p.Folded && p.Chips > 0
}

// AllIn returns true if the player has committed their whole stack but
// remains eligible to win.
func (p *Player) AllIn() bool {
	return !p.Folded && p.Chips == 0
}

// resetForHand clears all per-hand state, leaving chips untouched
func (p *Player) resetForHand() {
	p.Committed = 0
	p.Folded = false
	p.HoleCards = nil
	p.Dealer = false
	p.SmallBlind = false
	p.BigBlind = false
}
