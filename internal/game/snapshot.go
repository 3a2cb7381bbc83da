package game

import (
	"github.com/coderodent-calfee/texas-holdem/internal/deck"
	"github.com/coderodent-calfee/texas-holdem/internal/evaluator"
)

// PublicPlayer is the visibility-filtered view of one seat. HoleCards is nil
// before the deal (and for folded players), the FaceDown sentinel pair when
// hidden from the viewer, and the real cards when visible.
type PublicPlayer struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Seat       int         `json:"seat"`
	Chips      int         `json:"chips"`
	Committed  int         `json:"committed"`
	Folded     bool        `json:"folded"`
	Dealer     bool        `json:"isDealer"`
	SmallBlind bool        `json:"isSmallBlind"`
	BigBlind   bool        `json:"isBigBlind"`
	HoleCards  []deck.Card `json:"holeCards,omitempty"`
}

// PlayerScore pairs a winner with their showdown score
type PlayerScore struct {
	PlayerID string              `json:"playerId"`
	Score    evaluator.HandScore `json:"score"`
}

// Snapshot is the read-only public projection of the table: everything the
// UI layer consumes. It is a derived copy, never the live records.
type Snapshot struct {
	Phase     Phase          `json:"phase"`
	Players   []PublicPlayer `json:"players"`
	Community []deck.Card    `json:"communityCards"`
	Pot       int            `json:"pot"`
	ToCall    int            `json:"toCall"`
	LastRaise int            `json:"lastRaise"`
	DealerID  string         `json:"dealerId"`
	TurnID    string         `json:"turnId,omitempty"`
	Winners   []PlayerScore  `json:"winners,omitempty"` // populated at Reveal
	Countdown int            `json:"countdown"`         // seconds left; -1 when idle
}
