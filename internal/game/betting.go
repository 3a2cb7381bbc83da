package game

import "fmt"

// AllowedActions describes what the betting rules permit a player right now.
// Amount fields are meaningful only when the matching Can flag is set.
type AllowedActions struct {
	CanFold  bool `json:"canFold"`
	CanCheck bool `json:"canCheck"`
	CanCall  bool `json:"canCall"`
	CanBet   bool `json:"canBet"`
	CanRaise bool `json:"canRaise"`
	CanAllIn bool `json:"canAllIn"`

	CallAmount int `json:"callAmount,omitempty"` // chips needed to call
	MinBet     int `json:"minBet,omitempty"`     // minimum opening bet
	MinRaise   int `json:"minRaise,omitempty"`   // minimum raise on top of the call
	MaxBet     int `json:"maxBet"`               // all-in cap
}

// BettingState is a read-only copy of the betting round's bookkeeping
type BettingState struct {
	Pot           int    `json:"pot"`
	ToCall        int    `json:"toCall"`
	LastRaise     int    `json:"lastRaise"`
	LastAggressor string `json:"lastAggressor,omitempty"`
	BigBlind      int    `json:"bigBlind"`
}

// BettingEngine enforces no-limit betting legality and keeps the pot and
// street commitments in sync with player stacks. It validates every action
// before mutating; a rejected action changes nothing.
type BettingEngine struct {
	pot           int
	toCall        int
	lastRaise     int
	lastAggressor string
	bigBlind      int
	roundComplete bool
	acted         map[string]struct{}
}

// NewBettingEngine creates a betting engine for the given big blind
func NewBettingEngine(bigBlind int) *BettingEngine {
	return &BettingEngine{
		bigBlind:  bigBlind,
		lastRaise: bigBlind,
		acted:     make(map[string]struct{}),
	}
}

// ResetHand zeroes all per-hand betting state
func (b *BettingEngine) ResetHand() {
	b.pot = 0
	b.toCall = 0
	b.lastRaise = b.bigBlind
	b.lastAggressor = ""
	b.roundComplete = false
	b.acted = make(map[string]struct{})
}

// StartRound begins a fresh betting street: commitments and the amount to
// call reset, and the minimum raise returns to the big blind. The pot keeps
// accumulating across streets within a hand.
func (b *BettingEngine) StartRound(players []*Player) {
	b.toCall = 0
	b.lastRaise = b.bigBlind
	b.lastAggressor = ""
	b.roundComplete = false
	b.acted = make(map[string]struct{})
	for _, p := range players {
		p.Committed = 0
	}
}

// State returns a copy of the current betting bookkeeping
func (b *BettingEngine) State() BettingState {
	return BettingState{
		Pot:           b.pot,
		ToCall:        b.toCall,
		LastRaise:     b.lastRaise,
		LastAggressor: b.lastAggressor,
		BigBlind:      b.bigBlind,
	}
}

// Pot returns the chips currently in the pot
func (b *BettingEngine) Pot() int {
	return b.pot
}

// HasActed reports whether the player has acted since the last aggressive
// action this street.
func (b *BettingEngine) HasActed(id string) bool {
	_, ok := b.acted[id]
	return ok
}

// MarkActed records the player as having acted this street. Claiming
// winnings counts as acting, which is why this is exported.
func (b *BettingEngine) MarkActed(id string) {
	b.acted[id] = struct{}{}
}

// AllowedActions computes the legal moves for a player. A player faces a bet
// when their street commitment is below the amount to call.
func (b *BettingEngine) AllowedActions(p *Player) AllowedActions {
	facing := p.Committed < b.toCall

	allowed := AllowedActions{
		CanFold:  p.Chips > 0,
		CanCheck: !facing && p.Chips > 0,
		CanCall:  facing && p.Chips > 0,
		CanAllIn: p.Chips > 0,
		MaxBet:   p.Chips,
	}

	if facing {
		callAmount := b.toCall - p.Committed
		if callAmount > p.Chips {
			callAmount = p.Chips
		}
		allowed.CallAmount = callAmount

		// A raise requires being able to at least call first. The raise part
		// on top of the call must reach the call amount plus the previous
		// raise increment, capped by the stack (all-in for less is allowed).
		if p.Chips > b.toCall-p.Committed {
			allowed.CanRaise = true
			allowed.MinRaise = min(p.Chips, (b.toCall-p.Committed)+b.lastRaise)
		}
	} else if p.Chips > 0 {
		allowed.CanBet = true
		allowed.MinBet = min(p.Chips, b.bigBlind)
	}

	return allowed
}

// Apply validates the action against the current rules and then mutates the
// player, pot and betting bookkeeping. On error nothing changes.
func (b *BettingEngine) Apply(p *Player, action Action, amount int) error {
	if p == nil {
		return ErrUnknownPlayer
	}

	allowed := b.AllowedActions(p)

	switch action {
	case Fold:
		if !allowed.CanFold {
			return fmt.Errorf("cannot fold with no chips behind")
		}
		p.Folded = true
		b.acted[p.ID] = struct{}{}

	case Check:
		if !allowed.CanCheck {
			return fmt.Errorf("cannot check, must call %d", b.toCall-p.Committed)
		}
		b.acted[p.ID] = struct{}{}

	case Call:
		if !allowed.CanCall {
			return fmt.Errorf("nothing to call")
		}
		callAmount := min(p.Chips, b.toCall-p.Committed)
		p.Chips -= callAmount
		p.Committed += callAmount
		b.pot += callAmount
		// calling never moves toCall, lastRaise or the aggressor
		b.acted[p.ID] = struct{}{}

	case Bet:
		if !allowed.CanBet {
			return fmt.Errorf("betting is closed, raise instead")
		}
		if amount < allowed.MinBet {
			return fmt.Errorf("bet %d below minimum %d", amount, allowed.MinBet)
		}
		if amount > p.Chips {
			return fmt.Errorf("bet %d exceeds stack %d", amount, p.Chips)
		}
		p.Chips -= amount
		p.Committed += amount
		b.pot += amount
		b.lastRaise = amount // an opening bet sets the raise size
		b.toCall = p.Committed
		b.lastAggressor = p.ID
		b.acted = map[string]struct{}{p.ID: {}}

	case Raise:
		if !allowed.CanRaise {
			return fmt.Errorf("cannot raise")
		}
		callPart := b.toCall - p.Committed
		raisePart := amount - callPart
		if amount < callPart {
			return fmt.Errorf("raise %d does not cover the call of %d", amount, callPart)
		}
		if raisePart < allowed.MinRaise && amount < p.Chips {
			return fmt.Errorf("raise of %d over the call is below minimum %d", raisePart, allowed.MinRaise)
		}
		if amount > p.Chips {
			return fmt.Errorf("raise %d exceeds stack %d", amount, p.Chips)
		}
		toCallBefore := b.toCall
		p.Chips -= amount
		p.Committed += amount
		b.pot += amount
		b.lastRaise = p.Committed - toCallBefore
		b.toCall = p.Committed
		b.lastAggressor = p.ID
		b.acted = map[string]struct{}{p.ID: {}}

	default:
		return fmt.Errorf("unknown action %d", action)
	}

	return nil
}

// ApplySpecial posts a blind. It is gated by the player's role flag matching
// the action and by the player not having acted yet this round. Once both
// blinds are recorded the amount to call and the minimum raise become the
// big blind.
func (b *BettingEngine) ApplySpecial(p *Player, action SpecialAction) error {
	if p == nil {
		return ErrUnknownPlayer
	}

	switch action {
	case PaySmallBlind:
		if !p.SmallBlind || p.BigBlind {
			return fmt.Errorf("%s is not the small blind", p.ID)
		}
	case PayBigBlind:
		if !p.BigBlind || p.SmallBlind {
			return fmt.Errorf("%s is not the big blind", p.ID)
		}
	default:
		return fmt.Errorf("special action %s is not a blind", action)
	}

	if _, ok := b.acted[p.ID]; ok {
		return fmt.Errorf("%s has already posted", p.ID)
	}

	blind := b.bigBlind
	if action == PaySmallBlind {
		blind = b.bigBlind / 2
	}
	blind = min(p.Chips, blind)

	p.Chips -= blind
	p.Committed += blind
	b.pot += blind
	b.acted[p.ID] = struct{}{}

	if len(b.acted) == 2 {
		b.toCall = b.bigBlind
		b.lastRaise = b.bigBlind
	}

	return nil
}

// IsRoundComplete reports whether the street's betting has concluded: at
// most one player remains unfolded, or every unfolded player has matched the
// amount to call or is all-in, and every unfolded player who can still act
// has acted since the last aggressive action.
func (b *BettingEngine) IsRoundComplete(players []*Player) bool {
	if b.roundComplete {
		return true
	}

	unfolded := 0
	for _, p := range players {
		if !p.Folded {
			unfolded++
		}
	}
	if unfolded <= 1 {
		b.roundComplete = true
		return true
	}

	for _, p := range players {
		if p.Folded {
			continue
		}
		if p.Committed != b.toCall && p.Chips > 0 {
			return false
		}
		if p.Chips > 0 {
			if _, ok := b.acted[p.ID]; !ok {
				return false
			}
		}
	}

	b.roundComplete = true
	return true
}

// DistributePot moves share chips from the pot to the winner's stack
func (b *BettingEngine) DistributePot(winner *Player, share int) {
	if share > b.pot {
		share = b.pot
	}
	if share <= 0 {
		return
	}
	winner.Chips += share
	b.pot -= share
}
