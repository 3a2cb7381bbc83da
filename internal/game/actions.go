package game

import "fmt"

// Action represents a betting action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise"}[a]
}

// ParseAction parses the wire form of a betting action
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "bet":
		return Bet, nil
	case "raise":
		return Raise, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// SpecialAction represents an out-of-rotation action: forced blind posting
// and claiming showdown winnings.
type SpecialAction int

const (
	PaySmallBlind SpecialAction = iota
	PayBigBlind
	ClaimWinnings
)

func (a SpecialAction) String() string {
	return [...]string{"pay-small-blind", "pay-big-blind", "claim-winnings"}[a]
}

// ParseSpecialAction parses the wire form of a special action
func ParseSpecialAction(s string) (SpecialAction, error) {
	switch s {
	case "pay-small-blind":
		return PaySmallBlind, nil
	case "pay-big-blind":
		return PayBigBlind, nil
	case "claim-winnings":
		return ClaimWinnings, nil
	default:
		return 0, fmt.Errorf("unknown special action %q", s)
	}
}
