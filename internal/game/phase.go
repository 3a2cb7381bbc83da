package game

import "fmt"

// Phase is the hand-progression state. Exactly one phase is current; Reveal
// is terminal until an explicit reset re-enters BlindsAndAnte.
type Phase int

const (
	BlindsAndAnte Phase = iota
	PreFlopBet
	Flop
	Turn
	River
	Showdown
	Reveal
)

func (p Phase) String() string {
	switch p {
	case BlindsAndAnte:
		return "Blinds & Ante"
	case PreFlopBet:
		return "Pre-Flop Bet"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	case Reveal:
		return "reveal"
	default:
		return "unknown"
	}
}

// MarshalText serialises the phase in its display form
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the display form back into a phase
func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := BlindsAndAnte; candidate <= Reveal; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// IsBettingStreet returns true for the phases in which players act
func (p Phase) IsBettingStreet() bool {
	return p >= PreFlopBet && p <= River
}
