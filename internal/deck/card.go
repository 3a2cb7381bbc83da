package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota + 1
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two:
		return "2"
	case Three:
		return "3"
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card. The zero value is FaceDown, the sentinel
// used by the public projection to hide a hole card without revealing it.
type Card struct {
	Rank Rank
	Suit Suit
}

// FaceDown is the hidden-card sentinel. It renders as "1B", the card-back
// code the UI layer expects.
var FaceDown = Card{}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// IsFaceDown returns true for the hidden-card sentinel
func (c Card) IsFaceDown() bool {
	return c == FaceDown
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	if c.IsFaceDown() {
		return "1B"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// MarshalText encodes the card in its display form so snapshots serialise
// hole cards the same way they print.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card from its display form.
func (c *Card) UnmarshalText(text []byte) error {
	card, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// ParseCard parses a card from its display form ("A♠", "T♦", ...). The
// card-back code "1B" parses to FaceDown.
func ParseCard(s string) (Card, error) {
	if s == "1B" {
		return FaceDown, nil
	}
	runes := []rune(s)
	if len(runes) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	var rank Rank
	switch runes[0] {
	case '2':
		rank = Two
	case '3':
		rank = Three
	case '4':
		rank = Four
	case '5':
		rank = Five
	case '6':
		rank = Six
	case '7':
		rank = Seven
	case '8':
		rank = Eight
	case '9':
		rank = Nine
	case 'T':
		rank = Ten
	case 'J':
		rank = Jack
	case 'Q':
		rank = Queen
	case 'K':
		rank = King
	case 'A':
		rank = Ace
	default:
		return Card{}, fmt.Errorf("invalid rank %q", string(runes[0]))
	}

	var suit Suit
	switch runes[1] {
	case '♠', 'S':
		suit = Spades
	case '♥', 'H':
		suit = Hearts
	case '♦', 'D':
		suit = Diamonds
	case '♣', 'C':
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid suit %q", string(runes[1]))
	}

	return Card{Rank: rank, Suit: suit}, nil
}
