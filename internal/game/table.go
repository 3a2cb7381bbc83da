package game

// Table is the single canonical player collection. The orchestrator owns it;
// the betting and progression engines operate on the same records through
// it, which keeps chip counts from desynchronising across engines.
type Table struct {
	players []*Player
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{}
}

// SetPlayers installs the player list. A malformed list (nil entries or
// duplicate ids) resets the table to empty rather than leaving a half-valid
// collection behind; callers get false so they can log it.
func (t *Table) SetPlayers(players []*Player) bool {
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p == nil || p.ID == "" || seen[p.ID] {
			t.players = nil
			return false
		}
		seen[p.ID] = true
	}
	t.players = make([]*Player, len(players))
	copy(t.players, players)
	return true
}

// Players returns the live player records in seat order
func (t *Table) Players() []*Player {
	return t.players
}

// Len returns the number of seated players
func (t *Table) Len() int {
	return len(t.players)
}

// Get returns the player at the given index, or nil out of range
func (t *Table) Get(i int) *Player {
	if i < 0 || i >= len(t.players) {
		return nil
	}
	return t.players[i]
}

// ByID returns the player with the given id and their index, or (nil, -1)
func (t *Table) ByID(id string) (*Player, int) {
	for i, p := range t.players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// NextActive returns the index of the first player at or after from
// (wrapping) who can still act, or -1 if nobody can.
func (t *Table) NextActive(from int) int {
	n := len(t.players)
	if n == 0 {
		return -1
	}
	for i := 0; i < n; i++ {
		pos := ((from+i)%n + n) % n
		if t.players[pos].CanAct() {
			return pos
		}
	}
	return -1
}

// NextWithChips returns the index of the first player strictly after from
// (wrapping) holding chips, or -1 if nobody qualifies.
func (t *Table) NextWithChips(from int) int {
	n := len(t.players)
	if n == 0 {
		return -1
	}
	for i := 1; i < n; i++ {
		pos := ((from+i)%n + n) % n
		if t.players[pos].Chips > 0 {
			return pos
		}
	}
	return -1
}

// UnfoldedCount returns how many players are still in the hand
func (t *Table) UnfoldedCount() int {
	count := 0
	for _, p := range t.players {
		if !p.Folded {
			count++
		}
	}
	return count
}
