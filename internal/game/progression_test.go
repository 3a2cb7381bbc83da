package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/coderodent-calfee/texas-holdem/internal/deck"
	"github.com/coderodent-calfee/texas-holdem/internal/randutil"
)

func newHand(t *testing.T, rules Rules, chips ...int) (*HandEngine, *Table) {
	t.Helper()
	table := NewTable()
	if !table.SetPlayers(stacks(chips...)) {
		t.Fatal("SetPlayers rejected a well-formed list")
	}
	return NewHandEngine(table, rules, log.New(io.Discard)), table
}

func TestStepPhaseSequence(t *testing.T) {
	t.Parallel()

	h, _ := newHand(t, Rules{}, 100, 100, 100)
	h.ResetHand(randutil.New(1))

	want := []Phase{BlindsAndAnte, PreFlopBet, Flop, Turn, River, Showdown}
	for i, phase := range want {
		if h.Phase() != phase {
			t.Fatalf("step %d: phase = %v, want %v", i, h.Phase(), phase)
		}
		more := h.Step()
		if phase == Showdown && more {
			t.Error("Step from Showdown should report no further steps")
		}
	}
	if h.Phase() != Reveal {
		t.Fatalf("final phase = %v, want %v", h.Phase(), Reveal)
	}
	if h.Step() {
		t.Error("Step from Reveal should be a no-op")
	}
}

func TestDealOffsetsAreDeterministic(t *testing.T) {
	t.Parallel()

	h, table := newHand(t, Rules{}, 100, 100, 100)
	ordered := deck.New().Cards()
	h.ResetHandWithDeck(ordered)

	h.Step() // deal
	for i, p := range table.Players() {
		want := ordered[2*i : 2*i+2]
		if len(p.HoleCards) != 2 || p.HoleCards[0] != want[0] || p.HoleCards[1] != want[1] {
			t.Errorf("player %d hole cards = %v, want %v", i, p.HoleCards, want)
		}
	}

	h.Step() // burn, flop
	if got := h.Community(); len(got) != 3 ||
		got[0] != ordered[7] || got[1] != ordered[8] || got[2] != ordered[9] {
		t.Errorf("flop = %v, want %v after one burn", got, ordered[7:10])
	}

	h.Step() // burn, turn
	if got := h.Community(); len(got) != 4 || got[3] != ordered[11] {
		t.Errorf("turn card = %v, want %v", got[len(got)-1], ordered[11])
	}

	h.Step() // burn, river
	if got := h.Community(); len(got) != 5 || got[4] != ordered[13] {
		t.Errorf("river card = %v, want %v", got[len(got)-1], ordered[13])
	}
}

func TestSameSeedSameDeal(t *testing.T) {
	t.Parallel()

	deal := func() [][]deck.Card {
		h, table := newHand(t, Rules{}, 100, 100)
		h.ResetHand(randutil.New(42))
		h.Step()
		out := make([][]deck.Card, 0, table.Len())
		for _, p := range table.Players() {
			out = append(out, p.HoleCards)
		}
		return out
	}

	a, b := deal(), deal()
	for i := range a {
		if a[i][0] != b[i][0] || a[i][1] != b[i][1] {
			t.Errorf("player %d deal differs across same-seed hands: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestStepWithNoPlayers(t *testing.T) {
	t.Parallel()

	h, _ := newHand(t, Rules{})
	if h.Step() {
		t.Error("Step with an empty table should be a no-op")
	}
	if h.DealerIndex() != -1 {
		t.Errorf("DealerIndex = %d with no players, want -1", h.DealerIndex())
	}
	if h.DealerID() != "" {
		t.Errorf("DealerID = %q with no players, want empty", h.DealerID())
	}
}

func TestRolesFromDealer(t *testing.T) {
	t.Parallel()

	h, table := newHand(t, Rules{}, 100, 100, 100, 100)
	h.ResetHand(randutil.New(1))

	players := table.Players()
	if !players[0].Dealer || !players[1].SmallBlind || !players[2].BigBlind {
		t.Errorf("roles not assigned clockwise from dealer: %+v %+v %+v",
			players[0], players[1], players[2])
	}
	if players[3].Dealer || players[3].SmallBlind || players[3].BigBlind {
		t.Errorf("seat 3 should hold no role, got %+v", players[3])
	}
}

func TestHeadsUpDealerPostsBigBlind(t *testing.T) {
	t.Parallel()

	h, table := newHand(t, Rules{}, 100, 100)
	h.ResetHand(randutil.New(1))

	dealer := table.Get(h.DealerIndex())
	other := table.Get((h.DealerIndex() + 1) % 2)
	if !dealer.BigBlind || dealer.SmallBlind {
		t.Errorf("heads-up dealer should be the big blind, got %+v", dealer)
	}
	if !other.SmallBlind || other.BigBlind {
		t.Errorf("heads-up non-dealer should be the small blind, got %+v", other)
	}
}

func TestNextDealerSkipsBustedSeats(t *testing.T) {
	t.Parallel()

	h, _ := newHand(t, Rules{}, 100, 0, 100)
	h.ResetHand(randutil.New(1))

	if h.DealerIndex() != 0 {
		t.Fatalf("initial dealer = %d, want 0", h.DealerIndex())
	}
	h.NextDealer()
	if h.DealerIndex() != 2 {
		t.Errorf("dealer = %d after rotation, want 2 skipping the busted seat", h.DealerIndex())
	}
	h.NextDealer()
	if h.DealerIndex() != 0 {
		t.Errorf("dealer = %d after wrap, want 0", h.DealerIndex())
	}
}

func TestDealerPersistsAcrossHands(t *testing.T) {
	t.Parallel()

	h, _ := newHand(t, Rules{}, 100, 100, 100)
	h.ResetHand(randutil.New(1))
	h.NextDealer()
	dealer := h.DealerIndex()

	h.ResetHand(randutil.New(2))
	if h.DealerIndex() != dealer {
		t.Errorf("dealer = %d after reset, want %d kept from previous hand", h.DealerIndex(), dealer)
	}
}

func TestResetClearsHandState(t *testing.T) {
	t.Parallel()

	h, table := newHand(t, Rules{}, 100, 100, 100)
	h.ResetHand(randutil.New(1))
	for h.Step() {
	}
	table.Players()[1].Folded = true

	h.ResetHand(randutil.New(2))
	if h.Phase() != BlindsAndAnte {
		t.Errorf("phase = %v after reset, want %v", h.Phase(), BlindsAndAnte)
	}
	if len(h.Community()) != 0 {
		t.Errorf("community not cleared: %v", h.Community())
	}
	if len(h.Winners()) != 0 || len(h.Scores()) != 0 {
		t.Error("winners and scores not cleared by reset")
	}
	for i, p := range table.Players() {
		if p.Folded || p.HoleCards != nil || p.Committed != 0 {
			t.Errorf("player %d hand state not reset: %+v", i, p)
		}
		if p.Chips != 100 {
			t.Errorf("player %d chips = %d, reset must not touch stacks", i, p.Chips)
		}
	}
}

func TestShowdownScoresOnlyUnfolded(t *testing.T) {
	t.Parallel()

	h, table := newHand(t, Rules{}, 100, 100, 100)
	h.ResetHand(randutil.New(7))
	h.Step() // deal
	table.Players()[2].Folded = true
	for h.Step() {
	}

	scores := h.Scores()
	if len(scores) != 2 {
		t.Fatalf("scored %d players, want 2 unfolded", len(scores))
	}
	if _, ok := scores["p2"]; ok {
		t.Error("folded player was scored")
	}
	for _, w := range h.Winners() {
		if w == "p2" {
			t.Error("folded player listed as winner")
		}
	}
}

func TestWalkAllStreetsAfterFoldOut(t *testing.T) {
	t.Parallel()

	h, table := newHand(t, Rules{}, 100, 100)
	h.ResetHand(randutil.New(3))
	h.Step() // deal
	table.Players()[1].Folded = true

	// default rules still deal every street for the runout
	h.Step()
	if h.Phase() != Flop {
		t.Fatalf("phase = %v, want %v", h.Phase(), Flop)
	}
	for h.Step() {
	}
	if got := len(h.Community()); got != 5 {
		t.Errorf("community has %d cards, want the full board", got)
	}
	if w := h.Winners(); len(w) != 1 || w[0] != "p0" {
		t.Errorf("winners = %v, want sole unfolded player", w)
	}
}

func TestShortCircuitSkipsToShowdown(t *testing.T) {
	t.Parallel()

	h, table := newHand(t, Rules{ShortCircuitFoldedHands: true}, 100, 100)
	h.ResetHand(randutil.New(3))
	h.Step() // deal
	table.Players()[1].Folded = true

	h.Step()
	if h.Phase() != Showdown {
		t.Fatalf("phase = %v, want %v with short-circuit rule on", h.Phase(), Showdown)
	}
	h.Step()
	if len(h.Community()) != 0 {
		t.Errorf("community = %v, want none dealt", h.Community())
	}
	if w := h.Winners(); len(w) != 1 || w[0] != "p0" {
		t.Errorf("winners = %v, want sole unfolded player", w)
	}
}
