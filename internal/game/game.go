package game

import (
	"io"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/coderodent-calfee/texas-holdem/internal/deck"
	"github.com/coderodent-calfee/texas-holdem/internal/randutil"
)

const (
	MinPlayers = 2
	MaxPlayers = 10

	DefaultBigBlind        = 4
	DefaultBlindPause      = time.Second
	DefaultRevealCountdown = 5 // seconds
	DefaultStartingCount   = 7
)

// Options configures a Game. Zero values take the defaults above; the
// player pool must be injected, there is no package-level fixture data.
type Options struct {
	Logger          *log.Logger
	Clock           quartz.Clock
	RNG             *rand.Rand
	BigBlind        int
	BlindPause      time.Duration
	RevealCountdown int // seconds; the reveal phase auto-resolves after this
	Rules           Rules
	Players         []*Player // fixture pool, sliced by the player count
	StartingCount   int
}

// Game is the orchestrator: it owns the canonical player table and one
// instance each of the progression and betting engines, drives turn order,
// runs the timed blind-posting and reveal-countdown sequences, and exposes
// the visibility-filtered public snapshot. All mutation happens under one
// lock; timer callbacks re-enter through the same lock, so game logic never
// runs concurrently with itself.
type Game struct {
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand

	mu      sync.Mutex
	table   *Table
	hand    *HandEngine
	betting *BettingEngine
	sched   *scheduler

	pool  []*Player
	count int

	turn      int // index of the current turn holder, -1 when nobody acts
	countdown int // reveal countdown seconds remaining, -1 when idle
	claimed   map[string]bool

	blindPause      time.Duration
	revealCountdown int

	subs    map[int]func(Snapshot)
	nextSub int
}

// NewGame builds the orchestrator and, given at least two players, starts
// the first hand (shuffled deck, blind-posting sequence scheduled).
func NewGame(opts Options) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	rng := opts.RNG
	if rng == nil {
		rng = randutil.FromSeed(0)
	}
	bigBlind := opts.BigBlind
	if bigBlind <= 0 {
		bigBlind = DefaultBigBlind
	}
	blindPause := opts.BlindPause
	if blindPause <= 0 {
		blindPause = DefaultBlindPause
	}
	revealCountdown := opts.RevealCountdown
	if revealCountdown <= 0 {
		revealCountdown = DefaultRevealCountdown
	}
	count := opts.StartingCount
	if count <= 0 {
		count = DefaultStartingCount
	}
	if count > len(opts.Players) {
		count = len(opts.Players)
	}
	if count > MaxPlayers {
		count = MaxPlayers
	}

	g := &Game{
		logger:          logger.WithPrefix("game"),
		clock:           clock,
		rng:             rng,
		table:           NewTable(),
		sched:           newScheduler(clock),
		pool:            append([]*Player(nil), opts.Players...),
		count:           count,
		turn:            -1,
		countdown:       -1,
		claimed:         make(map[string]bool),
		blindPause:      blindPause,
		revealCountdown: revealCountdown,
		subs:            make(map[int]func(Snapshot)),
	}
	g.betting = NewBettingEngine(bigBlind)
	g.hand = NewHandEngine(g.table, opts.Rules, logger)

	g.mu.Lock()
	g.table.SetPlayers(g.pool[:g.count])
	started := g.table.Len() >= MinPlayers
	if started {
		g.resetHandLocked(nil)
	}
	g.mu.Unlock()

	if started {
		g.startBlindSequence()
	}
	return g
}

// Subscribe registers a callback invoked synchronously after every state
// mutation with the public snapshot. It returns a token for Unsubscribe.
func (g *Game) Subscribe(fn func(Snapshot)) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextSub++
	g.subs[g.nextSub] = fn
	return g.nextSub
}

// Unsubscribe removes a previously registered callback
func (g *Game) Unsubscribe(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.subs, id)
}

func (g *Game) notify() {
	g.mu.Lock()
	snap := g.snapshotLocked("")
	fns := make([]func(Snapshot), 0, len(g.subs))
	for _, fn := range g.subs {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Step advances the progression engine one phase, performing the turn and
// betting bookkeeping each phase entry needs. Returns whether further
// stepping is possible.
func (g *Game) Step() bool {
	g.mu.Lock()
	ok := g.stepLocked()
	g.mu.Unlock()
	g.notify()
	return ok
}

func (g *Game) stepLocked() bool {
	before := g.hand.Phase()
	ok := g.hand.Step()
	g.afterPhaseEntryLocked(before)
	return ok
}

// afterPhaseEntryLocked runs the orchestrator-side bookkeeping for a phase
// just entered from before: turn seeding, per-street betting reset, and the
// reveal countdown.
func (g *Game) afterPhaseEntryLocked(before Phase) {
	now := g.hand.Phase()
	if now == before {
		return
	}
	switch now {
	case PreFlopBet:
		// betting state was seeded by the blinds; just find the first actor
		g.turn = g.firstToActPreflopLocked()
	case Flop, Turn, River:
		g.betting.StartRound(g.table.Players())
		g.turn = g.firstToActPostflopLocked()
	case Showdown, Reveal:
		g.turn = -1
		if now == Reveal {
			g.enterRevealLocked()
		}
	}
}

// ApplyPlayerAction validates and applies a betting action for the current
// turn holder. Actions from any other id are rejected without side effects.
func (g *Game) ApplyPlayerAction(playerID string, action Action, amount int) error {
	g.mu.Lock()
	err := g.applyPlayerActionLocked(playerID, action, amount)
	g.mu.Unlock()
	if err != nil {
		g.logger.Debug("action rejected", "player", playerID, "action", action, "error", err)
		return err
	}
	g.notify()
	return nil
}

func (g *Game) applyPlayerActionLocked(playerID string, action Action, amount int) error {
	p, idx := g.table.ByID(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !g.hand.Phase().IsBettingStreet() {
		return ErrWrongPhase
	}
	if g.turn == -1 || idx != g.turn {
		return ErrNotYourTurn
	}

	if err := g.betting.Apply(p, action, amount); err != nil {
		return err
	}
	g.logger.Info("player action",
		"player", playerID, "action", action, "amount", amount,
		"pot", g.betting.Pot())

	if g.betting.IsRoundComplete(g.table.Players()) {
		g.advanceStreetsLocked()
	} else {
		g.turn = g.table.NextActive(idx + 1)
	}
	return nil
}

// advanceStreetsLocked steps the hand forward while betting rounds keep
// completing immediately (fold-outs and all-in runouts), then resolves the
// showdown and enters Reveal.
func (g *Game) advanceStreetsLocked() {
	players := g.table.Players()
	for g.hand.Phase().IsBettingStreet() && g.betting.IsRoundComplete(players) {
		g.hand.Step()
		if g.hand.Phase().IsBettingStreet() {
			// fold-outs and all-in runouts complete the fresh round too,
			// so the loop keeps walking streets
			g.betting.StartRound(players)
			g.turn = g.firstToActPostflopLocked()
		}
	}
	if g.hand.Phase() == Showdown {
		g.hand.Step() // resolves scores and winners, enters Reveal
	}
	if g.hand.Phase() == Reveal {
		g.turn = -1
		g.enterRevealLocked()
	}
}

// ApplySpecialAction handles blind posting and winner claims for a player.
// Blinds are only accepted during BlindsAndAnte and are gated by role flags.
func (g *Game) ApplySpecialAction(playerID string, action SpecialAction) error {
	g.mu.Lock()
	var err error
	switch action {
	case ClaimWinnings:
		err = g.claimWinningsLocked(playerID)
	case PaySmallBlind, PayBigBlind:
		if g.hand.Phase() != BlindsAndAnte {
			err = ErrWrongPhase
		} else {
			p, _ := g.table.ByID(playerID)
			if p == nil {
				err = ErrUnknownPlayer
			} else {
				err = g.betting.ApplySpecial(p, action)
			}
		}
	}
	g.mu.Unlock()
	if err != nil {
		g.logger.Debug("special action rejected", "player", playerID, "action", action, "error", err)
		return err
	}
	g.notify()
	return nil
}

// ClaimWinnings pays out the calling winner's share of the pot
func (g *Game) ClaimWinnings(playerID string) error {
	return g.ApplySpecialAction(playerID, ClaimWinnings)
}

func (g *Game) claimWinningsLocked(playerID string) error {
	if g.hand.Phase() != Reveal {
		return ErrWrongPhase
	}
	p, _ := g.table.ByID(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}

	winners := g.hand.Winners()
	isWinner := false
	for _, id := range winners {
		if id == playerID {
			isWinner = true
			break
		}
	}
	if !isWinner {
		return ErrNotAWinner
	}
	if g.claimed[playerID] {
		return ErrAlreadyClaimed
	}

	unclaimed := 0
	for _, id := range winners {
		if !g.claimed[id] {
			unclaimed++
		}
	}
	share := g.betting.Pot() / unclaimed
	g.betting.DistributePot(p, share)
	g.claimed[playerID] = true
	g.betting.MarkActed(playerID)
	g.logger.Info("winnings claimed", "player", playerID, "share", share)

	if len(g.claimed) == len(winners) && g.betting.Pot() > 0 {
		// Odd-chip rule: any residue goes to the first winner clockwise
		// from the dealer.
		if first := g.firstWinnerClockwiseLocked(winners); first != nil {
			g.betting.DistributePot(first, g.betting.Pot())
		}
	}
	return nil
}

func (g *Game) firstWinnerClockwiseLocked(winners []string) *Player {
	n := g.table.Len()
	dealer := g.hand.DealerIndex()
	for i := 1; i <= n; i++ {
		p := g.table.Get((dealer + i) % n)
		for _, id := range winners {
			if p != nil && p.ID == id {
				return p
			}
		}
	}
	return nil
}

// ResetHand begins a new hand with a freshly shuffled deck and re-runs the
// blind-posting sequence.
func (g *Game) ResetHand() {
	g.mu.Lock()
	g.resetHandLocked(nil)
	g.mu.Unlock()
	g.notify()
	g.startBlindSequence()
}

// ResetHandWithDeck begins a new hand with the supplied deck installed
// verbatim, for deterministic deals in tests.
func (g *Game) ResetHandWithDeck(cards []deck.Card) {
	g.mu.Lock()
	g.resetHandLocked(cards)
	g.mu.Unlock()
	g.notify()
	g.startBlindSequence()
}

func (g *Game) resetHandLocked(forced []deck.Card) {
	g.sched.Cancel()
	if forced != nil {
		g.hand.ResetHandWithDeck(forced)
	} else {
		g.hand.ResetHand(g.rng)
	}
	g.betting.ResetHand()
	g.claimed = make(map[string]bool)
	g.countdown = -1
	g.turn = -1
}

// AdvanceDealer rotates the dealer button to the next seat holding chips
func (g *Game) AdvanceDealer() {
	g.mu.Lock()
	g.hand.NextDealer()
	g.mu.Unlock()
	g.notify()
}

// SetPlayers replaces the player pool and starts a fresh hand. A malformed
// list resets the table to empty instead of crashing a live game.
func (g *Game) SetPlayers(players []*Player) {
	g.mu.Lock()
	ok := g.table.SetPlayers(players)
	if !ok {
		g.logger.Warn("player table malformed, resetting to empty")
		g.pool = nil
		g.count = 0
	} else {
		g.pool = append([]*Player(nil), players...)
		g.count = len(players)
	}
	g.resetHandLocked(nil)
	started := g.table.Len() >= MinPlayers
	g.mu.Unlock()

	g.notify()
	if started {
		g.startBlindSequence()
	}
}

// IncreasePlayerCount seats the next pooled player, up to ten. Joining
// mid-hand starts folded; joining before the deal plays immediately.
func (g *Game) IncreasePlayerCount() {
	g.mu.Lock()
	if g.count >= MaxPlayers || g.count >= len(g.pool) {
		g.mu.Unlock()
		return
	}
	g.count++
	joiner := g.pool[g.count-1]
	joiner.Committed = 0
	joiner.HoleCards = nil
	joiner.Dealer = false
	joiner.SmallBlind = false
	joiner.BigBlind = false
	joiner.Folded = g.hand.Phase() != BlindsAndAnte
	g.table.SetPlayers(g.pool[:g.count])
	g.mu.Unlock()
	g.notify()
}

// DecreasePlayerCount removes the last seated player, down to two
func (g *Game) DecreasePlayerCount() {
	g.mu.Lock()
	if g.count <= MinPlayers {
		g.mu.Unlock()
		return
	}
	g.count--
	g.table.SetPlayers(g.pool[:g.count])
	g.hand.clampDealer()
	if g.turn >= g.table.Len() {
		g.turn = -1
	}
	g.mu.Unlock()
	g.notify()
}

// AllowedActions returns the legal moves for a player: empty unless it is
// their turn during a betting street.
func (g *Game) AllowedActions(playerID string) (AllowedActions, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, idx := g.table.ByID(playerID)
	if p == nil {
		return AllowedActions{}, ErrUnknownPlayer
	}
	if !g.hand.Phase().IsBettingStreet() || idx != g.turn {
		return AllowedActions{}, nil
	}
	return g.betting.AllowedActions(p), nil
}

// BettingState returns a copy of the betting bookkeeping
func (g *Game) BettingState() BettingState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.betting.State()
}

// Phase returns the current hand phase
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hand.Phase()
}

// Snapshot builds the visibility-filtered public projection for a viewer.
// An empty viewer id sees no hole cards outside Reveal.
func (g *Game) Snapshot(viewerID string) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked(viewerID)
}

func (g *Game) snapshotLocked(viewerID string) Snapshot {
	phase := g.hand.Phase()
	state := g.betting.State()

	players := make([]PublicPlayer, 0, g.table.Len())
	for _, p := range g.table.Players() {
		pub := PublicPlayer{
			ID:         p.ID,
			Name:       p.Name,
			Seat:       p.Seat,
			Chips:      p.Chips,
			Committed:  p.Committed,
			Folded:     p.Folded,
			Dealer:     p.Dealer,
			SmallBlind: p.SmallBlind,
			BigBlind:   p.BigBlind,
		}
		pub.HoleCards = projectHoleCards(p, phase, viewerID)
		players = append(players, pub)
	}

	snap := Snapshot{
		Phase:     phase,
		Players:   players,
		Community: g.hand.Community(),
		Pot:       state.Pot,
		ToCall:    state.ToCall,
		LastRaise: state.LastRaise,
		DealerID:  g.hand.DealerID(),
		Countdown: g.countdown,
	}
	if turn := g.table.Get(g.turn); turn != nil {
		snap.TurnID = turn.ID
	}
	if phase == Reveal {
		scores := g.hand.Scores()
		for _, id := range g.hand.Winners() {
			snap.Winners = append(snap.Winners, PlayerScore{PlayerID: id, Score: scores[id]})
		}
	}
	return snap
}

// projectHoleCards applies the visibility rule: own cards are always
// visible, folded players' cards are never exposed, everyone else shows the
// face-down sentinel until Reveal.
func projectHoleCards(p *Player, phase Phase, viewerID string) []deck.Card {
	if p.HoleCards == nil {
		return nil
	}
	if p.ID == viewerID {
		return append([]deck.Card(nil), p.HoleCards...)
	}
	if p.Folded {
		return nil
	}
	if phase == Reveal {
		return append([]deck.Card(nil), p.HoleCards...)
	}
	return []deck.Card{deck.FaceDown, deck.FaceDown}
}

// startBlindSequence runs the scripted hand-opening sequence: post the small
// blind, pause, post the big blind, pause, deal and compute first-to-act.
// Starting it supersedes any sequence still pending from the previous hand.
func (g *Game) startBlindSequence() {
	g.logger.Debug("starting blind sequence")
	g.sched.Run([]seqStep{
		{0, func() {
			g.postBlind(PaySmallBlind)
		}},
		{g.blindPause, func() {
			g.postBlind(PayBigBlind)
		}},
		{g.blindPause, func() {
			g.mu.Lock()
			if g.hand.Phase() == BlindsAndAnte {
				g.stepLocked() // deals hole cards, seeds first-to-act
			}
			g.mu.Unlock()
			g.notify()
		}},
	})
}

func (g *Game) postBlind(action SpecialAction) {
	g.mu.Lock()
	if g.hand.Phase() != BlindsAndAnte {
		g.mu.Unlock()
		return
	}
	var blind *Player
	for _, p := range g.table.Players() {
		if (action == PaySmallBlind && p.SmallBlind && !p.BigBlind) ||
			(action == PayBigBlind && p.BigBlind && !p.SmallBlind) {
			blind = p
			break
		}
	}
	var err error
	if blind != nil {
		err = g.betting.ApplySpecial(blind, action)
	}
	g.mu.Unlock()

	if blind == nil {
		return
	}
	if err != nil {
		g.logger.Debug("blind not posted", "action", action, "player", blind.ID, "error", err)
		return
	}
	g.logger.Info("blind posted", "action", action, "player", blind.ID)
	g.notify()
}

// enterRevealLocked starts the reveal countdown. When it expires, unclaimed
// winnings are auto-claimed, the dealer rotates, and the next hand's blind
// sequence begins.
func (g *Game) enterRevealLocked() {
	g.countdown = g.revealCountdown
	steps := make([]seqStep, 0, g.revealCountdown)
	for i := 0; i < g.revealCountdown; i++ {
		steps = append(steps, seqStep{time.Second, g.countdownTick})
	}
	g.sched.Run(steps)
}

func (g *Game) countdownTick() {
	g.mu.Lock()
	if g.hand.Phase() != Reveal {
		g.mu.Unlock()
		return
	}
	g.countdown--
	expired := g.countdown <= 0
	if expired {
		g.autoClaimLocked()
		g.hand.NextDealer()
		g.resetHandLocked(nil)
	}
	g.mu.Unlock()

	g.notify()
	if expired {
		g.startBlindSequence()
	}
}

// autoClaimLocked claims for every winner who has not claimed, in seat order
// clockwise from the dealer.
func (g *Game) autoClaimLocked() {
	winners := g.hand.Winners()
	n := g.table.Len()
	dealer := g.hand.DealerIndex()
	for i := 1; i <= n; i++ {
		p := g.table.Get((dealer + i) % n)
		if p == nil || g.claimed[p.ID] {
			continue
		}
		for _, id := range winners {
			if p.ID == id {
				if err := g.claimWinningsLocked(p.ID); err != nil {
					g.logger.Warn("auto-claim failed", "player", p.ID, "error", err)
				}
				break
			}
		}
	}
}

func (g *Game) firstToActPreflopLocked() int {
	n := g.table.Len()
	if n < 2 {
		return -1
	}
	bb := (g.hand.DealerIndex() + 2) % n
	return g.table.NextActive(bb + 1)
}

func (g *Game) firstToActPostflopLocked() int {
	if g.table.Len() == 0 {
		return -1
	}
	return g.table.NextActive(g.hand.DealerIndex() + 1)
}
