package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderodent-calfee/texas-holdem/internal/deck"
	"github.com/coderodent-calfee/texas-holdem/internal/game"
)

func card(t *testing.T, code string) deck.Card {
	t.Helper()
	c, err := deck.ParseCard(code)
	require.NoError(t, err)
	return c
}

func testDeck(t *testing.T, codes ...string) []deck.Card {
	t.Helper()
	out := make([]deck.Card, len(codes))
	for i, code := range codes {
		out[i] = card(t, code)
	}
	return out
}

// newWSTestServer brings up a three-handed game behind a websocket endpoint.
// Blind pauses are a millisecond so hands deal almost immediately.
func newWSTestServer(t *testing.T) (*game.Game, *httptest.Server) {
	t.Helper()

	pool := []*game.Player{
		game.NewPlayer("p0", "Player 1", 0, 500),
		game.NewPlayer("p1", "Player 2", 1, 500),
		game.NewPlayer("p2", "Player 3", 2, 500),
	}
	g := game.NewGame(game.Options{
		Logger:          log.New(io.Discard),
		BigBlind:        4,
		BlindPause:      time.Millisecond,
		RevealCountdown: 1,
		Players:         pool,
		StartingCount:   3,
	})

	s := NewServer("", g, log.New(io.Discard))
	go s.run()
	s.subID = g.Subscribe(s.broadcastState)

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(func() {
		ts.Close()
		s.Stop()
	})
	return g, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, typ MessageType, data interface{}) {
	t.Helper()
	msg, err := NewMessage(typ, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil reads messages until one of the wanted type arrives
func readUntil(t *testing.T, conn *websocket.Conn, typ MessageType) *Message {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", typ)
		if msg.Type == typ {
			return &msg
		}
	}
}

// readState reads state messages until the predicate holds
func readState(t *testing.T, conn *websocket.Conn, pred func(game.Snapshot) bool) game.Snapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for state")
		if msg.Type != MessageTypeState {
			continue
		}
		var data StateData
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		if pred(data.State) {
			return data.State
		}
	}
}

func TestConnectReceivesInitialState(t *testing.T) {
	_, ts := newWSTestServer(t)
	conn := dialWS(t, ts)

	msg := readUntil(t, conn, MessageTypeState)
	var data StateData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Len(t, data.State.Players, 3)
}

func TestJoinByName(t *testing.T) {
	_, ts := newWSTestServer(t)
	conn := dialWS(t, ts)

	sendMessage(t, conn, MessageTypeJoin, JoinData{PlayerName: "Player 2"})
	msg := readUntil(t, conn, MessageTypeJoined)

	var data JoinedData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "p1", data.PlayerID)
}

func TestJoinUnknownNameRejected(t *testing.T) {
	_, ts := newWSTestServer(t)
	conn := dialWS(t, ts)

	sendMessage(t, conn, MessageTypeJoin, JoinData{PlayerName: "Nobody"})
	msg := readUntil(t, conn, MessageTypeError)

	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "unknown_player", data.Code)
}

func TestActionBeforeJoinRejected(t *testing.T) {
	_, ts := newWSTestServer(t)
	conn := dialWS(t, ts)

	sendMessage(t, conn, MessageTypeAction, ActionData{Action: "call"})
	msg := readUntil(t, conn, MessageTypeError)

	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "not_joined", data.Code)
}

func TestHoleCardVisibilityPerViewer(t *testing.T) {
	g, ts := newWSTestServer(t)

	seated := dialWS(t, ts)
	sendMessage(t, seated, MessageTypeJoin, JoinData{PlayerName: "Player 1"})
	readUntil(t, seated, MessageTypeJoined)

	spectator := dialWS(t, ts)
	readUntil(t, spectator, MessageTypeState)

	g.ResetHandWithDeck(testDeck(t,
		"AS", "AH",
		"KS", "KH",
		"QS", "QH",
		"2C",
		"AD", "AC", "5S",
		"2D", "7D", "2H", "9C",
	))

	// the forced deck's hole cards identify the reset hand over any state
	// still buffered from the hand the game opened with
	own := readState(t, seated, func(s game.Snapshot) bool {
		return s.Phase == game.PreFlopBet &&
			len(s.Players[0].HoleCards) == 2 &&
			s.Players[0].HoleCards[0] == card(t, "AS")
	})
	require.Len(t, own.Players[0].HoleCards, 2)
	assert.True(t, own.Players[1].HoleCards[0].IsFaceDown())

	public := readState(t, spectator, func(s game.Snapshot) bool {
		return s.Phase == game.PreFlopBet && len(s.Players[0].HoleCards) == 2
	})
	assert.True(t, public.Players[0].HoleCards[0].IsFaceDown())
	assert.True(t, public.Players[1].HoleCards[0].IsFaceDown())
}

func TestActionOverTheWire(t *testing.T) {
	g, ts := newWSTestServer(t)

	conn := dialWS(t, ts)
	sendMessage(t, conn, MessageTypeJoin, JoinData{PlayerName: "Player 1"})
	readUntil(t, conn, MessageTypeJoined)

	g.ResetHandWithDeck(testDeck(t,
		"AS", "AH",
		"KS", "KH",
		"QS", "QH",
		"2C",
		"AD", "AC", "5S",
		"2D", "7D", "2H", "9C",
	))

	// p0 is first to act preflop; the forced hole cards distinguish this
	// hand from the one the game opened with
	readState(t, conn, func(s game.Snapshot) bool {
		return s.Phase == game.PreFlopBet && s.TurnID == "p0" &&
			len(s.Players[0].HoleCards) == 2 &&
			s.Players[0].HoleCards[0] == card(t, "AS")
	})
	readUntil(t, conn, MessageTypeAllowedActions)

	sendMessage(t, conn, MessageTypeAction, ActionData{Action: "call"})
	after := readState(t, conn, func(s game.Snapshot) bool { return s.Pot >= 10 })
	assert.Equal(t, "p1", after.TurnID)
}
