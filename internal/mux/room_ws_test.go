package mux

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rankguesser-server/pkg/protocol"
)

type wsEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialWS(t *testing.T, tsURL, code, signed string) *websocket.Conn {
	t.Helper()

	wsURL := fmt.Sprintf("%s/room/%s/ws?access_token=%s",
		"ws"+strings.TrimPrefix(tsURL, "http"), code, signed)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn, msgType string) wsEnvelope {
	t.Helper()

	deadline := time.Now().Add(time.Second * 2)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))

		var env wsEnvelope
		require.NoError(t, conn.ReadJSON(&env))

		if env.Type == msgType {
			return env
		}
	}
}

func TestMux_getRoomCodeWS(t *testing.T) {
	ts, m := testServer(t)
	a := assert.New(t)

	rm, err := m.registry.CreateRoom()
	require.NoError(t, err)

	// a bad token never reaches the upgrade
	wsURL := fmt.Sprintf("%s/room/%s/ws?access_token=garbage",
		"ws"+strings.TrimPrefix(ts.URL, "http"), rm.Code())
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	a.Error(err)
	a.Equal(401, resp.StatusCode)

	alice := dialWS(t, ts.URL, rm.Code(), signedJWTForTest(t, "Alice"))
	require.NoError(t, alice.WriteJSON(protocol.Envelope{
		Type:    protocol.TypeJoinRoom,
		Payload: protocol.JoinRoom{RoomCode: rm.Code()},
	}))

	env := readEnvelope(t, alice, protocol.TypeResponse)
	var joinResp protocol.Response
	require.NoError(t, json.Unmarshal(env.Payload, &joinResp))
	a.True(joinResp.Success)

	env = readEnvelope(t, alice, protocol.TypeLobbyState)
	var lobby protocol.LobbyState
	require.NoError(t, json.Unmarshal(env.Payload, &lobby))
	require.Len(t, lobby.Players, 1)
	a.Equal("Alice", lobby.Players[0].Name)

	// an unknown frame gets an error response, not a close
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"BOGUS"}`)))
	env = readEnvelope(t, alice, protocol.TypeResponse)
	var badResp protocol.Response
	require.NoError(t, json.Unmarshal(env.Payload, &badResp))
	a.False(badResp.Success)

	// the connection keeps working afterwards
	require.NoError(t, alice.WriteJSON(protocol.Envelope{
		Type:    protocol.TypePlayerReady,
		Payload: protocol.PlayerReady{IsReady: true},
	}))
	env = readEnvelope(t, alice, protocol.TypeLobbyState)
	require.NoError(t, json.Unmarshal(env.Payload, &lobby))
	require.Len(t, lobby.Players, 1)
	a.True(lobby.Players[0].IsReady)
}

func TestMux_getRoomCodeWS_roundOverWebsocket(t *testing.T) {
	ts, m := testServer(t)
	a := assert.New(t)

	rm, err := m.registry.CreateRoom()
	require.NoError(t, err)

	conns := make([]*websocket.Conn, 2)
	for i, name := range []string{"Alice", "Bob"} {
		conns[i] = dialWS(t, ts.URL, rm.Code(), signedJWTForTest(t, name))
		require.NoError(t, conns[i].WriteJSON(protocol.Envelope{
			Type:    protocol.TypeJoinRoom,
			Payload: protocol.JoinRoom{RoomCode: rm.Code()},
		}))
	}

	for _, conn := range conns {
		require.NoError(t, conn.WriteJSON(protocol.Envelope{
			Type:    protocol.TypePlayerReady,
			Payload: protocol.PlayerReady{IsReady: true},
		}))
	}

	for _, conn := range conns {
		env := readEnvelope(t, conn, protocol.TypeRoundStart)
		var rs protocol.RoundStart
		require.NoError(t, json.Unmarshal(env.Payload, &rs))
		a.Len(rs.HoleCards, 4)
		a.Len(rs.CommunityCards, 5)

		require.NoError(t, conn.WriteJSON(protocol.Envelope{
			Type:    protocol.TypeSubmitGuess,
			Payload: protocol.SubmitGuess{Guess: 1},
		}))
	}

	env := readEnvelope(t, conns[0], protocol.TypeRoundResult)
	var result protocol.RoundResult
	require.NoError(t, json.Unmarshal(env.Payload, &result))
	a.Len(result.Results, 2)
}
