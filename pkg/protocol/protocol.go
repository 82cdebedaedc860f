// Package protocol defines the websocket message schema between a client and
// its room. Every frame is an envelope of a string type tag and a JSON
// payload; the finite message set is a closed union so unknown tags surface
// as errors instead of falling through a default.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"rankguesser-server/pkg/deck"
	"rankguesser-server/pkg/game"
	"rankguesser-server/pkg/poker"
)

// client-to-server type tags
const (
	TypeJoinRoom       = "JOIN_ROOM"
	TypePlayerReady    = "PLAYER_READY"
	TypeSubmitGuess    = "SUBMIT_GUESS"
	TypeNextRoundReady = "NEXT_ROUND_READY"
)

// server-to-client type tags
const (
	TypeResponse           = "RESPONSE"
	TypeLobbyState         = "LOBBY_STATE"
	TypeGameStartCountdown = "GAME_START_COUNTDOWN"
	TypeGameStartCancelled = "GAME_START_CANCELLED"
	TypeGameStarted        = "GAME_STARTED"
	TypeRoundStart         = "ROUND_START"
	TypeRoundResult        = "ROUND_RESULT"
)

// ErrUnknownType is an error when a message has a type tag outside the protocol
var ErrUnknownType = errors.New("unknown message type")

// Envelope is an outbound frame
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// rawEnvelope is an inbound frame prior to payload decoding
type rawEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ClientMessage is a message sent from a client to its room
type ClientMessage interface {
	clientMessage()
}

// JoinRoom asks to join the room identified by the code
type JoinRoom struct {
	RoomCode string `json:"roomCode"`
}

// PlayerReady toggles the sender's lobby readiness
type PlayerReady struct {
	IsReady bool `json:"isReady"`
}

// SubmitGuess records the sender's predicted finishing rank
type SubmitGuess struct {
	Guess int `json:"guess"`
}

// NextRoundReady signals the sender wants the next round
type NextRoundReady struct{}

func (JoinRoom) clientMessage()       {}
func (PlayerReady) clientMessage()    {}
func (SubmitGuess) clientMessage()    {}
func (NextRoundReady) clientMessage() {}

// DecodeClientMessage decodes a frame into its typed client message.
// An unparsable frame or a tag outside the client message set is an error;
// callers should log and drop the frame without closing the connection.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var env rawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("could not decode envelope: %w", err)
	}

	switch env.Type {
	case TypeJoinRoom:
		var msg JoinRoom
		if err := decodePayload(env.Payload, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypePlayerReady:
		var msg PlayerReady
		if err := decodePayload(env.Payload, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeSubmitGuess:
		var msg SubmitGuess
		if err := decodePayload(env.Payload, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeNextRoundReady:
		return NextRoundReady{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodePayload(raw json.RawMessage, payload interface{}) error {
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, payload); err != nil {
		return fmt.Errorf("could not decode payload: %w", err)
	}

	return nil
}

// Response acknowledges or rejects a client message
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LobbyPlayer is one roster entry in a lobby snapshot
type LobbyPlayer struct {
	Name    string `json:"name"`
	IsReady bool   `json:"isReady"`
}

// LobbyState is a full roster snapshot
type LobbyState struct {
	Players []LobbyPlayer `json:"players"`
}

// GameStartCountdown announces the countdown before the game starts
type GameStartCountdown struct {
	// Duration is in seconds
	Duration int `json:"duration"`
}

// GameStartCancelled announces the countdown was cancelled
type GameStartCancelled struct{}

// GameStarted announces the room has entered the game phase
type GameStarted struct{}

// RoundStart carries the recipient's private hole cards, the public community
// cards, and the recipient's own name for disambiguation
type RoundStart struct {
	HoleCards      deck.Hand `json:"holeCards"`
	CommunityCards deck.Hand `json:"communityCards"`
	PlayerName     string    `json:"playerName"`
}

// RoundResultEntry reveals one player's hand and outcome.
// The stored prediction is exposed as the player's guess; it has no second
// name on the wire.
type RoundResultEntry struct {
	PlayerID      string               `json:"playerId"`
	Name          string               `json:"name"`
	HoleCards     deck.Hand            `json:"holeCards"`
	EvaluatedHand *poker.EvaluatedHand `json:"evaluatedHand"`
	Guess         int                  `json:"guess"`
	ActualRank    int                  `json:"actualRank"`
	IsCorrect     bool                 `json:"isCorrect"`
	Score         int                  `json:"score"`
}

// NewRoundResultEntry projects a resolved result onto the wire shape
func NewRoundResultEntry(result *game.PlayerHandResult, score int) RoundResultEntry {
	return RoundResultEntry{
		PlayerID:      result.PlayerID,
		Name:          result.Name,
		HoleCards:     result.HoleCards,
		EvaluatedHand: result.EvaluatedHand,
		Guess:         result.PredictedRank,
		ActualRank:    result.ActualRank,
		IsCorrect:     result.IsCorrect,
		Score:         score,
	}
}

// RoundResult reveals every player's hand, guess, rank and score
type RoundResult struct {
	Results []RoundResultEntry `json:"results"`
}

// Encode wraps each server message in its envelope
func (m Response) Encode() *Envelope           { return &Envelope{Type: TypeResponse, Payload: m} }
func (m LobbyState) Encode() *Envelope         { return &Envelope{Type: TypeLobbyState, Payload: m} }
func (m GameStartCountdown) Encode() *Envelope { return &Envelope{Type: TypeGameStartCountdown, Payload: m} }
func (m GameStartCancelled) Encode() *Envelope { return &Envelope{Type: TypeGameStartCancelled, Payload: m} }
func (m GameStarted) Encode() *Envelope        { return &Envelope{Type: TypeGameStarted, Payload: m} }
func (m RoundStart) Encode() *Envelope         { return &Envelope{Type: TypeRoundStart, Payload: m} }
func (m RoundResult) Encode() *Envelope        { return &Envelope{Type: TypeRoundResult, Payload: m} }

// OK returns a generic success response envelope
func OK() *Envelope {
	return Response{Success: true, Message: "OK"}.Encode()
}

// Error returns an error response envelope safe to show the client
func Error(err error) *Envelope {
	return Response{Success: false, Message: err.Error()}.Encode()
}
