package mux

import (
	"net/http"

	"rankguesser-server/pkg/room"
)

type roomResponse struct {
	RoomCode string `json:"roomCode"`
}

// getRoom creates a new room and returns its join code
func (m *Mux) getRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, err := m.registry.CreateRoom()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, roomResponse{RoomCode: rm.Code()})
	}
}

type putRoomRequest struct {
	RoomCode string `json:"roomCode"`
}

// putRoom verifies that the authenticated player could join the room.
// The client calls this before opening the websocket.
func (m *Mux) putRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload putRoomRequest
		if !decodeRequest(w, r, &payload) {
			return
		}

		rm, err := m.registry.Room(payload.RoomCode)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, err)
			return
		}

		if err := rm.CanJoin(playerName(r)); err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, roomResponse{RoomCode: rm.Code()})
	}
}

func writeRoomError(w http.ResponseWriter, err error) {
	switch err {
	case room.ErrRoomNotFound:
		writeJSONError(w, http.StatusNotFound, err)
	case room.ErrRoomFull, room.ErrGameInProgress:
		writeJSONError(w, http.StatusConflict, err)
	default:
		writeJSONError(w, http.StatusInternalServerError, err)
	}
}
