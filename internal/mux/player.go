package mux

import (
	"errors"
	"net/http"
	"strings"

	"rankguesser-server/internal/jwt"
	"rankguesser-server/internal/util"
)

const maxNameLength = 30

type playerAuthRequest struct {
	Name string `json:"name"`
}

type playerAuthResponse struct {
	Name string `json:"name"`
	JWT  string `json:"jwt"`
}

// postPlayerAuth issues a bearer token for a display name.
// An empty name gets a randomly generated one.
func (m *Mux) postPlayerAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload playerAuthRequest
		if !decodeRequest(w, r, &payload) {
			return
		}

		name := strings.TrimSpace(payload.Name)
		if name == "" {
			name = util.GetRandomName()
		}

		if len(name) > maxNameLength {
			writeJSONError(w, http.StatusBadRequest, errors.New("name is too long"))
			return
		}

		signed, err := jwt.Sign(name)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, playerAuthResponse{
			Name: name,
			JWT:  signed,
		})
	}
}
