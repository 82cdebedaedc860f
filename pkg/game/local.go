package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrRoundNotStarted is an error when a round operation happens before StartRound
var ErrRoundNotStarted = errors.New("round has not been started")

// LocalSession drives rounds for one human player and computer-filled seats
// in the same process. The computer seats get uniform random predictions
// before resolution, so callers never wait on them.
type LocalSession struct {
	seats   []Seat
	humanID string
	state   *GameState
	scores  map[string]int
	rng     *rand.Rand
}

// NewLocalSession seats one human plus aiCount computer players
func NewLocalSession(humanName string, aiCount int) (*LocalSession, error) {
	if aiCount < MinPlayers-1 || aiCount > MaxPlayers-1 {
		return nil, fmt.Errorf("aiCount must be between %d and %d", MinPlayers-1, MaxPlayers-1)
	}

	seats := make([]Seat, 0, aiCount+1)
	seats = append(seats, Seat{ID: "1", Name: humanName})
	for i := 0; i < aiCount; i++ {
		id := fmt.Sprintf("%d", i+2)
		seats = append(seats, Seat{ID: id, Name: fmt.Sprintf("Player %s", id)})
	}

	ledger := make(map[string]int)
	for _, seat := range seats {
		ledger[seat.ID] = 0
	}

	return &LocalSession{
		seats:   seats,
		humanID: seats[0].ID,
		scores:  ledger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// SetSeed makes future rounds and computer predictions deterministic.
// This should only be used by tests.
func (s *LocalSession) SetSeed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// StartRound replaces the game state with a freshly dealt round
func (s *LocalSession) StartRound() error {
	seed := s.rng.Int63()
	if seed == 0 {
		seed = 1
	}

	state, err := StartRound(s.seats, seed)
	if err != nil {
		return err
	}

	s.state = state
	return nil
}

// GameState returns the live game state, or nil before the first round
func (s *LocalSession) GameState() *GameState {
	return s.state
}

// RecordPrediction stores the human player's predicted rank
func (s *LocalSession) RecordPrediction(rank int) error {
	if s.state == nil {
		return ErrRoundNotStarted
	}

	return s.state.RecordPrediction(s.humanID, rank)
}

// CheckResults fills in random predictions for the computer seats, resolves
// the round and applies the scores
func (s *LocalSession) CheckResults() ([]*PlayerHandResult, error) {
	if s.state == nil {
		return nil, ErrRoundNotStarted
	}

	for _, player := range s.state.Players {
		if player.ID == s.humanID {
			continue
		}

		if _, ok := s.state.Prediction(player.ID); !ok {
			guess := s.rng.Intn(len(s.state.Players)) + 1
			if err := s.state.RecordPrediction(player.ID, guess); err != nil {
				return nil, err
			}
		}
	}

	results, err := s.state.Resolve()
	if err != nil {
		return nil, err
	}

	ApplyScores(s.scores, results)
	return results, nil
}

// Scores returns a copy of the session's score ledger
func (s *LocalSession) Scores() map[string]int {
	scores := make(map[string]int, len(s.scores))
	for id, score := range s.scores {
		scores[id] = score
	}

	return scores
}

// Reset clears the ledger and the live round
func (s *LocalSession) Reset() {
	s.state = nil
	for id := range s.scores {
		s.scores[id] = 0
	}
}
