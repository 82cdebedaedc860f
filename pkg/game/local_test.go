package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLocalSession(t *testing.T) {
	a := assert.New(t)

	s, err := NewLocalSession("Human", 3)
	a.NoError(err)
	a.Nil(s.GameState())

	_, err = NewLocalSession("Human", 0)
	a.Error(err)

	_, err = NewLocalSession("Human", 4)
	a.Error(err)
}

func TestLocalSession_CheckResults(t *testing.T) {
	a := assert.New(t)

	s, err := NewLocalSession("Human", 3)
	a.NoError(err)
	s.SetSeed(1)

	_, err = s.CheckResults()
	a.Equal(ErrRoundNotStarted, err)
	a.Equal(ErrRoundNotStarted, s.RecordPrediction(1))

	a.NoError(s.StartRound())
	a.Equal(4, len(s.GameState().Players))
	a.Equal("Human", s.GameState().Players[0].Name)

	a.NoError(s.RecordPrediction(2))

	// resolution never blocks on the computer seats
	results, err := s.CheckResults()
	a.NoError(err)
	a.Equal(4, len(results))

	for _, result := range results {
		a.NotZero(result.PredictedRank, "every seat must have a prediction")
	}

	totalCorrect := 0
	for _, result := range results {
		if result.IsCorrect {
			totalCorrect++
		}
	}

	scored := 0
	for _, score := range s.Scores() {
		scored += score
	}
	a.Equal(totalCorrect, scored)

	// next round replaces the state wholesale
	prev := s.GameState()
	a.NoError(s.StartRound())
	a.NotSame(prev, s.GameState())
	a.Equal(Predicting, s.GameState().Phase())
}

func TestLocalSession_Reset(t *testing.T) {
	a := assert.New(t)

	s, err := NewLocalSession("Human", 1)
	a.NoError(err)
	s.SetSeed(7)

	a.NoError(s.StartRound())
	a.NoError(s.RecordPrediction(1))
	_, err = s.CheckResults()
	a.NoError(err)

	s.Reset()
	a.Nil(s.GameState())
	for _, score := range s.Scores() {
		a.Zero(score)
	}
}
