package poker

import (
	"errors"

	"rankguesser-server/pkg/deck"
)

// minimum number of cards required to evaluate a hand
const evaluateSize = 5

// ErrTooFewCards is an error when Evaluate() is called with fewer than five cards
var ErrTooFewCards = errors.New("at least five cards are required")

// EvaluatedHand is the result of evaluating a player's best five-card hand
// Two hands with the same category and tiebreakers are a true tie.
type EvaluatedHand struct {
	Category    Hand   `json:"categoryRank"`
	RankName    string `json:"rankName"`
	Tiebreakers []int  `json:"tiebreakers"`

	strength int
}

// Evaluate returns the best five-card hand the cards can make.
// The result is independent of the input order.
func Evaluate(cards []*deck.Card) (*EvaluatedHand, error) {
	if len(cards) < evaluateSize {
		return nil, ErrTooFewCards
	}

	h := New(evaluateSize, cards)
	return &EvaluatedHand{
		Category:    h.GetHand(),
		RankName:    h.GetHand().String(),
		Tiebreakers: h.tiebreakers(),
		strength:    h.GetStrength(),
	}, nil
}

// Strength returns a single comparable integer encoding the category and
// the tiebreakers
func (e *EvaluatedHand) Strength() int {
	return e.strength
}

// Compare returns a negative value if e is weaker than other, a positive
// value if stronger, and 0 on a true tie
func (e *EvaluatedHand) Compare(other *EvaluatedHand) int {
	return e.strength - other.strength
}
