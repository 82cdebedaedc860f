package poker

import (
	"rankguesser-server/pkg/deck"
)

// used to keep track of the straight progress
type straightTracker struct {
	streak deck.Hand
}

func (s *straightTracker) resetWithCard(card *deck.Card) {
	s.streak = deck.Hand{card}
}

// checkStraight will check for a straight
// If one has been found, then the highest card in the straight will be assigned to the "val"
// The cards must be fed in descending rank order.
func (h *HandAnalyzer) checkStraight(card *deck.Card, st *straightTracker, aceValue int, val *int) {
	cardRank := card.Rank
	if cardRank == deck.Ace && aceValue == deck.LowAce {
		cardRank = deck.LowAce
	}

	// currently no streak, so we start from scratch
	if len(st.streak) == 0 {
		st.resetWithCard(card)
		return
	}

	lastCard := st.streak.LastCard()
	diffInRank := lastCard.Rank - cardRank // 8C - 6H = diff of 2

	if diffInRank == 0 {
		// same rank
		return
	} else if diffInRank == 1 {
		// we found the next card in a straight
		st.streak.AddCard(card)
	} else {
		st.resetWithCard(card)
		return
	}

	if len(st.streak) >= h.size {
		*val = st.streak.FirstCard().Rank
	}
}
