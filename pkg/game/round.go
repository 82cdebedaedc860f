package game

import (
	"errors"
	"sort"

	"rankguesser-server/pkg/deck"
	"rankguesser-server/pkg/poker"
)

// per-round card counts
const (
	HoleCardCount      = 4
	CommunityCardCount = 5
)

// player-count limits for a session
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// ErrInvalidGuess is an error when a predicted rank is outside 1..playerCount
var ErrInvalidGuess = errors.New("predicted rank is out of range")

// ErrPlayerNotInRound is an error when a prediction references an unknown player
var ErrPlayerNotInRound = errors.New("player is not in the round")

// Phase is the round phase
type Phase int

// round phases
const (
	Predicting Phase = iota
	Results
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case Predicting:
		return "predicting"
	case Results:
		return "results"
	default:
		panic("unknown phase")
	}
}

// Seat identifies a player to be dealt into a round
type Seat struct {
	ID   string
	Name string
}

// Player is a player dealt into a round
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	HoleCards deck.Hand `json:"holeCards"`
}

// PlayerHandResult is the immutable per-player outcome of a resolved round
type PlayerHandResult struct {
	PlayerID      string               `json:"playerId"`
	Name          string               `json:"name"`
	HoleCards     deck.Hand            `json:"holeCards"`
	EvaluatedHand *poker.EvaluatedHand `json:"evaluatedHand"`
	PredictedRank int                  `json:"predictedRank"`
	ActualRank    int                  `json:"actualRank"`
	IsCorrect     bool                 `json:"isCorrect"`
}

// GameState is the state of a single round.
// Exactly one GameState is live per session at a time; a new round replaces
// it wholesale.
type GameState struct {
	Players        []*Player `json:"players"`
	CommunityCards deck.Hand `json:"communityCards"`

	deck        *deck.Deck
	predictions map[string]int
	phase       Phase
}

// StartRound deals a fresh round for the given seats.
// Pass seed 0 for a time-based shuffle; tests can pass a fixed seed.
func StartRound(seats []Seat, seed int64) (*GameState, error) {
	d := deck.New()
	d.Shuffle(seed)

	if !d.CanDraw(len(seats)*HoleCardCount + CommunityCardCount) {
		return nil, deck.ErrInsufficientCards
	}

	players := make([]*Player, len(seats))
	for i, seat := range seats {
		cards, err := d.Deal(HoleCardCount)
		if err != nil {
			return nil, err
		}

		players[i] = &Player{
			ID:        seat.ID,
			Name:      seat.Name,
			HoleCards: cards,
		}
	}

	community, err := d.Deal(CommunityCardCount)
	if err != nil {
		return nil, err
	}

	return &GameState{
		Players:        players,
		CommunityCards: community,
		deck:           d,
		predictions:    make(map[string]int),
		phase:          Predicting,
	}, nil
}

// Phase returns the current round phase
func (g *GameState) Phase() Phase {
	return g.phase
}

// Player returns the player with the given ID, or nil
func (g *GameState) Player(playerID string) *Player {
	for _, player := range g.Players {
		if player.ID == playerID {
			return player
		}
	}

	return nil
}

// RecordPrediction stores the player's predicted finishing rank.
// The last write before the round resolves wins. A rejected prediction leaves
// any previously stored value untouched.
func (g *GameState) RecordPrediction(playerID string, rank int) error {
	if g.Player(playerID) == nil {
		return ErrPlayerNotInRound
	}

	if rank < 1 || rank > len(g.Players) {
		return ErrInvalidGuess
	}

	g.predictions[playerID] = rank
	return nil
}

// Prediction returns the stored prediction for the player, if any
func (g *GameState) Prediction(playerID string) (int, bool) {
	rank, ok := g.predictions[playerID]
	return rank, ok
}

// PredictionCount returns the number of stored predictions
func (g *GameState) PredictionCount() int {
	return len(g.predictions)
}

// Resolve evaluates every player's best hand and assigns actual finishing
// ranks, strongest hand first. Equal hands keep their seat order. Players
// without a stored prediction get a predicted rank of 0 and are never correct.
func (g *GameState) Resolve() ([]*PlayerHandResult, error) {
	results := make([]*PlayerHandResult, len(g.Players))
	for i, player := range g.Players {
		cards := make(deck.Hand, 0, len(player.HoleCards)+len(g.CommunityCards))
		cards = append(cards, player.HoleCards...)
		cards = append(cards, g.CommunityCards...)

		eh, err := poker.Evaluate(cards)
		if err != nil {
			return nil, err
		}

		results[i] = &PlayerHandResult{
			PlayerID:      player.ID,
			Name:          player.Name,
			HoleCards:     player.HoleCards,
			EvaluatedHand: eh,
			PredictedRank: g.predictions[player.ID],
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].EvaluatedHand.Compare(results[j].EvaluatedHand) > 0
	})

	for i, result := range results {
		result.ActualRank = i + 1
		result.IsCorrect = result.PredictedRank == result.ActualRank
	}

	g.phase = Results
	return results, nil
}

// ApplyScores adds a point to the ledger for every correct prediction and
// returns the ledger. This is the only way scores change.
func ApplyScores(ledger map[string]int, results []*PlayerHandResult) map[string]int {
	for _, result := range results {
		if result.IsCorrect {
			ledger[result.PlayerID]++
		}
	}

	return ledger
}
