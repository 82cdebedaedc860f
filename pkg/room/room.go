package room

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"rankguesser-server/pkg/game"
	"rankguesser-server/pkg/protocol"
)

// UserError is an error whose message is safe to show to the client
type UserError string

func (e UserError) Error() string {
	return string(e)
}

// join-time errors
var (
	ErrRoomFull       = errors.New("the room is full")
	ErrRoomNotFound   = errors.New("room not found")
	ErrGameInProgress = errors.New("the game has already started")
	ErrWrongRoom      = errors.New("this connection belongs to another room")
	ErrNotInRoom      = errors.New("you have not joined the room")
)

// Phase is the room phase
type Phase int

// room phases
const (
	Lobby Phase = iota
	Countdown
	Game
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case Lobby:
		return "lobby"
	case Countdown:
		return "countdown"
	case Game:
		return "game"
	default:
		panic("unknown phase")
	}
}

// roomPlayer is a roster entry.
// client is nil while the player is disconnected; the entry survives a
// mid-game disconnect so the score ledger and a rejoin keep working.
type roomPlayer struct {
	name           string
	isReady        bool
	inRound        bool
	nextRoundReady bool
	client         *Client
}

// Room owns one room's roster, readiness, countdown and round lifecycle.
// All mutable state below the exec channel is only ever touched from the
// run loop, which serializes readiness toggles, guess submissions and
// round transitions.
type Room struct {
	code     string
	registry *Registry
	opts     Options

	execInRunLoop chan func()
	close         chan bool

	// run-loop state
	clients    map[*Client]bool
	players    []*roomPlayer
	phase      Phase
	state      *game.GameState
	scores     map[string]int
	countdown  *time.Timer
	countdownC <-chan time.Time
	guessTimer *time.Timer
	guessC     <-chan time.Time
	idleTimer  *time.Timer
	idleC      <-chan time.Time
}

func newRoom(code string, registry *Registry, opts Options) *Room {
	return &Room{
		code:          code,
		registry:      registry,
		opts:          opts,
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
		clients:       make(map[*Client]bool),
		players:       make([]*roomPlayer, 0, game.MaxPlayers),
		phase:         Lobby,
		scores:        make(map[string]int),
	}
}

// Code returns the room code
func (r *Room) Code() string {
	return r.code
}

func (r *Room) start() {
	// a room nobody ever connects to reaps itself
	r.idleTimer = time.NewTimer(r.opts.IdleTimeout)
	r.idleC = r.idleTimer.C

	go r.runLoop()
}

func (r *Room) runLoop() {
	log := logrus.WithField("room", r.code)
	log.Debug("creating room run loop")

	for {
		select {
		case fn := <-r.execInRunLoop:
			fn()
		case <-r.countdownC:
			r.handleCountdownExpired()
		case <-r.guessC:
			r.handleGuessTimeout()
		case <-r.idleC:
			r.handleIdleExpired()
		case <-r.close:
			log.Debug("terminating room run loop")
			return
		}
	}
}

// Connect attaches a client to the room.
// The client is not on the roster until it sends JOIN_ROOM.
// This method must return quickly.
func (r *Room) Connect(client *Client) {
	client.room = r
	r.execInRunLoop <- func() {
		if r.idleTimer != nil {
			r.idleTimer.Stop()
			r.idleTimer = nil
			r.idleC = nil
		}

		r.clients[client] = true
	}
}

// Disconnect detaches a client.
// This method must return quickly.
func (r *Room) Disconnect(client *Client) {
	r.execInRunLoop <- func() {
		delete(r.clients, client)

		if p := r.playerFor(client); p != nil {
			p.client = nil

			switch r.phase {
			case Lobby:
				r.removePlayer(p)
				r.broadcastLobbyState()
			case Countdown:
				r.removePlayer(p)
				r.cancelCountdown()
				r.broadcastLobbyState()
			case Game:
				// keep the roster entry for scoring and rejoin; the round
				// may now be complete without them
				r.maybeResolve()
				r.maybeStartNextRound()
			}
		}

		if len(r.clients) == 0 {
			r.registry.removeRoom(r.code)
			close(r.close)
		}
	}
}

// CanJoin reports whether the named player could join the room right now.
// Used by the HTTP boundary before upgrading the connection.
func (r *Room) CanJoin(name string) error {
	errCh := make(chan error, 1)
	r.execInRunLoop <- func() {
		errCh <- r.joinable(name)
	}

	select {
	case err := <-errCh:
		return err
	case <-r.close:
		return ErrRoomNotFound
	}
}

// ReceivedMessage is called when a client sends a message to the room.
// This method must return quickly.
func (r *Room) ReceivedMessage(c *Client, msg protocol.ClientMessage) {
	r.execInRunLoop <- func() {
		switch m := msg.(type) {
		case protocol.JoinRoom:
			r.handleJoin(c, m)
		case protocol.PlayerReady:
			r.handleReady(c, m)
		case protocol.SubmitGuess:
			r.handleGuess(c, m)
		case protocol.NextRoundReady:
			r.handleNextRoundReady(c)
		default:
			// DecodeClientMessage keeps the union closed
			logrus.WithField("client", c.String()).Warn("unhandled client message")
		}
	}
}

// NOTE: everything below must only be called from the run loop

func (r *Room) joinable(name string) error {
	for _, p := range r.players {
		if p.name == name {
			// a rejoin replaces the stale entry
			return nil
		}
	}

	if r.phase == Game {
		return ErrGameInProgress
	}

	if len(r.players) >= game.MaxPlayers {
		return ErrRoomFull
	}

	return nil
}

func (r *Room) handleJoin(c *Client, msg protocol.JoinRoom) {
	if msg.RoomCode != r.code {
		c.Send(protocol.Error(ErrWrongRoom))
		return
	}

	if err := r.joinable(c.Name()); err != nil {
		c.Send(protocol.Error(err))
		return
	}

	existing := r.playerNamed(c.Name())
	if existing != nil {
		existing.client = c
	} else {
		r.players = append(r.players, &roomPlayer{
			name:   c.Name(),
			client: c,
		})
	}

	c.Send(protocol.OK())
	r.broadcastLobbyState()

	// a mid-round rejoin gets dealt back their cards so resolution does not
	// stall waiting on a guess they can no longer make
	if existing != nil && existing.inRound && r.phase == Game && r.state != nil && r.state.Phase() == game.Predicting {
		if player := r.state.Player(existing.name); player != nil {
			c.Send(protocol.RoundStart{
				HoleCards:      player.HoleCards,
				CommunityCards: r.state.CommunityCards,
				PlayerName:     existing.name,
			}.Encode())
		}
	}
}

func (r *Room) handleReady(c *Client, msg protocol.PlayerReady) {
	p := r.playerFor(c)
	if p == nil {
		c.Send(protocol.Error(ErrNotInRoom))
		return
	}

	if r.phase == Game {
		c.Send(protocol.Error(ErrGameInProgress))
		return
	}

	// repeated toggles with the same value must not start another countdown
	if p.isReady == msg.IsReady {
		c.Send(protocol.OK())
		return
	}

	p.isReady = msg.IsReady
	c.Send(protocol.OK())

	if !msg.IsReady && r.phase == Countdown {
		r.cancelCountdown()
	}

	r.broadcastLobbyState()

	if r.phase == Lobby && len(r.players) >= game.MinPlayers && r.allReady() {
		r.startCountdown()
	}
}

func (r *Room) handleGuess(c *Client, msg protocol.SubmitGuess) {
	p := r.playerFor(c)
	if p == nil {
		c.Send(protocol.Error(ErrNotInRoom))
		return
	}

	if r.phase != Game || r.state == nil || r.state.Phase() != game.Predicting || !p.inRound {
		c.Send(protocol.Error(UserError("there is no active round to guess in")))
		return
	}

	if err := r.state.RecordPrediction(p.name, msg.Guess); err != nil {
		c.Send(protocol.Error(err))
		return
	}

	c.Send(protocol.OK())
	r.maybeResolve()
}

func (r *Room) handleNextRoundReady(c *Client) {
	p := r.playerFor(c)
	if p == nil {
		c.Send(protocol.Error(ErrNotInRoom))
		return
	}

	if r.phase != Game || r.state == nil || r.state.Phase() != game.Results {
		c.Send(protocol.Error(UserError("the round has not been resolved yet")))
		return
	}

	p.nextRoundReady = true
	c.Send(protocol.OK())
	r.maybeStartNextRound()
}

func (r *Room) startCountdown() {
	r.phase = Countdown
	r.countdown = time.NewTimer(r.opts.StartGameDelay)
	r.countdownC = r.countdown.C

	r.broadcast(protocol.GameStartCountdown{
		Duration: int(r.opts.StartGameDelay.Seconds()),
	}.Encode())
}

func (r *Room) cancelCountdown() {
	if r.countdown != nil {
		r.countdown.Stop()
		r.countdown = nil
		r.countdownC = nil
	}

	r.phase = Lobby
	r.broadcast(protocol.GameStartCancelled{}.Encode())
}

func (r *Room) handleCountdownExpired() {
	// a cancellation observed before the expiry wins
	if r.phase != Countdown {
		return
	}

	r.countdown = nil
	r.countdownC = nil
	r.phase = Game

	r.broadcast(protocol.GameStarted{}.Encode())
	r.startRound()
}

func (r *Room) startRound() {
	seats := make([]game.Seat, 0, len(r.players))
	for _, p := range r.players {
		p.inRound = false
		p.nextRoundReady = false
		if p.client != nil {
			seats = append(seats, game.Seat{ID: p.name, Name: p.name})
		}
	}

	if len(seats) < game.MinPlayers {
		// not enough players left to deal another round
		r.phase = Lobby
		r.state = nil
		r.broadcastLobbyState()
		return
	}

	state, err := game.StartRound(seats, 0)
	if err != nil {
		// can only happen if the table is impossible; do not corrupt the room
		logrus.WithField("room", r.code).WithError(err).Error("could not start round")
		r.phase = Lobby
		r.state = nil
		r.broadcastLobbyState()
		return
	}

	r.state = state

	for _, p := range r.players {
		if p.client == nil {
			continue
		}

		player := state.Player(p.name)
		if player == nil {
			continue
		}

		p.inRound = true
		p.client.Send(protocol.RoundStart{
			HoleCards:      player.HoleCards,
			CommunityCards: state.CommunityCards,
			PlayerName:     p.name,
		}.Encode())
	}

	r.guessTimer = time.NewTimer(r.opts.GuessTimeout)
	r.guessC = r.guessTimer.C
}

func (r *Room) handleGuessTimeout() {
	if r.phase != Game || r.state == nil || r.state.Phase() != game.Predicting {
		return
	}

	logrus.WithField("room", r.code).Debug("guess timer expired, forcing resolution")
	r.resolveRound()
}

// handleIdleExpired tears down a room nobody ever connected to
func (r *Room) handleIdleExpired() {
	// a connect observed before the expiry wins
	if len(r.clients) > 0 {
		return
	}

	logrus.WithField("room", r.code).Info("tearing down idle room")
	r.registry.removeRoom(r.code)
	close(r.close)
}

// maybeResolve resolves the round once every connected player in it has guessed
func (r *Room) maybeResolve() {
	if r.phase != Game || r.state == nil || r.state.Phase() != game.Predicting {
		return
	}

	for _, p := range r.players {
		if !p.inRound || p.client == nil {
			continue
		}

		if _, ok := r.state.Prediction(p.name); !ok {
			return
		}
	}

	r.resolveRound()
}

func (r *Room) resolveRound() {
	if r.guessTimer != nil {
		r.guessTimer.Stop()
		r.guessTimer = nil
		r.guessC = nil
	}

	results, err := r.state.Resolve()
	if err != nil {
		logrus.WithField("room", r.code).WithError(err).Error("could not resolve round")
		return
	}

	game.ApplyScores(r.scores, results)

	entries := make([]protocol.RoundResultEntry, len(results))
	for i, result := range results {
		entries[i] = protocol.NewRoundResultEntry(result, r.scores[result.PlayerID])
	}

	r.broadcast(protocol.RoundResult{Results: entries}.Encode())
}

// maybeStartNextRound deals again once every connected player has asked for it
func (r *Room) maybeStartNextRound() {
	if r.phase != Game || r.state == nil || r.state.Phase() != game.Results {
		return
	}

	connected := 0
	for _, p := range r.players {
		if p.client == nil {
			continue
		}

		connected++
		if !p.nextRoundReady {
			return
		}
	}

	if connected == 0 {
		return
	}

	r.startRound()
}

func (r *Room) allReady() bool {
	for _, p := range r.players {
		if !p.isReady {
			return false
		}
	}

	return len(r.players) > 0
}

func (r *Room) playerFor(c *Client) *roomPlayer {
	for _, p := range r.players {
		if p.client == c {
			return p
		}
	}

	return nil
}

func (r *Room) playerNamed(name string) *roomPlayer {
	for _, p := range r.players {
		if p.name == name {
			return p
		}
	}

	return nil
}

func (r *Room) removePlayer(player *roomPlayer) {
	players := make([]*roomPlayer, 0, len(r.players))
	for _, p := range r.players {
		if p != player {
			players = append(players, p)
		}
	}

	r.players = players
}

func (r *Room) broadcastLobbyState() {
	players := make([]protocol.LobbyPlayer, len(r.players))
	for i, p := range r.players {
		players[i] = protocol.LobbyPlayer{
			Name:    p.name,
			IsReady: p.isReady,
		}
	}

	r.broadcast(protocol.LobbyState{Players: players}.Encode())
}

func (r *Room) broadcast(env *protocol.Envelope) {
	for client := range r.clients {
		if !client.Send(env) {
			logrus.WithField("client", client.String()).Warn("send buffer full, dropping message")
		}
	}
}
