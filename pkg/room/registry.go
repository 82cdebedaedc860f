package room

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rankguesser-server/pkg/token"
)

// Options configure the rooms a registry creates
type Options struct {
	// StartGameDelay is the lobby countdown before a game starts
	StartGameDelay time.Duration

	// GuessTimeout is how long a round waits for stragglers before
	// resolving without their guesses
	GuessTimeout time.Duration

	// IdleTimeout is how long a room with no clients yet lives before
	// it is reaped
	IdleTimeout time.Duration

	// CodeLength is the room code length
	CodeLength int
}

// DefaultOptions returns the default room options
func DefaultOptions() Options {
	return Options{
		StartGameDelay: time.Second * 5,
		GuessTimeout:   time.Second * 45,
		IdleTimeout:    time.Minute * 5,
		CodeLength:     4,
	}
}

// Registry owns the active rooms and maps room codes to them.
// Rooms are independent of each other; the registry only guards the map.
type Registry struct {
	lock  sync.Mutex
	rooms map[string]*Room
	opts  Options
}

// NewRegistry returns a new room registry
func NewRegistry(opts Options) *Registry {
	if opts.CodeLength <= 0 {
		opts = DefaultOptions()
	}

	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultOptions().IdleTimeout
	}

	return &Registry{
		rooms: make(map[string]*Room),
		opts:  opts,
	}
}

// CreateRoom creates a room under a freshly issued code.
// Code collisions are retried until the code is unique among active rooms.
func (reg *Registry) CreateRoom() (*Room, error) {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	var code string
	for {
		var err error
		code, err = token.Generate(reg.opts.CodeLength)
		if err != nil {
			return nil, err
		}

		if _, exists := reg.rooms[code]; !exists {
			break
		}
	}

	room := newRoom(code, reg, reg.opts)
	room.start()
	reg.rooms[code] = room

	logrus.WithField("room", code).Info("room created")
	return room, nil
}

// Room returns the active room for the code
func (reg *Registry) Room(code string) (*Room, error) {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return room, nil
}

// RoomCount returns the number of active rooms
func (reg *Registry) RoomCount() int {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	return len(reg.rooms)
}

func (reg *Registry) removeRoom(code string) {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	delete(reg.rooms, code)
	logrus.WithField("room", code).Info("room torn down")
}
