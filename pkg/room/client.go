package room

import (
	"fmt"

	"github.com/gorilla/websocket"

	"rankguesser-server/pkg/protocol"
)

// Client is a player connected to a room via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan *protocol.Envelope

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	room *Room
	name string
}

// NewClient returns a new client for the named player
func NewClient(conn *websocket.Conn, name string) *Client {
	return &Client{
		Conn:  conn,
		send:  make(chan *protocol.Envelope, 256),
		Close: make(chan string),
		name:  name,
	}
}

// Name returns the player name the client authenticated as
func (c *Client) Name() string {
	return c.name
}

// Send queues a message for the web client.
// Returns false if the client's send buffer is full.
func (c *Client) Send(msg *protocol.Envelope) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel of queued messages
func (c *Client) SendChan() <-chan *protocol.Envelope {
	return c.send
}

// String returns a traceable identifier for the player and room
func (c *Client) String() string {
	code := ""
	if c.room != nil {
		code = c.room.Code()
	}

	return fmt.Sprintf("%s:%s", c.name, code)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg protocol.ClientMessage) {
	if c.room == nil {
		return
	}

	c.room.ReceivedMessage(c, msg)
}
