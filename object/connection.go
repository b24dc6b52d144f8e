package object

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Connection is a shared link between two extensions, created by
// SignalExtension.Connect: both endpoints hold the same *Connection and
// neither keeps the other alive. Validity is tracked with an explicit flag
// cleared by Disconnect/DisconnectTarget, since Go's garbage collector
// gives no deterministic-destruction hook to key it off instead.
type Connection struct {
	id     uuid.UUID
	source Extension
	target Extension
	valid  atomic.Bool
}

func newConnection(source, target Extension) *Connection {
	c := &Connection{id: uuid.New(), source: source, target: target}
	c.valid.Store(true)
	return c
}

// ID returns the connection's diagnostic identity: never consulted for
// equality or lookup (that is always pointer identity), only for trace
// records and log correlation so two connections between the same pair of
// extensions are distinguishable in a log stream.
func (c *Connection) ID() uuid.UUID { return c.id }

// Valid reports whether c is still connected. A nil *Connection is invalid,
// satisfying container.Validatable's zero-value sentinel contract.
func (c *Connection) Valid() bool {
	if c == nil {
		return false
	}
	return c.valid.Load()
}

func (c *Connection) invalidate() {
	c.valid.Store(false)
}

// Source returns the extension this connection originates from.
func (c *Connection) Source() Extension { return c.source }

// Target returns the extension this connection delivers to.
func (c *Connection) Target() Extension { return c.target }
