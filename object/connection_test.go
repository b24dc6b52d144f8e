package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnection_Valid(t *testing.T) {
	t.Run("nil connection is invalid", func(t *testing.T) {
		var c *Connection
		assert.False(t, c.Valid())
	})

	t.Run("fresh connection is valid", func(t *testing.T) {
		c := newConnection(newStub("s"), newStub("t"))
		assert.True(t, c.Valid())
	})

	t.Run("invalidate flips Valid to false", func(t *testing.T) {
		c := newConnection(newStub("s2"), newStub("t2"))
		c.invalidate()
		assert.False(t, c.Valid())
	})
}

func TestConnection_ID_IsUniquePerConnection(t *testing.T) {
	a := newConnection(newStub("s3"), newStub("t3"))
	b := newConnection(newStub("s4"), newStub("t4"))
	assert.NotEqual(t, a.ID(), b.ID())
}
