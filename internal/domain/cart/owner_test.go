//go:build unit

package cart_test

import (
	"testing"

	"storefront/internal/domain/cart"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOwner(t *testing.T) {
	t.Run("user owner", func(t *testing.T) {
		id := uuid.New()
		owner := cart.UserOwner(id)

		assert.True(t, owner.IsUser())
		assert.False(t, owner.IsGuest())
		assert.NoError(t, owner.Validate())

		got, ok := owner.UserID()
		assert.True(t, ok)
		assert.Equal(t, id, got)

		_, ok = owner.SessionID()
		assert.False(t, ok)
		assert.Equal(t, "user:"+id.String(), owner.Key())
	})

	t.Run("guest owner", func(t *testing.T) {
		owner := cart.GuestOwner("s1")

		assert.True(t, owner.IsGuest())
		assert.NoError(t, owner.Validate())

		sid, ok := owner.SessionID()
		assert.True(t, ok)
		assert.Equal(t, "s1", sid)
		assert.Equal(t, "session:s1", owner.Key())
	})

	t.Run("zero owner is invalid", func(t *testing.T) {
		var owner cart.Owner
		assert.True(t, owner.IsZero())
		assert.ErrorIs(t, owner.Validate(), cart.ErrNoOwner)
	})

	t.Run("empty session id is invalid", func(t *testing.T) {
		assert.ErrorIs(t, cart.GuestOwner("").Validate(), cart.ErrNoOwner)
	})

	t.Run("nil user id is invalid", func(t *testing.T) {
		assert.ErrorIs(t, cart.UserOwner(uuid.Nil).Validate(), cart.ErrNoOwner)
	})
}
