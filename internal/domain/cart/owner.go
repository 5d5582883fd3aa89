package cart

import (
	"errors"

	"github.com/google/uuid"
)

var ErrNoOwner = errors.New("cart owner is neither user nor session")

type ownerKind int

const (
	ownerNone ownerKind = iota
	ownerUser
	ownerGuest
)

// Owner is the identity a cart belongs to: an authenticated user id or an
// anonymous session id, never both. The tagged union makes the dual-set state
// unrepresentable.
type Owner struct {
	kind      ownerKind
	userID    uuid.UUID
	sessionID string
}

func UserOwner(userID uuid.UUID) Owner {
	return Owner{kind: ownerUser, userID: userID}
}

func GuestOwner(sessionID string) Owner {
	return Owner{kind: ownerGuest, sessionID: sessionID}
}

func (o Owner) IsUser() bool  { return o.kind == ownerUser }
func (o Owner) IsGuest() bool { return o.kind == ownerGuest }
func (o Owner) IsZero() bool  { return o.kind == ownerNone }

func (o Owner) UserID() (uuid.UUID, bool) {
	if o.kind != ownerUser {
		return uuid.Nil, false
	}
	return o.userID, true
}

func (o Owner) SessionID() (string, bool) {
	if o.kind != ownerGuest {
		return "", false
	}
	return o.sessionID, true
}

// Key yields a stable identity string, usable as a rate-limit key.
func (o Owner) Key() string {
	switch o.kind {
	case ownerUser:
		return "user:" + o.userID.String()
	case ownerGuest:
		return "session:" + o.sessionID
	default:
		return ""
	}
}

func (o Owner) Validate() error {
	if o.kind == ownerNone {
		return ErrNoOwner
	}
	if o.kind == ownerUser && o.userID == uuid.Nil {
		return ErrNoOwner
	}
	if o.kind == ownerGuest && o.sessionID == "" {
		return ErrNoOwner
	}
	return nil
}
