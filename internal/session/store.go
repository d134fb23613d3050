package session

import (
	"context"
	"errors"

	"github.com/example/shop-assistant/internal/conversation"
)

var ErrNotFound = errors.New("session not found")

// Store persists conversation state keyed by session id. The engine
// never touches the store; the transport loads a state, runs the turn,
// and puts the result back. Serializing concurrent turns for the same
// session is the caller's job.
type Store interface {
	Get(ctx context.Context, sessionID string) (*conversation.State, error)
	Put(ctx context.Context, state *conversation.State) error
	Delete(ctx context.Context, sessionID string) error
}
