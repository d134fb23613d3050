package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/shop-assistant/internal/conversation"
	"github.com/example/shop-assistant/internal/domain/cart"
)

// ConnectPostgres opens the database and waits for it to come up.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		log.Printf("[Session] Waiting for PostgreSQL... (%d/10)", i+1)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("failed to ping postgres: %w", err)
}

// PostgresStore persists session state as one JSONB row per session.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	const schema = `
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			state      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (*conversation.State, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM sessions WHERE id = $1`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return decodeState(data)
}

func (s *PostgresStore) Put(ctx context.Context, state *conversation.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET state = $2, updated_at = now()`,
		state.SessionID, data)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", state.SessionID, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// decodeState unmarshals a stored state and restores the invariants the
// wire format cannot express (a cart is never nil).
func decodeState(data []byte) (*conversation.State, error) {
	var state conversation.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	if state.Cart == nil {
		state.Cart = cart.New()
	}
	if state.Cart.Items == nil {
		state.Cart.Items = make(map[int]cart.LineItem)
	}
	return &state, nil
}
