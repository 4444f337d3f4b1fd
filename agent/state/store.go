package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrStateNotFound   = errors.New("session state not found")
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

const (
	DefaultKeyPrefix = "pastel:session:"
	DefaultTTL       = 24 * time.Hour
)

// Store is the persistence contract used by the orchestrator.
type Store interface {
	Load(ctx context.Context, sessionID string) (*SessionState, error)
	Save(ctx context.Context, st *SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

func sessionKey(prefix, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return strings.TrimSpace(prefix) + sessionID, nil
}

// prepareSave checks st and normalizes its timestamps before encoding.
func prepareSave(st *SessionState) error {
	if st == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(st.SessionID) == "" {
		return ErrInvalidSession
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	} else {
		st.UpdatedAt = st.UpdatedAt.UTC()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = st.UpdatedAt
	}
	if st.Profile.Stage == "" {
		st.Profile.Stage = StageNeedName
	}
	return nil
}

// encodeSession prepares st for saving and returns its key and JSON payload.
func encodeSession(prefix string, st *SessionState) (string, []byte, error) {
	if err := prepareSave(st); err != nil {
		return "", nil, err
	}
	key, err := sessionKey(prefix, st.SessionID)
	if err != nil {
		return "", nil, err
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return "", nil, fmt.Errorf("marshal session state: %w", err)
	}
	return key, payload, nil
}

// decodeSession unmarshals and validates a stored payload.
func decodeSession(payload []byte) (*SessionState, error) {
	var st SessionState
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session state loaded from store: %w", err)
	}
	return &st, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if seconds <= 0 {
		return 1
	}
	if ttl%time.Second != 0 {
		seconds++
	}
	return int64(seconds)
}
