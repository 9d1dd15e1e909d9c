package scanning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scangate/infrastructure/cache"
)

var ErrSessionNotFound = errors.New("scan session not found")

const storeKeyPrefix = "scan-session:"

// Store persists scan sessions between requests through the shared cache
// store, JSON-serialized with a sliding TTL.
type Store struct {
	cache cache.Store
	ttl   time.Duration
}

func NewStore(c cache.Store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Store{cache: c, ttl: ttl}
}

// Save writes the session back and refreshes its TTL.
func (st *Store) Save(ctx context.Context, s *Session) error {
	buf, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode scan session: %w", err)
	}
	if err := st.cache.Set(ctx, storeKeyPrefix+s.ID, buf, st.ttl); err != nil {
		return fmt.Errorf("store scan session: %w", err)
	}
	return nil
}

// Load fetches a session by id.
func (st *Store) Load(ctx context.Context, id string) (*Session, error) {
	buf, err := st.cache.Get(ctx, storeKeyPrefix+id)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load scan session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(buf, &s); err != nil {
		return nil, fmt.Errorf("decode scan session: %w", err)
	}
	return &s, nil
}

// Delete discards a session on explicit clear or form unmount.
func (st *Store) Delete(ctx context.Context, id string) error {
	return st.cache.Delete(ctx, storeKeyPrefix+id)
}
