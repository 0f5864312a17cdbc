package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultCredentialTTL is the default TTL for stored credentials (24 hours)
	DefaultCredentialTTL = 24 * time.Hour
)

// ErrCredentialNotFound is returned when no credential exists for a session key.
var ErrCredentialNotFound = errors.New("credential not found")

// Credential is a bearer token stored against an opaque session key, so
// page requests can carry the short key instead of the raw token.
type Credential struct {
	SessionKey string    `json:"sessionKey"`
	Bearer     string    `json:"bearer"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// CredentialStore is the slice of the store the HTTP layer consumes.
// Implemented by *Store; tests substitute a fake.
type CredentialStore interface {
	SaveCredential(ctx context.Context, cred *Credential) error
	GetCredential(ctx context.Context, sessionKey string) (*Credential, error)
	TouchCredential(ctx context.Context, sessionKey string) error
	DeleteCredential(ctx context.Context, sessionKey string) error
}

// Store handles Redis operations for session credentials
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// SaveCredential stores a credential in Redis
func (s *Store) SaveCredential(ctx context.Context, cred *Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	key := CredentialKey(cred.SessionKey)

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	if err := s.client.SAdd(ctx, AllSessionsKey(), cred.SessionKey).Err(); err != nil {
		return fmt.Errorf("failed to add session key to set: %w", err)
	}

	return nil
}

// GetCredential retrieves a credential from Redis by session key
func (s *Store) GetCredential(ctx context.Context, sessionKey string) (*Credential, error) {
	key := CredentialKey(sessionKey)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return &cred, nil
}

// TouchCredential refreshes a credential's last-seen time and TTL.
func (s *Store) TouchCredential(ctx context.Context, sessionKey string) error {
	cred, err := s.GetCredential(ctx, sessionKey)
	if err != nil {
		return err
	}
	cred.LastSeenAt = time.Now()
	return s.SaveCredential(ctx, cred)
}

// DeleteCredential removes a credential from Redis
func (s *Store) DeleteCredential(ctx context.Context, sessionKey string) error {
	if err := s.client.Del(ctx, CredentialKey(sessionKey)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if err := s.client.SRem(ctx, AllSessionsKey(), sessionKey).Err(); err != nil {
		return fmt.Errorf("failed to remove session key from set: %w", err)
	}
	return nil
}

// ListSessionKeys returns every known session key. Keys whose credential
// expired are pruned from the set on the way through.
func (s *Store) ListSessionKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, AllSessionsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list session keys: %w", err)
	}

	if len(keys) == 0 {
		return []string{}, nil
	}

	live := make([]string, 0, len(keys))
	for _, key := range keys {
		exists, err := s.client.Exists(ctx, CredentialKey(key)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check credential: %w", err)
		}
		if exists == 0 {
			_ = s.client.SRem(ctx, AllSessionsKey(), key).Err()
			continue
		}
		live = append(live, key)
	}

	return live, nil
}
