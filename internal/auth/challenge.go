package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"event-ticketing/internal/clock"
)

// ChallengeTTL is how long a login nonce stays valid
const ChallengeTTL = 5 * time.Minute

// ErrChallengeNotFound is returned for unknown, expired or already used nonces
var ErrChallengeNotFound = errors.New("login challenge not found or expired")

// Challenges issues single-use login nonces bound to a wallet
type Challenges interface {
	Issue(ctx context.Context, wallet string) (nonce string, expiresAt time.Time, err error)
	// Consume removes the nonce. It fails if the nonce was not issued to wallet.
	Consume(ctx context.Context, wallet, nonce string) error
}

type challenge struct {
	wallet  string
	expires time.Time
}

// MemoryChallenges keeps nonces in process memory
type MemoryChallenges struct {
	ttl   time.Duration
	clock clock.Clock

	mu      sync.Mutex
	pending map[string]challenge
}

// NewMemoryChallenges creates an in-memory nonce store
func NewMemoryChallenges(ttl time.Duration, clk clock.Clock) *MemoryChallenges {
	if ttl <= 0 {
		ttl = ChallengeTTL
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &MemoryChallenges{
		ttl:     ttl,
		clock:   clk,
		pending: make(map[string]challenge),
	}
}

func (m *MemoryChallenges) Issue(_ context.Context, wallet string) (string, time.Time, error) {
	now := m.clock.Now()
	nonce := uuid.NewString()
	expires := now.Add(m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	for n, c := range m.pending {
		if !now.Before(c.expires) {
			delete(m.pending, n)
		}
	}
	m.pending[nonce] = challenge{wallet: wallet, expires: expires}
	return nonce, expires, nil
}

func (m *MemoryChallenges) Consume(_ context.Context, wallet, nonce string) error {
	m.mu.Lock()
	c, ok := m.pending[nonce]
	delete(m.pending, nonce)
	m.mu.Unlock()

	if !ok || c.wallet != wallet || !m.clock.Now().Before(c.expires) {
		return ErrChallengeNotFound
	}
	return nil
}

// Pending returns the number of stored nonces
func (m *MemoryChallenges) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// RedisChallenges shares nonces between instances through Redis keys that
// expire on their own.
type RedisChallenges struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisChallenges creates a nonce store on client
func NewRedisChallenges(client *redis.Client, prefix string, ttl time.Duration) *RedisChallenges {
	if ttl <= 0 {
		ttl = ChallengeTTL
	}
	return &RedisChallenges{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisChallenges) Issue(ctx context.Context, wallet string) (string, time.Time, error) {
	nonce := uuid.NewString()
	if err := r.client.Set(ctx, r.prefix+nonce, wallet, r.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store login challenge: %w", err)
	}
	return nonce, time.Now().UTC().Add(r.ttl), nil
}

func (r *RedisChallenges) Consume(ctx context.Context, wallet, nonce string) error {
	owner, err := r.client.GetDel(ctx, r.prefix+nonce).Result()
	if errors.Is(err, redis.Nil) {
		return ErrChallengeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to consume login challenge: %w", err)
	}
	if owner != wallet {
		return ErrChallengeNotFound
	}
	return nil
}
