package signer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/monero-agent/xmrsigner/internal/txsession"
	"github.com/monero-agent/xmrsigner/internal/walletcreds"
)

// NonceStore allocates the monotonic tsx_ctr mixed into every session's key
// schedule, so no two sessions — even across a process restart — ever
// share one. internal/noncestore's Redis-backed implementation satisfies
// this; tests and single-process deployments can use NewInMemoryNonceStore.
type NonceStore interface {
	Next(ctx context.Context) (uint64, error)
}

// inMemoryNonceStore is a NonceStore for tests and single-process runs
// that don't need tsx_ctr to survive a restart.
type inMemoryNonceStore struct {
	mu  sync.Mutex
	ctr uint64
}

// NewInMemoryNonceStore returns a NonceStore backed by process memory.
func NewInMemoryNonceStore() NonceStore { return &inMemoryNonceStore{} }

func (s *inMemoryNonceStore) Next(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctr++
	return s.ctr, nil
}

type entry struct {
	session    *txsession.Session
	creds      *walletcreds.Unsealed
	lastActive time.Time
}

// Manager holds every live transaction session, keyed by an opaque session
// id, and evicts sessions idle longer than idleTimeout. This generalizes
// the teacher's single-session SessionManager (one EIP-712 key, one TTL)
// to many concurrently in-flight transactions, each with its own
// txsession.Session and its own slice of the unsealed wallet credentials.
type Manager struct {
	vault       *walletcreds.Vault
	nonces      NonceStore
	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewManager creates a Manager that mints sessions against vault, using
// nonces for tsx_ctr allocation. idleTimeout <= 0 disables eviction.
func NewManager(vault *walletcreds.Vault, nonces NonceStore, idleTimeout time.Duration) *Manager {
	return &Manager{
		vault:       vault,
		nonces:      nonces,
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*entry),
	}
}

// Create mints a fresh session id and opens the vault for it. The caller
// must eventually call End to drop the manager's reference to the unsealed
// credentials.
func (m *Manager) Create(ctx context.Context) (id string, tsxCtr uint64, unsealed *walletcreds.Unsealed, err error) {
	id, err = newSessionID()
	if err != nil {
		return "", 0, nil, err
	}
	tsxCtr, err = m.nonces.Next(ctx)
	if err != nil {
		return "", 0, nil, fmt.Errorf("signer: allocate tsx_ctr: %w", err)
	}
	unsealed, err = m.vault.Open()
	if err != nil {
		return "", 0, nil, fmt.Errorf("signer: open vault: %w", err)
	}
	return id, tsxCtr, unsealed, nil
}

// Put registers a newly constructed session under id.
func (m *Manager) Put(id string, s *txsession.Session, creds *walletcreds.Unsealed) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &entry{session: s, creds: creds, lastActive: time.Now()}
}

// Get returns the session for id, touching its idle timer.
func (m *Manager) Get(id string) (*txsession.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("signer: unknown session %q", id)
	}
	e.lastActive = time.Now()
	return e.session, nil
}

// End removes a session and its unsealed credentials from the manager,
// whether it finished normally or aborted. The credential scalars are not
// zeroed here.
func (m *Manager) End(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// ReapIdle evicts every session whose idle timer has elapsed. Intended to
// run on a ticker from the process's main loop.
func (m *Manager) ReapIdle() {
	if m.idleTimeout <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.idleTimeout)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if e.lastActive.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

func newSessionID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("signer: generate session id: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
