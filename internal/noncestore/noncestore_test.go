package noncestore

import (
	"context"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
)

// mockRedis records every Incr call and replays a scripted sequence of
// return values, the same recording-mock shape the teacher used for its
// Redis writer tests.
type mockRedis struct {
	mu    sync.Mutex
	key   string
	calls int
	seq   []int64
}

func (m *mockRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = key
	cmd := redis.NewIntCmd(context.Background())
	if m.calls < len(m.seq) {
		cmd.SetVal(m.seq[m.calls])
	}
	m.calls++
	return cmd
}

func TestStoreNextIncrements(t *testing.T) {
	mock := &mockRedis{seq: []int64{1, 2, 3}}
	s := New(mock, "xmrsigner:tsx_ctr")

	for i, want := range []uint64{1, 2, 3} {
		got, err := s.Next(context.Background())
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Fatalf("call %d: got %d, want %d", i, got, want)
		}
	}
	if mock.key != "xmrsigner:tsx_ctr" {
		t.Fatalf("wrong key: %s", mock.key)
	}
}

func TestStoreNextRejectsNonPositive(t *testing.T) {
	mock := &mockRedis{seq: []int64{0}}
	s := New(mock, "xmrsigner:tsx_ctr")

	if _, err := s.Next(context.Background()); err == nil {
		t.Fatal("expected an error for a non-positive counter")
	}
}
