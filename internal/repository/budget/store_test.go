package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/grounder/internal/db"
)

type mockKV struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	incrFn   func(ctx context.Context, key string, val int64) error
	expireFn func(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKV) IncrBy(ctx context.Context, key string, val int64) error {
	if m.incrFn != nil {
		return m.incrFn(ctx, key, val)
	}
	return nil
}

func (m *mockKV) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	return nil
}

func TestIncrBy_SetsTTLWithNX(t *testing.T) {
	kv := &mockKV{}
	var gotKey string
	var gotVal int64
	kv.incrFn = func(_ context.Context, key string, val int64) error {
		gotKey, gotVal = key, val
		return nil
	}
	var gotTTL time.Duration
	var gotNX bool
	kv.expireFn = func(_ context.Context, _ string, ttl time.Duration, nx bool) error {
		gotTTL, gotNX = ttl, nx
		return nil
	}

	s := New(kv, 48*time.Hour)
	if err := s.IncrBy(context.Background(), "grounder:budget:openai:daily:2025-10-15", 1200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "grounder:budget:openai:daily:2025-10-15" || gotVal != 1200 {
		t.Errorf("INCRBY got (%q, %d)", gotKey, gotVal)
	}
	if gotTTL != 48*time.Hour {
		t.Errorf("EXPIRE ttl = %v, want 48h", gotTTL)
	}
	if !gotNX {
		t.Error("EXPIRE must use NX so repeat increments keep the original expiry")
	}
}

func TestIncrBy_IncrError(t *testing.T) {
	kv := &mockKV{
		incrFn: func(_ context.Context, _ string, _ int64) error {
			return errors.New("connection refused")
		},
	}

	s := New(kv, 48*time.Hour)
	if err := s.IncrBy(context.Background(), "k", 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet_MissingKeyIsZero(t *testing.T) {
	s := New(&mockKV{}, 48*time.Hour)

	val, err := s.Get(context.Background(), "grounder:budget:openai:daily:2025-10-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 0 {
		t.Errorf("val = %d, want 0 for missing key", val)
	}
}

func TestGet_ParsesCounter(t *testing.T) {
	kv := &mockKV{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			return []byte("384200"), nil
		},
	}

	s := New(kv, 48*time.Hour)
	val, err := s.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 384200 {
		t.Errorf("val = %d, want 384200", val)
	}
}

func TestGet_GarbageValue(t *testing.T) {
	kv := &mockKV{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			return []byte("not a number"), nil
		},
	}

	s := New(kv, 48*time.Hour)
	if _, err := s.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected parse error")
	}
}
