package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()
	t.Cleanup(s.Close)

	if err := s.Set(context.Background(), "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(context.Background(), "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("expected v1, got %q", got)
	}
}

func TestMemoryStoreMissAfterExpiry(t *testing.T) {
	s := NewMemoryStore()
	t.Cleanup(s.Close)

	if err := s.Set(context.Background(), "k1", []byte("v1"), -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := s.Get(context.Background(), "k1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	t.Cleanup(s.Close)

	if err := s.Set(context.Background(), "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Delete(context.Background(), "k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(context.Background(), "k1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after delete, got %v", err)
	}
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	s := NewMemoryStore()
	t.Cleanup(s.Close)

	src := []byte("original")
	if err := s.Set(context.Background(), "k1", src, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	src[0] = 'X'

	got, err := s.Get(context.Background(), "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("stored value mutated: %q", got)
	}
}
