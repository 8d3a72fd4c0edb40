package hub_test

import (
	"testing"

	"github.com/eoforge/sathub/internal/hub"
)

// =============================================================================
// REGISTRY TESTS
// These tests use ONLY hub interfaces, no connector-specific types.
// =============================================================================

type fakeHub struct {
	hub.Hub
	id string
}

func (f *fakeHub) ID() string   { return f.id }
func (f *fakeHub) Close() error { return nil }

func TestRegistry_RegisterAndCreate(t *testing.T) {
	registry := hub.NewRegistry()
	registry.Register("test.fake", func(config map[string]any) (hub.Hub, error) {
		return &fakeHub{id: "test.fake"}, nil
	})

	if _, ok := registry.Get("test.fake"); !ok {
		t.Fatal("expected factory to be registered")
	}

	ids := registry.List()
	if len(ids) != 1 || ids[0] != "test.fake" {
		t.Errorf("List = %v", ids)
	}

	h, err := registry.Create("test.fake", nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer h.Close()
	if h.ID() != "test.fake" {
		t.Errorf("ID = %q", h.ID())
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	registry := hub.NewRegistry()
	if _, err := registry.Create("no.such.hub", nil); err == nil {
		t.Fatal("expected error for unknown hub id")
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	registry := hub.NewRegistry()
	factory := func(config map[string]any) (hub.Hub, error) {
		return &fakeHub{id: "dup"}, nil
	}
	registry.Register("dup", factory)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	registry.Register("dup", factory)
}

func TestCollect(t *testing.T) {
	it := &sliceIterator{items: []int{1, 2, 3}}
	got, err := hub.Collect[int](it)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("Collect = %v", got)
	}
	if !it.closed {
		t.Error("Collect should close the iterator")
	}
}

type sliceIterator struct {
	items  []int
	idx    int
	closed bool
}

func (s *sliceIterator) Next() bool {
	return s.idx < len(s.items)
}

func (s *sliceIterator) Value() int {
	v := s.items[s.idx]
	s.idx++
	return v
}

func (s *sliceIterator) Err() error   { return nil }
func (s *sliceIterator) Close() error { s.closed = true; return nil }
