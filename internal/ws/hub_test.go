package ws

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakeConn struct {
	writes   []interface{}
	writeErr error
	closed   bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestHub_BroadcastReachesAllObservers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c1 := &fakeConn{}
	c2 := &fakeConn{}
	hub.Join("run1", c1)
	hub.Join("run1", c2)

	hub.Broadcast("run1", "hello")

	if len(c1.writes) != 1 || len(c2.writes) != 1 {
		t.Fatalf("expected one write per observer, got %d and %d", len(c1.writes), len(c2.writes))
	}
	if hub.ObserverCount("run1") != 2 {
		t.Fatalf("expected 2 observers, got %d", hub.ObserverCount("run1"))
	}
}

func TestHub_BroadcastScopedToRun(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c1 := &fakeConn{}
	c2 := &fakeConn{}
	hub.Join("run1", c1)
	hub.Join("run2", c2)

	hub.Broadcast("run1", "hello")

	if len(c1.writes) != 1 {
		t.Fatalf("expected run1 observer to receive, got %d writes", len(c1.writes))
	}
	if len(c2.writes) != 0 {
		t.Fatalf("expected run2 observer to receive nothing, got %d writes", len(c2.writes))
	}
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c1 := &fakeConn{}
	c2 := &fakeConn{}
	hub.Join("run1", c1)
	hub.Join("run1", c2)

	hub.Leave("run1", c1)
	hub.Broadcast("run1", "hello")

	if len(c1.writes) != 0 {
		t.Fatalf("departed observer should not receive, got %d writes", len(c1.writes))
	}
	if len(c2.writes) != 1 {
		t.Fatalf("remaining observer should receive, got %d writes", len(c2.writes))
	}
	if hub.ObserverCount("run1") != 1 {
		t.Fatalf("expected 1 observer left, got %d", hub.ObserverCount("run1"))
	}
}

func TestHub_LeaveIsIdempotent(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c1 := &fakeConn{}
	hub.Join("run1", c1)

	hub.Leave("run1", c1)
	hub.Leave("run1", c1)
	hub.Leave("never-joined", c1)

	if hub.ObserverCount("run1") != 0 {
		t.Fatalf("expected empty run, got %d observers", hub.ObserverCount("run1"))
	}
}

func TestHub_DeadObserverRemovedDuringBroadcast(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	dead := &fakeConn{writeErr: errors.New("broken pipe")}
	live := &fakeConn{}
	hub.Join("run1", dead)
	hub.Join("run1", live)

	hub.Broadcast("run1", "hello")

	if !dead.closed {
		t.Fatal("dead observer was not closed")
	}
	if hub.ObserverCount("run1") != 1 {
		t.Fatalf("expected dead observer evicted, got %d observers", hub.ObserverCount("run1"))
	}
	if len(live.writes) != 1 {
		t.Fatalf("live observer should still receive, got %d writes", len(live.writes))
	}

	hub.Broadcast("run1", "again")
	if len(live.writes) != 2 {
		t.Fatalf("expected second delivery, got %d writes", len(live.writes))
	}
}

func TestHub_BroadcastUnknownRunIsNoop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	hub.Broadcast("missing", "hello")
}
