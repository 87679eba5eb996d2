package chat

import (
	"sync"
	"testing"
)

func TestClientManagerResolveIsIdempotent(t *testing.T) {
	m := NewClientManager()
	conn := newFakeConn("a")

	first := m.Resolve(conn)
	second := m.Resolve(conn)
	if first != second {
		t.Fatal("resolving the same connection twice returned different sessions")
	}
}

func TestClientManagerUnauthenticatedAbsent(t *testing.T) {
	m := NewClientManager()
	conn := newFakeConn("a")

	client := m.Resolve(conn)
	if client.Authenticated() {
		t.Fatal("fresh session should be unauthenticated")
	}
	if client.ID() != "" {
		t.Fatalf("unauthenticated session has id %q", client.ID())
	}
	if _, ok := m.Get(conn); ok {
		t.Fatal("unauthenticated session should not be registered")
	}
	if m.Register(client) {
		t.Fatal("registering an unauthenticated session should fail")
	}
}

func TestClientManagerRegisterAndUnregister(t *testing.T) {
	m := NewClientManager()
	conn := newFakeConn("a")

	client := m.Resolve(conn)
	client.Authenticate("u1", "alice", "tok")

	if !m.Register(client) {
		t.Fatal("register failed")
	}
	if m.Register(client) {
		t.Fatal("double register should fail")
	}

	got, ok := m.Get(conn)
	if !ok || got != client {
		t.Fatal("registered session not found by connection")
	}

	if !m.Unregister(client) {
		t.Fatal("unregister failed")
	}
	if _, ok := m.Get(conn); ok {
		t.Fatal("session still registered after unregister")
	}
	if m.Unregister(client) {
		t.Fatal("second unregister should report unknown connection")
	}
}

func TestClientManagerConcurrentResolve(t *testing.T) {
	m := NewClientManager()
	conn := newFakeConn("a")

	const workers = 16
	results := make([]*Client, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Resolve(conn)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent resolves materialized more than one session")
		}
	}
}
