package moor

import (
	"context"
	"testing"
)

type fakeRecoverable struct {
	state RecoverableState
}

func (f *fakeRecoverable) Suspend()                                          { f.state = StateSuspended }
func (f *fakeRecoverable) RecoverAsync(ctx context.Context, c *Connection) error { f.state = StateRecovering; return nil }
func (f *fakeRecoverable) Resume()                                           { f.state = StateAttached }
func (f *fakeRecoverable) Close() error                                      { f.state = StateClosed; return nil }
func (f *fakeRecoverable) State() RecoverableState                           { return f.state }

func TestRegistry_AddRemove(t *testing.T) {
	reg := NewRegistry()
	r1 := &fakeRecoverable{}
	r2 := &fakeRecoverable{}

	reg.Add(r1)
	reg.Add(r2)
	if reg.Len() != 2 {
		t.Fatalf("expected 2 members, got %d", reg.Len())
	}

	reg.Remove(r1)
	if reg.Len() != 1 {
		t.Fatalf("expected 1 member, got %d", reg.Len())
	}
}

func TestRegistry_RemoveTwiceIsNoop(t *testing.T) {
	reg := NewRegistry()
	r1 := &fakeRecoverable{}
	reg.Add(r1)
	reg.Remove(r1)
	reg.Remove(r1)
	if reg.Len() != 0 {
		t.Fatalf("expected 0 members, got %d", reg.Len())
	}
}

func TestRegistry_SnapshotIsStableCopy(t *testing.T) {
	reg := NewRegistry()
	r1 := &fakeRecoverable{}
	reg.Add(r1)

	snap := reg.Snapshot()
	reg.Add(&fakeRecoverable{})

	if len(snap) != 1 {
		t.Fatalf("expected snapshot to retain 1 member, got %d", len(snap))
	}
	if reg.Len() != 2 {
		t.Fatalf("expected registry to now have 2 members, got %d", reg.Len())
	}
}

func TestRegistry_RequestReconnectIsNoopWithoutNotifier(t *testing.T) {
	reg := NewRegistry()
	reg.RequestReconnect() // must not panic
}

func TestRegistry_RequestReconnectInvokesInstalledNotifier(t *testing.T) {
	reg := NewRegistry()
	fired := 0
	reg.SetReconnectNotifier(func() { fired++ })

	reg.RequestReconnect()
	reg.RequestReconnect()

	if fired != 2 {
		t.Fatalf("expected notifier to fire twice, got %d", fired)
	}
}

func TestRecoverableState_String(t *testing.T) {
	if StateAttached.String() != "attached" {
		t.Errorf("unexpected string for StateAttached: %q", StateAttached.String())
	}
	if RecoverableState(99).String() != "unknown" {
		t.Errorf("expected unknown for out-of-range state")
	}
}
