package hub

import (
	"sync"
	"testing"
	"time"
)

type typingRecorder struct {
	mu     sync.Mutex
	events []bool
}

func (r *typingRecorder) notify(sender, receiver string, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, isTyping)
}

func (r *typingRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.events))
	copy(out, r.events)
	return out
}

func shortTypingExpiry(t *testing.T, d time.Duration) {
	t.Helper()
	old := typingExpiry
	typingExpiry = d
	t.Cleanup(func() { typingExpiry = old })
}

func TestTypingExpiresAutonomously(t *testing.T) {
	shortTypingExpiry(t, 40*time.Millisecond)

	rec := &typingRecorder{}
	tc := newTypingCoordinator(rec.notify)

	tc.Typing("alice", "bob")
	time.Sleep(150 * time.Millisecond)

	events := rec.snapshot()
	if len(events) != 2 || events[0] != true || events[1] != false {
		t.Fatalf("expected [true false], got %v", events)
	}
	if tc.activePairs() != 0 {
		t.Errorf("timer leaked: %d active pairs", tc.activePairs())
	}
}

func TestTypingRefreshDebounces(t *testing.T) {
	shortTypingExpiry(t, 60*time.Millisecond)

	rec := &typingRecorder{}
	tc := newTypingCoordinator(rec.notify)

	// rapid refreshes within the window must reset the timer, not stack more
	for i := 0; i < 5; i++ {
		tc.Typing("alice", "bob")
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(200 * time.Millisecond)

	falses := 0
	for _, isTyping := range rec.snapshot() {
		if !isTyping {
			falses++
		}
	}
	if falses != 1 {
		t.Errorf("expected exactly one expiry-driven stop, got %d", falses)
	}
}

func TestStopTypingCancelsExpiry(t *testing.T) {
	shortTypingExpiry(t, 40*time.Millisecond)

	rec := &typingRecorder{}
	tc := newTypingCoordinator(rec.notify)

	tc.Typing("alice", "bob")
	tc.StopTyping("alice", "bob")
	time.Sleep(120 * time.Millisecond)

	events := rec.snapshot()
	if len(events) != 2 || events[1] != false {
		t.Fatalf("expected [true false] from the explicit stop, got %v", events)
	}
	if tc.activePairs() != 0 {
		t.Errorf("timer survived explicit stop")
	}
}

func TestTypingPairsAreIndependent(t *testing.T) {
	shortTypingExpiry(t, 40*time.Millisecond)

	rec := &typingRecorder{}
	tc := newTypingCoordinator(rec.notify)

	tc.Typing("alice", "bob")
	tc.Typing("bob", "alice")
	if got := tc.activePairs(); got != 2 {
		t.Fatalf("ordered pairs should not collide: got %d active", got)
	}

	tc.StopTyping("alice", "bob")
	if got := tc.activePairs(); got != 1 {
		t.Errorf("stopping one direction cleared %d pairs", 2-got)
	}
	tc.stopAll()
}

func TestStopTypingWithoutState(t *testing.T) {
	rec := &typingRecorder{}
	tc := newTypingCoordinator(rec.notify)

	// the client emits stop_typing after every send, state or not
	tc.StopTyping("alice", "bob")

	events := rec.snapshot()
	if len(events) != 1 || events[0] != false {
		t.Fatalf("expected a single reconciling false, got %v", events)
	}
}
