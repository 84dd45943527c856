package hub

import (
	"sync"
	"time"
)

// typingExpiry is how long a typing indicator stays up without a refresh.
// A client that crashes mid-type must not leave its counterpart staring at a
// stuck indicator, so expiry runs server-side.
var typingExpiry = 2 * time.Second

type typingPair struct {
	sender   string
	receiver string
}

// typingCoordinator keeps one expiry timer per ordered sender/receiver pair.
// A refresh cancels and replaces the timer rather than stacking a new one,
// so a burst of keystrokes produces exactly one expiry after the burst ends.
// notify pushes the indicator change to the receiver if online.
type typingCoordinator struct {
	mu     sync.Mutex
	timers map[typingPair]*time.Timer
	notify func(sender, receiver string, isTyping bool)
}

func newTypingCoordinator(notify func(sender, receiver string, isTyping bool)) *typingCoordinator {
	return &typingCoordinator{
		timers: make(map[typingPair]*time.Timer),
		notify: notify,
	}
}

// Typing records or refreshes the typing state for the pair and re-arms the
// expiry timer.
func (t *typingCoordinator) Typing(sender, receiver string) {
	if sender == "" || receiver == "" {
		return
	}
	key := typingPair{sender: sender, receiver: receiver}

	t.mu.Lock()
	if old, ok := t.timers[key]; ok {
		old.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(typingExpiry, func() {
		t.expire(key, timer)
	})
	t.timers[key] = timer
	t.mu.Unlock()

	t.notify(sender, receiver, true)
}

// StopTyping clears the pair immediately and cancels its pending expiry.
// Safe to call when no state exists (the client emits stop_typing after every
// send); the indicator-off push still goes out so the receiver reconciles.
func (t *typingCoordinator) StopTyping(sender, receiver string) {
	if sender == "" || receiver == "" {
		return
	}
	key := typingPair{sender: sender, receiver: receiver}

	t.mu.Lock()
	if timer, ok := t.timers[key]; ok {
		timer.Stop()
		delete(t.timers, key)
	}
	t.mu.Unlock()

	t.notify(sender, receiver, false)
}

// expire fires when a pair saw no refresh within typingExpiry. Only the timer
// currently held for the pair may clear it; a stale timer that lost a race
// with a refresh or an explicit stop does nothing.
func (t *typingCoordinator) expire(key typingPair, timer *time.Timer) {
	t.mu.Lock()
	current, ok := t.timers[key]
	if !ok || current != timer {
		t.mu.Unlock()
		return
	}
	delete(t.timers, key)
	t.mu.Unlock()

	t.notify(key.sender, key.receiver, false)
}

// stopAll cancels every pending timer without emitting indicator events.
// Used on hub shutdown.
func (t *typingCoordinator) stopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, timer := range t.timers {
		timer.Stop()
		delete(t.timers, key)
	}
}

func (t *typingCoordinator) activePairs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}
