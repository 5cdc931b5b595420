package player

import (
	"context"
	"sync"

	"github.com/cadencebot/cadence/pkg/core"

	"github.com/Laky-64/gologging"
)

// Engine coordinates playback sessions. Operations on the same channel are
// serialized; different channels proceed independently.
type Engine struct {
	store    QueueStore
	resolver Resolver
	backend  AudioBackend

	mu       sync.Mutex
	channels map[string]*sync.Mutex
}

// NewEngine creates an Engine on top of the given store, resolver and
// backend.
func NewEngine(store QueueStore, resolver Resolver, backend AudioBackend) *Engine {
	return &Engine{
		store:    store,
		resolver: resolver,
		backend:  backend,
		channels: make(map[string]*sync.Mutex),
	}
}

// channelLock returns the mutex guarding channelID, creating it on first
// use.
func (e *Engine) channelLock(channelID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.channels[channelID]
	if !ok {
		lock = &sync.Mutex{}
		e.channels[channelID] = lock
	}
	return lock
}

// StartOrResume is the entry point of the play operation. With an empty
// query it re-issues playback of the item the pointer rests on. With a
// query it resolves the items and either appends them behind the active
// session or, when no session is active, discards any stale leftover queue
// and starts fresh from the first new item.
func (e *Engine) StartOrResume(ctx context.Context, channelID, query, requester string) (Outcome, error) {
	lock := e.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	index, err := e.store.QueueIndex(ctx, channelID)
	if err != nil {
		return Outcome{}, err
	}

	if query == "" {
		if index == nil {
			return Outcome{}, core.ErrNoActiveSession
		}
		item, err := e.store.QueueItemAt(ctx, channelID, *index)
		if err != nil {
			return Outcome{}, err
		}
		if err := e.backend.Handoff(ctx, channelID, item); err != nil {
			return Outcome{}, err
		}
		return Outcome{State: StateResumed, Index: *index, Item: &item}, nil
	}

	active := index != nil
	if !active {
		// A queue without a pointer is left over from a torn-down
		// session and must not leak into the new one.
		if err := e.store.ReplaceQueue(ctx, channelID, nil); err != nil {
			return Outcome{}, err
		}
	}

	items, err := e.resolver.Resolve(ctx, query, requester)
	if err != nil {
		return Outcome{}, err
	}
	if err := e.store.AppendQueue(ctx, channelID, items); err != nil {
		return Outcome{}, err
	}

	if active {
		gologging.InfoF("[player] Queued %d items behind the session in %s.", len(items), channelID)
		return Outcome{State: StateQueued, Queued: len(items)}, nil
	}

	if err := e.store.SetQueueIndex(ctx, channelID, 0); err != nil {
		return Outcome{}, err
	}
	first := items[0]
	if err := e.backend.Handoff(ctx, channelID, first); err != nil {
		return Outcome{}, err
	}
	gologging.InfoF("[player] Started playback in %s with %s.", channelID, first.Describe())
	return Outcome{State: StateStarted, Index: 0, Item: &first, Queued: len(items)}, nil
}

// Advance moves the pointer to the next item the backend accepts, skipping
// over items it refuses and reporting each one. With interrupt set the
// current item is cut as soon as the replacement is submitted; without it
// the new item plays after the current one ends naturally. When nothing
// remains playable the session is torn down and StateQueueExhausted is
// returned.
func (e *Engine) Advance(ctx context.Context, channelID string, interrupt bool) (Outcome, error) {
	lock := e.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	index, err := e.store.QueueIndex(ctx, channelID)
	if err != nil {
		return Outcome{}, err
	}
	if index == nil {
		return Outcome{}, core.ErrNoActiveSession
	}

	size, err := e.store.QueueSize(ctx, channelID)
	if err != nil {
		return Outcome{}, err
	}

	var failures []HandoffFailure
	for next := *index + 1; next < size; next++ {
		item, err := e.store.QueueItemAt(ctx, channelID, next)
		if err != nil {
			return Outcome{}, err
		}
		if err := e.backend.Handoff(ctx, channelID, item); err != nil {
			gologging.WarnF("[player] Skipping %s in %s: %s", item.Describe(), channelID, err)
			failures = append(failures, HandoffFailure{Index: next, Item: item, Err: err})
			continue
		}
		if interrupt {
			if err := e.backend.Skip(ctx, channelID); err != nil {
				gologging.WarnF("[player] Failed to cut the current item in %s: %s", channelID, err)
			}
		}
		// The pointer records the item that actually started, so a
		// later resume lands on it.
		if err := e.store.SetQueueIndex(ctx, channelID, next); err != nil {
			return Outcome{}, err
		}
		return Outcome{State: StateAdvanced, Index: next, Item: &item, Failures: failures}, nil
	}

	if err := e.teardown(ctx, channelID); err != nil {
		return Outcome{}, err
	}
	return Outcome{State: StateQueueExhausted, Failures: failures}, nil
}

// teardown clears the persisted session and releases the voice transport.
func (e *Engine) teardown(ctx context.Context, channelID string) error {
	if err := e.store.ClearPlayer(ctx, channelID); err != nil {
		return err
	}
	if err := e.backend.Disconnect(ctx, channelID); err != nil {
		gologging.WarnF("[player] Failed to disconnect from %s: %s", channelID, err)
	}
	gologging.InfoF("[player] Session in %s ended.", channelID)
	return nil
}
