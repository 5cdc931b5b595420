// Package player drives per-channel playback sessions: it owns the queue
// pointer, hands tracks to the audio backend, and advances past failures.
package player

import (
	"context"
	"time"

	"github.com/cadencebot/cadence/pkg/core/queue"
)

// QueueStore is the persisted queue state for all channels. Implementations
// must make every mutation durable before returning.
type QueueStore interface {
	QueueSize(ctx context.Context, channelID string) (int, error)
	QueueIndex(ctx context.Context, channelID string) (*int, error)
	SetQueueIndex(ctx context.Context, channelID string, index int) error
	AppendQueue(ctx context.Context, channelID string, items []queue.Item) error
	ReplaceQueue(ctx context.Context, channelID string, items []queue.Item) error
	QueueItemAt(ctx context.Context, channelID string, index int) (queue.Item, error)
	ClearPlayer(ctx context.Context, channelID string) error
}

// Resolver expands a raw query into queue items.
type Resolver interface {
	Resolve(ctx context.Context, query, requester string) ([]queue.Item, error)
}

// AudioBackend is the voice transport the engine hands tracks to. Handoff
// submits an item for playback; Skip cuts whatever is currently audible.
type AudioBackend interface {
	Handoff(ctx context.Context, channelID string, item queue.Item) error
	Skip(ctx context.Context, channelID string) error
	SetVolume(ctx context.Context, channelID string, volume int) error
	SetPause(ctx context.Context, channelID string, paused bool) error
	SetRepeat(ctx context.Context, channelID string, repeat bool) error
	Disconnect(ctx context.Context, channelID string) error
	Position(ctx context.Context, channelID string) (time.Duration, error)
	Duration(ctx context.Context, channelID string) (time.Duration, error)
}

// State says what a play or advance operation ended up doing.
type State string

const (
	// StateStarted means a fresh session began with the first new item.
	StateStarted State = "started"
	// StateResumed means playback of the current item was re-issued.
	StateResumed State = "resumed"
	// StateQueued means items were appended behind an active session.
	StateQueued State = "queued"
	// StateAdvanced means the pointer moved to a later item that started.
	StateAdvanced State = "advanced"
	// StateQueueExhausted means no remaining item could play and the
	// session was torn down.
	StateQueueExhausted State = "queue_exhausted"
)

// HandoffFailure records one queue item the backend refused during an
// advance scan.
type HandoffFailure struct {
	Index int
	Item  queue.Item
	Err   error
}

// Outcome reports what happened, which item is now current (when one is),
// and any items skipped over on the way there.
type Outcome struct {
	State    State
	Index    int
	Item     *queue.Item
	Queued   int
	Failures []HandoffFailure
}

// NowPlaying is a snapshot of the current item and its playback telemetry.
type NowPlaying struct {
	Index    int
	Item     queue.Item
	Position time.Duration
	Duration time.Duration
}
