package player

import (
	"context"
	"fmt"

	"github.com/cadencebot/cadence/pkg/core"
)

const (
	minVolume = 0
	maxVolume = 1000
)

// Pause suspends playback without moving the pointer.
func (e *Engine) Pause(ctx context.Context, channelID string) error {
	return e.backend.SetPause(ctx, channelID, true)
}

// Unpause resumes playback of the suspended item.
func (e *Engine) Unpause(ctx context.Context, channelID string) error {
	return e.backend.SetPause(ctx, channelID, false)
}

// SetVolume sets the playback volume. Values outside 0..1000 are rejected
// before reaching the backend.
func (e *Engine) SetVolume(ctx context.Context, channelID string, volume int) error {
	if volume < minVolume || volume > maxVolume {
		return fmt.Errorf("volume must be between %d and %d, got %d", minVolume, maxVolume, volume)
	}
	return e.backend.SetVolume(ctx, channelID, volume)
}

// Loop toggles repeat of the current item.
func (e *Engine) Loop(ctx context.Context, channelID string, repeat bool) error {
	return e.backend.SetRepeat(ctx, channelID, repeat)
}

// Stop tears the session down on request: the persisted queue and pointer
// are cleared and the voice transport is released.
func (e *Engine) Stop(ctx context.Context, channelID string) error {
	lock := e.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()
	return e.teardown(ctx, channelID)
}

// NowPlaying reports the current item together with live position and
// duration from the backend.
func (e *Engine) NowPlaying(ctx context.Context, channelID string) (NowPlaying, error) {
	index, err := e.store.QueueIndex(ctx, channelID)
	if err != nil {
		return NowPlaying{}, err
	}
	if index == nil {
		return NowPlaying{}, core.ErrNoActiveSession
	}
	item, err := e.store.QueueItemAt(ctx, channelID, *index)
	if err != nil {
		return NowPlaying{}, err
	}
	position, err := e.backend.Position(ctx, channelID)
	if err != nil {
		return NowPlaying{}, err
	}
	duration, err := e.backend.Duration(ctx, channelID)
	if err != nil {
		return NowPlaying{}, err
	}
	return NowPlaying{Index: *index, Item: item, Position: position, Duration: duration}, nil
}
