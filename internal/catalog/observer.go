package catalog

import (
	"context"

	"github.com/mmcdole/backlog/internal/domain"
)

// ChannelObserver adapts domain.SyncObserver to a channel.
type ChannelObserver struct {
	ch   chan<- domain.SyncProgress
	done <-chan struct{}
}

// NewChannelObserver creates a new channel-based observer. Once ctx is done
// the observer stops waiting for the reader.
func NewChannelObserver(ctx context.Context, ch chan<- domain.SyncProgress) *ChannelObserver {
	return &ChannelObserver{ch: ch, done: ctx.Done()}
}

// OnProgress sends progress to the channel. Intermediate updates are dropped
// when the channel is full; the final update (InProgress == false) blocks
// until delivered or until the observer's context is done.
func (o *ChannelObserver) OnProgress(progress domain.SyncProgress) {
	if !progress.InProgress {
		select {
		case o.ch <- progress:
		case <-o.done:
		}
		return
	}
	select {
	case o.ch <- progress:
	default: // Non-blocking if channel full
	}
}
