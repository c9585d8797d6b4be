package inactivity

import (
	"context"
	"sync"
	"time"
)

// Notice is the blocking, dismiss-only message shown when the session expires.
type Notice struct {
	Message  string    `json:"message"`
	IssuedAt time.Time `json:"issuedAt"`
}

// NoticeBoard holds at most one pending notice and releases whoever waits on it once acknowledged.
type NoticeBoard struct {
	mu      sync.Mutex
	pending *Notice
	ack     chan struct{}
}

func NewNoticeBoard() *NoticeBoard {
	return &NoticeBoard{}
}

// NotifyExpired posts msg and blocks until Acknowledge is called or ctx is done.
func (b *NoticeBoard) NotifyExpired(ctx context.Context, msg string) error {
	b.mu.Lock()
	ack := make(chan struct{})
	b.pending = &Notice{Message: msg, IssuedAt: time.Now()}
	b.ack = ack
	b.mu.Unlock()

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		b.mu.Lock()
		if b.ack == ack {
			b.pending = nil
			b.ack = nil
		}
		b.mu.Unlock()
		return ctx.Err()
	}
}

// Pending returns the notice awaiting acknowledgement, if any.
func (b *NoticeBoard) Pending() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return Notice{}, false
	}
	return *b.pending, true
}

// Acknowledge dismisses the pending notice. It reports false when nothing was pending.
func (b *NoticeBoard) Acknowledge() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ack == nil {
		return false
	}
	close(b.ack)
	b.ack = nil
	b.pending = nil
	return true
}
