package client

import (
	"github.com/examtrainer/backend/internal/session"
)

// Pusher runs progress pushes on a single background worker so a fast
// sequence of answers cannot interleave writes. Every snapshot carries the
// full state, so when pushes pile up only the newest one matters and the
// rest are skipped. Implements session.Saver.
type Pusher struct {
	save    func(session.Progress) error
	onError func(error)
	ch      chan session.Progress
	done    chan struct{}
}

// NewPusher starts the worker. onError may be nil; push failures are
// otherwise dropped, since all state is re-derivable from the last
// successful sync.
func NewPusher(save func(session.Progress) error, onError func(error)) *Pusher {
	p := &Pusher{
		save:    save,
		onError: onError,
		ch:      make(chan session.Progress, 16),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Pusher) run() {
	defer close(p.done)
	for snap := range p.ch {
		if err := p.save(p.latest(snap)); err != nil && p.onError != nil {
			p.onError(err)
		}
	}
}

// latest drains queued snapshots and keeps the newest.
func (p *Pusher) latest(snap session.Progress) session.Progress {
	for {
		select {
		case next, ok := <-p.ch:
			if !ok {
				return snap
			}
			snap = next
		default:
			return snap
		}
	}
}

// SaveProgress queues a snapshot without blocking the caller. A full queue
// drops the snapshot; the next push carries the same state anyway.
func (p *Pusher) SaveProgress(snap session.Progress) {
	select {
	case p.ch <- snap:
	default:
	}
}

// Close flushes pending pushes and stops the worker.
func (p *Pusher) Close() {
	close(p.ch)
	<-p.done
}
