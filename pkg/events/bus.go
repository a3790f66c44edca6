package events

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity is the per-run ring buffer size.
const DefaultCapacity = 10000

// subscribeBuffer is the channel buffer handed to each subscriber. The
// subscriber goroutine refills from the ring via cursors, so a full channel
// only delays delivery, it never loses events still held by the ring.
const subscribeBuffer = 64

// Bus is a per-run append-only event log backed by a bounded ring buffer.
// Appends never block; when the ring is full the oldest events are evicted
// and the gap is marked with a synthetic events_dropped event.
type Bus struct {
	mu       sync.RWMutex
	buf      []Event
	capacity int
	nextID   int64
	terminal bool
	dropped  int

	// changed is closed and replaced on every append; readers wait on it.
	changed chan struct{}
}

// NewBus creates a bus with the given ring capacity. capacity < 1 falls back
// to DefaultCapacity.
func NewBus(capacity int) *Bus {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Bus{
		buf:      make([]Event, 0, capacity),
		capacity: capacity,
		nextID:   1,
		changed:  make(chan struct{}),
	}
}

// Append adds an event to the log and returns its id. Appends after the
// terminal event are ignored and return 0.
//
// Terminality is the appender's call, not the type's: error events can appear
// mid-log for worker or selection failures, so only AppendTerminal ends the
// log.
func (b *Bus) Append(typ Type, data any, meta *Metadata) int64 {
	return b.append(typ, data, meta, false)
}

// AppendTerminal adds the event that ends the log. All later appends are
// ignored.
func (b *Bus) AppendTerminal(typ Type, data any, meta *Metadata) int64 {
	return b.append(typ, data, meta, true)
}

func (b *Bus) append(typ Type, data any, meta *Metadata, terminal bool) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.terminal {
		return 0
	}
	if b.dropped > 0 && typ != TypeEventsDropped {
		n := b.dropped
		b.dropped = 0
		b.appendLocked(TypeEventsDropped, EventsDroppedData{DroppedCount: n}, nil)
	}
	id := b.appendLocked(typ, data, meta)
	if terminal {
		b.terminal = true
	}

	close(b.changed)
	b.changed = make(chan struct{})
	return id
}

// appendLocked stores an event, evicting the oldest entry when full.
// Must be called with b.mu held.
func (b *Bus) appendLocked(typ Type, data any, meta *Metadata) int64 {
	if len(b.buf) >= b.capacity {
		b.buf = b.buf[1:]
		b.dropped++
	}
	ev := Event{
		ID:        b.nextID,
		Timestamp: time.Now().UTC(),
		Type:      typ,
		Data:      data,
		Metadata:  meta,
	}
	b.nextID++
	b.buf = append(b.buf, ev)
	return ev.ID
}

// Since returns all retained events with id > cursor, the cursor to use for
// the next call, and whether the log has reached its terminal event. Events
// evicted by the ring are gone; the surviving events_dropped marker signals
// the gap.
func (b *Bus) Since(cursor int64) ([]Event, int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, ev := range b.buf {
		if ev.ID > cursor {
			out = append(out, ev)
		}
	}
	next := cursor
	if n := len(out); n > 0 {
		next = out[n-1].ID
	}
	return out, next, b.terminal && next == b.nextID-1
}

// Terminal reports whether the log has ended.
func (b *Bus) Terminal() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.terminal
}

// Len returns the number of retained events.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.buf)
}

// Subscribe returns a channel delivering events from the start of the log
// until the terminal event, after which the channel is closed. Delivery stops
// early when ctx is cancelled. Multiple subscribers read independently.
func (b *Bus) Subscribe(ctx context.Context) <-chan Event {
	return b.SubscribeFrom(ctx, 0)
}

// SubscribeFrom is Subscribe starting after the given cursor, for clients
// resuming a stream.
func (b *Bus) SubscribeFrom(ctx context.Context, cursor int64) <-chan Event {
	ch := make(chan Event, subscribeBuffer)
	go func() {
		defer close(ch)
		for {
			wait := b.waitCh()
			evs, next, terminal := b.Since(cursor)
			for _, ev := range evs {
				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				}
			}
			cursor = next
			if terminal {
				return
			}
			select {
			case <-wait:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// waitCh returns a channel closed on the next append.
func (b *Bus) waitCh() <-chan struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.changed
}
