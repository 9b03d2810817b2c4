package meilies

import "sync"

// notifierHub fans out newly appended events to every live subscriber of
// the stream they were appended to. There is one hub per process, shared
// across every connection, rather than one notifier thread per
// (stream, client) pair: registering a subscriber is just adding a channel
// to a slice, and publishing is a non-blocking send to each of them.
type notifierHub struct {
	mu   sync.Mutex
	subs map[StreamName]map[*liveSub]struct{}
}

func newNotifierHub() *notifierHub {
	return &notifierHub{subs: map[StreamName]map[*liveSub]struct{}{}}
}

// liveSub is one subscriber's inbox. ch is bounded; if it fills before the
// subscription engine drains it, overflow is closed exactly once and no
// further events are delivered to this subscriber (the connection is
// expected to be torn down once the engine notices).
type liveSub struct {
	ch       chan Event
	overflow chan struct{}
	once     sync.Once
}

func newLiveSub(highWaterMark int) *liveSub {
	return &liveSub{
		ch:       make(chan Event, highWaterMark),
		overflow: make(chan struct{}),
	}
}

func (s *liveSub) markOverflow() {
	s.once.Do(func() { close(s.overflow) })
}

// register adds a new liveSub for stream and returns it along with a
// cancel function which must be called once the subscriber is done
// (normally on connection/subscription teardown) to stop leaking memory.
func (h *notifierHub) register(stream StreamName, highWaterMark int) (*liveSub, func()) {
	sub := newLiveSub(highWaterMark)

	h.mu.Lock()
	m, ok := h.subs[stream]
	if !ok {
		m = map[*liveSub]struct{}{}
		h.subs[stream] = m
	}
	m[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs[stream], sub)
		if len(h.subs[stream]) == 0 {
			delete(h.subs, stream)
		}
		h.mu.Unlock()
	}
	return sub, cancel
}

// publish delivers ev to every current subscriber of stream. A subscriber
// whose inbox is full has its overflow marked instead of blocking the
// append path.
func (h *notifierHub) publish(stream StreamName, ev Event) {
	h.mu.Lock()
	subs := make([]*liveSub, 0, len(h.subs[stream]))
	for s := range h.subs[stream] {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		select {
		case <-s.overflow:
			continue
		default:
		}
		select {
		case s.ch <- ev:
		default:
			s.markOverflow()
		}
	}
}
