package meilies

import (
	"github.com/meilisearch/MeiliES/merr"
	"github.com/meilisearch/MeiliES/resp"
)

// ErrSlowConsumer is returned (and reported as a stream-scoped error
// record) when a subscriber's inbox overflows its high-water mark. The
// caller must close the whole connection when it sees this error, not
// just the one subscription.
var ErrSlowConsumer = merr.New("slow consumer: high-water mark exceeded")

// subscriptionEngine runs the seam algorithm described by the wire
// protocol: register the live notifier before doing anything else, take a
// snapshot of the tail, replay history up to that snapshot, then splice
// in live notifications with a dedup check against the highest number
// emitted so far. Because the dedup check is applied uniformly, draining
// whatever the notifier already buffered and consuming new notifications
// are the same loop.
type subscriptionEngine struct {
	store         Store
	highWaterMark int
}

func newSubscriptionEngine(store Store, highWaterMark int) *subscriptionEngine {
	return &subscriptionEngine{store: store, highWaterMark: highWaterMark}
}

// run drives a single Subscription to completion, sending every record it
// produces (ack, events, end-of-stream, or a stream error) to emit. It
// returns when the subscription completes normally, emit returns an
// error (the connection is going away), done is closed, or the
// subscriber's inbox overflows (ErrSlowConsumer).
func (e *subscriptionEngine) run(sub Subscription, emit func(resp.Value) error, done <-chan struct{}) error {
	live, cancel := e.store.Subscribe(sub.Stream, e.highWaterMark)
	defer cancel()

	if err := emit(SubscribedRecord(sub.Stream)); err != nil {
		return err
	}

	if sub.Bounded && sub.From >= sub.To {
		return emit(EndOfStreamRecord(sub.Stream))
	}

	var maxEmitted uint64
	haveEmitted := false

	if !sub.LiveOnly {
		count, lastNumber, err := e.store.LastEventNumber(sub.Stream)
		if err != nil {
			_ = emit(StreamErrorRecord(sub.Stream, err))
			return err
		}
		if count > 0 && sub.From <= lastNumber {
			to := lastNumber + 1
			if sub.Bounded && sub.To < to {
				to = sub.To
			}
			events, err := e.store.RangeRead(sub.Stream, sub.From, to, true)
			if err != nil {
				_ = emit(StreamErrorRecord(sub.Stream, err))
				return err
			}
			for _, ev := range events {
				if err := emit(EventRecord(sub.Stream, ev)); err != nil {
					return err
				}
				maxEmitted, haveEmitted = ev.Number, true
				if sub.Bounded && ev.Number == sub.To-1 {
					return emit(EndOfStreamRecord(sub.Stream))
				}
			}
		}
	}

	for {
		select {
		case <-done:
			return nil
		case <-live.overflow:
			_ = emit(StreamErrorRecord(sub.Stream, ErrSlowConsumer))
			return ErrSlowConsumer
		case ev := <-live.ch:
			if haveEmitted && ev.Number <= maxEmitted {
				continue
			}
			if !haveEmitted && !sub.LiveOnly && ev.Number < sub.From {
				continue
			}
			if err := emit(EventRecord(sub.Stream, ev)); err != nil {
				return err
			}
			maxEmitted, haveEmitted = ev.Number, true
			if sub.Bounded && ev.Number == sub.To-1 {
				return emit(EndOfStreamRecord(sub.Stream))
			}
		}
	}
}
