package meilies

import (
	"testing"
	"time"

	"github.com/meilisearch/MeiliES/mtest/massert"
	"github.com/meilisearch/MeiliES/mtest/mchk"
)

// TestAppendGapFreeProperty property-tests BoltStore.Append/RangeRead
// against spec §8's gap-free numbering and order-preservation invariants:
// for appends rotated round-robin across three streams, each stream's event
// numbers must come back from RangeRead as exactly 0..count-1 in order,
// with the appends to the other streams interleaved between them.
func TestAppendGapFreeProperty(t *testing.T) {
	streams := []StreamName{"alpha", "beta", "gamma"}

	type state struct {
		store *BoltStore
		want  map[StreamName][][]byte
	}

	chk := mchk.Checker{
		Init: func() mchk.State {
			return state{
				store: openTestStore(t),
				want:  map[StreamName][][]byte{},
			}
		},
		Next: func(ss mchk.State) mchk.Action {
			s := ss.(state)
			total := 0
			for _, evs := range s.want {
				total += len(evs)
			}
			return mchk.Action{Params: streams[total%len(streams)]}
		},
		Apply: func(ss mchk.State, a mchk.Action) (mchk.State, error) {
			s := ss.(state)
			stream := a.Params.(StreamName)

			data := []byte{byte(len(s.want[stream]))}
			ev, err := s.store.Append(stream, []byte("ev"), data)
			if err != nil {
				return s, err
			}
			if ev.Number != uint64(len(s.want[stream])) {
				return s, assertionError("append did not assign the next gap-free number")
			}
			s.want[stream] = append(s.want[stream], data)

			events, err := s.store.RangeRead(stream, 0, 0, false)
			if err != nil {
				return s, err
			}
			if err := massert.Len(events, len(s.want[stream])).Assert(); err != nil {
				return s, err
			}
			for i, want := range s.want[stream] {
				if err := massert.Equal(uint64(i), events[i].Number).Assert(); err != nil {
					return s, err
				}
				if err := massert.Equal(want, events[i].Data).Assert(); err != nil {
					return s, err
				}
			}
			return s, nil
		},
		MaxLength: 60,
	}

	if err := chk.RunFor(2 * time.Second); err != nil {
		t.Fatal(err)
	}
}
