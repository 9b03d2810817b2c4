package meilies

import (
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/meilisearch/MeiliES/merr"
)

// Store is the durable, append-only per-stream log plus the fan-out of
// commits to live subscribers. Implementations must serialize all writes
// to a single stream, but may allow concurrent writes to different
// streams.
type Store interface {
	// Append atomically assigns the next sequence number for stream and
	// durably writes (name, data) under it, then fans the resulting Event
	// out to any live subscribers of stream.
	Append(stream StreamName, name, data []byte) (Event, error)

	// RangeRead returns, in ascending order, every event in stream with
	// from <= number < to (or from <= number if bounded is false),
	// against a consistent snapshot taken at call time.
	RangeRead(stream StreamName, from, to uint64, bounded bool) ([]Event, error)

	// LastEventNumber reports how many events a stream holds and, if
	// count > 0, the number of the most recently appended one.
	LastEventNumber(stream StreamName) (count uint64, lastNumber uint64, err error)

	// Subscribe registers a live notifier for stream with the given
	// inbox capacity (the high-water mark). The returned cancel func must
	// be called once the subscriber is done.
	Subscribe(stream StreamName, highWaterMark int) (*liveSub, func())

	Close() error
}

// BoltStore is a Store backed by go.etcd.io/bbolt, an embedded ordered
// key/value engine. Each stream gets its own bucket; within a bucket keys
// are the 8-byte big-endian event number (so lexicographic and numeric
// order coincide) and values are a length-prefixed (name, data) encoding.
// Bucket.NextSequence gives the gap-free, transactionally-safe per-stream
// counter the append path relies on.
type BoltStore struct {
	db  *bolt.DB
	hub *notifierHub
}

// OpenBoltStore opens (creating if absent) the bbolt database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, merr.Wrap(err)
	}
	return &BoltStore{db: db, hub: newNotifierHub()}, nil
}

func bucketName(stream StreamName) []byte { return []byte(stream) }

func encodeKey(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func decodeKey(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

// encodeValue packs (name, data) as a 4-byte big-endian length of name
// followed by name then data.
func encodeValue(name, data []byte) []byte {
	buf := make([]byte, 4+len(name)+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(name)))
	copy(buf[4:], name)
	copy(buf[4+len(name):], data)
	return buf
}

func decodeValue(b []byte) (name, data []byte) {
	nameLen := binary.BigEndian.Uint32(b)
	name = b[4 : 4+nameLen]
	data = b[4+nameLen:]
	return name, data
}

// Append implements Store.
func (s *BoltStore) Append(stream StreamName, name, data []byte) (Event, error) {
	var ev Event
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(stream))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		n := seq - 1 // NextSequence starts at 1; event numbers start at 0.
		ev = Event{Number: n, Name: name, Data: data}
		return b.Put(encodeKey(n), encodeValue(name, data))
	})
	if err != nil {
		return Event{}, merr.Wrap(err)
	}

	s.hub.publish(stream, ev)
	return ev, nil
}

// RangeRead implements Store.
func (s *BoltStore) RangeRead(stream StreamName, from, to uint64, bounded bool) ([]Event, error) {
	var events []Event
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(stream))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek(encodeKey(from)); k != nil; k, v = c.Next() {
			n := decodeKey(k)
			if bounded && n >= to {
				break
			}
			name, data := decodeValue(v)
			// decodeValue's slices alias bbolt's mmap, which is only
			// valid for the lifetime of this transaction; copy them out.
			events = append(events, Event{
				Number: n,
				Name:   append([]byte(nil), name...),
				Data:   append([]byte(nil), data...),
			})
		}
		return nil
	})
	if err != nil {
		return nil, merr.Wrap(err)
	}
	return events, nil
}

// LastEventNumber implements Store.
func (s *BoltStore) LastEventNumber(stream StreamName) (count uint64, lastNumber uint64, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(stream))
		if b == nil {
			return nil
		}
		count = b.Sequence()
		return nil
	})
	if err != nil {
		return 0, 0, merr.Wrap(err)
	}
	if count == 0 {
		return 0, 0, nil
	}
	return count, count - 1, nil
}

// Subscribe implements Store.
func (s *BoltStore) Subscribe(stream StreamName, highWaterMark int) (*liveSub, func()) {
	return s.hub.register(stream, highWaterMark)
}

// Close implements Store.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
