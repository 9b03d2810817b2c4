// Package meilies implements the MeiliES event-sourcing server: durable
// per-stream append-only logs, a RESP-framed command protocol, and a
// subscription engine that splices historical replay onto the live tail
// without gaps or duplicates.
package meilies

import (
	"strconv"
	"strings"

	"github.com/meilisearch/MeiliES/merr"
)

// MaxStreamNameLen bounds the length of a StreamName. Implementation
// defined; chosen generously above any realistic name.
const MaxStreamNameLen = 512

// StreamName is a validated, non-empty stream identifier. It never
// contains ':' or ASCII whitespace.
type StreamName string

// ParseStreamName validates s as a StreamName.
func ParseStreamName(s string) (StreamName, error) {
	if len(s) == 0 {
		return "", merr.New("stream name must not be empty")
	}
	if len(s) > MaxStreamNameLen {
		return "", merr.New("stream name too long")
	}
	for _, r := range s {
		if r == ':' || isASCIISpace(r) {
			return "", merr.New("stream name contains a forbidden character")
		}
	}
	return StreamName(s), nil
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

// Subscription is the parsed form of a client's subscribe argument:
// "name", "name:from", or "name:from:to".
type Subscription struct {
	Stream StreamName

	// LiveOnly is true for the bare "name" form: no history is read, the
	// subscription starts at whatever is published after it's registered.
	LiveOnly bool

	From uint64

	// Bounded is true for the "name:from:to" form.
	Bounded bool
	To      uint64
}

// ParseSubscription parses the textual subscribe argument described in the
// wire protocol: name[:from[:to]].
func ParseSubscription(s string) (Subscription, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return Subscription{}, merr.New("too many ':'-separated fields in subscription")
	}

	name, err := ParseStreamName(parts[0])
	if err != nil {
		return Subscription{}, err
	}

	if len(parts) == 1 {
		return Subscription{Stream: name, LiveOnly: true}, nil
	}

	from, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Subscription{}, merr.New("invalid 'from' sequence number")
	}

	if len(parts) == 2 {
		return Subscription{Stream: name, From: from}, nil
	}

	to, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return Subscription{}, merr.New("invalid 'to' sequence number")
	}

	return Subscription{Stream: name, From: from, Bounded: true, To: to}, nil
}
