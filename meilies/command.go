package meilies

import (
	"strings"

	"github.com/meilisearch/MeiliES/merr"
	"github.com/meilisearch/MeiliES/resp"
)

// Command is the tagged variant of every request MeiliES understands. The
// concrete type of a Command is one of PublishCommand, SubscribeCommand,
// or LastEventNumberCommand.
type Command interface {
	isCommand()
}

// PublishCommand appends a single event to a stream.
type PublishCommand struct {
	Stream    StreamName
	EventName []byte
	EventData []byte
}

func (PublishCommand) isCommand() {}

// SubscribeCommand starts one or more independent seam subscriptions on
// the connection that issued it.
type SubscribeCommand struct {
	Subscriptions []Subscription
}

func (SubscribeCommand) isCommand() {}

// LastEventNumberCommand queries a stream's current event count and last
// assigned number.
type LastEventNumberCommand struct {
	Stream StreamName
}

func (LastEventNumberCommand) isCommand() {}

// ParseCommand maps a decoded RESP request (always an Array of
// BulkStrings) to a Command. The returned error, if any, is always a
// per-command InvalidCommand-class error: the caller should reply with a
// RESP Error and keep the connection open.
func ParseCommand(v resp.Value) (Command, error) {
	if v.Kind != resp.Array || v.ArrayNull {
		return nil, merr.New("request must be an array")
	}
	if len(v.Elems) == 0 {
		return nil, merr.New("empty command")
	}

	args := make([]string, len(v.Elems))
	for i, elem := range v.Elems {
		if elem.Kind != resp.BulkString || elem.BulkNull {
			return nil, merr.New("command arguments must be bulk strings")
		}
		args[i] = string(elem.Bulk)
	}

	switch strings.ToLower(args[0]) {
	case "publish":
		return parsePublish(args[1:])
	case "subscribe":
		return parseSubscribe(args[1:])
	case "last-event-number":
		return parseLastEventNumber(args[1:])
	default:
		return nil, merr.New("unknown command: " + args[0])
	}
}

func parsePublish(args []string) (Command, error) {
	if len(args) != 3 {
		return nil, merr.New("publish requires exactly 3 arguments")
	}
	name, err := ParseStreamName(args[0])
	if err != nil {
		return nil, err
	}
	return PublishCommand{
		Stream:    name,
		EventName: []byte(args[1]),
		EventData: []byte(args[2]),
	}, nil
}

func parseSubscribe(args []string) (Command, error) {
	if len(args) == 0 {
		return nil, merr.New("subscribe requires at least 1 argument")
	}
	subs := make([]Subscription, len(args))
	for i, arg := range args {
		sub, err := ParseSubscription(arg)
		if err != nil {
			return nil, err
		}
		subs[i] = sub
	}
	return SubscribeCommand{Subscriptions: subs}, nil
}

func parseLastEventNumber(args []string) (Command, error) {
	if len(args) != 1 {
		return nil, merr.New("last-event-number requires exactly 1 argument")
	}
	name, err := ParseStreamName(args[0])
	if err != nil {
		return nil, err
	}
	return LastEventNumberCommand{Stream: name}, nil
}

// Reply tags used on the wire. The contract only requires a stable,
// self-describing shape (see the wire protocol notes); these specific
// tokens are the implementation's choice.
const (
	tagSubscribed  = "subscribed"
	tagEvent       = "event"
	tagEndOfStream = "end-of-stream"
	tagError       = "error"
)

// OKReply is the successful response to a publish command.
func OKReply() resp.Value { return resp.SimpleStr("OK") }

// ErrorReply converts a command-level error into a RESP Error reply.
func ErrorReply(err error) resp.Value { return resp.ErrorValue(err) }

// LastEventNumberReply builds the Array reply for a last-event-number
// query. hasEvents is false for a stream with no events (count is then 0
// and lastNumber is ignored).
func LastEventNumberReply(stream StreamName, count uint64, hasEvents bool, lastNumber uint64) resp.Value {
	last := resp.NullBulk()
	if hasEvents {
		last = resp.Int(int64(lastNumber))
	}
	return resp.Arr(
		resp.BulkStr(string(stream)),
		resp.Int(int64(count)),
		last,
	)
}

// SubscribedRecord builds the acknowledgement record emitted when a
// subscription becomes active for stream.
func SubscribedRecord(stream StreamName) resp.Value {
	return resp.Arr(resp.SimpleStr(tagSubscribed), resp.BulkStr(string(stream)))
}

// EventRecord builds a single event record for a subscription.
func EventRecord(stream StreamName, ev Event) resp.Value {
	return resp.Arr(
		resp.SimpleStr(tagEvent),
		resp.BulkStr(string(stream)),
		resp.Int(int64(ev.Number)),
		resp.Bulk(ev.Name),
		resp.Bulk(ev.Data),
	)
}

// EndOfStreamRecord builds the completion record for a bounded
// subscription.
func EndOfStreamRecord(stream StreamName) resp.Value {
	return resp.Arr(resp.SimpleStr(tagEndOfStream), resp.BulkStr(string(stream)))
}

// StreamErrorRecord builds a stream-scoped error record.
func StreamErrorRecord(stream StreamName, err error) resp.Value {
	return resp.Arr(resp.SimpleStr(tagError), resp.BulkStr(string(stream)), resp.BulkStr(err.Error()))
}
