package meilies

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/meilisearch/MeiliES/mcmp"
	"github.com/meilisearch/MeiliES/mctx"
	"github.com/meilisearch/MeiliES/merr"
	"github.com/meilisearch/MeiliES/mlog"
	"github.com/meilisearch/MeiliES/resp"
)

// DefaultHighWaterMark bounds how many live notifications a subscriber's
// inbox may hold before it's considered a slow consumer.
const DefaultHighWaterMark = 1024

// Server drives one or more connections against a shared Store. Each
// connection is serviced independently; the only shared mutable resource
// is the Store itself, which provides its own synchronization.
type Server struct {
	cmp    *mcmp.Component
	store  Store
	engine *subscriptionEngine

	wg sync.WaitGroup

	mu     sync.Mutex
	l      net.Listener
	conns  map[net.Conn]struct{}
	closed bool
}

// NewServer returns a Server which will service connections against
// store, failing subscriptions whose inbox exceeds highWaterMark pending
// live notifications.
func NewServer(cmp *mcmp.Component, store Store, highWaterMark int) *Server {
	return &Server{
		cmp:    cmp,
		store:  store,
		engine: newSubscriptionEngine(store, highWaterMark),
		conns:  map[net.Conn]struct{}{},
	}
}

// Serve accepts connections from l until Accept returns an error (typically
// because l was closed by Shutdown). ctx is not consulted: canceling it does
// not stop Serve.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.mu.Lock()
	s.l = l
	s.mu.Unlock()

	for {
		conn, err := l.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return merr.Wrap(err, s.cmp.Context())
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			continue
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.forget(conn)
			s.handleConn(conn)
		}()
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) forget(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// Shutdown stops accepting new connections, closes every open connection
// (which cancels their subscriptions at the next suspension point), and
// waits for every connection goroutine to exit. The listener is closed
// first so Serve's accept loop can't race Shutdown and hand off a
// connection this call never waits for.
func (s *Server) Shutdown(context.Context) error {
	s.mu.Lock()
	s.closed = true
	l := s.l
	s.mu.Unlock()

	if l != nil {
		l.Close()
	}

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// connWriter serializes every record (command reply or subscription
// output) destined for one connection onto a single outbound byte stream.
type connWriter struct {
	mu  sync.Mutex
	enc *resp.Encoder
}

func (w *connWriter) write(v resp.Value) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

func (s *Server) handleConn(conn net.Conn) {
	connCtx := mctx.Annotated("remoteAddr", conn.RemoteAddr().String())
	log := mlog.From(s.cmp)
	log.Debug("connection accepted", connCtx)
	defer log.Debug("connection closed", connCtx)
	defer conn.Close()

	dec := resp.NewDecoder(conn)
	w := &connWriter{enc: resp.NewEncoder(conn)}

	done := make(chan struct{})
	var subsWG sync.WaitGroup
	defer func() {
		close(done)
		subsWG.Wait()
	}()

	for {
		reqVal, err := dec.Decode()
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				log.Debug("connection read failed", connCtx, mctx.Annotated("err", err.Error()))
			}
			return
		}

		cmd, err := ParseCommand(reqVal)
		if err != nil {
			if err := w.write(ErrorReply(err)); err != nil {
				return
			}
			continue
		}

		switch c := cmd.(type) {
		case PublishCommand:
			if _, err := s.store.Append(c.Stream, c.EventName, c.EventData); err != nil {
				log.Warn("append failed", err, mctx.Annotated("stream", string(c.Stream)))
				if err := w.write(ErrorReply(err)); err != nil {
					return
				}
				continue
			}
			if err := w.write(OKReply()); err != nil {
				return
			}

		case LastEventNumberCommand:
			count, lastNumber, err := s.store.LastEventNumber(c.Stream)
			if err != nil {
				if err := w.write(ErrorReply(err)); err != nil {
					return
				}
				continue
			}
			if err := w.write(LastEventNumberReply(c.Stream, count, count > 0, lastNumber)); err != nil {
				return
			}

		case SubscribeCommand:
			for _, sub := range c.Subscriptions {
				sub := sub
				subsWG.Add(1)
				go func() {
					defer subsWG.Done()
					if err := s.engine.run(sub, w.write, done); err != nil && errors.Is(err, ErrSlowConsumer) {
						log.Warn("slow consumer", err, mctx.Annotated("stream", string(sub.Stream)))
						conn.Close()
					}
				}()
			}
		}
	}
}
