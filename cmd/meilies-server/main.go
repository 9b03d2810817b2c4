// Command meilies-server runs the MeiliES event-sourcing server: it opens
// (or creates) the on-disk log at --db-path and serves the RESP protocol
// on --hostname:--port until signalled to stop.
package main

import (
	"context"

	"github.com/meilisearch/MeiliES/m"
	"github.com/meilisearch/MeiliES/mcfg"
	"github.com/meilisearch/MeiliES/mlog"
	"github.com/meilisearch/MeiliES/mnet"
	"github.com/meilisearch/MeiliES/mrun"
	"github.com/meilisearch/MeiliES/meilies"
)

func main() {
	cmp := m.RootServiceComponent()

	dbPath := mcfg.String(cmp, "db-path",
		mcfg.ParamRequired(),
		mcfg.ParamUsage("Path to the directory holding the event log."))

	highWaterMark := mcfg.Int(cmp, "high-water-mark",
		mcfg.ParamDefault(meilies.DefaultHighWaterMark),
		mcfg.ParamUsage("Maximum pending live notifications before a subscriber is considered a slow consumer."))

	// meilies.Server.Shutdown closes the listener itself, ahead of
	// closing active connections, so the accept loop can't race
	// Shutdown and hand off a connection it never waits for; tell mnet
	// not to also close it.
	l := mnet.InstListenerHostPort(cmp, "127.0.0.1", "6480",
		mnet.ListenerCloseOnShutdown(false))

	var store *meilies.BoltStore
	var srv *meilies.Server

	mrun.InitHook(cmp, func(context.Context) error {
		var err error
		store, err = meilies.OpenBoltStore(*dbPath)
		return err
	})

	mrun.InitHook(cmp, func(ctx context.Context) error {
		srv = meilies.NewServer(cmp, store, *highWaterMark)
		go func() {
			if err := srv.Serve(ctx, l); err != nil {
				mlog.From(cmp).Error("server stopped unexpectedly", err)
			}
		}()
		return nil
	})

	// ShutdownHooks run in the reverse of their registration order, so
	// registering the store's close first here means srv.Shutdown (stop
	// accepting, drain connections) runs before store.Close (flush and
	// close the log) at actual shutdown time.
	mrun.ShutdownHook(cmp, func(context.Context) error {
		if store == nil {
			return nil
		}
		return store.Close()
	})

	mrun.ShutdownHook(cmp, func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	})

	m.Exec(cmp)
}
